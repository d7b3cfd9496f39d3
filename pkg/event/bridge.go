package event

import (
	"context"
	"encoding/json"

	"github.com/careloop/careops-api/pkg/logger"
	"github.com/careloop/careops-api/pkg/messaging"
)

// ChangesTopic is the broker topic change notifications are published on.
const ChangesTopic = "careops.changes"

// BrokerBridge forwards local change notifications to a message broker so
// other processes (dashboard sessions on other nodes, the handover worker)
// can react to mutations they did not perform.
type BrokerBridge struct {
	broker messaging.Broker
	logger *logger.Logger
}

func NewBrokerBridge(broker messaging.Broker, logger *logger.Logger) *BrokerBridge {
	return &BrokerBridge{broker: broker, logger: logger}
}

// Attach subscribes the bridge to the notifier. Publish failures are logged,
// not propagated: local subscribers were already notified and the mutation is
// committed either way.
func (b *BrokerBridge) Attach(n Notifier) {
	n.Subscribe(func(change Change) {
		payload, err := json.Marshal(change)
		if err != nil {
			b.logger.Error(err, "failed to encode change notification")
			return
		}
		if err := b.broker.Publish(context.Background(), ChangesTopic, payload); err != nil {
			b.logger.Error(err, "failed to publish change notification",
				"resource", change.Resource, "operation", change.Operation)
		}
	})
}
