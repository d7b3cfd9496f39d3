// Package memory implements the repository interfaces over a single in-process
// store. The store is owned by the composition root and injected into every
// repository, replacing the global singleton the dashboards used to share.
package memory

import (
	"sync"

	"github.com/careloop/careops-api/internal/model"
)

// Store holds all application state behind one RWMutex. Repositories hand out
// copies, never aliases, so readers cannot observe a mutation in progress.
type Store struct {
	mu sync.RWMutex

	careOrgs    []*model.CareOrg
	clients     []*model.Client
	assessments []*model.Assessment
	carePlans   []*model.CarePlan
	cases       []*model.Case
	timeline    []*model.TimelineEvent
	devices     []*model.Device
	jobs        []*model.Job
	exceptions  []*model.ExceptionRecord
	handovers   []*model.HandoverTask
}

func NewStore() *Store {
	return &Store{}
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
