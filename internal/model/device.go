package model

import (
	"github.com/google/uuid"
)

type DeviceStatus string

const (
	DeviceStatusInStock       DeviceStatus = "IN_STOCK"
	DeviceStatusReserved      DeviceStatus = "RESERVED"
	DeviceStatusInstalled     DeviceStatus = "INSTALLED"
	DeviceStatusReturnPending DeviceStatus = "RETURN_PENDING"
	DeviceStatusMaintenance   DeviceStatus = "MAINTENANCE"
)

// Device is a physical unit under custody tracking. Dashboards filter on
// status and assignment; no derived logic lives here.
type Device struct {
	Base
	CareOrgID    uuid.UUID    `db:"care_org_id" json:"care_org_id"`
	SerialNumber string       `db:"serial_number" json:"serial_number"`
	ProductName  string       `db:"product_name" json:"product_name"`
	Status       DeviceStatus `db:"status" json:"status"`
	ClientID     *uuid.UUID   `db:"client_id" json:"client_id,omitempty"`
}

type CreateDeviceRequest struct {
	CareOrgID    string `json:"care_org_id" binding:"required,uuid"`
	SerialNumber string `json:"serial_number" binding:"required"`
	ProductName  string `json:"product_name" binding:"required"`
}

type DeviceFilters struct {
	CareOrgID uuid.UUID
	ClientID  uuid.UUID
	Status    DeviceStatus
}
