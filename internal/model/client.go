package model

import (
	"time"

	"github.com/google/uuid"
)

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "ACTIVE"
	ClientStatusInactive ClientStatus = "INACTIVE"
	ClientStatusEnded    ClientStatus = "ENDED"
	ClientStatusDeceased ClientStatus = "DECEASED"
)

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// EmergencyContact is one entry in a client's ordered contact list.
type EmergencyContact struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Phone    string `json:"phone"`
}

// Client is a care recipient. Clients are never deleted, only status-transitioned.
type Client struct {
	Base
	CareOrgID         uuid.UUID          `db:"care_org_id" json:"care_org_id"`
	Name              string             `db:"name" json:"name"`
	DateOfBirth       time.Time          `db:"date_of_birth" json:"date_of_birth"`
	Status            ClientStatus       `db:"status" json:"status"`
	RiskLevel         RiskLevel          `db:"risk_level" json:"risk_level"`
	Address           string             `db:"address" json:"address"`
	Phone             string             `db:"phone" json:"phone"`
	Email             string             `db:"email" json:"email"`
	EmergencyContacts []EmergencyContact `db:"-" json:"emergency_contacts"`
}

// validClientTransitions lists the status moves client records may make.
// ENDED and DECEASED are terminal.
var validClientTransitions = map[ClientStatus][]ClientStatus{
	ClientStatusActive:   {ClientStatusInactive, ClientStatusEnded, ClientStatusDeceased},
	ClientStatusInactive: {ClientStatusActive, ClientStatusEnded, ClientStatusDeceased},
}

// ValidClientTransition reports whether a client may move from one status to another.
func ValidClientTransition(from, to ClientStatus) bool {
	for _, next := range validClientTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type CreateClientRequest struct {
	CareOrgID         string             `json:"care_org_id" binding:"required,uuid"`
	Name              string             `json:"name" binding:"required"`
	DateOfBirth       time.Time          `json:"date_of_birth" binding:"required"`
	Address           string             `json:"address"`
	Phone             string             `json:"phone"`
	Email             string             `json:"email" binding:"omitempty,email"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts"`
}

type UpdateClientStatusRequest struct {
	Status ClientStatus `json:"status" binding:"required,oneof=ACTIVE INACTIVE ENDED DECEASED"`
}

type ClientFilters struct {
	CareOrgID uuid.UUID
	Status    ClientStatus
	RiskLevel RiskLevel
}
