package model

import (
	"github.com/google/uuid"
)

type CaseStatus string

// Case statuses in pipeline order. Progression is forward-only; a case never
// regresses to an earlier status.
const (
	CaseStatusNew                 CaseStatus = "NEW"
	CaseStatusApproved            CaseStatus = "APPROVED"
	CaseStatusStockAllocated      CaseStatus = "STOCK_ALLOCATED"
	CaseStatusInstallationPending CaseStatus = "INSTALLATION_PENDING"
	CaseStatusInstalled           CaseStatus = "INSTALLED"
	CaseStatusActiveService       CaseStatus = "ACTIVE_SERVICE"
	CaseStatusReturnPending       CaseStatus = "RETURN_PENDING"
	CaseStatusClosed              CaseStatus = "CLOSED"
)

var caseStatusRank = map[CaseStatus]int{
	CaseStatusNew:                 0,
	CaseStatusApproved:            1,
	CaseStatusStockAllocated:      2,
	CaseStatusInstallationPending: 3,
	CaseStatusInstalled:           4,
	CaseStatusActiveService:       5,
	CaseStatusReturnPending:       6,
	CaseStatusClosed:              7,
}

// ValidCaseStatus reports whether s is a known pipeline status.
func ValidCaseStatus(s CaseStatus) bool {
	_, ok := caseStatusRank[s]
	return ok
}

// CaseStatusAdvances reports whether moving from one status to another goes
// strictly forward along the pipeline.
func CaseStatusAdvances(from, to CaseStatus) bool {
	fromRank, ok := caseStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := caseStatusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

type CaseItemKind string

const (
	CaseItemDevice  CaseItemKind = "DEVICE"
	CaseItemService CaseItemKind = "SERVICE"
)

// CaseItem is one requested device or service on a fulfillment case.
type CaseItem struct {
	Name     string       `json:"name"`
	Kind     CaseItemKind `json:"kind"`
	Quantity int          `json:"quantity"`
}

// Case is a fulfillment request (order) tracked through the forward-only
// status pipeline from intake to closure.
type Case struct {
	Base
	ClientID    uuid.UUID  `db:"client_id" json:"client_id"`
	CareOrgID   uuid.UUID  `db:"care_org_id" json:"care_org_id"`
	CarePlanID  *uuid.UUID `db:"care_plan_id" json:"care_plan_id,omitempty"`
	Status      CaseStatus `db:"status" json:"status"`
	Items       []CaseItem `db:"-" json:"items"`
	RequestedBy string     `db:"requested_by" json:"requested_by"`
}

type CreateCaseRequest struct {
	ClientID    string     `json:"client_id" binding:"required,uuid"`
	CareOrgID   string     `json:"care_org_id" binding:"required,uuid"`
	CarePlanID  string     `json:"care_plan_id" binding:"omitempty,uuid"`
	Items       []CaseItem `json:"items"`
	RequestedBy string     `json:"requested_by" binding:"required"`
}

type AdvanceCaseRequest struct {
	Status  CaseStatus `json:"status" binding:"required"`
	Actor   string     `json:"actor" binding:"required"`
	Summary string     `json:"summary"`
}

type CaseFilters struct {
	ClientID  uuid.UUID
	CareOrgID uuid.UUID
	Status    CaseStatus
}
