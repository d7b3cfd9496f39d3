package model

import (
	"time"

	"github.com/google/uuid"
)

type AssessmentStatus string

const (
	AssessmentStatusDraft    AssessmentStatus = "DRAFT"
	AssessmentStatusApproved AssessmentStatus = "APPROVED"
)

type AssessmentType string

const (
	AssessmentTypeInitial           AssessmentType = "INITIAL"
	AssessmentTypeReview            AssessmentType = "REVIEW"
	AssessmentTypeChangeOfCondition AssessmentType = "CHANGE_OF_CONDITION"
)

// AIAnalysisSnapshot is the classifier's output captured at assessment-creation
// time. It is embedded in the assessment and never mutated afterwards, so the
// approving nurse can always see what the triage rules suggested and why.
type AIAnalysisSnapshot struct {
	SuggestedDevices  []string `json:"suggested_devices"`
	SuggestedServices []string `json:"suggested_services"`
	RiskFlags         []string `json:"risk_flags"`
	Reasoning         string   `json:"reasoning"`
	Confidence        float64  `json:"confidence"`
}

// Assessment is a nurse's point-in-time clinical evaluation of a client.
// Once APPROVED the recommended lists are frozen.
type Assessment struct {
	Base
	ClientID            uuid.UUID           `db:"client_id" json:"client_id"`
	PerformedBy         string              `db:"performed_by" json:"performed_by"`
	Date                time.Time           `db:"date" json:"date"`
	Type                AssessmentType      `db:"type" json:"type"`
	RiskLevel           RiskLevel           `db:"risk_level" json:"risk_level"`
	NeedsSummary        string              `db:"needs_summary" json:"needs_summary"`
	Notes               string              `db:"notes" json:"notes"`
	RecommendedDevices  []string            `db:"-" json:"recommended_devices"`
	RecommendedServices []string            `db:"-" json:"recommended_services"`
	Status              AssessmentStatus    `db:"status" json:"status"`
	AIAnalysis          *AIAnalysisSnapshot `db:"-" json:"ai_analysis,omitempty"`
}

type CreateAssessmentRequest struct {
	ClientID     string         `json:"client_id" binding:"required,uuid"`
	PerformedBy  string         `json:"performed_by" binding:"required"`
	Type         AssessmentType `json:"type" binding:"required,oneof=INITIAL REVIEW CHANGE_OF_CONDITION"`
	RiskLevel    RiskLevel      `json:"risk_level" binding:"required,oneof=LOW MEDIUM HIGH"`
	NeedsSummary string         `json:"needs_summary"`
	Notes        string         `json:"notes"`
}

type ApproveAssessmentRequest struct {
	ApprovedBy    string   `json:"approved_by" binding:"required"`
	FinalDevices  []string `json:"final_devices"`
	FinalServices []string `json:"final_services"`
}

type AssessmentFilters struct {
	ClientID uuid.UUID
	Status   AssessmentStatus
}
