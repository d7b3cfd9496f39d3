package model

// CareOrg is a home-care organization that owns clients, cases and devices.
type CareOrg struct {
	Base
	Name         string `db:"name" json:"name"`
	Region       string `db:"region" json:"region"`
	ContactEmail string `db:"contact_email" json:"contact_email"`
	ContactPhone string `db:"contact_phone" json:"contact_phone"`
}

type CreateCareOrgRequest struct {
	Name         string `json:"name" binding:"required"`
	Region       string `json:"region"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone string `json:"contact_phone"`
}
