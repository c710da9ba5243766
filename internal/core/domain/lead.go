package domain

import "time"

// Lead is a prospective-customer submission captured from the public form.
// Leads are created once and never mutated or deleted.
type Lead struct {
	ID          string    `json:"id" bson:"id"`
	Name        string    `json:"name" bson:"name"`
	Email       string    `json:"email" bson:"email"`
	Company     *string   `json:"company" bson:"company,omitempty"`
	Phone       *string   `json:"phone" bson:"phone,omitempty"`
	Country     *string   `json:"country" bson:"country,omitempty"`
	Industry    *string   `json:"industry" bson:"industry,omitempty"`
	CompanySize *string   `json:"company_size" bson:"company_size,omitempty"`
	TeamSize    *string   `json:"team_size" bson:"team_size,omitempty"`
	Timeline    *string   `json:"timeline" bson:"timeline,omitempty"`
	Interests   []string  `json:"interests" bson:"interests,omitempty"`
	Message     *string   `json:"message" bson:"message,omitempty"`
	Source      *string   `json:"source" bson:"source,omitempty"`
	Consent     *bool     `json:"consent" bson:"consent,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Lead document fields referenced by queries and indexes.
const (
	LeadFieldID        = "id"
	LeadFieldCreatedAt = "created_at"
)

// LeadsCollection is the store collection holding leads.
const LeadsCollection = "leads"
