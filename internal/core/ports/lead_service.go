package ports

import (
	"context"

	"github.com/carbonwallet/leads-service/internal/core/domain"
)

// SubmitLeadInput is the DTO passed from the transport layer to LeadService.
type SubmitLeadInput struct {
	Name        string   `json:"name"         validate:"required"`
	Email       string   `json:"email"        validate:"required,email"`
	Company     *string  `json:"company"`
	Phone       *string  `json:"phone"`
	Country     *string  `json:"country"`
	Industry    *string  `json:"industry"`
	CompanySize *string  `json:"company_size"`
	TeamSize    *string  `json:"team_size"`
	Timeline    *string  `json:"timeline"`
	Interests   []string `json:"interests"`
	Message     *string  `json:"message"`
	Source      *string  `json:"source"`
	Consent     *bool    `json:"consent"`

	// IdempotencyKey is optional; when set, a replay returns the first result.
	IdempotencyKey string `json:"-"`
}

// SubmitLeadResult is returned by Submit.
type SubmitLeadResult struct {
	Lead *domain.Lead
	// Replayed is true when the idempotency key matched an earlier submission.
	Replayed bool
}

// Listing window bounds.
const (
	DefaultLeadsLimit = 50
	MaxLeadsLimit     = 100
)

// ListLeadsInput carries the page window and the verified caller.
// Skip must be >= 0 and Limit within 1..MaxLeadsLimit.
type ListLeadsInput struct {
	Skip   int
	Limit  int
	Caller domain.Principal
}

// LeadService defines the lead use cases.
type LeadService interface {
	Submit(ctx context.Context, in SubmitLeadInput) (*SubmitLeadResult, error)
	List(ctx context.Context, in ListLeadsInput) (*domain.Page, error)
}
