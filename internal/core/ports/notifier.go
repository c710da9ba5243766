package ports

import (
	"context"
	"time"
)

// LeadCreatedEvent is emitted after a lead has been persisted.
type LeadCreatedEvent struct {
	LeadID    string    `json:"lead_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Source    string    `json:"source,omitempty"`
	Interests []string  `json:"interests,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LeadNotifier delivers a LeadCreatedEvent to one downstream channel.
type LeadNotifier interface {
	Name() string
	Notify(ctx context.Context, event LeadCreatedEvent) error
}

// LeadEventPublisher hands events off for asynchronous delivery. Enqueue must
// not block the caller.
type LeadEventPublisher interface {
	Enqueue(event LeadCreatedEvent) bool
}
