package ports

import (
	"context"

	"github.com/carbonwallet/leads-service/internal/core/domain"
)

// StatusService records and lists heartbeat entries.
type StatusService interface {
	Record(ctx context.Context, clientName string) (*domain.StatusCheck, error)
	List(ctx context.Context) ([]domain.StatusCheck, error)
}
