package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carbonwallet/leads-service/internal/core/domain"
	"github.com/carbonwallet/leads-service/internal/core/ports"
	"github.com/carbonwallet/leads-service/internal/pkg/validate"
)

// maxStatusChecks caps how many entries List returns.
const maxStatusChecks = 1000

type recordStatusInput struct {
	ClientName string `json:"client_name" validate:"required"`
}

type statusService struct {
	store     ports.RecordStore[domain.StatusCheck]
	validator *validate.Validator
	log       zerolog.Logger
	now       func() time.Time
	newID     func() string
}

// NewStatusService returns a StatusService implementation.
func NewStatusService(store ports.RecordStore[domain.StatusCheck], validator *validate.Validator, log zerolog.Logger) ports.StatusService {
	return &statusService{
		store:     store,
		validator: validator,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *statusService) Record(ctx context.Context, clientName string) (*domain.StatusCheck, error) {
	in := recordStatusInput{ClientName: clientName}
	if err := s.validator.Struct(&in); err != nil {
		return nil, validate.AsValidationError(err)
	}

	check := &domain.StatusCheck{
		ID:         s.newID(),
		ClientName: in.ClientName,
		Timestamp:  s.now().UTC(),
	}
	if err := s.store.Insert(ctx, *check); err != nil {
		err = asStorageError("insert", domain.StatusChecksCollection, err)
		s.log.Error().Err(err).Str("client_name", in.ClientName).Msg("failed to record status check")
		return nil, err
	}
	return check, nil
}

// List returns up to maxStatusChecks entries in store order.
func (s *statusService) List(ctx context.Context) ([]domain.StatusCheck, error) {
	checks, err := s.store.Find(ctx, ports.FindOptions{Limit: maxStatusChecks})
	if err != nil {
		err = asStorageError("find", domain.StatusChecksCollection, err)
		s.log.Error().Err(err).Msg("failed to list status checks")
		return nil, err
	}
	if checks == nil {
		checks = []domain.StatusCheck{}
	}
	return checks, nil
}
