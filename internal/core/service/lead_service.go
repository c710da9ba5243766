package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carbonwallet/leads-service/internal/core/domain"
	"github.com/carbonwallet/leads-service/internal/core/ports"
	"github.com/carbonwallet/leads-service/internal/pkg/metrics"
	"github.com/carbonwallet/leads-service/internal/pkg/validate"
)

// IdempotencyStore abstracts the replay cache (Redis). Reserve must be
// atomic: of all concurrent callers for one key, exactly one gets
// reserved=true. The rest get the completed payload, or nil while the owner is
// still inserting.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (payload []byte, reserved bool, err error)
	Complete(ctx context.Context, key string, payload []byte) error
	Release(ctx context.Context, key string) error
}

// LeadServiceOption configures optional collaborators of a leadService.
type LeadServiceOption func(*leadService)

// WithIdempotency enables Idempotency-Key replays backed by store.
func WithIdempotency(store IdempotencyStore) LeadServiceOption {
	return func(s *leadService) { s.idem = store }
}

// WithEventPublisher emits a lead.created event after every insert.
func WithEventPublisher(p ports.LeadEventPublisher) LeadServiceOption {
	return func(s *leadService) { s.events = p }
}

type leadService struct {
	store     ports.RecordStore[domain.Lead]
	validator *validate.Validator
	idem      IdempotencyStore
	events    ports.LeadEventPublisher
	log       zerolog.Logger
	now       func() time.Time
	newID     func() string
}

// NewLeadService returns a LeadService implementation.
func NewLeadService(
	store ports.RecordStore[domain.Lead],
	validator *validate.Validator,
	log zerolog.Logger,
	opts ...LeadServiceOption,
) ports.LeadService {
	s := &leadService{
		store:     store,
		validator: validator,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates and persists a new lead. A repeated IdempotencyKey returns
// the lead created by the first request instead of inserting again.
func (s *leadService) Submit(ctx context.Context, in ports.SubmitLeadInput) (*ports.SubmitLeadResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Struct(&in); err != nil {
		metrics.LeadSubmissionErrorsTotal.WithLabelValues("validation").Inc()
		return nil, validate.AsValidationError(err)
	}

	owned, replayed, err := s.claim(ctx, in.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return &ports.SubmitLeadResult{Lead: replayed, Replayed: true}, nil
	}

	lead := &domain.Lead{
		ID:          s.newID(),
		Name:        in.Name,
		Email:       in.Email,
		Company:     in.Company,
		Phone:       in.Phone,
		Country:     in.Country,
		Industry:    in.Industry,
		CompanySize: in.CompanySize,
		TeamSize:    in.TeamSize,
		Timeline:    in.Timeline,
		Interests:   in.Interests,
		Message:     in.Message,
		Source:      in.Source,
		Consent:     in.Consent,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.store.Insert(ctx, *lead); err != nil {
		if owned {
			s.release(ctx, in.IdempotencyKey)
		}
		metrics.LeadSubmissionErrorsTotal.WithLabelValues("storage").Inc()
		err = asStorageError("insert", domain.LeadsCollection, err)
		s.log.Error().Err(err).Str("lead_id", lead.ID).Msg("failed to persist lead")
		return nil, err
	}

	if owned {
		s.complete(ctx, in.IdempotencyKey, lead)
	}
	if s.events != nil && !s.events.Enqueue(leadCreatedEvent(lead)) {
		s.log.Warn().Str("lead_id", lead.ID).Msg("lead.created event not queued")
	}

	metrics.LeadsCreatedTotal.WithLabelValues(sourceLabel(lead.Source)).Inc()
	s.log.Info().Str("lead_id", lead.ID).Msg("lead created")
	return &ports.SubmitLeadResult{Lead: lead}, nil
}

// List returns one page of leads, newest first, with the collection total.
// The caller must be a verified admin; the store is not consulted otherwise.
func (s *leadService) List(ctx context.Context, in ports.ListLeadsInput) (*domain.Page, error) {
	if in.Caller.IsZero() {
		return nil, domain.ErrUnauthorized
	}
	if in.Caller.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if err := checkWindow(in.Skip, in.Limit); err != nil {
		return nil, err
	}

	items, err := s.store.Find(ctx, ports.FindOptions{
		Sort:  []ports.SortField{{Field: domain.LeadFieldCreatedAt, Descending: true}},
		Skip:  int64(in.Skip),
		Limit: int64(in.Limit),
	})
	if err != nil {
		err = asStorageError("find", domain.LeadsCollection, err)
		s.log.Error().Err(err).Msg("failed to list leads")
		return nil, err
	}

	total, err := s.store.Count(ctx, ports.Filter{})
	if err != nil {
		err = asStorageError("count", domain.LeadsCollection, err)
		s.log.Error().Err(err).Msg("failed to count leads")
		return nil, err
	}

	if items == nil {
		items = []domain.Lead{}
	}
	return &domain.Page{Items: items, Total: total, Skip: in.Skip, Limit: in.Limit}, nil
}

// claim reserves key for this submission. It returns owned=true when the
// caller must insert and then complete the key, or the lead to replay when an
// earlier request already finished. A request racing an unfinished one gets
// domain.ErrSubmissionInProgress. Cache failures are logged and the
// submission proceeds unguarded.
func (s *leadService) claim(ctx context.Context, key string) (bool, *domain.Lead, error) {
	if s.idem == nil || key == "" {
		return false, nil, nil
	}

	payload, reserved, err := s.idem.Reserve(ctx, key)
	switch {
	case err != nil:
		metrics.IdempotencyTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Msg("idempotency reserve failed, creating lead")
		return false, nil, nil
	case reserved:
		metrics.IdempotencyTotal.WithLabelValues("miss").Inc()
		return true, nil, nil
	case payload == nil:
		metrics.IdempotencyTotal.WithLabelValues("in_progress").Inc()
		return false, nil, domain.ErrSubmissionInProgress
	}

	var lead domain.Lead
	if err := json.Unmarshal(payload, &lead); err != nil {
		metrics.IdempotencyTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Msg("unreadable idempotency entry, creating lead")
		return false, nil, nil
	}
	metrics.IdempotencyTotal.WithLabelValues("hit").Inc()
	s.log.Debug().Str("lead_id", lead.ID).Msg("lead submission replayed")
	return false, &lead, nil
}

// complete and release run even when ctx was cancelled so the key is not
// left pending.
func (s *leadService) complete(ctx context.Context, key string, lead *domain.Lead) {
	payload, err := json.Marshal(lead)
	if err == nil {
		err = s.idem.Complete(context.WithoutCancel(ctx), key, payload)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("lead_id", lead.ID).Msg("failed to store idempotency entry")
	}
}

func (s *leadService) release(ctx context.Context, key string) {
	if err := s.idem.Release(context.WithoutCancel(ctx), key); err != nil {
		s.log.Warn().Err(err).Msg("failed to release idempotency key")
	}
}

// checkWindow rejects a page window outside skip >= 0, 1 <= limit <= MaxLeadsLimit.
func checkWindow(skip, limit int) error {
	var ve domain.ValidationError
	if skip < 0 {
		ve.Violations = append(ve.Violations, domain.FieldViolation{Field: "skip", Message: "skip must be at least 0"})
	}
	if limit < 1 || limit > ports.MaxLeadsLimit {
		ve.Violations = append(ve.Violations, domain.FieldViolation{
			Field:   "limit",
			Message: fmt.Sprintf("limit must be between 1 and %d", ports.MaxLeadsLimit),
		})
	}
	if len(ve.Violations) > 0 {
		return &ve
	}
	return nil
}

func leadCreatedEvent(l *domain.Lead) ports.LeadCreatedEvent {
	return ports.LeadCreatedEvent{
		LeadID:    l.ID,
		Name:      l.Name,
		Email:     l.Email,
		Company:   deref(l.Company),
		Source:    deref(l.Source),
		Interests: l.Interests,
		CreatedAt: l.CreatedAt,
	}
}

func sourceLabel(src *string) string {
	if src == nil || *src == "" {
		return "unknown"
	}
	return *src
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
