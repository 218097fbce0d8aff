package token

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/civicpulse/feedback-platform/pkg/observability/metrics"
	"github.com/google/uuid"
)

// Store is the persistence contract the service needs. *Repository satisfies
// it against postgres.
type Store interface {
	Create(ctx context.Context, tok models.LinkingToken) error
	FindByValue(ctx context.Context, value string) (models.LinkingToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Service struct {
	store   Store
	ttl     time.Duration
	origin  string
	nowFunc func() time.Time
}

func NewService(store Store, ttl time.Duration, publicOrigin string) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		store:   store,
		ttl:     ttl,
		origin:  strings.TrimRight(strings.TrimSpace(publicOrigin), "/"),
		nowFunc: time.Now,
	}
}

// Issue mints a fresh unguessable token, optionally back-referencing the kiosk
// response it was displayed for, and returns both the stored record and the
// external-facing shape (value + shareable URL + expiry).
func (s *Service) Issue(ctx context.Context, linkedFeedbackID *uuid.UUID) (models.LinkingToken, models.IssuedToken, error) {
	now := s.nowFunc().UTC()
	tok := models.LinkingToken{
		ID:               uuid.New(),
		Value:            uuid.NewString(),
		TabletFeedbackID: linkedFeedbackID,
		ExpiresAt:        now.Add(s.ttl),
	}

	if err := s.store.Create(ctx, tok); err != nil {
		return models.LinkingToken{}, models.IssuedToken{}, fmt.Errorf("persist token: %w", err)
	}

	metrics.IncTokensIssued()
	return tok, models.IssuedToken{
		Token:     tok.Value,
		URL:       s.ShareURL(tok.Value),
		ExpiresAt: tok.ExpiresAt,
	}, nil
}

// Resolve looks a token up by its external value.
func (s *Service) Resolve(ctx context.Context, value string) (models.LinkingToken, error) {
	return s.store.FindByValue(ctx, value)
}

// Consume marks the token redeemed. Exactly one caller wins; the loser gets
// ErrTokenAlreadyUsed.
func (s *Service) Consume(ctx context.Context, id uuid.UUID) error {
	if err := s.store.MarkUsed(ctx, id, s.nowFunc().UTC()); err != nil {
		return err
	}
	metrics.IncTokensConsumed()
	return nil
}

// ShareURL builds the mobile survey link embedding the token value.
func (s *Service) ShareURL(value string) string {
	return fmt.Sprintf("%s/survey?token=%s", s.origin, value)
}
