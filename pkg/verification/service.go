package verification

import (
	"context"
	"errors"
	"time"

	"github.com/civicpulse/feedback-platform/pkg/common/logger"
	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/civicpulse/feedback-platform/pkg/observability/metrics"
	"github.com/civicpulse/feedback-platform/pkg/token"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenUsed    = errors.New("token already used")
)

type TokenResolver interface {
	Resolve(ctx context.Context, value string) (models.LinkingToken, error)
}

type ResponseLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.SurveyResponse, error)
}

type Service struct {
	tokens    TokenResolver
	responses ResponseLoader
	nowFunc   func() time.Time
}

func NewService(tokens TokenResolver, responses ResponseLoader) *Service {
	return &Service{tokens: tokens, responses: responses, nowFunc: time.Now}
}

// Verify checks a presented token value in order: existence, expiry, consumed
// flag. A usable token linked to a kiosk response also carries that response's
// answers so the mobile form can skip the baseline questions. When the linked
// response cannot be read, verification still reports that prior answers
// exist; the boolean alone drives question skipping, so content loss must not
// fail the whole check.
func (s *Service) Verify(ctx context.Context, value string) (models.VerificationResult, error) {
	metrics.IncVerifications()

	tok, err := s.tokens.Resolve(ctx, value)
	if err != nil {
		if errors.Is(err, token.ErrTokenNotFound) {
			return models.VerificationResult{}, ErrTokenInvalid
		}
		return models.VerificationResult{}, err
	}

	now := s.nowFunc()
	if !now.Before(tok.ExpiresAt) {
		return models.VerificationResult{}, ErrTokenExpired
	}
	if tok.Used {
		return models.VerificationResult{}, ErrTokenUsed
	}

	result := models.VerificationResult{Usable: true}
	if tok.TabletFeedbackID == nil {
		return result, nil
	}

	result.HasPriorAnswers = true
	resp, err := s.responses.GetByID(ctx, *tok.TabletFeedbackID)
	if err != nil {
		logger.Log.WithError(err).WithField("token_id", tok.ID).Warn("linked kiosk response unreadable, reporting existence only")
		return result, nil
	}
	if resp.TabletAnswers != nil && !resp.TabletAnswers.Empty() {
		result.PriorAnswers = resp.TabletAnswers
	}
	return result, nil
}
