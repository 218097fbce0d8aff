package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civicpulse/feedback-platform/pkg/common/logger"
	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/civicpulse/feedback-platform/pkg/observability/metrics"
	"github.com/civicpulse/feedback-platform/pkg/token"
	"github.com/google/uuid"
)

// ErrInvalidToken marks a mobile submission whose token value resolves to
// nothing.
var ErrInvalidToken = errors.New("invalid token")

const statusPending = "pending"

type Store interface {
	Insert(ctx context.Context, resp models.SurveyResponse) error
	GetByID(ctx context.Context, id uuid.UUID) (models.SurveyResponse, error)
}

type TokenIssuer interface {
	Issue(ctx context.Context, linkedFeedbackID *uuid.UUID) (models.LinkingToken, models.IssuedToken, error)
	Resolve(ctx context.Context, value string) (models.LinkingToken, error)
	Consume(ctx context.Context, id uuid.UUID) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type Service struct {
	store     Store
	tokens    TokenIssuer
	validator *Validator
	events    EventPublisher
	nowFunc   func() time.Time
}

// NewService wires the submission pipeline. events may be nil when no broker
// is configured.
func NewService(store Store, tokens TokenIssuer, validator *Validator, events EventPublisher) *Service {
	return &Service{
		store:     store,
		tokens:    tokens,
		validator: validator,
		events:    events,
		nowFunc:   time.Now,
	}
}

// SubmitKiosk persists a kiosk response and, when requested, mints a linking
// token back-referencing the new row so the mobile follow-up can skip the
// baseline questions.
func (s *Service) SubmitKiosk(ctx context.Context, req models.KioskSubmissionRequest) (models.KioskSubmissionResponse, error) {
	if err := s.validator.ValidateKiosk(req.Responses); err != nil {
		metrics.IncRejectedSubmissions()
		return models.KioskSubmissionResponse{}, err
	}

	answers := req.Responses
	resp := models.SurveyResponse{
		ID:            uuid.New(),
		Channel:       models.ChannelTablet,
		TabletAnswers: &answers,
		Status:        statusPending,
		CreatedAt:     s.nowFunc().UTC(),
	}
	if err := s.store.Insert(ctx, resp); err != nil {
		return models.KioskSubmissionResponse{}, fmt.Errorf("persist kiosk response: %w", err)
	}

	out := models.KioskSubmissionResponse{FeedbackID: resp.ID}
	if req.GenerateQR {
		_, issued, err := s.tokens.Issue(ctx, &resp.ID)
		if err != nil {
			return models.KioskSubmissionResponse{}, fmt.Errorf("issue linking token: %w", err)
		}
		out.QRToken = &issued
	}

	metrics.IncKioskSubmissions()
	s.publish(ctx, models.EventFeedbackSubmitted, map[string]interface{}{
		"feedback_id": resp.ID.String(),
		"channel":     string(models.ChannelTablet),
	})
	return out, nil
}

// SubmitMobile persists a mobile response against a linking token, then marks
// the token consumed. The response insert comes first on purpose: a crash
// between the two steps leaves a still-usable token rather than a silently
// lost submission. Losing the consume race after a durable insert is logged
// and the submission still succeeds.
func (s *Service) SubmitMobile(ctx context.Context, req models.MobileSubmissionRequest) error {
	tok, err := s.tokens.Resolve(ctx, req.Token)
	if err != nil {
		if errors.Is(err, token.ErrTokenNotFound) {
			metrics.IncRejectedSubmissions()
			return ErrInvalidToken
		}
		return fmt.Errorf("resolve token: %w", err)
	}

	answers := req.Responses
	hasPrior := tok.TabletFeedbackID != nil
	if hasPrior {
		// Baseline answers were already collected at the kiosk; never store a
		// second copy for the same visitor.
		answers.KioskAnswers = models.KioskAnswers{}
	}
	if err := s.validator.ValidateMobile(answers, !hasPrior); err != nil {
		metrics.IncRejectedSubmissions()
		return err
	}
	if err := s.validator.ValidateParticipant(req.PersonalInfo); err != nil {
		metrics.IncRejectedSubmissions()
		return err
	}

	resp := models.SurveyResponse{
		ID:          uuid.New(),
		Channel:     models.ChannelQR,
		QRAnswers:   &answers,
		TokenID:     &tok.ID,
		Participant: sanitizeParticipant(req.PersonalInfo),
		Status:      statusPending,
		CreatedAt:   s.nowFunc().UTC(),
	}
	if err := s.store.Insert(ctx, resp); err != nil {
		return fmt.Errorf("persist mobile response: %w", err)
	}

	if err := s.tokens.Consume(ctx, tok.ID); err != nil {
		if errors.Is(err, token.ErrTokenAlreadyUsed) {
			logger.Log.WithField("token_id", tok.ID).Warn("token consumed concurrently, keeping submission")
		} else {
			logger.Log.WithError(err).WithField("token_id", tok.ID).Error("failed to consume token after durable insert")
		}
	} else {
		s.publish(ctx, models.EventTokenConsumed, map[string]interface{}{
			"token_id":    tok.ID.String(),
			"feedback_id": resp.ID.String(),
		})
	}

	metrics.IncMobileSubmissions()
	s.publish(ctx, models.EventFeedbackSubmitted, map[string]interface{}{
		"feedback_id": resp.ID.String(),
		"channel":     string(models.ChannelQR),
	})
	return nil
}

func sanitizeParticipant(p *models.Participant) *models.Participant {
	if p == nil {
		return nil
	}
	if p.Name == "" && p.Phone == "" {
		return nil
	}
	copied := *p
	return &copied
}

// publish is best-effort: dashboard freshness is not worth failing a
// submission over.
func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, eventType, "survey-service", data); err != nil {
		logger.Log.WithError(err).WithField("event_type", eventType).Warn("failed to publish event")
	}
}
