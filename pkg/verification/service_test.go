package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/civicpulse/feedback-platform/pkg/common/logger"
	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/civicpulse/feedback-platform/pkg/token"
	"github.com/google/uuid"
)

func TestMain(m *testing.M) {
	logger.Init("test")
	m.Run()
}

type fakeResolver struct {
	tokens map[string]models.LinkingToken
}

func (f *fakeResolver) Resolve(ctx context.Context, value string) (models.LinkingToken, error) {
	tok, ok := f.tokens[value]
	if !ok {
		return models.LinkingToken{}, token.ErrTokenNotFound
	}
	return tok, nil
}

type fakeLoader struct {
	responses map[uuid.UUID]models.SurveyResponse
	err       error
}

func (f *fakeLoader) GetByID(ctx context.Context, id uuid.UUID) (models.SurveyResponse, error) {
	if f.err != nil {
		return models.SurveyResponse{}, f.err
	}
	resp, ok := f.responses[id]
	if !ok {
		return models.SurveyResponse{}, errors.New("not found")
	}
	return resp, nil
}

func newTestService(tokens map[string]models.LinkingToken, loader *fakeLoader, now time.Time) *Service {
	svc := NewService(&fakeResolver{tokens: tokens}, loader)
	svc.nowFunc = func() time.Time { return now }
	return svc
}

func TestVerifyUnknownToken(t *testing.T) {
	svc := newTestService(nil, &fakeLoader{}, time.Now())
	if _, err := svc.Verify(context.Background(), "missing"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Verify = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := map[string]models.LinkingToken{
		"t1": {ID: uuid.New(), Value: "t1", ExpiresAt: now},
	}
	svc := newTestService(tokens, &fakeLoader{}, now)

	if _, err := svc.Verify(context.Background(), "t1"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Verify = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyExpiryWinsOverUsed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := map[string]models.LinkingToken{
		"t1": {ID: uuid.New(), Value: "t1", ExpiresAt: now.Add(-time.Hour), Used: true},
	}
	svc := newTestService(tokens, &fakeLoader{}, now)

	if _, err := svc.Verify(context.Background(), "t1"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Verify = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyUsedToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := map[string]models.LinkingToken{
		"t1": {ID: uuid.New(), Value: "t1", ExpiresAt: now.Add(time.Hour), Used: true},
	}
	svc := newTestService(tokens, &fakeLoader{}, now)

	if _, err := svc.Verify(context.Background(), "t1"); !errors.Is(err, ErrTokenUsed) {
		t.Fatalf("Verify = %v, want ErrTokenUsed", err)
	}
}

func TestVerifyStandaloneToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := map[string]models.LinkingToken{
		"t1": {ID: uuid.New(), Value: "t1", ExpiresAt: now.Add(time.Hour)},
	}
	svc := newTestService(tokens, &fakeLoader{}, now)

	result, err := svc.Verify(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !result.Usable || result.HasPriorAnswers || result.PriorAnswers != nil {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestVerifyLinkedTokenCarriesAnswers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	feedbackID := uuid.New()
	tokens := map[string]models.LinkingToken{
		"t1": {ID: uuid.New(), Value: "t1", TabletFeedbackID: &feedbackID, ExpiresAt: now.Add(time.Hour)},
	}
	answers := models.KioskAnswers{
		Q1Experience:              "used",
		Q2ExperienceIntent:        "used_helpful_will_use",
		Q3CleanlinessSatisfaction: "much_better",
	}
	loader := &fakeLoader{responses: map[uuid.UUID]models.SurveyResponse{
		feedbackID: {ID: feedbackID, Channel: models.ChannelTablet, TabletAnswers: &answers},
	}}
	svc := newTestService(tokens, loader, now)

	result, err := svc.Verify(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !result.Usable || !result.HasPriorAnswers {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.PriorAnswers == nil || result.PriorAnswers.Q1Experience != "used" {
		t.Errorf("prior answers not carried: %+v", result.PriorAnswers)
	}
}

func TestVerifyDegradesWhenLinkedResponseUnreadable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	feedbackID := uuid.New()
	tokens := map[string]models.LinkingToken{
		"t1": {ID: uuid.New(), Value: "t1", TabletFeedbackID: &feedbackID, ExpiresAt: now.Add(time.Hour)},
	}
	loader := &fakeLoader{err: errors.New("connection reset")}
	svc := newTestService(tokens, loader, now)

	result, err := svc.Verify(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Verify should not fail on loader error, got %v", err)
	}
	if !result.Usable || !result.HasPriorAnswers {
		t.Errorf("existence must still be reported: %+v", result)
	}
	if result.PriorAnswers != nil {
		t.Error("answers must not be fabricated when unreadable")
	}
}
