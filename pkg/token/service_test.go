package token

import (
	"context"
	"testing"
	"time"

	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/google/uuid"
)

type fakeStore struct {
	tokens map[uuid.UUID]models.LinkingToken
}

func newFakeStore() *fakeStore {
	return &fakeStore{tokens: make(map[uuid.UUID]models.LinkingToken)}
}

func (f *fakeStore) Create(ctx context.Context, tok models.LinkingToken) error {
	f.tokens[tok.ID] = tok
	return nil
}

func (f *fakeStore) FindByValue(ctx context.Context, value string) (models.LinkingToken, error) {
	for _, tok := range f.tokens {
		if tok.Value == value {
			return tok, nil
		}
	}
	return models.LinkingToken{}, ErrTokenNotFound
}

func (f *fakeStore) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	tok, ok := f.tokens[id]
	if !ok {
		return ErrTokenNotFound
	}
	if tok.Used {
		return ErrTokenAlreadyUsed
	}
	tok.Used = true
	tok.UsedAt = &at
	f.tokens[id] = tok
	return nil
}

func TestIssueLinksFeedbackAndSetsExpiry(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, 24*time.Hour, "https://feedback.example.org/")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.nowFunc = func() time.Time { return now }

	feedbackID := uuid.New()
	tok, issued, err := svc.Issue(context.Background(), &feedbackID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if tok.TabletFeedbackID == nil || *tok.TabletFeedbackID != feedbackID {
		t.Errorf("token not linked to feedback %s", feedbackID)
	}
	wantExpiry := now.Add(24 * time.Hour)
	if !tok.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("ExpiresAt = %v, want %v", tok.ExpiresAt, wantExpiry)
	}
	if issued.Token != tok.Value {
		t.Errorf("issued value %q != stored value %q", issued.Token, tok.Value)
	}
	wantURL := "https://feedback.example.org/survey?token=" + tok.Value
	if issued.URL != wantURL {
		t.Errorf("URL = %q, want %q", issued.URL, wantURL)
	}
	if _, ok := store.tokens[tok.ID]; !ok {
		t.Error("token not persisted")
	}
}

func TestIssueWithoutLink(t *testing.T) {
	svc := NewService(newFakeStore(), 0, "http://localhost:5173")

	tok, _, err := svc.Issue(context.Background(), nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tok.TabletFeedbackID != nil {
		t.Error("standalone token should carry no feedback link")
	}
	// Zero TTL falls back to the 24h default.
	if remaining := time.Until(tok.ExpiresAt); remaining < 23*time.Hour {
		t.Errorf("expiry too close: %v", remaining)
	}
}

func TestConsumeIsSingleUse(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Hour, "http://localhost:5173")

	tok, _, err := svc.Issue(context.Background(), nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if err := svc.Consume(context.Background(), tok.ID); err != nil {
		t.Fatalf("first Consume: %v", err)
	}
	if err := svc.Consume(context.Background(), tok.ID); err != ErrTokenAlreadyUsed {
		t.Fatalf("second Consume = %v, want ErrTokenAlreadyUsed", err)
	}
}

func TestResolveUnknownValue(t *testing.T) {
	svc := NewService(newFakeStore(), time.Hour, "http://localhost:5173")
	if _, err := svc.Resolve(context.Background(), "no-such-token"); err != ErrTokenNotFound {
		t.Fatalf("Resolve = %v, want ErrTokenNotFound", err)
	}
}

func TestUsableAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok := models.LinkingToken{ExpiresAt: now.Add(time.Hour)}

	if !tok.UsableAt(now) {
		t.Error("fresh token should be usable")
	}
	if tok.UsableAt(now.Add(time.Hour)) {
		t.Error("token at exact expiry should not be usable")
	}
	tok.Used = true
	if tok.UsableAt(now) {
		t.Error("used token should not be usable")
	}
}
