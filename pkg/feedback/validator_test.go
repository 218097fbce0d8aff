package feedback

import (
	"errors"
	"testing"

	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/civicpulse/feedback-platform/pkg/questionnaire"
)

func validBaseline() models.KioskAnswers {
	return models.KioskAnswers{
		Q1Experience:              "used",
		Q2ExperienceIntent:        "used_helpful_will_use",
		Q3CleanlinessSatisfaction: "much_better",
	}
}

func validMobile() models.MobileAnswers {
	return models.MobileAnswers{
		KioskAnswers: validBaseline(),
		Q4Reason:     []string{"can_report_directly", "can_check_result"},
		Q6Comparison: "much_better",
	}
}

func TestValidateKiosk(t *testing.T) {
	v := NewValidator(questionnaire.DefaultCatalog())

	cases := []struct {
		name    string
		mutate  func(*models.KioskAnswers)
		wantErr bool
	}{
		{"valid", func(a *models.KioskAnswers) {}, false},
		{"missing q1", func(a *models.KioskAnswers) { a.Q1Experience = "" }, true},
		{"missing q2", func(a *models.KioskAnswers) { a.Q2ExperienceIntent = "" }, true},
		{"missing q3", func(a *models.KioskAnswers) { a.Q3CleanlinessSatisfaction = "" }, true},
		{"unknown q1 value", func(a *models.KioskAnswers) { a.Q1Experience = "teleported" }, true},
		{"unknown q3 value", func(a *models.KioskAnswers) { a.Q3CleanlinessSatisfaction = "5" }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			answers := validBaseline()
			tc.mutate(&answers)
			err := v.ValidateKiosk(answers)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("err = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateMobile(t *testing.T) {
	v := NewValidator(questionnaire.DefaultCatalog())

	cases := []struct {
		name            string
		mutate          func(*models.MobileAnswers)
		requireBaseline bool
		wantErr         bool
	}{
		{"valid with baseline", func(a *models.MobileAnswers) {}, true, false},
		{"valid without baseline", func(a *models.MobileAnswers) { a.KioskAnswers = models.KioskAnswers{} }, false, false},
		{"baseline required but empty", func(a *models.MobileAnswers) { a.KioskAnswers = models.KioskAnswers{} }, true, true},
		{"q4 empty", func(a *models.MobileAnswers) { a.Q4Reason = nil }, true, true},
		{"q4 unknown value", func(a *models.MobileAnswers) { a.Q4Reason = []string{"telepathy"} }, true, true},
		{"q4 duplicate", func(a *models.MobileAnswers) { a.Q4Reason = []string{"can_check_result", "can_check_result"} }, true, true},
		{"other without elaboration", func(a *models.MobileAnswers) { a.Q4Reason = []string{"other"} }, true, true},
		{"other with elaboration", func(a *models.MobileAnswers) {
			a.Q4Reason = []string{"other"}
			a.Q4ReasonOther = "kiosk screen too dim"
		}, true, false},
		{"q6 missing", func(a *models.MobileAnswers) { a.Q6Comparison = "" }, true, true},
		{"q6 unknown", func(a *models.MobileAnswers) { a.Q6Comparison = "incomparable" }, true, true},
		{"q7 optional", func(a *models.MobileAnswers) { a.Q7Frequency = "" }, true, false},
		{"q7 known value", func(a *models.MobileAnswers) { a.Q7Frequency = "weekly" }, true, false},
		{"q7 unknown value", func(a *models.MobileAnswers) { a.Q7Frequency = "hourly" }, true, true},
		{"partial baseline still validated", func(a *models.MobileAnswers) {
			a.KioskAnswers = models.KioskAnswers{Q1Experience: "bogus"}
		}, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			answers := validMobile()
			tc.mutate(&answers)
			err := v.ValidateMobile(answers, tc.requireBaseline)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("err = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateParticipant(t *testing.T) {
	v := NewValidator(questionnaire.DefaultCatalog())

	if err := v.ValidateParticipant(nil); err != nil {
		t.Fatalf("nil participant: %v", err)
	}
	if err := v.ValidateParticipant(&models.Participant{}); err != nil {
		t.Fatalf("empty participant: %v", err)
	}
	err := v.ValidateParticipant(&models.Participant{Name: "Kim", Phone: "010-1234-5678"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("contact without consent = %v, want ErrInvalidInput", err)
	}
	if err := v.ValidateParticipant(&models.Participant{Name: "Kim", Phone: "010-1234-5678", Consent: true}); err != nil {
		t.Fatalf("consented participant: %v", err)
	}
}
