package privacy

import (
	"testing"

	"github.com/civicpulse/feedback-platform/pkg/common/models"
)

func TestMaskString(t *testing.T) {
	m, err := NewMasker(DefaultRules())
	if err != nil {
		t.Fatalf("NewMasker: %v", err)
	}

	cases := []struct {
		in   string
		want string
	}{
		{"call me at 010-1234-5678 please", "call me at ***-****-**** please"},
		{"reach 01012345678 anytime", "reach *********** anytime"},
		{"mail kim@example.com", "mail ***@***"},
		{"no contact info here", "no contact info here"},
	}
	for _, tc := range cases {
		if got := m.MaskString(tc.in); got != tc.want {
			t.Errorf("MaskString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMaskStringIdempotent(t *testing.T) {
	m, err := NewMasker(DefaultRules())
	if err != nil {
		t.Fatalf("NewMasker: %v", err)
	}
	once := m.MaskString("010-1234-5678")
	if twice := m.MaskString(once); twice != once {
		t.Errorf("masking not idempotent: %q then %q", once, twice)
	}
}

func TestMaskResponse(t *testing.T) {
	m, err := NewMasker(DefaultRules())
	if err != nil {
		t.Fatalf("NewMasker: %v", err)
	}

	resp := models.SurveyResponse{
		Participant: &models.Participant{Name: "Kim Minjun", Phone: "010-1234-5678", Consent: true},
		QRAnswers: &models.MobileAnswers{
			Q5ExperienceStory: "Great service, my number is 010-1234-5678 if you want details",
			Q4ReasonOther:     "texted 01099998888 once",
		},
	}

	masked := m.MaskResponse(resp)

	if masked.Participant.Name == "Kim Minjun" {
		t.Error("name not masked")
	}
	if masked.Participant.Name[0] != 'K' {
		t.Errorf("first rune should survive, got %q", masked.Participant.Name)
	}
	if masked.Participant.Phone != "***-****-****" {
		t.Errorf("phone = %q", masked.Participant.Phone)
	}
	if masked.QRAnswers.Q5ExperienceStory == resp.QRAnswers.Q5ExperienceStory {
		t.Error("free text not scrubbed")
	}
	if masked.QRAnswers.Q4ReasonOther == resp.QRAnswers.Q4ReasonOther {
		t.Error("other-reason text not scrubbed")
	}

	// Original must be untouched.
	if resp.Participant.Phone != "010-1234-5678" {
		t.Error("masking mutated the source row")
	}
}

func TestMaskResponseWithoutParticipant(t *testing.T) {
	m, err := NewMasker(DefaultRules())
	if err != nil {
		t.Fatalf("NewMasker: %v", err)
	}
	masked := m.MaskResponse(models.SurveyResponse{})
	if masked.Participant != nil || masked.QRAnswers != nil {
		t.Error("empty response should pass through unchanged")
	}
}

func TestLoadRulesDefaults(t *testing.T) {
	cfg, err := LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(cfg.Rules) == 0 {
		t.Fatal("default rules empty")
	}
}
