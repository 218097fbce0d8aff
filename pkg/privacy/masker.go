package privacy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/civicpulse/feedback-platform/pkg/common/models"
)

// Masker redacts contact information from administrator-facing listings.
// Presentation-layer masking only; stored rows are untouched.
type Masker struct {
	patterns []maskPattern
}

type maskPattern struct {
	rule    Rule
	pattern *regexp.Regexp
}

func NewMasker(cfg RulesConfig) (*Masker, error) {
	patterns := make([]maskPattern, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		if !rule.Enabled {
			continue
		}
		compiled, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile rule %s: %w", rule.Name, err)
		}
		patterns = append(patterns, maskPattern{rule: rule, pattern: compiled})
	}
	return &Masker{patterns: patterns}, nil
}

// MaskString replaces every rule match in free text.
func (m *Masker) MaskString(s string) string {
	for _, p := range m.patterns {
		s = p.pattern.ReplaceAllString(s, p.rule.Mask)
	}
	return s
}

// MaskResponse returns a copy with participant contact info and free-text
// answers scrubbed. Free text is scrubbed because respondents occasionally
// write their own phone number into the story field.
func (m *Masker) MaskResponse(resp models.SurveyResponse) models.SurveyResponse {
	if resp.Participant != nil {
		participant := *resp.Participant
		participant.Name = maskName(participant.Name)
		participant.Phone = m.MaskString(participant.Phone)
		resp.Participant = &participant
	}
	if resp.QRAnswers != nil {
		answers := *resp.QRAnswers
		answers.Q5ExperienceStory = m.MaskString(answers.Q5ExperienceStory)
		answers.Q4ReasonOther = m.MaskString(answers.Q4ReasonOther)
		resp.QRAnswers = &answers
	}
	return resp
}

// maskName keeps the first rune so entries stay distinguishable in the list.
func maskName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return name
	}
	runes := []rune(trimmed)
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}
