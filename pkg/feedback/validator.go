package feedback

import (
	"errors"
	"fmt"
	"strings"

	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/civicpulse/feedback-platform/pkg/questionnaire"
)

// ErrInvalidInput marks validation failures. The wrapped detail names the
// offending field so callers can re-prompt.
var ErrInvalidInput = errors.New("invalid input")

// Validator enforces the closed questionnaire at the boundary: unknown
// enumeration values are rejected instead of stored as opaque strings.
type Validator struct {
	catalog questionnaire.Catalog
}

func NewValidator(catalog questionnaire.Catalog) *Validator {
	return &Validator{catalog: catalog}
}

// ValidateKiosk requires all three baseline fixed-choice answers.
func (v *Validator) ValidateKiosk(answers models.KioskAnswers) error {
	return v.validateBaseline(answers, true)
}

// ValidateMobile checks the follow-up answer set. The baseline questions are
// required exactly when the linking token carries no prior kiosk response.
func (v *Validator) ValidateMobile(answers models.MobileAnswers, requireBaseline bool) error {
	if err := v.validateBaseline(answers.KioskAnswers, requireBaseline); err != nil {
		return err
	}

	if len(answers.Q4Reason) == 0 {
		return fmt.Errorf("%w: %s requires at least one selection", ErrInvalidInput, questionnaire.QuestionReason)
	}
	seen := make(map[string]struct{}, len(answers.Q4Reason))
	for _, reason := range answers.Q4Reason {
		if !v.catalog.HasOption(questionnaire.QuestionReason, reason) {
			return fmt.Errorf("%w: unknown %s value %q", ErrInvalidInput, questionnaire.QuestionReason, reason)
		}
		if _, dup := seen[reason]; dup {
			return fmt.Errorf("%w: duplicate %s value %q", ErrInvalidInput, questionnaire.QuestionReason, reason)
		}
		seen[reason] = struct{}{}
	}
	if _, other := seen[questionnaire.ReasonOther]; other && strings.TrimSpace(answers.Q4ReasonOther) == "" {
		return fmt.Errorf("%w: %s %q requires an elaboration", ErrInvalidInput, questionnaire.QuestionReason, questionnaire.ReasonOther)
	}

	if answers.Q6Comparison == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, questionnaire.QuestionComparison)
	}
	if !v.catalog.HasOption(questionnaire.QuestionComparison, answers.Q6Comparison) {
		return fmt.Errorf("%w: unknown %s value %q", ErrInvalidInput, questionnaire.QuestionComparison, answers.Q6Comparison)
	}

	if answers.Q7Frequency != "" && !v.catalog.HasOption(questionnaire.QuestionFrequency, answers.Q7Frequency) {
		return fmt.Errorf("%w: unknown %s value %q", ErrInvalidInput, questionnaire.QuestionFrequency, answers.Q7Frequency)
	}

	return nil
}

// ValidateParticipant gates prize-drawing contact info on explicit consent.
func (v *Validator) ValidateParticipant(p *models.Participant) error {
	if p == nil {
		return nil
	}
	hasContact := strings.TrimSpace(p.Name) != "" || strings.TrimSpace(p.Phone) != ""
	if hasContact && !p.Consent {
		return fmt.Errorf("%w: contact info requires consent", ErrInvalidInput)
	}
	return nil
}

func (v *Validator) validateBaseline(answers models.KioskAnswers, required bool) error {
	fields := []struct {
		question string
		value    string
	}{
		{questionnaire.QuestionExperience, answers.Q1Experience},
		{questionnaire.QuestionIntent, answers.Q2ExperienceIntent},
		{questionnaire.QuestionCleanliness, answers.Q3CleanlinessSatisfaction},
	}

	for _, field := range fields {
		if field.value == "" {
			if required {
				return fmt.Errorf("%w: %s is required", ErrInvalidInput, field.question)
			}
			continue
		}
		if !v.catalog.HasOption(field.question, field.value) {
			return fmt.Errorf("%w: unknown %s value %q", ErrInvalidInput, field.question, field.value)
		}
	}
	return nil
}
