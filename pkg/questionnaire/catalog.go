package questionnaire

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Question keys shared by the validator, the aggregator, and the stored
// answer payloads.
const (
	QuestionExperience  = "q1_experience"
	QuestionIntent      = "q2_experience_intent"
	QuestionCleanliness = "q3_cleanliness_satisfaction"
	QuestionReason      = "q4_reason"
	QuestionComparison  = "q6_comparison"
	QuestionFrequency   = "q7_frequency"
	ReasonOther         = "other"
)

type Option struct {
	Label string `yaml:"label" json:"label"`
	Score int    `yaml:"score,omitempty" json:"score,omitempty"`
}

type Question struct {
	Prompt  string            `yaml:"prompt" json:"prompt"`
	Options map[string]Option `yaml:"options" json:"options"`
}

// Catalog is the closed set of fixed-choice questions and their options.
// Unknown option values are rejected at the boundary; the catalog is the
// single source of truth for membership and the cleanliness ordinal scale.
type Catalog struct {
	Questions map[string]Question `yaml:"questions" json:"questions"`
}

// Load reads a catalog override from path. Every failure mode returns the
// built-in catalog alongside the error so intake keeps validating.
func Load(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := ioutil.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return DefaultCatalog(), err
	}
	if len(cat.Questions) == 0 {
		return DefaultCatalog(), fmt.Errorf("question catalog empty")
	}
	return cat, nil
}

// HasOption reports whether value is a valid choice for the given question.
func (c Catalog) HasOption(question, value string) bool {
	q, ok := c.Questions[question]
	if !ok {
		return false
	}
	_, ok = q.Options[value]
	return ok
}

// Score returns the ordinal score mapped to an option, for scored questions.
func (c Catalog) Score(question, value string) (int, bool) {
	q, ok := c.Questions[question]
	if !ok {
		return 0, false
	}
	opt, ok := q.Options[value]
	if !ok || opt.Score == 0 {
		return 0, false
	}
	return opt.Score, true
}

// Options returns the option keys of a question; nil when unknown.
func (c Catalog) Options(question string) map[string]Option {
	q, ok := c.Questions[question]
	if !ok {
		return nil
	}
	return q.Options
}

// DefaultCatalog is the compiled-in questionnaire. The cleanliness scale is
// deliberately non-monotonic: "not sure" scores below "worse" per the survey
// design.
func DefaultCatalog() Catalog {
	return Catalog{Questions: map[string]Question{
		QuestionExperience: {
			Prompt: "Have you used the reporting kiosk before?",
			Options: map[string]Option{
				"used":                {Label: "Used it"},
				"knew_no_opportunity": {Label: "Knew about it, no occasion to use it"},
				"knew_not_used":       {Label: "Knew about it, chose not to use it"},
				"saw_unknown":         {Label: "Saw it, purpose unclear"},
			},
		},
		QuestionIntent: {
			Prompt: "How was the experience, and would you use it again?",
			Options: map[string]Option{
				"used_helpful_will_use": {Label: "Helpful, will keep using it"},
				"used_not_enough":       {Label: "Fell short of expectations"},
				"not_used_will_try":     {Label: "Not used yet, willing to try"},
				"not_used_no_need":      {Label: "No need felt"},
			},
		},
		QuestionCleanliness: {
			Prompt: "Compared to before, how is facility cleanliness?",
			Options: map[string]Option{
				"much_better":     {Label: "Much more pleasant", Score: 5},
				"somewhat_better": {Label: "Somewhat better", Score: 4},
				"no_difference":   {Label: "About the same", Score: 3},
				"not_sure":        {Label: "Not sure", Score: 1},
				"worse":           {Label: "Got worse", Score: 2},
			},
		},
		QuestionReason: {
			Prompt: "What stood out about the reporting service?",
			Options: map[string]Option{
				"can_report_directly": {Label: "Can report issues directly"},
				"no_direct_contact":   {Label: "Contact-free handling"},
				"can_check_result":    {Label: "Can check the outcome"},
				"actually_improved":   {Label: "Noticed real improvement"},
				"slow_response":       {Label: "Slow response, no visible change"},
				"confusing_location":  {Label: "Confusing location or usage"},
				ReasonOther:           {Label: "Other"},
			},
		},
		QuestionComparison: {
			Prompt: "Compared to calling or visiting the office, this service is…",
			Options: map[string]Option{
				"much_better": {Label: "Much better"},
				"similar":     {Label: "About the same"},
				"worse":       {Label: "Actually less convenient"},
			},
		},
		QuestionFrequency: {
			Prompt: "How often do you visit this facility?",
			Options: map[string]Option{
				"daily":      {Label: "Every day"},
				"weekly":     {Label: "1-2 times a week"},
				"monthly":    {Label: "1-2 times a month"},
				"first_time": {Label: "First visit"},
			},
		},
	}}
}
