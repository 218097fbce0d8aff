package models

import (
	"time"

	"github.com/google/uuid"
)

// Channel identifies which entry point produced a survey response.
type Channel string

const (
	ChannelTablet Channel = "tablet" // on-site kiosk station
	ChannelQR     Channel = "qr"     // follow-up mobile survey reached via scanned code
)

func (c Channel) Valid() bool {
	return c == ChannelTablet || c == ChannelQR
}

// KioskAnswers holds the three baseline fixed-choice questions asked at the
// kiosk. The same three questions are re-asked on mobile only when no kiosk
// response is linked.
type KioskAnswers struct {
	Q1Experience              string `json:"q1_experience,omitempty"`
	Q2ExperienceIntent        string `json:"q2_experience_intent,omitempty"`
	Q3CleanlinessSatisfaction string `json:"q3_cleanliness_satisfaction,omitempty"`
}

func (a KioskAnswers) Empty() bool {
	return a.Q1Experience == "" && a.Q2ExperienceIntent == "" && a.Q3CleanlinessSatisfaction == ""
}

// MobileAnswers holds the deeper follow-up questions. The embedded baseline
// fields are populated only when the visitor skipped the kiosk.
type MobileAnswers struct {
	KioskAnswers
	Q4Reason          []string `json:"q4_reason,omitempty"`
	Q4ReasonOther     string   `json:"q4_reason_other,omitempty"`
	Q5ExperienceStory string   `json:"q5_experience_story,omitempty"`
	Q6Comparison      string   `json:"q6_comparison,omitempty"`
	Q7Frequency       string   `json:"q7_frequency,omitempty"`
}

// Participant is the optional prize-drawing contact payload. Stored only with
// explicit consent.
type Participant struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Consent bool   `json:"consent"`
}

// LinkingToken is the short-lived single-use credential connecting a mobile
// session to an optional prior kiosk response.
type LinkingToken struct {
	ID               uuid.UUID  `json:"id"`
	Value            string     `json:"token"`
	TabletFeedbackID *uuid.UUID `json:"tablet_feedback_id,omitempty"`
	ExpiresAt        time.Time  `json:"expires_at"`
	Used             bool       `json:"used"`
	UsedAt           *time.Time `json:"used_at,omitempty"`
}

// UsableAt reports whether the token can still be redeemed at the given
// instant: not expired and never consumed.
func (t LinkingToken) UsableAt(now time.Time) bool {
	return now.Before(t.ExpiresAt) && !t.Used
}

// IssuedToken is the external-facing shape returned to the kiosk for display:
// the opaque value plus the shareable survey URL embedding it.
type IssuedToken struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SurveyResponse is one submitted survey record, partitioned by channel.
type SurveyResponse struct {
	ID            uuid.UUID      `json:"id"`
	Channel       Channel        `json:"type"`
	TabletAnswers *KioskAnswers  `json:"tablet_responses,omitempty"`
	QRAnswers     *MobileAnswers `json:"qr_responses,omitempty"`
	TokenID       *uuid.UUID     `json:"token_id,omitempty"`
	Participant   *Participant   `json:"participant,omitempty"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ResponseFilter narrows listings and aggregations. Start is inclusive, End
// exclusive.
type ResponseFilter struct {
	Channel *Channel   `json:"type,omitempty"`
	Start   *time.Time `json:"start,omitempty"`
	End     *time.Time `json:"end,omitempty"`
}

// API shapes

type KioskSubmissionRequest struct {
	Responses  KioskAnswers `json:"responses"`
	GenerateQR bool         `json:"generate_qr"`
}

type KioskSubmissionResponse struct {
	FeedbackID uuid.UUID    `json:"feedback_id"`
	QRToken    *IssuedToken `json:"qr_token,omitempty"`
}

type MobileSubmissionRequest struct {
	Token        string        `json:"token"`
	Responses    MobileAnswers `json:"responses"`
	PersonalInfo *Participant  `json:"personal_info,omitempty"`
}

// VerificationResult reports token usability plus whether kiosk answers are
// already linked. HasPriorAnswers may be true while PriorAnswers is nil when
// the linked record exists but cannot be read; the boolean alone drives
// question skipping downstream.
type VerificationResult struct {
	Usable          bool          `json:"is_valid"`
	HasPriorAnswers bool          `json:"has_tablet_response"`
	PriorAnswers    *KioskAnswers `json:"tablet_responses,omitempty"`
}

// Stats

type CleanlinessStats struct {
	Average      string         `json:"average"`
	Distribution map[string]int `json:"distribution"`
}

type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

type StatsSummary struct {
	TotalFeedbacks int              `json:"total_feedbacks"`
	TodayFeedbacks int              `json:"today_feedbacks"`
	Q1Experience   map[string]int   `json:"q1_experience"`
	Q2Intent       map[string]int   `json:"q2_intent"`
	Q3Cleanliness  CleanlinessStats `json:"q3_cleanliness"`
	Q4Reasons      map[string]int   `json:"q4_reasons"`
	Q6Comparison   map[string]int   `json:"q6_comparison"`
	Q7Frequency    map[string]int   `json:"q7_frequency"`
	Keywords       []KeywordCount   `json:"keywords"`
}

// Auth (delegated to the external identity provider)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// Event Bus models

type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // feedback.submitted, token.issued, token.consumed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

const (
	EventFeedbackSubmitted = "feedback.submitted"
	EventTokenIssued       = "token.issued"
	EventTokenConsumed     = "token.consumed"
)
