// Package responses implements the survey response domain for Verity.
// It provides types, data access, and status transitions for completed
// interview instances awaiting quality verification.
package responses

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldscope/verity/internal/surveys"
)

// Verification statuses. A response is created pending and transitions
// exactly once to approved or rejected by a verification submission.
const (
	StatusPending  = "pending_approval"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Response represents one completed or in-progress interview instance.
type Response struct {
	ID              uuid.UUID              `json:"id"`
	SurveyID        uuid.UUID              `json:"survey_id"`
	Mode            string                 `json:"mode"`
	Answers         []surveys.AnswerRecord `json:"answers"`
	DurationSeconds int                    `json:"duration_seconds"`
	Status          string                 `json:"status"`
	AudioRef        *string                `json:"audio_ref,omitempty"`
	CallID          *string                `json:"call_id,omitempty"`
	Phone           *string                `json:"phone,omitempty"`
	Gender          *string                `json:"gender,omitempty"`
	Age             *int                   `json:"age,omitempty"`
	Interviewer     string                 `json:"interviewer"`
	SubmittedAt     time.Time              `json:"submitted_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// CreateCommand carries the data needed to register a finished interview.
type CreateCommand struct {
	SurveyID        uuid.UUID              `json:"survey_id"`
	Mode            string                 `json:"mode"`
	Answers         []surveys.AnswerRecord `json:"answers"`
	DurationSeconds int                    `json:"duration_seconds"`
	AudioRef        *string                `json:"audio_ref,omitempty"`
	CallID          *string                `json:"call_id,omitempty"`
	Phone           *string                `json:"phone,omitempty"`
	Gender          *string                `json:"gender,omitempty"`
	Age             *int                   `json:"age,omitempty"`
	Interviewer     string                 `json:"interviewer"`
}

// EffectiveQuestions returns the denominator for completion metrics:
// the number of answers whose questions the respondent genuinely reached.
func (r *Response) EffectiveQuestions(catalog *surveys.Catalog) int {
	return surveys.EffectiveCount(r.Answers, catalog)
}

// CompletionPercent returns the share of effective questions that were
// actually answered, in the range 0-100.
func (r *Response) CompletionPercent(catalog *surveys.Catalog) float64 {
	effective := r.EffectiveQuestions(catalog)
	if effective == 0 {
		return 0
	}

	answered := 0
	for _, a := range r.Answers {
		if !a.Skipped {
			answered++
		}
	}

	return float64(answered) / float64(effective) * 100
}
