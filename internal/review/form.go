// Package review implements the verification gating engine for Verity.
// A reviewer holding a lease answers a fixed cascade of up to eight gating
// questions about a response's authenticity; the approve/reject outcome is
// derived from the cascade and persisted exactly once.
package review

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the derived verification result.
type Outcome string

// Verification outcomes.
const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

// GateQuestion identifies one of the eight verification questions.
type GateQuestion string

// The gating questions, in cascade order.
const (
	QAudioStatus   GateQuestion = "audio_status"
	QGenderMatch   GateQuestion = "gender_match"
	QUpcomingVote  GateQuestion = "upcoming_vote_match"
	QAssemblyVote  GateQuestion = "assembly_vote_match"
	QGeneralVote   GateQuestion = "general_vote_match"
	QNameMatch     GateQuestion = "name_match"
	QAgeMatch      GateQuestion = "age_match"
	QPhoneAsked    GateQuestion = "phone_asked"
)

// Form holds one reviewer's gating answers plus free-text feedback. A form
// is constructed per assignment and discarded on release or submission;
// empty strings mark unanswered questions.
type Form struct {
	AudioStatus  string `json:"audio_status,omitempty"`
	GenderMatch  string `json:"gender_match,omitempty"`
	UpcomingVote string `json:"upcoming_vote_match,omitempty"`
	AssemblyVote string `json:"assembly_vote_match,omitempty"`
	GeneralVote  string `json:"general_vote_match,omitempty"`
	NameMatch    string `json:"name_match,omitempty"`
	AgeMatch     string `json:"age_match,omitempty"`
	PhoneAsked   string `json:"phone_asked,omitempty"`
	Feedback     string `json:"feedback,omitempty"`
}

// Answer returns the form's value for the given gating question.
func (f Form) Answer(q GateQuestion) string {
	switch q {
	case QAudioStatus:
		return f.AudioStatus
	case QGenderMatch:
		return f.GenderMatch
	case QUpcomingVote:
		return f.UpcomingVote
	case QAssemblyVote:
		return f.AssemblyVote
	case QGeneralVote:
		return f.GeneralVote
	case QNameMatch:
		return f.NameMatch
	case QAgeMatch:
		return f.AgeMatch
	case QPhoneAsked:
		return f.PhoneAsked
	default:
		return ""
	}
}

// Criteria is the structured gating payload persisted with a verification.
type Criteria struct {
	AudioStatus  string `json:"audio_status"`
	GenderMatch  string `json:"gender_match,omitempty"`
	UpcomingVote string `json:"upcoming_vote_match,omitempty"`
	AssemblyVote string `json:"assembly_vote_match,omitempty"`
	GeneralVote  string `json:"general_vote_match,omitempty"`
	NameMatch    string `json:"name_match,omitempty"`
	AgeMatch     string `json:"age_match,omitempty"`
	PhoneAsked   string `json:"phone_asked,omitempty"`
}

// Criteria extracts the persistable gating payload from the form.
func (f Form) Criteria() Criteria {
	return Criteria{
		AudioStatus:  f.AudioStatus,
		GenderMatch:  f.GenderMatch,
		UpcomingVote: f.UpcomingVote,
		AssemblyVote: f.AssemblyVote,
		GeneralVote:  f.GeneralVote,
		NameMatch:    f.NameMatch,
		AgeMatch:     f.AgeMatch,
		PhoneAsked:   f.PhoneAsked,
	}
}

// Verification is a stored verification result.
type Verification struct {
	ID         uuid.UUID `json:"id"`
	ResponseID uuid.UUID `json:"response_id"`
	Outcome    Outcome   `json:"outcome"`
	Criteria   Criteria  `json:"criteria"`
	Feedback   string    `json:"feedback,omitempty"`
	VerifiedBy string    `json:"verified_by"`
	VerifiedAt time.Time `json:"verified_at"`
}
