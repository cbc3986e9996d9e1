package responses

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fieldscope/verity/internal/surveys"
	"github.com/fieldscope/verity/pkg/query"
	"github.com/fieldscope/verity/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "survey_responses", "r").
	Project("id", "ID").
	Project("survey_id", "SurveyID").
	Project("mode", "Mode").
	Project("answers", "Answers").
	Project("duration_seconds", "DurationSeconds").
	Project("status", "Status").
	Project("audio_ref", "AudioRef").
	Project("call_id", "CallID").
	Project("phone", "Phone").
	Project("gender", "Gender").
	Project("age", "Age").
	Project("interviewer", "Interviewer").
	Project("submitted_at", "SubmittedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "SubmittedAt",
	Descending: false,
}

// Filters contains optional filtering criteria for response queries.
// Nil fields are ignored. MinAge and MaxAge bound the respondent age bracket.
type Filters struct {
	SurveyID *string `json:"survey_id,omitempty"`
	Status   *string `json:"status,omitempty"`
	Mode     *string `json:"mode,omitempty"`
	Gender   *string `json:"gender,omitempty"`
	MinAge   *int    `json:"min_age,omitempty"`
	MaxAge   *int    `json:"max_age,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("SurveyID", f.SurveyID).
		WhereEquals("Status", f.Status).
		WhereEquals("Mode", f.Mode).
		WhereEquals("Gender", f.Gender).
		WhereAtLeast("Age", f.MinAge).
		WhereAtMost("Age", f.MaxAge)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("survey_id"); s != "" {
		f.SurveyID = &s
	}

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if m := values.Get("mode"); m != "" {
		f.Mode = &m
	}

	if g := values.Get("gender"); g != "" {
		f.Gender = &g
	}

	if a := values.Get("min_age"); a != "" {
		if v, err := strconv.Atoi(a); err == nil {
			f.MinAge = &v
		}
	}

	if a := values.Get("max_age"); a != "" {
		if v, err := strconv.Atoi(a); err == nil {
			f.MaxAge = &v
		}
	}

	return f
}

func scanResponse(s repository.Scanner) (Response, error) {
	var (
		r       Response
		answers []byte
	)
	if err := s.Scan(
		&r.ID,
		&r.SurveyID,
		&r.Mode,
		&answers,
		&r.DurationSeconds,
		&r.Status,
		&r.AudioRef,
		&r.CallID,
		&r.Phone,
		&r.Gender,
		&r.Age,
		&r.Interviewer,
		&r.SubmittedAt,
		&r.UpdatedAt,
	); err != nil {
		return r, err
	}

	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &r.Answers); err != nil {
			return r, fmt.Errorf("decode response answers: %w", err)
		}
	}
	if r.Answers == nil {
		r.Answers = []surveys.AnswerRecord{}
	}

	return r, nil
}
