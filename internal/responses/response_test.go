package responses_test

import (
	"net/url"
	"testing"

	"github.com/fieldscope/verity/internal/responses"
	"github.com/fieldscope/verity/internal/surveys"
)

func completionCatalog() *surveys.Catalog {
	return surveys.NewCatalog([]surveys.Question{
		{
			ID:   "q_registered",
			Text: "Are you registered to vote?",
			Type: "choice",
			Options: []surveys.Option{
				{Value: "1", Label: "Yes"},
				{Value: "2", Label: "No"},
			},
		},
		{
			ID:   "q_polling",
			Text: "Which polling station will you use?",
			Type: "text",
			Conditions: []surveys.DisplayCondition{
				{TargetQuestion: "q_registered", Operator: surveys.OpEquals, Value: "1"},
			},
		},
		{
			ID:   "q_city",
			Text: "Which city do you live in?",
			Type: "text",
		},
	})
}

func TestCompletionPercent(t *testing.T) {
	catalog := completionCatalog()

	tests := []struct {
		name    string
		answers []surveys.AnswerRecord
		want    float64
	}{
		{
			name: "all answered",
			answers: []surveys.AnswerRecord{
				{QuestionID: "q_registered", Value: surveys.AnswerValue{"1"}},
				{QuestionID: "q_polling", Value: surveys.AnswerValue{"Central"}},
				{QuestionID: "q_city", Value: surveys.AnswerValue{"Springfield"}},
			},
			want: 100,
		},
		{
			name: "artifact skip excluded from the denominator",
			answers: []surveys.AnswerRecord{
				{QuestionID: "q_registered", Value: surveys.AnswerValue{"2"}},
				{QuestionID: "q_polling", Skipped: true},
				{QuestionID: "q_city", Value: surveys.AnswerValue{"Springfield"}},
			},
			want: 100,
		},
		{
			name: "genuine skip lowers completion",
			answers: []surveys.AnswerRecord{
				{QuestionID: "q_registered", Value: surveys.AnswerValue{"1"}},
				{QuestionID: "q_polling", Skipped: true},
				{QuestionID: "q_city", Value: surveys.AnswerValue{"Springfield"}},
			},
			want: float64(2) / 3 * 100,
		},
		{
			name:    "no answers",
			answers: nil,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := responses.Response{Answers: tt.answers}
			if got := r.CompletionPercent(catalog); got != tt.want {
				t.Errorf("CompletionPercent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("mode", "cati")
	values.Set("status", responses.StatusPending)
	values.Set("min_age", "18")
	values.Set("max_age", "not-a-number")

	f := responses.FiltersFromQuery(values)

	if f.Mode == nil || *f.Mode != "cati" {
		t.Errorf("Mode = %v, want cati", f.Mode)
	}
	if f.Status == nil || *f.Status != responses.StatusPending {
		t.Errorf("Status = %v, want %s", f.Status, responses.StatusPending)
	}
	if f.MinAge == nil || *f.MinAge != 18 {
		t.Errorf("MinAge = %v, want 18", f.MinAge)
	}
	if f.MaxAge != nil {
		t.Error("unparseable max_age should be ignored")
	}
	if f.SurveyID != nil || f.Gender != nil {
		t.Error("absent parameters should stay nil")
	}
}
