// Package surveys implements the survey definition domain for Verity.
// It provides the question catalog, display condition evaluation, and
// the effective-question calculation consumed by completion metrics and
// the verification workflow.
package surveys

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Interview modes.
const (
	ModeCAPI   = "capi"
	ModeCATI   = "cati"
	ModeOnline = "online"
)

// Role identifies the canonical demographic purpose of a question.
// Roles are assigned at survey-definition time so downstream consumers
// never have to locate demographic questions by text matching.
type Role string

// Canonical demographic roles.
const (
	RoleName   Role = "name"
	RoleAge    Role = "age"
	RoleGender Role = "gender"
)

// Option is one selectable choice on a question. Value is the internal
// stored form; Label is the text shown to respondents.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// DisplayCondition gates a question's visibility on a previously collected answer.
// Combinator is retained from the authoring format but unused: condition sets
// are always evaluated as a conjunction.
type DisplayCondition struct {
	TargetQuestion string   `json:"target_question"`
	Operator       Operator `json:"operator"`
	Value          string   `json:"value,omitempty"`
	Combinator     string   `json:"combinator,omitempty"`
}

// Question is a single survey question definition.
type Question struct {
	ID          string             `json:"id"`
	Text        string             `json:"text"`
	Description string             `json:"description,omitempty"`
	Type        string             `json:"type"`
	Options     []Option           `json:"options,omitempty"`
	Conditions  []DisplayCondition `json:"display_conditions,omitempty"`
	Role        Role               `json:"role,omitempty"`
}

// Survey is a stored survey definition.
type Survey struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Mode      string     `json:"mode"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Catalog indexes a survey's questions for lookup by identifier or text,
// with the role table resolved once at construction.
type Catalog struct {
	questions []Question
	byID      map[string]int
	byText    map[string]int
	roles     map[Role]string
}

// NewCatalog builds a Catalog from the given question definitions.
func NewCatalog(questions []Question) *Catalog {
	c := &Catalog{
		questions: questions,
		byID:      make(map[string]int, len(questions)),
		byText:    make(map[string]int, len(questions)),
		roles:     make(map[Role]string),
	}
	for i, q := range questions {
		if q.ID != "" {
			c.byID[q.ID] = i
		}
		if q.Text != "" {
			c.byText[fold(q.Text)] = i
		}
		if q.Role != "" {
			if _, taken := c.roles[q.Role]; !taken {
				c.roles[q.Role] = q.ID
			}
		}
	}
	return c
}

// Catalog returns the survey's question catalog.
func (s *Survey) Catalog() *Catalog {
	return NewCatalog(s.Questions)
}

// Find returns the question matching the given identifier or text, or nil.
func (c *Catalog) Find(target string) *Question {
	if i, ok := c.byID[target]; ok {
		return &c.questions[i]
	}
	if i, ok := c.byText[fold(target)]; ok {
		return &c.questions[i]
	}
	return nil
}

// RoleQuestion returns the identifier of the question fulfilling the given role.
func (c *Catalog) RoleQuestion(role Role) (string, bool) {
	id, ok := c.roles[role]
	return id, ok
}

// Questions returns the catalog's question definitions.
func (c *Catalog) Questions() []Question {
	return c.questions
}

// AnswerValue holds a raw answer as an ordered list of scalars.
// Scalar answers occupy a single element. JSON input may be a bare
// string, a number, a boolean, or an array of those.
type AnswerValue []string

// UnmarshalJSON accepts a scalar or an array of scalars.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = flattenValue(raw)
	return nil
}

func flattenValue(raw any) []string {
	switch t := raw.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case float64:
		return []string{strconv.FormatFloat(t, 'f', -1, 64)}
	case bool:
		return []string{strconv.FormatBool(t)}
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			out = append(out, flattenValue(el)...)
		}
		return out
	default:
		b, _ := json.Marshal(t)
		return []string{string(b)}
	}
}

// AnswerRecord is one collected answer within a survey response.
// Records are immutable once stored; evaluation only derives booleans from them.
type AnswerRecord struct {
	QuestionID  string      `json:"question_id,omitempty"`
	Question    string      `json:"question"`
	Description string      `json:"description,omitempty"`
	Value       AnswerValue `json:"value,omitempty"`
	Skipped     bool        `json:"skipped"`
	LatencyMS   int         `json:"latency_ms,omitempty"`
}

// Empty reports whether the answer holds no usable value.
func (a AnswerRecord) Empty() bool {
	for _, el := range a.Value {
		if strings.TrimSpace(el) != "" {
			return false
		}
	}
	return true
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
