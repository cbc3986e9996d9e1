package surveys

import (
	"strconv"
	"strings"
)

// Operator is a display condition comparison operator.
type Operator string

// Supported display condition operators. is_selected and is_not_selected
// alias equals and not_equals for choice-type questions.
const (
	OpEquals        Operator = "equals"
	OpNotEquals     Operator = "not_equals"
	OpContains      Operator = "contains"
	OpNotContains   Operator = "not_contains"
	OpGreaterThan   Operator = "greater_than"
	OpLessThan      Operator = "less_than"
	OpIsEmpty       Operator = "is_empty"
	OpIsNotEmpty    Operator = "is_not_empty"
	OpIsSelected    Operator = "is_selected"
	OpIsNotSelected Operator = "is_not_selected"
)

// noValueSentinel marks a condition authored without a comparison value.
const noValueSentinel = "no value"

// Evaluate reports whether a single display condition holds against the
// collected answers. Malformed conditions evaluate to false rather than
// erroring; conditions never block rendering.
func Evaluate(cond DisplayCondition, answers []AnswerRecord, catalog *Catalog) bool {
	if cond.Operator == "" {
		return false
	}

	answer := findAnswer(cond.TargetQuestion, answers)

	switch cond.Operator {
	case OpIsEmpty:
		return answer == nil || answer.Empty()
	case OpIsNotEmpty:
		return answer != nil && !answer.Empty()
	}

	if answer == nil || answer.Empty() {
		return false
	}
	if invalidValue(cond.Value) {
		return false
	}

	question := catalog.Find(cond.TargetQuestion)

	switch cond.Operator {
	case OpEquals, OpIsSelected:
		return matchesValue(*answer, question, cond.Value)
	case OpNotEquals, OpIsNotSelected:
		return !matchesValue(*answer, question, cond.Value)
	case OpContains:
		return strings.Contains(joinedText(*answer), fold(cond.Value))
	case OpNotContains:
		return !strings.Contains(joinedText(*answer), fold(cond.Value))
	case OpGreaterThan:
		return compareNumeric(*answer, cond.Value, func(a, b float64) bool { return a > b })
	case OpLessThan:
		return compareNumeric(*answer, cond.Value, func(a, b float64) bool { return a < b })
	default:
		return false
	}
}

// EvaluateAll reports whether every condition holds. The per-condition
// combinator tag is ignored: sets are evaluated as a conjunction.
// An empty condition set holds trivially.
func EvaluateAll(conds []DisplayCondition, answers []AnswerRecord, catalog *Catalog) bool {
	for _, cond := range conds {
		if !Evaluate(cond, answers, catalog) {
			return false
		}
	}
	return true
}

func findAnswer(target string, answers []AnswerRecord) *AnswerRecord {
	for i := range answers {
		if answers[i].QuestionID != "" && answers[i].QuestionID == target {
			return &answers[i]
		}
	}
	folded := fold(target)
	for i := range answers {
		if fold(answers[i].Question) == folded {
			return &answers[i]
		}
	}
	return nil
}

// normalizeValue canonicalizes a comparison value against the target
// question's options: the option's internal value matches exactly, the
// label case-insensitively after trimming. When no option matches, the
// folded raw value is used.
func normalizeValue(raw string, q *Question) string {
	trimmed := strings.TrimSpace(raw)
	if q != nil {
		for _, opt := range q.Options {
			if opt.Value == trimmed || fold(opt.Label) == fold(trimmed) {
				return fold(opt.Value)
			}
		}
	}
	return fold(trimmed)
}

func matchesValue(answer AnswerRecord, q *Question, value string) bool {
	want := normalizeValue(value, q)
	for _, el := range answer.Value {
		if normalizeValue(el, q) == want {
			return true
		}
	}
	return false
}

func joinedText(answer AnswerRecord) string {
	return fold(strings.Join(answer.Value, " "))
}

func compareNumeric(answer AnswerRecord, value string, cmp func(a, b float64) bool) bool {
	want, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return false
	}
	for _, el := range answer.Value {
		got, err := strconv.ParseFloat(strings.TrimSpace(el), 64)
		if err != nil {
			continue
		}
		if cmp(got, want) {
			return true
		}
	}
	return false
}

func invalidValue(value string) bool {
	trimmed := fold(value)
	return trimmed == "" || trimmed == noValueSentinel
}
