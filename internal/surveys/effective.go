package surveys

// IsEffective reports whether the respondent genuinely had the opportunity
// to answer the given record's question. Answered records always count.
// A skipped record counts only when its question is unconditional or its
// display conditions held, meaning the respondent saw the question and
// chose not to answer; a skip on an unreachable question is an artifact.
func IsEffective(answer AnswerRecord, answers []AnswerRecord, catalog *Catalog) bool {
	if !answer.Skipped {
		return true
	}

	target := answer.QuestionID
	if target == "" {
		target = answer.Question
	}

	question := catalog.Find(target)
	if question == nil || len(question.Conditions) == 0 {
		return true
	}

	return EvaluateAll(question.Conditions, answers, catalog)
}

// EffectiveCount returns the number of effective answers, the denominator
// for completion metrics.
func EffectiveCount(answers []AnswerRecord, catalog *Catalog) int {
	count := 0
	for _, answer := range answers {
		if IsEffective(answer, answers, catalog) {
			count++
		}
	}
	return count
}
