package review

import (
	"github.com/fieldscope/verity/internal/responses"
	"github.com/fieldscope/verity/internal/surveys"
)

// gate is one step in the verification cascade. Gating questions carry an
// accept set; a shown gating question answered outside its accept set
// terminates the cascade in rejection and hides every later question.
// Informational questions never affect the outcome or the cascade flow.
type gate struct {
	question      GateQuestion
	accept        []string
	informational bool
	// role names the respondent answer this question verifies against.
	// The question is hidden when that evidence was never collected.
	role surveys.Role
	// hiddenModes lists interview modes for which the question never applies.
	hiddenModes []string
}

// cascade is the ordered verification questionnaire. Order matters: each
// gating question is only reachable while every earlier gating question
// sits inside its accept set.
var cascade = []gate{
	{question: QAudioStatus, accept: []string{"1", "4", "7"}},
	{question: QGenderMatch, accept: []string{"1"}, role: surveys.RoleGender},
	{question: QUpcomingVote, accept: []string{"1", "3"}},
	{question: QAssemblyVote, accept: []string{"1", "3"}},
	{question: QGeneralVote, accept: []string{"1", "3"}},
	{question: QNameMatch, informational: true, role: surveys.RoleName},
	{question: QAgeMatch, informational: true, role: surveys.RoleAge},
	{question: QPhoneAsked, informational: true, hiddenModes: []string{surveys.ModeCATI}},
}

func (g gate) passes(value string) bool {
	for _, v := range g.accept {
		if value == v {
			return true
		}
	}
	return false
}

func (g gate) hiddenFor(mode string) bool {
	for _, m := range g.hiddenModes {
		if mode == m {
			return true
		}
	}
	return false
}

// applies reports whether the gate belongs on the questionnaire at all for
// this response, independent of cascade position: mode exclusions and
// missing linked evidence remove a question outright.
func (g gate) applies(resp *responses.Response, catalog *surveys.Catalog) bool {
	if g.hiddenFor(resp.Mode) {
		return false
	}
	if g.role == "" {
		return true
	}
	return hasEvidence(g.role, resp, catalog)
}

// hasEvidence reports whether the respondent actually supplied the answer
// a comparison question would be verified against. A question the
// respondent skipped outright, or never reached, leaves nothing to compare.
func hasEvidence(role surveys.Role, resp *responses.Response, catalog *surveys.Catalog) bool {
	questionID, ok := catalog.RoleQuestion(role)
	if !ok {
		return false
	}

	for _, answer := range resp.Answers {
		if answer.QuestionID != questionID {
			continue
		}
		if !surveys.IsEffective(answer, resp.Answers, catalog) {
			return false
		}
		return !answer.Skipped && !answer.Empty()
	}
	return false
}

// Visible returns the questions currently shown for the form, in cascade
// order. The walk stops after the first gating question that is unanswered
// or answered outside its accept set; everything past it stays hidden.
func Visible(form Form, resp *responses.Response, catalog *surveys.Catalog) []GateQuestion {
	visible := make([]GateQuestion, 0, len(cascade))

	for _, g := range cascade {
		if !g.applies(resp, catalog) {
			continue
		}

		visible = append(visible, g.question)

		if g.informational {
			continue
		}

		value := form.Answer(g.question)
		if value == "" || !g.passes(value) {
			break
		}
	}

	return visible
}

// IsComplete reports whether the form can be submitted: every visible
// question is answered. A failing gate answer completes the form early
// because the questions behind it never become visible.
func IsComplete(form Form, resp *responses.Response, catalog *surveys.Catalog) bool {
	for _, q := range Visible(form, resp, catalog) {
		if form.Answer(q) == "" {
			return false
		}
	}
	return true
}

// Decide derives the verification outcome from a complete form. The
// decision is a pure function of the form and the response context:
// the first shown gating question answered outside its accept set rejects
// the response; informational questions never participate.
func Decide(form Form, resp *responses.Response, catalog *surveys.Catalog) Outcome {
	for _, g := range cascade {
		if g.informational || !g.applies(resp, catalog) {
			continue
		}
		if !g.passes(form.Answer(g.question)) {
			return OutcomeRejected
		}
	}
	return OutcomeApproved
}
