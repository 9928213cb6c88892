package app

import (
	"strings"

	"cyberlearn-service/internal/domain"
)

// Verdict is the outcome of evaluating one answer against one question.
// Canonical carries the authoritative answer: the correct option index for
// choice-style questions, the expected text for fill-blank.
type Verdict struct {
	Correct   bool
	Canonical any
}

// Evaluate decides correctness per the question type's rule. It is a pure
// function of its inputs with no failure mode: every answer, however
// malformed, yields a definite verdict.
func Evaluate(q domain.Question, ans Answer) Verdict {
	if q.Type == domain.TypeFillBlank {
		v := Verdict{Canonical: q.Answer}
		if ans.Kind == AnswerText {
			v.Correct = strings.EqualFold(ans.Text, strings.TrimSpace(q.Answer))
		}
		return v
	}

	v := Verdict{Canonical: q.CorrectIndex}
	if ans.Kind == AnswerIndex {
		v.Correct = ans.Index == q.CorrectIndex
	}
	return v
}
