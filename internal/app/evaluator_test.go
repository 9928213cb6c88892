package app

import (
	"testing"

	"cyberlearn-service/internal/domain"
)

func TestEvaluateFillBlankIgnoresCaseAndWhitespace(t *testing.T) {
	q := domain.Question{ID: "q1", Type: domain.TypeFillBlank, Answer: "Phishing"}

	v := Evaluate(q, DecodeAnswer(q.Type, "  PHISHING  "))
	if !v.Correct {
		t.Fatalf("expected case/whitespace-insensitive match, got incorrect")
	}
	if v.Canonical != "Phishing" {
		t.Fatalf("expected canonical answer %q, got %v", "Phishing", v.Canonical)
	}
}

func TestEvaluateFillBlankWrongText(t *testing.T) {
	q := domain.Question{ID: "q1", Type: domain.TypeFillBlank, Answer: "phishing"}
	if Evaluate(q, DecodeAnswer(q.Type, "smishing")).Correct {
		t.Fatalf("expected wrong text to be incorrect")
	}
}

func TestEvaluateChoiceTypes(t *testing.T) {
	for _, typ := range []domain.QuestionType{domain.TypeMCQ, domain.TypeTrueFalse, domain.TypeScenario, domain.TypePractical} {
		q := domain.Question{ID: "q1", Type: typ, CorrectIndex: 2}
		if !Evaluate(q, DecodeAnswer(q.Type, "2")).Correct {
			t.Fatalf("%s: expected index 2 to match", typ)
		}
		if Evaluate(q, DecodeAnswer(q.Type, "1")).Correct {
			t.Fatalf("%s: expected index 1 to miss", typ)
		}
	}
}

func TestEvaluateMissingAnswerIsIncorrectNotError(t *testing.T) {
	q := domain.Question{ID: "q1", Type: domain.TypeMCQ, CorrectIndex: 1}

	v := Evaluate(q, DecodeAnswer(q.Type, ""))
	if v.Correct {
		t.Fatalf("expected missing answer to be incorrect")
	}
	if v.Canonical != 1 {
		t.Fatalf("expected canonical index 1, got %v", v.Canonical)
	}
}

func TestEvaluateNonNumericChoiceAnswer(t *testing.T) {
	q := domain.Question{ID: "q1", Type: domain.TypeTrueFalse, CorrectIndex: 0}
	if Evaluate(q, DecodeAnswer(q.Type, "definitely")).Correct {
		t.Fatalf("expected non-numeric answer to be incorrect")
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	q := domain.Question{ID: "q1", Type: domain.TypeMCQ, CorrectIndex: 3}
	ans := DecodeAnswer(q.Type, "3")

	first := Evaluate(q, ans)
	for i := 0; i < 5; i++ {
		if got := Evaluate(q, ans); got != first {
			t.Fatalf("expected identical verdict on repeated calls, got %+v then %+v", first, got)
		}
	}
}

func TestDecodeAnswerKinds(t *testing.T) {
	cases := []struct {
		typ  domain.QuestionType
		raw  string
		want AnswerKind
	}{
		{domain.TypeMCQ, "2", AnswerIndex},
		{domain.TypeMCQ, " 2 ", AnswerIndex},
		{domain.TypeMCQ, "abc", AnswerNone},
		{domain.TypeMCQ, "", AnswerNone},
		{domain.TypeFillBlank, "phishing", AnswerText},
		{domain.TypeFillBlank, "   ", AnswerNone},
	}
	for _, tc := range cases {
		if got := DecodeAnswer(tc.typ, tc.raw); got.Kind != tc.want {
			t.Fatalf("DecodeAnswer(%s, %q): expected kind %v, got %v", tc.typ, tc.raw, tc.want, got.Kind)
		}
	}
}
