package app

import (
	"strconv"
	"strings"

	"cyberlearn-service/internal/domain"
)

// AnswerKind tags the decoded form of a raw answer.
type AnswerKind int

const (
	// AnswerNone means the learner gave no usable answer for the question type.
	AnswerNone AnswerKind = iota
	// AnswerIndex is a decoded option index for choice-style questions.
	AnswerIndex
	// AnswerText is trimmed free text for fill-blank questions.
	AnswerText
)

// Answer is the tagged union produced by decoding a raw submission value
// against a question type. Index is meaningful only for AnswerIndex, Text only
// for AnswerText.
type Answer struct {
	Kind  AnswerKind
	Index int
	Text  string
}

// DecodeAnswer normalizes one raw submission value for a question type.
// Malformed input decodes to AnswerNone rather than an error: a missing or
// non-numeric answer to a choice question is simply wrong, never a failure.
func DecodeAnswer(t domain.QuestionType, raw string) Answer {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Answer{Kind: AnswerNone}
	}
	if t == domain.TypeFillBlank {
		return Answer{Kind: AnswerText, Text: trimmed}
	}
	idx, err := strconv.Atoi(trimmed)
	if err != nil {
		return Answer{Kind: AnswerNone}
	}
	return Answer{Kind: AnswerIndex, Index: idx}
}
