// Package surveyerr defines the closed set of domain error codes surfaced
// by the survey subsystem. Handlers map codes to transport responses;
// everything below the HTTP layer works in terms of these codes.
package surveyerr

import (
	"errors"
	"fmt"
)

// Code identifies a named failure kind.
type Code string

const (
	// Structural errors raised while flattening or reconstructing trees.
	OrphanedSection                   Code = "OrphanedSection"
	OrphanedQuestion                  Code = "OrphanedQuestion"
	BothQuestionsAndSectionsSpecified Code = "BothQuestionsAndSectionsSpecified"
	NoQuestions                       Code = "NoQuestions"

	// Codec errors raised while normalizing answer values.
	AmbiguousAnswerShape    Code = "AmbiguousAnswerShape"
	UnrecognizedAnswerShape Code = "UnrecognizedAnswerShape"
	MissingMultipleIndex    Code = "MissingMultipleIndex"

	// Rule errors raised at authoring or translation time.
	SkipChoiceNotFound          Code = "SkipChoiceNotFound"
	SkipChoiceForNonChoice      Code = "SkipChoiceForNonChoice"
	NotEnoughTrailingQuestions  Code = "NotEnoughTrailingQuestions"
	RuleAnswerRequiredForLogic  Code = "RuleAnswerRequiredForLogic"
	RuleAnswerForbiddenForLogic Code = "RuleAnswerForbiddenForLogic"

	// Submission validation errors.
	AnswerToBeSkippedAnswered Code = "AnswerToBeSkippedAnswered"
	AnswerRequiredMissing     Code = "AnswerRequiredMissing"

	// Lifecycle errors.
	StructuralChangeOnPublished      Code = "StructuralChangeOnPublished"
	InvalidStatusTransition          Code = "InvalidStatusTransition"
	SurveyNotFound                   Code = "SurveyNotFound"
	QuestionNotFound                 Code = "QuestionNotFound"
	QuestionReplaceWhenActiveSurveys Code = "QuestionReplaceWhenActiveSurveys"
	ChoiceSetNotFound                Code = "ChoiceSetNotFound"
)

var messages = map[Code]string{
	OrphanedSection:                   "section references a parent that does not exist",
	OrphanedQuestion:                  "section references a question that does not exist",
	BothQuestionsAndSectionsSpecified: "survey content cannot specify both questions and sections at the same level",
	NoQuestions:                       "survey must contain at least one question or section",
	AmbiguousAnswerShape:              "answer specifies more than one value",
	UnrecognizedAnswerShape:           "answer value is not understood",
	MissingMultipleIndex:              "multiple answer element is missing its multiple index",
	SkipChoiceNotFound:                "rule references a choice text that does not exist on the referenced question",
	SkipChoiceForNonChoice:            "rule references choices but the referenced question has none",
	NotEnoughTrailingQuestions:        "skip rule covers more questions than follow it",
	RuleAnswerRequiredForLogic:        "rule logic requires an answer or selection",
	RuleAnswerForbiddenForLogic:       "rule logic does not take an answer",
	AnswerToBeSkippedAnswered:         "answer supplied for a question that is currently skipped",
	AnswerRequiredMissing:             "required question is missing an answer",
	StructuralChangeOnPublished:       "questions of a published survey cannot be changed",
	InvalidStatusTransition:           "survey status transition is not allowed",
	SurveyNotFound:                    "no such survey",
	QuestionNotFound:                  "no such question",
	QuestionReplaceWhenActiveSurveys:  "question is in active surveys and cannot be replaced or deleted",
	ChoiceSetNotFound:                 "no such choice set",
}

// Error is a structured domain failure. It satisfies errors.Is against
// another *Error with the same code, so callers can match on sentinels.
type Error struct {
	Code   Code
	Detail string
	cause  error
}

// New creates an error for code. An optional detail fragment is appended
// to the canonical message.
func New(code Code, detail ...string) *Error {
	e := &Error{Code: code}
	if len(detail) > 0 {
		e.Detail = detail[0]
	}
	return e
}

// Wrap attaches a lower-layer cause to a coded error.
func Wrap(code Code, cause error) *Error {
	return &Error{Code: code, cause: cause}
}

func (e *Error) Error() string {
	msg, ok := messages[e.Code]
	if !ok {
		msg = string(e.Code)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches errors by code so that errors.Is(err, surveyerr.New(code)) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// CodeOf extracts the domain code from an error chain. The second return
// is false for plain (storage or programming) errors.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
