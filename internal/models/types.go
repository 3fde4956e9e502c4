package models

// QuestionType is the closed set of supported question types. The codec
// and rule engine switch exhaustively on these values.
type QuestionType string

const (
	TypeText          QuestionType = "text"
	TypeBool          QuestionType = "bool"
	TypeChoice        QuestionType = "choice"
	TypeOpenChoice    QuestionType = "open-choice"
	TypeChoices       QuestionType = "choices"
	TypeZip           QuestionType = "zip"
	TypeDate          QuestionType = "date"
	TypeYear          QuestionType = "year"
	TypeMonth         QuestionType = "month"
	TypeDay           QuestionType = "day"
	TypeInteger       QuestionType = "integer"
	TypeIntegerRange  QuestionType = "integer-range"
	TypeFloat         QuestionType = "float"
	TypePounds        QuestionType = "pounds"
	TypeBloodPressure QuestionType = "blood-pressure"
	TypeFeetInches    QuestionType = "feet-inches"
	TypeFile          QuestionType = "file"
)

var questionTypes = map[QuestionType]struct{}{
	TypeText: {}, TypeBool: {}, TypeChoice: {}, TypeOpenChoice: {},
	TypeChoices: {}, TypeZip: {}, TypeDate: {}, TypeYear: {},
	TypeMonth: {}, TypeDay: {}, TypeInteger: {}, TypeIntegerRange: {},
	TypeFloat: {}, TypePounds: {}, TypeBloodPressure: {},
	TypeFeetInches: {}, TypeFile: {},
}

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	_, ok := questionTypes[t]
	return ok
}

// HasChoices reports whether questions of this type carry a choice list.
func (t QuestionType) HasChoices() bool {
	return t == TypeChoice || t == TypeOpenChoice || t == TypeChoices
}

// SurveyStatus is the survey lifecycle state.
type SurveyStatus string

const (
	StatusDraft     SurveyStatus = "draft"
	StatusPublished SurveyStatus = "published"
	StatusRetired   SurveyStatus = "retired"
)

// Valid reports whether s is a known survey status.
func (s SurveyStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished || s == StatusRetired
}

// SubmissionStatus qualifies an answer submission. Completed submissions
// must satisfy all currently applicable required questions.
type SubmissionStatus string

const (
	SubmissionInProgress SubmissionStatus = "in-progress"
	SubmissionCompleted  SubmissionStatus = "completed"
)

// RuleLogic is the condition applied by an enable-when rule.
type RuleLogic string

const (
	LogicEquals          RuleLogic = "equals"
	LogicNotEquals       RuleLogic = "not-equals"
	LogicExists          RuleLogic = "exists"
	LogicNotExists       RuleLogic = "not-exists"
	LogicNotSelected     RuleLogic = "not-selected"
	LogicEachNotSelected RuleLogic = "each-not-selected"
)

// Valid reports whether l is a known rule logic.
func (l RuleLogic) Valid() bool {
	switch l {
	case LogicEquals, LogicNotEquals, LogicExists, LogicNotExists,
		LogicNotSelected, LogicEachNotSelected:
		return true
	}
	return false
}

// RequiresAnswer reports whether rules with this logic must carry a
// literal answer value.
func (l RuleLogic) RequiresAnswer() bool {
	return l == LogicEquals || l == LogicNotEquals
}

// RequiresSelections reports whether rules with this logic must carry a
// choice selection set instead of an answer.
func (l RuleLogic) RequiresSelections() bool {
	return l == LogicNotSelected || l == LogicEachNotSelected
}
