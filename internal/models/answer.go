package models

// FeetInches is a composite height value.
type FeetInches struct {
	Feet   int `json:"feet"`
	Inches int `json:"inches"`
}

// BloodPressure is a composite systolic/diastolic value.
type BloodPressure struct {
	Systolic  int `json:"systolic"`
	Diastolic int `json:"diastolic"`
}

// IntegerRange is a possibly half-open integer interval. Pointers
// distinguish an absent bound from a bound of exactly zero.
type IntegerRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// FileValue references an uploaded file by the id assigned by the blob
// storage collaborator.
type FileValue struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// AnswerValue is the typed, client-facing form of a single logical
// answer. Exactly one value field may be set; the codec rejects
// ambiguous or empty shapes. MultipleIndex orders repeated answers to
// repeatable questions. ChoiceText and Code only appear in
// authoring-time rule literals and are translated to choice ids before
// anything is persisted.
type AnswerValue struct {
	MultipleIndex *int `json:"multipleIndex,omitempty"`

	TextValue          *string        `json:"textValue,omitempty"`
	ZipcodeValue       *string        `json:"zipcodeValue,omitempty"`
	DateValue          *string        `json:"dateValue,omitempty"`
	YearValue          *string        `json:"yearValue,omitempty"`
	MonthValue         *string        `json:"monthValue,omitempty"`
	DayValue           *string        `json:"dayValue,omitempty"`
	BoolValue          *bool          `json:"boolValue,omitempty"`
	IntegerValue       *int           `json:"integerValue,omitempty"`
	FloatValue         *float64       `json:"floatValue,omitempty"`
	NumberValue        *float64       `json:"numberValue,omitempty"`
	FeetInchesValue    *FeetInches    `json:"feetInchesValue,omitempty"`
	BloodPressureValue *BloodPressure `json:"bloodPressureValue,omitempty"`
	IntegerRange       *IntegerRange  `json:"integerRange,omitempty"`
	FileValue          *FileValue     `json:"fileValue,omitempty"`
	Choice             *uint          `json:"choice,omitempty"`
	Choices            []ChoiceAnswer `json:"choices,omitempty"`

	ChoiceText *string `json:"choiceText,omitempty"`
	Code       *string `json:"code,omitempty"`
}

// ChoiceAnswer is one selected choice of a multi-select answer, possibly
// carrying a sub-value when the choice declares its own type. Text is an
// authoring-time reference resolved to ID during rule translation.
type ChoiceAnswer struct {
	ID   uint   `json:"id,omitempty"`
	Text string `json:"text,omitempty"`
	AnswerValue
}

// ShapeKeys returns the JSON names of the value fields that are set.
// The codec requires exactly one.
func (a *AnswerValue) ShapeKeys() []string {
	var keys []string
	if a.TextValue != nil {
		keys = append(keys, "textValue")
	}
	if a.ZipcodeValue != nil {
		keys = append(keys, "zipcodeValue")
	}
	if a.DateValue != nil {
		keys = append(keys, "dateValue")
	}
	if a.YearValue != nil {
		keys = append(keys, "yearValue")
	}
	if a.MonthValue != nil {
		keys = append(keys, "monthValue")
	}
	if a.DayValue != nil {
		keys = append(keys, "dayValue")
	}
	if a.BoolValue != nil {
		keys = append(keys, "boolValue")
	}
	if a.IntegerValue != nil {
		keys = append(keys, "integerValue")
	}
	if a.FloatValue != nil {
		keys = append(keys, "floatValue")
	}
	if a.NumberValue != nil {
		keys = append(keys, "numberValue")
	}
	if a.FeetInchesValue != nil {
		keys = append(keys, "feetInchesValue")
	}
	if a.BloodPressureValue != nil {
		keys = append(keys, "bloodPressureValue")
	}
	if a.IntegerRange != nil {
		keys = append(keys, "integerRange")
	}
	if a.FileValue != nil {
		keys = append(keys, "fileValue")
	}
	if a.Choice != nil {
		keys = append(keys, "choice")
	}
	if a.Choices != nil {
		keys = append(keys, "choices")
	}
	return keys
}

// Equal deep-compares two answer values field by field. Rule evaluation
// uses it for the equals/not-equals logics.
func (a *AnswerValue) Equal(b *AnswerValue) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !eqPtr(a.TextValue, b.TextValue) ||
		!eqPtr(a.ZipcodeValue, b.ZipcodeValue) ||
		!eqPtr(a.DateValue, b.DateValue) ||
		!eqPtr(a.YearValue, b.YearValue) ||
		!eqPtr(a.MonthValue, b.MonthValue) ||
		!eqPtr(a.DayValue, b.DayValue) ||
		!eqPtr(a.BoolValue, b.BoolValue) ||
		!eqPtr(a.IntegerValue, b.IntegerValue) ||
		!eqPtr(a.FloatValue, b.FloatValue) ||
		!eqPtr(a.NumberValue, b.NumberValue) ||
		!eqPtr(a.FeetInchesValue, b.FeetInchesValue) ||
		!eqPtr(a.BloodPressureValue, b.BloodPressureValue) ||
		!eqPtr(a.FileValue, b.FileValue) ||
		!eqPtr(a.Choice, b.Choice) {
		return false
	}
	if (a.IntegerRange == nil) != (b.IntegerRange == nil) {
		return false
	}
	if a.IntegerRange != nil {
		if !eqPtr(a.IntegerRange.Min, b.IntegerRange.Min) ||
			!eqPtr(a.IntegerRange.Max, b.IntegerRange.Max) {
			return false
		}
	}
	if len(a.Choices) != len(b.Choices) {
		return false
	}
	for i := range a.Choices {
		if a.Choices[i].ID != b.Choices[i].ID {
			return false
		}
		if !a.Choices[i].AnswerValue.Equal(&b.Choices[i].AnswerValue) {
			return false
		}
	}
	return true
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SelectedChoiceIDs returns the choice ids selected by this answer, for
// the not-selected rule family.
func (a *AnswerValue) SelectedChoiceIDs() []uint {
	if a == nil {
		return nil
	}
	if a.Choice != nil {
		return []uint{*a.Choice}
	}
	ids := make([]uint, 0, len(a.Choices))
	for _, c := range a.Choices {
		ids = append(ids, c.ID)
	}
	return ids
}

// AnswerRow is the normalized, storable form of one answer fragment. A
// logical answer encodes to one or more rows; multi-select answers get
// one row per selected choice. ChoiceType is populated when loading rows
// of a choices question so the codec can decode per-choice sub-values.
type AnswerRow struct {
	QuestionChoiceID *uint
	Value            *string
	FileID           *uint
	MultipleIndex    *int
	ChoiceType       QuestionType
}

// Answer pairs a question with its typed answer(s) as exchanged with
// clients. Answer and Answers are mutually exclusive; Answers is used
// for repeatable (multiple) questions.
type Answer struct {
	QuestionID uint          `json:"questionId"`
	Answer     *AnswerValue  `json:"answer,omitempty"`
	Answers    []AnswerValue `json:"answers,omitempty"`
}

// Values returns the logical answer list regardless of form.
func (a *Answer) Values() []AnswerValue {
	if a.Answer != nil {
		return []AnswerValue{*a.Answer}
	}
	return a.Answers
}

// Submission is a batch of answers for one survey.
type Submission struct {
	Status  SubmissionStatus `json:"status,omitempty"`
	Answers []Answer         `json:"answers"`
}
