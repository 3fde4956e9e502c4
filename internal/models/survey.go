package models

// Survey is the client-facing survey definition tree. Root content is
// either Questions or Sections, never both.
type Survey struct {
	ID          uint           `json:"id,omitempty"`
	GroupID     uint           `json:"groupId,omitempty"`
	Version     int            `json:"version,omitempty"`
	Status      SurveyStatus   `json:"status,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
	Questions   []*Question    `json:"questions,omitempty"`
	Sections    []*Section     `json:"sections,omitempty"`
}

// Section groups questions or nested sections. A section belongs either
// to the survey root, to a parent section, or to a question (to express
// branching under a particular answer).
type Section struct {
	ID          uint        `json:"id,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	EnableWhen  []Rule      `json:"enableWhen,omitempty"`
	Questions   []*Question `json:"questions,omitempty"`
	Sections    []*Section  `json:"sections,omitempty"`
}

// Question is a survey question. Questions version independently of the
// surveys that reference them; Required is scoped to the referencing
// survey, not the question itself.
type Question struct {
	ID          uint           `json:"id,omitempty"`
	GroupID     uint           `json:"groupId,omitempty"`
	Version     int            `json:"version,omitempty"`
	Type        QuestionType   `json:"type,omitempty"`
	Text        string         `json:"text,omitempty"`
	Instruction string         `json:"instruction,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Multiple    bool           `json:"multiple,omitempty"`
	MaxCount    *int           `json:"maxCount,omitempty"`

	// Choices for choice/open-choice/choices questions. OneOfChoices is
	// an authoring shorthand for plain bool choices; ChoiceSetReference
	// pulls the choices of a named reusable choice set.
	Choices            []Choice `json:"choices,omitempty"`
	OneOfChoices       []string `json:"oneOfChoices,omitempty"`
	ChoiceSetReference string   `json:"choiceSetReference,omitempty"`

	// Sections nested under this question implement skip-ahead
	// branching.
	Sections   []*Section `json:"sections,omitempty"`
	EnableWhen []Rule     `json:"enableWhen,omitempty"`

	// Answer/Answers are only populated on the answered-survey view.
	Answer  *AnswerValue  `json:"answer,omitempty"`
	Answers []AnswerValue `json:"answers,omitempty"`
}

// Choice is one entry of a question's choice list. Code is a stable
// external identifier independent of the row id. Type is only
// meaningful under a choices question, where a choice may behave like a
// bool or text mini-question.
type Choice struct {
	ID   uint           `json:"id,omitempty"`
	Text string         `json:"text"`
	Code string         `json:"code,omitempty"`
	Type QuestionType   `json:"type,omitempty"`
	Meta map[string]any `json:"meta,omitempty"`
}

// Rule is an enable-when condition attached to a question or section.
// The referenced question is named by QuestionID once persisted, or by
// QuestionIndex (position in the flattened question list) while the
// referenced question is being created in the same submission.
//
// SkipCount turns the rule into its skip authoring form: the rule then
// gates the SkipCount questions following its holder instead of the
// holder itself.
//
// SelectionCount restricts the each-not-selected logic to the first N
// entries of SelectionIDs; zero means all of them.
type Rule struct {
	Logic          RuleLogic    `json:"logic"`
	QuestionID     uint         `json:"questionId,omitempty"`
	QuestionIndex  *int         `json:"questionIndex,omitempty"`
	Answer         *AnswerValue `json:"answer,omitempty"`
	SelectionIDs   []uint       `json:"selectionIds,omitempty"`
	SelectionTexts []string     `json:"selectionTexts,omitempty"`
	SelectionCount int          `json:"selectionCount,omitempty"`
	SkipCount      *int         `json:"skipCount,omitempty"`
}

// ListOptions filters survey listings.
type ListOptions struct {
	Status  SurveyStatus // empty defaults to published; "all" disables the filter
	GroupID uint
	Version int
	History bool // include soft-deleted (replaced) versions
}

// SurveyPatch is a partial survey update. Nil fields stay untouched;
// Questions or Sections, when present, replace the survey content
// wholesale.
type SurveyPatch struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      SurveyStatus   `json:"status,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
	Questions   []*Question    `json:"questions,omitempty"`
	Sections    []*Section     `json:"sections,omitempty"`

	// ForceStatus allows otherwise forbidden status transitions
	// (published back to draft, updates to retired surveys).
	// ForceQuestions allows structural changes on non-draft surveys.
	ForceStatus    bool `json:"forceStatus,omitempty"`
	ForceQuestions bool `json:"forceQuestions,omitempty"`
}
