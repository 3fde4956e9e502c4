package rules

import (
	"testing"

	"surveyreg/internal/models"
	"surveyreg/internal/surveyerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolAnswer(b bool) *models.AnswerValue {
	return &models.AnswerValue{BoolValue: &b}
}

func TestEvaluateEquals(t *testing.T) {
	rule := models.Rule{Logic: models.LogicEquals, QuestionID: 1, Answer: boolAnswer(true)}

	assert.True(t, Evaluate(rule, AnswerMap{1: {*boolAnswer(true)}}))
	assert.False(t, Evaluate(rule, AnswerMap{1: {*boolAnswer(false)}}))
	// Unanswered questions never satisfy equals.
	assert.False(t, Evaluate(rule, AnswerMap{}))
}

func TestEvaluateEqualsIgnoresMultipleIndex(t *testing.T) {
	index := 3
	recorded := *boolAnswer(true)
	recorded.MultipleIndex = &index
	rule := models.Rule{Logic: models.LogicEquals, QuestionID: 1, Answer: boolAnswer(true)}
	assert.True(t, Evaluate(rule, AnswerMap{1: {recorded}}))
}

func TestEvaluateNotEquals(t *testing.T) {
	rule := models.Rule{Logic: models.LogicNotEquals, QuestionID: 1, Answer: boolAnswer(true)}

	assert.False(t, Evaluate(rule, AnswerMap{1: {*boolAnswer(true)}}))
	assert.True(t, Evaluate(rule, AnswerMap{1: {*boolAnswer(false)}}))
	// Absence is not-equal in neither direction.
	assert.False(t, Evaluate(rule, AnswerMap{}))
}

func TestEvaluateExists(t *testing.T) {
	exists := models.Rule{Logic: models.LogicExists, QuestionID: 1}
	notExists := models.Rule{Logic: models.LogicNotExists, QuestionID: 1}

	answered := AnswerMap{1: {*boolAnswer(false)}}
	assert.True(t, Evaluate(exists, answered))
	assert.False(t, Evaluate(notExists, answered))
	assert.False(t, Evaluate(exists, AnswerMap{}))
	assert.True(t, Evaluate(notExists, AnswerMap{}))
}

func selectionAnswer(ids ...uint) models.AnswerValue {
	choices := make([]models.ChoiceAnswer, len(ids))
	for i, id := range ids {
		choices[i] = models.ChoiceAnswer{ID: id}
	}
	return models.AnswerValue{Choices: choices}
}

func TestEvaluateNotSelected(t *testing.T) {
	rule := models.Rule{Logic: models.LogicNotSelected, QuestionID: 1, SelectionIDs: []uint{5, 6}}

	assert.True(t, Evaluate(rule, AnswerMap{1: {selectionAnswer(7)}}))
	assert.False(t, Evaluate(rule, AnswerMap{1: {selectionAnswer(6)}}))
	// An unanswered question has nothing selected.
	assert.True(t, Evaluate(rule, AnswerMap{}))
}

func TestEvaluateEachNotSelectedPrefix(t *testing.T) {
	rule := models.Rule{
		Logic:          models.LogicEachNotSelected,
		QuestionID:     1,
		SelectionIDs:   []uint{5, 6, 7},
		SelectionCount: 2,
	}
	// 7 is past the prefix, so selecting it does not trip the rule.
	assert.True(t, Evaluate(rule, AnswerMap{1: {selectionAnswer(7)}}))
	assert.False(t, Evaluate(rule, AnswerMap{1: {selectionAnswer(6)}}))
}

func TestEvaluateSingleChoiceSelection(t *testing.T) {
	five := uint(5)
	rule := models.Rule{Logic: models.LogicNotSelected, QuestionID: 1, SelectionIDs: []uint{5}}
	assert.False(t, Evaluate(rule, AnswerMap{1: {{Choice: &five}}}))
}

func TestValidateShape(t *testing.T) {
	err := ValidateShape(&models.Rule{Logic: models.LogicEquals})
	assert.True(t, surveyerr.HasCode(err, surveyerr.RuleAnswerRequiredForLogic))

	err = ValidateShape(&models.Rule{Logic: models.LogicExists, Answer: boolAnswer(true)})
	assert.True(t, surveyerr.HasCode(err, surveyerr.RuleAnswerForbiddenForLogic))

	err = ValidateShape(&models.Rule{Logic: models.LogicNotSelected})
	assert.True(t, surveyerr.HasCode(err, surveyerr.RuleAnswerRequiredForLogic))

	assert.NoError(t, ValidateShape(&models.Rule{Logic: models.LogicEquals, Answer: boolAnswer(true)}))
	assert.NoError(t, ValidateShape(&models.Rule{Logic: models.LogicNotExists}))
}

func TestTranslateQuestionIndex(t *testing.T) {
	questions := []*models.Question{
		{ID: 11, Type: models.TypeBool},
		{ID: 12, Type: models.TypeText},
	}
	index := 1
	rule := models.Rule{Logic: models.LogicExists, QuestionIndex: &index}
	require.NoError(t, Translate(&rule, questions, nil))
	assert.Equal(t, uint(12), rule.QuestionID)
	assert.Nil(t, rule.QuestionIndex)

	outOfRange := 5
	rule = models.Rule{Logic: models.LogicExists, QuestionIndex: &outOfRange}
	err := Translate(&rule, questions, nil)
	assert.True(t, surveyerr.HasCode(err, surveyerr.QuestionNotFound))
}

func TestTranslateChoiceText(t *testing.T) {
	choices := map[uint][]models.Choice{
		11: {{ID: 101, Text: "Never"}, {ID: 102, Text: "Daily", Code: "D"}},
	}
	text := "Daily"
	rule := models.Rule{
		Logic:      models.LogicEquals,
		QuestionID: 11,
		Answer:     &models.AnswerValue{ChoiceText: &text},
	}
	require.NoError(t, Translate(&rule, nil, choices))
	require.NotNil(t, rule.Answer.Choice)
	assert.Equal(t, uint(102), *rule.Answer.Choice)
	assert.Nil(t, rule.Answer.ChoiceText)

	code := "D"
	rule = models.Rule{
		Logic:      models.LogicEquals,
		QuestionID: 11,
		Answer:     &models.AnswerValue{Code: &code},
	}
	require.NoError(t, Translate(&rule, nil, choices))
	assert.Equal(t, uint(102), *rule.Answer.Choice)
}

func TestTranslateChoiceErrors(t *testing.T) {
	choices := map[uint][]models.Choice{11: {{ID: 101, Text: "Never"}}}

	missing := "No Such Choice"
	rule := models.Rule{Logic: models.LogicEquals, QuestionID: 11, Answer: &models.AnswerValue{ChoiceText: &missing}}
	err := Translate(&rule, nil, choices)
	assert.True(t, surveyerr.HasCode(err, surveyerr.SkipChoiceNotFound))

	text := "Never"
	rule = models.Rule{Logic: models.LogicEquals, QuestionID: 99, Answer: &models.AnswerValue{ChoiceText: &text}}
	err = Translate(&rule, nil, choices)
	assert.True(t, surveyerr.HasCode(err, surveyerr.SkipChoiceForNonChoice))
}

func TestTranslateSelectionTexts(t *testing.T) {
	choices := map[uint][]models.Choice{
		11: {{ID: 101, Text: "A"}, {ID: 102, Text: "B"}},
	}
	rule := models.Rule{
		Logic:          models.LogicNotSelected,
		QuestionID:     11,
		SelectionTexts: []string{"B", "A"},
	}
	require.NoError(t, Translate(&rule, nil, choices))
	assert.Equal(t, []uint{102, 101}, rule.SelectionIDs)
	assert.Nil(t, rule.SelectionTexts)
}

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }

func TestGateMapSkipSpan(t *testing.T) {
	rule := models.Rule{Logic: models.LogicEquals, QuestionID: 1, Answer: boolAnswer(true)}
	bindings := []Binding{{Rule: rule, QuestionID: uintPtr(1), SkipCount: intPtr(2)}}
	order := []uint{1, 2, 3, 4}

	gates := GateMap(bindings, order, nil)
	// The holder itself is not gated; the two questions after it are.
	assert.Empty(t, gates[1])
	assert.Len(t, gates[2], 1)
	assert.Len(t, gates[3], 1)
	assert.Empty(t, gates[4])
}

func TestGateMapSection(t *testing.T) {
	rule := models.Rule{Logic: models.LogicExists, QuestionID: 1}
	bindings := []Binding{{Rule: rule, SectionID: uintPtr(30)}}
	sectionQuestions := map[uint][]uint{30: {2, 3}}

	gates := GateMap(bindings, []uint{1, 2, 3}, sectionQuestions)
	assert.Empty(t, gates[1])
	assert.Len(t, gates[2], 1)
	assert.Len(t, gates[3], 1)
}

func TestApplicableRequiresAllGates(t *testing.T) {
	gates := map[uint][]models.Rule{
		2: {
			{Logic: models.LogicExists, QuestionID: 1},
			{Logic: models.LogicEquals, QuestionID: 1, Answer: boolAnswer(true)},
		},
	}
	assert.True(t, Applicable(gates, 2, AnswerMap{1: {*boolAnswer(true)}}))
	assert.False(t, Applicable(gates, 2, AnswerMap{1: {*boolAnswer(false)}}))
	assert.True(t, Applicable(gates, 99, AnswerMap{}))
}

func TestValidateSubmissionRejectsSkippedAnswers(t *testing.T) {
	gates := map[uint][]models.Rule{
		2: {{Logic: models.LogicEquals, QuestionID: 1, Answer: boolAnswer(true)}},
	}
	merged := AnswerMap{
		1: {*boolAnswer(false)},
		2: {*boolAnswer(true)},
	}
	err := ValidateSubmission(gates, nil, merged, []uint{1, 2}, models.SubmissionInProgress)
	assert.True(t, surveyerr.HasCode(err, surveyerr.AnswerToBeSkippedAnswered))
}

func TestValidateSubmissionRequiredOnComplete(t *testing.T) {
	required := map[uint]bool{1: true, 2: true}
	merged := AnswerMap{1: {*boolAnswer(true)}}

	// In progress: missing required answers are fine.
	err := ValidateSubmission(nil, required, merged, []uint{1}, models.SubmissionInProgress)
	assert.NoError(t, err)

	err = ValidateSubmission(nil, required, merged, []uint{1}, models.SubmissionCompleted)
	assert.True(t, surveyerr.HasCode(err, surveyerr.AnswerRequiredMissing))

	merged[2] = []models.AnswerValue{*boolAnswer(false)}
	err = ValidateSubmission(nil, required, merged, []uint{1, 2}, models.SubmissionCompleted)
	assert.NoError(t, err)
}

func TestValidateSubmissionSkippedRequiredNotMissing(t *testing.T) {
	// Question 2 is required but currently skipped; completing without it
	// must pass.
	gates := map[uint][]models.Rule{
		2: {{Logic: models.LogicEquals, QuestionID: 1, Answer: boolAnswer(true)}},
	}
	required := map[uint]bool{2: true}
	merged := AnswerMap{1: {*boolAnswer(false)}}
	err := ValidateSubmission(gates, required, merged, []uint{1}, models.SubmissionCompleted)
	assert.NoError(t, err)
}
