package tree

import (
	"testing"

	"surveyreg/internal/models"
	"surveyreg/internal/surveyerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func question(id uint, text string) *models.Question {
	return &models.Question{ID: id, Text: text, Type: models.TypeText}
}

func TestFlattenQuestionsOnly(t *testing.T) {
	survey := &models.Survey{Questions: []*models.Question{
		question(1, "a"), question(2, "b"), question(3, "c"),
	}}
	flat, err := Flatten(survey)
	require.NoError(t, err)
	assert.Empty(t, flat.Sections)
	require.Len(t, flat.Questions, 3)
	assert.Equal(t, "a", flat.Questions[0].Text)
}

func TestFlattenNestedSections(t *testing.T) {
	survey := &models.Survey{Sections: []*models.Section{
		{
			Name:      "outer",
			Questions: []*models.Question{question(1, "a"), question(2, "b")},
		},
		{
			Name: "second",
			Sections: []*models.Section{
				{Name: "inner", Questions: []*models.Question{question(3, "c")}},
			},
		},
	}}
	flat, err := Flatten(survey)
	require.NoError(t, err)
	require.Len(t, flat.Sections, 3)
	require.Len(t, flat.Questions, 3)

	outer := flat.Sections[0]
	assert.Nil(t, outer.ParentIndex)
	assert.Equal(t, []int{0, 1}, outer.QuestionIndices)

	second := flat.Sections[1]
	assert.Nil(t, second.ParentIndex)
	assert.Empty(t, second.QuestionIndices)

	inner := flat.Sections[2]
	require.NotNil(t, inner.ParentIndex)
	assert.Equal(t, 1, *inner.ParentIndex)
	assert.Equal(t, []int{2}, inner.QuestionIndices)
}

func TestFlattenQuestionOwnedSections(t *testing.T) {
	owner := question(1, "gate")
	owner.Sections = []*models.Section{
		{Name: "branch", Questions: []*models.Question{question(2, "followup")}},
	}
	survey := &models.Survey{Questions: []*models.Question{owner, question(3, "tail")}}

	flat, err := Flatten(survey)
	require.NoError(t, err)
	require.Len(t, flat.Sections, 1)
	branch := flat.Sections[0]
	require.NotNil(t, branch.ParentQuestionIndex)
	assert.Equal(t, 0, *branch.ParentQuestionIndex)
	assert.Equal(t, []int{1}, branch.QuestionIndices)
	// Depth first: gate, followup, tail.
	require.Len(t, flat.Questions, 3)
	assert.Equal(t, "followup", flat.Questions[1].Text)
	assert.Equal(t, "tail", flat.Questions[2].Text)
}

func TestFlattenRejectsMixedContent(t *testing.T) {
	survey := &models.Survey{
		Questions: []*models.Question{question(1, "a")},
		Sections:  []*models.Section{{Name: "s"}},
	}
	_, err := Flatten(survey)
	assert.True(t, surveyerr.HasCode(err, surveyerr.BothQuestionsAndSectionsSpecified))

	survey = &models.Survey{Sections: []*models.Section{{
		Name:      "s",
		Questions: []*models.Question{question(1, "a")},
		Sections:  []*models.Section{{Name: "inner"}},
	}}}
	_, err = Flatten(survey)
	assert.True(t, surveyerr.HasCode(err, surveyerr.BothQuestionsAndSectionsSpecified))
}

func TestFlattenRejectsEmptySurvey(t *testing.T) {
	_, err := Flatten(&models.Survey{})
	assert.True(t, surveyerr.HasCode(err, surveyerr.NoQuestions))

	_, err = Flatten(&models.Survey{Sections: []*models.Section{{Name: "empty"}}})
	assert.True(t, surveyerr.HasCode(err, surveyerr.NoQuestions))
}

func TestFlattenValidatesSkipCounts(t *testing.T) {
	two := 2
	gate := question(1, "gate")
	gate.EnableWhen = []models.Rule{{Logic: models.LogicExists, QuestionID: 1, SkipCount: &two}}
	survey := &models.Survey{Questions: []*models.Question{gate, question(2, "only one after")}}

	_, err := Flatten(survey)
	assert.True(t, surveyerr.HasCode(err, surveyerr.NotEnoughTrailingQuestions))

	survey.Questions = append(survey.Questions, question(3, "second after"))
	_, err = Flatten(survey)
	assert.NoError(t, err)
}

func TestReconstructWithoutSections(t *testing.T) {
	questions := []*models.Question{question(1, "a"), question(2, "b")}
	content, err := Reconstruct(nil, questions)
	require.NoError(t, err)
	assert.Nil(t, content.Sections)
	assert.Equal(t, questions, content.Questions)
}

func TestReconstructNestedSections(t *testing.T) {
	questions := []*models.Question{question(1, "a"), question(2, "b"), question(3, "c")}
	parent := uint(10)
	rows := []SectionRow{
		{ID: 10, Name: "outer", Line: 0, QuestionIDs: []uint{1, 2}},
		{ID: 11, Name: "inner", Line: 1, ParentID: &parent, QuestionIDs: []uint{3}},
	}
	content, err := Reconstruct(rows, questions)
	require.NoError(t, err)
	require.Len(t, content.Sections, 1)
	outer := content.Sections[0]
	assert.Equal(t, "outer", outer.Name)
	require.Len(t, outer.Questions, 2)
	require.Len(t, outer.Sections, 1)
	assert.Equal(t, "inner", outer.Sections[0].Name)
	assert.Equal(t, "c", outer.Sections[0].Questions[0].Text)
}

func TestReconstructQuestionOwnedSection(t *testing.T) {
	questions := []*models.Question{question(1, "gate"), question(2, "followup"), question(3, "tail")}
	owner := uint(1)
	rows := []SectionRow{
		{ID: 20, Name: "branch", ParentQuestionID: &owner, QuestionIDs: []uint{2}},
	}
	content, err := Reconstruct(rows, questions)
	require.NoError(t, err)
	// Root stays question-formed; the followup moves under the gate.
	require.Len(t, content.Questions, 2)
	assert.Equal(t, "gate", content.Questions[0].Text)
	assert.Equal(t, "tail", content.Questions[1].Text)
	require.Len(t, content.Questions[0].Sections, 1)
	assert.Equal(t, "followup", content.Questions[0].Sections[0].Questions[0].Text)
}

func TestReconstructRejectsOrphans(t *testing.T) {
	questions := []*models.Question{question(1, "a")}
	missingParent := uint(99)
	_, err := Reconstruct([]SectionRow{
		{ID: 1, QuestionIDs: []uint{1}},
		{ID: 2, ParentID: &missingParent},
	}, questions)
	assert.True(t, surveyerr.HasCode(err, surveyerr.OrphanedSection))

	_, err = Reconstruct([]SectionRow{{ID: 1, QuestionIDs: []uint{42}}}, questions)
	assert.True(t, surveyerr.HasCode(err, surveyerr.OrphanedQuestion))

	missingQuestion := uint(42)
	_, err = Reconstruct([]SectionRow{{ID: 1, ParentQuestionID: &missingQuestion}}, questions)
	assert.True(t, surveyerr.HasCode(err, surveyerr.OrphanedQuestion))
}

func TestFlattenReconstructRoundTrip(t *testing.T) {
	survey := &models.Survey{Sections: []*models.Section{
		{Name: "outer", Questions: []*models.Question{question(1, "a"), question(2, "b")}},
		{Name: "wrap", Sections: []*models.Section{
			{Name: "inner", Questions: []*models.Question{question(3, "c")}},
		}},
	}}
	flat, err := Flatten(survey)
	require.NoError(t, err)

	// Simulate persistence: sections get ids, index pointers become ids.
	rows := make([]SectionRow, len(flat.Sections))
	ids := make([]uint, len(flat.Sections))
	for i := range flat.Sections {
		ids[i] = uint(100 + i)
	}
	for i, section := range flat.Sections {
		row := SectionRow{ID: ids[i], Name: section.Name, Line: section.Line}
		if section.ParentIndex != nil {
			row.ParentID = &ids[*section.ParentIndex]
		}
		for _, qi := range section.QuestionIndices {
			row.QuestionIDs = append(row.QuestionIDs, flat.Questions[qi].ID)
		}
		rows[i] = row
	}

	content, err := Reconstruct(rows, flat.Questions)
	require.NoError(t, err)
	require.Len(t, content.Sections, 2)
	assert.Equal(t, "outer", content.Sections[0].Name)
	assert.Equal(t, "wrap", content.Sections[1].Name)
	require.Len(t, content.Sections[1].Sections, 1)
	assert.Equal(t, "c", content.Sections[1].Sections[0].Questions[0].Text)
}

func TestSectionQuestionIDs(t *testing.T) {
	survey := &models.Survey{Sections: []*models.Section{
		{ID: 1, Questions: []*models.Question{question(10, "a")}, Sections: nil},
		{ID: 2, Sections: []*models.Section{
			{ID: 3, Questions: []*models.Question{question(11, "b"), question(12, "c")}},
		}},
	}}
	index := SectionQuestionIDs(survey)
	assert.Equal(t, []uint{10}, index[1])
	assert.Equal(t, []uint{11, 12}, index[2])
	assert.Equal(t, []uint{11, 12}, index[3])
}

func TestMergeAnswers(t *testing.T) {
	boolTrue := true
	survey := &models.Survey{Questions: []*models.Question{question(1, "a"), question(2, "b")}}
	answers := []models.Answer{
		{QuestionID: 1, Answer: &models.AnswerValue{BoolValue: &boolTrue}},
		{QuestionID: 99, Answer: &models.AnswerValue{BoolValue: &boolTrue}},
	}
	MergeAnswers(survey, answers)
	require.NotNil(t, survey.Questions[0].Answer)
	assert.True(t, *survey.Questions[0].Answer.BoolValue)
	assert.Nil(t, survey.Questions[1].Answer)
}
