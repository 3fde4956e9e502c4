package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShapeKeys(t *testing.T) {
	text := "x"
	b := true
	assert.Empty(t, (&AnswerValue{}).ShapeKeys())
	assert.Equal(t, []string{"textValue"}, (&AnswerValue{TextValue: &text}).ShapeKeys())
	assert.Len(t, (&AnswerValue{TextValue: &text, BoolValue: &b}).ShapeKeys(), 2)

	// MultipleIndex and authoring references are not value fields.
	index := 1
	assert.Empty(t, (&AnswerValue{MultipleIndex: &index, ChoiceText: &text}).ShapeKeys())
}

func TestAnswerValueEqual(t *testing.T) {
	five := 5
	alsoFive := 5
	six := 6
	a := &AnswerValue{IntegerValue: &five}
	assert.True(t, a.Equal(&AnswerValue{IntegerValue: &alsoFive}))
	assert.False(t, a.Equal(&AnswerValue{IntegerValue: &six}))
	assert.False(t, a.Equal(&AnswerValue{}))

	zero := 0
	r1 := &AnswerValue{IntegerRange: &IntegerRange{Min: &zero}}
	r2 := &AnswerValue{IntegerRange: &IntegerRange{Min: &zero}}
	r3 := &AnswerValue{IntegerRange: &IntegerRange{Max: &zero}}
	assert.True(t, r1.Equal(r2))
	assert.False(t, r1.Equal(r3))

	c1 := &AnswerValue{Choices: []ChoiceAnswer{{ID: 1}, {ID: 2}}}
	c2 := &AnswerValue{Choices: []ChoiceAnswer{{ID: 1}, {ID: 2}}}
	c3 := &AnswerValue{Choices: []ChoiceAnswer{{ID: 1}}}
	assert.True(t, c1.Equal(c2))
	assert.False(t, c1.Equal(c3))
}

func TestSelectedChoiceIDs(t *testing.T) {
	seven := uint(7)
	assert.Equal(t, []uint{7}, (&AnswerValue{Choice: &seven}).SelectedChoiceIDs())
	assert.Equal(t, []uint{1, 2}, (&AnswerValue{Choices: []ChoiceAnswer{{ID: 1}, {ID: 2}}}).SelectedChoiceIDs())
	assert.Empty(t, (&AnswerValue{}).SelectedChoiceIDs())
}

func TestAnswerValues(t *testing.T) {
	b := true
	single := Answer{QuestionID: 1, Answer: &AnswerValue{BoolValue: &b}}
	assert.Len(t, single.Values(), 1)

	multiple := Answer{QuestionID: 1, Answers: []AnswerValue{{BoolValue: &b}, {BoolValue: &b}}}
	assert.Len(t, multiple.Values(), 2)
}
