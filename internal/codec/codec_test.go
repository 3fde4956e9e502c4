package codec

import (
	"testing"

	"surveyreg/internal/models"
	"surveyreg/internal/surveyerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string     { return &s }
func intPtr(n int) *int           { return &n }
func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

func TestEncodeDecodeScalars(t *testing.T) {
	cases := []struct {
		name   string
		qt     models.QuestionType
		answer models.AnswerValue
		stored string
	}{
		{"text", models.TypeText, models.AnswerValue{TextValue: strPtr("free text")}, "free text"},
		{"zip", models.TypeZip, models.AnswerValue{ZipcodeValue: strPtr("20850")}, "20850"},
		{"date", models.TypeDate, models.AnswerValue{DateValue: strPtr("2016-04-13")}, "2016-04-13"},
		{"year", models.TypeYear, models.AnswerValue{YearValue: strPtr("1984")}, "1984"},
		{"month", models.TypeMonth, models.AnswerValue{MonthValue: strPtr("06")}, "06"},
		{"day", models.TypeDay, models.AnswerValue{DayValue: strPtr("21")}, "21"},
		{"bool true", models.TypeBool, models.AnswerValue{BoolValue: boolPtr(true)}, "true"},
		{"bool false", models.TypeBool, models.AnswerValue{BoolValue: boolPtr(false)}, "false"},
		{"integer", models.TypeInteger, models.AnswerValue{IntegerValue: intPtr(42)}, "42"},
		{"float", models.TypeFloat, models.AnswerValue{FloatValue: floatPtr(12.5)}, "12.5"},
		{"pounds", models.TypePounds, models.AnswerValue{NumberValue: floatPtr(180)}, "180"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := Encode(tc.qt, &tc.answer)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			require.NotNil(t, rows[0].Value)
			assert.Equal(t, tc.stored, *rows[0].Value)

			decoded, err := Decode(tc.qt, rows)
			require.NoError(t, err)
			assert.True(t, decoded.Equal(&tc.answer))
		})
	}
}

func TestEncodeDecodeComposites(t *testing.T) {
	t.Run("feet inches", func(t *testing.T) {
		answer := models.AnswerValue{FeetInchesValue: &models.FeetInches{Feet: 5, Inches: 8}}
		rows, err := Encode(models.TypeFeetInches, &answer)
		require.NoError(t, err)
		assert.Equal(t, "5-8", *rows[0].Value)

		decoded, err := Decode(models.TypeFeetInches, rows)
		require.NoError(t, err)
		assert.True(t, decoded.Equal(&answer))
	})

	t.Run("feet inches zero components", func(t *testing.T) {
		answer := models.AnswerValue{FeetInchesValue: &models.FeetInches{}}
		rows, err := Encode(models.TypeFeetInches, &answer)
		require.NoError(t, err)
		assert.Equal(t, "0-0", *rows[0].Value)
	})

	t.Run("blood pressure", func(t *testing.T) {
		answer := models.AnswerValue{BloodPressureValue: &models.BloodPressure{Systolic: 120, Diastolic: 80}}
		rows, err := Encode(models.TypeBloodPressure, &answer)
		require.NoError(t, err)
		assert.Equal(t, "120-80", *rows[0].Value)

		decoded, err := Decode(models.TypeBloodPressure, rows)
		require.NoError(t, err)
		assert.True(t, decoded.Equal(&answer))
	})

	t.Run("file", func(t *testing.T) {
		answer := models.AnswerValue{FileValue: &models.FileValue{ID: 7, Name: "consent.pdf"}}
		rows, err := Encode(models.TypeFile, &answer)
		require.NoError(t, err)
		require.NotNil(t, rows[0].FileID)
		assert.Equal(t, uint(7), *rows[0].FileID)
		assert.Equal(t, "consent.pdf", *rows[0].Value)

		decoded, err := Decode(models.TypeFile, rows)
		require.NoError(t, err)
		assert.True(t, decoded.Equal(&answer))
	})
}

func TestEncodeDecodeIntegerRange(t *testing.T) {
	cases := []struct {
		name   string
		value  models.IntegerRange
		stored string
	}{
		{"both bounds", models.IntegerRange{Min: intPtr(3), Max: intPtr(7)}, "3:7"},
		{"zero bound preserved", models.IntegerRange{Min: intPtr(0), Max: intPtr(10)}, "0:10"},
		{"min only", models.IntegerRange{Min: intPtr(5)}, "5:"},
		{"max only", models.IntegerRange{Max: intPtr(9)}, ":9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			answer := models.AnswerValue{IntegerRange: &tc.value}
			rows, err := Encode(models.TypeIntegerRange, &answer)
			require.NoError(t, err)
			assert.Equal(t, tc.stored, *rows[0].Value)

			decoded, err := Decode(models.TypeIntegerRange, rows)
			require.NoError(t, err)
			assert.True(t, decoded.Equal(&answer))
		})
	}
}

func TestEncodeDecodeChoice(t *testing.T) {
	id := uint(12)
	answer := models.AnswerValue{Choice: &id}
	rows, err := Encode(models.TypeChoice, &answer)
	require.NoError(t, err)
	require.NotNil(t, rows[0].QuestionChoiceID)
	assert.Equal(t, id, *rows[0].QuestionChoiceID)
	assert.Nil(t, rows[0].Value)

	decoded, err := Decode(models.TypeChoice, rows)
	require.NoError(t, err)
	assert.True(t, decoded.Equal(&answer))
}

func TestOpenChoiceDecodesTextRow(t *testing.T) {
	rows := []models.AnswerRow{{Value: strPtr("other thing")}}
	decoded, err := Decode(models.TypeOpenChoice, rows)
	require.NoError(t, err)
	require.NotNil(t, decoded.TextValue)
	assert.Equal(t, "other thing", *decoded.TextValue)
}

func TestEncodeDecodeChoices(t *testing.T) {
	// Two bare selections and one choice with a text sub-value.
	answer := models.AnswerValue{Choices: []models.ChoiceAnswer{
		{ID: 1},
		{ID: 2},
		{ID: 3, AnswerValue: models.AnswerValue{TextValue: strPtr("detail")}},
	}}
	rows, err := Encode(models.TypeChoices, &answer)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "true", *rows[0].Value)
	assert.Equal(t, "true", *rows[1].Value)
	assert.Equal(t, "detail", *rows[2].Value)

	rows[0].ChoiceType = models.TypeBool
	rows[1].ChoiceType = models.TypeBool
	rows[2].ChoiceType = models.TypeText
	decoded, err := Decode(models.TypeChoices, rows)
	require.NoError(t, err)
	require.Len(t, decoded.Choices, 3)
	assert.Equal(t, *decoded.Choices[0].BoolValue, true)
	assert.Equal(t, "detail", *decoded.Choices[2].TextValue)
}

func TestDecodeChoicesDefaultsToBoolTrue(t *testing.T) {
	id := uint(4)
	rows := []models.AnswerRow{{QuestionChoiceID: &id}}
	decoded, err := Decode(models.TypeChoices, rows)
	require.NoError(t, err)
	require.Len(t, decoded.Choices, 1)
	require.NotNil(t, decoded.Choices[0].BoolValue)
	assert.True(t, *decoded.Choices[0].BoolValue)
}

func TestEncodeRejectsAmbiguousShape(t *testing.T) {
	answer := models.AnswerValue{
		TextValue: strPtr("x"),
		BoolValue: boolPtr(true),
	}
	_, err := Encode(models.TypeText, &answer)
	assert.True(t, surveyerr.HasCode(err, surveyerr.AmbiguousAnswerShape))
	assert.Contains(t, err.Error(), "boolValue, textValue")
}

func TestEncodeRejectsEmptyShape(t *testing.T) {
	_, err := Encode(models.TypeText, &models.AnswerValue{})
	assert.True(t, surveyerr.HasCode(err, surveyerr.UnrecognizedAnswerShape))
}

func TestEncodeRejectsNilAnswer(t *testing.T) {
	// A submission entry can arrive with no answer value at all.
	_, err := Encode(models.TypeText, nil)
	assert.True(t, surveyerr.HasCode(err, surveyerr.UnrecognizedAnswerShape))
}

func TestEncodeMultipleRejectsEmptyList(t *testing.T) {
	_, err := EncodeMultiple(models.TypeText, nil)
	assert.True(t, surveyerr.HasCode(err, surveyerr.UnrecognizedAnswerShape))

	_, err = EncodeMultiple(models.TypeText, []models.AnswerValue{})
	assert.True(t, surveyerr.HasCode(err, surveyerr.UnrecognizedAnswerShape))
}

func TestEncodeMultiple(t *testing.T) {
	answers := []models.AnswerValue{
		{MultipleIndex: intPtr(0), TextValue: strPtr("first")},
		{MultipleIndex: intPtr(2), TextValue: strPtr("third")},
	}
	rows, err := EncodeMultiple(models.TypeText, answers)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 0, *rows[0].MultipleIndex)
	assert.Equal(t, 2, *rows[1].MultipleIndex)
}

func TestEncodeMultipleRequiresIndex(t *testing.T) {
	answers := []models.AnswerValue{{TextValue: strPtr("first")}}
	_, err := EncodeMultiple(models.TypeText, answers)
	assert.True(t, surveyerr.HasCode(err, surveyerr.MissingMultipleIndex))
}

func TestDecodeMultipleSortsByIndex(t *testing.T) {
	rows := []models.AnswerRow{
		{Value: strPtr("third"), MultipleIndex: intPtr(2)},
		{Value: strPtr("first"), MultipleIndex: intPtr(0)},
	}
	answers, err := DecodeMultiple(models.TypeText, rows)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "first", *answers[0].TextValue)
	assert.Equal(t, 0, *answers[0].MultipleIndex)
	assert.Equal(t, "third", *answers[1].TextValue)
	assert.Equal(t, 2, *answers[1].MultipleIndex)
}

func TestDecodeMultipleRequiresIndex(t *testing.T) {
	rows := []models.AnswerRow{{Value: strPtr("first")}}
	_, err := DecodeMultiple(models.TypeText, rows)
	assert.True(t, surveyerr.HasCode(err, surveyerr.MissingMultipleIndex))
}
