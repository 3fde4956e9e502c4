// Package codec converts typed client answer values to and from the
// flat row format the persistence layer stores. Both directions are
// pure: Encode dispatches on the single value field the client set,
// Decode dispatches on the question type the rows belong to.
package codec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"surveyreg/internal/models"
	"surveyreg/internal/surveyerr"
)

// Encode converts one logical answer into its flat rows. Most types
// produce exactly one row; a choices answer produces one row per
// selected choice.
func Encode(qt models.QuestionType, answer *models.AnswerValue) ([]models.AnswerRow, error) {
	if answer == nil {
		return nil, surveyerr.New(surveyerr.UnrecognizedAnswerShape, "missing answer")
	}
	keys := answer.ShapeKeys()
	if len(keys) == 0 {
		return nil, surveyerr.New(surveyerr.UnrecognizedAnswerShape)
	}
	if len(keys) > 1 {
		sort.Strings(keys)
		return nil, surveyerr.New(surveyerr.AmbiguousAnswerShape, strings.Join(keys, ", "))
	}

	switch keys[0] {
	case "fileValue":
		id := answer.FileValue.ID
		name := answer.FileValue.Name
		return []models.AnswerRow{{FileID: &id, Value: &name}}, nil
	case "choice":
		id := *answer.Choice
		return []models.AnswerRow{{QuestionChoiceID: &id}}, nil
	case "choices":
		return encodeChoices(answer.Choices)
	default:
		value, err := encodeScalar(keys[0], answer)
		if err != nil {
			return nil, err
		}
		return []models.AnswerRow{{Value: &value}}, nil
	}
}

// EncodeMultiple converts the answer list of a repeatable question.
// Every element must declare its multiple index.
func EncodeMultiple(qt models.QuestionType, answers []models.AnswerValue) ([]models.AnswerRow, error) {
	if len(answers) == 0 {
		return nil, surveyerr.New(surveyerr.UnrecognizedAnswerShape, "missing answers")
	}
	var rows []models.AnswerRow
	for i := range answers {
		answer := answers[i]
		if answer.MultipleIndex == nil {
			return nil, surveyerr.New(surveyerr.MissingMultipleIndex)
		}
		index := *answer.MultipleIndex
		answer.MultipleIndex = nil
		elementRows, err := Encode(qt, &answer)
		if err != nil {
			return nil, err
		}
		for j := range elementRows {
			idx := index
			elementRows[j].MultipleIndex = &idx
		}
		rows = append(rows, elementRows...)
	}
	return rows, nil
}

func encodeChoices(choices []models.ChoiceAnswer) ([]models.AnswerRow, error) {
	rows := make([]models.AnswerRow, 0, len(choices))
	for i := range choices {
		choice := choices[i]
		id := choice.ID
		keys := choice.ShapeKeys()
		if len(keys) > 1 {
			sort.Strings(keys)
			return nil, surveyerr.New(surveyerr.AmbiguousAnswerShape, strings.Join(keys, ", "))
		}
		if len(keys) == 0 {
			// A bare selection is an implicit bool true.
			value := "true"
			rows = append(rows, models.AnswerRow{QuestionChoiceID: &id, Value: &value})
			continue
		}
		value, err := encodeScalar(keys[0], &choice.AnswerValue)
		if err != nil {
			return nil, err
		}
		rows = append(rows, models.AnswerRow{QuestionChoiceID: &id, Value: &value})
	}
	return rows, nil
}

func encodeScalar(key string, a *models.AnswerValue) (string, error) {
	switch key {
	case "textValue":
		return *a.TextValue, nil
	case "zipcodeValue":
		return *a.ZipcodeValue, nil
	case "dateValue":
		return *a.DateValue, nil
	case "yearValue":
		return *a.YearValue, nil
	case "monthValue":
		return *a.MonthValue, nil
	case "dayValue":
		return *a.DayValue, nil
	case "boolValue":
		return strconv.FormatBool(*a.BoolValue), nil
	case "integerValue":
		return strconv.Itoa(*a.IntegerValue), nil
	case "floatValue":
		return strconv.FormatFloat(*a.FloatValue, 'g', -1, 64), nil
	case "numberValue":
		return strconv.FormatFloat(*a.NumberValue, 'g', -1, 64), nil
	case "feetInchesValue":
		// Missing components have already zeroed out in the struct.
		return fmt.Sprintf("%d-%d", a.FeetInchesValue.Feet, a.FeetInchesValue.Inches), nil
	case "bloodPressureValue":
		return fmt.Sprintf("%d-%d", a.BloodPressureValue.Systolic, a.BloodPressureValue.Diastolic), nil
	case "integerRange":
		// A bound of exactly 0 must serialize as "0"; only a nil bound
		// becomes the empty segment.
		return rangeSegment(a.IntegerRange.Min) + ":" + rangeSegment(a.IntegerRange.Max), nil
	default:
		return "", surveyerr.New(surveyerr.UnrecognizedAnswerShape, key)
	}
}

func rangeSegment(bound *int) string {
	if bound == nil {
		return ""
	}
	return strconv.Itoa(*bound)
}

// Decode reconstitutes one logical answer from its flat rows.
func Decode(qt models.QuestionType, rows []models.AnswerRow) (*models.AnswerValue, error) {
	if len(rows) == 0 {
		return nil, surveyerr.New(surveyerr.UnrecognizedAnswerShape, "no rows")
	}
	switch qt {
	case models.TypeChoice:
		id := *rows[0].QuestionChoiceID
		return &models.AnswerValue{Choice: &id}, nil
	case models.TypeOpenChoice:
		if rows[0].QuestionChoiceID != nil {
			id := *rows[0].QuestionChoiceID
			return &models.AnswerValue{Choice: &id}, nil
		}
		text := *rows[0].Value
		return &models.AnswerValue{TextValue: &text}, nil
	case models.TypeChoices:
		return decodeChoices(rows)
	case models.TypeFile:
		file := models.FileValue{ID: *rows[0].FileID}
		if rows[0].Value != nil {
			file.Name = *rows[0].Value
		}
		return &models.AnswerValue{FileValue: &file}, nil
	default:
		if rows[0].Value == nil {
			return nil, surveyerr.New(surveyerr.UnrecognizedAnswerShape, "missing value")
		}
		return decodeScalar(qt, *rows[0].Value)
	}
}

// DecodeMultiple reconstitutes the answer list of a repeatable question,
// grouped by multiple index and sorted ascending.
func DecodeMultiple(qt models.QuestionType, rows []models.AnswerRow) ([]models.AnswerValue, error) {
	grouped := make(map[int][]models.AnswerRow)
	indices := make([]int, 0)
	for _, row := range rows {
		if row.MultipleIndex == nil {
			return nil, surveyerr.New(surveyerr.MissingMultipleIndex)
		}
		index := *row.MultipleIndex
		if _, seen := grouped[index]; !seen {
			indices = append(indices, index)
		}
		grouped[index] = append(grouped[index], row)
	}
	sort.Ints(indices)
	answers := make([]models.AnswerValue, 0, len(indices))
	for _, index := range indices {
		answer, err := Decode(qt, grouped[index])
		if err != nil {
			return nil, err
		}
		idx := index
		answer.MultipleIndex = &idx
		answers = append(answers, *answer)
	}
	return answers, nil
}

func decodeChoices(rows []models.AnswerRow) (*models.AnswerValue, error) {
	choices := make([]models.ChoiceAnswer, 0, len(rows))
	for _, row := range rows {
		choice := models.ChoiceAnswer{ID: *row.QuestionChoiceID}
		choiceType := row.ChoiceType
		if choiceType == "" {
			choiceType = models.TypeBool
		}
		if row.Value == nil {
			choice.AnswerValue = DefaultChoiceValue()
		} else {
			sub, err := decodeScalar(choiceType, *row.Value)
			if err != nil {
				return nil, err
			}
			choice.AnswerValue = *sub
		}
		choices = append(choices, choice)
	}
	sort.Slice(choices, func(i, j int) bool { return choices[i].ID < choices[j].ID })
	return &models.AnswerValue{Choices: choices}, nil
}

// DefaultChoiceValue is the named default policy for a selected choice
// with no explicit sub-value: selection means bool true.
func DefaultChoiceValue() models.AnswerValue {
	t := true
	return models.AnswerValue{BoolValue: &t}
}

func decodeScalar(qt models.QuestionType, value string) (*models.AnswerValue, error) {
	switch qt {
	case models.TypeText:
		return &models.AnswerValue{TextValue: &value}, nil
	case models.TypeZip:
		return &models.AnswerValue{ZipcodeValue: &value}, nil
	case models.TypeDate:
		return &models.AnswerValue{DateValue: &value}, nil
	case models.TypeYear:
		return &models.AnswerValue{YearValue: &value}, nil
	case models.TypeMonth:
		return &models.AnswerValue{MonthValue: &value}, nil
	case models.TypeDay:
		return &models.AnswerValue{DayValue: &value}, nil
	case models.TypeBool:
		b := value == "true"
		return &models.AnswerValue{BoolValue: &b}, nil
	case models.TypeInteger:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("decode integer answer %q: %w", value, err)
		}
		return &models.AnswerValue{IntegerValue: &n}, nil
	case models.TypeIntegerRange:
		return decodeIntegerRange(value)
	case models.TypeFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("decode float answer %q: %w", value, err)
		}
		return &models.AnswerValue{FloatValue: &f}, nil
	case models.TypePounds:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("decode pounds answer %q: %w", value, err)
		}
		return &models.AnswerValue{NumberValue: &f}, nil
	case models.TypeBloodPressure:
		systolic, diastolic, err := decodePair(value)
		if err != nil {
			return nil, fmt.Errorf("decode blood pressure answer %q: %w", value, err)
		}
		return &models.AnswerValue{BloodPressureValue: &models.BloodPressure{Systolic: systolic, Diastolic: diastolic}}, nil
	case models.TypeFeetInches:
		feet, inches, err := decodePair(value)
		if err != nil {
			return nil, fmt.Errorf("decode feet-inches answer %q: %w", value, err)
		}
		return &models.AnswerValue{FeetInchesValue: &models.FeetInches{Feet: feet, Inches: inches}}, nil
	default:
		return nil, surveyerr.New(surveyerr.UnrecognizedAnswerShape, string(qt))
	}
}

func decodePair(value string) (int, int, error) {
	first, second, found := strings.Cut(value, "-")
	if !found {
		return 0, 0, fmt.Errorf("expected two dash separated components")
	}
	a, err := strconv.Atoi(first)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(second)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func decodeIntegerRange(value string) (*models.AnswerValue, error) {
	minPart, maxPart, found := strings.Cut(value, ":")
	if !found {
		return nil, fmt.Errorf("decode integer range answer %q: missing separator", value)
	}
	r := models.IntegerRange{}
	if minPart != "" {
		n, err := strconv.Atoi(minPart)
		if err != nil {
			return nil, fmt.Errorf("decode integer range min %q: %w", minPart, err)
		}
		r.Min = &n
	}
	if maxPart != "" {
		n, err := strconv.Atoi(maxPart)
		if err != nil {
			return nil, fmt.Errorf("decode integer range max %q: %w", maxPart, err)
		}
		r.Max = &n
	}
	return &models.AnswerValue{IntegerRange: &r}, nil
}
