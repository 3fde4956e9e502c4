// Package tree converts between the nested survey authoring tree and
// the linear flattened form the persistence layer stores, and merges
// stored answers back into reconstructed trees.
package tree

import (
	"surveyreg/internal/models"
	"surveyreg/internal/surveyerr"
)

// FlatSection is one section record of a flattened survey. Parent
// pointers are indices into the accumulator slices rather than ids,
// because new content has no ids yet.
type FlatSection struct {
	ID                  uint
	Name                string
	Description         string
	ParentIndex         *int // index of the containing section in Sections
	ParentQuestionIndex *int // index of the owning question in Questions
	Line                int
	EnableWhen          []models.Rule
	QuestionIndices     []int
}

// Flattened is the linear form of a survey tree. Questions appear in
// depth-first traversal order; rule questionIndex references index into
// Questions.
type Flattened struct {
	Sections  []*FlatSection
	Questions []*models.Question
}

// Flatten walks the survey tree depth-first into a fresh accumulator.
// The tree must carry questions or sections, not both and not neither.
func Flatten(survey *models.Survey) (*Flattened, error) {
	if len(survey.Questions) > 0 && len(survey.Sections) > 0 {
		return nil, surveyerr.New(surveyerr.BothQuestionsAndSectionsSpecified)
	}
	acc := &Flattened{}
	switch {
	case len(survey.Sections) > 0:
		if err := acc.pushSections(survey.Sections, nil); err != nil {
			return nil, err
		}
	case len(survey.Questions) > 0:
		if _, err := acc.pushQuestions(survey.Questions); err != nil {
			return nil, err
		}
	default:
		return nil, surveyerr.New(surveyerr.NoQuestions)
	}
	if len(acc.Questions) == 0 {
		return nil, surveyerr.New(surveyerr.NoQuestions)
	}
	if err := acc.validateSkipCounts(); err != nil {
		return nil, err
	}
	return acc, nil
}

func (acc *Flattened) pushSections(sections []*models.Section, parentIndex *int) error {
	for line, section := range sections {
		if len(section.Questions) > 0 && len(section.Sections) > 0 {
			return surveyerr.New(surveyerr.BothQuestionsAndSectionsSpecified, section.Name)
		}
		flat := &FlatSection{
			ID:          section.ID,
			Name:        section.Name,
			Description: section.Description,
			ParentIndex: parentIndex,
			Line:        line,
			EnableWhen:  section.EnableWhen,
		}
		acc.Sections = append(acc.Sections, flat)
		index := len(acc.Sections) - 1

		if len(section.Questions) > 0 {
			indices, err := acc.pushQuestions(section.Questions)
			if err != nil {
				return err
			}
			flat.QuestionIndices = indices
		}
		if len(section.Sections) > 0 {
			if err := acc.pushSections(section.Sections, &index); err != nil {
				return err
			}
		}
	}
	return nil
}

func (acc *Flattened) pushQuestions(questions []*models.Question) ([]int, error) {
	indices := make([]int, 0, len(questions))
	for _, question := range questions {
		questionIndex := len(acc.Questions)
		indices = append(indices, questionIndex)
		acc.Questions = append(acc.Questions, question)

		for line, section := range question.Sections {
			if len(section.Questions) > 0 && len(section.Sections) > 0 {
				return nil, surveyerr.New(surveyerr.BothQuestionsAndSectionsSpecified, section.Name)
			}
			qi := questionIndex
			flat := &FlatSection{
				ID:                  section.ID,
				Name:                section.Name,
				Description:         section.Description,
				ParentQuestionIndex: &qi,
				Line:                line,
				EnableWhen:          section.EnableWhen,
			}
			acc.Sections = append(acc.Sections, flat)
			index := len(acc.Sections) - 1

			if len(section.Questions) > 0 {
				inner, err := acc.pushQuestions(section.Questions)
				if err != nil {
					return nil, err
				}
				flat.QuestionIndices = inner
			}
			if len(section.Sections) > 0 {
				if err := acc.pushSections(section.Sections, &index); err != nil {
					return nil, err
				}
			}
		}
	}
	return indices, nil
}

// validateSkipCounts checks that every skip-form rule leaves enough
// trailing questions to cover.
func (acc *Flattened) validateSkipCounts() error {
	for index, question := range acc.Questions {
		for _, rule := range question.EnableWhen {
			if rule.SkipCount == nil {
				continue
			}
			if index+*rule.SkipCount >= len(acc.Questions) {
				return surveyerr.New(surveyerr.NotEnoughTrailingQuestions, question.Text)
			}
		}
	}
	return nil
}
