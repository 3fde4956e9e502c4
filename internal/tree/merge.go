package tree

import "surveyreg/internal/models"

// QuestionMap indexes every question of the tree by id, including
// questions nested in sections at any depth.
func QuestionMap(survey *models.Survey) map[uint]*models.Question {
	index := make(map[uint]*models.Question)
	collectQuestions(survey.Questions, index)
	collectSections(survey.Sections, index)
	return index
}

func collectQuestions(questions []*models.Question, index map[uint]*models.Question) {
	for _, question := range questions {
		index[question.ID] = question
		collectSections(question.Sections, index)
	}
}

func collectSections(sections []*models.Section, index map[uint]*models.Question) {
	for _, section := range sections {
		collectQuestions(section.Questions, index)
		collectSections(section.Sections, index)
	}
}

// Questions returns every question of the tree in traversal order.
func Questions(survey *models.Survey) []*models.Question {
	var list []*models.Question
	var walkSections func([]*models.Section)
	var walkQuestions func([]*models.Question)
	walkQuestions = func(questions []*models.Question) {
		for _, question := range questions {
			list = append(list, question)
			walkSections(question.Sections)
		}
	}
	walkSections = func(sections []*models.Section) {
		for _, section := range sections {
			walkQuestions(section.Questions)
			walkSections(section.Sections)
		}
	}
	walkQuestions(survey.Questions)
	walkSections(survey.Sections)
	return list
}

// SectionQuestionIDs maps each section id to the ids of every question
// under it at any depth, including questions of nested sections.
func SectionQuestionIDs(survey *models.Survey) map[uint][]uint {
	index := make(map[uint][]uint)
	var gather func(section *models.Section) []uint
	gather = func(section *models.Section) []uint {
		var ids []uint
		for _, question := range section.Questions {
			ids = append(ids, question.ID)
			for _, nested := range question.Sections {
				ids = append(ids, gather(nested)...)
			}
		}
		for _, nested := range section.Sections {
			ids = append(ids, gather(nested)...)
		}
		index[section.ID] = ids
		return ids
	}
	var walkQuestions func(questions []*models.Question)
	walkQuestions = func(questions []*models.Question) {
		for _, question := range questions {
			for _, section := range question.Sections {
				gather(section)
			}
		}
	}
	for _, section := range survey.Sections {
		gather(section)
	}
	walkQuestions(survey.Questions)
	return index
}

// MergeAnswers attaches stored answers to their questions, producing
// the answered-survey view. Answers for questions no longer in the tree
// are ignored.
func MergeAnswers(survey *models.Survey, answers []models.Answer) {
	index := QuestionMap(survey)
	for _, answer := range answers {
		question, ok := index[answer.QuestionID]
		if !ok {
			continue
		}
		if answer.Answer != nil {
			question.Answer = answer.Answer
		} else if len(answer.Answers) > 0 {
			question.Answers = answer.Answers
		}
	}
}
