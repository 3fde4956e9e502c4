// Package rules stores, translates and evaluates the enable-when and
// skip conditions attached to survey questions and sections.
package rules

import (
	"surveyreg/internal/models"
	"surveyreg/internal/surveyerr"
)

// ValidateShape checks the rule's answer payload against its logic:
// equals-family rules must carry a literal answer, the rest must not,
// and the not-selected family needs a selection set.
func ValidateShape(rule *models.Rule) error {
	if rule.Logic.RequiresAnswer() {
		if rule.Answer == nil {
			return surveyerr.New(surveyerr.RuleAnswerRequiredForLogic, string(rule.Logic))
		}
		return nil
	}
	if rule.Answer != nil {
		return surveyerr.New(surveyerr.RuleAnswerForbiddenForLogic, string(rule.Logic))
	}
	if rule.Logic.RequiresSelections() {
		if len(rule.SelectionIDs) == 0 && len(rule.SelectionTexts) == 0 {
			return surveyerr.New(surveyerr.RuleAnswerRequiredForLogic, string(rule.Logic))
		}
	}
	return nil
}

// Translate resolves authoring-time references in place once the
// questions of the same submission have been persisted: a structural
// questionIndex becomes the persisted question id, and human-authored
// choice texts or codes become concrete choice ids looked up from the
// referenced question's choices.
func Translate(rule *models.Rule, questions []*models.Question, choicesByQuestion map[uint][]models.Choice) error {
	if err := ValidateShape(rule); err != nil {
		return err
	}
	if rule.QuestionIndex != nil {
		index := *rule.QuestionIndex
		if index < 0 || index >= len(questions) {
			return surveyerr.New(surveyerr.QuestionNotFound, "rule question index out of range")
		}
		rule.QuestionID = questions[index].ID
		rule.QuestionIndex = nil
	}
	choices := choicesByQuestion[rule.QuestionID]

	if rule.Answer != nil {
		if err := translateAnswer(rule.Answer, choices); err != nil {
			return err
		}
	}
	if len(rule.SelectionTexts) > 0 {
		if len(choices) == 0 {
			return surveyerr.New(surveyerr.SkipChoiceForNonChoice)
		}
		for _, text := range rule.SelectionTexts {
			id, ok := choiceIDByText(choices, text)
			if !ok {
				return surveyerr.New(surveyerr.SkipChoiceNotFound, text)
			}
			rule.SelectionIDs = append(rule.SelectionIDs, id)
		}
		rule.SelectionTexts = nil
	}
	return nil
}

func translateAnswer(answer *models.AnswerValue, choices []models.Choice) error {
	if answer.ChoiceText != nil {
		if len(choices) == 0 {
			return surveyerr.New(surveyerr.SkipChoiceForNonChoice)
		}
		id, ok := choiceIDByText(choices, *answer.ChoiceText)
		if !ok {
			return surveyerr.New(surveyerr.SkipChoiceNotFound, *answer.ChoiceText)
		}
		answer.Choice = &id
		answer.ChoiceText = nil
	}
	if answer.Code != nil {
		if len(choices) == 0 {
			return surveyerr.New(surveyerr.SkipChoiceForNonChoice)
		}
		id, ok := choiceIDByCode(choices, *answer.Code)
		if !ok {
			return surveyerr.New(surveyerr.SkipChoiceNotFound, *answer.Code)
		}
		answer.Choice = &id
		answer.Code = nil
	}
	for i := range answer.Choices {
		selection := &answer.Choices[i]
		if selection.Text == "" {
			continue
		}
		if len(choices) == 0 {
			return surveyerr.New(surveyerr.SkipChoiceForNonChoice)
		}
		id, ok := choiceIDByText(choices, selection.Text)
		if !ok {
			return surveyerr.New(surveyerr.SkipChoiceNotFound, selection.Text)
		}
		selection.ID = id
		selection.Text = ""
	}
	return nil
}

func choiceIDByText(choices []models.Choice, text string) (uint, bool) {
	for _, choice := range choices {
		if choice.Text == text {
			return choice.ID, true
		}
	}
	return 0, false
}

func choiceIDByCode(choices []models.Choice, code string) (uint, bool) {
	for _, choice := range choices {
		if choice.Code == code {
			return choice.ID, true
		}
	}
	return 0, false
}
