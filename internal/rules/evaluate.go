package rules

import "surveyreg/internal/models"

// AnswerMap maps a question id to its currently recorded logical
// answers. A missing or empty entry means the question is unanswered.
type AnswerMap map[uint][]models.AnswerValue

// Evaluate applies the rule's condition to the referenced question's
// current answers. True means the gated element is applicable.
func Evaluate(rule models.Rule, answers AnswerMap) bool {
	recorded := answers[rule.QuestionID]
	switch rule.Logic {
	case models.LogicEquals:
		// An unanswered question cannot satisfy equals.
		return anyEqual(recorded, rule.Answer)
	case models.LogicNotEquals:
		// Absence is not-equal in neither direction.
		return len(recorded) > 0 && !anyEqual(recorded, rule.Answer)
	case models.LogicExists:
		return len(recorded) > 0
	case models.LogicNotExists:
		return len(recorded) == 0
	case models.LogicNotSelected:
		return noneSelected(rule.SelectionIDs, recorded)
	case models.LogicEachNotSelected:
		// Restricted to the first SelectionCount entries when set; each
		// entry is checked independently.
		ids := rule.SelectionIDs
		if rule.SelectionCount > 0 && rule.SelectionCount < len(ids) {
			ids = ids[:rule.SelectionCount]
		}
		return noneSelected(ids, recorded)
	}
	return false
}

func anyEqual(recorded []models.AnswerValue, literal *models.AnswerValue) bool {
	for i := range recorded {
		value := recorded[i]
		value.MultipleIndex = nil
		if value.Equal(literal) {
			return true
		}
	}
	return false
}

func noneSelected(ids []uint, recorded []models.AnswerValue) bool {
	selected := make(map[uint]bool)
	for i := range recorded {
		for _, id := range recorded[i].SelectedChoiceIDs() {
			selected[id] = true
		}
	}
	for _, id := range ids {
		if selected[id] {
			return false
		}
	}
	return true
}
