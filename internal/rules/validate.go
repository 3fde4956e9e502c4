package rules

import (
	"surveyreg/internal/models"
	"surveyreg/internal/surveyerr"
)

// Binding attaches a stored rule to the survey element it gates:
// exactly one of QuestionID and SectionID is set. A rule with a skip
// count gates the trailing question block of its holder instead of the
// holder itself.
type Binding struct {
	Rule       models.Rule
	QuestionID *uint
	SectionID  *uint
	SkipCount  *int
}

// GateMap expands rule bindings into per-question rule lists.
// questionOrder is the survey's flattened question id order, used to
// resolve skip spans; sectionQuestions maps a section id to the ids of
// every question under it at any depth.
func GateMap(bindings []Binding, questionOrder []uint, sectionQuestions map[uint][]uint) map[uint][]models.Rule {
	position := make(map[uint]int, len(questionOrder))
	for i, id := range questionOrder {
		position[id] = i
	}
	gates := make(map[uint][]models.Rule)
	for _, binding := range bindings {
		switch {
		case binding.SectionID != nil:
			for _, questionID := range sectionQuestions[*binding.SectionID] {
				gates[questionID] = append(gates[questionID], binding.Rule)
			}
		case binding.QuestionID != nil && binding.SkipCount != nil:
			start, ok := position[*binding.QuestionID]
			if !ok {
				continue
			}
			end := start + *binding.SkipCount
			for i := start + 1; i <= end && i < len(questionOrder); i++ {
				gates[questionOrder[i]] = append(gates[questionOrder[i]], binding.Rule)
			}
		case binding.QuestionID != nil:
			id := *binding.QuestionID
			gates[id] = append(gates[id], binding.Rule)
		}
	}
	return gates
}

// Applicable reports whether the question is currently enabled: every
// gating rule must hold.
func Applicable(gates map[uint][]models.Rule, questionID uint, answers AnswerMap) bool {
	for _, rule := range gates[questionID] {
		if !Evaluate(rule, answers) {
			return false
		}
	}
	return true
}

// ValidateSubmission checks a batch of answers against the survey's
// gating rules before anything is written. merged is the answer state
// after the submission would apply (existing answers overlaid with the
// submitted ones); submitted lists the question ids the batch answers.
// A completed submission requires every applicable required question to
// have an answer.
func ValidateSubmission(gates map[uint][]models.Rule, required map[uint]bool, merged AnswerMap, submitted []uint, status models.SubmissionStatus) error {
	for _, questionID := range submitted {
		if !Applicable(gates, questionID, merged) {
			return surveyerr.New(surveyerr.AnswerToBeSkippedAnswered)
		}
	}
	if status != models.SubmissionCompleted {
		return nil
	}
	for questionID, isRequired := range required {
		if !isRequired {
			continue
		}
		if !Applicable(gates, questionID, merged) {
			continue
		}
		if len(merged[questionID]) == 0 {
			return surveyerr.New(surveyerr.AnswerRequiredMissing)
		}
	}
	return nil
}
