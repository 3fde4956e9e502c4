package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"surveyreg/internal/codec"
	"surveyreg/internal/database"
	"surveyreg/internal/models"
	"surveyreg/internal/rules"
	"surveyreg/internal/surveyerr"
	"surveyreg/internal/tree"

	"gorm.io/gorm"
)

// CreateAnswers validates and stores a batch of answers for one user
// and survey. Answers to currently skipped questions are rejected; a
// completed submission additionally requires every applicable required
// question to be answered, counting answers from earlier batches.
// Re-answered questions have their prior rows soft-deleted.
func CreateAnswers(ctx context.Context, userID, surveyID uint, submission *models.Submission) error {
	status := submission.Status
	if status == "" {
		status = models.SubmissionInProgress
	}
	if status != models.SubmissionInProgress && status != models.SubmissionCompleted {
		return fmt.Errorf("unknown submission status %q", status)
	}

	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		survey, err := getSurveyTx(tx, surveyID)
		if err != nil {
			return err
		}
		questionsByID := tree.QuestionMap(survey)
		ordered := tree.Questions(survey)

		type pendingRows struct {
			questionID uint
			rows       []models.AnswerRow
		}
		pending := make([]pendingRows, 0, len(submission.Answers))
		submitted := make([]uint, 0, len(submission.Answers))
		for i := range submission.Answers {
			answer := &submission.Answers[i]
			question, ok := questionsByID[answer.QuestionID]
			if !ok {
				return surveyerr.New(surveyerr.QuestionNotFound)
			}
			var rows []models.AnswerRow
			if question.Multiple {
				rows, err = codec.EncodeMultiple(question.Type, answer.Answers)
			} else {
				rows, err = codec.Encode(question.Type, answer.Answer)
			}
			if err != nil {
				return err
			}
			pending = append(pending, pendingRows{questionID: answer.QuestionID, rows: rows})
			submitted = append(submitted, answer.QuestionID)
		}

		merged, err := recordedAnswers(tx, userID, surveyID, questionsByID)
		if err != nil {
			return err
		}
		for i := range submission.Answers {
			answer := &submission.Answers[i]
			merged[answer.QuestionID] = answer.Values()
		}

		gates := surveyGates(survey, ordered)
		required := make(map[uint]bool, len(ordered))
		for _, question := range ordered {
			required[question.ID] = question.Required
		}
		if err := rules.ValidateSubmission(gates, required, merged, submitted, status); err != nil {
			return err
		}

		err = tx.Where("user_id = ? AND survey_id = ? AND question_id IN ?", userID, surveyID, submitted).
			Delete(&models.AnswerRecord{}).Error
		if err != nil {
			return err
		}
		for _, entry := range pending {
			for _, row := range entry.rows {
				record := models.AnswerRecord{
					UserID:           userID,
					SurveyID:         surveyID,
					QuestionID:       entry.questionID,
					QuestionChoiceID: row.QuestionChoiceID,
					Value:            row.Value,
					FileID:           row.FileID,
					MultipleIndex:    row.MultipleIndex,
					Status:           status,
				}
				if err := tx.Create(&record).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// surveyGates expands the survey's stored rules into per-question gate
// lists, resolving section rules onto their descendant questions and
// skip rules onto their trailing question blocks.
func surveyGates(survey *models.Survey, ordered []*models.Question) map[uint][]models.Rule {
	var bindings []rules.Binding
	for _, question := range ordered {
		questionID := question.ID
		for _, rule := range question.EnableWhen {
			bindings = append(bindings, rules.Binding{
				Rule:       rule,
				QuestionID: &questionID,
				SkipCount:  rule.SkipCount,
			})
		}
	}
	var walkSections func(sections []*models.Section)
	walkSections = func(sections []*models.Section) {
		for _, section := range sections {
			sectionID := section.ID
			for _, rule := range section.EnableWhen {
				bindings = append(bindings, rules.Binding{Rule: rule, SectionID: &sectionID})
			}
			walkSections(section.Sections)
			for _, question := range section.Questions {
				walkSections(question.Sections)
			}
		}
	}
	walkSections(survey.Sections)
	for _, question := range survey.Questions {
		walkSections(question.Sections)
	}

	order := make([]uint, len(ordered))
	for i, question := range ordered {
		order[i] = question.ID
	}
	return rules.GateMap(bindings, order, tree.SectionQuestionIDs(survey))
}

// recordedAnswers loads and decodes the user's current answers to the
// survey as a question id to logical values map. Answers to questions
// no longer in the survey are dropped.
func recordedAnswers(tx *gorm.DB, userID, surveyID uint, questionsByID map[uint]*models.Question) (rules.AnswerMap, error) {
	var records []models.AnswerRecord
	err := tx.Where("user_id = ? AND survey_id = ?", userID, surveyID).Order("id").Find(&records).Error
	if err != nil {
		return nil, err
	}
	choiceTypes := make(map[uint]models.QuestionType)
	for _, question := range questionsByID {
		for _, choice := range question.Choices {
			choiceTypes[choice.ID] = choice.Type
		}
	}

	grouped := make(map[uint][]models.AnswerRow)
	for _, record := range records {
		row := models.AnswerRow{
			QuestionChoiceID: record.QuestionChoiceID,
			Value:            record.Value,
			FileID:           record.FileID,
			MultipleIndex:    record.MultipleIndex,
		}
		if record.QuestionChoiceID != nil {
			row.ChoiceType = choiceTypes[*record.QuestionChoiceID]
		}
		grouped[record.QuestionID] = append(grouped[record.QuestionID], row)
	}

	merged := make(rules.AnswerMap, len(grouped))
	for questionID, rows := range grouped {
		question, ok := questionsByID[questionID]
		if !ok {
			continue
		}
		if question.Multiple {
			values, err := codec.DecodeMultiple(question.Type, rows)
			if err != nil {
				return nil, err
			}
			merged[questionID] = values
			continue
		}
		value, err := codec.Decode(question.Type, rows)
		if err != nil {
			return nil, err
		}
		merged[questionID] = []models.AnswerValue{*value}
	}
	return merged, nil
}

// GetAnswers returns the user's current answers to a survey in client
// form, one entry per answered question.
func GetAnswers(ctx context.Context, userID, surveyID uint) ([]models.Answer, error) {
	db := database.DB.WithContext(ctx)
	var records []models.AnswerRecord
	err := db.Where("user_id = ? AND survey_id = ?", userID, surveyID).Order("id").Find(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []models.Answer{}, nil
	}

	questionIDs := make([]uint, 0, len(records))
	seen := make(map[uint]bool)
	for _, record := range records {
		if !seen[record.QuestionID] {
			seen[record.QuestionID] = true
			questionIDs = append(questionIDs, record.QuestionID)
		}
	}
	// Unscoped: answers may reference question versions that have since
	// been replaced.
	types, multiples, choiceTypes, err := answerQuestionInfo(db, questionIDs)
	if err != nil {
		return nil, err
	}

	grouped := make(map[uint][]models.AnswerRow, len(questionIDs))
	for _, record := range records {
		row := models.AnswerRow{
			QuestionChoiceID: record.QuestionChoiceID,
			Value:            record.Value,
			FileID:           record.FileID,
			MultipleIndex:    record.MultipleIndex,
		}
		if record.QuestionChoiceID != nil {
			row.ChoiceType = choiceTypes[*record.QuestionChoiceID]
		}
		grouped[record.QuestionID] = append(grouped[record.QuestionID], row)
	}

	sort.Slice(questionIDs, func(i, j int) bool { return questionIDs[i] < questionIDs[j] })
	answers := make([]models.Answer, 0, len(questionIDs))
	for _, questionID := range questionIDs {
		answer := models.Answer{QuestionID: questionID}
		if multiples[questionID] {
			values, err := codec.DecodeMultiple(types[questionID], grouped[questionID])
			if err != nil {
				return nil, err
			}
			answer.Answers = values
		} else {
			value, err := codec.Decode(types[questionID], grouped[questionID])
			if err != nil {
				return nil, err
			}
			answer.Answer = value
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

func answerQuestionInfo(db *gorm.DB, questionIDs []uint) (map[uint]models.QuestionType, map[uint]bool, map[uint]models.QuestionType, error) {
	var questionRecords []models.QuestionRecord
	err := db.Unscoped().Where("id IN ?", questionIDs).Find(&questionRecords).Error
	if err != nil {
		return nil, nil, nil, err
	}
	types := make(map[uint]models.QuestionType, len(questionRecords))
	multiples := make(map[uint]bool, len(questionRecords))
	for _, record := range questionRecords {
		types[record.ID] = record.Type
		multiples[record.ID] = record.Multiple
	}

	var choiceRecords []models.QuestionChoiceRecord
	err = db.Unscoped().Where("question_id IN ?", questionIDs).Find(&choiceRecords).Error
	if err != nil {
		return nil, nil, nil, err
	}
	choiceTypes := make(map[uint]models.QuestionType, len(choiceRecords))
	for _, record := range choiceRecords {
		choiceTypes[record.ID] = record.Type
	}
	var setIDs []uint
	for _, record := range questionRecords {
		if record.ChoiceSetID != nil {
			setIDs = append(setIDs, *record.ChoiceSetID)
		}
	}
	if len(setIDs) > 0 {
		var setChoices []models.QuestionChoiceRecord
		err = db.Unscoped().Where("choice_set_id IN ?", setIDs).Find(&setChoices).Error
		if err != nil {
			return nil, nil, nil, err
		}
		for _, record := range setChoices {
			choiceTypes[record.ID] = record.Type
		}
	}
	return types, multiples, choiceTypes, nil
}

// GetAnsweredSurvey returns the survey definition with the user's
// answers merged onto its questions.
func GetAnsweredSurvey(ctx context.Context, userID, surveyID uint) (*models.Survey, error) {
	survey, err := GetSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	answers, err := GetAnswers(ctx, userID, surveyID)
	if err != nil {
		return nil, err
	}
	tree.MergeAnswers(survey, answers)
	return survey, nil
}

// StaleSubmission identifies an in-progress submission whose latest
// answer predates the reminder cutoff.
type StaleSubmission struct {
	UserID       uint
	SurveyID     uint
	Email        string
	LastAnswered time.Time
}

// ListStaleSubmissions finds user/survey pairs whose newest in-progress
// answer is older than the cutoff, for the reminder scheduler.
func ListStaleSubmissions(ctx context.Context, cutoff time.Time) ([]StaleSubmission, error) {
	var stale []StaleSubmission
	err := database.DB.WithContext(ctx).Raw(`
		SELECT a.user_id, a.survey_id, u.email, MAX(a.created_at) AS last_answered
		FROM answer_records a
		JOIN users u ON u.id = a.user_id
		WHERE a.deleted_at IS NULL AND a.status = ?
		GROUP BY a.user_id, a.survey_id, u.email
		HAVING MAX(a.created_at) < ?`,
		models.SubmissionInProgress, cutoff).Scan(&stale).Error
	if err != nil {
		return nil, err
	}
	return stale, nil
}
