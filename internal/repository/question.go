package repository

import (
	"context"
	"errors"

	"surveyreg/internal/database"
	"surveyreg/internal/lifecycle"
	"surveyreg/internal/models"
	"surveyreg/internal/surveyerr"

	"gorm.io/gorm"
)

// CreateQuestion persists a standalone question with its choices and
// returns the assigned id.
func CreateQuestion(ctx context.Context, question *models.Question) (uint, error) {
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createQuestionTx(tx, question)
	})
	return question.ID, err
}

// createQuestionTx writes the question and its choice rows inside the
// caller's transaction. The question DTO is updated in place with the
// assigned question and choice ids so callers can translate rule
// references against it.
func createQuestionTx(tx *gorm.DB, question *models.Question) error {
	record := models.QuestionRecord{
		Type:        question.Type,
		Text:        question.Text,
		Instruction: question.Instruction,
		Meta:        question.Meta,
		Multiple:    question.Multiple,
		MaxCount:    question.MaxCount,
	}
	if question.Version > 0 {
		v := question.Version
		record.Version = &v
	}
	if question.GroupID > 0 {
		g := question.GroupID
		record.GroupID = &g
	}
	if question.ChoiceSetReference != "" {
		set, err := findChoiceSet(tx, question.ChoiceSetReference)
		if err != nil {
			return err
		}
		record.ChoiceSetID = &set.ID
	}
	if err := tx.Create(&record).Error; err != nil {
		return err
	}
	question.ID = record.ID

	if record.ChoiceSetID != nil {
		// Choice set questions carry the set's choices; nothing new is
		// created, but rule translation needs them resolved on the DTO.
		choices, err := choiceSetChoices(tx, *record.ChoiceSetID)
		if err != nil {
			return err
		}
		question.Choices = choices
		return nil
	}

	for _, text := range question.OneOfChoices {
		question.Choices = append(question.Choices, models.Choice{Text: text, Type: models.TypeBool})
	}
	question.OneOfChoices = nil

	for i := range question.Choices {
		choice := &question.Choices[i]
		choiceType := choice.Type
		if choiceType == "" {
			choiceType = models.TypeBool
		}
		row := models.QuestionChoiceRecord{
			QuestionID: &record.ID,
			Type:       choiceType,
			Text:       choice.Text,
			Meta:       choice.Meta,
			Line:       i,
		}
		if choice.Code != "" {
			code := choice.Code
			row.Code = &code
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		choice.ID = row.ID
	}
	return nil
}

// GetQuestion loads one question with its choices.
func GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	questions, err := loadQuestions(database.DB.WithContext(ctx), []uint{id})
	if err != nil {
		return nil, err
	}
	return questions[0], nil
}

// ListQuestions returns every live question definition.
func ListQuestions(ctx context.Context) ([]*models.Question, error) {
	var records []models.QuestionRecord
	if err := database.DB.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, len(records))
	for i, record := range records {
		ids[i] = record.ID
	}
	if len(ids) == 0 {
		return []*models.Question{}, nil
	}
	return loadQuestions(database.DB.WithContext(ctx), ids)
}

// ReplaceQuestion creates a new version of a question and soft-deletes
// the replaced one. Questions referenced by live surveys cannot be
// replaced; the surveys must be replaced instead.
func ReplaceQuestion(ctx context.Context, id uint, replacement *models.Question) (uint, error) {
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := guardQuestionUnreferenced(tx, id); err != nil {
			return err
		}
		var previous models.QuestionRecord
		if err := tx.First(&previous, id).Error; err != nil {
			return questionLookupError(err)
		}
		plan := lifecycle.PlanReplacement(previous.ID, previous.Version, previous.GroupID)
		replacement.Version = plan.Version
		replacement.GroupID = plan.GroupID
		if err := createQuestionTx(tx, replacement); err != nil {
			return err
		}
		if plan.InitializeLineage {
			updates := map[string]any{"version": 1, "group_id": previous.ID}
			if err := tx.Model(&previous).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&previous).Error
	})
	if err != nil {
		return 0, err
	}
	return replacement.ID, nil
}

// DeleteQuestion soft-deletes a question and its choices. Questions
// referenced by live surveys cannot be deleted.
func DeleteQuestion(ctx context.Context, id uint) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := guardQuestionUnreferenced(tx, id); err != nil {
			return err
		}
		var record models.QuestionRecord
		if err := tx.First(&record, id).Error; err != nil {
			return questionLookupError(err)
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionChoiceRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&record).Error
	})
}

func guardQuestionUnreferenced(tx *gorm.DB, id uint) error {
	var count int64
	err := tx.Model(&models.SurveyQuestionRecord{}).Where("question_id = ?", id).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return surveyerr.New(surveyerr.QuestionReplaceWhenActiveSurveys)
	}
	return nil
}

func questionLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return surveyerr.New(surveyerr.QuestionNotFound)
	}
	return err
}

func findChoiceSet(tx *gorm.DB, reference string) (*models.ChoiceSetRecord, error) {
	var set models.ChoiceSetRecord
	err := tx.Where("reference = ?", reference).First(&set).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, surveyerr.New(surveyerr.ChoiceSetNotFound, reference)
	}
	if err != nil {
		return nil, err
	}
	return &set, nil
}

// CreateChoiceSet persists a named reusable choice list.
func CreateChoiceSet(ctx context.Context, reference string, choices []models.Choice) (uint, error) {
	set := models.ChoiceSetRecord{Reference: reference}
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&set).Error; err != nil {
			return err
		}
		for i, choice := range choices {
			choiceType := choice.Type
			if choiceType == "" {
				choiceType = models.TypeBool
			}
			row := models.QuestionChoiceRecord{
				ChoiceSetID: &set.ID,
				Type:        choiceType,
				Text:        choice.Text,
				Meta:        choice.Meta,
				Line:        i,
			}
			if choice.Code != "" {
				code := choice.Code
				row.Code = &code
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return set.ID, err
}

func choiceSetChoices(tx *gorm.DB, setID uint) ([]models.Choice, error) {
	var rows []models.QuestionChoiceRecord
	err := tx.Where("choice_set_id = ?", setID).Order("line").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	choices := make([]models.Choice, 0, len(rows))
	for _, row := range rows {
		choices = append(choices, choiceFromRow(row))
	}
	return choices, nil
}

func choiceFromRow(row models.QuestionChoiceRecord) models.Choice {
	choice := models.Choice{
		ID:   row.ID,
		Text: row.Text,
		Type: row.Type,
		Meta: row.Meta,
	}
	if row.Code != nil {
		choice.Code = *row.Code
	}
	return choice
}

// loadQuestions fetches the given questions with their choices, in the
// order of ids. A missing id fails the whole load.
func loadQuestions(db *gorm.DB, ids []uint) ([]*models.Question, error) {
	var records []models.QuestionRecord
	if err := db.Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.QuestionRecord, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}
	choicesByQuestion, err := questionChoices(db, records)
	if err != nil {
		return nil, err
	}

	questions := make([]*models.Question, 0, len(ids))
	for _, id := range ids {
		record, ok := byID[id]
		if !ok {
			return nil, surveyerr.New(surveyerr.QuestionNotFound)
		}
		question := &models.Question{
			ID:          record.ID,
			Type:        record.Type,
			Text:        record.Text,
			Instruction: record.Instruction,
			Meta:        record.Meta,
			Multiple:    record.Multiple,
			MaxCount:    record.MaxCount,
			Choices:     elideChoiceTypes(record.Type, choicesByQuestion[record.ID]),
		}
		if record.Version != nil {
			question.Version = *record.Version
		}
		if record.GroupID != nil {
			question.GroupID = *record.GroupID
		}
		questions = append(questions, question)
	}
	return questions, nil
}

// questionChoices loads the choices of each question, following the
// choice set indirection where the question carries one.
func questionChoices(db *gorm.DB, records []models.QuestionRecord) (map[uint][]models.Choice, error) {
	ids := make([]uint, 0, len(records))
	setIDs := make([]uint, 0)
	setOf := make(map[uint]uint)
	for _, record := range records {
		if record.ChoiceSetID != nil {
			setIDs = append(setIDs, *record.ChoiceSetID)
			setOf[record.ID] = *record.ChoiceSetID
			continue
		}
		ids = append(ids, record.ID)
	}

	result := make(map[uint][]models.Choice)
	if len(ids) > 0 {
		var rows []models.QuestionChoiceRecord
		err := db.Where("question_id IN ?", ids).Order("question_id, line").Find(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			result[*row.QuestionID] = append(result[*row.QuestionID], choiceFromRow(row))
		}
	}
	if len(setIDs) > 0 {
		var rows []models.QuestionChoiceRecord
		err := db.Where("choice_set_id IN ?", setIDs).Order("choice_set_id, line").Find(&rows).Error
		if err != nil {
			return nil, err
		}
		bySet := make(map[uint][]models.Choice)
		for _, row := range rows {
			bySet[*row.ChoiceSetID] = append(bySet[*row.ChoiceSetID], choiceFromRow(row))
		}
		for questionID, setID := range setOf {
			result[questionID] = bySet[setID]
		}
	}
	return result, nil
}

// elideChoiceTypes drops choice types that are implied by the question
// type: single-choice questions never expose per-choice types, and
// open-choice questions only expose non-bool ones.
func elideChoiceTypes(questionType models.QuestionType, choices []models.Choice) []models.Choice {
	switch questionType {
	case models.TypeChoice:
		for i := range choices {
			choices[i].Type = ""
		}
	case models.TypeOpenChoice:
		for i := range choices {
			if choices[i].Type == models.TypeBool {
				choices[i].Type = ""
			}
		}
	}
	return choices
}
