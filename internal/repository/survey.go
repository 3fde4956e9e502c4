package repository

import (
	"context"
	"errors"

	"surveyreg/internal/codec"
	"surveyreg/internal/database"
	"surveyreg/internal/lifecycle"
	"surveyreg/internal/models"
	"surveyreg/internal/rules"
	"surveyreg/internal/surveyerr"
	"surveyreg/internal/tree"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// CreateSurvey persists a survey definition tree and returns the
// assigned id. Questions authored inline are created alongside; rule
// references by question index or choice text are resolved before
// anything is written.
func CreateSurvey(ctx context.Context, survey *models.Survey, authorID uint) (uint, error) {
	var id uint
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = createSurveyTx(tx, survey, authorID)
		return err
	})
	return id, err
}

func createSurveyTx(tx *gorm.DB, survey *models.Survey, authorID uint) (uint, error) {
	status := survey.Status
	if status == "" {
		status = models.StatusDraft
	}
	if status == models.StatusRetired || !status.Valid() {
		return 0, surveyerr.New(surveyerr.InvalidStatusTransition, string(status))
	}

	flat, err := tree.Flatten(survey)
	if err != nil {
		return 0, err
	}

	record := models.SurveyRecord{
		Status:      status,
		Name:        survey.Name,
		Description: survey.Description,
		Meta:        survey.Meta,
		AuthorID:    authorID,
	}
	if survey.Version > 0 {
		v := survey.Version
		record.Version = &v
	}
	if survey.GroupID > 0 {
		g := survey.GroupID
		record.GroupID = &g
	}
	if err := tx.Create(&record).Error; err != nil {
		return 0, err
	}
	survey.ID = record.ID

	if err := createSurveyContentTx(tx, record.ID, flat); err != nil {
		return 0, err
	}
	return record.ID, nil
}

// createSurveyContentTx writes the flattened question links, section
// rows and rules of a survey. Inline questions get created first so the
// rule translator can resolve index and choice text references against
// persisted ids.
func createSurveyContentTx(tx *gorm.DB, surveyID uint, flat *tree.Flattened) error {
	var existingIDs []uint
	for _, question := range flat.Questions {
		if question.ID == 0 {
			if err := createQuestionTx(tx, question); err != nil {
				return err
			}
			continue
		}
		existingIDs = append(existingIDs, question.ID)
	}

	typesByID := make(map[uint]models.QuestionType, len(flat.Questions))
	choicesByQuestion := make(map[uint][]models.Choice, len(flat.Questions))
	for _, question := range flat.Questions {
		if question.Type != "" {
			typesByID[question.ID] = question.Type
			choicesByQuestion[question.ID] = question.Choices
		}
	}
	if len(existingIDs) > 0 {
		existing, err := loadQuestions(tx, existingIDs)
		if err != nil {
			return err
		}
		for _, question := range existing {
			if _, inline := typesByID[question.ID]; inline {
				continue
			}
			typesByID[question.ID] = question.Type
			choicesByQuestion[question.ID] = question.Choices
		}
	}

	for _, question := range flat.Questions {
		for i := range question.EnableWhen {
			if err := rules.Translate(&question.EnableWhen[i], flat.Questions, choicesByQuestion); err != nil {
				return err
			}
		}
	}
	for _, section := range flat.Sections {
		for i := range section.EnableWhen {
			if err := rules.Translate(&section.EnableWhen[i], flat.Questions, choicesByQuestion); err != nil {
				return err
			}
		}
	}

	for line, question := range flat.Questions {
		link := models.SurveyQuestionRecord{
			SurveyID:   surveyID,
			QuestionID: question.ID,
			Line:       line,
			Required:   question.Required,
		}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}

	sectionIDs := make([]uint, len(flat.Sections))
	for i, section := range flat.Sections {
		row := models.SurveySectionRecord{
			SurveyID:    surveyID,
			Name:        section.Name,
			Description: section.Description,
			Line:        section.Line,
		}
		if section.ParentIndex != nil {
			parentID := sectionIDs[*section.ParentIndex]
			row.ParentID = &parentID
		}
		if section.ParentQuestionIndex != nil {
			questionID := flat.Questions[*section.ParentQuestionIndex].ID
			row.ParentQuestionID = &questionID
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		sectionIDs[i] = row.ID

		for line, questionIndex := range section.QuestionIndices {
			member := models.SurveySectionQuestionRecord{
				SurveySectionID: row.ID,
				QuestionID:      flat.Questions[questionIndex].ID,
				Line:            line,
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
	}

	for _, question := range flat.Questions {
		questionID := question.ID
		for line, rule := range question.EnableWhen {
			if err := createRuleTx(tx, surveyID, &questionID, nil, rule, line, typesByID); err != nil {
				return err
			}
		}
	}
	for i, section := range flat.Sections {
		sectionID := sectionIDs[i]
		for line, rule := range section.EnableWhen {
			if err := createRuleTx(tx, surveyID, nil, &sectionID, rule, line, typesByID); err != nil {
				return err
			}
		}
	}
	return nil
}

func createRuleTx(tx *gorm.DB, surveyID uint, questionID, sectionID *uint, rule models.Rule, line int, typesByID map[uint]models.QuestionType) error {
	row := models.AnswerRuleRecord{
		SurveyID:         surveyID,
		QuestionID:       questionID,
		SectionID:        sectionID,
		Logic:            rule.Logic,
		Line:             line,
		AnswerQuestionID: rule.QuestionID,
		SelectionCount:   rule.SelectionCount,
		SkipCount:        rule.SkipCount,
	}
	if len(rule.SelectionIDs) > 0 {
		ids := make(pq.Int64Array, len(rule.SelectionIDs))
		for i, id := range rule.SelectionIDs {
			ids[i] = int64(id)
		}
		row.SelectionIDs = ids
	}
	if err := tx.Create(&row).Error; err != nil {
		return err
	}
	if rule.Answer == nil {
		return nil
	}
	valueRows, err := codec.Encode(typesByID[rule.QuestionID], rule.Answer)
	if err != nil {
		return err
	}
	for _, valueRow := range valueRows {
		value := models.AnswerRuleValueRecord{
			RuleID:           row.ID,
			QuestionChoiceID: valueRow.QuestionChoiceID,
			Value:            valueRow.Value,
		}
		if err := tx.Create(&value).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetSurvey loads a survey definition with its full content tree.
func GetSurvey(ctx context.Context, id uint) (*models.Survey, error) {
	var survey *models.Survey
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		survey, err = getSurveyTx(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return survey, nil
}

func getSurveyTx(tx *gorm.DB, id uint) (*models.Survey, error) {
	var record models.SurveyRecord
	if err := tx.First(&record, id).Error; err != nil {
		return nil, surveyLookupError(err)
	}
	survey := surveyFromRecord(record)

	var links []models.SurveyQuestionRecord
	err := tx.Where("survey_id = ?", id).Order("line").Find(&links).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(links))
	for i, link := range links {
		ids[i] = link.QuestionID
	}
	questions, err := loadQuestions(tx, ids)
	if err != nil {
		return nil, err
	}
	for i, link := range links {
		questions[i].Required = link.Required
	}

	questionRules, sectionRules, err := loadRules(tx, id, questions)
	if err != nil {
		return nil, err
	}
	questionsByID := make(map[uint]*models.Question, len(questions))
	for _, question := range questions {
		questionsByID[question.ID] = question
	}
	for questionID, ruleList := range questionRules {
		if question, ok := questionsByID[questionID]; ok {
			question.EnableWhen = ruleList
		}
	}

	sectionRows, err := loadSectionRows(tx, id, sectionRules)
	if err != nil {
		return nil, err
	}
	content, err := tree.Reconstruct(sectionRows, questions)
	if err != nil {
		return nil, err
	}
	survey.Questions = content.Questions
	survey.Sections = content.Sections
	return survey, nil
}

func surveyFromRecord(record models.SurveyRecord) *models.Survey {
	survey := &models.Survey{
		ID:          record.ID,
		Status:      record.Status,
		Name:        record.Name,
		Description: record.Description,
		Meta:        record.Meta,
	}
	if record.Version != nil {
		survey.Version = *record.Version
	}
	if record.GroupID != nil {
		survey.GroupID = *record.GroupID
	}
	return survey
}

// loadRules fetches the stored rules of a survey and reshapes them into
// client form, grouped by the question or section they gate.
func loadRules(tx *gorm.DB, surveyID uint, questions []*models.Question) (map[uint][]models.Rule, map[uint][]models.Rule, error) {
	var ruleRows []models.AnswerRuleRecord
	err := tx.Where("survey_id = ?", surveyID).Order("line").Find(&ruleRows).Error
	if err != nil {
		return nil, nil, err
	}
	if len(ruleRows) == 0 {
		return nil, nil, nil
	}

	ruleIDs := make([]uint, len(ruleRows))
	for i, row := range ruleRows {
		ruleIDs[i] = row.ID
	}
	var valueRows []models.AnswerRuleValueRecord
	err = tx.Where("rule_id IN ?", ruleIDs).Order("id").Find(&valueRows).Error
	if err != nil {
		return nil, nil, err
	}
	valuesByRule := make(map[uint][]models.AnswerRuleValueRecord)
	for _, row := range valueRows {
		valuesByRule[row.RuleID] = append(valuesByRule[row.RuleID], row)
	}

	typesByID := make(map[uint]models.QuestionType, len(questions))
	choiceTypes := make(map[uint]models.QuestionType)
	for _, question := range questions {
		typesByID[question.ID] = question.Type
		for _, choice := range question.Choices {
			choiceTypes[choice.ID] = choice.Type
		}
	}

	questionRules := make(map[uint][]models.Rule)
	sectionRules := make(map[uint][]models.Rule)
	for _, row := range ruleRows {
		rule := models.Rule{
			Logic:          row.Logic,
			QuestionID:     row.AnswerQuestionID,
			SelectionCount: row.SelectionCount,
			SkipCount:      row.SkipCount,
		}
		for _, id := range row.SelectionIDs {
			rule.SelectionIDs = append(rule.SelectionIDs, uint(id))
		}
		if values := valuesByRule[row.ID]; len(values) > 0 {
			answerRows := make([]models.AnswerRow, 0, len(values))
			for _, value := range values {
				answerRow := models.AnswerRow{
					QuestionChoiceID: value.QuestionChoiceID,
					Value:            value.Value,
				}
				if value.QuestionChoiceID != nil {
					answerRow.ChoiceType = choiceTypes[*value.QuestionChoiceID]
				}
				answerRows = append(answerRows, answerRow)
			}
			answer, err := codec.Decode(typesByID[row.AnswerQuestionID], answerRows)
			if err != nil {
				return nil, nil, err
			}
			rule.Answer = answer
		}
		switch {
		case row.QuestionID != nil:
			questionRules[*row.QuestionID] = append(questionRules[*row.QuestionID], rule)
		case row.SectionID != nil:
			sectionRules[*row.SectionID] = append(sectionRules[*row.SectionID], rule)
		}
	}
	return questionRules, sectionRules, nil
}

func loadSectionRows(tx *gorm.DB, surveyID uint, sectionRules map[uint][]models.Rule) ([]tree.SectionRow, error) {
	var sections []models.SurveySectionRecord
	err := tx.Where("survey_id = ?", surveyID).Order("id").Find(&sections).Error
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, nil
	}
	sectionIDs := make([]uint, len(sections))
	for i, section := range sections {
		sectionIDs[i] = section.ID
	}
	var members []models.SurveySectionQuestionRecord
	err = tx.Where("survey_section_id IN ?", sectionIDs).Order("line").Find(&members).Error
	if err != nil {
		return nil, err
	}
	membersBySection := make(map[uint][]uint)
	for _, member := range members {
		membersBySection[member.SurveySectionID] = append(membersBySection[member.SurveySectionID], member.QuestionID)
	}

	rows := make([]tree.SectionRow, 0, len(sections))
	for _, section := range sections {
		rows = append(rows, tree.SectionRow{
			ID:               section.ID,
			Name:             section.Name,
			Description:      section.Description,
			ParentID:         section.ParentID,
			ParentQuestionID: section.ParentQuestionID,
			Line:             section.Line,
			EnableWhen:       sectionRules[section.ID],
			QuestionIDs:      membersBySection[section.ID],
		})
	}
	return rows, nil
}

// ListSurveys returns survey summaries without content. The default
// listing shows published surveys only; History includes replaced
// (soft-deleted) versions.
func ListSurveys(ctx context.Context, opts models.ListOptions) ([]*models.Survey, error) {
	db := database.DB.WithContext(ctx)
	if opts.History {
		db = db.Unscoped()
	}
	db = db.Model(&models.SurveyRecord{})
	switch opts.Status {
	case "":
		db = db.Where("status = ?", models.StatusPublished)
	case "all":
	default:
		if !opts.Status.Valid() {
			return nil, surveyerr.New(surveyerr.InvalidStatusTransition, string(opts.Status))
		}
		db = db.Where("status = ?", opts.Status)
	}
	if opts.GroupID > 0 {
		db = db.Where("group_id = ?", opts.GroupID)
	}
	if opts.Version > 0 {
		db = db.Where("version = ?", opts.Version)
	}

	var records []models.SurveyRecord
	if err := db.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	surveys := make([]*models.Survey, 0, len(records))
	for _, record := range records {
		surveys = append(surveys, surveyFromRecord(record))
	}
	return surveys, nil
}

// PatchSurvey applies a partial update. Status transitions follow the
// draft/published/retired state machine; changing the question set or
// its order on a non-draft survey requires the force flag and discards
// answers to the removed questions.
func PatchSurvey(ctx context.Context, id uint, patch *models.SurveyPatch) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.SurveyRecord
		if err := tx.First(&record, id).Error; err != nil {
			return surveyLookupError(err)
		}
		if record.Status == models.StatusRetired && !patch.ForceStatus {
			return surveyerr.New(surveyerr.InvalidStatusTransition, "retired surveys cannot be updated")
		}
		if patch.Status != "" && patch.Status != record.Status {
			if err := lifecycle.ValidateTransition(record.Status, patch.Status, patch.ForceStatus); err != nil {
				return err
			}
			record.Status = patch.Status
		}
		if patch.Name != nil {
			record.Name = *patch.Name
		}
		if patch.Description != nil {
			record.Description = *patch.Description
		}
		if patch.Meta != nil {
			record.Meta = patch.Meta
		}

		if len(patch.Questions) > 0 || len(patch.Sections) > 0 {
			err := patchContentTx(tx, &record, patch)
			if err != nil {
				return err
			}
		}
		return tx.Save(&record).Error
	})
}

func patchContentTx(tx *gorm.DB, record *models.SurveyRecord, patch *models.SurveyPatch) error {
	flat, err := tree.Flatten(&models.Survey{Questions: patch.Questions, Sections: patch.Sections})
	if err != nil {
		return err
	}

	var links []models.SurveyQuestionRecord
	err = tx.Where("survey_id = ?", record.ID).Order("line").Find(&links).Error
	if err != nil {
		return err
	}
	kept := make(map[uint]bool, len(flat.Questions))
	for _, question := range flat.Questions {
		if question.ID != 0 {
			kept[question.ID] = true
		}
	}
	var removed []uint
	for _, link := range links {
		if !kept[link.QuestionID] {
			removed = append(removed, link.QuestionID)
		}
	}
	if questionOrderChanged(links, flat.Questions) &&
		record.Status != models.StatusDraft && !patch.ForceQuestions {
		return surveyerr.New(surveyerr.StructuralChangeOnPublished)
	}

	if err := deleteSurveyContentTx(tx, record.ID); err != nil {
		return err
	}
	if len(removed) > 0 {
		err = tx.Where("survey_id = ? AND question_id IN ?", record.ID, removed).
			Delete(&models.AnswerRecord{}).Error
		if err != nil {
			return err
		}
	}
	return createSurveyContentTx(tx, record.ID, flat)
}

// questionOrderChanged reports whether the patched question list differs
// from the stored links as an ordered id sequence. Additions show up as
// id 0 (not yet created), so any new inline question counts as a change,
// as do removals and reorderings.
func questionOrderChanged(links []models.SurveyQuestionRecord, questions []*models.Question) bool {
	if len(links) != len(questions) {
		return true
	}
	for i, link := range links {
		if link.QuestionID != questions[i].ID {
			return true
		}
	}
	return false
}

// deleteSurveyContentTx soft-deletes the question links, sections and
// rules of a survey. Answers are left alone.
func deleteSurveyContentTx(tx *gorm.DB, surveyID uint) error {
	err := tx.Where("survey_id = ?", surveyID).Delete(&models.SurveyQuestionRecord{}).Error
	if err != nil {
		return err
	}

	var ruleIDs []uint
	err = tx.Model(&models.AnswerRuleRecord{}).Where("survey_id = ?", surveyID).Pluck("id", &ruleIDs).Error
	if err != nil {
		return err
	}
	if len(ruleIDs) > 0 {
		err = tx.Where("rule_id IN ?", ruleIDs).Delete(&models.AnswerRuleValueRecord{}).Error
		if err != nil {
			return err
		}
		err = tx.Where("survey_id = ?", surveyID).Delete(&models.AnswerRuleRecord{}).Error
		if err != nil {
			return err
		}
	}

	var sectionIDs []uint
	err = tx.Model(&models.SurveySectionRecord{}).Where("survey_id = ?", surveyID).Pluck("id", &sectionIDs).Error
	if err != nil {
		return err
	}
	if len(sectionIDs) > 0 {
		err = tx.Where("survey_section_id IN ?", sectionIDs).Delete(&models.SurveySectionQuestionRecord{}).Error
		if err != nil {
			return err
		}
		err = tx.Where("survey_id = ?", surveyID).Delete(&models.SurveySectionRecord{}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// ReplaceSurvey creates a new version of a survey and soft-deletes the
// replaced one. The replacement joins the lineage of the old survey:
// same group, next version. Answers to the old version stay joinable
// through the soft-deleted row.
func ReplaceSurvey(ctx context.Context, id uint, replacement *models.Survey, authorID uint) (uint, error) {
	var newID uint
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var previous models.SurveyRecord
		if err := tx.First(&previous, id).Error; err != nil {
			return surveyLookupError(err)
		}
		plan := lifecycle.PlanReplacement(previous.ID, previous.Version, previous.GroupID)
		replacement.Version = plan.Version
		replacement.GroupID = plan.GroupID

		var err error
		newID, err = createSurveyTx(tx, replacement, previous.AuthorID)
		if err != nil {
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
	return newID, nil
}

// DeleteSurvey soft-deletes a survey and its content rows. Recorded
// answers stay for audit.
func DeleteSurvey(ctx context.Context, id uint) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.SurveyRecord
		if err := tx.First(&record, id).Error; err != nil {
			return surveyLookupError(err)
		}
		if err := deleteSurveyContentTx(tx, record.ID); err != nil {
			return err
		}
		return tx.Delete(&record).Error
	})
}

func surveyLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return surveyerr.New(surveyerr.SurveyNotFound)
	}
	return err
}
