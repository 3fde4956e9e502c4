package tree

import (
	"sort"

	"surveyreg/internal/models"
	"surveyreg/internal/surveyerr"
)

// SectionRow is one persisted flat section together with the ordered
// ids of the questions it contains. It is the storage-side counterpart
// of FlatSection, with index pointers replaced by ids.
type SectionRow struct {
	ID               uint
	Name             string
	Description      string
	ParentID         *uint
	ParentQuestionID *uint
	Line             int
	EnableWhen       []models.Rule
	QuestionIDs      []uint
}

// Content is the reconstructed root content of a survey: root sections
// when the survey is section-typed, otherwise its root question list.
type Content struct {
	Questions []*models.Question
	Sections  []*models.Section
}

// Reconstruct rebuilds the nested tree from flat rows. questions is the
// full ordered question list of the survey; rows reference them by id.
// Rows referencing a missing parent or question are rejected.
func Reconstruct(rows []SectionRow, questions []*models.Question) (*Content, error) {
	if len(rows) == 0 {
		return &Content{Questions: questions}, nil
	}

	questionsByID := make(map[uint]*models.Question, len(questions))
	for _, question := range questions {
		questionsByID[question.ID] = question
	}

	sorted := make([]SectionRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Line < sorted[j].Line })

	nodes := make(map[uint]*models.Section, len(sorted))
	for _, row := range sorted {
		nodes[row.ID] = &models.Section{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			EnableWhen:  row.EnableWhen,
		}
	}

	inner := make(map[uint]bool)
	var roots []*models.Section
	for _, row := range sorted {
		node := nodes[row.ID]
		for _, questionID := range row.QuestionIDs {
			question, ok := questionsByID[questionID]
			if !ok {
				return nil, surveyerr.New(surveyerr.OrphanedQuestion)
			}
			node.Questions = append(node.Questions, question)
			inner[questionID] = true
		}
		switch {
		case row.ParentID != nil:
			parent, ok := nodes[*row.ParentID]
			if !ok {
				return nil, surveyerr.New(surveyerr.OrphanedSection)
			}
			parent.Sections = append(parent.Sections, node)
		case row.ParentQuestionID != nil:
			question, ok := questionsByID[*row.ParentQuestionID]
			if !ok {
				return nil, surveyerr.New(surveyerr.OrphanedQuestion)
			}
			question.Sections = append(question.Sections, node)
		default:
			roots = append(roots, node)
		}
	}

	if len(roots) > 0 {
		return &Content{Sections: roots}, nil
	}
	// Section rows exist but all hang off questions: the survey root
	// keeps its question form, minus questions claimed by sections.
	outer := make([]*models.Question, 0, len(questions))
	for _, question := range questions {
		if !inner[question.ID] {
			outer = append(outer, question)
		}
	}
	return &Content{Questions: outer}, nil
}
