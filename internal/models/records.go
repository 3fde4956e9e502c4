package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// The *Record types are the persisted rows behind the client tree model.
// Definition rows are paranoid: a replace soft-deletes the prior version
// so answer history stays joinable.

// SurveyRecord is one immutable version of a survey definition.
type SurveyRecord struct {
	ID          uint         `gorm:"primaryKey"`
	Status      SurveyStatus `gorm:"type:varchar(16);not null;default:draft;index"`
	Version     *int
	GroupID     *uint `gorm:"index"`
	Name        string
	Description string
	Meta        map[string]any `gorm:"serializer:json"`
	AuthorID    uint
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// QuestionRecord is one immutable version of a question definition.
type QuestionRecord struct {
	ID          uint         `gorm:"primaryKey"`
	Type        QuestionType `gorm:"type:varchar(16);not null"`
	Text        string
	Instruction string
	Meta        map[string]any `gorm:"serializer:json"`
	Multiple    bool
	MaxCount    *int
	Version     *int
	GroupID     *uint `gorm:"index"`
	ChoiceSetID *uint
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// ChoiceSetRecord names a reusable choice list shared across questions.
type ChoiceSetRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Reference string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// QuestionChoiceRecord is one ordered choice of a question or choice
// set. Exactly one of QuestionID/ChoiceSetID is set.
type QuestionChoiceRecord struct {
	ID          uint         `gorm:"primaryKey"`
	QuestionID  *uint        `gorm:"index"`
	ChoiceSetID *uint        `gorm:"index"`
	Type        QuestionType `gorm:"type:varchar(16);not null;default:bool"`
	Text        string
	Code        *string
	Meta        map[string]any `gorm:"serializer:json"`
	Line        int
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// SurveyQuestionRecord links a survey version to a question version in
// root traversal order. Required is survey-scoped.
type SurveyQuestionRecord struct {
	ID         uint `gorm:"primaryKey"`
	SurveyID   uint `gorm:"index:idx_survey_question_survey"`
	QuestionID uint `gorm:"index"`
	Line       int
	Required   bool
	CreatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

// SurveySectionRecord is one flat section row. ParentID points to the
// structurally containing section, ParentQuestionID to the question
// owning this section; both nil means the section sits at survey root.
type SurveySectionRecord struct {
	ID               uint `gorm:"primaryKey"`
	SurveyID         uint `gorm:"index"`
	Name             string
	Description      string
	ParentID         *uint
	ParentQuestionID *uint
	Line             int
	CreatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

// SurveySectionQuestionRecord records section membership and line order
// of questions inside a section.
type SurveySectionQuestionRecord struct {
	ID              uint `gorm:"primaryKey"`
	SurveySectionID uint `gorm:"index"`
	QuestionID      uint
	Line            int
	CreatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

// AnswerRuleRecord is a stored enable-when rule. QuestionID or SectionID
// names the gated element; AnswerQuestionID the question whose answer is
// inspected. SkipCount shifts the gate onto the trailing question block.
type AnswerRuleRecord struct {
	ID               uint `gorm:"primaryKey"`
	SurveyID         uint `gorm:"index"`
	QuestionID       *uint
	SectionID        *uint
	Logic            RuleLogic `gorm:"type:varchar(24);not null"`
	Line             int
	AnswerQuestionID uint
	SelectionIDs     pq.Int64Array `gorm:"type:integer[]"`
	SelectionCount   int
	SkipCount        *int
	CreatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

// AnswerRuleValueRecord holds the literal answer rows of an equals-family
// rule, in the same flat format as answers.
type AnswerRuleValueRecord struct {
	ID               uint `gorm:"primaryKey"`
	RuleID           uint `gorm:"index"`
	QuestionChoiceID *uint
	Value            *string
	CreatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

// AnswerRecord is one flat answer row.
type AnswerRecord struct {
	ID               uint `gorm:"primaryKey"`
	UserID           uint `gorm:"index:idx_answer_user_survey"`
	SurveyID         uint `gorm:"index:idx_answer_user_survey"`
	QuestionID       uint `gorm:"index"`
	QuestionChoiceID *uint
	Value            *string
	FileID           *uint
	MultipleIndex    *int
	Status           SubmissionStatus `gorm:"type:varchar(16);not null;default:in-progress"`
	CreatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

// User is a registry participant or author.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
