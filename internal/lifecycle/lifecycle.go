// Package lifecycle implements the survey status state machine and the
// immutable-version replace semantics shared by surveys and questions.
package lifecycle

import (
	"fmt"

	"surveyreg/internal/models"
	"surveyreg/internal/surveyerr"
)

// ValidateTransition checks a status change. Transitions are monotonic:
// draft to published to retired. Published back to draft needs the
// force flag, draft straight to retired is forbidden, and retired is
// terminal.
func ValidateTransition(from, to models.SurveyStatus, force bool) error {
	if !to.Valid() {
		return surveyerr.New(surveyerr.InvalidStatusTransition, string(to))
	}
	if from == to {
		return nil
	}
	switch from {
	case models.StatusDraft:
		if to == models.StatusRetired {
			return surveyerr.New(surveyerr.InvalidStatusTransition, "draft surveys cannot be retired")
		}
		return nil
	case models.StatusPublished:
		if to == models.StatusDraft && !force {
			return surveyerr.New(surveyerr.InvalidStatusTransition, "published surveys cannot go back to draft")
		}
		return nil
	case models.StatusRetired:
		return surveyerr.New(surveyerr.InvalidStatusTransition, "retired is terminal")
	}
	return surveyerr.New(surveyerr.InvalidStatusTransition, fmt.Sprintf("unknown status %q", from))
}

// Replacement describes how a new definition version chains off the row
// it replaces.
type Replacement struct {
	// Version and GroupID to assign to the replacement row.
	Version int
	GroupID uint
	// InitializeLineage is set when the replaced row predates
	// versioning: its own row must be back-filled with version 1 and
	// groupId equal to its id before it is soft-deleted.
	InitializeLineage bool
}

// PlanReplacement computes the lineage of a replacement for a row with
// the given id, version and group. A first replace initializes the
// lineage on the previous row.
func PlanReplacement(previousID uint, previousVersion *int, previousGroupID *uint) Replacement {
	version := 1
	if previousVersion != nil {
		version = *previousVersion
	}
	groupID := previousID
	if previousGroupID != nil {
		groupID = *previousGroupID
	}
	return Replacement{
		Version:           version + 1,
		GroupID:           groupID,
		InitializeLineage: previousGroupID == nil,
	}
}
