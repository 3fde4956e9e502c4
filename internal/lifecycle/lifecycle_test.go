package lifecycle

import (
	"testing"

	"surveyreg/internal/models"
	"surveyreg/internal/surveyerr"

	"github.com/stretchr/testify/assert"
)

func TestValidateTransition(t *testing.T) {
	cases := []struct {
		name  string
		from  models.SurveyStatus
		to    models.SurveyStatus
		force bool
		ok    bool
	}{
		{"draft to published", models.StatusDraft, models.StatusPublished, false, true},
		{"draft to draft", models.StatusDraft, models.StatusDraft, false, true},
		{"draft to retired", models.StatusDraft, models.StatusRetired, false, false},
		{"published to retired", models.StatusPublished, models.StatusRetired, false, true},
		{"published to draft", models.StatusPublished, models.StatusDraft, false, false},
		{"published to draft forced", models.StatusPublished, models.StatusDraft, true, true},
		{"retired to published", models.StatusRetired, models.StatusPublished, false, false},
		{"retired to draft forced", models.StatusRetired, models.StatusDraft, true, false},
		{"retired to retired", models.StatusRetired, models.StatusRetired, false, true},
		{"unknown target", models.StatusDraft, models.SurveyStatus("bogus"), false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTransition(tc.from, tc.to, tc.force)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, surveyerr.HasCode(err, surveyerr.InvalidStatusTransition))
			}
		})
	}
}

func TestPlanReplacementFirstReplace(t *testing.T) {
	plan := PlanReplacement(17, nil, nil)
	assert.Equal(t, 2, plan.Version)
	assert.Equal(t, uint(17), plan.GroupID)
	assert.True(t, plan.InitializeLineage)
}

func TestPlanReplacementChains(t *testing.T) {
	version := 2
	group := uint(17)
	plan := PlanReplacement(33, &version, &group)
	assert.Equal(t, 3, plan.Version)
	assert.Equal(t, uint(17), plan.GroupID)
	assert.False(t, plan.InitializeLineage)
}
