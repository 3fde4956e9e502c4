package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"surveyreg/internal/models"
	"surveyreg/internal/repository"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ImportSurveys loads survey definitions from YAML fixture files at
// startup. Files use the same field names as the JSON API. A fixture
// whose name already exists is skipped, so imports are idempotent.
func ImportSurveys(ctx context.Context, log *zap.Logger, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info("No survey fixture directory, skipping import", zap.String("dir", dir))
			return nil
		}
		return err
	}

	existing, err := repository.ListSurveys(ctx, models.ListOptions{Status: "all"})
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, survey := range existing {
		known[survey.Name] = true
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		survey, err := loadSurveyFile(filepath.Join(dir, name))
		if err != nil {
			log.Error("Failed to load survey fixture", zap.String("file", name), zap.Error(err))
			return err
		}
		if known[survey.Name] {
			log.Debug("Survey fixture already imported", zap.String("name", survey.Name))
			continue
		}
		id, err := repository.CreateSurvey(ctx, survey, 0)
		if err != nil {
			log.Error("Failed to import survey fixture", zap.String("file", name), zap.Error(err))
			return err
		}
		known[survey.Name] = true
		log.Info("Imported survey fixture", zap.String("name", survey.Name), zap.Uint("surveyID", id))
	}
	return nil
}

// loadSurveyFile parses a YAML fixture into the survey DTO. YAML is
// decoded generically and re-read through the JSON field names so
// fixtures and API payloads share one schema.
func loadSurveyFile(path string) (*models.Survey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var survey models.Survey
	if err := json.Unmarshal(encoded, &survey); err != nil {
		return nil, err
	}
	return &survey, nil
}
