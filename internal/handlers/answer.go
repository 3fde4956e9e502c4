package handlers

import (
	"net/http"

	"surveyreg/internal/models"
	"surveyreg/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AnswerHandler struct {
	log *zap.Logger
}

func NewAnswerHandler(log *zap.Logger) *AnswerHandler {
	return &AnswerHandler{log: log}
}

// Submit stores a batch of answers for the authenticated user. Partial
// batches are fine; marking the submission completed enforces required
// questions.
func (h *AnswerHandler) Submit(c *gin.Context) {
	surveyID, ok := idParam(c)
	if !ok {
		return
	}
	var submission models.Submission
	if err := c.ShouldBindJSON(&submission); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid answers payload"})
		return
	}
	if len(submission.Answers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "no answers submitted"})
		return
	}

	userID := currentUserID(c)
	if err := repository.CreateAnswers(c.Request.Context(), userID, surveyID, &submission); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("Answers recorded",
		zap.Uint("userID", userID),
		zap.Uint("surveyID", surveyID),
		zap.Int("count", len(submission.Answers)),
	)
	c.Status(http.StatusNoContent)
}

func (h *AnswerHandler) Get(c *gin.Context) {
	surveyID, ok := idParam(c)
	if !ok {
		return
	}
	answers, err := repository.GetAnswers(c.Request.Context(), currentUserID(c), surveyID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, answers)
}

// GetAnswered returns the survey definition with the user's answers
// merged onto its questions.
func (h *AnswerHandler) GetAnswered(c *gin.Context) {
	surveyID, ok := idParam(c)
	if !ok {
		return
	}
	survey, err := repository.GetAnsweredSurvey(c.Request.Context(), currentUserID(c), surveyID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, survey)
}
