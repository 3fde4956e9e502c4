package handlers

import (
	"net/http"

	"surveyreg/internal/models"
	"surveyreg/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type QuestionHandler struct {
	log *zap.Logger
}

func NewQuestionHandler(log *zap.Logger) *QuestionHandler {
	return &QuestionHandler{log: log}
}

func (h *QuestionHandler) Create(c *gin.Context) {
	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid question payload"})
		return
	}
	if !question.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unknown question type"})
		return
	}
	id, err := repository.CreateQuestion(c.Request.Context(), &question)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *QuestionHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	question, err := repository.GetQuestion(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) List(c *gin.Context) {
	questions, err := repository.ListQuestions(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (h *QuestionHandler) Replace(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var replacement models.Question
	if err := c.ShouldBindJSON(&replacement); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid question payload"})
		return
	}
	if !replacement.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unknown question type"})
		return
	}
	newID, err := repository.ReplaceQuestion(c.Request.Context(), id, &replacement)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("Question replaced", zap.Uint("oldID", id), zap.Uint("newID", newID))
	c.JSON(http.StatusCreated, gin.H{"id": newID})
}

func (h *QuestionHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := repository.DeleteQuestion(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type choiceSetRequest struct {
	Reference string          `json:"reference" binding:"required"`
	Choices   []models.Choice `json:"choices" binding:"required"`
}

func (h *QuestionHandler) CreateChoiceSet(c *gin.Context) {
	var req choiceSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "reference and choices are required"})
		return
	}
	id, err := repository.CreateChoiceSet(c.Request.Context(), req.Reference, req.Choices)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}
