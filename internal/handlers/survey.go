package handlers

import (
	"net/http"
	"strconv"

	"surveyreg/internal/models"
	"surveyreg/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SurveyHandler struct {
	log *zap.Logger
}

func NewSurveyHandler(log *zap.Logger) *SurveyHandler {
	return &SurveyHandler{log: log}
}

func (h *SurveyHandler) Create(c *gin.Context) {
	var survey models.Survey
	if err := c.ShouldBindJSON(&survey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid survey payload"})
		return
	}
	id, err := repository.CreateSurvey(c.Request.Context(), &survey, currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("Survey created", zap.Uint("surveyID", id))
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *SurveyHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	survey, err := repository.GetSurvey(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

func (h *SurveyHandler) List(c *gin.Context) {
	opts := models.ListOptions{
		Status:  models.SurveyStatus(c.Query("status")),
		History: c.Query("history") == "true",
	}
	if groupID := c.Query("group-id"); groupID != "" {
		parsed, err := strconv.ParseUint(groupID, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid group-id"})
			return
		}
		opts.GroupID = uint(parsed)
	}
	if version := c.Query("version"); version != "" {
		parsed, err := strconv.Atoi(version)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid version"})
			return
		}
		opts.Version = parsed
	}

	surveys, err := repository.ListSurveys(c.Request.Context(), opts)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, surveys)
}

func (h *SurveyHandler) Patch(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var patch models.SurveyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid patch payload"})
		return
	}
	if err := repository.PatchSurvey(c.Request.Context(), id, &patch); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Replace creates the next version of a survey. The old version is
// soft-deleted but stays visible through history listings.
func (h *SurveyHandler) Replace(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var replacement models.Survey
	if err := c.ShouldBindJSON(&replacement); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid survey payload"})
		return
	}
	newID, err := repository.ReplaceSurvey(c.Request.Context(), id, &replacement, currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("Survey replaced", zap.Uint("oldID", id), zap.Uint("newID", newID))
	c.JSON(http.StatusCreated, gin.H{"id": newID})
}

func (h *SurveyHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := repository.DeleteSurvey(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func idParam(c *gin.Context) (uint, bool) {
	parsed, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return uint(parsed), true
}

func currentUserID(c *gin.Context) uint {
	id, _ := c.Get("userID")
	userID, _ := id.(uint)
	return userID
}
