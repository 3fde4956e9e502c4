package handlers

import (
	"net/http"

	"surveyreg/internal/surveyerr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError translates a repository error into an HTTP response.
// Domain errors map onto 4xx statuses with their stable code; anything
// else is a 500 and logged server-side only.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	code, ok := surveyerr.CodeOf(err)
	if !ok {
		log.Error("Unhandled error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(statusFor(code), gin.H{"code": code, "message": err.Error()})
}

func statusFor(code surveyerr.Code) int {
	switch code {
	case surveyerr.SurveyNotFound, surveyerr.QuestionNotFound, surveyerr.ChoiceSetNotFound:
		return http.StatusNotFound
	case surveyerr.InvalidStatusTransition,
		surveyerr.StructuralChangeOnPublished,
		surveyerr.QuestionReplaceWhenActiveSurveys:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
