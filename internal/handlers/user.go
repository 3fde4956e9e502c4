package handlers

import (
	"net/http"

	"surveyreg/internal/repository"
	"surveyreg/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	log *zap.Logger
}

func NewUserHandler(log *zap.Logger) *UserHandler {
	return &UserHandler{log: log}
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := repository.GetUserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
	})
}

type updateInfoRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *UserHandler) UpdateInfo(c *gin.Context) {
	var req updateInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	if err := repository.UpdateUser(c.Request.Context(), currentUserID(c), req.FirstName, req.LastName); err != nil {
		h.log.Error("Failed to update user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not update profile"})
		return
	}
	c.Status(http.StatusNoContent)
}

type updatePasswordRequest struct {
	Current string `json:"current" binding:"required"`
	New     string `json:"new" binding:"required"`
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "current and new passwords are required"})
		return
	}
	if !utils.IsComplexPassword(req.New) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "password does not meet complexity requirements"})
		return
	}
	userID := currentUserID(c)
	user, err := repository.GetUserByID(c.Request.Context(), userID)
	if err != nil || !repository.CheckPassword(user, req.Current) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "current password is incorrect"})
		return
	}
	if err := repository.UpdateUserPassword(c.Request.Context(), userID, req.New); err != nil {
		h.log.Error("Failed to update password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not update password"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := repository.DeleteUser(c.Request.Context(), currentUserID(c)); err != nil {
		h.log.Error("Failed to delete user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not delete account"})
		return
	}
	c.Status(http.StatusNoContent)
}
