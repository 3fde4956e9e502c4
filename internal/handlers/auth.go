package handlers

import (
	"net/http"

	"surveyreg/internal/config"
	"surveyreg/internal/repository"
	"surveyreg/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	log *zap.Logger
}

func NewAuthHandler(log *zap.Logger) *AuthHandler {
	return &AuthHandler{log: log}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}
	if !utils.IsValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid email address"})
		return
	}
	if !utils.IsComplexPassword(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "password does not meet complexity requirements"})
		return
	}

	user, err := repository.CreateUser(c.Request.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		h.log.Error("Failed to create user", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"message": "could not register user"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	user, err := repository.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !repository.CheckPassword(user, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
		return
	}

	authConf := config.Conf.Auth
	token, err := utils.GenerateToken(user.ID, user.Email, authConf.JWTSecret, authConf.TokenTTL)
	if err != nil {
		h.log.Error("Failed to sign token", zap.Uint("userID", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not log in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
