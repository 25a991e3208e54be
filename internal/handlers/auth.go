package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"task-tracker/internal/services"
)

type AuthHandler struct {
	db          *gorm.DB
	userService services.UserService
	log         *logrus.Entry
}

func NewAuthHandler(db *gorm.DB, userService services.UserService, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{db: db, userService: userService, log: log}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req services.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	h.log.WithField("email", req.Email).Info("Creating user")

	result, err := h.userService.SignUp(h.db, req)
	if err != nil {
		if errors.Is(err, services.ErrUserAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	h.log.WithField("email", req.Email).Info("User created successfully")
	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	h.log.WithField("email", req.Email).Info("Login attempt")

	result, err := h.userService.Login(h.db, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	h.log.WithField("email", req.Email).Info("User logged in successfully")
	c.JSON(http.StatusOK, result)
}
