package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewHealthHandler(db *gorm.DB, log *logrus.Entry) *HealthHandler {
	return &HealthHandler{db: db, log: log}
}

// AppHealthCheck reports liveness; it always succeeds.
func (h *HealthHandler) AppHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// DBHealthCheck runs a trivial round-trip against the database.
func (h *HealthHandler) DBHealthCheck(c *gin.Context) {
	var result int
	if err := h.db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		h.log.WithError(err).Error("Database health check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Database health check failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
