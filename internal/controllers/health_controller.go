package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/franciscosanchezn/pizzastore-api/internal/dto"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HealthController reports whether the service can reach its database
type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// Health godoc
// @Summary Health check
// @Description Check if the service and its database are up
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := hc.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		log.WithError(err).Error("Health check failed")
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "DOWN", Database: "DOWN"})
		return
	}
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "UP", Database: "UP"})
}
