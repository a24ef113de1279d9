package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Kamar-Folarin/github-reporter/docs"
)

// @title GitHub Reporter API
// @version 1.0
// @description API for tracking GitHub repositories and sending their daily reports
// @contact.name API Support
// @contact.url http://github.com/Kamar-Folarin
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// SetupRouter configures the API routes
func SetupRouter(h *Handler, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// @Summary Health check
		// @Tags health
		// @Produce json
		// @Success 200 {object} StatusResponse
		// @Router /health [get]
		v1.GET("/health", h.Health)

		repositories := v1.Group("/repositories")
		{
			// @Summary List tracked repositories
			// @Tags repositories
			// @Produce json
			// @Success 200 {array} models.Repository
			// @Failure 500 {object} ErrorResponse
			// @Router /repositories [get]
			repositories.GET("", h.ListRepositories)

			// @Summary Track a repository
			// @Description Registers a repository; its first report is due at 06:00 UTC the next day
			// @Tags repositories
			// @Accept json
			// @Produce json
			// @Param request body AddRepositoryRequest true "Repository"
			// @Success 201 {object} models.Repository
			// @Failure 400 {object} ErrorResponse
			// @Failure 500 {object} ErrorResponse
			// @Router /repositories [post]
			repositories.POST("", h.AddRepository)

			// @Summary Get repository details
			// @Tags repositories
			// @Produce json
			// @Param id path string true "Repository ID (owner_name)"
			// @Success 200 {object} models.Repository
			// @Failure 404 {object} ErrorResponse
			// @Failure 500 {object} ErrorResponse
			// @Router /repositories/{id} [get]
			repositories.GET("/:id", h.GetRepository)

			// @Summary Reschedule the next report
			// @Tags repositories
			// @Accept json
			// @Produce json
			// @Param id path string true "Repository ID (owner_name)"
			// @Param request body UpdateRepositoryRequest true "Schedule"
			// @Success 200 {object} models.Repository
			// @Failure 400 {object} ErrorResponse
			// @Failure 404 {object} ErrorResponse
			// @Failure 500 {object} ErrorResponse
			// @Router /repositories/{id} [put]
			repositories.PUT("/:id", h.UpdateRepository)

			// @Summary Stop tracking a repository
			// @Tags repositories
			// @Param id path string true "Repository ID (owner_name)"
			// @Success 204 "No Content"
			// @Failure 404 {object} ErrorResponse
			// @Failure 500 {object} ErrorResponse
			// @Router /repositories/{id} [delete]
			repositories.DELETE("/:id", h.DeleteRepository)

			// @Summary Get stored daily snapshots
			// @Tags repositories
			// @Produce json
			// @Param id path string true "Repository ID (owner_name)"
			// @Success 200 {object} StatsResponse
			// @Failure 404 {object} ErrorResponse
			// @Failure 500 {object} ErrorResponse
			// @Router /repositories/{id}/stats [get]
			repositories.GET("/:id/stats", h.GetRepositoryStats)

			// @Summary Send a report now
			// @Description Collects, renders and mails a report without touching the schedule
			// @Tags repositories
			// @Produce json
			// @Param id path string true "Repository ID (owner_name)"
			// @Success 200 {object} StatusResponse
			// @Failure 404 {object} ErrorResponse
			// @Failure 409 {object} ErrorResponse
			// @Failure 502 {object} ErrorResponse
			// @Failure 500 {object} ErrorResponse
			// @Router /repositories/{id}/send_report [post]
			repositories.POST("/:id/send_report", h.SendReport)
		}
	}

	return r
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("Request")
	}
}
