package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/Kamar-Folarin/github-reporter/internal/errors"
	"github.com/Kamar-Folarin/github-reporter/internal/models"
	"github.com/Kamar-Folarin/github-reporter/pkg/utils"
)

// RepositoryStore is the part of the database the API needs.
type RepositoryStore interface {
	CreateRepository(ctx context.Context, repo *models.Repository) error
	GetRepository(ctx context.Context, id string) (*models.Repository, error)
	ListRepositories(ctx context.Context) ([]*models.Repository, error)
	UpdateSchedule(ctx context.Context, id string, nextReportAt *time.Time) (*models.Repository, error)
	DeleteRepository(ctx context.Context, id string) error
	GetStats(ctx context.Context, owner, name string) (models.History, error)
}

// InstantReporter sends a report outside the schedule.
type InstantReporter interface {
	SendInstantReport(ctx context.Context, id string) error
}

type Handler struct {
	repos    RepositoryStore
	reporter InstantReporter
	now      func() time.Time
	logger   *logrus.Logger
}

func NewHandler(repos RepositoryStore, reporter InstantReporter, logger *logrus.Logger) *Handler {
	return &Handler{
		repos:    repos,
		reporter: reporter,
		now:      time.Now,
		logger:   logger,
	}
}

// errorStatus maps the application error taxonomy onto HTTP statuses. The
// outermost classification wins, so a GitHub 404 met while collecting is a
// collection failure and not a missing record.
func errorStatus(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrConflict:
		return http.StatusConflict
	case apperrors.ErrTransientUpstream, apperrors.ErrCollectionFailed, apperrors.ErrRenderOrDispatchFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *Handler) respondError(c *gin.Context, err error, message string) {
	status := errorStatus(err)
	entry := h.logger.WithError(err).WithFields(logrus.Fields{
		"path":   c.FullPath(),
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}
	c.JSON(status, ErrorResponse{Error: message, Type: string(apperrors.TypeOf(err))})
}

// ListRepositories handles GET /repositories
func (h *Handler) ListRepositories(c *gin.Context) {
	repos, err := h.repos.ListRepositories(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "failed to list repositories")
		return
	}
	c.JSON(http.StatusOK, repos)
}

// AddRepository handles POST /repositories
func (h *Handler) AddRepository(c *gin.Context) {
	var req AddRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewValidationError("invalid request body", err), "invalid request body")
		return
	}

	owner, name := req.Owner, req.Name
	if req.URL != "" {
		var err error
		owner, name, err = utils.ParseRepoRef(req.URL)
		if err != nil {
			h.respondError(c, apperrors.NewValidationError("invalid repository url", err), "invalid repository url")
			return
		}
	}
	if owner == "" || name == "" {
		h.respondError(c, apperrors.NewValidationError("owner and name are required", nil), "owner and name, or url, are required")
		return
	}
	if err := utils.ValidateOwner(owner); err != nil {
		h.respondError(c, apperrors.NewValidationError("invalid repository owner", err), "invalid repository owner")
		return
	}

	repo := models.NewRepository(owner, name, h.now().UTC())
	if err := h.repos.CreateRepository(c.Request.Context(), repo); err != nil {
		h.respondError(c, err, "failed to add repository")
		return
	}

	h.logger.WithField("repo_id", repo.ID).Info("Repository added")
	c.JSON(http.StatusCreated, repo)
}

// GetRepository handles GET /repositories/:id
func (h *Handler) GetRepository(c *gin.Context) {
	repo, err := h.repos.GetRepository(c.Request.Context(), models.NormalizeID(c.Param("id")))
	if err != nil {
		h.respondError(c, err, "repository not found")
		return
	}
	c.JSON(http.StatusOK, repo)
}

// UpdateRepository handles PUT /repositories/:id
func (h *Handler) UpdateRepository(c *gin.Context) {
	var req UpdateRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.NewValidationError("invalid request body", err), "invalid request body")
		return
	}

	next := req.NextReportAt.UTC()
	repo, err := h.repos.UpdateSchedule(c.Request.Context(), models.NormalizeID(c.Param("id")), &next)
	if err != nil {
		h.respondError(c, err, "failed to update repository")
		return
	}
	c.JSON(http.StatusOK, repo)
}

// DeleteRepository handles DELETE /repositories/:id
func (h *Handler) DeleteRepository(c *gin.Context) {
	id := models.NormalizeID(c.Param("id"))
	if err := h.repos.DeleteRepository(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "repository not found")
		return
	}
	h.logger.WithField("repo_id", id).Info("Repository deleted")
	c.Status(http.StatusNoContent)
}

// GetRepositoryStats handles GET /repositories/:id/stats
func (h *Handler) GetRepositoryStats(c *gin.Context) {
	ctx := c.Request.Context()
	repo, err := h.repos.GetRepository(ctx, models.NormalizeID(c.Param("id")))
	if err != nil {
		h.respondError(c, err, "repository not found")
		return
	}

	history, err := h.repos.GetStats(ctx, repo.Owner, repo.Name)
	if err != nil {
		h.respondError(c, err, "failed to read stats")
		return
	}

	days := make([]DayStats, 0, len(history))
	for _, key := range history.Keys() {
		days = append(days, DayStats{Date: key, DaySnapshot: history[key]})
	}
	c.JSON(http.StatusOK, StatsResponse{RepositoryID: repo.ID, Days: days})
}

// SendReport handles POST /repositories/:id/send_report
func (h *Handler) SendReport(c *gin.Context) {
	id := models.NormalizeID(c.Param("id"))
	if err := h.reporter.SendInstantReport(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "failed to send report")
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "report sent"})
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}
