package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/Kamar-Folarin/github-reporter/internal/errors"
	"github.com/Kamar-Folarin/github-reporter/internal/models"
	"github.com/Kamar-Folarin/github-reporter/internal/pipeline"
)

// MockRepositoryStore is a mock implementation of RepositoryStore
type MockRepositoryStore struct {
	mock.Mock
}

func (m *MockRepositoryStore) CreateRepository(ctx context.Context, repo *models.Repository) error {
	args := m.Called(ctx, repo)
	return args.Error(0)
}

func (m *MockRepositoryStore) GetRepository(ctx context.Context, id string) (*models.Repository, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Repository), args.Error(1)
}

func (m *MockRepositoryStore) ListRepositories(ctx context.Context) ([]*models.Repository, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Repository), args.Error(1)
}

func (m *MockRepositoryStore) UpdateSchedule(ctx context.Context, id string, next *time.Time) (*models.Repository, error) {
	args := m.Called(ctx, id, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Repository), args.Error(1)
}

func (m *MockRepositoryStore) DeleteRepository(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepositoryStore) GetStats(ctx context.Context, owner, name string) (models.History, error) {
	args := m.Called(ctx, owner, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.History), args.Error(1)
}

// MockReporter is a mock implementation of InstantReporter
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) SendInstantReport(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var handlerNow = time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

func setupTestHandler() (*Handler, *MockRepositoryStore, *MockReporter) {
	mockStore := new(MockRepositoryStore)
	mockReporter := new(MockReporter)
	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil)) // Discard logs during tests

	handler := NewHandler(mockStore, mockReporter, logger)
	handler.now = func() time.Time { return handlerNow }
	return handler, mockStore, mockReporter
}

func setupTestRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/repositories", handler.ListRepositories)
	router.POST("/repositories", handler.AddRepository)
	router.GET("/repositories/:id", handler.GetRepository)
	router.PUT("/repositories/:id", handler.UpdateRepository)
	router.DELETE("/repositories/:id", handler.DeleteRepository)
	router.GET("/repositories/:id/stats", handler.GetRepositoryStats)
	router.POST("/repositories/:id/send_report", handler.SendReport)
	return router
}

func testRepo(owner, name string) *models.Repository {
	repo := models.NewRepository(owner, name, handlerNow)
	repo.CreatedAt = handlerNow
	repo.UpdatedAt = handlerNow
	return repo
}

func TestListRepositories(t *testing.T) {
	handler, mockStore, _ := setupTestHandler()
	router := setupTestRouter(handler)

	expectedRepos := []*models.Repository{testRepo("owner1", "repo1"), testRepo("owner2", "repo2")}
	mockStore.On("ListRepositories", mock.Anything).Return(expectedRepos, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/repositories", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []*models.Repository
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, expectedRepos, response)
	mockStore.AssertExpectations(t)
}

func TestAddRepository(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectCreate   bool
		createError    error
		expectedStatus int
		expectedID     string
	}{
		{
			name:           "owner and name",
			body:           `{"owner":"leits","name":"MeetingBar"}`,
			expectCreate:   true,
			expectedStatus: http.StatusCreated,
			expectedID:     "leits_meetingbar",
		},
		{
			name:           "url",
			body:           `{"url":"https://github.com/leits/MeetingBar"}`,
			expectCreate:   true,
			expectedStatus: http.StatusCreated,
			expectedID:     "leits_meetingbar",
		},
		{
			name:           "missing owner",
			body:           `{"name":"MeetingBar"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid url",
			body:           `{"url":"https://gitlab.com/leits/MeetingBar"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "owner with underscore",
			body:           `{"owner":"leits_x","name":"MeetingBar"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "already tracked",
			body:           `{"owner":"leits","name":"MeetingBar"}`,
			expectCreate:   true,
			createError:    apperrors.NewValidationError("repository already tracked: leits/MeetingBar", nil),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockStore, _ := setupTestHandler()
			router := setupTestRouter(handler)

			if tt.expectCreate {
				mockStore.On("CreateRepository", mock.Anything, mock.MatchedBy(func(r *models.Repository) bool {
					return r.ID == "leits_meetingbar" && r.Name == "MeetingBar" && r.NextReportAt != nil &&
						r.NextReportAt.Equal(time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC))
				})).Return(tt.createError)
			}

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/repositories", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				var response models.Repository
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Equal(t, tt.expectedID, response.ID)
			} else {
				var response ErrorResponse
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Equal(t, string(apperrors.ErrInvalidInput), response.Type)
			}
			mockStore.AssertExpectations(t)
		})
	}
}

func TestGetRepositoryNormalizesID(t *testing.T) {
	handler, mockStore, _ := setupTestHandler()
	router := setupTestRouter(handler)
	mockStore.On("GetRepository", mock.Anything, "owner_repo").Return(testRepo("owner", "repo"), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/repositories/Owner_Repo", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockStore.AssertExpectations(t)
}

func TestGetRepository(t *testing.T) {
	tests := []struct {
		name           string
		repoID         string
		mockResponse   *models.Repository
		mockError      error
		expectedStatus int
	}{
		{
			name:           "successful repository retrieval",
			repoID:         "owner_repo",
			mockResponse:   testRepo("owner", "repo"),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "repository not found",
			repoID:         "missing_repo",
			mockError:      apperrors.ResourceNotFound("repository", "missing_repo"),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "database failure",
			repoID:         "owner_repo",
			mockError:      errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockStore, _ := setupTestHandler()
			router := setupTestRouter(handler)
			mockStore.On("GetRepository", mock.Anything, tt.repoID).Return(tt.mockResponse, tt.mockError)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/repositories/"+tt.repoID, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.mockResponse != nil {
				var response models.Repository
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Equal(t, *tt.mockResponse, response)
			}
			mockStore.AssertExpectations(t)
		})
	}
}

func TestUpdateRepository(t *testing.T) {
	handler, mockStore, _ := setupTestHandler()
	router := setupTestRouter(handler)

	next := time.Date(2024, 1, 5, 6, 0, 0, 0, time.UTC)
	updated := testRepo("owner", "repo")
	updated.NextReportAt = &next
	mockStore.On("UpdateSchedule", mock.Anything, "owner_repo", &next).Return(updated, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/repositories/owner_repo", bytes.NewBufferString(`{"next_report_at":"2024-01-05T08:00:00+02:00"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockStore.AssertExpectations(t)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PUT", "/repositories/owner_repo", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteRepository(t *testing.T) {
	tests := []struct {
		name           string
		repoID         string
		mockError      error
		expectedStatus int
	}{
		{
			name:           "successful repository deletion",
			repoID:         "owner_repo",
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "repository not found",
			repoID:         "missing_repo",
			mockError:      apperrors.ResourceNotFound("repository", "missing_repo"),
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockStore, _ := setupTestHandler()
			router := setupTestRouter(handler)
			mockStore.On("DeleteRepository", mock.Anything, tt.repoID).Return(tt.mockError)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("DELETE", "/repositories/"+tt.repoID, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockStore.AssertExpectations(t)
		})
	}
}

func TestGetRepositoryStats(t *testing.T) {
	handler, mockStore, _ := setupTestHandler()
	router := setupTestRouter(handler)

	open := 4
	mockStore.On("GetRepository", mock.Anything, "owner_repo").Return(testRepo("owner", "repo"), nil)
	mockStore.On("GetStats", mock.Anything, "owner", "repo").Return(models.History{
		"2024-01-02": {Stars: 12, Downloads: 5, OpenIssues: &open},
		"2024-01-01": {Stars: 10, Downloads: 5},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/repositories/owner_repo/stats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response StatsResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "owner_repo", response.RepositoryID)
	if assert.Len(t, response.Days, 2) {
		assert.Equal(t, "2024-01-01", response.Days[0].Date)
		assert.Equal(t, 10, response.Days[0].Stars)
		assert.Equal(t, "2024-01-02", response.Days[1].Date)
		assert.Equal(t, &open, response.Days[1].OpenIssues)
	}
	mockStore.AssertExpectations(t)
}

func TestSendReport(t *testing.T) {
	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
		expectedType   string
	}{
		{
			name:           "report sent",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown repository",
			mockError:      apperrors.ResourceNotFound("repository", "owner_repo"),
			expectedStatus: http.StatusNotFound,
			expectedType:   string(apperrors.ErrNotFound),
		},
		{
			name:           "collection failed",
			mockError:      apperrors.NewCollectionFailedError("owner/repo", apperrors.NewTransientError("503", nil)),
			expectedStatus: http.StatusBadGateway,
			expectedType:   string(apperrors.ErrCollectionFailed),
		},
		{
			name:           "github 404 while collecting",
			mockError:      apperrors.NewCollectionFailedError("owner/repo", apperrors.NewNotFoundError("owner/repo", nil)),
			expectedStatus: http.StatusBadGateway,
			expectedType:   string(apperrors.ErrCollectionFailed),
		},
		{
			name:           "already running",
			mockError:      pipeline.ErrPipelineBusy,
			expectedStatus: http.StatusConflict,
			expectedType:   string(apperrors.ErrConflict),
		},
		{
			name:           "mailgun rejected",
			mockError:      apperrors.NewRenderOrDispatchError("mailgun returned 400", nil),
			expectedStatus: http.StatusBadGateway,
			expectedType:   string(apperrors.ErrRenderOrDispatchFailed),
		},
		{
			name:           "unexpected",
			mockError:      errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedType:   string(apperrors.ErrInternal),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, mockReporter := setupTestHandler()
			router := setupTestRouter(handler)
			mockReporter.On("SendInstantReport", mock.Anything, "owner_repo").Return(tt.mockError)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/repositories/owner_repo/send_report", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.mockError != nil {
				var response ErrorResponse
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Equal(t, tt.expectedType, response.Type)
			} else {
				assert.JSONEq(t, `{"status":"report sent"}`, w.Body.String())
			}
			mockReporter.AssertExpectations(t)
		})
	}
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, errorStatus(apperrors.ResourceNotFound("repository", "x")))
	assert.Equal(t, http.StatusBadRequest, errorStatus(apperrors.NewValidationError("bad", nil)))
	assert.Equal(t, http.StatusBadGateway, errorStatus(apperrors.NewTransientError("rate limited", nil)))
	assert.Equal(t, http.StatusInternalServerError, errorStatus(errors.New("boom")))
}
