package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"placement_backend/internal/auth"
	"placement_backend/internal/cache"
	"placement_backend/internal/logger"
	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"
	"placement_backend/internal/storage"
	"placement_backend/internal/validator"
	"placement_backend/pkg/apperrors"
)

type testServer struct {
	router *gin.Engine
	mock   sqlmock.Sqlmock
}

func newTestServer(t *testing.T, register func(base *BaseHandler, api *gin.RouterGroup, root *gin.Engine)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.InitWithWriter("test", io.Discard)
	auth.Configure("handlers-test-secret", time.Hour)

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware(), middleware.DBMiddleware(db))
	register(NewBaseHandler(validator.New(), 1024*1024), router.Group("/api"), router)
	return &testServer{router: router, mock: mock}
}

func (ts *testServer) send(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func tokenFor(t *testing.T, userID string, role models.UserRole) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, string(role))
	require.NoError(t, err)
	return token
}

func errorCode(body map[string]interface{}) string {
	envelope, _ := body["error"].(map[string]interface{})
	code, _ := envelope["code"].(string)
	return code
}

type fakeJobService struct {
	services.JobService
	created   *dto.CreateJobRequest
	createdBy string
	getErr    error
	searchReq *dto.JobSearchRequest
	viewer    string
}

func (f *fakeJobService) Create(db *gorm.DB, userID string, role models.UserRole, req *dto.CreateJobRequest) (*models.Job, error) {
	f.created = req
	f.createdBy = userID
	job := &models.Job{Title: req.Title, Status: models.JobStatusOpen}
	job.ID = uuid.NewString()
	return job, nil
}

func (f *fakeJobService) Get(db *gorm.DB, viewerID string, role models.UserRole, jobID string) (*dto.JobResponse, error) {
	f.viewer = viewerID
	if f.getErr != nil {
		return nil, f.getErr
	}
	job := &models.Job{Title: "Backend Intern"}
	job.ID = jobID
	return &dto.JobResponse{Job: job}, nil
}

func (f *fakeJobService) Search(db *gorm.DB, viewerID string, role models.UserRole, req *dto.JobSearchRequest) (*dto.Page[dto.JobResponse], error) {
	f.searchReq = req
	f.viewer = viewerID
	return dto.NewPage([]dto.JobResponse{}, 0, 1, 20), nil
}

func newJobServer(t *testing.T, svc *fakeJobService) *testServer {
	return newTestServer(t, func(base *BaseHandler, api *gin.RouterGroup, _ *gin.Engine) {
		NewJobHandler(base, svc).RegisterRoutes(api)
	})
}

func TestJobHandler_Create(t *testing.T) {
	// Arrange
	svc := &fakeJobService{}
	ts := newJobServer(t, svc)
	recruiterID := uuid.NewString()
	body := map[string]interface{}{
		"title":       "Backend Intern",
		"description": "Go and SQL",
		"job_type":    models.JobTypeInternship,
	}

	// Act
	w, resp := ts.send(t, http.MethodPost, "/api/jobs", tokenFor(t, recruiterID, models.UserRoleRecruiter), body)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Backend Intern", resp["title"])
	require.NotNil(t, svc.created)
	assert.Equal(t, recruiterID, svc.createdBy)
}

func TestJobHandler_CreateRejected(t *testing.T) {
	svc := &fakeJobService{}
	ts := newJobServer(t, svc)

	tests := []struct {
		name   string
		token  string
		body   interface{}
		status int
		code   string
	}{
		{"no token", "", map[string]string{"title": "x"}, http.StatusUnauthorized, string(apperrors.CodeUnauthorized)},
		{"student", tokenFor(t, uuid.NewString(), models.UserRoleStudent), map[string]string{"title": "x"}, http.StatusForbidden, string(apperrors.CodeForbidden)},
		{"missing fields", tokenFor(t, uuid.NewString(), models.UserRoleRecruiter), map[string]string{"title": "x"}, http.StatusBadRequest, string(apperrors.CodeValidationFailed)},
		{"bad job type", tokenFor(t, uuid.NewString(), models.UserRoleAdmin), map[string]string{"title": "x", "description": "y", "job_type": "gig"}, http.StatusBadRequest, string(apperrors.CodeValidationFailed)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := ts.send(t, http.MethodPost, "/api/jobs", tt.token, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(resp))
		})
	}
	assert.Nil(t, svc.created)
}

func TestJobHandler_GetPublicAndOptionalAuth(t *testing.T) {
	svc := &fakeJobService{}
	ts := newJobServer(t, svc)
	jobID := uuid.NewString()

	w, resp := ts.send(t, http.MethodGet, "/api/jobs/"+jobID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, jobID, resp["id"])
	assert.Empty(t, svc.viewer)

	studentID := uuid.NewString()
	w, _ = ts.send(t, http.MethodGet, "/api/jobs/"+jobID, tokenFor(t, studentID, models.UserRoleStudent), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, studentID, svc.viewer)
}

func TestJobHandler_GetErrors(t *testing.T) {
	svc := &fakeJobService{getErr: apperrors.ErrNotFound(repositories.ErrJobNotFound)}
	ts := newJobServer(t, svc)

	w, resp := ts.send(t, http.MethodGet, "/api/jobs/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(apperrors.CodeNotFound), errorCode(resp))

	w, resp = ts.send(t, http.MethodGet, "/api/jobs/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(apperrors.CodeValidationFailed), errorCode(resp))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestJobHandler_SearchBindsQuery(t *testing.T) {
	svc := &fakeJobService{}
	ts := newJobServer(t, svc)

	w, resp := ts.send(t, http.MethodGet, "/api/jobs/search?q=golang&job_type=internship&page=2", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, resp, "items")
	require.NotNil(t, svc.searchReq)
	assert.Equal(t, "golang", svc.searchReq.Query)
	assert.Equal(t, 2, svc.searchReq.Page)
}

type fakeApplicationService struct {
	services.ApplicationService
	applied *dto.ApplyRequest
	err     error
}

func (f *fakeApplicationService) Apply(db *gorm.DB, studentID, jobID string, req *dto.ApplyRequest) (*models.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.applied = req
	app := &models.Application{JobID: jobID, StudentID: studentID, Status: models.ApplicationStatusApplied}
	app.ID = uuid.NewString()
	return app, nil
}

func TestApplicationHandler_Apply(t *testing.T) {
	svc := &fakeApplicationService{}
	ts := newTestServer(t, func(base *BaseHandler, api *gin.RouterGroup, _ *gin.Engine) {
		NewApplicationHandler(base, svc, nil).RegisterRoutes(api)
	})
	jobID := uuid.NewString()
	student := tokenFor(t, uuid.NewString(), models.UserRoleStudent)

	// без тела
	w, resp := ts.send(t, http.MethodPost, "/api/jobs/"+jobID+"/apply", student, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, jobID, resp["job_id"])

	w, _ = ts.send(t, http.MethodPost, "/api/jobs/"+jobID+"/apply", student, map[string]string{"cover_letter": "Hello"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Hello", svc.applied.CoverLetter)

	w, resp = ts.send(t, http.MethodPost, "/api/jobs/"+jobID+"/apply", tokenFor(t, uuid.NewString(), models.UserRoleRecruiter), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, string(apperrors.CodeForbidden), errorCode(resp))

	svc.err = apperrors.New(apperrors.CodeConflict, "application", "Already applied", http.StatusConflict)
	w, resp = ts.send(t, http.MethodPost, "/api/jobs/"+jobID+"/apply", student, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(apperrors.CodeConflict), errorCode(resp))
}

func TestHealthHandler(t *testing.T) {
	ts := newTestServer(t, func(base *BaseHandler, _ *gin.RouterGroup, root *gin.Engine) {
		NewHealthHandler(base, cache.NewMemoryStore()).RegisterRoutes(root)
	})

	ts.mock.ExpectPing()
	w, resp := ts.send(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp["checks"].(map[string]interface{})["database"])

	ts.mock.ExpectPing().WillReturnError(context.DeadlineExceeded)
	w, resp = ts.send(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unavailable", resp["checks"].(map[string]interface{})["database"])
	assert.NoError(t, ts.mock.ExpectationsWereMet())
}

func TestFileHandler_ServeFile(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewStorage(context.Background(), storage.Config{Type: "local", BasePath: dir, BaseURL: "/files"})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "resumes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resumes", "cv.pdf"), []byte("%PDF-1.4"), 0o644))

	ts := newTestServer(t, func(base *BaseHandler, _ *gin.RouterGroup, root *gin.Engine) {
		NewFileHandler(base, store).RegisterRoutes(root)
	})

	w, _ := ts.send(t, http.MethodGet, "/files/resumes/cv.pdf", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())

	w, resp := ts.send(t, http.MethodGet, "/files/resumes/missing.pdf", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(apperrors.CodeNotFound), errorCode(resp))

	w, _ = ts.send(t, http.MethodHead, "/files/resumes/cv.pdf", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}
