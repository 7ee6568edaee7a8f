package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keonhq/taskflow/internal/application/port"
	"github.com/keonhq/taskflow/internal/application/service"
	"github.com/keonhq/taskflow/internal/domain/entity"
)

const (
	testSecret = "test-secret"
	testIssuer = "keon-taskflow"
)

// Interface-embedding stubs: only the overridden methods may be called.

type stubTaskRepo struct {
	port.TaskRepository
	getByID func(ctx context.Context, id int64) (*entity.Task, error)
	create  func(ctx context.Context, task *entity.Task) error
}

func (s *stubTaskRepo) GetByID(ctx context.Context, id int64) (*entity.Task, error) {
	return s.getByID(ctx, id)
}

func (s *stubTaskRepo) Create(ctx context.Context, task *entity.Task) error {
	return s.create(ctx, task)
}

type stubOrderLineRepo struct {
	port.OrderLineRepository
	updateStatusWhere func(ctx context.Context, requestID int64, from, to string) (int, error)
}

func (s *stubOrderLineRepo) UpdateStatusWhere(ctx context.Context, requestID int64, from, to string) (int, error) {
	return s.updateStatusWhere(ctx, requestID, from, to)
}

type stubChecklistRepo struct {
	port.ChecklistRepository
}

func (s *stubChecklistRepo) Create(ctx context.Context, item *entity.ChecklistItem) error {
	return nil
}

type stubAuditRepo struct {
	port.AuditRepository
}

func (s *stubAuditRepo) Create(ctx context.Context, event *entity.AuditEvent) error {
	return nil
}

type stubTemplateRepo struct {
	port.TemplateRepository
	listDueRecurring func(ctx context.Context, now time.Time) ([]*entity.ProcessTemplate, error)
	updateNextRunAt  func(ctx context.Context, id int64, next time.Time) error
}

func (s *stubTemplateRepo) ListDueRecurring(ctx context.Context, now time.Time) ([]*entity.ProcessTemplate, error) {
	return s.listDueRecurring(ctx, now)
}

func (s *stubTemplateRepo) UpdateNextRunAt(ctx context.Context, id int64, next time.Time) error {
	return s.updateNextRunAt(ctx, id, next)
}

type stubRunRepo struct {
	port.RecurrenceRunRepository
}

func (s *stubRunRepo) Create(ctx context.Context, run *entity.RecurrenceRun) error {
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type discardLogger struct{}

func (discardLogger) Info(msg string, keysAndValues ...interface{})  {}
func (discardLogger) Error(msg string, keysAndValues ...interface{}) {}

func newFunctionRouter(t *testing.T, materials *service.MaterialService, recurrence *service.RecurrenceService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handlers := NewHandlers(nil, nil, materials, recurrence, nil, nil, nil, nil)
	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(AuthMiddleware(testSecret, testIssuer))
	handlers.Register(api)
	return router
}

func authedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	token, err := NewToken(testSecret, testIssuer, 42, nil, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func materialFixture(t *testing.T) *service.MaterialService {
	t.Helper()
	tasks := &stubTaskRepo{
		getByID: func(ctx context.Context, id int64) (*entity.Task, error) {
			return &entity.Task{ID: id, Type: entity.TypeRequest, Title: "Fournitures", Status: "todo", Priority: "high"}, nil
		},
		create: func(ctx context.Context, task *entity.Task) error {
			task.ID = 99
			return nil
		},
	}
	orderLines := &stubOrderLineRepo{
		updateStatusWhere: func(ctx context.Context, requestID int64, from, to string) (int, error) {
			return 3, nil
		},
	}
	return service.NewMaterialService(tasks, orderLines, &stubChecklistRepo{}, &stubAuditRepo{}, passthroughTx{}, discardLogger{})
}

func TestValidateMaterialRequest_ValidateContract(t *testing.T) {
	router := newFunctionRouter(t, materialFixture(t), nil)

	req := authedRequest(t, http.MethodPost, "/api/v1/functions/validate-material-request", map[string]interface{}{
		"request_id":   7,
		"action":       "validate",
		"validator_id": 42,
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		TaskID  *int64 `json:"task_id"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.NotNil(t, body.TaskID)
	assert.Equal(t, int64(99), *body.TaskID)
	assert.NotEmpty(t, body.Message)
}

func TestValidateMaterialRequest_RefuseContract(t *testing.T) {
	router := newFunctionRouter(t, materialFixture(t), nil)

	req := authedRequest(t, http.MethodPost, "/api/v1/functions/validate-material-request", map[string]interface{}{
		"request_id":   7,
		"action":       "refuse",
		"validator_id": 42,
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "task_id")
}

func TestValidateMaterialRequest_UnknownActionReturnsError(t *testing.T) {
	router := newFunctionRouter(t, materialFixture(t), nil)

	req := authedRequest(t, http.MethodPost, "/api/v1/functions/validate-material-request", map[string]interface{}{
		"request_id":   7,
		"action":       "approve",
		"validator_id": 42,
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "error")
}

func TestProcessRecurrence_Contract(t *testing.T) {
	templates := &stubTemplateRepo{
		listDueRecurring: func(ctx context.Context, now time.Time) ([]*entity.ProcessTemplate, error) {
			return []*entity.ProcessTemplate{{
				ID:                 4,
				Name:               "Inventaire mensuel",
				RecurrenceEnabled:  true,
				RecurrenceInterval: 1,
				RecurrenceUnit:     entity.RecurrenceUnitMonth,
			}}, nil
		},
		updateNextRunAt: func(ctx context.Context, id int64, next time.Time) error {
			return nil
		},
	}
	tasks := &stubTaskRepo{
		create: func(ctx context.Context, task *entity.Task) error {
			task.ID = 55
			return nil
		},
	}
	recurrence := service.NewRecurrenceService(tasks, templates, &stubRunRepo{}, &stubAuditRepo{}, passthroughTx{}, discardLogger{})
	router := newFunctionRouter(t, nil, recurrence)

	req := authedRequest(t, http.MethodPost, "/api/v1/functions/process-recurrence", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Processed int `json:"processed"`
		Results   []struct {
			TemplateID int64  `json:"template_id"`
			Status     string `json:"status"`
			RequestID  *int64 `json:"request_id"`
			Error      string `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Processed)
	require.Len(t, body.Results, 1)
	assert.Equal(t, int64(4), body.Results[0].TemplateID)
	assert.Equal(t, "success", body.Results[0].Status)
	require.NotNil(t, body.Results[0].RequestID)
	assert.Equal(t, int64(55), *body.Results[0].RequestID)
	assert.Empty(t, body.Results[0].Error)
}

func TestFunctions_RequireBearerToken(t *testing.T) {
	router := newFunctionRouter(t, materialFixture(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/functions/process-recurrence", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
