package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crisis-service/internal/audit"
	"crisis-service/internal/catalog"
	"crisis-service/internal/config"
	"crisis-service/internal/crisis"
	"crisis-service/internal/db"
	"crisis-service/internal/detection"
	"crisis-service/internal/dispatch"
	"crisis-service/internal/history"
	"crisis-service/internal/lifecycle"
	"crisis-service/internal/logging"
	"crisis-service/internal/models"
	"crisis-service/internal/protocol"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.API.BasePath = "/api/v0"
	cfg.Dispatch.QueueSize = 10
	cfg.Dispatch.MaxWorkers = 1
	cfg.Audit.QueueSize = 10
	return cfg
}

func testRouter(t *testing.T) (*gin.Engine, *db.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.NewNop()
	cfg := testConfig()
	store := db.NewMemoryStore()

	var wg sync.WaitGroup
	recorder := audit.New(store, logger, cfg.Audit.QueueSize)
	recorder.Start(&wg)
	t.Cleanup(func() {
		recorder.Close()
		wg.Wait()
	})

	dsp := dispatch.New(store, logger, cfg)
	t.Cleanup(dsp.Close)

	cat := catalog.New(catalog.Default())
	builder := protocol.NewBuilder(cat, 5, 15)
	manager := lifecycle.NewManager(store, recorder, dsp, logger,
		builder.EscalationPath(), time.Hour, 2*time.Hour)
	tracker := history.NewTracker(store, logger, 30)
	svc := crisis.New(detection.NewDetector(), tracker, cat, builder, manager, recorder, logger)

	h := NewHandler(svc, store, dsp, logger)
	return NewRouter(logger, cfg, h), store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEvaluateEndpoint_CreatesAlert(t *testing.T) {
	router, store := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v0/evaluate", gin.H{
		"subject_id":   "subject-1",
		"text":         "I want to end my life",
		"context":      "chat_message",
		"language":     "en",
		"jurisdiction": "US",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result crisis.EvaluateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.IsCrisis)
	assert.Equal(t, models.SeverityCritical, result.Severity)
	require.NotEmpty(t, result.AlertID)
	assert.NotEmpty(t, result.Resources)

	stored, err := store.GetAlert(context.Background(), result.AlertID)
	require.NoError(t, err)
	assert.Equal(t, "subject-1", stored.SubjectID)
}

func TestEvaluateEndpoint_RejectsMissingSubject(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v0/evaluate", gin.H{
		"text": "feeling hopeless",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveEndpoint_HandlesAndIsIdempotent(t *testing.T) {
	router, store := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v0/evaluate", gin.H{
		"subject_id": "subject-2",
		"text":       "I want to die",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result crisis.EvaluateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotEmpty(t, result.AlertID)

	path := fmt.Sprintf("/api/v0/alerts/%s/resolve", result.AlertID)
	w = doJSON(t, router, http.MethodPost, path, gin.H{"handled_by": "handler-1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, path, gin.H{"handled_by": "handler-2"})
	assert.Equal(t, http.StatusOK, w.Code)

	stored, err := store.GetAlert(context.Background(), result.AlertID)
	require.NoError(t, err)
	require.NotNil(t, stored.HandledBy)
	assert.Equal(t, "handler-1", *stored.HandledBy)
}

func TestResolveEndpoint_UnknownAlert(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v0/alerts/missing/resolve", gin.H{"handled_by": "handler-1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAlertEndpoint(t *testing.T) {
	router, store := testRouter(t)

	alert := &models.SafetyAlert{
		ID:        "a1",
		SubjectID: "subject-3",
		Severity:  models.SeverityHigh,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreateAlert(context.Background(), alert))

	w := doJSON(t, router, http.MethodGet, "/api/v0/alerts/a1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "open", body.Status)

	w = doJSON(t, router, http.MethodGet, "/api/v0/alerts/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResourcesEndpoint(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v0/resources?language=en&jurisdiction=US", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Resources []models.Resource `json:"resources"`
		Total     int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, len(body.Resources), body.Total)
	assert.NotEmpty(t, body.Resources)
}

func TestContactPointEndpoints(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v0/contact-points", gin.H{
		"name": "On-call pager",
		"role": models.RoleHandlerOnCall,
		"type": "email",
		"configuration": gin.H{
			"addresses": "oncall@example.org",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var cp models.ContactPoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cp))
	require.NotEmpty(t, cp.ID)
	assert.Equal(t, "active", cp.Status)

	w = doJSON(t, router, http.MethodGet, "/api/v0/contact-points/"+cp.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v0/contact-points/"+cp.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v0/contact-points/"+cp.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContactPointCreate_RequiresRoleAndType(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v0/contact-points", gin.H{"name": "incomplete"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
