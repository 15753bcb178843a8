package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskhub/internal/handler"
	"taskhub/internal/repository"
	"taskhub/internal/service/task"
	"taskhub/pkg/trace"
)

type stubPublisher struct{ keys []string }

func (p *stubPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	p.keys = append(p.keys, routingKey)
	return nil
}

type deadPinger struct{}

func (deadPinger) Ping(context.Context) error { return errors.New("connection refused") }

type testServer struct {
	engine *gin.Engine
	pub    *stubPublisher
}

func newTestServer(t *testing.T, withQueue bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	store, err := repository.OpenSQLiteTaskRepository(":memory:", log)
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(context.Background()))
	t.Cleanup(store.Close)

	ts := &testServer{}
	var publisher task.EventPublisher
	if withQueue {
		ts.pub = &stubPublisher{}
		publisher = ts.pub
	}
	svc := task.NewService(store, publisher, nil, log)
	ts.engine = NewRouter(handler.NewTaskHandler(svc, log), handler.NewSkillHandler(log), store, log)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"status": "ok", "database": "connected"}, decode[map[string]any](t, w))
	assert.NotEmpty(t, w.Header().Get(trace.HeaderName))
}

func TestHealth_DatabaseDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	store, err := repository.OpenSQLiteTaskRepository(":memory:", log)
	require.NoError(t, err)
	defer store.Close()
	svc := task.NewService(store, nil, nil, log)
	engine := NewRouter(handler.NewTaskHandler(svc, log), handler.NewSkillHandler(log), deadPinger{}, log)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"disconnected"`)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTraceIDEchoed(t *testing.T) {
	ts := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(trace.HeaderName, "abc123")
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	assert.Equal(t, "abc123", w.Header().Get(trace.HeaderName))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, false)
	ts.do(t, http.MethodGet, "/healthz", nil)
	w := ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")
}

func TestTaskCRUD(t *testing.T) {
	ts := newTestServer(t, true)

	w := ts.do(t, http.MethodPost, "/tasks", map[string]any{
		"title":    "Investigate latency",
		"priority": "high",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	id := created["id"].(string)
	assert.Equal(t, "todo", created["status"])
	assert.Equal(t, "runbook", created["skill_type"])
	assert.Nil(t, created["output_payload"])

	w = ts.do(t, http.MethodGet, "/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = ts.do(t, http.MethodPut, "/tasks/"+id, map[string]any{"status": "in_progress"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[map[string]any](t, w)
	assert.Equal(t, "in_progress", updated["status"])
	assert.Equal(t, "high", updated["priority"])

	w = ts.do(t, http.MethodGet, "/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodDelete, "/tasks/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/tasks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", decode[map[string]any](t, w)["error"])
}

func TestTaskErrors(t *testing.T) {
	ts := newTestServer(t, false)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/tasks/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/tasks/"+uuid.NewString(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/tasks", map[string]any{"title": ""}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/tasks", "{not json").Code)
	assert.Equal(t, http.StatusBadRequest,
		ts.do(t, http.MethodPost, "/tasks", map[string]any{"title": "x", "priority": "urgent"}).Code)
}

func TestExecuteTaskSkill(t *testing.T) {
	ts := newTestServer(t, true)

	w := ts.do(t, http.MethodPost, "/tasks", map[string]any{
		"title":      "FCR",
		"skill_type": "fcr",
		"input_payload": map[string]any{
			"change_type": "nat_change",
			"purpose":     "Expose new VPN gateway",
			"risk_level":  "high",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[map[string]any](t, w)["id"].(string)

	w = ts.do(t, http.MethodPost, "/tasks/"+id+"/execute", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[map[string]any](t, w)["output_payload"].(map[string]any)
	assert.Equal(t, "fcr", out["skill_type"])
	assert.Contains(t, out["output"], "Expose new VPN gateway")

	w = ts.do(t, http.MethodPost, "/tasks/"+id+"/execute?async=true", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "queued", decode[map[string]any](t, w)["status"])
	assert.Contains(t, ts.pub.keys, "task.skill_requested")
}

func TestExecuteTaskSkill_Errors(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(t, http.MethodPost, "/tasks", map[string]any{
		"title":         "bad runbook",
		"input_payload": map[string]any{"domain": "juniper", "symptom_category": "high_cpu"},
	})
	id := decode[map[string]any](t, w)["id"].(string)

	w = ts.do(t, http.MethodPost, "/tasks/"+id+"/execute", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[map[string]any](t, w)
	assert.Contains(t, body["error"], "juniper")
	assert.Equal(t, []any{"firewall", "f5", "circuit"}, body["available"])

	w = ts.do(t, http.MethodPost, "/tasks/"+id+"/execute?async=true", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = ts.do(t, http.MethodPost, "/tasks/"+uuid.NewString()+"/execute", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunSkill(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.do(t, http.MethodPost, "/skills/prioritizer", map[string]any{"tasks": []any{}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"skill_type": "prioritizer", "output": "No tasks to prioritize."},
		decode[map[string]any](t, w))

	w = ts.do(t, http.MethodPost, "/skills/incident", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"incident_title", "impact_summary"}, decode[map[string]any](t, w)["fields"])

	w = ts.do(t, http.MethodPost, "/skills/poetry", map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Unknown skill type: poetry", decode[map[string]any](t, w)["output"])

	w = ts.do(t, http.MethodPost, "/skills/runbook", "[1,2]")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSkills(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(t, http.MethodGet, "/skills", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, []any{"incident", "runbook", "fcr", "daily_summary", "prioritizer"}, body["skills"])
	domains := body["runbook_domains"].([]any)
	require.Len(t, domains, 3)
	assert.Equal(t, "firewall", domains[0].(map[string]any)["domain"])
}
