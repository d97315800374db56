package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"task_api/internal/models"
	"task_api/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerRes service.AuthResult
	registerErr error
	loginRes    service.AuthResult
	loginErr    error
	parseID     models.Identity
	parseErr    error

	registerCalls  int
	lastEmail      string
	lastPassword   string
	lastUsername   string
	lastParseToken string
}

func (m *mockAuth) Register(_ context.Context, email, password, username string) (service.AuthResult, error) {
	m.registerCalls++
	m.lastEmail, m.lastPassword, m.lastUsername = email, password, username
	return m.registerRes, m.registerErr
}

func (m *mockAuth) Login(_ context.Context, email, password string) (service.AuthResult, error) {
	m.lastEmail, m.lastPassword = email, password
	return m.loginRes, m.loginErr
}

func (m *mockAuth) ParseToken(token string) (models.Identity, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockTasks struct {
	task     models.Task
	list     []models.Task
	err      error
	calls    int
	caller   models.Identity
	lastID   string
	lastName string
}

func (m *mockTasks) Create(_ context.Context, caller models.Identity, name string) (models.Task, error) {
	m.calls++
	m.caller, m.lastName = caller, name
	return m.task, m.err
}

func (m *mockTasks) ListMine(_ context.Context, caller models.Identity) ([]models.Task, error) {
	m.calls++
	m.caller = caller
	return m.list, m.err
}

func (m *mockTasks) Update(_ context.Context, caller models.Identity, id, name string) (models.Task, error) {
	m.calls++
	m.caller, m.lastID, m.lastName = caller, id, name
	return m.task, m.err
}

func (m *mockTasks) Delete(_ context.Context, caller models.Identity, id string) (models.Task, error) {
	m.calls++
	m.caller, m.lastID = caller, id
	return m.task, m.err
}

type mockChecker struct{ err error }

func (m mockChecker) Ping(context.Context) error { return m.err }

var errDown = errors.New("down")

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWithOptions(s, Options{})
}

func newTestRouterWithOptions(s *service.Service, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, opts)
	return h.InitRoutes()
}

func tokenHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set(DefaultTokenHeader, token)
	}
	return h
}

func doJSON(r http.Handler, method, path, body string, hdr http.Header) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return m
}
