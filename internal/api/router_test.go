package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/SheHuMaan/internal/db"
	"github.com/soaringjerry/SheHuMaan/internal/intake"
	"github.com/soaringjerry/SheHuMaan/internal/middleware"
	"github.com/soaringjerry/SheHuMaan/internal/results"
	"github.com/soaringjerry/SheHuMaan/internal/results/resultstest"
	"github.com/soaringjerry/SheHuMaan/internal/services"
)

type stubClassifier struct {
	result *results.Result
	err    error
	calls  int
	got    intake.Input
}

func (c *stubClassifier) Classify(_ context.Context, in intake.Input) (*results.Result, error) {
	c.calls++
	c.got = in
	if c.err != nil {
		return nil, c.err
	}
	return c.result.Clone(), nil
}

type testServer struct {
	*httptest.Server
	router     *Router
	provider   results.Provider
	classifier *stubClassifier
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWith(t, results.NewMemoryProvider())
}

func newTestServerWith(t *testing.T, provider results.Provider) *testServer {
	t.Helper()
	sessions, err := middleware.NewSessions("test-secret", time.Hour)
	require.NoError(t, err)
	cls := &stubClassifier{result: resultstest.Sample(72, 45)}
	rt := NewRouter(Options{Provider: provider, Classifier: cls, Sessions: sessions})

	mux := http.NewServeMux()
	rt.Register(mux)
	srv := httptest.NewServer(Chain(mux, middleware.NewCORS([]string{"*"}), nil))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, router: rt, provider: provider, classifier: cls}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, s.URL+path, rdr)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func (s *testServer) newSession(t *testing.T) string {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/api/sessions", "", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tok, _ := body["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func TestFullJourney(t *testing.T) {
	s := newTestServer(t)
	tok := s.newSession(t)

	resp, body := s.do(t, http.MethodGet, "/api/intake", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["step"])
	assert.EqualValues(t, 25, body["progress"])

	resp, body = s.do(t, http.MethodPost, "/api/intake/submit", tok, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", body["code"])
	assert.ElementsMatch(t, []any{"current_role", "city"}, body["fields"])
	assert.Equal(t, 0, s.classifier.calls)

	for _, f := range []map[string]any{
		{"key": "current_role", "value": "Engineer"},
		{"key": "city", "value": "Pune"},
		{"key": "work_hours_per_day", "value": 11},
		{"key": "sleep_hours", "value": 6.5},
		{"key": "anxiety_frequency", "value": "often"},
	} {
		resp, _ = s.do(t, http.MethodPost, "/api/intake/field", tok, f)
		require.Equal(t, http.StatusOK, resp.StatusCode, "field %v", f["key"])
	}
	resp, _ = s.do(t, http.MethodPost, "/api/intake/toggle", tok, map[string]string{"key": "physical_symptoms", "value": "fatigue"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for i := 0; i < 5; i++ {
		resp, body = s.do(t, http.MethodPost, "/api/intake/next", tok, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.EqualValues(t, 4, body["step"])
	assert.EqualValues(t, 100, body["progress"])

	resp, body = s.do(t, http.MethodPost, "/api/intake/submit", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/dashboard", body["redirect"])
	note, _ := body["notification"].(map[string]any)
	assert.Equal(t, "Assessment complete! Generating your personalized plan...", note["message"])

	require.Equal(t, 1, s.classifier.calls)
	assert.Equal(t, "Engineer", s.classifier.got.CurrentRole)
	assert.Equal(t, 11, s.classifier.got.WorkHoursPerDay)
	assert.Equal(t, 6.5, s.classifier.got.SleepHours)
	assert.Equal(t, intake.SymptomSet{"fatigue"}, s.classifier.got.PhysicalSymptoms)

	resp, body = s.do(t, http.MethodGet, "/api/dashboard", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "present", body["state"])
	dash, _ := body["dashboard"].(map[string]any)
	stress, _ := dash["stress"].(map[string]any)
	cls, _ := stress["classification"].(map[string]any)
	assert.Equal(t, "HIGH - 72/100", cls["label"])
	assert.Equal(t, "red", cls["color"])

	// a retake starts from defaults
	resp, body = s.do(t, http.MethodGet, "/api/intake", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["step"])
	input, _ := body["input"].(map[string]any)
	assert.Equal(t, "", input["current_role"])

	resp, _ = s.do(t, http.MethodDelete, "/api/dashboard", tok, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/api/dashboard", tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitTransportFailureKeepsIntake(t *testing.T) {
	s := newTestServer(t)
	tok := s.newSession(t)

	for _, f := range []map[string]any{
		{"key": "current_role", "value": "Engineer"},
		{"key": "city", "value": "Pune"},
	} {
		resp, _ := s.do(t, http.MethodPost, "/api/intake/field", tok, f)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	for i := 0; i < 3; i++ {
		resp, _ := s.do(t, http.MethodPost, "/api/intake/next", tok, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	s.classifier.err = services.NewTransportError(errors.New("connection refused"))
	resp, body := s.do(t, http.MethodPost, "/api/intake/submit", tok, nil)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "transport", body["code"])
	note, _ := body["notification"].(map[string]any)
	assert.Equal(t, "error.transport", note["key"])

	resp, body = s.do(t, http.MethodGet, "/api/intake", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 4, body["step"])
	input, _ := body["input"].(map[string]any)
	assert.Equal(t, "Engineer", input["current_role"])
	assert.Equal(t, "Pune", input["city"])

	resp, _ = s.do(t, http.MethodGet, "/api/dashboard", tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	s.classifier.err = nil
	resp, body = s.do(t, http.MethodPost, "/api/intake/submit", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/dashboard", body["redirect"])
	assert.Equal(t, 2, s.classifier.calls)
	assert.Equal(t, "Pune", s.classifier.got.City)

	resp, _ = s.do(t, http.MethodGet, "/api/dashboard", tok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDashboardWithoutResultRedirects(t *testing.T) {
	s := newTestServer(t)
	tok := s.newSession(t)

	resp, body := s.do(t, http.MethodGet, "/api/dashboard", tok, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "absent_redirecting", body["state"])
	assert.Equal(t, "/questionnaire", body["redirect"])
	assert.Equal(t, "No assessment found. Please complete the questionnaire first.", body["warning"])
	assert.NotContains(t, body, "dashboard")

	resp, body = s.do(t, http.MethodGet, "/api/dashboard?lang=hi", tok, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "कोई मूल्यांकन नहीं मिला। कृपया पहले प्रश्नावली पूरी करें।", body["warning"])
}

func TestDashboardWithCorruptResultRedirects(t *testing.T) {
	s := newTestServerWith(t, results.NewFileProvider(t.TempDir()))
	tok := s.newSession(t)
	claims, err := s.router.sessions.Parse(tok)
	require.NoError(t, err)
	resultstest.WriteRecord(t, s.provider.ForSession(claims.SID).(*results.FileStore), []byte(`{"stress_level":"high"`))

	resp, body := s.do(t, http.MethodGet, "/api/dashboard", tok, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "absent_redirecting", body["state"])
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestServer(t)
	a, b := s.newSession(t), s.newSession(t)

	resp, _ := s.do(t, http.MethodPost, "/api/intake/field", a, map[string]any{"key": "city", "value": "Pune"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := s.do(t, http.MethodGet, "/api/intake", b, nil)
	input, _ := body["input"].(map[string]any)
	assert.Equal(t, "", input["city"])
}

func TestIntakeErrors(t *testing.T) {
	s := newTestServer(t)
	tok := s.newSession(t)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{name: "unknown field", path: "/api/intake/field", body: map[string]any{"key": "salary", "value": 1}, status: http.StatusNotFound},
		{name: "bad enum", path: "/api/intake/field", body: map[string]any{"key": "age_group", "value": "60+"}, status: http.StatusBadRequest},
		{name: "fractional int", path: "/api/intake/field", body: map[string]any{"key": "years_in_it", "value": 2.5}, status: http.StatusBadRequest},
		{name: "set via field", path: "/api/intake/field", body: map[string]any{"key": "physical_symptoms", "value": "fatigue"}, status: http.StatusBadRequest},
		{name: "unknown tag", path: "/api/intake/toggle", body: map[string]any{"key": "physical_symptoms", "value": "sneezing"}, status: http.StatusBadRequest},
		{name: "bad json", path: "/api/intake/field", body: "not an object", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := s.do(t, http.MethodPost, tt.path, tok, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, body, "notification")
		})
	}
}

func TestRequiresSession(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, http.MethodGet, "/api/intake", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/api/dashboard", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "active", body["status"])
	assert.True(t, strings.HasPrefix(body["message"].(string), "SheHuMaan API"))
	assert.Contains(t, resp.Header.Get("Cache-Control"), "no-store")
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))

	resp, body = s.do(t, http.MethodGet, "/api/resources", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, k := range []string{"emergency", "workplace", "mental_health", "legal"} {
		assert.Contains(t, body, k)
	}
}

func TestJanitorForgetsIdleSessions(t *testing.T) {
	s := newTestServer(t)
	tok := s.newSession(t)
	claims, err := s.router.sessions.Parse(tok)
	require.NoError(t, err)
	require.NoError(t, s.provider.ForSession(claims.SID).Save(context.Background(), resultstest.Sample(10, 10)))

	s.router.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	s.router.expire(context.Background(), time.Hour)
	assert.Equal(t, 0, s.router.store.Len())

	_, err = s.provider.ForSession(claims.SID).Load(context.Background())
	assert.ErrorIs(t, err, results.ErrAbsent)
}

func TestJanitorPurgesAbandonedSQLiteResults(t *testing.T) {
	ctx := context.Background()
	store, err := db.Open(ctx, db.DriverPureGo, filepath.Join(t.TempDir(), "results.db"), "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	s := newTestServerWith(t, store)
	// a session lost from memory, e.g. across a restart
	require.NoError(t, store.ForSession("abandoned").Save(ctx, resultstest.Sample(60, 60)))
	require.Equal(t, 0, s.router.store.Len())

	s.router.expire(ctx, time.Hour)
	_, err = store.ForSession("abandoned").Load(ctx)
	require.NoError(t, err)

	s.router.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	s.router.expire(ctx, time.Hour)
	_, err = store.ForSession("abandoned").Load(ctx)
	assert.ErrorIs(t, err, results.ErrAbsent)
}
