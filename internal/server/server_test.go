package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonathan/interview-planner/internal/config"
	"github.com/jonathan/interview-planner/internal/interview"
	"github.com/jonathan/interview-planner/internal/logger"
	"github.com/jonathan/interview-planner/internal/planner"
	"github.com/jonathan/interview-planner/internal/server/ratelimit"
	"github.com/jonathan/interview-planner/internal/store"
	"github.com/jonathan/interview-planner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServerOptions struct {
	limiter *ratelimit.Limiter
	jwt     *JWTService
	origins []string
}

func newTestServer(t *testing.T, opts testServerOptions) *Server {
	t.Helper()
	cfg := config.Default()
	if opts.origins != nil {
		cfg.CORSOrigins = opts.origins
	}
	if opts.limiter == nil {
		opts.limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	svc := interview.NewService(planner.NewEngine(), store.NewMemoryStore())
	s := newServer(cfg, svc, opts.limiter, opts.jwt, logger.NewNop())
	t.Cleanup(s.Close)
	return s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
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
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func startInterview(t *testing.T, h http.Handler, profile types.CandidateProfile, headers ...string) StartResponse {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/api/interview/start", types.StartInterviewRequest{Profile: profile}, headers...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[StartResponse](t, w)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, testServerOptions{})

	w := doJSON(t, s.Handler(), http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","planner":"rule-based"}`, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestHandleStart(t *testing.T) {
	s := newTestServer(t, testServerOptions{})

	resp := startInterview(t, s.Handler(), types.CandidateProfile{
		Role:    "Backend Engineer",
		Company: "Acme",
		Skills:  "Go, SQL",
	})
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, types.PhaseIntroduction, resp.Phase)
	assert.Contains(t, resp.Message, "Backend Engineer")
	assert.False(t, resp.Done)
	require.Len(t, resp.Plan, 7)
	assert.Equal(t, planner.KindSkillQuestion, resp.Plan[2].Kind)
	assert.Equal(t, "Go", resp.Plan[2].Skill)
}

func TestHandleStart_BadBody(t *testing.T) {
	s := newTestServer(t, testServerOptions{})

	w := doJSON(t, s.Handler(), http.MethodPost, "/api/interview/start", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s.Handler(), http.MethodPost, "/api/interview/start", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "empty")
}

func TestHandleMessage(t *testing.T) {
	s := newTestServer(t, testServerOptions{})
	h := s.Handler()
	started := startInterview(t, h, types.CandidateProfile{Skills: "Go"})

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"blank message", types.MessageRequest{SessionID: started.SessionID, Message: "   "}, http.StatusBadRequest},
		{"missing message", types.MessageRequest{SessionID: started.SessionID}, http.StatusBadRequest},
		{"missing session", types.MessageRequest{Message: "hi"}, http.StatusBadRequest},
		{"unknown session", types.MessageRequest{SessionID: "nope", Message: "hi"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPost, "/api/interview/message", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, decode[map[string]string](t, w), "error")
		})
	}

	w := doJSON(t, h, http.MethodPost, "/api/interview/message", types.MessageRequest{
		SessionID: started.SessionID,
		Message:   "I have five years of backend experience.",
	})
	require.Equal(t, http.StatusOK, w.Code)
	turn := decode[TurnResponse](t, w)
	assert.Equal(t, started.SessionID, turn.SessionID)
	assert.Equal(t, types.PhaseTechnicalBasic, turn.Phase)
	assert.False(t, turn.Done)
}

func TestFullInterviewOverHTTP(t *testing.T) {
	s := newTestServer(t, testServerOptions{})
	h := s.Handler()
	started := startInterview(t, h, types.CandidateProfile{Role: "SRE", Skills: "Kubernetes", Industry: "healthcare"})

	var turn TurnResponse
	for i := 0; !turn.Done; i++ {
		require.Less(t, i, len(started.Plan), "plan should finish")
		w := doJSON(t, h, http.MethodPost, "/api/interview/message", types.MessageRequest{
			SessionID: started.SessionID,
			Message:   fmt.Sprintf("answer number %d with some detail", i),
		})
		require.Equal(t, http.StatusOK, w.Code)
		turn = decode[TurnResponse](t, w)
	}
	assert.Equal(t, types.PhaseClosing, turn.Phase)

	w := doJSON(t, h, http.MethodGet, "/api/interview/"+started.SessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snapshot := decode[SessionResponse](t, w)
	assert.True(t, snapshot.Done)
	assert.Equal(t, len(snapshot.Plan), snapshot.StepIndex)

	reason := "completed"
	duration := 600
	w = doJSON(t, h, http.MethodPost, "/api/interview/finalize", types.FinalizeInterviewRequest{
		SessionID:        started.SessionID,
		CompletionReason: &reason,
		DurationSeconds:  &duration,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	eval := decode[types.Evaluation](t, w)
	assert.Equal(t, started.SessionID, eval.SessionID)
	assert.Equal(t, "completed", eval.CompletionReason)
	assert.Equal(t, 600, eval.DurationSeconds)
	assert.Equal(t, []string{"Kubernetes"}, eval.SkillsCovered)
	assert.GreaterOrEqual(t, eval.Score, 1.0)
	assert.LessOrEqual(t, eval.Score, 10.0)

	w = doJSON(t, h, http.MethodGet, "/api/interview/"+started.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "finalize removes the session")
}

func TestHandleFinalize_Validation(t *testing.T) {
	s := newTestServer(t, testServerOptions{})
	h := s.Handler()
	started := startInterview(t, h, types.CandidateProfile{})

	negative := -5
	w := doJSON(t, h, http.MethodPost, "/api/interview/finalize", types.FinalizeInterviewRequest{
		SessionID:       started.SessionID,
		DurationSeconds: &negative,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "DurationSeconds")

	w = doJSON(t, h, http.MethodPost, "/api/interview/finalize", types.FinalizeInterviewRequest{SessionID: "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleTerminate(t *testing.T) {
	s := newTestServer(t, testServerOptions{})
	h := s.Handler()
	started := startInterview(t, h, types.CandidateProfile{})

	w := doJSON(t, h, http.MethodDelete, "/api/interview/"+started.SessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"status":"terminated","sessionId":%q}`, started.SessionID), w.Body.String())

	w = doJSON(t, h, http.MethodDelete, "/api/interview/"+started.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/interview/message", types.MessageRequest{SessionID: started.SessionID, Message: "hello?"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleReportsWithoutDatabase(t *testing.T) {
	s := newTestServer(t, testServerOptions{})
	h := s.Handler()

	w := doJSON(t, h, http.MethodGet, "/api/interview/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reports":[],"count":0}`, w.Body.String())

	w = doJSON(t, h, http.MethodGet, "/api/interview/reports?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodGet, "/api/interview/reports/some-session", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, h, http.MethodDelete, "/api/interview/reports/some-session", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORS(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		s := newTestServer(t, testServerOptions{})
		w := doJSON(t, s.Handler(), http.MethodOptions, "/api/interview/start", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	})

	t.Run("allow list", func(t *testing.T) {
		s := newTestServer(t, testServerOptions{origins: []string{"https://app.example.com"}})

		w := doJSON(t, s.Handler(), http.MethodGet, "/api/health", nil, "Origin", "https://app.example.com")
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

		w = doJSON(t, s.Handler(), http.MethodGet, "/api/health", nil, "Origin", "https://evil.example.com")
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: ratelimit.DefaultEndpointConfigs(30),
	})
	s := newTestServer(t, testServerOptions{limiter: limiter})
	h := s.Handler()

	for i := 0; i < 5; i++ {
		startInterview(t, h, types.CandidateProfile{})
	}

	w := doJSON(t, h, http.MethodPost, "/api/interview/start", types.StartInterviewRequest{})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "30", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "rate_limit_exceeded", decode[map[string]any](t, w)["error"])

	w = doJSON(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth(t *testing.T) {
	jwtService := setupTestJWTService(t, 1)
	s := newTestServer(t, testServerOptions{jwt: jwtService})
	h := s.Handler()

	w := doJSON(t, h, http.MethodPost, "/api/interview/start", types.StartInterviewRequest{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code, "health stays public")

	token, _, err := jwtService.GenerateToken("cand-77")
	require.NoError(t, err)
	auth := []string{"Authorization", "Bearer " + token}

	started := startInterview(t, h, types.CandidateProfile{}, auth...)
	w = doJSON(t, h, http.MethodPost, "/api/interview/finalize", types.FinalizeInterviewRequest{SessionID: started.SessionID}, auth...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cand-77", decode[types.Evaluation](t, w).CandidateID)
}

func TestJWTAuth_SessionsAreScopedToCandidate(t *testing.T) {
	jwtService := setupTestJWTService(t, 1)
	s := newTestServer(t, testServerOptions{jwt: jwtService})
	h := s.Handler()

	aliceToken, _, err := jwtService.GenerateToken("alice")
	require.NoError(t, err)
	malloryToken, _, err := jwtService.GenerateToken("mallory")
	require.NoError(t, err)
	alice := []string{"Authorization", "Bearer " + aliceToken}
	mallory := []string{"Authorization", "Bearer " + malloryToken}

	started := startInterview(t, h, types.CandidateProfile{Skills: "Go"}, alice...)
	path := "/api/interview/" + started.SessionID

	w := doJSON(t, h, http.MethodGet, path, nil, mallory...)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/interview/message",
		types.MessageRequest{SessionID: started.SessionID, Message: "not my interview"}, mallory...)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/interview/finalize",
		types.FinalizeInterviewRequest{SessionID: started.SessionID}, mallory...)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, h, http.MethodDelete, path, nil, mallory...)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, h, http.MethodGet, path, nil, alice...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[SessionResponse](t, w).Transcript, 1)

	w = doJSON(t, h, http.MethodPost, "/api/interview/finalize",
		types.FinalizeInterviewRequest{SessionID: started.SessionID}, alice...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode[types.Evaluation](t, w).CandidateID)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	cfg := config.Default()
	cfg.Port = freePort(t)
	cfg.SweepInterval = 10 * time.Millisecond

	svc := interview.NewService(planner.NewEngine(), store.NewMemoryStore())
	s := newServer(cfg, svc, ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}), nil, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/health", cfg.Port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
