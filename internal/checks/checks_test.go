package checks

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"github.com/termul/termul/internal/config"
	"github.com/termul/termul/internal/httpclient"
	"github.com/termul/termul/internal/logger"
	"github.com/termul/termul/internal/prober"
	"github.com/termul/termul/internal/ratelimit"
	"github.com/termul/termul/internal/scan"
	"github.com/termul/termul/pkg/types"
)

func testEnv(t *testing.T, criticalStopThreshold int) *Env {
	t.Helper()

	log, err := logger.New(config.LoggerConfig{Level: "error", Format: "json"})
	require.NoError(t, err)

	client := httpclient.New(config.HTTPConfig{
		Timeout:             2 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
	})

	return &Env{
		Prober: prober.New(client, 2*time.Second, log),
		Gate:   ratelimit.NewGate(0),
		State:  scan.NewState(criticalStopThreshold),
		Slots:  semaphore.NewWeighted(10),
		Log:    log,
	}
}

// countingHandler answers 200 on the given paths (query string included)
// and 404 otherwise, counting every request it sees.
type countingHandler struct {
	mu       sync.Mutex
	requests map[string]int
	okPaths  map[string]bool
}

func newCountingHandler(okPaths ...string) *countingHandler {
	ok := make(map[string]bool, len(okPaths))
	for _, p := range okPaths {
		ok[p] = true
	}
	return &countingHandler{
		requests: make(map[string]int),
		okPaths:  ok,
	}
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	h.mu.Lock()
	h.requests[key]++
	h.mu.Unlock()

	if h.okPaths[key] {
		w.WriteHeader(http.StatusOK)
		return
	}
	http.NotFound(w, r)
}

func (h *countingHandler) count(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.requests[key]
}

func (h *countingHandler) total() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.requests {
		n += c
	}
	return n
}

func TestExposedRoute_Positive(t *testing.T) {
	handler := newCountingHandler("/admin")
	server := httptest.NewServer(handler)
	defer server.Close()

	env := testEnv(t, 2)
	check := &ExposedRoute{URL: server.URL + "/admin"}

	require.NoError(t, check.Run(context.Background(), env))

	findings := env.State.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, types.FindingExposedRoute, findings[0].Type)
	assert.Equal(t, types.RiskHigh, findings[0].Risk)
	assert.Equal(t, server.URL+"/admin", findings[0].Endpoint)
	assert.Equal(t, 0, env.State.CriticalCount())
}

func TestExposedRoute_Negative(t *testing.T) {
	handler := newCountingHandler() // everything 404
	server := httptest.NewServer(handler)
	defer server.Close()

	env := testEnv(t, 2)
	check := &ExposedRoute{URL: server.URL + "/admin"}

	require.NoError(t, check.Run(context.Background(), env))

	assert.Empty(t, env.State.Findings())
}

func TestMissingAuth_Positive(t *testing.T) {
	handler := newCountingHandler("/api/internal/report")
	server := httptest.NewServer(handler)
	defer server.Close()

	env := testEnv(t, 2)
	check := &MissingAuth{URL: server.URL + "/api/internal/report"}

	require.NoError(t, check.Run(context.Background(), env))

	findings := env.State.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, types.FindingMissingAuth, findings[0].Type)
	assert.Equal(t, types.RiskCritical, findings[0].Risk)
	assert.Equal(t, 1, env.State.CriticalCount())
}

func TestIDOR_StopsAtThresholdMidLoop(t *testing.T) {
	handler := newCountingHandler(
		"/api/user/profile?id=1",
		"/api/user/profile?id=2",
	)
	server := httptest.NewServer(handler)
	defer server.Close()

	env := testEnv(t, 2)
	check := &IDOR{BaseURL: server.URL, Path: "/api/user/profile", Token: "X", MaxObjectID: 5}

	require.NoError(t, check.Run(context.Background(), env))

	findings := env.State.Findings()
	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.Equal(t, types.FindingIDOR, f.Type)
		assert.Equal(t, types.RiskCritical, f.Risk)
	}
	assert.Equal(t, []string{"DATA_DISCLOSURE", "DATA_DISCLOSURE"}, env.State.Graph().Edges()["IDOR"])

	// Ids 1 and 2 tripped the breaker; 3..5 must never be requested.
	assert.True(t, env.State.ShouldStop())
	assert.Equal(t, 1, handler.count("/api/user/profile?id=1"))
	assert.Equal(t, 1, handler.count("/api/user/profile?id=2"))
	assert.Equal(t, 0, handler.count("/api/user/profile?id=3"))
	assert.Equal(t, 0, handler.count("/api/user/profile?id=4"))
	assert.Equal(t, 0, handler.count("/api/user/profile?id=5"))
}

func TestIDOR_WalksAllIDsBelowThreshold(t *testing.T) {
	handler := newCountingHandler(
		"/api/user/profile?id=1",
		"/api/user/profile?id=2",
	)
	server := httptest.NewServer(handler)
	defer server.Close()

	env := testEnv(t, 100)
	check := &IDOR{BaseURL: server.URL, Path: "/api/user/profile", Token: "X", MaxObjectID: 5}

	require.NoError(t, check.Run(context.Background(), env))

	assert.Len(t, env.State.Findings(), 2)
	assert.Equal(t, 5, handler.total(), "all five ids should be probed when the breaker stays closed")
}

func TestPrivilegeEscalation_Positive(t *testing.T) {
	var gotMethod, gotAuth string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	env := testEnv(t, 2)
	check := &PrivilegeEscalation{URL: server.URL + "/api/admin/approve", Token: "X"}

	require.NoError(t, check.Run(context.Background(), env))

	findings := env.State.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, types.FindingPrivilegeEscalation, findings[0].Type)
	assert.Equal(t, types.RiskCritical, findings[0].Risk)
	assert.Equal(t, []string{"ADMIN_ACTION"}, env.State.Graph().Edges()["PRIVILEGE_ESCALATION"])

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Bearer X", gotAuth)
}

func TestWorkflowBypass_Positive(t *testing.T) {
	var gotBody string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotBody = string(body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	env := testEnv(t, 2)
	check := &WorkflowBypass{URL: server.URL + "/api/order/complete", Token: "X"}

	require.NoError(t, check.Run(context.Background(), env))

	findings := env.State.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, types.FindingWorkflowBypass, findings[0].Type)
	assert.Equal(t, types.RiskHigh, findings[0].Risk)
	assert.Equal(t, []string{"FINANCIAL_IMPACT"}, env.State.Graph().Edges()["WORKFLOW_BYPASS"])

	mu.Lock()
	defer mu.Unlock()
	assert.JSONEq(t, `{"status":"completed"}`, gotBody)
}

func TestChecks_SkipWhenStopped(t *testing.T) {
	handler := newCountingHandler("/admin", "/api/admin", "/api/order/complete")
	server := httptest.NewServer(handler)
	defer server.Close()

	env := testEnv(t, 1)
	env.State.Record(types.Finding{
		Type:     types.FindingMissingAuth,
		Endpoint: server.URL + "/api/admin",
		Risk:     types.RiskCritical,
	})
	require.True(t, env.State.ShouldStop())

	battery := []Check{
		&ExposedRoute{URL: server.URL + "/admin"},
		&MissingAuth{URL: server.URL + "/api/admin"},
		&IDOR{BaseURL: server.URL, Path: "/api/user/profile", Token: "X", MaxObjectID: 5},
		&PrivilegeEscalation{URL: server.URL + "/api/admin/approve", Token: "X"},
		&WorkflowBypass{URL: server.URL + "/api/order/complete", Token: "X"},
	}

	for _, check := range battery {
		require.NoError(t, check.Run(context.Background(), env))
	}

	assert.Len(t, env.State.Findings(), 1, "no check may issue requests after the stop signal")
	assert.Equal(t, 0, handler.total())
}

func TestClassification_Idempotent(t *testing.T) {
	handler := newCountingHandler("/api/admin")
	server := httptest.NewServer(handler)
	defer server.Close()

	env := testEnv(t, 100)
	check := &MissingAuth{URL: server.URL + "/api/admin"}

	require.NoError(t, check.Run(context.Background(), env))
	require.NoError(t, check.Run(context.Background(), env))

	findings := env.State.Findings()
	require.Len(t, findings, 2)
	assert.Equal(t, findings[0], findings[1],
		"identical (status, endpoint) inputs must classify identically")
}

func TestNetworkFailure_NoFinding(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	env := testEnv(t, 2)
	battery := []Check{
		&ExposedRoute{URL: url + "/admin"},
		&IDOR{BaseURL: url, Path: "/api/user/profile", Token: "X", MaxObjectID: 5},
	}

	for _, check := range battery {
		require.NoError(t, check.Run(context.Background(), env), "network failures never propagate")
	}

	assert.Empty(t, env.State.Findings())
}

func TestBuild_Battery(t *testing.T) {
	cfg := config.Default().Checks
	battery := Build(cfg, "https://t.example", "X")

	// 4 exposed + 2 missing auth + 1 idor + 2 privilege + 1 workflow.
	require.Len(t, battery, 10)

	byType := make(map[types.FindingType]int)
	for _, check := range battery {
		byType[check.Type()]++
	}
	assert.Equal(t, 4, byType[types.FindingExposedRoute])
	assert.Equal(t, 2, byType[types.FindingMissingAuth])
	assert.Equal(t, 1, byType[types.FindingIDOR])
	assert.Equal(t, 2, byType[types.FindingPrivilegeEscalation])
	assert.Equal(t, 1, byType[types.FindingWorkflowBypass])

	assert.Equal(t, "https://t.example/admin", battery[0].(*ExposedRoute).URL)
	assert.Equal(t, "https://t.example/api/admin", battery[4].(*MissingAuth).URL)
}
