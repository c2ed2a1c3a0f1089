package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gundaabinav333/authshell/internal/core/domain"
	"github.com/gundaabinav333/authshell/internal/session"
	"github.com/gundaabinav333/authshell/internal/session/authapi"
	"github.com/gundaabinav333/authshell/internal/session/store"
	"github.com/gundaabinav333/authshell/internal/telemetry/logger"
	"github.com/gundaabinav333/authshell/internal/telemetry/metric"
)

func newTestServer(t *testing.T, mutate func(*Config)) (*Server, *httptest.Server, *metric.Registry) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Secret = string(testSecret)
	if mutate != nil {
		mutate(cfg)
	}
	reg := metric.NewRegistry()

	s, err := New(cfg, WithHashParams(cheapParams), WithRegistry(reg), WithLogger(logger.Discard()))
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts, reg
}

func postLogin(t *testing.T, url, email, password string) (*http.Response, map[string]any) {
	t.Helper()
	body, _ := json.Marshal(domain.LoginRequest{Email: email, Password: password})
	resp, err := http.Post(url+"/api/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func bearer(t *testing.T, method, url, tok string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestLogin_Success(t *testing.T) {
	_, ts, reg := newTestServer(t, nil)

	resp, out := postLogin(t, ts.URL, DemoEmail, DemoPassword)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["success"])

	data := out["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])
	u := data["user"].(map[string]any)
	assert.Equal(t, "Demo User", u["name"])
	assert.Equal(t, []any{"user"}, u["roles"])
	assert.Len(t, u["id"], 26, "ULID subject")

	body := scrapeMetrics(t, ts.URL)
	assert.Contains(t, body, `authshell_devserver_requests_total{endpoint="login",outcome="success"} 1`)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("POST", "POST /api/login", "200")))
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	resp, _ := postLogin(t, ts.URL, "  DEMO@example.com ", DemoPassword)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin_Rejected(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	for _, tc := range []struct{ email, password string }{
		{DemoEmail, "wrong"},
		{"nobody@example.com", DemoPassword},
	} {
		resp, out := postLogin(t, ts.URL, tc.email, tc.password)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, false, out["success"])
		assert.Equal(t, "Invalid email or password", out["message"])
	}
}

func TestLogin_BadRequest(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/api/login", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp2, out := postLogin(t, ts.URL, "", "")
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
	assert.Equal(t, "Email and password are required", out["message"])
}

func TestLogin_Throttled(t *testing.T) {
	_, ts, _ := newTestServer(t, func(c *Config) {
		c.LoginRate = 0.001
		c.LoginBurst = 2
	})

	for i := 0; i < 2; i++ {
		resp, _ := postLogin(t, ts.URL, DemoEmail, "wrong")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, out := postLogin(t, ts.URL, DemoEmail, DemoPassword)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
	assert.Equal(t, false, out["success"])

	// Other accounts are not affected.
	resp, _ = postLogin(t, ts.URL, "other@example.com", "x")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVerifyAndLogout(t *testing.T) {
	s, ts, _ := newTestServer(t, nil)

	_, out := postLogin(t, ts.URL, DemoEmail, DemoPassword)
	tok := out["data"].(map[string]any)["token"].(string)

	assert.Equal(t, http.StatusOK, bearer(t, http.MethodGet, ts.URL+"/api/verify-token", tok).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, bearer(t, http.MethodGet, ts.URL+"/api/verify-token", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, bearer(t, http.MethodGet, ts.URL+"/api/verify-token", "abc").StatusCode)

	assert.Equal(t, http.StatusNoContent, bearer(t, http.MethodPost, ts.URL+"/api/logout", tok).StatusCode)
	assert.Equal(t, 1, s.issuer.Revoked())
	assert.Equal(t, http.StatusUnauthorized, bearer(t, http.MethodGet, ts.URL+"/api/verify-token", tok).StatusCode)

	// Logging out again, or without a token, still succeeds.
	assert.Equal(t, http.StatusNoContent, bearer(t, http.MethodPost, ts.URL+"/api/logout", tok).StatusCode)
	assert.Equal(t, http.StatusNoContent, bearer(t, http.MethodPost, ts.URL+"/api/logout", "").StatusCode)
}

func TestHealth(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)
	resp := bearer(t, http.MethodGet, ts.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestNew_BadPasswordHash(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Users[0].Password = ""
	cfg.Users[0].PasswordHash = "not-a-hash"
	_, err := New(cfg, WithHashParams(cheapParams), WithRegistry(metric.NewRegistry()))
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestNew_GeneratedSecret(t *testing.T) {
	cfg := DefaultConfig()
	s, err := New(cfg, WithHashParams(cheapParams), WithRegistry(metric.NewRegistry()), WithLogger(logger.Discard()))
	require.NoError(t, err)
	assert.NotNil(t, s.issuer)
}

// The session controller and the devserver agree on the wire format.
func TestController_EndToEnd(t *testing.T) {
	ctx := context.Background()
	_, ts, _ := newTestServer(t, nil)

	client, err := authapi.New(authapi.Config{BaseURL: ts.URL})
	require.NoError(t, err)
	st := store.NewMemoryStore()

	c := session.New(st, client)
	c.Initialize(ctx)
	require.Equal(t, session.StatusUnauthenticated, c.Status())

	err = c.Login(ctx, domain.LoginRequest{Email: DemoEmail, Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", c.Snapshot().Error)

	require.NoError(t, c.Login(ctx, domain.LoginRequest{Email: DemoEmail, Password: DemoPassword}))
	assert.True(t, c.HasRole("user"))

	// A fresh controller over the same store restores the session.
	restored := session.New(st, client)
	restored.Initialize(ctx)
	assert.True(t, restored.IsAuthenticated())
	assert.Equal(t, DemoEmail, restored.CurrentUser().Email)

	// After logout the persisted token is revoked server-side.
	rec, err := st.Load(ctx)
	require.NoError(t, err)
	revokedToken := rec.Token

	restored.Logout(ctx)
	assert.Error(t, client.Verify(ctx, revokedToken))

	again := session.New(st, client)
	again.Initialize(ctx)
	assert.False(t, again.IsAuthenticated())
}

func scrapeMetrics(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return buf.String()
}
