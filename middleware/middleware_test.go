package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(r http.Handler, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if ip != "" {
		req.Header.Set("X-Real-IP", ip)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---- TraceID ----

func newTraceRouter() *gin.Engine {
	r := gin.New()
	r.Use(TraceID())
	r.GET("/trace", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c))
	})
	return r
}

func TestTraceID_Generated(t *testing.T) {
	w := get(newTraceRouter(), "/trace", "")
	require.Equal(t, http.StatusOK, w.Code)

	id := w.Body.String()
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Header().Get(TraceIDHeader))
}

func TestTraceID_Provided(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/trace", nil)
	req.Header.Set(TraceIDHeader, "my-custom-trace")
	w := httptest.NewRecorder()
	newTraceRouter().ServeHTTP(w, req)
	assert.Equal(t, "my-custom-trace", w.Body.String())
	assert.Equal(t, "my-custom-trace", w.Header().Get(TraceIDHeader))
}

// ---- Logger / Recovery ----

func TestLogger_LevelsByMethodAndStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(TraceID(), Logger(zap.New(core)))
	r.GET("/bots/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/bots/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	get(r, "/bots/abc", "")
	req := httptest.NewRequest(http.MethodPost, "/bots/abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("http").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "abc", entries[1].ContextMap()["bot_id"])
	assert.NotEmpty(t, entries[1].ContextMap()["trace_id"])
}

func TestRecovery_Returns500(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := get(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

// ---- RateLimit ----

func newRateLimitRouter(t *testing.T, r rate.Limit, b int) *gin.Engine {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	eng := gin.New()
	eng.Use(RateLimit(ctx, r, b))
	eng.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return eng
}

func TestRateLimit_Burst(t *testing.T) {
	r := newRateLimitRouter(t, 0.001, 3) // near-zero refill
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/", "10.0.1.1").Code, "request %d should be allowed", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/", "10.0.1.1").Code)
}

func TestRateLimit_PerIP(t *testing.T) {
	r := newRateLimitRouter(t, 0.001, 1)
	assert.Equal(t, http.StatusOK, get(r, "/", "10.1.1.1").Code)
	assert.Equal(t, http.StatusOK, get(r, "/", "10.1.1.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/", "10.1.1.1").Code)
}

func TestSweepLimiters(t *testing.T) {
	m := &sync.Map{}
	stale, fresh := &ipLimiter{}, &ipLimiter{}
	now := time.Now()
	stale.lastSeen.Store(now.Add(-time.Hour).UnixNano())
	fresh.lastSeen.Store(now.UnixNano())
	m.Store("stale", stale)
	m.Store("fresh", fresh)

	assert.Equal(t, 1, sweepLimiters(m, now.Add(-limiterIdleAfter)))
	_, ok := m.Load("fresh")
	assert.True(t, ok)
	_, ok = m.Load("stale")
	assert.False(t, ok)
}

// ---- AllowNetworks ----

func newAllowRouter(t *testing.T, entries []string) *gin.Engine {
	t.Helper()
	h, err := AllowNetworks(entries)
	require.NoError(t, err)
	r := gin.New()
	r.Use(h)
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestAllowNetworks_EmptyAllowsAll(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(newAllowRouter(t, nil), "/ping", "1.2.3.4").Code)
}

func TestAllowNetworks_Matches(t *testing.T) {
	r := newAllowRouter(t, []string{"127.0.0.0/8", "192.168.1.7", "::1"})
	assert.Equal(t, http.StatusOK, get(r, "/ping", "127.3.4.5").Code)
	assert.Equal(t, http.StatusOK, get(r, "/ping", "192.168.1.7").Code)
	assert.Equal(t, http.StatusOK, get(r, "/ping", "::1").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/ping", "192.168.1.8").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/ping", "10.0.0.1").Code)
}

func TestAllowNetworks_BadEntry(t *testing.T) {
	_, err := AllowNetworks([]string{"not-an-ip"})
	assert.Error(t, err)
	_, err = AllowNetworks([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}

// ---- OperatorAuth ----

func newAuthRouter(secret string) *gin.Engine {
	r := gin.New()
	r.Use(OperatorAuth(secret))
	r.POST("/act", func(c *gin.Context) { c.String(http.StatusOK, GetOperator(c)) })
	return r
}

func post(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/act", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOperatorAuth_OpenWithoutSecret(t *testing.T) {
	w := post(newAuthRouter(""), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestOperatorAuth_ValidToken(t *testing.T) {
	token, err := IssueOperatorToken("alice", "s3cret", time.Hour)
	require.NoError(t, err)

	w := post(newAuthRouter("s3cret"), token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestOperatorAuth_Rejects(t *testing.T) {
	r := newAuthRouter("s3cret")
	assert.Equal(t, http.StatusUnauthorized, post(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, post(r, "garbage").Code)

	wrong, err := IssueOperatorToken("alice", "other", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, post(r, wrong).Code)

	expired, err := IssueOperatorToken("alice", "s3cret", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, post(r, expired).Code)
}

func TestParseOperatorToken(t *testing.T) {
	token, err := IssueOperatorToken("bob", "k", time.Minute)
	require.NoError(t, err)
	claims, err := ParseOperatorToken(token, "k")
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.Operator)
	assert.Equal(t, "bob", claims.Subject)

	_, err = ParseOperatorToken(token, "nope")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = IssueOperatorToken("bob", "", time.Minute)
	assert.ErrorIs(t, err, ErrNoSecret)
}
