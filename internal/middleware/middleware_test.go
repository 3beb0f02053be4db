package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/metrics"
	"github.com/haierkeys/site-text-service/internal/rbac"
	"github.com/haierkeys/site-text-service/pkg/app"
	"github.com/haierkeys/site-text-service/pkg/code"
	"github.com/haierkeys/site-text-service/pkg/limiter"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuthenticator maps tokens to identities
type stubAuthenticator struct {
	identities map[string]*domain.Identity
	err        error
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token == "" {
		return nil, nil
	}
	if id, ok := s.identities[token]; ok {
		return id, nil
	}
	return nil, code.ErrorInvalidUserAuthToken
}

func serve(r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	body := map[string]any{}
	_ = sonic.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func newAuthRouter(a Authenticator) *gin.Engine {
	r := gin.New()
	whoami := func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			c.JSON(http.StatusOK, gin.H{"email": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": identity.Email})
	}
	r.GET("/optional", SessionAuth(a, "site_text_session", false), whoami)
	r.GET("/required", SessionAuth(a, "site_text_session", true), whoami)
	r.GET("/edit", SessionAuth(a, "site_text_session", false), RequireAction(rbac.ActionContentEdit), whoami)
	return r
}

func TestSessionAuth(t *testing.T) {
	a := &stubAuthenticator{identities: map[string]*domain.Identity{
		"ed": {Email: "ed@example.com", Role: rbac.RoleEditor},
		"vi": {Email: "vi@example.com", Role: rbac.RoleViewer},
	}}
	r := newAuthRouter(a)

	tests := []struct {
		name       string
		path       string
		token      string
		cookie     string
		wantStatus int
		wantEmail  string
	}{
		{"optional anonymous", "/optional", "", "", http.StatusOK, ""},
		{"optional invalid token", "/optional", "nope", "", http.StatusOK, ""},
		{"optional bearer", "/optional", "ed", "", http.StatusOK, "ed@example.com"},
		{"optional cookie", "/optional", "", "ed", http.StatusOK, "ed@example.com"},
		{"required anonymous", "/required", "", "", http.StatusUnauthorized, ""},
		{"required invalid", "/required", "nope", "", http.StatusUnauthorized, ""},
		{"required ok", "/required", "vi", "", http.StatusOK, "vi@example.com"},
		{"action anonymous", "/edit", "", "", http.StatusUnauthorized, ""},
		{"action forbidden", "/edit", "vi", "", http.StatusForbidden, ""},
		{"action ok", "/edit", "ed", "", http.StatusOK, "ed@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "site_text_session", Value: tt.cookie})
			}
			w, body := serve(r, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantEmail, body["email"])
			}
		})
	}
}

func TestSessionAuth_StoreUnavailable(t *testing.T) {
	r := newAuthRouter(&stubAuthenticator{err: code.ErrorSessionStoreUnavailable})
	w, body := serve(r, httptest.NewRequest(http.MethodGet, "/optional", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.EqualValues(t, 407, body["code"])
}

func TestLangAndTrace(t *testing.T) {
	r := gin.New()
	r.Use(Trace(TracerConfig{Enabled: true}), Lang(nil))
	r.GET("/x", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"lang": app.GetLang(c), "trace": app.GetTraceID(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	w, body := serve(r, req)
	assert.Equal(t, "zh_cn", body["lang"])
	assert.NotEmpty(t, body["trace"])
	assert.Equal(t, body["trace"], w.Header().Get(DefaultTraceIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/x?lang=en", nil)
	req.Header.Set(DefaultTraceIDHeader, "abc-123")
	w, body = serve(r, req)
	assert.Equal(t, "en", body["lang"])
	assert.Equal(t, "abc-123", w.Header().Get(DefaultTraceIDHeader))
}

func TestValidTraceID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"abc-123", true},
		{"", false},
		{"has space", false},
		{"line\nbreak", false},
		{"追踪", false},
		{strings.Repeat("a", 129), false},
	}
	for _, tt := range tests {
		if got := validTraceID(tt.id); got != tt.want {
			t.Errorf("validTraceID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Trace(TracerConfig{Enabled: true}), Recovery(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w, body := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.EqualValues(t, 500, body["code"])
	assert.NotEmpty(t, body["traceId"])
}

func TestRateLimiterAndNoFound(t *testing.T) {
	l := limiter.NewMethodLimiter().AddBuckets(limiter.BucketRule{
		Key:          "/limited",
		FillInterval: time.Hour,
		Capacity:     1,
		Quantum:      1,
	})
	r := gin.New()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	r.Use(RateLimiter(l, m))
	r.GET("/limited", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.NoRoute(NoFound())

	w, _ := serve(r, httptest.NewRequest(http.MethodGet, "/limited", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	w, body := serve(r, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.EqualValues(t, 429, body["code"])
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("/limited")))

	w, _ = serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContextTimeout(t *testing.T) {
	r := gin.New()
	r.Use(ContextTimeout(time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
		c.String(http.StatusOK, c.Request.Context().Err().Error())
	})
	w, _ := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, context.DeadlineExceeded.Error(), w.Body.String())
}

func TestContextTimeout_SkipsWebsocketAndZero(t *testing.T) {
	hasDeadline := func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.String(http.StatusOK, "%v", ok)
	}

	r := gin.New()
	r.Use(ContextTimeout(time.Minute))
	r.GET("/ws", hasDeadline)
	r.GET("/plain", hasDeadline)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	w, _ := serve(r, req)
	assert.Equal(t, "false", w.Body.String())

	w, _ = serve(r, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, "true", w.Body.String())

	r = gin.New()
	r.Use(ContextTimeout(0))
	r.GET("/plain", hasDeadline)
	w, _ = serve(r, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, "false", w.Body.String())
}

func TestAppInfo(t *testing.T) {
	r := gin.New()
	r.Use(AppInfo("Site Text Service", app.VersionInfo{Version: "1.2.0", GitTag: "v1.2.0"}))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "%s %s", c.GetString(AppNameKey), c.GetString(AppVersionKey))
	})
	w, _ := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "Site Text Service 1.2.0", w.Body.String())
	assert.Equal(t, "1.2.0", w.Header().Get("X-App-Version"))
	assert.Equal(t, "v1.2.0", w.Header().Get("X-App-Build"))
}
