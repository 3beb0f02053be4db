package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	cfg := TokenConfig{
		SecretKey: "user-secret",
		Expiry:    1 * time.Hour,
		Issuer:    "test-issuer",
	}
	tm := NewTokenManager(cfg)

	token, expiresAt, err := tm.Generate("sess-1", "editor@example.com", "Editor", "editor")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if claims.ID != "sess-1" {
		t.Errorf("Expected session id sess-1, got %s", claims.ID)
	}
	if claims.Subject != "editor@example.com" {
		t.Errorf("Expected subject editor@example.com, got %s", claims.Subject)
	}
	if claims.Role != "editor" || claims.Name != "Editor" {
		t.Errorf("Unexpected claims: %+v", claims)
	}

	// 过期时间允许 1 秒误差
	expectedExp := time.Now().Add(cfg.Expiry)
	if claims.ExpiresAt.Unix() < expectedExp.Unix()-1 || claims.ExpiresAt.Unix() > expectedExp.Unix()+1 {
		t.Errorf("Expected ExpiresAt around %v, got %v", expectedExp, claims.ExpiresAt)
	}
	if claims.ExpiresAt.Unix() != expiresAt.Unix() {
		t.Errorf("Returned expiry %v differs from claim %v", expiresAt, claims.ExpiresAt)
	}

	// 错误的密钥
	wrongKeyCfg := cfg
	wrongKeyCfg.SecretKey = "wrong-secret"
	wrongToken, _, _ := NewTokenManager(wrongKeyCfg).Generate("sess-1", "editor@example.com", "Editor", "editor")
	if _, err := tm.Parse(wrongToken); err == nil {
		t.Error("Expected error when parsing token with wrong secret key, but got nil")
	}

	// 篡改后的 Token
	if _, err := tm.Parse(token + "tampered"); err == nil {
		t.Error("Expected error when parsing tampered token, but got nil")
	}

	// 过期 Token
	expiredCfg := cfg
	expiredCfg.Expiry = -1 * time.Minute
	expiredToken, _, _ := NewTokenManager(expiredCfg).Generate("sess-2", "editor@example.com", "Editor", "editor")
	if _, err := tm.Parse(expiredToken); err == nil {
		t.Error("Expected error when parsing expired token, but got nil")
	}
}

func TestTokenManager_DefaultExpiry(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "k"})
	if tm.Expiry() != 7*24*time.Hour {
		t.Errorf("Expected default expiry 7d, got %v", tm.Expiry())
	}
}

func TestGetRequestToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "session", Value: "c1"}) }, "c1"},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer b1") }, "b1"},
		{"raw authorization", func(r *http.Request) { r.Header.Set("Authorization", "a1") }, "a1"},
		{"token header", func(r *http.Request) { r.Header.Set("token", "h1") }, "h1"},
		{"query", func(r *http.Request) { r.URL.RawQuery = "token=q1" }, "q1"},
		{"none", func(r *http.Request) {}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			c.Request = req

			if got := GetRequestToken(c, "session"); got != tt.want {
				t.Errorf("GetRequestToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
