package api

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"resumevault/internal/auth"
	"resumevault/internal/kvstore"
)

func newTestAuthService(t *testing.T) *auth.AuthService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	service, err := auth.NewAuthService(privPEM, pubPEM, 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return service
}

func newAuthTestHandler(t *testing.T) (*AuthHandler, Deps) {
	t.Helper()
	deps := newTestDeps(t)
	deps.AuthService = newTestAuthService(t)
	// 不可达地址：限流/锁定路径容忍 Redis 故障。
	deps.Redis = redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	deps.LoginRateLimitPerHour = 10
	deps.LoginLockThreshold = 5
	deps.LoginLockTTL = 15 * time.Minute
	return NewAuthHandler(deps), deps
}

func TestRegisterEndpoint(t *testing.T) {
	h, _ := newAuthTestHandler(t)

	body := registerRequest{Name: "Ada", Username: "ada", Email: "ada@example.com", Password: "secret1"}
	c, w := newJSONContext(t, http.MethodPost, "/v1/auth/register", body, 0)
	h.Register(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var resp userResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID == 0 || resp.Username != "ada" {
		t.Fatalf("response = %+v", resp)
	}

	// 响应绝不携带密码哈希。
	var raw map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &raw)
	if _, ok := raw["password_hash"]; ok {
		t.Fatalf("password hash leaked in response: %s", w.Body.String())
	}

	// 邮箱冲突：409。
	body.Username = "ada2"
	c, w = newJSONContext(t, http.MethodPost, "/v1/auth/register", body, 0)
	h.Register(c)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate email status = %d", w.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	h, deps := newAuthTestHandler(t)

	if _, err := deps.Directory.Register(context.Background(), "Ada", "ada", "ada@example.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	c, w := newJSONContext(t, http.MethodPost, "/v1/auth/login", loginRequest{Email: "ADA@example.com", Password: "secret1"}, 0)
	h.Login(c)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var resp tokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AccessToken == "" || resp.TokenType != "Bearer" {
		t.Fatalf("token response = %+v", resp)
	}
	if resp.User.Email != "ada@example.com" {
		t.Fatalf("user in response = %+v", resp.User)
	}

	claims, err := deps.AuthService.ValidateToken(resp.AccessToken)
	if err != nil || claims.TokenType != "access" {
		t.Fatalf("access token invalid: claims=%+v err=%v", claims, err)
	}

	// 登录写入会话。
	var ok bool
	var persisted map[string]any
	ok, err = kvstore.GetJSON(context.Background(), deps.Store, kvstore.KeyCurrentUser, &persisted)
	if err != nil || !ok {
		t.Fatalf("session not persisted: ok=%v err=%v", ok, err)
	}

	// 错误口令：401。
	c, w = newJSONContext(t, http.MethodPost, "/v1/auth/login", loginRequest{Email: "ada@example.com", Password: "wrong"}, 0)
	h.Login(c)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", w.Code)
	}
}

func TestResetPasswordEndpoint(t *testing.T) {
	h, deps := newAuthTestHandler(t)

	if _, err := deps.Directory.Register(context.Background(), "Ada", "ada", "ada@example.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// 两次输入不一致：400。
	c, w := newJSONContext(t, http.MethodPost, "/v1/auth/reset-password",
		resetPasswordRequest{Email: "ada@example.com", NewPassword: "newpass1", ConfirmPassword: "other"}, 0)
	h.ResetPassword(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("mismatch status = %d", w.Code)
	}

	// 未注册邮箱：404。
	c, w = newJSONContext(t, http.MethodPost, "/v1/auth/reset-password",
		resetPasswordRequest{Email: "ghost@example.com", NewPassword: "newpass1", ConfirmPassword: "newpass1"}, 0)
	h.ResetPassword(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown email status = %d", w.Code)
	}

	// 成功后新口令可登录。
	c, w = newJSONContext(t, http.MethodPost, "/v1/auth/reset-password",
		resetPasswordRequest{Email: "ada@example.com", NewPassword: "newpass1", ConfirmPassword: "newpass1"}, 0)
	h.ResetPassword(c)
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d body=%s", w.Code, w.Body.String())
	}
	if _, err := deps.Directory.Authenticate(context.Background(), "ada@example.com", "newpass1"); err != nil {
		t.Fatalf("authenticate with new password: %v", err)
	}
}
