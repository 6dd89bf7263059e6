package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

func testAuthenticator() *Authenticator {
	return NewAuthenticator(shared.SecurityConfig{JWTSecret: "test-secret", SessionTimeoutHours: 1})
}

func TestTokenRoundTrip(t *testing.T) {
	a := testAuthenticator()
	user := &models.User{ID: "user-1", Username: "alice", IsAdmin: true}

	token, err := a.CreateToken(user)
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}

	identity, err := a.VerifyToken(token)
	if err != nil {
		t.Fatalf("failed to verify token: %v", err)
	}

	if identity.UserID != "user-1" || identity.Username != "alice" || !identity.IsAdmin {
		t.Errorf("identity mismatch: %+v", identity)
	}
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	a := testAuthenticator()
	other := NewAuthenticator(shared.SecurityConfig{JWTSecret: "different-secret", SessionTimeoutHours: 1})

	token, _ := other.CreateToken(&models.User{ID: "user-1", Username: "alice"})
	if _, err := a.VerifyToken(token); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("foreign-keyed token should fail verification, got %v", err)
	}

	if _, err := a.VerifyToken("not-a-token"); err == nil {
		t.Error("garbage token should fail verification")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if hash == "hunter22" {
		t.Error("hash should not equal plaintext")
	}

	if err := CheckPassword("hunter22", hash); err != nil {
		t.Errorf("correct password should verify: %v", err)
	}
	if err := CheckPassword("wrong", hash); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Errorf("wrong password should fail with credentials error, got %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	a := testAuthenticator()
	user := &models.User{ID: "user-1", Username: "alice"}
	token, _ := a.CreateToken(user)

	var seen *Identity
	handler := Middleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFrom(r.Context())
	}))

	t.Run("ValidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if seen == nil || seen.UserID != "user-1" {
			t.Errorf("identity not injected: %+v", seen)
		}
	})

	t.Run("MissingHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("BadToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	t.Run("Admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), &Identity{UserID: "u", IsAdmin: true}))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 for admin, got %d", rec.Code)
		}
	})

	t.Run("NonAdmin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), &Identity{UserID: "u"}))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403 for non-admin, got %d", rec.Code)
		}
	})
}

func TestLoginLimiter(t *testing.T) {
	limiter := NewLoginLimiter(0, 2)

	if !limiter.Allow("10.0.0.1") || !limiter.Allow("10.0.0.1") {
		t.Fatal("burst attempts should be allowed")
	}
	if limiter.Allow("10.0.0.1") {
		t.Error("third attempt should be throttled")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Error("other hosts keep their own budget")
	}

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "10.0.0.1:55555"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 for exhausted host, got %d", rec.Code)
	}
}
