package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	logger := zap.NewNop()
	handler := AuthMiddleware("test-secret", logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/pos/sessions", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	logger := zap.NewNop()
	handler := AuthMiddleware("test-secret", logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, header := range []string{"bare-token", "Basic abc", "Bearer"} {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: code = %d, want 401", header, w.Code)
		}
	}
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	logger := zap.NewNop()
	secret := "test-secret"
	handler := AuthMiddleware(secret, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tokenString := signToken(t, secret, jwt.MapClaims{
		"operator_id": uuid.NewString(),
		"role":        "cashier",
		"exp":         time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	logger := zap.NewNop()
	handler := AuthMiddleware("right-secret", logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tokenString := signToken(t, "wrong-secret", jwt.MapClaims{
		"operator_id": uuid.NewString(),
		"role":        "cashier",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewarePutsClaimsInContext(t *testing.T) {
	logger := zap.NewNop()
	secret := "test-secret"
	operatorID := uuid.NewString()

	var gotID, gotRole string
	handler := AuthMiddleware(secret, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetOperatorID(r.Context())
		gotRole, _ = GetOperatorRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tokenString := signToken(t, secret, jwt.MapClaims{
		"operator_id": operatorID,
		"role":        "manager",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", w.Code)
	}
	if gotID != operatorID {
		t.Errorf("operator id in context = %q, want %q", gotID, operatorID)
	}
	if gotRole != "manager" {
		t.Errorf("role in context = %q, want manager", gotRole)
	}
}

func TestRequireRole(t *testing.T) {
	logger := zap.NewNop()
	secret := "test-secret"

	chain := func(role string) (*httptest.ResponseRecorder, *http.Request) {
		handler := AuthMiddleware(secret, logger)(
			RequireRole([]string{"manager"}, logger)(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				}),
			),
		)

		tokenString := signToken(t, secret, jwt.MapClaims{
			"operator_id": uuid.NewString(),
			"role":        role,
			"exp":         time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest("POST", "/api/promotions", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w, req
	}

	if w, _ := chain("manager"); w.Code != http.StatusOK {
		t.Errorf("manager: code = %d, want 200", w.Code)
	}
	if w, _ := chain("cashier"); w.Code != http.StatusForbidden {
		t.Errorf("cashier: code = %d, want 403", w.Code)
	}
}
