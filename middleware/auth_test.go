package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func protected(roles ...string) http.Handler {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(id))
	})
	var inner http.Handler = h
	if len(roles) > 0 {
		inner = Authorize(roles...)(h)
	}
	return Authenticate(testSecret)(inner)
}

func TestAuthenticate(t *testing.T) {
	valid := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "prof-1",
		"role":    "operator",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	subOnly := signToken(t, testSecret, jwt.MapClaims{"sub": "prof-2", "role": "player"})
	expired := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "prof-1",
		"role":    "operator",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signToken(t, "other", jwt.MapClaims{"user_id": "prof-1", "role": "operator"})

	tests := []struct {
		name   string
		header string
		roles  []string
		status int
		body   string
	}{
		{"valid token", "Bearer " + valid, nil, http.StatusOK, "prof-1"},
		{"sub claim", "Bearer " + subOnly, nil, http.StatusOK, "prof-2"},
		{"missing header", "", nil, http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + valid, nil, http.StatusUnauthorized, ""},
		{"expired", "Bearer " + expired, nil, http.StatusUnauthorized, ""},
		{"wrong key", "Bearer " + wrongKey, nil, http.StatusUnauthorized, ""},
		{"role allowed", "Bearer " + valid, []string{"operator"}, http.StatusOK, "prof-1"},
		{"role denied", "Bearer " + subOnly, []string{"operator"}, http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected(tt.roles...).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("expected body %q, got %q", tt.body, rec.Body.String())
			}
		})
	}
}

func TestGetUserRoleFromContext_RejectsUnknownRole(t *testing.T) {
	ctx := WithClaims(httptest.NewRequest(http.MethodGet, "/", nil).Context(), jwt.MapClaims{"role": "organizer"})
	if _, err := GetUserRoleFromContext(ctx); err == nil {
		t.Error("expected error for unknown role")
	}
}
