package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Dosada05/footmatch/models"
	"github.com/golang-jwt/jwt/v4"
)

// Имена JWT claims. "sub" принимается, если "user_id" отсутствует.
const (
	jwtClaimUserID  = "user_id"
	jwtClaimSubject = "sub"
	jwtClaimRole    = "role"
)

// GetUserIDFromContext returns the authenticated profile id.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errNoClaims
	}

	for _, name := range []string{jwtClaimUserID, jwtClaimSubject} {
		raw, ok := claims[name]
		if !ok {
			continue
		}
		id, ok := raw.(string)
		if !ok || id == "" {
			return "", fmt.Errorf("invalid type for '%s' claim: expected non-empty string, got %T", name, raw)
		}
		return id, nil
	}
	return "", fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errNoClaims
	}

	roleClaim, ok := claims[jwtClaimRole]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimRole)
	}
	roleStr, ok := roleClaim.(string)
	if !ok {
		return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimRole, roleClaim)
	}

	role := models.UserRole(roleStr)
	switch role {
	case models.RoleAdmin, models.RoleOperator, models.RolePlayer:
		return role, nil
	default:
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
