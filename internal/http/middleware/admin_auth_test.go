package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	return signRoleToken(t, secret, RoleAdmin, expiresAt)
}

func signRoleToken(t *testing.T, secret, role string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "desk-1",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func adminHandler(secret string) (http.Handler, *bool) {
	reached := false
	h := AdminJWT(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := AdminClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "claims missing", http.StatusInternalServerError)
			return
		}
		reached = true
		w.WriteHeader(http.StatusOK)
	}))
	return h, &reached
}

func TestAdminJWT_ValidToken(t *testing.T) {
	handler, reached := adminHandler(testSecret)

	req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
}

func TestAdminJWT_StaffRoleAccepted(t *testing.T) {
	handler, reached := adminHandler(testSecret)

	req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	req.Header.Set("Authorization", "Bearer "+signRoleToken(t, testSecret, RoleStaff, time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
}

func TestAdminJWT_UnknownRoleForbidden(t *testing.T) {
	handler, reached := adminHandler(testSecret)

	for _, role := range []string{"", "patient"} {
		req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
		req.Header.Set("Authorization", "Bearer "+signRoleToken(t, testSecret, role, time.Now().Add(time.Hour)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, *reached)
	}
}

func TestAdminJWT_MissingHeader(t *testing.T) {
	handler, reached := adminHandler(testSecret)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/products", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

func TestAdminJWT_WrongSecret(t *testing.T) {
	handler, reached := adminHandler(testSecret)

	req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

func TestAdminJWT_ExpiredToken(t *testing.T) {
	handler, reached := adminHandler(testSecret)

	req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, time.Now().Add(-time.Hour)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

func TestAdminJWT_EmptySecretLocksAdminOut(t *testing.T) {
	handler, reached := adminHandler("")

	req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}
