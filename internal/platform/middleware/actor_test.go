package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscalia/internal/platform/logger"
)

const testSigningKey = "test-signing-key"

func mintToken(t *testing.T, subject, name, role, key string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, actorClaims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func actorProbe(captured *Actor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = GetActor(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireActor_ValidToken(t *testing.T) {
	subject := uuid.NewString()
	var captured Actor
	handler := RequireActor(testSigningKey, logger.New())(actorProbe(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/clearances", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, subject, "Clerk One", RoleClerk, testSigningKey))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, subject, captured.UserID.String())
	assert.Equal(t, "Clerk One", captured.Name)
	assert.Equal(t, RoleClerk, captured.Role)
}

func TestRequireActor_MissingToken(t *testing.T) {
	var captured Actor
	handler := RequireActor(testSigningKey, logger.New())(actorProbe(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/clearances", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireActor_WrongKeyRejected(t *testing.T) {
	var captured Actor
	handler := RequireActor(testSigningKey, logger.New())(actorProbe(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/clearances", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, uuid.NewString(), "Clerk One", RoleClerk, "other-key"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireActor_NonUUIDSubjectRejected(t *testing.T) {
	var captured Actor
	handler := RequireActor(testSigningKey, logger.New())(actorProbe(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/clearances", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "not-a-uuid", "Clerk One", RoleClerk, testSigningKey))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guard := RequireRole(logger.New(), RoleAdmin)(ok)

	adminReq := httptest.NewRequest(http.MethodDelete, "/api/clearances/x", nil)
	adminReq = adminReq.WithContext(WithActor(adminReq.Context(), Actor{Name: "Boss", Role: RoleAdmin}))
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, adminReq)
	assert.Equal(t, http.StatusOK, rec.Code)

	clerkReq := httptest.NewRequest(http.MethodDelete, "/api/clearances/x", nil)
	clerkReq = clerkReq.WithContext(WithActor(clerkReq.Context(), Actor{Name: "Clerk", Role: RoleClerk}))
	rec = httptest.NewRecorder()
	guard.ServeHTTP(rec, clerkReq)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_CaseInsensitive(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guard := RequireRole(logger.New(), RoleAdmin, RoleClerk)(ok)

	req := httptest.NewRequest(http.MethodPost, "/api/clearances", nil)
	req = req.WithContext(WithActor(req.Context(), Actor{Name: "Clerk", Role: "clerk"}))
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
