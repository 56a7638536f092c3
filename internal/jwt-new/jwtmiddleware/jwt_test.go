package jwtmiddleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	security "github.com/linemk/pos-orders/internal/jwt-new"
	"github.com/linemk/pos-orders/internal/jwt-new/jwtmiddleware"
	"github.com/stretchr/testify/assert"
)

const testSecret = "testsecret"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		staffID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			http.Error(w, "staffID not found", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(staffID))
	})
}

func serve(t *testing.T, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	handler := jwtmiddleware.NewJWTMiddleware(testSecret)(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestJWTMiddleware_MissingAuthorization(t *testing.T) {
	rr := serve(t, "")

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status when no token provided")
	assert.True(t, strings.Contains(rr.Body.String(), "missing token"))
}

func TestJWTMiddleware_InvalidAuthorizationFormat(t *testing.T) {
	rr := serve(t, "InvalidFormat")

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status for invalid token format")
	assert.True(t, strings.Contains(rr.Body.String(), "invalid token format"))
}

func TestJWTMiddleware_InvalidToken(t *testing.T) {
	rr := serve(t, "Bearer invalid.token.value")

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Expected unauthorized status for invalid token")
	assert.True(t, strings.Contains(rr.Body.String(), "invalid token"))
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	tokenStr, err := security.NewStaffToken("cashier-1", "othersecret", time.Hour)
	assert.NoError(t, err)

	rr := serve(t, "Bearer "+tokenStr)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	tokenStr, err := security.NewStaffToken("cashier-1", testSecret, -time.Minute)
	assert.NoError(t, err)

	rr := serve(t, "Bearer "+tokenStr)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestJWTMiddleware_MissingSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iat": time.Now().Unix()})
	tokenStr, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)

	rr := serve(t, "Bearer "+tokenStr)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "sub not found")
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	tokenStr, err := security.NewStaffToken("cashier-1", testSecret, time.Hour)
	assert.NoError(t, err)

	rr := serve(t, "Bearer "+tokenStr)

	assert.Equal(t, http.StatusOK, rr.Code, "Expected OK status for valid token")
	assert.Equal(t, "cashier-1", rr.Body.String())
}

func TestNewStaffToken_EmptySecret(t *testing.T) {
	_, err := security.NewStaffToken("cashier-1", "", time.Hour)
	assert.ErrorIs(t, err, security.ErrEmptySecret)
}

func TestFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), jwtmiddleware.StaffIDKey, "cashier-7")
	staffID, ok := jwtmiddleware.FromContext(ctx)
	assert.True(t, ok, "Expected to retrieve staffID from context")
	assert.Equal(t, "cashier-7", staffID, "Expected staffID to match")
}
