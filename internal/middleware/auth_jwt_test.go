package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

const testSecret = "test_secret_for_middleware"

func testConfig() config.Config {
	return config.Config{JWTSecret: testSecret}
}

// contextに入った値をそのまま返すハンドラ
func echoContextHandler(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserIDKey).(int64)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	return c.JSON(http.StatusOK, mwOKResponse{UserID: userID, Role: role})
}

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":  "7",
		"role": "USER",
		"iat":  now.Unix(),
		"exp":  now.Add(15 * time.Minute).Unix(),
	}
}

func doRequest(authz string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := echoContextHandler
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	_ = h(c)
	return rec
}

func TestAuthJWT_ValidToken(t *testing.T) {
	token := signToken(t, validClaims(), testSecret)
	rec := doRequest("Bearer "+token, middleware.AuthJWT(testConfig()))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.UserID)
	assert.Equal(t, "USER", body.Role)
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	rec := doRequest("", middleware.AuthJWT(testConfig()))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	rec := doRequest("Basic abc123", middleware.AuthJWT(testConfig()))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	token := signToken(t, validClaims(), "another_secret")
	rec := doRequest("Bearer "+token, middleware.AuthJWT(testConfig()))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signToken(t, claims, testSecret)

	rec := doRequest("Bearer "+token, middleware.AuthJWT(testConfig()))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_MissingRole(t *testing.T) {
	claims := validClaims()
	delete(claims, "role")
	token := signToken(t, claims, testSecret)

	rec := doRequest("Bearer "+token, middleware.AuthJWT(testConfig()))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoleGuard_AllowsAdmin(t *testing.T) {
	claims := validClaims()
	claims["role"] = "ADMIN"
	token := signToken(t, claims, testSecret)

	rec := doRequest("Bearer "+token,
		middleware.AuthJWT(testConfig()),
		middleware.AdminRoleGuard(),
	)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoleGuard_RejectsUser(t *testing.T) {
	token := signToken(t, validClaims(), testSecret)

	rec := doRequest("Bearer "+token,
		middleware.AuthJWT(testConfig()),
		middleware.AdminRoleGuard(),
	)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body mwErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "admin only", body.Error)
}
