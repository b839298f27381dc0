package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, subject string, roles []string) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func runRequest(token string, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, string, []string) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()

	var userID string
	var roles []string
	handler := func(c echo.Context) error {
		userID = UserIDFromContext(c.Request().Context())
		roles = RolesFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	c := e.NewContext(req, rec)
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, userID, roles
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	token := signToken(t, "u1", []string{"specialist"})
	rec, userID, roles := runRequest(token, Middleware(testSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if userID != "u1" {
		t.Errorf("userID = %q, want u1", userID)
	}
	if len(roles) != 1 || roles[0] != "specialist" {
		t.Errorf("roles = %v", roles)
	}
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	rec, _, _ := runRequest("", Middleware(testSecret))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareRejectsBadSignature(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte("other-secret"))
	rec, _, _ := runRequest(signed, Middleware(testSecret))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	token := signToken(t, "u1", []string{"patient"})

	rec, _, _ := runRequest(token, Middleware(testSecret), RequireRole("patient"))
	if rec.Code != http.StatusOK {
		t.Fatalf("patient role refused: status %d", rec.Code)
	}

	rec, _, _ = runRequest(token, Middleware(testSecret), RequireRole("specialist"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireRoleAdminBypass(t *testing.T) {
	token := signToken(t, "root", []string{"admin"})
	rec, _, _ := runRequest(token, Middleware(testSecret), RequireRole("specialist"))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin bypass failed: status %d", rec.Code)
	}
}

func TestDevMiddlewareGrantsAdmin(t *testing.T) {
	rec, userID, roles := runRequest("", DevMiddleware(), RequireRole("specialist"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if userID != "dev-user" || len(roles) != 1 || roles[0] != "admin" {
		t.Errorf("identity = %q %v", userID, roles)
	}
}
