// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"formfill-server/db"
	"formfill-server/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const middlewareTestJWTSecret = "middleware_test_secret"

func setupMiddlewareTest(t *testing.T) {
	t.Helper()

	t.Setenv("JWT_SECRET", middlewareTestJWTSecret)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := conn.AutoMigrate(models.AllModels...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	db.Conn = conn
}

func createSessionBearer(t *testing.T, expiresAt *time.Time) string {
	t.Helper()

	user := models.User{
		Email:     "middleware-user@example.com",
		Password:  "irrelevant",
		PlanType:  models.FreePlan,
		FormLimit: models.FreeFormLimit,
	}
	if err := db.Conn.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	session := models.Session{
		UserID:    user.ID,
		Token:     "st_long_middleware_test",
		ExpiresAt: expiresAt,
	}
	if err := db.Conn.Create(&session).Error; err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	claims := jwt.MapClaims{
		"iss": "https://formfill.dev",
		"iat": time.Now().Unix(),
		"sub": user.AccountID,
		"aud": "https://api.formfill.dev",
		"jti": session.Token,
		"sid": session.ID,
		"uid": user.ID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(middlewareTestJWTSecret))
	if err != nil {
		t.Fatalf("Failed to sign session token: %v", err)
	}
	return "Bearer " + signed
}

func runAuthenticatedRequest(t *testing.T, bearer string) (int, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/users/", nil)
	req.Header.Set("Authorization", bearer)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := VerifyAuthMiddleware(AuthMethodSession)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec.Code, handler(c)
}

func TestVerifyAuthMiddlewareAcceptsSessionWithoutExpiry(t *testing.T) {
	setupMiddlewareTest(t)
	bearer := createSessionBearer(t, nil)

	code, err := runAuthenticatedRequest(t, bearer)
	if err != nil {
		t.Fatalf("Expected session without expiry to authenticate, got %v", err)
	}
	if code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", code)
	}
}

func TestVerifyAuthMiddlewareRejectsExpiredSession(t *testing.T) {
	setupMiddlewareTest(t)
	expired := time.Now().Add(-time.Hour)
	bearer := createSessionBearer(t, &expired)

	_, err := runAuthenticatedRequest(t, bearer)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 HTTPError for expired session, got %v", err)
	}
}
