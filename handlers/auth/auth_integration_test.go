package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/cambfordable/api/model"
	authutil "github.com/cambfordable/api/utils/auth"
	"github.com/cambfordable/api/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		getEnvOrDefault("DB_HOST", "localhost"),
		getEnvOrDefault("DB_USER_NAME", "postgres"),
		getEnvOrDefault("DB_PASSWORD", "postgres"),
		getEnvOrDefault("DB_NAME", "cambfordable_test"),
		getEnvOrDefault("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.JWTTokenBlacklist{}))

	return db
}

func setupAuthApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)

	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{
		Secret:        "integration-test-secret",
		Expiry:        30 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "cambfordable-test",
	})
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)
	handler := NewAuthHandler(db, jwtManager, nil)

	app := fiber.New()
	app.Post("/auth/signup", handler.Signup)
	app.Post("/auth/login", handler.Login)
	app.Post("/auth/refresh", handler.RefreshToken)
	app.Get("/auth/me", authMiddleware.Required(), handler.Me)

	return app, db
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestSignupLoginRefreshFlow(t *testing.T) {
	app, db := setupAuthApp(t)

	username := fmt.Sprintf("student_%d", time.Now().UnixNano())
	email := username + "@example.com"
	defer db.Unscoped().Where("username = ?", username).Delete(&model.User{})

	// Signup
	resp, env := postJSON(t, app, "/auth/signup", fiber.Map{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.True(t, env.Success)

	// Duplicate signup conflicts
	resp, _ = postJSON(t, app, "/auth/signup", fiber.Map{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Wrong password is a uniform 401
	resp, _ = postJSON(t, app, "/auth/login", fiber.Map{
		"username": username,
		"password": "wrong-password",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Login
	resp, env = postJSON(t, app, "/auth/login", fiber.Map{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var login LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.RefreshToken)
	assert.Equal(t, "bearer", login.TokenType)

	// Me
	req := httptest.NewRequest(fiber.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	meResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, meResp.StatusCode)

	// Refresh rotates the token pair
	resp, env = postJSON(t, app, "/auth/refresh", fiber.Map{
		"refresh_token": login.RefreshToken,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var refreshed RefreshResponse
	require.NoError(t, json.Unmarshal(env.Data, &refreshed))
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old refresh token is blacklisted after rotation
	resp, _ = postJSON(t, app, "/auth/refresh", fiber.Map{
		"refresh_token": login.RefreshToken,
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	app, db := setupAuthApp(t)

	username := fmt.Sprintf("student_%d", time.Now().UnixNano())
	defer db.Unscoped().Where("username = ?", username).Delete(&model.User{})

	resp, _ := postJSON(t, app, "/auth/signup", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	_, env := postJSON(t, app, "/auth/login", fiber.Map{
		"username": username,
		"password": "password123",
	})
	var login LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))

	// An access token is not accepted where a refresh token is expected
	resp, _ = postJSON(t, app, "/auth/refresh", fiber.Map{
		"refresh_token": login.AccessToken,
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
