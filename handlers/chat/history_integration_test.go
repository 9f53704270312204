package chat

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/cambfordable/api/model"
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
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Course{}, &model.LiveClass{}, &model.LiveClassMessage{},
	))

	return db
}

func TestHistoryReturnsLastMessagesOldestFirst(t *testing.T) {
	db := setupTestDB(t)

	suffix := time.Now().UnixNano()
	user := &model.User{
		Username:     fmt.Sprintf("chatter_%d", suffix),
		Email:        fmt.Sprintf("chatter_%d@example.com", suffix),
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)

	course := &model.Course{Name: "Chat Course", Code: fmt.Sprintf("CH-%d", suffix)}
	require.NoError(t, db.Create(course).Error)

	liveClass := &model.LiveClass{
		CourseID:   course.ID,
		Title:      "Chat Session",
		StartsAt:   time.Now().UTC().Add(-time.Hour),
		EndsAt:     time.Now().UTC().Add(time.Hour),
		MeetingURL: "https://zoom.example.com/j/chat",
	}
	require.NoError(t, db.Create(liveClass).Error)

	t.Cleanup(func() {
		db.Unscoped().Where("live_class_id = ?", liveClass.ID).Delete(&model.LiveClassMessage{})
		db.Unscoped().Delete(liveClass)
		db.Unscoped().Delete(course)
		db.Unscoped().Delete(user)
	})

	// More messages than the history limit, with strictly increasing timestamps
	base := time.Now().UTC().Add(-time.Hour)
	total := HistoryLimit + 10
	for i := 0; i < total; i++ {
		msg := model.LiveClassMessage{
			LiveClassID: liveClass.ID,
			UserID:      user.ID,
			Message:     fmt.Sprintf("message %d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, db.Create(&msg).Error)
	}

	handler := NewChatHandler(db, nil, nil)
	app := fiber.New()
	app.Get("/chat/:liveClassID/messages", handler.History)

	req := httptest.NewRequest(fiber.MethodGet, fmt.Sprintf("/chat/%d/messages", liveClass.ID), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))

	var messages []model.LiveClassMessage
	require.NoError(t, json.Unmarshal(env.Data, &messages))
	require.Len(t, messages, HistoryLimit)

	// The oldest messages fell off; what remains is ordered oldest to newest
	assert.Equal(t, fmt.Sprintf("message %d", total-HistoryLimit), messages[0].Message)
	assert.Equal(t, fmt.Sprintf("message %d", total-1), messages[len(messages)-1].Message)
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt),
			"messages must be ordered oldest to newest")
	}
}

func TestHistoryMissingClass(t *testing.T) {
	db := setupTestDB(t)

	handler := NewChatHandler(db, nil, nil)
	app := fiber.New()
	app.Get("/chat/:liveClassID/messages", handler.History)

	req := httptest.NewRequest(fiber.MethodGet, "/chat/999999999/messages", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
