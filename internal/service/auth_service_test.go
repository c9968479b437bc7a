package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gtl92/gmail-svelkit/internal/logger"
	"github.com/gtl92/gmail-svelkit/internal/repository/memory"
	"github.com/gtl92/gmail-svelkit/internal/service"
)

func TestAuthServiceGetOrCreateUser(t *testing.T) {
	userRepo := memory.NewInMemoryUserRepository()
	authService := service.NewAuthService(userRepo, logger.New())
	ctx := context.Background()

	expiry := time.Now().Add(time.Hour)
	user, err := authService.GetOrCreateUser(ctx, "google_123", "test@example.com", "Test User", "access_token", "refresh_token", expiry)
	assert.NoError(t, err)
	assert.Equal(t, "google_123", user.GoogleID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, "access_token", user.AccessToken)

	// A returning user keeps their identity but gets fresh tokens
	sameUser, err := authService.GetOrCreateUser(ctx, "google_123", "test@example.com", "Test User", "new_access_token", "new_refresh_token", expiry)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, sameUser.ID)
	assert.Equal(t, "new_access_token", sameUser.AccessToken)
	assert.Equal(t, "new_refresh_token", sameUser.RefreshToken)

	// Google omitting the refresh token must not erase the stored one
	again, err := authService.GetOrCreateUser(ctx, "google_123", "test@example.com", "Test User", "third_access_token", "", expiry)
	assert.NoError(t, err)
	assert.Equal(t, "third_access_token", again.AccessToken)
	assert.Equal(t, "new_refresh_token", again.RefreshToken)

	retrieved, err := authService.GetUser(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.ID)
}
