package service

import (
	"context"
	"time"

	"github.com/gtl92/gmail-svelkit/internal/logger"
	"github.com/gtl92/gmail-svelkit/internal/model"
	"github.com/gtl92/gmail-svelkit/internal/repository"
)

type authService struct {
	userRepo repository.UserRepository
	logger   *logger.Logger
}

func NewAuthService(userRepo repository.UserRepository, logger *logger.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetOrCreateUser upserts the user after an OAuth callback. A returning user
// gets their token pair refreshed; Google does not always resend the refresh
// token, so an empty one never overwrites a stored one.
func (s *authService) GetOrCreateUser(ctx context.Context, googleID, email, name, accessToken, refreshToken string, tokenExpiry time.Time) (*model.User, error) {
	existingUser, err := s.userRepo.FindByGoogleID(ctx, googleID)
	if err != nil {
		newUser := model.NewUser(googleID, email, name, accessToken, refreshToken, tokenExpiry)
		if err := s.userRepo.Create(ctx, newUser); err != nil {
			s.logger.Error("Failed to create user:", err)
			return nil, err
		}
		s.logger.Info("Created new user:", newUser.ID)
		return newUser, nil
	}

	if accessToken != "" {
		existingUser.AccessToken = accessToken
		existingUser.TokenExpiry = tokenExpiry
	}
	if refreshToken != "" {
		existingUser.RefreshToken = refreshToken
	}
	if err := s.userRepo.Update(ctx, existingUser); err != nil {
		s.logger.Error("Failed to update user:", err)
		return nil, err
	}
	s.logger.Info("Updated existing user:", existingUser.ID)

	return existingUser, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}
