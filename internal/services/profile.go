package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/avdeev2017/gw-auth-service/internal/logger"
	"github.com/avdeev2017/gw-auth-service/internal/models"
)

// ProfileReader loads public profile fields from the store.
type ProfileReader interface {
	GetProfileByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// ProfileCache caches public profiles.
type ProfileCache interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	SetProfile(ctx context.Context, profile models.Profile) error
}

// ProfileService serves the authenticated user's public profile,
// cache-aside over the store. Cache failures never fail the request.
type ProfileService struct {
	reader ProfileReader
	cache  ProfileCache
}

// NewProfileService creates a new ProfileService instance. The cache is
// optional; a nil cache reads straight from the store.
func NewProfileService(reader ProfileReader, cache ProfileCache) *ProfileService {
	return &ProfileService{
		reader: reader,
		cache:  cache,
	}
}

// GetProfile returns the profile for the given user id.
func (svc *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if svc.cache != nil {
		if profile, err := svc.cache.GetProfile(ctx, userID); err == nil {
			return profile, nil
		}
	}

	profile, err := svc.reader.GetProfileByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get profile", "err", err)
		return nil, err
	}
	if profile == nil {
		logger.Log.Infow("profile requested for missing user", "user_id", userID)
		return nil, ErrUserDoesNotExist
	}

	if svc.cache != nil {
		if err := svc.cache.SetProfile(ctx, *profile); err != nil {
			logger.Log.Warnw("failed to cache profile", "user_id", userID, "err", err)
		}
	}

	return profile, nil
}
