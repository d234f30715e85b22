package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/avdeev2017/gw-auth-service/internal/logger"
	"github.com/avdeev2017/gw-auth-service/internal/models"
)

// ErrProfileNotCached is returned when no cached profile exists for the id.
var ErrProfileNotCached = fmt.Errorf("profile not found in cache")

// ProfileCacheRepository caches public user profiles in Redis. Profiles
// only contain immutable fields in this service, so a short TTL is just a
// bound on memory, not a staleness concern.
type ProfileCacheRepository struct {
	client *redis.Client
	exp    time.Duration
}

// NewProfileCacheRepository creates a new repository instance with the given TTL.
func NewProfileCacheRepository(client *redis.Client, expiration time.Duration) *ProfileCacheRepository {
	return &ProfileCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func profileKey(userID uuid.UUID) string {
	return fmt.Sprintf("profile:%s", userID)
}

// GetProfile fetches a cached profile, returning ErrProfileNotCached on a miss.
func (r *ProfileCacheRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	key := profileKey(userID)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Debugw("profile cache get", "key", key, "error", err)
		if err == redis.Nil {
			return nil, ErrProfileNotCached
		}
		return nil, err
	}

	var profile models.Profile
	if err := json.Unmarshal([]byte(val), &profile); err != nil {
		logger.Log.Errorw("profile cache decode failed", "key", key, "error", err)
		return nil, err
	}

	logger.Log.Debugw("profile cache hit", "key", key)
	return &profile, nil
}

// SetProfile caches a profile with the configured expiration.
func (r *ProfileCacheRepository) SetProfile(ctx context.Context, profile models.Profile) error {
	key := profileKey(profile.UserID)

	val, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, val, r.exp).Err()

	logger.Log.Debugw("profile cache set", "key", key, "error", err)

	return err
}
