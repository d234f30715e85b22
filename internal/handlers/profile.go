package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/avdeev2017/gw-auth-service/internal/logger"
	"github.com/avdeev2017/gw-auth-service/internal/middlewares"
	"github.com/avdeev2017/gw-auth-service/internal/models"
	"github.com/avdeev2017/gw-auth-service/internal/services"
)

// ProfileGetter defines the interface that the profile service must implement.
type ProfileGetter interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// ProfileErrorResponse represents an error response for the profile route
// swagger:model ProfileErrorResponse
type ProfileErrorResponse struct {
	// Error message
	// default: User not found
	Message string `json:"message"`
}

// NewProfileHandler returns an HTTP handler that serves the authenticated
// user's profile.
// @Summary Get own profile
// @Description Returns the public profile of the authenticated user
// @Tags profile
// @Produce json
// @Success 200 {object} models.Profile "Profile"
// @Failure 401 {string} string "No session credential"
// @Failure 403 {string} string "Invalid session credential"
// @Failure 404 {object} handlers.ProfileErrorResponse "User not found"
// @Security ApiKeyAuth
// @Router /profile [get]
func NewProfileHandler(svc ProfileGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.GetUserIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		profile, err := svc.GetProfile(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserDoesNotExist):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ProfileErrorResponse{
					Message: "User not found",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ProfileErrorResponse{
					Message: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(profile)
	}
}
