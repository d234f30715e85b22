package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avdeev2017/gw-auth-service/internal/logger"
	"github.com/avdeev2017/gw-auth-service/internal/services"
)

// PasswordResetConfirmer defines the interface that the reset service must implement.
type PasswordResetConfirmer interface {
	ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error
}

// ConfirmResetRequest represents the JSON body for completing a password reset
// swagger:model ConfirmResetRequest
type ConfirmResetRequest struct {
	// Reset token from the email link
	// required: true
	Token string `json:"token"`

	// New password
	// required: true
	// default: newsecret123
	NewPassword string `json:"newPassword"`
}

// ConfirmResetResponse represents the response for completing a password reset
// swagger:model ConfirmResetResponse
type ConfirmResetResponse struct {
	// Message
	// default: Your password has been reset successfully.
	Message string `json:"message"`
}

// NewConfirmResetHandler returns an HTTP handler that completes a password
// reset. The token is single-use and expires one hour after issuance.
// @Summary Confirm password reset
// @Description Sets a new password using the token from the reset email
// @Tags auth
// @Accept json
// @Produce json
// @Param confirmRequest body handlers.ConfirmResetRequest true "Confirm request"
// @Success 200 {object} handlers.ConfirmResetResponse "Password reset"
// @Failure 400 {object} handlers.ConfirmResetResponse "Invalid or expired token / password too short"
// @Router /reset-password/confirm [post]
func NewConfirmResetHandler(svc PasswordResetConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConfirmResetRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ConfirmResetResponse{
				Message: "Invalid request body",
			})
			return
		}

		err := svc.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidOrExpiredToken):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ConfirmResetResponse{
					Message: "Password reset token is invalid or has expired.",
				})
			case errors.Is(err, services.ErrPasswordTooShort):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ConfirmResetResponse{
					Message: "Password is too short",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ConfirmResetResponse{
					Message: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ConfirmResetResponse{
			Message: "Your password has been reset successfully.",
		})
	}
}
