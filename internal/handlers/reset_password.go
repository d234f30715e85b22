package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avdeev2017/gw-auth-service/internal/logger"
	"github.com/avdeev2017/gw-auth-service/internal/services"
)

// PasswordResetRequester defines the interface that the reset service must implement.
type PasswordResetRequester interface {
	RequestPasswordReset(ctx context.Context, email string) error
}

// ResetPasswordRequest represents the JSON body for a password reset request
// swagger:model ResetPasswordRequest
type ResetPasswordRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`
}

// ResetPasswordResponse represents the response for a password reset request
// swagger:model ResetPasswordResponse
type ResetPasswordResponse struct {
	// Message
	// default: If an account with that email exists, a password reset link has been sent.
	Message string `json:"message"`
}

// NewResetPasswordHandler returns an HTTP handler that starts a password
// reset. The response never discloses whether the email is registered.
// @Summary Request password reset
// @Description Sends a time-limited reset link to the email if an account exists
// @Tags auth
// @Accept json
// @Produce json
// @Param resetRequest body handlers.ResetPasswordRequest true "Reset request"
// @Success 200 {object} handlers.ResetPasswordResponse "Generic acknowledgement"
// @Failure 500 {object} handlers.ResetPasswordResponse "Reset email could not be sent"
// @Router /reset-password [post]
func NewResetPasswordHandler(svc PasswordResetRequester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetPasswordRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ResetPasswordResponse{
				Message: "Invalid request body",
			})
			return
		}

		err := svc.RequestPasswordReset(r.Context(), req.Email)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrSendEmail):
				logger.Log.Errorw("reset email failed", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ResetPasswordResponse{
					Message: "Error sending reset password email",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ResetPasswordResponse{
					Message: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ResetPasswordResponse{
			Message: "If an account with that email exists, a password reset link has been sent.",
		})
	}
}
