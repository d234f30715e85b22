package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avdeev2017/gw-auth-service/internal/logger"
	"github.com/avdeev2017/gw-auth-service/internal/services"
)

// VerificationResender defines the interface that the resend service must implement.
type VerificationResender interface {
	ResendVerification(ctx context.Context, email string) error
}

// ResendVerificationRequest represents the JSON body for a resend request
// swagger:model ResendVerificationRequest
type ResendVerificationRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`
}

// ResendVerificationErrorResponse represents an error response for a resend request
// swagger:model ResendVerificationErrorResponse
type ResendVerificationErrorResponse struct {
	// Error message
	// default: Verification email resend limit reached. Please try again later.
	Message string `json:"message"`
}

// NewResendVerificationHandler returns an HTTP handler for resending the
// verification email. At most 3 resends are allowed per rolling hour.
// @Summary Resend verification email
// @Description Resends the stored verification token to an unverified account
// @Tags auth
// @Accept json
// @Produce json
// @Param resendRequest body handlers.ResendVerificationRequest true "Resend request"
// @Success 200 {string} string "Verification email resent"
// @Failure 400 {object} handlers.ResendVerificationErrorResponse "Account already verified"
// @Failure 404 {object} handlers.ResendVerificationErrorResponse "User not found"
// @Failure 429 {object} handlers.ResendVerificationErrorResponse "Resend limit reached"
// @Router /resend-verification [post]
func NewResendVerificationHandler(svc VerificationResender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResendVerificationRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ResendVerificationErrorResponse{
				Message: "Invalid request body",
			})
			return
		}

		err := svc.ResendVerification(r.Context(), req.Email)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserDoesNotExist):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ResendVerificationErrorResponse{
					Message: "User not found",
				})
			case errors.Is(err, services.ErrUserAlreadyVerified):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ResendVerificationErrorResponse{
					Message: "Account already verified",
				})
			case errors.Is(err, services.ErrResendLimitReached):
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(ResendVerificationErrorResponse{
					Message: "Verification email resend limit reached. Please try again later.",
				})
			case errors.Is(err, services.ErrSendEmail):
				logger.Log.Errorw("verification email failed", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ResendVerificationErrorResponse{
					Message: "Error sending verification email",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ResendVerificationErrorResponse{
					Message: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Verification email resent"))
	}
}
