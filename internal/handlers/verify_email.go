package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/avdeev2017/gw-auth-service/internal/logger"
	"github.com/avdeev2017/gw-auth-service/internal/services"
)

// EmailVerifier defines the interface that the verification service must implement.
type EmailVerifier interface {
	VerifyEmail(ctx context.Context, verificationToken string) error
}

// NewVerifyEmailHandler returns an HTTP handler for the verification link.
// Responses are plain text since the link is opened in a browser.
// @Summary Verify email address
// @Description Marks the account as verified using the token from the verification email
// @Tags auth
// @Produce plain
// @Param token query string true "Verification token"
// @Success 200 {string} string "Email successfully verified!"
// @Failure 400 {string} string "Invalid or expired token"
// @Router /verify-email [get]
func NewVerifyEmailHandler(svc EmailVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")

		err := svc.VerifyEmail(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidOrExpiredToken):
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Invalid or expired token"))
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Internal server error"))
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Email successfully verified!"))
	}
}
