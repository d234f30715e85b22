package handlers

import (
	"encoding/json"
	"net/http"
)

// SessionClearer expires the session cookie.
type SessionClearer interface {
	ClearCookie(w http.ResponseWriter)
}

// ValidateSessionResponse represents the response for a session check
// swagger:model ValidateSessionResponse
type ValidateSessionResponse struct {
	// Whether the request carried a valid session
	// default: true
	IsAuthenticated bool `json:"isAuthenticated"`
}

// LogoutResponse represents the response for logout
// swagger:model LogoutResponse
type LogoutResponse struct {
	// Message
	// default: Logged out successfully
	Message string `json:"message"`
}

// NewValidateSessionHandler returns an HTTP handler that reports whether
// the session credential is valid. The auth middleware has already done
// the actual check by the time this runs.
// @Summary Validate session
// @Description Reports whether the request carries a valid session token
// @Tags session
// @Produce json
// @Success 200 {object} handlers.ValidateSessionResponse "Session is valid"
// @Failure 401 {string} string "No session credential"
// @Failure 403 {string} string "Invalid session credential"
// @Security ApiKeyAuth
// @Router /validate-session [get]
func NewValidateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ValidateSessionResponse{
			IsAuthenticated: true,
		})
	}
}

// NewLogoutHandler returns an HTTP handler that expires the session
// cookie. Already-issued tokens stay valid until their expiry; there is
// no server-side revocation.
// @Summary Log out
// @Description Expires the session cookie
// @Tags session
// @Produce json
// @Success 200 {object} handlers.LogoutResponse "Logged out"
// @Router /logout [post]
func NewLogoutHandler(cookies SessionClearer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookies.ClearCookie(w)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(LogoutResponse{
			Message: "Logged out successfully",
		})
	}
}
