package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/avdeev2017/gw-auth-service/internal/services"
)

func TestResetPasswordHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	const genericMessage = "If an account with that email exists, a password reset link has been sent."

	tests := []struct {
		name            string
		reqBody         ResetPasswordRequest
		mockSetup       func(m *MockPasswordResetRequester)
		expectedCode    int
		expectedMessage string
		rawBody         bool
	}{
		{
			name:    "known email",
			reqBody: ResetPasswordRequest{Email: "john@example.com"},
			mockSetup: func(m *MockPasswordResetRequester) {
				m.EXPECT().RequestPasswordReset(gomock.Any(), "john@example.com").Return(nil)
			},
			expectedCode:    http.StatusOK,
			expectedMessage: genericMessage,
		},
		{
			// The service treats unknown emails as success, so the handler
			// response is identical either way.
			name:    "unknown email",
			reqBody: ResetPasswordRequest{Email: "nobody@example.com"},
			mockSetup: func(m *MockPasswordResetRequester) {
				m.EXPECT().RequestPasswordReset(gomock.Any(), "nobody@example.com").Return(nil)
			},
			expectedCode:    http.StatusOK,
			expectedMessage: genericMessage,
		},
		{
			name:    "mail failure",
			reqBody: ResetPasswordRequest{Email: "john@example.com"},
			mockSetup: func(m *MockPasswordResetRequester) {
				m.EXPECT().RequestPasswordReset(gomock.Any(), "john@example.com").Return(services.ErrSendEmail)
			},
			expectedCode:    http.StatusInternalServerError,
			expectedMessage: "Error sending reset password email",
		},
		{
			name:    "internal server error",
			reqBody: ResetPasswordRequest{Email: "john@example.com"},
			mockSetup: func(m *MockPasswordResetRequester) {
				m.EXPECT().RequestPasswordReset(gomock.Any(), "john@example.com").Return(errors.New("database failure"))
			},
			expectedCode:    http.StatusInternalServerError,
			expectedMessage: "Internal server error",
		},
		{
			name:            "invalid json",
			rawBody:         true,
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockPasswordResetRequester(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			handler := NewResetPasswordHandler(mockSvc)

			var req *http.Request
			if tt.rawBody {
				req = httptest.NewRequest(http.MethodPost, "/reset-password", bytes.NewBufferString("{invalid json}"))
			} else {
				bodyBytes, _ := json.Marshal(tt.reqBody)
				req = httptest.NewRequest(http.MethodPost, "/reset-password", bytes.NewBuffer(bodyBytes))
			}

			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			var resp map[string]string
			err := json.Unmarshal(rr.Body.Bytes(), &resp)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedMessage, resp["message"])
		})
	}
}
