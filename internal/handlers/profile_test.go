package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/avdeev2017/gw-auth-service/internal/middlewares"
	"github.com/avdeev2017/gw-auth-service/internal/models"
	"github.com/avdeev2017/gw-auth-service/internal/services"
)

func TestProfileHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	profile := &models.Profile{
		UserID:   userID,
		Username: "john",
		Email:    "john@example.com",
	}

	tests := []struct {
		name         string
		withUserID   bool
		mockSetup    func(m *MockProfileGetter)
		expectedCode int
		checkBody    func(t *testing.T, body []byte)
	}{
		{
			name:       "success",
			withUserID: true,
			mockSetup: func(m *MockProfileGetter) {
				m.EXPECT().GetProfile(gomock.Any(), userID).Return(profile, nil)
			},
			expectedCode: http.StatusOK,
			checkBody: func(t *testing.T, body []byte) {
				var got models.Profile
				assert.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, *profile, got)
			},
		},
		{
			name:       "user row vanished",
			withUserID: true,
			mockSetup: func(m *MockProfileGetter) {
				m.EXPECT().GetProfile(gomock.Any(), userID).Return(nil, services.ErrUserDoesNotExist)
			},
			expectedCode: http.StatusNotFound,
			checkBody: func(t *testing.T, body []byte) {
				var resp map[string]string
				assert.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "User not found", resp["message"])
			},
		},
		{
			name:         "missing context user id",
			withUserID:   false,
			mockSetup:    func(m *MockProfileGetter) {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:       "internal server error",
			withUserID: true,
			mockSetup: func(m *MockProfileGetter) {
				m.EXPECT().GetProfile(gomock.Any(), userID).Return(nil, errors.New("database failure"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockProfileGetter(ctrl)
			tt.mockSetup(mockSvc)

			handler := NewProfileHandler(mockSvc)

			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.withUserID {
				req = req.WithContext(middlewares.WithUserID(req.Context(), userID))
			}

			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.checkBody != nil {
				tt.checkBody(t, rr.Body.Bytes())
			}
		})
	}
}
