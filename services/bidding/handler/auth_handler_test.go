package handler

import (
	"net/http"
	"testing"
	"time"

	"bidding-marketplace/internal/biddingerrors"
	identity "bidding-marketplace/internal/identityService"
	model "bidding-marketplace/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T, caller model.User) (*gin.Engine, *MockIdentityServiceInterface) {
	ctrl := gomock.NewController(t)
	mockService := NewMockIdentityServiceInterface(ctrl)
	handler := NewAuthHandler(mockService)

	router := newTestRouter(caller)
	router.POST("/auth/register", handler.RegisterHandler)
	router.POST("/auth/login", handler.LoginHandler)
	router.GET("/auth/profile", handler.ProfileHandler)
	router.POST("/users", handler.CreateUserHandler)
	router.GET("/users", handler.ListUsersHandler)
	router.GET("/users/:id", handler.GetUserHandler)
	router.PATCH("/users/:id", handler.UpdateUserHandler)
	router.DELETE("/users/:id", handler.DeleteUserHandler)
	return router, mockService
}

// Test RegisterHandler
func TestRegisterHandler(t *testing.T) {
	session := identity.Session{AccessToken: "token-abc", User: model.User{ID: "user1", Email: "jane@example.com", Name: "Jane", Role: model.RoleUser, CreatedAt: time.Now()}}

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(m *MockIdentityServiceInterface)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:        "success",
			requestBody: `{"email":"jane@example.com","password":"password123","name":"Jane"}`,
			mockSetup: func(m *MockIdentityServiceInterface) {
				m.EXPECT().Register(gomock.Any(), "jane@example.com", "password123", "Jane").Return(session, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "user registered successfully",
		},
		{
			name:        "duplicate_email",
			requestBody: `{"email":"jane@example.com","password":"password123","name":"Jane"}`,
			mockSetup: func(m *MockIdentityServiceInterface) {
				m.EXPECT().Register(gomock.Any(), "jane@example.com", "password123", "Jane").Return(identity.Session{}, biddingerrors.ErrDuplicateEmail)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "user with this email already exists",
		},
		{
			name:           "malformed_email",
			requestBody:    `{"email":"jane","password":"password123","name":"Jane"}`,
			mockSetup:      func(m *MockIdentityServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "short_password",
			requestBody:    `{"email":"jane@example.com","password":"123","name":"Jane"}`,
			mockSetup:      func(m *MockIdentityServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, mockService := newAuthRouter(t, model.User{})
			tc.mockSetup(mockService)

			w, resp := performRequest(t, router, http.MethodPost, "/auth/register", tc.requestBody)

			requireStatus(t, w, tc.expectedStatus)
			require.Contains(t, resp["message"], tc.expectedMsg)
			if tc.expectedStatus == http.StatusCreated {
				data := resp["data"].(map[string]any)
				require.Equal(t, "token-abc", data["access_token"])
				user := data["user"].(map[string]any)
				require.Equal(t, "user1", user["id"])
				require.Equal(t, "USER", user["role"])
				require.NotContains(t, user, "password_hash")
			}
		})
	}
}

// Test CreateUserHandler
func TestCreateUserHandler(t *testing.T) {
	created := model.User{ID: "user7", Email: "sam@example.com", Name: "Sam", Role: model.RoleUser, CreatedAt: time.Now()}

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func(m *MockIdentityServiceInterface)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:        "success",
			requestBody: `{"email":"sam@example.com","password":"password123","name":"Sam"}`,
			mockSetup: func(m *MockIdentityServiceInterface) {
				m.EXPECT().CreateUser(gomock.Any(), "sam@example.com", "password123", "Sam").Return(created, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "user created successfully",
		},
		{
			name:        "duplicate_email",
			requestBody: `{"email":"sam@example.com","password":"password123","name":"Sam"}`,
			mockSetup: func(m *MockIdentityServiceInterface) {
				m.EXPECT().CreateUser(gomock.Any(), "sam@example.com", "password123", "Sam").Return(model.User{}, biddingerrors.ErrDuplicateEmail)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "user with this email already exists",
		},
		{
			name:           "missing_name",
			requestBody:    `{"email":"sam@example.com","password":"password123"}`,
			mockSetup:      func(m *MockIdentityServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, mockService := newAuthRouter(t, model.User{ID: "admin", Role: model.RoleAdmin})
			tc.mockSetup(mockService)

			w, resp := performRequest(t, router, http.MethodPost, "/users", tc.requestBody)

			requireStatus(t, w, tc.expectedStatus)
			require.Contains(t, resp["message"], tc.expectedMsg)
			if tc.expectedStatus == http.StatusCreated {
				user := resp["data"].(map[string]any)
				require.Equal(t, "user7", user["id"])
				require.Equal(t, "sam@example.com", user["email"])
				require.NotContains(t, user, "access_token")
				require.NotContains(t, user, "password_hash")
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	t.Parallel()

	router, mockService := newAuthRouter(t, model.User{})
	mockService.EXPECT().Login(gomock.Any(), "jane@example.com", "password123").
		Return(identity.Session{AccessToken: "token-abc", User: model.User{ID: "user1"}}, nil)
	mockService.EXPECT().Login(gomock.Any(), "jane@example.com", "wrong-password").
		Return(identity.Session{}, biddingerrors.ErrInvalidCredentials)

	w, resp := performRequest(t, router, http.MethodPost, "/auth/login", `{"email":"jane@example.com","password":"password123"}`)
	requireStatus(t, w, http.StatusOK)
	require.Equal(t, "token-abc", resp["data"].(map[string]any)["access_token"])

	w, resp = performRequest(t, router, http.MethodPost, "/auth/login", `{"email":"jane@example.com","password":"wrong-password"}`)
	requireStatus(t, w, http.StatusUnauthorized)
	require.Equal(t, "invalid credentials", resp["message"])

	w, _ = performRequest(t, router, http.MethodPost, "/auth/login", `{"email":"jane@example.com"}`)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestProfileHandler(t *testing.T) {
	t.Parallel()

	router, _ := newAuthRouter(t, bidderUser)
	w, resp := performRequest(t, router, http.MethodGet, "/auth/profile", nil)
	requireStatus(t, w, http.StatusOK)
	require.Equal(t, "bidder1", resp["data"].(map[string]any)["id"])

	anonymous, _ := newAuthRouter(t, model.User{})
	w, _ = performRequest(t, anonymous, http.MethodGet, "/auth/profile", nil)
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestUserHandlers(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		t.Parallel()

		router, mockService := newAuthRouter(t, bidderUser)
		mockService.EXPECT().ListUsers(gomock.Any()).Return([]model.User{ownerUser, bidderUser}, nil)

		w, resp := performRequest(t, router, http.MethodGet, "/users", nil)
		requireStatus(t, w, http.StatusOK)
		require.Len(t, resp["data"].([]any), 2)
	})

	t.Run("get_missing", func(t *testing.T) {
		t.Parallel()

		router, mockService := newAuthRouter(t, bidderUser)
		mockService.EXPECT().GetUser(gomock.Any(), "ghost").Return(model.User{}, biddingerrors.ErrUserNotFound)

		w, resp := performRequest(t, router, http.MethodGet, "/users/ghost", nil)
		requireStatus(t, w, http.StatusNotFound)
		require.Equal(t, "user not found", resp["message"])
	})

	t.Run("update_self", func(t *testing.T) {
		t.Parallel()

		router, mockService := newAuthRouter(t, bidderUser)
		renamed := bidderUser
		renamed.Name = "Renamed"
		mockService.EXPECT().UpdateUser(gomock.Any(), "bidder1", bidderUser, gomock.Any()).
			DoAndReturn(func(_ any, _ string, _ model.User, patch model.UserPatch) (model.User, error) {
				require.NotNil(t, patch.Name)
				require.Equal(t, "Renamed", *patch.Name)
				require.Nil(t, patch.Email)
				return renamed, nil
			})

		w, resp := performRequest(t, router, http.MethodPatch, "/users/bidder1", `{"name":"Renamed"}`)
		requireStatus(t, w, http.StatusOK)
		require.Equal(t, "Renamed", resp["data"].(map[string]any)["name"])
	})

	t.Run("update_other_forbidden", func(t *testing.T) {
		t.Parallel()

		router, mockService := newAuthRouter(t, bidderUser)
		mockService.EXPECT().UpdateUser(gomock.Any(), "owner1", bidderUser, gomock.Any()).Return(model.User{}, biddingerrors.ErrNotUserOwner)

		w, _ := performRequest(t, router, http.MethodPatch, "/users/owner1", `{"name":"Hijack"}`)
		requireStatus(t, w, http.StatusForbidden)
	})

	t.Run("update_invalid_email", func(t *testing.T) {
		t.Parallel()

		router, _ := newAuthRouter(t, bidderUser)
		w, _ := performRequest(t, router, http.MethodPatch, "/users/bidder1", `{"email":"nope"}`)
		requireStatus(t, w, http.StatusBadRequest)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		router, mockService := newAuthRouter(t, bidderUser)
		mockService.EXPECT().DeleteUser(gomock.Any(), "bidder1", bidderUser).Return(nil)

		w, resp := performRequest(t, router, http.MethodDelete, "/users/bidder1", nil)
		requireStatus(t, w, http.StatusOK)
		require.Equal(t, "bidder1", resp["data"].(map[string]any)["id"])
	})
}
