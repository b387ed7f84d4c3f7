package handler

//go:generate mockgen -destination=mock_identity_service.go -package=handler bidding-marketplace/services/bidding/handler IdentityServiceInterface

import (
	"context"
	"net/http"

	identity "bidding-marketplace/internal/identityService"
	model "bidding-marketplace/internal/models"
	"bidding-marketplace/services/bidding/helpers"
	"bidding-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type IdentityServiceInterface interface {
	Register(ctx context.Context, email, password, name string) (identity.Session, error)
	Login(ctx context.Context, email, password string) (identity.Session, error)
	CreateUser(ctx context.Context, email, password, name string) (model.User, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id string, caller model.User, patch model.UserPatch) (model.User, error)
	DeleteUser(ctx context.Context, id string, caller model.User) error
}

// AuthHandler serves /auth and /users
type AuthHandler struct {
	service IdentityServiceInterface
}

func NewAuthHandler(service IdentityServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

func sessionResponse(s identity.Session) helpers.AuthResponse {
	return helpers.AuthResponse{AccessToken: s.AccessToken, User: helpers.NewUserResponse(s.User)}
}

// RegisterHandler handles POST /auth/register
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	session, err := h.service.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		helpers.HandleServiceError(c, "RegisterHandler", "failed to register user", err, map[string]any{"email": req.Email})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, sessionResponse(session), "user registered successfully")
	helpers.LogSuccess("RegisterHandler", "user registered successfully", map[string]any{"user_id": session.User.ID})
}

// LoginHandler handles POST /auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		helpers.HandleServiceError(c, "LoginHandler", "login failed", err, map[string]any{"email": req.Email})
		return
	}

	utils.JSONResponse(c, http.StatusOK, sessionResponse(session), "login successful")
	helpers.LogSuccess("LoginHandler", "login successful", map[string]any{"user_id": session.User.ID})
}

// ProfileHandler handles GET /auth/profile
func (h *AuthHandler) ProfileHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "ProfileHandler")
	if !ok {
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.NewUserResponse(caller), "profile retrieved successfully")
}

// ListUsersHandler handles GET /users
func (h *AuthHandler) ListUsersHandler(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		helpers.HandleServiceError(c, "ListUsersHandler", "error retrieving users", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewUserResponses(users), "users retrieved successfully")
	helpers.LogSuccess("ListUsersHandler", "users retrieved successfully", map[string]any{"count": len(users)})
}

// CreateUserHandler handles POST /users. Unlike registration it does not sign
// the new account in.
func (h *AuthHandler) CreateUserHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateUserHandler", err)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		helpers.HandleServiceError(c, "CreateUserHandler", "failed to create user", err, map[string]any{"email": req.Email})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewUserResponse(user), "user created successfully")
	helpers.LogSuccess("CreateUserHandler", "user created successfully", map[string]any{"user_id": user.ID})
}

// GetUserHandler handles GET /users/:id
func (h *AuthHandler) GetUserHandler(c *gin.Context) {
	userID := c.Param("id")
	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		helpers.HandleServiceError(c, "GetUserHandler", "error retrieving user", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewUserResponse(user), "user retrieved successfully")
}

// UpdateUserHandler handles PATCH /users/:id
func (h *AuthHandler) UpdateUserHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "UpdateUserHandler")
	if !ok {
		return
	}

	var req helpers.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateUserHandler", err)
		return
	}

	userID := c.Param("id")
	patch := model.UserPatch{Email: req.Email, Name: req.Name, Password: req.Password}
	user, err := h.service.UpdateUser(c.Request.Context(), userID, caller, patch)
	if err != nil {
		helpers.HandleServiceError(c, "UpdateUserHandler", "failed to update user", err, map[string]any{
			"user_id":   userID,
			"caller_id": caller.ID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewUserResponse(user), "user updated successfully")
	helpers.LogSuccess("UpdateUserHandler", "user updated successfully", map[string]any{"user_id": userID})
}

// DeleteUserHandler handles DELETE /users/:id
func (h *AuthHandler) DeleteUserHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "DeleteUserHandler")
	if !ok {
		return
	}

	userID := c.Param("id")
	if err := h.service.DeleteUser(c.Request.Context(), userID, caller); err != nil {
		helpers.HandleServiceError(c, "DeleteUserHandler", "failed to delete user", err, map[string]any{
			"user_id":   userID,
			"caller_id": caller.ID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"id": userID}, "user deleted successfully")
	helpers.LogSuccess("DeleteUserHandler", "user deleted successfully", map[string]any{
		"user_id":   userID,
		"caller_id": caller.ID,
	})
}
