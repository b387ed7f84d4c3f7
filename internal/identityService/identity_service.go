package identity

import (
	"bidding-marketplace/internal/auth"
	"bidding-marketplace/internal/biddingerrors"
	"bidding-marketplace/internal/models"
	"bidding-marketplace/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
)

const minPasswordLength = 6

// Session is what a successful register or login hands back to the client
type Session struct {
	AccessToken string
	User        models.User
}

// IdentityService registers users, issues bearer tokens and resolves callers from them
type IdentityService struct {
	repo       repository.MarketDB
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewIdentityService creates a new IdentityService instance
func NewIdentityService(repo repository.MarketDB, tokens *auth.TokenManager, bcryptCost int) *IdentityService {
	return &IdentityService{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a new USER account without signing it in
func (s *IdentityService) CreateUser(ctx context.Context, email, password, name string) (models.User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := validateUser(email, name, password); err != nil {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("service: create user %s: %w", email, err)
	}

	user := models.User{Email: email, Name: name, PasswordHash: hash, Role: models.RoleUser}
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("service: failed to create user %s: %w", email, err)
	}
	return user, nil
}

// Register creates a USER account and signs it in
func (s *IdentityService) Register(ctx context.Context, email, password, name string) (Session, error) {
	user, err := s.CreateUser(ctx, email, password, name)
	if err != nil {
		return Session{}, err
	}
	return s.session(user)
}

// Login checks credentials. Unknown email and wrong password are indistinguishable.
func (s *IdentityService) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, biddingerrors.ErrUserNotFound) {
			return Session{}, fmt.Errorf("service: login %s: %w", email, biddingerrors.ErrInvalidCredentials)
		}
		return Session{}, fmt.Errorf("service: failed to load user %s: %w", email, err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return Session{}, fmt.Errorf("service: login %s: %w", email, biddingerrors.ErrInvalidCredentials)
	}

	return s.session(user)
}

func (s *IdentityService) session(user models.User) (Session, error) {
	token, err := s.tokens.CreateAccessToken(user.ID, string(user.Role), user.Email, user.Name)
	if err != nil {
		return Session{}, fmt.Errorf("service: issue token for %s: %w", user.ID, err)
	}
	return Session{AccessToken: token, User: user}, nil
}

// ResolveCaller turns a bearer token into the user it was issued to.
// Tokens of deleted users are rejected.
func (s *IdentityService) ResolveCaller(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, biddingerrors.ErrInvalidToken
	}
	claims, err := s.tokens.ParseValidate(token)
	if err != nil {
		return models.User{}, fmt.Errorf("service: %w - %v", biddingerrors.ErrInvalidToken, err)
	}

	user, err := s.repo.GetUserByID(ctx, claims.Sub)
	if err != nil {
		if errors.Is(err, biddingerrors.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("service: %w - subject %s no longer exists", biddingerrors.ErrInvalidToken, claims.Sub)
		}
		return models.User{}, fmt.Errorf("service: failed to resolve caller %s: %w", claims.Sub, err)
	}
	return user, nil
}

// GetUser returns one user
func (s *IdentityService) GetUser(ctx context.Context, id string) (models.User, error) {
	if id == "" {
		return models.User{}, fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrInvalidUser)
	}
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to get user %s: %w", id, err)
	}
	return user, nil
}

// ListUsers returns every user
func (s *IdentityService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser changes email, name or password of a user. Only the user themself
// or an ADMIN may do so.
func (s *IdentityService) UpdateUser(ctx context.Context, id string, caller models.User, patch models.UserPatch) (models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to get user %s: %w", id, err)
	}
	if !mayManage(caller, user) {
		return models.User{}, fmt.Errorf("service: update user %s by %s: %w", id, caller.ID, biddingerrors.ErrNotUserOwner)
	}

	if patch.Email != nil {
		user.Email = normalizeEmail(*patch.Email)
	}
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	password := ""
	if patch.Password != nil {
		password = *patch.Password
	}
	if err := validateUserFields(user.Email, user.Name); err != nil {
		return models.User{}, err
	}
	if patch.Password != nil {
		if len(password) < minPasswordLength {
			return models.User{}, fmt.Errorf("service: %w - password shorter than %d characters", biddingerrors.ErrInvalidUser, minPasswordLength)
		}
		hash, err := auth.HashPassword(password, s.bcryptCost)
		if err != nil {
			return models.User{}, fmt.Errorf("service: update user %s: %w", id, err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.UpdateUser(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("service: failed to update user %s: %w", id, err)
	}
	return user, nil
}

// DeleteUser removes a user with their collections and bids
func (s *IdentityService) DeleteUser(ctx context.Context, id string, caller models.User) error {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service: failed to get user %s: %w", id, err)
	}
	if !mayManage(caller, user) {
		return fmt.Errorf("service: delete user %s by %s: %w", id, caller.ID, biddingerrors.ErrNotUserOwner)
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete user %s: %w", id, err)
	}
	return nil
}

func mayManage(caller, target models.User) bool {
	return caller.Role == models.RoleAdmin || (caller.ID != "" && caller.ID == target.ID)
}

func validateUser(email, name, password string) error {
	if err := validateUserFields(email, name); err != nil {
		return err
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("service: %w - password shorter than %d characters", biddingerrors.ErrInvalidUser, minPasswordLength)
	}
	return nil
}

func validateUserFields(email, name string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("service: %w - malformed email", biddingerrors.ErrInvalidUser)
	}
	if name == "" {
		return fmt.Errorf("service: %w - empty name", biddingerrors.ErrInvalidUser)
	}
	return nil
}
