package helpers

import (
	"time"

	model "bidding-marketplace/internal/models"

	"github.com/shopspring/decimal"
)

// Request DTOs
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

// Price accepts a JSON number or a decimal string
type CreateCollectionRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Stocks      *int             `json:"stocks" binding:"required,gte=0"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
}

type UpdateCollectionRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1"`
	Description *string          `json:"description"`
	Stocks      *int             `json:"stocks" binding:"omitempty,gte=0"`
	Price       *decimal.Decimal `json:"price"`
}

type CreateBidRequest struct {
	CollectionID string           `json:"collection_id" binding:"required"`
	Price        *decimal.Decimal `json:"price" binding:"required"`
}

type UpdateBidRequest struct {
	Price *decimal.Decimal `json:"price" binding:"required"`
}

// Response DTOs
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

type CollectionSummary struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type BidResponse struct {
	ID           string             `json:"id"`
	Price        decimal.Decimal    `json:"price"`
	Status       string             `json:"status"`
	CollectionID string             `json:"collection_id"`
	UserID       string             `json:"user_id"`
	CreatedAt    string             `json:"created_at"`
	UpdatedAt    string             `json:"updated_at"`
	User         *UserSummary       `json:"user,omitempty"`
	Collection   *CollectionSummary `json:"collection,omitempty"`
}

type CollectionResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Stocks      int             `json:"stocks"`
	Price       decimal.Decimal `json:"price"`
	UserID      string          `json:"user_id"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
	User        *UserSummary    `json:"user,omitempty"`
	Bids        []BidResponse   `json:"bids"`
}

type AcceptBidResponse struct {
	Bid          BidResponse `json:"bid"`
	RejectedBids int64       `json:"rejected_bids"`
}

type DeleteCollectionResponse struct {
	ID          string `json:"id"`
	DeletedBids int64  `json:"deleted_bids"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func summarizeUser(u model.User) *UserSummary {
	if u.ID == "" {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: formatTime(u.CreatedAt),
		UpdatedAt: formatTime(u.UpdatedAt),
	}
}

func NewUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

func NewBidResponse(b model.Bid) BidResponse {
	resp := BidResponse{
		ID:           b.ID,
		Price:        b.Price,
		Status:       string(b.Status),
		CollectionID: b.CollectionID,
		UserID:       b.UserID,
		CreatedAt:    formatTime(b.CreatedAt),
		UpdatedAt:    formatTime(b.UpdatedAt),
		User:         summarizeUser(b.User),
	}
	if b.Collection != nil {
		resp.Collection = &CollectionSummary{ID: b.Collection.ID, Name: b.Collection.Name, Price: b.Collection.Price}
	}
	return resp
}

func NewBidResponses(bids []model.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, NewBidResponse(b))
	}
	return out
}

func NewCollectionResponse(c model.Collection) CollectionResponse {
	return CollectionResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Stocks:      c.Stocks,
		Price:       c.Price,
		UserID:      c.UserID,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
		User:        summarizeUser(c.User),
		Bids:        NewBidResponses(c.Bids),
	}
}

func NewCollectionResponses(collections []model.Collection) []CollectionResponse {
	out := make([]CollectionResponse, 0, len(collections))
	for _, c := range collections {
		out = append(out, NewCollectionResponse(c))
	}
	return out
}
