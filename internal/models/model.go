package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the coarse permission level of a User
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// BidStatus is the lifecycle state of a Bid
type BidStatus string

const (
	BidStatusPending  BidStatus = "PENDING"
	BidStatusAccepted BidStatus = "ACCEPTED"
	BidStatusRejected BidStatus = "REJECTED"
)

// IsTerminal reports whether no further transition can leave the status
func (s BidStatus) IsTerminal() bool {
	return s == BidStatusAccepted || s == BidStatusRejected
}

// CanTransition reports whether a bid may move from s to next.
// Only PENDING -> ACCEPTED and PENDING -> REJECTED exist.
func (s BidStatus) CanTransition(next BidStatus) bool {
	return s == BidStatusPending && next.IsTerminal()
}

// PriceScale is the number of decimal places a price column keeps
const PriceScale = 2

// MaxPrice is the exclusive upper bound of a numeric(14,2) price
var MaxPrice = decimal.New(1, 12)

// ValidPrice reports whether p is positive and fits the price column without
// rounding or overflow
func ValidPrice(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThan(MaxPrice) && p.Equal(p.Truncate(PriceScale))
}

// User represents a marketplace participant
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null;default:USER" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Collection represents a sellable lot owned by one user
type Collection struct {
	ID          string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Stocks      int             `gorm:"not null" json:"stocks"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	UserID      string          `gorm:"type:varchar(36);index;not null" json:"user_id"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	User User  `gorm:"foreignKey:UserID" json:"-"`
	Bids []Bid `gorm:"foreignKey:CollectionID" json:"-"`
}

// OwnerID returns the id of the user who owns the collection
func (c Collection) OwnerID() string {
	return c.UserID
}

// Bid represents a user's offer on a collection
type Bid struct {
	ID           string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Price        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Status       BidStatus       `gorm:"type:varchar(16);index;not null;default:PENDING" json:"status"`
	CollectionID string          `gorm:"type:varchar(36);index;not null" json:"collection_id"`
	UserID       string          `gorm:"type:varchar(36);index;not null" json:"user_id"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	User       User        `gorm:"foreignKey:UserID" json:"-"`
	Collection *Collection `gorm:"foreignKey:CollectionID" json:"-"`
}

// OwnerID returns the id of the user who placed the bid
func (b Bid) OwnerID() string {
	return b.UserID
}

// CollectionPatch carries the optional fields of a collection update.
// Nil fields are left unchanged.
type CollectionPatch struct {
	Name        *string
	Description *string
	Stocks      *int
	Price       *decimal.Decimal
}

// Apply copies the non-nil patch fields onto c
func (p CollectionPatch) Apply(c *Collection) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Stocks != nil {
		c.Stocks = *p.Stocks
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
}

// UserPatch carries the optional fields of a user update
type UserPatch struct {
	Email    *string
	Name     *string
	Password *string
}
