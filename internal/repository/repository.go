package repository

//go:generate mockgen -destination=mock_repository.go -package=repository bidding-marketplace/internal/repository MarketDB

import (
	"context"

	model "bidding-marketplace/internal/models"

	"github.com/shopspring/decimal"
)

// MarketDB defines the storage interface for users, collections and bids.
//
// Reads return entities with their associations loaded: a collection carries its
// owner and its bids (each with its bidder) most recent first; a bid carries its
// bidder and its collection.
//
// Every method that checks state and then writes does so atomically, so callers
// never observe a partially applied change.
type MarketDB interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	// DeleteUser removes the user's bids, every bid on the user's collections,
	// the user's collections and finally the user.
	DeleteUser(ctx context.Context, id string) error

	CreateCollection(ctx context.Context, collection *model.Collection) error
	GetCollection(ctx context.Context, id string) (model.Collection, error)
	ListCollections(ctx context.Context) ([]model.Collection, error)
	UpdateCollection(ctx context.Context, collection *model.Collection) error
	// DeleteCollection removes every bid referencing the collection and then the
	// collection itself, returning the number of bids removed.
	DeleteCollection(ctx context.Context, id string) (int64, error)

	// CreateBid inserts a PENDING bid, failing with ErrDuplicatePendingBid when the
	// bidder already holds a PENDING bid on the same collection.
	CreateBid(ctx context.Context, bid *model.Bid) error
	GetBid(ctx context.Context, id string) (model.Bid, error)
	ListBidsByCollection(ctx context.Context, collectionID string) ([]model.Bid, error)
	// UpdateBidPrice changes the price of a bid that is still PENDING
	UpdateBidPrice(ctx context.Context, id string, price decimal.Decimal) (model.Bid, error)
	// DeleteBid removes a bid that is still PENDING
	DeleteBid(ctx context.Context, id string) error
	// AcceptBid rejects every other PENDING bid of the collection and accepts the
	// target bid in one transaction. It returns the accepted bid and the number of
	// sibling bids rejected.
	AcceptBid(ctx context.Context, collectionID, bidID string) (model.Bid, int64, error)
	// RejectBid rejects the target PENDING bid only
	RejectBid(ctx context.Context, collectionID, bidID string) (model.Bid, error)
}
