package events

//go:generate mockgen -destination=mock_publisher.go -package=events bidding-marketplace/internal/events Publisher

import (
	"context"
	"time"
)

// Routing keys of the domain events emitted after a committed change
const (
	CollectionCreated = "collection.created"
	CollectionUpdated = "collection.updated"
	CollectionDeleted = "collection.deleted"
	BidCreated        = "bid.created"
	BidUpdated        = "bid.updated"
	BidCancelled      = "bid.cancelled"
	BidAccepted       = "bid.accepted"
	BidRejected       = "bid.rejected"
)

// Publisher delivers domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
	Close() error
}

// Envelope is the wire shape of every event
type Envelope struct {
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func newEnvelope(key string, payload any) Envelope {
	return Envelope{Key: key, OccurredAt: time.Now().UTC(), Payload: payload}
}

// BidEvent is the payload of every bid.* event
type BidEvent struct {
	BidID        string `json:"bid_id"`
	CollectionID string `json:"collection_id"`
	UserID       string `json:"user_id"`
	Price        string `json:"price"`
	Status       string `json:"status"`
	RejectedBids int64  `json:"rejected_bids,omitempty"`
}

// CollectionEvent is the payload of every collection.* event
type CollectionEvent struct {
	CollectionID string `json:"collection_id"`
	UserID       string `json:"user_id"`
	Price        string `json:"price,omitempty"`
	Stocks       int    `json:"stocks"`
	DeletedBids  int64  `json:"deleted_bids,omitempty"`
}
