package bidding

import (
	"context"
	"errors"
	"fmt"

	"bidding-marketplace/internal/auth"
	"bidding-marketplace/internal/biddingerrors"
	"bidding-marketplace/internal/events"
	"bidding-marketplace/internal/models"
	"bidding-marketplace/internal/repository"
	"bidding-marketplace/utils"

	"github.com/shopspring/decimal"
)

// BiddingService defines the business logic of bids on collections
type BiddingService struct {
	repo   repository.MarketDB
	events events.Publisher
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.MarketDB, publisher events.Publisher) *BiddingService {
	return &BiddingService{
		repo:   repo,
		events: publisher,
	}
}

// PlaceBid validates and records a PENDING bid of bidderID on a collection
func (s *BiddingService) PlaceBid(ctx context.Context, bidderID, collectionID string, price decimal.Decimal) (models.Bid, error) {
	if bidderID == "" || collectionID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing collectionID or bidderID", biddingerrors.ErrInvalidBid)
	}

	collection, err := s.repo.GetCollection(ctx, collectionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get collection %s: %w", collectionID, err)
	}
	if auth.IsOwner(collection, bidderID) {
		return models.Bid{}, fmt.Errorf("service: bid on collection %s by %s: %w", collectionID, bidderID, biddingerrors.ErrSelfBid)
	}
	if err := validatePrice(price); err != nil {
		return models.Bid{}, err
	}

	bid := models.Bid{
		Price:        price,
		Status:       models.BidStatusPending,
		CollectionID: collectionID,
		UserID:       bidderID,
	}
	if err := s.repo.CreateBid(ctx, &bid); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for collection %s by user %s: %w", collectionID, bidderID, err)
	}

	s.publish(ctx, events.BidCreated, bidEvent(bid, 0))
	return bid, nil
}

// validatePrice rejects non-positive prices and prices the price column cannot
// hold exactly (more than two decimals, or at least models.MaxPrice)
func validatePrice(price decimal.Decimal) error {
	if !models.ValidPrice(price) {
		return fmt.Errorf("service: %w - price %s must be positive, below %s and have at most %d decimals",
			biddingerrors.ErrInvalidBid, price, models.MaxPrice, models.PriceScale)
	}
	return nil
}

// GetBid returns one bid with its bidder and collection
func (s *BiddingService) GetBid(ctx context.Context, id string) (models.Bid, error) {
	if id == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty bid ID", biddingerrors.ErrInvalidBid)
	}

	bid, err := s.repo.GetBid(ctx, id)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get bid %s: %w", id, err)
	}
	return bid, nil
}

// GetBidsForCollection returns all bids of a collection, most recent first
func (s *BiddingService) GetBidsForCollection(ctx context.Context, collectionID string) ([]models.Bid, error) {
	if collectionID == "" {
		return nil, fmt.Errorf("service: %w - empty collection ID", biddingerrors.ErrInvalidBid)
	}

	bids, err := s.repo.ListBidsByCollection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for collection %s: %w", collectionID, err)
	}
	return bids, nil
}

// UpdateBid changes the price of the caller's own PENDING bid
func (s *BiddingService) UpdateBid(ctx context.Context, bidID, callerID string, price decimal.Decimal) (models.Bid, error) {
	if _, err := s.ownPendingBid(ctx, bidID, callerID, biddingerrors.ErrUpdateNotPending); err != nil {
		return models.Bid{}, err
	}
	if err := validatePrice(price); err != nil {
		return models.Bid{}, err
	}

	bid, err := s.repo.UpdateBidPrice(ctx, bidID, price)
	if errors.Is(err, biddingerrors.ErrBidNotPending) {
		return models.Bid{}, fmt.Errorf("service: bid %s decided meanwhile: %w", bidID, biddingerrors.ErrUpdateNotPending)
	}
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to update bid %s: %w", bidID, err)
	}

	s.publish(ctx, events.BidUpdated, bidEvent(bid, 0))
	return bid, nil
}

// CancelBid deletes the caller's own PENDING bid
func (s *BiddingService) CancelBid(ctx context.Context, bidID, callerID string) error {
	bid, err := s.ownPendingBid(ctx, bidID, callerID, biddingerrors.ErrCancelNotPending)
	if err != nil {
		return err
	}

	err = s.repo.DeleteBid(ctx, bidID)
	if errors.Is(err, biddingerrors.ErrBidNotPending) {
		return fmt.Errorf("service: bid %s decided meanwhile: %w", bidID, biddingerrors.ErrCancelNotPending)
	}
	if err != nil {
		return fmt.Errorf("service: failed to cancel bid %s: %w", bidID, err)
	}

	s.publish(ctx, events.BidCancelled, bidEvent(bid, 0))
	return nil
}

// ownPendingBid checks existence, then ownership, then state; a decided bid fails
// with notPending. The repository re-checks the state atomically when writing.
func (s *BiddingService) ownPendingBid(ctx context.Context, bidID, callerID string, notPending error) (models.Bid, error) {
	bid, err := s.repo.GetBid(ctx, bidID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get bid %s: %w", bidID, err)
	}
	if !auth.IsOwner(bid, callerID) {
		return models.Bid{}, fmt.Errorf("service: bid %s by %s: %w", bidID, callerID, biddingerrors.ErrNotBidOwner)
	}
	if bid.Status != models.BidStatusPending {
		return models.Bid{}, fmt.Errorf("service: bid %s in status %s: %w", bidID, bid.Status, notPending)
	}
	return bid, nil
}

// AcceptBid accepts a PENDING bid on the caller's collection. Every other PENDING
// bid of that collection is rejected in the same transaction; the number of those
// is returned alongside the accepted bid.
func (s *BiddingService) AcceptBid(ctx context.Context, collectionID, bidID, callerID string) (models.Bid, int64, error) {
	if err := s.checkDecision(ctx, collectionID, bidID, callerID); err != nil {
		return models.Bid{}, 0, err
	}

	bid, rejected, err := s.repo.AcceptBid(ctx, collectionID, bidID)
	if err != nil {
		return models.Bid{}, 0, fmt.Errorf("service: failed to accept bid %s: %w", bidID, err)
	}

	s.publish(ctx, events.BidAccepted, bidEvent(bid, rejected))
	return bid, rejected, nil
}

// RejectBid rejects a single PENDING bid on the caller's collection
func (s *BiddingService) RejectBid(ctx context.Context, collectionID, bidID, callerID string) (models.Bid, error) {
	if err := s.checkDecision(ctx, collectionID, bidID, callerID); err != nil {
		return models.Bid{}, err
	}

	bid, err := s.repo.RejectBid(ctx, collectionID, bidID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to reject bid %s: %w", bidID, err)
	}

	s.publish(ctx, events.BidRejected, bidEvent(bid, 0))
	return bid, nil
}

// checkDecision orders the accept/reject preconditions: collection exists,
// caller owns it, bid exists, bid belongs to it, bid is PENDING.
func (s *BiddingService) checkDecision(ctx context.Context, collectionID, bidID, callerID string) error {
	collection, err := s.repo.GetCollection(ctx, collectionID)
	if err != nil {
		return fmt.Errorf("service: failed to get collection %s: %w", collectionID, err)
	}
	if !auth.IsOwner(collection, callerID) {
		return fmt.Errorf("service: decide bids of collection %s by %s: %w", collectionID, callerID, biddingerrors.ErrNotCollectionOwner)
	}

	bid, err := s.repo.GetBid(ctx, bidID)
	if err != nil {
		return fmt.Errorf("service: failed to get bid %s: %w", bidID, err)
	}
	if bid.CollectionID != collectionID {
		return fmt.Errorf("service: bid %s of collection %s: %w", bidID, collectionID, biddingerrors.ErrBidCollectionMismatch)
	}
	if bid.Status != models.BidStatusPending {
		return fmt.Errorf("service: bid %s in status %s: %w", bidID, bid.Status, biddingerrors.ErrBidNotPending)
	}
	return nil
}

func (s *BiddingService) publish(ctx context.Context, key string, payload events.BidEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, payload); err != nil {
		utils.Warn("failed to publish event", map[string]any{
			"key":    key,
			"bid_id": payload.BidID,
			"error":  err.Error(),
		})
	}
}

func bidEvent(b models.Bid, rejected int64) events.BidEvent {
	return events.BidEvent{
		BidID:        b.ID,
		CollectionID: b.CollectionID,
		UserID:       b.UserID,
		Price:        b.Price.StringFixed(2),
		Status:       string(b.Status),
		RejectedBids: rejected,
	}
}
