package collection

import (
	"bidding-marketplace/internal/auth"
	"bidding-marketplace/internal/biddingerrors"
	"bidding-marketplace/internal/events"
	"bidding-marketplace/internal/models"
	"bidding-marketplace/internal/repository"
	"bidding-marketplace/utils"
	"context"
	"fmt"
	"strings"
)

// CollectionService manages collections on behalf of their owners
type CollectionService struct {
	repo   repository.MarketDB
	events events.Publisher
}

// NewCollectionService creates a new CollectionService instance
func NewCollectionService(repo repository.MarketDB, publisher events.Publisher) *CollectionService {
	return &CollectionService{
		repo:   repo,
		events: publisher,
	}
}

// Create stores a new collection owned by ownerID. Only the descriptive fields of
// data are used.
func (s *CollectionService) Create(ctx context.Context, ownerID string, data models.Collection) (models.Collection, error) {
	if ownerID == "" {
		return models.Collection{}, fmt.Errorf("service: %w - missing owner", biddingerrors.ErrInvalidCollection)
	}

	collection := models.Collection{
		Name:        strings.TrimSpace(data.Name),
		Description: data.Description,
		Stocks:      data.Stocks,
		Price:       data.Price,
		UserID:      ownerID,
	}
	if err := validateCollection(collection); err != nil {
		return models.Collection{}, err
	}

	if err := s.repo.CreateCollection(ctx, &collection); err != nil {
		return models.Collection{}, fmt.Errorf("service: failed to create collection for user %s: %w", ownerID, err)
	}

	s.publish(ctx, events.CollectionCreated, collectionEvent(collection, 0))
	return collection, nil
}

// Get returns one collection with its owner and bids
func (s *CollectionService) Get(ctx context.Context, id string) (models.Collection, error) {
	if id == "" {
		return models.Collection{}, fmt.Errorf("service: %w - empty collection ID", biddingerrors.ErrInvalidCollection)
	}

	collection, err := s.repo.GetCollection(ctx, id)
	if err != nil {
		return models.Collection{}, fmt.Errorf("service: failed to get collection %s: %w", id, err)
	}
	return collection, nil
}

// List returns every collection
func (s *CollectionService) List(ctx context.Context) ([]models.Collection, error) {
	collections, err := s.repo.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list collections: %w", err)
	}
	return collections, nil
}

// Update applies patch to a collection the caller owns
func (s *CollectionService) Update(ctx context.Context, id, callerID string, patch models.CollectionPatch) (models.Collection, error) {
	collection, err := s.repo.GetCollection(ctx, id)
	if err != nil {
		return models.Collection{}, fmt.Errorf("service: failed to get collection %s: %w", id, err)
	}
	if !auth.IsOwner(collection, callerID) {
		return models.Collection{}, fmt.Errorf("service: update collection %s by %s: %w", id, callerID, biddingerrors.ErrNotCollectionOwner)
	}

	patch.Apply(&collection)
	collection.Name = strings.TrimSpace(collection.Name)
	if err := validateCollection(collection); err != nil {
		return models.Collection{}, err
	}

	if err := s.repo.UpdateCollection(ctx, &collection); err != nil {
		return models.Collection{}, fmt.Errorf("service: failed to update collection %s: %w", id, err)
	}

	s.publish(ctx, events.CollectionUpdated, collectionEvent(collection, 0))
	return collection, nil
}

// Delete removes a collection the caller owns together with all of its bids.
// It returns the number of bids removed.
func (s *CollectionService) Delete(ctx context.Context, id, callerID string) (int64, error) {
	collection, err := s.repo.GetCollection(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("service: failed to get collection %s: %w", id, err)
	}
	if !auth.IsOwner(collection, callerID) {
		return 0, fmt.Errorf("service: delete collection %s by %s: %w", id, callerID, biddingerrors.ErrNotCollectionOwner)
	}

	deleted, err := s.repo.DeleteCollection(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("service: failed to delete collection %s: %w", id, err)
	}

	s.publish(ctx, events.CollectionDeleted, collectionEvent(collection, deleted))
	return deleted, nil
}

// publish never fails the operation: the change is already committed
func (s *CollectionService) publish(ctx context.Context, key string, payload events.CollectionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, payload); err != nil {
		utils.Warn("failed to publish event", map[string]any{
			"key":           key,
			"collection_id": payload.CollectionID,
			"error":         err.Error(),
		})
	}
}

func collectionEvent(c models.Collection, deletedBids int64) events.CollectionEvent {
	return events.CollectionEvent{
		CollectionID: c.ID,
		UserID:       c.UserID,
		Price:        c.Price.StringFixed(2),
		Stocks:       c.Stocks,
		DeletedBids:  deletedBids,
	}
}

// validateCollection checks the field rules shared by create and update
func validateCollection(c models.Collection) error {
	if c.Name == "" {
		return fmt.Errorf("service: %w - empty name", biddingerrors.ErrInvalidCollection)
	}
	if c.Stocks < 0 {
		return fmt.Errorf("service: %w - negative stocks", biddingerrors.ErrInvalidCollection)
	}
	if !models.ValidPrice(c.Price) {
		return fmt.Errorf("service: %w - price %s must be positive, below %s and have at most %d decimals",
			biddingerrors.ErrInvalidCollection, c.Price, models.MaxPrice, models.PriceScale)
	}
	return nil
}
