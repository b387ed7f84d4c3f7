package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bidding-marketplace/internal/biddingerrors"
	model "bidding-marketplace/internal/models"
	"bidding-marketplace/utils"

	"github.com/shopspring/decimal"
)

// MemoryRepo is a concurrency-safe in-memory implementation of MarketDB.
// Every check-then-write runs under the write lock, which makes it a single
// atomic step for concurrent readers and writers.
type MemoryRepo struct {
	mu          sync.RWMutex
	users       map[string]model.User       // key: userID -> value: user
	emails      map[string]string           // key: email -> value: userID
	collections map[string]model.Collection // key: collectionID -> value: collection (no associations)
	order       []string                    // collection ids in insertion order
	bids        map[string][]model.Bid      // key: collectionID -> value: bids in insertion order
	bidIndex    map[string]string           // key: bidID -> value: collectionID
}

var _ MarketDB = (*MemoryRepo)(nil)

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:       make(map[string]model.User),
		emails:      make(map[string]string),
		collections: make(map[string]model.Collection),
		bids:        make(map[string][]model.Bid),
		bidIndex:    make(map[string]string),
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func sortUsers(users []model.User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
}

// CreateUser stores a new user; the email must be unused
func (r *MemoryRepo) CreateUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.emails[user.Email]; taken {
		return fmt.Errorf("create user %s: %w", user.Email, biddingerrors.ErrDuplicateEmail)
	}
	if user.ID == "" {
		user.ID = utils.GenerateID()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	ts := now()
	user.CreatedAt, user.UpdatedAt = ts, ts

	r.users[user.ID] = *user
	r.emails[user.Email] = user.ID
	return nil
}

// GetUserByID returns the user with the given id
func (r *MemoryRepo) GetUserByID(_ context.Context, id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", id, biddingerrors.ErrUserNotFound)
	}
	return u, nil
}

// GetUserByEmail returns the user registered with email
func (r *MemoryRepo) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[email]
	if !ok {
		return model.User{}, fmt.Errorf("get user by email %s: %w", email, biddingerrors.ErrUserNotFound)
	}
	return r.users[id], nil
}

// ListUsers returns every user, oldest first
func (r *MemoryRepo) ListUsers(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sortUsers(users)
	return users, nil
}

// UpdateUser replaces email, name, password hash and role of an existing user
func (r *MemoryRepo) UpdateUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[user.ID]
	if !ok {
		return fmt.Errorf("update user %s: %w", user.ID, biddingerrors.ErrUserNotFound)
	}
	if user.Email != current.Email {
		if _, taken := r.emails[user.Email]; taken {
			return fmt.Errorf("update user %s: %w", user.ID, biddingerrors.ErrDuplicateEmail)
		}
		delete(r.emails, current.Email)
		r.emails[user.Email] = user.ID
	}

	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = now()
	r.users[user.ID] = *user
	return nil
}

// DeleteUser removes a user together with everything that references it
func (r *MemoryRepo) DeleteUser(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("delete user %s: %w", id, biddingerrors.ErrUserNotFound)
	}

	// bids placed by the user on other collections
	for collectionID, bids := range r.bids {
		kept := bids[:0:0]
		for _, b := range bids {
			if b.UserID == id {
				delete(r.bidIndex, b.ID)
				continue
			}
			kept = append(kept, b)
		}
		r.bids[collectionID] = kept
	}

	// collections owned by the user, with all their bids
	for _, c := range r.collections {
		if c.UserID == id {
			r.deleteCollectionLocked(c.ID)
		}
	}

	delete(r.emails, u.Email)
	delete(r.users, id)
	return nil
}

// CreateCollection stores a new collection; the owner must exist
func (r *MemoryRepo) CreateCollection(_ context.Context, collection *model.Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[collection.UserID]; !ok {
		return fmt.Errorf("create collection for user %s: %w", collection.UserID, biddingerrors.ErrUserNotFound)
	}
	if collection.ID == "" {
		collection.ID = utils.GenerateID()
	}
	ts := now()
	collection.CreatedAt, collection.UpdatedAt = ts, ts

	stored := *collection
	stored.User = model.User{}
	stored.Bids = nil
	r.collections[stored.ID] = stored
	r.order = append(r.order, stored.ID)

	*collection = r.hydrateCollectionLocked(stored)
	return nil
}

// GetCollection returns a collection with its owner and bids
func (r *MemoryRepo) GetCollection(_ context.Context, id string) (model.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[id]
	if !ok {
		return model.Collection{}, fmt.Errorf("get collection %s: %w", id, biddingerrors.ErrCollectionNotFound)
	}
	return r.hydrateCollectionLocked(c), nil
}

// ListCollections returns every collection, most recent first
func (r *MemoryRepo) ListCollections(_ context.Context) ([]model.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Collection, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.hydrateCollectionLocked(r.collections[r.order[i]]))
	}
	return out, nil
}

// UpdateCollection replaces the mutable fields of an existing collection
func (r *MemoryRepo) UpdateCollection(_ context.Context, collection *model.Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.collections[collection.ID]
	if !ok {
		return fmt.Errorf("update collection %s: %w", collection.ID, biddingerrors.ErrCollectionNotFound)
	}
	current.Name = collection.Name
	current.Description = collection.Description
	current.Stocks = collection.Stocks
	current.Price = collection.Price
	current.UpdatedAt = now()
	r.collections[current.ID] = current

	*collection = r.hydrateCollectionLocked(current)
	return nil
}

// DeleteCollection removes the collection and all of its bids in one step
func (r *MemoryRepo) DeleteCollection(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.collections[id]; !ok {
		return 0, fmt.Errorf("delete collection %s: %w", id, biddingerrors.ErrCollectionNotFound)
	}
	return r.deleteCollectionLocked(id), nil
}

func (r *MemoryRepo) deleteCollectionLocked(id string) int64 {
	removed := int64(len(r.bids[id]))
	for _, b := range r.bids[id] {
		delete(r.bidIndex, b.ID)
	}
	delete(r.bids, id)
	delete(r.collections, id)

	for i, cid := range r.order {
		if cid == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return removed
}

// CreateBid records a new PENDING bid on a collection
func (r *MemoryRepo) CreateBid(_ context.Context, bid *model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.collections[bid.CollectionID]; !ok {
		return fmt.Errorf("create bid on collection %s: %w", bid.CollectionID, biddingerrors.ErrCollectionNotFound)
	}
	if _, ok := r.users[bid.UserID]; !ok {
		return fmt.Errorf("create bid for user %s: %w", bid.UserID, biddingerrors.ErrUserNotFound)
	}
	for _, existing := range r.bids[bid.CollectionID] {
		if existing.UserID == bid.UserID && existing.Status == model.BidStatusPending {
			return fmt.Errorf("create bid on collection %s by user %s: %w", bid.CollectionID, bid.UserID, biddingerrors.ErrDuplicatePendingBid)
		}
	}

	if bid.ID == "" {
		bid.ID = utils.GenerateID()
	}
	bid.Status = model.BidStatusPending
	ts := now()
	bid.CreatedAt, bid.UpdatedAt = ts, ts

	stored := *bid
	stored.User = model.User{}
	stored.Collection = nil
	r.bids[bid.CollectionID] = append(r.bids[bid.CollectionID], stored)
	r.bidIndex[bid.ID] = bid.CollectionID

	*bid = r.hydrateBidLocked(stored)
	return nil
}

// GetBid returns a bid with its bidder and collection
func (r *MemoryRepo) GetBid(_ context.Context, id string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.lookupBidLocked(id)
	if !ok {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", id, biddingerrors.ErrBidNotFound)
	}
	return r.hydrateBidLocked(*b), nil
}

// ListBidsByCollection returns all bids of a collection, most recent first
func (r *MemoryRepo) ListBidsByCollection(_ context.Context, collectionID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.collections[collectionID]; !ok {
		return nil, fmt.Errorf("list bids for collection %s: %w", collectionID, biddingerrors.ErrCollectionNotFound)
	}

	bids := r.bids[collectionID]
	out := make([]model.Bid, 0, len(bids))
	for i := len(bids) - 1; i >= 0; i-- {
		out = append(out, r.hydrateBidLocked(bids[i]))
	}
	return out, nil
}

// UpdateBidPrice changes the price of a PENDING bid
func (r *MemoryRepo) UpdateBidPrice(_ context.Context, id string, price decimal.Decimal) (model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.lookupBidLocked(id)
	if !ok {
		return model.Bid{}, fmt.Errorf("update bid %s: %w", id, biddingerrors.ErrBidNotFound)
	}
	if b.Status != model.BidStatusPending {
		return model.Bid{}, fmt.Errorf("update bid %s in status %s: %w", id, b.Status, biddingerrors.ErrBidNotPending)
	}
	b.Price = price
	b.UpdatedAt = now()
	return r.hydrateBidLocked(*b), nil
}

// DeleteBid removes a PENDING bid
func (r *MemoryRepo) DeleteBid(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.lookupBidLocked(id)
	if !ok {
		return fmt.Errorf("delete bid %s: %w", id, biddingerrors.ErrBidNotFound)
	}
	if b.Status != model.BidStatusPending {
		return fmt.Errorf("delete bid %s in status %s: %w", id, b.Status, biddingerrors.ErrBidNotPending)
	}

	collectionID := r.bidIndex[id]
	bids := r.bids[collectionID]
	for i := range bids {
		if bids[i].ID == id {
			r.bids[collectionID] = append(bids[:i:i], bids[i+1:]...)
			break
		}
	}
	delete(r.bidIndex, id)
	return nil
}

// AcceptBid accepts the target bid and rejects its PENDING siblings in one step
func (r *MemoryRepo) AcceptBid(_ context.Context, collectionID, bidID string) (model.Bid, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, err := r.pendingBidOfLocked(collectionID, bidID)
	if err != nil {
		return model.Bid{}, 0, fmt.Errorf("accept bid %s: %w", bidID, err)
	}

	ts := now()
	var rejected int64
	bids := r.bids[collectionID]
	for i := range bids {
		if bids[i].ID != bidID && bids[i].Status == model.BidStatusPending {
			bids[i].Status = model.BidStatusRejected
			bids[i].UpdatedAt = ts
			rejected++
		}
	}
	target.Status = model.BidStatusAccepted
	target.UpdatedAt = ts

	return r.hydrateBidLocked(*target), rejected, nil
}

// RejectBid rejects the target PENDING bid; siblings are untouched
func (r *MemoryRepo) RejectBid(_ context.Context, collectionID, bidID string) (model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, err := r.pendingBidOfLocked(collectionID, bidID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("reject bid %s: %w", bidID, err)
	}
	target.Status = model.BidStatusRejected
	target.UpdatedAt = now()

	return r.hydrateBidLocked(*target), nil
}

// pendingBidOfLocked resolves a bid that must be PENDING and belong to collectionID
func (r *MemoryRepo) pendingBidOfLocked(collectionID, bidID string) (*model.Bid, error) {
	if _, ok := r.collections[collectionID]; !ok {
		return nil, biddingerrors.ErrCollectionNotFound
	}
	b, ok := r.lookupBidLocked(bidID)
	if !ok {
		return nil, biddingerrors.ErrBidNotFound
	}
	if b.CollectionID != collectionID {
		return nil, biddingerrors.ErrBidCollectionMismatch
	}
	if b.Status != model.BidStatusPending {
		return nil, biddingerrors.ErrBidNotPending
	}
	return b, nil
}

// lookupBidLocked returns a pointer into the stored slice so callers can mutate in place
func (r *MemoryRepo) lookupBidLocked(id string) (*model.Bid, bool) {
	collectionID, ok := r.bidIndex[id]
	if !ok {
		return nil, false
	}
	bids := r.bids[collectionID]
	for i := range bids {
		if bids[i].ID == id {
			return &bids[i], true
		}
	}
	return nil, false
}

func (r *MemoryRepo) hydrateBidLocked(b model.Bid) model.Bid {
	b.User = r.users[b.UserID]
	if c, ok := r.collections[b.CollectionID]; ok {
		b.Collection = &c
	}
	return b
}

func (r *MemoryRepo) hydrateCollectionLocked(c model.Collection) model.Collection {
	c.User = r.users[c.UserID]
	bids := r.bids[c.ID]
	c.Bids = make([]model.Bid, 0, len(bids))
	for i := len(bids) - 1; i >= 0; i-- {
		b := bids[i]
		b.User = r.users[b.UserID]
		c.Bids = append(c.Bids, b)
	}
	return c
}
