package repository

import (
	"context"
	"errors"
	"fmt"

	"bidding-marketplace/internal/biddingerrors"
	model "bidding-marketplace/internal/models"
	"bidding-marketplace/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRepo is the relational implementation of MarketDB.
// Multi-row changes run inside db.Transaction; on Postgres the rows a decision
// depends on are locked FOR UPDATE so concurrent callers serialize per collection.
type GormRepo struct {
	db *gorm.DB
}

var _ MarketDB = (*GormRepo)(nil)

// NewGormRepo wraps an open gorm connection
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// Migrate creates or updates the schema
func (r *GormRepo) Migrate() error {
	return r.db.AutoMigrate(&model.User{}, &model.Collection{}, &model.Bid{})
}

// forUpdate adds a row lock on dialects that support one
func (r *GormRepo) forUpdate(tx *gorm.DB) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func preloadBid(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Collection")
}

func preloadCollection(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Bids", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at DESC, id DESC").Preload("User")
	})
}

// CreateUser stores a new user; the email must be unused
func (r *GormRepo) CreateUser(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&model.User{}).Where("email = ?", user.Email).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return biddingerrors.ErrDuplicateEmail
		}
		if user.ID == "" {
			user.ID = utils.GenerateID()
		}
		if user.Role == "" {
			user.Role = model.RoleUser
		}
		return tx.Create(user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = biddingerrors.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return nil
}

// GetUserByID returns the user with the given id
func (r *GormRepo) GetUserByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return model.User{}, fmt.Errorf("get user %s: %w", id, notFound(err, biddingerrors.ErrUserNotFound))
	}
	return u, nil
}

// GetUserByEmail returns the user registered with email
func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return model.User{}, fmt.Errorf("get user by email %s: %w", email, notFound(err, biddingerrors.ErrUserNotFound))
	}
	return u, nil
}

// ListUsers returns every user, oldest first
func (r *GormRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUser replaces email, name, password hash and role of an existing user
func (r *GormRepo) UpdateUser(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&model.User{}).Where("email = ? AND id <> ?", user.Email, user.ID).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return biddingerrors.ErrDuplicateEmail
		}

		res := tx.Model(&model.User{ID: user.ID}).Updates(map[string]any{
			"email":         user.Email,
			"name":          user.Name,
			"password_hash": user.PasswordHash,
			"role":          user.Role,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return biddingerrors.ErrUserNotFound
		}
		return tx.First(user, "id = ?", user.ID).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = biddingerrors.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("update user %s: %w", user.ID, err)
	}
	return nil
}

// DeleteUser removes a user together with everything that references it
func (r *GormRepo) DeleteUser(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u model.User
		if err := r.forUpdate(tx).First(&u, "id = ?", id).Error; err != nil {
			return notFound(err, biddingerrors.ErrUserNotFound)
		}

		owned := tx.Model(&model.Collection{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("collection_id IN (?)", owned).Delete(&model.Bid{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Bid{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Collection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

// CreateCollection stores a new collection; the owner must exist
func (r *GormRepo) CreateCollection(ctx context.Context, collection *model.Collection) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner model.User
		if err := tx.First(&owner, "id = ?", collection.UserID).Error; err != nil {
			return notFound(err, biddingerrors.ErrUserNotFound)
		}
		if collection.ID == "" {
			collection.ID = utils.GenerateID()
		}
		return tx.Omit(clause.Associations).Create(collection).Error
	})
	if err != nil {
		return fmt.Errorf("create collection for user %s: %w", collection.UserID, err)
	}

	loaded, err := r.GetCollection(ctx, collection.ID)
	if err != nil {
		return err
	}
	*collection = loaded
	return nil
}

// GetCollection returns a collection with its owner and bids
func (r *GormRepo) GetCollection(ctx context.Context, id string) (model.Collection, error) {
	var c model.Collection
	if err := preloadCollection(r.db.WithContext(ctx)).First(&c, "id = ?", id).Error; err != nil {
		return model.Collection{}, fmt.Errorf("get collection %s: %w", id, notFound(err, biddingerrors.ErrCollectionNotFound))
	}
	return c, nil
}

// ListCollections returns every collection, most recent first
func (r *GormRepo) ListCollections(ctx context.Context) ([]model.Collection, error) {
	var collections []model.Collection
	if err := preloadCollection(r.db.WithContext(ctx)).Order("created_at DESC, id DESC").Find(&collections).Error; err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return collections, nil
}

// UpdateCollection replaces the mutable fields of an existing collection
func (r *GormRepo) UpdateCollection(ctx context.Context, collection *model.Collection) error {
	res := r.db.WithContext(ctx).Model(&model.Collection{ID: collection.ID}).Updates(map[string]any{
		"name":        collection.Name,
		"description": collection.Description,
		"stocks":      collection.Stocks,
		"price":       collection.Price,
	})
	if res.Error != nil {
		return fmt.Errorf("update collection %s: %w", collection.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update collection %s: %w", collection.ID, biddingerrors.ErrCollectionNotFound)
	}

	loaded, err := r.GetCollection(ctx, collection.ID)
	if err != nil {
		return err
	}
	*collection = loaded
	return nil
}

// DeleteCollection removes the collection and all of its bids in one transaction
func (r *GormRepo) DeleteCollection(ctx context.Context, id string) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Collection
		if err := r.forUpdate(tx).First(&c, "id = ?", id).Error; err != nil {
			return notFound(err, biddingerrors.ErrCollectionNotFound)
		}

		res := tx.Where("collection_id = ?", id).Delete(&model.Bid{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected

		return tx.Delete(&model.Collection{}, "id = ?", id).Error
	})
	if err != nil {
		return 0, fmt.Errorf("delete collection %s: %w", id, err)
	}
	return removed, nil
}

// CreateBid records a new PENDING bid on a collection
func (r *GormRepo) CreateBid(ctx context.Context, bid *model.Bid) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the collection row lock serializes concurrent bids by the same user
		var c model.Collection
		if err := r.forUpdate(tx).First(&c, "id = ?", bid.CollectionID).Error; err != nil {
			return notFound(err, biddingerrors.ErrCollectionNotFound)
		}

		var bidder model.User
		if err := tx.Select("id").First(&bidder, "id = ?", bid.UserID).Error; err != nil {
			return notFound(err, biddingerrors.ErrUserNotFound)
		}

		var pending int64
		if err := tx.Model(&model.Bid{}).
			Where("collection_id = ? AND user_id = ? AND status = ?", bid.CollectionID, bid.UserID, model.BidStatusPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return biddingerrors.ErrDuplicatePendingBid
		}

		if bid.ID == "" {
			bid.ID = utils.GenerateID()
		}
		bid.Status = model.BidStatusPending
		return tx.Omit(clause.Associations).Create(bid).Error
	})
	if err != nil {
		return fmt.Errorf("create bid on collection %s by user %s: %w", bid.CollectionID, bid.UserID, err)
	}

	loaded, err := r.GetBid(ctx, bid.ID)
	if err != nil {
		return err
	}
	*bid = loaded
	return nil
}

// GetBid returns a bid with its bidder and collection
func (r *GormRepo) GetBid(ctx context.Context, id string) (model.Bid, error) {
	var b model.Bid
	if err := preloadBid(r.db.WithContext(ctx)).First(&b, "id = ?", id).Error; err != nil {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", id, notFound(err, biddingerrors.ErrBidNotFound))
	}
	return b, nil
}

// ListBidsByCollection returns all bids of a collection, most recent first
func (r *GormRepo) ListBidsByCollection(ctx context.Context, collectionID string) ([]model.Bid, error) {
	db := r.db.WithContext(ctx)

	var exists int64
	if err := db.Model(&model.Collection{}).Where("id = ?", collectionID).Count(&exists).Error; err != nil {
		return nil, fmt.Errorf("list bids for collection %s: %w", collectionID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("list bids for collection %s: %w", collectionID, biddingerrors.ErrCollectionNotFound)
	}

	var bids []model.Bid
	if err := preloadBid(db).Where("collection_id = ?", collectionID).Order("created_at DESC, id DESC").Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("list bids for collection %s: %w", collectionID, err)
	}
	return bids, nil
}

// UpdateBidPrice changes the price of a PENDING bid with a conditional update
func (r *GormRepo) UpdateBidPrice(ctx context.Context, id string, price decimal.Decimal) (model.Bid, error) {
	res := r.db.WithContext(ctx).Model(&model.Bid{}).
		Where("id = ? AND status = ?", id, model.BidStatusPending).
		Updates(map[string]any{"price": price})
	if res.Error != nil {
		return model.Bid{}, fmt.Errorf("update bid %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return model.Bid{}, fmt.Errorf("update bid %s: %w", id, r.explainMiss(ctx, id))
	}
	return r.GetBid(ctx, id)
}

// DeleteBid removes a PENDING bid with a conditional delete
func (r *GormRepo) DeleteBid(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, model.BidStatusPending).
		Delete(&model.Bid{})
	if res.Error != nil {
		return fmt.Errorf("delete bid %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete bid %s: %w", id, r.explainMiss(ctx, id))
	}
	return nil
}

// explainMiss tells apart a missing bid from one that has left PENDING
func (r *GormRepo) explainMiss(ctx context.Context, id string) error {
	var b model.Bid
	if err := r.db.WithContext(ctx).Select("id", "status").First(&b, "id = ?", id).Error; err != nil {
		return notFound(err, biddingerrors.ErrBidNotFound)
	}
	return biddingerrors.ErrBidNotPending
}

// AcceptBid accepts the target bid and rejects its PENDING siblings in one transaction
func (r *GormRepo) AcceptBid(ctx context.Context, collectionID, bidID string) (model.Bid, int64, error) {
	var rejected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.lockPendingBid(tx, collectionID, bidID); err != nil {
			return err
		}

		res := tx.Model(&model.Bid{}).
			Where("collection_id = ? AND status = ? AND id <> ?", collectionID, model.BidStatusPending, bidID).
			Update("status", model.BidStatusRejected)
		if res.Error != nil {
			return res.Error
		}
		rejected = res.RowsAffected

		return tx.Model(&model.Bid{ID: bidID}).Update("status", model.BidStatusAccepted).Error
	})
	if err != nil {
		return model.Bid{}, 0, fmt.Errorf("accept bid %s: %w", bidID, err)
	}

	accepted, err := r.GetBid(ctx, bidID)
	if err != nil {
		return model.Bid{}, 0, err
	}
	return accepted, rejected, nil
}

// RejectBid rejects the target PENDING bid; siblings are untouched
func (r *GormRepo) RejectBid(ctx context.Context, collectionID, bidID string) (model.Bid, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.lockPendingBid(tx, collectionID, bidID); err != nil {
			return err
		}
		return tx.Model(&model.Bid{ID: bidID}).Update("status", model.BidStatusRejected).Error
	})
	if err != nil {
		return model.Bid{}, fmt.Errorf("reject bid %s: %w", bidID, err)
	}
	return r.GetBid(ctx, bidID)
}

// lockPendingBid locks the collection and the bid, then checks that the bid is
// PENDING and belongs to the collection
func (r *GormRepo) lockPendingBid(tx *gorm.DB, collectionID, bidID string) (model.Bid, error) {
	var c model.Collection
	if err := r.forUpdate(tx).First(&c, "id = ?", collectionID).Error; err != nil {
		return model.Bid{}, notFound(err, biddingerrors.ErrCollectionNotFound)
	}
	var b model.Bid
	if err := r.forUpdate(tx).First(&b, "id = ?", bidID).Error; err != nil {
		return model.Bid{}, notFound(err, biddingerrors.ErrBidNotFound)
	}
	if b.CollectionID != collectionID {
		return model.Bid{}, biddingerrors.ErrBidCollectionMismatch
	}
	if b.Status != model.BidStatusPending {
		return model.Bid{}, biddingerrors.ErrBidNotPending
	}
	return b, nil
}
