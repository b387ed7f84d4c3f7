package bidding

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bidding-marketplace/internal/biddingerrors"
	"bidding-marketplace/internal/events"
	model "bidding-marketplace/internal/models"
	"bidding-marketplace/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newMockedService(t *testing.T) (*BiddingService, *repository.MockMarketDB, *events.MockPublisher) {
	ctrl := gomock.NewController(t)
	mockRepo := repository.NewMockMarketDB(ctrl)
	mockPub := events.NewMockPublisher(ctrl)
	return NewBiddingService(mockRepo, mockPub), mockRepo, mockPub
}

var (
	ownedCollection = model.Collection{ID: "col1", Name: "Coins", Stocks: 2, Price: decimal.NewFromInt(100), UserID: "owner1"}
	pendingBid      = model.Bid{ID: "bid1", CollectionID: "col1", UserID: "bidder1", Price: decimal.NewFromInt(120), Status: model.BidStatusPending}
)

func withStatus(b model.Bid, status model.BidStatus) model.Bid {
	b.Status = status
	return b
}

// Tests PlaceBid
func TestBiddingService_PlaceBid(t *testing.T) {
	now := time.Now().UTC()
	collectionFound := func(m *repository.MockMarketDB, p *events.MockPublisher) {
		m.EXPECT().GetCollection(gomock.Any(), "col1").Return(ownedCollection, nil)
	}

	// Table-driven test cases
	tests := []struct {
		name          string
		collectionID  string
		bidderID      string
		price         decimal.Decimal
		mockSetup     func(m *repository.MockMarketDB, p *events.MockPublisher)
		expectError   bool
		expectedError error
	}{
		{
			name:         "valid_bid",
			collectionID: "col1",
			bidderID:     "bidder1",
			price:        decimal.RequireFromString("150.50"),
			mockSetup: func(m *repository.MockMarketDB, p *events.MockPublisher) {
				m.EXPECT().GetCollection(gomock.Any(), "col1").Return(ownedCollection, nil)
				m.EXPECT().CreateBid(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *model.Bid) error {
					b.ID = "bid9"
					b.CreatedAt = time.Now().UTC()
					return nil
				})
				p.EXPECT().Publish(gomock.Any(), events.BidCreated, events.BidEvent{
					BidID: "bid9", CollectionID: "col1", UserID: "bidder1", Price: "150.50", Status: "PENDING",
				}).Return(nil)
			},
		},
		{
			name:          "empty_collectionID",
			collectionID:  "",
			bidderID:      "bidder1",
			price:         decimal.NewFromInt(50),
			mockSetup:     func(m *repository.MockMarketDB, p *events.MockPublisher) {},
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidBid,
		},
		{
			name:          "zero_price",
			collectionID:  "col1",
			bidderID:      "bidder1",
			price:         decimal.Zero,
			mockSetup:     collectionFound,
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidBid,
		},
		{
			name:          "negative_price",
			collectionID:  "col1",
			bidderID:      "bidder1",
			price:         decimal.NewFromInt(-50),
			mockSetup:     collectionFound,
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidBid,
		},
		{
			name:          "more_than_two_decimals",
			collectionID:  "col1",
			bidderID:      "bidder1",
			price:         decimal.RequireFromString("0.001"),
			mockSetup:     collectionFound,
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidBid,
		},
		{
			name:          "price_at_column_limit",
			collectionID:  "col1",
			bidderID:      "bidder1",
			price:         decimal.New(1, 12),
			mockSetup:     collectionFound,
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidBid,
		},
		{
			name:          "price_far_above_column_limit",
			collectionID:  "col1",
			bidderID:      "bidder1",
			price:         decimal.New(1, 14),
			mockSetup:     collectionFound,
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidBid,
		},
		{
			name:         "largest_storable_price",
			collectionID: "col1",
			bidderID:     "bidder1",
			price:        decimal.RequireFromString("999999999999.99"),
			mockSetup: func(m *repository.MockMarketDB, p *events.MockPublisher) {
				m.EXPECT().GetCollection(gomock.Any(), "col1").Return(ownedCollection, nil)
				m.EXPECT().CreateBid(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *model.Bid) error {
					b.ID = "bid9"
					b.CreatedAt = time.Now().UTC()
					return nil
				})
				p.EXPECT().Publish(gomock.Any(), events.BidCreated, gomock.Any()).Return(nil)
			},
		},
		{
			name:         "zero_price_on_missing_collection",
			collectionID: "ghost",
			bidderID:     "bidder1",
			price:        decimal.Zero,
			mockSetup: func(m *repository.MockMarketDB, p *events.MockPublisher) {
				m.EXPECT().GetCollection(gomock.Any(), "ghost").Return(model.Collection{}, biddingerrors.ErrCollectionNotFound)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrCollectionNotFound,
		},
		{
			name:          "self_bid_with_zero_price",
			collectionID:  "col1",
			bidderID:      "owner1",
			price:         decimal.Zero,
			mockSetup:     collectionFound,
			expectError:   true,
			expectedError: biddingerrors.ErrSelfBid,
		},
		{
			name:         "collection_not_found",
			collectionID: "ghost",
			bidderID:     "bidder1",
			price:        decimal.NewFromInt(50),
			mockSetup: func(m *repository.MockMarketDB, p *events.MockPublisher) {
				m.EXPECT().GetCollection(gomock.Any(), "ghost").Return(model.Collection{}, biddingerrors.ErrCollectionNotFound)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrCollectionNotFound,
		},
		{
			name:         "self_bid",
			collectionID: "col1",
			bidderID:     "owner1",
			price:        decimal.NewFromInt(50),
			mockSetup: func(m *repository.MockMarketDB, p *events.MockPublisher) {
				m.EXPECT().GetCollection(gomock.Any(), "col1").Return(ownedCollection, nil)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrSelfBid,
		},
		{
			name:         "duplicate_pending",
			collectionID: "col1",
			bidderID:     "bidder1",
			price:        decimal.NewFromInt(50),
			mockSetup: func(m *repository.MockMarketDB, p *events.MockPublisher) {
				m.EXPECT().GetCollection(gomock.Any(), "col1").Return(ownedCollection, nil)
				m.EXPECT().CreateBid(gomock.Any(), gomock.Any()).Return(biddingerrors.ErrDuplicatePendingBid)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrDuplicatePendingBid,
		},
		{
			name:         "repo_fails",
			collectionID: "col1",
			bidderID:     "bidder1",
			price:        decimal.NewFromInt(50),
			mockSetup: func(m *repository.MockMarketDB, p *events.MockPublisher) {
				m.EXPECT().GetCollection(gomock.Any(), "col1").Return(ownedCollection, nil)
				m.EXPECT().CreateBid(gomock.Any(), gomock.Any()).Return(errors.New("repo write failed"))
			},
			expectError:   true,
			expectedError: nil, // Service wraps repo error, we don’t match specific error here
		},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel() // Run tests concurrently

			service, mockRepo, mockPub := newMockedService(t)
			tc.mockSetup(mockRepo, mockPub)

			bid, err := service.PlaceBid(context.Background(), tc.bidderID, tc.collectionID, tc.price)

			if tc.expectError {
				require.Error(t, err)
				if tc.expectedError != nil {
					require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				}
			} else {
				require.NoError(t, err)

				// Validate bid fields
				require.Equal(t, "bid9", bid.ID)
				require.Equal(t, tc.collectionID, bid.CollectionID)
				require.Equal(t, tc.bidderID, bid.UserID)
				require.True(t, tc.price.Equal(bid.Price))
				require.Equal(t, model.BidStatusPending, bid.Status)
				require.WithinDuration(t, now, bid.CreatedAt, 2*time.Second)
			}
		})
	}
}

// Tests UpdateBid and CancelBid share the same precondition order
func TestBiddingService_UpdateAndCancelBid(t *testing.T) {
	tests := []struct {
		name          string
		callerID      string
		price         decimal.Decimal
		stored        model.Bid
		lookupErr     error
		expectedError error
	}{
		{name: "owner_pending", callerID: "bidder1", price: decimal.NewFromInt(130), stored: pendingBid},
		{name: "not_found", callerID: "bidder1", price: decimal.NewFromInt(130), lookupErr: biddingerrors.ErrBidNotFound, expectedError: biddingerrors.ErrBidNotFound},
		{name: "not_owner", callerID: "intruder", price: decimal.NewFromInt(130), stored: pendingBid, expectedError: biddingerrors.ErrNotBidOwner},
		{name: "not_owner_and_accepted", callerID: "intruder", price: decimal.NewFromInt(130), stored: withStatus(pendingBid, model.BidStatusAccepted), expectedError: biddingerrors.ErrNotBidOwner},
		{name: "already_accepted", callerID: "bidder1", price: decimal.NewFromInt(130), stored: withStatus(pendingBid, model.BidStatusAccepted), expectedError: biddingerrors.ErrBidNotPending},
		{name: "already_rejected", callerID: "bidder1", price: decimal.NewFromInt(130), stored: withStatus(pendingBid, model.BidStatusRejected), expectedError: biddingerrors.ErrBidNotPending},
	}

	// each operation reports the decided state in its own words
	stateErrors := map[string]error{"update": biddingerrors.ErrUpdateNotPending, "cancel": biddingerrors.ErrCancelNotPending}
	stateError := func(op string, expected error) error {
		if expected == biddingerrors.ErrBidNotPending {
			return stateErrors[op]
		}
		return expected
	}

	for _, tc := range tests {
		tc := tc

		t.Run("update_"+tc.name, func(t *testing.T) {
			t.Parallel()

			service, mockRepo, mockPub := newMockedService(t)
			mockRepo.EXPECT().GetBid(gomock.Any(), "bid1").Return(tc.stored, tc.lookupErr)
			if tc.expectedError == nil {
				updated := pendingBid
				updated.Price = tc.price
				mockRepo.EXPECT().UpdateBidPrice(gomock.Any(), "bid1", tc.price).Return(updated, nil)
				mockPub.EXPECT().Publish(gomock.Any(), events.BidUpdated, gomock.Any()).Return(nil)
			}

			bid, err := service.UpdateBid(context.Background(), "bid1", tc.callerID, tc.price)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, stateError("update", tc.expectedError))
				return
			}
			require.NoError(t, err)
			require.True(t, tc.price.Equal(bid.Price))
		})

		t.Run("cancel_"+tc.name, func(t *testing.T) {
			t.Parallel()

			service, mockRepo, mockPub := newMockedService(t)
			mockRepo.EXPECT().GetBid(gomock.Any(), "bid1").Return(tc.stored, tc.lookupErr)
			if tc.expectedError == nil {
				mockRepo.EXPECT().DeleteBid(gomock.Any(), "bid1").Return(nil)
				mockPub.EXPECT().Publish(gomock.Any(), events.BidCancelled, gomock.Any()).Return(nil)
			}

			err := service.CancelBid(context.Background(), "bid1", tc.callerID)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, stateError("cancel", tc.expectedError))
				return
			}
			require.NoError(t, err)
		})
	}
}

// Price checks run after existence, ownership and state
func TestBiddingService_UpdateBid_InvalidPrice(t *testing.T) {
	tests := []struct {
		name          string
		callerID      string
		price         decimal.Decimal
		stored        model.Bid
		expectedError error
	}{
		{name: "zero_price", callerID: "bidder1", price: decimal.Zero, stored: pendingBid, expectedError: biddingerrors.ErrInvalidBid},
		{name: "more_than_two_decimals", callerID: "bidder1", price: decimal.RequireFromString("130.005"), stored: pendingBid, expectedError: biddingerrors.ErrInvalidBid},
		{name: "price_at_column_limit", callerID: "bidder1", price: decimal.New(1, 12), stored: pendingBid, expectedError: biddingerrors.ErrInvalidBid},
		{name: "not_owner_with_zero_price", callerID: "intruder", price: decimal.Zero, stored: pendingBid, expectedError: biddingerrors.ErrNotBidOwner},
		{name: "decided_with_zero_price", callerID: "bidder1", price: decimal.Zero, stored: withStatus(pendingBid, model.BidStatusAccepted), expectedError: biddingerrors.ErrUpdateNotPending},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			service, mockRepo, _ := newMockedService(t)
			mockRepo.EXPECT().GetBid(gomock.Any(), "bid1").Return(tc.stored, nil)

			_, err := service.UpdateBid(context.Background(), "bid1", tc.callerID, tc.price)
			require.ErrorIs(t, err, tc.expectedError)
		})
	}
}

// A decision committed between the checks and the write surfaces as the
// operation's own state error
func TestBiddingService_BidDecidedMeanwhile(t *testing.T) {
	t.Run("update", func(t *testing.T) {
		t.Parallel()

		service, mockRepo, _ := newMockedService(t)
		mockRepo.EXPECT().GetBid(gomock.Any(), "bid1").Return(pendingBid, nil)
		mockRepo.EXPECT().UpdateBidPrice(gomock.Any(), "bid1", gomock.Any()).
			Return(model.Bid{}, fmt.Errorf("update bid bid1: %w", biddingerrors.ErrBidNotPending))

		_, err := service.UpdateBid(context.Background(), "bid1", "bidder1", decimal.NewFromInt(130))
		require.ErrorIs(t, err, biddingerrors.ErrUpdateNotPending)
		require.Equal(t, biddingerrors.KindValidation, biddingerrors.KindOf(err))
	})

	t.Run("cancel", func(t *testing.T) {
		t.Parallel()

		service, mockRepo, _ := newMockedService(t)
		mockRepo.EXPECT().GetBid(gomock.Any(), "bid1").Return(pendingBid, nil)
		mockRepo.EXPECT().DeleteBid(gomock.Any(), "bid1").
			Return(fmt.Errorf("delete bid bid1: %w", biddingerrors.ErrBidNotPending))

		err := service.CancelBid(context.Background(), "bid1", "bidder1")
		require.ErrorIs(t, err, biddingerrors.ErrCancelNotPending)
	})
}

// Tests AcceptBid and RejectBid preconditions
func TestBiddingService_DecideBid(t *testing.T) {
	otherCollectionBid := pendingBid
	otherCollectionBid.CollectionID = "col2"

	tests := []struct {
		name          string
		callerID      string
		mockSetup     func(m *repository.MockMarketDB)
		expectedError error
	}{
		{
			name:     "collection_not_found",
			callerID: "owner1",
			mockSetup: func(m *repository.MockMarketDB) {
				m.EXPECT().GetCollection(gomock.Any(), "col1").Return(model.Collection{}, biddingerrors.ErrCollectionNotFound)
			},
			expectedError: biddingerrors.ErrCollectionNotFound,
		},
		{
			name:     "not_collection_owner",
			callerID: "bidder1",
			mockSetup: func(m *repository.MockMarketDB) {
				m.EXPECT().GetCollection(gomock.Any(), "col1").Return(ownedCollection, nil)
			},
			expectedError: biddingerrors.ErrNotCollectionOwner,
		},
		{
			name:     "bid_not_found",
			callerID: "owner1",
			mockSetup: func(m *repository.MockMarketDB) {
				m.EXPECT().GetCollection(gomock.Any(), "col1").Return(ownedCollection, nil)
				m.EXPECT().GetBid(gomock.Any(), "bid1").Return(model.Bid{}, biddingerrors.ErrBidNotFound)
			},
			expectedError: biddingerrors.ErrBidNotFound,
		},
		{
			name:     "bid_of_other_collection",
			callerID: "owner1",
			mockSetup: func(m *repository.MockMarketDB) {
				m.EXPECT().GetCollection(gomock.Any(), "col1").Return(ownedCollection, nil)
				m.EXPECT().GetBid(gomock.Any(), "bid1").Return(otherCollectionBid, nil)
			},
			expectedError: biddingerrors.ErrBidCollectionMismatch,
		},
		{
			name:     "bid_not_pending",
			callerID: "owner1",
			mockSetup: func(m *repository.MockMarketDB) {
				m.EXPECT().GetCollection(gomock.Any(), "col1").Return(ownedCollection, nil)
				m.EXPECT().GetBid(gomock.Any(), "bid1").Return(withStatus(pendingBid, model.BidStatusRejected), nil)
			},
			expectedError: biddingerrors.ErrBidNotPending,
		},
	}

	for _, tc := range tests {
		tc := tc

		t.Run("accept_"+tc.name, func(t *testing.T) {
			t.Parallel()

			service, mockRepo, _ := newMockedService(t)
			tc.mockSetup(mockRepo)

			_, rejected, err := service.AcceptBid(context.Background(), "col1", "bid1", tc.callerID)
			require.ErrorIs(t, err, tc.expectedError)
			require.Zero(t, rejected)
		})

		t.Run("reject_"+tc.name, func(t *testing.T) {
			t.Parallel()

			service, mockRepo, _ := newMockedService(t)
			tc.mockSetup(mockRepo)

			_, err := service.RejectBid(context.Background(), "col1", "bid1", tc.callerID)
			require.ErrorIs(t, err, tc.expectedError)
		})
	}
}

func TestBiddingService_AcceptBid(t *testing.T) {
	t.Parallel()

	service, mockRepo, mockPub := newMockedService(t)

	gomock.InOrder(
		mockRepo.EXPECT().GetCollection(gomock.Any(), "col1").Return(ownedCollection, nil),
		mockRepo.EXPECT().GetBid(gomock.Any(), "bid1").Return(pendingBid, nil),
		mockRepo.EXPECT().AcceptBid(gomock.Any(), "col1", "bid1").Return(withStatus(pendingBid, model.BidStatusAccepted), int64(3), nil),
		mockPub.EXPECT().Publish(gomock.Any(), events.BidAccepted, events.BidEvent{
			BidID: "bid1", CollectionID: "col1", UserID: "bidder1", Price: "120.00", Status: "ACCEPTED", RejectedBids: 3,
		}).Return(errors.New("broker down")),
	)

	bid, rejected, err := service.AcceptBid(context.Background(), "col1", "bid1", "owner1")
	require.NoError(t, err, "a failed publish must not fail a committed accept")
	require.Equal(t, model.BidStatusAccepted, bid.Status)
	require.Equal(t, int64(3), rejected)
}

func TestBiddingService_RejectBid(t *testing.T) {
	t.Parallel()

	service, mockRepo, mockPub := newMockedService(t)

	mockRepo.EXPECT().GetCollection(gomock.Any(), "col1").Return(ownedCollection, nil)
	mockRepo.EXPECT().GetBid(gomock.Any(), "bid1").Return(pendingBid, nil)
	mockRepo.EXPECT().RejectBid(gomock.Any(), "col1", "bid1").Return(withStatus(pendingBid, model.BidStatusRejected), nil)
	mockPub.EXPECT().Publish(gomock.Any(), events.BidRejected, gomock.Any()).Return(nil)

	bid, err := service.RejectBid(context.Background(), "col1", "bid1", "owner1")
	require.NoError(t, err)
	require.Equal(t, model.BidStatusRejected, bid.Status)
}

// Tests GetBidsForCollection
func TestBiddingService_GetBidsForCollection(t *testing.T) {
	now := time.Now().UTC()

	bidsExample := []model.Bid{
		{ID: "bid2", CollectionID: "col1", UserID: "user2", Price: decimal.NewFromInt(150), CreatedAt: now.Add(1 * time.Second)},
		{ID: "bid1", CollectionID: "col1", UserID: "user1", Price: decimal.NewFromInt(100), CreatedAt: now},
	}

	tests := []struct {
		name          string
		collectionID  string
		mockSetup     func(m *repository.MockMarketDB)
		expectError   bool
		expectedError error
		expectedBids  []model.Bid
	}{
		{
			name:         "collection_with_bids",
			collectionID: "col1",
			mockSetup: func(m *repository.MockMarketDB) {
				m.EXPECT().ListBidsByCollection(gomock.Any(), "col1").Return(bidsExample, nil)
			},
			expectedBids: bidsExample,
		},
		{
			name:         "collection_without_bids",
			collectionID: "col2",
			mockSetup: func(m *repository.MockMarketDB) {
				m.EXPECT().ListBidsByCollection(gomock.Any(), "col2").Return([]model.Bid{}, nil)
			},
			expectedBids: []model.Bid{},
		},
		{
			name:          "empty_collectionID",
			collectionID:  "",
			mockSetup:     func(m *repository.MockMarketDB) {},
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidBid,
		},
		{
			name:         "missing_collection",
			collectionID: "ghost",
			mockSetup: func(m *repository.MockMarketDB) {
				m.EXPECT().ListBidsByCollection(gomock.Any(), "ghost").Return(nil, biddingerrors.ErrCollectionNotFound)
			},
			expectError:   true,
			expectedError: biddingerrors.ErrCollectionNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel() // Run tests concurrently

			service, mockRepo, _ := newMockedService(t)
			tc.mockSetup(mockRepo)

			bids, err := service.GetBidsForCollection(context.Background(), tc.collectionID)

			if tc.expectError {
				require.Error(t, err)
				if tc.expectedError != nil {
					require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				}
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.expectedBids, bids)
			}
		})
	}
}
