package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	bidding "bidding-marketplace/internal/biddingService"
	"bidding-marketplace/internal/biddingerrors"
	collection "bidding-marketplace/internal/collectionService"
	identity "bidding-marketplace/internal/identityService"
	"bidding-marketplace/internal/models"
	"bidding-marketplace/internal/repository"
	"bidding-marketplace/utils"

	"github.com/shopspring/decimal"
)

// DemoPassword is the password of every seeded user
const DemoPassword = "password123"

var collectionNames = []string{
	"Rare Digital Art Collection",
	"Vintage Photography Series",
	"Abstract Paintings Collection",
	"Modern Sculpture Gallery",
	"Street Art Compilation",
	"Nature Photography Bundle",
	"Portrait Photography Set",
	"Landscape Art Collection",
	"Contemporary Art Series",
	"Digital NFT Bundle",
	"Minimalist Art Collection",
	"Pop Art Gallery",
	"Watercolor Paintings Set",
	"Black & White Photography",
	"Surreal Art Collection",
	"Urban Art Series",
	"Classical Paintings Bundle",
	"Digital Illustrations Set",
	"Mixed Media Collection",
	"Experimental Art Series",
}

var descriptions = []string{
	"A curated collection of unique artworks",
	"Featuring exclusive pieces from renowned artists",
	"Limited edition collection with certificate of authenticity",
	"Handpicked selection of contemporary works",
	"Rare finds from emerging artists",
	"Premium quality digital assets",
	"Collector edition with special provenance",
	"Museum quality reproductions",
	"Signed and numbered limited series",
	"Exclusive access to private collection",
}

// Options controls the size of the demo data set
type Options struct {
	Users       int
	Collections int
	MinBids     int
	MaxBids     int
	RandSeed    uint64
}

// DefaultOptions returns the demo data set served by SEED_DEMO_DATA
func DefaultOptions() Options {
	return Options{Users: 10, Collections: len(collectionNames), MinBids: 3, MaxBids: 8, RandSeed: 42}
}

// Summary reports what a run created
type Summary struct {
	Users       int
	Collections int
	Bids        int
}

// Seeder fills a store with demo users, collections and bids through the
// regular services, so every business rule applies to seeded data too
type Seeder struct {
	repo        repository.MarketDB
	identity    *identity.IdentityService
	collections *collection.CollectionService
	bids        *bidding.BiddingService
}

func NewSeeder(repo repository.MarketDB, identitySvc *identity.IdentityService, collectionSvc *collection.CollectionService, biddingSvc *bidding.BiddingService) *Seeder {
	return &Seeder{repo: repo, identity: identitySvc, collections: collectionSvc, bids: biddingSvc}
}

// Run creates user1..userN (reusing existing accounts) and, when the store has
// no collections yet, collections with bids from non-owners. Each bidder holds
// at most one PENDING bid per collection; about a quarter of the bids are
// rejected by the owner.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var summary Summary
	rnd := rand.New(rand.NewPCG(opts.RandSeed, opts.RandSeed^0x9e3779b97f4a7c15))

	users := make([]models.User, 0, opts.Users)
	for i := 1; i <= opts.Users; i++ {
		user, created, err := s.ensureUser(ctx, i)
		if err != nil {
			return summary, err
		}
		if created {
			summary.Users++
		}
		users = append(users, user)
	}
	if len(users) < 2 {
		return summary, nil
	}

	existing, err := s.collections.List(ctx)
	if err != nil {
		return summary, fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		utils.Info("seed: collections already present, skipping", map[string]any{"collections": len(existing)})
		return summary, nil
	}

	for i := 0; i < opts.Collections; i++ {
		owner := users[rnd.IntN(len(users))]
		name := fmt.Sprintf("Collection %d", i+1)
		if i < len(collectionNames) {
			name = collectionNames[i]
		}
		c, err := s.collections.Create(ctx, owner.ID, models.Collection{
			Name:        name,
			Description: descriptions[rnd.IntN(len(descriptions))],
			Price:       decimal.NewFromInt(int64(rnd.IntN(5000) + 100)),
			Stocks:      rnd.IntN(50) + 1,
		})
		if err != nil {
			return summary, fmt.Errorf("seed: %w", err)
		}
		summary.Collections++

		placed, err := s.seedBids(ctx, rnd, c, users, opts)
		summary.Bids += placed
		if err != nil {
			return summary, err
		}
	}

	utils.Info("seed: demo data created", map[string]any{
		"users":       summary.Users,
		"collections": summary.Collections,
		"bids":        summary.Bids,
	})
	return summary, nil
}

func (s *Seeder) ensureUser(ctx context.Context, i int) (models.User, bool, error) {
	email := fmt.Sprintf("user%d@example.com", i)
	session, err := s.identity.Register(ctx, email, DemoPassword, fmt.Sprintf("User %d", i))
	if err == nil {
		return session.User, true, nil
	}
	if !errors.Is(err, biddingerrors.ErrDuplicateEmail) {
		return models.User{}, false, fmt.Errorf("seed: %w", err)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return models.User{}, false, fmt.Errorf("seed: %w", err)
	}
	return user, false, nil
}

func (s *Seeder) seedBids(ctx context.Context, rnd *rand.Rand, c models.Collection, users []models.User, opts Options) (int, error) {
	n := opts.MinBids
	if opts.MaxBids > opts.MinBids {
		n += rnd.IntN(opts.MaxBids - opts.MinBids + 1)
	}

	placed := 0
	for j := 0; j < n; j++ {
		bidder := users[rnd.IntN(len(users))]
		for bidder.ID == c.UserID {
			bidder = users[rnd.IntN(len(users))]
		}

		price := c.Price.Add(decimal.NewFromInt(int64(rnd.IntN(1000) - 500)))
		if !price.IsPositive() {
			price = c.Price.Add(decimal.NewFromInt(50))
		}

		bid, err := s.bids.PlaceBid(ctx, bidder.ID, c.ID, price)
		if errors.Is(err, biddingerrors.ErrDuplicatePendingBid) {
			continue
		}
		if err != nil {
			return placed, fmt.Errorf("seed: %w", err)
		}
		placed++

		if rnd.IntN(4) == 0 {
			if _, err := s.bids.RejectBid(ctx, c.ID, bid.ID, c.UserID); err != nil {
				return placed, fmt.Errorf("seed: %w", err)
			}
		}
	}
	return placed, nil
}
