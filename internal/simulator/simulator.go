// Package simulator drives the whole pickup lifecycle against in-memory
// adapters: registered citizens request pickups, drivers race to accept,
// collect and settle them, and citizens spend the earned points on rewards.
// All randomness and clock-driven behavior in the system lives here; the
// services themselves only ever react to commands.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jaswdr/faker"

	authmem "waste-collect/internal/auth-service/adapters/driven/memstore"
	authdto "waste-collect/internal/auth-service/core/domain/dto"
	authservices "waste-collect/internal/auth-service/core/services"
	"waste-collect/internal/identity"
	"waste-collect/internal/mylogger"
	"waste-collect/internal/pickup-service/adapters/driven/bm"
	pickupmem "waste-collect/internal/pickup-service/adapters/driven/memstore"
	pickupdto "waste-collect/internal/pickup-service/core/domain/dto"
	pickupmodel "waste-collect/internal/pickup-service/core/domain/model"
	pickupports "waste-collect/internal/pickup-service/core/ports"
	pickupservices "waste-collect/internal/pickup-service/core/services"
	rewardsmem "waste-collect/internal/rewards-service/adapters/driven/memstore"
	rewardsmodel "waste-collect/internal/rewards-service/core/domain/model"
	rewardsmyerrors "waste-collect/internal/rewards-service/core/myerrors"
	rewardsservices "waste-collect/internal/rewards-service/core/services"
)

type Config struct {
	Citizens  int
	Drivers   int
	Pickups   int
	Seed      int64
	JwtSecret string
}

type Simulator struct {
	mylog mylogger.Logger
	cfg   Config
	rng   *rand.Rand
	fake  faker.Faker

	auths   *authservices.AuthService
	pickups pickupports.IPickupService
	rewards *rewardsservices.RewardsService

	rewardItems []string
	citizens    []identity.Identity
	drivers     []identity.Identity
}

var categories = []string{"plastic", "glass", "paper", "metal", "organic"}

func New(mylog mylogger.Logger, cfg Config) *Simulator {
	rewardsStore := rewardsmem.New()
	rewardsService := rewardsservices.NewRewardsService(mylog, rewardsStore, rewardsStore, rewardsStore)

	// settlements feed the rewards ledger directly
	pickupStore := pickupmem.New(crediterFunc(rewardsService.Credit))
	pickupStore.SeedRate(pickupmodel.WasteRate{Category: "plastic", PointsPerKg: 3, CommissionRate: 0.10, Active: true})
	pickupStore.SeedRate(pickupmodel.WasteRate{Category: "glass", PointsPerKg: 2, CommissionRate: 0.05, Active: true})
	pickupStore.SeedRate(pickupmodel.WasteRate{Category: "paper", PointsPerKg: 1, CommissionRate: 0.05, Active: true})
	pickupStore.SeedRate(pickupmodel.WasteRate{Category: "metal", PointsPerKg: 5, CommissionRate: 0.12, Active: true})
	pickupStore.SeedRate(pickupmodel.WasteRate{Category: "organic", PointsPerKg: 1, CommissionRate: 0.02, Active: true})

	items := []rewardsmodel.RewardItem{
		{ID: "item-mug", Name: "Recycled Mug", CostPoints: 40, Stock: 200, Active: true},
		{ID: "item-bag", Name: "Tote Bag", CostPoints: 75, Stock: 100, Active: true},
		{ID: "item-compost", Name: "Compost Bin", CostPoints: 150, Stock: 30, Active: true},
	}
	itemIDs := make([]string, 0, len(items))
	for _, item := range items {
		rewardsStore.SeedItem(item)
		itemIDs = append(itemIDs, item.ID)
	}

	return &Simulator{
		mylog:       mylog,
		cfg:         cfg,
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		fake:        faker.NewWithSeed(rand.NewSource(cfg.Seed)),
		auths:       authservices.NewAuthService(mylog, authmem.New(), cfg.JwtSecret),
		pickups:     pickupservices.NewPickupService(mylog, pickupStore, pickupStore, bm.NewNop()),
		rewards:     rewardsService,
		rewardItems: itemIDs,
	}
}

// crediterFunc adapts a plain function to the settlement credit hook.
type crediterFunc func(ctx context.Context, userID string, amount int64, reference string) error

func (f crediterFunc) Credit(ctx context.Context, userID string, amount int64, reference string) error {
	return f(ctx, userID, amount, reference)
}

func (s *Simulator) Run(ctx context.Context) error {
	log := s.mylog.Action("simulate")

	if err := s.registerActors(ctx); err != nil {
		return err
	}
	log.Info("actors registered", "citizens", len(s.citizens), "drivers", len(s.drivers))

	var completed, cancelled, released int
	for i := 0; i < s.cfg.Pickups; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome, err := s.runPickup(ctx)
		if err != nil {
			return fmt.Errorf("pickup %d: %w", i+1, err)
		}
		switch outcome {
		case outcomeCompleted:
			completed++
		case outcomeCancelled:
			cancelled++
		case outcomeReleased:
			released++
		}
	}
	log.Info("pickups simulated", "completed", completed, "cancelled", cancelled, "driver_released", released)

	redeemed := s.spendPoints(ctx)
	log.Info("rewards redeemed", "count", redeemed)
	return nil
}

func (s *Simulator) registerActors(ctx context.Context) error {
	register := func(role string) (identity.Identity, error) {
		password := fmt.Sprintf("sim-pass-%d", s.rng.Int63())
		resp, err := s.auths.Register(ctx, authdto.RegisterRequestDto{
			Username: ptr(s.fake.Person().Name()),
			Email:    ptr(fmt.Sprintf("%s-%d@%s", role, s.rng.Int63(), "simulated.example")),
			Password: &password,
			Role:     &role,
		})
		if err != nil {
			return identity.Identity{}, fmt.Errorf("register %s: %w", role, err)
		}
		return identity.Identity{UserID: resp.UserID, Role: resp.Role}, nil
	}

	for i := 0; i < s.cfg.Citizens; i++ {
		ident, err := register(identity.RoleCitizen)
		if err != nil {
			return err
		}
		s.citizens = append(s.citizens, ident)
	}
	for i := 0; i < s.cfg.Drivers; i++ {
		ident, err := register(identity.RoleDriver)
		if err != nil {
			return err
		}
		s.drivers = append(s.drivers, ident)
	}
	return nil
}

type outcome int

const (
	outcomeCompleted outcome = iota
	outcomeCancelled
	outcomeReleased
)

// runPickup plays one pickup through its life. Roughly one in ten is
// cancelled by the requester; one in ten is dropped by its first driver and
// picked up again by another.
func (s *Simulator) runPickup(ctx context.Context) (outcome, error) {
	citizen := s.citizens[s.rng.Intn(len(s.citizens))]

	estimated := 1 + s.rng.Float64()*9
	declared := s.pickCategories()
	p, err := s.pickups.RequestPickup(ctx, citizen, pickupdto.PickupRequestDto{
		Address:           ptr(s.fake.Address().StreetAddress()),
		ScheduledAt:       ptr(time.Now().Add(time.Duration(1+s.rng.Intn(72)) * time.Hour).Format(time.RFC3339)),
		Categories:        declared,
		EstimatedWeightKg: &estimated,
	})
	if err != nil {
		return 0, err
	}

	if s.rng.Intn(10) == 0 {
		if _, err := s.pickups.CancelPickup(ctx, citizen, p.ID, "changed plans"); err != nil {
			return 0, err
		}
		return outcomeCancelled, nil
	}

	driver, err := s.raceToAccept(ctx, p.ID)
	if err != nil {
		return 0, err
	}

	result := outcomeCompleted
	if s.rng.Intn(10) == 0 {
		if _, err := s.pickups.CancelPickup(ctx, driver, p.ID, "vehicle trouble"); err != nil {
			return 0, err
		}
		result = outcomeReleased
		// the pool offers it again, somebody else takes it
		driver, err = s.raceToAccept(ctx, p.ID)
		if err != nil {
			return 0, err
		}
	}

	for _, status := range []pickupmodel.Status{pickupmodel.StatusEnRoute, pickupmodel.StatusArrived, pickupmodel.StatusCollecting} {
		if _, err := s.pickups.AdvanceStatus(ctx, driver, p.ID, status); err != nil {
			return 0, err
		}
	}

	actual := estimated * (0.7 + s.rng.Float64()*0.6)
	if _, err := s.pickups.CompletePickup(ctx, driver, p.ID, actual); err != nil {
		return 0, err
	}
	return result, nil
}

// raceToAccept lets a handful of drivers contend for the same pickup and
// returns the one the compare-and-swap let through.
func (s *Simulator) raceToAccept(ctx context.Context, pickupID string) (identity.Identity, error) {
	contenders := 2 + s.rng.Intn(3)
	picked := make([]identity.Identity, contenders)
	for i := range picked {
		picked[i] = s.drivers[s.rng.Intn(len(s.drivers))]
	}

	var (
		mu     sync.Mutex
		winner identity.Identity
		won    bool
	)
	var wg sync.WaitGroup
	for _, d := range picked {
		wg.Add(1)
		go func(d identity.Identity) {
			defer wg.Done()
			if _, err := s.pickups.AcceptPickup(ctx, d, pickupID); err == nil {
				mu.Lock()
				winner, won = d, true
				mu.Unlock()
			}
		}(d)
	}
	wg.Wait()

	if !won {
		return identity.Identity{}, fmt.Errorf("no driver accepted pickup %s", pickupID)
	}
	return winner, nil
}

// spendPoints has every citizen redeem rewards until their balance or the
// stock runs out.
func (s *Simulator) spendPoints(ctx context.Context) int {
	var redeemed int
	for _, citizen := range s.citizens {
		for {
			itemID := s.rewardItems[s.rng.Intn(len(s.rewardItems))]
			_, _, err := s.rewards.Redeem(ctx, citizen, itemID)
			if err != nil {
				if !errors.Is(err, rewardsmyerrors.ErrInsufficientBalance) && !errors.Is(err, rewardsmyerrors.ErrOutOfStock) {
					s.mylog.Error("unexpected redeem failure", err, "user_id", citizen.UserID)
				}
				break
			}
			redeemed++
		}
	}
	return redeemed
}

func (s *Simulator) pickCategories() []string {
	count := 1 + s.rng.Intn(3)
	shuffled := append([]string(nil), categories...)
	s.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:count]
}

func ptr(s string) *string { return &s }
