package hatchery

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/jwebster45206/dinobot/internal/storage"
	"github.com/jwebster45206/dinobot/pkg/user"
)

// Rarity tiers, from most to least likely.
const (
	RarityCommon    = "Common"
	RarityUncommon  = "Uncommon"
	RarityRare      = "Rare"
	RarityEpic      = "Epic"
	RarityLegendary = "Legendary"
)

// rarityWeights is the hatch table. Order matters: the draw walks the
// cumulative thresholds top to bottom.
var rarityWeights = []struct {
	Rarity string
	Weight int
}{
	{RarityCommon, 50},
	{RarityUncommon, 30},
	{RarityRare, 15},
	{RarityEpic, 4},
	{RarityLegendary, 1},
}

var speciesByRarity = map[string][]string{
	RarityCommon:    {"Utah Raptor", "Ceratosaurus", "Dilophosaurus", "Dryosaurus", "Gallimimus", "Pachycephalosaurus"},
	RarityUncommon:  {"Carnotaurus", "Suchomimus", "Allosaurus", "Parasaurolophus", "Maiasaura", "Diabloceratops"},
	RarityRare:      {"Giganotosaurus", "Tyrannosaurus", "Triceratops"},
	RarityEpic:      {"Albertosaurus", "Acrocanthosaurus", "Ankylosaurus", "Stegosaurus", "Therizinosaurus"},
	RarityLegendary: {"Spinosaurus", "Shantungosaurus", "Camarasaurus", "Puertasaurus"},
}

// Every hatchling starts with the same sheet.
var baseStats = user.Stats{
	Health:  100,
	Attack:  50,
	Defense: 40,
	Speed:   30,
}

// Service turns unhatched eggs into pets.
type Service struct {
	store  storage.UserStore
	logger *slog.Logger
	rng    *rand.Rand
}

// NewService creates an egg hatching service.
func NewService(store storage.UserStore, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		rng:    rand.New(rand.NewSource(rand.Int63())),
	}
}

// WithRand overrides the service's randomness source, for
// deterministic tests. Returns the Service for method chaining.
func (s *Service) WithRand(rng *rand.Rand) *Service {
	s.rng = rng
	return s
}

// Hatch marks the user's oldest unhatched egg as hatched, draws a
// species and rarity from the hatch table, and appends the resulting
// pet to the record. Returns (nil, nil) when the user has no record
// or no unhatched egg.
func (s *Service) Hatch(ctx context.Context, userID string) (*user.Pet, error) {
	rec, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user record: %w", err)
	}
	if rec == nil {
		return nil, nil
	}

	egg := rec.OldestUnhatchedEgg()
	if egg == nil {
		return nil, nil
	}
	egg.Hatched = true

	species, rarity := s.drawSpecies()
	pet := user.Pet{
		Name:        species,
		Rarity:      rarity,
		Level:       1,
		XP:          0,
		GrowthStage: "Hatchling",
		Stats:       baseStats,
	}
	rec.Pets = append(rec.Pets, pet)

	if err := s.store.Save(ctx, userID, rec); err != nil {
		return nil, fmt.Errorf("failed to save user record: %w", err)
	}

	s.logger.Info("Egg hatched",
		"user_id", userID,
		"egg_id", egg.ID,
		"species", species,
		"rarity", rarity)
	return &pet, nil
}

// Pets returns the user's hatched dinos in hatch order.
func (s *Service) Pets(ctx context.Context, userID string) ([]user.Pet, error) {
	rec, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user record: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	return rec.Pets, nil
}

// EggCounts returns the user's total and unhatched egg counts.
func (s *Service) EggCounts(ctx context.Context, userID string) (total, unhatched int, err error) {
	rec, err := s.store.Load(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load user record: %w", err)
	}
	if rec == nil {
		return 0, 0, nil
	}
	for _, egg := range rec.Eggs {
		if !egg.Hatched {
			unhatched++
		}
	}
	return len(rec.Eggs), unhatched, nil
}

// drawSpecies picks a rarity by weight, then a species uniformly
// within that rarity.
func (s *Service) drawSpecies() (species, rarity string) {
	rarity = drawRarity(s.rng.Float64())
	pool := speciesByRarity[rarity]
	return pool[s.rng.Intn(len(pool))], rarity
}

// drawRarity maps a uniform value in [0, 1) onto the hatch table via
// cumulative thresholds.
func drawRarity(u float64) string {
	total := 0
	for _, rw := range rarityWeights {
		total += rw.Weight
	}

	roll := u * float64(total)
	cumulative := 0.0
	for _, rw := range rarityWeights {
		cumulative += float64(rw.Weight)
		if roll < cumulative {
			return rw.Rarity
		}
	}
	return rarityWeights[0].Rarity
}
