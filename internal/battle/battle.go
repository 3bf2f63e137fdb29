package battle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/dinobot/internal/storage"
	"github.com/jwebster45206/dinobot/pkg/user"
)

// ErrNoPet is returned when a participant has no hatched pet to field.
var ErrNoPet = errors.New("no pet to battle with")

// maxRounds caps a fight; if both pets are still standing, the one
// with more health remaining wins.
const maxRounds = 20

// Result records the outcome of one pet battle.
type Result struct {
	ID        uuid.UUID
	WinnerID  string
	LoserID   string
	WinnerPet string
	LoserPet  string
	Rounds    int
}

// combatant pairs a pet's d20 sheet with its remaining health.
type combatant struct {
	userID string
	pet    *user.Pet
	actor  *d20.Actor
	hp     int
}

// applyDamage reduces health, clamping at 0, and keeps the d20 sheet
// in sync.
func (c *combatant) applyDamage(n int) {
	c.hp -= n
	if c.hp < 0 {
		c.hp = 0
	}
	c.actor.SetHP(c.hp)
}

func (c *combatant) defeated() bool {
	return c.hp <= 0
}

// armorClass derives a to-hit target from a pet's defense.
func armorClass(p *user.Pet) int {
	return 10 + p.Stats.Defense/10
}

// Service resolves friendly pet battles between two users' first
// pets and records the outcome in both records.
type Service struct {
	store  storage.UserStore
	logger *slog.Logger
	rng    *rand.Rand
}

// NewService creates a battle service.
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

// Fight pits the challenger's first pet against the opponent's. Both
// users' battle participation is recorded; the winner's win count
// increments, feeding any win_battle quest stage. Returns ErrNoPet
// when either side has nothing to field.
func (s *Service) Fight(ctx context.Context, challengerID, opponentID string) (*Result, error) {
	if challengerID == opponentID {
		return nil, fmt.Errorf("a pet cannot battle its own keeper's pet")
	}

	challenger, chRec, err := s.loadCombatant(ctx, challengerID)
	if err != nil {
		return nil, err
	}
	opponent, opRec, err := s.loadCombatant(ctx, opponentID)
	if err != nil {
		return nil, err
	}

	winner, loser, rounds := s.resolve(challenger, opponent)

	chRec.BattleStats.Participated++
	opRec.BattleStats.Participated++
	if winner.userID == challengerID {
		chRec.BattleStats.Won++
	} else {
		opRec.BattleStats.Won++
	}

	// Two sequential writes with no atomicity across the pair, same
	// as every other cross-user mutation in the bot.
	if err := s.store.Save(ctx, challengerID, chRec); err != nil {
		return nil, fmt.Errorf("failed to save challenger record: %w", err)
	}
	if err := s.store.Save(ctx, opponentID, opRec); err != nil {
		return nil, fmt.Errorf("failed to save opponent record: %w", err)
	}

	res := &Result{
		ID:        uuid.New(),
		WinnerID:  winner.userID,
		LoserID:   loser.userID,
		WinnerPet: winner.pet.Name,
		LoserPet:  loser.pet.Name,
		Rounds:    rounds,
	}
	s.logger.Info("Battle resolved",
		"battle_id", res.ID,
		"winner", res.WinnerID,
		"loser", res.LoserID,
		"rounds", res.Rounds)
	return res, nil
}

// loadCombatant loads a user's record and builds a d20 sheet from
// their first pet.
func (s *Service) loadCombatant(ctx context.Context, userID string) (*combatant, *user.Record, error) {
	rec, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user record: %w", err)
	}
	if rec == nil || len(rec.Pets) == 0 {
		return nil, nil, fmt.Errorf("user %s: %w", userID, ErrNoPet)
	}

	pet := &rec.Pets[0]
	actor, err := d20.NewActor(pet.Name).
		WithHP(pet.Stats.Health).
		WithAC(armorClass(pet)).
		WithAttributes(map[string]int{
			"attack":  pet.Stats.Attack,
			"defense": pet.Stats.Defense,
			"speed":   pet.Stats.Speed,
		}).
		Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build combatant for %s: %w", userID, err)
	}

	return &combatant{
		userID: userID,
		pet:    pet,
		actor:  actor,
		hp:     pet.Stats.Health,
	}, rec, nil
}

// resolve runs attack rounds until one side drops or the round cap is
// hit. The faster pet swings first each round.
func (s *Service) resolve(a, b *combatant) (winner, loser *combatant, rounds int) {
	first, second := a, b
	if b.pet.Stats.Speed > a.pet.Stats.Speed {
		first, second = b, a
	}

	for rounds = 1; rounds <= maxRounds; rounds++ {
		s.attack(first, second)
		if second.defeated() {
			return first, second, rounds
		}
		s.attack(second, first)
		if first.defeated() {
			return second, first, rounds
		}
	}

	if a.hp >= b.hp {
		return a, b, maxRounds
	}
	return b, a, maxRounds
}

// attack rolls a d20 plus an attack bonus against the defender's
// armor class and applies damage on a hit.
func (s *Service) attack(attacker, defender *combatant) {
	roll := s.rng.Intn(20) + 1 + attacker.pet.Stats.Attack/10
	if roll < armorClass(defender.pet) {
		return
	}
	damage := s.rng.Intn(10) + 1 + attacker.pet.Stats.Attack/20
	defender.applyDamage(damage)
}
