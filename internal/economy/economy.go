package economy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/jwebster45206/dinobot/internal/cooldown"
	"github.com/jwebster45206/dinobot/internal/storage"
	"github.com/jwebster45206/dinobot/pkg/user"
)

var (
	// ErrInsufficientFunds means the user cannot cover the amount.
	// Balances never go negative.
	ErrInsufficientFunds = errors.New("insufficient points")

	// ErrInvalidAmount means the amount was zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// CooldownError reports how long until the action may run again.
type CooldownError struct {
	Action    string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s is on cooldown for another %s", e.Action, e.Remaining.Round(time.Second))
}

// Job is one entry in the jobs table the work command draws from.
type Job struct {
	Job         string `json:"job"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	MinPoints   int    `json:"minPoints"`
	MaxPoints   int    `json:"maxPoints"`
}

// LoadJobs reads the jobs table from a JSON file.
func LoadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs file: %w", err)
	}
	var jobs []Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal jobs file: %w", err)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("jobs file is empty")
	}
	for _, j := range jobs {
		if j.MinPoints < 0 || j.MaxPoints < j.MinPoints {
			return nil, fmt.Errorf("job %q has an invalid points range [%d, %d]", j.Job, j.MinPoints, j.MaxPoints)
		}
	}
	return jobs, nil
}

const (
	workAction   = "work"
	claimAction  = "claim"
	workCooldown = time.Hour

	claimPoints   = 3000
	claimCooldown = 12 * time.Hour
)

// Service implements the points economy: earning, transfers, and the
// simple gambles.
type Service struct {
	store     storage.UserStore
	cooldowns *cooldown.Ledger
	jobs      []Job
	logger    *slog.Logger
	rng       *rand.Rand
}

// NewService creates an economy service.
func NewService(store storage.UserStore, cooldowns *cooldown.Ledger, jobs []Job, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		cooldowns: cooldowns,
		jobs:      jobs,
		logger:    logger,
		rng:       rand.New(rand.NewSource(rand.Int63())),
	}
}

// WithRand overrides the service's randomness source, for
// deterministic tests. Returns the Service for method chaining.
func (s *Service) WithRand(rng *rand.Rand) *Service {
	s.rng = rng
	return s
}

// Balance returns the user's point total. A user with no record has a
// balance of zero.
func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	rec, err := s.store.Load(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user record: %w", err)
	}
	if rec == nil {
		return 0, nil
	}
	return rec.Metadata.Points, nil
}

// Pay transfers points from one user to another. The two records are
// written sequentially with no atomicity across the pair. Returns the
// sender's new balance.
func (s *Service) Pay(ctx context.Context, fromID, toID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if fromID == toID {
		return 0, fmt.Errorf("cannot pay yourself")
	}

	from, err := s.loadOrInit(ctx, fromID)
	if err != nil {
		return 0, err
	}
	if from.Metadata.Points < amount {
		return 0, ErrInsufficientFunds
	}

	to, err := s.loadOrInit(ctx, toID)
	if err != nil {
		return 0, err
	}

	from.Metadata.Points -= amount
	to.Metadata.Points += amount

	if err := s.store.Save(ctx, fromID, from); err != nil {
		return 0, fmt.Errorf("failed to save sender record: %w", err)
	}
	if err := s.store.Save(ctx, toID, to); err != nil {
		return 0, fmt.Errorf("failed to save recipient record: %w", err)
	}

	s.logger.Info("Points transferred", "from", fromID, "to", toID, "amount", amount)
	return from.Metadata.Points, nil
}

// WorkResult describes a completed shift.
type WorkResult struct {
	Job        Job
	Earned     int
	NewBalance int
}

// Work earns points from a randomly drawn job, gated by an hourly
// cooldown.
func (s *Service) Work(ctx context.Context, userID string) (*WorkResult, error) {
	if err := s.checkCooldown(ctx, userID, workAction); err != nil {
		return nil, err
	}
	if err := s.cooldowns.SetCooldown(ctx, userID, workAction, workCooldown); err != nil {
		return nil, fmt.Errorf("failed to set work cooldown: %w", err)
	}

	job := s.jobs[s.rng.Intn(len(s.jobs))]
	earned := job.MinPoints
	if job.MaxPoints > job.MinPoints {
		earned += s.rng.Intn(job.MaxPoints - job.MinPoints + 1)
	}

	rec, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec.Metadata.Points += earned
	if err := s.store.Save(ctx, userID, rec); err != nil {
		return nil, fmt.Errorf("failed to save user record: %w", err)
	}

	return &WorkResult{Job: job, Earned: earned, NewBalance: rec.Metadata.Points}, nil
}

// Claim grants a fixed stipend every twelve hours. Role gating is the
// transport's concern.
func (s *Service) Claim(ctx context.Context, userID string) (int, error) {
	if err := s.checkCooldown(ctx, userID, claimAction); err != nil {
		return 0, err
	}
	if err := s.cooldowns.SetCooldown(ctx, userID, claimAction, claimCooldown); err != nil {
		return 0, fmt.Errorf("failed to set claim cooldown: %w", err)
	}

	rec, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return 0, err
	}
	rec.Metadata.Points += claimPoints
	if err := s.store.Save(ctx, userID, rec); err != nil {
		return 0, fmt.Errorf("failed to save user record: %w", err)
	}
	return rec.Metadata.Points, nil
}

// GambleResult describes a wager's outcome.
type GambleResult struct {
	Won        bool
	Payout     int // net change, negative on a loss
	Detail     string
	NewBalance int
}

// Coinflip wagers amount on heads or tails. A win pays even money.
func (s *Service) Coinflip(ctx context.Context, userID string, amount int, call string) (*GambleResult, error) {
	if call != "heads" && call != "tails" {
		return nil, fmt.Errorf("call must be heads or tails")
	}
	flip := "tails"
	if s.rng.Intn(2) == 0 {
		flip = "heads"
	}
	return s.settle(ctx, userID, amount, flip == call, fmt.Sprintf("The coin landed on %s.", flip))
}

// Roll wagers amount on a straight d20 roll-off against the house.
// Ties go to the player.
func (s *Service) Roll(ctx context.Context, userID string, amount int) (*GambleResult, error) {
	player := s.rng.Intn(20) + 1
	house := s.rng.Intn(20) + 1
	detail := fmt.Sprintf("You rolled %d, the house rolled %d.", player, house)
	return s.settle(ctx, userID, amount, player >= house, detail)
}

// settle validates the wager, applies the stake and payout, and
// persists the new balance.
func (s *Service) settle(ctx context.Context, userID string, amount int, won bool, detail string) (*GambleResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	rec, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec.Metadata.Points < amount {
		return nil, ErrInsufficientFunds
	}

	payout := -amount
	if won {
		payout = amount
	}
	rec.Metadata.Points += payout

	if err := s.store.Save(ctx, userID, rec); err != nil {
		return nil, fmt.Errorf("failed to save user record: %w", err)
	}
	return &GambleResult{Won: won, Payout: payout, Detail: detail, NewBalance: rec.Metadata.Points}, nil
}

func (s *Service) checkCooldown(ctx context.Context, userID, action string) error {
	onCooldown, err := s.cooldowns.IsOnCooldown(ctx, userID, action)
	if err != nil {
		return fmt.Errorf("failed to check %s cooldown: %w", action, err)
	}
	if !onCooldown {
		return nil
	}
	remaining, err := s.cooldowns.TimeRemaining(ctx, userID, action)
	if err != nil {
		return fmt.Errorf("failed to read %s cooldown: %w", action, err)
	}
	return &CooldownError{Action: action, Remaining: remaining}
}

func (s *Service) loadOrInit(ctx context.Context, userID string) (*user.Record, error) {
	rec, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user record: %w", err)
	}
	if rec == nil {
		rec = user.NewRecord()
	}
	return rec, nil
}
