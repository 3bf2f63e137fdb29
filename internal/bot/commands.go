package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jwebster45206/dinobot/internal/battle"
	"github.com/jwebster45206/dinobot/internal/cooldown"
	"github.com/jwebster45206/dinobot/internal/economy"
	"github.com/jwebster45206/dinobot/internal/hatchery"
	"github.com/jwebster45206/dinobot/internal/progression"
	"github.com/jwebster45206/dinobot/pkg/quest"
)

// Commands binds the domain services to chat command handlers.
type Commands struct {
	catalog   *quest.Catalog
	engine    *progression.Engine
	hatchery  *hatchery.Service
	economy   *economy.Service
	battles   *battle.Service
	cooldowns *cooldown.Ledger
	printer   *message.Printer
}

// NewCommands creates the command set.
func NewCommands(
	catalog *quest.Catalog,
	engine *progression.Engine,
	hatcherySvc *hatchery.Service,
	economySvc *economy.Service,
	battleSvc *battle.Service,
	cooldowns *cooldown.Ledger,
) *Commands {
	return &Commands{
		catalog:   catalog,
		engine:    engine,
		hatchery:  hatcherySvc,
		economy:   economySvc,
		battles:   battleSvc,
		cooldowns: cooldowns,
		printer:   message.NewPrinter(language.English),
	}
}

// RegisterAll wires every command into the dispatcher.
func (c *Commands) RegisterAll(d *Dispatcher) {
	d.Register(
		&Command{Name: "startquest", Description: "Start a quest", Handler: c.startQuest},
		&Command{Name: "questprogress", Description: "Check your current quest progress", Handler: c.questProgress},
		&Command{Name: "hatch", Description: "Hatch an egg into a dino", Handler: c.hatch},
		&Command{Name: "mypets", Description: "List your hatched dinos", Handler: c.myPets},
		&Command{Name: "eggs", Description: "Check your egg collection", Handler: c.eggs},
		&Command{Name: "points", Description: "Check your point balance", Handler: c.points},
		&Command{Name: "pay", Description: "Send points to another user", Usage: "pay <@user> <amount>", Handler: c.pay},
		&Command{Name: "work", Description: "Work to earn points", Handler: c.work},
		&Command{Name: "claim", Description: "Claim your points stipend", Handler: c.claim},
		&Command{Name: "coinflip", Description: "Wager points on a coin flip", Usage: "coinflip <amount> <heads|tails>", Handler: c.coinflip},
		&Command{Name: "roll", Description: "Wager points on a d20 roll-off", Usage: "roll <amount>", Handler: c.roll},
		&Command{Name: "battle", Description: "Battle your first pet against another user's", Usage: "battle <@user>", Handler: c.battle},
		&Command{Name: "resetcooldowns", Description: "Clear a user's cooldowns", Usage: "resetcooldowns <@user>", AdminOnly: true, Handler: c.resetCooldowns},
	)
	d.Register(&Command{Name: "help", Description: "List available commands", Handler: func(ctx context.Context, req *Request) (*Reply, error) {
		var b strings.Builder
		for _, cmd := range d.Commands() {
			if cmd.AdminOnly && !d.IsAdmin(req.UserID) {
				continue
			}
			fmt.Fprintf(&b, "**%s%s** — %s\n", d.prefix, cmd.Name, cmd.Description)
		}
		return &Reply{Title: "Commands", Description: b.String(), Color: ColorSuccess}, nil
	}})
}

func (c *Commands) startQuest(ctx context.Context, req *Request) (*Reply, error) {
	def := c.catalog.Default()

	aq, err := c.engine.StartQuest(ctx, req.UserID, def)
	if errors.Is(err, progression.ErrQuestAlreadyStarted) {
		return &Reply{
			Title:       "Quest Already Started",
			Description: fmt.Sprintf("You have already started the quest: **%s**.", def.Name),
			Color:       ColorError,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &Reply{
		Title:       "Quest Started!",
		Description: fmt.Sprintf("You have started the quest: **%s**! %s", aq.Name, aq.Stages[0].Description),
		Color:       ColorSuccess,
	}, nil
}

func (c *Commands) questProgress(ctx context.Context, req *Request) (*Reply, error) {
	p, err := c.engine.QuestProgress(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &Reply{
			Title:       "No Active Quest",
			Description: "You are not currently on any quest.",
			Color:       ColorError,
		}, nil
	}

	progressLine := ""
	switch {
	case p.Percent >= 100:
		progressLine = "\n\nYou have completed this stage!"
	case p.Percent >= 0:
		progressLine = fmt.Sprintf("\n\nYou are %.2f%% complete with this stage.", p.Percent)
	}

	return &Reply{
		Title: "Quest Progress",
		Description: fmt.Sprintf("You are on quest **%s**. Current stage: **%d** of %d - %s%s",
			p.QuestName, p.Stage, p.StageCount, p.Description, progressLine),
		Color: ColorSuccess,
	}, nil
}

func (c *Commands) hatch(ctx context.Context, req *Request) (*Reply, error) {
	pet, err := c.hatchery.Hatch(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if pet == nil {
		return &Reply{
			Title:       "No Unhatched Egg Found",
			Description: "It looks like you don't have any unhatched eggs.",
			Color:       ColorError,
		}, nil
	}

	return &Reply{
		Title:       "Dino Egg Hatched!",
		Description: fmt.Sprintf("Congratulations! Your egg has hatched into a **%s %s**!", pet.Rarity, pet.Name),
		Color:       ColorSuccess,
		Fields: []Field{
			{Name: "Level", Value: strconv.Itoa(pet.Level), Inline: true},
			{Name: "Health", Value: strconv.Itoa(pet.Stats.Health), Inline: true},
			{Name: "Attack", Value: strconv.Itoa(pet.Stats.Attack), Inline: true},
			{Name: "Defense", Value: strconv.Itoa(pet.Stats.Defense), Inline: true},
			{Name: "Speed", Value: strconv.Itoa(pet.Stats.Speed), Inline: true},
		},
	}, nil
}

func (c *Commands) myPets(ctx context.Context, req *Request) (*Reply, error) {
	pets, err := c.hatchery.Pets(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if len(pets) == 0 {
		return &Reply{
			Title:       "No Pets Yet",
			Description: "You don't have any hatched dinos. Collect an egg and try `hatch`.",
			Color:       ColorError,
		}, nil
	}

	var b strings.Builder
	for i, p := range pets {
		fmt.Fprintf(&b, "%d. **%s** (%s) — level %d, %s\n", i+1, p.Name, p.Rarity, p.Level, p.GrowthStage)
	}
	return &Reply{Title: "Your Pets", Description: b.String(), Color: ColorSuccess}, nil
}

func (c *Commands) eggs(ctx context.Context, req *Request) (*Reply, error) {
	total, unhatched, err := c.hatchery.EggCounts(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &Reply{
		Title:       "Egg Collection",
		Description: fmt.Sprintf("You have %d eggs, %d of them still unhatched.", total, unhatched),
		Color:       ColorSuccess,
	}, nil
}

func (c *Commands) points(ctx context.Context, req *Request) (*Reply, error) {
	balance, err := c.economy.Balance(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &Reply{
		Title:       "Point Balance",
		Description: c.printer.Sprintf("You have %d points.", balance),
		Color:       ColorSuccess,
	}, nil
}

func (c *Commands) pay(ctx context.Context, req *Request) (*Reply, error) {
	if len(req.Args) < 2 {
		return usageReply("pay <@user> <amount>"), nil
	}
	toID := parseUserMention(req.Args[0])
	amount, err := strconv.Atoi(req.Args[1])
	if toID == "" || err != nil {
		return usageReply("pay <@user> <amount>"), nil
	}

	newBalance, err := c.economy.Pay(ctx, req.UserID, toID, amount)
	if reply := economyErrorReply(err); reply != nil {
		return reply, nil
	}
	if err != nil {
		return nil, err
	}

	return &Reply{
		Title:       "Points Sent",
		Description: c.printer.Sprintf("You sent %d points. Your new balance is %d.", amount, newBalance),
		Color:       ColorSuccess,
	}, nil
}

func (c *Commands) work(ctx context.Context, req *Request) (*Reply, error) {
	res, err := c.economy.Work(ctx, req.UserID)
	if reply := economyErrorReply(err); reply != nil {
		return reply, nil
	}
	if err != nil {
		return nil, err
	}

	return &Reply{
		Title:       fmt.Sprintf("%s %s Complete", res.Job.Emoji, res.Job.Job),
		Description: c.printer.Sprintf("%s\n\nYou earned %d points! Your new balance is %d.", res.Job.Description, res.Earned, res.NewBalance),
		Color:       ColorSuccess,
	}, nil
}

func (c *Commands) claim(ctx context.Context, req *Request) (*Reply, error) {
	newBalance, err := c.economy.Claim(ctx, req.UserID)
	if reply := economyErrorReply(err); reply != nil {
		return reply, nil
	}
	if err != nil {
		return nil, err
	}

	return &Reply{
		Title:       "Points Claimed!",
		Description: c.printer.Sprintf("You have successfully claimed your stipend! Your new balance is %d points.", newBalance),
		Color:       ColorSuccess,
	}, nil
}

func (c *Commands) coinflip(ctx context.Context, req *Request) (*Reply, error) {
	if len(req.Args) < 2 {
		return usageReply("coinflip <amount> <heads|tails>"), nil
	}
	amount, err := strconv.Atoi(req.Args[0])
	if err != nil {
		return usageReply("coinflip <amount> <heads|tails>"), nil
	}
	call := strings.ToLower(req.Args[1])
	if call != "heads" && call != "tails" {
		return usageReply("coinflip <amount> <heads|tails>"), nil
	}

	res, err := c.economy.Coinflip(ctx, req.UserID, amount, call)
	if reply := economyErrorReply(err); reply != nil {
		return reply, nil
	}
	if err != nil {
		return nil, err
	}
	return gambleReply(c.printer, res), nil
}

func (c *Commands) roll(ctx context.Context, req *Request) (*Reply, error) {
	if len(req.Args) < 1 {
		return usageReply("roll <amount>"), nil
	}
	amount, err := strconv.Atoi(req.Args[0])
	if err != nil {
		return usageReply("roll <amount>"), nil
	}

	res, err := c.economy.Roll(ctx, req.UserID, amount)
	if reply := economyErrorReply(err); reply != nil {
		return reply, nil
	}
	if err != nil {
		return nil, err
	}
	return gambleReply(c.printer, res), nil
}

func (c *Commands) battle(ctx context.Context, req *Request) (*Reply, error) {
	if len(req.Args) < 1 {
		return usageReply("battle <@user>"), nil
	}
	opponentID := parseUserMention(req.Args[0])
	if opponentID == "" {
		return usageReply("battle <@user>"), nil
	}

	res, err := c.battles.Fight(ctx, req.UserID, opponentID)
	if errors.Is(err, battle.ErrNoPet) {
		return &Reply{
			Title:       "No Pet to Battle",
			Description: "Both sides need at least one hatched pet to battle.",
			Color:       ColorError,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &Reply{
		Title: "Battle Over!",
		Description: fmt.Sprintf("**%s** defeated **%s** after %d rounds! <@%s> takes the win.",
			res.WinnerPet, res.LoserPet, res.Rounds, res.WinnerID),
		Color: ColorGold,
	}, nil
}

func (c *Commands) resetCooldowns(ctx context.Context, req *Request) (*Reply, error) {
	if len(req.Args) < 1 {
		return usageReply("resetcooldowns <@user>"), nil
	}
	targetID := parseUserMention(req.Args[0])
	if targetID == "" {
		return usageReply("resetcooldowns <@user>"), nil
	}

	if err := c.cooldowns.ResetAll(ctx, targetID); err != nil {
		return nil, err
	}
	return &Reply{
		Title:       "Cooldowns Reset",
		Description: fmt.Sprintf("All cooldowns cleared for <@%s>.", targetID),
		Color:       ColorSuccess,
	}, nil
}

// parseUserMention extracts a user id from a Discord mention
// (<@123>, <@!123>) or accepts a bare id.
func parseUserMention(arg string) string {
	id := strings.TrimSuffix(strings.TrimPrefix(arg, "<@"), ">")
	id = strings.TrimPrefix(id, "!")
	if id == "" {
		return ""
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return id
}

func usageReply(usage string) *Reply {
	return &Reply{
		Title:       "Usage",
		Description: fmt.Sprintf("`%s`", usage),
		Color:       ColorWarning,
	}
}

// economyErrorReply converts the economy's expected failures into
// user-facing replies. Returns nil for unexpected errors.
func economyErrorReply(err error) *Reply {
	if err == nil {
		return nil
	}

	var cdErr *economy.CooldownError
	if errors.As(err, &cdErr) {
		hours := int(cdErr.Remaining.Hours())
		minutes := int(cdErr.Remaining.Minutes()) % 60
		return &Reply{
			Title:       "Cooldown Active",
			Description: fmt.Sprintf("You need to wait %d hours and %d minutes before using `%s` again.", hours, minutes, cdErr.Action),
			Color:       ColorWarning,
		}
	}
	if errors.Is(err, economy.ErrInsufficientFunds) {
		return &Reply{
			Title:       "Not Enough Points",
			Description: "You don't have enough points for that.",
			Color:       ColorError,
		}
	}
	if errors.Is(err, economy.ErrInvalidAmount) {
		return &Reply{
			Title:       "Invalid Amount",
			Description: "The amount must be a positive number.",
			Color:       ColorError,
		}
	}
	return nil
}

func gambleReply(printer *message.Printer, res *economy.GambleResult) *Reply {
	if res.Won {
		return &Reply{
			Title:       "You Won!",
			Description: printer.Sprintf("%s You won %d points! Your new balance is %d.", res.Detail, res.Payout, res.NewBalance),
			Color:       ColorGold,
		}
	}
	return &Reply{
		Title:       "You Lost",
		Description: printer.Sprintf("%s You lost %d points. Your new balance is %d.", res.Detail, -res.Payout, res.NewBalance),
		Color:       ColorError,
	}
}
