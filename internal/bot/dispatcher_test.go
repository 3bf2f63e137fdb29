package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/dinobot/internal/battle"
	"github.com/jwebster45206/dinobot/internal/cooldown"
	"github.com/jwebster45206/dinobot/internal/economy"
	"github.com/jwebster45206/dinobot/internal/hatchery"
	"github.com/jwebster45206/dinobot/internal/progression"
	"github.com/jwebster45206/dinobot/internal/storage"
	"github.com/jwebster45206/dinobot/pkg/quest"
	"github.com/jwebster45206/dinobot/pkg/user"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testCatalogJSON = []byte(`{
  "quests": [
    {
      "id": 1,
      "name": "First Steps",
      "stages": [
        {"stage": 1, "description": "Send 2 messages", "task": "send_message", "message_count": 2},
        {"stage": 2, "description": "Hatch your egg", "task": "hatch_egg", "reward": {"type": "egg"}}
      ]
    }
  ]
}`)

var testJobs = []economy.Job{
	{Job: "Fossil Digger", Emoji: "⛏️", MinPoints: 100, MaxPoints: 100},
}

// newTestBot wires the full command stack over a mock store.
func newTestBot(t *testing.T, adminIDs ...string) (*Dispatcher, *storage.MockStore) {
	t.Helper()
	store := storage.NewMockStore()
	logger := testLogger()

	catalog, err := quest.ParseCatalog(testCatalogJSON)
	require.NoError(t, err)

	engine := progression.NewEngine(store, logger)
	ledger := cooldown.NewLedger(store)
	d := NewDispatcher("!", engine, adminIDs, logger)
	NewCommands(
		catalog,
		engine,
		hatchery.NewService(store, logger),
		economy.NewService(store, ledger, testJobs, logger),
		battle.NewService(store, logger),
		ledger,
	).RegisterAll(d)
	return d, store
}

func TestHandleMessage_PlainMessageNoQuest(t *testing.T) {
	d, _ := newTestBot(t)
	replies := d.HandleMessage(context.Background(), "42", "hello everyone")
	assert.Empty(t, replies)
}

func TestHandleMessage_UnknownCommandIgnored(t *testing.T) {
	d, _ := newTestBot(t)
	replies := d.HandleMessage(context.Background(), "42", "!danceparty")
	assert.Empty(t, replies)
}

func TestHandleMessage_BarePrefixIgnored(t *testing.T) {
	d, _ := newTestBot(t)
	replies := d.HandleMessage(context.Background(), "42", "!")
	assert.Empty(t, replies)
}

func TestHandleMessage_StartQuestAndProgress(t *testing.T) {
	d, store := newTestBot(t)
	ctx := context.Background()

	replies := d.HandleMessage(ctx, "42", "!startquest")
	require.Len(t, replies, 1)
	assert.Equal(t, "Quest Started!", replies[0].Title)
	assert.Contains(t, replies[0].Description, "First Steps")

	// The command message itself does not count: the quest started
	// after progression ran, so the counter is still zero.
	rec, err := store.Load(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 0, rec.MessageCount)

	// Two chat messages complete stage 1; the second yields the stage
	// advance notification.
	replies = d.HandleMessage(ctx, "42", "anyone seen a spino?")
	assert.Empty(t, replies)

	replies = d.HandleMessage(ctx, "42", "guess not")
	require.Len(t, replies, 1)
	assert.Equal(t, "Next Stage", replies[0].Title)
	assert.Equal(t, ColorSuccess, replies[0].Color)
}

func TestHandleMessage_CommandAlsoAdvancesQuest(t *testing.T) {
	d, store := newTestBot(t)
	ctx := context.Background()

	d.HandleMessage(ctx, "42", "!startquest")
	d.HandleMessage(ctx, "42", "first message")

	// A command message still counts toward send_message, so this one
	// advances the stage AND answers the command.
	replies := d.HandleMessage(ctx, "42", "!points")
	require.Len(t, replies, 2)
	assert.Equal(t, "Next Stage", replies[0].Title)
	assert.Equal(t, "Point Balance", replies[1].Title)

	rec, err := store.Load(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.ActiveQuest().CurrentStage)
}

func TestHandleMessage_QuestCompletionNotification(t *testing.T) {
	d, store := newTestBot(t)
	ctx := context.Background()

	d.HandleMessage(ctx, "42", "!startquest")
	d.HandleMessage(ctx, "42", "one")
	d.HandleMessage(ctx, "42", "two")

	// Stage 2 is hatch_egg, but stage 1 carried no egg. Give the user
	// one so the next message completes the quest.
	rec, err := store.Load(ctx, "42")
	require.NoError(t, err)
	rec.AddEgg()
	require.NoError(t, store.Save(ctx, "42", rec))

	replies := d.HandleMessage(ctx, "42", "three")
	require.Len(t, replies, 1)
	assert.Equal(t, "Quest Completed!", replies[0].Title)
	assert.Equal(t, ColorGold, replies[0].Color)
	assert.Contains(t, replies[0].Description, "First Steps")
}

func TestHandleMessage_AdminGate(t *testing.T) {
	d, _ := newTestBot(t, "boss")
	ctx := context.Background()

	replies := d.HandleMessage(ctx, "42", "!resetcooldowns <@42>")
	require.Len(t, replies, 1)
	assert.Equal(t, "Access Denied", replies[0].Title)

	replies = d.HandleMessage(ctx, "boss", "!resetcooldowns <@42>")
	require.Len(t, replies, 1)
	assert.Equal(t, "Cooldowns Reset", replies[0].Title)
}

func TestHandleMessage_HandlerErrorIsGenericReply(t *testing.T) {
	d, _ := newTestBot(t)
	d.Register(&Command{Name: "boom", Handler: func(ctx context.Context, req *Request) (*Reply, error) {
		return nil, errors.New("kaboom")
	}})

	replies := d.HandleMessage(context.Background(), "42", "!boom")
	require.Len(t, replies, 1)
	assert.Equal(t, "Something Went Wrong", replies[0].Title)
}

func TestHandleMessage_CaseInsensitiveCommandName(t *testing.T) {
	d, _ := newTestBot(t)
	replies := d.HandleMessage(context.Background(), "42", "!PoInTs")
	require.Len(t, replies, 1)
	assert.Equal(t, "Point Balance", replies[0].Title)
}

func TestCommands_HatchFlow(t *testing.T) {
	d, store := newTestBot(t)
	ctx := context.Background()

	replies := d.HandleMessage(ctx, "42", "!hatch")
	require.Len(t, replies, 1)
	assert.Equal(t, "No Unhatched Egg Found", replies[0].Title)

	rec := user.NewRecord()
	rec.AddEgg()
	require.NoError(t, store.Save(ctx, "42", rec))

	replies = d.HandleMessage(ctx, "42", "!hatch")
	require.Len(t, replies, 1)
	assert.Equal(t, "Dino Egg Hatched!", replies[0].Title)
	require.Len(t, replies[0].Fields, 5)

	replies = d.HandleMessage(ctx, "42", "!mypets")
	require.Len(t, replies, 1)
	assert.Equal(t, "Your Pets", replies[0].Title)

	replies = d.HandleMessage(ctx, "42", "!eggs")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Description, "1 eggs, 0 of them still unhatched")
}

func TestCommands_EconomyFlow(t *testing.T) {
	d, _ := newTestBot(t)
	ctx := context.Background()

	replies := d.HandleMessage(ctx, "42", "!work")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Title, "Fossil Digger")

	// Immediately working again trips the cooldown reply.
	replies = d.HandleMessage(ctx, "42", "!work")
	require.Len(t, replies, 1)
	assert.Equal(t, "Cooldown Active", replies[0].Title)

	replies = d.HandleMessage(ctx, "42", "!pay <@77> 50")
	require.Len(t, replies, 1)
	assert.Equal(t, "Points Sent", replies[0].Title)

	replies = d.HandleMessage(ctx, "77", "!points")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Description, "50 points")

	replies = d.HandleMessage(ctx, "42", "!pay <@77> 999999")
	require.Len(t, replies, 1)
	assert.Equal(t, "Not Enough Points", replies[0].Title)
}

func TestCommands_UsageReplies(t *testing.T) {
	d, _ := newTestBot(t)
	ctx := context.Background()

	for _, msg := range []string{
		"!pay",
		"!pay notamention 50",
		"!pay <@77> abc",
		"!coinflip",
		"!coinflip 100 edge",
		"!roll",
		"!battle",
	} {
		replies := d.HandleMessage(ctx, "42", msg)
		require.Len(t, replies, 1, "message %q", msg)
		assert.Equal(t, "Usage", replies[0].Title, "message %q", msg)
	}
}

func TestCommands_BattleNoPet(t *testing.T) {
	d, _ := newTestBot(t)
	replies := d.HandleMessage(context.Background(), "42", "!battle <@77>")
	require.Len(t, replies, 1)
	assert.Equal(t, "No Pet to Battle", replies[0].Title)
}

func TestCommands_Help(t *testing.T) {
	d, _ := newTestBot(t, "boss")
	ctx := context.Background()

	replies := d.HandleMessage(ctx, "42", "!help")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Description, "!hatch")
	assert.NotContains(t, replies[0].Description, "resetcooldowns", "admin commands are hidden from regular users")

	replies = d.HandleMessage(ctx, "boss", "!help")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Description, "resetcooldowns")
}

func TestParseUserMention(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<@123456>", "123456"},
		{"<@!123456>", "123456"},
		{"123456", "123456"},
		{"<@>", ""},
		{"@someone", ""},
		{"<@12ab34>", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseUserMention(tc.in), "input %q", tc.in)
	}
}

func TestCooldownReplyFormatting(t *testing.T) {
	reply := economyErrorReply(&economy.CooldownError{Action: "work", Remaining: 90 * time.Minute})
	require.NotNil(t, reply)
	assert.Equal(t, "Cooldown Active", reply.Title)
	assert.Contains(t, reply.Description, "1 hours and 30 minutes")
	assert.Contains(t, reply.Description, "work")
}
