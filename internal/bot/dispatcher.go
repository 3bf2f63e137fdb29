package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jwebster45206/dinobot/internal/progression"
)

// HandlerFunc executes one command invocation.
type HandlerFunc func(ctx context.Context, req *Request) (*Reply, error)

// Command is a registered chat command.
type Command struct {
	Name        string
	Description string
	Usage       string
	AdminOnly   bool
	Handler     HandlerFunc
}

// Dispatcher routes inbound chat messages. Every message first passes
// through the progression engine, whether or not it is a command;
// only messages beginning with the prefix are additionally routed to
// a command handler.
type Dispatcher struct {
	prefix   string
	engine   *progression.Engine
	commands map[string]*Command
	adminIDs map[string]bool
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher with the given command prefix.
func NewDispatcher(prefix string, engine *progression.Engine, adminIDs []string, logger *slog.Logger) *Dispatcher {
	admins := make(map[string]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &Dispatcher{
		prefix:   prefix,
		engine:   engine,
		commands: make(map[string]*Command),
		adminIDs: admins,
		logger:   logger,
	}
}

// Register adds commands to the dispatcher. Later registrations with
// the same name win.
func (d *Dispatcher) Register(cmds ...*Command) {
	for _, c := range cmds {
		d.commands[c.Name] = c
	}
}

// Commands returns the registered commands sorted by name.
func (d *Dispatcher) Commands() []*Command {
	out := make([]*Command, 0, len(d.commands))
	for _, c := range d.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsAdmin reports whether the user may run admin-only commands.
func (d *Dispatcher) IsAdmin(userID string) bool {
	return d.adminIDs[userID]
}

// HandleMessage processes one inbound chat message and returns the
// replies to render, possibly none. It never panics outward; internal
// failures are logged and swallowed so the chat loop keeps running.
func (d *Dispatcher) HandleMessage(ctx context.Context, userID, content string) []*Reply {
	var replies []*Reply

	// Quest progression sees every message, commands included.
	n, err := d.engine.OnMessage(ctx, userID)
	if err != nil {
		d.logger.Error("Quest progression failed", "user_id", userID, "error", err)
	}
	if n != nil {
		replies = append(replies, renderNotification(n))
	}

	if !strings.HasPrefix(content, d.prefix) {
		return replies
	}

	args := strings.Fields(strings.TrimPrefix(content, d.prefix))
	if len(args) == 0 {
		return replies
	}
	name := strings.ToLower(args[0])

	cmd, ok := d.commands[name]
	if !ok {
		return replies
	}
	if cmd.AdminOnly && !d.IsAdmin(userID) {
		replies = append(replies, &Reply{
			Title:       "Access Denied",
			Description: "You do not have permission to use this command.",
			Color:       ColorError,
		})
		return replies
	}

	d.logger.Info("Executing command", "command", name, "user_id", userID)

	reply, err := cmd.Handler(ctx, &Request{UserID: userID, Args: args[1:]})
	if err != nil {
		d.logger.Error("Command failed", "command", name, "user_id", userID, "error", err)
		replies = append(replies, &Reply{
			Title:       "Something Went Wrong",
			Description: "There was an error running that command. Please try again later.",
			Color:       ColorError,
		})
		return replies
	}
	if reply != nil {
		replies = append(replies, reply)
	}
	return replies
}

func renderNotification(n *progression.Notification) *Reply {
	switch n.Kind {
	case progression.QuestCompleted:
		return &Reply{
			Title:       "Quest Completed!",
			Description: fmt.Sprintf("Congratulations! You have completed the quest: **%s**!", n.QuestName),
			Color:       ColorGold,
		}
	default:
		return &Reply{
			Title:       "Next Stage",
			Description: n.Description,
			Color:       ColorSuccess,
		}
	}
}
