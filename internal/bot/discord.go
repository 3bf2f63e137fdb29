package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

// messageTimeout bounds how long one inbound message may be
// processed, progression and command handling included.
const messageTimeout = 10 * time.Second

// Discord connects the dispatcher to the Discord gateway.
type Discord struct {
	session    *discordgo.Session
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewDiscord creates a gateway session wired to the dispatcher. The
// session is not opened until Open is called.
func NewDiscord(token string, dispatcher *Dispatcher, logger *slog.Logger) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	d := &Discord{
		session:    session,
		dispatcher: dispatcher,
		logger:     logger,
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent
	session.AddHandler(d.onReady)
	session.AddHandler(d.onMessageCreate)

	return d, nil
}

// Open connects to the gateway and begins receiving events.
func (d *Discord) Open() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (d *Discord) Close() error {
	return d.session.Close()
}

func (d *Discord) onReady(s *discordgo.Session, r *discordgo.Ready) {
	d.logger.Info("Logged in", "username", r.User.Username, "discriminator", r.User.Discriminator)
}

func (d *Discord) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), messageTimeout)
	defer cancel()

	replies := d.dispatcher.HandleMessage(ctx, m.Author.ID, m.Content)
	for _, reply := range replies {
		if _, err := s.ChannelMessageSendEmbed(m.ChannelID, toEmbed(reply)); err != nil {
			d.logger.Error("Failed to send reply",
				"channel_id", m.ChannelID,
				"user_id", m.Author.ID,
				"error", err)
		}
	}
}

func toEmbed(r *Reply) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       r.Title,
		Description: r.Description,
		Color:       r.Color,
	}
	for _, f := range r.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return embed
}
