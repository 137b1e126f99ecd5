// Package bot wires the data provider to a Discord session and the /speechmeme command.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"speechmeme/internal/memes"
	"speechmeme/internal/observability"
)

// ItemSource supplies the items a command picks from.
type ItemSource interface {
	GetItems(ctx context.Context) memes.Result
}

// Bot handles the Discord session lifecycle and slash command interactions.
type Bot struct {
	session *discordgo.Session
	source  ItemSource
	picker  *Picker
	metrics *observability.Metrics
	now     func() time.Time
}

// Config holds the dependencies of a Bot.
type Config struct {
	Token   string
	Source  ItemSource
	Picker  *Picker                // optional, defaults to NewPicker()
	Metrics *observability.Metrics // optional
}

// New creates a Bot. The session is not opened until Open is called.
func New(cfg Config) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("discord bot token is required")
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("item source is required")
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsAllWithoutPrivileged | discordgo.IntentMessageContent

	b := newBot(cfg)
	b.session = session
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteractionCreate)
	return b, nil
}

func newBot(cfg Config) *Bot {
	picker := cfg.Picker
	if picker == nil {
		picker = NewPicker()
	}
	return &Bot{
		source:  cfg.Source,
		picker:  picker,
		metrics: cfg.Metrics,
		now:     time.Now,
	}
}

// Open connects to the Discord gateway.
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

// Close disconnects from the Discord gateway.
func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("bot is logged in and ready", "user", r.User.String(), "bot_id", r.User.ID)

	synced, err := s.ApplicationCommandBulkOverwrite(r.User.ID, "", []*discordgo.ApplicationCommand{Command()})
	if err != nil {
		slog.Error("error syncing commands", "error", err)
		return
	}
	slog.Info("synced global commands", "count", len(synced))
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.ApplicationCommandData().Name != CommandName {
		return
	}

	requestID := uuid.NewString()
	logger := slog.With("request_id", requestID, "interaction_id", i.ID)

	var botAvatar string
	if s.State != nil && s.State.User != nil {
		botAvatar = s.State.User.AvatarURL("")
	}

	resp, outcome := b.Respond(context.Background(), botAvatar)
	if err := s.InteractionRespond(i.Interaction, resp); err != nil {
		logger.Error("failed to respond to interaction", "error", err)
		b.metrics.Interaction(observability.InteractionError)
		return
	}
	b.metrics.Interaction(outcome)
	logger.Info("interaction served", "outcome", outcome)
}

// Respond builds the reply to one /speechmeme invocation and its metrics outcome.
// botAvatar is the footer icon for items without an author avatar.
func (b *Bot) Respond(ctx context.Context, botAvatar string) (*discordgo.InteractionResponse, string) {
	result := b.source.GetItems(ctx)
	item, ok := b.picker.Pick(result.Items)
	if !ok {
		return unavailableResponse(), observability.InteractionUnavailable
	}
	return memeResponse(item, botAvatar, b.now()), observability.InteractionServed
}
