package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/mklimuk/semester-pilot/pkg/chat"
)

// CommandPrefix starts every Discord command.
const CommandPrefix = "!"

type messenger interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot wraps the Discord session and dependencies
type Bot struct {
	Session   *discordgo.Session
	ChannelID string
	handler   *chat.Handler
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewBot creates a new Discord bot
func NewBot(token, channelID string, handler *chat.Handler, logger *zap.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bot := &Bot{
		Session:   dg,
		ChannelID: channelID,
		handler:   handler,
		logger:    logger,
		ctx:       context.Background(),
	}

	dg.AddHandler(bot.messageCreate)

	return bot, nil
}

// Start opens the websocket connection. Commands run with ctx until Stop.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(ctx)
	return b.Session.Open()
}

// Stop closes the websocket connection
func (b *Bot) Stop() error {
	if b.cancel != nil {
		b.cancel()
	}
	return b.Session.Close()
}

// Notify posts text to the configured channel.
func (b *Bot) Notify(_ context.Context, text string) error {
	if _, err := b.Session.ChannelMessageSend(b.ChannelID, text); err != nil {
		return fmt.Errorf("failed to send discord message: %w", err)
	}
	return nil
}

func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore messages from self
	if m.Author == nil || (s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	b.handle(b.ctx, s, m.ChannelID, m.Content)
}

func (b *Bot) handle(ctx context.Context, out messenger, channelID, content string) {
	if channelID != b.ChannelID {
		return
	}
	command, args := chat.ParseCommand(CommandPrefix, content)
	if command == "" {
		return
	}
	if _, err := out.ChannelMessageSend(channelID, b.handler.Handle(ctx, command, args)); err != nil {
		b.logger.Warn("failed to send discord reply", zap.String("command", command), zap.Error(err))
	}
}
