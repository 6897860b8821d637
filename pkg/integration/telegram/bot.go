package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mklimuk/semester-pilot/pkg/chat"
)

// CommandPrefix starts every Telegram command.
const CommandPrefix = "/"

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot wraps the Telegram bot API. It answers commands from the configured
// chat only and sends notifications there.
type Bot struct {
	API     *tgbotapi.BotAPI
	ChatID  int64
	send    sender
	handler *chat.Handler
	logger  *zap.Logger
	stopCh  chan struct{}
}

// NewBot creates a new Telegram bot
func NewBot(token string, chatID int64, handler *chat.Handler, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error creating Telegram bot: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Bot{
		API:     api,
		ChatID:  chatID,
		send:    api,
		handler: handler,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins polling for updates in a goroutine. Polling ends when ctx is
// done or Stop is called.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.API.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-b.stopCh:
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil {
					b.handleMessage(ctx, update.Message)
				}
			}
		}
	}()

	return nil
}

// Stop stops polling for updates
func (b *Bot) Stop() {
	close(b.stopCh)
	b.API.StopReceivingUpdates()
}

// Notify sends text to the configured chat.
func (b *Bot) Notify(_ context.Context, text string) error {
	if _, err := b.send.Send(tgbotapi.NewMessage(b.ChatID, text)); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil || msg.Chat.ID != b.ChatID {
		b.logger.Debug("ignoring message from unknown chat")
		return
	}
	command, args := chat.ParseCommand(CommandPrefix, msg.Text)
	if command == "" {
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, b.handler.Handle(ctx, command, args))
	if _, err := b.send.Send(reply); err != nil {
		b.logger.Warn("failed to send telegram reply", zap.String("command", command), zap.Error(err))
	}
}
