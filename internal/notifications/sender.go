package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender posts plain-text messages to one chat or channel.
type TelegramSender struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	username string // set instead of chatID for "@channel" destinations
	logger   *slog.Logger
}

// TelegramOptions configures NewTelegramSender. Zero values use defaults.
type TelegramOptions struct {
	Endpoint string        // defaults to tgbotapi.APIEndpoint
	Timeout  time.Duration // defaults to 30s
}

// NewTelegramSender authenticates the bot (getMe) and resolves the
// destination. channelID is either a numeric chat ID or an @username.
func NewTelegramSender(token, channelID string, opts TelegramOptions, logger *slog.Logger) (*TelegramSender, error) {
	if token == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if channelID == "" {
		return nil, fmt.Errorf("channel ID is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Endpoint == "" {
		opts.Endpoint = tgbotapi.APIEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	s := &TelegramSender{logger: logger}
	if strings.HasPrefix(channelID, "@") {
		s.username = channelID
	} else {
		id, err := strconv.ParseInt(channelID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("channel ID %q is neither numeric nor @username", channelID)
		}
		s.chatID = id
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, opts.Endpoint, &http.Client{Timeout: opts.Timeout})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false
	s.bot = bot

	logger.Info("Telegram sender initialized", "bot", bot.Self.UserName, "channel", channelID)
	return s, nil
}

// Send posts text to the configured destination. The Bot API client has no
// context support, so ctx is only checked before the call.
func (s *TelegramSender) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg tgbotapi.MessageConfig
	if s.username != "" {
		msg = tgbotapi.NewMessageToChannel(s.username, text)
	} else {
		msg = tgbotapi.NewMessage(s.chatID, text)
	}
	msg.DisableWebPagePreview = true

	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// LogSender logs notifications instead of sending them (dry run).
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a dry-run sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs the message and never fails.
func (s *LogSender) Send(_ context.Context, text string) error {
	s.logger.Info("Dry run notification", "text", text)
	return nil
}
