package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"

	"crisis-service/internal/config"
	"crisis-service/internal/logging"
	"crisis-service/internal/models"
	"crisis-service/internal/utils"
)

// telegramConfig holds bot token and chat ID for a Telegram contact point.
type telegramConfig struct {
	BotToken string `json:"bot_token"`
	ChatID   int64  `json:"chat_id"`
}

// telegramLimiter is the global rate limiter for Telegram messages
var telegramLimiter *rate.Limiter

func initTelegramLimiter(ratePerSecond int) {
	telegramLimiter = rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond)
}

// SendTelegram sends a dispatch Task via the go-telegram/bot library.
func SendTelegram(ctx context.Context, task models.Task, cp models.ContactPoint, logger *logging.Logger, cfg config.Config) error {
	if telegramLimiter == nil {
		initTelegramLimiter(cfg.RateLimit.TelegramRateLimiter)
	}
	if err := telegramLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit exceeded: %w", err)
	}

	// Parse configuration
	var tCfg telegramConfig
	configBytes, err := json.Marshal(cp.Configuration)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration for contact point %s: %w", cp.ID, err)
	}
	if err := json.Unmarshal(configBytes, &tCfg); err != nil {
		return fmt.Errorf("invalid Telegram configuration for contact point %s: %w", cp.ID, err)
	}
	if tCfg.BotToken == "" {
		return fmt.Errorf("missing bot_token in Telegram configuration for contact point %s", cp.ID)
	}
	if tCfg.ChatID == 0 {
		return fmt.Errorf("missing chat_id in Telegram configuration for contact point %s", cp.ID)
	}

	text := fmt.Sprintf(
		"*%s*\n%s\n\n"+
			"*Severity:* %s\n"+
			"*Alert:* %s\n"+
			"*Subject:* %s",
		task.Subject,
		task.Body,
		task.Severity,
		task.AlertID,
		task.SubjectID,
	)

	// Retry sending message
	return utils.Retry(logger, 3, time.Second, func() error {
		b, err := bot.New(tCfg.BotToken)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram bot for contact point %s: %w", cp.ID, err)
		}

		params := &bot.SendMessageParams{
			ChatID:    tCfg.ChatID,
			Text:      text,
			ParseMode: "Markdown",
		}
		if _, err := b.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", tCfg.ChatID, err)
		}
		return nil
	})
}
