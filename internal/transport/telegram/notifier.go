package telegram

import (
	"context"
	"regexp"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/oops"

	monitorsvc "github.com/campwatch/campsite-telegram-bot/internal/modules/monitor/service"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// Notifier delivers alerts over the Telegram Bot API. Messages go out in
// HTML mode first; if Telegram rejects the formatting the tags are stripped
// and the message is retried as plain text.
type Notifier struct {
	bot *bot.Bot
}

var _ monitorsvc.Notifier = (*Notifier)(nil)

func NewNotifier() *Notifier {
	return &Notifier{}
}

// SetBot sets the Telegram bot instance
func (n *Notifier) SetBot(b *bot.Bot) {
	n.bot = b
}

func (n *Notifier) Notify(ctx context.Context, userID, text string) error {
	if n.bot == nil {
		return oops.Errorf("bot not initialized")
	}

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    userID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err == nil {
		return nil
	}

	// Fallback: plain text without formatting
	_, fallbackErr := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: userID,
		Text:   htmlTagPattern.ReplaceAllString(text, ""),
	})
	if fallbackErr != nil {
		return oops.With("user_id", userID).Wrapf(fallbackErr, "failed to send message (HTML and plain)")
	}
	return nil
}
