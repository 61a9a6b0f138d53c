// Package telegram is a thin adapter around tgbotapi.BotAPI: it only
// knows how to send a rendered ChannelReply to a chat. Update parsing and
// pipeline dispatch live in the webhook handler; message formatting lives
// in internal/render, so both share one inline-keyboard button model.
package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kasioon/search-gateway/internal/render"
	"github.com/kasioon/search-gateway/internal/types"
)

// Bot wraps the Telegram Bot API client
type Bot struct {
	api *tgbotapi.BotAPI
}

// NewBot constructs a Bot from a bot token; a blank token is valid and
// simply means the Telegram channel is disabled — Send becomes a no-op.
func NewBot(token string) (*Bot, error) {
	if token == "" {
		return &Bot{}, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api}, nil
}

// Enabled reports whether a live bot token was configured
func (b *Bot) Enabled() bool { return b.api != nil }

// Send delivers a rendered reply to the given chat, attaching inline
// keyboard buttons when the reply carries any actions.
func (b *Bot) Send(chatID int64, reply *types.ChannelReply) error {
	if b.api == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = false
	if len(reply.Actions) > 0 {
		msg.ReplyMarkup = render.ToInlineKeyboard(reply.Actions)
	}
	_, err := b.api.Send(msg)
	return err
}
