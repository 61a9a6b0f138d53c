package handler

import (
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"

	"github.com/kasioon/search-gateway/internal/channel/telegram"
	"github.com/kasioon/search-gateway/internal/logger"
	"github.com/kasioon/search-gateway/internal/orchestrator"
	"github.com/kasioon/search-gateway/internal/types"
)

// defaultChannelResultLimit is the page size used when a conversational
// channel asks a free-text question with no explicit paging
const defaultChannelResultLimit = 10

// TelegramWebhookHandler serves POST /api/webhooks/telegram
type TelegramWebhookHandler struct {
	orchestrator *orchestrator.Orchestrator
	bot          *telegram.Bot
}

// NewTelegramWebhookHandler wires the orchestrator and bot client the
// Telegram webhook needs to reply on its own, out-of-band from the HTTP response
func NewTelegramWebhookHandler(o *orchestrator.Orchestrator, bot *telegram.Bot) *TelegramWebhookHandler {
	return &TelegramWebhookHandler{orchestrator: o, bot: bot}
}

func (h *TelegramWebhookHandler) Inbound(c *gin.Context) {
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.Status(http.StatusOK)
		return
	}

	// Telegram expects a fast 200 regardless of whether the message yields
	// a reply; acknowledge immediately and always work from here on
	c.Status(http.StatusOK)

	if update.Message == nil || update.Message.Text == "" {
		return
	}

	chatID := update.Message.Chat.ID
	lang := types.LanguageArabic
	if update.Message.From != nil && update.Message.From.LanguageCode == "en" {
		lang = types.LanguageEnglish
	}

	ctx := c.Request.Context()
	reply, err := h.orchestrator.Handle(ctx, update.Message.Text, lang, types.ChannelTelegram, 1, defaultChannelResultLimit)
	if err != nil {
		logger.Errorf(ctx, "telegram orchestrator handling failed: %v", err)
		return
	}

	if err := h.bot.Send(chatID, reply); err != nil {
		logger.Errorf(ctx, "telegram send failed: %v", err)
	}
}
