package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kasioon/search-gateway/internal/channel/whatsapp"
	"github.com/kasioon/search-gateway/internal/logger"
	"github.com/kasioon/search-gateway/internal/orchestrator"
	"github.com/kasioon/search-gateway/internal/types"
)

// whatsAppPayload mirrors the portion of the Cloud API webhook envelope
// the gateway actually reads: one inbound text message per change
type whatsAppPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// WhatsAppWebhookHandler serves the GET verification handshake and the
// POST inbound-message route for POST /api/webhooks/whatsapp
type WhatsAppWebhookHandler struct {
	orchestrator *orchestrator.Orchestrator
	client       *whatsapp.Client
	verifyToken  string
}

// NewWhatsAppWebhookHandler wires the orchestrator, outbound client, and
// the configured verify token the handshake checks against
func NewWhatsAppWebhookHandler(o *orchestrator.Orchestrator, client *whatsapp.Client, verifyToken string) *WhatsAppWebhookHandler {
	return &WhatsAppWebhookHandler{orchestrator: o, client: client, verifyToken: verifyToken}
}

// Verify handles the GET handshake WhatsApp performs when a webhook URL
// is first registered
func (h *WhatsAppWebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken && h.verifyToken != "" {
		c.String(http.StatusOK, challenge)
		return
	}
	c.Status(http.StatusForbidden)
}

// Inbound handles POST delivery of WhatsApp Cloud API messages
func (h *WhatsAppWebhookHandler) Inbound(c *gin.Context) {
	var payload whatsAppPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.Status(http.StatusOK)
		return
	}

	// WhatsApp expects a fast 200 regardless of processing outcome
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				switch {
				case msg.Type == "text" && msg.Text.Body != "":
					h.respond(ctx, msg.From, msg.Text.Body)
				case msg.Type == "audio" || msg.Type == "voice":
					if err := h.client.Send(ctx, msg.From, voiceNotSupportedMessage); err != nil {
						logger.Errorf(ctx, "whatsapp send failed: %v", err)
					}
				}
			}
		}
	}
}

// voiceNotSupportedMessage answers a WhatsApp voice note: voice search is
// only wired for the HTTP channel's multipart upload, not the Cloud API's
// audio message type.
const voiceNotSupportedMessage = "عذرًا، البحث الصوتي غير متاح عبر واتساب حاليًا. اكتب طلبك نصًا."

func (h *WhatsAppWebhookHandler) respond(ctx context.Context, from, text string) {
	reply, err := h.orchestrator.Handle(ctx, text, types.LanguageArabic, types.ChannelWhatsApp, 1, defaultChannelResultLimit)
	if err != nil {
		logger.Errorf(ctx, "whatsapp orchestrator handling failed: %v", err)
		return
	}
	if err := h.client.Send(ctx, from, reply.Text); err != nil {
		logger.Errorf(ctx, "whatsapp send failed: %v", err)
	}
}
