package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasioon/search-gateway/internal/channel/telegram"
	"github.com/kasioon/search-gateway/internal/orchestrator"
	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

func newDisabledTelegramBot(t *testing.T) *telegram.Bot {
	t.Helper()
	bot, err := telegram.NewBot("")
	require.NoError(t, err)
	return bot
}

func buildTelegramOrchestrator(t *testing.T, classifier interfaces.IntentClassifier) *orchestrator.Orchestrator {
	t.Helper()
	renderers := []interfaces.ChannelRenderer{&fakeRenderer{channel: types.ChannelTelegram}}
	return orchestrator.New(classifier, &fakePlanner{}, &fakeExecutor{}, &fakeStats{}, renderers)
}

func TestTelegramInboundAcksEvenOnMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTelegramWebhookHandler(buildOrchestrator(t, &fakeClassifier{}, nil, nil), newDisabledTelegramBot(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/webhooks/telegram", bytes.NewBufferString("not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Inbound(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTelegramInboundRunsPipelineForTextMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	classifier := &fakeClassifier{intent: &types.Intent{Kind: types.IntentGreeting}}
	h := NewTelegramWebhookHandler(buildTelegramOrchestrator(t, classifier), newDisabledTelegramBot(t))

	body := `{"message":{"chat":{"id":42},"text":"مرحبا","from":{"language_code":"ar"}}}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/webhooks/telegram", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Inbound(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTelegramInboundSkipsMessagesWithoutText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	classifier := &fakeClassifier{intent: &types.Intent{Kind: types.IntentGreeting}}
	h := NewTelegramWebhookHandler(buildTelegramOrchestrator(t, classifier), newDisabledTelegramBot(t))

	body := `{"message":{"chat":{"id":42}}}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/webhooks/telegram", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Inbound(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
