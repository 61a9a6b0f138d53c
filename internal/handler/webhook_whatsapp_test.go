package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kasioon/search-gateway/internal/channel/whatsapp"
	"github.com/kasioon/search-gateway/internal/orchestrator"
	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

func buildWhatsAppOrchestrator(t *testing.T, classifier interfaces.IntentClassifier) *orchestrator.Orchestrator {
	t.Helper()
	renderers := []interfaces.ChannelRenderer{&fakeRenderer{channel: types.ChannelWhatsApp}}
	return orchestrator.New(classifier, &fakePlanner{}, &fakeExecutor{}, &fakeStats{}, renderers)
}

func TestWhatsAppVerifyAcceptsMatchingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewWhatsAppWebhookHandler(buildWhatsAppOrchestrator(t, &fakeClassifier{}), whatsapp.NewClient("", ""), "secret-token")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=echo-me", nil)

	h.Verify(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "echo-me", w.Body.String())
}

func TestWhatsAppVerifyRejectsWrongToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewWhatsAppWebhookHandler(buildWhatsAppOrchestrator(t, &fakeClassifier{}), whatsapp.NewClient("", ""), "secret-token")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=echo-me", nil)

	h.Verify(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWhatsAppInboundAcksAndSkipsNonTextMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	classifier := &fakeClassifier{intent: &types.Intent{Kind: types.IntentGreeting}}
	h := NewWhatsAppWebhookHandler(buildWhatsAppOrchestrator(t, classifier), whatsapp.NewClient("", ""), "secret-token")

	body := `{"entry":[{"changes":[{"value":{"messages":[{"from":"966500000000","type":"image","text":{"body":""}}]}}]}]}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/webhooks/whatsapp", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Inbound(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWhatsAppInboundRejectsVoiceNoteWithLocalizedMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	classifier := &fakeClassifier{err: assertShouldNotBeCalled{}}
	h := NewWhatsAppWebhookHandler(buildWhatsAppOrchestrator(t, classifier), whatsapp.NewClient("", ""), "secret-token")

	body := `{"entry":[{"changes":[{"value":{"messages":[{"from":"966500000000","type":"audio","text":{"body":""}}]}}]}]}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/webhooks/whatsapp", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Inbound(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWhatsAppInboundRunsPipelineForTextMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	classifier := &fakeClassifier{intent: &types.Intent{Kind: types.IntentGreeting}}
	h := NewWhatsAppWebhookHandler(buildWhatsAppOrchestrator(t, classifier), whatsapp.NewClient("", ""), "secret-token")

	body := `{"entry":[{"changes":[{"value":{"messages":[{"from":"966500000000","type":"text","text":{"body":"مرحبا"}}]}}]}]}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/webhooks/whatsapp", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Inbound(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
