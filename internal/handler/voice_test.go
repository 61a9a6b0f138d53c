package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasioon/search-gateway/internal/types"
)

func multipartAudioRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/search/voice", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestVoiceSearchRejectsMissingAudioField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewVoiceHandler(buildOrchestrator(t, &fakeClassifier{intent: &types.Intent{Kind: types.IntentSearch}}, nil, nil), &fakeSpeech{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/search/voice", bytes.NewBufferString(""))
	c.Request.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	h.Search(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVoiceSearchTranscribesAndRunsPipeline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	classifier := &fakeClassifier{intent: &types.Intent{Kind: types.IntentSearch, Query: "شقة"}}
	executor := &fakeExecutor{total: 1, strategy: types.SearchStrategy("exact")}
	h := NewVoiceHandler(buildOrchestrator(t, classifier, &fakePlanner{plan: &types.QueryPlan{MainKeyword: "شقة"}}, executor), &fakeSpeech{text: "شقة للايجار في دمشق"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartAudioRequest(t, "audio", "note.mp3", []byte("fake-audio-bytes"))

	h.Search(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestVoiceSearchReturnsInternalErrorWhenSpeechGatewayFails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	classifier := &fakeClassifier{intent: &types.Intent{Kind: types.IntentSearch}}
	speechErr := assertShouldNotBeCalled{}
	h := NewVoiceHandler(buildOrchestrator(t, classifier, nil, nil), &fakeSpeech{err: speechErr})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartAudioRequest(t, "audio", "note.mp3", []byte("fake-audio-bytes"))

	h.Search(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
