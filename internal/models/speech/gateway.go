// Package speech implements the Speech Gateway: a thin Whisper
// transcription wrapper reused by /search/voice.
package speech

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/kasioon/search-gateway/internal/config"
	apperrors "github.com/kasioon/search-gateway/internal/errors"
	"github.com/kasioon/search-gateway/internal/models/llm"
	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

var allowedExtensions = map[string]bool{
	".mp3": true, ".m4a": true, ".wav": true, ".ogg": true, ".oga": true, ".webm": true,
}

// Gateway is the interfaces.SpeechGateway implementation
type Gateway struct {
	client *openai.Client
	model  string
}

// NewGateway builds the Speech Gateway, reusing the LLM Gateway's
// underlying OpenAI-compatible client rather than opening a second one.
func NewGateway(cfg *config.Config, llmGateway interfaces.LLMGateway) (interfaces.SpeechGateway, error) {
	model := "whisper-1"
	var client *openai.Client
	if cfg.Speech != nil {
		if cfg.Speech.Model != "" {
			model = cfg.Speech.Model
		}
		if g, ok := llmGateway.(*llm.Gateway); ok && g.RemoteClient() != nil {
			client = g.RemoteClient()
		} else {
			clientCfg := openai.DefaultConfig(cfg.Speech.APIKey)
			if cfg.Speech.BaseURL != "" {
				clientCfg.BaseURL = cfg.Speech.BaseURL
			}
			client = openai.NewClientWithConfig(clientCfg)
		}
	}
	return &Gateway{client: client, model: model}, nil
}

// Transcribe validates the upload's extension before ever calling the
// provider (the upload's size is not checked here), and wraps the provider call in the provider-unavailable error
// kind rather than leaking the underlying SDK error.
func (g *Gateway) Transcribe(ctx context.Context, audio io.Reader, filename string, lang types.Language) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", apperrors.NewUnsupportedMediaError(fmt.Sprintf("unsupported audio format: %s", ext))
	}
	if g.client == nil {
		return "", apperrors.NewExternalUnavailableError("speech gateway not configured")
	}

	req := openai.AudioRequest{
		Model:    g.model,
		FilePath: filename,
		Reader:   audio,
	}
	if lang.Valid() {
		req.Language = string(lang)
	}

	resp, err := g.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", apperrors.NewExternalUnavailableError(fmt.Sprintf("transcription failed: %v", err))
	}
	return resp.Text, nil
}
