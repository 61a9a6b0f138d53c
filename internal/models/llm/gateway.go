// Package llm implements the LLM Gateway: a single Chat/Embed surface
// dispatching to either a remote OpenAI-compatible API or a local Ollama
// instance depending on each model tier's configured source.
package llm

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"

	"github.com/kasioon/search-gateway/internal/common"
	"github.com/kasioon/search-gateway/internal/config"
	apperrors "github.com/kasioon/search-gateway/internal/errors"
	"github.com/kasioon/search-gateway/internal/metrics"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

// Gateway is the interfaces.LLMGateway implementation
type Gateway struct {
	source       string
	chatModel    string
	embedModel   string
	dimension    int
	remote       *openai.Client
	ollama       *api.Client
	tokensUsed   atomic.Int64
}

// NewGateway picks the chat model's ModelConfig.Source and builds the
// matching client; the remote *openai.Client is also reused by the
// Speech Gateway for Whisper transcription.
func NewGateway(cfg *config.Config) (interfaces.LLMGateway, error) {
	var chatCfg, embedCfg *config.ModelConfig
	for i := range cfg.Models {
		m := &cfg.Models[i]
		switch m.Type {
		case "chat":
			chatCfg = m
		case "embedding":
			embedCfg = m
		}
	}
	if chatCfg == nil {
		return nil, fmt.Errorf("no chat model configured")
	}

	g := &Gateway{source: chatCfg.Source, chatModel: chatCfg.ModelName, dimension: 1536}
	if embedCfg != nil {
		g.embedModel = embedCfg.ModelName
		if embedCfg.Dimension > 0 {
			g.dimension = embedCfg.Dimension
		}
	}

	switch chatCfg.Source {
	case "ollama":
		parsedURL, err := parseURL(chatCfg.BaseURL)
		if err != nil {
			return nil, err
		}
		g.ollama = api.NewClient(parsedURL, httpClient())
	default:
		clientCfg := openai.DefaultConfig(chatCfg.APIKey)
		if chatCfg.BaseURL != "" {
			clientCfg.BaseURL = chatCfg.BaseURL
		}
		g.remote = openai.NewClientWithConfig(clientCfg)
	}

	return g, nil
}

// RemoteClient exposes the underlying OpenAI-compatible client so the
// Speech Gateway can reuse the same credentials for Whisper calls
// without a second config lookup.
func (g *Gateway) RemoteClient() *openai.Client { return g.remote }

func (g *Gateway) EmbeddingDimension() int { return g.dimension }

// Chat dispatches to the configured source, retrying transient transport
// errors with exponential backoff but failing fast on authentication
// errors. JSONMode callers get a rejection if the response isn't a JSON
// object rather than a best-effort parse.
func (g *Gateway) Chat(ctx context.Context, messages []interfaces.ChatMessage, opts interfaces.ChatOptions) (string, error) {
	const maxAttempts = 3
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var content string
		var err error
		if g.ollama != nil {
			content, err = g.chatOllama(ctx, messages, opts)
		} else {
			content, err = g.chatRemote(ctx, messages, opts)
		}
		if err == nil {
			metrics.LLMTokensUsed.Add(float64(len(content)) / 4)
			g.tokensUsed.Add(int64(len(content) / 4))
			if opts.JSONMode {
				var obj map[string]any
				if perr := common.ParseLLMJsonResponse(content, &obj); perr != nil || obj == nil {
					return "", apperrors.NewExternalUnavailableError("llm returned a non-object response in JSON mode")
				}
			}
			return content, nil
		}
		lastErr = err
		if isAuthError(err) {
			break
		}
		select {
		case <-ctx.Done():
			return "", apperrors.NewTimeoutError("llm call timed out", true)
		case <-time.After(time.Duration(1<<attempt) * 200 * time.Millisecond):
		}
	}
	return "", apperrors.NewExternalUnavailableError(fmt.Sprintf("llm gateway unavailable: %v", lastErr))
}

func (g *Gateway) chatRemote(ctx context.Context, messages []interfaces.ChatMessage, opts interfaces.ChatOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.chatModel,
		Messages:    toOpenAIMessages(messages),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	resp, err := g.remote.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *Gateway) chatOllama(ctx context.Context, messages []interfaces.ChatMessage, opts interfaces.ChatOptions) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    g.chatModel,
		Messages: toOllamaMessages(messages),
		Stream:   &stream,
		Options: map[string]interface{}{
			"temperature": opts.Temperature,
		},
	}
	if opts.JSONMode {
		req.Format = []byte(`"json"`)
	}
	var out string
	err := g.ollama.Chat(ctx, req, func(resp api.ChatResponse) error {
		out += resp.Message.Content
		return nil
	})
	return out, err
}

// Embed returns the embedding for text using whichever source serves the
// embedding-tier model; the returned vector is always EmbeddingDimension() wide.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	if g.ollama != nil {
		req := &api.EmbeddingRequest{Model: g.embedModel, Prompt: text}
		resp, err := g.ollama.Embeddings(ctx, req)
		if err != nil {
			return nil, apperrors.NewExternalUnavailableError(fmt.Sprintf("embed failed: %v", err))
		}
		out := make([]float32, len(resp.Embedding))
		for i, v := range resp.Embedding {
			out[i] = float32(v)
		}
		return out, nil
	}

	resp, err := g.remote.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: openai.EmbeddingModel(g.embedModel),
	})
	if err != nil {
		return nil, apperrors.NewExternalUnavailableError(fmt.Sprintf("embed failed: %v", err))
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return resp.Data[0].Embedding, nil
}

func toOpenAIMessages(in []interfaces.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(in))
	for i, m := range in {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

func toOllamaMessages(in []interfaces.ChatMessage) []api.Message {
	out := make([]api.Message, len(in))
	for i, m := range in {
		out[i] = api.Message{Role: m.Role, Content: m.Content}
	}
	return out
}

func isAuthError(err error) bool {
	var apiErr *openai.APIError
	if e, ok := err.(*openai.APIError); ok {
		apiErr = e
		return apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403
	}
	return false
}
