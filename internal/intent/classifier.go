// Package intent implements the Intent Classifier: the first pipeline
// stage, turning a raw utterance into a closed-variant Intent.
package intent

import (
	"context"
	"fmt"

	"github.com/kasioon/search-gateway/internal/common"
	"github.com/kasioon/search-gateway/internal/logger"
	"github.com/kasioon/search-gateway/internal/metrics"
	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

const cacheNamespace = "intent"

// Classifier is the interfaces.IntentClassifier implementation
type Classifier struct {
	llm   interfaces.LLMGateway
	cache interfaces.Cache
}

// NewClassifier wires the cache and LLM Gateway the classifier needs
func NewClassifier(llmGateway interfaces.LLMGateway, cache interfaces.Cache) interfaces.IntentClassifier {
	return &Classifier{llm: llmGateway, cache: cache}
}

type llmIntentResponse struct {
	Kind     string `json:"kind"`
	Query    string `json:"query"`
	OfficeID string `json:"office_id"`
	Limit    int    `json:"limit"`
}

// Classify consults the cache, then makes a low-temperature, JSON-mode
// LLM call; any failure — transport error or an LLM answer outside the
// eight-case IntentKind — defaults to search rather than failing the
// request, since a free-text query is always a valid fallback interpretation.
func (c *Classifier) Classify(ctx context.Context, query string, lang types.Language) (*types.Intent, error) {
	var cached types.Intent
	if hit, err := c.cache.Get(ctx, cacheNamespace, cacheKey(query, lang), &cached); err == nil && hit {
		metrics.CacheHits.WithLabelValues(cacheNamespace).Inc()
		return &cached, nil
	}
	metrics.CacheMisses.WithLabelValues(cacheNamespace).Inc()

	intent := c.classifyViaLLM(ctx, query, lang)
	metrics.IntentClassified.WithLabelValues(string(intent.Kind)).Inc()

	if err := c.cache.Set(ctx, cacheNamespace, cacheKey(query, lang), intent, interfaces.TTLIntent); err != nil {
		logger.Warnf(ctx, "intent cache store failed: %v", err)
	}
	return intent, nil
}

func (c *Classifier) classifyViaLLM(ctx context.Context, query string, lang types.Language) *types.Intent {
	messages := []interfaces.ChatMessage{
		{Role: "system", Content: systemPrompt(lang)},
		{Role: "user", Content: query},
	}

	content, err := c.llm.Chat(ctx, messages, interfaces.ChatOptions{Temperature: 0.1, JSONMode: true, MaxTokens: 200})
	if err != nil {
		logger.Warnf(ctx, "intent classification llm call failed, defaulting to search: %v", err)
		metrics.IntentClassified.WithLabelValues("classifier_failure").Inc()
		return &types.Intent{Kind: types.IntentSearch, Query: query}
	}

	var resp llmIntentResponse
	if err := common.ParseLLMJsonResponse(content, &resp); err != nil {
		logger.Warnf(ctx, "intent classification response unparseable, defaulting to search: %v", err)
		metrics.IntentClassified.WithLabelValues("classifier_failure").Inc()
		return &types.Intent{Kind: types.IntentSearch, Query: query}
	}

	kind := types.IntentKind(resp.Kind)
	if !kind.Valid() {
		logger.Warnf(ctx, "intent classification returned unrecognized kind %q, defaulting to search", resp.Kind)
		metrics.IntentClassified.WithLabelValues("classifier_failure").Inc()
		return &types.Intent{Kind: types.IntentSearch, Query: query}
	}

	intent := &types.Intent{Kind: kind, OfficeID: resp.OfficeID, Limit: resp.Limit}
	if kind.NeedsQuery() {
		if resp.Query != "" {
			intent.Query = resp.Query
		} else {
			intent.Query = query
		}
	}
	return intent
}

func systemPrompt(lang types.Language) string {
	return fmt.Sprintf(`You classify a classifieds-marketplace user message into exactly one intent kind.
Respond as a JSON object: {"kind": "...", "query": "...", "office_id": "...", "limit": 0}.
kind must be one of: search, most_viewed, most_impressioned, get_offices, get_office_details, get_office_listings, greeting, help.
Use "search" for any message describing something the user wants to find.
Language of the message: %s.`, lang)
}

func cacheKey(query string, lang types.Language) string {
	return string(lang) + ":" + query
}
