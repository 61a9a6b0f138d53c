// Package planner implements the Query Planner: the stage that turns a
// search-intent query into a structured QueryPlan the Search Executor
// can run the strategy ladder against.
package planner

import (
	"context"
	"strings"

	"github.com/kasioon/search-gateway/internal/common"
	"github.com/kasioon/search-gateway/internal/logger"
	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

const cacheNamespace = "query_plan"

// Planner is the interfaces.QueryPlanner implementation
type Planner struct {
	llm     interfaces.LLMGateway
	cache   interfaces.Cache
	catalog interfaces.CatalogIndex
}

// NewPlanner wires the Query Planner's dependencies
func NewPlanner(llmGateway interfaces.LLMGateway, cache interfaces.Cache, catalog interfaces.CatalogIndex) interfaces.QueryPlanner {
	return &Planner{llm: llmGateway, cache: cache, catalog: catalog}
}

type llmPlanResponse struct {
	MainKeyword          string            `json:"main_keyword"`
	ExpandedKeywords       []string          `json:"expanded_keywords"`
	SuggestedCategories    []string          `json:"suggested_categories"`
	LocationText           string            `json:"location_text"`
	TransactionType         string            `json:"transaction_type"`
	RequestedAttributes     map[string]string `json:"requested_attributes"`
	PriceIndicator          string            `json:"price_indicator"`
	ConditionIndicator      string            `json:"condition_indicator"`
}

// Plan consults the cache, then runs the LLM extraction call, normalizes
// and validates the result against the live catalog, attempts the
// leaf-deepen step, and resolves the location hint to a known city.
// Any LLM failure degrades gracefully to a plan whose expanded keywords
// are the original query plus its configured keyword aliases — search
// never hard-fails because planning failed.
func (p *Planner) Plan(ctx context.Context, query string, lang types.Language) (*types.QueryPlan, error) {
	var cached types.QueryPlan
	if hit, err := p.cache.Get(ctx, cacheNamespace, cacheKey(query, lang), &cached); err == nil && hit {
		return &cached, nil
	}

	plan := p.planViaLLM(ctx, query, lang)
	p.deepenLeaf(ctx, plan, lang)
	p.resolveLocation(ctx, plan, lang)

	if err := p.cache.Set(ctx, cacheNamespace, cacheKey(query, lang), plan, interfaces.TTLQueryPlan); err != nil {
		logger.Warnf(ctx, "query plan cache store failed: %v", err)
	}
	return plan, nil
}

func (p *Planner) planViaLLM(ctx context.Context, query string, lang types.Language) *types.QueryPlan {
	plan := &types.QueryPlan{MainKeyword: query}

	messages := []interfaces.ChatMessage{
		{Role: "system", Content: p.systemPrompt(lang)},
		{Role: "user", Content: query},
	}
	content, err := p.llm.Chat(ctx, messages, interfaces.ChatOptions{Temperature: 0.2, JSONMode: true, MaxTokens: 400})
	if err != nil {
		logger.Warnf(ctx, "query planning llm call failed, degrading to bare keyword plan: %v", err)
		p.normalizeWithAliases(plan, query, lang)
		return plan
	}

	var resp llmPlanResponse
	if err := common.ParseLLMJsonResponse(content, &resp); err != nil {
		logger.Warnf(ctx, "query planning response unparseable, degrading to bare keyword plan: %v", err)
		p.normalizeWithAliases(plan, query, lang)
		return plan
	}

	if resp.MainKeyword != "" {
		plan.MainKeyword = resp.MainKeyword
	}
	plan.ExpandedKeywords = resp.ExpandedKeywords
	p.normalizeWithAliases(plan, query, lang)

	plan.SuggestedCategories = filterValidCategories(p.catalog, resp.SuggestedCategories)
	plan.LocationText = resp.LocationText
	plan.RequestedAttributes = resp.RequestedAttributes
	plan.PriceIndicator = resp.PriceIndicator
	plan.ConditionIndicator = resp.ConditionIndicator

	txType := types.TransactionTypeSlug(resp.TransactionType)
	for _, t := range p.catalog.TransactionTypes() {
		if t.Slug == txType {
			plan.TransactionType = txType
			break
		}
	}
	return plan
}

// normalizeWithAliases rebuilds the expanded-keyword set (main keyword
// first, deduped, capped) and then mixes in every configured keyword-alias
// of the main keyword, so an alias file entry reaches the strategy ladder
// even when the LLM never surfaced it as an expanded keyword itself.
func (p *Planner) normalizeWithAliases(plan *types.QueryPlan, fallback string, lang types.Language) {
	plan.NormalizeExpandedKeywords(fallback)
	for _, alias := range p.catalog.ExpandKeyword(plan.MainKeyword, lang) {
		plan.AddExpandedKeyword(alias)
	}
}

func filterValidCategories(catalog interfaces.CatalogIndex, slugs []string) []string {
	out := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if _, ok := catalog.CategoryBySlug(slug); ok {
			out = append(out, slug)
		}
	}
	return out
}

// deepenLeaf narrows the plan's suggested categories to a single leaf.
// When the LLM's response already named a leaf, that's the answer. When it
// named a non-leaf category, a second JSON-mode LLM call is asked to pick
// the best-matching leaf descendant; the pgvector nearest-leaf embedding
// lookup only engages when there is a suggested category and no deepen
// call produced a leaf (it failed, couldn't be parsed, or named no leaf).
// With no suggested categories the plan is left without a leaf. It never
// returns a leaf category unless CatalogIndex.IsLeaf confirms it,
// regardless of which path produced the candidate.
func (p *Planner) deepenLeaf(ctx context.Context, plan *types.QueryPlan, lang types.Language) {
	for _, slug := range plan.SuggestedCategories {
		if p.catalog.IsLeaf(slug) {
			plan.LeafCategory = slug
			return
		}
		if leaf, ok := p.deepenViaLLM(ctx, plan, slug); ok {
			plan.LeafCategory = leaf
			return
		}
	}
	if len(plan.SuggestedCategories) == 0 {
		return
	}

	embedding, err := p.llm.Embed(ctx, plan.MainKeyword)
	if err != nil {
		logger.Warnf(ctx, "deepen embedding call failed, leaving category unresolved: %v", err)
		return
	}
	if slug, ok := p.catalog.NearestLeafByEmbedding(ctx, embedding); ok {
		plan.LeafCategory = slug
	}
}

type llmDeepenResponse struct {
	LeafCategory string `json:"leaf_category"`
}

// deepenViaLLM asks the model to narrow a non-leaf suggested category to
// one of its leaf descendants, given the query as context. Reports false
// without mutating the plan if the call fails, the response is
// unparseable, or the returned slug isn't actually a leaf under parentSlug.
func (p *Planner) deepenViaLLM(ctx context.Context, plan *types.QueryPlan, parentSlug string) (string, bool) {
	candidates := p.leafDescendants(parentSlug)
	if len(candidates) == 0 {
		return "", false
	}
	var slugs []string
	for _, c := range candidates {
		slugs = append(slugs, c.Slug)
	}

	messages := []interfaces.ChatMessage{
		{Role: "system", Content: "You narrow a classifieds search query to the single best-matching subcategory. " +
			"Respond as JSON: {\"leaf_category\":\"\"}, using an empty string if nothing fits. " +
			"Candidates: " + strings.Join(slugs, ", ")},
		{Role: "user", Content: plan.MainKeyword},
	}
	content, err := p.llm.Chat(ctx, messages, interfaces.ChatOptions{Temperature: 0, JSONMode: true, MaxTokens: 60})
	if err != nil {
		logger.Warnf(ctx, "deepen llm call failed, falling back to embedding lookup: %v", err)
		return "", false
	}

	var resp llmDeepenResponse
	if err := common.ParseLLMJsonResponse(content, &resp); err != nil {
		logger.Warnf(ctx, "deepen llm response unparseable, falling back to embedding lookup: %v", err)
		return "", false
	}
	if resp.LeafCategory != "" && p.catalog.IsLeaf(resp.LeafCategory) {
		return resp.LeafCategory, true
	}
	return "", false
}

// leafDescendants returns every leaf category anywhere under parentSlug.
func (p *Planner) leafDescendants(parentSlug string) []*types.Category {
	parent, ok := p.catalog.CategoryBySlug(parentSlug)
	if !ok {
		return nil
	}
	byID := make(map[string]*types.Category)
	for _, c := range p.catalog.Categories() {
		byID[c.ID] = c
	}

	var out []*types.Category
	for _, leaf := range p.catalog.LeafCategories() {
		id := leaf.ParentID
		for id != nil {
			if *id == parent.ID {
				out = append(out, leaf)
				break
			}
			next, ok := byID[*id]
			if !ok {
				break
			}
			id = next.ParentID
		}
	}
	return out
}

// resolveLocation turns the LLM's free-text location hint into a known
// city when possible; an unresolved hint is kept as LocationText so the
// Search Executor can still attempt a text match on it.
func (p *Planner) resolveLocation(ctx context.Context, plan *types.QueryPlan, lang types.Language) {
	if plan.LocationText == "" {
		return
	}
	if city, ok := p.catalog.LookupCity(plan.LocationText, lang); ok {
		plan.LocationCityID = city.ID
	}
}

func (p *Planner) systemPrompt(lang types.Language) string {
	var categories []string
	for _, c := range p.catalog.Categories() {
		categories = append(categories, c.Slug)
	}
	return "You extract a structured search plan from a classifieds query. " +
		"Respond as JSON: {\"main_keyword\":\"\",\"expanded_keywords\":[],\"suggested_categories\":[],\"location_text\":\"\",\"transaction_type\":\"\",\"requested_attributes\":{},\"price_indicator\":\"\",\"condition_indicator\":\"\"}. " +
		"suggested_categories must only use slugs from this list: " + strings.Join(categories, ", ")
}

func cacheKey(query string, lang types.Language) string {
	return string(lang) + ":" + query
}
