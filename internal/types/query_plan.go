package types

import "strings"

// QueryPlan is the ephemeral, per-request output of the Query Planner: the
// structured interpretation of a free-form search utterance.
type QueryPlan struct {
	MainKeyword          string            `json:"main_keyword"`
	ExpandedKeywords      []string          `json:"expanded_keywords"`
	SuggestedCategories   []string          `json:"suggested_categories"`
	LeafCategory          string            `json:"leaf_category,omitempty"`
	LocationText          string            `json:"location_text,omitempty"`
	LocationCityID        string            `json:"location_city_id,omitempty"`
	TransactionType        TransactionTypeSlug `json:"transaction_type,omitempty"`
	RequestedAttributes    map[string]string `json:"requested_attributes,omitempty"`
	PriceIndicator         string            `json:"price_indicator,omitempty"`
	ConditionIndicator     string            `json:"condition_indicator,omitempty"`
}

// AddExpandedKeyword appends a variant to the expanded-keyword set: the
// main keyword is always present, duplicates are removed case-insensitively,
// and the set never exceeds MaxExpandedKeywords.
func (p *QueryPlan) AddExpandedKeyword(kw string) {
	kw = strings.TrimSpace(kw)
	if kw == "" {
		return
	}
	lower := strings.ToLower(kw)
	for _, existing := range p.ExpandedKeywords {
		if strings.ToLower(existing) == lower {
			return
		}
	}
	if len(p.ExpandedKeywords) >= MaxExpandedKeywords {
		return
	}
	p.ExpandedKeywords = append(p.ExpandedKeywords, kw)
}

// NormalizeExpandedKeywords rebuilds the set from scratch so the main keyword
// invariant and the size/dedup rules hold regardless of what the LLM returned.
func (p *QueryPlan) NormalizeExpandedKeywords(fallback string) {
	raw := p.ExpandedKeywords
	p.ExpandedKeywords = nil
	main := p.MainKeyword
	if main == "" {
		main = fallback
	}
	p.MainKeyword = main
	p.AddExpandedKeyword(main)
	for _, kw := range raw {
		p.AddExpandedKeyword(kw)
	}
	if len(p.ExpandedKeywords) == 0 {
		p.AddExpandedKeyword(fallback)
	}
}

// MatchType classifies how a listing's text matched the expanded keywords
type MatchType string

const (
	MatchTypeExact    MatchType = "exact"
	MatchTypePrefix   MatchType = "prefix"
	MatchTypeTrigram  MatchType = "trigram"
	MatchTypeNone     MatchType = "none"
)

// SearchStrategy names one rung of the Search Executor's strategy ladder
type SearchStrategy string

const (
	StrategyStrict            SearchStrategy = "strict"
	StrategyRelaxedLocation    SearchStrategy = "relaxed_location"
	StrategyRelaxedCategory    SearchStrategy = "relaxed_category"
	StrategyTextOnly           SearchStrategy = "text_only"
	StrategySuggestedCategory  SearchStrategy = "suggested_category"
	StrategyNoResults          SearchStrategy = "no_results"
)

// AttributeMatchType classifies how well a listing satisfies requested attributes
type AttributeMatchType string

const (
	AttributeMatchExact    AttributeMatchType = "exact"
	AttributeMatchPartial  AttributeMatchType = "partial"
	AttributeMatchNone     AttributeMatchType = "no_match"
)

// MatchBreakdown records which fields contributed to a RankedResult's score
type MatchBreakdown struct {
	City            bool      `json:"city"`
	Neighborhood    bool      `json:"neighborhood"`
	TransactionType bool      `json:"transaction_type"`
	TextMatch       MatchType `json:"text_match"`
	AttributePoints int       `json:"attribute_points"`
}

// RankedResult is the ephemeral, per-request scored wrapper around a Listing
type RankedResult struct {
	Listing            *Listing           `json:"listing"`
	MatchScore         int                `json:"match_score"`
	Breakdown          MatchBreakdown     `json:"breakdown"`
	AttributeMatchType AttributeMatchType `json:"attribute_match_type"`
	MatchedAttributes   []string           `json:"matched_attributes,omitempty"`
	UnmatchedAttributes []string           `json:"unmatched_attributes,omitempty"`
	Note                string             `json:"note,omitempty"`
	ExclusionReason     string             `json:"-"`
}

// Excluded reports whether this result was dropped for scoring reasons
func (r *RankedResult) Excluded() bool {
	return r.ExclusionReason != ""
}
