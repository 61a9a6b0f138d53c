package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kasioon/search-gateway/internal/types"
)

func TestTextMatchType(t *testing.T) {
	listing := &types.Listing{Title: "شقة للإيجار بدمشق", Description: "ثلاث غرف وصالة"}

	tests := []struct {
		name     string
		keywords []string
		expected types.MatchType
	}{
		{"exact phrase", []string{"شقة للإيجار بدمشق"}, types.MatchTypeExact},
		{"prefix", []string{"شقة للإيجار"}, types.MatchTypePrefix},
		{"contains only", []string{"غرف"}, types.MatchTypeTrigram},
		{"no match", []string{"سيارة"}, types.MatchTypeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, textMatchType(listing, tt.keywords))
		})
	}
}

func TestTextMatchTypeFuzzyTrigramWithNoSubstringRelationship(t *testing.T) {
	// "تويوطا" is a misspelling of "تويوتا" (Toyota) with no substring
	// relationship to it, but shares enough trigrams to clear the threshold.
	listing := &types.Listing{Title: "سيارة تويوطا كامري للبيع", Description: "فحص كامل"}
	assert.Equal(t, types.MatchTypeTrigram, textMatchType(listing, []string{"تويوتا"}))
}

func TestTrigramSimilarityBelowThresholdForUnrelatedStrings(t *testing.T) {
	assert.Less(t, trigramSimilarity("تويوتا", "غسالة"), trigramSimilarityThreshold)
}

func TestScoreAttributesNumericSatisfied(t *testing.T) {
	listing := &types.Listing{
		Attributes: []types.AttributeValue{
			types.NewNumericAttributeValue("attr-rooms", "rooms", 3, ""),
		},
	}
	points, matched, unmatched, excluded := scoreAttributes(listing, map[string]string{"rooms": "3"})
	assert.Equal(t, 5, points)
	assert.Equal(t, []string{"rooms"}, matched)
	assert.Empty(t, unmatched)
	assert.False(t, excluded)
}

func TestScoreAttributesNumericExcluded(t *testing.T) {
	listing := &types.Listing{
		Attributes: []types.AttributeValue{
			types.NewNumericAttributeValue("attr-rooms", "rooms", 1, ""),
		},
	}
	points, matched, unmatched, excluded := scoreAttributes(listing, map[string]string{"rooms": "3"})
	assert.Equal(t, 0, points)
	assert.Empty(t, matched)
	assert.Equal(t, []string{"rooms"}, unmatched)
	assert.True(t, excluded)
}

func TestScoreAttributesTextContains(t *testing.T) {
	listing := &types.Listing{
		Attributes: []types.AttributeValue{
			types.NewTextAttributeValue("attr-brand", "brand", "Toyota Corolla"),
		},
	}
	points, matched, unmatched, excluded := scoreAttributes(listing, map[string]string{"brand": "toyota"})
	assert.Equal(t, 5, points)
	assert.Equal(t, []string{"brand"}, matched)
	assert.Empty(t, unmatched)
	assert.False(t, excluded)
}

func TestScoreAttributesCapAtTwentyFive(t *testing.T) {
	listing := &types.Listing{
		Attributes: []types.AttributeValue{
			types.NewNumericAttributeValue("a1", "a1", 1, ""),
			types.NewNumericAttributeValue("a2", "a2", 2, ""),
			types.NewNumericAttributeValue("a3", "a3", 3, ""),
			types.NewNumericAttributeValue("a4", "a4", 4, ""),
			types.NewNumericAttributeValue("a5", "a5", 5, ""),
			types.NewNumericAttributeValue("a6", "a6", 6, ""),
		},
	}
	requested := map[string]string{"a1": "1", "a2": "2", "a3": "3", "a4": "4", "a5": "5", "a6": "6"}
	points, matched, _, excluded := scoreAttributes(listing, requested)
	assert.Equal(t, 25, points)
	assert.Len(t, matched, 6)
	assert.False(t, excluded)
}

func TestClassifyAttributeMatch(t *testing.T) {
	assert.Equal(t, types.AttributeMatchNone, classifyAttributeMatch(0, 0))
	assert.Equal(t, types.AttributeMatchNone, classifyAttributeMatch(2, 0))
	assert.Equal(t, types.AttributeMatchPartial, classifyAttributeMatch(2, 1))
	assert.Equal(t, types.AttributeMatchExact, classifyAttributeMatch(2, 2))
}

func TestScoreFiltersBelowMinScore(t *testing.T) {
	e := &Executor{minScore: 30}
	listings := []*types.Listing{
		{ID: "1", Title: "something else entirely", Description: "unrelated"},
	}
	plan := &types.QueryPlan{ExpandedKeywords: []string{"شقة"}}

	results := e.score(listings, plan, types.StrategyTextOnly)
	assert.Empty(t, results)
}

func TestScoreOrdersDescending(t *testing.T) {
	e := &Executor{minScore: 0}
	listings := []*types.Listing{
		{ID: "low", Title: "شقة", Description: "بيت"},
		{ID: "high", Title: "شقة", Description: "بيت", CityID: "damascus"},
	}
	plan := &types.QueryPlan{ExpandedKeywords: []string{"شقة"}, LocationCityID: "damascus"}

	results := e.score(listings, plan, types.StrategyStrict)
	assert.Len(t, results, 2)
	assert.Equal(t, "high", results[0].Listing.ID)
	assert.GreaterOrEqual(t, results[0].MatchScore, results[1].MatchScore)
}
