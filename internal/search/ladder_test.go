package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kasioon/search-gateway/internal/types"
)

func TestBuildLadderFullPlanIncludesStrictAndLocationRungs(t *testing.T) {
	e := &Executor{}
	plan := &types.QueryPlan{
		MainKeyword:         "شقة",
		ExpandedKeywords:     []string{"شقة"},
		LeafCategory:         "apartments",
		LocationCityID:       "damascus",
		TransactionType:      types.TransactionRent,
		SuggestedCategories:  []string{"apartments"},
	}

	rungs := e.buildLadder(plan)

	var strategies []types.SearchStrategy
	for _, r := range rungs {
		strategies = append(strategies, r.strategy)
	}
	assert.Contains(t, strategies, types.StrategyStrict)
	assert.Contains(t, strategies, types.StrategyRelaxedLocation)
	assert.Contains(t, strategies, types.StrategyRelaxedCategory)
	assert.Contains(t, strategies, types.StrategyTextOnly)
	assert.Contains(t, strategies, types.StrategySuggestedCategory)

	strict := rungs[0].build(plan)
	assert.True(t, strict.RequireLocation)
	assert.True(t, strict.RequireCategory)
	assert.Equal(t, "damascus", strict.CityID)
	assert.Equal(t, []string{"apartments"}, strict.CategorySlugs)
}

func TestBuildLadderBareKeywordPlanOnlyHasTextOnlyRung(t *testing.T) {
	e := &Executor{}
	plan := &types.QueryPlan{MainKeyword: "شقة", ExpandedKeywords: []string{"شقة"}}

	rungs := e.buildLadder(plan)

	assert.Len(t, rungs, 1)
	assert.Equal(t, types.StrategyTextOnly, rungs[0].strategy)
}

func TestBuildLadderCategoryOnlyPlanAppliesStrictCategoryFilter(t *testing.T) {
	e := &Executor{}
	plan := &types.QueryPlan{
		MainKeyword:      "طويوطة كامري",
		ExpandedKeywords: []string{"طويوطة كامري"},
		LeafCategory:     "cars",
	}

	rungs := e.buildLadder(plan)

	var strategies []types.SearchStrategy
	for _, r := range rungs {
		strategies = append(strategies, r.strategy)
	}
	assert.Contains(t, strategies, types.StrategyStrict)
	assert.NotContains(t, strategies, types.StrategyRelaxedLocation)
	assert.Contains(t, strategies, types.StrategyRelaxedCategory)

	strict := rungs[0].build(plan)
	assert.True(t, strict.RequireCategory)
	assert.False(t, strict.RequireLocation)
	assert.Equal(t, []string{"cars"}, strict.CategorySlugs)
	assert.Empty(t, strict.CityID)
}

func TestBuildLadderCityOnlyPlanAppliesStrictLocationFilter(t *testing.T) {
	e := &Executor{}
	plan := &types.QueryPlan{
		MainKeyword:      "شقة",
		ExpandedKeywords: []string{"شقة"},
		LocationCityID:   "damascus",
	}

	rungs := e.buildLadder(plan)

	var strategies []types.SearchStrategy
	for _, r := range rungs {
		strategies = append(strategies, r.strategy)
	}
	assert.Contains(t, strategies, types.StrategyStrict)
	assert.Contains(t, strategies, types.StrategyRelaxedLocation)
	assert.NotContains(t, strategies, types.StrategyRelaxedCategory)

	strict := rungs[0].build(plan)
	assert.True(t, strict.RequireLocation)
	assert.False(t, strict.RequireCategory)
	assert.Equal(t, "damascus", strict.CityID)
	assert.Empty(t, strict.CategorySlugs)
}

func TestBuildLadderLastRungIsTextOnly(t *testing.T) {
	e := &Executor{}
	plan := &types.QueryPlan{
		MainKeyword:         "شقة",
		ExpandedKeywords:     []string{"شقة"},
		LeafCategory:         "apartments",
		LocationCityID:       "damascus",
	}

	rungs := e.buildLadder(plan)
	assert.Equal(t, types.StrategyTextOnly, rungs[len(rungs)-1].strategy)
}
