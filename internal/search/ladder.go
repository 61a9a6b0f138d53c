package search

import (
	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

// buildLadder constructs the strategy ladder for this plan (at most five
// rungs; no-results is what Execute returns when all of them come back
// empty), in progressively relaxed order. Category and city are independently
// optional: strict filters on whichever of the two the plan actually
// carries, relaxed-location only fires when there's a city to drop, and
// relaxed-category only fires when there's a category to drop. Rungs
// whose required inputs the plan doesn't carry are skipped rather than
// run as a no-op duplicate of the previous rung.
func (e *Executor) buildLadder(plan *types.QueryPlan) []ladderRung {
	var rungs []ladderRung

	hasCategory := plan.LeafCategory != "" || len(plan.SuggestedCategories) > 0
	hasCity := plan.LocationCityID != ""

	if hasCategory || hasCity {
		rungs = append(rungs, ladderRung{
			strategy: types.StrategyStrict,
			build: func(p *types.QueryPlan) interfaces.ListingQuery {
				q := interfaces.ListingQuery{
					Keywords:        p.ExpandedKeywords,
					TransactionType: p.TransactionType,
				}
				if p.LeafCategory != "" || len(p.SuggestedCategories) > 0 {
					q.CategorySlugs = categoryFilter(p)
					q.RequireCategory = true
				}
				if p.LocationCityID != "" {
					q.CityID = p.LocationCityID
					q.RequireLocation = true
				}
				return q
			},
		})
	}

	if hasCity {
		rungs = append(rungs, ladderRung{
			strategy: types.StrategyRelaxedLocation,
			build: func(p *types.QueryPlan) interfaces.ListingQuery {
				q := interfaces.ListingQuery{
					Keywords:        p.ExpandedKeywords,
					TransactionType: p.TransactionType,
				}
				if p.LeafCategory != "" || len(p.SuggestedCategories) > 0 {
					q.CategorySlugs = categoryFilter(p)
					q.RequireCategory = true
				}
				return q
			},
		})
	}

	if hasCategory {
		rungs = append(rungs, ladderRung{
			strategy: types.StrategyRelaxedCategory,
			build: func(p *types.QueryPlan) interfaces.ListingQuery {
				q := interfaces.ListingQuery{
					Keywords:        p.ExpandedKeywords,
					TransactionType: p.TransactionType,
				}
				if p.LocationCityID != "" {
					q.CityID = p.LocationCityID
				}
				return q
			},
		})
	}

	rungs = append(rungs, ladderRung{
		strategy: types.StrategyTextOnly,
		build: func(p *types.QueryPlan) interfaces.ListingQuery {
			return interfaces.ListingQuery{Keywords: p.ExpandedKeywords}
		},
	})

	if len(plan.SuggestedCategories) > 0 {
		rungs = append(rungs, ladderRung{
			strategy: types.StrategySuggestedCategory,
			build: func(p *types.QueryPlan) interfaces.ListingQuery {
				return interfaces.ListingQuery{CategorySlugs: p.SuggestedCategories, RequireCategory: true}
			},
		})
	}

	return rungs
}

func categoryFilter(p *types.QueryPlan) []string {
	if p.LeafCategory != "" {
		return []string{p.LeafCategory}
	}
	return p.SuggestedCategories
}
