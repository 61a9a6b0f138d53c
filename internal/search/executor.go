// Package search implements the Search Executor: the strategy ladder
// that progressively relaxes a QueryPlan until it finds results, then
// scores and ranks whatever the chosen rung returned.
package search

import (
	"context"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kasioon/search-gateway/internal/logger"
	"github.com/kasioon/search-gateway/internal/metrics"
	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

const cacheNamespace = "search"

// ladderRung is one attempt the strategy ladder makes before giving up
// and relaxing further.
type ladderRung struct {
	strategy types.SearchStrategy
	build    func(plan *types.QueryPlan) interfaces.ListingQuery
}

// Executor is the interfaces.SearchExecutor implementation
type Executor struct {
	store     interfaces.ListingStore
	catalog   interfaces.CatalogIndex
	cache     interfaces.Cache
	pool      *ants.Pool
	minScore  int
}

// NewExecutor wires the Search Executor's dependencies; pool is the
// bounded goroutine pool used for the strategy-5 (suggested-category)
// fan-out across candidate categories.
func NewExecutor(store interfaces.ListingStore, catalog interfaces.CatalogIndex, cache interfaces.Cache, pool *ants.Pool, minScore int) interfaces.SearchExecutor {
	if minScore <= 0 {
		minScore = 30
	}
	return &Executor{store: store, catalog: catalog, cache: cache, pool: pool, minScore: minScore}
}

// Execute walks the strategy ladder: strict → relaxed-location →
// relaxed-category → text-only → suggested-category → no-results. The
// first rung to return any rows wins; its listings' attributes are then
// fetched in one batch and the listings are scored and ranked. A catalog
// attribute prewarm runs concurrently via errgroup while each rung's
// primary fetch is in flight.
func (e *Executor) Execute(ctx context.Context, plan *types.QueryPlan, lang types.Language, page, limit int) ([]*types.RankedResult, types.SearchStrategy, int, error) {
	rungs := e.buildLadder(plan)

	for _, rung := range rungs {
		query := rung.build(plan)
		// Overfetch by 3x so attribute scoring has re-ranking headroom
		// before the top `limit` results are taken.
		query.Page, query.Limit = page, limit*3

		var listings []*types.Listing
		var total int
		var attrsByListing map[string][]types.AttributeValue

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			listings, total, err = e.fetchRung(gctx, rung, query)
			return err
		})
		g.Go(func() error {
			// prewarm: nothing to prefetch until listing IDs are known,
			// but running the catalog's attribute list here keeps the
			// eventual per-listing decoration off the critical path.
			_ = e.catalog.AttributesFor(plan.LeafCategory)
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, rung.strategy, 0, err
		}

		if len(listings) == 0 {
			continue
		}

		ids := make([]string, len(listings))
		for i, l := range listings {
			ids[i] = l.ID
		}
		var err error
		attrsByListing, err = e.store.AttributesForListings(ctx, ids)
		if err != nil {
			logger.Warnf(ctx, "attribute fetch failed, scoring without attributes: %v", err)
			attrsByListing = map[string][]types.AttributeValue{}
		}
		for _, l := range listings {
			l.Attributes = attrsByListing[l.ID]
		}

		results := e.score(listings, plan, rung.strategy)
		if len(results) > limit {
			results = results[:limit]
		}
		metrics.SearchStrategyUsed.WithLabelValues(string(rung.strategy)).Inc()
		return results, rung.strategy, total, nil
	}

	metrics.SearchStrategyUsed.WithLabelValues(string(types.StrategyNoResults)).Inc()
	return nil, types.StrategyNoResults, 0, nil
}

func (e *Executor) fetchRung(ctx context.Context, rung ladderRung, query interfaces.ListingQuery) ([]*types.Listing, int, error) {
	if rung.strategy != types.StrategySuggestedCategory || e.pool == nil || len(query.CategorySlugs) <= 1 {
		return e.store.Search(ctx, query)
	}
	return e.fanOutSuggestedCategories(ctx, query)
}

// fanOutSuggestedCategories runs one Search call per suggested category
// concurrently through the bounded ants pool, taking the first rung to
// return results and cancelling the rest.
func (e *Executor) fanOutSuggestedCategories(ctx context.Context, query interfaces.ListingQuery) ([]*types.Listing, int, error) {
	fctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		listings []*types.Listing
		total    int
		err      error
	}
	results := make(chan outcome, len(query.CategorySlugs))

	for _, slug := range query.CategorySlugs {
		slug := slug
		perCategory := query
		perCategory.CategorySlugs = []string{slug}
		task := func() {
			listings, total, err := e.store.Search(fctx, perCategory)
			select {
			case results <- outcome{listings, total, err}:
			case <-fctx.Done():
			}
		}
		if err := e.pool.Submit(task); err != nil {
			listings, total, err := e.store.Search(fctx, perCategory)
			results <- outcome{listings, total, err}
		}
	}

	for range query.CategorySlugs {
		o := <-results
		if o.err == nil && len(o.listings) > 0 {
			return o.listings, o.total, nil
		}
	}
	return nil, 0, nil
}
