// Package metrics exposes the Prometheus counters and gauges the gateway
// accumulates during normal operation, served at GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LLMTokensUsed is an approximate running total of tokens in successful
	// LLM Gateway chat responses, estimated from response length; embedding
	// calls are not counted.
	LLMTokensUsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kasioon_llm_tokens_used_total",
		Help: "Approximate total LLM tokens in chat responses (embedding calls are not counted).",
	})

	// SearchStrategyUsed counts which rung of the strategy ladder served
	// each search request.
	SearchStrategyUsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kasioon_search_strategy_total",
		Help: "Count of search requests served by each strategy-ladder rung.",
	}, []string{"strategy"})

	// CacheHits and CacheMisses track the read-through cache's effectiveness
	// per namespace (intent, query_plan, search, catalog, stats).
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kasioon_cache_hits_total",
		Help: "Count of cache lookups that found a value.",
	}, []string{"namespace"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kasioon_cache_misses_total",
		Help: "Count of cache lookups that found nothing.",
	}, []string{"namespace"})

	// IntentClassified counts recognized intent kinds, including the
	// synthetic "classifier_failure" bucket used when the LLM's answer
	// couldn't be mapped to a closed IntentKind.
	IntentClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kasioon_intent_classified_total",
		Help: "Count of requests classified into each intent kind.",
	}, []string{"kind"})
)
