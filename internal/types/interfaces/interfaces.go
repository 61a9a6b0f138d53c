// Package interfaces collects the contracts the orchestrator wires
// together: each concrete package in internal/ implements one of these
// against the shared internal/types data model.
package interfaces

import (
	"context"
	"io"

	"github.com/kasioon/search-gateway/internal/types"
)

// ResourceCleaner accumulates shutdown hooks and runs them in reverse
// registration order when the process terminates.
type ResourceCleaner interface {
	Register(cleanup types.CleanupFunc)
	RegisterWithName(name string, cleanup types.CleanupFunc)
	Cleanup(ctx context.Context) []error
	Reset()
}

// CatalogIndex serves the read-only, periodically-refreshed snapshot of
// categories, cities, neighborhoods, transaction types and attributes.
type CatalogIndex interface {
	Categories() []*types.Category
	CategoryBySlug(slug string) (*types.Category, bool)
	IsLeaf(slug string) bool
	LeafCategories() []*types.Category
	Cities() []*types.City
	LookupCity(text string, lang types.Language) (*types.City, bool)
	Neighborhoods(cityID string) []*types.Neighborhood
	TransactionTypes() []*types.TransactionType
	AttributesFor(categorySlug string) []*types.Attribute
	ExpandKeyword(keyword string, lang types.Language) []string
	// NearestLeafByEmbedding is the pgvector-backed fallback the Query
	// Planner's deepen step uses when the LLM deepen call yields no leaf; it must
	// only ever return a slug for which IsLeaf reports true.
	NearestLeafByEmbedding(ctx context.Context, embedding []float32) (string, bool)
	Refresh(ctx context.Context) error
}

// Cache is the read-through cache every stage consults before doing
// expensive work (LLM calls, DB scans) and populates afterward.
type Cache interface {
	Get(ctx context.Context, namespace, key string, dest any) (bool, error)
	Set(ctx context.Context, namespace, key string, value any, ttl TTLClass) error
	Delete(ctx context.Context, namespace, key string) error
	DeletePattern(ctx context.Context, namespace, pattern string) error
}

// TTLClass names one of the cache's fixed retention tiers; concrete
// durations live in config, not in caller code.
type TTLClass string

const (
	TTLIntent     TTLClass = "intent"
	TTLQueryPlan  TTLClass = "query_plan"
	TTLSearch     TTLClass = "search"
	TTLCatalog    TTLClass = "catalog"
	TTLStats      TTLClass = "stats"
)

// ChatMessage is a single turn in an LLM chat exchange
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes a single LLM Gateway call
type ChatOptions struct {
	Temperature float32
	JSONMode    bool
	MaxTokens   int
}

// LLMGateway abstracts the remote/local chat model dispatch
type LLMGateway interface {
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbeddingDimension() int
}

// SpeechGateway transcribes uploaded audio into text for voice search
type SpeechGateway interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string, lang types.Language) (string, error)
}

// IntentClassifier turns a raw utterance into a closed-variant Intent
type IntentClassifier interface {
	Classify(ctx context.Context, query string, lang types.Language) (*types.Intent, error)
}

// QueryPlanner turns a search-intent query into a structured QueryPlan
type QueryPlanner interface {
	Plan(ctx context.Context, query string, lang types.Language) (*types.QueryPlan, error)
}

// SearchExecutor runs the strategy ladder against the ListingStore and
// returns ranked, scored results.
type SearchExecutor interface {
	Execute(ctx context.Context, plan *types.QueryPlan, lang types.Language, page, limit int) ([]*types.RankedResult, types.SearchStrategy, int, error)
}

// ListingStore is the storage-backend contract the Search Executor and
// Stats service run queries against; Postgres and Elasticsearch
// implementations are selected by config.
type ListingStore interface {
	Search(ctx context.Context, q ListingQuery) ([]*types.Listing, int, error)
	MostViewed(ctx context.Context, limit int) ([]*types.Listing, error)
	MostImpressioned(ctx context.Context, limit int) ([]*types.Listing, error)
	ListOffices(ctx context.Context, limit int) ([]*types.Office, error)
	OfficeByIDOrName(ctx context.Context, idOrName string) (*types.Office, bool, error)
	OfficeListings(ctx context.Context, officeID string, page, limit int) ([]*types.Listing, int, error)
	AttributesForListings(ctx context.Context, listingIDs []string) (map[string][]types.AttributeValue, error)
	// CountListingsByOffice reports how many of an office's listings are
	// currently active versus its all-time total, for OfficeDetails.
	CountListingsByOffice(ctx context.Context, officeID string) (active int, total int, err error)
}

// ListingQuery is the storage-agnostic shape the Search Executor builds
// for one rung of the strategy ladder.
type ListingQuery struct {
	Keywords        []string
	CategorySlugs   []string
	CityID          string
	NeighborhoodID  string
	TransactionType types.TransactionTypeSlug
	RequireLocation bool
	RequireCategory bool
	Page            int
	Limit           int
}

// StatsService answers the non-search intents (most viewed, offices, ...)
type StatsService interface {
	MostViewed(ctx context.Context, limit int) ([]*types.Listing, error)
	MostImpressioned(ctx context.Context, limit int) ([]*types.Listing, error)
	ListOffices(ctx context.Context, limit int) ([]*types.Office, error)
	OfficeDetails(ctx context.Context, idOrName string) (*types.Office, error)
	OfficeListings(ctx context.Context, officeID string, page, limit int) ([]*types.Listing, int, error)
}

// ChannelRenderer renders a search/stats result for one output channel
type ChannelRenderer interface {
	Channel() types.Channel
	RenderResults(ctx context.Context, results []*types.RankedResult, strategy types.SearchStrategy, total int, lang types.Language) (*types.ChannelReply, error)
	RenderListings(ctx context.Context, listings []*types.Listing, lang types.Language) (*types.ChannelReply, error)
	RenderOffices(ctx context.Context, offices []*types.Office, lang types.Language) (*types.ChannelReply, error)
	RenderOffice(ctx context.Context, office *types.Office, lang types.Language) (*types.ChannelReply, error)
	RenderError(ctx context.Context, err error, lang types.Language) *types.ChannelReply
	RenderGreeting(ctx context.Context, lang types.Language) *types.ChannelReply
	RenderHelp(ctx context.Context, lang types.Language) *types.ChannelReply
}
