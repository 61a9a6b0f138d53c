// Package container wires up the gateway's dependency graph: config,
// storage, the model gateways, the search pipeline stages, the channel
// renderers, and the HTTP/asynq surfaces that sit on top of them.
package container

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/dig"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kasioon/search-gateway/internal/cache"
	"github.com/kasioon/search-gateway/internal/catalog"
	"github.com/kasioon/search-gateway/internal/channel/telegram"
	"github.com/kasioon/search-gateway/internal/channel/whatsapp"
	"github.com/kasioon/search-gateway/internal/config"
	"github.com/kasioon/search-gateway/internal/handler"
	"github.com/kasioon/search-gateway/internal/intent"
	"github.com/kasioon/search-gateway/internal/models/llm"
	"github.com/kasioon/search-gateway/internal/models/speech"
	"github.com/kasioon/search-gateway/internal/orchestrator"
	"github.com/kasioon/search-gateway/internal/planner"
	"github.com/kasioon/search-gateway/internal/render"
	"github.com/kasioon/search-gateway/internal/router"
	"github.com/kasioon/search-gateway/internal/search"
	"github.com/kasioon/search-gateway/internal/stats"
	esstore "github.com/kasioon/search-gateway/internal/store/elasticsearch"
	pgstore "github.com/kasioon/search-gateway/internal/store/postgres"
	"github.com/kasioon/search-gateway/internal/tracing"
	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

// BuildContainer registers every dependency the gateway needs and returns
// the same container, ready for c.Invoke.
func BuildContainer(container *dig.Container) *dig.Container {
	must(container.Provide(NewResourceCleaner, dig.As(new(interfaces.ResourceCleaner))))

	// Core infrastructure
	must(container.Provide(config.LoadConfig))
	must(container.Provide(initTracer))
	must(container.Provide(initDatabase))
	must(container.Provide(cache.NewCache))
	must(container.Provide(initAntsPool))
	must(container.Invoke(registerPoolCleanup))

	// Listing storage, catalog reference data, model gateways
	must(container.Provide(initListingStore))
	must(container.Provide(catalog.NewIndex))
	must(container.Provide(llm.NewGateway))
	must(container.Provide(speech.NewGateway))

	// Search pipeline stages
	must(container.Provide(intent.NewClassifier))
	must(container.Provide(planner.NewPlanner))
	must(container.Provide(initExecutor))
	must(container.Provide(stats.NewService))

	// Channel renderers, collected into the dig group initRenderers reads
	must(container.Provide(provideHTTPRenderer))
	must(container.Provide(provideTelegramRenderer))
	must(container.Provide(provideWhatsAppRenderer))
	must(container.Provide(initRenderers))

	must(container.Provide(orchestrator.New))

	// Channel adapters
	must(container.Provide(initTelegramBot))
	must(container.Provide(initWhatsAppClient))

	// HTTP handlers
	must(container.Provide(handler.NewSearchHandler))
	must(container.Provide(handler.NewVoiceHandler))
	must(container.Provide(initCategoryHandler))
	must(container.Provide(handler.NewSystemHandler))
	must(container.Provide(handler.NewTelegramWebhookHandler))
	must(container.Provide(initWhatsAppWebhookHandler))

	// Router and background catalog-refresh worker
	must(container.Provide(router.NewRouter))
	must(container.Provide(router.NewAsyncqClient))
	must(container.Provide(router.NewAsynqServer))
	must(container.Invoke(router.RunAsynqServer))
	must(container.Invoke(startCatalogRefreshTicker))

	return container
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func initTracer() (*tracing.Tracer, error) {
	return tracing.InitTracer()
}

// initDatabase opens the Postgres connection that backs catalog reference
// data (and, when Database.Driver is "postgres", listing storage too), and
// applies pending schema migrations.
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database == nil || cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database DSN is not configured")
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	if err := pgstore.Migrate(db); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return db, nil
}

// initListingStore selects the ListingStore backend named by Database.Driver
func initListingStore(cfg *config.Config, db *gorm.DB) (interfaces.ListingStore, error) {
	switch cfg.Database.Driver {
	case "elasticsearch":
		return esstore.NewStore(cfg.Database.ElasticURL, cfg.Database.ElasticIndex)
	case "postgres", "":
		return pgstore.NewStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported listing store driver: %s", cfg.Database.Driver)
	}
}

func initAntsPool(cfg *config.Config) (*ants.Pool, error) {
	workers := cfg.Search.Strategy5Workers
	if workers <= 0 {
		workers = 8
	}
	return ants.NewPool(workers, ants.WithPreAlloc(true))
}

func registerPoolCleanup(pool *ants.Pool, cleaner interfaces.ResourceCleaner) {
	cleaner.RegisterWithName("AntsPool", func() error {
		pool.Release()
		return nil
	})
}

func initExecutor(store interfaces.ListingStore, catalogIdx interfaces.CatalogIndex, c interfaces.Cache, pool *ants.Pool, cfg *config.Config) interfaces.SearchExecutor {
	minScore := cfg.Search.MinScoreThreshold
	if minScore == 0 {
		minScore = 30
	}
	return search.NewExecutor(store, catalogIdx, c, pool, minScore)
}

// renderersOut publishes one concrete renderer into the "renderers" group;
// this is how dig assembles the []interfaces.ChannelRenderer slice from
// three same-interface, differently-constructed providers.
type renderersOut struct {
	dig.Out
	Renderer interfaces.ChannelRenderer `group:"renderers"`
}

func provideHTTPRenderer() renderersOut     { return renderersOut{Renderer: render.NewHTTPRenderer()} }
func provideTelegramRenderer() renderersOut { return renderersOut{Renderer: render.NewTelegramRenderer()} }
func provideWhatsAppRenderer() renderersOut { return renderersOut{Renderer: render.NewWhatsAppRenderer()} }

type renderersIn struct {
	dig.In
	Renderers []interfaces.ChannelRenderer `group:"renderers"`
}

// initRenderers collects the grouped renderer providers into the plain
// slice the Orchestrator expects
func initRenderers(in renderersIn) []interfaces.ChannelRenderer {
	return in.Renderers
}

func initTelegramBot(cfg *config.Config) (*telegram.Bot, error) {
	return telegram.NewBot(cfg.Channels.TelegramBotToken)
}

func initWhatsAppClient(cfg *config.Config) *whatsapp.Client {
	return whatsapp.NewClient(cfg.Channels.WhatsAppAccessToken, cfg.Channels.WhatsAppPhoneID)
}

// initCategoryHandler wires the category browse route to the plain HTTP
// renderer, since a category browse is always answered as a JSON envelope
func initCategoryHandler(executor interfaces.SearchExecutor, catalogIdx interfaces.CatalogIndex, renderers []interfaces.ChannelRenderer) (*handler.CategoryHandler, error) {
	for _, r := range renderers {
		if r.Channel() == types.ChannelHTTP {
			return handler.NewCategoryHandler(executor, catalogIdx, r), nil
		}
	}
	return nil, fmt.Errorf("no HTTP renderer registered")
}

func initWhatsAppWebhookHandler(o *orchestrator.Orchestrator, client *whatsapp.Client, cfg *config.Config) *handler.WhatsAppWebhookHandler {
	return handler.NewWhatsAppWebhookHandler(o, client, cfg.Channels.WhatsAppVerifyToken)
}

// startCatalogRefreshTicker launches the periodic enqueue loop that keeps
// the CatalogIndex snapshot current; it runs for the life of the process.
func startCatalogRefreshTicker(client *asynq.Client, cfg *config.Config) {
	refreshInterval := cfg.Catalog.RefreshInterval
	router.ScheduleCatalogRefresh(context.Background(), client, refreshInterval)
}
