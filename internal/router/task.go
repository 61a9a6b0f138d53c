package router

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/dig"

	"github.com/kasioon/search-gateway/internal/types"
	"github.com/kasioon/search-gateway/internal/types/interfaces"
)

// AsynqTaskParams is the dig-injected dependency set the catalog-refresh
// worker needs
type AsynqTaskParams struct {
	dig.In

	Server  *asynq.Server
	Catalog interfaces.CatalogIndex
}

func getAsynqRedisClientOpt() *asynq.RedisClientOpt {
	opt := &asynq.RedisClientOpt{
		Addr:         os.Getenv("REDIS_ADDR"),
		Password:     os.Getenv("REDIS_PASSWORD"),
		ReadTimeout:  100 * time.Millisecond,
		WriteTimeout: 200 * time.Millisecond,
		DB:           0,
	}
	return opt
}

// NewAsyncqClient constructs the client a ticker goroutine uses to enqueue
// periodic catalog-refresh tasks
func NewAsyncqClient() *asynq.Client {
	opt := getAsynqRedisClientOpt()
	client := asynq.NewClient(opt)
	return client
}

// NewAsynqServer constructs the worker-side server that processes those tasks
func NewAsynqServer() *asynq.Server {
	opt := getAsynqRedisClientOpt()
	srv := asynq.NewServer(
		opt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)
	return srv
}

// RunAsynqServer wires the catalog-refresh handler into the worker mux and
// starts serving in the background
func RunAsynqServer(params AsynqTaskParams) *asynq.ServeMux {
	mux := asynq.NewServeMux()

	mux.HandleFunc(types.TypeCatalogRefresh, func(ctx context.Context, _ *asynq.Task) error {
		return params.Catalog.Refresh(ctx)
	})

	go func() {
		if err := params.Server.Run(mux); err != nil {
			log.Fatalf("could not run asynq server: %v", err)
		}
	}()
	return mux
}

// ScheduleCatalogRefresh starts a ticker goroutine that enqueues a catalog
// refresh task on the configured interval; it runs until ctx is cancelled.
func ScheduleCatalogRefresh(ctx context.Context, client *asynq.Client, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				task := asynq.NewTask(types.TypeCatalogRefresh, nil)
				if _, err := client.Enqueue(task); err != nil {
					log.Printf("failed to enqueue catalog refresh task: %v", err)
				}
			}
		}
	}()
}
