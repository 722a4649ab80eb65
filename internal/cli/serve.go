package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagegraph-tools/pagegraph/internal/server"
	"github.com/pagegraph-tools/pagegraph/pkg/archive"
	"github.com/pagegraph-tools/pagegraph/pkg/cache"
)

// shutdownTimeout bounds how long in-flight requests may finish.
const shutdownTimeout = 10 * time.Second

// newServeCmd creates the serve command: an HTTP API over the decoder
// and the graph archive.
func newServeCmd() *cobra.Command {
	var (
		addr      string
		redisAddr string
		mongoURI  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the decode and archive API over HTTP",
		Long: `Serve the decode and archive API over HTTP.

Recordings are uploaded as raw GraphML bodies. Without --mongo-uri the
archive lives in memory and is lost on shutdown; without --redis-addr
decode results are not cached across requests.

Examples:
  pagegraph serve
  pagegraph serve --addr :9090 --redis-addr localhost:6379
  pagegraph serve --mongo-uri mongodb://localhost:27017`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if addr == "" {
				addr = ":8080"
			}
			if redisAddr == "" {
				redisAddr = cfg.Server.RedisAddr
			}
			if mongoURI == "" {
				mongoURI = cfg.Server.MongoURI
			}
			return runServe(cmd.Context(), addr, redisAddr, mongoURI)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "redis address for the decode cache")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "mongodb URI for the graph archive")

	return cmd
}

func runServe(ctx context.Context, addr, redisAddr, mongoURI string) error {
	logger := loggerFromContext(ctx)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newStore(ctx, mongoURI)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	c, err := newServeCache(ctx, redisAddr)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := server.New(server.Config{
		Store:  store,
		Cache:  c,
		Logger: logger,
	})

	httpSrv := &http.Server{
		Addr:    addr,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newStore picks the archive backend: MongoDB when a URI is
// configured, in-memory otherwise.
func newStore(ctx context.Context, mongoURI string) (archive.Store, error) {
	if mongoURI == "" {
		return archive.NewMemoryStore(), nil
	}
	return archive.NewMongoStore(ctx, archive.MongoConfig{URI: mongoURI})
}

// newServeCache picks the decode cache backend: Redis when an address
// is configured, the local file cache otherwise.
func newServeCache(ctx context.Context, redisAddr string) (cache.Cache, error) {
	if redisAddr == "" {
		return newCache(false)
	}
	return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr})
}
