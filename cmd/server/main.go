package main

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/anistream/internal/affiliate"
	"github.com/example/anistream/internal/analytics"
	"github.com/example/anistream/internal/anilist"
	"github.com/example/anistream/internal/handlers"
	"github.com/example/anistream/internal/jikan"
	"github.com/example/anistream/internal/platform/auth"
	"github.com/example/anistream/internal/platform/cache"
	"github.com/example/anistream/internal/platform/config"
	"github.com/example/anistream/internal/platform/db"
	"github.com/example/anistream/internal/platform/httpserver"
	"github.com/example/anistream/internal/platform/logging"
	"github.com/example/anistream/internal/platform/natsconn"
	"github.com/example/anistream/internal/platform/run"
	"github.com/example/anistream/internal/pricing"
	"github.com/example/anistream/internal/resolve"
	"github.com/example/anistream/internal/seasonal"
	"github.com/example/anistream/internal/store"
	"github.com/example/anistream/internal/tmdb"
)

const searchCacheTTL = 5 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	runner := run.New(log)
	run.Exit(runner.WithSignals(func(ctx context.Context) error {
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := store.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		catalogStore := store.NewPostgresCatalogStore(pool)

		var searchCache *cache.RedisCache
		if cfg.RedisURL != "" {
			searchCache, err = cache.NewRedisCache(cfg.RedisURL, searchCacheTTL)
			if err != nil {
				log.Warn("redis unavailable, search cache disabled", zap.Error(err))
				searchCache = nil
			}
		}

		var publisher *analytics.Publisher
		if cfg.NATSURL != "" {
			nc, err := natsconn.Connect(natsconn.Options{URL: cfg.NATSURL})
			if err != nil {
				log.Warn("nats unavailable, analytics disabled", zap.Error(err))
			} else {
				defer nc.Close()
				js, err := nc.JetStream(nats.PublishAsyncMaxPending(256))
				if err != nil {
					log.Warn("jetstream unavailable, analytics disabled", zap.Error(err))
				} else {
					publisher = analytics.New(js, log)
				}
			}
		}

		anilistSource := anilist.NewSource(anilist.New(""), log)
		tmdbSource := tmdb.NewSource(tmdb.New("", cfg.TMDBAPIKey), log)
		jikanSource := jikan.NewSource(jikan.New(""), log)

		pipeline := &resolve.Pipeline{
			Store:   catalogStore,
			AniList: anilistSource,
			Sources: map[string]resolve.PlatformSource{
				"tmdb":    tmdbSource,
				"anilist": anilistSource,
			},
			LookupOrder: resolve.ParseLookupOrder(cfg.PlatformLookupOrder),
			Log:         log,
		}

		h := &handlers.Handlers{
			Store:     catalogStore,
			Pipeline:  pipeline,
			Checker:   pricing.NewChecker(catalogStore, publisher, log),
			Syncer:    seasonal.NewSyncer(catalogStore, jikanSource, publisher, log),
			Cache:     searchCache,
			Analytics: publisher,
			Affiliate: affiliate.Config{
				CrunchyrollID: cfg.CrunchyrollAffiliateID,
				AmazonTag:     cfg.AmazonAffiliateID,
			},
			Log: log,
		}

		r := chi.NewRouter()
		httpserver.SetupRouter(r, httpserver.RouterConfig{
			ReadyFunc: func() error {
				pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return pool.Ping(pingCtx)
			},
		})
		h.Mount(r, handlers.RouteConfig{
			Verifier:    auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)},
			CronSecret:  cfg.CronSecret,
			EnforceCron: cfg.IsProduction(),
			Limiter:     httpserver.NewRateLimiter(20, 40),
		})

		srv := httpserver.New(httpserver.Options{
			Addr:        cfg.HTTP.Addr,
			ServiceName: cfg.ServiceName,
			Logger:      log,
			Router:      r,
		})
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		log.Info("service starting",
			zap.String("service", cfg.ServiceName),
			zap.String("env", cfg.Env),
			zap.Strings("platform_lookup_order", pipeline.LookupOrder))
		return srv.Start(log)
	}))
}
