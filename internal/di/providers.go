package di

import (
	"fmt"

	"candlerelay/internal/domain/repository"
	"candlerelay/internal/handler/api"
	"candlerelay/internal/handler/ws"
	internalrepo "candlerelay/internal/repository"
	"candlerelay/internal/usecase"
	"candlerelay/pkg/cache"
	pkgch "candlerelay/pkg/clickhouse"
	"candlerelay/pkg/config"
	xhttp "candlerelay/pkg/http"
	applogger "candlerelay/pkg/logger"
	"candlerelay/pkg/metrics"
	"candlerelay/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(cfg.ClickHouse.MaxOpenConns, cfg.ClickHouse.MaxIdleConns),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.CommandTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideCandleStore creates the ClickHouse candle repository.
func ProvideCandleStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.CandleStore {
	table := fmt.Sprintf("%s.%s", cfg.ClickHouse.Database, cfg.ClickHouse.Table)
	store := internalrepo.NewClickHouseCandleStore(chClient, table, cfg.ClickHouse.CommandTimeout)
	store.SetLogger(l)
	return store
}

// ProvideCache creates the symbols cache backend, or nil when disabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Backend == "redis" {
		c, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideLimitPolicy maps configured result-set bounds.
func ProvideLimitPolicy(cfg *config.Config) usecase.LimitPolicy {
	return usecase.LimitPolicy{
		Max:            cfg.Limits.MaxLimit,
		SymbolsDefault: cfg.Limits.SymbolsDefault,
		CandlesDefault: cfg.Limits.CandlesDefault,
		DefaultTfMin:   cfg.Limits.DefaultTfMin,
	}
}

// ProvideStepPolicy maps configured replay pacing bounds.
func ProvideStepPolicy(cfg *config.Config) usecase.StepPolicy {
	return usecase.StepPolicy{
		Min:     cfg.Replay.MinStepSeconds,
		Max:     cfg.Replay.MaxStepSeconds,
		Default: cfg.Replay.DefaultStepSeconds,
	}
}

// ProvideMarketData creates the query-layer use case.
func ProvideMarketData(
	store repository.CandleStore,
	m repository.Metrics,
	l *applogger.Logger,
	c cache.Service,
	cfg *config.Config,
) *usecase.MarketData {
	md := usecase.NewMarketData(store, m, l)
	if c != nil {
		md.SetCache(c, cfg.Cache.TTL)
	}
	return md
}

// ProvideReplayEngine creates the replay use case.
func ProvideReplayEngine(
	store repository.CandleStore,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ReplayEngine {
	return usecase.NewReplayEngine(store, m, l, cfg.Replay.HistoryLimit)
}

// ProvideMarketHandler creates the REST handler.
func ProvideMarketHandler(l *applogger.Logger, md *usecase.MarketData, limits usecase.LimitPolicy) *api.MarketHandler {
	return api.NewMarketHandler(l, md, limits)
}

// ProvideReplayHandler creates the WebSocket replay handler.
func ProvideReplayHandler(l *applogger.Logger, engine *usecase.ReplayEngine, limits usecase.LimitPolicy, steps usecase.StepPolicy) *ws.ReplayHandler {
	return ws.NewReplayHandler(l, engine, limits, steps)
}

// ProvideHTTPServer assembles the Echo server with all route handlers.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	market *api.MarketHandler,
	replay *ws.ReplayHandler,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	}
	if cfg.Server.RateLimit.Enabled {
		opts = append(opts, xhttp.WithRateLimit(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst))
	}
	return xhttp.NewServer([]xhttp.Handler{market, replay}, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	chClient *pkgch.Client,
	c cache.Service,
) *server.App {
	return server.New(cfg, l, httpServer, chClient, c)
}
