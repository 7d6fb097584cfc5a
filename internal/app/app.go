package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/external/pokeapi"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/config"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/metadata"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/pool"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/season"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/syncjob"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/team"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/transaction"
	cacherepo "github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/infrastructure/repository/cache"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/infrastructure/repository/memory"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/infrastructure/repository/postgres"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/interfaces/httpapi"
	basecache "github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/cache"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/logging"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/metrics"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/resilience"
	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/usecase"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

// App holds the HTTP server and the long-lived pieces that need an orderly
// shutdown.
type App struct {
	Server     *http.Server
	SyncRunner *usecase.MetadataSyncRunner

	db     *sqlx.DB
	logger *logging.Logger
}

type stores struct {
	seasons      season.Repository
	sources      []pool.Source
	pool         pool.Repository
	teams        team.Repository
	transactions transaction.Store
	metadata     metadata.Repository
	syncRuns     syncjob.Repository
	db           *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var appMetrics *metrics.Metrics
	if cfg.MetricsEnabled {
		appMetrics = metrics.New()
	}

	seasons := st.seasons
	var hotCache *basecache.Store
	if cfg.CacheEnabled {
		hotCache = basecache.NewStore(cfg.CacheTTL, cfg.CacheMaxEntries)
		seasons = cacherepo.NewSeasonRepository(st.seasons, hotCache)
	}

	provider := pokeapi.NewClient(pokeapi.ClientConfig{
		BaseURL:           cfg.PokeAPIBaseURL,
		Timeout:           cfg.PokeAPITimeout,
		MaxRetries:        cfg.PokeAPIMaxRetries,
		RequestsPerSecond: cfg.PokeAPIRequestsPerSecond,
		Logger:            logger,
		Metrics:           appMetrics,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.PokeAPICircuitEnabled,
			FailureThreshold: cfg.PokeAPICircuitFailures,
			OpenTimeout:      cfg.PokeAPICircuitOpenFor,
			HalfOpenMaxReq:   cfg.PokeAPICircuitHalfOpen,
		},
	})

	poolService := usecase.NewPoolService(
		seasons,
		st.sources,
		st.metadata,
		provider,
		usecase.PoolServiceConfig{ResolveConcurrency: cfg.ResolveMaxConcurrency},
		logger,
	)
	poolService.SetMetrics(appMetrics)
	if hotCache != nil {
		poolService.SetCache(hotCache)
	}

	syncRunner := usecase.NewMetadataSyncRunner(
		st.metadata,
		provider,
		st.syncRuns,
		nil,
		usecase.MetadataSyncConfig{
			MaxKnownID:       cfg.PokeAPIMaxKnownID,
			DefaultBatchSize: cfg.SyncDefaultBatchSize,
			MaxBatchSize:     cfg.SyncMaxBatchSize,
			DefaultRateLimit: cfg.SyncDefaultRateLimit,
		},
		logger,
	)
	syncRunner.SetMetrics(appMetrics)

	transactionService := usecase.NewTransactionService(
		st.teams,
		st.pool,
		st.transactions,
		nil,
		transaction.Rules{
			MinRosterSize:   cfg.MinRosterSize,
			MaxRosterSize:   cfg.MaxRosterSize,
			MaxTransactions: cfg.MaxTransactions,
		},
		logger,
	)
	transactionService.SetMetrics(appMetrics)

	routerCfg := httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	}
	if appMetrics != nil {
		routerCfg.MetricsHandler = appMetrics.Handler()
	}

	handler := httpapi.NewHandler(poolService, syncRunner, transactionService, logger)
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, logger, routerCfg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:     server,
		SyncRunner: syncRunner,
		db:         st.db,
		logger:     logger,
	}, nil
}

// Shutdown stops the running backfill, drains HTTP traffic and closes the
// database, in that order.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	a.SyncRunner.Cancel(ctx)
	if err := a.SyncRunner.Wait(ctx); err != nil {
		errs = append(errs, fmt.Errorf("wait for sync runner: %w", err))
	}
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	return errors.Join(errs...)
}

func openStores(ctx context.Context, cfg config.Config, logger *logging.Logger) (stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store", "reason", "STORE_DRIVER=memory")
		league := memory.NewLeagueStore(memory.SeedLeague())
		return stores{
			seasons:      league.Seasons(),
			sources:      []pool.Source{league.Pool()},
			pool:         league.Pool(),
			teams:        league.Teams(),
			transactions: league.Transactions(),
			metadata:     memory.NewMetadataRepository(memory.SeedMetadata()),
			syncRuns:     memory.NewSyncRunRepository(),
		}, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return stores{}, err
	}
	if cfg.DBSeedOnStart {
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			_ = db.Close()
			return stores{}, fmt.Errorf("seed database: %w", err)
		}
		logger.Info("database seed checked")
	}

	return stores{
		seasons:      postgres.NewSeasonRepository(db),
		sources:      postgres.NewPoolSources(db),
		pool:         postgres.NewPoolRepository(db),
		teams:        postgres.NewTeamRepository(db),
		transactions: postgres.NewTransactionStore(db),
		metadata:     postgres.NewMetadataRepository(db),
		syncRuns:     postgres.NewSyncRunRepository(db),
		db:           db,
	}, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open(
		"postgres",
		normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(max(cfg.DBMaxOpenConns/2, 1))

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
