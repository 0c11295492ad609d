package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/DrugRx-Intelligence/internal/application/assistant"
	"github.com/turtacn/DrugRx-Intelligence/internal/config"
	"github.com/turtacn/DrugRx-Intelligence/internal/domain/drug"
	infraNeo4j "github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/DrugRx-Intelligence/internal/infrastructure/tts"
	"github.com/turtacn/DrugRx-Intelligence/internal/intelligence/llm"
	httpiface "github.com/turtacn/DrugRx-Intelligence/internal/interfaces/http"
	"github.com/turtacn/DrugRx-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/DrugRx-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/DrugRx-Intelligence/pkg/errors"
)

func newServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			return runServer(cfg, log)
		},
	}
}

func runServer(cfg *config.Config, log logging.Logger) error {
	// The knowledge store being unreachable at startup is survivable; the
	// pipeline degrades to language-service answers until it comes back.
	repo, closeStore := connectStore(cfg, log)
	defer closeStore()

	client, err := llm.NewClient(cfg.LLM, log.Named("llm"))
	if err != nil {
		return err
	}

	cache := assistant.NewLookupCache()
	assembler := assistant.NewAssembler(
		assistant.NewExtractor(client, log.Named("extractor")),
		assistant.NewDrugResolver(repo, cache, log.Named("resolver")),
		assistant.NewIngredientResolver(client, repo, cache, log.Named("ingredients")),
		assistant.NewInteractionChecker(repo, cache, log.Named("interactions")),
		log.Named("assembler"),
	)

	collector := prometheus.NewNopCollector()
	if cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, log.Named("metrics"))
		if err != nil {
			return err
		}
	}
	appMetrics := prometheus.NewAppMetrics(collector)
	stats := prometheus.NewRuntimeStats()

	recorder := prometheus.NewRecorder(appMetrics, stats)
	recorder.SetCacheSizes(cache.Sizes)
	cache.SetObserver(recorder)

	service := assistant.NewService(assembler, client, cache, recorder, log.Named("assistant"))

	synth := tts.NewSynthesizer(cfg.TTS, log.Named("tts"))

	corsDefaults := middleware.DefaultCORSConfig()
	router := httpiface.NewRouter(httpiface.RouterConfig{
		ChatHandler:   handlers.NewChatHandler(service, log.Named("chat")),
		HealthHandler: handlers.NewHealthHandler(repo, log.Named("health")),
		AudioHandler:  handlers.NewAudioHandler(synth, log.Named("audio")),
		StatsHandler:  handlers.NewStatsHandler(stats, repo, log.Named("stats")),
		CORS: middleware.CORSConfig{
			AllowOrigins: cfg.Server.AllowOrigins,
			AllowMethods: corsDefaults.AllowMethods,
			AllowHeaders: corsDefaults.AllowHeaders,
			MaxAge:       corsDefaults.MaxAge,
		},
		Logging:    middleware.DefaultLoggingConfig(),
		Logger:     log.Named("http"),
		Collector:  collector,
		AppMetrics: appMetrics,
		Mode:       cfg.Server.Mode,
	})

	server := httpiface.NewServer(cfg.Server, router, log.Named("server"))

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutdown signal received", logging.String("signal", sig.String()))
		return server.Stop(context.Background())
	}
}

// connectStore dials the knowledge store and returns the repository plus a
// close function.  On failure it logs and returns unavailableStore so the
// process still starts; the pipeline serves degraded answers until restart.
func connectStore(cfg *config.Config, log logging.Logger) (drug.Repository, func()) {
	driver, err := infraNeo4j.NewDriver(infraNeo4j.Config{
		URI:                          cfg.Neo4j.URI,
		Username:                     cfg.Neo4j.User,
		Password:                     cfg.Neo4j.Password,
		Database:                     cfg.Neo4j.Database,
		MaxConnectionPoolSize:        cfg.Neo4j.MaxConnectionPoolSize,
		ConnectionAcquisitionTimeout: cfg.Neo4j.ConnectionTimeout,
	}, log.Named("neo4j"))
	if err != nil {
		log.Warn("knowledge store unreachable, starting degraded", logging.Err(err))
		return unavailableStore{}, func() {}
	}
	repo := repositories.NewDrugRepository(driver, log.Named("drugs"))
	return repo, func() {
		if err := driver.Close(); err != nil {
			log.Warn("knowledge store close failed", logging.Err(err))
		}
	}
}

// unavailableStore stands in for the repository when the store could not be
// dialed; every call reports unavailability, which the pipeline degrades to
// empty evidence.
type unavailableStore struct{}

func storeDownErr() error {
	return errors.New(errors.ErrCodeStoreUnavailable, "knowledge store is not connected")
}

func (unavailableStore) FindByName(context.Context, string) (*drug.Record, error) {
	return nil, storeDownErr()
}

func (unavailableStore) SearchByKeyword(context.Context, string) ([]drug.Record, error) {
	return nil, storeDownErr()
}

func (unavailableStore) FindInteractions(context.Context, []string) ([]drug.Interaction, error) {
	return nil, storeDownErr()
}

func (unavailableStore) ImportInteractions(context.Context, []drug.InteractionRow) (int, error) {
	return 0, storeDownErr()
}

func (unavailableStore) SchemaSummary(context.Context) (*drug.SchemaSummary, error) {
	return nil, storeDownErr()
}

func (unavailableStore) HealthCheck(context.Context) error { return storeDownErr() }
