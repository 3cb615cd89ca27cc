package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/internxp/internal/adapters/blob"
	"github.com/okian/internxp/internal/adapters/http/api"
	"github.com/okian/internxp/internal/adapters/http/swagger"
	"github.com/okian/internxp/internal/adapters/mq/publisher"
	"github.com/okian/internxp/internal/adapters/repository"
	app "github.com/okian/internxp/internal/app"
	"github.com/okian/internxp/internal/config"
	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/pkg/logger"
	"github.com/okian/internxp/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
	certificateURLPrefix      = "/generated_certificates"
)

func main() {
	// Our registry carries its own system metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	pub, err := newPublisher(cfg, log)
	if err != nil {
		_ = store.Close()
		return err
	}
	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		_ = store.Close()
		return err
	}

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithStore(store),
		app.WithPublisher(pub),
		app.WithBlobStore(blobs),
		app.WithWorkerCount(cfg.PublisherWorkers),
		app.WithQueueSize(cfg.EventQueueSize),
		app.WithDedupeSize(cfg.IdempotencyCacheSize),
		app.WithLeaderboardLimit(cfg.LeaderboardLimit),
		app.WithDefaultXPReward(cfg.DefaultXPReward),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(ctx, "service stop failed", logger.Error(err))
		}
	}()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	opts := []api.Option{api.WithLogger(log.Named("api"))}
	if cfg.CertificateBucket == "" {
		opts = append(opts, api.WithCertificateDir(cfg.CertificateDir))
	}
	auth := api.NewAuthenticator(cfg.JWTSecret, api.WithDevPrincipal(cfg.AuthDevAllowLocal))
	router := api.NewServer(svc, auth, opts...).Router()
	swagger.Register(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.Storage != config.StoragePostgres {
		return repository.NewMemoryStore(), nil
	}
	pg, err := repository.OpenPG(ctx, cfg.DatabaseURL, repository.WithLogger(logger.Named("postgres")))
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}
	return pg, nil
}

func newPublisher(cfg *config.Config, log logger.Logger) (publisherCloser, error) {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return publisher.NewLog(log.Named("events")), nil
	}
	k, err := publisher.NewKafka(brokers, cfg.KafkaTopic, publisher.WithLogger(log.Named("kafka")))
	if err != nil {
		return nil, err
	}
	return k, nil
}

type publisherCloser interface {
	Publish(ctx context.Context, e model.AwardEvent) error
	Name() string
	Close() error
}

func newBlobStore(ctx context.Context, cfg *config.Config) (app.BlobStore, error) {
	if cfg.CertificateBucket != "" {
		s3, err := blob.NewS3Store(ctx, cfg.CertificateBucket, cfg.CertificatePrefix)
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	dir, err := blob.NewDirStore(cfg.CertificateDir, certificateURLPrefix)
	if err != nil {
		return nil, err
	}
	return dir, nil
}

func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges derived from the ledger.
func updateServiceMetrics(ctx context.Context, svc *app.Service) {
	stats, err := svc.Stats(ctx)
	if err != nil {
		return
	}
	metrics.UpdateQueueSize(stats.QueueDepth)
	metrics.UpdateCandidatesTotal(stats.Candidates)
}
