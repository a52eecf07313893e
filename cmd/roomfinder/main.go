package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	availabilityapp "roomfinder/internal/app/handlers/availability"
	"roomfinder/internal/app/middleware"
	appoutbox "roomfinder/internal/app/outbox"
	"roomfinder/internal/app/policies"
	"roomfinder/internal/app/queries"
	"roomfinder/internal/app/tools"
	"roomfinder/internal/domain/pricing"
	"roomfinder/internal/domain/rooms"
	"roomfinder/internal/infra/broker/kafka"
	rediscache "roomfinder/internal/infra/cache/redis"
	"roomfinder/internal/infra/config"
	"roomfinder/internal/infra/db/mongo"
	"roomfinder/internal/infra/db/sqlite"
	ginserver "roomfinder/internal/infra/http/gin"
	"roomfinder/internal/infra/obs"
	"roomfinder/internal/infra/outbox"
	"roomfinder/internal/infra/pms"
	"roomfinder/internal/infra/storage/fs"
	"roomfinder/internal/infra/storage/memory"
	"roomfinder/internal/infra/storage/s3"
)

const serviceName = "roomfinder"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger := obs.NewLogger("dev")
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: app.ready}, app.handlers)

	if cfg.GRPCAddr != "" {
		if err := startGRPCHealth(ctx, cfg.GRPCAddr, app.ready, logger); err != nil {
			logger.Error("grpc health init failed", "error", err, "addr", cfg.GRPCAddr)
			os.Exit(1)
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

func startGRPCHealth(ctx context.Context, addr string, ready func(context.Context) error, logger *slog.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	health := obs.NewGRPCHealth(serviceName, logger)
	go health.Watch(ctx, 10*time.Second, ready)
	go func() {
		<-ctx.Done()
		logger.Info("shutting down grpc health server")
		health.Stop()
	}()
	go func() {
		logger.Info("grpc health server starting", "addr", addr)
		if err := health.Serve(lis); err != nil {
			logger.Error("grpc health server failed", "error", err)
		}
	}()
	return nil
}

type application struct {
	handlers ginserver.Handlers
	catalog  rooms.Catalog
	pingers  map[string]func(context.Context) error
	closers  []func() error
}

func (a *application) ready(ctx context.Context) error {
	if _, err := a.catalog.List(ctx); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	for name, ping := range a.pingers {
		if err := ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (a *application) close(logger *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{pingers: map[string]func(context.Context) error{}}

	var mongoClient *mongo.Client
	if cfg.CatalogBackend == config.CatalogMongo || cfg.WindowCacheBackend == config.CacheMongo {
		client, err := mongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		mongoClient = client
		app.pingers["mongo"] = client.Ping
		app.closers = append(app.closers, func() error {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Close(closeCtx)
		})
	}

	switch cfg.CatalogBackend {
	case config.CatalogMongo:
		app.catalog = mongo.NewRoomCatalog(mongoClient.DB)
	case config.CatalogSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite catalog: %w", err)
		}
		app.catalog = store
		app.closers = append(app.closers, store.Close)
	default:
		catalog, err := memory.LoadRoomCatalogFile(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		app.catalog = catalog
	}

	fetcher := &pms.Fetcher{
		CacheTTL:        cfg.WindowCacheTTL,
		ExpectedVersion: cfg.PMS.ExpectedVersion,
		Concurrency:     cfg.PMS.FetchConcurrency,
		Logger:          logger,
	}
	switch cfg.WindowCacheBackend {
	case config.CacheRedis:
		cache, err := rediscache.NewWindowCache(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		fetcher.Cache = cache
		app.pingers["redis"] = cache.Ping
		app.closers = append(app.closers, cache.Close)
	case config.CacheMongo:
		fetcher.Cache = mongo.NewWindowCache(mongoClient.DB)
	default:
		fetcher.Cache = memory.NewWindowCache()
	}
	if cfg.PMSConfigured() {
		policy := pms.DefaultRetryPolicy()
		policy.MaxAttempts = cfg.PMS.RetryMaxAttempts
		policy.BaseDelay = cfg.PMS.RetryBaseDelay
		policy.MaxDelay = cfg.PMS.RetryMaxDelay
		client, err := pms.NewClient(pms.Config{
			BaseURL: cfg.PMS.BaseURL,
			Credentials: pms.Credentials{
				HotelCode: cfg.PMS.HotelCode,
				Username:  cfg.PMS.Username,
				Password:  cfg.PMS.Password,
			},
			Timeout:   cfg.PMS.Timeout,
			TokenTTL:  cfg.PMS.TokenTTL,
			RateLimit: cfg.PMS.RateLimit,
			RateBurst: cfg.PMS.RateBurst,
			Retry:     policy,
		}, nil, logger)
		if err != nil {
			return nil, err
		}
		fetcher.Source = client
	} else {
		logger.Warn("PMS credentials missing, availability requests will fail until configured")
	}

	var images policies.ImageResolver = fs.ImageResolver{Dir: cfg.ImagesDir}
	if cfg.S3Endpoint != "" {
		resolver, err := s3.NewImageResolver(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, logger)
		if err != nil {
			return nil, err
		}
		images = resolver
	}

	var sink appoutbox.Sink
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, serviceName, nil)
		if err != nil {
			return nil, fmt.Errorf("kafka: %w", err)
		}
		app.closers = append(app.closers, producer.Close)
		sink = &outbox.Publisher{Producer: producer, TopicPrefix: cfg.KafkaTopicPrefix, Source: "app://" + serviceName}
	}

	deps := availabilityapp.Deps{
		Catalog: app.catalog,
		Fetcher: fetcher,
		Images:  images,
		Events:  sink,
		Encoder: appoutbox.JSONEventEncoder{},
		Logger:  logger,
	}
	queryBus := queries.NewInMemoryBus()
	availabilityapp.Register(queryBus,
		&availabilityapp.CheckRoomHandler{Deps: deps, Pricing: pricing.NewCalculator(cfg.ExtraBedRate)},
		&availabilityapp.FindWindowsHandler{Deps: deps, Limit: cfg.WindowsResultLimit},
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(middleware.SelfValidating{}),
	)

	app.handlers = ginserver.Handlers{
		Tools: ginserver.ToolsHandler{
			Dispatcher: tools.Dispatcher{Queries: queryBusWithMiddleware, Logger: logger},
		},
	}
	logger.Info("application wired",
		"catalog", cfg.CatalogBackend,
		"window_cache", cfg.WindowCacheBackend,
		"events", sink != nil,
		"queries", queryBus.Keys(),
	)
	if _, err := app.catalog.List(ctx); err != nil {
		logger.Warn("room catalog not ready", "error", err)
	}
	return app, nil
}
