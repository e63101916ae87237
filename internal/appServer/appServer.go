package appServer

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shortly/config"
	"shortly/internal/database"
	"shortly/internal/database/postgres"
	redisrepo "shortly/internal/database/redis"
	"shortly/internal/pkg/kafka"
	"shortly/internal/service"
	"shortly/internal/transport"
	"shortly/internal/worker"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	linkRepo := postgres.NewLinkRepository(db)
	clickRepo := postgres.NewClickRepository(db)

	var cacheRepo database.CacheRepository
	redisClient, err := redisrepo.NewRedisClient(&cfg.Redis)
	if err != nil {
		logrus.Errorf("Failed to connect to Redis: %v. Continuing without cache...", err)
	} else {
		defer redisClient.Close()
		cacheRepo = redisrepo.NewCacheRepository(redisClient, cfg.App.CacheTTL)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The click pipeline: the channel collector always feeds the batch
	// worker; with Kafka enabled the redirect path publishes to the
	// broker instead and the consumer refills the same channel.
	channelCollector := worker.NewChannelCollector(cfg.Worker.BufferSize)
	clickWorker := worker.NewClickWorker(clickRepo, linkRepo, channelCollector, cfg.Worker.BatchSize, cfg.Worker.FlushInterval)
	go clickWorker.Run(ctx)

	var collector worker.Collector = channelCollector
	var consumerDone chan struct{}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		collector = producer

		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, channelCollector)
		defer consumer.Close()
		consumerDone = make(chan struct{})
		go func() {
			consumer.Run(ctx)
			close(consumerDone)
		}()
		logrus.Info("Kafka click pipeline enabled")
	}

	recorder := service.NewClickRecorder(collector)

	// Initialize services
	linkService := service.NewLinkService(linkRepo, cacheRepo, recorder, service.LinkServiceConfig{
		BaseURL:         cfg.App.BaseURL,
		MaxAttempts:     cfg.Generation.MaxAttempts,
		BulkMaxAttempts: cfg.Generation.BulkMaxAttempts,
	})
	analyticsService := service.NewAnalyticsService(linkRepo, clickRepo)

	// Initialize handlers
	linkHandler := transport.NewLinkHandler(linkService)
	analyticsHandler := transport.NewAnalyticsHandler(analyticsService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(linkHandler, analyticsHandler)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	// Stop the pipeline after the HTTP server: in-flight redirects may
	// still be handing events to the collector. The consumer must be
	// joined before the channel closes, it writes into the same buffer.
	cancel()
	if consumerDone != nil {
		<-consumerDone
	}
	channelCollector.Close()
}
