package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/config"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/publisher"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/repository"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/routes"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/services"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/pkg/logger"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logr := logger.New(cfg.LogLevel, cfg.LogFormat)
	logr.Info("starting api gateway", slog.String("app", cfg.AppName))

	metrics.Init()

	rdb, err := repository.NewClient(cfg.RedisURL, cfg.RedisPoolSize)
	if err != nil {
		logr.Error("failed to connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer rdb.Close()

	guard := repository.NewIdempotencyGuard(rdb, cfg.IdempotencyTTL)
	statusStore := repository.NewStatusStore(rdb, cfg.StatusTTL)

	var history *repository.StatusHistory
	if cfg.DatabaseURL != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			logr.Error("failed to connect database", slog.Any("error", err))
			os.Exit(1)
		}
		history, err = repository.NewStatusHistory(db, cfg.StatusTable)
		if err != nil {
			logr.Error("failed to migrate status history", slog.Any("error", err))
			os.Exit(1)
		}
	}
	recorder := services.NewStatusRecorder(statusStore, history, logr)

	var userClient *services.UserClient
	if cfg.UserServiceURL != "" {
		userClient = services.NewUserClient(cfg.UserServiceURL, cfg.LookupTimeout)
	}
	var enricher services.Enricher
	if cfg.EnrichMessages {
		templateClient := services.NewTemplateClient(cfg.TemplateServiceURL, cfg.LookupTimeout)
		enricher = services.NewLookupEnricher(userClient, templateClient)
	}
	composer := services.NewComposer(enricher)

	// Broker bootstrap is fatal on failure: the gateway must not serve
	// without a working exchange behind it.
	connector := publisher.NewConnector(cfg.RabbitURL, cfg.InitialBackoff, cfg.MaxBackoff, logr)
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	conn, amqpCh, err := connector.Bootstrap(bootCtx, publisher.Topology{
		Exchange:    cfg.ExchangeName,
		EmailQueue:  cfg.EmailQueue,
		PushQueue:   cfg.PushQueue,
		FailedQueue: cfg.FailedQueue,
	})
	cancelBoot()
	if err != nil {
		logr.Error("broker bootstrap failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pub := publisher.NewPublisher(cfg.ExchangeName, logr)
	go func() {
		if err := pub.Run(ctx, amqpCh); err != nil && ctx.Err() == nil {
			logr.Error("publisher loop exited", slog.Any("error", err))
		}
	}()

	dispatcher := services.NewDispatcher(guard, composer, pub, recorder, logr)

	var userProxy routes.UserProxy
	if userClient != nil {
		userProxy = userClient
	}
	handler := routes.NewHandler(dispatcher, recorder, userProxy, connector.Ready, logr)
	srv := startHTTPServer(cfg.HTTPAddr, routes.NewRouter(handler), logr)

	<-ctx.Done()
	shutdownHTTP(srv, logr)
	logr.Info("api gateway stopped")
}

func startHTTPServer(addr string, handler http.Handler, logr *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	go func() {
		logr.Info("http server listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Error("http server error", slog.Any("error", err))
		}
	}()
	return srv
}

func shutdownHTTP(srv *http.Server, logr *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("failed to shutdown http server", slog.Any("error", err))
	}
}
