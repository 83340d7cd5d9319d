package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/tair/omnichannel-catalog/docs"
	"github.com/tair/omnichannel-catalog/internal/catalog"
	grpcDelivery "github.com/tair/omnichannel-catalog/internal/catalog/delivery/grpc"
	httpDelivery "github.com/tair/omnichannel-catalog/internal/catalog/delivery/http"
	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/lock"
	"github.com/tair/omnichannel-catalog/internal/catalog/repository"
	"github.com/tair/omnichannel-catalog/kafka"
	"github.com/tair/omnichannel-catalog/pkg/logger"
	"github.com/tair/omnichannel-catalog/pkg/tracing"
)

var serveInMemory bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC servers",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveInMemory, "memory", false, "use an in-memory store instead of PostgreSQL")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.Options{
			ServiceName:    cfg.Service.Name,
			Version:        version,
			Environment:    cfg.Service.Environment,
			JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
			SampleRatio:    cfg.Tracing.SampleRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shut down tracer")
			}
		}()
	} else {
		tracing.SetPropagator()
	}

	// Store
	var (
		store  domain.CatalogStore
		pinger httpDelivery.Pinger
	)
	if serveInMemory {
		logger.Logger.Warn().Msg("Running with in-memory store, data is lost on exit")
		store = repository.NewInMemoryCatalogStore()
	} else {
		gormStore, closeDB, err := openGormStore(ctx)
		if err != nil {
			return err
		}
		defer closeDB()
		if err := gormStore.AutoMigrate(); err != nil {
			return err
		}
		store = gormStore
		pinger = gormStore
	}
	store = repository.NewTracingCatalogStore(store)

	// Cross-replica product locks
	var locker lock.Locker = lock.NopLocker{}
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		locker = lock.NewRedisLocker(client, cfg.Redis.LockTTL)
	}

	// Events out
	var publisher domain.EventPublisher = domain.NopPublisher{}
	if cfg.Kafka.Enabled {
		p, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
	}

	svc, err := catalog.InitializeService(store, locker, publisher, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	// Events in
	if cfg.Kafka.Enabled {
		consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{cfg.Kafka.StockTopic})
		if err != nil {
			return err
		}
		defer consumer.Close()
		svc.StockListener.Register(consumer)
		if err := consumer.Start(ctx); err != nil {
			return err
		}
	}

	// HTTP
	router := mux.NewRouter()
	svc.HTTP.RegisterRoutes(router)
	httpDelivery.RegisterHealthCheck(router, pinger)
	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.WrapHandler)
	router.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      otelhttp.NewHandler(c.Handler(router), "catalog-http"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// gRPC
	grpcServer, healthServer := grpcDelivery.NewServer(svc.GRPC)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", cfg.Server.GRPCPort, err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Logger.Info().Int("port", cfg.Server.HTTPPort).Msg("HTTP server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		logger.Logger.Info().Int("port", cfg.Server.GRPCPort).Msg("gRPC server starting")
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Logger.Info().Msg("Shutting down servers...")
	case err = <-errCh:
		logger.Logger.Error().Err(err).Msg("Server stopped unexpectedly")
	}

	healthServer.Shutdown()
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Logger.Error().Err(shutdownErr).Msg("HTTP server shutdown failed")
	}
	return err
}
