// Orders service
//
//	@title			Storefront Orders API
//	@version		1.0
//	@description	Order placement, cancellation and admin status management.
//	@BasePath		/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	_ "storefront/docs/swagger"
	"storefront/internal/orders/adapters"
	"storefront/internal/orders/adapters/memory"
	"storefront/internal/orders/application"
	"storefront/internal/orders/infrastructure"
	"storefront/internal/orders/ports"
	"storefront/pkg/auth"
	"storefront/pkg/config"
	"storefront/pkg/db"
	"storefront/pkg/events"
	grpcpkg "storefront/pkg/grpc"
	"storefront/pkg/kafka"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/pkg/middleware"
	"storefront/pkg/rabbitmq"
	"storefront/pkg/tls"
)

func main() {
	// Load configuration
	cfg := config.LoadForService("ORDERS")

	// Initialize logger
	log := logger.NewWithOptions(logger.Options{
		Service: "orders-service",
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	defer log.Sync()

	log.Info("starting orders service",
		zap.String("env", cfg.Env),
		zap.String("storage", cfg.Storage),
		zap.String("events", cfg.EventsBackend),
	)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	verifier := auth.NewTokenVerifier(cfg.JWTSecret)

	deps := application.OrderUseCaseDeps{Log: log}
	setupStorage(cfg, log, &deps)

	publisher, closePublisher := setupPublisher(cfg, log)
	defer closePublisher()
	if publisher != nil {
		deps.Publisher = publisher
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if cfg.MetricsEnabled {
		deps.Metrics = adapters.NewPrometheusMetrics(registry)
	}

	// Initialize use case
	useCase := application.NewOrderUseCase(deps)

	// Start HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log, cfg.Debug()))
	router.Use(middleware.CORS())
	if cfg.MetricsEnabled {
		router.Use(metrics.NewServerMetrics(registry, "orders").Middleware())
		router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))
	}

	api := router.Group("/api/v1")
	infrastructure.NewHTTPHandler(useCase).RegisterRoutes(api, verifier)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	go func() {
		if cfg.TLSEnabled {
			tlsConfig, err := tls.ServerConfig(cfg.TLSCertFile, cfg.TLSKeyFile, "", false)
			if err != nil {
				log.Fatal("failed to load TLS config", zap.Error(err))
			}
			httpServer.Addr = ":" + cfg.HTTPSPort
			httpServer.TLSConfig = tlsConfig
			log.Info("HTTPS server listening on :" + cfg.HTTPSPort)
			if err := httpServer.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
				log.Fatal("HTTPS server error", zap.Error(err))
			}
			return
		}

		log.Info("HTTP server listening on :" + cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Start gRPC server
	grpcServer := setupGRPCServer(cfg, log, verifier, useCase)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen for gRPC", zap.Error(err))
	}

	go func() {
		log.Info("gRPC server listening on :" + cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("gRPC server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down servers...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown error", zap.Error(err))
	}

	log.Info("servers stopped")
}

// setupStorage fills the persistence ports from the configured backend
func setupStorage(cfg *config.Config, log *logger.Logger, deps *application.OrderUseCaseDeps) {
	if cfg.Storage == config.StorageMemory {
		store := memory.NewStore()
		deps.Orders = store.Orders()
		deps.Catalog = store.Catalog()
		deps.Transactor = store
		deps.Numbers = store.Counter()
		log.Warn("using in-memory storage, data will not survive a restart")
		return
	}

	dbConn, err := db.NewConnection(db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Timeout:  cfg.DBTimeout,
		Debug:    cfg.Debug(),
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	log.Info("connected to database")

	repo := adapters.NewPostgresOrderRepository(dbConn)
	catalog := adapters.NewPostgresProductCatalog(dbConn)
	counter := adapters.NewPostgresOrderCounter(dbConn)

	// Run migrations
	for _, m := range []interface{ Migrate() error }{catalog, repo, counter} {
		if err := m.Migrate(); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	deps.Orders = repo
	deps.Catalog = catalog
	deps.Transactor = db.NewTransactor(dbConn)
	deps.Numbers = counter
}

// setupPublisher connects the configured event backend. A broker that cannot
// be reached disables events rather than stopping the service.
func setupPublisher(cfg *config.Config, log *logger.Logger) (ports.EventPublisher, func()) {
	noop := func() {}

	switch cfg.EventsBackend {
	case config.EventsNone:
		log.Info("event publishing disabled")
		return nil, noop

	case config.EventsKafka:
		pub, err := kafka.NewPublisher(kafka.ParseBrokers(cfg.KafkaBrokers), events.TopicOrders, log)
		if err != nil {
			log.Warn("failed to create Kafka publisher, events will be disabled", zap.Error(err))
			return nil, noop
		}
		return adapters.NewBrokerPublisher(pub), func() { pub.Close() }

	default:
		conn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
		if err != nil {
			log.Warn("failed to connect to RabbitMQ, events will be disabled", zap.Error(err))
			return nil, noop
		}
		pub, err := rabbitmq.NewPublisher(conn, events.ExchangeOrders, log)
		if err != nil {
			log.Warn("failed to create publisher", zap.Error(err))
			conn.Close()
			return nil, noop
		}
		return adapters.NewBrokerPublisher(pub), func() { conn.Close() }
	}
}

func setupGRPCServer(cfg *config.Config, log *logger.Logger, verifier *auth.TokenVerifier, useCase *application.OrderUseCase) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcpkg.UnaryServerInterceptor(log, cfg.GRPCTimeout),
			grpcpkg.UnaryAuthInterceptor(verifier),
		),
	}

	// Configure mTLS if enabled
	if cfg.GRPCMTLSEnabled {
		tlsConfig, err := tls.ServerConfig(cfg.TLSCertFile, cfg.TLSKeyFile, cfg.TLSCAFile, true)
		if err != nil {
			log.Fatal("failed to load TLS config", zap.Error(err))
		}
		opts = append(opts, grpc.Creds(credentials.NewTLS(tlsConfig)))
		log.Info("gRPC mTLS enabled")
	}

	server := grpc.NewServer(opts...)
	infrastructure.NewGRPCServer(useCase).Register(server)

	return server
}
