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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/workledger/workledger-backend/internal/adapter/events"
	grpcadapter "github.com/workledger/workledger-backend/internal/adapter/grpc"
	httpadapter "github.com/workledger/workledger-backend/internal/adapter/http"
	"github.com/workledger/workledger-backend/internal/adapter/ratelimit"
	"github.com/workledger/workledger-backend/internal/adapter/repository/boltstore"
	"github.com/workledger/workledger-backend/internal/adapter/repository/postgres"
	"github.com/workledger/workledger-backend/internal/adapter/scheduler"
	"github.com/workledger/workledger-backend/internal/config"
	"github.com/workledger/workledger-backend/internal/domain"
	"github.com/workledger/workledger-backend/internal/usecase/assignment"
	"github.com/workledger/workledger-backend/internal/usecase/checkout"
	"github.com/workledger/workledger-backend/internal/usecase/completion"
	"github.com/workledger/workledger-backend/internal/usecase/dashboard"
	"github.com/workledger/workledger-backend/internal/usecase/report"
	"github.com/workledger/workledger-backend/internal/usecase/seeder"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 1. Setup Store
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.SeedDemoData {
		if err := seeder.NewDemoSeeder(store, logger).Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	// 2. Event publisher
	publisher := openPublisher(cfg, logger)
	defer publisher.Close()

	// 3. Initialize Services (Use Cases)
	completionService := completion.NewCompletionService(store, publisher, logger)
	checkoutService := checkout.NewCheckoutService(store, publisher, logger, cfg.CheckoutRefundOnReject)
	dashboardService := dashboard.NewDashboardService(store.Repositories())
	assignmentService := assignment.NewAssignmentService(store, logger)

	// 4. Stale checkout report
	cron := scheduler.NewScheduler(logger, time.Minute)
	reporter := report.NewReporter(store.Repositories().Checkouts, cfg.StaleCheckoutAfter, logger)
	if err := cron.Register("stale_checkout_report", cfg.ReportSchedule, func(ctx context.Context) error {
		_, err := reporter.Run(ctx)
		return err
	}); err != nil {
		return err
	}
	cron.Start()
	defer func() { <-cron.Stop().Done() }()

	// 5. HTTP API
	limiter, err := openLimiter(cfg)
	if err != nil {
		return err
	}
	routerOpts := httpadapter.RouterOptions{
		APIToken:       cfg.APIToken,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	}
	if limiter != nil {
		defer limiter.Close()
		routerOpts.Limiter = limiter
	}
	handler := httpadapter.NewHandler(completionService, checkoutService, dashboardService, assignmentService, logger)
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpadapter.NewRouter(handler, routerOpts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 6. gRPC API
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(logger),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)
	grpcadapter.RegisterLedgerServiceServer(grpcServer, grpcadapter.NewServer(completionService, checkoutService, dashboardService))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCPort, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("grpc server listening", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverBolt:
		store, err := boltstore.Open(cfg.BoltPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		logger.Info("using bolt store", "path", cfg.BoltPath)
		return store, nil
	default:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		db, err := postgres.NewDB(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgres.Migrate(connectCtx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("using postgres store")
		return postgres.NewStore(db), nil
	}
}

// openPublisher falls back to the no-op publisher when the broker is unreachable.
// Events are advisory, so the ledger keeps serving without them.
func openPublisher(cfg *config.Config, logger *slog.Logger) domain.EventPublisher {
	var (
		publisher domain.EventPublisher
		err       error
	)

	switch cfg.EventBroker {
	case config.BrokerAMQP:
		publisher, err = events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventExchange)
	case config.BrokerNATS:
		publisher, err = events.NewNATSPublisher(cfg.NATSURL, cfg.EventExchange)
	default:
		return events.NewNoopPublisher(logger)
	}

	if err != nil {
		logger.Warn("event broker unavailable, events will not be published", "broker", cfg.EventBroker, "error", err)
		return events.NewNoopPublisher(logger)
	}
	logger.Info("publishing ledger events", "broker", cfg.EventBroker)
	return publisher
}

func openLimiter(cfg *config.Config) (*ratelimit.RedisLimiter, error) {
	if cfg.RedisURL == "" || cfg.RateLimitPerMinute <= 0 {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return ratelimit.NewRedisLimiter(redis.NewClient(opts), "", cfg.RateLimitPerMinute, time.Minute), nil
}
