package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcheckout "github.com/Zhima-Mochi/minishop-checkout/internal/application/checkout"
	appinventory "github.com/Zhima-Mochi/minishop-checkout/internal/application/inventory"
	appnotification "github.com/Zhima-Mochi/minishop-checkout/internal/application/notification"
	"github.com/Zhima-Mochi/minishop-checkout/internal/clock"
	"github.com/Zhima-Mochi/minishop-checkout/internal/config"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-checkout/internal/domain/outbox"
	dompayment "github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
	domproduct "github.com/Zhima-Mochi/minishop-checkout/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/id"
	infrakafka "github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/kafka"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/memory"
	infranotification "github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/notification"
	infraobs "github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/outbox"
	infrapayment "github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/postgres"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/postgres/migrations"
	infraredis "github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/redis"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/minishop-checkout/internal/presentation/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const startupTimeout = 15 * time.Second

// storage is whichever backend DATABASE_URL selects.
type storage struct {
	products domproduct.Repository
	orders   domorder.Repository
	ledger   appcheckout.Ledger
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env, cfg.LogFile)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, baseLogger, systemLogger); err != nil {
		systemLogger.Error("service_exit", zap.Error(err))
		_ = baseLogger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, baseLogger, systemLogger *zap.Logger) error {
	startCtx, cancelStart := context.WithTimeout(ctx, startupTimeout)
	defer cancelStart()

	shutdownTracer, err := oteltrace.NewProvider(startCtx, cfg.ServiceName, cfg.Env, cfg.OtelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			systemLogger.Warn("tracer_shutdown_error", zap.Error(err))
		}
	}()

	tel := infraobs.NewForService(cfg.ServiceName, baseLogger, prometheus.DefaultRegisterer)

	store, err := openStorage(startCtx, cfg, systemLogger)
	if err != nil {
		return err
	}
	defer store.close()

	idempotency, closeIdempotency, err := openIdempotency(startCtx, cfg, systemLogger)
	if err != nil {
		return err
	}
	defer closeIdempotency()

	validator := appinventory.NewValidator(store.products, tel)
	if cfg.SeedProducts {
		if err := seedProducts(startCtx, validator); err != nil {
			return err
		}
	}

	// Background consumers outlive a single request but stop with the process.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	publisher, subscriber, stopEvents, err := openEvents(workerCtx, cfg, tel.Logger(), systemLogger)
	if err != nil {
		return err
	}

	notificationWorker := appnotification.NewWorker(subscriber, infranotification.NewLogMailer(tel.Logger()), tel)
	notificationWorker.Start()

	orchestrator := appcheckout.NewOrchestrator(
		appinventory.NewStockGate(store.products),
		newPaymentGateway(cfg, systemLogger),
		infranotification.NewQueueSink(publisher),
		outbox.NewOrderEvents(publisher),
		store.ledger,
		tel,
		appcheckout.WithSideEffectTimeout(cfg.SideEffectTimeout),
	)
	placeOrder := appcheckout.NewPlaceOrderUseCase(
		store.products,
		store.orders,
		orchestrator,
		id.NewUUIDGenerator(),
		clock.NewSystem(),
		idempotency,
		tel,
	)

	handler := httppresentation.NewHandler(
		placeOrder,
		appcheckout.NewGetOrderUseCase(store.orders),
		validator,
		promhttp.Handler(),
		tel,
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.PaymentTimeout + 10*time.Second,
	}

	serveErr := serve(ctx, server, cfg.ShutdownTimeout, systemLogger)

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := stopEvents(stopCtx); err != nil {
		systemLogger.Warn("events_shutdown_error", zap.Error(err))
	}
	cancelWorkers()
	return serveErr
}

// serve runs server until ctx ends or the listener fails, then shuts it down.
// A listener failure is returned so the process exits non-zero.
func serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, systemLogger *zap.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var listenErr error
	select {
	case <-ctx.Done():
	case listenErr = <-serverErr:
		if listenErr != nil {
			systemLogger.Error("http_server_error",
				zap.Error(listenErr),
			)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
	return listenErr
}

func openStorage(ctx context.Context, cfg *config.Config, systemLogger *zap.Logger) (*storage, error) {
	if cfg.DatabaseURL == "" {
		systemLogger.Info("storage_selected", zap.String("backend", "memory"))
		mem := memory.NewStore()
		return &storage{
			products: mem.Products(),
			orders:   mem.Orders(),
			ledger:   mem,
			close:    func() {},
		}, nil
	}

	pool, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	systemLogger.Info("storage_selected", zap.String("backend", "postgres"))

	pg := postgres.NewStore(pool)
	return &storage{
		products: pg.Products(),
		orders:   pg.Orders(),
		ledger:   pg,
		close:    pool.Close,
	}, nil
}

func openIdempotency(ctx context.Context, cfg *config.Config, systemLogger *zap.Logger) (appcheckout.IdempotencyStore, func(), error) {
	if cfg.RedisAddr == "" {
		systemLogger.Info("idempotency_selected", zap.String("backend", "memory"))
		return memory.NewIdempotencyStore(cfg.IdempotencyTTL), func() {}, nil
	}

	rdb, err := infraredis.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	systemLogger.Info("idempotency_selected", zap.String("backend", "redis"))
	return infraredis.NewIdempotencyStore(rdb, cfg.IdempotencyTTL), func() { _ = rdb.Close() }, nil
}

// openEvents returns the publisher checkouts write to and the subscriber workers read from.
// Without brokers both are the in-memory bus.
func openEvents(
	ctx context.Context,
	cfg *config.Config,
	logger observability.Logger,
	systemLogger *zap.Logger,
) (domoutbox.Publisher, domoutbox.Subscriber, func(context.Context) error, error) {
	if len(cfg.KafkaBrokers) == 0 {
		systemLogger.Info("events_selected", zap.String("backend", "memory"))
		bus := outbox.NewBus(logger)
		bus.Start(ctx)
		return bus, bus, bus.Stop, nil
	}

	systemLogger.Info("events_selected",
		zap.String("backend", "kafka"),
		zap.Strings("brokers", cfg.KafkaBrokers),
	)
	writer := infrakafka.NewWriter(cfg.KafkaBrokers)
	publisher := infrakafka.NewPublisher(writer, map[string]string{
		domorder.OrderCreatedEvent{}.EventName():          cfg.KafkaOrderTopic,
		domorder.ConfirmationRequestedEvent{}.EventName(): cfg.KafkaEmailTopic,
	}, logger)

	consumer := infrakafka.NewConsumer(
		infrakafka.NewReader(cfg.KafkaBrokers, cfg.KafkaEmailTopic, cfg.ServiceName+"-mailer"),
		map[string]domoutbox.Decoder{
			domorder.ConfirmationRequestedEvent{}.EventName(): domoutbox.JSONDecoder[domorder.ConfirmationRequestedEvent](),
		},
		logger,
	)

	consumerCtx, cancelConsumer := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Run(consumerCtx); err != nil {
			systemLogger.Error("kafka_consumer_stopped", zap.Error(err))
		}
	}()

	stopFn := func(stopCtx context.Context) error {
		cancelConsumer()
		select {
		case <-done:
		case <-stopCtx.Done():
		}
		return writer.Close()
	}
	return publisher, consumer, stopFn, nil
}

func newPaymentGateway(cfg *config.Config, systemLogger *zap.Logger) dompayment.Gateway {
	if cfg.PaymentGatewayURL == "" {
		systemLogger.Info("payment_gateway_selected", zap.String("backend", "fake"))
		return infrapayment.NewFakeGateway()
	}
	systemLogger.Info("payment_gateway_selected",
		zap.String("backend", "http"),
		zap.String("url", cfg.PaymentGatewayURL),
	)
	return infrapayment.NewHTTPGateway(cfg.PaymentGatewayURL, cfg.PaymentTimeout)
}

// seedProducts adds the demo catalogue. A product that already exists is left alone.
func seedProducts(ctx context.Context, validator *appinventory.Validator) error {
	res, err := validator.AddProduct(ctx, appinventory.AddProductInput{
		ID:       "1",
		SKU:      "SKU-001",
		Name:     "Laptop",
		Quantity: 100,
		Price:    decimal.Zero,
	})
	if err != nil {
		if errors.Is(err, domproduct.ErrConflict) {
			return nil
		}
		return err
	}
	if !res.Success {
		return errors.New("seed products: " + res.Errors[0])
	}
	return nil
}
