package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/httpserver"
	"storefront/internal/idempotency"
	"storefront/internal/metrics"
	"storefront/internal/migrate"
	"storefront/internal/outbox"
	cartrepo "storefront/internal/repository/cart"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	reviewrepo "storefront/internal/repository/review"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	reviewsvc "storefront/internal/service/review"
	usersvc "storefront/internal/service/user"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	if err := migrate.Apply(ctx, dbpool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	loc := cfg.SaleLocation()
	userRepo := userrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	reviewRepo := reviewrepo.NewPostgres(dbpool, logger)

	deps := httpserver.Deps{
		UserSvc:  usersvc.New(userRepo, tokenRepo, cfg.TokenTTL),
		CartSvc:  cartsvc.New(cartRepo, loc),
		OrderSvc: ordersvc.New(orderRepo),
		CheckoutSvc: checkoutsvc.New(dbpool, cartRepo, orderRepo, productRepo, logger,
			checkoutsvc.WithLocation(loc),
			checkoutsvc.WithMetrics(m),
		),
		ProductSvc:  productsvc.New(productRepo, loc),
		ReviewSvc:   reviewsvc.New(dbpool, reviewRepo, orderRepo, logger),
		Metrics:     m,
		Gatherer:    reg,
		CORSOrigins: cfg.CORSOrigins,
		Development: cfg.Development(),
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatalf("connect to redis: %v", err)
		}
		deps.Idempotency = idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL, cfg.IdempotencyLockTTL)
		logger.Printf("checkout idempotency enabled redis=%s lock_ttl=%s", cfg.RedisAddr, cfg.IdempotencyLockTTL)
	}

	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		logger.Fatalf("init events publisher: %v", err)
	}
	relayDone := make(chan struct{})
	if publisher != nil {
		defer closePublisher()
		relay := events.NewRelay(outbox.NewStore(dbpool), publisher, cfg.OutboxPoll, logger)
		go func() {
			defer close(relayDone)
			relay.Run(ctx)
		}()
		logger.Printf("outbox relay started broker=%s", cfg.EventsBroker)
	} else {
		close(relayDone)
		logger.Printf("outbox relay disabled, events stay in the outbox table")
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, deps)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("received shutdown signal")
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
	<-relayDone
}

// newPublisher returns a nil publisher when EVENTS_BROKER is none.
func newPublisher(cfg config.Config) (events.Publisher, func(), error) {
	switch cfg.EventsBroker {
	case "", "none":
		return nil, func() {}, nil
	case "rabbitmq":
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			return nil, nil, err
		}
		pub, err := events.NewRabbitPublisher(conn)
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return pub, func() {
			_ = pub.Close()
			_ = conn.Close()
		}, nil
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, nil, errors.New("KAFKA_BROKERS is required when EVENTS_BROKER=kafka")
		}
		pub := events.NewKafkaPublisher(cfg.KafkaBrokers...)
		return pub, func() { _ = pub.Close() }, nil
	default:
		return nil, nil, errors.New("unknown EVENTS_BROKER " + cfg.EventsBroker)
	}
}
