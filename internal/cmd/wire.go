package cmd

import (
	"context"
	"fmt"

	appaccount "github.com/Zhima-Mochi/fooddelivery/internal/application/account"
	appauth "github.com/Zhima-Mochi/fooddelivery/internal/application/auth"
	appcatalog "github.com/Zhima-Mochi/fooddelivery/internal/application/catalog"
	apporder "github.com/Zhima-Mochi/fooddelivery/internal/application/order"
	"github.com/Zhima-Mochi/fooddelivery/internal/config"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/fooddelivery/internal/domain/payment"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/persistence"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/authz"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/blob"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/cache"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/id"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/memory"
	obsinfra "github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/observability/telemetry"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/payment"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/postgres"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/security"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"
	httppresentation "github.com/Zhima-Mochi/fooddelivery/internal/presentation/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type storage struct {
	accounts account.Repository
	tokens   token.Repository
	stores   catalog.StoreRepository
	products catalog.ProductRepository
	orders   order.Repository
	tx       persistence.Transactor
	ping     func(ctx context.Context) error
	close    func() error
}

func openStorage(cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(postgres.Config{
			DSN:             cfg.Postgres.DSN,
			MaxOpenConns:    cfg.Postgres.MaxOpen,
			MaxIdleConns:    cfg.Postgres.MaxIdle,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		return &storage{
			accounts: postgres.NewAccountRepository(db),
			tokens:   postgres.NewTokenRepository(db),
			stores:   postgres.NewStoreRepository(db),
			products: postgres.NewProductRepository(db),
			orders:   postgres.NewOrderRepository(db),
			tx:       db,
			ping:     db.Ping,
			close:    db.Close,
		}, nil
	default:
		db := memory.NewDB()
		return &storage{
			accounts: memory.NewAccountRepository(db),
			tokens:   memory.NewTokenRepository(db),
			stores:   memory.NewStoreRepository(db),
			products: memory.NewProductRepository(db),
			orders:   memory.NewOrderRepository(db),
			tx:       db,
			ping:     func(context.Context) error { return nil },
			close:    func() error { return nil },
		}, nil
	}
}

// app holds every wired component of one process.
type app struct {
	cfg      *config.Config
	log      observability.Logger
	tel      observability.Observability
	registry *prometheus.Registry
	bus      *outbox.Bus
	store    *storage
	redis    *redis.Client
	kafka    *outbox.KafkaForwarder
	accounts *appaccount.Service
	handler  *httppresentation.Handler

	shutdownTracing func(context.Context) error
}

func build(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{cfg: cfg, shutdownTracing: func(context.Context) error { return nil }}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.log, err = zaplogger.New(zaplogger.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
		Fields: []observability.Field{
			observability.F("service", cfg.Service.Name),
			observability.F("env", cfg.Service.Env),
		},
	})
	if err != nil {
		return nil, err
	}

	shutdown, err := telemetry.Setup(telemetry.Options{
		ServiceName: cfg.Service.Name,
		Environment: cfg.Service.Env,
		Stdout:      cfg.Tracing.Stdout,
	})
	if err != nil {
		return nil, err
	}
	a.shutdownTracing = shutdown

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.tel = obsinfra.NewStandard(
		oteltrace.New(cfg.Service.Name),
		a.log,
		prometrics.NewWithRegisterer("", "", a.registry),
	)

	a.store, err = openStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	a.bus = outbox.NewBus(a.log, outbox.Options{})
	a.bus.Subscribe(outbox.Wildcard, outbox.LogSink)
	if len(cfg.Kafka.Brokers) > 0 {
		a.kafka = outbox.NewKafkaForwarder(outbox.NewKafkaWriter(cfg.Kafka.Topic, cfg.Kafka.Brokers...), a.tel)
		a.kafka.Attach(a.bus)
	}
	a.bus.Start(ctx)

	var listings appcatalog.StoreListCache
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		listings = cache.NewStoreCache(a.redis, cfg.Redis.TTL)
	}

	blobs, err := blob.NewLocalStore(cfg.Blob.Dir, cfg.Blob.BaseURL, cfg.Blob.MaxWidth)
	if err != nil {
		return nil, err
	}

	enforcer, err := authz.New()
	if err != nil {
		return nil, err
	}

	var gateway dompayment.Gateway
	switch cfg.Payment.Provider {
	case config.ProviderStripe:
		gateway = payment.NewStripeGateway(payment.StripeConfig{
			SecretKey:  cfg.Payment.StripeKey,
			SuccessURL: cfg.Payment.SuccessURL,
			CancelURL:  cfg.Payment.CancelURL,
		}, nil)
	default:
		gateway = payment.NewSimulatedGateway(cfg.Payment.SuccessRate, 0, cfg.Payment.BaseURL)
	}
	gateway = payment.NewBreaker(gateway, payment.BreakerConfig{Name: cfg.Payment.Provider}, a.log)

	s := a.store
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	ids := id.NewUUIDGenerator()

	authSvc := appauth.NewService(s.accounts, s.tokens, s.tx, hasher,
		security.NewJWTSigner(cfg.JWTSecret(), cfg.Auth.Issuer, nil),
		security.RandomTokenGenerator{}, ids, nil,
		appauth.Config{AccessTTL: cfg.Auth.AccessTTL, RefreshTTL: cfg.Auth.RefreshTTL},
		a.tel)
	a.accounts = appaccount.NewService(s.accounts, s.tokens, s.tx, hasher, blobs, a.bus, ids, nil, a.tel)
	catalogSvc := appcatalog.NewService(s.stores, s.products, s.tx, blobs, listings, ids, nil, a.tel)
	orderSvc := apporder.NewService(apporder.Deps{
		Orders:    s.orders,
		Stores:    s.stores,
		Partners:  s.accounts,
		Products:  s.products,
		Tx:        s.tx,
		Payments:  gateway,
		Publisher: a.bus,
		IDs:       ids,
		Currency:  cfg.Payment.Currency,
		Tel:       a.tel,
	})

	a.handler = httppresentation.NewHandler(httppresentation.Services{
		Auth:     authSvc,
		Accounts: a.accounts,
		Catalog:  catalogSvc,
		Orders:   orderSvc,
		Authz:    enforcer,
	}, a.log, a.tel,
		httppresentation.WithReadiness(a.ready),
		httppresentation.WithMetricsHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})),
	)
	return a, nil
}

func (a *app) ready(ctx context.Context) error {
	if err := a.store.ping(ctx); err != nil {
		return err
	}
	if a.redis != nil {
		return a.redis.Ping(ctx).Err()
	}
	return nil
}

// close releases everything build acquired, in reverse order.
func (a *app) close() {
	ctx := context.Background()
	if a.bus != nil {
		a.bus.Stop(ctx)
	}
	if a.log == nil {
		a.log = observability.NopLogger()
	}
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			a.log.Warn("kafka_close_error", observability.Err(err))
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.store != nil {
		if err := a.store.close(); err != nil {
			a.log.Warn("storage_close_error", observability.Err(err))
		}
	}
	if err := a.shutdownTracing(ctx); err != nil {
		a.log.Warn("tracing_shutdown_error", observability.Err(err))
	}
	_ = zaplogger.Sync(a.log)
}
