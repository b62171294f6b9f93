package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/events"
	"github.com/serroba/url-shortener/internal/handlers"
	"github.com/serroba/url-shortener/internal/health"
	"github.com/serroba/url-shortener/internal/identity"
	"github.com/serroba/url-shortener/internal/logging"
	"github.com/serroba/url-shortener/internal/metrics"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"go.uber.org/zap"
)

// Storage backends accepted by Options.Store.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreMySQL    = "mysql"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Options struct {
	Port          int    `default:"8888"                       help:"Port to listen on"                                     short:"p"`
	Store         string `default:"sqlite"                     help:"Storage backend: memory, sqlite, mysql, postgres, redis" short:"s"`
	DSN           string `default:"shortener.db"               help:"Database DSN for sqlite, mysql and postgres"`
	RedisAddr     string `default:"localhost:6379"             help:"Redis server address"                                  short:"r"`
	BaseURL       string `default:"https://short-url/"         help:"Prefix prepended to codes to build short URLs"`
	CodeAlphabet  string `default:"ABCDEFGHIJKLMNOPQRSTUVWXYZ" help:"Characters generated codes are drawn from"`
	CodeLength    int    `default:"6"                          help:"Length of short codes"                                 short:"c"`
	MaxAttempts   int    `default:"1000"                       help:"Random code attempts before giving up"`
	JWTSecret     string `default:""                           help:"HMAC secret owner tokens are signed with"`
	JWTIssuer     string `default:"url-shortener"              help:"Expected issuer of owner tokens"`
	JWTTTL        string `default:"24h"                        help:"Lifetime of issued owner tokens"`
	LogFormat     string `default:"console"                    help:"Log format: console or json"`
	LogLevel      string `default:"info"                       help:"Log level"`
	LogFile       string `default:""                           help:"Also write logs to this rotated file"`
	Events        bool   `default:"false"                      help:"Publish mapping events to Redis streams"`
	ConsumerGroup string `default:"audit"                      help:"Redis stream consumer group of the event consumer"`
}

// Alphabet returns the configured code alphabet.
func (o *Options) Alphabet() shortener.Alphabet {
	return shortener.Alphabet{Chars: o.CodeAlphabet, Length: o.CodeLength}
}

// RedisClient owns the shared Redis connection and closes it on shutdown.
type RedisClient struct {
	redis.UniversalClient
}

func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// PostgresPool owns the Postgres connection pool and closes it on shutdown.
type PostgresPool struct {
	*pgxpool.Pool
}

func (p *PostgresPool) Shutdown() error {
	p.Close()

	return nil
}

// Store is a mapping repository that can report its own health.
type Store interface {
	shortener.Repository
	health.Checker
}

func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return logging.New(logging.Config{
			Format: opts.LogFormat,
			Level:  opts.LogLevel,
			File:   opts.LogFile,
		})
	})
}

func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{UniversalClient: redis.NewClient(&redis.Options{
			Addr: opts.RedisAddr,
		})}, nil
	})
}

func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*PostgresPool, error) {
		opts := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		return &PostgresPool{Pool: pool}, nil
	})
}

func StorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		logger.Info("opening store", zap.String("backend", opts.Store))

		switch opts.Store {
		case StoreMemory:
			return store.NewMemoryStore(), nil
		case StoreSQLite, StoreMySQL:
			db, err := store.OpenGorm(opts.Store, opts.DSN)
			if err != nil {
				return nil, err
			}

			return store.NewGormStore(db), nil
		case StorePostgres:
			pool := do.MustInvoke[*PostgresPool](i)
			pg := store.NewPostgresStore(pool.Pool)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := pg.Migrate(ctx); err != nil {
				return nil, err
			}

			return pg, nil
		case StoreRedis:
			return store.NewRedisStore(do.MustInvoke[*RedisClient](i).UniversalClient), nil
		default:
			return nil, fmt.Errorf("unknown store backend %q", opts.Store)
		}
	})
}

func MetricsPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})
}

func ServicePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)
		alphabet := opts.Alphabet()

		generator, err := shortener.NewCodeGenerator(alphabet)
		if err != nil {
			return nil, err
		}

		return shortener.NewService(do.MustInvoke[Store](i), generator, shortener.Config{
			Alphabet:    alphabet,
			BaseURL:     opts.BaseURL,
			MaxAttempts: opts.MaxAttempts,
			Recorder:    do.MustInvoke[*metrics.Metrics](i),
		}), nil
	})
}

func IdentityPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*identity.HS256, error) {
		opts := do.MustInvoke[*Options](i)

		ttl, err := time.ParseDuration(opts.JWTTTL)
		if err != nil {
			return nil, fmt.Errorf("parse jwt ttl: %w", err)
		}

		return identity.NewHS256(opts.JWTSecret, opts.JWTIssuer, ttl)
	})
}

// EventsPackage provides the mapping event emitter. Events go to Redis
// streams when enabled and are discarded otherwise.
func EventsPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (events.Emitter, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.Events {
			return events.Discard{}, nil
		}

		logger := do.MustInvoke[*zap.Logger](i)
		client := do.MustInvoke[*RedisClient](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     client.UniversalClient,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, logging.NewWatermillAdapter(logger))
		if err != nil {
			return nil, fmt.Errorf("create event publisher: %w", err)
		}

		return events.NewPublisher(publisher, logger.Named("events")), nil
	})
}

func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*events.Group, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		client := do.MustInvoke[*RedisClient](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client.UniversalClient,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: opts.ConsumerGroup,
		}, logging.NewWatermillAdapter(logger))
		if err != nil {
			return nil, fmt.Errorf("create event subscriber: %w", err)
		}

		group := events.NewGroup(subscriber, logger)
		events.NewAuditLog(logger).Register(group, logger)

		return group, nil
	})
}

// HTTPPackage provides the router and the API with every route registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		m := do.MustInvoke[*metrics.Metrics](i)

		config := huma.DefaultConfig("URL Shortener", "1.0.0")
		config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
			identity.SecurityScheme: {
				Type:         "http",
				Scheme:       "bearer",
				BearerFormat: "JWT",
			},
		}

		api := humachi.New(router, config)
		api.UseMiddleware(middleware.Metrics(m))
		api.UseMiddleware(middleware.AccessLog(logger.Named("http")))
		api.UseMiddleware(middleware.Identity(api, do.MustInvoke[*identity.HS256](i), logger))

		checkers := map[string]health.Checker{"store": do.MustInvoke[Store](i)}
		if opts.Store == StoreRedis || opts.Events {
			checkers["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).UniversalClient)
		}

		health.RegisterRoutes(api, health.NewHandler(checkers))
		handlers.RegisterRoutes(api, handlers.NewMappingHandler(
			do.MustInvoke[*shortener.Service](i),
			do.MustInvoke[events.Emitter](i),
			logger,
		))

		router.Handle("/metrics", m.Handler())

		return api, nil
	})
}
