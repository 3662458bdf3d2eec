package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ecoquest/ecoquest-engine/internal/core/domain"
)

const (
	EngineMemory   = "memory"
	EngineSQLite   = "sqlite"
	EngineRedis    = "redis"
	EnginePostgres = "postgres"
)

type Options struct {
	Engine     string
	SQLitePath string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// PostgresDriver is "pgx" or "postgres" (lib/pq).
	PostgresDriver string
	PostgresDSN    string
}

// Backend is an opened store plus the hooks the process needs around it.
type Backend struct {
	Store domain.KeyValueStore
	Ping  func(ctx context.Context) error
	Close func() error
	// Redis is set only for the redis engine; the HTTP rate limiter shares it.
	Redis *redis.Client
}

func NewByEngine(ctx context.Context, opts Options) (*Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Engine)) {
	case "", EngineSQLite:
		s, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: s, Ping: s.Ping, Close: s.Close}, nil

	case EngineMemory:
		return &Backend{
			Store: NewMemoryStore(),
			Ping:  func(context.Context) error { return nil },
			Close: func() error { return nil },
		}, nil

	case EngineRedis:
		rdb, err := NewRedisClient(opts.RedisHost, opts.RedisPort, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Store: NewRedisStore(rdb),
			Ping:  func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			Close: rdb.Close,
			Redis: rdb,
		}, nil

	case EnginePostgres:
		driver := opts.PostgresDriver
		if driver == "" {
			driver = "pgx"
		}

		db, err := sqlx.ConnectContext(ctx, driver, opts.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(5)

		s := NewPostgresStore(db)
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &Backend{Store: s, Ping: db.PingContext, Close: db.Close}, nil

	default:
		return nil, errors.New("unsupported storage engine: " + opts.Engine)
	}
}
