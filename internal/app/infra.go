package app

import (
	"context"
	"database/sql"
	"fmt"

	"worklog-bot/internal/config"
	"worklog-bot/internal/db"
	"worklog-bot/internal/logger"
	"worklog-bot/internal/redis"
	"worklog-bot/internal/report"
	"worklog-bot/internal/session"

	_ "github.com/lib/pq"
)

type Infra struct {
	Sessions session.Store
	Recorder report.Recorder

	closers []func() error
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	infra := &Infra{}

	switch cfg.SessionBackend {
	case "redis":
		redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("app: failed to connect to redis: %w", err)
		}
		infra.Sessions = session.NewRedisStore(redisClient.Client, cfg.SessionTTL)
		infra.closers = append(infra.closers, redisClient.Close)
		logger.Info("redis session store ready", nil)

	case "memory":
		store := session.NewMemoryStore(cfg.SessionTTL)
		infra.Sessions = store
		infra.closers = append(infra.closers, store.Close)
		logger.Info("in-memory session store ready", nil)

	default:
		return nil, fmt.Errorf("app: unknown session backend %q", cfg.SessionBackend)
	}

	switch cfg.StorageBackend {
	case "postgres":
		sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("app: failed to open postgres: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("app: failed to ping postgres: %w", err)
		}
		if err := db.RunMigration(ctx, sqlDB); err != nil {
			return nil, err
		}
		infra.Recorder = report.NewPostgresRecorder(&db.DB{DB: sqlDB})
		infra.closers = append(infra.closers, sqlDB.Close)
		logger.Info("postgres storage ready", nil)

	case "sqlite":
		rec, err := report.NewSQLiteRecorder(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		infra.Recorder = rec
		infra.closers = append(infra.closers, rec.Close)
		logger.Info("sqlite storage ready", map[string]any{"path": cfg.SQLitePath})

	default:
		return nil, fmt.Errorf("app: unknown storage backend %q", cfg.StorageBackend)
	}

	if cfg.AMQPURL != "" {
		pub, err := report.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, fmt.Errorf("app: failed to connect to broker: %w", err)
		}
		infra.Recorder = report.NewBroadcastRecorder(infra.Recorder, pub)
		infra.closers = append(infra.closers, pub.Close)
		logger.Info("record fan-out ready", map[string]any{"exchange": cfg.AMQPExchange})
	}

	return infra, nil
}

// Close releases infra resources in reverse construction order.
func (i *Infra) Close() error {
	var first error
	for n := len(i.closers) - 1; n >= 0; n-- {
		if err := i.closers[n](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
