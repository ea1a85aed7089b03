package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// Pool - параметры пула соединений и ожидания базы при старте.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
	PingAttempts    int
	PingBackoff     time.Duration
}

// DefaultPool подходит для одного инстанса движка: снапшоты пишет один фоновый сохранятель.
var DefaultPool = Pool{
	MaxOpenConns:    10,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
	PingTimeout:     5 * time.Second,
	PingAttempts:    3,
	PingBackoff:     time.Second,
}

// Connect opens a Postgres handle and waits until the server answers a ping.
func Connect(ctx context.Context, dsn string, pool Pool, logger *slog.Logger) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}
	conn.SetMaxOpenConns(pool.MaxOpenConns)
	conn.SetMaxIdleConns(pool.MaxIdleConns)
	conn.SetConnMaxLifetime(pool.ConnMaxLifetime)

	attempts := max(pool.PingAttempts, 1)
	for attempt := 1; ; attempt++ {
		err = ping(ctx, conn, pool.PingTimeout)
		if err == nil {
			return conn, nil
		}
		if attempt == attempts || ctx.Err() != nil {
			break
		}
		logger.WarnContext(ctx, "database is not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Any("error", err))
		select {
		case <-time.After(pool.PingBackoff):
		case <-ctx.Done():
		}
	}

	if closeErr := conn.Close(); closeErr != nil {
		logger.Error("failed to close database handle after ping error", slog.Any("error", closeErr))
	}
	return nil, fmt.Errorf("database did not answer after %d attempts: %w", attempts, err)
}

func ping(ctx context.Context, conn *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return conn.PingContext(ctx)
}
