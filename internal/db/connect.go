package db

import (
	"context"

	"taskmanager/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect creates the pool once at process start and verifies the database
// is reachable before the server begins accepting requests.
func Connect(dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected")
	return pool
}
