package repository_test

import (
	"context"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/spicecart/internal/repository"
	"github.com/nikolayk812/spicecart/pkg/config"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const postgresImage = "postgres:17.6-alpine3.22"

// startPostgres runs a throwaway Postgres with the kv schema applied and
// returns a pool opened the same way the service opens it.
func startPostgres(ctx context.Context) (*postgres.PostgresContainer, *pgxpool.Pool, error) {
	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("spicecart"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts("../migrations/01_kv_entries.up.sql"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres.Run: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, nil, fmt.Errorf("container.ConnectionString: %w", err)
	}

	pool, err := repository.NewPool(ctx, config.DBConfig{DSN: dsn, MaxConns: 4})
	if err != nil {
		return container, nil, fmt.Errorf("repository.NewPool: %w", err)
	}

	return container, pool, nil
}
