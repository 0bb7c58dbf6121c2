package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/spicecart/internal/port"
	"github.com/nikolayk812/spicecart/pkg/config"
)

const (
	getEntrySQL = `SELECT value FROM kv_entries WHERE key = $1`

	// quotaLockSQL serialises quota-checked writes until the transaction ends.
	quotaLockSQL = `SELECT pg_advisory_xact_lock($1)`

	usedBytesSQL = `SELECT COALESCE(SUM(octet_length(value)), 0) FROM kv_entries WHERE key <> $1`

	upsertEntrySQL = `INSERT INTO kv_entries (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// quotaLockID names the advisory lock guarding the kv_entries quota.
const quotaLockID int64 = 0x73706963

// pgDiskFull is the SQLSTATE Postgres reports when it cannot extend a file.
const pgDiskFull = "53100"

type postgresKV struct {
	q          dbtx
	pool       *pgxpool.Pool
	quotaBytes int64
}

// NewPostgresKV stores entries in the kv_entries table. A positive quotaBytes
// caps the total size of all stored values.
func NewPostgresKV(pool *pgxpool.Pool, quotaBytes int64) port.KVStore {
	return &postgresKV{
		q:          pool,
		pool:       pool,
		quotaBytes: quotaBytes,
	}
}

func NewPostgresKVWithTx(tx pgx.Tx, quotaBytes int64) port.KVStore {
	return &postgresKV{
		q:          tx,
		pool:       nil, // use provided transaction instead
		quotaBytes: quotaBytes,
	}
}

// NewPool opens a pgx pool and verifies connectivity.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}
	return pool, nil
}

func (r *postgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("key is empty")
	}

	var value string
	err := r.q.QueryRow(ctx, getEntrySQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("q.Get: %w", mapPgError(err))
	}

	return value, true, nil
}

func (r *postgresKV) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	_, err := withTx(ctx, r.pool, r.q, func(q dbtx) (struct{}, error) {
		if r.quotaBytes > 0 {
			if _, err := q.Exec(ctx, quotaLockSQL, quotaLockID); err != nil {
				return struct{}{}, fmt.Errorf("q.QuotaLock: %w", mapPgError(err))
			}

			var used int64
			if err := q.QueryRow(ctx, usedBytesSQL, key).Scan(&used); err != nil {
				return struct{}{}, fmt.Errorf("q.UsedBytes: %w", mapPgError(err))
			}
			if used+int64(len(value)) > r.quotaBytes {
				return struct{}{}, fmt.Errorf("key[%s] needs %d bytes, %d of %d used: %w",
					key, len(value), used, r.quotaBytes, port.ErrQuotaExceeded)
			}
		}

		if _, err := q.Exec(ctx, upsertEntrySQL, key, value); err != nil {
			return struct{}{}, fmt.Errorf("q.Upsert: %w", mapPgError(err))
		}
		return struct{}{}, nil
	})
	if err != nil {
		if errors.Is(err, port.ErrQuotaExceeded) || errors.Is(err, port.ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", port.ErrUnavailable, err)
	}

	return nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgDiskFull {
		return fmt.Errorf("%w: %w", port.ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %w", port.ErrUnavailable, err)
}
