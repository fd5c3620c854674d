package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/models"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed store.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// InTx runs fn inside a single database transaction.
func (s *PostgresStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetTransaction loads one transaction by id.
func (s *PostgresStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	txn := &models.Transaction{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, amount, currency, merchant_id, country, payment_method, created_at
		FROM transactions
		WHERE id = $1
	`, id).Scan(
		&txn.ID, &txn.UserID, &txn.Amount, &txn.Currency,
		&txn.MerchantID, &txn.Country, &txn.PaymentMethod, &txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return txn, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// pgTx implements Tx over an open pgx transaction.
type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) SaveTransaction(ctx context.Context, txn *models.Transaction) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO transactions
			(id, user_id, amount, currency, merchant_id, country, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		txn.ID, txn.UserID, txn.Amount, txn.Currency,
		txn.MerchantID, txn.Country, string(txn.PaymentMethod), txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}
