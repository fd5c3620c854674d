package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/models"
)

const uniqueViolationCode = "23505"

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

// PurgeMarkersBefore deletes expired processed-event markers.
func (s *PostgresStore) PurgeMarkersBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM processed_events WHERE processed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge processed events: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeHistoryBefore deletes expired transaction history records.
func (s *PostgresStore) PurgeHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM user_transaction_history WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge transaction history: %w", err)
	}
	return tag.RowsAffected(), nil
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

func (t *pgTx) EventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)`, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check processed event: %w", err)
	}
	return exists, nil
}

func (t *pgTx) SaveMarker(ctx context.Context, eventID string, processedAt time.Time) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO processed_events (event_id, processed_at) VALUES ($1, $2)`,
		eventID, processedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("failed to save processed event: %w", err)
	}
	return nil
}

func (t *pgTx) CountRecentTransactions(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_transaction_history WHERE user_id = $1 AND occurred_at > $2`,
		userID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent transactions: %w", err)
	}
	return count, nil
}

func (t *pgTx) LatestTransaction(ctx context.Context, userID string) (*models.HistoryRecord, error) {
	record := &models.HistoryRecord{}
	err := t.tx.QueryRow(ctx, `
		SELECT transaction_id, user_id, amount, currency, merchant_id, country, occurred_at
		FROM user_transaction_history
		WHERE user_id = $1
		ORDER BY occurred_at DESC
		LIMIT 1
	`, userID).Scan(
		&record.TransactionID, &record.UserID, &record.Amount,
		&record.Currency, &record.MerchantID, &record.Country, &record.OccurredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest transaction: %w", err)
	}
	return record, nil
}

func (t *pgTx) SaveHistory(ctx context.Context, record *models.HistoryRecord) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO user_transaction_history
			(transaction_id, user_id, amount, currency, merchant_id, country, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		record.TransactionID, record.UserID, record.Amount,
		record.Currency, record.MerchantID, record.Country, record.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save history record: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
