package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/addy1947/web-scrapping/internal/models"
)

// CheckpointStore persists batch checkpoints to Postgres. Each Persist
// call upserts the records committed so far inside one transaction, so
// the table always reflects a consistent prefix of the batch.
type CheckpointStore struct {
	pool *pgxpool.Pool
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func New(ctx context.Context, cfg Config) (*CheckpointStore, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &CheckpointStore{pool: pool}, nil
}

func (s *CheckpointStore) Close() {
	s.pool.Close()
}

// Migrate creates the checkpoint tables if they do not exist.
func (s *CheckpointStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS scrape_batches (
			id TEXT PRIMARY KEY,
			processed INT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS scrape_records (
			batch_id TEXT NOT NULL REFERENCES scrape_batches(id),
			position INT NOT NULL,
			url TEXT NOT NULL,
			status TEXT NOT NULL,
			name TEXT,
			mrp DOUBLE PRECISION,
			discounted_price DOUBLE PRECISION,
			quantity TEXT,
			manufacturer TEXT,
			composition TEXT,
			image TEXT,
			error TEXT,
			scraped_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (batch_id, position)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Persist implements progress.Sink against Postgres.
func (s *CheckpointStore) Persist(ctx context.Context, batchID string, records []models.MedicineRecord) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO scrape_batches (id, processed, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE
			SET processed = EXCLUDED.processed, updated_at = EXCLUDED.updated_at
		`, batchID, len(records), time.Now())
		if err != nil {
			return fmt.Errorf("failed to upsert batch: %w", err)
		}

		for i, rec := range records {
			_, err := tx.Exec(ctx, `
				INSERT INTO scrape_records (
					batch_id, position, url, status, name, mrp, discounted_price,
					quantity, manufacturer, composition, image, error, scraped_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
				ON CONFLICT (batch_id, position) DO UPDATE SET
					status = EXCLUDED.status,
					name = EXCLUDED.name,
					mrp = EXCLUDED.mrp,
					discounted_price = EXCLUDED.discounted_price,
					quantity = EXCLUDED.quantity,
					manufacturer = EXCLUDED.manufacturer,
					composition = EXCLUDED.composition,
					image = EXCLUDED.image,
					error = EXCLUDED.error,
					scraped_at = EXCLUDED.scraped_at
			`, batchID, i, rec.URL, rec.Status, rec.Name, rec.MRP, rec.DiscountedPrice,
				rec.Quantity, rec.Manufacturer, rec.Composition, rec.Image, rec.Error, rec.ScrapedAt)
			if err != nil {
				return fmt.Errorf("failed to upsert record %d: %w", i, err)
			}
		}
		return nil
	})
}

// LoadRecords returns the committed records of a batch in input order.
func (s *CheckpointStore) LoadRecords(ctx context.Context, batchID string) ([]models.MedicineRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT url, status, name, mrp, discounted_price, quantity,
		       manufacturer, composition, image, error, scraped_at
		FROM scrape_records
		WHERE batch_id = $1
		ORDER BY position
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []models.MedicineRecord
	for rows.Next() {
		var rec models.MedicineRecord
		if err := rows.Scan(
			&rec.URL, &rec.Status, &rec.Name, &rec.MRP, &rec.DiscountedPrice,
			&rec.Quantity, &rec.Manufacturer, &rec.Composition, &rec.Image,
			&rec.Error, &rec.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *CheckpointStore) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
