// Package postgres provides a PostgreSQL-backed coffee store implementation.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/timeouts"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/storage"
)

const uniqueViolation = "23505"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS coffee_stores (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    address TEXT NOT NULL DEFAULT '',
    neighbourhood TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    votes INTEGER NOT NULL DEFAULT 0 CHECK (votes >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const storeColumns = `id, name, address, neighbourhood, image_url, votes`

// Store persists coffee store state in PostgreSQL.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL using dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}

	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.StoragePing)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure coffee_stores schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// ListStores returns one page of store records ordered by id.
func (s *Store) ListStores(ctx context.Context, pageSize int, pageToken string) (storage.StorePage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.StorePage{}, err
	}
	pageSize = storage.ClampPageSize(pageSize)

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+storeColumns+`
		   FROM coffee_stores
		  WHERE ($1 = '' OR id > $1)
		  ORDER BY id ASC
		  LIMIT $2`,
		strings.TrimSpace(pageToken),
		pageSize+1,
	)
	if err != nil {
		return storage.StorePage{}, fmt.Errorf("list coffee stores: %w", err)
	}
	defer rows.Close()

	page := storage.StorePage{Stores: make([]domain.StoreRecord, 0, pageSize)}
	for rows.Next() {
		record, err := scanStore(rows)
		if err != nil {
			return storage.StorePage{}, fmt.Errorf("list coffee stores: %w", err)
		}
		page.Stores = append(page.Stores, record)
	}
	if err := rows.Err(); err != nil {
		return storage.StorePage{}, fmt.Errorf("list coffee stores: %w", err)
	}
	if len(page.Stores) > pageSize {
		page.NextPageToken = page.Stores[pageSize-1].ID
		page.Stores = page.Stores[:pageSize]
	}
	return page, nil
}

// GetStore returns one store record by id.
func (s *Store) GetStore(ctx context.Context, id string) (domain.StoreRecord, error) {
	if err := s.ready(ctx); err != nil {
		return domain.StoreRecord{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.StoreRecord{}, domain.ErrIDRequired
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM coffee_stores WHERE id = $1`, id)
	record, err := scanStore(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StoreRecord{}, storage.ErrNotFound
		}
		return domain.StoreRecord{}, fmt.Errorf("get coffee store: %w", err)
	}
	return record, nil
}

// CreateStore inserts a store record unless one with the same id exists.
func (s *Store) CreateStore(ctx context.Context, store domain.StoreRecord) (storage.CreateResult, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CreateResult{}, err
	}
	store = store.Normalize()
	if err := store.Validate(); err != nil {
		return storage.CreateResult{}, err
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO coffee_stores (id, name, address, neighbourhood, image_url, votes)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		store.ID,
		store.Name,
		store.Address,
		store.Neighbourhood,
		store.ImageURL,
		store.Votes,
	)
	if err != nil {
		if !IsUniqueViolation(err) {
			return storage.CreateResult{}, fmt.Errorf("create coffee store: %w", err)
		}
		existing, getErr := s.GetStore(ctx, store.ID)
		if getErr != nil {
			return storage.CreateResult{}, fmt.Errorf("load existing coffee store: %w", getErr)
		}
		return storage.CreateResult{Store: existing}, nil
	}
	return storage.CreateResult{Store: store, Created: true}, nil
}

// FavouriteStore increments the vote counter in a single statement.
func (s *Store) FavouriteStore(ctx context.Context, id string) (domain.StoreRecord, error) {
	if err := s.ready(ctx); err != nil {
		return domain.StoreRecord{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.StoreRecord{}, domain.ErrIDRequired
	}
	row := s.db.QueryRowContext(
		ctx,
		`UPDATE coffee_stores
		    SET votes = votes + 1, updated_at = now()
		  WHERE id = $1
		 RETURNING `+storeColumns,
		id,
	)
	record, err := scanStore(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StoreRecord{}, storage.ErrNotFound
		}
		return domain.StoreRecord{}, fmt.Errorf("favourite coffee store: %w", err)
	}
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStore(row rowScanner) (domain.StoreRecord, error) {
	var record domain.StoreRecord
	err := row.Scan(
		&record.ID,
		&record.Name,
		&record.Address,
		&record.Neighbourhood,
		&record.ImageURL,
		&record.Votes,
	)
	return record, err
}

// IsUniqueViolation reports whether err is a PostgreSQL duplicate key error.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

var _ storage.CoffeeStoreStore = (*Store)(nil)
