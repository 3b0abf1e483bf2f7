// Package sqlite provides a SQLite-backed coffee store implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/storage/sqlitemigrate"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/storage"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const storeColumns = `id, name, address, neighbourhood, image_url, votes`

// Store persists coffee store state in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a SQLite coffee store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
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
	pageToken = strings.TrimSpace(pageToken)

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT `+storeColumns+`
			   FROM coffee_stores
			  ORDER BY id ASC
			  LIMIT ?`,
			pageSize+1,
		)
	} else {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT `+storeColumns+`
			   FROM coffee_stores
			  WHERE id > ?
			  ORDER BY id ASC
			  LIMIT ?`,
			pageToken,
			pageSize+1,
		)
	}
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

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+storeColumns+` FROM coffee_stores WHERE id = ?`,
		id,
	)
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

	now := toMillis(s.now())
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO coffee_stores (
		   id, name, address, neighbourhood, image_url, votes, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		store.ID,
		store.Name,
		store.Address,
		store.Neighbourhood,
		store.ImageURL,
		store.Votes,
		now,
		now,
	)
	if err != nil {
		if !isCoffeeStoreUniqueViolation(err) {
			return storage.CreateResult{}, fmt.Errorf("create coffee store: %w", err)
		}
		existing, getErr := s.GetStore(ctx, store.ID)
		if getErr != nil {
			return storage.CreateResult{}, fmt.Errorf("load existing coffee store: %w", getErr)
		}
		return storage.CreateResult{Store: existing, Created: false}, nil
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

	row := s.sqlDB.QueryRowContext(
		ctx,
		`UPDATE coffee_stores
		    SET votes = votes + 1,
		        updated_at = ?
		  WHERE id = ?
		 RETURNING `+storeColumns,
		toMillis(s.now()),
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

func isCoffeeStoreUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "coffee_stores.id")
}

var _ storage.CoffeeStoreStore = (*Store)(nil)
