// Package storage defines persistence contracts for coffee store records.
package storage

import (
	"context"
	"errors"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
)

var (
	// ErrNotFound indicates a requested store record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a store with the same id is already persisted.
	ErrAlreadyExists = errors.New("record already exists")
)

// DefaultPageSize is used by callers that list without an explicit page size.
const DefaultPageSize = 50

// MaxPageSize caps a single listing page.
const MaxPageSize = 200

// StorePage stores one page of store records ordered by id.
type StorePage struct {
	Stores        []domain.StoreRecord
	NextPageToken string
}

// CreateResult reports the outcome of an idempotent create.
type CreateResult struct {
	Store domain.StoreRecord
	// Created is false when a record with the same id already existed and
	// was returned unchanged.
	Created bool
}

// CoffeeStoreStore persists coffee store records.
type CoffeeStoreStore interface {
	// ListStores returns one page of records ordered by id. pageToken is the
	// last id of the previous page.
	ListStores(ctx context.Context, pageSize int, pageToken string) (StorePage, error)
	// GetStore returns one record or ErrNotFound.
	GetStore(ctx context.Context, id string) (domain.StoreRecord, error)
	// CreateStore inserts the record unless its id already exists, in which
	// case the stored record is returned with Created=false.
	CreateStore(ctx context.Context, store domain.StoreRecord) (CreateResult, error)
	// FavouriteStore atomically increments the vote counter and returns the
	// updated record, or ErrNotFound.
	FavouriteStore(ctx context.Context, id string) (domain.StoreRecord, error)
	Close() error
}

// ClampPageSize applies the default and maximum page sizes.
func ClampPageSize(pageSize int) int {
	if pageSize <= 0 {
		return DefaultPageSize
	}
	if pageSize > MaxPageSize {
		return MaxPageSize
	}
	return pageSize
}
