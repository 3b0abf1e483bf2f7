// Package firestore provides a Cloud Firestore-backed coffee store
// implementation. Documents are keyed by store id.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/storage"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "coffee_stores"

// Config selects the Firestore project and collection.
type Config struct {
	ProjectID       string
	CredentialsFile string
	Collection      string
}

// Store persists coffee store documents in Firestore.
type Store struct {
	client     *firestore.Client
	collection string
}

// Open creates a Firestore client. An empty CredentialsFile falls back to
// Application Default Credentials (or FIRESTORE_EMULATOR_HOST).
func Open(ctx context.Context, cfg Config) (*Store, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, fmt.Errorf("firestore project id is required")
	}
	var opts []option.ClientOption
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	log.Printf("firestore connected project=%s", projectID)
	return New(client, cfg.Collection), nil
}

// New wraps an existing client.
func New(client *firestore.Client, collection string) *Store {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{client: client, collection: collection}
}

// Close closes the Firestore client.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Store) col() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.client == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// ListStores returns one page of store documents ordered by document id.
func (s *Store) ListStores(ctx context.Context, pageSize int, pageToken string) (storage.StorePage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.StorePage{}, err
	}
	pageSize = storage.ClampPageSize(pageSize)

	q := s.col().OrderBy(firestore.DocumentID, firestore.Asc)
	if token := strings.TrimSpace(pageToken); token != "" {
		q = q.StartAfter(token)
	}
	iter := q.Limit(pageSize + 1).Documents(ctx)
	defer iter.Stop()

	page := storage.StorePage{Stores: make([]domain.StoreRecord, 0, pageSize)}
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return storage.StorePage{}, fmt.Errorf("list coffee stores: %w", err)
		}
		record, err := docToRecord(doc)
		if err != nil {
			return storage.StorePage{}, err
		}
		page.Stores = append(page.Stores, record)
	}
	if len(page.Stores) > pageSize {
		page.NextPageToken = page.Stores[pageSize-1].ID
		page.Stores = page.Stores[:pageSize]
	}
	return page, nil
}

// GetStore returns one store document by id.
func (s *Store) GetStore(ctx context.Context, id string) (domain.StoreRecord, error) {
	if err := s.ready(ctx); err != nil {
		return domain.StoreRecord{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.StoreRecord{}, domain.ErrIDRequired
	}
	doc, err := s.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.StoreRecord{}, storage.ErrNotFound
		}
		return domain.StoreRecord{}, fmt.Errorf("get coffee store: %w", err)
	}
	return docToRecord(doc)
}

// CreateStore creates the document unless it already exists.
func (s *Store) CreateStore(ctx context.Context, store domain.StoreRecord) (storage.CreateResult, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CreateResult{}, err
	}
	store = store.Normalize()
	if err := store.Validate(); err != nil {
		return storage.CreateResult{}, err
	}

	_, err := s.col().Doc(store.ID).Create(ctx, recordToDoc(store))
	if err != nil {
		if status.Code(err) != codes.AlreadyExists {
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

// FavouriteStore increments the vote counter inside a transaction so the
// returned record reflects exactly this increment.
func (s *Store) FavouriteStore(ctx context.Context, id string) (domain.StoreRecord, error) {
	if err := s.ready(ctx); err != nil {
		return domain.StoreRecord{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.StoreRecord{}, domain.ErrIDRequired
	}

	ref := s.col().Doc(id)
	var updated domain.StoreRecord
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		record, err := docToRecord(doc)
		if err != nil {
			return err
		}
		if err := tx.Update(ref, []firestore.Update{
			{Path: "votes", Value: firestore.Increment(1)},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		}); err != nil {
			return err
		}
		record.Votes++
		updated = record
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.StoreRecord{}, storage.ErrNotFound
		}
		return domain.StoreRecord{}, fmt.Errorf("favourite coffee store: %w", err)
	}
	return updated, nil
}

func docToRecord(doc *firestore.DocumentSnapshot) (domain.StoreRecord, error) {
	if doc == nil {
		return domain.StoreRecord{}, storage.ErrNotFound
	}
	var record domain.StoreRecord
	if err := doc.DataTo(&record); err != nil {
		return domain.StoreRecord{}, fmt.Errorf("decode coffee store %s: %w", doc.Ref.ID, err)
	}
	if strings.TrimSpace(record.ID) == "" {
		record.ID = doc.Ref.ID
	}
	return record.Normalize(), nil
}

func recordToDoc(record domain.StoreRecord) map[string]any {
	return map[string]any{
		"id":            record.ID,
		"name":          record.Name,
		"address":       record.Address,
		"neighbourhood": record.Neighbourhood,
		"imageUrl":      record.ImageURL,
		"votes":         record.Votes,
		"createdAt":     firestore.ServerTimestamp,
		"updatedAt":     firestore.ServerTimestamp,
	}
}

var _ storage.CoffeeStoreStore = (*Store)(nil)
