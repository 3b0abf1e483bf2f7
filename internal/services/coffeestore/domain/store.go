// Package domain defines the coffee store record shared by the API service
// and the storefront.
package domain

import (
	"errors"
	"strings"
)

var (
	// ErrIDRequired indicates a record without a stable identifier.
	ErrIDRequired = errors.New("id is required")
	// ErrNameRequired indicates a record without a display name.
	ErrNameRequired = errors.New("name is required")
)

// StoreRecord is one coffee shop's displayable and mutable data.
type StoreRecord struct {
	ID            string `json:"id" firestore:"id"`
	Name          string `json:"name" firestore:"name"`
	Address       string `json:"address" firestore:"address"`
	Neighbourhood string `json:"neighbourhood" firestore:"neighbourhood"`
	ImageURL      string `json:"imageUrl" firestore:"imageUrl"`
	Votes         int    `json:"votes" firestore:"votes"`
}

// IsEmpty reports whether the record carries no identifier, which is how an
// absent build-time record is represented.
func (r StoreRecord) IsEmpty() bool {
	return strings.TrimSpace(r.ID) == ""
}

// Normalize trims text fields and clamps the vote counter at zero.
func (r StoreRecord) Normalize() StoreRecord {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.Neighbourhood = strings.TrimSpace(r.Neighbourhood)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	if r.Votes < 0 {
		r.Votes = 0
	}
	return r
}

// Validate checks the fields a create request must carry.
func (r StoreRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrIDRequired
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// FindByID returns the first record in records whose id matches.
func FindByID(records []StoreRecord, id string) (StoreRecord, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return StoreRecord{}, false
	}
	for _, record := range records {
		if strings.TrimSpace(record.ID) == id {
			return record, true
		}
	}
	return StoreRecord{}, false
}
