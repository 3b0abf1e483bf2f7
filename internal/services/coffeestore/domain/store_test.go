package domain

import (
	"errors"
	"testing"
)

func TestStoreRecordIsEmpty(t *testing.T) {
	t.Parallel()

	if !(StoreRecord{}).IsEmpty() {
		t.Fatal("zero record should be empty")
	}
	if !(StoreRecord{ID: "  ", Name: "Cafe"}).IsEmpty() {
		t.Fatal("blank id should be empty")
	}
	if (StoreRecord{ID: "s1"}).IsEmpty() {
		t.Fatal("record with id should not be empty")
	}
}

func TestStoreRecordNormalizeTrimsAndClamps(t *testing.T) {
	t.Parallel()

	got := StoreRecord{
		ID:            " s1 ",
		Name:          " Blue Bottle ",
		Address:       " 1 Main St ",
		Neighbourhood: " Downtown ",
		ImageURL:      " https://img.test/a.png ",
		Votes:         -3,
	}.Normalize()

	want := StoreRecord{
		ID:            "s1",
		Name:          "Blue Bottle",
		Address:       "1 Main St",
		Neighbourhood: "Downtown",
		ImageURL:      "https://img.test/a.png",
		Votes:         0,
	}
	if got != want {
		t.Fatalf("Normalize() = %+v, want %+v", got, want)
	}
}

func TestStoreRecordValidate(t *testing.T) {
	t.Parallel()

	if err := (StoreRecord{Name: "Cafe"}).Validate(); !errors.Is(err, ErrIDRequired) {
		t.Fatalf("missing id error = %v, want %v", err, ErrIDRequired)
	}
	if err := (StoreRecord{ID: "s1"}).Validate(); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("missing name error = %v, want %v", err, ErrNameRequired)
	}
	if err := (StoreRecord{ID: "s1", Name: "Cafe"}).Validate(); err != nil {
		t.Fatalf("valid record error = %v", err)
	}
}

func TestFindByID(t *testing.T) {
	t.Parallel()

	records := []StoreRecord{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "b", Name: "B2"}}
	got, ok := FindByID(records, " b ")
	if !ok {
		t.Fatal("expected record b")
	}
	if got.Name != "B" {
		t.Fatalf("name = %q, want first match %q", got.Name, "B")
	}
	if _, ok := FindByID(records, ""); ok {
		t.Fatal("blank id should not match")
	}
	if _, ok := FindByID(records, "missing"); ok {
		t.Fatal("unknown id should not match")
	}
}
