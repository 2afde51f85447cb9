package cart

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreMissingFileYieldsEmptyDocument(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "panier.json"))

	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("expected empty document, got %d entries", len(doc))
	}
}

func TestFileStoreEmptyFileYieldsEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panier.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("empty file should not error: %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("expected empty document, got %d entries", len(doc))
	}
}

func TestFileStoreCorruptFileReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panier.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := NewFileStore(path).Load(context.Background()); err == nil {
		t.Fatalf("corrupt file should surface an error for the caller to log")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panier.json")
	store := NewFileStore(path)
	ctx := context.Background()

	doc := Document{
		"1": {Element: Element{ID: 1, Description: "Vis M6", Type: "Fixation", PriceCents: 50, Brand: "Acme"}, Quantity: 3},
		"7": {Element: Element{ID: 7, Description: "Colle", Type: "Consommable", PriceCents: 1250, Brand: "Pattex"}, Quantity: 1},
	}
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(doc) {
		t.Fatalf("expected %d entries, got %d", len(doc), len(got))
	}
	for key, want := range doc {
		entry, ok := got[key]
		if !ok {
			t.Fatalf("entry %s missing after round trip", key)
		}
		if entry != want {
			t.Fatalf("entry %s changed: want %+v got %+v", key, want, entry)
		}
	}
}

func TestFileStoreToleratesLegacyVariants(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panier.json")
	// A file as an old client might have written it: string ids inside the
	// element, bare numeric price, an extra unknown field, and a stale
	// zero-quantity row.
	legacy := `{
  "3": {"element": ["3", "Tournevis", "Outillage", 4.5, "Facom"], "quantite": 2, "note": "ignore me"},
  "4": {"element": [4, "Marteau", "Outillage", "9,99 €"], "quantite": 1},
  "5": {"element": [5, "Obsolete", "Outillage", "1.00 €", "X"], "quantite": 0}
}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	entries := entriesFromDocument(doc)
	if len(entries) != 2 {
		t.Fatalf("expected the two live entries, got %d", len(entries))
	}

	screwdriver := entries["3"]
	if screwdriver.Product.ID != 3 || screwdriver.Product.PriceCents != 450 {
		t.Fatalf("unexpected screwdriver snapshot: %+v", screwdriver.Product)
	}
	hammer := entries["4"]
	if hammer.Product.PriceCents != 999 || hammer.Product.Brand != "" {
		t.Fatalf("unexpected hammer snapshot: %+v", hammer.Product)
	}
}
