package cart

import (
	"sort"
	"strconv"

	"github.com/ateliernord/commandes/pkg/db/models"
	"github.com/ateliernord/commandes/pkg/money"
)

// Entry is one cart line: a snapshot of the product taken when it was added,
// plus the current quantity. Editing or deleting the catalog product later
// does not touch the snapshot.
type Entry struct {
	Product  models.Product
	Quantity int
}

// LineTotal is quantity times the snapshot unit price.
func (e Entry) LineTotal() money.Cents {
	return e.Product.PriceCents.Times(e.Quantity)
}

// Snapshot is an immutable copy of the whole cart with its grand total.
type Snapshot struct {
	Entries map[string]Entry
	Total   money.Cents
}

// Document renders the snapshot in the legacy wire shape.
func (s Snapshot) Document() Document {
	return documentFromEntries(s.Entries)
}

// SortedEntries returns the entries ordered by numeric product id, for
// display surfaces that need a stable order.
func (s Snapshot) SortedEntries() []Entry {
	entries := make([]Entry, 0, len(s.Entries))
	for _, entry := range s.Entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Product.ID < entries[j].Product.ID
	})
	return entries
}

func entryKey(productID int64) string {
	return strconv.FormatInt(productID, 10)
}
