package share

import (
	"fmt"
	"strings"

	"github.com/ateliernord/commandes/internal/cart"
	"github.com/ateliernord/commandes/pkg/errors"
	"github.com/ateliernord/commandes/pkg/money"
)

// Summary renders the cart as the tab separated text the desktop client
// used to place on the clipboard, one line per entry:
// description, id, unit marker, quantity, unit price, line total.
func Summary(snap cart.Snapshot) (string, error) {
	entries := snap.SortedEntries()
	if len(entries) == 0 {
		return "", errors.New(errors.CodeConflict, "le panier est vide")
	}

	var b strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&b, "%s\t%d\tU\t%d\t%s\t%s\n",
			entry.Product.Description,
			entry.Product.ID,
			entry.Quantity,
			compact(entry.Product.PriceCents),
			compact(entry.LineTotal()),
		)
	}
	return b.String(), nil
}

// compact writes a price the way the legacy clipboard did: "129.99€",
// no space before the sign.
func compact(c money.Cents) string {
	return strings.ReplaceAll(c.Format(), " €", "€")
}
