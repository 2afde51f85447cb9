package cart

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ateliernord/commandes/pkg/db/models"
	"github.com/ateliernord/commandes/pkg/money"
)

// Document is the serialized cart as stored on disk and pushed to viewers:
// product id (string form) to entry. The shape predates this service and is
// shared with legacy clients, so it must stay readable and writable as-is.
type Document map[string]WireEntry

// WireEntry pairs the positional product snapshot with its quantity.
// Unknown extra fields are ignored on read; both fields are always written.
type WireEntry struct {
	Element  Element `json:"element"`
	Quantity int     `json:"quantite"`
}

// Element is the legacy positional snapshot of a product:
// [id, description, type, prix, marque].
type Element struct {
	ID          int64
	Description string
	Type        string
	PriceCents  money.Cents
	Brand       string
}

func elementFromProduct(p models.Product) Element {
	return Element{
		ID:          p.ID,
		Description: p.Description,
		Type:        p.Type,
		PriceCents:  p.PriceCents,
		Brand:       p.Brand,
	}
}

// Product rebuilds the typed snapshot from the wire element.
func (e Element) Product() models.Product {
	return models.Product{
		ID:          e.ID,
		Description: e.Description,
		Type:        e.Type,
		PriceCents:  e.PriceCents,
		Brand:       e.Brand,
	}
}

// MarshalJSON writes the five positional fields, price formatted.
func (e Element) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.ID, e.Description, e.Type, e.PriceCents.Format(), e.Brand})
}

// UnmarshalJSON accepts the positional form written by any past client:
// the id as a number or string, the price as a formatted string or a bare
// number, and a missing marque field on very old rows.
func (e *Element) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("element is not a list: %w", err)
	}
	if len(fields) < 4 {
		return fmt.Errorf("element has %d fields, want at least 4", len(fields))
	}

	id, err := decodeID(fields[0])
	if err != nil {
		return err
	}
	var description, typ string
	if err := json.Unmarshal(fields[1], &description); err != nil {
		return fmt.Errorf("element description: %w", err)
	}
	if err := json.Unmarshal(fields[2], &typ); err != nil {
		return fmt.Errorf("element type: %w", err)
	}
	price, err := decodePrice(fields[3])
	if err != nil {
		return err
	}
	var brand string
	if len(fields) > 4 {
		if err := json.Unmarshal(fields[4], &brand); err != nil {
			return fmt.Errorf("element marque: %w", err)
		}
	}

	*e = Element{ID: id, Description: description, Type: typ, PriceCents: price, Brand: brand}
	return nil
}

func decodeID(raw json.RawMessage) (int64, error) {
	var id int64
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("element id %s is neither number nor string", raw)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("element id %q: %w", s, err)
	}
	return id, nil
}

func decodePrice(raw json.RawMessage) (money.Cents, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		cents, err := money.Parse(s)
		if err != nil {
			return 0, err
		}
		return cents, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("element prix %s is neither string nor number", raw)
	}
	return money.Parse(n.String())
}

func documentFromEntries(entries map[string]Entry) Document {
	doc := make(Document, len(entries))
	for key, entry := range entries {
		doc[key] = WireEntry{
			Element:  elementFromProduct(entry.Product),
			Quantity: entry.Quantity,
		}
	}
	return doc
}

func entriesFromDocument(doc Document) map[string]Entry {
	entries := make(map[string]Entry, len(doc))
	for key, wireEntry := range doc {
		if wireEntry.Quantity <= 0 {
			continue
		}
		entries[key] = Entry{
			Product:  wireEntry.Element.Product(),
			Quantity: wireEntry.Quantity,
		}
	}
	return entries
}
