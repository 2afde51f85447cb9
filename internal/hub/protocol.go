package hub

import (
	"encoding/json"
	"fmt"

	"github.com/ateliernord/commandes/internal/cart"
)

// Wire events. Clients send update_panier mutations; the server answers
// every cart change with a panier_update carrying the full snapshot.
const (
	EventPanierUpdate = "panier_update"
	EventUpdatePanier = "update_panier"
)

// Envelope frames every message on the push channel. Unknown events and
// extra fields are tolerated; a malformed frame is logged and skipped.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// UpdatePayload is the client-requested mutation: quantite zero removes the
// entry, and a payload carrying the full element snapshot may create one.
type UpdatePayload struct {
	ID       FlexID        `json:"id"`
	Element  *cart.Element `json:"element,omitempty"`
	Quantite int           `json:"quantite"`
}

// SnapshotPayload is the full authoritative cart pushed to viewers.
type SnapshotPayload struct {
	Panier cart.Document `json:"panier"`
	Total  string        `json:"total"`
}

// FlexID accepts the product id as either a JSON string or a number,
// matching what legacy clients send.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id %s is neither string nor number", data)
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

func snapshotFrame(snap cart.Snapshot) ([]byte, error) {
	data, err := json.Marshal(SnapshotPayload{
		Panier: snap.Document(),
		Total:  snap.Total.Format(),
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: EventPanierUpdate, Data: data})
}
