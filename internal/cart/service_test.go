package cart

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ateliernord/commandes/pkg/db/models"
	pkgerrors "github.com/ateliernord/commandes/pkg/errors"
	"github.com/ateliernord/commandes/pkg/money"
)

var visM6 = models.Product{ID: 1, Description: "Vis M6", Type: "Fixation", PriceCents: 50, Brand: "Acme"}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewFileStore(filepath.Join(t.TempDir(), "panier.json")), nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestAddOrIncrementAccumulates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.AddOrIncrement(ctx, visM6, 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.AddOrIncrement(ctx, visM6, 2); err != nil {
		t.Fatalf("second add: %v", err)
	}

	snap := svc.Snapshot()
	if got := snap.Entries["1"].Quantity; got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}
	if snap.Total != money.Cents(250) {
		t.Fatalf("expected total 250 cents, got %d", snap.Total)
	}
}

func TestAddOrIncrementRejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestService(t)

	for _, qty := range []int{0, -1} {
		err := svc.AddOrIncrement(context.Background(), visM6, qty)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("quantity %d: expected validation error, got %v", qty, err)
		}
	}
	if len(svc.Snapshot().Entries) != 0 {
		t.Fatalf("rejected add should not touch the cart")
	}
}

func TestSetQuantityZeroRemovesEntry(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.AddOrIncrement(ctx, visM6, 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := svc.Snapshot().Total; got != 150 {
		t.Fatalf("expected total 150 cents, got %d", got)
	}

	if err := svc.SetQuantity(ctx, "1", 0); err != nil {
		t.Fatalf("set zero: %v", err)
	}
	snap := svc.Snapshot()
	if len(snap.Entries) != 0 || snap.Total != 0 {
		t.Fatalf("expected empty cart, got %+v", snap)
	}
}

func TestSetQuantityUnknownIDIsNoop(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Neither a zero-set nor a positive set may create an entry.
	if err := svc.SetQuantity(ctx, "1", 0); err != nil {
		t.Fatalf("zero-set on empty cart: %v", err)
	}
	if err := svc.SetQuantity(ctx, "1", 5); err != nil {
		t.Fatalf("positive set on empty cart: %v", err)
	}
	if len(svc.Snapshot().Entries) != 0 {
		t.Fatalf("set_quantity must never create entries")
	}
}

func TestSetQuantityRejectsNegative(t *testing.T) {
	svc := newTestService(t)
	err := svc.SetQuantity(context.Background(), "1", -2)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	other := models.Product{ID: 2, Description: "Ecrou M6", Type: "Fixation", PriceCents: 30, Brand: "Acme"}
	if err := svc.AddOrIncrement(ctx, visM6, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.AddOrIncrement(ctx, other, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Remove(ctx, "1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.Remove(ctx, "99"); err != nil {
		t.Fatalf("remove of absent id should be a no-op: %v", err)
	}
	if got := len(svc.Snapshot().Entries); got != 1 {
		t.Fatalf("expected one entry left, got %d", got)
	}

	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := len(svc.Snapshot().Entries); got != 0 {
		t.Fatalf("expected empty cart after clear, got %d entries", got)
	}
}

func TestSnapshotTotalMatchesLineSums(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	products := []models.Product{
		{ID: 1, Description: "Vis M6", Type: "Fixation", PriceCents: 50, Brand: "Acme"},
		{ID: 2, Description: "Perceuse", Type: "Outillage", PriceCents: 12999, Brand: "Bosch"},
		{ID: 3, Description: "Scie", Type: "Outillage", PriceCents: 2450, Brand: "Stanley"},
	}
	for i, p := range products {
		if err := svc.AddOrIncrement(ctx, p, i+1); err != nil {
			t.Fatalf("add %d: %v", p.ID, err)
		}
	}
	if err := svc.SetQuantity(ctx, "2", 5); err != nil {
		t.Fatalf("set: %v", err)
	}

	snap := svc.Snapshot()
	var want money.Cents
	for _, entry := range snap.Entries {
		if entry.Quantity <= 0 {
			t.Fatalf("entry with non-positive quantity stored: %+v", entry)
		}
		want += entry.LineTotal()
	}
	if snap.Total != want {
		t.Fatalf("total %d does not match sum of lines %d", snap.Total, want)
	}
}

func TestSnapshotIsDetachedFromCart(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.AddOrIncrement(ctx, visM6, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	snap := svc.Snapshot()
	snap.Entries["1"] = Entry{Product: visM6, Quantity: 99}

	if got := svc.Snapshot().Entries["1"].Quantity; got != 1 {
		t.Fatalf("mutating a snapshot leaked into the cart: %d", got)
	}
}

func TestPersistRestoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panier.json")
	ctx := context.Background()

	svc, err := NewService(NewFileStore(path), nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if err := svc.AddOrIncrement(ctx, visM6, 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	other := models.Product{ID: 7, Description: "Colle", Type: "Consommable", PriceCents: 1250, Brand: "Pattex"}
	if err := svc.AddOrIncrement(ctx, other, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	before := svc.Snapshot()

	restored, err := NewService(NewFileStore(path), nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	restored.Restore(ctx)
	after := restored.Snapshot()

	if len(after.Entries) != len(before.Entries) {
		t.Fatalf("expected %d entries, got %d", len(before.Entries), len(after.Entries))
	}
	for key, want := range before.Entries {
		got, ok := after.Entries[key]
		if !ok {
			t.Fatalf("entry %s lost in round trip", key)
		}
		if got != want {
			t.Fatalf("entry %s changed: want %+v got %+v", key, want, got)
		}
	}
	if after.Total != before.Total {
		t.Fatalf("total changed: want %d got %d", before.Total, after.Total)
	}
}

func TestApplyViewerUpdate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	element := elementFromProduct(visM6)
	if err := svc.ApplyViewerUpdate(ctx, ViewerUpdate{ProductID: "1", Element: &element, Quantity: 2}); err != nil {
		t.Fatalf("create from element: %v", err)
	}
	if got := svc.Snapshot().Entries["1"].Quantity; got != 2 {
		t.Fatalf("expected quantity 2, got %d", got)
	}

	if err := svc.ApplyViewerUpdate(ctx, ViewerUpdate{ProductID: "1", Quantity: 4}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got := svc.Snapshot().Entries["1"].Quantity; got != 4 {
		t.Fatalf("expected quantity 4, got %d", got)
	}

	if err := svc.ApplyViewerUpdate(ctx, ViewerUpdate{ProductID: "1", Quantity: 0}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(svc.Snapshot().Entries) != 0 {
		t.Fatalf("expected empty cart")
	}

	err := svc.ApplyViewerUpdate(ctx, ViewerUpdate{ProductID: "9", Quantity: 3})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error without snapshot, got %v", err)
	}
}

type failingStore struct {
	saves int
	fail  bool
}

func (f *failingStore) Save(context.Context, Document) error {
	f.saves++
	if f.fail {
		return errors.New("disk full")
	}
	return nil
}

func (f *failingStore) Load(context.Context) (Document, error) {
	return Document{}, nil
}

func TestPersistenceFailureRollsBackAndSkipsNotify(t *testing.T) {
	store := &failingStore{}
	svc, err := NewService(store, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	if err := svc.AddOrIncrement(ctx, visM6, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	var notified int
	svc.OnChange(func(Snapshot) { notified++ })

	store.fail = true
	err = svc.AddOrIncrement(ctx, visM6, 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	if got := svc.Snapshot().Entries["1"].Quantity; got != 2 {
		t.Fatalf("failed mutation must roll back, quantity is %d", got)
	}
	if notified != 0 {
		t.Fatalf("broadcast must not fire for a mutation that failed to persist")
	}

	store.fail = false
	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if notified != 1 {
		t.Fatalf("expected one notification after successful mutation, got %d", notified)
	}
}

func TestNoopMutationsDoNotNotify(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var notified int
	svc.OnChange(func(Snapshot) { notified++ })

	if err := svc.SetQuantity(ctx, "42", 0); err != nil {
		t.Fatalf("noop set: %v", err)
	}
	if err := svc.Remove(ctx, "42"); err != nil {
		t.Fatalf("noop remove: %v", err)
	}
	if notified != 0 {
		t.Fatalf("no-op mutations must not broadcast, got %d notifications", notified)
	}
}

func TestListenersSeeEveryMutationInOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var totals []money.Cents
	svc.OnChange(func(snap Snapshot) { totals = append(totals, snap.Total) })

	if err := svc.AddOrIncrement(ctx, visM6, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.AddOrIncrement(ctx, visM6, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.SetQuantity(ctx, "1", 10); err != nil {
		t.Fatalf("set: %v", err)
	}

	want := []money.Cents{50, 100, 500}
	if len(totals) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(totals))
	}
	for i := range want {
		if totals[i] != want[i] {
			t.Fatalf("notification %d: want total %d got %d", i, want[i], totals[i])
		}
	}
}

func TestContains(t *testing.T) {
	svc := newTestService(t)
	if svc.Contains(1) {
		t.Fatalf("empty cart should not contain anything")
	}
	if err := svc.AddOrIncrement(context.Background(), visM6, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !svc.Contains(1) {
		t.Fatalf("expected cart to contain product 1")
	}
	if svc.Contains(2) {
		t.Fatalf("cart should not contain product 2")
	}
}
