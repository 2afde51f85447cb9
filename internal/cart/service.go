package cart

import (
	"context"
	"sync"

	"github.com/ateliernord/commandes/pkg/db/models"
	pkgerrors "github.com/ateliernord/commandes/pkg/errors"
	"github.com/ateliernord/commandes/pkg/logger"
	"github.com/ateliernord/commandes/pkg/metrics"
	"github.com/ateliernord/commandes/pkg/money"
)

// ViewerUpdate is a mutation requested over the push channel. Quantity zero
// removes the entry. When the entry is absent and the payload carries a full
// element snapshot, the entry is created from it (legacy client behaviour).
type ViewerUpdate struct {
	ProductID string
	Element   *Element
	Quantity  int
}

// Service is the single shared cart. Every mutation is one logical
// transaction: mutate in memory, persist, then notify subscribers. When
// persistence fails the in-memory change is rolled back and no notification
// fires. Desktop-originated and viewer-originated calls all funnel through
// the same mutex.
type Service interface {
	AddOrIncrement(ctx context.Context, product models.Product, quantity int) error
	SetQuantity(ctx context.Context, productID string, quantity int) error
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
	ApplyViewerUpdate(ctx context.Context, update ViewerUpdate) error
	Snapshot() Snapshot
	Contains(productID int64) bool
	Restore(ctx context.Context)
	OnChange(fn func(Snapshot))
}

type service struct {
	mu        sync.Mutex
	entries   map[string]Entry
	store     Store
	listeners []func(Snapshot)
	logg      *logger.Logger
	metrics   *metrics.Metrics
}

// NewService builds the cart backed by the given store. Register listeners
// with OnChange before serving traffic.
func NewService(store Store, logg *logger.Logger, m *metrics.Metrics) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart store required")
	}
	return &service{
		entries: map[string]Entry{},
		store:   store,
		logg:    logg,
		metrics: m,
	}, nil
}

// Restore loads the persisted cart. A missing or malformed file is logged
// and treated as an empty cart; startup is never blocked.
func (s *service) Restore(ctx context.Context) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart file unreadable, starting empty")
		}
		doc = Document{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entriesFromDocument(doc)
}

func (s *service) OnChange(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *service) AddOrIncrement(ctx context.Context, product models.Product, quantity int) error {
	err := s.mutate(ctx, func() (rollback func(), err error) {
		if quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantite must be a positive integer")
		}

		key := entryKey(product.ID)
		prev, existed := s.entries[key]
		if existed {
			s.entries[key] = Entry{Product: prev.Product, Quantity: prev.Quantity + quantity}
		} else {
			s.entries[key] = Entry{Product: product, Quantity: quantity}
		}
		return s.rollbackEntry(key, prev, existed), nil
	})
	s.metrics.ObserveCartMutation("add", err)
	return err
}

func (s *service) SetQuantity(ctx context.Context, productID string, quantity int) error {
	err := s.mutate(ctx, func() (rollback func(), err error) {
		if quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantite must not be negative")
		}

		prev, existed := s.entries[productID]
		if !existed {
			// Only AddOrIncrement creates entries; a set on an unknown id is
			// a no-op regardless of the requested quantity.
			return nil, errNoop
		}
		if quantity == 0 {
			delete(s.entries, productID)
		} else {
			s.entries[productID] = Entry{Product: prev.Product, Quantity: quantity}
		}
		return s.rollbackEntry(productID, prev, existed), nil
	})
	s.metrics.ObserveCartMutation("set", err)
	return err
}

func (s *service) Remove(ctx context.Context, productID string) error {
	err := s.mutate(ctx, func() (rollback func(), err error) {
		prev, existed := s.entries[productID]
		if !existed {
			return nil, errNoop
		}
		delete(s.entries, productID)
		return s.rollbackEntry(productID, prev, existed), nil
	})
	s.metrics.ObserveCartMutation("remove", err)
	return err
}

func (s *service) Clear(ctx context.Context) error {
	err := s.mutate(ctx, func() (rollback func(), err error) {
		prev := s.entries
		s.entries = map[string]Entry{}
		return func() { s.entries = prev }, nil
	})
	s.metrics.ObserveCartMutation("clear", err)
	return err
}

func (s *service) ApplyViewerUpdate(ctx context.Context, update ViewerUpdate) error {
	err := s.mutate(ctx, func() (rollback func(), err error) {
		if update.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantite must not be negative")
		}

		prev, existed := s.entries[update.ProductID]
		switch {
		case update.Quantity == 0:
			if !existed {
				return nil, errNoop
			}
			delete(s.entries, update.ProductID)
		case existed:
			s.entries[update.ProductID] = Entry{Product: prev.Product, Quantity: update.Quantity}
		case update.Element != nil:
			s.entries[update.ProductID] = Entry{Product: update.Element.Product(), Quantity: update.Quantity}
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product and no element snapshot")
		}
		return s.rollbackEntry(update.ProductID, prev, existed), nil
	})
	s.metrics.ObserveCartMutation("viewer_update", err)
	return err
}

func (s *service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *service) Contains(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[entryKey(productID)]
	return ok
}

// errNoop signals a mutation that matched nothing; the cart is unchanged,
// nothing is persisted and nobody is notified, and the caller sees success.
var errNoop = pkgerrors.New(pkgerrors.CodeValidation, "noop")

// mutate runs fn under the cart lock, persists, and notifies listeners.
// Listeners run while the lock is held, which is what orders broadcasts
// strictly with respect to the mutation sequence; they must not block.
func (s *service) mutate(ctx context.Context, fn func() (rollback func(), err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rollback, err := fn()
	if err != nil {
		if err == errNoop {
			return nil
		}
		return err
	}

	if err := s.store.Save(ctx, documentFromEntries(s.entries)); err != nil {
		if rollback != nil {
			rollback()
		}
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "saving cart")
	}

	snap := s.snapshotLocked()
	for _, listener := range s.listeners {
		listener(snap)
	}
	return nil
}

func (s *service) rollbackEntry(key string, prev Entry, existed bool) func() {
	return func() {
		if existed {
			s.entries[key] = prev
		} else {
			delete(s.entries, key)
		}
	}
}

func (s *service) snapshotLocked() Snapshot {
	entries := make(map[string]Entry, len(s.entries))
	var total money.Cents
	for key, entry := range s.entries {
		entries[key] = entry
		total += entry.LineTotal()
	}
	return Snapshot{Entries: entries, Total: total}
}
