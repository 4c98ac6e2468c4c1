package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"fulfillment/internal/core/ports"
)

var (
	// ErrNoTransaction is returned by Commit and Rollback without a prior Begin.
	ErrNoTransaction = errors.New("no active transaction")

	// ErrUndoConflict is returned by Rollback when a journaled write can no
	// longer be undone because another writer changed the same entity.
	ErrUndoConflict = errors.New("cannot undo write overwritten by a concurrent writer")
)

// undo reverts one write. It runs with the store lock held.
type undo func(s *Store) error

// UnitOfWorkFactory creates units of work sharing one Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork journals every write made through its repositories between Begin
// and Commit so Rollback can revert them in reverse order.
type UnitOfWork struct {
	store *Store

	mu      sync.Mutex
	active  bool
	journal []undo
}

// Begin starts journaling. Calling it twice keeps the current transaction.
func (uow *UnitOfWork) Begin(_ context.Context) error {
	uow.mu.Lock()
	defer uow.mu.Unlock()

	if uow.active {
		return nil
	}
	uow.active = true
	uow.journal = nil
	return nil
}

func (uow *UnitOfWork) Commit(_ context.Context) error {
	uow.mu.Lock()
	defer uow.mu.Unlock()

	if !uow.active {
		return ErrNoTransaction
	}
	uow.active = false
	uow.journal = nil
	return nil
}

// Rollback reverts the journaled writes, newest first. Every entry is tried;
// the failures are joined into the returned error.
func (uow *UnitOfWork) Rollback(_ context.Context) error {
	uow.mu.Lock()
	journal := uow.journal
	active := uow.active
	uow.active = false
	uow.journal = nil
	uow.mu.Unlock()

	if !active {
		return ErrNoTransaction
	}

	uow.store.mu.Lock()
	defer uow.store.mu.Unlock()

	var errs []error
	for _, revert := range slices.Backward(journal) {
		if err := revert(uow.store); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{store: uow.store, uow: uow}
}

func (uow *UnitOfWork) DeliveryRepository() ports.DeliveryRepository {
	return &DeliveryRepository{store: uow.store, uow: uow}
}

func (uow *UnitOfWork) DriverRepository() ports.DriverRepository {
	return &DriverRepository{store: uow.store, uow: uow}
}

// remember journals revert when a transaction is active. Writes outside a
// transaction are final.
func (uow *UnitOfWork) remember(revert undo) {
	if uow == nil {
		return
	}
	uow.mu.Lock()
	defer uow.mu.Unlock()

	if uow.active {
		uow.journal = append(uow.journal, revert)
	}
}
