package memory

import (
	"context"
	"fmt"
	"slices"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// OrderRepository implements ports.OrderRepository on a Store.
type OrderRepository struct {
	store *Store
	uow   *UnitOfWork
}

func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	stored, err := cloneOrder(aggregate, aggregate.Version())
	if err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id := aggregate.ID()
	if _, exists := r.store.orders[id]; exists {
		return errs.NewConflictError("order", id.String())
	}
	r.store.orders[id] = stored

	r.uow.remember(func(s *Store) error {
		current, ok := s.orders[id]
		if !ok {
			return nil
		}
		if current.Version() != stored.Version() {
			return fmt.Errorf("%w: order %s", ErrUndoConflict, id)
		}
		delete(s.orders, id)
		return nil
	})
	return nil
}

func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return cloneOrder(stored, stored.Version())
}

func (r *OrderRepository) ConditionalUpdate(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	next, err := cloneOrder(aggregate, aggregate.Version()+1)
	if err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id := aggregate.ID()
	previous, ok := r.store.orders[id]
	if !ok {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	if previous.Version() != aggregate.Version() {
		return errs.NewConflictError("order", id.String())
	}

	r.store.orders[id] = next
	aggregate.MarkPersisted()

	r.uow.remember(func(s *Store) error {
		if current, exists := s.orders[id]; !exists || current.Version() != next.Version() {
			return fmt.Errorf("%w: order %s", ErrUndoConflict, id)
		}
		s.orders[id] = previous
		return nil
	})
	return nil
}

func (r *OrderRepository) FindReadyWithoutDelivery(_ context.Context, limit int) ([]*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var ready []*order.Order
	for id, stored := range r.store.orders {
		if stored.Status() != order.Ready {
			continue
		}
		if _, dispatched := r.store.deliveryByOrder[id]; dispatched {
			continue
		}
		ready = append(ready, stored)
	}

	slices.SortFunc(ready, func(a, b *order.Order) int {
		return a.CreatedAt().Compare(b.CreatedAt())
	})
	if limit > 0 && len(ready) > limit {
		ready = ready[:limit]
	}

	result := make([]*order.Order, 0, len(ready))
	for _, stored := range ready {
		o, err := cloneOrder(stored, stored.Version())
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, nil
}
