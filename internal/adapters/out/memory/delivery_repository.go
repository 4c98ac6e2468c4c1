package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// DeliveryRepository implements ports.DeliveryRepository on a Store.
type DeliveryRepository struct {
	store *Store
	uow   *UnitOfWork
}

func NewDeliveryRepository(store *Store) *DeliveryRepository {
	return &DeliveryRepository{store: store}
}

func (r *DeliveryRepository) Add(_ context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	stored, err := cloneDelivery(aggregate, aggregate.Version())
	if err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id, orderID := aggregate.ID(), aggregate.OrderID()
	if _, exists := r.store.deliveries[id]; exists {
		return errs.NewConflictError("delivery", id.String())
	}
	if _, exists := r.store.deliveryByOrder[orderID]; exists {
		return errs.NewConflictError("delivery for order", orderID.String())
	}
	r.store.deliveries[id] = stored
	r.store.deliveryByOrder[orderID] = id

	r.uow.remember(func(s *Store) error {
		current, ok := s.deliveries[id]
		if !ok {
			return nil
		}
		if current.Version() != stored.Version() {
			return fmt.Errorf("%w: delivery %s", ErrUndoConflict, id)
		}
		delete(s.deliveries, id)
		delete(s.deliveryByOrder, orderID)
		return nil
	})
	return nil
}

func (r *DeliveryRepository) Get(_ context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.deliveries[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("delivery", id.String())
	}
	return cloneDelivery(stored, stored.Version())
}

func (r *DeliveryRepository) FindByOrder(_ context.Context, orderID kernel.UUID) (*delivery.Delivery, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id, ok := r.store.deliveryByOrder[orderID]
	if !ok {
		return nil, errs.NewObjectNotFoundError("delivery for order", orderID.String())
	}
	stored := r.store.deliveries[id]
	return cloneDelivery(stored, stored.Version())
}

func (r *DeliveryRepository) FindActiveByDriver(_ context.Context, driverID kernel.UUID) ([]*delivery.Delivery, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*delivery.Delivery
	for _, stored := range r.store.deliveries {
		if !stored.IsActive() || !stored.DriverID().IsEqual(driverID) {
			continue
		}
		d, err := cloneDelivery(stored, stored.Version())
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}

	slices.SortFunc(result, func(a, b *delivery.Delivery) int {
		return a.CreatedAt().Compare(b.CreatedAt())
	})
	return result, nil
}

func (r *DeliveryRepository) ConditionalUpdate(_ context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	next, err := cloneDelivery(aggregate, aggregate.Version()+1)
	if err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id := aggregate.ID()
	previous, ok := r.store.deliveries[id]
	if !ok {
		return errs.NewObjectNotFoundError("delivery", id.String())
	}
	if previous.Version() != aggregate.Version() {
		return errs.NewConflictError("delivery", id.String())
	}

	r.store.deliveries[id] = next
	aggregate.MarkPersisted()

	r.uow.remember(func(s *Store) error {
		if current, exists := s.deliveries[id]; !exists || current.Version() != next.Version() {
			return fmt.Errorf("%w: delivery %s", ErrUndoConflict, id)
		}
		s.deliveries[id] = previous
		return nil
	})
	return nil
}

func (r *DeliveryRepository) ListStatusPairs(_ context.Context) ([]ports.StatusPairRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records := make([]ports.StatusPairRecord, 0, len(r.store.orders))
	for orderID, o := range r.store.orders {
		if o.Status() == order.Pending {
			continue
		}

		record := ports.StatusPairRecord{
			OrderID: orderID,
			Pair:    services.StatusPair{Order: o.Status()},
		}
		if deliveryID, ok := r.store.deliveryByOrder[orderID]; ok {
			id := deliveryID
			record.DeliveryID = &id
			record.Pair.Delivery = r.store.deliveries[deliveryID].Status()
			record.Pair.HasDelivery = true
		}
		records = append(records, record)
	}

	slices.SortFunc(records, func(a, b ports.StatusPairRecord) int {
		return strings.Compare(a.OrderID.String(), b.OrderID.String())
	})
	return records, nil
}
