package memory

import (
	"context"
	"fmt"

	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// DriverRepository implements ports.DriverRepository on a Store. Claim,
// Release and RecordCompletion apply the driver's own rules to the stored
// copy under the store lock, which makes each of them a compare-and-set.
type DriverRepository struct {
	store *Store
	uow   *UnitOfWork
}

func NewDriverRepository(store *Store) *DriverRepository {
	return &DriverRepository{store: store}
}

func (r *DriverRepository) Add(_ context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	stored, err := cloneDriver(aggregate)
	if err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id := aggregate.ID()
	if _, exists := r.store.drivers[id]; exists {
		return errs.NewConflictError("driver", id.String())
	}
	r.store.drivers[id] = stored
	r.store.driverRevisions[id]++
	revision := r.store.driverRevisions[id]

	r.uow.remember(func(s *Store) error {
		if s.driverRevisions[id] != revision {
			return fmt.Errorf("%w: driver %s", ErrUndoConflict, id)
		}
		delete(s.drivers, id)
		return nil
	})
	return nil
}

func (r *DriverRepository) Get(_ context.Context, id kernel.UUID) (*driver.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.drivers[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("driver", id.String())
	}
	return cloneDriver(stored)
}

func (r *DriverRepository) FindAvailableWithin(_ context.Context, box kernel.BoundingBox) ([]*driver.Driver, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*driver.Driver
	for _, stored := range r.store.drivers {
		if !stored.IsEligible() || !box.Contains(stored.Location().Lat(), stored.Location().Lng()) {
			continue
		}
		d, err := cloneDriver(stored)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

func (r *DriverRepository) Claim(_ context.Context, id kernel.UUID) error {
	return r.modify(id, func(d *driver.Driver) error {
		return d.Claim()
	})
}

func (r *DriverRepository) Release(_ context.Context, id kernel.UUID) error {
	return r.modify(id, func(d *driver.Driver) error {
		d.Release()
		return nil
	})
}

func (r *DriverRepository) RecordCompletion(_ context.Context, id kernel.UUID, minutes float64) error {
	return r.modify(id, func(d *driver.Driver) error {
		return d.RecordCompletion(minutes)
	})
}

func (r *DriverRepository) UpdateLocation(_ context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.modify(aggregate.ID(), func(d *driver.Driver) error {
		return d.UpdateLocation(aggregate.Location(), aggregate.LocationUpdatedAt())
	})
}

// modify applies change to a copy of the stored driver and swaps it in only
// when change succeeds.
func (r *DriverRepository) modify(id kernel.UUID, change func(d *driver.Driver) error) error {
	if err := id.Validate(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	previous, ok := r.store.drivers[id]
	if !ok {
		return errs.NewObjectNotFoundError("driver", id.String())
	}

	next, err := cloneDriver(previous)
	if err != nil {
		return err
	}
	if err = change(next); err != nil {
		return err
	}

	r.store.drivers[id] = next
	r.store.driverRevisions[id]++
	revision := r.store.driverRevisions[id]

	r.uow.remember(func(s *Store) error {
		if s.driverRevisions[id] != revision {
			return fmt.Errorf("%w: driver %s", ErrUndoConflict, id)
		}
		s.drivers[id] = previous
		s.driverRevisions[id] = revision - 1
		return nil
	})
	return nil
}
