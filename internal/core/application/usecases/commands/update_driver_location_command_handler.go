package commands

import (
	"context"
	"time"
)

// UpdateDriverLocationCommandHandler stores the driver's position and moves
// the current location of the delivery the driver is carrying, if any.
type UpdateDriverLocationCommandHandler struct {
	uowFactory DriverUoWFactory
	clock      func() time.Time
}

func NewUpdateDriverLocationCommandHandler(uowFactory DriverUoWFactory) UpdateDriverLocationCommandHandler {
	return UpdateDriverLocationCommandHandler{
		uowFactory: uowFactory,
		clock:      time.Now,
	}
}

func (h UpdateDriverLocationCommandHandler) Handle(ctx context.Context, cmd UpdateDriverLocationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driverRepo := uow.DriverRepository()
	deliveryRepo := uow.DeliveryRepository()

	aggregate, err := driverRepo.Get(ctx, cmd.DriverID())
	if err != nil {
		return err
	}
	if err = aggregate.UpdateLocation(cmd.Location(), h.clock()); err != nil {
		return err
	}
	if err = driverRepo.UpdateLocation(ctx, aggregate); err != nil {
		return err
	}

	active, err := deliveryRepo.FindActiveByDriver(ctx, cmd.DriverID())
	if err != nil {
		return err
	}
	for _, d := range active {
		if err = d.TrackLocation(cmd.Location()); err != nil {
			return err
		}
		if err = deliveryRepo.ConditionalUpdate(ctx, d); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
