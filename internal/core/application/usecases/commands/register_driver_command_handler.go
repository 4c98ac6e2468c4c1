package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/driver"
)

// RegisterDriverCommandHandler stores new drivers as available.
type RegisterDriverCommandHandler struct {
	uowFactory DriverUoWFactory
	clock      func() time.Time
}

func NewRegisterDriverCommandHandler(uowFactory DriverUoWFactory) RegisterDriverCommandHandler {
	return RegisterDriverCommandHandler{
		uowFactory: uowFactory,
		clock:      time.Now,
	}
}

func (h RegisterDriverCommandHandler) Handle(ctx context.Context, cmd RegisterDriverCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	aggregate, err := driver.NewDriver(
		cmd.DriverID(), cmd.UserID(), cmd.Location(), cmd.Verified(),
		cmd.Areas(), cmd.PaymentMethods(), h.clock(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.DriverRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
