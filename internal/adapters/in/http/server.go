package http

import (
	"log/slog"
	"net/http"

	"fulfillment/internal/api"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

const (
	defaultSearchRadiusMeters = 10_000
	defaultSearchLimit        = 10
)

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	CreateOrder           commands.CreateOrderCommandHandler
	ChangeOrderStatus     commands.ChangeOrderStatusCommandHandler
	RegisterDriver        commands.RegisterDriverCommandHandler
	UpdateDriverLocation  commands.UpdateDriverLocationCommandHandler
	CreateDelivery        commands.CreateDeliveryCommandHandler
	AdvanceDeliveryStatus commands.AdvanceDeliveryStatusCommandHandler
	CancelDelivery        commands.CancelDeliveryCommandHandler
	ReassignDriver        commands.ReassignDriverCommandHandler

	GetOrder            queries.GetOrderQueryHandler
	GetDelivery         queries.GetDeliveryQueryHandler
	GetAvailableDrivers queries.GetAvailableDriversQueryHandler
}

// Server implements the ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers Handlers
	logger   *slog.Logger
}

var _ api.ServerInterface = (*Server)(nil)

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(handlers Handlers, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		logger:   logger.With("component", "http"),
	}
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body api.NewOrder
	if err := ctx.Bind(&body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	customerID, vendorID, err := toKernelIDs(body.CustomerId, body.VendorId)
	if err != nil {
		return s.fail(ctx, err)
	}

	lines := make([]commands.OrderLine, 0, len(body.Items))
	for _, item := range body.Items {
		productID, idErr := toKernelID(item.ProductId)
		if idErr != nil {
			return s.fail(ctx, idErr)
		}
		lines = append(lines, commands.OrderLine{ProductID: productID, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}

	dropoff, err := toGeoPoint(body.DeliveryAddress.Location)
	if err != nil {
		return s.fail(ctx, err)
	}
	pickup, err := toGeoPoint(body.PickupLocation)
	if err != nil {
		return s.fail(ctx, err)
	}

	tax := decimal.Zero
	if body.Tax != nil {
		tax = *body.Tax
	}

	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(), customerID, vendorID, lines,
		commands.DeliveryAddress{
			Street:       body.DeliveryAddress.Street,
			Neighborhood: body.DeliveryAddress.Neighborhood,
			City:         body.DeliveryAddress.City,
			Location:     dropoff,
		},
		pickup, body.DeliveryFee, tax,
	)
	if err != nil {
		return s.fail(ctx, err)
	}

	if err = s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, api.Created{Id: cmd.OrderID().Bytes()})
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	id, err := toKernelID(orderId)
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return s.fail(ctx, err)
	}

	view, err := s.handlers.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderResponse(view))
}

// ChangeOrderStatus handles PUT /api/v1/orders/{orderId}/status.
func (s *Server) ChangeOrderStatus(ctx echo.Context, orderId openapi_types.UUID) error {
	var body api.StatusChange
	if err := ctx.Bind(&body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	id, err := toKernelID(orderId)
	if err != nil {
		return s.fail(ctx, err)
	}
	status, err := order.ParseStatus(body.Status)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewChangeOrderStatusCommand(id, status, deref(body.Reason))
	if err != nil {
		return s.fail(ctx, err)
	}

	if _, err = s.handlers.ChangeOrderStatus.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return s.GetOrder(ctx, orderId)
}

// RegisterDriver handles POST /api/v1/drivers.
func (s *Server) RegisterDriver(ctx echo.Context) error {
	var body api.NewDriver
	if err := ctx.Bind(&body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	userID, err := toKernelID(body.UserId)
	if err != nil {
		return s.fail(ctx, err)
	}
	location, err := toGeoPoint(body.Location)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewRegisterDriverCommand(
		kernel.NewUUID(), userID, location, body.IsVerified,
		body.DeliveryAreas, body.AcceptedPaymentMethods,
	)
	if err != nil {
		return s.fail(ctx, err)
	}

	if err = s.handlers.RegisterDriver.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, api.Created{Id: cmd.DriverID().Bytes()})
}

// GetAvailableDrivers handles GET /api/v1/drivers/available.
func (s *Server) GetAvailableDrivers(ctx echo.Context, params api.GetAvailableDriversParams) error {
	origin, err := kernel.NewGeoPoint(params.Lat, params.Lng)
	if err != nil {
		return s.fail(ctx, err)
	}

	radius := float64(defaultSearchRadiusMeters)
	if params.MaxDistanceMeters != nil {
		radius = *params.MaxDistanceMeters
	}
	limit := defaultSearchLimit
	if params.Limit != nil {
		limit = *params.Limit
	}

	query, err := queries.NewGetAvailableDriversQuery(origin, params.Area, radius, limit)
	if err != nil {
		return s.fail(ctx, err)
	}

	views, err := s.handlers.GetAvailableDrivers.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]api.AvailableDriver, len(views))
	for i, view := range views {
		response[i] = api.AvailableDriver{
			Id:                     view.ID.Bytes(),
			Location:               toPoint(view.Location),
			DistanceMeters:         view.DistanceMeters,
			Rating:                 view.Rating,
			CompletedDeliveries:    view.CompletedDeliveries,
			AverageDeliveryMinutes: view.AverageDeliveryMinutes,
			DeliveryAreas:          view.DeliveryAreas,
			AcceptedPaymentMethods: view.AcceptedPaymentMethods,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// UpdateDriverLocation handles PUT /api/v1/drivers/{driverId}/location.
func (s *Server) UpdateDriverLocation(ctx echo.Context, driverId openapi_types.UUID) error {
	var body api.Point
	if err := ctx.Bind(&body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	id, err := toKernelID(driverId)
	if err != nil {
		return s.fail(ctx, err)
	}
	location, err := toGeoPoint(body)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewUpdateDriverLocationCommand(id, location)
	if err != nil {
		return s.fail(ctx, err)
	}

	if err = s.handlers.UpdateDriverLocation.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CreateDelivery handles POST /api/v1/deliveries.
func (s *Server) CreateDelivery(ctx echo.Context) error {
	var body api.NewDelivery
	if err := ctx.Bind(&body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	orderID, err := toKernelID(body.OrderId)
	if err != nil {
		return s.fail(ctx, err)
	}
	driverID, err := toOptionalKernelID(body.DriverId)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewCreateDeliveryCommand(orderID, driverID)
	if err != nil {
		return s.fail(ctx, err)
	}

	d, err := s.handlers.CreateDelivery.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, toDeliveryResponse(d))
}

// GetDelivery handles GET /api/v1/deliveries/{deliveryId}.
func (s *Server) GetDelivery(ctx echo.Context, deliveryId openapi_types.UUID) error {
	id, err := toKernelID(deliveryId)
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewGetDeliveryQuery(id)
	if err != nil {
		return s.fail(ctx, err)
	}

	view, err := s.handlers.GetDelivery.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toDeliveryViewResponse(view))
}

// AdvanceDeliveryStatus handles PUT /api/v1/deliveries/{deliveryId}/status.
func (s *Server) AdvanceDeliveryStatus(ctx echo.Context, deliveryId openapi_types.UUID) error {
	var body api.StatusChange
	if err := ctx.Bind(&body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	id, err := toKernelID(deliveryId)
	if err != nil {
		return s.fail(ctx, err)
	}
	status, err := delivery.ParseStatus(body.Status)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewAdvanceDeliveryStatusCommand(id, status, deref(body.Reason))
	if err != nil {
		return s.fail(ctx, err)
	}

	d, err := s.handlers.AdvanceDeliveryStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toDeliveryResponse(d))
}

// CancelDelivery handles POST /api/v1/deliveries/{deliveryId}/cancel.
func (s *Server) CancelDelivery(ctx echo.Context, deliveryId openapi_types.UUID) error {
	var body api.CancelRequest
	if err := ctx.Bind(&body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	id, err := toKernelID(deliveryId)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewCancelDeliveryCommand(id, body.Reason)
	if err != nil {
		return s.fail(ctx, err)
	}

	d, err := s.handlers.CancelDelivery.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toDeliveryResponse(d))
}

// ReassignDriver handles POST /api/v1/deliveries/{deliveryId}/reassign.
func (s *Server) ReassignDriver(ctx echo.Context, deliveryId openapi_types.UUID) error {
	var body api.ReassignRequest
	if err := ctx.Bind(&body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	id, err := toKernelID(deliveryId)
	if err != nil {
		return s.fail(ctx, err)
	}
	driverID, err := toOptionalKernelID(body.DriverId)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewReassignDriverCommand(id, driverID)
	if err != nil {
		return s.fail(ctx, err)
	}

	d, err := s.handlers.ReassignDriver.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toDeliveryResponse(d))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
