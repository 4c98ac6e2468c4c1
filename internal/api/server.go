// Package api holds the HTTP contract of the fulfillment API: the
// OpenAPI document, its request and response models and the echo binding of
// ServerInterface.
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Create an order at checkout
	// (POST /api/v1/orders)
	CreateOrder(ctx echo.Context) error
	// Get an order with its delivery summary
	// (GET /api/v1/orders/{orderId})
	GetOrder(ctx echo.Context, orderId openapi_types.UUID) error
	// Move an order to a new status
	// (PUT /api/v1/orders/{orderId}/status)
	ChangeOrderStatus(ctx echo.Context, orderId openapi_types.UUID) error
	// Register a driver
	// (POST /api/v1/drivers)
	RegisterDriver(ctx echo.Context) error
	// List dispatch candidates around a point
	// (GET /api/v1/drivers/available)
	GetAvailableDrivers(ctx echo.Context, params GetAvailableDriversParams) error
	// Report a driver position
	// (PUT /api/v1/drivers/{driverId}/location)
	UpdateDriverLocation(ctx echo.Context, driverId openapi_types.UUID) error
	// Dispatch a ready order
	// (POST /api/v1/deliveries)
	CreateDelivery(ctx echo.Context) error
	// Track a delivery
	// (GET /api/v1/deliveries/{deliveryId})
	GetDelivery(ctx echo.Context, deliveryId openapi_types.UUID) error
	// Move a delivery to a new status
	// (PUT /api/v1/deliveries/{deliveryId}/status)
	AdvanceDeliveryStatus(ctx echo.Context, deliveryId openapi_types.UUID) error
	// Cancel an active delivery and its order
	// (POST /api/v1/deliveries/{deliveryId}/cancel)
	CancelDelivery(ctx echo.Context, deliveryId openapi_types.UUID) error
	// Hand a delivery to another driver
	// (POST /api/v1/deliveries/{deliveryId}/reassign)
	ReassignDriver(ctx echo.Context, deliveryId openapi_types.UUID) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	return w.Handler.CreateOrder(ctx)
}

func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	orderId, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.GetOrder(ctx, orderId)
}

func (w *ServerInterfaceWrapper) ChangeOrderStatus(ctx echo.Context) error {
	orderId, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.ChangeOrderStatus(ctx, orderId)
}

func (w *ServerInterfaceWrapper) RegisterDriver(ctx echo.Context) error {
	return w.Handler.RegisterDriver(ctx)
}

func (w *ServerInterfaceWrapper) GetAvailableDrivers(ctx echo.Context) error {
	var params GetAvailableDriversParams
	query := ctx.QueryParams()

	if err := runtime.BindQueryParameter("form", true, true, "lat", query, &params.Lat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter lat: %s", err))
	}
	if err := runtime.BindQueryParameter("form", true, true, "lng", query, &params.Lng); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter lng: %s", err))
	}
	if err := runtime.BindQueryParameter("form", true, true, "area", query, &params.Area); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter area: %s", err))
	}
	if err := runtime.BindQueryParameter("form", true, false, "maxDistanceMeters", query, &params.MaxDistanceMeters); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter maxDistanceMeters: %s", err))
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &params.Limit); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}

	return w.Handler.GetAvailableDrivers(ctx, params)
}

func (w *ServerInterfaceWrapper) UpdateDriverLocation(ctx echo.Context) error {
	driverId, err := bindUUID(ctx, "driverId")
	if err != nil {
		return err
	}
	return w.Handler.UpdateDriverLocation(ctx, driverId)
}

func (w *ServerInterfaceWrapper) CreateDelivery(ctx echo.Context) error {
	return w.Handler.CreateDelivery(ctx)
}

func (w *ServerInterfaceWrapper) GetDelivery(ctx echo.Context) error {
	deliveryId, err := bindUUID(ctx, "deliveryId")
	if err != nil {
		return err
	}
	return w.Handler.GetDelivery(ctx, deliveryId)
}

func (w *ServerInterfaceWrapper) AdvanceDeliveryStatus(ctx echo.Context) error {
	deliveryId, err := bindUUID(ctx, "deliveryId")
	if err != nil {
		return err
	}
	return w.Handler.AdvanceDeliveryStatus(ctx, deliveryId)
}

func (w *ServerInterfaceWrapper) CancelDelivery(ctx echo.Context) error {
	deliveryId, err := bindUUID(ctx, "deliveryId")
	if err != nil {
		return err
	}
	return w.Handler.CancelDelivery(ctx, deliveryId)
}

func (w *ServerInterfaceWrapper) ReassignDriver(ctx echo.Context) error {
	deliveryId, err := bindUUID(ctx, "deliveryId")
	if err != nil {
		return err
	}
	return w.Handler.ReassignDriver(ctx, deliveryId)
}

func bindUUID(ctx echo.Context, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return id, nil
}

// EchoRouter is the subset of echo.Echo and echo.Group used for registration.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers the routes under baseURL, normally
// "/api/v1" or a group mounted there.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.POST(baseURL+"/orders", wrapper.CreateOrder)
	router.GET(baseURL+"/orders/:orderId", wrapper.GetOrder)
	router.PUT(baseURL+"/orders/:orderId/status", wrapper.ChangeOrderStatus)
	router.POST(baseURL+"/drivers", wrapper.RegisterDriver)
	router.GET(baseURL+"/drivers/available", wrapper.GetAvailableDrivers)
	router.PUT(baseURL+"/drivers/:driverId/location", wrapper.UpdateDriverLocation)
	router.POST(baseURL+"/deliveries", wrapper.CreateDelivery)
	router.GET(baseURL+"/deliveries/:deliveryId", wrapper.GetDelivery)
	router.PUT(baseURL+"/deliveries/:deliveryId/status", wrapper.AdvanceDeliveryStatus)
	router.POST(baseURL+"/deliveries/:deliveryId/cancel", wrapper.CancelDelivery)
	router.POST(baseURL+"/deliveries/:deliveryId/reassign", wrapper.ReassignDriver)
}
