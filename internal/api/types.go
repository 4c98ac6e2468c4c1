package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// Error defines model for Error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Created defines model for Created.
type Created struct {
	Id openapi_types.UUID `json:"id"`
}

// Point defines model for Point.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Address defines model for Address.
type Address struct {
	City         string `json:"city,omitempty"`
	Location     Point  `json:"location"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
}

// OrderLine defines model for OrderLine.
type OrderLine struct {
	ProductId openapi_types.UUID `json:"productId"`
	Quantity  int                `json:"quantity"`
	UnitPrice decimal.Decimal    `json:"unitPrice"`
}

// NewOrder defines model for NewOrder.
type NewOrder struct {
	CustomerId      openapi_types.UUID `json:"customerId"`
	DeliveryAddress Address            `json:"deliveryAddress"`
	DeliveryFee     decimal.Decimal    `json:"deliveryFee"`
	Items           []OrderLine        `json:"items"`
	PickupLocation  Point              `json:"pickupLocation"`
	Tax             *decimal.Decimal   `json:"tax,omitempty"`
	VendorId        openapi_types.UUID `json:"vendorId"`
}

// OrderItem defines model for OrderItem.
type OrderItem struct {
	LineTotal decimal.Decimal    `json:"lineTotal"`
	ProductId openapi_types.UUID `json:"productId"`
	Quantity  int                `json:"quantity"`
	UnitPrice decimal.Decimal    `json:"unitPrice"`
}

// DeliverySummary defines model for DeliverySummary.
type DeliverySummary struct {
	DriverId      openapi_types.UUID `json:"driverId"`
	EstimatedTime time.Time          `json:"estimatedTime"`
	Id            openapi_types.UUID `json:"id"`
	Status        string             `json:"status"`
}

// Order defines model for Order.
type Order struct {
	ActualDeliveryTime    *time.Time         `json:"actualDeliveryTime,omitempty"`
	CreatedAt             time.Time          `json:"createdAt"`
	CustomerId            openapi_types.UUID `json:"customerId"`
	Delivery              *DeliverySummary   `json:"delivery,omitempty"`
	DeliveryAddress       Address            `json:"deliveryAddress"`
	DeliveryFee           decimal.Decimal    `json:"deliveryFee"`
	EstimatedDeliveryTime *time.Time         `json:"estimatedDeliveryTime,omitempty"`
	Id                    openapi_types.UUID `json:"id"`
	Items                 []OrderItem        `json:"items"`
	PaymentStatus         string             `json:"paymentStatus"`
	PickupLocation        Point              `json:"pickupLocation"`
	Status                string             `json:"status"`
	Subtotal              decimal.Decimal    `json:"subtotal"`
	Tax                   decimal.Decimal    `json:"tax"`
	Total                 decimal.Decimal    `json:"total"`
	VendorId              openapi_types.UUID `json:"vendorId"`
}

// StatusChange defines model for StatusChange.
type StatusChange struct {
	Reason *string `json:"reason,omitempty"`
	Status string  `json:"status"`
}

// NewDriver defines model for NewDriver.
type NewDriver struct {
	AcceptedPaymentMethods []string           `json:"acceptedPaymentMethods,omitempty"`
	DeliveryAreas          []string           `json:"deliveryAreas"`
	IsVerified             bool               `json:"isVerified,omitempty"`
	Location               Point              `json:"location"`
	UserId                 openapi_types.UUID `json:"userId"`
}

// AvailableDriver defines model for AvailableDriver.
type AvailableDriver struct {
	AcceptedPaymentMethods []string           `json:"acceptedPaymentMethods,omitempty"`
	AverageDeliveryMinutes float64            `json:"averageDeliveryMinutes"`
	CompletedDeliveries    int                `json:"completedDeliveries"`
	DeliveryAreas          []string           `json:"deliveryAreas"`
	DistanceMeters         float64            `json:"distanceMeters"`
	Id                     openapi_types.UUID `json:"id"`
	Location               Point              `json:"location"`
	Rating                 float64            `json:"rating"`
}

// NewDelivery defines model for NewDelivery.
type NewDelivery struct {
	DriverId *openapi_types.UUID `json:"driverId,omitempty"`
	OrderId  openapi_types.UUID  `json:"orderId"`
}

// CancelRequest defines model for CancelRequest.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// ReassignRequest defines model for ReassignRequest.
type ReassignRequest struct {
	DriverId *openapi_types.UUID `json:"driverId,omitempty"`
}

// Delivery defines model for Delivery.
type Delivery struct {
	Cancelled       bool               `json:"cancelled"`
	CreatedAt       time.Time          `json:"createdAt"`
	CurrentLocation Point              `json:"currentLocation"`
	DeliveredAt     *time.Time         `json:"deliveredAt,omitempty"`
	DriverId        openapi_types.UUID `json:"driverId"`
	DropoffLocation Point              `json:"dropoffLocation"`
	EstimatedTime   time.Time          `json:"estimatedTime"`
	FailureReason   string             `json:"failureReason,omitempty"`
	Id              openapi_types.UUID `json:"id"`
	OrderId         openapi_types.UUID `json:"orderId"`
	PickupLocation  Point              `json:"pickupLocation"`
	RedispatchCount int                `json:"redispatchCount"`
	Status          string             `json:"status"`
}

// GetAvailableDriversParams defines parameters for GetAvailableDrivers.
type GetAvailableDriversParams struct {
	Lat               float64  `form:"lat" json:"lat"`
	Lng               float64  `form:"lng" json:"lng"`
	Area              string   `form:"area" json:"area"`
	MaxDistanceMeters *float64 `form:"maxDistanceMeters,omitempty" json:"maxDistanceMeters,omitempty"`
	Limit             *int     `form:"limit,omitempty" json:"limit,omitempty"`
}
