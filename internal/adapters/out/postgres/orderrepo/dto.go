// Package orderrepo persists order aggregates with GORM. An order is stored in
// the orders table with its lines in order_items.
package orderrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Status columns hold the snake_case names of the domain statuses.
type OrderDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	VendorID   uuid.UUID `gorm:"type:uuid;not null;index"`

	Items           []OrderItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DeliveryAddress AddressDTO     `gorm:"embedded;embeddedPrefix:delivery_"`
	Pickup          PointDTO       `gorm:"embedded;embeddedPrefix:pickup_"`

	Status              string `gorm:"type:varchar(32);not null;index"`
	PaymentStatus       string `gorm:"type:varchar(32);not null"`
	PaymentRefundedFrom string `gorm:"type:varchar(32);not null;default:''"`

	Subtotal decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Fee      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Tax      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total    decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	EstimatedDeliveryTime *time.Time
	ActualDeliveryTime    *time.Time
	CreatedAt             time.Time `gorm:"not null;index"`

	Version int64 `gorm:"not null;default:0"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO is one product line. Position keeps the checkout order.
type OrderItemDTO struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position  int             `gorm:"not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

// AddressDTO is the embedded delivery address.
type AddressDTO struct {
	Street       string `gorm:"type:varchar(255);not null"`
	Neighborhood string `gorm:"type:varchar(128);not null"`
	City         string `gorm:"type:varchar(128)"`
	Lat          float64
	Lng          float64
}

// PointDTO is an embedded coordinate pair.
type PointDTO struct {
	Lat float64
	Lng float64
}

func fromDomain(o *order.Order) OrderDTO {
	id := o.ID().Bytes()

	items := make([]OrderItemDTO, 0, len(o.Items()))
	for i, item := range o.Items() {
		items = append(items, OrderItemDTO{
			OrderID:   id,
			Position:  i,
			ProductID: item.ProductID().Bytes(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice(),
		})
	}

	address := o.DeliveryAddress()
	totals := o.Totals()

	return OrderDTO{
		ID:         id,
		CustomerID: o.CustomerID().Bytes(),
		VendorID:   o.VendorID().Bytes(),
		Items:      items,
		DeliveryAddress: AddressDTO{
			Street:       address.Street(),
			Neighborhood: address.Neighborhood(),
			City:         address.City(),
			Lat:          address.Location().Lat(),
			Lng:          address.Location().Lng(),
		},
		Pickup:                PointDTO{Lat: o.PickupLocation().Lat(), Lng: o.PickupLocation().Lng()},
		Status:                o.Status().String(),
		PaymentStatus:         o.PaymentStatus().String(),
		PaymentRefundedFrom:   refundedFrom(o.Payment().RefundedFrom),
		Subtotal:              totals.Subtotal(),
		Fee:                   totals.Fee(),
		Tax:                   totals.Tax(),
		Total:                 totals.Total(),
		EstimatedDeliveryTime: o.EstimatedDeliveryTime(),
		ActualDeliveryTime:    o.ActualDeliveryTime(),
		CreatedAt:             o.CreatedAt(),
		Version:               o.Version(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	vendorID, err := kernel.UUIDFromBytes(dto.VendorID[:])
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	location, err := kernel.NewGeoPoint(dto.DeliveryAddress.Lat, dto.DeliveryAddress.Lng)
	if err != nil {
		return nil, err
	}
	address, err := order.NewAddress(dto.DeliveryAddress.Street, dto.DeliveryAddress.Neighborhood, dto.DeliveryAddress.City, location)
	if err != nil {
		return nil, err
	}
	pickup, err := kernel.NewGeoPoint(dto.Pickup.Lat, dto.Pickup.Lng)
	if err != nil {
		return nil, err
	}
	totals, err := order.RestoreTotals(dto.Subtotal, dto.Fee, dto.Tax, dto.Total)
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := order.ParsePaymentStatus(dto.PaymentStatus)
	if err != nil {
		return nil, err
	}
	payment := order.Payment{Status: paymentStatus}
	if dto.PaymentRefundedFrom != "" {
		if payment.RefundedFrom, err = order.ParsePaymentStatus(dto.PaymentRefundedFrom); err != nil {
			return nil, err
		}
	}

	return order.RestoreOrder(
		id, customerID, vendorID,
		items, address, pickup, totals,
		status, payment,
		order.Timeline{
			CreatedAt:             dto.CreatedAt.UTC(),
			EstimatedDeliveryTime: utc(dto.EstimatedDeliveryTime),
			ActualDeliveryTime:    utc(dto.ActualDeliveryTime),
		},
		dto.Version,
	)
}

// refundedFrom stores PaymentUnknown as an empty column.
func refundedFrom(s order.PaymentStatus) string {
	if s == order.PaymentUnknown {
		return ""
	}
	return s.String()
}

func itemToDomain(dto OrderItemDTO) (order.Item, error) {
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return order.Item{}, err
	}
	return order.NewItem(productID, dto.Quantity, dto.UnitPrice)
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
