package driver

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const (
	MinRating = 0.0
	MaxRating = 5.0
)

// ErrDriverIsNotConstructed is returned when a Driver was not created through
// NewDriver or RestoreDriver.
var ErrDriverIsNotConstructed = errors.New("driver must be created via NewDriver or RestoreDriver constructor")

// Driver represents a courier able to carry orders in a set of delivery areas.
//
// Invariants:
//   - rating stays within [MinRating, MaxRating]
//   - completedDeliveries never exceeds totalDeliveries
//   - isAvailable is false while the driver holds an active delivery
type Driver struct {
	id     kernel.UUID
	userID kernel.UUID

	location          kernel.GeoPoint
	locationUpdatedAt time.Time

	isAvailable bool
	isVerified  bool

	rating                 float64
	reviewCount            int
	totalDeliveries        int
	completedDeliveries    int
	averageDeliveryMinutes float64

	deliveryAreas          []string
	acceptedPaymentMethods []string

	guard guard.ConstructorGuard
}

// Position is the last reported location of a driver.
type Position struct {
	Location  kernel.GeoPoint
	UpdatedAt time.Time
}

// Availability holds the reservation and verification flags.
type Availability struct {
	IsAvailable bool
	IsVerified  bool
}

// Stats holds the reputation and delivery counters of a driver.
type Stats struct {
	Rating                 float64
	ReviewCount            int
	TotalDeliveries        int
	CompletedDeliveries    int
	AverageDeliveryMinutes float64
}

// NewDriver registers an available driver with no history.
//
// Parameters:
//   - id, userID: valid identifiers
//   - location: first reported position
//   - verified: whether the driver passed document verification
//   - areas: delivery area tags, at least one
//   - paymentMethods: accepted payment methods, may be empty
//
// Example:
//
//	d, err := driver.NewDriver(kernel.NewUUID(), userID, position, true, []string{"Baixa"}, []string{"cash"}, time.Now())
func NewDriver(
	id, userID kernel.UUID,
	location kernel.GeoPoint,
	verified bool,
	areas, paymentMethods []string,
	now time.Time,
) (*Driver, error) {
	return RestoreDriver(
		id, userID,
		Position{Location: location, UpdatedAt: now.UTC()},
		Availability{IsAvailable: true, IsVerified: verified},
		Stats{},
		areas, paymentMethods,
	)
}

// RestoreDriver reconstructs a Driver from persistent storage.
func RestoreDriver(
	id, userID kernel.UUID,
	position Position,
	availability Availability,
	stats Stats,
	areas, paymentMethods []string,
) (*Driver, error) {
	d := &Driver{
		locationUpdatedAt:      position.UpdatedAt,
		isAvailable:            availability.IsAvailable,
		isVerified:             availability.IsVerified,
		reviewCount:            stats.ReviewCount,
		averageDeliveryMinutes: stats.AverageDeliveryMinutes,
		acceptedPaymentMethods: normalizeTags(paymentMethods),
		guard:                  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setID(&d.userID, userID),
		setID(&d.id, id),
		d.setLocation(position.Location),
		d.setRating(stats.Rating),
		d.setCounters(stats.TotalDeliveries, stats.CompletedDeliveries),
		d.setAreas(areas),
	); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

func (d *Driver) IsEqual(other *Driver) bool {
	return other != nil && d.id.IsEqual(other.id)
}

func (d *Driver) ID() kernel.UUID                 { return d.id }
func (d *Driver) UserID() kernel.UUID             { return d.userID }
func (d *Driver) Location() kernel.GeoPoint       { return d.location }
func (d *Driver) LocationUpdatedAt() time.Time    { return d.locationUpdatedAt }
func (d *Driver) IsAvailable() bool               { return d.isAvailable }
func (d *Driver) IsVerified() bool                { return d.isVerified }
func (d *Driver) Rating() float64                 { return d.rating }
func (d *Driver) ReviewCount() int                { return d.reviewCount }
func (d *Driver) TotalDeliveries() int            { return d.totalDeliveries }
func (d *Driver) CompletedDeliveries() int        { return d.completedDeliveries }
func (d *Driver) AverageDeliveryMinutes() float64 { return d.averageDeliveryMinutes }

// DeliveryAreas returns a copy of the served area tags.
func (d *Driver) DeliveryAreas() []string {
	return slices.Clone(d.deliveryAreas)
}

// AcceptedPaymentMethods returns a copy of the accepted payment methods.
func (d *Driver) AcceptedPaymentMethods() []string {
	return slices.Clone(d.acceptedPaymentMethods)
}

// IsEligible reports whether the driver can be reserved right now.
func (d *Driver) IsEligible() bool {
	return d.isAvailable && d.isVerified
}

// ServesArea reports whether areaTag is one of the driver's delivery areas.
// Comparison ignores case and surrounding spaces.
func (d *Driver) ServesArea(areaTag string) bool {
	areaTag = strings.TrimSpace(areaTag)
	for _, area := range d.deliveryAreas {
		if strings.EqualFold(area, areaTag) {
			return true
		}
	}
	return false
}

// Claim reserves the driver for a delivery: availability goes off and the
// delivery is counted. Unavailable or unverified drivers yield a
// *errs.NoCapacityError naming the driver.
func (d *Driver) Claim() error {
	if !d.IsEligible() {
		return errs.NewDriverUnavailableError(d.id.String())
	}
	d.isAvailable = false
	d.totalDeliveries++
	return nil
}

// Release makes the driver available again. Releasing an available driver
// changes nothing.
func (d *Driver) Release() {
	d.isAvailable = true
}

// RecordCompletion releases the driver and folds the delivery duration into
// the running mean: avg' = (avg*(n-1) + minutes) / n, with n the new number
// of completed deliveries.
func (d *Driver) RecordCompletion(minutes float64) error {
	if minutes < 0 {
		return errs.NewValueIsOutOfRangeError("minutes", minutes, 0, "+Inf")
	}
	if d.completedDeliveries >= d.totalDeliveries {
		return errs.NewIllegalStateError("driver", d.id, fmt.Sprintf("%d/%d completed", d.completedDeliveries, d.totalDeliveries), "complete delivery")
	}

	n := float64(d.completedDeliveries + 1)
	d.averageDeliveryMinutes = (d.averageDeliveryMinutes*(n-1) + minutes) / n
	d.completedDeliveries++
	d.Release()
	return nil
}

// UpdateLocation stores a new reported position.
func (d *Driver) UpdateLocation(location kernel.GeoPoint, at time.Time) error {
	if err := d.setLocation(location); err != nil {
		return err
	}
	d.locationUpdatedAt = at.UTC()
	return nil
}

func setID(dst *kernel.UUID, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	*dst = id
	return nil
}

func (d *Driver) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	d.location = location
	return nil
}

func (d *Driver) setRating(rating float64) error {
	if rating < MinRating || rating > MaxRating || math.IsNaN(rating) {
		return errs.NewValueIsOutOfRangeError("rating", rating, MinRating, MaxRating)
	}
	d.rating = rating
	return nil
}

func (d *Driver) setCounters(total, completed int) error {
	if total < 0 || completed < 0 || completed > total {
		return errs.NewValueIsInvalidErrorWithCause(
			"deliveries",
			fmt.Errorf("completed %d and total %d are inconsistent", completed, total),
		)
	}
	d.totalDeliveries = total
	d.completedDeliveries = completed
	return nil
}

func (d *Driver) setAreas(areas []string) error {
	normalized := normalizeTags(areas)
	if len(normalized) == 0 {
		return errs.NewValueIsRequiredError("deliveryAreas")
	}
	d.deliveryAreas = normalized
	return nil
}

// normalizeTags trims, drops blanks and removes duplicates keeping order.
func normalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(result, tag) {
			continue
		}
		result = append(result, tag)
	}
	return result
}
