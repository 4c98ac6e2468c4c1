package services

import (
	"sort"

	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
)

// CandidateQuery describes where a driver is needed.
//
// Limit <= 0 means no limit. Exclude lists drivers that must not be proposed,
// typically the current driver of a delivery being reassigned.
type CandidateQuery struct {
	Origin            kernel.GeoPoint
	AreaTag           string
	MaxDistanceMeters float64
	Limit             int
	Exclude           []kernel.UUID
}

// Candidate is a driver eligible for a query together with its distance to
// the origin.
type Candidate struct {
	Driver         *driver.Driver
	DistanceMeters float64
}

// DriverRanker selects the drivers that may serve a dispatch origin and orders
// them by preference.
//
// Selection rules:
//   - the driver is available and verified
//   - the driver serves the query's area tag
//   - the great-circle distance to the origin is within MaxDistanceMeters
//   - each driver appears once, excluded drivers never appear
//
// Ordering: rating desc, average delivery minutes asc, distance asc, id asc.
//
// Example usage:
//
//	ranker := services.NewDriverRanker()
//	candidates, err := ranker.Rank(services.CandidateQuery{
//	    Origin: pickup, AreaTag: "Baixa", MaxDistanceMeters: 10_000, Limit: 10,
//	}, drivers)
type DriverRanker struct{}

func NewDriverRanker() DriverRanker {
	return DriverRanker{}
}

// Rank filters and sorts drivers for the query. An empty result is not an error.
func (DriverRanker) Rank(query CandidateQuery, drivers []*driver.Driver) ([]Candidate, error) {
	if err := query.Origin.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[kernel.UUID]struct{}, len(drivers)+len(query.Exclude))
	for _, id := range query.Exclude {
		seen[id] = struct{}{}
	}

	candidates := make([]Candidate, 0, len(drivers))
	for _, d := range drivers {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[d.ID()]; dup {
			continue
		}
		if !d.IsEligible() || !d.ServesArea(query.AreaTag) {
			continue
		}

		distance, err := query.Origin.DistanceMeters(d.Location())
		if err != nil {
			return nil, err
		}
		if distance > query.MaxDistanceMeters {
			continue
		}

		seen[d.ID()] = struct{}{}
		candidates = append(candidates, Candidate{Driver: d, DistanceMeters: distance})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Driver.Rating() != b.Driver.Rating() {
			return a.Driver.Rating() > b.Driver.Rating()
		}
		if a.Driver.AverageDeliveryMinutes() != b.Driver.AverageDeliveryMinutes() {
			return a.Driver.AverageDeliveryMinutes() < b.Driver.AverageDeliveryMinutes()
		}
		if a.DistanceMeters != b.DistanceMeters {
			return a.DistanceMeters < b.DistanceMeters
		}
		return a.Driver.ID().String() < b.Driver.ID().String()
	})

	if query.Limit > 0 && len(candidates) > query.Limit {
		candidates = candidates[:query.Limit]
	}

	return candidates, nil
}
