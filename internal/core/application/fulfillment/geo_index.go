package fulfillment

import (
	"context"

	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// GeoIndex answers "which drivers can serve this origin" queries. The
// repository narrows the search to a bounding box; exact distance, area and
// ordering rules live in services.DriverRanker.
type GeoIndex struct {
	ranker services.DriverRanker
}

func NewGeoIndex() *GeoIndex {
	return &GeoIndex{ranker: services.NewDriverRanker()}
}

// FindCandidates returns the ranked candidates for query. It never writes and
// an empty result is not an error.
func (g *GeoIndex) FindCandidates(
	ctx context.Context,
	drivers ports.DriverRepository,
	query services.CandidateQuery,
) ([]services.Candidate, error) {
	if err := query.Origin.Validate(); err != nil {
		return nil, err
	}

	nearby, err := drivers.FindAvailableWithin(ctx, query.Origin.BoundingBox(query.MaxDistanceMeters))
	if err != nil {
		return nil, err
	}

	return g.ranker.Rank(query, nearby)
}
