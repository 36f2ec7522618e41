// README: Routing provider backed by the Google Directions API, throttled by a token bucket.
package maps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"

	"vtcquote/internal/modules/shadow"
	"vtcquote/internal/types"
)

var ErrNoRoute = errors.New("no route found")

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client  *maps.Client
	limiter *rate.Limiter
}

// NewRouteService creates a RouteService allowing rps requests per second with the given burst.
func NewRouteService(apiKey string, rps float64, burst int) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	if burst < 1 {
		burst = 1
	}
	return &RouteService{client: client, limiter: rate.NewLimiter(rate.Limit(rps), burst)}, nil
}

// Route returns the driving distance and duration of the first route leg.
func (s *RouteService) Route(ctx context.Context, origin, destination types.Point) (shadow.Leg, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return shadow.Leg{}, fmt.Errorf("routing rate limit: %w", err)
	}

	r := &maps.DirectionsRequest{
		Origin:      latLng(origin),
		Destination: latLng(destination),
		Mode:        maps.TravelModeDriving,
		Language:    "fr",
		Region:      "FR",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return shadow.Leg{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return shadow.Leg{}, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	return legFrom(leg.Distance.Meters, leg.Duration), nil
}

func legFrom(meters int, d time.Duration) shadow.Leg {
	return shadow.Leg{
		DistanceKm:      decimal.NewFromInt(int64(meters)).Div(decimal.NewFromInt(1000)),
		DurationMinutes: decimal.NewFromFloat(d.Minutes()).Round(2),
		Source:          shadow.SourceGoogleAPI,
	}
}

func latLng(p types.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}
