// README: Travel estimates between vendor and delivery addresses via Google Maps.
package maps

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

// RouteService wraps the Google Maps Directions API.
type RouteService struct {
	client *maps.Client
}

func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// TravelEstimate returns a one-line human estimate for a courier trip from
// origin to destination, assuming driving mode.
func (s *RouteService) TravelEstimate(ctx context.Context, origin, destination string) (string, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return "", fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return "", fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	return fmt.Sprintf("Approx. delivery: %s (%s)", leg.Duration.Round(time.Minute), leg.Distance.HumanReadable), nil
}
