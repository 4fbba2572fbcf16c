package domain

import "fmt"

// Static definition of one monitored origin-destination pair.
// RouteSpecs are loaded once from the routes config file at startup and
// are immutable for the process lifetime.
type RouteSpec struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Origin      Coordinates `json:"origin"`
	Destination Coordinates `json:"destination"`
}

func (r RouteSpec) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("route has empty id")
	}
	if err := r.Origin.Validate(); err != nil {
		return fmt.Errorf("route %q origin: %w", r.ID, err)
	}
	if err := r.Destination.Validate(); err != nil {
		return fmt.Errorf("route %q destination: %w", r.ID, err)
	}
	return nil
}
