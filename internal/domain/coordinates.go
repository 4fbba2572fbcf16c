package domain

import "fmt"

// Immutable geographic coordinates (latitude, longitude).
// The lat/lng JSON tags match both the routes config file and the
// latLng object of the routing provider request body.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Reject coordinates outside the WGS84 domain.
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Lng)
	}
	return nil
}
