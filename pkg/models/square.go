package models

import "fmt"

// Square is an axis-aligned latitude/longitude rectangle with inclusive bounds.
type Square struct {
	LatMin float64 `query:"lat_min" validate:"gte=-90,lte=90"`
	LonMin float64 `query:"lon_min" validate:"gte=-180,lte=180"`
	LatMax float64 `query:"lat_max" validate:"gte=-90,lte=90"`
	LonMax float64 `query:"lon_max" validate:"gte=-180,lte=180"`
}

func (s Square) Validate() error {
	if s.LatMin > s.LatMax {
		return fmt.Errorf("lat_min %v is greater than lat_max %v", s.LatMin, s.LatMax)
	}
	if s.LonMin > s.LonMax {
		return fmt.Errorf("lon_min %v is greater than lon_max %v", s.LonMin, s.LonMax)
	}
	return nil
}

// Contains reports whether the point lies inside the rectangle, edges included.
func (s Square) Contains(latitude, longitude float64) bool {
	return latitude >= s.LatMin && latitude <= s.LatMax &&
		longitude >= s.LonMin && longitude <= s.LonMax
}
