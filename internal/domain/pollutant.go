package domain

import "fmt"

// Pollutant identifies one of the four monitored species.
type Pollutant string

const (
	SO2  Pollutant = "SO2"
	NO2  Pollutant = "NO2"
	O3   Pollutant = "O3"
	PM25 Pollutant = "PM25"
)

// Pollutants lists all monitored species in canonical output order.
var Pollutants = []Pollutant{SO2, NO2, O3, PM25}

// Unit returns the measurement unit for the pollutant: ppb for the gaseous
// species, µg/m³ for fine particulate matter.
func (p Pollutant) Unit() string {
	if p == PM25 {
		return "µg/m³"
	}
	return "ppb"
}

// ParsePollutant validates and normalizes a pollutant name.
func ParsePollutant(s string) (Pollutant, error) {
	switch Pollutant(s) {
	case SO2, NO2, O3, PM25:
		return Pollutant(s), nil
	default:
		return "", fmt.Errorf("unknown pollutant %q", s)
	}
}
