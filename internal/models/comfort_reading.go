package models

import "math"

// ComfortReading is the latest PMV evaluation of the room.
type ComfortReading struct {
	AirTemp          float64 `json:"air_temp_c"`        // °C
	RadiantTemp      float64 `json:"radiant_temp_c"`    // °C
	RelativeHumidity float64 `json:"relative_humidity"` // %
	PMV              float64 `json:"pmv"`               // [-3, 3]
	Converged        bool    `json:"converged"`
}

// Sample is one sweep over the room sensors. AirTemp and Humidity may be NaN.
type Sample struct {
	AirTemp  float64 `json:"air_temp_c"`
	Humidity float64 `json:"humidity"`
	AuxTemp  float64 `json:"aux_temp_c"`
}

// Valid reports whether the digital sensor produced usable values.
func (s Sample) Valid() bool {
	return !math.IsNaN(s.AirTemp) && !math.IsNaN(s.Humidity)
}
