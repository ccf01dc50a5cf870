// Package sensing turns raw port reads into comfort readings.
package sensing

import (
	"smartcomfort/internal/comfort"
	"smartcomfort/internal/hardware"
	"smartcomfort/internal/models"
)

// Environment samples the room sensors and evaluates comfort for a fixed occupant profile.
type Environment struct {
	sensors  hardware.Sensors
	personal comfort.Personal
}

// NewEnvironment returns an Environment reading from sensors.
func NewEnvironment(sensors hardware.Sensors, personal comfort.Personal) *Environment {
	return &Environment{sensors: sensors, personal: personal}
}

// Sample reads all three temperature/humidity sources once.
func (e *Environment) Sample() models.Sample {
	return models.Sample{
		AirTemp:  e.sensors.ReadAirTemperature(),
		Humidity: e.sensors.ReadHumidity(),
		AuxTemp:  e.sensors.ReadAuxiliaryTemperature(),
	}
}

// Evaluate computes the comfort reading of s. The digital sensor gives the air temperature and
// the thermistor stands in for the mean radiant temperature.
func (e *Environment) Evaluate(s models.Sample) models.ComfortReading {
	return comfort.Compute(s.AirTemp, s.AuxTemp, s.Humidity, e.personal)
}

// Measure samples and evaluates. ok is false when the digital sensor failed; the reading is
// then the zero value and should be ignored.
func (e *Environment) Measure() (reading models.ComfortReading, sample models.Sample, ok bool) {
	sample = e.Sample()
	if !sample.Valid() {
		return models.ComfortReading{}, sample, false
	}
	return e.Evaluate(sample), sample, true
}
