// Package hardware defines the I/O ports the controller core talks to and a simulated board
// implementing them.
package hardware

import "smartcomfort/internal/models"

// LEDColor selects one channel of the RGB indicator.
type LEDColor string

const (
	LEDRed   LEDColor = "red"
	LEDGreen LEDColor = "green"
	LEDBlue  LEDColor = "blue"
)

// Sensors is the read side of the room.
type Sensors interface {
	// ReadAirTemperature returns °C from the digital sensor, or NaN on a failed read.
	ReadAirTemperature() float64
	// ReadHumidity returns relative humidity in %, or NaN on a failed read.
	ReadHumidity() float64
	// ReadAuxiliaryTemperature returns °C from the analog thermistor.
	ReadAuxiliaryTemperature() float64
	// ReadPresence reports whether the presence sensor currently detects someone.
	ReadPresence() bool
	// ReadButton reports whether the push button is held down.
	ReadButton() bool
}

// CredentialInput is the keypad and the token reader.
type CredentialInput interface {
	PollKey() (rune, bool)
	PollCredentialReader() (models.CredentialID, bool)
}

// Actuators drives relay, heating servo, indicator LEDs and buzzer.
type Actuators interface {
	SetCoolingRelay(on bool)
	// SetHeatingActuator positions the heating damper, 0 (closed) to 100 (open).
	SetHeatingActuator(position int)
	SetIndicatorLED(color LEDColor, on bool)
	SetBuzzer(on bool)
}

// Display shows text on one line of the panel. Output is fire-and-forget.
type Display interface {
	ShowMessage(text string, line int)
}
