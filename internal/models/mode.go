package models

// Mode is the operating mode of the controller. Exactly one is active at a time.
type Mode string

const (
	ModeIdle        Mode = "IDLE"
	ModeLocked      Mode = "LOCKED"
	ModeConfig      Mode = "CONFIG"
	ModeMonitor     Mode = "MONITOR"
	ModeAlarm       Mode = "ALARM"
	ModeComfortHigh Mode = "COMFORT_HIGH"
	ModeComfortLow  Mode = "COMFORT_LOW"
)

// Modes lists every mode in declaration order.
var Modes = []Mode{
	ModeIdle,
	ModeLocked,
	ModeConfig,
	ModeMonitor,
	ModeAlarm,
	ModeComfortHigh,
	ModeComfortLow,
}

func (m Mode) String() string { return string(m) }
