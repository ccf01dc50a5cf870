package service

import (
	"time"

	"github.com/google/uuid"

	"smartcomfort/internal/models"
)

// PresenceDebounce limits presence detections to one per arm/clear cycle and window.
type PresenceDebounce struct {
	Armed       bool
	LastTrigger time.Time
}

// Arm re-enables detection and forgets the previous trigger.
func (p *PresenceDebounce) Arm() {
	p.Armed = true
	p.LastTrigger = time.Time{}
}

// Observe feeds one sensor read and reports whether it counts as a new detection.
// A detection disarms; a clear read re-arms.
func (p *PresenceDebounce) Observe(detected bool, now time.Time, window time.Duration) bool {
	if detected && p.Armed && (p.LastTrigger.IsZero() || now.Sub(p.LastTrigger) > window) {
		p.LastTrigger = now
		p.Armed = false
		return true
	}
	if !detected && !p.Armed {
		p.Armed = true
	}
	return false
}

// ControllerContext is all mutable controller state. It is owned by the control loop and
// passed to the classifier and the state machine; nothing else writes it.
type ControllerContext struct {
	Mode           models.Mode
	Reading        models.ComfortReading
	CurrentTemp    float64
	AttemptCounter int
	Presence       PresenceDebounce
	Profile        *models.Profile
	SessionID      string
	EnteredAt      time.Time

	timerFired bool
}

// NewControllerContext returns the power-on state.
func NewControllerContext() *ControllerContext {
	return &ControllerContext{
		Mode:      models.ModeIdle,
		SessionID: uuid.NewString(),
	}
}

// signalTimer records that the current mode's phase timer fired this cycle.
func (c *ControllerContext) signalTimer() { c.timerFired = true }

// takeTimer returns and clears the phase timer flag.
func (c *ControllerContext) takeTimer() bool {
	fired := c.timerFired
	c.timerFired = false
	return fired
}

// apply stores a fresh reading.
func (c *ControllerContext) apply(reading models.ComfortReading, sample models.Sample) {
	c.Reading = reading
	c.CurrentTemp = sample.AirTemp
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	Mode           models.Mode           `json:"mode"`
	Reading        models.ComfortReading `json:"reading"`
	CurrentTemp    float64               `json:"current_temp_c"`
	AttemptCounter int                   `json:"attempt_counter"`
	ProfileName    string                `json:"profile_name,omitempty"`
	SessionID      string                `json:"session_id"`
	EnteredAt      time.Time             `json:"entered_at"`
	RunningTimers  []TimerID             `json:"running_timers,omitempty"`
}
