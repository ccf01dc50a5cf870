package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smartcomfort/internal/models"
)

func TestMachine_UnlistedEventsKeepMode(t *testing.T) {
	// Events that may move each mode; everything else must be ignored.
	moving := map[models.Mode][]models.Event{
		models.ModeIdle:        {models.EventCredentialAccepted, models.EventCredentialRejected},
		models.ModeLocked:      {models.EventButtonPressed, models.EventCredentialAccepted},
		models.ModeConfig:      {models.EventTimerFired},
		models.ModeMonitor:     {models.EventTimerFired, models.EventComfortDeviation},
		models.ModeComfortHigh: {models.EventAlarmThresholdTemp},
		models.ModeComfortLow:  {models.EventTimerFired},
		models.ModeAlarm:       {models.EventPresenceDetected, models.EventCredentialAccepted},
	}
	// PMV values that keep the event-independent rows of cooling and heating quiet.
	pmv := map[models.Mode]float64{
		models.ModeComfortHigh: 1.5,
		models.ModeComfortLow:  -1.5,
	}

	for _, mode := range models.Modes {
		for _, ev := range models.Events {
			if contains(moving[mode], ev) {
				continue
			}
			t.Run(string(mode)+"/"+string(ev), func(t *testing.T) {
				h := newHarness(t)
				h.ctrl.cc.Mode = mode
				h.ctrl.cc.Reading.PMV = pmv[mode]
				session := h.ctrl.cc.SessionID

				got, moved := h.ctrl.machine.Step(ev)
				assert.False(t, moved)
				assert.Equal(t, mode, got)
				assert.Equal(t, session, h.ctrl.cc.SessionID)
			})
		}
	}
}

func contains(events []models.Event, ev models.Event) bool {
	for _, e := range events {
		if e == ev {
			return true
		}
	}
	return false
}

func TestMachine_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.Mode
		pmv     float64
		counter int
		ev      models.Event
		want    models.Mode
	}{
		{"code accepted", models.ModeIdle, 0, 0, models.EventCredentialAccepted, models.ModeConfig},
		{"code rejected", models.ModeIdle, 0, 0, models.EventCredentialRejected, models.ModeLocked},
		{"unlock key", models.ModeLocked, 0, 0, models.EventCredentialAccepted, models.ModeIdle},
		{"unlock button", models.ModeLocked, 0, 0, models.EventButtonPressed, models.ModeIdle},
		{"config done", models.ModeConfig, 0, 0, models.EventTimerFired, models.ModeMonitor},
		{"monitor cycle", models.ModeMonitor, 0, 0, models.EventTimerFired, models.ModeConfig},
		{"too warm", models.ModeMonitor, 1.2, 0, models.EventComfortDeviation, models.ModeComfortHigh},
		{"too cold", models.ModeMonitor, -1.2, 0, models.EventComfortDeviation, models.ModeComfortLow},
		{"deviation inside band", models.ModeMonitor, 1.0, 0, models.EventComfortDeviation, models.ModeMonitor},
		{"cooled down", models.ModeComfortHigh, 1.0, 0, models.EventNone, models.ModeMonitor},
		{"cooled down beats alarm", models.ModeComfortHigh, 0.5, 3, models.EventAlarmThresholdTemp, models.ModeMonitor},
		{"alarm after strikes", models.ModeComfortHigh, 1.5, 3, models.EventAlarmThresholdTemp, models.ModeAlarm},
		{"no alarm before strikes", models.ModeComfortHigh, 1.5, 2, models.EventAlarmThresholdTemp, models.ModeComfortHigh},
		{"heating phase over", models.ModeComfortLow, -1.5, 0, models.EventTimerFired, models.ModeMonitor},
		{"warmed up", models.ModeComfortLow, -1.0, 0, models.EventNone, models.ModeMonitor},
		{"presence", models.ModeAlarm, 0, 0, models.EventPresenceDetected, models.ModeIdle},
		{"cancel key", models.ModeAlarm, 0, 0, models.EventCredentialAccepted, models.ModeIdle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.ctrl.cc.Mode = tt.from
			h.ctrl.cc.Reading.PMV = tt.pmv
			h.ctrl.cc.AttemptCounter = tt.counter

			got, _ := h.ctrl.machine.Step(tt.ev)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, h.ctrl.Mode())
		})
	}
}

func TestMachine_ExitStopsLeakedTimers(t *testing.T) {
	h := newHarness(t)
	h.ctrl.cc.Mode = models.ModeConfig
	// Config never starts the buzzer; pretend a bug did.
	h.ctrl.sched.byID[TimerBuzzer].Owner = models.ModeConfig
	h.ctrl.sched.Start(TimerBuzzer)
	h.ctrl.sched.Start(TimerConfig)

	h.ctrl.machine.Step(models.EventTimerFired)
	assert.Equal(t, models.ModeMonitor, h.ctrl.Mode())
	assert.False(t, h.ctrl.sched.Running(TimerBuzzer))
	assert.False(t, h.ctrl.sched.Running(TimerConfig))
	assert.True(t, h.ctrl.sched.Running(TimerMonitor))
}

func TestMachine_TransitionRenewsSession(t *testing.T) {
	h := newHarness(t)
	first := h.ctrl.cc.SessionID
	entered := h.ctrl.cc.EnteredAt

	h.clock.Advance(42)
	h.ctrl.machine.Step(models.EventCredentialAccepted)
	assert.NotEqual(t, first, h.ctrl.cc.SessionID)
	assert.True(t, h.ctrl.cc.EnteredAt.After(entered))
}
