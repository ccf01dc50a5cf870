package service

import (
	"errors"
	"fmt"
	"time"

	"smartcomfort/internal/models"
)

// TimerID names one cooperative timer.
type TimerID string

// Phase timers: one per mode that advances on time.
const (
	TimerConfig      TimerID = "config"
	TimerMonitor     TimerID = "monitor"
	TimerComfortHigh TimerID = "comfort_high"
	TimerComfortLow  TimerID = "comfort_low"
)

// Pattern timers: LED blink pairs and the buzzer.
const (
	TimerLockedOn   TimerID = "locked_red_on"
	TimerLockedOff  TimerID = "locked_red_off"
	TimerAlarmOn    TimerID = "alarm_red_on"
	TimerAlarmOff   TimerID = "alarm_red_off"
	TimerCoolingOn  TimerID = "cooling_blue_on"
	TimerCoolingOff TimerID = "cooling_blue_off"
	TimerHeatingOn  TimerID = "heating_green_on"
	TimerHeatingOff TimerID = "heating_green_off"
	TimerBuzzer     TimerID = "buzzer"
)

var (
	ErrDuplicateTimer = errors.New("timer already registered")
	ErrInvalidTimer   = errors.New("timer needs an id, an owner, a positive interval and a callback")
)

// Timer is a polled one-shot or repeating timer owned by a mode.
type Timer struct {
	ID        TimerID
	Owner     models.Mode
	Interval  time.Duration
	Repeating bool
	Fire      func(now time.Time)

	running bool
	dueAt   time.Time
}

// Scheduler holds every timer of the controller and fires them when polled.
// It is not safe for concurrent use; the control loop is its only caller.
type Scheduler struct {
	clock  Clock
	timers []*Timer
	byID   map[TimerID]*Timer
}

// NewScheduler returns an empty scheduler reading time from clock.
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{
		clock: clock,
		byID:  make(map[TimerID]*Timer),
	}
}

// Register adds a stopped timer. Timers fire in registration order.
func (s *Scheduler) Register(t Timer) error {
	if t.ID == "" || t.Owner == "" || t.Interval <= 0 || t.Fire == nil {
		return fmt.Errorf("register %q: %w", t.ID, ErrInvalidTimer)
	}
	if _, ok := s.byID[t.ID]; ok {
		return fmt.Errorf("register %q: %w", t.ID, ErrDuplicateTimer)
	}
	t.running = false
	s.timers = append(s.timers, &t)
	s.byID[t.ID] = &t
	return nil
}

// Start (re)arms a timer to fire one interval from now. Unknown ids are ignored.
func (s *Scheduler) Start(id TimerID) {
	t, ok := s.byID[id]
	if !ok {
		return
	}
	t.running = true
	t.dueAt = s.clock.Now().Add(t.Interval)
}

// Stop disarms a timer.
func (s *Scheduler) Stop(id TimerID) {
	if t, ok := s.byID[id]; ok {
		t.running = false
	}
}

// Running reports whether a timer is armed.
func (s *Scheduler) Running(id TimerID) bool {
	t, ok := s.byID[id]
	return ok && t.running
}

// RunningOwnedBy lists the armed timers of owner.
func (s *Scheduler) RunningOwnedBy(owner models.Mode) []TimerID {
	var ids []TimerID
	for _, t := range s.timers {
		if t.Owner == owner && t.running {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// RunningIDs lists every armed timer.
func (s *Scheduler) RunningIDs() []TimerID {
	var ids []TimerID
	for _, t := range s.timers {
		if t.running {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// StopOwnedBy disarms every timer of owner and returns the ones that were still armed.
func (s *Scheduler) StopOwnedBy(owner models.Mode) []TimerID {
	stopped := s.RunningOwnedBy(owner)
	for _, id := range stopped {
		s.byID[id].running = false
	}
	return stopped
}

// Sweep fires every armed timer that is due at now and returns how many fired.
// Repeating timers re-arm one interval after their due time, or after now when the loop
// fell behind by more than an interval.
func (s *Scheduler) Sweep(now time.Time) int {
	fired := 0
	for _, t := range s.timers {
		if !t.running || now.Before(t.dueAt) {
			continue
		}
		if t.Repeating {
			t.dueAt = t.dueAt.Add(t.Interval)
			if !t.dueAt.After(now) {
				t.dueAt = now.Add(t.Interval)
			}
		} else {
			t.running = false
		}
		t.Fire(now)
		fired++
	}
	return fired
}
