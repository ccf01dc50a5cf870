package service

import (
	"fmt"

	"github.com/google/uuid"

	"smartcomfort/internal/hardware"
	"smartcomfort/internal/logger"
	"smartcomfort/internal/models"
	"smartcomfort/internal/sensing"
)

// Comfort band edges. Outside (LowPMVThreshold, HighPMVThreshold] the controller acts.
const (
	HighPMVThreshold = 1.0
	LowPMVThreshold  = -1.0
)

type transition struct {
	from, to models.Mode
	when     func(ev models.Event, cc *ControllerContext) bool
}

type modeHooks struct {
	onEnter func(from models.Mode)
	onExit  func(to models.Mode)
}

func on(events ...models.Event) func(models.Event, *ControllerContext) bool {
	return func(ev models.Event, _ *ControllerContext) bool {
		for _, e := range events {
			if ev == e {
				return true
			}
		}
		return false
	}
}

// transitionTable lists the legal mode changes. The first matching row wins.
func transitionTable(strikes int) []transition {
	return []transition{
		{models.ModeIdle, models.ModeConfig, on(models.EventCredentialAccepted)},
		{models.ModeIdle, models.ModeLocked, on(models.EventCredentialRejected)},
		{models.ModeLocked, models.ModeIdle, on(models.EventButtonPressed, models.EventCredentialAccepted)},
		{models.ModeConfig, models.ModeMonitor, on(models.EventTimerFired)},
		{models.ModeMonitor, models.ModeConfig, on(models.EventTimerFired)},
		{models.ModeMonitor, models.ModeComfortHigh, func(ev models.Event, cc *ControllerContext) bool {
			return ev == models.EventComfortDeviation && cc.Reading.PMV > HighPMVThreshold
		}},
		{models.ModeMonitor, models.ModeComfortLow, func(ev models.Event, cc *ControllerContext) bool {
			return ev == models.EventComfortDeviation && cc.Reading.PMV < LowPMVThreshold
		}},
		{models.ModeComfortHigh, models.ModeMonitor, func(_ models.Event, cc *ControllerContext) bool {
			return cc.Reading.PMV <= HighPMVThreshold
		}},
		{models.ModeComfortHigh, models.ModeAlarm, func(ev models.Event, cc *ControllerContext) bool {
			return ev == models.EventAlarmThresholdTemp && cc.AttemptCounter >= strikes
		}},
		{models.ModeComfortLow, models.ModeMonitor, func(ev models.Event, cc *ControllerContext) bool {
			return ev == models.EventTimerFired || cc.Reading.PMV >= LowPMVThreshold
		}},
		{models.ModeAlarm, models.ModeIdle, on(models.EventPresenceDetected, models.EventCredentialAccepted)},
	}
}

// Machine applies events to the controller mode and runs the enter/exit actions.
type Machine struct {
	cc          *ControllerContext
	clock       Clock
	sched       *Scheduler
	out         *Outputs
	display     hardware.Display
	env         *sensing.Environment
	log         *logger.Logger
	transitions []transition
	hooks       map[models.Mode]modeHooks
}

func newMachine(cc *ControllerContext, clock Clock, sched *Scheduler, out *Outputs, display hardware.Display,
	env *sensing.Environment, log *logger.Logger, strikes int) *Machine {
	m := &Machine{
		cc:          cc,
		clock:       clock,
		sched:       sched,
		out:         out,
		display:     display,
		env:         env,
		log:         log,
		transitions: transitionTable(strikes),
	}
	m.hooks = map[models.Mode]modeHooks{
		models.ModeIdle:        {m.enterIdle, m.exitIdle},
		models.ModeLocked:      {m.enterLocked, m.exitLocked},
		models.ModeConfig:      {m.enterConfig, m.exitConfig},
		models.ModeMonitor:     {m.enterMonitor, m.exitMonitor},
		models.ModeAlarm:       {m.enterAlarm, m.exitAlarm},
		models.ModeComfortHigh: {m.enterComfortHigh, m.exitComfortHigh},
		models.ModeComfortLow:  {m.enterComfortLow, m.exitComfortLow},
	}
	return m
}

// Start puts the machine in its initial mode and runs that mode's enter action.
func (m *Machine) Start() {
	m.cc.Mode = models.ModeIdle
	m.cc.SessionID = uuid.NewString()
	m.cc.EnteredAt = m.clock.Now()
	m.log.Infow("controller started", "mode", m.cc.Mode, "session", m.cc.SessionID)
	m.hooks[models.ModeIdle].onEnter(models.ModeIdle)
}

// Step applies ev. It performs at most one transition and reports whether it did.
func (m *Machine) Step(ev models.Event) (models.Mode, bool) {
	from := m.cc.Mode
	for _, t := range m.transitions {
		if t.from != from || !t.when(ev, m.cc) {
			continue
		}
		m.transition(from, t.to, ev)
		return t.to, true
	}
	return from, false
}

func (m *Machine) transition(from, to models.Mode, ev models.Event) {
	if h := m.hooks[from]; h.onExit != nil {
		h.onExit(to)
	}
	if leaked := m.sched.StopOwnedBy(from); len(leaked) > 0 {
		m.log.Warnw("timers still running after exit", "mode", from, "timers", leaked)
	}
	m.cc.Mode = to
	m.cc.SessionID = uuid.NewString()
	m.cc.EnteredAt = m.clock.Now()
	m.cc.timerFired = false
	m.log.Infow("mode transition",
		"from", from,
		"to", to,
		"event", ev,
		"pmv", m.cc.Reading.PMV,
		"session", m.cc.SessionID,
	)
	if h := m.hooks[to]; h.onEnter != nil {
		h.onEnter(from)
	}
}

func (m *Machine) show(top, bottom string) {
	m.display.ShowMessage(top, 0)
	m.display.ShowMessage(bottom, 1)
}

func (m *Machine) enterIdle(models.Mode) {
	m.cc.AttemptCounter = 0
	m.cc.Profile = nil
	m.show("System ready", "Enter code:")
}

func (m *Machine) exitIdle(models.Mode) {
	m.cc.AttemptCounter = 0
}

func (m *Machine) enterLocked(models.Mode) {
	m.cc.AttemptCounter = 0
	m.out.StartPattern(PatternLocked)
	m.show("LOCKED", "Wrong code, press *")
}

func (m *Machine) exitLocked(models.Mode) {
	m.out.StopPattern(PatternLocked)
}

func (m *Machine) enterConfig(models.Mode) {
	m.show("CONFIG mode", "Scan card")
}

func (m *Machine) exitConfig(models.Mode) {
	m.sched.Stop(TimerConfig)
}

func (m *Machine) enterMonitor(models.Mode) {
	m.sched.Start(TimerMonitor)
	reading, sample, ok := m.env.Measure()
	if ok {
		m.cc.apply(reading, sample)
	} else {
		m.log.Warnw("sensor read failed", "mode", models.ModeMonitor)
	}
	r := m.cc.Reading
	m.show(
		fmt.Sprintf("T:%.1fC Tr:%.1fC", r.AirTemp, r.RadiantTemp),
		fmt.Sprintf("H:%.0f%% PMV:%.2f", r.RelativeHumidity, r.PMV),
	)
}

func (m *Machine) exitMonitor(models.Mode) {
	m.sched.Stop(TimerMonitor)
}

func (m *Machine) enterAlarm(models.Mode) {
	m.out.StartAlarm()
	m.cc.Presence.Arm()
	m.show("*** ALARM ***", "Press # or wave")
	m.log.Warnw("temperature alarm", "temp_c", m.cc.CurrentTemp, "pmv", m.cc.Reading.PMV)
}

func (m *Machine) exitAlarm(models.Mode) {
	m.out.SilenceAlarm()
	m.cc.Presence.Arm()
	m.cc.AttemptCounter = 0
}

func (m *Machine) enterComfortHigh(models.Mode) {
	m.sched.Start(TimerComfortHigh)
	m.out.Cooling(true)
	m.out.StartPattern(PatternCooling)
	m.show(fmt.Sprintf("PMV HIGH %.1f", m.cc.Reading.PMV), "Cooling...")
}

func (m *Machine) exitComfortHigh(to models.Mode) {
	m.out.Cooling(false)
	m.out.StopPattern(PatternCooling)
	m.out.LEDOff(hardware.LEDRed)
	m.sched.Stop(TimerComfortHigh)
	if to != models.ModeAlarm {
		m.cc.AttemptCounter = 0
	}
}

func (m *Machine) enterComfortLow(models.Mode) {
	m.sched.Start(TimerComfortLow)
	m.out.Heating(true)
	m.out.StartPattern(PatternHeating)
	m.show(fmt.Sprintf("PMV LOW %.1f", m.cc.Reading.PMV), "Heating...")
}

func (m *Machine) exitComfortLow(models.Mode) {
	m.out.Heating(false)
	m.out.StopPattern(PatternHeating)
	m.sched.Stop(TimerComfortLow)
}
