package service

import (
	"fmt"
	"time"

	"smartcomfort/internal/hardware"
	"smartcomfort/internal/models"
)

// Pattern is a blink sequence of one LED channel owned by one mode.
type Pattern string

const (
	PatternLocked  Pattern = "locked"
	PatternAlarm   Pattern = "alarm"
	PatternCooling Pattern = "cooling"
	PatternHeating Pattern = "heating"
)

const buzzerPeriod = 500 * time.Millisecond

// blink lights the LED onDelay after start and darkens it offDelay later, then repeats.
type blink struct {
	owner    models.Mode
	color    hardware.LEDColor
	onID     TimerID
	offID    TimerID
	onDelay  time.Duration
	offDelay time.Duration
}

var blinks = map[Pattern]blink{
	PatternLocked:  {models.ModeLocked, hardware.LEDRed, TimerLockedOn, TimerLockedOff, 500 * time.Millisecond, 500 * time.Millisecond},
	PatternAlarm:   {models.ModeAlarm, hardware.LEDRed, TimerAlarmOn, TimerAlarmOff, 100 * time.Millisecond, 500 * time.Millisecond},
	PatternCooling: {models.ModeComfortHigh, hardware.LEDBlue, TimerCoolingOn, TimerCoolingOff, 300 * time.Millisecond, 400 * time.Millisecond},
	PatternHeating: {models.ModeComfortLow, hardware.LEDGreen, TimerHeatingOn, TimerHeatingOff, 200 * time.Millisecond, 300 * time.Millisecond},
}

// patternOrder fixes registration order so sweeps are deterministic.
var patternOrder = []Pattern{PatternLocked, PatternAlarm, PatternCooling, PatternHeating}

// Outputs drives the actuators and owns the pattern timers the modes start and stop.
type Outputs struct {
	act         hardware.Actuators
	sched       *Scheduler
	heatingOpen int
	buzzerOn    bool
}

func newOutputs(act hardware.Actuators, sched *Scheduler, heatingOpen int) (*Outputs, error) {
	o := &Outputs{act: act, sched: sched, heatingOpen: heatingOpen}
	for _, p := range patternOrder {
		if err := o.registerBlink(blinks[p]); err != nil {
			return nil, fmt.Errorf("pattern %s: %w", p, err)
		}
	}
	err := sched.Register(Timer{
		ID:        TimerBuzzer,
		Owner:     models.ModeAlarm,
		Interval:  buzzerPeriod,
		Repeating: true,
		Fire: func(time.Time) {
			o.buzzerOn = !o.buzzerOn
			o.act.SetBuzzer(o.buzzerOn)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("buzzer: %w", err)
	}
	return o, nil
}

func (o *Outputs) registerBlink(b blink) error {
	if err := o.sched.Register(Timer{
		ID:       b.onID,
		Owner:    b.owner,
		Interval: b.onDelay,
		Fire: func(time.Time) {
			o.act.SetIndicatorLED(b.color, true)
			o.sched.Start(b.offID)
		},
	}); err != nil {
		return err
	}
	return o.sched.Register(Timer{
		ID:       b.offID,
		Owner:    b.owner,
		Interval: b.offDelay,
		Fire: func(time.Time) {
			o.act.SetIndicatorLED(b.color, false)
			o.sched.Start(b.onID)
		},
	})
}

// StartPattern begins a blink sequence from the dark phase.
func (o *Outputs) StartPattern(p Pattern) {
	b, ok := blinks[p]
	if !ok {
		return
	}
	o.sched.Stop(b.offID)
	o.sched.Start(b.onID)
}

// StopPattern ends a blink sequence and switches its LED off.
func (o *Outputs) StopPattern(p Pattern) {
	b, ok := blinks[p]
	if !ok {
		return
	}
	o.sched.Stop(b.onID)
	o.sched.Stop(b.offID)
	o.act.SetIndicatorLED(b.color, false)
}

// StartAlarm starts the buzzer toggle and the short red blink.
func (o *Outputs) StartAlarm() {
	o.buzzerOn = false
	o.sched.Start(TimerBuzzer)
	o.StartPattern(PatternAlarm)
}

// SilenceAlarm stops the buzzer and the alarm blink at once.
func (o *Outputs) SilenceAlarm() {
	o.sched.Stop(TimerBuzzer)
	o.buzzerOn = false
	o.act.SetBuzzer(false)
	o.StopPattern(PatternAlarm)
}

// Cooling switches the cooling relay.
func (o *Outputs) Cooling(on bool) { o.act.SetCoolingRelay(on) }

// Heating opens the heating actuator to the configured position or closes it.
func (o *Outputs) Heating(open bool) {
	if open {
		o.act.SetHeatingActuator(o.heatingOpen)
		return
	}
	o.act.SetHeatingActuator(0)
}

// LEDOff switches one LED channel off.
func (o *Outputs) LEDOff(c hardware.LEDColor) { o.act.SetIndicatorLED(c, false) }

// SafeState drives every actuator to its inactive position.
func (o *Outputs) SafeState() {
	o.act.SetCoolingRelay(false)
	o.act.SetHeatingActuator(0)
	o.act.SetBuzzer(false)
	o.buzzerOn = false
	for _, c := range []hardware.LEDColor{hardware.LEDRed, hardware.LEDGreen, hardware.LEDBlue} {
		o.act.SetIndicatorLED(c, false)
	}
}
