package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smartcomfort/internal/hardware"
	"smartcomfort/internal/logger"
	"smartcomfort/internal/models"
	"smartcomfort/internal/sensing"
)

const (
	keyCancelAlarm = '#'
	keyUnlock      = '*'
	keyBackspace   = '*'
)

// Gate validates credentials.
type Gate interface {
	ValidateCode(ctx context.Context, code string) models.AccessResult
	ValidateToken(ctx context.Context, id models.CredentialID) (models.AccessResult, *models.Profile)
}

// ClassifierConfig holds the input timing and alarm escalation settings.
type ClassifierConfig struct {
	PromptTimeout    time.Duration
	PromptPoll       time.Duration
	ButtonDebounce   time.Duration
	PresenceDebounce time.Duration
	AlarmTempC       float64
	AlarmStrikes     int
}

// DefaultClassifierConfig returns the stock board timing.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		PromptTimeout:    15 * time.Second,
		PromptPoll:       50 * time.Millisecond,
		ButtonDebounce:   50 * time.Millisecond,
		PresenceDebounce: 500 * time.Millisecond,
		AlarmTempC:       21.0,
		AlarmStrikes:     3,
	}
}

// Classifier reads the inputs relevant to the current mode and reduces them to one event.
type Classifier struct {
	cc      *ControllerContext
	cfg     ClassifierConfig
	clock   Clock
	sensors hardware.Sensors
	input   hardware.CredentialInput
	display hardware.Display
	env     *sensing.Environment
	gate    Gate
	sched   *Scheduler
	out     *Outputs
	log     *logger.Logger
}

// Classify returns the event of this cycle, or EventNone.
func (c *Classifier) Classify(ctx context.Context) models.Event {
	timerFired := c.cc.takeTimer()

	var ev models.Event
	if c.cc.Mode == models.ModeIdle {
		ev = c.classifyIdle(ctx)
	} else {
		key, hasKey := c.input.PollKey()
		switch c.cc.Mode {
		case models.ModeAlarm:
			ev = c.classifyAlarm(key, hasKey)
		case models.ModeLocked:
			if hasKey && key == keyUnlock {
				ev = models.EventCredentialAccepted
			}
		case models.ModeConfig:
			ev = c.classifyConfig(ctx, timerFired)
		case models.ModeComfortHigh:
			ev = c.classifyComfortHigh(timerFired)
		case models.ModeComfortLow:
			ev = c.classifyComfortLow(timerFired)
		case models.ModeMonitor:
			ev = c.classifyMonitor(timerFired)
		}
	}
	if ev != "" && ev != models.EventNone {
		return ev
	}
	if c.buttonPressed() {
		return models.EventButtonPressed
	}
	return models.EventNone
}

func (c *Classifier) classifyIdle(ctx context.Context) models.Event {
	code, ok := c.promptCode(ctx)
	if !ok {
		return models.EventNone
	}
	if c.gate.ValidateCode(ctx, code) == models.AccessAccepted {
		c.log.Infow("access code accepted")
		return models.EventCredentialAccepted
	}
	c.log.Warnw("access code rejected")
	return models.EventCredentialRejected
}

// promptCode collects up to CodeLength digits. Digits echo as '*' and '*' deletes the last one.
// It returns false when the prompt timed out or ctx was cancelled before the code was complete.
func (c *Classifier) promptCode(ctx context.Context) (string, bool) {
	var digits []rune
	deadline := c.clock.Now().Add(c.cfg.PromptTimeout)
	c.display.ShowMessage(promptLine(0), 1)
	for len(digits) < CodeLength && c.clock.Now().Before(deadline) {
		if ctx.Err() != nil {
			return "", false
		}
		if key, ok := c.input.PollKey(); ok {
			switch {
			case key == keyBackspace:
				if len(digits) > 0 {
					digits = digits[:len(digits)-1]
				}
			case key >= '0' && key <= '9':
				digits = append(digits, key)
			}
			c.display.ShowMessage(promptLine(len(digits)), 1)
			continue
		}
		c.clock.Sleep(c.cfg.PromptPoll)
	}
	if len(digits) < CodeLength {
		return "", false
	}
	return string(digits), true
}

func promptLine(n int) string {
	return "Code: " + strings.Repeat("*", n)
}

func (c *Classifier) classifyAlarm(key rune, hasKey bool) models.Event {
	if c.cc.Presence.Observe(c.sensors.ReadPresence(), c.clock.Now(), c.cfg.PresenceDebounce) {
		c.out.SilenceAlarm()
		c.log.Infow("presence detected, alarm cleared")
		return models.EventPresenceDetected
	}
	if hasKey && key == keyCancelAlarm {
		c.out.SilenceAlarm()
		c.log.Infow("alarm cancelled from keypad")
		return models.EventCredentialAccepted
	}
	return models.EventNone
}

func (c *Classifier) classifyConfig(ctx context.Context, timerFired bool) models.Event {
	if id, ok := c.input.PollCredentialReader(); ok {
		c.handleToken(ctx, id)
	}
	if timerFired {
		return models.EventTimerFired
	}
	return models.EventNone
}

func (c *Classifier) handleToken(ctx context.Context, id models.CredentialID) {
	result, p := c.gate.ValidateToken(ctx, id)
	if result != models.AccessAccepted || p == nil {
		c.display.ShowMessage("Card not", 0)
		c.display.ShowMessage("recognized", 1)
		c.log.Warnw("unknown token", "uid", id.String())
		return
	}
	c.cc.Profile = p
	c.display.ShowMessage(p.Name, 0)
	c.display.ShowMessage(fmt.Sprintf("Pref temp: %.1fC", p.PreferredTempC), 1)
	c.sched.Start(TimerConfig)
	c.log.Infow("profile loaded", "uid", id.String(), "name", p.Name, "preferred_temp_c", p.PreferredTempC)
}

func (c *Classifier) classifyComfortHigh(timerFired bool) models.Event {
	if !timerFired {
		return models.EventNone
	}
	reading, sample, ok := c.measure()
	if !ok {
		c.sched.Start(TimerComfortHigh)
		return models.EventNone
	}
	if reading.PMV <= HighPMVThreshold {
		c.sched.Stop(TimerComfortHigh)
		c.cc.AttemptCounter = 0
		return models.EventNone
	}
	if sample.AirTemp >= c.cfg.AlarmTempC {
		if c.cc.AttemptCounter < c.cfg.AlarmStrikes {
			c.cc.AttemptCounter++
		}
		c.log.Warnw("cooling not effective", "temp_c", sample.AirTemp, "pmv", reading.PMV, "attempt", c.cc.AttemptCounter)
		if c.cc.AttemptCounter >= c.cfg.AlarmStrikes {
			c.sched.Stop(TimerComfortHigh)
			return models.EventAlarmThresholdTemp
		}
	} else {
		c.cc.AttemptCounter = 0
	}
	c.sched.Start(TimerComfortHigh)
	return models.EventNone
}

func (c *Classifier) classifyComfortLow(timerFired bool) models.Event {
	if timerFired {
		c.sched.Start(TimerComfortLow)
		return models.EventTimerFired
	}
	reading, _, ok := c.measure()
	if ok && reading.PMV >= LowPMVThreshold {
		return models.EventTimerFired
	}
	return models.EventNone
}

func (c *Classifier) classifyMonitor(timerFired bool) models.Event {
	if timerFired {
		return models.EventTimerFired
	}
	reading, _, ok := c.measure()
	if ok && (reading.PMV > HighPMVThreshold || reading.PMV < LowPMVThreshold) {
		c.log.Infow("comfort deviation", "pmv", reading.PMV, "temp_c", reading.AirTemp, "humidity", reading.RelativeHumidity)
		return models.EventComfortDeviation
	}
	return models.EventNone
}

// measure samples the room and stores the reading in the context when it is valid.
func (c *Classifier) measure() (models.ComfortReading, models.Sample, bool) {
	reading, sample, ok := c.env.Measure()
	if !ok {
		c.log.Warnw("sensor read failed", "mode", c.cc.Mode)
		return reading, sample, false
	}
	if !reading.Converged {
		c.log.Debugw("clothing temperature did not converge", "temp_c", sample.AirTemp)
	}
	c.cc.apply(reading, sample)
	return reading, sample, true
}

// buttonPressed reports a press that is still held after the debounce delay.
func (c *Classifier) buttonPressed() bool {
	if !c.sensors.ReadButton() {
		return false
	}
	c.clock.Sleep(c.cfg.ButtonDebounce)
	return c.sensors.ReadButton()
}
