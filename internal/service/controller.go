package service

import (
	"context"
	"fmt"
	"time"

	"smartcomfort/internal/comfort"
	"smartcomfort/internal/config"
	"smartcomfort/internal/hardware"
	"smartcomfort/internal/logger"
	"smartcomfort/internal/models"
	"smartcomfort/internal/sensing"
)

// Hardware bundles the board ports.
type Hardware struct {
	Sensors   hardware.Sensors
	Input     hardware.CredentialInput
	Actuators hardware.Actuators
	Display   hardware.Display
}

// Settings is the controller tuning.
type Settings struct {
	Personal          comfort.Personal
	Classifier        ClassifierConfig
	ConfigPeriod      time.Duration
	MonitorPeriod     time.Duration
	ComfortHighPeriod time.Duration
	ComfortLowPeriod  time.Duration
	HeatingPosition   int
}

// DefaultSettings returns the stock board tuning.
func DefaultSettings() Settings {
	return Settings{
		Personal:          comfort.DefaultPersonal(),
		Classifier:        DefaultClassifierConfig(),
		ConfigPeriod:      5 * time.Second,
		MonitorPeriod:     7 * time.Second,
		ComfortHighPeriod: 5 * time.Second,
		ComfortLowPeriod:  3 * time.Second,
		HeatingPosition:   50,
	}
}

// SettingsFromConfig maps loaded configuration onto controller settings.
func SettingsFromConfig(cfg config.Config) Settings {
	return Settings{
		Personal: comfort.Personal{
			MetabolicRate: cfg.Comfort.MetabolicRate,
			Insulation:    cfg.Comfort.Clothing,
			AirVelocity:   cfg.Comfort.AirVelocity,
		},
		Classifier: ClassifierConfig{
			PromptTimeout:    cfg.Controller.PromptTimeout,
			PromptPoll:       cfg.Controller.PromptPoll,
			ButtonDebounce:   cfg.Controller.ButtonDebounce,
			PresenceDebounce: cfg.Controller.PresenceDebounce,
			AlarmTempC:       cfg.Controller.AlarmTempC,
			AlarmStrikes:     cfg.Controller.AlarmStrikes,
		},
		ConfigPeriod:      cfg.Timers.Config,
		MonitorPeriod:     cfg.Timers.Monitor,
		ComfortHighPeriod: cfg.Timers.ComfortHigh,
		ComfortLowPeriod:  cfg.Timers.ComfortLow,
		HeatingPosition:   cfg.Actuators.HeatingPosition,
	}
}

// Controller runs the cooperative control loop: sweep timers, classify inputs, step the machine.
// It is single-threaded; Snapshot must not be called while Run is active on another goroutine.
type Controller struct {
	cc         *ControllerContext
	clock      Clock
	sched      *Scheduler
	out        *Outputs
	classifier *Classifier
	machine    *Machine
	log        *logger.Logger
	started    bool
}

// NewController wires the controller. Nothing is driven until Start, Step or Run.
func NewController(hw Hardware, gate Gate, s Settings, clock Clock, log *logger.Logger) (*Controller, error) {
	log = log.Named("controller")
	cc := NewControllerContext()
	sched := NewScheduler(clock)

	phases := []struct {
		id     TimerID
		owner  models.Mode
		period time.Duration
	}{
		{TimerConfig, models.ModeConfig, s.ConfigPeriod},
		{TimerMonitor, models.ModeMonitor, s.MonitorPeriod},
		{TimerComfortHigh, models.ModeComfortHigh, s.ComfortHighPeriod},
		{TimerComfortLow, models.ModeComfortLow, s.ComfortLowPeriod},
	}
	for _, p := range phases {
		err := sched.Register(Timer{
			ID:        p.id,
			Owner:     p.owner,
			Interval:  p.period,
			Repeating: true,
			Fire:      func(time.Time) { cc.signalTimer() },
		})
		if err != nil {
			return nil, fmt.Errorf("phase timer: %w", err)
		}
	}

	out, err := newOutputs(hw.Actuators, sched, s.HeatingPosition)
	if err != nil {
		return nil, err
	}
	env := sensing.NewEnvironment(hw.Sensors, s.Personal)

	return &Controller{
		cc:    cc,
		clock: clock,
		sched: sched,
		out:   out,
		classifier: &Classifier{
			cc:      cc,
			cfg:     s.Classifier,
			clock:   clock,
			sensors: hw.Sensors,
			input:   hw.Input,
			display: hw.Display,
			env:     env,
			gate:    gate,
			sched:   sched,
			out:     out,
			log:     log,
		},
		machine: newMachine(cc, clock, sched, out, hw.Display, env, log, s.Classifier.AlarmStrikes),
		log:     log,
	}, nil
}

// Start drives the actuators to a safe state and enters the initial mode. Later calls do nothing.
func (c *Controller) Start() {
	if c.started {
		return
	}
	c.started = true
	c.out.SafeState()
	c.machine.Start()
}

// Step runs one control cycle and returns the mode after it.
func (c *Controller) Step(ctx context.Context) models.Mode {
	c.Start()
	c.sched.Sweep(c.clock.Now())
	ev := c.classifier.Classify(ctx)
	mode, _ := c.machine.Step(ev)
	return mode
}

// Run steps every cycle until ctx is canceled, then leaves the actuators in a safe state.
func (c *Controller) Run(ctx context.Context, cycle time.Duration) {
	c.Start()
	t := time.NewTicker(cycle)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			c.out.SafeState()
			c.log.Infow("controller stopped", "mode", c.cc.Mode)
			return
		case <-t.C:
			c.Step(ctx)
		}
	}
}

// Mode returns the current mode.
func (c *Controller) Mode() models.Mode { return c.cc.Mode }

// Snapshot copies the controller state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Mode:           c.cc.Mode,
		Reading:        c.cc.Reading,
		CurrentTemp:    c.cc.CurrentTemp,
		AttemptCounter: c.cc.AttemptCounter,
		SessionID:      c.cc.SessionID,
		EnteredAt:      c.cc.EnteredAt,
		RunningTimers:  c.sched.RunningIDs(),
	}
	if c.cc.Profile != nil {
		s.ProfileName = c.cc.Profile.Name
	}
	return s
}
