// Package config loads controller settings with viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"smartcomfort/internal/logger"
	"smartcomfort/internal/models"
)

// envPrefix is the prefix of environment overrides, e.g. SMARTCOMFORT_LOG_LEVEL.
const envPrefix = "SMARTCOMFORT"

// Config is the full controller configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Controller ControllerConfig `mapstructure:"controller"`
	Comfort    ComfortConfig    `mapstructure:"comfort"`
	Timers     TimersConfig     `mapstructure:"timers"`
	Actuators  ActuatorsConfig  `mapstructure:"actuators"`
	Access     AccessConfig     `mapstructure:"access"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// ControllerConfig tunes the control loop and the input classifier.
type ControllerConfig struct {
	Cycle            time.Duration `mapstructure:"cycle"`
	PromptTimeout    time.Duration `mapstructure:"prompt_timeout"`
	PromptPoll       time.Duration `mapstructure:"prompt_poll"`
	ButtonDebounce   time.Duration `mapstructure:"button_debounce"`
	PresenceDebounce time.Duration `mapstructure:"presence_debounce"`
	AlarmTempC       float64       `mapstructure:"alarm_temp_c"`
	AlarmStrikes     int           `mapstructure:"alarm_strikes"`
}

// ComfortConfig holds the occupant factors fed to the PMV engine.
type ComfortConfig struct {
	MetabolicRate float64 `mapstructure:"metabolic_rate"`
	Clothing      float64 `mapstructure:"clothing"`
	AirVelocity   float64 `mapstructure:"air_velocity"`
}

// TimersConfig holds the phase timer periods of each mode.
type TimersConfig struct {
	Config      time.Duration `mapstructure:"config"`
	Monitor     time.Duration `mapstructure:"monitor"`
	ComfortHigh time.Duration `mapstructure:"comfort_high"`
	ComfortLow  time.Duration `mapstructure:"comfort_low"`
}

type ActuatorsConfig struct {
	HeatingPosition int `mapstructure:"heating_position"`
}

// AccessConfig seeds the key storage on first boot.
type AccessConfig struct {
	Code     string          `mapstructure:"code"`
	Profiles []ProfileConfig `mapstructure:"profiles"`
}

type ProfileConfig struct {
	UID            string  `mapstructure:"uid"`
	Name           string  `mapstructure:"name"`
	PreferredTempC float64 `mapstructure:"preferred_temp_c"`
}

type SimulationConfig struct {
	AmbientC   float64 `mapstructure:"ambient_c"`
	StartTempC float64 `mapstructure:"start_temp_c"`
	Humidity   float64 `mapstructure:"humidity"`
}

var (
	ErrInvalidLogLevel = errors.New("log.level must be one of debug, info, warn, error")
	ErrInvalidCycle    = errors.New("controller.cycle must be > 0")
	ErrInvalidStrikes  = errors.New("controller.alarm_strikes must be >= 1")
	ErrInvalidPrompt   = errors.New("controller.prompt_timeout and prompt_poll must be > 0")
	ErrInvalidTimer    = errors.New("timers must be > 0")
	ErrInvalidHeating  = errors.New("actuators.heating_position must be within 0..100")
)

// setDefaults registers the built-in values on v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "smartcomfort.db")

	v.SetDefault("controller.cycle", "10ms")
	v.SetDefault("controller.prompt_timeout", "15s")
	v.SetDefault("controller.prompt_poll", "50ms")
	v.SetDefault("controller.button_debounce", "50ms")
	v.SetDefault("controller.presence_debounce", "500ms")
	v.SetDefault("controller.alarm_temp_c", 21.0)
	v.SetDefault("controller.alarm_strikes", 3)

	v.SetDefault("comfort.metabolic_rate", 1.0)
	v.SetDefault("comfort.clothing", 0.61)
	v.SetDefault("comfort.air_velocity", 0.1)

	v.SetDefault("timers.config", "5s")
	v.SetDefault("timers.monitor", "7s")
	v.SetDefault("timers.comfort_high", "5s")
	v.SetDefault("timers.comfort_low", "3s")

	v.SetDefault("actuators.heating_position", 50)

	v.SetDefault("access.code", "1234")

	v.SetDefault("simulation.ambient_c", 24.0)
	v.SetDefault("simulation.start_temp_c", 29.0)
	v.SetDefault("simulation.humidity", 55.0)
}

// Load reads config.yml from the given search paths (configs/ when none) and applies
// SMARTCOMFORT_* environment overrides. A missing file leaves the defaults in place.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would stall or break the control loop.
func (c Config) Validate() error {
	if !logger.ValidLevel(c.Log.Level) {
		return ErrInvalidLogLevel
	}
	if c.Controller.Cycle <= 0 {
		return ErrInvalidCycle
	}
	if c.Controller.PromptTimeout <= 0 || c.Controller.PromptPoll <= 0 {
		return ErrInvalidPrompt
	}
	if c.Controller.AlarmStrikes < 1 {
		return ErrInvalidStrikes
	}
	for _, d := range []time.Duration{c.Timers.Config, c.Timers.Monitor, c.Timers.ComfortHigh, c.Timers.ComfortLow} {
		if d <= 0 {
			return ErrInvalidTimer
		}
	}
	if c.Actuators.HeatingPosition < 0 || c.Actuators.HeatingPosition > 100 {
		return ErrInvalidHeating
	}
	return nil
}

// ProfileModels parses the configured token profiles.
func (a AccessConfig) ProfileModels() ([]models.Profile, error) {
	out := make([]models.Profile, 0, len(a.Profiles))
	for i, p := range a.Profiles {
		id, err := models.ParseCredentialID(p.UID)
		if err != nil {
			return nil, fmt.Errorf("access.profiles[%d]: %w", i, err)
		}
		out = append(out, models.Profile{
			CredentialID:   id,
			Name:           p.Name,
			PreferredTempC: p.PreferredTempC,
		})
	}
	return out, nil
}
