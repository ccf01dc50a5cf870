package hardware

import (
	"math"
	"sync"
	"time"
)

// ----------- Simulation constants -----------
const (
	DefaultAmbientC    = 24.0 // outdoor/neighbour temperature the room drifts to
	DefaultStartTempC  = 29.0
	DefaultHumidity    = 55.0
	DriftPerSec        = 0.02 // fraction of the gap to ambient closed per second
	CoolCPerSec        = 0.15 // °C per second with the relay on
	HeatCPerSecAtOpen  = 0.20 // °C per second with the damper fully open
	RadiantLagFraction = 0.6  // walls follow air temperature with this weight
	humidityPerDegreeC = -1.5 // warmer air reads drier

	minRoomC    = -10.0
	maxRoomC    = 50.0
	minHumidity = 10.0
	maxHumidity = 95.0
)

// RoomConfig seeds the simulated room.
type RoomConfig struct {
	AmbientC   float64
	StartTempC float64
	Humidity   float64
	Thermistor ThermistorParams
}

// DefaultRoomConfig returns a warm room that will need cooling.
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		AmbientC:   DefaultAmbientC,
		StartTempC: DefaultStartTempC,
		Humidity:   DefaultHumidity,
		Thermistor: DefaultThermistorParams(),
	}
}

// Room is a first-order thermal model of one room. It answers the temperature and humidity
// reads of the board and reacts to the cooling relay and heating damper.
type Room struct {
	mu sync.Mutex

	cfg       RoomConfig
	now       func() time.Time
	updatedAt time.Time

	tempC       float64
	radiantC    float64
	humidity    float64
	relay       bool
	heatingPos  int
	failedReads bool
}

// NewRoom returns a room at cfg.StartTempC using now as its time source.
func NewRoom(cfg RoomConfig, now func() time.Time) *Room {
	if now == nil {
		now = time.Now
	}
	return &Room{
		cfg:       cfg,
		now:       now,
		updatedAt: now(),
		tempC:     cfg.StartTempC,
		radiantC:  cfg.StartTempC,
		humidity:  cfg.Humidity,
	}
}

// ReadAirTemperature returns the air temperature, or NaN while read failures are injected.
func (r *Room) ReadAirTemperature() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()
	if r.failedReads {
		return math.NaN()
	}
	return r.tempC
}

// ReadHumidity returns relative humidity, or NaN while read failures are injected.
func (r *Room) ReadHumidity() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()
	if r.failedReads {
		return math.NaN()
	}
	return r.humidity
}

// ReadAuxiliaryTemperature samples the wall thermistor through the ADC.
func (r *Room) ReadAuxiliaryTemperature() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()
	p := r.cfg.Thermistor
	return p.Celsius(p.ADC(r.radiantC))
}

// SetCoolingRelay switches the cooling relay.
func (r *Room) SetCoolingRelay(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()
	r.relay = on
}

// SetHeatingActuator positions the heating damper.
func (r *Room) SetHeatingActuator(position int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance()
	r.heatingPos = clampInt(position, 0, 100)
}

// InjectReadFailures makes the digital sensor return NaN until turned off.
func (r *Room) InjectReadFailures(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedReads = on
}

// Relay reports the relay state.
func (r *Room) Relay() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.relay
}

// HeatingPosition reports the damper position.
func (r *Room) HeatingPosition() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heatingPos
}

// advance integrates the model up to now. Caller holds mu.
func (r *Room) advance() {
	now := r.now()
	elapsed := now.Sub(r.updatedAt).Seconds()
	if elapsed <= 0 {
		return
	}
	r.updatedAt = now

	r.driftToAmbient(elapsed)
	if r.relay {
		r.tempC -= CoolCPerSec * elapsed
	}
	if r.heatingPos > 0 {
		r.tempC += HeatCPerSecAtOpen * float64(r.heatingPos) / 100 * elapsed
	}
	r.tempC = clampFloat(r.tempC, minRoomC, maxRoomC)
	r.radiantC = RadiantLagFraction*r.tempC + (1-RadiantLagFraction)*r.cfg.AmbientC
	r.humidity = clampFloat(r.cfg.Humidity+humidityPerDegreeC*(r.tempC-r.cfg.StartTempC), minHumidity, maxHumidity)
}

// driftToAmbient moves the air temperature toward ambient, never overshooting it.
func (r *Room) driftToAmbient(elapsed float64) {
	gap := r.cfg.AmbientC - r.tempC
	step := gap * math.Min(1, DriftPerSec*elapsed)
	r.tempC += step
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
