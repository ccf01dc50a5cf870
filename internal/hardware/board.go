package hardware

import (
	"sync"

	"smartcomfort/internal/logger"
)

// Board is the simulated controller board: room model, console inputs, indicator LEDs and
// buzzer. It implements Sensors, CredentialInput and Actuators.
type Board struct {
	*Room
	*Console

	mu     sync.Mutex
	leds   map[LEDColor]bool
	buzzer bool
	log    *logger.Logger
}

var (
	_ Sensors         = (*Board)(nil)
	_ CredentialInput = (*Board)(nil)
	_ Actuators       = (*Board)(nil)
)

// NewBoard wires a room and a console together. The console command "nan on|off" toggles
// sensor read failures on the room.
func NewBoard(room *Room, console *Console, log *logger.Logger) *Board {
	b := &Board{
		Room:    room,
		Console: console,
		leds:    make(map[LEDColor]bool, 3),
		log:     log,
	}
	console.OnCommand = func(name, arg string) bool {
		if name != "nan" {
			return false
		}
		room.InjectReadFailures(arg == "on")
		return true
	}
	return b
}

// SetCoolingRelay switches the relay and logs the edge.
func (b *Board) SetCoolingRelay(on bool) {
	if b.Room.Relay() != on && b.log != nil {
		b.log.Debugw("relay", "on", on)
	}
	b.Room.SetCoolingRelay(on)
}

// SetIndicatorLED sets one LED channel and logs the edge.
func (b *Board) SetIndicatorLED(color LEDColor, on bool) {
	b.mu.Lock()
	changed := b.leds[color] != on
	b.leds[color] = on
	b.mu.Unlock()
	if changed && b.log != nil {
		b.log.Debugw("led", "color", string(color), "on", on)
	}
}

// SetBuzzer drives the buzzer and logs the edge.
func (b *Board) SetBuzzer(on bool) {
	b.mu.Lock()
	changed := b.buzzer != on
	b.buzzer = on
	b.mu.Unlock()
	if changed && b.log != nil {
		b.log.Debugw("buzzer", "on", on)
	}
}
