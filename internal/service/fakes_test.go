package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"smartcomfort/internal/hardware"
	"smartcomfort/internal/logger"
	"smartcomfort/internal/models"
)

var (
	cardUID = models.CredentialID{0x43, 0x89, 0x4F, 0x2E}
	fobUID  = models.CredentialID{0x56, 0x34, 0xDA, 0x73}
)

// fakeClock only moves when told to or when something sleeps on it.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps++
	c.now = c.now.Add(d)
}

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeBoard implements every hardware port with scripted inputs and recorded outputs.
type fakeBoard struct {
	air, humidity, aux float64
	presence, button   bool
	keys               []rune
	tokens             []models.CredentialID

	relay         bool
	heating       int
	heatingCalls  []int
	leds          map[hardware.LEDColor]bool
	buzzer        bool
	buzzerChanges int
	lines         [2]string
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{
		air:      25,
		humidity: 50,
		aux:      25,
		leds:     make(map[hardware.LEDColor]bool),
	}
}

func (b *fakeBoard) setRoom(temp, humidity float64) {
	b.air, b.aux, b.humidity = temp, temp, humidity
}

func (b *fakeBoard) ReadAirTemperature() float64       { return b.air }
func (b *fakeBoard) ReadHumidity() float64             { return b.humidity }
func (b *fakeBoard) ReadAuxiliaryTemperature() float64 { return b.aux }
func (b *fakeBoard) ReadPresence() bool                { return b.presence }
func (b *fakeBoard) ReadButton() bool                  { return b.button }

func (b *fakeBoard) PollKey() (rune, bool) {
	if len(b.keys) == 0 {
		return 0, false
	}
	k := b.keys[0]
	b.keys = b.keys[1:]
	return k, true
}

func (b *fakeBoard) PollCredentialReader() (models.CredentialID, bool) {
	if len(b.tokens) == 0 {
		return models.CredentialID{}, false
	}
	id := b.tokens[0]
	b.tokens = b.tokens[1:]
	return id, true
}

func (b *fakeBoard) SetCoolingRelay(on bool) { b.relay = on }

func (b *fakeBoard) SetHeatingActuator(position int) {
	b.heating = position
	b.heatingCalls = append(b.heatingCalls, position)
}

func (b *fakeBoard) SetIndicatorLED(color hardware.LEDColor, on bool) { b.leds[color] = on }

func (b *fakeBoard) SetBuzzer(on bool) {
	if on != b.buzzer {
		b.buzzerChanges++
	}
	b.buzzer = on
}

func (b *fakeBoard) ShowMessage(text string, line int) { b.lines[line] = text }

// fakeGate accepts one code and a fixed set of tokens, recording what it was asked.
type fakeGate struct {
	code     string
	profiles map[models.CredentialID]*models.Profile

	codeCalls  []string
	tokenCalls []models.CredentialID
}

func newFakeGate() *fakeGate {
	return &fakeGate{
		code: "1234",
		profiles: map[models.CredentialID]*models.Profile{
			cardUID: {CredentialID: cardUID, Name: "Card holder", PreferredTempC: 22},
		},
	}
}

func (g *fakeGate) ValidateCode(_ context.Context, code string) models.AccessResult {
	g.codeCalls = append(g.codeCalls, code)
	if code == g.code {
		return models.AccessAccepted
	}
	return models.AccessRejected
}

func (g *fakeGate) ValidateToken(_ context.Context, id models.CredentialID) (models.AccessResult, *models.Profile) {
	g.tokenCalls = append(g.tokenCalls, id)
	if p, ok := g.profiles[id]; ok {
		return models.AccessAccepted, p
	}
	return models.AccessRejected, nil
}

type harness struct {
	t     *testing.T
	clock *fakeClock
	board *fakeBoard
	gate  *fakeGate
	ctrl  *Controller
}

func newHarness(t *testing.T, mutate ...func(*Settings)) *harness {
	t.Helper()
	s := DefaultSettings()
	for _, m := range mutate {
		m(&s)
	}
	h := &harness{
		t:     t,
		clock: newFakeClock(),
		board: newFakeBoard(),
		gate:  newFakeGate(),
	}
	hw := Hardware{Sensors: h.board, Input: h.board, Actuators: h.board, Display: h.board}
	ctrl, err := NewController(hw, h.gate, s, h.clock, logger.NewNop())
	require.NoError(t, err)
	ctrl.Start()
	h.ctrl = ctrl
	return h
}

func (h *harness) step() models.Mode {
	h.t.Helper()
	mode := h.ctrl.Step(context.Background())
	h.requireTimersOwnedBy(mode)
	return mode
}

// requireTimersOwnedBy fails when a timer of another mode is still armed.
func (h *harness) requireTimersOwnedBy(mode models.Mode) {
	h.t.Helper()
	for _, id := range h.ctrl.sched.RunningIDs() {
		require.Equalf(h.t, mode, h.ctrl.sched.byID[id].Owner, "timer %s outlived its mode", id)
	}
}

// toMonitor walks Idle -> Config -> Monitor with the valid code and the known card.
func (h *harness) toMonitor() {
	h.t.Helper()
	h.board.keys = []rune("1234")
	require.Equal(h.t, models.ModeConfig, h.step())
	h.board.tokens = []models.CredentialID{cardUID}
	require.Equal(h.t, models.ModeConfig, h.step())
	h.clock.Advance(5 * time.Second)
	require.Equal(h.t, models.ModeMonitor, h.step())
}

// toComfortHigh enters cooling from a warm, humid room.
func (h *harness) toComfortHigh() {
	h.t.Helper()
	h.toMonitor()
	h.board.setRoom(30, 60)
	require.Equal(h.t, models.ModeComfortHigh, h.step())
}

// toAlarm lets cooling fail three times in a row.
func (h *harness) toAlarm() {
	h.t.Helper()
	h.toComfortHigh()
	for i := 0; i < 2; i++ {
		h.clock.Advance(5 * time.Second)
		require.Equal(h.t, models.ModeComfortHigh, h.step())
	}
	h.clock.Advance(5 * time.Second)
	require.Equal(h.t, models.ModeAlarm, h.step())
}
