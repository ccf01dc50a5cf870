package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcomfort/internal/hardware"
)

func newTestOutputs(t *testing.T) (*Outputs, *Scheduler, *fakeClock, *fakeBoard) {
	t.Helper()
	clock := newFakeClock()
	board := newFakeBoard()
	sched := NewScheduler(clock)
	out, err := newOutputs(board, sched, 50)
	require.NoError(t, err)
	return out, sched, clock, board
}

func TestOutputs_BlinkChain(t *testing.T) {
	tests := []struct {
		pattern  Pattern
		color    hardware.LEDColor
		on, off  time.Duration
		onTimer  TimerID
		offTimer TimerID
	}{
		{PatternLocked, hardware.LEDRed, 500 * time.Millisecond, 500 * time.Millisecond, TimerLockedOn, TimerLockedOff},
		{PatternAlarm, hardware.LEDRed, 100 * time.Millisecond, 500 * time.Millisecond, TimerAlarmOn, TimerAlarmOff},
		{PatternCooling, hardware.LEDBlue, 300 * time.Millisecond, 400 * time.Millisecond, TimerCoolingOn, TimerCoolingOff},
		{PatternHeating, hardware.LEDGreen, 200 * time.Millisecond, 300 * time.Millisecond, TimerHeatingOn, TimerHeatingOff},
	}
	for _, tt := range tests {
		t.Run(string(tt.pattern), func(t *testing.T) {
			out, sched, clock, board := newTestOutputs(t)

			out.StartPattern(tt.pattern)
			assert.True(t, sched.Running(tt.onTimer))
			assert.False(t, board.leds[tt.color])

			clock.Advance(tt.on)
			sched.Sweep(clock.Now())
			assert.True(t, board.leds[tt.color], "lit after the on delay")
			assert.True(t, sched.Running(tt.offTimer))

			clock.Advance(tt.off)
			sched.Sweep(clock.Now())
			assert.False(t, board.leds[tt.color], "dark after the off delay")
			assert.True(t, sched.Running(tt.onTimer), "chain restarts")

			clock.Advance(tt.on)
			sched.Sweep(clock.Now())
			assert.True(t, board.leds[tt.color])

			out.StopPattern(tt.pattern)
			assert.False(t, board.leds[tt.color])
			assert.False(t, sched.Running(tt.onTimer))
			assert.False(t, sched.Running(tt.offTimer))
		})
	}
}

func TestOutputs_AlarmBuzzerToggles(t *testing.T) {
	out, sched, clock, board := newTestOutputs(t)

	out.StartAlarm()
	for i := 1; i <= 4; i++ {
		clock.Advance(buzzerPeriod)
		sched.Sweep(clock.Now())
		assert.Equal(t, i%2 == 1, board.buzzer, "toggle %d", i)
	}
	assert.Equal(t, 4, board.buzzerChanges)

	clock.Advance(buzzerPeriod)
	sched.Sweep(clock.Now())
	require.True(t, board.buzzer)

	out.SilenceAlarm()
	assert.False(t, board.buzzer)
	assert.False(t, board.leds[hardware.LEDRed])
	assert.False(t, sched.Running(TimerBuzzer))
	assert.False(t, sched.Running(TimerAlarmOn))
	assert.False(t, sched.Running(TimerAlarmOff))

	// A new alarm starts from silence again.
	out.StartAlarm()
	clock.Advance(buzzerPeriod)
	sched.Sweep(clock.Now())
	assert.True(t, board.buzzer)
}

func TestOutputs_ActuatorsAndSafeState(t *testing.T) {
	out, _, _, board := newTestOutputs(t)

	out.Cooling(true)
	out.Heating(true)
	board.leds[hardware.LEDGreen] = true
	board.buzzer = true
	assert.True(t, board.relay)
	assert.Equal(t, 50, board.heating)

	out.SafeState()
	assert.False(t, board.relay)
	assert.Equal(t, 0, board.heating)
	assert.False(t, board.buzzer)
	for _, c := range []hardware.LEDColor{hardware.LEDRed, hardware.LEDGreen, hardware.LEDBlue} {
		assert.False(t, board.leds[c])
	}
}
