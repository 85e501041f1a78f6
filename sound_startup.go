// sound_startup.go - Startup and wind-down composite sounds

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import "sync"

const (
	STARTUP_DURATION_MS   = 5000.0
	WIND_DOWN_DURATION_MS = 900.0

	// Startup layer offsets in seconds, synced to the boot animation.
	STARTUP_PUNCH_AT    = 0.4
	STARTUP_BLOOM_AT    = 0.8
	STARTUP_SWEEP_AT    = 2.0
	STARTUP_COMPLETE_AT = 4.2

	WIND_DOWN_SWEEP_AT  = 0.08
	WIND_DOWN_SETTLE_AT = 0.5
)

// compositeBuilder collects insert-filtered voices for the multi-layer
// sounds. Gains are absolute: the caller's volume is folded in per
// breakpoint, so the graph output gain stays at unity.
type compositeBuilder struct {
	g      *Graph
	volume float64
}

func newCompositeBuilder(now, durationMs, volume float64) *compositeBuilder {
	return &compositeBuilder{
		g:      &Graph{Start: now, Duration: durationMs / 1000, OutputGain: 1},
		volume: volume,
	}
}

// voice adds one oscillator running over [start, stop] with an optional
// insert filter. It returns the oscillator and gain for automation.
func (b *compositeBuilder) voice(w Waveform, freq, detune, start, stop float64, f *FilterNode) (*OscillatorNode, *Param) {
	o := newOscillator(w, freq, detune, start, stop)
	gain := NewParam(1)
	b.g.Voices = append(b.g.Voices, &Voice{Osc: o, Insert: f, Gain: gain, Bus: NO_BUS})
	return o, gain
}

func lowpass(freq, q float64) *FilterNode { return newFilter(FILTER_LOWPASS, freq, q) }

// BuildStartupGraph is the five second boot sound: a punch, a chord bloom,
// a rising sweep and a completion ding.
func BuildStartupGraph(now, volume float64) *Graph {
	b := newCompositeBuilder(now, STARTUP_DURATION_MS, volume)
	b.punch(now + STARTUP_PUNCH_AT)
	b.bloom(now + STARTUP_BLOOM_AT)
	b.rise(now + STARTUP_SWEEP_AT)
	b.complete(now + STARTUP_COMPLETE_AT)
	return b.g
}

func (b *compositeBuilder) punch(t float64) {
	v := b.volume

	// Low thump
	thump, g := b.voice(WAVE_SINE, 150, 0, t, t+0.25, lowpass(200, 0.7))
	thump.Frequency.SetValueAtTime(150, t).
		ExponentialRampToValueAtTime(60, t+0.08).
		ExponentialRampToValueAtTime(40, t+0.15)
	g.SetValueAtTime(0, t).
		LinearRampToValueAtTime(v*0.2, t+0.008).
		ExponentialRampToValueAtTime(v*0.08, t+0.06).
		ExponentialRampToValueAtTime(0.001, t+0.2)

	// Tonal body
	_, g = b.voice(WAVE_TRIANGLE, NOTE_D3, 0, t, t+0.3, lowpass(800, 0.5))
	g.SetValueAtTime(0, t).
		LinearRampToValueAtTime(v*0.1, t+0.01).
		ExponentialRampToValueAtTime(v*0.04, t+0.08).
		ExponentialRampToValueAtTime(0.001, t+0.25)

	// Transient
	_, g = b.voice(WAVE_SQUARE, 1200, 0, t, t+0.03, newFilter(FILTER_BANDPASS, 1500, 2))
	g.SetValueAtTime(0, t).
		LinearRampToValueAtTime(v*0.04, t+0.002).
		ExponentialRampToValueAtTime(0.001, t+0.025)

	_, g = b.voice(WAVE_SINE, NOTE_A4, 0, t, t+0.35, lowpass(2500, DEFAULT_FILTER_Q))
	g.SetValueAtTime(0, t).
		LinearRampToValueAtTime(v*0.08, t+0.005).
		ExponentialRampToValueAtTime(v*0.03, t+0.1).
		ExponentialRampToValueAtTime(0.001, t+0.3)
}

type chordNote struct {
	freq, delay, level, detune float64
}

var bloomChord = []chordNote{
	{NOTE_D4, 0, 0.15, 0},
	{NOTE_FS4, 0.055, 0.12, 3},
	{NOTE_A4, 0.11, 0.13, -2},
}

func (b *compositeBuilder) bloom(t float64) {
	v := b.volume

	// Sub bass tail
	_, g := b.voice(WAVE_SINE, NOTE_D2, 0, t, t+2.6, lowpass(120, DEFAULT_FILTER_Q))
	g.SetValueAtTime(0, t).
		LinearRampToValueAtTime(v*0.12, t+0.06).
		LinearRampToValueAtTime(v*0.08, t+0.4).
		LinearRampToValueAtTime(v*0.04, t+1.0).
		LinearRampToValueAtTime(v*0.015, t+1.8).
		ExponentialRampToValueAtTime(0.001, t+2.5)

	_, g = b.voice(WAVE_TRIANGLE, NOTE_D3, 2, t, t+2.1, lowpass(400, 0.5))
	g.SetValueAtTime(0, t).
		LinearRampToValueAtTime(v*0.07, t+0.04).
		LinearRampToValueAtTime(v*0.04, t+0.5).
		LinearRampToValueAtTime(v*0.015, t+1.2).
		ExponentialRampToValueAtTime(0.001, t+2.0)

	for _, n := range bloomChord {
		start := t + n.delay
		f := lowpass(1800, 0.4)
		f.Frequency.SetValueAtTime(1800, start).
			LinearRampToValueAtTime(2400, start+0.2).
			LinearRampToValueAtTime(2000, start+0.6)

		o, g := b.voice(WAVE_SINE, n.freq, n.detune, start, start+1.4, f)
		o.Vibrato = &Vibrato{Rate: 4.5, Depth: 2, StartTime: start + 0.3, StopTime: start + 1.3}

		level := v * n.level
		g.SetValueAtTime(0, start).
			LinearRampToValueAtTime(level, start+0.04).
			LinearRampToValueAtTime(level*0.8, start+0.3).
			LinearRampToValueAtTime(level*0.4, start+0.7).
			ExponentialRampToValueAtTime(level*0.05, start+1.1).
			LinearRampToValueAtTime(GAIN_FLOOR, t+1.3)
	}

	// Shimmer
	_, g = b.voice(WAVE_SINE, NOTE_D5, 5, t+0.15, t+0.9, lowpass(5000, DEFAULT_FILTER_Q))
	g.SetValueAtTime(0, t+0.15).
		LinearRampToValueAtTime(v*0.03, t+0.25).
		ExponentialRampToValueAtTime(v*0.01, t+0.5).
		LinearRampToValueAtTime(GAIN_FLOOR, t+0.8)
}

func (b *compositeBuilder) rise(t float64) {
	v := b.volume

	f := lowpass(300, 0.8)
	f.Frequency.SetValueAtTime(300, t).
		ExponentialRampToValueAtTime(800, t+0.5).
		ExponentialRampToValueAtTime(1500, t+1.0).
		ExponentialRampToValueAtTime(2500, t+1.5)
	sweep, g := b.voice(WAVE_SINE, NOTE_D3, 0, t, t+2.15, f)
	sweep.Frequency.SetValueAtTime(NOTE_D3, t).
		ExponentialRampToValueAtTime(NOTE_A3, t+0.5).
		ExponentialRampToValueAtTime(NOTE_D4, t+1.0).
		ExponentialRampToValueAtTime(NOTE_A4, t+1.5)
	g.SetValueAtTime(0, t).
		LinearRampToValueAtTime(v*0.05, t+0.15).
		LinearRampToValueAtTime(v*0.07, t+0.6).
		LinearRampToValueAtTime(v*0.08, t+1.1).
		LinearRampToValueAtTime(v*0.05, t+1.6).
		LinearRampToValueAtTime(v*0.02, t+1.85).
		LinearRampToValueAtTime(GAIN_FLOOR, t+2.1)

	// Octave layer fading in midway
	harmonic, g := b.voice(WAVE_SINE, NOTE_D4, 3, t+0.7, t+1.95, lowpass(3000, DEFAULT_FILTER_Q))
	harmonic.Frequency.SetValueAtTime(NOTE_D4, t+0.7).
		ExponentialRampToValueAtTime(NOTE_A4, t+1.2).
		ExponentialRampToValueAtTime(NOTE_D5, t+1.6)
	g.SetValueAtTime(0, t+0.7).
		LinearRampToValueAtTime(v*0.03, t+0.95).
		LinearRampToValueAtTime(v*0.025, t+1.4).
		LinearRampToValueAtTime(GAIN_FLOOR, t+1.9)

	// Landing tone the sweep arrives at
	_, g = b.voice(WAVE_SINE, NOTE_A4, -2, t+1.35, t+2.15, lowpass(2000, 0.5))
	g.SetValueAtTime(0, t+1.35).
		LinearRampToValueAtTime(v*0.04, t+1.5).
		LinearRampToValueAtTime(v*0.025, t+1.75).
		ExponentialRampToValueAtTime(0.001, t+2.1)
}

func (b *compositeBuilder) complete(t float64) {
	v := b.volume

	lift, g := b.voice(WAVE_SINE, NOTE_A4, 0, t, t+0.15, lowpass(3000, DEFAULT_FILTER_Q))
	lift.Frequency.SetValueAtTime(NOTE_A4, t).
		ExponentialRampToValueAtTime(NOTE_D5, t+0.06)
	g.SetValueAtTime(0, t).
		LinearRampToValueAtTime(v*0.08, t+0.015).
		LinearRampToValueAtTime(v*0.04, t+0.06).
		LinearRampToValueAtTime(GAIN_FLOOR, t+0.12)

	// Ding
	_, g = b.voice(WAVE_SINE, NOTE_D5, 0, t+0.04, t+0.65, lowpass(4000, 0.5))
	g.SetValueAtTime(0, t+0.04).
		LinearRampToValueAtTime(v*0.12, t+0.055).
		ExponentialRampToValueAtTime(v*0.06, t+0.15).
		ExponentialRampToValueAtTime(v*0.02, t+0.35).
		LinearRampToValueAtTime(GAIN_FLOOR, t+0.6)

	_, g = b.voice(WAVE_SINE, NOTE_D4, -2, t+0.05, t+0.55, lowpass(1500, DEFAULT_FILTER_Q))
	g.SetValueAtTime(0, t+0.05).
		LinearRampToValueAtTime(v*0.05, t+0.08).
		ExponentialRampToValueAtTime(v*0.02, t+0.25).
		LinearRampToValueAtTime(GAIN_FLOOR, t+0.5)

	// Sparkle, unfiltered
	_, g = b.voice(WAVE_SINE, NOTE_A5, 3, t+0.05, t+0.25, nil)
	g.SetValueAtTime(0, t+0.05).
		LinearRampToValueAtTime(v*0.025, t+0.07).
		ExponentialRampToValueAtTime(0.001, t+0.2)
}

// BuildWindDownGraph is the 900ms power-down sound played before a restart
// of the boot sequence.
func BuildWindDownGraph(now, volume float64) *Graph {
	b := newCompositeBuilder(now, WIND_DOWN_DURATION_MS, volume)
	v := volume

	// Click acknowledgment
	_, g := b.voice(WAVE_SINE, NOTE_D4, 0, now, now+0.1, lowpass(2000, DEFAULT_FILTER_Q))
	g.SetValueAtTime(0, now).
		LinearRampToValueAtTime(v*0.12, now+0.01).
		ExponentialRampToValueAtTime(0.001, now+0.08)

	// Descending sweep
	t := now + WIND_DOWN_SWEEP_AT
	f := lowpass(2500, 0.6)
	f.Frequency.SetValueAtTime(2500, t).
		ExponentialRampToValueAtTime(1800, t+0.15).
		ExponentialRampToValueAtTime(1200, t+0.30).
		ExponentialRampToValueAtTime(600, t+0.45).
		ExponentialRampToValueAtTime(250, t+0.62)
	sweep, g := b.voice(WAVE_SINE, NOTE_A4, 0, t, t+0.7, f)
	sweep.Frequency.SetValueAtTime(NOTE_A4, t).
		ExponentialRampToValueAtTime(NOTE_FS4, t+0.15).
		ExponentialRampToValueAtTime(NOTE_D4, t+0.30).
		ExponentialRampToValueAtTime(NOTE_A3, t+0.45).
		ExponentialRampToValueAtTime(NOTE_D3, t+0.62)
	g.SetValueAtTime(0, t).
		LinearRampToValueAtTime(v*0.1, t+0.04).
		LinearRampToValueAtTime(v*0.09, t+0.20).
		LinearRampToValueAtTime(v*0.07, t+0.35).
		LinearRampToValueAtTime(v*0.04, t+0.50).
		ExponentialRampToValueAtTime(0.001, t+0.65)

	// Sub harmonic under the sweep
	sub, g := b.voice(WAVE_SINE, NOTE_D3, 0, t, t+0.7, lowpass(250, DEFAULT_FILTER_Q))
	sub.Frequency.SetValueAtTime(NOTE_D3, t).
		ExponentialRampToValueAtTime(NOTE_A3, t+0.20).
		ExponentialRampToValueAtTime(NOTE_D3, t+0.40).
		ExponentialRampToValueAtTime(NOTE_D2, t+0.60)
	g.SetValueAtTime(0, t).
		LinearRampToValueAtTime(v*0.08, t+0.06).
		LinearRampToValueAtTime(v*0.06, t+0.3).
		LinearRampToValueAtTime(v*0.04, t+0.5).
		ExponentialRampToValueAtTime(0.001, t+0.65)

	// Low settle
	s := now + WIND_DOWN_SETTLE_AT
	_, g = b.voice(WAVE_SINE, NOTE_D2, 0, s, s+0.45, lowpass(150, 0.7))
	g.SetValueAtTime(0, s).
		LinearRampToValueAtTime(v*0.07, s+0.06).
		LinearRampToValueAtTime(v*0.05, s+0.15).
		LinearRampToValueAtTime(v*0.02, s+0.30).
		ExponentialRampToValueAtTime(0.001, s+0.40)

	return b.g
}

// CompositePlayer tracks the live handle of one composite sound so it can be
// cancelled mid-flight. Starting it again cancels the previous run.
type CompositePlayer struct {
	mu     sync.Mutex
	build  func(now, volume float64) *Graph
	handle *PlaybackHandle
}

func NewCompositePlayer(build func(now, volume float64) *Graph) *CompositePlayer {
	return &CompositePlayer{build: build}
}

// Play schedules a fresh run on ctx and returns its duration in milliseconds.
func (c *CompositePlayer) Play(ctx *OutputContext, volume float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	g := c.build(ctx.CurrentTime(), volume)
	c.handle = ctx.Schedule(g)
	return g.DurationMs()
}

// Cancel stops and disconnects every node of the current run.
func (c *CompositePlayer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *CompositePlayer) cancelLocked() {
	if c.handle != nil {
		c.handle.Stop()
		c.handle = nil
	}
}

func (c *CompositePlayer) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil && !c.handle.Done()
}
