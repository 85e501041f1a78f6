// synth_graph.go - Scheduled node graphs built from sound parameters

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import "math"

const (
	SUSTAIN_HOLD_MS   = 50.0   // Minimum sustain window of simple sounds
	NOTE_ENV_CAP      = 0.3    // Attack/decay cap as a fraction of note duration
	GAIN_FLOOR        = 0.0001 // Exponential-safe silence
	STOP_MARGIN       = 0.1    // Seconds an oscillator runs past its release
	MIN_RAMP_FREQ     = 20.0
	FILTER_SWEEP_MAX  = 18000.0
	FILTER_SWEEP_SPAN = 4.0 // max = cutoff * (1 + |amt|*SPAN)
	FILTER_SWEEP_DIP  = 0.9 // min = cutoff * (1 - |amt|*DIP)

	DEFAULT_FILTER_FREQ = 350.0
	DEFAULT_FILTER_Q    = 1.0

	NO_BUS = -1
)

type OscillatorNode struct {
	Type      Waveform
	Frequency *Param // Hz
	Detune    *Param // cents
	Vibrato   *Vibrato
	StartTime float64
	StopTime  float64
}

// Vibrato is a sine LFO adding Depth cents of detune while it runs.
type Vibrato struct {
	Rate      float64 // Hz
	Depth     float64 // cents
	StartTime float64
	StopTime  float64
}

type FilterNode struct {
	Type      FilterType
	Frequency *Param
	Q         *Param
}

// Voice is one generator with its optional insert filter and gain stage,
// feeding either a shared bus or the graph output directly.
type Voice struct {
	Osc    *OscillatorNode
	Insert *FilterNode
	Gain   *Param
	Bus    int
}

// Graph is every node of one sound, scheduled against a single start time.
// Duration is the nominal sound length in seconds; voices may run up to
// STOP_MARGIN past it.
type Graph struct {
	Start      float64
	Duration   float64
	OutputGain float64
	Buses      []*FilterNode
	Voices     []*Voice
}

// End is the latest time any node in the graph produces sound.
func (g *Graph) End() float64 {
	end := g.Start + g.Duration
	for _, v := range g.Voices {
		end = math.Max(end, v.Osc.StopTime)
	}
	return end
}

// DurationMs is the sound length callers schedule UI state against.
func (g *Graph) DurationMs() float64 {
	return g.Duration * 1000
}

func newOscillator(w Waveform, freq, detune, start, stop float64) *OscillatorNode {
	return &OscillatorNode{
		Type:      w,
		Frequency: NewParam(freq),
		Detune:    NewParam(detune),
		StartTime: start,
		StopTime:  stop,
	}
}

func newFilter(t FilterType, freq, q float64) *FilterNode {
	return &FilterNode{Type: t, Frequency: NewParam(freq), Q: NewParam(q)}
}

// SimpleDuration returns attack+decay+hold+release in seconds.
func SimpleDuration(env EnvelopeParams) float64 {
	return (env.AttackMs + env.DecayMs + SUSTAIN_HOLD_MS + env.ReleaseMs) / 1000
}

// SequenceDuration returns the latest note end plus release in seconds. An
// empty sequence lasts for its release only.
func SequenceDuration(p *SequenceParams) float64 {
	maxEnd := 0.0
	for _, n := range p.Notes {
		maxEnd = math.Max(maxEnd, n.DelayMs+n.DurationMs)
	}
	return (maxEnd + p.Envelope.ReleaseMs) / 1000
}

// ParamsDuration dispatches on the params shape.
func ParamsDuration(p Params) float64 {
	switch p := p.(type) {
	case *SimpleParams:
		return SimpleDuration(p.Envelope)
	case *SequenceParams:
		return SequenceDuration(p)
	}
	return 0
}

// BuildGraph schedules every node of p relative to now. It performs no I/O,
// so timing and ramp shapes are testable without an audio device.
func BuildGraph(p Params, now, volume float64) *Graph {
	switch p := p.(type) {
	case *SimpleParams:
		return buildSimple(p, now, volume)
	case *SequenceParams:
		return buildSequence(p, now, volume)
	}
	return &Graph{Start: now, OutputGain: volume}
}

func buildSimple(p *SimpleParams, now, volume float64) *Graph {
	g := &Graph{Start: now, Duration: SimpleDuration(p.Envelope), OutputGain: volume}
	bus := g.addBus(p.Filter, p.Envelope, now)

	env := p.Envelope
	aEnd := now + env.AttackMs/1000
	dEnd := aEnd + env.DecayMs/1000
	rStart := dEnd + SUSTAIN_HOLD_MS/1000
	rEnd := rStart + env.ReleaseMs/1000

	for _, osc := range []OscillatorParams{p.OscA, p.OscB} {
		if !osc.Enabled {
			continue
		}
		o := newOscillator(osc.Waveform, osc.Frequency, osc.Detune, now, rEnd+STOP_MARGIN)
		if pe := osc.PitchEnvelope; pe.Enabled {
			o.Frequency.SetValueAtTime(pe.StartFreq, now)
			o.Frequency.ExponentialRampToValueAtTime(math.Max(pe.EndFreq, MIN_RAMP_FREQ), now+pe.TimeMs/1000)
		}
		g.Voices = append(g.Voices, &Voice{
			Osc:  o,
			Gain: envelopeGain(osc.Level, env.Sustain, now, aEnd, dEnd, rStart, rEnd),
			Bus:  bus,
		})
	}
	return g
}

func buildSequence(p *SequenceParams, now, volume float64) *Graph {
	g := &Graph{Start: now, Duration: SequenceDuration(p), OutputGain: volume}
	bus := g.addBus(p.Filter, p.Envelope, now)

	env := p.Envelope
	for _, n := range p.Notes {
		start := now + n.DelayMs/1000
		dur := n.DurationMs / 1000
		aEnd := start + math.Min(env.AttackMs/1000, dur*NOTE_ENV_CAP)
		dEnd := aEnd + math.Min(env.DecayMs/1000, dur*NOTE_ENV_CAP)
		rStart := start + dur
		rEnd := rStart + env.ReleaseMs/1000

		g.Voices = append(g.Voices, &Voice{
			Osc:  newOscillator(n.Waveform, n.Frequency, 0, start, rEnd+STOP_MARGIN),
			Gain: envelopeGain(n.Level, env.Sustain, start, aEnd, dEnd, rStart, rEnd),
			Bus:  bus,
		})
	}
	return g
}

func envelopeGain(level, sustain, start, aEnd, dEnd, rStart, rEnd float64) *Param {
	return NewParam(1).
		SetValueAtTime(0, start).
		LinearRampToValueAtTime(level, aEnd).
		LinearRampToValueAtTime(level*sustain, dEnd).
		SetValueAtTime(level*sustain, rStart).
		LinearRampToValueAtTime(GAIN_FLOOR, rEnd)
}

// addBus creates the shared filter when enabled and returns its index.
func (g *Graph) addBus(f FilterParams, env EnvelopeParams, start float64) int {
	if !f.Enabled {
		return NO_BUS
	}
	node := newFilter(f.Type, f.Cutoff, f.Resonance)
	if amt := f.EnvelopeAmount; amt != 0 {
		hi := math.Min(f.Cutoff*(1+math.Abs(amt)*FILTER_SWEEP_SPAN), FILTER_SWEEP_MAX)
		lo := math.Max(f.Cutoff*(1-math.Abs(amt)*FILTER_SWEEP_DIP), MIN_RAMP_FREQ)
		aEnd := start + env.AttackMs/1000
		dEnd := aEnd + env.DecayMs/1000
		if amt > 0 {
			node.Frequency.SetValueAtTime(lo, start)
			node.Frequency.ExponentialRampToValueAtTime(hi, aEnd)
			node.Frequency.ExponentialRampToValueAtTime(lo+(hi-lo)*env.Sustain, dEnd)
		} else {
			node.Frequency.SetValueAtTime(hi, start)
			node.Frequency.ExponentialRampToValueAtTime(lo, aEnd)
			node.Frequency.ExponentialRampToValueAtTime(hi-(hi-lo)*env.Sustain, dEnd)
		}
	}
	g.Buses = append(g.Buses, node)
	return len(g.Buses) - 1
}
