// synth_automation.go - Scheduled parameter automation

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import "math"

type rampKind int

const (
	EVENT_SET rampKind = iota
	EVENT_LINEAR
	EVENT_EXPONENTIAL
)

type automationEvent struct {
	Kind  rampKind
	Time  float64
	Value float64
}

// Param is a scheduled value in seconds of context time. Without events it
// holds its static value. Ramps interpolate from the previous event (or the
// static value at time zero) to their own time and value.
type Param struct {
	value  float64
	events []automationEvent
}

func NewParam(value float64) *Param {
	return &Param{value: value}
}

// Value returns the static value used when no events are scheduled.
func (p *Param) Value() float64 { return p.value }

func (p *Param) SetValue(v float64) { p.value = v }

func (p *Param) SetValueAtTime(v, t float64) *Param {
	p.insert(automationEvent{Kind: EVENT_SET, Time: t, Value: v})
	return p
}

func (p *Param) LinearRampToValueAtTime(v, t float64) *Param {
	p.insert(automationEvent{Kind: EVENT_LINEAR, Time: t, Value: v})
	return p
}

func (p *Param) ExponentialRampToValueAtTime(v, t float64) *Param {
	p.insert(automationEvent{Kind: EVENT_EXPONENTIAL, Time: t, Value: v})
	return p
}

// insert keeps events sorted by time; equal times keep insertion order.
func (p *Param) insert(e automationEvent) {
	i := len(p.events)
	for i > 0 && p.events[i-1].Time > e.Time {
		i--
	}
	p.events = append(p.events, automationEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

func (p *Param) HasEvents() bool { return len(p.events) > 0 }

// EndTime is the time of the last scheduled event, or 0.
func (p *Param) EndTime() float64 {
	if len(p.events) == 0 {
		return 0
	}
	return p.events[len(p.events)-1].Time
}

// At evaluates the parameter at time t.
func (p *Param) At(t float64) float64 {
	v := p.value
	prevT := 0.0
	for _, e := range p.events {
		if t < e.Time {
			switch e.Kind {
			case EVENT_LINEAR:
				return linearAt(prevT, v, e.Time, e.Value, t)
			case EVENT_EXPONENTIAL:
				return exponentialAt(prevT, v, e.Time, e.Value, t)
			}
			return v
		}
		v = e.Value
		prevT = e.Time
	}
	return v
}

func linearAt(t0, v0, t1, v1, t float64) float64 {
	if t <= t0 {
		return v0
	}
	return v0 + (v1-v0)*(t-t0)/(t1-t0)
}

// exponentialAt holds v0 until t1 when the ramp cannot be exponential (zero
// or sign change).
func exponentialAt(t0, v0, t1, v1, t float64) float64 {
	if v0 == 0 || v1 == 0 || (v0 < 0) != (v1 < 0) {
		return v0
	}
	if t <= t0 {
		return v0
	}
	return v0 * math.Pow(v1/v0, (t-t0)/(t1-t0))
}
