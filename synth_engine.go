// synth_engine.go - Single-voice-set synthesis engine

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import (
	"math"
	"sync"
)

const LAB_MASTER_LEVEL = 0.7

// Engine plays one sound at a time on a shared context: each Play stops the
// batch started by the previous Play. Offline renders are independent of the
// live batch.
type Engine struct {
	mu     sync.Mutex
	ctx    *OutputContext
	level  float64
	active *PlaybackHandle
}

// NewEngine binds the engine to ctx, which may be nil.
func NewEngine(ctx *OutputContext) *Engine {
	return &Engine{ctx: ctx, level: LAB_MASTER_LEVEL}
}

func (e *Engine) SetLevel(v float64) {
	e.mu.Lock()
	e.level = clamp(v, 0, 1)
	e.mu.Unlock()
}

func (e *Engine) Level() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level
}

// Play schedules p now and returns its duration in milliseconds. Without a
// running context nothing is scheduled but the duration is still returned.
func (e *Engine) Play(p Params) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()
	durationMs := ParamsDuration(p) * 1000
	if e.ctx == nil || e.ctx.State() != CONTEXT_RUNNING {
		return durationMs
	}
	e.active = e.ctx.Schedule(BuildGraph(p, e.ctx.CurrentTime(), e.level))
	return durationMs
}

// Stop halts everything started by the most recent Play.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.active != nil {
		e.active.Stop()
		e.active = nil
	}
}

// IsPlaying reports whether the last Play is still sounding.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active != nil && !e.active.Done()
}

// RenderOffline renders p at the engine level into a buffer of exactly
// ceil(duration*SAMPLE_RATE) samples.
func (e *Engine) RenderOffline(p Params) *AudioBuffer {
	return RenderParams(p, e.Level(), SAMPLE_RATE)
}

// RenderParams builds p at time zero and renders it for its nominal duration.
func RenderParams(p Params, volume float64, sampleRate int) *AudioBuffer {
	g := BuildGraph(p, 0, volume)
	length := int(math.Ceil(g.Duration * float64(sampleRate)))
	return RenderGraph(g, sampleRate, length)
}
