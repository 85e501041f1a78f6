// audio_context.go - Output context, mixer and playback handles

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import (
	"errors"
	"fmt"
	"sync"
)

type ContextState int

const (
	CONTEXT_SUSPENDED ContextState = iota
	CONTEXT_RUNNING
	CONTEXT_CLOSED
)

func (s ContextState) String() string {
	switch s {
	case CONTEXT_SUSPENDED:
		return "suspended"
	case CONTEXT_RUNNING:
		return "running"
	case CONTEXT_CLOSED:
		return "closed"
	}
	return "unknown"
}

var ErrContextClosed = errors.New("audio context closed")

// SampleSource fills buf with the next len(buf) mono samples.
type SampleSource interface {
	ReadSamples(buf []float32)
}

// AudioOutput is a device that pulls samples from a source while started.
type AudioOutput interface {
	SetupPlayer(src SampleSource)
	Start()
	Stop()
	Close()
	IsStarted() bool
}

// PlaybackHandle controls one scheduled graph.
type PlaybackHandle struct {
	mixer    *Mixer
	renderer *graphRenderer
	stopped  bool
}

// Stop halts and disconnects every node of the playback immediately.
func (h *PlaybackHandle) Stop() {
	if h == nil || h.mixer == nil {
		return
	}
	h.mixer.remove(h)
}

// Done reports whether the playback has finished or been stopped.
func (h *PlaybackHandle) Done() bool {
	if h == nil || h.mixer == nil {
		return true
	}
	h.mixer.mu.Lock()
	defer h.mixer.mu.Unlock()
	return h.stopped || h.renderer.Done(h.mixer.clock)
}

// Graph returns the scheduled graph.
func (h *PlaybackHandle) Graph() *Graph {
	if h == nil || h.renderer == nil {
		return nil
	}
	return h.renderer.graph
}

// Mixer sums active playbacks into one mono stream. Its clock is the number
// of samples rendered so far.
type Mixer struct {
	mu         sync.Mutex
	sampleRate int
	clock      int64
	playbacks  []*PlaybackHandle
}

func NewMixer(sampleRate int) *Mixer {
	return &Mixer{sampleRate: sampleRate}
}

func (m *Mixer) SampleRate() int { return m.sampleRate }

// Time is the mixer clock in seconds.
func (m *Mixer) Time() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.clock) / float64(m.sampleRate)
}

func (m *Mixer) Add(g *Graph) *PlaybackHandle {
	h := &PlaybackHandle{mixer: m, renderer: newGraphRenderer(g, m.sampleRate)}
	m.mu.Lock()
	m.playbacks = append(m.playbacks, h)
	m.mu.Unlock()
	return h
}

func (m *Mixer) remove(h *PlaybackHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.stopped = true
	for i, p := range m.playbacks {
		if p == h {
			m.playbacks = append(m.playbacks[:i], m.playbacks[i+1:]...)
			return
		}
	}
}

// Active returns the number of playbacks still held by the mixer.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.playbacks)
}

func (m *Mixer) ReadSamples(buf []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range buf {
		buf[i] = 0
	}
	pos := m.clock
	kept := m.playbacks[:0]
	for _, p := range m.playbacks {
		p.renderer.Render(buf, pos)
		if p.renderer.Done(pos + int64(len(buf))) {
			p.stopped = true
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(m.playbacks); i++ {
		m.playbacks[i] = nil
	}
	m.playbacks = kept

	for i, s := range buf {
		if s > 1 {
			buf[i] = 1
		} else if s < -1 {
			buf[i] = -1
		}
	}
	m.clock += int64(len(buf))
}

// OutputContext is the single shared destination for live sounds. It starts
// suspended and only produces output after Resume.
type OutputContext struct {
	mu    sync.Mutex
	state ContextState
	mixer *Mixer
	out   AudioOutput
}

// NewOutputContext wires a mixer to out. A nil out gives a context whose
// clock only advances when the mixer is read directly.
func NewOutputContext(out AudioOutput, sampleRate int) *OutputContext {
	c := &OutputContext{state: CONTEXT_SUSPENDED, mixer: NewMixer(sampleRate), out: out}
	if out != nil {
		out.SetupPlayer(c.mixer)
	}
	return c
}

// NewDeviceContext opens the platform audio device.
func NewDeviceContext() (*OutputContext, error) {
	player, err := NewOtoPlayer(SAMPLE_RATE)
	if err != nil {
		return nil, fmt.Errorf("audio device: %w", err)
	}
	return NewOutputContext(player, SAMPLE_RATE), nil
}

func (c *OutputContext) State() ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *OutputContext) SampleRate() int { return c.mixer.SampleRate() }

func (c *OutputContext) CurrentTime() float64 { return c.mixer.Time() }

func (c *OutputContext) Mixer() *Mixer { return c.mixer }

func (c *OutputContext) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case CONTEXT_CLOSED:
		return ErrContextClosed
	case CONTEXT_RUNNING:
		return nil
	}
	if c.out != nil {
		c.out.Start()
	}
	c.state = CONTEXT_RUNNING
	return nil
}

func (c *OutputContext) Suspend() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case CONTEXT_CLOSED:
		return ErrContextClosed
	case CONTEXT_SUSPENDED:
		return nil
	}
	if c.out != nil {
		c.out.Stop()
	}
	c.state = CONTEXT_SUSPENDED
	return nil
}

func (c *OutputContext) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == CONTEXT_CLOSED {
		return
	}
	if c.out != nil {
		c.out.Close()
	}
	c.state = CONTEXT_CLOSED
}

// Schedule hands g to the mixer. Graphs are accepted in any state; callers
// check State first when plays must not queue up.
func (c *OutputContext) Schedule(g *Graph) *PlaybackHandle {
	return c.mixer.Add(g)
}
