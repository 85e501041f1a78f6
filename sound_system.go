// sound_system.go - Process-wide sound service

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"
)

const DEFAULT_MASTER_VOLUME = 0.7

type SoundSystemConfig struct {
	Store      Store                          // Persisted enabled flag and override table
	Notifier   *ChangeNotifier                // Fired when the override table is rewritten
	NewContext func() (*OutputContext, error) // Opens the shared output; nil means no audio
	Log        io.Writer                      // Defaults to os.Stderr
}

// SoundSystem owns the shared output context, the enabled flag and the
// master volume. Play never fails: missing audio, a suspended context or an
// unknown name all degrade to silence.
type SoundSystem struct {
	mu           sync.Mutex
	cfg          SoundSystemConfig
	log          io.Writer
	registry     *Registry
	ctx          *OutputContext
	initialized  bool
	enabled      bool
	masterVolume float64

	listeners  map[int]func(enabled bool)
	nextID     int
	unsubStore func()

	startup  *CompositePlayer
	windDown *CompositePlayer
}

func NewSoundSystem(cfg SoundSystemConfig) *SoundSystem {
	log := cfg.Log
	if log == nil {
		log = os.Stderr
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	return &SoundSystem{
		cfg:          cfg,
		log:          log,
		registry:     NewRegistry(cfg.Store, log),
		enabled:      true,
		masterVolume: DEFAULT_MASTER_VOLUME,
		listeners:    make(map[int]func(bool)),
		startup:      NewCompositePlayer(BuildStartupGraph),
		windDown:     NewCompositePlayer(BuildWindDownGraph),
	}
}

// Init reads persisted state, subscribes to override changes and prepares
// the output context in its suspended state. Later calls do nothing.
func (s *SoundSystem) Init() {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true
	s.enabled = s.readEnabled()
	s.mu.Unlock()

	s.registry.Reload()
	if s.cfg.Notifier != nil {
		unsub := s.cfg.Notifier.Subscribe(s.onStoreChange)
		s.mu.Lock()
		s.unsubStore = unsub
		s.mu.Unlock()
	}
	s.ensureContext()
}

func (s *SoundSystem) readEnabled() bool {
	v, ok := s.cfg.Store.Get(KEY_SOUND_ENABLED)
	return !ok || v != "false"
}

// onStoreChange reloads the override table wholesale and picks up an
// enabled flag written elsewhere.
func (s *SoundSystem) onStoreChange() {
	s.registry.Reload()

	s.mu.Lock()
	enabled := s.readEnabled()
	changed := enabled != s.enabled
	s.enabled = enabled
	s.mu.Unlock()
	if changed {
		s.notifyListeners(enabled)
	}
}

func (s *SoundSystem) ensureContext() *OutputContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx != nil || s.cfg.NewContext == nil {
		return s.ctx
	}
	ctx, err := s.cfg.NewContext()
	if err != nil {
		fmt.Fprintf(s.log, "sound: audio output unavailable: %v\n", err)
		return nil
	}
	s.ctx = ctx
	return ctx
}

// UnlockAudio resumes the output context. Call it directly from a user
// interaction handler.
func (s *SoundSystem) UnlockAudio() {
	ctx := s.ensureContext()
	if ctx == nil {
		return
	}
	if err := ctx.Resume(); err != nil {
		fmt.Fprintf(s.log, "sound: resume: %v\n", err)
	}
}

// liveContext returns the context and volume when a play may proceed.
func (s *SoundSystem) liveContext() (*OutputContext, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.ctx == nil || s.ctx.State() != CONTEXT_RUNNING {
		return nil, 0, false
	}
	return s.ctx, s.masterVolume, true
}

// Play fires name on the shared context. Plays while disabled or suspended
// are dropped, not queued.
func (s *SoundSystem) Play(name SoundName) {
	if !IsKnownSound(name) {
		fmt.Fprintf(s.log, "sound: unknown sound %q\n", name)
		return
	}
	switch name {
	case SOUND_STARTUP:
		s.PlayStartup()
		return
	case SOUND_WIND_DOWN:
		s.PlayWindDown()
		return
	}

	ctx, volume, ok := s.liveContext()
	if !ok {
		return
	}
	sound, ok := s.registry.Resolve(name)
	if !ok {
		return
	}
	ctx.Schedule(BuildGraph(sound.Params, ctx.CurrentTime(), volume))
}

// PlayStartup starts the boot sound, cancelling any earlier run. It returns
// the nominal duration in milliseconds, or 0 when nothing was scheduled.
func (s *SoundSystem) PlayStartup() float64 {
	ctx, volume, ok := s.liveContext()
	if !ok {
		return 0
	}
	return s.startup.Play(ctx, volume)
}

func (s *SoundSystem) CancelStartup() { s.startup.Cancel() }

func (s *SoundSystem) IsStartupPlaying() bool { return s.startup.IsPlaying() }

func (s *SoundSystem) PlayWindDown() float64 {
	ctx, volume, ok := s.liveContext()
	if !ok {
		return 0
	}
	return s.windDown.Play(ctx, volume)
}

func (s *SoundSystem) CancelWindDown() { s.windDown.Cancel() }

func (s *SoundSystem) IsWindDownPlaying() bool { return s.windDown.IsPlaying() }

// Enable flips the flag first so the soundOn confirmation is audible.
func (s *SoundSystem) Enable() {
	s.mu.Lock()
	s.enabled = true
	s.mu.Unlock()

	s.persistEnabled(true)
	s.Play(SOUND_ON)
	s.notifyListeners(true)
}

// Disable cancels the composite sounds and plays soundOff while still
// enabled, then flips the flag.
func (s *SoundSystem) Disable() {
	s.CancelStartup()
	s.CancelWindDown()
	s.Play(SOUND_OFF)

	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()

	s.persistEnabled(false)
	s.notifyListeners(false)
}

// Toggle flips the enabled flag and returns the new state.
func (s *SoundSystem) Toggle() bool {
	if s.IsEnabled() {
		s.Disable()
		return false
	}
	s.Enable()
	return true
}

func (s *SoundSystem) IsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *SoundSystem) persistEnabled(enabled bool) {
	v := "false"
	if enabled {
		v = "true"
	}
	if err := s.cfg.Store.Set(KEY_SOUND_ENABLED, v); err != nil {
		fmt.Fprintf(s.log, "sound: persist enabled: %v\n", err)
	}
}

// Subscribe registers fn for every enabled transition and returns its
// unsubscribe function.
func (s *SoundSystem) Subscribe(fn func(enabled bool)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *SoundSystem) notifyListeners(enabled bool) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(bool), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(enabled)
	}
}

// SetMasterVolume clamps v to [0,1]. Sounds already scheduled keep the
// volume they were built with.
func (s *SoundSystem) SetMasterVolume(v float64) {
	s.mu.Lock()
	s.masterVolume = clamp(v, 0, 1)
	s.mu.Unlock()
}

func (s *SoundSystem) GetMasterVolume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.masterVolume
}

func (s *SoundSystem) Registry() *Registry { return s.registry }

// Context returns the shared output context, which may be nil.
func (s *SoundSystem) Context() *OutputContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// RenderOffline renders name at the current master volume.
func (s *SoundSystem) RenderOffline(name SoundName) (*AudioBuffer, error) {
	volume := s.GetMasterVolume()
	var g *Graph
	switch name {
	case SOUND_STARTUP:
		g = BuildStartupGraph(0, volume)
	case SOUND_WIND_DOWN:
		g = BuildWindDownGraph(0, volume)
	default:
		sound, ok := s.registry.Resolve(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSound, name)
		}
		g = BuildGraph(sound.Params, 0, volume)
	}
	length := int(math.Ceil(g.Duration * SAMPLE_RATE))
	return RenderGraph(g, SAMPLE_RATE, length), nil
}

// Close detaches from the notifier, cancels composites and closes the
// output context.
func (s *SoundSystem) Close() {
	s.CancelStartup()
	s.CancelWindDown()

	s.mu.Lock()
	unsub := s.unsubStore
	s.unsubStore = nil
	ctx := s.ctx
	s.ctx = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if ctx != nil {
		ctx.Close()
	}
}
