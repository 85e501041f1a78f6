// sound_system_test.go - Tests for the process-wide sound service

package main

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
)

type testSystem struct {
	*SoundSystem
	store    *MemoryStore
	notifier *ChangeNotifier
	ctx      *OutputContext
	log      *bytes.Buffer
}

// newTestSystem builds an initialised system on a device-less context. The
// context is resumed unless suspended is set.
func newTestSystem(t *testing.T, suspended bool) *testSystem {
	t.Helper()
	ts := &testSystem{
		store:    NewMemoryStore(),
		notifier: NewChangeNotifier(),
		ctx:      NewOutputContext(nil, SAMPLE_RATE),
		log:      &bytes.Buffer{},
	}
	ts.SoundSystem = NewSoundSystem(SoundSystemConfig{
		Store:      ts.store,
		Notifier:   ts.notifier,
		NewContext: func() (*OutputContext, error) { return ts.ctx, nil },
		Log:        ts.log,
	})
	ts.Init()
	if !suspended {
		ts.UnlockAudio()
	}
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testSystem) active() int { return ts.ctx.Mixer().Active() }

func TestSoundSystemDefaults(t *testing.T) {
	ts := newTestSystem(t, false)
	if !ts.IsEnabled() {
		t.Fatal("missing enabled key should mean enabled")
	}
	if ts.GetMasterVolume() != DEFAULT_MASTER_VOLUME {
		t.Fatalf("volume = %v", ts.GetMasterVolume())
	}
	if ts.Context() != ts.ctx || ts.ctx.State() != CONTEXT_RUNNING {
		t.Fatal("context not running after UnlockAudio")
	}
}

func TestSoundSystemReadsPersistedDisabled(t *testing.T) {
	store := NewMemoryStore()
	store.Set(KEY_SOUND_ENABLED, "false")
	s := NewSoundSystem(SoundSystemConfig{Store: store})
	s.Init()
	if s.IsEnabled() {
		t.Fatal("persisted false ignored")
	}
}

func TestSoundSystemInitIdempotent(t *testing.T) {
	ts := newTestSystem(t, false)
	subs := ts.notifier.Len()
	ts.Init()
	if ts.notifier.Len() != subs {
		t.Fatalf("second Init subscribed again: %d -> %d", subs, ts.notifier.Len())
	}
}

func TestSoundSystemPlay(t *testing.T) {
	ts := newTestSystem(t, false)
	ts.Play(SOUND_CLICK)
	ts.Play(SOUND_CLICK)
	if ts.active() != 2 {
		t.Fatalf("active = %d, want overlapping plays", ts.active())
	}
	if drain(ts.ctx, 0.05).Peak() == 0 {
		t.Fatal("click not audible")
	}
}

func TestSoundSystemUnknownSound(t *testing.T) {
	ts := newTestSystem(t, false)
	ts.Play("boing")
	if ts.active() != 0 {
		t.Fatal("unknown sound scheduled")
	}
	if !strings.Contains(ts.log.String(), "unknown sound") {
		t.Fatalf("log = %q", ts.log.String())
	}
}

func TestSoundSystemSuspendedDropsPlays(t *testing.T) {
	ts := newTestSystem(t, true)
	ts.Play(SOUND_CLICK)
	if ms := ts.PlayStartup(); ms != 0 {
		t.Fatalf("PlayStartup = %v while suspended", ms)
	}
	if ts.active() != 0 {
		t.Fatal("play queued on a suspended context")
	}
	ts.UnlockAudio()
	if ts.active() != 0 {
		t.Fatal("dropped plays replayed on resume")
	}
}

func TestSoundSystemNoContext(t *testing.T) {
	s := NewSoundSystem(SoundSystemConfig{
		NewContext: func() (*OutputContext, error) { return nil, errors.New("no device") },
		Log:        &bytes.Buffer{},
	})
	s.Init()
	s.UnlockAudio()
	s.Play(SOUND_CLICK)
	if s.Context() != nil {
		t.Fatal("context from failing factory")
	}
	if _, err := s.RenderOffline(SOUND_CLICK); err != nil {
		t.Fatalf("offline render without device: %v", err)
	}
}

func TestSoundSystemDisable(t *testing.T) {
	ts := newTestSystem(t, false)
	var events []bool
	ts.Subscribe(func(on bool) { events = append(events, on) })

	ts.Disable()
	if ts.IsEnabled() {
		t.Fatal("still enabled")
	}
	if v, _ := ts.store.Get(KEY_SOUND_ENABLED); v != "false" {
		t.Fatalf("persisted %q", v)
	}
	// soundOff is scheduled before the flag flips.
	if ts.active() != 1 {
		t.Fatalf("active = %d, want soundOff", ts.active())
	}
	h := ts.ctx.Mixer().playbacks[0]
	off, _ := DefaultSound(SOUND_OFF)
	if !approx(h.Graph().Duration, ParamsDuration(off.Params), 1e-9) {
		t.Fatal("scheduled sound is not soundOff")
	}

	ts.Disable()
	if ts.active() != 1 {
		t.Fatal("second Disable played again")
	}
	if !slices.Equal(events, []bool{false, false}) {
		t.Fatalf("events = %v", events)
	}

	ts.Play(SOUND_CLICK)
	if ts.active() != 1 {
		t.Fatal("play while disabled was scheduled")
	}
}

func TestSoundSystemEnablePlaysSoundOn(t *testing.T) {
	ts := newTestSystem(t, false)
	ts.store.Set(KEY_SOUND_ENABLED, "false")
	ts.notifier.Notify()
	if ts.IsEnabled() {
		t.Fatal("external disable not picked up")
	}

	ts.Enable()
	if !ts.IsEnabled() || ts.active() != 1 {
		t.Fatalf("enabled=%v active=%d", ts.IsEnabled(), ts.active())
	}
	if v, _ := ts.store.Get(KEY_SOUND_ENABLED); v != "true" {
		t.Fatalf("persisted %q", v)
	}
}

func TestSoundSystemToggleDuringStartup(t *testing.T) {
	ts := newTestSystem(t, false)
	if ms := ts.PlayStartup(); ms != STARTUP_DURATION_MS {
		t.Fatalf("PlayStartup = %v", ms)
	}
	drain(ts.ctx, 0.5)
	if !ts.IsStartupPlaying() {
		t.Fatal("startup not playing")
	}

	if ts.Toggle() {
		t.Fatal("Toggle returned enabled")
	}
	if ts.IsStartupPlaying() {
		t.Fatal("startup survived disable")
	}
	if ts.active() != 1 {
		t.Fatalf("active = %d, want only soundOff", ts.active())
	}
	if !ts.Toggle() || !ts.IsEnabled() {
		t.Fatal("Toggle did not re-enable")
	}
}

func TestSoundSystemSubscribe(t *testing.T) {
	ts := newTestSystem(t, false)
	var a, b int
	unsubA := ts.Subscribe(func(bool) { a++ })
	ts.Subscribe(func(bool) { b++ })

	ts.Toggle()
	unsubA()
	ts.Toggle()
	if a != 1 || b != 2 {
		t.Fatalf("a=%d b=%d, want 1/2", a, b)
	}
}

func TestSoundSystemVolume(t *testing.T) {
	ts := newTestSystem(t, false)
	ts.SetMasterVolume(2)
	if ts.GetMasterVolume() != 1 {
		t.Fatalf("volume = %v, want clamped", ts.GetMasterVolume())
	}
	ts.SetMasterVolume(0)
	buf, err := ts.RenderOffline(SOUND_CLICK)
	if err != nil {
		t.Fatal(err)
	}
	if buf.RMS() != 0 || buf.Duration() == 0 {
		t.Fatalf("rms=%v duration=%v at volume 0", buf.RMS(), buf.Duration())
	}

	ts.Play(SOUND_HOVER)
	if drain(ts.ctx, 0.1).Peak() != 0 {
		t.Fatal("audible at volume 0")
	}
}

func TestSoundSystemRenderComposite(t *testing.T) {
	ts := newTestSystem(t, false)
	buf, err := ts.RenderOffline(SOUND_WIND_DOWN)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(buf.Duration()*1000, WIND_DOWN_DURATION_MS, 0.1) {
		t.Fatalf("duration = %vs", buf.Duration())
	}
	if _, err := ts.RenderOffline("boing"); !errors.Is(err, ErrUnknownSound) {
		t.Fatalf("err = %v, want ErrUnknownSound", err)
	}
}

func TestSoundSystemPicksUpOverrides(t *testing.T) {
	ts := newTestSystem(t, false)
	click, _ := DefaultSound(SOUND_CLICK)
	click.Params.(*SimpleParams).Envelope.ReleaseMs = 900
	data, _ := EncodeSoundTable(map[string]Sound{"click": click})
	ts.store.Set(KEY_SOUND_TABLE, data)
	ts.notifier.Notify()

	ts.Play(SOUND_CLICK)
	h := ts.ctx.Mixer().playbacks[0]
	if !approx(h.Graph().Duration, ParamsDuration(click.Params), 1e-9) {
		t.Fatalf("duration = %v, override not used", h.Graph().Duration)
	}
}

func TestSoundSystemClose(t *testing.T) {
	ts := newTestSystem(t, false)
	ts.Close()
	if ts.notifier.Len() != 0 {
		t.Fatal("still subscribed after Close")
	}
	if ts.ctx.State() != CONTEXT_CLOSED {
		t.Fatal("context not closed")
	}
	ts.Play(SOUND_CLICK)
}
