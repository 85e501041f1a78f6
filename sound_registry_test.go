// sound_registry_test.go - Tests for override-or-default resolution

package main

import (
	"bytes"
	"slices"
	"strings"
	"testing"
)

func TestDefaultSoundTable(t *testing.T) {
	if len(DefaultSounds()) != len(DefaultSoundNames) {
		t.Fatalf("defaults = %d, names = %d", len(DefaultSounds()), len(DefaultSoundNames))
	}
	for _, name := range DefaultSoundNames {
		s, ok := DefaultSound(name)
		if !ok {
			t.Fatalf("%s missing", name)
		}
		if s.ID != string(name) || s.Params == nil {
			t.Fatalf("%s: id=%q params=%v", name, s.ID, s.Params)
		}
		if ClampSound(s).Params == nil {
			t.Fatalf("%s: clamp dropped params", name)
		}
		ms := ParamsDuration(s.Params) * 1000
		if ms <= 0 || ms > 1000 {
			t.Fatalf("%s: duration %vms", name, ms)
		}
	}
	if _, ok := DefaultSound(SOUND_STARTUP); ok {
		t.Fatal("startup is composite, not a table entry")
	}
	if !IsKnownSound(SOUND_STARTUP) || IsKnownSound("boing") {
		t.Fatal("IsKnownSound wrong")
	}
}

func TestRegistryOverrideAndFallback(t *testing.T) {
	store := NewMemoryStore()
	r := NewRegistry(store, nil)

	click, _ := DefaultSound(SOUND_CLICK)
	custom := click.Clone()
	custom.Params.(*SimpleParams).OscA.Frequency = 1234
	data, err := EncodeSoundTable(map[string]Sound{string(SOUND_CLICK): custom})
	if err != nil {
		t.Fatal(err)
	}
	store.Set(KEY_SOUND_TABLE, data)
	r.Reload()

	got, ok := r.Resolve(SOUND_CLICK)
	if !ok || got.Params.(*SimpleParams).OscA.Frequency != 1234 {
		t.Fatalf("override not applied: %+v", got.Params)
	}
	if !r.HasOverride(SOUND_CLICK) || r.HasOverride(SOUND_HOVER) {
		t.Fatal("HasOverride wrong")
	}
	if !slices.Equal(r.OverrideNames(), []string{"click"}) {
		t.Fatalf("override names = %v", r.OverrideNames())
	}

	hover, _ := r.Resolve(SOUND_HOVER)
	def, _ := DefaultSound(SOUND_HOVER)
	if *hover.Params.(*SimpleParams) != *def.Params.(*SimpleParams) {
		t.Fatal("hover should resolve to its default")
	}

	// Removing the override falls back to the built-in on the next reload.
	store.Set(KEY_SOUND_TABLE, "{}")
	r.Reload()
	got, _ = r.Resolve(SOUND_CLICK)
	if got.Params.(*SimpleParams).OscA.Frequency != click.Params.(*SimpleParams).OscA.Frequency {
		t.Fatal("click did not fall back to default")
	}
}

func TestRegistryResolveReturnsCopy(t *testing.T) {
	r := NewRegistry(NewMemoryStore(), nil)
	s, _ := r.Resolve(SOUND_CLICK)
	s.Params.(*SimpleParams).OscA.Frequency = 1
	again, _ := r.Resolve(SOUND_CLICK)
	if again.Params.(*SimpleParams).OscA.Frequency == 1 {
		t.Fatal("Resolve exposed the shared default")
	}
}

func TestRegistryMalformedTable(t *testing.T) {
	store := NewMemoryStore()
	var log bytes.Buffer
	r := NewRegistry(store, &log)

	store.Set(KEY_SOUND_TABLE, `{"click": {"id":"click","type":"simple","params":{"oscA":{}}`)
	r.Reload()
	if len(r.Overrides()) != 0 {
		t.Fatalf("overrides = %v, want empty", r.Overrides())
	}
	if _, ok := r.Resolve(SOUND_CLICK); !ok {
		t.Fatal("click unresolvable after malformed table")
	}
	if !strings.Contains(log.String(), "ignoring override table") {
		t.Fatalf("log = %q", log.String())
	}
}

func TestParseSoundTableClamps(t *testing.T) {
	table, err := ParseSoundTable(`{"x":{"id":"x","type":"sequence","params":{"notes":[{"id":"1","delay":-5,"duration":100,"frequency":99999,"level":3,"waveform":"square"}],"envelope":{"attack":1,"decay":1,"sustain":1,"release":1},"filter":{"enabled":false,"type":"lowpass","cutoff":1000,"resonance":1,"envelopeAmount":0}}}}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	n := table["x"].Params.(*SequenceParams).Notes[0]
	if n.DelayMs != 0 || n.Frequency != FREQUENCY_MAX || n.Level != 1 || n.Waveform != WAVE_SQUARE {
		t.Fatalf("note not clamped: %+v", n)
	}
}
