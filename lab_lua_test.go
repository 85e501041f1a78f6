// lab_lua_test.go - Tests for Lua scripted sounds

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSimpleScript = `
return {
  name = "blip",
  description = "scripted",
  oscA = osc{ waveform = "square", frequency = note("D4"), level = 0.3,
              pitch = { from = 800, to = 200, time = 50 } },
  oscB = { enabled = false },
  envelope = { attack = 1, decay = 30, sustain = 0, release = 20 },
  filter = { type = "highpass", cutoff = 2000, resonance = 0.5 },
}
`

func TestLuaSimpleSound(t *testing.T) {
	s, err := LoadLuaSound(context.Background(), "file", testSimpleScript)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "blip" || s.Description != "scripted" || s.Category != CATEGORY_CUSTOM || s.Type != SOUND_SIMPLE {
		t.Fatalf("sound = %+v", s)
	}
	p := s.Params.(*SimpleParams)
	if !p.OscA.Enabled || p.OscA.Waveform != WAVE_SQUARE || p.OscA.Level != 0.3 {
		t.Fatalf("oscA = %+v", p.OscA)
	}
	if !approx(p.OscA.Frequency, NoteToFrequency("D4"), 1e-9) {
		t.Fatalf("frequency = %v", p.OscA.Frequency)
	}
	pe := p.OscA.PitchEnvelope
	if !pe.Enabled || pe.StartFreq != 800 || pe.EndFreq != 200 || pe.TimeMs != 50 {
		t.Fatalf("pitch = %+v", pe)
	}
	if p.OscB.Enabled {
		t.Fatal("oscB enabled")
	}
	if p.Envelope != (EnvelopeParams{AttackMs: 1, DecayMs: 30, Sustain: 0, ReleaseMs: 20}) {
		t.Fatalf("envelope = %+v", p.Envelope)
	}
	if !p.Filter.Enabled || p.Filter.Type != FILTER_HIGHPASS || p.Filter.Cutoff != 2000 {
		t.Fatalf("filter = %+v", p.Filter)
	}
}

func TestLuaSequenceSound(t *testing.T) {
	src := `
local notes = {}
for i, n in ipairs({"C5", "E5", "G5"}) do
  notes[i] = { delay = (i - 1) * 60, duration = 80, frequency = note(n), waveform = "triangle" }
end
return { type = "sequence", notes = notes, envelope = { attack = 2, decay = 40, sustain = 0.2, release = 90 } }
`
	s, err := LoadLuaSound(context.Background(), "arp", src)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "arp" || s.Type != SOUND_SEQUENCE {
		t.Fatalf("sound = %+v", s)
	}
	p := s.Params.(*SequenceParams)
	if len(p.Notes) != 3 {
		t.Fatalf("notes = %d", len(p.Notes))
	}
	last := p.Notes[2]
	if last.DelayMs != 120 || last.Waveform != WAVE_TRIANGLE || last.Level != 0.7 {
		t.Fatalf("last note = %+v", last)
	}
	if !approx(ParamsDuration(p), 0.29, 1e-9) {
		t.Fatalf("duration = %v", ParamsDuration(p))
	}
}

func TestLuaClampsValues(t *testing.T) {
	s, err := LoadLuaSound(context.Background(), "loud", `return { oscA = osc{ level = 9 }, envelope = { sustain = -1 } }`)
	if err != nil {
		t.Fatal(err)
	}
	p := s.Params.(*SimpleParams)
	if p.OscA.Level != 1 || p.Envelope.Sustain != 0 {
		t.Fatalf("level=%v sustain=%v", p.OscA.Level, p.Envelope.Sustain)
	}
}

func TestLuaErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `return {`, "lua:"},
		{"bad note", `return { oscA = osc{ frequency = note("H9") } }`, "lua:"},
		{"nothing", `local x = 1`, "returned nothing"},
		{"number", `return 42`, "want table"},
		{"bad type", `return { type = "chord" }`, "unknown sound type"},
		{"bad waveform", `return { oscA = { waveform = "noise" } }`, "oscA"},
		{"bad note entry", `return { type = "sequence", notes = { 5 } }`, "notes[1]"},
		{"no io", `io.write("x") return {}`, "lua:"},
		{"no dofile", `dofile("/etc/passwd") return {}`, "lua:"},
		{"no loadfile", `local f = loadfile("x.lua") return {}`, "lua:"},
		{"no load", `local f = load("return {}") return f()`, "lua:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLuaSound(context.Background(), "x", tt.src)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestLuaScriptTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := LoadLuaSound(ctx, "spin", `while true do end`); err == nil {
		t.Fatal("runaway script returned")
	}
	if time.Since(start) > LUA_SCRIPT_TIMEOUT {
		t.Fatalf("took %v", time.Since(start))
	}
}

func TestLabImportLua(t *testing.T) {
	path := filepath.Join(t.TempDir(), "door chime.lua")
	if err := os.WriteFile(path, []byte(`return { oscA = osc{ frequency = note("A5") } }`), 0o644); err != nil {
		t.Fatal(err)
	}
	lab := NewLab(LabConfig{Log: &bytes.Buffer{}})
	s, err := lab.ImportLua(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "door chime" {
		t.Fatalf("name = %q", s.Name)
	}
	if _, err := lab.Get(s.ID); err != nil {
		t.Fatal(err)
	}
	if !lab.Dirty() {
		t.Fatal("import not marked dirty")
	}

	if _, err := lab.ImportLua(context.Background(), filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Fatal("missing file imported")
	}
}
