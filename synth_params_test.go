// synth_params_test.go - Tests for the sound parameter model

package main

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestWaveformTextRoundTrip(t *testing.T) {
	for _, w := range []Waveform{WAVE_SINE, WAVE_TRIANGLE, WAVE_SQUARE, WAVE_SAWTOOTH} {
		b, err := w.MarshalText()
		if err != nil {
			t.Fatalf("%v: %v", w, err)
		}
		var got Waveform
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("%s: %v", b, err)
		}
		if got != w {
			t.Fatalf("round trip %s = %v, want %v", b, got, w)
		}
	}
	if _, err := ParseWaveform("noise"); err == nil {
		t.Fatal("expected error for unknown waveform")
	}
	if _, err := ParseFilterType("notch"); err == nil {
		t.Fatal("expected error for unknown filter type")
	}
}

func TestSoundJSONShape(t *testing.T) {
	s, _ := DefaultSound(SOUND_CLICK)
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	t.Logf("%s", data)
	for _, key := range []string{`"type":"simple"`, `"oscA"`, `"pitchEnvelope"`, `"waveform":"`, `"attack"`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("encoded sound missing %s", key)
		}
	}

	var back Sound
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ID != s.ID || back.Type != SOUND_SIMPLE {
		t.Fatalf("decoded id=%q type=%q", back.ID, back.Type)
	}
	if *back.Params.(*SimpleParams) != *s.Params.(*SimpleParams) {
		t.Fatalf("params changed in round trip")
	}
}

func TestSoundJSONRejectsMismatchedShape(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"sequence params tagged simple", `{"id":"x","type":"simple","params":{"notes":[],"envelope":{},"filter":{}}}`},
		{"unknown type", `{"id":"x","type":"chord","params":{}}`},
		{"missing params", `{"id":"x","type":"simple"}`},
	}
	for _, tc := range cases {
		var s Sound
		if err := json.Unmarshal([]byte(tc.json), &s); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}

	bad := Sound{ID: "x", Type: SOUND_SEQUENCE, Params: DefaultSimpleParams()}
	if _, err := json.Marshal(bad); err == nil {
		t.Fatal("expected error marshalling type/params mismatch")
	}
}

func TestClampSound(t *testing.T) {
	p := DefaultSimpleParams()
	p.OscA.Frequency = 5
	p.OscA.Detune = 500
	p.OscA.Level = 2
	p.OscA.Waveform = Waveform(42)
	p.Envelope = EnvelopeParams{AttackMs: -1, DecayMs: 9999, Sustain: 1.5, ReleaseMs: math.NaN()}
	p.Filter.Resonance = 0
	p.Filter.EnvelopeAmount = -3

	got := ClampSound(Sound{ID: "x", Type: SOUND_SIMPLE, Params: p}).Params.(*SimpleParams)
	if got.OscA.Frequency != FREQUENCY_MIN || got.OscA.Detune != DETUNE_MAX || got.OscA.Level != 1 {
		t.Fatalf("oscillator not clamped: %+v", got.OscA)
	}
	if got.OscA.Waveform != WAVE_SINE {
		t.Fatalf("waveform = %v, want sine", got.OscA.Waveform)
	}
	want := EnvelopeParams{AttackMs: 0, DecayMs: DECAY_MAX_MS, Sustain: 1, ReleaseMs: 0}
	if got.Envelope != want {
		t.Fatalf("envelope = %+v, want %+v", got.Envelope, want)
	}
	if got.Filter.Resonance != RESONANCE_MIN || got.Filter.EnvelopeAmount != -1 {
		t.Fatalf("filter not clamped: %+v", got.Filter)
	}
	if p.OscA.Frequency != 5 {
		t.Fatal("ClampSound modified its input")
	}
}

func TestClampSoundFillsMissingParams(t *testing.T) {
	s := ClampSound(Sound{ID: "x", Type: SOUND_SEQUENCE})
	if _, ok := s.Params.(*SequenceParams); !ok {
		t.Fatalf("params = %T, want *SequenceParams", s.Params)
	}
	s = ClampSound(Sound{ID: "y"})
	if s.Type != SOUND_SIMPLE {
		t.Fatalf("type = %q, want simple", s.Type)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s, _ := DefaultSound(SOUND_PALETTE_OPEN)
	c := s.Clone()
	c.Params.(*SequenceParams).Notes[0].Frequency = 1000
	if s.Params.(*SequenceParams).Notes[0].Frequency == 1000 {
		t.Fatal("clone shares the notes slice")
	}
	again, _ := DefaultSound(SOUND_PALETTE_OPEN)
	if again.Params.(*SequenceParams).Notes[0].Frequency == 1000 {
		t.Fatal("clone mutated the defaults table")
	}
}

func TestNewAndDuplicateSound(t *testing.T) {
	s := NewSound("My Blip", SOUND_SEQUENCE)
	if !strings.HasPrefix(s.ID, "my-blip-") {
		t.Fatalf("id = %q", s.ID)
	}
	if s.Category != CATEGORY_CUSTOM || s.Type != SOUND_SEQUENCE {
		t.Fatalf("new sound = %+v", s)
	}

	click, _ := DefaultSound(SOUND_CLICK)
	click.Locked = true
	d := DuplicateSound(click)
	if d.ID == click.ID || d.Locked || d.Modified || d.Category != CATEGORY_CUSTOM {
		t.Fatalf("duplicate = %+v", d)
	}
	if d.Name != click.Name+" copy" {
		t.Fatalf("duplicate name = %q", d.Name)
	}
}

func TestNoteConversion(t *testing.T) {
	cases := []struct {
		note string
		freq float64
	}{
		{"A4", 440},
		{"D4", NOTE_D4},
		{"F#4", NOTE_FS4},
		{"A5", 880},
		{"D2", NOTE_D2},
	}
	for _, tc := range cases {
		f, err := ParseNote(tc.note)
		if err != nil {
			t.Fatalf("ParseNote(%q): %v", tc.note, err)
		}
		if math.Abs(f-tc.freq) > 0.01 {
			t.Fatalf("ParseNote(%q) = %.2f, want %.2f", tc.note, f, tc.freq)
		}
		if got := FrequencyToNote(tc.freq); got != tc.note {
			t.Fatalf("FrequencyToNote(%.2f) = %q, want %q", tc.freq, got, tc.note)
		}
	}

	for _, bad := range []string{"", "H4", "A", "a4", "Bb3"} {
		if _, err := ParseNote(bad); err == nil {
			t.Fatalf("ParseNote(%q) accepted", bad)
		}
	}
	if NoteToFrequency("nope") != 440 {
		t.Fatal("NoteToFrequency should fall back to A4")
	}
	if FrequencyToNote(0) != "--" {
		t.Fatal("FrequencyToNote(0) should be --")
	}
}
