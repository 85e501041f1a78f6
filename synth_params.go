// synth_params.go - Parameter model for synthesized UI sounds

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Parameter ranges. Callers clamp with ClampSound; the types themselves accept
// any value.
const (
	FREQUENCY_MIN  = 20.0
	FREQUENCY_MAX  = 20000.0
	DETUNE_MIN     = -100.0
	DETUNE_MAX     = 100.0
	ATTACK_MAX_MS  = 2000.0
	DECAY_MAX_MS   = 2000.0
	RELEASE_MAX_MS = 5000.0
	RESONANCE_MIN  = 0.1
	RESONANCE_MAX  = 20.0
)

// D major pentatonic. Every built-in sound is tuned to this palette so that
// overlapping sounds never clash.
const (
	NOTE_D2  = 73.42
	NOTE_D3  = 146.83
	NOTE_E3  = 164.81
	NOTE_FS3 = 185.00
	NOTE_A3  = 220.00
	NOTE_B3  = 246.94
	NOTE_D4  = 293.66
	NOTE_E4  = 329.63
	NOTE_FS4 = 369.99
	NOTE_A4  = 440.00
	NOTE_B4  = 493.88
	NOTE_D5  = 587.33
	NOTE_E5  = 659.25
	NOTE_FS5 = 739.99
	NOTE_A5  = 880.00
	NOTE_B5  = 987.77
)

type Waveform int

const (
	WAVE_SINE Waveform = iota
	WAVE_TRIANGLE
	WAVE_SQUARE
	WAVE_SAWTOOTH
)

var waveformNames = [...]string{"sine", "triangle", "square", "sawtooth"}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return "unknown"
	}
	return waveformNames[w]
}

func ParseWaveform(s string) (Waveform, error) {
	for i, name := range waveformNames {
		if name == s {
			return Waveform(i), nil
		}
	}
	return 0, fmt.Errorf("unknown waveform %q", s)
}

func (w Waveform) MarshalText() ([]byte, error) {
	if w < 0 || int(w) >= len(waveformNames) {
		return nil, fmt.Errorf("invalid waveform %d", int(w))
	}
	return []byte(w.String()), nil
}

func (w *Waveform) UnmarshalText(b []byte) error {
	v, err := ParseWaveform(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

type FilterType int

const (
	FILTER_LOWPASS FilterType = iota
	FILTER_HIGHPASS
	FILTER_BANDPASS
)

var filterTypeNames = [...]string{"lowpass", "highpass", "bandpass"}

func (f FilterType) String() string {
	if f < 0 || int(f) >= len(filterTypeNames) {
		return "unknown"
	}
	return filterTypeNames[f]
}

func ParseFilterType(s string) (FilterType, error) {
	for i, name := range filterTypeNames {
		if name == s {
			return FilterType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown filter type %q", s)
}

func (f FilterType) MarshalText() ([]byte, error) {
	if f < 0 || int(f) >= len(filterTypeNames) {
		return nil, fmt.Errorf("invalid filter type %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *FilterType) UnmarshalText(b []byte) error {
	v, err := ParseFilterType(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// SoundType is the tag of the Sound union. It must agree with the concrete
// type held in Sound.Params.
type SoundType string

const (
	SOUND_SIMPLE   SoundType = "simple"
	SOUND_SEQUENCE SoundType = "sequence"
)

type Category string

const (
	CATEGORY_INTERACTIONS Category = "interactions"
	CATEGORY_TRANSITIONS  Category = "transitions"
	CATEGORY_PALETTE      Category = "palette"
	CATEGORY_TOGGLE       Category = "toggle"
	CATEGORY_SPECIAL      Category = "special"
	CATEGORY_CUSTOM       Category = "custom"
)

// Categories in display order.
var Categories = []Category{
	CATEGORY_INTERACTIONS,
	CATEGORY_TRANSITIONS,
	CATEGORY_PALETTE,
	CATEGORY_TOGGLE,
	CATEGORY_SPECIAL,
	CATEGORY_CUSTOM,
}

func categoryRank(c Category) int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return len(Categories)
}

type PitchEnvelope struct {
	Enabled   bool    `json:"enabled"`
	StartFreq float64 `json:"startFreq"`
	EndFreq   float64 `json:"endFreq"`
	TimeMs    float64 `json:"time"`
}

type OscillatorParams struct {
	Enabled       bool          `json:"enabled"`
	Waveform      Waveform      `json:"waveform"`
	Frequency     float64       `json:"frequency"` // Hz
	Detune        float64       `json:"detune"`    // cents
	Level         float64       `json:"level"`
	PitchEnvelope PitchEnvelope `json:"pitchEnvelope"`
}

// EnvelopeParams is one ADSR shared by every voice of a sound.
type EnvelopeParams struct {
	AttackMs  float64 `json:"attack"`
	DecayMs   float64 `json:"decay"`
	Sustain   float64 `json:"sustain"`
	ReleaseMs float64 `json:"release"`
}

type FilterParams struct {
	Enabled        bool       `json:"enabled"`
	Type           FilterType `json:"type"`
	Cutoff         float64    `json:"cutoff"`
	Resonance      float64    `json:"resonance"`
	EnvelopeAmount float64    `json:"envelopeAmount"`
}

type SequenceNote struct {
	ID         string   `json:"id"`
	DelayMs    float64  `json:"delay"`
	DurationMs float64  `json:"duration"`
	Frequency  float64  `json:"frequency"`
	Level      float64  `json:"level"`
	Waveform   Waveform `json:"waveform"`
}

// Params is implemented only by *SimpleParams and *SequenceParams.
type Params interface {
	soundType() SoundType
	clone() Params
}

type SimpleParams struct {
	OscA     OscillatorParams `json:"oscA"`
	OscB     OscillatorParams `json:"oscB"`
	Envelope EnvelopeParams   `json:"envelope"`
	Filter   FilterParams     `json:"filter"`
}

func (p *SimpleParams) soundType() SoundType { return SOUND_SIMPLE }

func (p *SimpleParams) clone() Params {
	c := *p
	return &c
}

type SequenceParams struct {
	Notes    []SequenceNote `json:"notes"`
	Envelope EnvelopeParams `json:"envelope"`
	Filter   FilterParams   `json:"filter"`
}

func (p *SequenceParams) soundType() SoundType { return SOUND_SEQUENCE }

func (p *SequenceParams) clone() Params {
	c := *p
	c.Notes = append([]SequenceNote(nil), p.Notes...)
	return &c
}

type Sound struct {
	ID          string
	Name        string
	Description string
	Category    Category
	Type        SoundType
	Locked      bool
	Modified    bool
	Params      Params
}

type soundJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Type        SoundType       `json:"type"`
	Locked      bool            `json:"locked"`
	Modified    bool            `json:"modified"`
	Params      json.RawMessage `json:"params"`
}

func (s Sound) MarshalJSON() ([]byte, error) {
	if s.Params == nil {
		return nil, fmt.Errorf("sound %q has no params", s.ID)
	}
	if s.Params.soundType() != s.Type {
		return nil, fmt.Errorf("sound %q: type %q does not match %q params", s.ID, s.Type, s.Params.soundType())
	}
	params, err := json.Marshal(s.Params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(soundJSON{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Category:    s.Category,
		Type:        s.Type,
		Locked:      s.Locked,
		Modified:    s.Modified,
		Params:      params,
	})
}

func (s *Sound) UnmarshalJSON(b []byte) error {
	var raw soundJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw.Params) == 0 || bytes.Equal(raw.Params, []byte("null")) {
		return fmt.Errorf("sound %q has no params", raw.ID)
	}

	var params Params
	switch raw.Type {
	case SOUND_SIMPLE:
		var p SimpleParams
		if err := decodeStrict(raw.Params, &p); err != nil {
			return fmt.Errorf("sound %q simple params: %w", raw.ID, err)
		}
		params = &p
	case SOUND_SEQUENCE:
		var p SequenceParams
		if err := decodeStrict(raw.Params, &p); err != nil {
			return fmt.Errorf("sound %q sequence params: %w", raw.ID, err)
		}
		params = &p
	default:
		return fmt.Errorf("sound %q: unknown type %q", raw.ID, raw.Type)
	}

	*s = Sound{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Category:    raw.Category,
		Type:        raw.Type,
		Locked:      raw.Locked,
		Modified:    raw.Modified,
		Params:      params,
	}
	return nil
}

// decodeStrict rejects params whose keys belong to the other union shape, so
// a "simple" tag over sequence params is caught instead of silently zeroed.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Clone returns a deep copy; mutating the copy never touches the defaults
// table.
func (s Sound) Clone() Sound {
	if s.Params != nil {
		s.Params = s.Params.clone()
	}
	return s
}

// Envelope returns the shared envelope of either params shape.
func (s Sound) Envelope() EnvelopeParams {
	switch p := s.Params.(type) {
	case *SimpleParams:
		return p.Envelope
	case *SequenceParams:
		return p.Envelope
	}
	return EnvelopeParams{}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampFrequency(f float64) float64 { return clamp(f, FREQUENCY_MIN, FREQUENCY_MAX) }

func clampWaveform(w Waveform) Waveform {
	if w < WAVE_SINE || w > WAVE_SAWTOOTH {
		return WAVE_SINE
	}
	return w
}

func clampOscillator(o OscillatorParams) OscillatorParams {
	o.Waveform = clampWaveform(o.Waveform)
	o.Frequency = clampFrequency(o.Frequency)
	o.Detune = clamp(o.Detune, DETUNE_MIN, DETUNE_MAX)
	o.Level = clamp(o.Level, 0, 1)
	o.PitchEnvelope.StartFreq = clampFrequency(o.PitchEnvelope.StartFreq)
	o.PitchEnvelope.EndFreq = clampFrequency(o.PitchEnvelope.EndFreq)
	o.PitchEnvelope.TimeMs = clamp(o.PitchEnvelope.TimeMs, 0, ATTACK_MAX_MS)
	return o
}

func clampEnvelope(e EnvelopeParams) EnvelopeParams {
	e.AttackMs = clamp(e.AttackMs, 0, ATTACK_MAX_MS)
	e.DecayMs = clamp(e.DecayMs, 0, DECAY_MAX_MS)
	e.Sustain = clamp(e.Sustain, 0, 1)
	e.ReleaseMs = clamp(e.ReleaseMs, 0, RELEASE_MAX_MS)
	return e
}

func clampFilter(f FilterParams) FilterParams {
	if f.Type < FILTER_LOWPASS || f.Type > FILTER_BANDPASS {
		f.Type = FILTER_LOWPASS
	}
	f.Cutoff = clampFrequency(f.Cutoff)
	f.Resonance = clamp(f.Resonance, RESONANCE_MIN, RESONANCE_MAX)
	f.EnvelopeAmount = clamp(f.EnvelopeAmount, -1, 1)
	return f
}

// ClampSound returns a copy of s with every parameter forced into its legal
// range. A sound without params gets the default params for its type.
func ClampSound(s Sound) Sound {
	s = s.Clone()
	switch p := s.Params.(type) {
	case *SimpleParams:
		p.OscA = clampOscillator(p.OscA)
		p.OscB = clampOscillator(p.OscB)
		p.Envelope = clampEnvelope(p.Envelope)
		p.Filter = clampFilter(p.Filter)
		s.Type = SOUND_SIMPLE
	case *SequenceParams:
		for i := range p.Notes {
			n := &p.Notes[i]
			n.DelayMs = math.Max(0, n.DelayMs)
			n.DurationMs = math.Max(0, n.DurationMs)
			n.Frequency = clampFrequency(n.Frequency)
			n.Level = clamp(n.Level, 0, 1)
			n.Waveform = clampWaveform(n.Waveform)
		}
		p.Envelope = clampEnvelope(p.Envelope)
		p.Filter = clampFilter(p.Filter)
		s.Type = SOUND_SEQUENCE
	default:
		if s.Type == SOUND_SEQUENCE {
			s.Params = DefaultSequenceParams()
		} else {
			s.Type = SOUND_SIMPLE
			s.Params = DefaultSimpleParams()
		}
	}
	return s
}

func defaultOsc(enabled bool) OscillatorParams {
	return OscillatorParams{
		Enabled:       enabled,
		Waveform:      WAVE_SINE,
		Frequency:     440,
		Level:         0.7,
		PitchEnvelope: PitchEnvelope{StartFreq: 440, EndFreq: 440, TimeMs: 50},
	}
}

func defaultEnvelope() EnvelopeParams {
	return EnvelopeParams{AttackMs: 5, DecayMs: 50, Sustain: 0.5, ReleaseMs: 100}
}

func defaultFilter(enabled bool) FilterParams {
	return FilterParams{Enabled: enabled, Type: FILTER_LOWPASS, Cutoff: 2000, Resonance: 1}
}

func DefaultSimpleParams() *SimpleParams {
	return &SimpleParams{
		OscA:     defaultOsc(true),
		OscB:     defaultOsc(false),
		Envelope: defaultEnvelope(),
		Filter:   defaultFilter(false),
	}
}

func DefaultSequenceParams() *SequenceParams {
	return &SequenceParams{
		Notes: []SequenceNote{
			{ID: "1", DurationMs: 100, Frequency: 440, Level: 0.7, Waveform: WAVE_SINE},
		},
		Envelope: defaultEnvelope(),
		Filter:   defaultFilter(false),
	}
}

var nonSlug = regexp.MustCompile(`\s+`)

// GenerateID returns "<unix-ms>-<random base36>".
func GenerateID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), strconv.FormatUint(rand.Uint64()%(1<<45), 36))
}

// NewSound creates an empty custom sound of the given type.
func NewSound(name string, t SoundType) Sound {
	s := Sound{
		ID:       fmt.Sprintf("%s-%d", nonSlug.ReplaceAllString(strings.ToLower(name), "-"), time.Now().UnixMilli()),
		Name:     name,
		Category: CATEGORY_CUSTOM,
		Type:     t,
	}
	if t == SOUND_SEQUENCE {
		s.Params = DefaultSequenceParams()
	} else {
		s.Type = SOUND_SIMPLE
		s.Params = DefaultSimpleParams()
	}
	return s
}

// DuplicateSound copies s into a new custom sound.
func DuplicateSound(s Sound) Sound {
	d := s.Clone()
	d.ID = fmt.Sprintf("%s-copy-%d", s.Name, time.Now().UnixMilli())
	d.Name = s.Name + " copy"
	d.Category = CATEGORY_CUSTOM
	d.Locked = false
	d.Modified = false
	return d
}

var noteNames = [...]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// FrequencyToNote names the nearest equal-tempered note, e.g. 440 -> "A4".
func FrequencyToNote(freq float64) string {
	if freq <= 0 {
		return "--"
	}
	rounded := int(math.Round(12*math.Log2(freq/440) + 69))
	idx := ((rounded % 12) + 12) % 12
	octave := int(math.Floor(float64(rounded)/12)) - 1
	return fmt.Sprintf("%s%d", noteNames[idx], octave)
}

var notePattern = regexp.MustCompile(`^([A-G]#?)(-?\d+)$`)

// ParseNote converts a note name such as "F#4" to its frequency.
func ParseNote(note string) (float64, error) {
	m := notePattern.FindStringSubmatch(strings.TrimSpace(note))
	if m == nil {
		return 0, fmt.Errorf("bad note name %q", note)
	}
	idx := slices.Index(noteNames[:], m[1])
	if idx < 0 {
		return 0, fmt.Errorf("bad note name %q", note)
	}
	octave, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, fmt.Errorf("bad octave in %q", note)
	}
	num := idx + (octave+1)*12
	return 440 * math.Pow(2, float64(num-69)/12), nil
}

// NoteToFrequency is the inverse of FrequencyToNote. Unparseable names map to
// A4.
func NoteToFrequency(note string) float64 {
	f, err := ParseNote(note)
	if err != nil {
		return 440
	}
	return f
}
