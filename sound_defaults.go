// sound_defaults.go - Built-in UI sound definitions

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import "slices"

type SoundName string

const (
	SOUND_CLICK           SoundName = "click"
	SOUND_HOVER           SoundName = "hover"
	SOUND_TAB             SoundName = "tab"
	SOUND_ERROR           SoundName = "error"
	SOUND_PAGE_TRANSITION SoundName = "pageTransition"
	SOUND_NAV_SHIFT       SoundName = "navShift"
	SOUND_PALETTE_OPEN    SoundName = "paletteOpen"
	SOUND_PALETTE_CLOSE   SoundName = "paletteClose"
	SOUND_PALETTE_NAV     SoundName = "paletteNav"
	SOUND_PALETTE_SELECT  SoundName = "paletteSelect"
	SOUND_ON              SoundName = "soundOn"
	SOUND_OFF             SoundName = "soundOff"
	SOUND_EASTER_EGG      SoundName = "easterEgg"
	SOUND_MARK_HOVER      SoundName = "markHover"

	// Composite sounds with their own timelines and cancellation.
	SOUND_STARTUP   SoundName = "startup"
	SOUND_WIND_DOWN SoundName = "windDown"
)

// DefaultSoundNames lists the built-in table in display order.
var DefaultSoundNames = []SoundName{
	SOUND_CLICK, SOUND_HOVER, SOUND_TAB, SOUND_ERROR,
	SOUND_PAGE_TRANSITION, SOUND_NAV_SHIFT,
	SOUND_PALETTE_OPEN, SOUND_PALETTE_CLOSE, SOUND_PALETTE_NAV, SOUND_PALETTE_SELECT,
	SOUND_ON, SOUND_OFF,
	SOUND_EASTER_EGG, SOUND_MARK_HOVER,
}

// IsKnownSound reports whether name belongs to the closed set callers may play.
func IsKnownSound(name SoundName) bool {
	return name == SOUND_STARTUP || name == SOUND_WIND_DOWN || slices.Contains(DefaultSoundNames, name)
}

func IsCompositeSound(name SoundName) bool {
	return name == SOUND_STARTUP || name == SOUND_WIND_DOWN
}

func presetOsc(w Waveform, freq, level float64) OscillatorParams {
	return OscillatorParams{
		Enabled:       true,
		Waveform:      w,
		Frequency:     freq,
		Level:         level,
		PitchEnvelope: PitchEnvelope{StartFreq: freq, EndFreq: freq, TimeMs: 50},
	}
}

func withPitchEnvelope(o OscillatorParams, from, to, ms float64) OscillatorParams {
	o.PitchEnvelope = PitchEnvelope{Enabled: true, StartFreq: from, EndFreq: to, TimeMs: ms}
	return o
}

func presetEnv(a, d, s, r float64) EnvelopeParams {
	return EnvelopeParams{AttackMs: a, DecayMs: d, Sustain: s, ReleaseMs: r}
}

func presetFilter(t FilterType, cutoff, q, amt float64) FilterParams {
	return FilterParams{Enabled: true, Type: t, Cutoff: cutoff, Resonance: q, EnvelopeAmount: amt}
}

func presetNote(id string, delay, dur, freq, level float64) SequenceNote {
	return SequenceNote{ID: id, DelayMs: delay, DurationMs: dur, Frequency: freq, Level: level, Waveform: WAVE_SINE}
}

func simpleSound(name SoundName, desc string, cat Category, p *SimpleParams) Sound {
	return Sound{ID: string(name), Name: string(name), Description: desc, Category: cat, Type: SOUND_SIMPLE, Params: p}
}

func sequenceSound(name SoundName, desc string, cat Category, p *SequenceParams) Sound {
	return Sound{ID: string(name), Name: string(name), Description: desc, Category: cat, Type: SOUND_SEQUENCE, Params: p}
}

func buildDefaultSounds() map[SoundName]Sound {
	off := defaultOsc(false)
	noFilter := defaultFilter(false)

	sounds := []Sound{
		simpleSound(SOUND_CLICK, "soft mechanical key", CATEGORY_INTERACTIONS, &SimpleParams{
			OscA:     withPitchEnvelope(presetOsc(WAVE_SQUARE, 800, 0.3), 800, 200, 50),
			OscB:     off,
			Envelope: presetEnv(1, 30, 0, 20),
			Filter:   presetFilter(FILTER_LOWPASS, 2000, 0.5, 0),
		}),
		simpleSound(SOUND_HOVER, "quiet tonal ping", CATEGORY_INTERACTIONS, &SimpleParams{
			OscA:     presetOsc(WAVE_SINE, NOTE_E4, 0.15),
			OscB:     off,
			Envelope: presetEnv(2, 20, 0, 10),
			Filter:   noFilter,
		}),
		simpleSound(SOUND_TAB, "light click", CATEGORY_INTERACTIONS, &SimpleParams{
			OscA:     withPitchEnvelope(presetOsc(WAVE_TRIANGLE, 600, 0.25), 600, 300, 50),
			OscB:     off,
			Envelope: presetEnv(1, 40, 0, 10),
			Filter:   noFilter,
		}),
		simpleSound(SOUND_ERROR, "low muted tone", CATEGORY_INTERACTIONS, &SimpleParams{
			OscA:     presetOsc(WAVE_SINE, NOTE_B3, 0.3),
			OscB:     off,
			Envelope: presetEnv(10, 100, 0.3, 90),
			Filter:   presetFilter(FILTER_LOWPASS, 800, 0.5, 0),
		}),
		simpleSound(SOUND_PAGE_TRANSITION, "low warm tone + step", CATEGORY_TRANSITIONS, &SimpleParams{
			OscA:     presetOsc(WAVE_SINE, NOTE_D3, 0.2),
			OscB:     presetOsc(WAVE_SINE, NOTE_A3, 0.15),
			Envelope: presetEnv(10, 100, 0.2, 90),
			Filter:   noFilter,
		}),
		simpleSound(SOUND_NAV_SHIFT, "subtle whoosh", CATEGORY_TRANSITIONS, &SimpleParams{
			OscA:     withPitchEnvelope(presetOsc(WAVE_SINE, 1000, 0.1), 800, 1200, 150),
			OscB:     off,
			Envelope: presetEnv(20, 80, 0, 50),
			Filter:   presetFilter(FILTER_BANDPASS, 1000, 0.5, 0),
		}),
		sequenceSound(SOUND_PALETTE_OPEN, "two notes ascending", CATEGORY_PALETTE, &SequenceParams{
			Notes: []SequenceNote{
				presetNote("1", 0, 150, NOTE_D4, 0.25),
				presetNote("2", 100, 180, NOTE_A4, 0.25),
			},
			Envelope: presetEnv(5, 100, 0.3, 20),
			Filter:   noFilter,
		}),
		sequenceSound(SOUND_PALETTE_CLOSE, "two notes descending", CATEGORY_PALETTE, &SequenceParams{
			Notes: []SequenceNote{
				presetNote("1", 0, 150, NOTE_A4, 0.25),
				presetNote("2", 100, 180, NOTE_D4, 0.2),
			},
			Envelope: presetEnv(5, 100, 0.2, 20),
			Filter:   noFilter,
		}),
		simpleSound(SOUND_PALETTE_NAV, "soft tick", CATEGORY_PALETTE, &SimpleParams{
			OscA:     presetOsc(WAVE_SINE, NOTE_FS4, 0.12),
			OscB:     off,
			Envelope: presetEnv(2, 20, 0, 10),
			Filter:   noFilter,
		}),
		simpleSound(SOUND_PALETTE_SELECT, "click + tonal confirm", CATEGORY_PALETTE, &SimpleParams{
			OscA:     withPitchEnvelope(presetOsc(WAVE_SQUARE, 600, 0.15), 600, 200, 20),
			OscB:     presetOsc(WAVE_SINE, NOTE_D4, 0.2),
			Envelope: presetEnv(2, 60, 0, 40),
			Filter:   noFilter,
		}),
		sequenceSound(SOUND_ON, "warm tone awakening", CATEGORY_TOGGLE, &SequenceParams{
			Notes: []SequenceNote{
				presetNote("1", 0, 120, NOTE_D4, 0.2),
				presetNote("2", 100, 120, NOTE_FS4, 0.2),
				presetNote("3", 200, 150, NOTE_A4, 0.25),
			},
			Envelope: presetEnv(5, 80, 0.3, 50),
			Filter:   noFilter,
		}),
		sequenceSound(SOUND_OFF, "gentle fade/sigh", CATEGORY_TOGGLE, &SequenceParams{
			Notes: []SequenceNote{
				presetNote("1", 0, 400, NOTE_A4, 0.2),
			},
			Envelope: presetEnv(10, 200, 0.1, 190),
			Filter:   presetFilter(FILTER_LOWPASS, 2000, 0.5, -0.5),
		}),
		sequenceSound(SOUND_EASTER_EGG, "melodic phrase", CATEGORY_SPECIAL, &SequenceParams{
			Notes: []SequenceNote{
				presetNote("1", 0, 120, NOTE_D4, 0.25),
				presetNote("2", 150, 120, NOTE_FS4, 0.25),
				presetNote("3", 300, 120, NOTE_A4, 0.25),
				presetNote("4", 450, 120, NOTE_B4, 0.25),
				presetNote("5", 600, 200, NOTE_A4, 0.25),
			},
			Envelope: presetEnv(5, 80, 0.4, 60),
			Filter:   noFilter,
		}),
		simpleSound(SOUND_MARK_HOVER, "tiny bright ping", CATEGORY_SPECIAL, &SimpleParams{
			OscA:     presetOsc(WAVE_SINE, NOTE_D5, 0.1),
			OscB:     off,
			Envelope: presetEnv(2, 30, 0, 20),
			Filter:   noFilter,
		}),
	}

	table := make(map[SoundName]Sound, len(sounds))
	for _, s := range sounds {
		table[SoundName(s.Name)] = s
	}
	return table
}

var defaultSounds = buildDefaultSounds()

// DefaultSound returns a private copy of the built-in sound for name.
func DefaultSound(name SoundName) (Sound, bool) {
	s, ok := defaultSounds[name]
	if !ok {
		return Sound{}, false
	}
	return s.Clone(), true
}

// DefaultSounds returns copies of every built-in sound in display order.
func DefaultSounds() []Sound {
	out := make([]Sound, 0, len(DefaultSoundNames))
	for _, name := range DefaultSoundNames {
		out = append(out, defaultSounds[name].Clone())
	}
	return out
}
