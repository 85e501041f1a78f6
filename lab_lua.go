// lab_lua.go - Lua scripted sound definitions

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

/*
A sound script returns one table:

	return {
	  name = "blip",
	  type = "simple",
	  oscA = osc{ waveform = "square", frequency = note("D4"), level = 0.3,
	              pitch = { from = 800, to = 200, time = 50 } },
	  envelope = { attack = 1, decay = 30, sustain = 0, release = 20 },
	  filter = { type = "lowpass", cutoff = 2000, resonance = 0.5 },
	}

Sequence scripts set type = "sequence" and list notes = { { delay, duration,
frequency, level, waveform }, ... }.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const LUA_SCRIPT_TIMEOUT = 2 * time.Second

// ImportLua evaluates a sound script file and adds the result to the lab.
func (l *Lab) ImportLua(ctx context.Context, path string) (Sound, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Sound{}, fmt.Errorf("lua: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := LoadLuaSound(ctx, name, string(src))
	if err != nil {
		return Sound{}, err
	}
	return l.Import(s)
}

// LoadLuaSound runs src in a sandboxed state and converts the returned table.
// defaultName is used when the script sets no name.
func LoadLuaSound(ctx context.Context, defaultName, src string) (Sound, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	for _, pair := range []struct {
		n string
		f lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(pair.f))
		L.Push(lua.LString(pair.n))
		L.Call(1, 0)
	}
	// Scripts may not reach the filesystem or compile further chunks.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}

	ctx, cancel := context.WithTimeout(ctx, LUA_SCRIPT_TIMEOUT)
	defer cancel()
	L.SetContext(ctx)

	L.SetGlobal("note", L.NewFunction(luaNote))
	L.SetGlobal("osc", L.NewFunction(luaOsc))

	top := L.GetTop()
	if err := L.DoString(src); err != nil {
		return Sound{}, fmt.Errorf("lua: %w", err)
	}
	if L.GetTop() == top {
		return Sound{}, fmt.Errorf("lua: script returned nothing")
	}
	tbl, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return Sound{}, fmt.Errorf("lua: script returned %s, want table", L.Get(-1).Type())
	}
	return soundFromTable(defaultName, tbl)
}

// note("F#4") -> frequency in Hz.
func luaNote(L *lua.LState) int {
	f, err := ParseNote(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	L.Push(lua.LNumber(f))
	return 1
}

// osc{...} marks an oscillator table enabled unless it says otherwise.
func luaOsc(L *lua.LState) int {
	t := L.CheckTable(1)
	if t.RawGetString("enabled") == lua.LNil {
		t.RawSetString("enabled", lua.LTrue)
	}
	L.Push(t)
	return 1
}

func luaNumber(t *lua.LTable, key string, def float64) float64 {
	switch v := t.RawGetString(key).(type) {
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		if f, err := strconv.ParseFloat(string(v), 64); err == nil {
			return f
		}
	}
	return def
}

func luaString(t *lua.LTable, key, def string) string {
	if v, ok := t.RawGetString(key).(lua.LString); ok {
		return string(v)
	}
	return def
}

func luaBool(t *lua.LTable, key string, def bool) bool {
	if v, ok := t.RawGetString(key).(lua.LBool); ok {
		return bool(v)
	}
	return def
}

func luaTable(t *lua.LTable, key string) *lua.LTable {
	v, _ := t.RawGetString(key).(*lua.LTable)
	return v
}

func soundFromTable(defaultName string, t *lua.LTable) (Sound, error) {
	typ := SoundType(luaString(t, "type", string(SOUND_SIMPLE)))
	s := Sound{
		ID:          luaString(t, "id", ""),
		Name:        luaString(t, "name", defaultName),
		Description: luaString(t, "description", ""),
		Category:    Category(luaString(t, "category", string(CATEGORY_CUSTOM))),
		Type:        typ,
	}

	envelope := defaultEnvelope()
	if e := luaTable(t, "envelope"); e != nil {
		envelope = EnvelopeParams{
			AttackMs:  luaNumber(e, "attack", envelope.AttackMs),
			DecayMs:   luaNumber(e, "decay", envelope.DecayMs),
			Sustain:   luaNumber(e, "sustain", envelope.Sustain),
			ReleaseMs: luaNumber(e, "release", envelope.ReleaseMs),
		}
	}
	flt, err := luaFilter(luaTable(t, "filter"))
	if err != nil {
		return Sound{}, err
	}

	switch typ {
	case SOUND_SIMPLE:
		p := &SimpleParams{OscA: defaultOsc(true), OscB: defaultOsc(false), Envelope: envelope, Filter: flt}
		if o := luaTable(t, "oscA"); o != nil {
			if p.OscA, err = luaOscillator(o, p.OscA); err != nil {
				return Sound{}, fmt.Errorf("lua: oscA: %w", err)
			}
		}
		if o := luaTable(t, "oscB"); o != nil {
			if p.OscB, err = luaOscillator(o, p.OscB); err != nil {
				return Sound{}, fmt.Errorf("lua: oscB: %w", err)
			}
		}
		s.Params = p
	case SOUND_SEQUENCE:
		p := &SequenceParams{Envelope: envelope, Filter: flt}
		if notes := luaTable(t, "notes"); notes != nil {
			for i := 1; i <= notes.Len(); i++ {
				n, ok := notes.RawGetInt(i).(*lua.LTable)
				if !ok {
					return Sound{}, fmt.Errorf("lua: notes[%d] is not a table", i)
				}
				w, err := ParseWaveform(luaString(n, "waveform", "sine"))
				if err != nil {
					return Sound{}, fmt.Errorf("lua: notes[%d]: %w", i, err)
				}
				p.Notes = append(p.Notes, SequenceNote{
					ID:         strconv.Itoa(i),
					DelayMs:    luaNumber(n, "delay", 0),
					DurationMs: luaNumber(n, "duration", 100),
					Frequency:  luaNumber(n, "frequency", 440),
					Level:      luaNumber(n, "level", 0.7),
					Waveform:   w,
				})
			}
		}
		s.Params = p
	default:
		return Sound{}, fmt.Errorf("lua: unknown sound type %q", typ)
	}
	return ClampSound(s), nil
}

func luaOscillator(t *lua.LTable, o OscillatorParams) (OscillatorParams, error) {
	w, err := ParseWaveform(luaString(t, "waveform", o.Waveform.String()))
	if err != nil {
		return o, err
	}
	o.Enabled = luaBool(t, "enabled", true)
	o.Waveform = w
	o.Frequency = luaNumber(t, "frequency", o.Frequency)
	o.Detune = luaNumber(t, "detune", o.Detune)
	o.Level = luaNumber(t, "level", o.Level)
	o.PitchEnvelope.StartFreq = o.Frequency
	o.PitchEnvelope.EndFreq = o.Frequency
	if pe := luaTable(t, "pitch"); pe != nil {
		o.PitchEnvelope = PitchEnvelope{
			Enabled:   luaBool(pe, "enabled", true),
			StartFreq: luaNumber(pe, "from", o.Frequency),
			EndFreq:   luaNumber(pe, "to", o.Frequency),
			TimeMs:    luaNumber(pe, "time", o.PitchEnvelope.TimeMs),
		}
	}
	return o, nil
}

func luaFilter(t *lua.LTable) (FilterParams, error) {
	f := defaultFilter(false)
	if t == nil {
		return f, nil
	}
	ft, err := ParseFilterType(luaString(t, "type", f.Type.String()))
	if err != nil {
		return f, fmt.Errorf("lua: filter: %w", err)
	}
	f.Enabled = luaBool(t, "enabled", true)
	f.Type = ft
	f.Cutoff = luaNumber(t, "cutoff", f.Cutoff)
	f.Resonance = luaNumber(t, "resonance", f.Resonance)
	f.EnvelopeAmount = luaNumber(t, "amount", luaNumber(t, "envelopeAmount", 0))
	return f, nil
}
