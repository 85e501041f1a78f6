// sound_registry.go - Override-or-default sound resolution

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
)

var ErrUnknownSound = errors.New("unknown sound")

// ParseSoundTable decodes the persisted override table. Every entry is
// clamped into legal parameter ranges.
func ParseSoundTable(data string) (map[string]Sound, error) {
	raw := map[string]Sound{}
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, err
	}
	table := make(map[string]Sound, len(raw))
	for k, s := range raw {
		table[k] = ClampSound(s)
	}
	return table, nil
}

func EncodeSoundTable(table map[string]Sound) (string, error) {
	data, err := json.Marshal(table)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Registry resolves sound names to the user override when one exists and to
// the built-in definition otherwise. The override table is only ever replaced
// whole.
type Registry struct {
	mu        sync.RWMutex
	store     Store
	overrides map[string]Sound
	log       io.Writer
}

func NewRegistry(store Store, log io.Writer) *Registry {
	if log == nil {
		log = io.Discard
	}
	return &Registry{store: store, overrides: map[string]Sound{}, log: log}
}

// Reload replaces the override table from the store. Malformed data leaves
// an empty table so every name falls back to its default.
func (r *Registry) Reload() {
	table := map[string]Sound{}
	if r.store != nil {
		if data, ok := r.store.Get(KEY_SOUND_TABLE); ok && data != "" {
			parsed, err := ParseSoundTable(data)
			if err != nil {
				fmt.Fprintf(r.log, "sound: ignoring override table: %v\n", err)
			} else {
				table = parsed
			}
		}
	}

	r.mu.Lock()
	r.overrides = table
	r.mu.Unlock()
}

func (r *Registry) Resolve(name SoundName) (Sound, bool) {
	r.mu.RLock()
	s, ok := r.overrides[string(name)]
	r.mu.RUnlock()
	if ok {
		return s.Clone(), true
	}
	return DefaultSound(name)
}

// Overrides returns a copy of the current override table.
func (r *Registry) Overrides() map[string]Sound {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Sound, len(r.overrides))
	for k, s := range r.overrides {
		out[k] = s.Clone()
	}
	return out
}

func (r *Registry) HasOverride(name SoundName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.overrides[string(name)]
	return ok
}

func (r *Registry) Defaults() []Sound {
	return DefaultSounds()
}

// OverrideNames returns the override keys.
func (r *Registry) OverrideNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.overrides))
}
