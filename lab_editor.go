// lab_editor.go - Sound Lab authoring model

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	ErrLastSound   = errors.New("at least one sound must remain")
	ErrLockedSound = errors.New("sound is locked")
	ErrNoBuiltin   = errors.New("sound has no built-in definition")
	ErrNotSequence = errors.New("sound is not a sequence")
	ErrLastNote    = errors.New("at least one note must remain")
)

type LabConfig struct {
	Store     Store
	Notifier  *ChangeNotifier
	Engine    *Engine
	Clipboard Clipboard
	Log       io.Writer
}

// Lab is the editable working set of sounds: every built-in (possibly
// modified) plus user-created sounds. Save writes the override table and
// signals the notifier.
type Lab struct {
	mu        sync.Mutex
	store     Store
	notifier  *ChangeNotifier
	engine    *Engine
	clipboard Clipboard
	log       io.Writer
	sounds    map[string]Sound
	dirty     bool
}

func NewLab(cfg LabConfig) *Lab {
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Engine == nil {
		cfg.Engine = NewEngine(nil)
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = &MemoryClipboard{}
	}
	if cfg.Log == nil {
		cfg.Log = os.Stderr
	}
	l := &Lab{
		store:     cfg.Store,
		notifier:  cfg.Notifier,
		engine:    cfg.Engine,
		clipboard: cfg.Clipboard,
		log:       cfg.Log,
	}
	l.Load()
	return l
}

// Load rebuilds the working set from the defaults and the stored table,
// discarding unsaved edits.
func (l *Lab) Load() {
	sounds := make(map[string]Sound)
	for _, s := range DefaultSounds() {
		sounds[s.ID] = s
	}
	if data, ok := l.store.Get(KEY_SOUND_TABLE); ok && data != "" {
		table, err := ParseSoundTable(data)
		if err != nil {
			fmt.Fprintf(l.log, "lab: ignoring saved sounds: %v\n", err)
		}
		for key, s := range table {
			if s.ID == "" {
				s.ID = key
			}
			if _, builtin := defaultSounds[SoundName(key)]; builtin {
				s.ID = key
				s.Modified = true
			}
			sounds[s.ID] = s
		}
	}

	l.mu.Lock()
	l.sounds = sounds
	l.dirty = false
	l.mu.Unlock()
}

func isBuiltin(id string) bool {
	_, ok := defaultSounds[SoundName(id)]
	return ok
}

// List returns every sound ordered by category, then name.
func (l *Lab) List() []Sound {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Sound, 0, len(l.sounds))
	for _, s := range l.sounds {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := categoryRank(out[i].Category), categoryRank(out[j].Category)
		if ri != rj {
			return ri < rj
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (l *Lab) Get(id string) (Sound, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sounds[id]
	if !ok {
		return Sound{}, fmt.Errorf("%w: %q", ErrUnknownSound, id)
	}
	return s.Clone(), nil
}

func (l *Lab) Dirty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

func (l *Lab) Create(name string, t SoundType) Sound {
	s := NewSound(name, t)
	l.mu.Lock()
	for l.sounds[s.ID].Params != nil {
		s.ID = GenerateID()
	}
	l.sounds[s.ID] = s
	l.dirty = true
	l.mu.Unlock()
	return s.Clone()
}

func (l *Lab) Duplicate(id string) (Sound, error) {
	src, err := l.Get(id)
	if err != nil {
		return Sound{}, err
	}
	d := DuplicateSound(src)
	l.mu.Lock()
	for l.sounds[d.ID].Params != nil {
		d.ID = GenerateID()
	}
	l.sounds[d.ID] = d
	l.dirty = true
	l.mu.Unlock()
	return d.Clone(), nil
}

// Update replaces the stored sound with the same ID. Parameters are clamped;
// edits to a built-in mark it modified.
func (l *Lab) Update(s Sound) (Sound, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur, ok := l.sounds[s.ID]
	if !ok {
		return Sound{}, fmt.Errorf("%w: %q", ErrUnknownSound, s.ID)
	}
	if cur.Locked {
		return Sound{}, fmt.Errorf("%w: %q", ErrLockedSound, s.ID)
	}
	s = ClampSound(s)
	if isBuiltin(s.ID) {
		s.Modified = true
	}
	l.sounds[s.ID] = s
	l.dirty = true
	return s.Clone(), nil
}

// Delete removes a user sound or resets a built-in. The last remaining sound
// cannot be deleted; built-ins always remain, so the check only guards labs
// whose working set was loaded without them.
func (l *Lab) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sounds[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSound, id)
	}
	if s.Locked {
		return fmt.Errorf("%w: %q", ErrLockedSound, id)
	}
	if len(l.sounds) <= 1 {
		return ErrLastSound
	}
	if def, builtin := DefaultSound(SoundName(id)); builtin {
		l.sounds[id] = def
	} else {
		delete(l.sounds, id)
	}
	l.dirty = true
	return nil
}

// Reset restores a built-in to its shipped definition.
func (l *Lab) Reset(id string) (Sound, error) {
	def, ok := DefaultSound(SoundName(id))
	if !ok {
		return Sound{}, fmt.Errorf("%w: %q", ErrNoBuiltin, id)
	}
	l.mu.Lock()
	l.sounds[id] = def
	l.dirty = true
	l.mu.Unlock()
	return def.Clone(), nil
}

// Gap between the end of the last note and a newly added one.
const NOTE_ADD_GAP_MS = 50

// AddNote appends a 440 Hz sine note starting NOTE_ADD_GAP_MS after the
// current last note ends.
func (l *Lab) AddNote(id string) (Sound, error) {
	s, err := l.Get(id)
	if err != nil {
		return Sound{}, err
	}
	p, ok := s.Params.(*SequenceParams)
	if !ok {
		return Sound{}, fmt.Errorf("%w: %q", ErrNotSequence, id)
	}
	var delay float64
	if n := len(p.Notes); n > 0 {
		last := p.Notes[n-1]
		delay = last.DelayMs + last.DurationMs + NOTE_ADD_GAP_MS
	}
	p.Notes = append(p.Notes, SequenceNote{
		ID:         GenerateID(),
		DelayMs:    delay,
		DurationMs: 100,
		Frequency:  440,
		Level:      0.7,
		Waveform:   WAVE_SINE,
	})
	return l.Update(s)
}

// DeleteNote removes one note by ID. A sequence keeps at least one note.
func (l *Lab) DeleteNote(id, noteID string) (Sound, error) {
	s, err := l.Get(id)
	if err != nil {
		return Sound{}, err
	}
	p, ok := s.Params.(*SequenceParams)
	if !ok {
		return Sound{}, fmt.Errorf("%w: %q", ErrNotSequence, id)
	}
	i := slices.IndexFunc(p.Notes, func(n SequenceNote) bool { return n.ID == noteID })
	if i < 0 {
		return Sound{}, fmt.Errorf("no note %q in %q", noteID, id)
	}
	if len(p.Notes) <= 1 {
		return Sound{}, ErrLastNote
	}
	p.Notes = slices.Delete(p.Notes, i, i+1)
	return l.Update(s)
}

// Table returns the override table Save would persist: modified built-ins
// and every user sound.
func (l *Lab) Table() map[string]Sound {
	l.mu.Lock()
	defer l.mu.Unlock()
	table := make(map[string]Sound)
	for id, s := range l.sounds {
		if isBuiltin(id) && !s.Modified {
			continue
		}
		table[id] = s.Clone()
	}
	return table
}

// Save persists the override table and signals every listener to reload.
func (l *Lab) Save() error {
	data, err := EncodeSoundTable(l.Table())
	if err != nil {
		return fmt.Errorf("encode sounds: %w", err)
	}
	if err := l.store.Set(KEY_SOUND_TABLE, data); err != nil {
		return fmt.Errorf("save sounds: %w", err)
	}
	l.mu.Lock()
	l.dirty = false
	l.mu.Unlock()
	if l.notifier != nil {
		l.notifier.Notify()
	}
	return nil
}

// Play auditions a sound and returns its duration in milliseconds.
func (l *Lab) Play(id string) (float64, error) {
	s, err := l.Get(id)
	if err != nil {
		return 0, err
	}
	return l.engine.Play(s.Params), nil
}

func (l *Lab) Stop() { l.engine.Stop() }

func (l *Lab) Engine() *Engine { return l.engine }

// Render renders a sound offline at the engine level.
func (l *Lab) Render(id string) (*AudioBuffer, error) {
	s, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	return l.engine.RenderOffline(s.Params), nil
}

// ExportWAV renders a sound into dir and returns the written path.
func (l *Lab) ExportWAV(id, dir string) (string, error) {
	s, err := l.Get(id)
	if err != nil {
		return "", err
	}
	return l.exportSound(s, dir)
}

func (l *Lab) exportSound(s Sound, dir string) (string, error) {
	path := filepath.Join(dir, ExportFilename(s.Name))
	if err := WriteWAVFile(path, l.engine.RenderOffline(s.Params)); err != nil {
		return "", fmt.Errorf("export %s: %w", s.Name, err)
	}
	return path, nil
}

// ExportAll renders every sound into dir concurrently. Sounds whose names
// slug to the same file are suffixed with their ID.
func (l *Lab) ExportAll(ctx context.Context, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export dir: %w", err)
	}
	sounds := l.List()
	seen := make(map[string]bool, len(sounds))
	for i := range sounds {
		file := ExportFilename(sounds[i].Name)
		if seen[file] {
			sounds[i].Name = sounds[i].Name + " " + sounds[i].ID
		}
		seen[ExportFilename(sounds[i].Name)] = true
	}

	paths := make([]string, len(sounds))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range sounds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := l.exportSound(s, dir)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// CopyToClipboard places one sound's JSON on the clipboard.
func (l *Lab) CopyToClipboard(id string) error {
	s, err := l.Get(id)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return l.clipboard.WriteText(data)
}

// PasteFromClipboard imports a sound from clipboard JSON. A sound whose ID is
// already present replaces it; anything else becomes a new user sound.
func (l *Lab) PasteFromClipboard() (Sound, error) {
	data, err := l.clipboard.ReadText()
	if err != nil {
		return Sound{}, err
	}
	var s Sound
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &s); err != nil {
		return Sound{}, fmt.Errorf("paste: %w", err)
	}
	return l.Import(s)
}

// Import adds s to the working set, replacing any sound with the same ID.
func (l *Lab) Import(s Sound) (Sound, error) {
	s = ClampSound(s)
	if s.Name == "" {
		s.Name = "imported"
	}
	if s.ID == "" {
		s.ID = GenerateID()
	}
	l.mu.Lock()
	_, exists := l.sounds[s.ID]
	l.mu.Unlock()
	if exists {
		return l.Update(s)
	}

	if s.Category == "" {
		s.Category = CATEGORY_CUSTOM
	}
	s.Locked = false
	l.mu.Lock()
	l.sounds[s.ID] = s
	l.dirty = true
	l.mu.Unlock()
	return s.Clone(), nil
}
