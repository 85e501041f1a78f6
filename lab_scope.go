// lab_scope.go - Oscilloscope model for the Sound Lab viewer

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"sync"
)

// ScopeColumn is the sample range covered by one pixel column.
type ScopeColumn struct {
	Min, Max float32
}

// ScopeColumns reduces buf to n min/max columns. An empty or nil buffer
// yields flat columns.
func ScopeColumns(buf *AudioBuffer, n int) []ScopeColumn {
	if n <= 0 {
		return nil
	}
	cols := make([]ScopeColumn, n)
	if buf == nil || len(buf.Samples) == 0 {
		return cols
	}
	frames := len(buf.Samples)
	for i := range cols {
		lo := i * frames / n
		hi := (i + 1) * frames / n
		if hi <= lo {
			hi = lo + 1
		}
		if hi > frames {
			hi = frames
		}
		if lo >= frames {
			continue
		}
		mn, mx := buf.Samples[lo], buf.Samples[lo]
		for _, s := range buf.Samples[lo:hi] {
			mn = min(mn, s)
			mx = max(mx, s)
		}
		cols[i] = ScopeColumn{mn, mx}
	}
	return cols
}

// LabView is the selection and render cache behind the viewer window. It
// holds no graphics state so key handling can be driven directly.
type LabView struct {
	mu       sync.Mutex
	lab      *Lab
	system   *SoundSystem
	sounds   []Sound
	selected int
	status   string
	renders  map[string]*AudioBuffer
	exportTo string
}

func NewLabView(lab *Lab, system *SoundSystem, exportDir string) *LabView {
	v := &LabView{
		lab:      lab,
		system:   system,
		renders:  make(map[string]*AudioBuffer),
		exportTo: exportDir,
	}
	v.Refresh()
	return v
}

// Refresh reloads the sound list, keeping the selection on the same ID.
func (v *LabView) Refresh() {
	v.mu.Lock()
	defer v.mu.Unlock()
	var cur string
	if v.selected < len(v.sounds) {
		cur = v.sounds[v.selected].ID
	}
	v.sounds = v.lab.List()
	v.renders = make(map[string]*AudioBuffer)
	v.selected = 0
	for i, s := range v.sounds {
		if s.ID == cur {
			v.selected = i
		}
	}
}

func (v *LabView) Sounds() []Sound {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sounds
}

func (v *LabView) Selected() (Sound, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.sounds) == 0 {
		return Sound{}, false
	}
	return v.sounds[v.selected], true
}

func (v *LabView) SelectedIndex() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected
}

// Move shifts the selection by delta, wrapping at both ends.
func (v *LabView) Move(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := len(v.sounds)
	if n == 0 {
		return
	}
	v.selected = ((v.selected+delta)%n + n) % n
}

func (v *LabView) Status() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

func (v *LabView) setStatus(format string, args ...any) {
	v.mu.Lock()
	v.status = fmt.Sprintf(format, args...)
	v.mu.Unlock()
}

// Render returns the cached offline render of the selection.
func (v *LabView) Render() *AudioBuffer {
	s, ok := v.Selected()
	if !ok {
		return nil
	}
	v.mu.Lock()
	buf, cached := v.renders[s.ID]
	v.mu.Unlock()
	if cached {
		return buf
	}
	buf, err := v.lab.Render(s.ID)
	if err != nil {
		v.setStatus("render: %v", err)
		return nil
	}
	v.mu.Lock()
	v.renders[s.ID] = buf
	v.mu.Unlock()
	return buf
}

func (v *LabView) Play() {
	s, ok := v.Selected()
	if !ok {
		return
	}
	if v.system != nil {
		v.system.UnlockAudio()
	}
	ms, err := v.lab.Play(s.ID)
	if err != nil {
		v.setStatus("play: %v", err)
		return
	}
	v.setStatus("%s %.0fms", s.Name, ms)
}

func (v *LabView) Export() {
	s, ok := v.Selected()
	if !ok {
		return
	}
	path, err := v.lab.ExportWAV(s.ID, v.exportTo)
	if err != nil {
		v.setStatus("export: %v", err)
		return
	}
	v.setStatus("wrote %s", path)
}

func (v *LabView) Copy() {
	s, ok := v.Selected()
	if !ok {
		return
	}
	if err := v.lab.CopyToClipboard(s.ID); err != nil {
		v.setStatus("copy: %v", err)
		return
	}
	v.setStatus("copied %s", s.ID)
}

func (v *LabView) Paste() {
	s, err := v.lab.PasteFromClipboard()
	if err != nil {
		v.setStatus("paste: %v", err)
		return
	}
	v.Refresh()
	v.setStatus("imported %s", s.ID)
}

func (v *LabView) Save() {
	if err := v.lab.Save(); err != nil {
		v.setStatus("save: %v", err)
		return
	}
	v.setStatus("saved")
}

func (v *LabView) Toggle() {
	if v.system == nil {
		return
	}
	if v.system.Toggle() {
		v.setStatus("sound on")
	} else {
		v.setStatus("sound off")
	}
}
