// store_file.go - JSON file backed key-value store with change watching

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
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/fsnotify/fsnotify"
)

const (
	STORE_FILENAME           = "soundlab.json"
	STORE_VERSION            = "1.0.0"
	STORE_VERSION_CONSTRAINT = "^1"
)

var ErrStoreVersion = errors.New("unsupported store version")

type storeFile struct {
	Version string            `json:"version"`
	Entries map[string]string `json:"entries"`
}

// FileStore persists every entry in one JSON document. Each write replaces
// the document atomically, so readers in other processes never see a torn
// file.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	entries map[string]string
	log     io.Writer
}

// OpenFileStore loads dir/soundlab.json, creating dir if needed. A missing
// file is an empty store.
func OpenFileStore(dir string, log io.Writer) (*FileStore, error) {
	if log == nil {
		log = io.Discard
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store dir: %w", err)
	}
	s := &FileStore{path: filepath.Join(dir, STORE_FILENAME), log: log}
	entries, err := readStoreFile(s.path)
	if err != nil {
		return nil, err
	}
	s.entries = entries
	return s, nil
}

func readStoreFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	var doc storeFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", path, err)
	}
	if err := checkStoreVersion(doc.Version); err != nil {
		return nil, err
	}
	if doc.Entries == nil {
		doc.Entries = map[string]string{}
	}
	return doc.Entries, nil
}

func checkStoreVersion(v string) error {
	c, err := semver.NewConstraint(STORE_VERSION_CONSTRAINT)
	if err != nil {
		return err
	}
	sv, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrStoreVersion, v, err)
	}
	if !c.Check(sv) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrStoreVersion, sv, STORE_VERSION_CONSTRAINT)
	}
	return nil
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := maps.Clone(s.entries)
	next[key] = value
	if err := s.flushLocked(next); err != nil {
		return err
	}
	s.entries = next
	return nil
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return nil
	}
	next := maps.Clone(s.entries)
	delete(next, key)
	if err := s.flushLocked(next); err != nil {
		return err
	}
	s.entries = next
	return nil
}

func (s *FileStore) flushLocked(entries map[string]string) error {
	data, err := json.MarshalIndent(storeFile{Version: STORE_VERSION, Entries: entries}, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data)
}

// Reload rereads the file and returns the keys whose values changed.
func (s *FileStore) Reload() ([]string, error) {
	entries, err := readStoreFile(s.path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []string
	for k, v := range entries {
		if old, ok := s.entries[k]; !ok || old != v {
			changed = append(changed, k)
		}
	}
	for k := range s.entries {
		if _, ok := entries[k]; !ok {
			changed = append(changed, k)
		}
	}
	s.entries = entries
	return changed, nil
}

// Watch reloads the store whenever another process rewrites the file and
// calls onChange with the changed keys. It returns once the watcher is
// running; the watcher stops when ctx is done.
func (s *FileStore) Watch(ctx context.Context, onChange func(keys []string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	// Atomic renames replace the inode, so watch the directory.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				changed, err := s.Reload()
				if err != nil {
					fmt.Fprintf(s.log, "store: reload %s: %v\n", s.path, err)
					continue
				}
				if len(changed) > 0 && onChange != nil {
					onChange(changed)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				fmt.Fprintf(s.log, "store: watch: %v\n", err)
			}
		}
	}()
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
