// lab_clipboard.go - Clipboard access for sharing sound definitions

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"
)

const CLIPBOARD_MAX_BYTES = 64 * 1024

var ErrClipboardUnavailable = errors.New("clipboard unavailable")

type Clipboard interface {
	ReadText() ([]byte, error)
	WriteText(data []byte) error
}

// SystemClipboard is the desktop clipboard. Init runs once; on hosts without
// a display every call fails with ErrClipboardUnavailable.
type SystemClipboard struct {
	once sync.Once
	ok   bool
}

func (c *SystemClipboard) init() bool {
	c.once.Do(func() {
		c.ok = clipboard.Init() == nil
	})
	return c.ok
}

func (c *SystemClipboard) ReadText() ([]byte, error) {
	if !c.init() {
		return nil, ErrClipboardUnavailable
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) > CLIPBOARD_MAX_BYTES {
		data = data[:CLIPBOARD_MAX_BYTES]
	}
	return data, nil
}

func (c *SystemClipboard) WriteText(data []byte) error {
	if !c.init() {
		return ErrClipboardUnavailable
	}
	clipboard.Write(clipboard.FmtText, data)
	return nil
}

// MemoryClipboard is a process-local clipboard.
type MemoryClipboard struct {
	mu   sync.Mutex
	data []byte
}

func (c *MemoryClipboard) ReadText() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.data...), nil
}

func (c *MemoryClipboard) WriteText(data []byte) error {
	c.mu.Lock()
	c.data = append([]byte(nil), data...)
	c.mu.Unlock()
	return nil
}
