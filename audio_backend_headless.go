//go:build headless

// audio_backend_headless.go - Null audio output for builds without a device

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import (
	"sync"
	"time"
)

const HEADLESS_TICK = 10 * time.Millisecond

// OtoPlayer drains its source in real time and discards the samples, so the
// mixer clock and playback lifetimes behave as with a device attached.
type OtoPlayer struct {
	mutex      sync.Mutex
	sampleRate int
	src        SampleSource
	started    bool
	quit       chan struct{}
	done       chan struct{}
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	return &OtoPlayer{sampleRate: sampleRate}, nil
}

func (op *OtoPlayer) SetupPlayer(src SampleSource) {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	op.src = src
}

func (op *OtoPlayer) Start() {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if op.started || op.src == nil {
		return
	}
	op.started = true
	op.quit = make(chan struct{})
	op.done = make(chan struct{})
	go op.drain(op.src, op.quit, op.done)
}

func (op *OtoPlayer) drain(src SampleSource, quit, done chan struct{}) {
	defer close(done)
	buf := make([]float32, op.sampleRate*int(HEADLESS_TICK)/int(time.Second))
	ticker := time.NewTicker(HEADLESS_TICK)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			src.ReadSamples(buf)
		}
	}
}

func (op *OtoPlayer) Stop() {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if !op.started {
		return
	}
	close(op.quit)
	<-op.done
	op.started = false
}

func (op *OtoPlayer) Close() {
	op.Stop()
}

func (op *OtoPlayer) IsStarted() bool {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.started
}
