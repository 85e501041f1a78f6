//go:build !js

// store_open.go - Settings store selection for desktop builds

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import (
	"context"
	"io"
)

// storeWatchFunc forwards writes made outside this process to n until ctx
// is done.
type storeWatchFunc func(ctx context.Context, n *ChangeNotifier) error

// openStore opens the JSON settings file in dir. Its watch fires the notifier
// when another process rewrites the file.
func openStore(dir string, log io.Writer) (Store, storeWatchFunc, error) {
	fs, err := OpenFileStore(dir, log)
	if err != nil {
		return nil, nil, err
	}
	watch := func(ctx context.Context, n *ChangeNotifier) error {
		return fs.Watch(ctx, func([]string) { n.Notify() })
	}
	return fs, watch, nil
}
