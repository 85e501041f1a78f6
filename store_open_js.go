//go:build js

// store_open_js.go - Settings store selection for browser builds

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

type storeWatchFunc func(ctx context.Context, n *ChangeNotifier) error

// openStore uses window.localStorage; dir is ignored. Writes from other tabs
// reach the notifier through the storage event.
func openStore(dir string, log io.Writer) (Store, storeWatchFunc, error) {
	ls, err := NewLocalStorage()
	if err != nil {
		return nil, nil, err
	}
	watch := func(ctx context.Context, n *ChangeNotifier) error {
		ls.Watch(n, KEY_SOUND_TABLE, KEY_SOUND_ENABLED)
		return nil
	}
	return ls, watch, nil
}
