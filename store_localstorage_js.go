//go:build js

// store_localstorage_js.go - Browser localStorage backed store

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import (
	"errors"

	"github.com/gopherjs/gopherjs/js"
)

var errNoLocalStorage = errors.New("localStorage unavailable")

// LocalStorage is a Store over window.localStorage. Writes from other tabs
// arrive as "storage" events, which Watch forwards to a notifier.
type LocalStorage struct {
	ls *js.Object
}

func NewLocalStorage() (*LocalStorage, error) {
	ls := js.Global.Get("localStorage")
	if ls == nil || ls == js.Undefined {
		return nil, errNoLocalStorage
	}
	return &LocalStorage{ls: ls}, nil
}

func (s *LocalStorage) Get(key string) (string, bool) {
	v := s.ls.Call("getItem", key)
	if v == nil || v == js.Undefined {
		return "", false
	}
	return v.String(), true
}

func (s *LocalStorage) Set(key, value string) (err error) {
	// setItem throws when the quota is exceeded or storage is disabled.
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("localStorage: setItem failed")
		}
	}()
	s.ls.Call("setItem", key, value)
	return nil
}

func (s *LocalStorage) Delete(key string) error {
	s.ls.Call("removeItem", key)
	return nil
}

// Watch notifies n whenever another browsing context writes one of keys.
func (s *LocalStorage) Watch(n *ChangeNotifier, keys ...string) {
	js.Global.Call("addEventListener", "storage", func(event *js.Object) {
		changed := event.Get("key")
		if changed == nil || changed == js.Undefined {
			n.Notify()
			return
		}
		name := changed.String()
		for _, k := range keys {
			if k == name {
				n.Notify()
				return
			}
		}
	})
}
