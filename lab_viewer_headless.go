//go:build headless

package main

import "errors"

func RunViewer(view *LabView) error {
	return errors.New("viewer: not available in headless builds")
}
