// synth_automation_test.go - Tests for parameter automation curves

package main

import (
	"math"
	"testing"
)

func approx(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestParamLinearRamp(t *testing.T) {
	p := NewParam(1)
	p.SetValueAtTime(0, 1).LinearRampToValueAtTime(1, 2)

	cases := []struct {
		t, want float64
	}{
		{0.5, 1}, // static value before the first event
		{1, 0},
		{1.5, 0.5},
		{1.75, 0.75},
		{2, 1},
		{10, 1},
	}
	for _, tc := range cases {
		if got := p.At(tc.t); !approx(got, tc.want, 1e-9) {
			t.Fatalf("At(%v) = %v, want %v", tc.t, got, tc.want)
		}
	}
}

func TestParamRampWithoutAnchor(t *testing.T) {
	// A ramp with no earlier event starts from the static value at time 0.
	p := NewParam(2)
	p.LinearRampToValueAtTime(4, 2)
	if got := p.At(1); !approx(got, 3, 1e-9) {
		t.Fatalf("At(1) = %v, want 3", got)
	}
}

func TestParamExponentialRamp(t *testing.T) {
	p := NewParam(0)
	p.SetValueAtTime(100, 0).ExponentialRampToValueAtTime(400, 2)
	if got := p.At(1); !approx(got, 200, 1e-6) {
		t.Fatalf("At(1) = %v, want 200", got)
	}
	if got := p.At(2); got != 400 {
		t.Fatalf("At(2) = %v, want 400", got)
	}
}

func TestParamExponentialRampHoldsOnZero(t *testing.T) {
	cases := []struct {
		name   string
		v0, v1 float64
	}{
		{"from zero", 0, 1},
		{"to zero", 1, 0},
		{"sign change", -1, 1},
	}
	for _, tc := range cases {
		p := NewParam(0)
		p.SetValueAtTime(tc.v0, 0).ExponentialRampToValueAtTime(tc.v1, 1)
		if got := p.At(0.5); got != tc.v0 {
			t.Fatalf("%s: At(0.5) = %v, want %v held", tc.name, got, tc.v0)
		}
		if got := p.At(1); got != tc.v1 {
			t.Fatalf("%s: At(1) = %v, want %v", tc.name, got, tc.v1)
		}
	}
}

func TestParamEventOrdering(t *testing.T) {
	p := NewParam(0)
	p.SetValueAtTime(3, 3)
	p.SetValueAtTime(1, 1)
	p.SetValueAtTime(2, 1) // same time: later call wins

	if got := p.At(1.5); got != 2 {
		t.Fatalf("At(1.5) = %v, want 2", got)
	}
	if got := p.At(3); got != 3 {
		t.Fatalf("At(3) = %v, want 3", got)
	}
	if p.EndTime() != 3 {
		t.Fatalf("EndTime = %v, want 3", p.EndTime())
	}
	if !p.HasEvents() {
		t.Fatal("HasEvents = false")
	}
	if NewParam(5).HasEvents() || NewParam(5).EndTime() != 0 {
		t.Fatal("fresh param reports events")
	}
}
