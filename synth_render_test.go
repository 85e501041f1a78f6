// synth_render_test.go - Tests for offline rendering and the filter core

package main

import (
	"math"
	"testing"
)

func TestOscillatorShapes(t *testing.T) {
	cases := []struct {
		w     Waveform
		phase float64
		want  float64
	}{
		{WAVE_SINE, 0, 0},
		{WAVE_SINE, 0.25, 1},
		{WAVE_SQUARE, 0.1, 1},
		{WAVE_SQUARE, 0.6, -1},
		{WAVE_SAWTOOTH, 0, 0},
		{WAVE_SAWTOOTH, 0.25, 0.5},
		{WAVE_TRIANGLE, 0, 0},
		{WAVE_TRIANGLE, 0.25, 1},
		{WAVE_TRIANGLE, 0.75, -1},
	}
	for _, tc := range cases {
		if got := oscillatorSample(tc.w, tc.phase); !approx(got, tc.want, 1e-9) {
			t.Fatalf("%v at %v = %v, want %v", tc.w, tc.phase, got, tc.want)
		}
	}
}

func renderLength(g *Graph) int {
	return int(math.Ceil(g.Duration * SAMPLE_RATE))
}

func TestRenderSimpleSound(t *testing.T) {
	g := BuildGraph(DefaultSimpleParams(), 0, 1)
	buf := RenderGraph(g, SAMPLE_RATE, renderLength(g))
	t.Logf("frames=%d peak=%.4f rms=%.4f", buf.Frames(), buf.Peak(), buf.RMS())

	if buf.Frames() != 9041 {
		t.Fatalf("frames = %d, want ceil(0.205*44100)", buf.Frames())
	}
	if buf.Samples[0] != 0 {
		t.Fatalf("first sample = %v, want 0 (attack starts silent)", buf.Samples[0])
	}
	if buf.Peak() < 0.5 || buf.Peak() > 0.7+1e-6 {
		t.Fatalf("peak = %v, want within (0.5, 0.7]", buf.Peak())
	}
	tail := buf.Samples[len(buf.Samples)-10:]
	for _, s := range tail {
		if math.Abs(float64(s)) > 0.01 {
			t.Fatalf("tail sample %v not released", s)
		}
	}
}

func TestRenderVolumeScaling(t *testing.T) {
	p := DefaultSimpleParams()
	full := RenderParams(p, 1, SAMPLE_RATE)
	half := RenderParams(p, 0.5, SAMPLE_RATE)
	mute := RenderParams(p, 0, SAMPLE_RATE)

	if ratio := half.RMS() / full.RMS(); !approx(ratio, 0.5, 1e-3) {
		t.Fatalf("rms ratio = %v, want 0.5", ratio)
	}
	if mute.RMS() != 0 {
		t.Fatalf("rms at volume 0 = %v", mute.RMS())
	}
	if mute.Duration() == 0 {
		t.Fatal("muted render has no duration")
	}
}

func TestRenderLowpassAttenuates(t *testing.T) {
	p := DefaultSimpleParams()
	p.OscA.Waveform = WAVE_SAWTOOTH
	p.OscA.Frequency = 2000
	dry := RenderParams(p, 1, SAMPLE_RATE)

	p.Filter = FilterParams{Enabled: true, Type: FILTER_LOWPASS, Cutoff: 200, Resonance: 0}
	wet := RenderParams(p, 1, SAMPLE_RATE)
	t.Logf("dry rms=%.4f wet rms=%.4f", dry.RMS(), wet.RMS())
	if wet.RMS() >= dry.RMS()*0.25 {
		t.Fatalf("lowpass at 200 Hz left rms %.4f of %.4f", wet.RMS(), dry.RMS())
	}
}

func TestBiquadStability(t *testing.T) {
	for _, ft := range []FilterType{FILTER_LOWPASS, FILTER_HIGHPASS, FILTER_BANDPASS} {
		for _, q := range []float64{RESONANCE_MIN, 1, RESONANCE_MAX} {
			var bq biquad
			bq.setCoefficients(ft, 1000, q, SAMPLE_RATE)
			peak := 0.0
			for i := range SAMPLE_RATE / 10 {
				x := oscillatorSample(WAVE_SQUARE, math.Mod(float64(i)*1000/SAMPLE_RATE, 1))
				y := bq.process(x)
				if math.IsNaN(y) || math.IsInf(y, 0) {
					t.Fatalf("%v q=%v diverged at sample %d", ft, q, i)
				}
				peak = math.Max(peak, math.Abs(y))
			}
			if peak > 50 {
				t.Fatalf("%v q=%v peak %v", ft, q, peak)
			}
		}
	}
}

func TestBiquadDCResponse(t *testing.T) {
	cases := []struct {
		ft   FilterType
		want float64
	}{
		{FILTER_LOWPASS, 1},
		{FILTER_HIGHPASS, 0},
		{FILTER_BANDPASS, 0},
	}
	for _, tc := range cases {
		var bq biquad
		bq.setCoefficients(tc.ft, 1000, DEFAULT_FILTER_Q, SAMPLE_RATE)
		var y float64
		for range SAMPLE_RATE {
			y = bq.process(1)
		}
		if !approx(y, tc.want, 1e-6) {
			t.Fatalf("%v DC gain = %v, want %v", tc.ft, y, tc.want)
		}
	}
}

func TestRendererOffsetAndWindow(t *testing.T) {
	// A graph scheduled at t=1s renders nothing before its start sample.
	g := BuildGraph(DefaultSimpleParams(), 1, 1)
	r := newGraphRenderer(g, SAMPLE_RATE)
	out := make([]float32, 256)
	r.Render(out, 0)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d = %v before start", i, s)
		}
	}
	if r.Done(SAMPLE_RATE) {
		t.Fatal("renderer done at its start")
	}
	if !r.Done(int64(math.Ceil(g.End()*SAMPLE_RATE)) + 1) {
		t.Fatal("renderer not done after end")
	}
}

func TestVibratoModulatesPitch(t *testing.T) {
	g := &Graph{Duration: 1, OutputGain: 1}
	o := newOscillator(WAVE_SINE, 440, 0, 0, 1)
	o.Vibrato = &Vibrato{Rate: 5, Depth: 50, StartTime: 0, StopTime: 1}
	g.Voices = append(g.Voices, &Voice{Osc: o, Gain: NewParam(1), Bus: NO_BUS})
	vs := voiceState{voice: g.Voices[0]}

	// Phase advance over one quarter vibrato cycle exceeds the unmodulated
	// advance because detune is positive there.
	n := SAMPLE_RATE / 20
	var phase float64
	for i := range n {
		before := vs.phase
		vs.sample(float64(i)/SAMPLE_RATE, SAMPLE_RATE)
		d := vs.phase - before
		if d < 0 {
			d += 1
		}
		phase += d
	}
	plain := 440.0 * float64(n) / SAMPLE_RATE
	if phase <= plain {
		t.Fatalf("phase advance %v, want > %v", phase, plain)
	}
}
