// synth_render.go - Sample-accurate rendering of scheduled graphs

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import "math"

const (
	SAMPLE_RATE            = 44100
	FILTER_UPDATE_INTERVAL = 32 // Samples between coefficient refreshes
	TWO_PI                 = 2 * math.Pi
)

// AudioBuffer is a rendered block of float samples. Samples are interleaved
// when Channels > 1.
type AudioBuffer struct {
	SampleRate int
	Channels   int
	Samples    []float32
}

// Frames is the number of samples per channel.
func (b *AudioBuffer) Frames() int {
	if b.Channels <= 1 {
		return len(b.Samples)
	}
	return len(b.Samples) / b.Channels
}

func (b *AudioBuffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

func (b *AudioBuffer) Peak() float64 {
	peak := 0.0
	for _, s := range b.Samples {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	return peak
}

func (b *AudioBuffer) RMS() float64 {
	if len(b.Samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range b.Samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(b.Samples)))
}

// biquad is a direct form I filter using the BiquadFilterNode coefficient
// formulas: lowpass and highpass read Q in dB, bandpass reads it linearly.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (bq *biquad) setCoefficients(t FilterType, freq, q, sampleRate float64) {
	nyquist := sampleRate / 2
	freq = math.Max(1, math.Min(freq, nyquist*0.999))
	w0 := TWO_PI * freq / sampleRate
	sinW, cosW := math.Sincos(w0)

	var b0, b1, b2, a0, a1, a2 float64
	switch t {
	case FILTER_HIGHPASS:
		alpha := sinW / (2 * math.Pow(10, q/20))
		b0 = (1 + cosW) / 2
		b1 = -(1 + cosW)
		b2 = (1 + cosW) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW
		a2 = 1 - alpha
	case FILTER_BANDPASS:
		alpha := sinW / (2 * math.Max(q, 0.0001))
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cosW
		a2 = 1 - alpha
	default:
		alpha := sinW / (2 * math.Pow(10, q/20))
		b0 = (1 - cosW) / 2
		b1 = 1 - cosW
		b2 = (1 - cosW) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW
		a2 = 1 - alpha
	}

	bq.b0 = b0 / a0
	bq.b1 = b1 / a0
	bq.b2 = b2 / a0
	bq.a1 = a1 / a0
	bq.a2 = a2 / a0
}

func (bq *biquad) process(x float64) float64 {
	y := bq.b0*x + bq.b1*bq.x1 + bq.b2*bq.x2 - bq.a1*bq.y1 - bq.a2*bq.y2
	bq.x2, bq.x1 = bq.x1, x
	bq.y2, bq.y1 = bq.y1, y
	return y
}

type filterState struct {
	node      *FilterNode
	bq        biquad
	countdown int
}

func (f *filterState) process(x, t, sampleRate float64) float64 {
	if f.countdown <= 0 {
		f.bq.setCoefficients(f.node.Type, f.node.Frequency.At(t), f.node.Q.At(t), sampleRate)
		f.countdown = FILTER_UPDATE_INTERVAL
	}
	f.countdown--
	return f.bq.process(x)
}

type voiceState struct {
	voice  *Voice
	phase  float64
	insert *filterState
}

func oscillatorSample(w Waveform, phase float64) float64 {
	switch w {
	case WAVE_SQUARE:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WAVE_SAWTOOTH:
		p := phase + 0.5
		return 2*(p-math.Floor(p)) - 1
	case WAVE_TRIANGLE:
		p := phase + 0.25
		return 1 - 4*math.Abs(p-math.Floor(p)-0.5)
	}
	return math.Sin(TWO_PI * phase)
}

func (vs *voiceState) sample(t, sampleRate float64) float64 {
	osc := vs.voice.Osc
	cents := osc.Detune.At(t)
	if vib := osc.Vibrato; vib != nil && t >= vib.StartTime && t < vib.StopTime {
		cents += vib.Depth * math.Sin(TWO_PI*vib.Rate*(t-vib.StartTime))
	}
	freq := osc.Frequency.At(t)
	if cents != 0 {
		freq *= math.Pow(2, cents/1200)
	}

	s := oscillatorSample(osc.Type, vs.phase)
	vs.phase += freq / sampleRate
	vs.phase -= math.Floor(vs.phase)

	if vs.insert != nil {
		s = vs.insert.process(s, t, sampleRate)
	}
	return s * vs.voice.Gain.At(t)
}

// graphRenderer holds the running state of one Graph: oscillator phases and
// filter histories. Positions are absolute sample indices on the clock the
// graph was scheduled against.
type graphRenderer struct {
	graph      *Graph
	sampleRate float64
	voices     []voiceState
	buses      []filterState
	busIn      []float64
	startPos   int64
	endPos     int64
}

func newGraphRenderer(g *Graph, sampleRate int) *graphRenderer {
	sr := float64(sampleRate)
	r := &graphRenderer{
		graph:      g,
		sampleRate: sr,
		voices:     make([]voiceState, len(g.Voices)),
		buses:      make([]filterState, len(g.Buses)),
		busIn:      make([]float64, len(g.Buses)),
		startPos:   int64(math.Floor(g.Start * sr)),
		endPos:     int64(math.Ceil(g.End() * sr)),
	}
	for i, v := range g.Voices {
		r.voices[i].voice = v
		if v.Insert != nil {
			r.voices[i].insert = &filterState{node: v.Insert}
		}
	}
	for i, b := range g.Buses {
		r.buses[i].node = b
	}
	return r
}

// Done reports whether every node has stopped by pos.
func (r *graphRenderer) Done(pos int64) bool {
	return pos >= r.endPos
}

// Render adds the graph output for samples [pos, pos+len(out)) into out.
func (r *graphRenderer) Render(out []float32, pos int64) {
	gain := r.graph.OutputGain
	for i := range out {
		abs := pos + int64(i)
		if abs < r.startPos || abs >= r.endPos {
			continue
		}
		t := float64(abs) / r.sampleRate

		for b := range r.busIn {
			r.busIn[b] = 0
		}
		direct := 0.0
		for v := range r.voices {
			vs := &r.voices[v]
			osc := vs.voice.Osc
			if t < osc.StartTime || t >= osc.StopTime {
				continue
			}
			s := vs.sample(t, r.sampleRate)
			if bus := vs.voice.Bus; bus >= 0 && bus < len(r.buses) {
				r.busIn[bus] += s
			} else {
				direct += s
			}
		}
		for b := range r.buses {
			direct += r.buses[b].process(r.busIn[b], t, r.sampleRate)
		}
		out[i] += float32(direct * gain)
	}
}

// RenderGraph renders g offline into a fresh mono buffer of length samples
// starting at clock position zero.
func RenderGraph(g *Graph, sampleRate, length int) *AudioBuffer {
	buf := &AudioBuffer{SampleRate: sampleRate, Channels: 1, Samples: make([]float32, length)}
	newGraphRenderer(g, sampleRate).Render(buf.Samples, 0)
	for i, s := range buf.Samples {
		buf.Samples[i] = float32(math.Max(-1, math.Min(1, float64(s))))
	}
	return buf
}
