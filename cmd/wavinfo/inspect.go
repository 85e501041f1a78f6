// inspect.go - WAV header and level summary

package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var errNotWAV = errors.New("not a RIFF/WAVE file")

// Info summarises one WAV file.
type Info struct {
	Format     uint16
	Channels   int
	SampleRate int
	BitDepth   int
	Frames     int
	Duration   time.Duration
	Peak       float64 // full scale = 1
	RMS        float64
	Clipped    int // samples at either rail
}

// Inspect decodes every PCM frame of r.
func Inspect(r io.ReadSeeker) (Info, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return Info{}, errNotWAV
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Info{}, fmt.Errorf("decode: %w", err)
	}
	info := Info{
		Format:   d.WavAudioFormat,
		BitDepth: int(d.BitDepth),
	}
	if buf.Format != nil {
		info.Channels = buf.Format.NumChannels
		info.SampleRate = buf.Format.SampleRate
	}
	if info.Channels > 0 {
		info.Frames = len(buf.Data) / info.Channels
	}
	if info.SampleRate > 0 {
		info.Duration = time.Duration(float64(info.Frames) / float64(info.SampleRate) * float64(time.Second))
	}
	summarise(&info, buf)
	return info, nil
}

func summarise(info *Info, buf *audio.IntBuffer) {
	if info.BitDepth <= 0 || len(buf.Data) == 0 {
		return
	}
	pos := float64(audio.IntMaxSignedValue(info.BitDepth))
	neg := pos + 1
	var sum float64
	for _, v := range buf.Data {
		var f float64
		if v < 0 {
			f = float64(v) / neg
		} else {
			f = float64(v) / pos
		}
		info.Peak = math.Max(info.Peak, math.Abs(f))
		sum += f * f
		if float64(v) >= pos || float64(v) <= -neg {
			info.Clipped++
		}
	}
	info.RMS = math.Sqrt(sum / float64(len(buf.Data)))
}

func (i Info) String() string {
	return fmt.Sprintf("format=%d channels=%d rate=%d bits=%d frames=%d duration=%s peak=%.4f (%.1f dBFS) rms=%.4f clipped=%d",
		i.Format, i.Channels, i.SampleRate, i.BitDepth, i.Frames, i.Duration.Round(time.Millisecond),
		i.Peak, dbfs(i.Peak), i.RMS, i.Clipped)
}

func dbfs(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}
