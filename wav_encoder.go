// wav_encoder.go - Canonical 16-bit PCM WAV encoding and decoding

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/go-audio/wav"
)

const (
	WAV_HEADER_SIZE      = 44
	WAV_FMT_CHUNK_SIZE   = 16
	WAV_FORMAT_PCM       = 1
	WAV_MONO_CHANNELS    = 1
	WAV_BITS_PER_SAMPLE  = 16
	WAV_BYTES_PER_SAMPLE = WAV_BITS_PER_SAMPLE / 8

	PCM_NEG_SCALE = 32768
	PCM_POS_SCALE = 32767
)

var ErrNotWAV = errors.New("not a PCM WAV file")

// EncodeWAV serializes mono samples as a 44-byte-header 16-bit PCM WAV.
// Samples are clamped to [-1,1]; negatives scale by 32768, the rest by 32767.
func EncodeWAV(samples []float32, sampleRate int) []byte {
	dataSize := uint32(len(samples) * WAV_BYTES_PER_SAMPLE)
	blockAlign := uint16(WAV_MONO_CHANNELS * WAV_BYTES_PER_SAMPLE)

	var buf bytes.Buffer
	buf.Grow(WAV_HEADER_SIZE + int(dataSize))

	// RIFF header
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(WAV_HEADER_SIZE-8)+dataSize)
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(WAV_FMT_CHUNK_SIZE))
	binary.Write(&buf, binary.LittleEndian, uint16(WAV_FORMAT_PCM))
	binary.Write(&buf, binary.LittleEndian, uint16(WAV_MONO_CHANNELS))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate)*uint32(blockAlign)) // Bytes/sec
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, uint16(WAV_BITS_PER_SAMPLE))

	// data chunk
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)

	pcm := make([]byte, WAV_BYTES_PER_SAMPLE)
	for _, s := range samples {
		binary.LittleEndian.PutUint16(pcm, uint16(floatToPCM(s)))
		buf.Write(pcm)
	}
	return buf.Bytes()
}

func floatToPCM(s float32) int16 {
	v := math.Max(-1, math.Min(1, float64(s)))
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return int16(v * PCM_NEG_SCALE)
	}
	return int16(v * PCM_POS_SCALE)
}

func pcmToFloat(v int) float32 {
	if v < 0 {
		return float32(v) / PCM_NEG_SCALE
	}
	return float32(v) / PCM_POS_SCALE
}

// DecodeWAV reads 16-bit PCM WAV data. Stereo input is averaged to mono;
// chunks other than fmt and data are skipped.
func DecodeWAV(data []byte) (*AudioBuffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, ErrNotWAV
	}
	if dec.WavAudioFormat != WAV_FORMAT_PCM || dec.BitDepth != WAV_BITS_PER_SAMPLE {
		return nil, fmt.Errorf("%w: format %d, %d bits", ErrNotWAV, dec.WavAudioFormat, dec.BitDepth)
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}

	channels := pcm.Format.NumChannels
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrNotWAV, channels)
	}

	out := &AudioBuffer{SampleRate: pcm.Format.SampleRate, Channels: 1}
	frames := len(pcm.Data) / channels
	out.Samples = make([]float32, frames)
	for i := 0; i < frames; i++ {
		if channels == 2 {
			out.Samples[i] = (pcmToFloat(pcm.Data[2*i]) + pcmToFloat(pcm.Data[2*i+1])) / 2
		} else {
			out.Samples[i] = pcmToFloat(pcm.Data[i])
		}
	}
	return out, nil
}

// WriteWAVFile encodes buf and replaces path atomically.
func WriteWAVFile(path string, buf *AudioBuffer) error {
	if buf.Channels > 1 {
		return fmt.Errorf("wav: %d channel buffers unsupported", buf.Channels)
	}
	return writeFileAtomic(path, EncodeWAV(buf.Samples, buf.SampleRate))
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// ExportFilename derives "<slug>.wav" from a display name.
func ExportFilename(name string) string {
	slug := strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "sound"
	}
	return slug + ".wav"
}
