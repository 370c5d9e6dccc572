// Package voice implements the speech playback path: an accumulator
// that collects streamed PCM fragments and converts them into a
// playable WAV stream, and a coordinator that drives a playback sink
// to completion.
package voice

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Format describes raw PCM audio: little-endian signed integer
// samples, interleaved when multi-channel.
type Format struct {
	SampleRate     int
	Channels       int
	BytesPerSample int
}

// DefaultFormat matches the PCM stream produced by the speech
// synthesis provider: 24 kHz, mono, 16-bit.
var DefaultFormat = Format{SampleRate: 24000, Channels: 1, BytesPerSample: 2}

// Errors.
var (
	ErrFinalized = fmt.Errorf("voice: accumulator already finalized")
)

// Accumulator collects raw PCM fragments in arrival order and, once
// the stream is complete, wraps them into a WAV container. It is
// single-use: all writes happen before the one terminal Finalize, and
// it is not safe for concurrent use.
type Accumulator struct {
	format    Format
	buf       bytes.Buffer
	finalized bool
}

// NewAccumulator creates an accumulator for the given PCM format.
func NewAccumulator(f Format) *Accumulator {
	if f.SampleRate <= 0 || f.Channels <= 0 || f.BytesPerSample <= 0 {
		f = DefaultFormat
	}
	return &Accumulator{format: f}
}

// Write appends a PCM fragment. Fragments are kept in arrival order.
// Returns ErrFinalized if the accumulator was already converted.
func (a *Accumulator) Write(chunk []byte) error {
	if a.finalized {
		return ErrFinalized
	}
	a.buf.Write(chunk)
	return nil
}

// Len returns the number of raw PCM bytes accumulated so far.
func (a *Accumulator) Len() int { return a.buf.Len() }

// SampleCount returns the number of samples accumulated so far.
func (a *Accumulator) SampleCount() int {
	return a.buf.Len() / a.format.BytesPerSample
}

// Format returns the fixed format descriptor.
func (a *Accumulator) Format() Format { return a.format }

// Finalize reinterprets the accumulated bytes according to the format
// descriptor and returns a WAV stream a player can consume. The
// accumulator is consumed: further writes and a second Finalize fail
// with ErrFinalized.
func (a *Accumulator) Finalize() (io.Reader, error) {
	if a.finalized {
		return nil, ErrFinalized
	}
	a.finalized = true

	pcm := a.buf.Bytes()
	out := make([]byte, 0, 44+len(pcm))
	out = append(out, wavHeader(a.format, len(pcm))...)
	out = append(out, pcm...)
	return bytes.NewReader(out), nil
}

// wavHeader builds a canonical 44-byte RIFF/WAVE header for PCM data
// of the given byte length.
func wavHeader(f Format, dataLen int) []byte {
	var h [44]byte
	byteRate := f.SampleRate * f.Channels * f.BytesPerSample
	blockAlign := f.Channels * f.BytesPerSample

	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+dataLen))
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(h[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(h[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(h[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:36], uint16(f.BytesPerSample*8))
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataLen))
	return h[:]
}
