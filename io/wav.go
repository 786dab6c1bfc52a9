package io

import (
	"io"
	"log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	WAV_SAMPLE_RATE = 44100 // Samples per second.
	WAV_BIT_DEPTH   = 16    // Bits per sample.
	WAV_TONE_HZ     = 440   // Square wave frequency.
	WAV_AMPLITUDE   = 0x2000
	wavFormatPCM    = 1
)

// WavTone records the speaker as a square wave into a WAV stream.
// Each SetTone call appends one tick worth of samples.
type WavTone struct {
	Verbose bool

	encoder *wav.Encoder
	buffer  *audio.IntBuffer
	samples int // Samples per tick.
	phase   int // Sample position within the wave period.
	err     error
}

var _ Speaker = (*WavTone)(nil)

// NewWavTone creates a WAV recorder, ticking at tickRate per second.
func NewWavTone(ws io.WriteSeeker, tickRate int) (wt *WavTone) {
	samples := WAV_SAMPLE_RATE / max(tickRate, 1)

	wt = &WavTone{
		encoder: wav.NewEncoder(ws, WAV_SAMPLE_RATE, WAV_BIT_DEPTH, 1, wavFormatPCM),
		buffer: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: WAV_SAMPLE_RATE},
			Data:           make([]int, samples),
			SourceBitDepth: WAV_BIT_DEPTH,
		},
		samples: samples,
	}

	return
}

// SetTone appends a tick of tone, or of silence.
func (wt *WavTone) SetTone(on bool) {
	if wt.err != nil {
		return
	}

	period := WAV_SAMPLE_RATE / WAV_TONE_HZ
	for n := range wt.buffer.Data {
		value := 0
		if on {
			if wt.phase < period/2 {
				value = WAV_AMPLITUDE
			} else {
				value = -WAV_AMPLITUDE
			}
		}
		wt.buffer.Data[n] = value
		wt.phase = (wt.phase + 1) % period
	}

	wt.err = wt.encoder.Write(wt.buffer)
	if wt.err != nil && wt.Verbose {
		log.Printf("wav: %v", wt.err)
	}
}

// Samples returns the number of samples written per tick.
func (wt *WavTone) Samples() int {
	return wt.samples
}

// Close finishes the WAV stream, returning the first write error.
func (wt *WavTone) Close() (err error) {
	err = wt.encoder.Close()
	if wt.err != nil {
		err = wt.err
	}
	return
}
