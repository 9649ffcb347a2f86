// Package synth renders a decoded MIDI file to PCM audio using the
// go-meltysynth software synthesizer.
package synth

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/zurustar/mtrk/pkg/smf"
)

// DefaultSampleRate is the sample rate used when the caller does not ask
// for another one.
const DefaultSampleRate = 44100

// renderTail is rendered past the last event so that releases and reverb
// are not cut off, in seconds.
const renderTail = 1

// ErrNoSoundFont is returned when no SoundFont file is provided.
var ErrNoSoundFont = errors.New("SoundFont file is required for MIDI synthesis")

// ErrSoundFontNotFound is returned when the SoundFont file cannot be found.
var ErrSoundFontNotFound = errors.New("SoundFont file not found")

// LoadSoundFont reads and parses a SoundFont (SF2) file.
func LoadSoundFont(path string) (*meltysynth.SoundFont, error) {
	if path == "" {
		return nil, ErrNoSoundFont
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSoundFontNotFound, path)
		}
		return nil, fmt.Errorf("failed to read SoundFont file: %w", err)
	}

	soundFont, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SoundFont: %w", err)
	}
	return soundFont, nil
}

// Render synthesizes the whole file to stereo float32 PCM. The file is
// re-encoded to Standard MIDI File bytes and fed to the meltysynth
// sequencer, so it must be encodable (DeltaTicks form).
func Render(f *smf.File, soundFont *meltysynth.SoundFont, sampleRate int32) (left, right []float32, err error) {
	if soundFont == nil {
		return nil, nil, ErrNoSoundFont
	}
	if sampleRate <= 0 {
		return nil, nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	data, err := smf.Encode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode MIDI data: %w", err)
	}

	midi, err := meltysynth.NewMidiFile(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse MIDI data: %w", err)
	}

	settings := meltysynth.NewSynthesizerSettings(sampleRate)
	synthesizer, err := meltysynth.NewSynthesizer(soundFont, settings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}

	sequencer := meltysynth.NewMidiFileSequencer(synthesizer)
	sequencer.Play(midi, false)

	length := midi.GetLength()
	samples := int(length.Seconds()*float64(sampleRate)) + int(sampleRate)*renderTail

	left = make([]float32, samples)
	right = make([]float32, samples)
	sequencer.Render(left, right)
	return left, right, nil
}

// Interleave converts stereo float32 PCM to interleaved 16-bit samples.
func Interleave(left, right []float32) []int16 {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	out := make([]int16, 2*n)
	for i := 0; i < n; i++ {
		out[2*i] = int16(clamp(left[i], -1, 1) * 32767)
		out[2*i+1] = int16(clamp(right[i], -1, 1) * 32767)
	}
	return out
}

// clamp restricts a value to the range [min, max].
func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
