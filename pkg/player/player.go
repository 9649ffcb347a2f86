// Package player plays a decoded MIDI file through the speakers using
// go-meltysynth for synthesis and Ebitengine/audio for output.
package player

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/zurustar/mtrk/pkg/smf"
	"github.com/zurustar/mtrk/pkg/synth"
)

// SampleRate is the audio sample rate used for playback.
const SampleRate = 44100

// Stream implements io.Reader for Ebitengine/audio. It renders 16-bit
// interleaved stereo samples from the MIDI sequencer on demand.
type Stream struct {
	sequencer   *meltysynth.MidiFileSequencer
	sampleCount int64
	stopped     bool
	mu          sync.Mutex
}

// NewStream wraps a sequencer in an audio stream.
func NewStream(sequencer *meltysynth.MidiFileSequencer) *Stream {
	return &Stream{sequencer: sequencer}
}

// Read renders the next chunk of audio. A stopped stream (or one without
// a sequencer) produces silence instead of returning an error, so the
// audio player drains cleanly.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.sequencer == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	// 16ビットステレオなので1サンプル4バイト
	samples := len(p) / 4
	if samples == 0 {
		return 0, nil
	}

	left := make([]float32, samples)
	right := make([]float32, samples)
	s.sequencer.Render(left, right)
	s.sampleCount += int64(samples)

	for i := 0; i < samples; i++ {
		l := int16(clamp(left[i], -1, 1) * 32767)
		r := int16(clamp(right[i], -1, 1) * 32767)
		binary.LittleEndian.PutUint16(p[i*4:], uint16(l))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(r))
	}

	return len(p), nil
}

// Stop makes all further reads return silence.
func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// SampleCount returns the total number of samples rendered so far.
func (s *Stream) SampleCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleCount
}

func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Player plays MIDI files through one Ebitengine audio context. The
// context is created once and reused; Ebitengine allows only one per
// process.
type Player struct {
	soundFont *meltysynth.SoundFont
	audioCtx  *audio.Context
}

// New creates a player that synthesizes with the given SoundFont.
func New(soundFont *meltysynth.SoundFont) (*Player, error) {
	if soundFont == nil {
		return nil, synth.ErrNoSoundFont
	}
	return &Player{
		soundFont: soundFont,
		audioCtx:  audio.NewContext(SampleRate),
	}, nil
}

// Play plays the whole file and blocks until playback finishes. The file
// is re-encoded to Standard MIDI File bytes for the meltysynth sequencer,
// so it must be encodable (DeltaTicks form).
func (p *Player) Play(f *smf.File) error {
	data, err := smf.Encode(f)
	if err != nil {
		return fmt.Errorf("failed to encode MIDI data: %w", err)
	}

	midi, err := meltysynth.NewMidiFile(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse MIDI data: %w", err)
	}

	settings := meltysynth.NewSynthesizerSettings(SampleRate)
	synthesizer, err := meltysynth.NewSynthesizer(p.soundFont, settings)
	if err != nil {
		return fmt.Errorf("failed to create synthesizer: %w", err)
	}

	sequencer := meltysynth.NewMidiFileSequencer(synthesizer)
	sequencer.Play(midi, false)
	stream := NewStream(sequencer)

	player, err := p.audioCtx.NewPlayer(stream)
	if err != nil {
		return fmt.Errorf("failed to create audio player: %w", err)
	}
	defer player.Close()

	duration := midi.GetLength()
	player.Play()

	// 再生位置が曲の長さに達するまで待つ。リリース分だけ余韻を残す
	for player.Position() < duration {
		time.Sleep(50 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)

	stream.Stop()
	return nil
}
