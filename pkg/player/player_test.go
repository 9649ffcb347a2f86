package player

import (
	"errors"
	"testing"

	"github.com/zurustar/mtrk/pkg/synth"
)

func TestStream_SilenceWithoutSequencer(t *testing.T) {
	s := NewStream(nil)

	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = 0xaa
	}

	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("Read returned %d, want %d", n, len(buf))
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d = 0x%02x, want 0", i, b)
		}
	}

	// シーケンサなしでは進まない
	if got := s.SampleCount(); got != 0 {
		t.Errorf("SampleCount = %d, want 0", got)
	}
}

func TestStream_StoppedReturnsSilence(t *testing.T) {
	s := NewStream(nil)
	s.Stop()

	buf := make([]byte, 16)
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != len(buf) {
		t.Errorf("Read returned %d, want %d", n, len(buf))
	}
}

func TestNew_RequiresSoundFont(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, synth.ErrNoSoundFont) {
		t.Errorf("err = %v, want ErrNoSoundFont", err)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in   float32
		want float32
	}{
		{-2, -1},
		{-1, -1},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{3, 1},
	}
	for _, tt := range tests {
		if got := clamp(tt.in, -1, 1); got != tt.want {
			t.Errorf("clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
