package synth

import (
	"errors"
	"os"
	"testing"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/zurustar/mtrk/pkg/smf"
)

// loadTestSoundFont loads a SoundFont for synthesis tests, skipping the
// test when none is available. Set SOUNDFONT to point at an SF2 file.
func loadTestSoundFont(t *testing.T) *meltysynth.SoundFont {
	t.Helper()

	path := os.Getenv("SOUNDFONT")
	if path == "" {
		path = "GeneralUser-GS.sf2"
	}
	if _, err := os.Stat(path); err != nil {
		t.Skipf("SoundFont not available (set SOUNDFONT): %v", err)
	}

	soundFont, err := LoadSoundFont(path)
	if err != nil {
		t.Fatalf("LoadSoundFont failed: %v", err)
	}
	return soundFont
}

func testFile() *smf.File {
	return &smf.File{
		Format:       0,
		TicksPerBeat: 480,
		TimeMode:     smf.DeltaTicks,
		Tracks: []smf.Track{{
			{Time: 0, Message: smf.MetaTempo{MicrosPerBeat: 500000}},
			{Time: 0, Message: smf.ProgramChange{Channel: 0, Program: 0}},
			{Time: 0, Message: smf.NoteOn{Channel: 0, Key: 60, Velocity: 100}},
			{Time: 480, Message: smf.NoteOff{Channel: 0, Key: 60, Velocity: 64}},
			{Time: 0, Message: smf.MetaEndOfTrack{}},
		}},
	}
}

func TestLoadSoundFont_Missing(t *testing.T) {
	_, err := LoadSoundFont("")
	if !errors.Is(err, ErrNoSoundFont) {
		t.Errorf("empty path: err = %v, want ErrNoSoundFont", err)
	}

	_, err = LoadSoundFont("/nonexistent/font.sf2")
	if !errors.Is(err, ErrSoundFontNotFound) {
		t.Errorf("missing file: err = %v, want ErrSoundFontNotFound", err)
	}
}

func TestRender_RequiresSoundFont(t *testing.T) {
	_, _, err := Render(testFile(), nil, 44100)
	if !errors.Is(err, ErrNoSoundFont) {
		t.Errorf("err = %v, want ErrNoSoundFont", err)
	}
}

func TestRender_RequiresDeltaTicks(t *testing.T) {
	soundFont := loadTestSoundFont(t)

	abs, err := testFile().ToAbsolute()
	if err != nil {
		t.Fatalf("ToAbsolute failed: %v", err)
	}
	if _, _, err := Render(abs, soundFont, 44100); !errors.Is(err, smf.ErrWrongTimeMode) {
		t.Errorf("err = %v, want ErrWrongTimeMode", err)
	}
}

func TestRender_ProducesAudio(t *testing.T) {
	soundFont := loadTestSoundFont(t)

	left, right, err := Render(testFile(), soundFont, 44100)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// 1拍のノート + テールで少なくとも1秒分はあるはず
	if len(left) < 44100 || len(left) != len(right) {
		t.Fatalf("sample counts: left=%d right=%d", len(left), len(right))
	}

	// 無音でないこと
	silent := true
	for _, s := range left {
		if s != 0 {
			silent = false
			break
		}
	}
	if silent {
		t.Error("rendered audio is all zeros")
	}
}
