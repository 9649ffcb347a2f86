package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/zurustar/mtrk/pkg/fileutil"
	"github.com/zurustar/mtrk/pkg/synth"
)

// DefaultSoundFontName is the default SoundFont filename to search for.
const DefaultSoundFontName = "GeneralUser-GS.sf2"

// loadSoundFont resolves and parses the SoundFont for render/play.
func (app *Application) loadSoundFont() (*meltysynth.SoundFont, error) {
	path, err := app.findSoundFont()
	if err != nil {
		return nil, err
	}
	app.log.Info("SoundFont selected", "path", path)
	return synth.LoadSoundFont(path)
}

// findSoundFont searches for a SoundFont file in the following order:
// 1. The -sf flag or SOUNDFONT environment variable (merged by cli)
// 2. The default filename in the current directory
// 3. The default filename next to the input file
func (app *Application) findSoundFont() (string, error) {
	if app.config.SoundFont != "" {
		return fileutil.FindFileInsensitive(app.config.SoundFont)
	}

	if path, err := fileutil.FindFileInsensitive(DefaultSoundFontName); err == nil {
		return path, nil
	}

	if app.config.Input != "" {
		inputDir := filepath.Dir(app.config.Input)
		if path, err := fileutil.FindFileCaseInsensitive(inputDir, DefaultSoundFontName); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: pass -sf or set SOUNDFONT (searched for %s in %s)",
		synth.ErrNoSoundFont, DefaultSoundFontName, mustGetwd())
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
