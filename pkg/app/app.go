package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zurustar/mtrk/pkg/cli"
	"github.com/zurustar/mtrk/pkg/fileutil"
	"github.com/zurustar/mtrk/pkg/logger"
	"github.com/zurustar/mtrk/pkg/player"
	"github.com/zurustar/mtrk/pkg/roll"
	"github.com/zurustar/mtrk/pkg/smf"
	"github.com/zurustar/mtrk/pkg/synth"
)

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config *cli.Config
	log    *slog.Logger
	stdout io.Writer
}

// New Applicationを作成
func New() *Application {
	return &Application{stdout: os.Stdout}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp || app.config.Command == "" {
		cli.PrintHelp()
		return nil
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.log.Debug("Application started", "command", app.config.Command)

	// 3. 入力MIDIファイルの読み込みとデコード
	file, err := app.loadInput()
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}

	// 4. サブコマンドの実行
	if err := app.dispatch(file); err != nil {
		return fmt.Errorf("%s: %w", app.config.Command, err)
	}

	app.log.Debug("Application terminated normally")
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	if err := logger.InitLogger(app.config.LogLevel); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// loadInput 入力MIDIファイルを読み込んでデコードする
func (app *Application) loadInput() (*smf.File, error) {
	if app.config.Input == "" {
		return nil, fmt.Errorf("no input file (run with --help for usage)")
	}

	// 古いアーカイブ由来のファイル名は大文字小文字が当てにならない
	actualPath, err := fileutil.FindFileInsensitive(app.config.Input)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(actualPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", actualPath, err)
	}

	file, err := smf.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", actualPath, err)
	}

	app.log.Info("MIDI file decoded", "path", actualPath,
		"format", file.Format, "tracks", len(file.Tracks), "ticks_per_beat", file.TicksPerBeat)
	return file, nil
}

// requireOutput 出力パスが指定されていることを確認する
func (app *Application) requireOutput() (string, error) {
	if app.config.Output == "" {
		return "", fmt.Errorf("command %s needs an output path", app.config.Command)
	}
	return app.config.Output, nil
}

// dispatch サブコマンドを実行する
func (app *Application) dispatch(file *smf.File) error {
	switch app.config.Command {
	case "info":
		return runInfo(app.stdout, file)

	case "dump":
		return runDump(app.stdout, file)

	case "recode":
		out, err := app.requireOutput()
		if err != nil {
			return err
		}
		return app.writeEncoded(file, out)

	case "flatten":
		out, err := app.requireOutput()
		if err != nil {
			return err
		}
		abs, err := file.ToAbsolute()
		if err != nil {
			return err
		}
		flat, err := abs.ToRelative()
		if err != nil {
			return err
		}
		app.log.Info("Tempo map flattened", "tempo_us_per_beat", flat.InitialTempo())
		return app.writeEncoded(flat, out)

	case "roll":
		out, err := app.requireOutput()
		if err != nil {
			return err
		}
		w, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer w.Close()
		opts := roll.Options{Width: app.config.Width, Height: app.config.Height}
		if err := roll.WritePNG(w, file, opts); err != nil {
			return err
		}
		app.log.Info("Piano roll written", "path", out,
			"width", opts.Width, "height", opts.Height)
		return nil

	case "render":
		out, err := app.requireOutput()
		if err != nil {
			return err
		}
		soundFont, err := app.loadSoundFont()
		if err != nil {
			return err
		}
		rate := int32(app.config.SampleRate)
		left, right, err := synth.Render(file, soundFont, rate)
		if err != nil {
			return err
		}
		w, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer w.Close()
		if err := synth.WriteWAV(w, rate, synth.Interleave(left, right)); err != nil {
			return err
		}
		app.log.Info("WAV written", "path", out, "sample_rate", rate, "samples", len(left))
		return nil

	case "play":
		soundFont, err := app.loadSoundFont()
		if err != nil {
			return err
		}
		p, err := player.New(soundFont)
		if err != nil {
			return err
		}
		duration, err := file.Duration()
		if err != nil {
			return err
		}
		app.log.Info("Playing", "path", app.config.Input, "duration", duration)
		return p.Play(file)

	default:
		// cli.ParseArgsが検証済みなのでここには来ない
		return fmt.Errorf("unknown command: %s", app.config.Command)
	}
}

// writeEncoded ファイルをエンコードして書き出す
func (app *Application) writeEncoded(file *smf.File, path string) error {
	data, err := smf.Encode(file)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	app.log.Info("MIDI file written", "path", path, "bytes", len(data))
	return nil
}
