package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	Command    string // サブコマンド（info, dump, recode, flatten, roll, render, play）
	Input      string // 入力MIDIファイルのパス
	Output     string // 出力ファイルのパス（コマンドによっては不要）
	SoundFont  string // SoundFont（SF2）ファイルのパス
	LogLevel   string // ログレベル（debug, info, warn, error）
	SampleRate int    // レンダリングのサンプリング周波数
	Width      int    // ピアノロール画像の幅
	Height     int    // ピアノロール画像の高さ
	ShowHelp   bool   // ヘルプ表示フラグ
}

// Commands は有効なサブコマンドの一覧。
var Commands = []string{"info", "dump", "recode", "flatten", "roll", "render", "play"}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("mtrk", flag.ContinueOnError)

	config := &Config{}

	fs.StringVar(&config.SoundFont, "soundfont", "", "SoundFont（SF2）ファイルのパス")
	fs.StringVar(&config.SoundFont, "sf", "", "SoundFontのパス（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.IntVar(&config.SampleRate, "rate", 44100, "サンプリング周波数（Hz）")
	fs.IntVar(&config.Width, "width", 1280, "ピアノロール画像の幅")
	fs.IntVar(&config.Height, "height", 720, "ピアノロール画像の高さ")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 環境変数からSoundFontを取得（コマンドラインフラグが優先）
	if config.SoundFont == "" {
		config.SoundFont = os.Getenv("SOUNDFONT")
	}

	// 環境変数からログレベルを取得（コマンドラインフラグが優先）
	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	// ログレベルの検証
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", config.SampleRate)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("image size must be positive, got %dx%d", config.Width, config.Height)
	}

	// 位置引数（サブコマンド、入力、出力）
	if fs.NArg() > 0 {
		config.Command = strings.ToLower(fs.Arg(0))
		if !validCommand(config.Command) {
			return nil, fmt.Errorf("unknown command: %s (must be one of %s)",
				config.Command, strings.Join(Commands, ", "))
		}
	}
	if fs.NArg() > 1 {
		config.Input = fs.Arg(1)
	}
	if fs.NArg() > 2 {
		config.Output = fs.Arg(2)
	}
	if fs.NArg() > 3 {
		return nil, fmt.Errorf("too many arguments: %v", fs.Args()[3:])
	}

	return config, nil
}

func validCommand(name string) bool {
	for _, c := range Commands {
		if c == name {
			return true
		}
	}
	return false
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			// 次の引数が値である可能性をチェック
			// （-sf font.sf2 のような場合）
			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				// ブール型フラグでない場合は次の引数も追加
				if arg != "-h" && arg != "--help" {
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp() {
	fmt.Fprintf(os.Stdout, `mtrk - Standard MIDI File toolkit

Usage:
  mtrk <command> [options] <input> [output]

Commands:
  info <in.mid>                 ヘッダ・トラック構成・テンポ・演奏時間を表示
  dump <in.mid>                 全イベントを絶対時刻付きで表示
  recode <in.mid> <out.mid>     デコードして再エンコード（ランニングステータスを展開）
  flatten <in.mid> <out.mid>    テンポマップを単一テンポに平坦化（非可逆）
  roll <in.mid> <out.png>       ピアノロール画像を生成
  render <in.mid> <out.wav>     SoundFontでWAVにレンダリング
  play <in.mid>                 SoundFontで再生（終了まで待つ）

Options:
  -sf, --soundfont <path>     SoundFont（SF2）ファイル（render/playで必要）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  --rate <hz>                 サンプリング周波数（デフォルト: 44100）
  --width <px>                ピアノロール画像の幅（デフォルト: 1280）
  --height <px>               ピアノロール画像の高さ（デフォルト: 720）
  -h, --help                  このヘルプを表示

Environment Variables:
  SOUNDFONT=<path>            SoundFontファイルのパス
  LOG_LEVEL=<level>           ログレベル

Examples:
  mtrk info song.mid
  mtrk recode SONG.MID clean.mid
  mtrk roll --width 1920 --height 1080 song.mid song.png
  mtrk render -sf GeneralUser-GS.sf2 song.mid song.wav
  SOUNDFONT=GeneralUser-GS.sf2 mtrk play song.mid
`)
}
