// Package smf implements a Standard MIDI File (SMF) decoder and encoder.
//
// SMFは4バイトのタグと32ビット長からなるチャンクの並びで、先頭のMThd
// チャンク(ヘッダ)に続いて各トラックのMTrkチャンクが並ぶ。トラック内の
// 各イベントは可変長数値のデルタ時刻を持ち、ステータスバイトが省略された
// 場合は直前のチャンネルボイスステータスを引き継ぐ(ランニングステータス)。
//
// 時間表現は2種類あり、Fileは常にどちらか一方の形式を取る:
//   - DeltaTicks: デコード直後の形式。イベント時刻は直前イベントからのティック差
//   - AbsoluteMicros: ToAbsoluteの結果。イベント時刻はファイル先頭からのマイクロ秒
//
// SMPTE形式のタイムディビジョン(ヘッダのdivisionの最上位ビットが立って
// いるもの)はサポートしない。
package smf

// TimeMode identifies how Event.Time values in a File are interpreted.
type TimeMode int

const (
	// DeltaTicks means Event.Time is the tick distance from the previous
	// event in the same track. Decode always produces this form and
	// Encode requires it.
	DeltaTicks TimeMode = iota

	// AbsoluteMicros means Event.Time is microseconds from the start of
	// the file. ToAbsolute produces this form.
	AbsoluteMicros
)

func (m TimeMode) String() string {
	switch m {
	case DeltaTicks:
		return "delta ticks"
	case AbsoluteMicros:
		return "absolute microseconds"
	default:
		return "unknown"
	}
}

// DefaultTempo is the tempo assumed when a file carries no tempo event,
// in microseconds per beat (120 bpm).
const DefaultTempo uint32 = 500000

// PercussionChannel is the general MIDI drum channel.
const PercussionChannel uint8 = 9

// File is a decoded Standard MIDI File.
type File struct {
	Format       uint16   // SMFフォーマット(0/1/2)。中身の解釈には使わない
	TicksPerBeat uint16   // 4分音符あたりのティック数
	TimeMode     TimeMode // Event.Timeの解釈
	Tracks       []Track
}

// Track is an ordered list of events.
type Track []Event

// Event pairs a time value with a message. How Time is interpreted is
// determined by the TimeMode of the containing File.
type Event struct {
	Time    uint64
	Message Message
}
