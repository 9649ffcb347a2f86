package smf

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// InitialTempo returns the tempo in effect at the start of the file: the
// first tempo event of track 0, or DefaultTempo when there is none.
// テンポイベントはどのトラックにあっても全トラックに効くが、慣例として
// 先頭テンポはトラック0に置かれる。
func (f *File) InitialTempo() uint32 {
	if len(f.Tracks) > 0 {
		for _, ev := range f.Tracks[0] {
			if mt, ok := ev.Message.(MetaTempo); ok {
				return mt.MicrosPerBeat
			}
		}
	}
	return DefaultTempo
}

// ToAbsolute returns a copy of the file with every event time expressed
// in microseconds from the start of the file. The input must be in
// DeltaTicks form and is not modified.
//
// A tempo event on any track changes the tempo for all tracks, so the
// conversion merges all tracks into one timeline ordered by absolute
// tick (ties keep track order) and sweeps it once. Microseconds are
// computed with integer floor division from the last tempo change; a
// tempo event takes effect after its own timestamp.
func (f *File) ToAbsolute() (*File, error) {
	if f.TimeMode != DeltaTicks {
		return nil, fmt.Errorf("%w: ToAbsolute requires delta ticks, file is in %s",
			ErrWrongTimeMode, f.TimeMode)
	}
	if f.TicksPerBeat == 0 {
		return nil, fmt.Errorf("%w: ticks per beat is zero", ErrUnsupportedDivision)
	}

	out := &File{
		Format:       f.Format,
		TicksPerBeat: f.TicksPerBeat,
		TimeMode:     AbsoluteMicros,
		Tracks:       make([]Track, len(f.Tracks)),
	}

	// トラックごとにデルタを積算して絶対ティックを求め、全イベントへの
	// 参照を1本にまとめる
	type eventRef struct {
		track, index int
		tick         uint64
	}
	var refs []eventRef
	for ti, track := range f.Tracks {
		out.Tracks[ti] = make(Track, len(track))
		var tick uint64
		for ei, ev := range track {
			tick += ev.Time
			out.Tracks[ti][ei] = Event{Message: ev.Message}
			refs = append(refs, eventRef{track: ti, index: ei, tick: tick})
		}
	}

	// 絶対ティック順に並べる。同時刻はトラック順・トラック内順を保つ
	slices.SortStableFunc(refs, func(a, b eventRef) int {
		return cmp.Compare(a.tick, b.tick)
	})

	tempo := uint64(f.InitialTempo()) // [us/beat]
	tpb := uint64(f.TicksPerBeat)     // [tick/beat]
	var changeTick, changeMicros uint64

	for _, r := range refs {
		micros := changeMicros + (r.tick-changeTick)*tempo/tpb
		out.Tracks[r.track][r.index].Time = micros
		// テンポ変更は自身のタイムスタンプが決まった後に効く
		if mt, ok := out.Tracks[r.track][r.index].Message.(MetaTempo); ok {
			tempo = uint64(mt.MicrosPerBeat)
			changeTick = r.tick
			changeMicros = micros
		}
	}
	return out, nil
}

// ToRelative returns a copy of the file with every event time expressed
// in delta ticks, ready for Encode. The input must be in AbsoluteMicros
// form and is not modified.
//
// The conversion is lossy: it assumes one constant tempo for the whole
// file (the first tempo event of track 0, or DefaultTempo). All tempo
// events are dropped and a single tempo event at time zero is prepended
// to track 0. Tick values are floored, so timings may shift by up to one
// tick.
func (f *File) ToRelative() (*File, error) {
	if f.TimeMode != AbsoluteMicros {
		return nil, fmt.Errorf("%w: ToRelative requires absolute microseconds, file is in %s",
			ErrWrongTimeMode, f.TimeMode)
	}
	if f.TicksPerBeat == 0 {
		return nil, fmt.Errorf("%w: ticks per beat is zero", ErrUnsupportedDivision)
	}
	tempo := uint64(f.InitialTempo()) // [us/beat]
	if tempo == 0 {
		return nil, fmt.Errorf("%w: initial tempo is zero", ErrMalformedEvent)
	}
	tpb := uint64(f.TicksPerBeat) // [tick/beat]

	out := &File{
		Format:       f.Format,
		TicksPerBeat: f.TicksPerBeat,
		TimeMode:     DeltaTicks,
		Tracks:       make([]Track, len(f.Tracks)),
	}

	// テンポイベントを取り除き、決めたテンポのイベント1つをトラック0の
	// 先頭に置き直す
	for ti, track := range f.Tracks {
		events := make(Track, 0, len(track))
		for _, ev := range track {
			if _, ok := ev.Message.(MetaTempo); ok {
				continue
			}
			events = append(events, ev)
		}
		out.Tracks[ti] = events
	}
	if len(out.Tracks) > 0 {
		initial := Event{Time: 0, Message: MetaTempo{MicrosPerBeat: uint32(tempo)}}
		out.Tracks[0] = append(Track{initial}, out.Tracks[0]...)
	}

	// マイクロ秒を切り捨てでティックに割り付け、隣接差分をデルタにする
	for ti, track := range out.Tracks {
		var prevTick uint64
		for ei, ev := range track {
			tick := ev.Time * tpb / tempo
			if tick < prevTick {
				return nil, fmt.Errorf("%w: track %d event %d", ErrUnorderedEvents, ti, ei)
			}
			track[ei].Time = tick - prevTick
			prevTick = tick
		}
	}
	return out, nil
}

// Duration returns the time of the last event in the file. A file in
// DeltaTicks form is converted first.
func (f *File) Duration() (time.Duration, error) {
	abs := f
	if f.TimeMode == DeltaTicks {
		var err error
		abs, err = f.ToAbsolute()
		if err != nil {
			return 0, err
		}
	}
	var last uint64
	for _, track := range abs.Tracks {
		for _, ev := range track {
			if ev.Time > last {
				last = ev.Time
			}
		}
	}
	return time.Duration(last) * time.Microsecond, nil
}
