package smf

import (
	"bytes"
	"testing"
	"time"

	gsmf "gitlab.com/gomidi/midi/v2/smf"
)

// oracleNote is one note boundary as seen by the gomidi decoder.
type oracleNote struct {
	track  int
	key    uint8
	micros int64
	start  bool
}

// readWithOracle decodes our encoder's output with the independent gomidi
// decoder and collects note boundaries with their absolute microseconds.
func readWithOracle(t *testing.T, data []byte) []oracleNote {
	t.Helper()

	var notes []oracleNote
	reader := gsmf.ReadTracksFrom(bytes.NewReader(data))
	reader.Do(func(ev gsmf.TrackEvent) {
		var ch, key, vel uint8
		if ev.Message.GetNoteStart(&ch, &key, &vel) {
			notes = append(notes, oracleNote{
				track:  ev.TrackNo,
				key:    key,
				micros: ev.AbsMicroSeconds,
				start:  true,
			})
		} else if ev.Message.GetNoteEnd(&ch, &key) {
			notes = append(notes, oracleNote{
				track:  ev.TrackNo,
				key:    key,
				micros: ev.AbsMicroSeconds,
			})
		}
	})
	if err := reader.Error(); err != nil {
		t.Fatalf("oracle decoder rejected our bytes: %v", err)
	}
	return notes
}

// TestEncodeAgainstOracle encodes a constant-tempo file and checks that an
// independent decoder reads back the same notes at the same microsecond
// positions as our ToAbsolute.
func TestEncodeAgainstOracle(t *testing.T) {
	f := &File{
		Format:       1,
		TicksPerBeat: 480,
		TimeMode:     DeltaTicks,
		Tracks: []Track{
			{
				{Time: 0, Message: MetaTempo{MicrosPerBeat: 500000}},
				{Time: 0, Message: NoteOn{Channel: 0, Key: 60, Velocity: 100}},
				{Time: 480, Message: NoteOff{Channel: 0, Key: 60, Velocity: 64}},
				{Time: 0, Message: NoteOn{Channel: 0, Key: 64, Velocity: 90}},
				{Time: 240, Message: NoteOff{Channel: 0, Key: 64, Velocity: 64}},
				{Time: 0, Message: MetaEndOfTrack{}},
			},
			{
				{Time: 960, Message: NoteOn{Channel: 1, Key: 36, Velocity: 80}},
				{Time: 480, Message: NoteOff{Channel: 1, Key: 36, Velocity: 64}},
				{Time: 0, Message: MetaEndOfTrack{}},
			},
		},
	}

	data, err := Encode(f)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	oracle := readWithOracle(t, data)

	abs, err := f.ToAbsolute()
	if err != nil {
		t.Fatalf("ToAbsolute failed: %v", err)
	}

	var ours []oracleNote
	for ti, track := range abs.Tracks {
		for _, ev := range track {
			switch m := ev.Message.(type) {
			case NoteOn:
				ours = append(ours, oracleNote{track: ti, key: m.Key, micros: int64(ev.Time), start: true})
			case NoteOff:
				ours = append(ours, oracleNote{track: ti, key: m.Key, micros: int64(ev.Time)})
			}
		}
	}

	if len(oracle) != len(ours) {
		t.Fatalf("oracle saw %d note boundaries, we have %d", len(oracle), len(ours))
	}
	for i := range ours {
		if oracle[i] != ours[i] {
			t.Errorf("note boundary %d: oracle %+v, ours %+v", i, oracle[i], ours[i])
		}
	}
}

// TestTempoSweepAgainstOracle checks the multi-tempo timestamp sweep
// against the independent decoder, allowing for sub-millisecond rounding
// differences between implementations.
func TestTempoSweepAgainstOracle(t *testing.T) {
	f := &File{
		Format:       1,
		TicksPerBeat: 480,
		TimeMode:     DeltaTicks,
		Tracks: []Track{
			{
				{Time: 0, Message: MetaTempo{MicrosPerBeat: 500000}},
				{Time: 480, Message: MetaTempo{MicrosPerBeat: 250000}},
				{Time: 0, Message: MetaEndOfTrack{}},
			},
			{
				{Time: 0, Message: NoteOn{Channel: 0, Key: 60, Velocity: 100}},
				{Time: 960, Message: NoteOff{Channel: 0, Key: 60, Velocity: 64}},
				{Time: 0, Message: MetaEndOfTrack{}},
			},
		},
	}

	data, err := Encode(f)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	oracle := readWithOracle(t, data)

	abs, err := f.ToAbsolute()
	if err != nil {
		t.Fatalf("ToAbsolute failed: %v", err)
	}

	// ノートオフはテンポ変更をまたぐ: 500000 + 480*250000/480 = 750000
	if got := abs.Tracks[1][1].Time; got != 750000 {
		t.Fatalf("note off at %d us, want 750000", got)
	}

	var oracleOff *oracleNote
	for i := range oracle {
		if !oracle[i].start {
			oracleOff = &oracle[i]
		}
	}
	if oracleOff == nil {
		t.Fatal("oracle saw no note end")
	}

	diff := time.Duration(oracleOff.micros-750000) * time.Microsecond
	if diff < 0 {
		diff = -diff
	}
	if diff > time.Millisecond {
		t.Errorf("oracle places the note end at %d us, we place it at 750000 (diff %s)",
			oracleOff.micros, diff)
	}
}
