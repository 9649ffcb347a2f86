package smf

import (
	"bytes"
	"math/rand"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// randomMessage returns one encodable message. Note-ons never carry
// velocity 0 (that shape belongs to NoteOff).
func randomMessage(r *rand.Rand) Message {
	switch r.Intn(9) {
	case 0, 1:
		return NoteOn{
			Channel:  uint8(r.Intn(16)),
			Key:      uint8(r.Intn(128)),
			Velocity: uint8(1 + r.Intn(127)),
		}
	case 2:
		return NoteOff{
			Channel:  uint8(r.Intn(16)),
			Key:      uint8(r.Intn(128)),
			Velocity: uint8(r.Intn(128)),
		}
	case 3:
		return ProgramChange{
			Channel: uint8(r.Intn(16)),
			Program: uint8(r.Intn(128)),
		}
	case 4:
		families := []byte{0xa0, 0xb0, 0xd0, 0xe0}
		status := families[r.Intn(len(families))] | byte(r.Intn(16))
		data := make([]byte, channelRawLen[status&0xf0])
		for i := range data {
			data[i] = byte(r.Intn(128))
		}
		return ChannelRaw{Status: status, Data: data}
	case 5:
		data := make([]byte, r.Intn(8))
		for i := range data {
			data[i] = byte(r.Intn(256))
		}
		return SysEx{Status: 0xf0 | byte(r.Intn(8)), Data: data}
	case 6:
		text := make([]byte, r.Intn(12))
		for i := range text {
			text[i] = byte('a' + r.Intn(26))
		}
		return MetaText{Code: byte(1 + r.Intn(15)), Text: text}
	case 7:
		return MetaTempo{MicrosPerBeat: uint32(1 + r.Intn(0xffffff))}
	default:
		codes := []byte{0x00, 0x20, 0x21, 0x54, 0x58, 0x59, 0x7f}
		data := make([]byte, r.Intn(6))
		for i := range data {
			data[i] = byte(r.Intn(256))
		}
		return MetaRaw{Code: codes[r.Intn(len(codes))], Data: data}
	}
}

// randomFile builds an encodable file from a deterministic source.
func randomFile(r *rand.Rand, trackCount, eventsPerTrack int) *File {
	f := &File{
		Format:       uint16(r.Intn(3)),
		TicksPerBeat: uint16(1 + r.Intn(0x7fff)),
		TimeMode:     DeltaTicks,
		Tracks:       make([]Track, trackCount),
	}
	for ti := range f.Tracks {
		track := make(Track, 0, eventsPerTrack+1)
		for range eventsPerTrack {
			track = append(track, Event{
				Time:    uint64(r.Intn(1 << 21)),
				Message: randomMessage(r),
			})
		}
		if r.Intn(2) == 0 {
			track = append(track, Event{Time: 0, Message: MetaEndOfTrack{}})
		}
		f.Tracks[ti] = track
	}
	return f
}

// encodeTrackRunning re-encodes a track emitting running status wherever
// the format allows it, to exercise the decoder's status reuse.
func encodeTrackRunning(track Track) ([]byte, error) {
	var buf []byte
	var last byte
	for _, ev := range track {
		eb, err := appendEvent(nil, ev)
		if err != nil {
			return nil, err
		}
		statusAt := len(AppendVarLen(nil, ev.Time))
		status := eb[statusAt]
		if status < 0xf0 && status == last {
			eb = append(eb[:statusAt], eb[statusAt+1:]...)
		}
		switch {
		case status < 0xf0:
			last = status
		case status <= 0xf7:
			// システムイベントはランニングステータスを無効にする
			last = 0
		}
		buf = append(buf, eb...)
	}
	return buf, nil
}

func TestFileRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("decode(encode(file)) reproduces the file", prop.ForAll(
		func(trackCount, eventsPerTrack int, seed int64) bool {
			f := randomFile(rand.New(rand.NewSource(seed)), trackCount, eventsPerTrack)
			data, err := Encode(f)
			if err != nil {
				t.Logf("Encode failed: %v", err)
				return false
			}
			got, err := Decode(data)
			if err != nil {
				t.Logf("Decode failed: %v", err)
				return false
			}
			return reflect.DeepEqual(f, got)
		},
		gen.IntRange(1, 4),
		gen.IntRange(1, 30),
		gen.Int64(),
	))

	properties.Property("running status compression decodes to the same file", prop.ForAll(
		func(eventsPerTrack int, seed int64) bool {
			f := randomFile(rand.New(rand.NewSource(seed)), 1, eventsPerTrack)
			body, err := encodeTrackRunning(f.Tracks[0])
			if err != nil {
				t.Logf("running-status encode failed: %v", err)
				return false
			}
			compressed := smfBytes(mthd(f.Format, 1, f.TicksPerBeat), mtrk(body...))
			got, err := Decode(compressed)
			if err != nil {
				t.Logf("Decode failed: %v", err)
				return false
			}
			return reflect.DeepEqual(f, got)
		},
		gen.IntRange(1, 50),
		gen.Int64(),
	))

	properties.Property("encode is deterministic across a round trip", prop.ForAll(
		func(trackCount, eventsPerTrack int, seed int64) bool {
			f := randomFile(rand.New(rand.NewSource(seed)), trackCount, eventsPerTrack)
			first, err := Encode(f)
			if err != nil {
				return false
			}
			decoded, err := Decode(first)
			if err != nil {
				return false
			}
			second, err := Encode(decoded)
			if err != nil {
				return false
			}
			return bytes.Equal(first, second)
		},
		gen.IntRange(1, 4),
		gen.IntRange(1, 30),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
