package smf

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Encode serializes a file back to Standard MIDI File bytes. The file
// must be in DeltaTicks form (ToRelative converts an absolute-time file
// back). Running status is never emitted; every event carries an explicit
// status byte.
//
// Encode rejects messages whose values do not survive a decode of the
// produced bytes, so Decode(Encode(f)) reproduces f exactly for any file
// that Encode accepts.
func Encode(f *File) ([]byte, error) {
	if f.TimeMode != DeltaTicks {
		return nil, fmt.Errorf("%w: encoding requires delta ticks, file is in %s",
			ErrWrongTimeMode, f.TimeMode)
	}
	if f.TicksPerBeat&0x8000 != 0 {
		return nil, fmt.Errorf("%w: ticks per beat 0x%04x has the SMPTE bit set",
			ErrUnsupportedDivision, f.TicksPerBeat)
	}
	if len(f.Tracks) > 0xffff {
		return nil, fmt.Errorf("too many tracks: %d", len(f.Tracks))
	}

	header := binary.BigEndian.AppendUint16(nil, f.Format)
	header = binary.BigEndian.AppendUint16(header, uint16(len(f.Tracks)))
	header = binary.BigEndian.AppendUint16(header, f.TicksPerBeat)
	out := appendChunk(nil, "MThd", header)

	for i, track := range f.Tracks {
		body, err := encodeTrack(track)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		out = appendChunk(out, "MTrk", body)
	}
	return out, nil
}

// EncodeTo serializes a file and writes the bytes to w.
func EncodeTo(w io.Writer, f *File) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write MIDI data: %w", err)
	}
	return nil
}

func appendChunk(dst []byte, tag string, body []byte) []byte {
	dst = append(dst, tag...)
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(body)))
	return append(dst, body...)
}

func encodeTrack(track Track) ([]byte, error) {
	var buf []byte
	for i, ev := range track {
		if _, ok := ev.Message.(MetaEndOfTrack); ok && i != len(track)-1 {
			return nil, fmt.Errorf("%w: end of track at event %d of %d",
				ErrUnencodableEvent, i, len(track))
		}
		var err error
		buf, err = appendEvent(buf, ev)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}
	return buf, nil
}

func appendEvent(dst []byte, ev Event) ([]byte, error) {
	dst = AppendVarLen(dst, ev.Time)

	switch m := ev.Message.(type) {
	case NoteOff:
		if err := checkChannelData(m.Channel, m.Key, m.Velocity); err != nil {
			return nil, fmt.Errorf("note off: %w", err)
		}
		return append(dst, 0x80|m.Channel, m.Key, m.Velocity), nil
	case NoteOn:
		if err := checkChannelData(m.Channel, m.Key, m.Velocity); err != nil {
			return nil, fmt.Errorf("note on: %w", err)
		}
		if m.Velocity == 0 {
			// ベロシティ0はデコード時にノートオフへ正規化されるので、
			// そのままでは往復しない
			return nil, fmt.Errorf("%w: note on with velocity 0, use NoteOff", ErrUnencodableEvent)
		}
		return append(dst, 0x90|m.Channel, m.Key, m.Velocity), nil
	case ProgramChange:
		if err := checkChannelData(m.Channel, m.Program); err != nil {
			return nil, fmt.Errorf("program change: %w", err)
		}
		return append(dst, 0xc0|m.Channel, m.Program), nil
	case ChannelRaw:
		want, ok := channelRawLen[m.Status&0xf0]
		if !ok {
			return nil, fmt.Errorf("%w: status 0x%02x is not a raw channel voice message",
				ErrUnencodableEvent, m.Status)
		}
		if len(m.Data) != want {
			return nil, fmt.Errorf("%w: %s needs %d data bytes, got %d",
				ErrUnencodableEvent, channelRawName(m.Status), want, len(m.Data))
		}
		if err := check7Bit(m.Data...); err != nil {
			return nil, fmt.Errorf("%s: %w", channelRawName(m.Status), err)
		}
		dst = append(dst, m.Status)
		return append(dst, m.Data...), nil
	case SysEx:
		if m.Status < 0xf0 || m.Status > 0xf7 {
			return nil, fmt.Errorf("%w: sysex status 0x%02x outside 0xF0-0xF7",
				ErrUnencodableEvent, m.Status)
		}
		dst = append(dst, m.Status)
		dst = AppendVarLen(dst, uint64(len(m.Data)))
		return append(dst, m.Data...), nil
	case MetaText:
		if m.Code < 0x01 || m.Code > 0x0f {
			return nil, fmt.Errorf("%w: text meta code 0x%02x outside 0x01-0x0F",
				ErrUnencodableEvent, m.Code)
		}
		dst = append(dst, 0xff, m.Code)
		dst = AppendVarLen(dst, uint64(len(m.Text)))
		return append(dst, m.Text...), nil
	case MetaTempo:
		if m.MicrosPerBeat > 0xffffff {
			return nil, fmt.Errorf("%w: tempo %d does not fit in 24 bits",
				ErrUnencodableEvent, m.MicrosPerBeat)
		}
		return append(dst, 0xff, 0x51, 0x03,
			byte(m.MicrosPerBeat>>16), byte(m.MicrosPerBeat>>8), byte(m.MicrosPerBeat)), nil
	case MetaEndOfTrack:
		return append(dst, 0xff, 0x2f, 0x00), nil
	case MetaRaw:
		// テキスト・テンポ・エンドオブトラックのコードはそれぞれの型で
		// 表現しなければデコードで別の型に化ける
		if (m.Code >= 0x01 && m.Code <= 0x0f) || m.Code == 0x2f || m.Code == 0x51 {
			return nil, fmt.Errorf("%w: meta code 0x%02x has a dedicated message type",
				ErrUnencodableEvent, m.Code)
		}
		dst = append(dst, 0xff, m.Code)
		dst = AppendVarLen(dst, uint64(len(m.Data)))
		return append(dst, m.Data...), nil
	case nil:
		return nil, fmt.Errorf("%w: nil message", ErrUnencodableEvent)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnencodableEvent, m)
	}
}

// checkChannelData validates a channel nibble and 7-bit data bytes.
func checkChannelData(channel uint8, data ...uint8) error {
	if channel > 15 {
		return fmt.Errorf("%w: channel %d above 15", ErrUnencodableEvent, channel)
	}
	return check7Bit(data...)
}

func check7Bit(data ...uint8) error {
	for _, b := range data {
		if b > 0x7f {
			return fmt.Errorf("%w: data byte 0x%02x above 0x7F", ErrUnencodableEvent, b)
		}
	}
	return nil
}
