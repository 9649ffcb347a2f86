package smf

import (
	"bytes"
	"fmt"
	"io"
)

// runningStatus は直前に現れたチャンネルボイスステータスを保持する。
// ステータスバイトが省略されたイベント(先頭バイトが0x80未満)はこの値を
// 引き継ぐ。システムイベント(0xF0-0xF7)でリセットされ、メタイベント
// (0xFF)では保持される。
type runningStatus struct {
	value byte
	ok    bool
}

func (rs *runningStatus) get() (byte, error) {
	if !rs.ok {
		return 0, ErrRunningStatusUnset
	}
	return rs.value, nil
}

func (rs *runningStatus) set(status byte) {
	rs.value, rs.ok = status, true
}

func (rs *runningStatus) reset() {
	rs.ok = false
}

// Decode parses a complete Standard MIDI File. The result is always in
// DeltaTicks form; use ToAbsolute to convert event times to microseconds.
// Any structural problem aborts the decode; there are no partial results.
func Decode(data []byte) (*File, error) {
	c := NewCursor(data)

	// 先頭はMThdチャンクでなければならない
	first, err := readChunk(c)
	if err != nil {
		return nil, err
	}
	if first.tag != "MThd" {
		return nil, fmt.Errorf("%w: first chunk is %q", ErrMissingHeader, first.tag)
	}
	format, numTracks, division, err := decodeHeader(first.data)
	if err != nil {
		return nil, err
	}

	// 残りのチャンクを読む。MTrk以外のチャンクは読み飛ばす
	var tracks []Track
	for c.Remaining() > 0 {
		ck, err := readChunk(c)
		if err != nil {
			return nil, err
		}
		if ck.tag != "MTrk" {
			continue
		}
		track, err := decodeTrack(ck.data)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", len(tracks), err)
		}
		tracks = append(tracks, track)
	}

	if int(numTracks) != len(tracks) {
		return nil, fmt.Errorf("%w: header declares %d, found %d",
			ErrTrackCountMismatch, numTracks, len(tracks))
	}

	return &File{
		Format:       format,
		TicksPerBeat: division,
		TimeMode:     DeltaTicks,
		Tracks:       tracks,
	}, nil
}

// DecodeFrom reads r to the end and decodes the result.
func DecodeFrom(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI data: %w", err)
	}
	return Decode(data)
}

// chunk is one tag/length/payload unit of the file.
type chunk struct {
	tag  string
	data []byte
}

func readChunk(c *Cursor) (chunk, error) {
	tag, err := c.Next(4)
	if err != nil {
		return chunk{}, fmt.Errorf("chunk tag: %w", err)
	}
	length, err := readUint32(c)
	if err != nil {
		return chunk{}, fmt.Errorf("chunk length: %w", err)
	}
	data, err := nextN(c, uint64(length))
	if err != nil {
		return chunk{}, fmt.Errorf("chunk %q: %w", tag, err)
	}
	return chunk{tag: string(tag), data: data}, nil
}

// decodeHeader parses an MThd payload. ヘッダは format, ntracks, division
// の16ビット値3つ。divisionの最上位ビットが立っているものはSMPTE形式で、
// サポートしない。
func decodeHeader(data []byte) (format, numTracks, division uint16, err error) {
	c := NewCursor(data)
	if format, err = readUint16(c); err != nil {
		return 0, 0, 0, fmt.Errorf("header format: %w", err)
	}
	if numTracks, err = readUint16(c); err != nil {
		return 0, 0, 0, fmt.Errorf("header track count: %w", err)
	}
	if division, err = readUint16(c); err != nil {
		return 0, 0, 0, fmt.Errorf("header division: %w", err)
	}
	if division&0x8000 != 0 {
		return 0, 0, 0, fmt.Errorf("%w: SMPTE division 0x%04x", ErrUnsupportedDivision, division)
	}
	return format, numTracks, division, nil
}

// decodeTrack parses the payload of one MTrk chunk. Running status is
// tracked per track.
func decodeTrack(data []byte) (Track, error) {
	c := NewCursor(data)
	var rs runningStatus
	var track Track
	for c.Remaining() > 0 {
		ev, err := decodeEvent(c, &rs)
		if err != nil {
			return nil, err
		}
		track = append(track, ev)
	}
	return track, nil
}

// decodeEvent parses one delta time and message off the cursor.
func decodeEvent(c *Cursor, rs *runningStatus) (Event, error) {
	delta, err := ReadVarLen(c)
	if err != nil {
		return Event{}, fmt.Errorf("delta time: %w", err)
	}

	// ステータスバイトの位置を覗き見る。0x80未満ならステータスが省略された
	// イベントで、このバイトは消費せずにデータバイトとして読み直す
	b, err := c.Peek()
	if err != nil {
		return Event{}, fmt.Errorf("event status: %w", err)
	}
	var status byte
	if b < 0x80 {
		status, err = rs.get()
		if err != nil {
			return Event{}, fmt.Errorf("%w: data byte 0x%02x at offset %d", err, b, c.Pos())
		}
	} else {
		if _, err := c.ReadByte(); err != nil {
			return Event{}, err
		}
		status = b
	}

	var msg Message
	switch {
	case status < 0xf0:
		rs.set(status)
		msg, err = decodeChannelMessage(c, status)
	case status == 0xff:
		// メタイベントはランニングステータスに影響しない
		msg, err = decodeMetaMessage(c)
	case status <= 0xf7:
		rs.reset()
		msg, err = decodeSysExMessage(c, status)
	default:
		return Event{}, fmt.Errorf("%w: 0x%02x", ErrUnknownEventStatus, status)
	}
	if err != nil {
		return Event{}, err
	}
	return Event{Time: delta, Message: msg}, nil
}

func decodeChannelMessage(c *Cursor, status byte) (Message, error) {
	channel := status & 0x0f
	switch status & 0xf0 {
	case 0x80:
		d, err := c.Next(2)
		if err != nil {
			return nil, fmt.Errorf("note off: %w", err)
		}
		return NoteOff{Channel: channel, Key: d[0], Velocity: d[1]}, nil
	case 0x90:
		d, err := c.Next(2)
		if err != nil {
			return nil, fmt.Errorf("note on: %w", err)
		}
		if d[1] == 0 {
			// ベロシティ0のノートオンはノートオフの省略形
			return NoteOff{Channel: channel, Key: d[0], Velocity: 64}, nil
		}
		return NoteOn{Channel: channel, Key: d[0], Velocity: d[1]}, nil
	case 0xc0:
		program, err := c.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("program change: %w", err)
		}
		return ProgramChange{Channel: channel, Program: program}, nil
	default:
		// 残りの0xA0/0xB0/0xD0/0xE0は生のまま保持する
		d, err := c.Next(channelRawLen[status&0xf0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", channelRawName(status), err)
		}
		return ChannelRaw{Status: status, Data: bytes.Clone(d)}, nil
	}
}

func decodeMetaMessage(c *Cursor) (Message, error) {
	code, err := c.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("meta code: %w", err)
	}
	switch {
	case code >= 0x01 && code <= 0x0f:
		length, err := ReadVarLen(c)
		if err != nil {
			return nil, fmt.Errorf("meta text length: %w", err)
		}
		d, err := nextN(c, length)
		if err != nil {
			return nil, fmt.Errorf("meta text: %w", err)
		}
		return MetaText{Code: code, Text: bytes.Clone(d)}, nil
	case code == 0x2f:
		// エンドオブトラックは長さ0で、トラックの最後のイベントでなければ
		// ならない
		length, err := c.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("end of track: %w", err)
		}
		if length != 0x00 {
			return nil, fmt.Errorf("%w: length byte 0x%02x", ErrMalformedEndOfTrack, length)
		}
		if c.Remaining() != 0 {
			return nil, fmt.Errorf("%w: %d bytes follow", ErrMalformedEndOfTrack, c.Remaining())
		}
		return MetaEndOfTrack{}, nil
	case code == 0x51:
		length, err := c.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("tempo: %w", err)
		}
		if length != 0x03 {
			return nil, fmt.Errorf("%w: tempo length byte 0x%02x", ErrMalformedEvent, length)
		}
		d, err := c.Next(3)
		if err != nil {
			return nil, fmt.Errorf("tempo: %w", err)
		}
		micros := uint32(d[0])<<16 | uint32(d[1])<<8 | uint32(d[2])
		return MetaTempo{MicrosPerBeat: micros}, nil
	default:
		length, err := ReadVarLen(c)
		if err != nil {
			return nil, fmt.Errorf("meta length: %w", err)
		}
		d, err := nextN(c, length)
		if err != nil {
			return nil, fmt.Errorf("meta 0x%02x: %w", code, err)
		}
		return MetaRaw{Code: code, Data: bytes.Clone(d)}, nil
	}
}

func decodeSysExMessage(c *Cursor, status byte) (Message, error) {
	length, err := ReadVarLen(c)
	if err != nil {
		return nil, fmt.Errorf("sysex length: %w", err)
	}
	d, err := nextN(c, length)
	if err != nil {
		return nil, fmt.Errorf("sysex: %w", err)
	}
	return SysEx{Status: status, Data: bytes.Clone(d)}, nil
}

// nextN reads a length that came out of a variable-length quantity, which
// may not fit in int on all platforms.
func nextN(c *Cursor, n uint64) ([]byte, error) {
	if n > uint64(c.Remaining()) {
		return nil, fmt.Errorf("%w: want %d bytes at offset %d, have %d",
			ErrUnexpectedEndOfData, n, c.Pos(), c.Remaining())
	}
	return c.Next(int(n))
}
