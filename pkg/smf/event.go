package smf

import "fmt"

// Message is the payload of an event. The set of implementations is
// closed: NoteOn, NoteOff, ProgramChange, ChannelRaw, SysEx, MetaText,
// MetaTempo, MetaEndOfTrack and MetaRaw. Code switching on Message can
// therefore be exhaustive.
type Message interface {
	fmt.Stringer

	// message marks the closed set of implementations.
	message()
}

// NoteOn starts a note. Decoded note-ons always have Velocity >= 1; a
// note-on with velocity 0 on the wire is decoded as a NoteOff.
type NoteOn struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
}

// NoteOff ends a note.
type NoteOff struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
}

// ProgramChange selects an instrument on a channel.
type ProgramChange struct {
	Channel uint8
	Program uint8
}

// ChannelRaw is a channel voice message kept as opaque bytes: polyphonic
// key pressure (0xA0), control change (0xB0), channel pressure (0xD0) or
// pitch bend (0xE0). Status is the full status byte including the channel
// nibble.
type ChannelRaw struct {
	Status byte
	Data   []byte
}

// Channel returns the channel nibble of the status byte.
func (m ChannelRaw) Channel() uint8 {
	return m.Status & 0x0f
}

// SysEx is a system event (status 0xF0-0xF7) kept as opaque bytes.
type SysEx struct {
	Status byte
	Data   []byte
}

// MetaText is a textual meta event (codes 0x01-0x0F): text, copyright,
// track name, lyrics and the like. Text holds the raw bytes as stored in
// the file; use DecodeText for display.
type MetaText struct {
	Code byte
	Text []byte
}

// MetaTempo sets the tempo in microseconds per beat. The value is stored
// as 3 bytes in the file, so it must fit in 24 bits to be encodable.
type MetaTempo struct {
	MicrosPerBeat uint32
}

// BPM returns the tempo in beats per minute.
func (m MetaTempo) BPM() float64 {
	if m.MicrosPerBeat == 0 {
		return 0
	}
	return 60e6 / float64(m.MicrosPerBeat)
}

// MetaEndOfTrack marks the end of a track. When present it must be the
// last event of its track.
type MetaEndOfTrack struct{}

// MetaRaw is any other meta event, kept as opaque bytes.
type MetaRaw struct {
	Code byte
	Data []byte
}

func (NoteOn) message()         {}
func (NoteOff) message()        {}
func (ProgramChange) message()  {}
func (ChannelRaw) message()     {}
func (SysEx) message()          {}
func (MetaText) message()       {}
func (MetaTempo) message()      {}
func (MetaEndOfTrack) message() {}
func (MetaRaw) message()        {}

// channelRawLen はChannelRawとして生のまま保持するチャンネルボイス
// メッセージのデータバイト数。キーはステータスの上位ニブル。
var channelRawLen = map[byte]int{
	0xa0: 2, // polyphonic key pressure
	0xb0: 2, // control change
	0xd0: 1, // channel pressure
	0xe0: 2, // pitch bend
}

func channelRawName(status byte) string {
	switch status & 0xf0 {
	case 0xa0:
		return "key pressure"
	case 0xb0:
		return "control change"
	case 0xd0:
		return "channel pressure"
	case 0xe0:
		return "pitch bend"
	default:
		return "channel voice"
	}
}

func metaTextName(code byte) string {
	switch code {
	case 0x01:
		return "text"
	case 0x02:
		return "copyright"
	case 0x03:
		return "track name"
	case 0x04:
		return "instrument"
	case 0x05:
		return "lyric"
	case 0x06:
		return "marker"
	case 0x07:
		return "cue point"
	default:
		return "text"
	}
}

func (m NoteOn) String() string {
	return fmt.Sprintf("note on ch=%d key=%d vel=%d", m.Channel, m.Key, m.Velocity)
}

func (m NoteOff) String() string {
	return fmt.Sprintf("note off ch=%d key=%d vel=%d", m.Channel, m.Key, m.Velocity)
}

func (m ProgramChange) String() string {
	return fmt.Sprintf("program change ch=%d program=%d", m.Channel, m.Program)
}

func (m ChannelRaw) String() string {
	return fmt.Sprintf("%s ch=%d data=[% x]", channelRawName(m.Status), m.Channel(), m.Data)
}

func (m SysEx) String() string {
	return fmt.Sprintf("sysex 0x%02x (%d bytes)", m.Status, len(m.Data))
}

func (m MetaText) String() string {
	return fmt.Sprintf("%s %q", metaTextName(m.Code), DecodeText(m.Text))
}

func (m MetaTempo) String() string {
	return fmt.Sprintf("tempo %d us/beat (%.1f bpm)", m.MicrosPerBeat, m.BPM())
}

func (m MetaEndOfTrack) String() string {
	return "end of track"
}

func (m MetaRaw) String() string {
	return fmt.Sprintf("meta 0x%02x (%d bytes)", m.Code, len(m.Data))
}
