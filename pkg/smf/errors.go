package smf

import "errors"

// ErrUnexpectedEndOfData is returned when the input ends in the middle of
// a chunk, an event, or a variable-length quantity.
var ErrUnexpectedEndOfData = errors.New("unexpected end of data")

// ErrCursorUnderflow is returned by Cursor.UnreadByte at position 0.
var ErrCursorUnderflow = errors.New("cannot unread past the start of the data")

// ErrRunningStatusUnset is returned when an event omits its status byte
// before any channel voice status has been seen on the track.
var ErrRunningStatusUnset = errors.New("running status is not set")

// ErrMalformedEvent is returned when an event body violates its fixed
// shape, such as a tempo meta event whose length byte is not 3.
var ErrMalformedEvent = errors.New("malformed event")

// ErrMalformedEndOfTrack is returned when an end-of-track meta event has a
// nonzero length byte or is not the last event of its track chunk.
var ErrMalformedEndOfTrack = errors.New("malformed end-of-track event")

// ErrUnknownEventStatus is returned for status bytes that have no meaning
// inside a Standard MIDI File (0xF8-0xFE).
var ErrUnknownEventStatus = errors.New("unknown event status")

// ErrUnsupportedDivision is returned for SMPTE time divisions and for
// tick divisions that cannot be used (zero, or with the SMPTE bit set).
var ErrUnsupportedDivision = errors.New("unsupported time division")

// ErrMissingHeader is returned when the file does not start with an MThd
// chunk.
var ErrMissingHeader = errors.New("missing MThd header chunk")

// ErrTrackCountMismatch is returned when the number of MTrk chunks does
// not match the count declared in the header.
var ErrTrackCountMismatch = errors.New("track count does not match header")

// ErrUnencodableEvent is returned by Encode for messages whose values do
// not fit the file format, such as a velocity above 127 or a tempo above
// 24 bits.
var ErrUnencodableEvent = errors.New("event cannot be encoded")

// ErrWrongTimeMode is returned when an operation is applied to a File in
// the other time representation, such as Encode on an absolute-time file.
var ErrWrongTimeMode = errors.New("wrong time representation")

// ErrUnorderedEvents is returned by ToRelative when an absolute-time
// track is not ordered by time.
var ErrUnorderedEvents = errors.New("events are not ordered by time")
