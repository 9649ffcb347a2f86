package smf

import "fmt"

// Cursor reads through an in-memory byte slice, keeping track of the
// current position. All decoding works off cursors; the underlying slice
// is never modified.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Next consumes and returns the next n bytes. The returned slice aliases
// the cursor's data; callers that keep it must copy it.
func (c *Cursor) Next(n int) ([]byte, error) {
	if n < 0 || n > len(c.data)-c.pos {
		return nil, fmt.Errorf("%w: want %d bytes at offset %d, have %d",
			ErrUnexpectedEndOfData, n, c.pos, len(c.data)-c.pos)
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadByte consumes and returns the next byte.
func (c *Cursor) ReadByte() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, fmt.Errorf("%w: at offset %d", ErrUnexpectedEndOfData, c.pos)
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// UnreadByte moves the position back one byte.
func (c *Cursor) UnreadByte() error {
	if c.pos == 0 {
		return ErrCursorUnderflow
	}
	c.pos--
	return nil
}

// Peek returns the next byte without consuming it.
func (c *Cursor) Peek() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, fmt.Errorf("%w: at offset %d", ErrUnexpectedEndOfData, c.pos)
	}
	return c.data[c.pos], nil
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// Pos returns the current offset from the start of the data.
func (c *Cursor) Pos() int {
	return c.pos
}
