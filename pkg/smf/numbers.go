package smf

import (
	"encoding/binary"
	"fmt"
)

// 固定幅の整数はすべてビッグエンディアン。

func readUint16(c *Cursor) (uint16, error) {
	b, err := c.Next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func readUint32(c *Cursor) (uint32, error) {
	b, err := c.Next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadVarLen reads a MIDI variable-length quantity: 7 bits per byte, most
// significant group first, the high bit of each byte marking continuation.
// There is no fixed cap on the number of bytes; reading stops at the first
// byte whose high bit is clear.
func ReadVarLen(c *Cursor) (uint64, error) {
	var v uint64
	for {
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}
		if v > (1<<57)-1 {
			return 0, fmt.Errorf("%w: variable-length quantity overflows 64 bits", ErrMalformedEvent)
		}
		v = v<<7 | uint64(b&0x7f)
		if b&0x80 == 0 {
			return v, nil
		}
	}
}

// AppendVarLen appends the canonical (shortest) variable-length encoding
// of v to dst and returns the extended slice.
func AppendVarLen(dst []byte, v uint64) []byte {
	// 下位7ビットずつ取り出してから逆順に書き出す
	var groups [10]byte
	n := 0
	for {
		groups[n] = byte(v & 0x7f)
		n++
		v >>= 7
		if v == 0 {
			break
		}
	}
	for i := n - 1; i > 0; i-- {
		dst = append(dst, groups[i]|0x80)
	}
	return append(dst, groups[0])
}
