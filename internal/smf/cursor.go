// Package smf decodes Standard MIDI File byte streams into tick-stamped
// event lists for the timing engine.
package smf

import (
	"encoding/binary"
	"fmt"

	"github.com/Maokus/MVMNT-sub009/sdk/contracts"
)

// maxVarIntBytes bounds a variable-length quantity to 0x0FFFFFFF.
const maxVarIntBytes = 4

// Cursor is a bounds-checked read position over a caller-owned buffer. The
// buffer itself is never mutated or retained past the parse; every read that
// would cross the end returns a BoundsError and leaves the position where it
// was.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a cursor at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Seek moves the read offset to an absolute position. Seeking past the end
// clamps to the end, which ends any decode loop keyed on Remaining.
func (c *Cursor) Seek(pos int) {
	if pos > len(c.buf) {
		pos = len(c.buf)
	}
	c.pos = pos
}

func (c *Cursor) bounds(n int) error {
	if c.Remaining() < n {
		return &contracts.BoundsError{Offset: c.pos, Need: n, Have: c.Remaining()}
	}
	return nil
}

// ReadByte consumes and returns one byte.
func (c *Cursor) ReadByte() (byte, error) {
	if err := c.bounds(1); err != nil {
		return 0, err
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// PeekByte returns the next byte without consuming it.
func (c *Cursor) PeekByte() (byte, error) {
	if err := c.bounds(1); err != nil {
		return 0, err
	}
	return c.buf[c.pos], nil
}

// ReadBytes consumes n bytes and returns them as a view into the underlying
// buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.bounds(n); err != nil {
		return nil, err
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Skip consumes n bytes without returning them.
func (c *Cursor) Skip(n int) error {
	if err := c.bounds(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

// ReadUint16 consumes a big-endian 16-bit integer.
func (c *Cursor) ReadUint16() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadUint32 consumes a big-endian 32-bit integer.
func (c *Cursor) ReadUint32() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadVarInt consumes a MIDI variable-length quantity: seven value bits per
// byte, high bit set on every byte except the last, at most four bytes.
func (c *Cursor) ReadVarInt() (uint32, error) {
	var value uint32
	for i := 0; i < maxVarIntBytes; i++ {
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}
		value |= uint32(b & 0x7F)
		if b&0x80 == 0 {
			return value, nil
		}
		if i == maxVarIntBytes-1 {
			return 0, fmt.Errorf("invalid variable-length quantity at offset %d: continuation bit set on byte 4", c.pos)
		}
		value <<= 7
	}
	return value, nil
}
