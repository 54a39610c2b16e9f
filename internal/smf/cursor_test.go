package smf

import (
	"testing"

	"github.com/Maokus/MVMNT-sub009/sdk/contracts"
)

// encodeVarInt is the inverse of Cursor.ReadVarInt, used to exercise the
// round-trip property.
func encodeVarInt(n uint32) []byte {
	chunks := []byte{byte(n & 0x7F)}
	n >>= 7
	for n != 0 {
		chunks = append(chunks, byte(n&0x7F)|0x80)
		n >>= 7
	}
	// chunks are little-endian 7-bit groups; the wire format is big-endian.
	out := make([]byte, len(chunks))
	for i, b := range chunks {
		out[len(chunks)-1-i] = b
	}
	return out
}

func TestReadVarIntKnownValues(t *testing.T) {
	expected := []uint32{
		0x00000000,
		0x00000040,
		0x0000007F,
		0x00000080,
		0x00002000,
		0x00003FFF,
		0x00004000,
		0x00100000,
		0x001FFFFF,
		0x00200000,
		0x08000000,
		0x0FFFFFFF,
	}
	// The variable-length encodings of the values above, back to back.
	data := []byte{
		0x00,
		0x40,
		0x7F,
		0x81, 0x00,
		0xC0, 0x00,
		0xFF, 0x7F,
		0x81, 0x80, 0x00,
		0xC0, 0x80, 0x00,
		0xFF, 0xFF, 0x7F,
		0x81, 0x80, 0x80, 0x00,
		0xC0, 0x80, 0x80, 0x00,
		0xFF, 0xFF, 0xFF, 0x7F,
	}
	cur := NewCursor(data)
	for _, v := range expected {
		got, err := cur.ReadVarInt()
		if err != nil {
			t.Logf("Failed reading variable-length int 0x%08x: %s\n", v, err)
			t.FailNow()
		}
		if got != v {
			t.Logf("Read wrong variable-length int: expected 0x%08x, got 0x%08x\n", v, got)
			t.FailNow()
		}
	}
	if cur.Remaining() != 0 {
		t.Logf("Cursor advanced by the wrong byte count: %d bytes left\n", cur.Remaining())
		t.FailNow()
	}
}

func TestReadVarIntRoundTrip(t *testing.T) {
	// Sweep the full legal range, dense at the bottom and at every 7-bit
	// width boundary.
	values := []uint32{0, 1, 0x7F, 0x80, 0x3FFF, 0x4000, 0x1FFFFF, 0x200000, 0x0FFFFFFF}
	for n := uint32(0); n < 0x20000; n += 541 {
		values = append(values, n)
	}
	for n := uint32(0x20000); n < 0x0FFFFFFF-999983; n += 999983 {
		values = append(values, n)
	}
	for _, n := range values {
		encoded := encodeVarInt(n)
		cur := NewCursor(encoded)
		got, err := cur.ReadVarInt()
		if err != nil {
			t.Logf("Failed round-tripping 0x%08x: %s\n", n, err)
			t.FailNow()
		}
		if got != n {
			t.Logf("Round trip of 0x%08x yielded 0x%08x\n", n, got)
			t.FailNow()
		}
		if cur.Pos() != len(encoded) {
			t.Logf("Cursor advanced %d bytes for 0x%08x, expected %d\n", cur.Pos(), n, len(encoded))
			t.FailNow()
		}
	}
}

func TestReadVarIntInvalid(t *testing.T) {
	// Continuation bit still set on the fourth byte.
	cur := NewCursor([]byte{0xFF, 0xFF, 0xFF, 0x80, 0x7F})
	if _, err := cur.ReadVarInt(); err == nil {
		t.Logf("Didn't get expected error for a 5-byte variable-length int\n")
		t.FailNow()
	}
	// Truncated in the middle of the quantity.
	cur = NewCursor([]byte{0xFF, 0xFF})
	if _, err := cur.ReadVarInt(); err == nil {
		t.Logf("Didn't get expected error for a truncated variable-length int\n")
		t.FailNow()
	}
}

func TestCursorBounds(t *testing.T) {
	cur := NewCursor([]byte{1, 2, 3})
	if _, err := cur.ReadBytes(4); err == nil {
		t.Logf("Didn't get expected error reading past the buffer\n")
		t.FailNow()
	}
	boundsErr, ok := func() (*contracts.BoundsError, bool) {
		_, err := cur.ReadBytes(4)
		e, ok := err.(*contracts.BoundsError)
		return e, ok
	}()
	if !ok {
		t.Logf("Out-of-range read didn't produce a BoundsError\n")
		t.FailNow()
	}
	if boundsErr.Need != 4 || boundsErr.Have != 3 {
		t.Logf("BoundsError carries wrong sizes: need %d, have %d\n", boundsErr.Need, boundsErr.Have)
		t.FailNow()
	}
	if cur.Pos() != 0 {
		t.Logf("Failed read moved the cursor to %d\n", cur.Pos())
		t.FailNow()
	}
	// A bounded read still works afterward.
	b, err := cur.ReadBytes(3)
	if err != nil || len(b) != 3 {
		t.Logf("In-range read failed after a bounds error: %v\n", err)
		t.FailNow()
	}
}

func TestCursorBigEndianReads(t *testing.T) {
	cur := NewCursor([]byte{0x01, 0x02, 0x00, 0x00, 0x03, 0x04})
	v16, err := cur.ReadUint16()
	if err != nil || v16 != 0x0102 {
		t.Logf("ReadUint16 gave 0x%04x (%v), expected 0x0102\n", v16, err)
		t.FailNow()
	}
	v32, err := cur.ReadUint32()
	if err != nil || v32 != 0x00000304 {
		t.Logf("ReadUint32 gave 0x%08x (%v), expected 0x00000304\n", v32, err)
		t.FailNow()
	}
}
