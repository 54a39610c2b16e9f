package contracts

import (
	"errors"
	"fmt"
)

// ErrUnreadableFile is wrapped by every fatal structural failure, so the UI
// layer can match the whole class with errors.Is.
var ErrUnreadableFile = errors.New("unreadable MIDI file")

// FormatError reports a fatal structural problem: missing or garbled chunk
// header, a declared chunk length exceeding the buffer, or a buffer shorter
// than the fixed file header. It aborts the whole parse.
type FormatError struct {
	Offset int    // Offset is the byte position the problem was detected at.
	Reason string // Reason describes what was expected.
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %s at offset %d", ErrUnreadableFile, e.Reason, e.Offset)
}

func (e *FormatError) Unwrap() error {
	return ErrUnreadableFile
}

// BoundsError reports that a single event's data extends past the buffer.
// It is recovered locally: the event is skipped and decoding continues with
// the next track, so one corrupt event does not invalidate an otherwise
// readable file.
type BoundsError struct {
	Offset int // Offset is the read position that went out of range.
	Need   int // Need is the number of bytes the read required.
	Have   int // Have is the number of bytes remaining.
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("event data out of bounds at offset %d: need %d bytes, have %d",
		e.Offset, e.Need, e.Have)
}

// DegenerateTempoError reports a non-positive tempo value or resolution.
// Callers recover by substituting the default 120 BPM segment.
type DegenerateTempoError struct {
	TicksPerQuarterNote int    // TicksPerQuarterNote is the offending resolution, if non-positive.
	MicrosPerQuarter    uint32 // MicrosPerQuarter is the offending tempo value, if non-positive.
}

func (e *DegenerateTempoError) Error() string {
	if e.TicksPerQuarterNote <= 0 {
		return fmt.Sprintf("degenerate tempo: ticks per quarter note %d", e.TicksPerQuarterNote)
	}
	return fmt.Sprintf("degenerate tempo: %d microseconds per quarter note", e.MicrosPerQuarter)
}
