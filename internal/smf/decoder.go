package smf

import (
	"errors"
	"fmt"

	"github.com/Maokus/MVMNT-sub009/sdk/contracts"
	"go.uber.org/multierr"
)

const (
	headerMagic = "MThd"
	trackMagic  = "MTrk"

	// headerSize is the fixed size of the MThd chunk including its magic.
	headerSize = 14

	// smpteFallbackPPQ substitutes for SMPTE-based divisions. Full SMPTE
	// ticks-per-frame math is deliberately not implemented; the fallback is
	// flagged in the result warnings rather than applied silently.
	smpteFallbackPPQ = 24

	// DefaultMicrosPerQuarter is the implicit file tempo, 120 BPM.
	DefaultMicrosPerQuarter = 500000
)

// Meta event subtypes recognized by the decoder.
const (
	metaTextFirst     = 0x01
	metaTextLast      = 0x07
	metaEndOfTrack    = 0x2F
	metaTempo         = 0x51
	metaTimeSignature = 0x58
)

// Result holds everything a single decode pass discovers. All slices are
// owned by the result; nothing references the input buffer.
type Result struct {
	Format              uint16
	TrackCount          uint16
	TicksPerQuarterNote uint16
	SMPTEDivision       bool
	Tracks              [][]contracts.Event
	TempoChanges        []contracts.TempoChange
	TimeSignature       contracts.TimeSignature
	HasTimeSignature    bool

	// Warnings aggregates recoverable per-event problems. The parse as a
	// whole still succeeds when this is non-nil.
	Warnings error
}

func (r *Result) warn(err error) {
	r.Warnings = multierr.Append(r.Warnings, err)
}

// Decoder walks a Standard MIDI File buffer. A decoder carries no state
// between Decode calls; every call owns its own fold state, so concurrent
// parses need no locking.
type Decoder struct {
	log contracts.Logger
}

// NewDecoder returns a decoder using the given logger for diagnostics.
func NewDecoder(log contracts.Logger) *Decoder {
	return &Decoder{log: log}
}

// Decode parses the buffer into per-track event lists plus the tempo and
// time-signature discoveries. Structural problems (bad magic, truncated
// header, chunk length past the buffer) return a FormatError; per-event
// bounds problems are recovered and reported via Result.Warnings.
func (d *Decoder) Decode(data []byte) (*Result, error) {
	if len(data) < headerSize {
		return nil, &contracts.FormatError{Offset: 0,
			Reason: fmt.Sprintf("buffer of %d bytes shorter than %d-byte header", len(data), headerSize)}
	}
	cur := NewCursor(data)

	res, err := d.decodeHeader(cur)
	if err != nil {
		return nil, err
	}

	// Implicit tempo seed so the segment table always has an origin.
	res.TempoChanges = append(res.TempoChanges,
		contracts.TempoChange{Tick: 0, MicrosPerQuarterNote: DefaultMicrosPerQuarter})

	for len(res.Tracks) < int(res.TrackCount) && cur.Remaining() > 0 {
		if err := d.decodeTrack(cur, res); err != nil {
			return nil, err
		}
	}
	if len(res.Tracks) < int(res.TrackCount) {
		res.warn(fmt.Errorf("header declares %d tracks, buffer contains %d",
			res.TrackCount, len(res.Tracks)))
	}
	return res, nil
}

func (d *Decoder) decodeHeader(cur *Cursor) (*Result, error) {
	magic, _ := cur.ReadBytes(4)
	if string(magic) != headerMagic {
		return nil, &contracts.FormatError{Offset: 0,
			Reason: fmt.Sprintf("bad header magic %q, want %q", magic, headerMagic)}
	}
	chunkSize, _ := cur.ReadUint32()
	if chunkSize < 6 {
		return nil, &contracts.FormatError{Offset: 4,
			Reason: fmt.Sprintf("header chunk size %d, want at least 6", chunkSize)}
	}
	format, _ := cur.ReadUint16()
	if format > 2 {
		return nil, &contracts.FormatError{Offset: 8,
			Reason: fmt.Sprintf("unknown file format %d", format)}
	}
	trackCount, _ := cur.ReadUint16()
	division, _ := cur.ReadUint16()

	res := &Result{
		Format:     format,
		TrackCount: trackCount,
	}
	if division&0x8000 != 0 {
		// SMPTE-based division: substitute a fixed resolution instead of
		// real ticks-per-frame math, and say so.
		res.SMPTEDivision = true
		res.TicksPerQuarterNote = smpteFallbackPPQ
		res.warn(fmt.Errorf("SMPTE time division 0x%04x: substituting fixed %d ticks per quarter note, timing will be approximate",
			division, smpteFallbackPPQ))
		d.log.Warn("SMPTE time division not supported, using fallback resolution",
			d.log.Field().Int("division", int(division)),
			d.log.Field().Int("fallbackPPQ", smpteFallbackPPQ))
	} else {
		res.TicksPerQuarterNote = division
	}
	// Tolerate oversized header chunks by skipping the declared remainder.
	if extra := int(chunkSize) - 6; extra > 0 {
		if err := cur.Skip(extra); err != nil {
			return nil, &contracts.FormatError{Offset: cur.Pos(),
				Reason: fmt.Sprintf("header chunk size %d exceeds buffer", chunkSize)}
		}
	}
	return res, nil
}

// trackState is the fold accumulator threaded through one track's decode
// loop. There is no decoder-level mutable state; this makes the event loop
// testable in isolation and parallelizable across tracks.
type trackState struct {
	absTick       uint32
	runningStatus byte
	events        []contracts.Event
}

func (d *Decoder) decodeTrack(cur *Cursor, res *Result) error {
	chunkStart := cur.Pos()
	magic, err := cur.ReadBytes(4)
	if err != nil || string(magic) != trackMagic {
		return &contracts.FormatError{Offset: chunkStart,
			Reason: fmt.Sprintf("bad track magic %q, want %q", magic, trackMagic)}
	}
	length, err := cur.ReadUint32()
	if err != nil {
		return &contracts.FormatError{Offset: chunkStart + 4, Reason: "truncated track chunk length"}
	}
	if int(length) > cur.Remaining() {
		return &contracts.FormatError{Offset: chunkStart + 4,
			Reason: fmt.Sprintf("track chunk length %d exceeds remaining %d bytes", length, cur.Remaining())}
	}
	end := cur.Pos() + int(length)

	st := trackState{}
	for cur.Pos() < end {
		if err := d.decodeEvent(cur, end, &st, res); err != nil {
			// Recoverable: skip the damaged remainder of this track and
			// pick up again at the next chunk.
			res.warn(fmt.Errorf("track %d: %w", len(res.Tracks), err))
			d.log.Warn("skipping damaged track remainder",
				d.log.Field().Int("track", len(res.Tracks)),
				d.log.Field().Error("cause", err))
			break
		}
	}
	cur.Seek(end)
	res.Tracks = append(res.Tracks, st.events)
	return nil
}

// errEndOfTrack signals a clean 0x2F meta event.
var errEndOfTrack = errors.New("end of track")

func (d *Decoder) decodeEvent(cur *Cursor, end int, st *trackState, res *Result) error {
	delta, err := cur.ReadVarInt()
	if err != nil {
		return err
	}
	st.absTick += delta

	status, err := cur.PeekByte()
	if err != nil {
		return err
	}
	if status&0x80 == 0 {
		// Running status: the peeked byte is the event's first data byte,
		// so the cursor must not advance past it.
		if st.runningStatus == 0 {
			return fmt.Errorf("data byte 0x%02x at offset %d with no running status", status, cur.Pos())
		}
		status = st.runningStatus
	} else {
		if err := cur.Skip(1); err != nil {
			return err
		}
		if status < 0xF0 {
			st.runningStatus = status
		}
	}

	switch {
	case status == 0xFF:
		st.runningStatus = 0
		if err := d.decodeMetaEvent(cur, st, res); err != nil {
			if err == errEndOfTrack {
				cur.Seek(end)
				return nil
			}
			return err
		}
		return nil
	case status == 0xF0 || status == 0xF7:
		st.runningStatus = 0
		length, err := cur.ReadVarInt()
		if err != nil {
			return err
		}
		return cur.Skip(int(length))
	case status >= 0xF0:
		return fmt.Errorf("unsupported status byte 0x%02x at offset %d", status, cur.Pos())
	}
	return d.decodeChannelEvent(cur, status, st)
}

func (d *Decoder) decodeChannelEvent(cur *Cursor, status byte, st *trackState) error {
	channel := status & 0x0F
	switch status & 0xF0 {
	case 0x80:
		data, err := cur.ReadBytes(2)
		if err != nil {
			return err
		}
		st.events = append(st.events, contracts.Event{
			Kind: contracts.NoteOffEvent, Tick: st.absTick,
			Channel: channel, Note: data[0] & 0x7F, Velocity: data[1] & 0x7F,
		})
	case 0x90:
		data, err := cur.ReadBytes(2)
		if err != nil {
			return err
		}
		kind := contracts.NoteOnEvent
		if data[1] == 0 {
			// Zero-velocity note-on is the running-status idiom for
			// note-off.
			kind = contracts.NoteOffEvent
		}
		st.events = append(st.events, contracts.Event{
			Kind: kind, Tick: st.absTick,
			Channel: channel, Note: data[0] & 0x7F, Velocity: data[1] & 0x7F,
		})
	case 0xB0:
		data, err := cur.ReadBytes(2)
		if err != nil {
			return err
		}
		st.events = append(st.events, contracts.Event{
			Kind: contracts.ControlChangeEvent, Tick: st.absTick,
			Channel: channel, Controller: data[0] & 0x7F, Value: data[1] & 0x7F,
		})
	case 0xC0:
		program, err := cur.ReadByte()
		if err != nil {
			return err
		}
		st.events = append(st.events, contracts.Event{
			Kind: contracts.ProgramChangeEvent, Tick: st.absTick,
			Channel: channel, Program: program & 0x7F,
		})
	case 0xA0, 0xE0:
		// Aftertouch and pitch bend carry two data bytes; consumed to stay
		// aligned but not represented on the timeline.
		return cur.Skip(2)
	case 0xD0:
		// Channel pressure carries one data byte.
		return cur.Skip(1)
	default:
		return fmt.Errorf("unknown channel status 0x%02x at offset %d", status, cur.Pos())
	}
	return nil
}

func (d *Decoder) decodeMetaEvent(cur *Cursor, st *trackState, res *Result) error {
	metaType, err := cur.ReadByte()
	if err != nil {
		return err
	}
	length, err := cur.ReadVarInt()
	if err != nil {
		return err
	}
	payload, err := cur.ReadBytes(int(length))
	if err != nil {
		return err
	}

	switch {
	case metaType == metaEndOfTrack:
		return errEndOfTrack
	case metaType == metaTempo:
		if len(payload) < 3 {
			return fmt.Errorf("tempo meta event with %d-byte payload at offset %d", len(payload), cur.Pos())
		}
		micros := uint32(payload[0])<<16 | uint32(payload[1])<<8 | uint32(payload[2])
		change := contracts.TempoChange{Tick: st.absTick, MicrosPerQuarterNote: micros}
		res.TempoChanges = append(res.TempoChanges, change)
		d.log.Debug("tempo change",
			d.log.Field().Uint64("tick", uint64(st.absTick)),
			d.log.Field().Float64("bpm", change.BPM()))
	case metaType == metaTimeSignature:
		if len(payload) < 4 {
			return fmt.Errorf("time signature meta event with %d-byte payload at offset %d", len(payload), cur.Pos())
		}
		sig := contracts.TimeSignature{
			Numerator:                payload[0],
			Denominator:              1 << (payload[1] & 0x07),
			ClocksPerClick:           payload[2],
			ThirtysecondNotesPerBeat: payload[3],
		}
		if !res.HasTimeSignature {
			// The first declared meter rules the bar ruler; later changes
			// are diagnostic only.
			res.TimeSignature = sig
			res.HasTimeSignature = true
		}
		d.log.Debug("time signature",
			d.log.Field().Uint64("tick", uint64(st.absTick)),
			d.log.Field().Int("numerator", int(sig.Numerator)),
			d.log.Field().Int("denominator", int(sig.Denominator)))
	case metaType >= metaTextFirst && metaType <= metaTextLast:
		// Payload is raw 8-bit text; no encoding negotiation.
		st.events = append(st.events, contracts.Event{
			Kind: contracts.MetaEvent, Tick: st.absTick,
			MetaType: metaType, Text: string(payload),
		})
	default:
		// Unrecognized meta types are skipped by length, never fatal.
	}
	return nil
}
