package contracts

// EventKind identifies the decoded MIDI event variant.
type EventKind uint8

const (
	// NoteOnEvent is a key-down channel event.
	NoteOnEvent EventKind = iota
	// NoteOffEvent is a key-up channel event. Note-on with velocity zero is
	// decoded as this kind.
	NoteOffEvent
	// ControlChangeEvent is a controller-value channel event.
	ControlChangeEvent
	// ProgramChangeEvent selects the instrument for a channel.
	ProgramChangeEvent
	// MetaEvent carries a recognized meta event (tempo, time signature,
	// text, end of track).
	MetaEvent
)

func (k EventKind) String() string {
	switch k {
	case NoteOnEvent:
		return "note-on"
	case NoteOffEvent:
		return "note-off"
	case ControlChangeEvent:
		return "control-change"
	case ProgramChangeEvent:
		return "program-change"
	case MetaEvent:
		return "meta"
	}
	return "unknown"
}

// Event represents a single decoded MIDI event with its position in both the
// tick and seconds domains. Events are immutable once produced; the trimming
// pass emits rebased copies rather than mutating in place.
type Event struct {
	Kind       EventKind // Kind specifies the event variant.
	Tick       uint32    // Tick is the absolute position in MIDI ticks.
	Time       float64   // Time is the absolute position in seconds, set after conversion.
	Channel    uint8     // Channel is the MIDI channel (0-15) for channel events.
	Note       uint8     // Note is the MIDI note number (0-127) for note events.
	Velocity   uint8     // Velocity is the key velocity for note events.
	Controller uint8     // Controller is the controller number for control-change events.
	Value      uint8     // Value is the controller value for control-change events.
	Program    uint8     // Program is the program number for program-change events.
	MetaType   uint8     // MetaType is the meta subtype byte for meta events.
	Text       string    // Text holds the payload of text-bearing meta events.
}

// TempoChange is a raw tempo-change observation from the decoder.
type TempoChange struct {
	Tick                 uint32 // Tick is the absolute tick the change takes effect at.
	MicrosPerQuarterNote uint32 // MicrosPerQuarterNote is the new tempo in µs per quarter note.
}

// BPM returns the tempo expressed in beats per minute.
func (t TempoChange) BPM() float64 {
	if t.MicrosPerQuarterNote == 0 {
		return 0
	}
	return 60e6 / float64(t.MicrosPerQuarterNote)
}

// TempoPoint is a tempo map entry re-expressed in the seconds domain for
// downstream display.
type TempoPoint struct {
	TimeSeconds          float64 // TimeSeconds is the trimmed wall-clock position of the change.
	MicrosPerQuarterNote uint32  // MicrosPerQuarterNote is the tempo from that point on.
}

// TimeSignature describes the meter of the file. Denominator is always a
// power of two, reconstructed from the raw exponent byte.
type TimeSignature struct {
	Numerator                uint8
	Denominator              uint8
	ClocksPerClick           uint8
	ThirtysecondNotesPerBeat uint8
}

// DefaultTimeSignature is assumed when a file declares no meter.
var DefaultTimeSignature = TimeSignature{
	Numerator:                4,
	Denominator:              4,
	ClocksPerClick:           24,
	ThirtysecondNotesPerBeat: 8,
}

// QuarterNotesPerBar returns the bar length in quarter-note beats.
func (s TimeSignature) QuarterNotesPerBar() float64 {
	if s.Denominator == 0 {
		return 4
	}
	return float64(s.Numerator) * 4 / float64(s.Denominator)
}

// Timeline is the fully decoded, trimmed, seconds-stamped result of a parse.
// It owns no resources and may be embedded in scene persistence as plain
// data.
type Timeline struct {
	Events              []Event       // Events is the playable note timeline, time-ascending.
	MetaEvents          []Event       // MetaEvents holds text-bearing meta events for the scene layer.
	DurationSeconds     float64       // DurationSeconds is the exact sounding duration.
	TicksPerQuarterNote uint16        // TicksPerQuarterNote is the file's time resolution.
	TimeSignature       TimeSignature // TimeSignature is the meter in effect.
	TempoChanges        []TempoChange // TempoChanges is the deduplicated tick-domain tempo map.
	TempoMapSeconds     []TempoPoint  // TempoMapSeconds is the tempo map in trimmed seconds.
	TrimmedTicks        uint32        // TrimmedTicks is the leading silence removed, in ticks.
	Warnings            []string      // Warnings lists recoveries made during a best-effort parse.
}

// BarsBeats is a musical transport position.
type BarsBeats struct {
	Bar  int     // Bar is the 1-based bar number.
	Beat float64 // Beat is the 1-based beat position within the bar.
}

// TimeConverter translates between the tick, seconds and beats domains over
// an immutable tempo segment table. Implementations are pure and safe for
// concurrent use.
type TimeConverter interface {
	TicksToSeconds(tick float64) float64
	SecondsToTicks(seconds float64) float64
	BeatsToSeconds(beats float64) float64
	SecondsToBeats(seconds float64) float64
	SecondsToBarsBeats(seconds float64) BarsBeats
}
