package contracts

// MIDICommand represents the MIDI channel-command classes usable for event
// filtering.
type MIDICommand byte

const (
	// NoteOn is the MIDI command for a Note On event (0x90).
	NoteOn MIDICommand = 0x90
	// NoteOff is the MIDI command for a Note Off event (0x80).
	NoteOff MIDICommand = 0x80
	// ControlChange is the MIDI command for a Control Change event (0xB0).
	ControlChange MIDICommand = 0xB0
	// ProgramChange is the MIDI command for a Program Change event (0xC0).
	ProgramChange MIDICommand = 0xC0
)

// MIDIEventFilter allows callers to specify which MIDI commands are kept on
// the playable timeline. A nil filter keeps note events only.
type MIDIEventFilter struct {
	Commands []MIDICommand // List of MIDI commands to keep.
}

// ParseOptions defines the configuration options for a timeline parse.
type ParseOptions struct {
	Logger          Logger           // Logger for diagnostics during decoding.
	LogLevel        LogLevel         // Level of logging to use.
	MIDIEventFilter *MIDIEventFilter // Optional filter for timeline events to keep.
	DefaultTempoBPM float64          // Tempo substituted when a file carries a degenerate tempo.
}

// Option is a function that modifies ParseOptions.
type Option func(*ParseOptions)

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(l Logger) Option {
	return func(opts *ParseOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for parse diagnostics.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ParseOptions) {
		opts.LogLevel = level
	}
}

// WithMIDIEventFilter sets the event filter applied to the playable
// timeline.
func WithMIDIEventFilter(filter MIDIEventFilter) Option {
	return func(opts *ParseOptions) {
		opts.MIDIEventFilter = &filter
	}
}

// WithDefaultTempo sets the tempo, in BPM, substituted when a file declares
// a non-positive tempo or resolution.
func WithDefaultTempo(bpm float64) Option {
	return func(opts *ParseOptions) {
		opts.DefaultTempoBPM = bpm
	}
}
