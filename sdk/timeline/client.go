// Package timeline is the public entry point of the MIDI timing engine: it
// turns a raw Standard MIDI File buffer into a trimmed, seconds-stamped
// Timeline and hands out time-domain converters over it.
package timeline

import (
	"errors"

	"github.com/Maokus/MVMNT-sub009/internal/arrange"
	"github.com/Maokus/MVMNT-sub009/internal/smf"
	"github.com/Maokus/MVMNT-sub009/internal/tempo"
	"github.com/Maokus/MVMNT-sub009/sdk/contracts"
	"go.uber.org/multierr"
)

// fallbackPPQ is substituted when a file declares a zero time resolution.
const fallbackPPQ = 480

// Parse decodes the given SMF byte buffer into a Timeline with the
// specified options. Each call owns its own decoder, tempo table and
// arranger, so concurrent parses need no locking.
//
// data []byte: A caller-owned, read-only buffer; it is never retained past the call.
// opts ...contracts.Option: A variadic list of option functions to customize the parse.
//
// Returns:
//   - *contracts.Timeline: The decoded timeline, possibly carrying warnings
//     when a damaged file was recovered best-effort.
//   - error: A FormatError when the file is structurally unreadable.
func Parse(data []byte, opts ...contracts.Option) (*contracts.Timeline, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	log := options.Logger

	decoded, err := smf.NewDecoder(log).Decode(data)
	if err != nil {
		log.Error("MIDI parse failed", log.Field().Error("error", err))
		return nil, err
	}

	table, err := tempo.Build(decoded.TempoChanges, int(decoded.TicksPerQuarterNote))
	if err != nil {
		var degenerate *contracts.DegenerateTempoError
		if !errors.As(err, &degenerate) {
			return nil, err
		}
		// Recover with the default tempo segment so a file with a broken
		// tempo map still renders.
		decoded.Warnings = multierr.Append(decoded.Warnings, err)
		log.Warn("degenerate tempo, substituting default",
			log.Field().Error("cause", err),
			log.Field().Float64("bpm", options.DefaultTempoBPM))
		table, err = defaultTable(decoded.TicksPerQuarterNote, options.DefaultTempoBPM)
		if err != nil {
			return nil, err
		}
	}

	sig := decoded.TimeSignature
	if !decoded.HasTimeSignature {
		sig = contracts.DefaultTimeSignature
	}
	conv := tempo.NewConverter(table, sig)
	arranged := arrange.Build(decoded.Tracks, conv, table, options.MIDIEventFilter)

	tl := &contracts.Timeline{
		Events:              arranged.Events,
		MetaEvents:          arranged.MetaEvents,
		DurationSeconds:     arranged.DurationSeconds,
		TicksPerQuarterNote: uint16(table.TicksPerQuarterNote()),
		TimeSignature:       sig,
		TempoChanges:        table.Changes(),
		TempoMapSeconds:     arranged.TempoMapSeconds,
		TrimmedTicks:        arranged.TrimmedTicks,
	}
	for _, w := range multierr.Errors(decoded.Warnings) {
		tl.Warnings = append(tl.Warnings, w.Error())
	}

	log.Info("MIDI timeline parsed",
		log.Field().Int("tracks", len(decoded.Tracks)),
		log.Field().Int("events", len(tl.Events)),
		log.Field().Float64("durationSeconds", tl.DurationSeconds),
		log.Field().Uint64("trimmedTicks", uint64(tl.TrimmedTicks)),
		log.Field().Int("warnings", len(tl.Warnings)))
	return tl, nil
}

func defaultTable(ppq uint16, bpm float64) (*tempo.Table, error) {
	resolution := int(ppq)
	if resolution <= 0 {
		resolution = fallbackPPQ
	}
	return tempo.Build([]contracts.TempoChange{
		{Tick: 0, MicrosPerQuarterNote: uint32(60e6 / bpm)},
	}, resolution)
}
