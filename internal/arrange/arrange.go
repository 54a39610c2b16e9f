// Package arrange merges decoded tracks into the final trimmed,
// seconds-stamped timeline and computes its sounding duration.
package arrange

import (
	"sort"

	"github.com/Maokus/MVMNT-sub009/internal/tempo"
	"github.com/Maokus/MVMNT-sub009/sdk/contracts"
)

// openNoteFallbackSeconds is the synthetic duration assigned to a note-on
// that never receives a matching note-off, for malformed files.
const openNoteFallbackSeconds = 1.0

// Result is the arranged timeline material handed back to the SDK layer.
type Result struct {
	Events          []contracts.Event
	MetaEvents      []contracts.Event
	DurationSeconds float64
	TrimmedTicks    uint32
	TempoMapSeconds []contracts.TempoPoint
}

// noteKey identifies an open note by channel and note number.
type noteKey struct {
	channel uint8
	note    uint8
}

// Build merges all tracks, sorts by tick (stable, ties keep per-track
// order), filters to the playable command set, trims leading silence so the
// earliest audible event lands at time zero, and pairs note-on/off events
// to compute the exact sounding duration.
func Build(tracks [][]contracts.Event, conv *tempo.Converter, table *tempo.Table,
	filter *contracts.MIDIEventFilter) *Result {

	merged := make([]contracts.Event, 0)
	for _, track := range tracks {
		merged = append(merged, track...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Tick < merged[j].Tick
	})

	keep := allowedKinds(filter)
	playable := make([]contracts.Event, 0, len(merged))
	meta := make([]contracts.Event, 0)
	for _, ev := range merged {
		if ev.Kind == contracts.MetaEvent {
			meta = append(meta, ev)
			continue
		}
		if keep[ev.Kind] {
			playable = append(playable, ev)
		}
	}

	// The trim offset is taken in the seconds domain, so leading silence is
	// removed uniformly regardless of tempo changes inside it.
	var earliest uint32
	if len(playable) > 0 {
		earliest = playable[0].Tick
		for _, ev := range playable {
			if ev.Tick < earliest {
				earliest = ev.Tick
			}
		}
	}
	offset := conv.TicksToSeconds(float64(earliest))

	for i := range playable {
		playable[i].Time = conv.TicksToSeconds(float64(playable[i].Tick)) - offset
		playable[i].Tick -= earliest
	}
	for i := range meta {
		meta[i].Time = conv.TicksToSeconds(float64(meta[i].Tick)) - offset
		if meta[i].Time < 0 {
			meta[i].Time = 0
		}
		if meta[i].Tick > earliest {
			meta[i].Tick -= earliest
		} else {
			meta[i].Tick = 0
		}
	}

	return &Result{
		Events:          playable,
		MetaEvents:      meta,
		DurationSeconds: duration(playable),
		TrimmedTicks:    earliest,
		TempoMapSeconds: tempoMapSeconds(table, offset),
	}
}

func allowedKinds(filter *contracts.MIDIEventFilter) map[contracts.EventKind]bool {
	if filter == nil {
		return map[contracts.EventKind]bool{
			contracts.NoteOnEvent:  true,
			contracts.NoteOffEvent: true,
		}
	}
	keep := make(map[contracts.EventKind]bool, len(filter.Commands))
	for _, cmd := range filter.Commands {
		switch cmd {
		case contracts.NoteOn:
			keep[contracts.NoteOnEvent] = true
		case contracts.NoteOff:
			keep[contracts.NoteOffEvent] = true
		case contracts.ControlChange:
			keep[contracts.ControlChangeEvent] = true
		case contracts.ProgramChange:
			keep[contracts.ProgramChangeEvent] = true
		}
	}
	return keep
}

// duration pairs each note-on with the next note-off on the same
// (channel, note) key. Open notes queue per key in first-on, first-off
// order; a note-on left open at the end of the file gets the fallback
// duration.
func duration(events []contracts.Event) float64 {
	open := make(map[noteKey][]int)
	var total float64
	for i, ev := range events {
		key := noteKey{channel: ev.Channel, note: ev.Note}
		switch ev.Kind {
		case contracts.NoteOnEvent:
			if ev.Velocity > 0 {
				open[key] = append(open[key], i)
			}
		case contracts.NoteOffEvent:
			queue := open[key]
			if len(queue) == 0 {
				continue
			}
			open[key] = queue[1:]
			if ev.Time > total {
				total = ev.Time
			}
		}
	}
	for _, queue := range open {
		for _, i := range queue {
			if end := events[i].Time + openNoteFallbackSeconds; end > total {
				total = end
			}
		}
	}
	return total
}

// tempoMapSeconds re-expresses the segment table in trimmed seconds for
// downstream display. The first entry is forced to time zero.
func tempoMapSeconds(table *tempo.Table, offset float64) []contracts.TempoPoint {
	segments := table.Segments()
	points := make([]contracts.TempoPoint, len(segments))
	for i, seg := range segments {
		t := seg.CumulativeSecondsAtStart - offset
		if t < 0 {
			t = 0
		}
		points[i] = contracts.TempoPoint{
			TimeSeconds:          t,
			MicrosPerQuarterNote: seg.MicrosPerQuarterNote,
		}
	}
	if len(points) > 0 {
		points[0].TimeSeconds = 0
	}
	return points
}
