// Package tempo builds immutable tempo segment tables and converts between
// the tick, seconds and beats time domains.
package tempo

import (
	"sort"

	"github.com/Maokus/MVMNT-sub009/sdk/contracts"
)

// Segment is one run of constant tempo. The table forms a prefix-sum
// structure over time: CumulativeSecondsAtStart of segment i equals that of
// segment i-1 plus the tick delta times segment i-1's rate.
type Segment struct {
	StartTick                uint32
	MicrosPerQuarterNote     uint32
	SecondsPerTick           float64
	CumulativeSecondsAtStart float64
	CumulativeBeatsAtStart   float64
}

// Table is an ordered, deduplicated tempo segment table. A built table is
// read-only and safe to share between concurrent converters.
type Table struct {
	segments        []Segment
	ticksPerQuarter int
}

// Build sorts the raw tempo observations by tick (stable), deduplicates
// same-tick entries keeping the last occurrence, and precomputes each
// segment's rate and cumulative offsets. Fails only on a non-positive
// resolution or tempo value.
func Build(changes []contracts.TempoChange, ticksPerQuarter int) (*Table, error) {
	if ticksPerQuarter <= 0 {
		return nil, &contracts.DegenerateTempoError{TicksPerQuarterNote: ticksPerQuarter}
	}

	sorted := make([]contracts.TempoChange, len(changes))
	copy(sorted, changes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tick < sorted[j].Tick
	})

	// Same-tick duplicates keep the last occurrence, matching how DAWs emit
	// redundant tempo resets.
	deduped := sorted[:0]
	for _, c := range sorted {
		if n := len(deduped); n > 0 && deduped[n-1].Tick == c.Tick {
			deduped[n-1] = c
			continue
		}
		deduped = append(deduped, c)
	}
	if len(deduped) == 0 {
		deduped = append(deduped, contracts.TempoChange{
			Tick: 0, MicrosPerQuarterNote: 500000,
		})
	}

	segments := make([]Segment, 0, len(deduped))
	var prev *Segment
	for _, c := range deduped {
		if c.MicrosPerQuarterNote == 0 {
			return nil, &contracts.DegenerateTempoError{
				TicksPerQuarterNote: ticksPerQuarter,
				MicrosPerQuarter:    c.MicrosPerQuarterNote,
			}
		}
		seg := Segment{
			StartTick:              c.Tick,
			MicrosPerQuarterNote:   c.MicrosPerQuarterNote,
			SecondsPerTick:         float64(c.MicrosPerQuarterNote) / 1e6 / float64(ticksPerQuarter),
			CumulativeBeatsAtStart: float64(c.Tick) / float64(ticksPerQuarter),
		}
		if prev != nil {
			seg.CumulativeSecondsAtStart = prev.CumulativeSecondsAtStart +
				float64(c.Tick-prev.StartTick)*prev.SecondsPerTick
		}
		segments = append(segments, seg)
		prev = &segments[len(segments)-1]
	}

	return &Table{segments: segments, ticksPerQuarter: ticksPerQuarter}, nil
}

// Segments returns the segment table in start-tick order.
func (t *Table) Segments() []Segment {
	return t.segments
}

// TicksPerQuarterNote returns the resolution the table was built with.
func (t *Table) TicksPerQuarterNote() int {
	return t.ticksPerQuarter
}

// Changes returns the deduplicated tick-domain tempo map.
func (t *Table) Changes() []contracts.TempoChange {
	changes := make([]contracts.TempoChange, len(t.segments))
	for i, seg := range t.segments {
		changes[i] = contracts.TempoChange{
			Tick:                 seg.StartTick,
			MicrosPerQuarterNote: seg.MicrosPerQuarterNote,
		}
	}
	return changes
}
