package tempo

import (
	"math"
	"sort"

	"github.com/Maokus/MVMNT-sub009/sdk/contracts"
)

// Converter implements contracts.TimeConverter by binary search over an
// immutable segment table. All methods are pure; one converter may be shared
// by any number of goroutines.
type Converter struct {
	table *Table
	sig   contracts.TimeSignature
}

var _ contracts.TimeConverter = (*Converter)(nil)

// NewConverter returns a converter over the given table and meter.
func NewConverter(table *Table, sig contracts.TimeSignature) *Converter {
	return &Converter{table: table, sig: sig}
}

// segmentAtTick returns the last segment with StartTick <= tick. A query at
// an exact boundary belongs to the later segment: a tempo change takes
// effect at its own tick, not before. Queries before the first segment
// clamp to segment 0.
func (c *Converter) segmentAtTick(tick float64) *Segment {
	segs := c.table.segments
	i := sort.Search(len(segs), func(i int) bool {
		return float64(segs[i].StartTick) > tick
	}) - 1
	if i < 0 {
		i = 0
	}
	return &segs[i]
}

func (c *Converter) segmentAtSeconds(seconds float64) *Segment {
	segs := c.table.segments
	i := sort.Search(len(segs), func(i int) bool {
		return segs[i].CumulativeSecondsAtStart > seconds
	}) - 1
	if i < 0 {
		i = 0
	}
	return &segs[i]
}

func (c *Converter) segmentAtBeats(beats float64) *Segment {
	segs := c.table.segments
	i := sort.Search(len(segs), func(i int) bool {
		return segs[i].CumulativeBeatsAtStart > beats
	}) - 1
	if i < 0 {
		i = 0
	}
	return &segs[i]
}

// TicksToSeconds converts an absolute tick position to seconds.
func (c *Converter) TicksToSeconds(tick float64) float64 {
	seg := c.segmentAtTick(tick)
	return seg.CumulativeSecondsAtStart + (tick-float64(seg.StartTick))*seg.SecondsPerTick
}

// SecondsToTicks converts a wall-clock position to (fractional) ticks.
// Callers that need an integer tick round the result.
func (c *Converter) SecondsToTicks(seconds float64) float64 {
	seg := c.segmentAtSeconds(seconds)
	return float64(seg.StartTick) + (seconds-seg.CumulativeSecondsAtStart)/seg.SecondsPerTick
}

// BeatsToSeconds converts a quarter-note beat position to seconds. Beats per
// second varies across segments while ticks per beat does not, so the
// lookup runs over the beats-denominated prefix sum.
func (c *Converter) BeatsToSeconds(beats float64) float64 {
	seg := c.segmentAtBeats(beats)
	ticks := (beats - seg.CumulativeBeatsAtStart) * float64(c.table.ticksPerQuarter)
	return seg.CumulativeSecondsAtStart + ticks*seg.SecondsPerTick
}

// SecondsToBeats converts a wall-clock position to quarter-note beats.
func (c *Converter) SecondsToBeats(seconds float64) float64 {
	seg := c.segmentAtSeconds(seconds)
	ticks := (seconds - seg.CumulativeSecondsAtStart) / seg.SecondsPerTick
	return seg.CumulativeBeatsAtStart + ticks/float64(c.table.ticksPerQuarter)
}

// SecondsToBarsBeats converts a wall-clock position to a 1-based bar:beat
// transport position under the converter's meter.
func (c *Converter) SecondsToBarsBeats(seconds float64) contracts.BarsBeats {
	beats := c.SecondsToBeats(seconds)
	perBar := c.sig.QuarterNotesPerBar()
	bar := math.Floor(beats / perBar)
	return contracts.BarsBeats{
		Bar:  int(bar) + 1,
		Beat: beats - bar*perBar + 1,
	}
}
