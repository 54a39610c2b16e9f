package timeline

import (
	"math"

	"github.com/Maokus/MVMNT-sub009/internal/tempo"
	"github.com/Maokus/MVMNT-sub009/sdk/contracts"
)

// NewConverter builds a TimeConverter over a parsed Timeline. Its queries
// run in the timeline's trimmed domain: tick 0, beat 0 and second 0 all
// refer to the first audible event, consistent with Timeline.Events.
func NewConverter(tl *contracts.Timeline) (contracts.TimeConverter, error) {
	table, err := tempo.Build(tl.TempoChanges, int(tl.TicksPerQuarterNote))
	if err != nil {
		return nil, err
	}
	inner := tempo.NewConverter(table, tl.TimeSignature)
	tickOff := float64(tl.TrimmedTicks)
	return &trimmedConverter{
		inner:   inner,
		sig:     tl.TimeSignature,
		tickOff: tickOff,
		secOff:  inner.TicksToSeconds(tickOff),
		beatOff: tickOff / float64(tl.TicksPerQuarterNote),
	}, nil
}

// trimmedConverter shifts every query by the trim offsets before delegating
// to the segment-table converter, so callers reason in timeline positions
// rather than raw file positions.
type trimmedConverter struct {
	inner   *tempo.Converter
	sig     contracts.TimeSignature
	tickOff float64
	secOff  float64
	beatOff float64
}

func (c *trimmedConverter) TicksToSeconds(tick float64) float64 {
	return c.inner.TicksToSeconds(tick+c.tickOff) - c.secOff
}

func (c *trimmedConverter) SecondsToTicks(seconds float64) float64 {
	return c.inner.SecondsToTicks(seconds+c.secOff) - c.tickOff
}

func (c *trimmedConverter) BeatsToSeconds(beats float64) float64 {
	return c.inner.BeatsToSeconds(beats+c.beatOff) - c.secOff
}

func (c *trimmedConverter) SecondsToBeats(seconds float64) float64 {
	return c.inner.SecondsToBeats(seconds+c.secOff) - c.beatOff
}

func (c *trimmedConverter) SecondsToBarsBeats(seconds float64) contracts.BarsBeats {
	beats := c.SecondsToBeats(seconds)
	perBar := c.sig.QuarterNotesPerBar()
	bar := math.Floor(beats / perBar)
	return contracts.BarsBeats{
		Bar:  int(bar) + 1,
		Beat: beats - bar*perBar + 1,
	}
}
