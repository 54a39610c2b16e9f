package tempo

import (
	"math"
	"testing"

	"github.com/Maokus/MVMNT-sub009/sdk/contracts"
)

// 120 BPM, switching to 240 BPM exactly one quarter note in.
func twoTempoConverter(t *testing.T) *Converter {
	t.Helper()
	table, err := Build([]contracts.TempoChange{
		{Tick: 0, MicrosPerQuarterNote: 500000},
		{Tick: 480, MicrosPerQuarterNote: 250000},
	}, 480)
	if err != nil {
		t.Logf("Failed building segment table: %s\n", err)
		t.FailNow()
	}
	return NewConverter(table, contracts.DefaultTimeSignature)
}

func TestTicksToSecondsAcrossTempoChange(t *testing.T) {
	conv := twoTempoConverter(t)
	// Under constant 120 BPM tick 960 would land at 1.0 s; the portion
	// after the change runs at twice the speed, so it lands at 0.75 s.
	got := conv.TicksToSeconds(960)
	if math.Abs(got-0.75) > 1e-9 {
		t.Logf("Tick 960 converted to %g s, expected 0.75\n", got)
		t.FailNow()
	}
}

func TestBoundaryBelongsToLaterSegment(t *testing.T) {
	conv := twoTempoConverter(t)
	// The change takes effect at its own tick: one tick past the boundary
	// advances at the faster rate.
	atBoundary := conv.TicksToSeconds(480)
	if math.Abs(atBoundary-0.5) > 1e-9 {
		t.Logf("Tick 480 converted to %g s, expected 0.5\n", atBoundary)
		t.FailNow()
	}
	step := conv.TicksToSeconds(481) - atBoundary
	fastRate := 0.25 / 480
	if math.Abs(step-fastRate) > 1e-12 {
		t.Logf("Rate at the boundary is %g s/tick, expected %g\n", step, fastRate)
		t.FailNow()
	}
}

func TestConversionInverseLaw(t *testing.T) {
	conv := twoTempoConverter(t)
	for tick := 0; tick <= 4800; tick += 7 {
		seconds := conv.TicksToSeconds(float64(tick))
		back := conv.SecondsToTicks(seconds)
		if math.Abs(back-float64(tick)) > 1.0 {
			t.Logf("Inverse law broken at tick %d: came back as %g\n", tick, back)
			t.FailNow()
		}
	}
}

func TestQueryBeforeFirstSegmentClamps(t *testing.T) {
	// A table whose first explicit change sits past the origin still
	// answers earlier queries at segment 0's rate.
	table, err := Build([]contracts.TempoChange{
		{Tick: 100, MicrosPerQuarterNote: 500000},
	}, 480)
	if err != nil {
		t.Logf("Failed building segment table: %s\n", err)
		t.FailNow()
	}
	conv := NewConverter(table, contracts.DefaultTimeSignature)
	rate := 0.5 / 480
	got := conv.TicksToSeconds(50)
	want := -50 * rate
	if math.Abs(got-want) > 1e-12 {
		t.Logf("Query before first segment gave %g, expected %g\n", got, want)
		t.FailNow()
	}
}

func TestBeatsConversions(t *testing.T) {
	conv := twoTempoConverter(t)
	// Beat 1 is the tempo change boundary: 0.5 s. Beat 2 adds a quarter
	// note at 240 BPM: 0.25 s more.
	cases := []struct{ beats, seconds float64 }{
		{0, 0},
		{0.5, 0.25},
		{1, 0.5},
		{2, 0.75},
		{3, 1.0},
	}
	for _, c := range cases {
		got := conv.BeatsToSeconds(c.beats)
		if math.Abs(got-c.seconds) > 1e-9 {
			t.Logf("BeatsToSeconds(%g) = %g, expected %g\n", c.beats, got, c.seconds)
			t.FailNow()
		}
		back := conv.SecondsToBeats(c.seconds)
		if math.Abs(back-c.beats) > 1e-9 {
			t.Logf("SecondsToBeats(%g) = %g, expected %g\n", c.seconds, back, c.beats)
			t.FailNow()
		}
	}
}

func TestSecondsToBarsBeats(t *testing.T) {
	table, err := Build([]contracts.TempoChange{
		{Tick: 0, MicrosPerQuarterNote: 500000},
	}, 480)
	if err != nil {
		t.Logf("Failed building segment table: %s\n", err)
		t.FailNow()
	}
	conv := NewConverter(table, contracts.DefaultTimeSignature)
	// At 120 BPM in 4/4, 2 s is exactly one full bar.
	pos := conv.SecondsToBarsBeats(2.0)
	if pos.Bar != 2 || math.Abs(pos.Beat-1) > 1e-9 {
		t.Logf("2.0 s converted to bar %d beat %g, expected bar 2 beat 1\n", pos.Bar, pos.Beat)
		t.FailNow()
	}
	pos = conv.SecondsToBarsBeats(0.5)
	if pos.Bar != 1 || math.Abs(pos.Beat-2) > 1e-9 {
		t.Logf("0.5 s converted to bar %d beat %g, expected bar 1 beat 2\n", pos.Bar, pos.Beat)
		t.FailNow()
	}
}
