package timeline

import (
	"errors"
	"math"
	"testing"

	"github.com/Maokus/MVMNT-sub009/internal/logger"
	"github.com/Maokus/MVMNT-sub009/sdk/contracts"
)

func quietOptions() []contracts.Option {
	log := logger.NewStandardLogger()
	return []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.ErrorLevel),
	}
}

// One note held for 32 ticks at 96 PPQ and the default 120 BPM.
func singleNoteFile() []byte {
	return []byte{
		// MThd, format 0, one track, 96 PPQ
		0x4D, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 0, 0, 1, 0, 0x60,
		// MTrk, length 11
		0x4D, 0x54, 0x72, 0x6B, 0, 0, 0, 0x0B,
		// Note 60 on at tick 0, velocity 64
		0x00, 0x90, 0x3C, 0x40,
		// Running-status note-off at tick 0x20
		0x20, 0x3C, 0x00,
		// End of track
		0x00, 0xFF, 0x2F, 0x00,
	}
}

func TestParseSingleNote(t *testing.T) {
	tl, err := Parse(singleNoteFile(), quietOptions()...)
	if err != nil {
		t.Logf("Failed parsing single-note file: %s\n", err)
		t.FailNow()
	}
	if len(tl.Events) != 2 {
		t.Logf("Expected a 2-element event list, got %d\n", len(tl.Events))
		t.FailNow()
	}
	want := 32.0 / 96.0 * 0.5
	if math.Abs(tl.DurationSeconds-want) > 1e-9 {
		t.Logf("Duration %g s, expected %g\n", tl.DurationSeconds, want)
		t.FailNow()
	}
	if tl.TicksPerQuarterNote != 96 {
		t.Logf("Wrong resolution: %d\n", tl.TicksPerQuarterNote)
		t.FailNow()
	}
	if tl.TrimmedTicks != 0 {
		t.Logf("Trimmed %d ticks from a file starting at zero\n", tl.TrimmedTicks)
		t.FailNow()
	}
	if len(tl.TempoMapSeconds) != 1 || tl.TempoMapSeconds[0].MicrosPerQuarterNote != 500000 {
		t.Logf("Wrong tempo map: %+v\n", tl.TempoMapSeconds)
		t.FailNow()
	}
	if len(tl.Warnings) != 0 {
		t.Logf("Clean file produced warnings: %v\n", tl.Warnings)
		t.FailNow()
	}
}

func TestParseUnreadableFile(t *testing.T) {
	_, err := Parse([]byte("not a midi file at all"), quietOptions()...)
	if err == nil {
		t.Logf("Garbage input didn't fail\n")
		t.FailNow()
	}
	if !errors.Is(err, contracts.ErrUnreadableFile) {
		t.Logf("Error doesn't match ErrUnreadableFile: %s\n", err)
		t.FailNow()
	}
}

func TestParseDegenerateTempoSubstitution(t *testing.T) {
	data := []byte{
		// MThd, format 0, one track, 96 PPQ
		0x4D, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 0, 0, 1, 0, 0x60,
		// MTrk, length 18
		0x4D, 0x54, 0x72, 0x6B, 0, 0, 0, 0x12,
		// Tempo meta event declaring zero microseconds per quarter note
		0x00, 0xFF, 0x51, 0x03, 0x00, 0x00, 0x00,
		// A note pair so the timeline is audible
		0x00, 0x90, 0x3C, 0x40,
		0x60, 0x3C, 0x00,
		// End of track
		0x00, 0xFF, 0x2F, 0x00,
	}
	tl, err := Parse(data, quietOptions()...)
	if err != nil {
		t.Logf("Degenerate tempo failed the parse instead of substituting: %s\n", err)
		t.FailNow()
	}
	if len(tl.Warnings) == 0 {
		t.Logf("Substitution wasn't recorded as a warning\n")
		t.FailNow()
	}
	if len(tl.TempoChanges) != 1 || tl.TempoChanges[0].MicrosPerQuarterNote != 500000 {
		t.Logf("Default tempo not substituted: %+v\n", tl.TempoChanges)
		t.FailNow()
	}
	// 0x60 ticks at 96 PPQ and 120 BPM is exactly half a second.
	if math.Abs(tl.DurationSeconds-0.5) > 1e-9 {
		t.Logf("Duration %g s under substituted tempo, expected 0.5\n", tl.DurationSeconds)
		t.FailNow()
	}
}

func TestParseWithCustomDefaultTempo(t *testing.T) {
	data := []byte{
		0x4D, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 0, 0, 1, 0, 0x60,
		0x4D, 0x54, 0x72, 0x6B, 0, 0, 0, 0x12,
		0x00, 0xFF, 0x51, 0x03, 0x00, 0x00, 0x00,
		0x00, 0x90, 0x3C, 0x40,
		0x60, 0x3C, 0x00,
		0x00, 0xFF, 0x2F, 0x00,
	}
	opts := append(quietOptions(), contracts.WithDefaultTempo(240))
	tl, err := Parse(data, opts...)
	if err != nil {
		t.Logf("Parse with custom default tempo failed: %s\n", err)
		t.FailNow()
	}
	if len(tl.TempoChanges) != 1 || tl.TempoChanges[0].MicrosPerQuarterNote != 250000 {
		t.Logf("Custom default tempo not applied: %+v\n", tl.TempoChanges)
		t.FailNow()
	}
}

func TestConverterOverTrimmedTimeline(t *testing.T) {
	data := []byte{
		// MThd, format 0, one track, 96 PPQ
		0x4D, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 0, 0, 1, 0, 0x60,
		// MTrk, length 11
		0x4D, 0x54, 0x72, 0x6B, 0, 0, 0, 0x0B,
		// Note 60 on at tick 96 (one quarter note of leading silence)
		0x60, 0x90, 0x3C, 0x40,
		// Note off 96 ticks later
		0x60, 0x3C, 0x00,
		// End of track
		0x00, 0xFF, 0x2F, 0x00,
	}
	tl, err := Parse(data, quietOptions()...)
	if err != nil {
		t.Logf("Failed parsing: %s\n", err)
		t.FailNow()
	}
	if tl.TrimmedTicks != 96 {
		t.Logf("Trimmed %d ticks, expected 96\n", tl.TrimmedTicks)
		t.FailNow()
	}
	conv, err := NewConverter(tl)
	if err != nil {
		t.Logf("Failed building converter: %s\n", err)
		t.FailNow()
	}
	// The converter works in the trimmed domain, consistent with Events.
	if got := conv.TicksToSeconds(0); math.Abs(got) > 1e-9 {
		t.Logf("Trimmed origin converts to %g s, expected 0\n", got)
		t.FailNow()
	}
	if got := conv.TicksToSeconds(96); math.Abs(got-0.5) > 1e-9 {
		t.Logf("Tick 96 converts to %g s, expected 0.5\n", got)
		t.FailNow()
	}
	for _, ev := range tl.Events {
		if math.Abs(conv.TicksToSeconds(float64(ev.Tick))-ev.Time) > 1e-9 {
			t.Logf("Converter disagrees with event times at tick %d\n", ev.Tick)
			t.FailNow()
		}
	}
	pos := conv.SecondsToBarsBeats(0)
	if pos.Bar != 1 || math.Abs(pos.Beat-1) > 1e-9 {
		t.Logf("Trimmed origin is bar %d beat %g, expected 1:1\n", pos.Bar, pos.Beat)
		t.FailNow()
	}
}
