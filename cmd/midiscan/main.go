package main

import (
	"fmt"
	"os"

	"github.com/Maokus/MVMNT-sub009/internal/logger"
	"github.com/Maokus/MVMNT-sub009/sdk/contracts"
	"github.com/Maokus/MVMNT-sub009/sdk/timeline"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func main() {
	if len(os.Args) < 3 {
		usage()
		return
	}

	switch os.Args[1] {
	case "info":
		info(os.Args[2])
	case "events":
		events(os.Args[2])
	case "tempo":
		tempoMap(os.Args[2])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("midiscan - MIDI timeline inspector")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  info <file>    - Summary: duration, resolution, meter, trim")
	fmt.Println("  events <file>  - List timeline events with seconds timestamps")
	fmt.Println("  tempo <file>   - Print the tempo map")
}

func parse(path string) *contracts.Timeline {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Cannot read %s: %v\n", path, err)
		os.Exit(1)
	}
	tl, err := timeline.Parse(data,
		contracts.WithLogger(logger.NewStandardLogger()),
		contracts.WithLogLevel(contracts.WarnLevel),
	)
	if err != nil {
		fmt.Printf("Unreadable MIDI file: %v\n", err)
		os.Exit(1)
	}
	return tl
}

func info(path string) {
	tl := parse(path)

	fmt.Println(titleStyle.Render("=== " + path + " ==="))
	fmt.Printf("%s %.3f s\n", keyStyle.Render("duration:"), tl.DurationSeconds)
	fmt.Printf("%s %d ticks/quarter\n", keyStyle.Render("resolution:"), tl.TicksPerQuarterNote)
	fmt.Printf("%s %d/%d\n", keyStyle.Render("meter:"),
		tl.TimeSignature.Numerator, tl.TimeSignature.Denominator)
	fmt.Printf("%s %d events, %d meta\n", keyStyle.Render("events:"),
		len(tl.Events), len(tl.MetaEvents))
	fmt.Printf("%s %d ticks of leading silence removed\n",
		keyStyle.Render("trimmed:"), tl.TrimmedTicks)

	if len(tl.Warnings) > 0 {
		fmt.Println(warnStyle.Render("warnings:"))
		for _, w := range tl.Warnings {
			fmt.Println(warnStyle.Render("  - " + w))
		}
	}
}

func events(path string) {
	tl := parse(path)

	fmt.Println(titleStyle.Render("=== Timeline events ==="))
	for i, ev := range tl.Events {
		fmt.Printf("%4d  %8.3fs  tick %-7d ch %-2d %s note=%d vel=%d\n",
			i, ev.Time, ev.Tick, ev.Channel, ev.Kind, ev.Note, ev.Velocity)
	}
	for _, ev := range tl.MetaEvents {
		fmt.Printf("      %8.3fs  meta 0x%02x %q\n", ev.Time, ev.MetaType, ev.Text)
	}
}

func tempoMap(path string) {
	tl := parse(path)

	fmt.Println(titleStyle.Render("=== Tempo map ==="))
	for _, p := range tl.TempoMapSeconds {
		bpm := 60e6 / float64(p.MicrosPerQuarterNote)
		fmt.Printf("%8.3fs  %8d µs/quarter  %.2f BPM\n",
			p.TimeSeconds, p.MicrosPerQuarterNote, bpm)
	}
}
