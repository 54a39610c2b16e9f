package main

import (
	"fmt"
	"os"

	"github.com/Maokus/MVMNT-sub009/internal/logger"
	"github.com/Maokus/MVMNT-sub009/sdk/contracts"
	"github.com/Maokus/MVMNT-sub009/sdk/timeline"
)

func main() {
	log := logger.NewStandardLogger()

	if len(os.Args) < 2 {
		fmt.Println("usage: simple_use <file.mid>")
		return
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Error("Failed to read MIDI file", log.Field().Error("error", err))
		return
	}

	tl, err := timeline.Parse(data,
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithMIDIEventFilter(contracts.MIDIEventFilter{
			Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff},
		}),
	)
	if err != nil {
		log.Error("Failed to parse MIDI file", log.Field().Error("error", err))
		return
	}

	fmt.Printf("Duration: %.3f seconds, %d events\n", tl.DurationSeconds, len(tl.Events))

	conv, err := timeline.NewConverter(tl)
	if err != nil {
		log.Error("Failed to build converter", log.Field().Error("error", err))
		return
	}

	for _, ev := range tl.Events {
		pos := conv.SecondsToBarsBeats(ev.Time)
		fmt.Printf("%8.3fs  bar %d beat %.2f  %s note=%d ch=%d\n",
			ev.Time, pos.Bar, pos.Beat, ev.Kind, ev.Note, ev.Channel)
	}
}
