package smf

import (
	"cmp"
	"slices"
	"time"
)

// Note is a paired note-on/note-off with real-time placement. Start and
// Duration are measured from the start of the file.
type Note struct {
	Track    int
	Channel  uint8
	Key      uint8
	Velocity uint8
	Start    time.Duration
	Duration time.Duration
}

// Notes pairs note-on and note-off events into notes, ordered by start
// time. A file in DeltaTicks form is converted to absolute time first.
//
// A note-on for a key that is already sounding ends the previous note at
// the retrigger point. Notes still open at the end of the file are closed
// at the time of the file's last event.
func (f *File) Notes() ([]Note, error) {
	abs := f
	if f.TimeMode == DeltaTicks {
		var err error
		abs, err = f.ToAbsolute()
		if err != nil {
			return nil, err
		}
	}

	end, err := abs.Duration()
	if err != nil {
		return nil, err
	}

	var notes []Note
	for ti, track := range abs.Tracks {
		// 発音中のノートの notes 内インデックス
		open := make(map[[2]uint8]int)
		for _, ev := range track {
			at := time.Duration(ev.Time) * time.Microsecond
			switch m := ev.Message.(type) {
			case NoteOn:
				key := [2]uint8{m.Channel, m.Key}
				if i, ok := open[key]; ok {
					notes[i].Duration = at - notes[i].Start
				}
				open[key] = len(notes)
				notes = append(notes, Note{
					Track:    ti,
					Channel:  m.Channel,
					Key:      m.Key,
					Velocity: m.Velocity,
					Start:    at,
				})
			case NoteOff:
				key := [2]uint8{m.Channel, m.Key}
				if i, ok := open[key]; ok {
					notes[i].Duration = at - notes[i].Start
					delete(open, key)
				}
			}
		}
		for _, i := range open {
			notes[i].Duration = end - notes[i].Start
		}
	}

	slices.SortStableFunc(notes, func(a, b Note) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return notes, nil
}
