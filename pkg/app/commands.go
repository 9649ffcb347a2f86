package app

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/zurustar/mtrk/pkg/smf"
)

// runInfo ヘッダ・トラック構成・テンポ・演奏時間を表示する
func runInfo(w io.Writer, file *smf.File) error {
	duration, err := file.Duration()
	if err != nil {
		return err
	}
	abs, err := file.ToAbsolute()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "format:         %d\n", file.Format)
	fmt.Fprintf(w, "ticks per beat: %d\n", file.TicksPerBeat)
	fmt.Fprintf(w, "tracks:         %d\n", len(file.Tracks))
	fmt.Fprintf(w, "duration:       %s\n", duration.Round(time.Millisecond))

	for ti, track := range file.Tracks {
		fmt.Fprintf(w, "track %d: %d events", ti, len(track))
		for _, ev := range track {
			if mt, ok := ev.Message.(smf.MetaText); ok && mt.Code == 0x03 {
				fmt.Fprintf(w, " %q", smf.DecodeText(mt.Text))
				break
			}
		}
		fmt.Fprintln(w)
	}

	// テンポ変更はどのトラックにあっても全体に効くので、全トラック分を
	// 絶対時刻順で出す
	type tempoChange struct {
		at    time.Duration
		tempo smf.MetaTempo
	}
	var tempos []tempoChange
	for _, track := range abs.Tracks {
		for _, ev := range track {
			if mt, ok := ev.Message.(smf.MetaTempo); ok {
				tempos = append(tempos, tempoChange{
					at:    time.Duration(ev.Time) * time.Microsecond,
					tempo: mt,
				})
			}
		}
	}
	slices.SortStableFunc(tempos, func(a, b tempoChange) int {
		return cmp.Compare(a.at, b.at)
	})
	for _, tc := range tempos {
		fmt.Fprintf(w, "tempo at %s: %s\n", tc.at.Round(time.Millisecond), tc.tempo)
	}

	return nil
}

// runDump 全イベントをデルタティックと絶対時刻付きで表示する
func runDump(w io.Writer, file *smf.File) error {
	abs, err := file.ToAbsolute()
	if err != nil {
		return err
	}

	for ti, track := range file.Tracks {
		fmt.Fprintf(w, "track %d (%d events)\n", ti, len(track))
		for ei, ev := range track {
			at := time.Duration(abs.Tracks[ti][ei].Time) * time.Microsecond
			fmt.Fprintf(w, "  %10s  +%-6d %s\n", at, ev.Time, ev.Message)
		}
	}
	return nil
}
