// Package roll renders a decoded MIDI file as a piano-roll image: time on
// the horizontal axis, pitch on the vertical axis, one colored rectangle
// per note.
package roll

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/zurustar/mtrk/pkg/smf"
)

// ErrNoNotes is returned when the file contains no note events.
var ErrNoNotes = errors.New("no notes to draw")

// Options controls the rendered image.
type Options struct {
	Width  int
	Height int
	Title  string // 空ならトラック名メタイベントから取る
}

// Color is an RGB triple in the range [0, 1].
type Color struct {
	R float64
	G float64
	B float64
}

var (
	orangeColor = Color{1, 0.5, 0}
	greenColor  = Color{0.2, 1, 0.2}
	blueColor   = Color{0.5, 0.85, 1}
	yellowColor = Color{0.8, 0.6, 0.05}
	pinkColor   = Color{1, 0.6, 0.7}
	greyColor   = Color{0.5, 0.5, 0.5}

	// trackColors is indexed by track number modulo its length. The
	// percussion channel always uses greyColor instead.
	trackColors = []Color{orangeColor, greenColor, blueColor, yellowColor, pinkColor}

	backgroundColor = Color{0.08, 0.08, 0.1}
)

const (
	margin     = 20.0
	titleSpace = 36.0
	noteRadius = 2.0
)

func trackColor(track int) Color {
	return trackColors[track%len(trackColors)]
}

func setRGBColor(dc *gg.Context, c Color) {
	dc.SetRGB(c.R, c.G, c.B)
}

// WritePNG renders the file and writes a PNG image to w.
func WritePNG(w io.Writer, f *smf.File, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", opts.Width, opts.Height)
	}

	notes, err := f.Notes()
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		return ErrNoNotes
	}

	duration, err := f.Duration()
	if err != nil {
		return err
	}
	if duration <= 0 {
		return ErrNoNotes
	}

	title := opts.Title
	if title == "" {
		title = trackName(f)
	}

	// 音域の上下に1キー分の余白を取る
	lowKey, highKey := keyRange(notes)
	if lowKey > 0 {
		lowKey--
	}
	if highKey < 127 {
		highKey++
	}

	width := float64(opts.Width)
	height := float64(opts.Height)
	plotW := width - 2*margin
	plotH := height - 2*margin - titleSpace
	rowH := plotH / float64(highKey-lowKey+1)

	xAt := func(t time.Duration) float64 {
		return margin + plotW*float64(t)/float64(duration)
	}
	yAt := func(key uint8) float64 {
		// 高い音ほど上
		return margin + titleSpace + float64(highKey-key)*rowH
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	setRGBColor(dc, backgroundColor)
	dc.Clear()

	// オクターブごとの基準線（C）
	for key := lowKey; key <= highKey; key++ {
		if key%12 != 0 {
			continue
		}
		y := yAt(key) + rowH
		dc.SetRGBA(1, 1, 1, 0.15)
		dc.SetLineWidth(0.5)
		dc.DrawLine(margin, y, width-margin, y)
		dc.Stroke()
	}

	for _, n := range notes {
		x := xAt(n.Start)
		noteW := xAt(n.Start+n.Duration) - x
		if noteW < 1 {
			noteW = 1
		}
		dc.DrawRoundedRectangle(x, yAt(n.Key), noteW, rowH, noteRadius)

		if n.Channel == smf.PercussionChannel {
			setRGBColor(dc, greyColor)
		} else {
			setRGBColor(dc, trackColor(n.Track))
		}
		dc.FillPreserve()
		dc.SetRGBA(0, 0, 0, 1)
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	if title != "" {
		font, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return fmt.Errorf("failed to parse label font: %w", err)
		}
		face := truetype.NewFace(font, &truetype.Options{Size: 18})
		dc.SetFontFace(face)
		dc.SetRGB(1, 1, 1)
		dc.DrawString(title, margin, margin+18)
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// trackName returns the first track name meta event of the file, decoded
// to UTF-8.
func trackName(f *smf.File) string {
	for _, track := range f.Tracks {
		for _, ev := range track {
			if mt, ok := ev.Message.(smf.MetaText); ok && mt.Code == 0x03 {
				return smf.DecodeText(mt.Text)
			}
		}
	}
	return ""
}

func keyRange(notes []smf.Note) (low, high uint8) {
	low, high = notes[0].Key, notes[0].Key
	for _, n := range notes {
		if n.Key < low {
			low = n.Key
		}
		if n.Key > high {
			high = n.Key
		}
	}
	return low, high
}
