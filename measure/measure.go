// Package measure estimates rendered text geometry from font metrics.
//
// It backs the lowest-priority resolution strategy: when no introspection
// capability can answer a bounds query, the error's position is estimated
// by measuring the text that precedes it with a real shaped font and
// simulating the surface's line wrapping.
package measure

import (
	"bytes"
	"os"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// Font is a parsed font file. One Font can back many measurements at
// different sizes. The parsed form is read-only and safe for concurrent
// use.
type Font struct {
	font *font.Font
}

// ParseFont parses TTF or OTF font data.
func ParseFont(data []byte) (*Font, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Font{font: face.Font}, nil
}

// LoadFont parses a font file from disk.
func LoadFont(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFont(data)
}

// Measurer computes shaped advance widths for text at arbitrary sizes.
//
// Measurer is safe for concurrent use: the parsed font.Font is read-only,
// each call wraps it in a fresh lightweight font.Face (font.Face is not
// concurrent-safe), and the HarfBuzz shaper instances are pooled because
// they carry internal buffers.
type Measurer struct {
	font *font.Font

	shaperPool sync.Pool
}

// NewMeasurer creates a Measurer over a parsed font.
func NewMeasurer(f *Font) *Measurer {
	return &Measurer{
		font: f.font,
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// Advance returns the total advance width of text in pixels at the given
// font size, including kerning and ligature effects from real shaping.
func (m *Measurer) Advance(text string, size float64) float64 {
	if text == "" || size <= 0 {
		return 0
	}

	runes := []rune(text)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(m.font),
		Size:      floatToFixed(size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	shaper := m.shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := shaper.Shape(input)
	m.shaperPool.Put(shaper)

	return fixedToFloat(output.Advance)
}

// detectScript inspects the runes and returns the script of the first
// non-space character. Mixed-script text measures as its leading script;
// good enough for an estimate.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// floatToFixed converts a float64 size to fixed.Int26_6 (6 fractional bits).
func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
