package measure

import (
	"sync"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func testMeasurer(t *testing.T) *Measurer {
	t.Helper()
	f, err := ParseFont(goregular.TTF)
	if err != nil {
		t.Fatalf("ParseFont(goregular) = %v", err)
	}
	return NewMeasurer(f)
}

func TestAdvance(t *testing.T) {
	m := testMeasurer(t)

	short := m.Advance("hello", 12)
	if short <= 0 {
		t.Fatalf("Advance(hello) = %v, want > 0", short)
	}
	long := m.Advance("hello world", 12)
	if long <= short {
		t.Errorf("Advance not monotone in text length: %v then %v", short, long)
	}
	big := m.Advance("hello", 24)
	if big <= short {
		t.Errorf("Advance not monotone in size: %v at 12pt, %v at 24pt", short, big)
	}
}

func TestAdvanceDegenerateInputs(t *testing.T) {
	m := testMeasurer(t)

	if got := m.Advance("", 12); got != 0 {
		t.Errorf("Advance of empty text = %v, want 0", got)
	}
	if got := m.Advance("hello", 0); got != 0 {
		t.Errorf("Advance at zero size = %v, want 0", got)
	}
}

func TestAdvanceConcurrent(t *testing.T) {
	// The shaper pool and per-call faces make one Measurer shareable
	// across goroutines.
	m := testMeasurer(t)
	want := m.Advance("concurrent", 12)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if got := m.Advance("concurrent", 12); got != want {
					t.Errorf("Advance = %v, want %v", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestParseFontRejectsGarbage(t *testing.T) {
	if _, err := ParseFont([]byte("not a font")); err == nil {
		t.Error("ParseFont accepted garbage data")
	}
}

func TestLoadFontMissingFile(t *testing.T) {
	if _, err := LoadFont("testdata/definitely-missing.ttf"); err == nil {
		t.Error("LoadFont succeeded on a missing file")
	}
}
