// Package fonts provides the embedded Go fonts used for SVG text and the text
// metrics used to size labels before a browser ever lays them out.
//
// The fonts come from golang.org/x/image/font/gofont, so measurement and
// embedding work without any system font installed.
package fonts

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// FontFamily is the CSS font-family name of the embedded font.
const FontFamily = "Go"

// FallbackFontFamily lists fallbacks for viewers that ignore @font-face.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Helvetica, Arial, sans-serif`

// LineHeight is the line advance for multi-line labels, in ems.
const LineHeight = 1.2

// Weight selects the regular or bold face.
type Weight int

const (
	Regular Weight = iota
	Bold
)

// ParseWeight maps a CSS font-weight value to a Weight. Numeric weights of
// 600 and above are bold.
func ParseWeight(s string) Weight {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "bold", "bolder":
		return Bold
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 600 {
		return Bold
	}
	return Regular
}

// RegularTTF returns the regular face as TrueType data.
func RegularTTF() []byte { return goregular.TTF }

// BoldTTF returns the bold face as TrueType data.
func BoldTTF() []byte { return gobold.TTF }

// Cache for base64-encoded fonts (computed once on first access).
var (
	regularBase64     string
	regularBase64Once sync.Once
	boldBase64        string
	boldBase64Once    sync.Once
)

// RegularTTFBase64 returns the regular face as a base64 string.
func RegularTTFBase64() string {
	regularBase64Once.Do(func() {
		regularBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return regularBase64
}

// BoldTTFBase64 returns the bold face as a base64 string.
func BoldTTFBase64() string {
	boldBase64Once.Do(func() {
		boldBase64 = base64.StdEncoding.EncodeToString(gobold.TTF)
	})
	return boldBase64
}

// FontFaceCSS returns @font-face rules embedding both faces.
func FontFaceCSS() string {
	return fmt.Sprintf(`@font-face { font-family: '%[1]s'; font-weight: normal; src: url(data:font/ttf;base64,%[2]s) format('truetype'); }
@font-face { font-family: '%[1]s'; font-weight: bold; src: url(data:font/ttf;base64,%[3]s) format('truetype'); }`,
		FontFamily, RegularTTFBase64(), BoldTTFBase64())
}

// =============================================================================
// Measurement
// =============================================================================

// Metrics is the measured extent of a text run in pixels. Ascent and Descent
// are positive distances from the baseline of the first line and the last
// line respectively; LineCount is the number of lines.
type Metrics struct {
	Width     float64
	Ascent    float64
	Descent   float64
	LineCount int
	Size      float64
}

// Height returns the total height of the text block.
func (m Metrics) Height() float64 {
	if m.LineCount == 0 {
		return 0
	}
	return m.Ascent + m.Descent + float64(m.LineCount-1)*LineHeight*m.Size
}

// TextMeasurer measures text runs.
type TextMeasurer interface {
	Measure(text string, size float64, weight Weight) Metrics
}

type faceKey struct {
	size   float64
	weight Weight
}

// Measurer measures text with the embedded Go fonts at 72 DPI, so one point
// equals one pixel. It is safe for concurrent use.
type Measurer struct {
	mu      sync.Mutex
	regular *sfnt.Font
	bold    *sfnt.Font
	faces   map[faceKey]font.Face
}

// NewMeasurer parses the embedded fonts.
func NewMeasurer() (*Measurer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &Measurer{
		regular: regular,
		bold:    bold,
		faces:   make(map[faceKey]font.Face),
	}, nil
}

var (
	defaultMeasurer     *Measurer
	defaultMeasurerOnce sync.Once
)

// Default returns a shared Measurer. It panics if the embedded fonts cannot
// be parsed, which only happens with a corrupt build.
func Default() *Measurer {
	defaultMeasurerOnce.Do(func() {
		m, err := NewMeasurer()
		if err != nil {
			panic(err)
		}
		defaultMeasurer = m
	})
	return defaultMeasurer
}

// Measure returns the extent of text at the given pixel size. Lines are
// separated by "\n".
func (m *Measurer) Measure(text string, size float64, weight Weight) Metrics {
	if text == "" || size <= 0 {
		return Metrics{Size: size}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	face, err := m.face(size, weight)
	if err != nil {
		return approximate(text, size)
	}

	lines := strings.Split(text, "\n")
	var width float64
	for _, line := range lines {
		width = math.Max(width, fixedToFloat(font.MeasureString(face, line)))
	}
	fm := face.Metrics()
	return Metrics{
		Width:     width,
		Ascent:    fixedToFloat(fm.Ascent),
		Descent:   fixedToFloat(fm.Descent),
		LineCount: len(lines),
		Size:      size,
	}
}

func (m *Measurer) face(size float64, weight Weight) (font.Face, error) {
	key := faceKey{size: size, weight: weight}
	if f, ok := m.faces[key]; ok {
		return f, nil
	}
	src := m.regular
	if weight == Bold {
		src = m.bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[key] = f
	return f, nil
}

// approximate estimates metrics when no face is available.
func approximate(text string, size float64) Metrics {
	lines := strings.Split(text, "\n")
	var longest int
	for _, l := range lines {
		longest = max(longest, len([]rune(l)))
	}
	return Metrics{
		Width:     float64(longest) * size * 0.6,
		Ascent:    size * 0.8,
		Descent:   size * 0.2,
		LineCount: len(lines),
		Size:      size,
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
