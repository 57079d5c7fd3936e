package dailyquote

import (
	"strings"
	"time"
)

// FontStyle selects the face variant of a text element.
type FontStyle int

const (
	// FontRegular is the upright system face.
	FontRegular FontStyle = iota
	// FontItalic is the italic system face.
	FontItalic
	// FontSerif is a named serif face (Georgia on the original widget).
	FontSerif
)

// Font describes a text element's face. Size is in points.
type Font struct {
	Name  string
	Size  float64
	Style FontStyle
}

// ElementKind distinguishes text rows from vertical gaps.
type ElementKind int

const (
	// ElementText is a line (or wrapped paragraph) of text.
	ElementText ElementKind = iota
	// ElementSpacer is an empty gap of Height points.
	ElementSpacer
)

// Element is one entry in a widget's vertical stack.
type Element struct {
	Kind     ElementKind
	Text     string
	Font     Font
	Color    string  // hex without '#'
	Alpha    float64 // 0..1
	Height   float64 // spacer height in points
	MinScale float64 // smallest factor the font may shrink by to fit
}

// Gradient is a linear, top-to-bottom background.
type Gradient struct {
	Colors    []string
	Locations []float64
}

// Widget is a renderer-independent description of the home-screen card.
type Widget struct {
	Background Gradient
	Elements   []Element
	// Err is set on widgets built by ErrorWidget.
	Err error
}

const (
	headerTitle = "Daily Quote"
	headerSep   = "・"

	// ErrorColor is the foreground of error text.
	ErrorColor = "FF3B30"
)

var (
	headerFont = Font{Name: "system", Size: 10, Style: FontRegular}
	quoteFont  = Font{Name: "Georgia", Size: 18, Style: FontSerif}
	authorFont = Font{Name: "system", Size: 14, Style: FontItalic}
)

// Header returns the upper-cased "DAILY QUOTE・SAT, 17TH OCT" line for now.
func Header(now time.Time) string {
	return strings.ToUpper(headerTitle + headerSep + FormatDate(now))
}

// BuildWidget lays out rec for the day of now: header, gap, quote, gap, author over a
// start→end gradient, all text in the scheme's text colour.
func BuildWidget(rec *Record, now time.Time) *Widget {
	if rec == nil {
		return ErrorWidget(ErrNotCached)
	}
	text := rec.Text
	return &Widget{
		Background: Gradient{
			Colors:    []string{rec.Start, rec.End},
			Locations: []float64{0, 1},
		},
		Elements: []Element{
			{Kind: ElementText, Text: Header(now), Font: headerFont, Color: text, Alpha: 1, MinScale: 1},
			{Kind: ElementSpacer, Height: 24},
			{Kind: ElementText, Text: rec.Quote.Content, Font: quoteFont, Color: text, Alpha: 1, MinScale: 0.3},
			{Kind: ElementSpacer, Height: 12},
			{Kind: ElementText, Text: rec.Quote.Author, Font: authorFont, Color: text, Alpha: 1, MinScale: 0.5},
		},
	}
}

// ErrorWidget shows err as faint red text on the default background.
func ErrorWidget(err error) *Widget {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Widget{
		Elements: []Element{
			{Kind: ElementText, Text: msg, Font: headerFont, Color: ErrorColor, Alpha: 0.3, MinScale: 1},
		},
		Err: err,
	}
}

// Texts returns the text of every text element in order.
func (w *Widget) Texts() []string {
	var out []string
	for _, e := range w.Elements {
		if e.Kind == ElementText {
			out = append(out, e.Text)
		}
	}
	return out
}
