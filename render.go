package dailyquote

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// ImageWidth and ImageHeight match the Quote/0 e-ink panel.
	ImageWidth  = 296
	ImageHeight = 152

	// DefaultTerminalWidth is the card width used when the caller passes 0.
	DefaultTerminalWidth = 44

	imagePadding = 10
	// terminal rows per spacer point; 24pt ≈ 2 rows
	pointsPerRow = 12
)

// RenderTerminal writes the widget as a coloured card of width columns.
func RenderTerminal(w io.Writer, wg *Widget, width int) error {
	if wg == nil {
		return fmt.Errorf("dailyquote: nil widget")
	}
	if width <= 0 {
		width = DefaultTerminalWidth
	}
	inner := width - 2
	if inner < 8 {
		inner = 8
	}

	type row struct {
		text string
		el   *Element
	}
	var rows []row
	for i := range wg.Elements {
		e := &wg.Elements[i]
		switch e.Kind {
		case ElementSpacer:
			n := int(math.Round(e.Height / pointsPerRow))
			for j := 0; j < n; j++ {
				rows = append(rows, row{})
			}
		case ElementText:
			wrapped := lipgloss.NewStyle().Width(inner).Render(e.Text)
			for _, line := range strings.Split(wrapped, "\n") {
				rows = append(rows, row{text: strings.TrimRight(line, " "), el: e})
			}
		}
	}

	bgs := gradientSteps(wg.Background, len(rows))
	var b strings.Builder
	for i, r := range rows {
		st := lipgloss.NewStyle().Width(width).Padding(0, 1)
		if bgs != nil {
			st = st.Background(lipgloss.Color(bgs[i].Hex()))
		}
		if r.el != nil {
			st = st.Foreground(lipgloss.Color("#" + r.el.Color))
			switch r.el.Font.Style {
			case FontItalic:
				st = st.Italic(true)
			case FontSerif:
				st = st.Bold(true)
			}
			if r.el.Alpha < 1 {
				st = st.Faint(true)
			}
		}
		b.WriteString(st.Render(r.text))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// gradientSteps samples the gradient at n evenly spaced points. nil means no background.
func gradientSteps(g Gradient, n int) []colorful.Color {
	if len(g.Colors) < 2 || n <= 0 {
		return nil
	}
	from, err := ParseHex(g.Colors[0])
	if err != nil {
		return nil
	}
	to, err := ParseHex(g.Colors[len(g.Colors)-1])
	if err != nil {
		return nil
	}
	out := make([]colorful.Color, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = from.BlendRgb(to, t).Clamped()
	}
	return out
}

// RenderImage rasterises the widget into an ImageWidth×ImageHeight RGBA image.
// All text uses a fixed 7×13 bitmap face; serif and italic are not distinguished.
func RenderImage(wg *Widget) (*image.RGBA, error) {
	if wg == nil {
		return nil, fmt.Errorf("dailyquote: nil widget")
	}
	img := image.NewRGBA(image.Rect(0, 0, ImageWidth, ImageHeight))
	if bgs := gradientSteps(wg.Background, ImageHeight); bgs != nil {
		for y, c := range bgs {
			draw.Draw(img, image.Rect(0, y, ImageWidth, y+1), image.NewUniform(c), image.Point{}, draw.Src)
		}
	} else {
		draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	}

	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil()
	maxWidth := fixed.I(ImageWidth - 2*imagePadding)
	y := imagePadding + face.Metrics().Ascent.Ceil()

	for _, e := range wg.Elements {
		if e.Kind == ElementSpacer {
			// the panel is tiny; spacers shrink to half their point size
			y += int(e.Height / 2)
			continue
		}
		src := image.NewUniform(textColor(e))
		d := &font.Drawer{Dst: img, Src: src, Face: face}
		for _, line := range wrapMeasured(d, e.Text, maxWidth) {
			if y > ImageHeight-imagePadding {
				break
			}
			d.Dot = fixed.P(imagePadding, y)
			d.DrawString(line)
			y += lineHeight
		}
	}
	return img, nil
}

// RenderPNG encodes RenderImage's output as PNG into w.
func RenderPNG(w io.Writer, wg *Widget) error {
	img, err := RenderImage(wg)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("dailyquote: encode png: %w", err)
	}
	return nil
}

func textColor(e Element) color.Color {
	c, err := ParseHex(e.Color)
	if err != nil {
		return color.Black
	}
	r, g, b := c.RGB255()
	a := e.Alpha
	if a <= 0 || a > 1 {
		a = 1
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(a * 255))}
}

// wrapMeasured greedily packs words into lines no wider than limit under d's face.
// Words wider than limit are placed on their own line and clipped by the image bounds.
func wrapMeasured(d *font.Drawer, text string, limit fixed.Int26_6) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			next := cur + " " + w
			if d.MeasureString(next) <= limit {
				cur = next
				continue
			}
			lines = append(lines, cur)
			cur = w
		}
		lines = append(lines, cur)
	}
	return lines
}
