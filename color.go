package dailyquote

import (
	"context"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Scheme is the three-colour palette of one day's widget. Values are upper-case
// six-digit hex strings without the leading '#'.
type Scheme struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Text  string `json:"text"`
}

// Validate checks that every member parses as a colour.
func (s Scheme) Validate() error {
	for _, f := range [...]struct{ name, v string }{{"start", s.Start}, {"end", s.End}, {"text", s.Text}} {
		if _, err := ParseHex(f.v); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

// ParseHex accepts RRGGBB, #RRGGBB, RGB and #RGB.
func ParseHex(s string) (colorful.Color, error) {
	h, err := NormalizeHex(s)
	if err != nil {
		return colorful.Color{}, err
	}
	c, err := colorful.Hex("#" + h)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c, nil
}

// NormalizeHex strips '#', expands the 3-digit short form and upper-cases the result.
func NormalizeHex(s string) (string, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}
	return strings.ToUpper(h), nil
}

type randomColorResponse struct {
	Hex string `json:"hex"`
}

// RandomColor asks the random colour endpoint for a seed colour and returns it without '#'.
func (c *Client) RandomColor(ctx context.Context) (string, error) {
	var res randomColorResponse
	if err := c.getJSON(ctx, c.colorURL, &res); err != nil {
		return "", err
	}
	return NormalizeHex(res.Hex)
}

type schemeResponse struct {
	Colors []struct {
		Hex struct {
			Value string `json:"value"`
			Clean string `json:"clean"`
		} `json:"hex"`
	} `json:"colors"`
}

// ColorScheme derives the widget palette from a seed colour. The first colour of the
// scheme is used for text, the second and third as the gradient start and end.
func (c *Client) ColorScheme(ctx context.Context, seed string) (Scheme, error) {
	hex, err := NormalizeHex(seed)
	if err != nil {
		return Scheme{}, err
	}
	var res schemeResponse
	if err := c.getJSON(ctx, c.schemeQuery(hex), &res); err != nil {
		return Scheme{}, err
	}
	if len(res.Colors) < 3 {
		return Scheme{}, fmt.Errorf("%w (got %d)", ErrSchemeTooShort, len(res.Colors))
	}
	pick := func(i int) (string, error) {
		v := res.Colors[i].Hex.Clean
		if v == "" {
			v = res.Colors[i].Hex.Value
		}
		return NormalizeHex(v)
	}
	var s Scheme
	if s.Text, err = pick(0); err != nil {
		return Scheme{}, err
	}
	if s.Start, err = pick(1); err != nil {
		return Scheme{}, err
	}
	if s.End, err = pick(2); err != nil {
		return Scheme{}, err
	}
	return s, nil
}
