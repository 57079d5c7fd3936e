package dailyquote

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
)

// Quote is one entry from the quote endpoint.
type Quote struct {
	ID      string   `json:"_id,omitempty"`
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags,omitempty"`
	Length  int      `json:"length,omitempty"`
}

// quotePayload decodes either a single quote object or a one-element array of them;
// several quotable mirrors wrap /random in an array.
type quotePayload struct {
	Quote
}

func (p *quotePayload) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var list []Quote
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			p.Quote = list[0]
		}
		return nil
	}
	return json.Unmarshal(b, &p.Quote)
}

// RandomQuote fetches one random quote. An answer without content yields ErrEmptyQuote.
func (c *Client) RandomQuote(ctx context.Context) (Quote, error) {
	var p quotePayload
	if err := c.getJSON(ctx, c.quoteURL, &p); err != nil {
		return Quote{}, err
	}
	q := p.Quote
	q.Content = strings.TrimSpace(q.Content)
	q.Author = strings.TrimSpace(q.Author)
	if q.Content == "" {
		return Quote{}, ErrEmptyQuote
	}
	return q, nil
}
