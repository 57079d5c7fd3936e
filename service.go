package dailyquote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/1set/dailyquote/internal/ctxlog"
)

// Source is the network side of the service. *Client implements it.
type Source interface {
	RandomQuote(ctx context.Context) (Quote, error)
	RandomColor(ctx context.Context) (string, error)
	ColorScheme(ctx context.Context, seed string) (Scheme, error)
}

// Service produces the record shown by the widget for the current day.
type Service struct {
	src   Source
	store *Store
	now   func() time.Time
}

// ServiceOption mutates the service during construction.
type ServiceOption func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService wires a source and a store. A nil store uses NewStore("").
func NewService(src Source, store *Store, opts ...ServiceOption) *Service {
	s := &Service{src: src, store: store, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.store == nil {
		s.store = NewStore("")
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Store exposes the underlying record store.
func (s *Service) Store() *Store { return s.store }

// Now returns the service clock reading.
func (s *Service) Now() time.Time { return s.now() }

// Today returns today's record, from disk when present, otherwise freshly fetched and saved.
// On a miss yesterday's record file is deleted before fetching. A failed save is logged and
// the fetched record is still returned.
func (s *Service) Today(ctx context.Context) (*Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := ctxlog.FromContext(ctx)
	if err := s.store.Ensure(); err != nil {
		return nil, err
	}

	now := s.now()
	day := DayKey(now)
	rec, err := s.store.Load(day)
	switch {
	case err == nil:
		log.Debug("record cache hit", "day", day, "path", s.store.Path(day))
		return rec, nil
	case !errors.Is(err, ErrNotCached):
		// unreadable or corrupt record: fall through and replace it
		log.Warn("discarding unreadable record", "day", day, "error", err)
	}

	prev := PreviousDayKey(now)
	if err := s.store.Remove(prev); err != nil {
		log.Warn("remove previous record", "day", prev, "error", err)
	}

	rec, err = s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(day, rec); err != nil {
		log.Error("save record", "day", day, "error", err)
	}
	return rec, nil
}

// Refresh drops today's record and fetches a new one.
func (s *Service) Refresh(ctx context.Context) (*Record, error) {
	if err := s.store.Remove(DayKey(s.now())); err != nil {
		return nil, err
	}
	return s.Today(ctx)
}

// Fetch always goes to the network and never touches the store.
func (s *Service) Fetch(ctx context.Context) (*Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.fetch(ctx)
}

func (s *Service) fetch(ctx context.Context) (*Record, error) {
	log := ctxlog.FromContext(ctx)

	quote, err := s.src.RandomQuote(ctx)
	if err != nil {
		return nil, fmt.Errorf("random quote: %w", err)
	}
	log.Info("random quote", "author", quote.Author, "content", quote.Content)

	seed, err := s.src.RandomColor(ctx)
	if err != nil {
		return nil, fmt.Errorf("random color: %w", err)
	}
	log.Info("random color", "hex", seed)

	scheme, err := s.src.ColorScheme(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("color scheme: %w", err)
	}
	log.Info("color scheme", "start", scheme.Start, "end", scheme.End, "text", scheme.Text)

	return &Record{Quote: quote, Scheme: scheme}, nil
}
