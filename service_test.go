package dailyquote

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/1set/dailyquote/internal/ctxlog"
)

type fakeSource struct {
	calls    []string
	quoteErr error
	seed     string
}

func (f *fakeSource) RandomQuote(context.Context) (Quote, error) {
	f.calls = append(f.calls, "quote")
	if f.quoteErr != nil {
		return Quote{}, f.quoteErr
	}
	return Quote{Content: "Stay hungry.", Author: "Steve Jobs"}, nil
}

func (f *fakeSource) RandomColor(context.Context) (string, error) {
	f.calls = append(f.calls, "color")
	return "3A7BD5", nil
}

func (f *fakeSource) ColorScheme(_ context.Context, seed string) (Scheme, error) {
	f.calls = append(f.calls, "scheme")
	f.seed = seed
	return Scheme{Start: "3A7BD5", End: "9CC0F0", Text: "0A1F3B"}, nil
}

func fixedClock() time.Time {
	return time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)
}

func TestService_TodayMissFetchesAndSaves(t *testing.T) {
	src := &fakeSource{}
	store := NewStore(t.TempDir())
	if err := store.Save("2026-10-16", sampleRecord()); err != nil {
		t.Fatal(err)
	}
	svc := NewService(src, store, WithClock(fixedClock))

	rec, err := svc.Today(context.Background())
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if diff := cmp.Diff([]string{"quote", "color", "scheme"}, src.calls); diff != "" {
		t.Fatalf("call order (-want +got):\n%s", diff)
	}
	if src.seed != "3A7BD5" {
		t.Fatalf("scheme seeded with %q", src.seed)
	}
	if rec.Quote.Content != "Stay hungry." || rec.Start != "3A7BD5" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !store.Exists("2026-10-17") {
		t.Fatal("today's record not written")
	}
	if store.Exists("2026-10-16") {
		t.Fatal("yesterday's record not removed")
	}
}

func TestService_TodayHitSkipsNetwork(t *testing.T) {
	src := &fakeSource{}
	store := NewStore(t.TempDir())
	want := sampleRecord()
	if err := store.Save("2026-10-17", want); err != nil {
		t.Fatal(err)
	}
	svc := NewService(src, store, WithClock(fixedClock))

	got, err := svc.Today(context.Background())
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if len(src.calls) != 0 {
		t.Fatalf("cache hit should not fetch, calls=%v", src.calls)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestService_OlderRecordsSurviveMiss(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Save("2026-10-10", sampleRecord()); err != nil {
		t.Fatal(err)
	}
	svc := NewService(&fakeSource{}, store, WithClock(fixedClock))
	if _, err := svc.Today(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !store.Exists("2026-10-10") {
		t.Fatal("only the previous day's record is removed opportunistically")
	}
}

func TestService_CorruptRecordIsReplaced(t *testing.T) {
	src := &fakeSource{}
	store := NewStore(t.TempDir())
	if err := os.WriteFile(store.Path("2026-10-17"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	rec, err := NewService(src, store, WithClock(fixedClock)).Today(ctx)
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if len(src.calls) != 3 || rec.Quote.Author != "Steve Jobs" {
		t.Fatalf("expected refetch, calls=%v rec=%+v", src.calls, rec)
	}
	if !strings.Contains(buf.String(), "discarding unreadable record") {
		t.Fatalf("missing warning in log: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "random quote") || !strings.Contains(buf.String(), "color scheme") {
		t.Fatalf("fetch steps not logged: %s", buf.String())
	}
}

func TestService_FetchErrorWritesNothing(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{quoteErr: boom}
	store := NewStore(t.TempDir())
	_, err := NewService(src, store, WithClock(fixedClock)).Today(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped boom, got %v", err)
	}
	if store.Exists("2026-10-17") {
		t.Fatal("no record should be written on failure")
	}
	if diff := cmp.Diff([]string{"quote"}, src.calls); diff != "" {
		t.Fatalf("later steps should not run (-want +got):\n%s", diff)
	}
}

func TestService_RefreshAndFetch(t *testing.T) {
	src := &fakeSource{}
	store := NewStore(t.TempDir())
	if err := store.Save("2026-10-17", sampleRecord()); err != nil {
		t.Fatal(err)
	}
	svc := NewService(src, store, WithClock(fixedClock))

	rec, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(src.calls) != 3 || rec.Text != "0A1F3B" {
		t.Fatalf("refresh should refetch: calls=%v", src.calls)
	}

	src.calls = nil
	if err := store.Remove("2026-10-17"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if store.Exists("2026-10-17") {
		t.Fatal("Fetch must not write the store")
	}
}

func TestService_EndToEndWithHTTP(t *testing.T) {
	var hits []string
	srv := newTestAPI(t, &hits)
	store := NewStore(t.TempDir())
	svc := NewService(newTestClient(srv), store, WithClock(fixedClock))

	first, err := svc.Today(context.Background())
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	second, err := svc.Today(context.Background())
	if err != nil {
		t.Fatalf("Today (cached): %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("cached record differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"quote", "color", "scheme"}, hits); diff != "" {
		t.Fatalf("http hits (-want +got):\n%s", diff)
	}
}
