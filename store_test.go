package dailyquote

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleRecord() *Record {
	return &Record{
		Quote:  Quote{ID: "q1", Content: "Stay hungry.", Author: "Steve Jobs"},
		Scheme: Scheme{Start: "3A7BD5", End: "9CC0F0", Text: "0A1F3B"},
	}
}

func TestStore_SaveLoadRemove(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "data"))
	if _, err := s.Load("2026-10-17"); !errors.Is(err, ErrNotCached) {
		t.Fatalf("want ErrNotCached, got %v", err)
	}
	if err := s.Save("2026-10-17", sampleRecord()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !s.Exists("2026-10-17") {
		t.Fatal("record file missing after Save")
	}
	got, err := s.Load("2026-10-17")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(sampleRecord(), got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	if err := s.Remove("2026-10-17"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove("2026-10-17"); err != nil {
		t.Fatalf("Remove of missing file should be nil, got %v", err)
	}
}

func TestStore_FileShape(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Save("2026-10-17", sampleRecord()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir(), "2026-10-17.json"))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"quote":{"_id":"q1","content":"Stay hungry.","author":"Steve Jobs"},"start":"3A7BD5","end":"9CC0F0","text":"0A1F3B"}`
	if string(data) != want {
		t.Fatalf("file content:\n%s\nwant:\n%s", data, want)
	}
}

func TestStore_CorruptRecord(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := os.WriteFile(s.Path("2026-10-17"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load("2026-10-17")
	if err == nil || errors.Is(err, ErrNotCached) {
		t.Fatalf("want decode error, got %v", err)
	}
}

func TestStore_DaysAndPrune(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, d := range []string{"2026-10-15", "2026-10-16", "2026-10-17"} {
		if err := s.Save(d, sampleRecord()); err != nil {
			t.Fatal(err)
		}
	}
	// unrelated files are left alone
	if err := os.WriteFile(filepath.Join(s.Dir(), "notes.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	days, err := s.Days()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"2026-10-15", "2026-10-16", "2026-10-17"}, days); diff != "" {
		t.Fatalf("Days mismatch (-want +got):\n%s", diff)
	}

	removed, err := s.Prune("2026-10-17")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"2026-10-15", "2026-10-16"}, removed); diff != "" {
		t.Fatalf("Prune mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "notes.json")); err != nil {
		t.Fatalf("unrelated file removed: %v", err)
	}
	if !s.Exists("2026-10-17") {
		t.Fatal("kept record removed")
	}
}

func TestStore_DaysMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent"))
	days, err := s.Days()
	if err != nil || len(days) != 0 {
		t.Fatalf("Days on missing dir = %v, %v", days, err)
	}
}

func TestNewStore_DefaultDir(t *testing.T) {
	if got := NewStore("  ").Dir(); filepath.Base(got) != DefaultDirName {
		t.Fatalf("default dir=%q", got)
	}
}
