package dailyquote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultDirName is the folder, under the user's data directory, that holds record files.
const DefaultDirName = "daily-quotes-widget-data"

const recordExt = ".json"

// Record is what gets persisted for a day: the quote plus its palette.
type Record struct {
	Quote Quote `json:"quote"`
	Scheme
}

// Store keeps one JSON record file per day in a single directory. There is no locking;
// two concurrent invocations on a fresh day may both fetch and the last write wins.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. An empty dir selects DefaultDir.
func NewStore(dir string) *Store {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// DefaultDir is <user config dir>/daily-quotes-widget-data, falling back to the temp dir.
func DefaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, DefaultDirName)
}

// Dir returns the directory holding the record files.
func (s *Store) Dir() string { return s.dir }

// Path returns the record file path for day (YYYY-MM-DD).
func (s *Store) Path(day string) string {
	return filepath.Join(s.dir, day+recordExt)
}

// Ensure creates the directory if it does not exist yet.
func (s *Store) Ensure() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("dailyquote: create data dir: %w", err)
	}
	return nil
}

// Exists reports whether a record file for day is present.
func (s *Store) Exists(day string) bool {
	_, err := os.Stat(s.Path(day))
	return err == nil
}

// Load reads the record for day. A missing file yields ErrNotCached.
func (s *Store) Load(day string) (*Record, error) {
	data, err := os.ReadFile(s.Path(day))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("dailyquote: read record %s: %w", day, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("dailyquote: decode record %s: %w", day, err)
	}
	return &rec, nil
}

// Save writes rec as the record for day through a temp file and rename.
func (s *Store) Save(day string, rec *Record) error {
	if rec == nil {
		return errors.New("dailyquote: nil record")
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("dailyquote: encode record: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+day+"-*.tmp")
	if err != nil {
		return fmt.Errorf("dailyquote: write record: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("dailyquote: write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("dailyquote: write record: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(day)); err != nil {
		return fmt.Errorf("dailyquote: write record: %w", err)
	}
	return nil
}

// Remove deletes the record for day. A missing file is not an error.
func (s *Store) Remove(day string) error {
	err := os.Remove(s.Path(day))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("dailyquote: remove record %s: %w", day, err)
}

// Days lists the day keys that have a record file, in ascending order.
func (s *Store) Days() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dailyquote: list data dir: %w", err)
	}
	var days []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		day := strings.TrimSuffix(name, recordExt)
		if _, err := time.Parse(DayKeyLayout, day); err != nil {
			continue
		}
		days = append(days, day)
	}
	return days, nil
}

// Prune removes every record except the one for keep and returns the removed day keys.
func (s *Store) Prune(keep string) ([]string, error) {
	days, err := s.Days()
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, d := range days {
		if d == keep {
			continue
		}
		if err := s.Remove(d); err != nil {
			return removed, err
		}
		removed = append(removed, d)
	}
	return removed, nil
}
