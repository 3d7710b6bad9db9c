// Package affixdb holds the per-class reference vocabulary of affix, temper
// and aspect names that targets and drops are written in.
package affixdb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

var ErrClassNotFound = errors.New("class not found")

// Temper names are grouped by one of these tag prefixes.
var TemperTags = []string{"【武器】", "【攻擊】", "【防禦】", "【輔助】", "【資源】"}

// ClassEntry is the reference data for one player class.
type ClassEntry struct {
	Label   string   `json:"label"`
	Icon    string   `json:"icon"`
	Base    []string `json:"base"`
	Temper  []string `json:"temper"`
	Aspects []string `json:"aspects,omitempty"`
}

// DB maps a class id such as "Necromancer" to its entry.
type DB map[string]ClassEntry

// Merge copies every class in src over dst, replacing whole entries.
// It returns the replaced keys in sorted order.
func (db DB) Merge(src DB) []string {
	keys := make([]string, 0, len(src))
	for k, v := range src {
		db[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (db DB) Classes() []string {
	out := make([]string, 0, len(db))
	for k := range db {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Decode reads a DB document.
func Decode(r io.Reader) (DB, error) {
	db := DB{}
	if err := json.NewDecoder(r).Decode(&db); err != nil {
		return nil, fmt.Errorf("decode affix db: %w", err)
	}
	return db, nil
}

// Encode writes db as indented UTF-8 JSON without escaping non-ASCII or HTML characters.
func Encode(w io.Writer, db DB) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(db)
}

// Store is a DB backed by a JSON file. It is safe for concurrent use.
type Store struct {
	path string

	mu sync.RWMutex
	db DB
}

// Open loads path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, db: DB{}}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	db, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.db = db
	return s, nil
}

func (s *Store) Path() string { return s.path }

// Snapshot returns a copy of the whole DB.
func (s *Store) Snapshot() DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(DB, len(s.db))
	for k, v := range s.db {
		out[k] = v
	}
	return out
}

func (s *Store) Class(id string) (ClassEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.db[id]
	if !ok {
		return ClassEntry{}, fmt.Errorf("%w: %s", ErrClassNotFound, id)
	}
	return e, nil
}

// Merge applies src and persists the result. Updated class keys are returned.
func (s *Store) Merge(src DB) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(DB, len(s.db)+len(src))
	for k, v := range s.db {
		next[k] = v
	}
	keys := next.Merge(src)
	if err := s.write(next); err != nil {
		return nil, err
	}
	s.db = next
	return keys, nil
}

// write replaces the file atomically through a temp file in the same directory.
func (s *Store) write(db DB) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, db); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".affixes-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
