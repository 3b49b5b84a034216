package wordstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kjk/wordtag/atomicfile"
	"github.com/tidwall/pretty"
)

var (
	// ErrStorageRead is matched by errors from a missing, unreadable
	// or malformed store file
	ErrStorageRead = errors.New("storage read error")
	// ErrStorageWrite is matched by errors from a failed save.
	// The file on disk is unchanged when it happens.
	ErrStorageWrite = errors.New("storage write error")
)

// Store is a JSON file holding a Collection.
// Nothing is cached: every operation goes to the file.
type Store struct {
	// called after a successful save with the bytes written
	OnSaved func(path string, d []byte)

	path string
}

// one lock per file, shared by all Store values pointing at it
var (
	pathLocksMu sync.Mutex
	pathLocks   = map[string]*sync.Mutex{}
)

// replaced in tests to simulate a failing write
var writeFile = atomicfile.WriteFile

func lockForPath(path string) *sync.Mutex {
	pathLocksMu.Lock()
	defer pathLocksMu.Unlock()
	mu := pathLocks[path]
	if mu == nil {
		mu = &sync.Mutex{}
		pathLocks[path] = mu
	}
	return mu
}

// New returns a Store for a file at path. The file doesn't have to exist
// yet but Load will fail until it does.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: absPath}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Decode parses a JSON array of records
func Decode(d []byte) (Collection, error) {
	var res Collection
	if err := json.Unmarshal(d, &res); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("expected a JSON array of records")
	}
	for i, r := range res {
		if r == nil {
			return nil, fmt.Errorf("record %d is null", i)
		}
	}
	return res, nil
}

// Encode serializes c as an indented JSON array
func Encode(c Collection) ([]byte, error) {
	if c == nil {
		c = Collection{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// words are shown in html, no need to escape them in the file
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	opts := &pretty.Options{
		Width:  80,
		Indent: "  ",
	}
	return pretty.PrettyOptions(buf.Bytes(), opts), nil
}

// Load reads the whole collection from disk
func (s *Store) Load() (Collection, error) {
	d, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	c, err := Decode(d)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", ErrStorageRead, s.path, err)
	}
	return c, nil
}

func (s *Store) save(c Collection) error {
	d, err := Encode(c)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	if err = writeFile(s.path, d); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	if s.OnSaved != nil {
		s.OnSaved(s.path, d)
	}
	return nil
}

// Save replaces the file with c
func (s *Store) Save(c Collection) error {
	mu := lockForPath(s.path)
	mu.Lock()
	defer mu.Unlock()
	return s.save(c)
}

// Update runs load, fn, save as one step with respect to other
// Update and Save calls on the same file.
// Nothing is saved if load or fn fail.
func (s *Store) Update(fn func(c Collection) error) error {
	mu := lockForPath(s.path)
	mu.Lock()
	defer mu.Unlock()

	c, err := s.Load()
	if err != nil {
		return err
	}
	if err = fn(c); err != nil {
		return err
	}
	return s.save(c)
}
