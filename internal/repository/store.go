package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/iliyamo/mock-booking-api/internal/model"
)

// Store persists users and bookings in a single JSON file.  It keeps no copy
// of the collections in memory: every Load re-reads the file, so the file is
// the only source of truth.  Writers must be serialized by the caller.
type Store struct{ path string }

func NewStore(path string) *Store { return &Store{path: path} }

// Path returns the location of the data file.
func (s *Store) Path() string { return s.path }

// Load reads and parses the whole data file.
func (s *Store) Load() (model.Dataset, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Dataset{}, fmt.Errorf("data file: %w", ErrStorageUnavailable)
		}
		log.Printf("store: read failed: %v", err)
		return model.Dataset{}, fmt.Errorf("read data file: %w", ErrStorageUnavailable)
	}
	var ds model.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		log.Printf("store: parse %s failed: %v", s.path, err)
		return model.Dataset{}, fmt.Errorf("data file: %w", ErrCorruptData)
	}
	if ds.Users == nil {
		ds.Users = []model.User{}
	}
	if ds.Bookings == nil {
		ds.Bookings = []model.Booking{}
	}
	return ds, nil
}

// ReplaceAll serializes both collections and swaps them in for the current
// file.  The new content goes to a temp file in the same directory which is
// then renamed over the target, so a concurrent Load observes either the old
// file or the new one.
func (s *Store) ReplaceAll(users []model.User, bookings []model.Booking) error {
	if users == nil {
		users = []model.User{}
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	body, err := json.MarshalIndent(model.Dataset{Users: users, Bookings: bookings}, "", "    ")
	if err != nil {
		return fmt.Errorf("encode data file: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".data-*.json")
	if err != nil {
		log.Printf("store: create temp in %s failed: %v", dir, err)
		return fmt.Errorf("write data file: %w", ErrStorageUnavailable)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		log.Printf("store: write temp failed: %v", err)
		return fmt.Errorf("write data file: %w", ErrStorageUnavailable)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		log.Printf("store: sync temp failed: %v", err)
		return fmt.Errorf("write data file: %w", ErrStorageUnavailable)
	}
	if err := tmp.Close(); err != nil {
		log.Printf("store: close temp failed: %v", err)
		return fmt.Errorf("write data file: %w", ErrStorageUnavailable)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		log.Printf("store: chmod temp failed: %v", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		log.Printf("store: rename into place failed: %v", err)
		return fmt.Errorf("write data file: %w", ErrStorageUnavailable)
	}
	committed = true
	return nil
}
