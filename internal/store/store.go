// Package store persists the small JSON records that let workflows resume
// across restarts: the last deployed token, the last deployed collection
// with its distribution cursor, and the watchlist.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mohsinsiddi/w3flow/internal/config"
)

// CurrentVersion is written into every record.
const CurrentVersion = 1

// Store reads and writes records under one directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir}
}

// Dir returns the state directory.
func (s *Store) Dir() string { return s.dir }

// LoadERC20 returns the last deployed ERC-20 record, or nil if none exists.
func (s *Store) LoadERC20() (*ERC20Record, error) {
	rec, err := loadJSON[ERC20Record](s.path(config.LastERC20File))
	if err != nil || rec == nil {
		return rec, err
	}
	rec.migrate()
	return rec, nil
}

// SaveERC20 overwrites the last deployed ERC-20 record.
func (s *Store) SaveERC20(rec *ERC20Record) error {
	rec.Version = CurrentVersion
	return s.saveJSON(config.LastERC20File, rec)
}

// LoadNFT returns the last deployed collection record, or nil if none exists.
func (s *Store) LoadNFT() (*NFTRecord, error) {
	rec, err := loadJSON[NFTRecord](s.path(config.LastNFTFile))
	if err != nil || rec == nil {
		return rec, err
	}
	rec.migrate()
	return rec, nil
}

// SaveNFT overwrites the last deployed collection record.
func (s *Store) SaveNFT(rec *NFTRecord) error {
	rec.Version = CurrentVersion
	return s.saveJSON(config.LastNFTFile, rec)
}

// LoadWatchlist returns the persisted watchlist, or nil if none exists.
func (s *Store) LoadWatchlist() (*WatchlistRecord, error) {
	rec, err := loadJSON[WatchlistRecord](s.path(config.WatchlistFile))
	if err != nil || rec == nil {
		return rec, err
	}
	rec.migrate()
	return rec, nil
}

// SaveWatchlist overwrites the persisted watchlist.
func (s *Store) SaveWatchlist(rec *WatchlistRecord) error {
	rec.Version = CurrentVersion
	return s.saveJSON(config.WatchlistFile, rec)
}

// --- helpers ---

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func loadJSON[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return &v, nil
}

// saveJSON writes through a temp file and rename so a crash never leaves a
// half-written record behind.
func (s *Store) saveJSON(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return os.Rename(tmp.Name(), s.path(name))
}
