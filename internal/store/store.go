package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/phuslu/log"
	"github.com/timshannon/badgerhold/v4"
)

// ErrNotFound is returned when a submission id has no record.
var ErrNotFound = errors.New("submission not found")

// Store persists submission history in an embedded Badger database.
type Store struct {
	store  *badgerhold.Store
	logger *log.Logger
}

// Open opens (or creates) the submission store at the given path.
func Open(path string, logger *log.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Options = badger.DefaultOptions(path).WithLogger(nil)

	bh, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open submission store: %w", err)
	}

	logger.Debug().Str("path", path).Msg("submission store opened")

	return &Store{store: bh, logger: logger}, nil
}

// Record persists one submission.
func (s *Store) Record(sub *Submission) error {
	if err := s.store.Insert(sub.ID, sub); err != nil {
		return fmt.Errorf("failed to record submission %s: %w", sub.ID, err)
	}
	return nil
}

// Get returns the submission with the given id.
func (s *Store) Get(id string) (*Submission, error) {
	var sub Submission
	err := s.store.Get(id, &sub)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load submission %s: %w", id, err)
	}
	return &sub, nil
}

// List returns submissions newest first, up to limit entries.
func (s *Store) List(limit int) ([]Submission, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var subs []Submission
	if err := s.store.Find(&subs, query); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
