// Package state persists the PetProgress aggregate: one versioned JSON blob
// holding tasks, series, overrides, completions, pet progression and settings.
//
// The blob lives behind the BlobStore interface ("read bytes for key K,
// atomically replace bytes for key K") so the same Store works over a plain
// file and over SQLite. Store serializes load-mutate-save cycles: within the
// process via a mutex, across processes via the backend's write lock (a
// BEGIN IMMEDIATE transaction on SQLite, a lock file on the file backend).
// Readers outside a cycle always see either the old complete blob or the new
// one, never a torn write.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Load on first run, before any state was saved.
var ErrNotFound = errors.New("state: not found")

// ErrNoChange may be returned by an Update callback to skip the save step;
// Update then returns the loaded state with no error.
var ErrNoChange = errors.New("state: no change")

// CorruptError wraps a decode failure. The undecodable bytes have already
// been quarantined by the time Load returns it.
type CorruptError struct {
	Err error
}

func (e *CorruptError) Error() string { return fmt.Sprintf("state: corrupt blob: %v", e.Err) }
func (e *CorruptError) Unwrap() error { return e.Err }

// BlobStore is the durable byte store the state layer runs on.
type BlobStore interface {
	// Get returns the bytes for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put atomically replaces the bytes for key. A crash mid-Put must never
	// leave a partial payload behind.
	Put(ctx context.Context, key string, data []byte) error
	// Quarantine preserves data under a side key derived from key, for
	// later diagnosis. It must not touch the primary key.
	Quarantine(ctx context.Context, key string, data []byte) error
	// Lock acquires the backend's cross-process write lock, serializing
	// load-mutate-save cycles between processes that share the same
	// location. The returned function releases it.
	Lock(ctx context.Context) (release func(), err error)
	Close() error
}

// DefaultKey is the well-known blob key shared by every process that opens
// the same store location.
const DefaultKey = "appstate"

// Store is the serialized load/mutate/save gateway to the aggregate.
type Store struct {
	mu   sync.Mutex
	blob BlobStore
	key  string
}

func NewStore(blob BlobStore) *Store {
	return &Store{blob: blob, key: DefaultKey}
}

func (s *Store) Close() error { return s.blob.Close() }

// Load reads, decodes and migrates the aggregate. On undecodable bytes it
// quarantines the payload first and then reports CorruptError; the primary
// key is left untouched until the next Save.
func (s *Store) Load(ctx context.Context) (*AppState, error) {
	raw, err := s.blob.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}

	var w wireState
	if err := json.Unmarshal(raw, &w); err != nil {
		if qerr := s.blob.Quarantine(ctx, s.key, raw); qerr != nil {
			return nil, fmt.Errorf("quarantine corrupt blob: %w", qerr)
		}
		return nil, &CorruptError{Err: err}
	}
	return migrate(&w), nil
}

// Save stamps the current schema version and atomically writes the aggregate.
func (s *Store) Save(ctx context.Context, st *AppState) error {
	st.SchemaVersion = SchemaVersion
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.blob.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Update runs one serialized load-mutate-save cycle. seed supplies the
// starting aggregate on first run and after a corrupt blob was quarantined.
// If fn returns ErrNoChange the state is not saved; any other error discards
// the in-memory mutation and leaves the stored state as it was.
func (s *Store) Update(ctx context.Context, seed func() *AppState, fn func(*AppState) error) (*AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.blob.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock state: %w", err)
	}
	defer release()

	st, err := s.Load(ctx)
	if err != nil {
		var corrupt *CorruptError
		switch {
		case errors.Is(err, ErrNotFound), errors.As(err, &corrupt):
			st = seed()
		default:
			return nil, err
		}
	}

	if err := fn(st); err != nil {
		if errors.Is(err, ErrNoChange) {
			return st, nil
		}
		return nil, err
	}
	if err := s.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}
