// Package history persists completed computations and user preferences
// in BadgerDB. Records are listed newest first and capped at MaxItems.
package history

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/njchilds90/gorevolve/metrics"
)

// DefaultMaxItems is the history cap when Options.MaxItems is zero.
const DefaultMaxItems = 50

// ErrNotFound is returned by Get for an unknown ID.
var ErrNotFound = errors.New("history: record not found")

var (
	recordPrefix = []byte("history/")
	prefsKey     = []byte("prefs")
)

// Results are the three quantities of one computation.
type Results struct {
	ArcLength   float64 `json:"arcLength"`
	SurfaceArea float64 `json:"surfaceArea"`
	Volume      float64 `json:"volume"`
}

// Record is one stored computation.
type Record struct {
	ID         string    `json:"id"`
	Function   string    `json:"function"`
	LowerBound float64   `json:"lowerBound"`
	UpperBound float64   `json:"upperBound"`
	Results    Results   `json:"results"`
	Timestamp  time.Time `json:"timestamp"`
}

// Valid reports whether r is well formed. List drops records that are not.
func (r Record) Valid() bool {
	finite := func(vs ...float64) bool {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
		return true
	}
	return r.ID != "" && r.Function != "" && !r.Timestamp.IsZero() &&
		finite(r.LowerBound, r.UpperBound, r.Results.ArcLength, r.Results.SurfaceArea, r.Results.Volume)
}

// Options configures Open.
type Options struct {
	Path     string
	InMemory bool
	MaxItems int
	Logger   *slog.Logger
	// Now overrides the clock used for timestamps.
	Now func() time.Time
}

// Store is safe for concurrent use.
type Store struct {
	db     *badger.DB
	max    int
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	lastSeq uint64
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens or creates the store.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, errors.New("history: path is required for a persistent store")
	}
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0o750); err != nil {
			return nil, fmt.Errorf("history: create directory %s: %w", opts.Path, err)
		}
		bopts = badger.DefaultOptions(opts.Path).WithSyncWrites(true)
	}
	bopts = bopts.WithNumVersionsToKeep(1)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
		bopts = bopts.WithLogger(nil)
	} else {
		bopts = bopts.WithLogger(&badgerLogger{logger: logger})
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("history: open badger: %w", err)
	}
	s := &Store{db: db, max: opts.MaxItems, logger: logger, now: opts.Now}
	if s.max <= 0 {
		s.max = DefaultMaxItems
	}
	if s.now == nil {
		s.now = time.Now
	}
	if err := s.loadLastSeq(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// recordKey orders records by an increasing sequence derived from the
// timestamp, so reverse iteration yields newest first.
func recordKey(seq uint64, id string) []byte {
	key := make([]byte, 0, len(recordPrefix)+8+1+len(id))
	key = append(key, recordPrefix...)
	key = binary.BigEndian.AppendUint64(key, seq)
	key = append(key, '/')
	return append(key, id...)
}

// lastKey sorts after every record key.
func lastKey() []byte {
	return append(append([]byte{}, recordPrefix...), bytes.Repeat([]byte{0xFF}, 9)...)
}

func (s *Store) loadLastSeq() error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Reverse: true, Prefix: recordPrefix})
		defer it.Close()
		it.Seek(lastKey())
		if it.ValidForPrefix(recordPrefix) {
			k := it.Item().Key()
			if len(k) >= len(recordPrefix)+8 {
				s.lastSeq = binary.BigEndian.Uint64(k[len(recordPrefix):])
			}
		}
		return nil
	})
}

// Append stores rec, assigning an ID and timestamp when they are empty,
// and evicts the oldest records beyond the cap.
func (s *Store) Append(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	if !rec.Valid() {
		return Record{}, fmt.Errorf("history: refusing malformed record for %q", rec.Function)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("history: encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	seq := uint64(rec.Timestamp.UnixNano())
	if seq <= s.lastSeq {
		seq = s.lastSeq + 1
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(recordKey(seq, rec.ID), data); err != nil {
			return err
		}
		return s.evict(txn)
	})
	if err != nil {
		return Record{}, fmt.Errorf("history: append: %w", err)
	}
	s.lastSeq = seq
	return rec, nil
}

// evict deletes everything past the newest s.max keys.
func (s *Store) evict(txn *badger.Txn) error {
	it := txn.NewIterator(badger.IteratorOptions{Reverse: true, Prefix: recordPrefix})
	var stale [][]byte
	n := 0
	for it.Seek(lastKey()); it.ValidForPrefix(recordPrefix); it.Next() {
		n++
		if n > s.max {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
	}
	it.Close()
	for _, k := range stale {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// List returns stored records newest first. Records that fail to decode
// or validate are skipped and logged.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []Record{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Reverse: true, Prefix: recordPrefix, PrefetchValues: true, PrefetchSize: 16})
		defer it.Close()
		for it.Seek(lastKey()); it.ValidForPrefix(recordPrefix); it.Next() {
			item := it.Item()
			var rec Record
			err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) })
			if err != nil || !rec.Valid() {
				s.logger.Warn("dropping corrupt history record", "key", string(item.Key()), "error", err)
				metrics.SoftFailures.WithLabelValues(metrics.StageHistory).Inc()
				continue
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	return out, nil
}

// Get returns the record with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return Record{}, err
	}
	for _, r := range recs {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Clear removes every record. Preferences are kept.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: recordPrefix})
		var keys [][]byte
		for it.Rewind(); it.ValidForPrefix(recordPrefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	return nil
}
