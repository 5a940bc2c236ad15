package history

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/roach88/hookwatch/internal/kv"
)

// DefaultKey is the kv key holding the persisted history.
const DefaultKey = "kirimkan_webhook_history"

// Store is the bounded, persisted delivery history.
type Store struct {
	backend   kv.Store
	key       string
	records   []DeliveryRecord // newest first
	capacity  int
	now       func() time.Time
	logger    *slog.Logger
	listeners []func()
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the kv key used for the history snapshot.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithCapacity sets the initial capacity.
// Default: CapacityFor(DefaultPageSetting).
func WithCapacity(capacity int) Option {
	return func(s *Store) {
		s.capacity = capacity
	}
}

// WithClock sets the wall clock used to stamp records on insertion.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty Store backed by backend. A nil backend disables
// persistence. Call Hydrate to load a previous session's history.
func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		key:      DefaultKey,
		records:  []DeliveryRecord{},
		capacity: CapacityFor(DefaultPageSetting),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.capacity < 1 {
		s.capacity = 1
	}
	return s
}

// OnChange registers fn to run after every mutation of the sequence.
func (s *Store) OnChange(fn func()) {
	if fn != nil {
		s.listeners = append(s.listeners, fn)
	}
}

// Hydrate replaces the in-memory sequence with the persisted snapshot.
//
// Best effort: a missing key leaves the store empty; an unreadable or corrupt
// snapshot is logged and also leaves the store empty. Never returns an error.
func (s *Store) Hydrate(ctx context.Context) {
	s.records = []DeliveryRecord{}
	defer s.notify()

	if s.backend == nil {
		return
	}
	data, found, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("failed to load webhook history from storage", "key", s.key, "error", err)
		return
	}
	if !found || len(data) == 0 {
		return
	}

	var records []DeliveryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("failed to load webhook history from storage", "key", s.key, "error", err)
		return
	}
	if records != nil {
		s.records = records
	}
	s.truncate()

	s.logger.Debug("webhook history loaded", "key", s.key, "records", len(s.records))
}

// Add stamps rec with the current time when it has no timestamp, prepends it,
// evicts the oldest records beyond capacity, and persists the sequence.
//
// Add takes ownership of rec's raw JSON fields. Persistence failures are
// logged, never returned.
func (s *Store) Add(ctx context.Context, rec DeliveryRecord) {
	if rec.Timestamp == "" {
		rec.Timestamp = s.now().UTC().Format(TimestampLayout)
	}

	s.records = append(s.records, DeliveryRecord{})
	copy(s.records[1:], s.records)
	s.records[0] = rec
	s.truncate()

	s.logger.Debug("webhook logged",
		"session", rec.ResolvedSessionID(),
		"event", rec.Event,
		"success", rec.Success,
		"records", len(s.records),
	)

	s.persist(ctx)
	s.notify()
}

// Clear empties the history and deletes the persisted snapshot.
// A failed delete is logged, never returned.
func (s *Store) Clear(ctx context.Context) {
	s.records = []DeliveryRecord{}
	if s.backend != nil {
		if err := s.backend.Delete(ctx, s.key); err != nil {
			s.logger.Warn("failed to delete webhook history from storage", "key", s.key, "error", err)
		}
	}
	s.notify()
}

// SetCapacity changes the capacity and evicts immediately if the sequence no
// longer fits. Values below 1 are raised to 1.
func (s *Store) SetCapacity(ctx context.Context, capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	s.capacity = capacity
	if s.truncate() {
		s.persist(ctx)
		s.notify()
	}
}

// Capacity returns the maximum number of retained records.
func (s *Store) Capacity() int {
	return s.capacity
}

// Len returns the number of retained records.
func (s *Store) Len() int {
	return len(s.records)
}

// At returns the record at index i (0 is the newest).
func (s *Store) At(i int) (DeliveryRecord, bool) {
	if i < 0 || i >= len(s.records) {
		return DeliveryRecord{}, false
	}
	return s.records[i], true
}

// Slice returns a copy of records[start:end], clamped to the valid range.
func (s *Store) Slice(start, end int) []DeliveryRecord {
	if start < 0 {
		start = 0
	}
	if end > len(s.records) {
		end = len(s.records)
	}
	if start >= end {
		return []DeliveryRecord{}
	}
	out := make([]DeliveryRecord, end-start)
	copy(out, s.records[start:end])
	return out
}

// Records returns a copy of the whole sequence, newest first.
func (s *Store) Records() []DeliveryRecord {
	return s.Slice(0, len(s.records))
}

// truncate evicts from the tail down to capacity. Reports whether anything
// was evicted.
func (s *Store) truncate() bool {
	if len(s.records) <= s.capacity {
		return false
	}
	for i := s.capacity; i < len(s.records); i++ {
		s.records[i] = DeliveryRecord{}
	}
	s.records = s.records[:s.capacity]
	return true
}

func (s *Store) persist(ctx context.Context) {
	if s.backend == nil {
		return
	}
	data, err := json.Marshal(s.records)
	if err != nil {
		s.logger.Error("failed to save webhook history to storage", "key", s.key, "error", err)
		return
	}
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		s.logger.Error("failed to save webhook history to storage", "key", s.key, "error", err)
	}
}

func (s *Store) notify() {
	for _, fn := range s.listeners {
		fn()
	}
}
