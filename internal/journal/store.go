// Package journal stores mood entries. Entries are kept oldest first under
// the "entries" key; a reverse view is computed on demand and never stored.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// DefaultTimeout bounds a single classification.
const DefaultTimeout = 30 * time.Second

// Store reads and writes the entry collection.
type Store struct {
	kv      types.KV
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewStore returns a Store over kv. A zero timeout means DefaultTimeout.
func NewStore(kv types.KV, timeout time.Duration, logger *slog.Logger) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, timeout: timeout, logger: logger, now: time.Now}
}

// Create classifies text and appends the resulting entry. Nothing is stored
// unless the classifier returns a known sentiment in time. Callers trim and
// reject blank text before calling.
func (s *Store) Create(ctx context.Context, text string, classifier types.Classifier) (types.Entry, types.Analysis, error) {
	analysis, err := s.classify(ctx, text, classifier)
	if err != nil {
		return types.Entry{}, types.Analysis{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return types.Entry{}, types.Analysis{}, fmt.Errorf("generate entry id: %w", err)
	}
	entry := types.Entry{
		ID:        id.String(),
		Date:      s.now().UTC(),
		Text:      text,
		Sentiment: analysis.Sentiment,
	}

	entries, version, err := s.load()
	if err != nil {
		return types.Entry{}, types.Analysis{}, err
	}
	if err := s.save(append(entries, entry), version); err != nil {
		return types.Entry{}, types.Analysis{}, err
	}

	s.logger.Debug("entry created", "entry_id", entry.ID, "sentiment", entry.Sentiment)
	return entry, analysis, nil
}

// List returns every entry in the requested order. The result is a fresh
// slice the caller may modify.
func (s *Store) List(_ context.Context, order types.Order) ([]types.Entry, error) {
	entries, _, err := s.load()
	if err != nil {
		return nil, err
	}
	if order == types.Reverse {
		slices.Reverse(entries)
	}
	return entries, nil
}

// Delete removes the entry at position in the given order and returns it.
// Position 0 is the first entry shown in that order.
func (s *Store) Delete(_ context.Context, position int, order types.Order) (types.Entry, error) {
	entries, version, err := s.load()
	if err != nil {
		return types.Entry{}, err
	}

	n := len(entries)
	if position < 0 || position >= n {
		return types.Entry{}, fmt.Errorf("%w: position %d of %d", types.ErrIndexOutOfRange, position, n)
	}
	index := position
	if order == types.Reverse {
		index = n - 1 - position
	}

	removed := entries[index]
	remaining := slices.Delete(entries, index, index+1)
	if err := s.save(remaining, version); err != nil {
		return types.Entry{}, err
	}

	s.logger.Debug("entry deleted", "entry_id", removed.ID, "remaining", len(remaining))
	return removed, nil
}

func (s *Store) classify(ctx context.Context, text string, classifier types.Classifier) (types.Analysis, error) {
	if classifier == nil {
		return types.Analysis{}, fmt.Errorf("%w: no classifier configured", types.ErrClassification)
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	analysis, err := classifier.Classify(cctx, text)
	if err == nil && cctx.Err() != nil {
		err = cctx.Err()
	}
	if err != nil {
		s.logger.Error("classification failed", "error", err)
		return types.Analysis{}, fmt.Errorf("%w: %w", types.ErrClassification, err)
	}
	if !analysis.Sentiment.Valid() {
		s.logger.Error("classifier returned unknown sentiment", "sentiment", analysis.Sentiment)
		return types.Analysis{}, fmt.Errorf("%w: %w", types.ErrClassification,
			fmt.Errorf("%w: %q", types.ErrInvalidSentiment, analysis.Sentiment))
	}
	return analysis, nil
}

func (s *Store) load() ([]types.Entry, int64, error) {
	data, version, err := s.kv.Get(types.EntriesKey)
	if errors.Is(err, types.ErrNotFound) {
		return []types.Entry{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load entries: %w", err)
	}
	var entries []types.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, 0, fmt.Errorf("decode entries: %w", err)
	}
	if entries == nil {
		entries = []types.Entry{}
	}
	return entries, version, nil
}

// save writes entries if the key is still at version.
func (s *Store) save(entries []types.Entry, version int64) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	if _, err := s.kv.CompareAndSet(types.EntriesKey, data, version); err != nil {
		return fmt.Errorf("save entries: %w", err)
	}
	return nil
}
