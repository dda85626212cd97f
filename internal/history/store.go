// Package history keeps the newest-first list of generated and imported models,
// persisted as a single JSON blob in a kv.Store.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"forge3d/internal/kv"
	"forge3d/pkg/types"
)

const (
	defaultKey        = "forge3d.history"
	defaultMaxEntries = 100
	deleteParallelism = 4
)

// Files is the model-file side of the store.
type Files interface {
	Exists(path string) bool
	IsBundled(path string) bool
	Remove(path string) error
	Import(src string) (string, int64, error)
}

// Config encapsulates Store tunables.
type Config struct {
	KV         kv.Store
	Files      Files
	Key        string
	MaxEntries int
	Logger     zerolog.Logger
}

// Store is safe for concurrent use. Mutations persist before returning.
type Store struct {
	mu      sync.RWMutex
	entries []Entry

	kv         kv.Store
	files      Files
	key        string
	maxEntries int
	log        zerolog.Logger

	// fresh is set when the last Load found no persisted blob.
	fresh bool

	pending sync.WaitGroup
	now     func() time.Time
}

// New constructs an empty Store; call Load to read persisted entries.
func New(cfg Config) (*Store, error) {
	if cfg.KV == nil || cfg.Files == nil {
		return nil, errors.New("history: kv store and files are required")
	}
	s := &Store{
		kv:         cfg.KV,
		files:      cfg.Files,
		key:        cfg.Key,
		maxEntries: cfg.MaxEntries,
		log:        cfg.Logger,
		now:        time.Now,
	}
	if s.key == "" {
		s.key = defaultKey
	}
	if s.maxEntries <= 0 {
		s.maxEntries = defaultMaxEntries
	}
	return s, nil
}

// Load replaces the in-memory list with the persisted one, dropping entries
// whose file is gone. Bundled assets are always kept.
func (s *Store) Load(ctx context.Context) error {
	b, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		s.replace(nil)
		s.mu.Lock()
		s.fresh = true
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("history: load: %w", err)
	}
	var stored []Entry
	if err := json.Unmarshal(b, &stored); err != nil {
		return fmt.Errorf("history: decode: %w", err)
	}
	kept := make([]Entry, 0, len(stored))
	seen := make(map[string]bool, len(stored))
	for _, e := range stored {
		if seen[e.ID] {
			continue
		}
		if !s.files.IsBundled(e.ModelURL) && !s.files.Exists(e.ModelURL) {
			s.log.Debug().Str("id", e.ID).Str("path", e.ModelURL).Msg("history: dropping entry with missing file")
			continue
		}
		seen[e.ID] = true
		kept = append(kept, e)
	}
	if len(kept) > s.maxEntries {
		kept = kept[:s.maxEntries]
	}
	s.replace(kept)
	s.mu.Lock()
	s.fresh = false
	s.mu.Unlock()
	s.log.Info().Int("entries", len(kept)).Int("dropped", len(stored)-len(kept)).Msg("history loaded")
	return nil
}

func (s *Store) replace(entries []Entry) {
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	entriesGauge.Set(float64(len(entries)))
}

// Append inserts e at the head. An empty ID gets a fresh uuid; an existing ID
// replaces the older record. The oldest entries beyond MaxEntries are dropped
// without deleting their files.
func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	e = e.clone()

	s.mu.Lock()
	next := make([]Entry, 0, len(s.entries)+1)
	next = append(next, e)
	for _, old := range s.entries {
		if old.ID != e.ID {
			next = append(next, old)
		}
	}
	if len(next) > s.maxEntries {
		s.log.Debug().Int("dropped", len(next)-s.maxEntries).Msg("history: truncating oldest entries")
		next = next[:s.maxEntries]
	}
	err := s.persistLocked(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return Entry{}, err
	}
	return e.clone(), nil
}

// Import copies a local model file into the models directory and records it.
func (s *Store) Import(ctx context.Context, src string) (Entry, error) {
	path, size, err := s.files.Import(src)
	if err != nil {
		return Entry{}, err
	}
	e, err := s.Append(ctx, Entry{
		ModelURL:       path,
		GenerationType: TypeFile,
		ModelName:      DisplayName(TypeFile, "", src),
		FileSize:       size,
	})
	if err != nil {
		_ = s.files.Remove(path)
		return Entry{}, err
	}
	s.log.Info().Str("id", e.ID).Str("src", src).Msg("model imported")
	return e, nil
}

// Seed records bundled sample assets as file entries on first run, i.e. only
// when the last Load found nothing persisted. The first asset ends up newest.
func (s *Store) Seed(ctx context.Context, assets []types.Asset) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fresh || len(assets) == 0 {
		return 0, nil
	}
	now := s.now().UTC()
	next := make([]Entry, 0, len(assets)+len(s.entries))
	for _, a := range assets {
		next = append(next, Entry{
			ID:             uuid.NewString(),
			ModelURL:       a.Path,
			CreatedAt:      now,
			GenerationType: TypeFile,
			ModelName:      a.Name,
			FileSize:       a.Size,
		})
	}
	next = append(next, s.entries...)
	if len(next) > s.maxEntries {
		next = next[:s.maxEntries]
	}
	if err := s.persistLocked(ctx, next); err != nil {
		return 0, err
	}
	s.log.Info().Int("assets", len(assets)).Msg("history seeded with bundled samples")
	return len(assets), nil
}

// Delete removes one entry and deletes its file in the background unless bundled.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return notFoundError{id: id}
	}
	removed := s.entries[idx]
	next := make([]Entry, 0, len(s.entries)-1)
	next = append(next, s.entries[:idx]...)
	next = append(next, s.entries[idx+1:]...)
	err := s.persistLocked(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.removeFiles([]string{removed.ModelURL})
	return nil
}

// DeleteAll clears the list and deletes every non-bundled file in the background.
func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	paths := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		paths = append(paths, e.ModelURL)
	}
	err := s.persistLocked(ctx, []Entry{})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.removeFiles(paths)
	return nil
}

// Rename sets the display name. A name that is empty after trimming is ignored.
func (s *Store) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return notFoundError{id: id}
	}
	if name == "" || s.entries[idx].ModelName == name {
		return nil
	}
	next := make([]Entry, len(s.entries))
	copy(next, s.entries)
	next[idx].ModelName = name
	return s.persistLocked(ctx, next)
}

// List returns a copy of all entries, newest first.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}

// Get returns a copy of the entry with the given id.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return s.entries[idx].clone(), true
	}
	return Entry{}, false
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Wait blocks until background file deletions have finished.
func (s *Store) Wait() { s.pending.Wait() }

func (s *Store) indexLocked(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes next and adopts it on success. Caller holds s.mu.
func (s *Store) persistLocked(ctx context.Context, next []Entry) error {
	b, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("history: encode: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, b); err != nil {
		return fmt.Errorf("history: persist: %w", err)
	}
	s.entries = next
	s.fresh = false
	entriesGauge.Set(float64(len(next)))
	return nil
}

func (s *Store) removeFiles(paths []string) {
	var targets []string
	for _, p := range paths {
		if p != "" && !s.files.IsBundled(p) {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		var g errgroup.Group
		g.SetLimit(deleteParallelism)
		for _, p := range targets {
			g.Go(func() error {
				if err := s.files.Remove(p); err != nil {
					fileDeletesTotal.WithLabelValues("error").Inc()
					s.log.Warn().Err(err).Str("path", p).Msg("history: file delete failed")
					return err
				}
				fileDeletesTotal.WithLabelValues("ok").Inc()
				return nil
			})
		}
		_ = g.Wait()
	}()
}
