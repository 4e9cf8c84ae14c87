package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fixture-graph/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind names one entity collection, e.g. "food.order".
type Kind string

// Entity is a stored record. Implementations are plain value types that hold
// identifiers of other entities, never pointers to them.
type Entity interface {
	EntityID() string
}

// Reader is the read contract shared by snapshots and transactions.
type Reader interface {
	Get(kind Kind, id string) (Entity, bool)
	List(kind Kind) []Entity
	Count(kind Kind) int
}

const defaultCommitTimeout = 5 * time.Second

var (
	ErrDuplicateID = errors.New("store: duplicate id")
	ErrMissingID   = errors.New("store: entity id is empty")
)

// NewID returns a random, collision-resistant identifier.
func NewID() string {
	return uuid.NewString()
}

// Store owns the current snapshot and serialises writers.
type Store struct {
	mu            sync.Mutex
	current       atomic.Pointer[Snapshot]
	backend       Backend
	commitTimeout time.Duration
}

type Option func(*Store)

// WithBackend persists every committed change set to b.
func WithBackend(b Backend) Option {
	return func(s *Store) { s.backend = b }
}

// WithCommitTimeout bounds each backend commit.
func WithCommitTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.commitTimeout = d
		}
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{commitTimeout: defaultCommitTimeout}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(emptySnapshot())
	return s
}

// Open returns a store primed with everything the backend already holds.
func Open(ctx context.Context, codec Codec, opts ...Option) (*Store, error) {
	s := New(opts...)
	if s.backend == nil {
		return s, nil
	}

	records, err := s.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: load: %w", err)
	}

	snap := emptySnapshot()
	for _, rec := range records {
		e, err := codec.Decode(rec.Kind, rec.Body)
		if err != nil {
			return nil, fmt.Errorf("store: decode %s %s: %w", rec.Kind, rec.ID, err)
		}
		t := snap.tables[rec.Kind]
		if t == nil {
			t = newTable()
			snap.tables[rec.Kind] = t
		}
		t.put(rec.ID, e, rec.Seq)
		if rec.Seq >= snap.nextSeq {
			snap.nextSeq = rec.Seq + 1
		}
	}
	s.current.Store(snap)

	logger.FromCtx(ctx).Info("store loaded",
		zap.Int("records", len(records)),
		zap.Uint64("next_seq", snap.nextSeq),
	)
	return s, nil
}

// Snapshot returns the latest published state. It never changes afterwards.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Update runs fn against a private copy of the latest state. When fn
// succeeds and the backend accepts the change set, the new state is
// published as a single step. Otherwise nothing becomes visible.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.current.Load()
	tx := newTx(base)
	if err := fn(tx); err != nil {
		return nil, err
	}
	if len(tx.changes) == 0 {
		return base, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.backend != nil {
		cctx, cancel := context.WithTimeout(ctx, s.commitTimeout)
		err := s.backend.Commit(cctx, tx.changes)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("store: commit: %w", err)
		}
	}

	next := tx.snapshot()
	s.current.Store(next)
	return next, nil
}
