// Package facade maps named GraphQL root operations onto the store, the
// relationship resolver and the mutation engine of one domain.
package facade

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"fixture-graph/internal/apperr"
	"fixture-graph/internal/logger"
	"fixture-graph/internal/metrics"
	"fixture-graph/internal/rates"
	"fixture-graph/internal/store"

	"go.uber.org/zap"
)

type OpKind int

const (
	Query OpKind = iota
	Mutation
)

func (k OpKind) String() string {
	if k == Mutation {
		return "mutation"
	}
	return "query"
}

// Handler runs one operation. Queries read sess.Snapshot; mutations commit
// through the store and answer from the snapshot they published.
type Handler func(ctx context.Context, sess *Session, args Args) (any, error)

type Operation struct {
	Name string
	Kind OpKind
	// Entity names the type argument errors are reported against.
	Entity  string
	Handler Handler
}

// Session is the state shared by every field of one GraphQL operation: a
// single store snapshot and a single answer per currency pair.
type Session struct {
	Snapshot *store.Snapshot
	Rates    rates.Source
}

// At returns a session reading snap with the same pinned rates.
func (s *Session) At(snap *store.Snapshot) *Session {
	return &Session{Snapshot: snap, Rates: s.Rates}
}

type Facade struct {
	domain  string
	store   *store.Store
	rates   rates.Source
	ops     map[string]Operation
	metrics *metrics.Metrics
}

type Option func(*Facade)

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Facade) { f.metrics = m }
}

func New(domain string, st *store.Store, src rates.Source, ops []Operation, opts ...Option) (*Facade, error) {
	if src == nil {
		src = rates.Identity{}
	}
	f := &Facade{
		domain: domain,
		store:  st,
		rates:  src,
		ops:    make(map[string]Operation, len(ops)),
	}
	for _, op := range ops {
		if op.Name == "" || op.Handler == nil {
			return nil, fmt.Errorf("facade %s: operation %q is incomplete", domain, op.Name)
		}
		if _, dup := f.ops[op.Name]; dup {
			return nil, fmt.Errorf("facade %s: duplicate operation %q", domain, op.Name)
		}
		f.ops[op.Name] = op
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Facade) Domain() string { return f.domain }

// Begin opens a session on the latest published snapshot.
func (f *Facade) Begin() *Session {
	return &Session{Snapshot: f.store.Snapshot(), Rates: rates.Pin(f.rates)}
}

// Operations lists every registered operation by name.
func (f *Facade) Operations() []Operation {
	out := make([]Operation, 0, len(f.ops))
	for _, op := range f.ops {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (f *Facade) Lookup(name string) (Operation, bool) {
	op, ok := f.ops[name]
	return op, ok
}

// Execute dispatches name with args inside sess.
func (f *Facade) Execute(ctx context.Context, sess *Session, name string, args Args) (any, error) {
	ctx = logger.WithDomain(ctx, f.domain)
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "facade"),
		zap.String("operation", name),
	)

	op, ok := f.Lookup(name)
	if !ok {
		return nil, apperr.Validation("Operation", name, "unknown operation")
	}
	if sess == nil {
		sess = f.Begin()
	}

	timer := metrics.StartTimer()
	res, err := op.Handler(ctx, sess, args.forEntity(op.Entity))
	elapsed := timer.Duration()
	f.metrics.Observe(f.domain, name, apperr.Code(err), elapsed)

	if err != nil {
		log.Info("operation failed",
			zap.String("kind", op.Kind.String()),
			zap.String("code", apperr.Code(err)),
			zap.Error(err),
		)
		return nil, Mask(ctx, err)
	}

	log.Debug("operation done",
		zap.String("kind", op.Kind.String()),
		zap.Duration("duration", elapsed),
	)
	return res, nil
}

// Mask hides faults outside the error taxonomy behind ErrInternal, logging
// the original. Cancellation passes through untouched.
func Mask(ctx context.Context, err error) error {
	if err == nil || apperr.IsTaxonomy(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	logger.FromCtx(ctx).Error("internal error", zap.Error(err))
	return apperr.ErrInternal
}
