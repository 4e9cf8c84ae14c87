package facade

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"fixture-graph/internal/apperr"
	"fixture-graph/internal/logger"
	"fixture-graph/internal/metrics"
	"fixture-graph/internal/store"
)

const kindThing store.Kind = "test.thing"

type thing struct{ ID string }

func (t thing) EntityID() string { return t.ID }

func testOps(st *store.Store) []Operation {
	return []Operation{
		{
			Name: "thing", Kind: Query, Entity: "Thing",
			Handler: func(ctx context.Context, sess *Session, args Args) (any, error) {
				id, err := args.ID("id")
				if err != nil {
					return nil, err
				}
				th, ok := store.Get[thing](sess.Snapshot, kindThing, id)
				if !ok {
					return nil, nil
				}
				return th, nil
			},
		},
		{
			Name: "createThing", Kind: Mutation, Entity: "Thing",
			Handler: func(ctx context.Context, sess *Session, args Args) (any, error) {
				id, err := args.ID("id")
				if err != nil {
					return nil, err
				}
				snap, err := st.Update(ctx, func(tx *store.Tx) error {
					return tx.Insert(kindThing, thing{ID: id})
				})
				if err != nil {
					return nil, err
				}
				return sess.At(snap).Snapshot.Count(kindThing), nil
			},
		},
		{
			Name: "explode", Kind: Query,
			Handler: func(ctx context.Context, sess *Session, args Args) (any, error) {
				return nil, errors.New("pq: relation \"secret_table\" does not exist")
			},
		},
	}
}

func newFacade(t *testing.T, opts ...Option) (*Facade, *store.Store) {
	t.Helper()
	st := store.New()
	f, err := New("test", st, nil, testOps(st), opts...)
	require.NoError(t, err)
	return f, st
}

func TestNewRejectsDuplicates(t *testing.T) {
	noop := func(ctx context.Context, sess *Session, args Args) (any, error) { return nil, nil }
	_, err := New("test", store.New(), nil, []Operation{
		{Name: "a", Handler: noop},
		{Name: "a", Handler: noop},
	})
	assert.ErrorContains(t, err, "duplicate operation")

	_, err = New("test", store.New(), nil, []Operation{{Name: "b"}})
	assert.ErrorContains(t, err, "incomplete")
}

func TestExecute(t *testing.T) {
	f, _ := newFacade(t)
	ctx := context.Background()

	t.Run("Query miss returns nil", func(t *testing.T) {
		res, err := f.Execute(ctx, f.Begin(), "thing", NewArgs(map[string]any{"id": "nope"}))
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("Mutation answers from its own snapshot", func(t *testing.T) {
		sess := f.Begin()
		res, err := f.Execute(ctx, sess, "createThing", NewArgs(map[string]any{"id": "t1"}))
		require.NoError(t, err)
		assert.Equal(t, 1, res)
		assert.Equal(t, 0, sess.Snapshot.Count(kindThing))
	})

	t.Run("Argument errors name the entity", func(t *testing.T) {
		_, err := f.Execute(ctx, nil, "createThing", NewArgs(nil))
		assert.ErrorIs(t, err, apperr.ErrValidationFailed)
		assert.Contains(t, err.Error(), "Thing")
	})

	t.Run("Unknown operation", func(t *testing.T) {
		_, err := f.Execute(ctx, nil, "nope", NewArgs(nil))
		assert.ErrorIs(t, err, apperr.ErrValidationFailed)
	})

	t.Run("Internal faults are masked", func(t *testing.T) {
		_, err := f.Execute(ctx, nil, "explode", NewArgs(nil))
		assert.ErrorIs(t, err, apperr.ErrInternal)
		assert.NotContains(t, err.Error(), "secret_table")
	})
}

func TestSessionIsolation(t *testing.T) {
	f, st := newFacade(t)
	ctx := context.Background()

	sess := f.Begin()
	_, err := st.Update(ctx, func(tx *store.Tx) error { return tx.Insert(kindThing, thing{ID: "late"}) })
	require.NoError(t, err)

	res, err := f.Execute(ctx, sess, "thing", NewArgs(map[string]any{"id": "late"}))
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = f.Execute(ctx, f.Begin(), "thing", NewArgs(map[string]any{"id": "late"}))
	require.NoError(t, err)
	assert.Equal(t, thing{ID: "late"}, res)
}

func TestExecuteRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f, _ := newFacade(t, WithMetrics(metrics.New(reg)))
	ctx := context.Background()

	_, _ = f.Execute(ctx, nil, "createThing", NewArgs(map[string]any{"id": "t1"}))
	_, _ = f.Execute(ctx, nil, "createThing", NewArgs(map[string]any{"id": "t1"}))
	_, _ = f.Execute(ctx, nil, "createThing", NewArgs(nil))

	// ok, internal (duplicate id) and validation_failed
	n, err := testutil.GatherAndCount(reg, "fixture_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestExecuteLogsFailures(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })

	f, _ := newFacade(t)
	_, _ = f.Execute(context.Background(), nil, "explode", NewArgs(nil))

	internal := observed.FilterMessage("internal error").All()
	require.Len(t, internal, 1)
	assert.Equal(t, "test", internal[0].ContextMap()["domain"])
	assert.Contains(t, internal[0].ContextMap()["error"], "secret_table")
}

func TestOperationsSorted(t *testing.T) {
	f, _ := newFacade(t)
	ops := f.Operations()
	require.Len(t, ops, 3)
	assert.Equal(t, "createThing", ops[0].Name)
	assert.Equal(t, "explode", ops[1].Name)
	assert.Equal(t, "thing", ops[2].Name)
}

func TestFault(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })

	t.Run("Collected in order", func(t *testing.T) {
		ctx, faults := WithFaults(context.Background())
		Fault(ctx, apperr.NotFound("Currency", "c1"))
		Fault(ctx, nil)
		Fault(ctx, apperr.RateUnavailable("GBP", "USD", errors.New("no quote")))

		errs := faults.Errors()
		require.Len(t, errs, 2)
		assert.ErrorIs(t, errs[0], apperr.ErrNotFound)
		assert.ErrorIs(t, errs[1], apperr.ErrRateSourceUnavailable)
	})

	t.Run("Internal faults are masked", func(t *testing.T) {
		ctx, faults := WithFaults(context.Background())
		Fault(ctx, errors.New("secret_table is locked"))

		errs := faults.Errors()
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], apperr.ErrInternal)
	})

	t.Run("Logged without a collector", func(t *testing.T) {
		Fault(context.Background(), apperr.NotFound("User", "u1"))
		assert.Equal(t, 1, observed.FilterMessage("field resolved to null").Len())
	})
}
