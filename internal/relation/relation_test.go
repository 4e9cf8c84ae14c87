package relation

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-graph/internal/apperr"
	"fixture-graph/internal/store"
)

const (
	kindParent store.Kind = "test.parent"
	kindChild  store.Kind = "test.child"
)

type parent struct{ ID string }

func (p parent) EntityID() string { return p.ID }

type child struct {
	ID       string
	ParentID string
	Peers    []string
}

func (c child) EntityID() string { return c.ID }

func parentOf(c child) string  { return c.ParentID }
func peersOf(c child) []string { return c.Peers }

func seed(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	_, err := s.Update(context.Background(), func(tx *store.Tx) error {
		for _, p := range []parent{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}} {
			if err := tx.Insert(kindParent, p); err != nil {
				return err
			}
		}
		for i, pid := range []string{"p1", "p2", "p1", "p1", "p2", "ghost"} {
			c := child{ID: fmt.Sprintf("c%d", i), ParentID: pid, Peers: []string{pid, "p3"}}
			if err := tx.Insert(kindChild, c); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return s
}

func TestForward(t *testing.T) {
	snap := seed(t).Snapshot()

	p, ok := Forward[parent](snap, kindParent, "p2")
	assert.True(t, ok)
	assert.Equal(t, "p2", p.ID)

	_, ok = Forward[parent](snap, kindParent, "")
	assert.False(t, ok)

	_, ok = Forward[parent](snap, kindParent, "ghost")
	assert.False(t, ok)
}

func TestReverse(t *testing.T) {
	snap := seed(t).Snapshot()

	got := Reverse(snap, kindChild, "p1", parentOf)
	ids := make([]string, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"c0", "c2", "c3"}, ids)
	assert.Empty(t, Reverse(snap, kindChild, "p3", parentOf))
	assert.Equal(t, 3, Count(snap, kindChild, "p1", parentOf))
}

func TestReverseMany(t *testing.T) {
	snap := seed(t).Snapshot()

	assert.Len(t, ReverseMany(snap, kindChild, "p3", peersOf), 6)
	assert.Len(t, ReverseMany(snap, kindChild, "p2", peersOf), 2)
}

func TestIndexedMatchesScan(t *testing.T) {
	s := seed(t)

	check := func(snap *store.Snapshot) {
		for _, pid := range []string{"p1", "p2", "p3", "ghost", "nobody"} {
			scan := Reverse(snap, kindChild, pid, parentOf)
			idx := Indexed(snap, kindChild, "parent", pid, parentOf)
			if diff := cmp.Diff(scan, idx); diff != "" {
				t.Errorf("index for %s differs from scan (-scan +index):\n%s", pid, diff)
			}
		}
	}
	check(s.Snapshot())

	_, err := s.Update(context.Background(), func(tx *store.Tx) error {
		tx.Remove(kindChild, "c0")
		return tx.Insert(kindChild, child{ID: "c9", ParentID: "p3"})
	})
	require.NoError(t, err)
	check(s.Snapshot())
}

func TestMust(t *testing.T) {
	snap := seed(t).Snapshot()

	p, err := Must[parent](snap, kindParent, "Parent", "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)

	_, err = Must[parent](snap, kindParent, "Parent", "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorContains(t, err, `Parent "ghost"`)
}

func TestRef(t *testing.T) {
	snap := seed(t).Snapshot()

	assert.NoError(t, Ref[parent](snap, kindParent, "Child", "parentId", "p2"))

	err := Ref[parent](snap, kindParent, "Child", "parentId", " ")
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)
	assert.ErrorContains(t, err, "parentId is required")

	err = Ref[parent](snap, kindParent, "Child", "parentId", "ghost")
	assert.ErrorIs(t, err, apperr.ErrValidationFailed)
	assert.ErrorContains(t, err, "ghost")
}

func TestRestrict(t *testing.T) {
	snap := seed(t).Snapshot()

	assert.NoError(t, Restrict("Parent", "p3",
		Dependents{Name: "child", N: Count(snap, kindChild, "p3", parentOf)},
	))

	err := Restrict("Parent", "p1",
		Dependents{Name: "sibling", N: 0},
		Dependents{Name: "child", N: Count(snap, kindChild, "p1", parentOf)},
	)
	assert.ErrorIs(t, err, apperr.ErrHasDependents)
	assert.ErrorContains(t, err, "3 child")
}
