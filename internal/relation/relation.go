// Package relation resolves links between stored entities. Stored records
// only carry identifiers; everything here is derived from a store.Reader.
package relation

import (
	"strings"

	"fixture-graph/internal/apperr"
	"fixture-graph/internal/store"
)

// Forward follows a single foreign key. An empty or dangling id resolves
// to the zero value and false, never to an error.
func Forward[T store.Entity](r store.Reader, kind store.Kind, id string) (T, bool) {
	if id == "" {
		var zero T
		return zero, false
	}
	return store.Get[T](r, kind, id)
}

// Reverse scans kind for children whose key equals parentID, in insertion
// order.
func Reverse[T store.Entity](r store.Reader, kind store.Kind, parentID string, key func(T) string) []T {
	var out []T
	for _, child := range store.List[T](r, kind) {
		if key(child) == parentID {
			out = append(out, child)
		}
	}
	return out
}

// ReverseMany is Reverse for children that point at more than one parent
// through the same relationship, e.g. a friend list.
func ReverseMany[T store.Entity](r store.Reader, kind store.Kind, parentID string, keys func(T) []string) []T {
	var out []T
	for _, child := range store.List[T](r, kind) {
		for _, k := range keys(child) {
			if k == parentID {
				out = append(out, child)
				break
			}
		}
	}
	return out
}

// Count returns how many children of kind point at parentID. It reads
// through r, so a transaction sees its own uncommitted writes.
func Count[T store.Entity](r store.Reader, kind store.Kind, parentID string, key func(T) string) int {
	return len(Reverse(r, kind, parentID, key))
}

// Index groups children by parent id. Each bucket keeps insertion order.
type Index[T store.Entity] map[string][]T

type indexKey struct {
	kind store.Kind
	name string
}

// Indexed returns the children of parentID through a parent index built
// once per snapshot and cached on it. name identifies the relationship so
// two different keys over the same kind never share an index.
func Indexed[T store.Entity](snap *store.Snapshot, kind store.Kind, name, parentID string, key func(T) string) []T {
	idx := snap.Memo(indexKey{kind: kind, name: name}, func() any {
		built := make(Index[T])
		for _, child := range store.List[T](snap, kind) {
			k := key(child)
			built[k] = append(built[k], child)
		}
		return built
	}).(Index[T])
	return idx[parentID]
}

// Must is Forward for ids that have to resolve, e.g. the target of an
// update. A miss is NotFound.
func Must[T store.Entity](r store.Reader, kind store.Kind, entity, id string) (T, error) {
	v, ok := store.Get[T](r, kind, id)
	if !ok {
		return v, apperr.NotFound(entity, id)
	}
	return v, nil
}

// Ref checks that the foreign key field of entity points at an existing
// record. An empty or dangling key is a validation failure.
func Ref[T store.Entity](r store.Reader, kind store.Kind, entity, field, ref string) error {
	if strings.TrimSpace(ref) == "" {
		return apperr.Validation(entity, "", field+" is required")
	}
	if _, ok := Forward[T](r, kind, ref); !ok {
		return apperr.MissingRef(entity, "", field, ref)
	}
	return nil
}

// Dependents counts the children of one kind still pointing at a parent.
type Dependents struct {
	Name string
	N    int
}

// Restrict rejects deleting entity id while any dependents remain.
func Restrict(entity, id string, deps ...Dependents) error {
	for _, d := range deps {
		if d.N > 0 {
			return apperr.HasDependents(entity, id, d.Name, d.N)
		}
	}
	return nil
}
