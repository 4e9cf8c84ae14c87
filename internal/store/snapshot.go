package store

import "sync"

type row struct {
	entity Entity
	seq    uint64
}

// table keeps rows plus their insertion order.
type table struct {
	order []string
	rows  map[string]row
}

func newTable() *table {
	return &table{rows: make(map[string]row)}
}

func (t *table) clone() *table {
	c := &table{
		order: make([]string, len(t.order)),
		rows:  make(map[string]row, len(t.rows)),
	}
	copy(c.order, t.order)
	for id, r := range t.rows {
		c.rows[id] = r
	}
	return c
}

func (t *table) put(id string, e Entity, seq uint64) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row{entity: e, seq: seq}
}

func (t *table) delete(id string) {
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			return
		}
	}
}

func (t *table) list() []Entity {
	out := make([]Entity, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id].entity)
	}
	return out
}

// Snapshot is an immutable view of every collection at one version.
type Snapshot struct {
	version uint64
	nextSeq uint64
	tables  map[Kind]*table
	memo    sync.Map
}

func emptySnapshot() *Snapshot {
	return &Snapshot{nextSeq: 1, tables: make(map[Kind]*table)}
}

// Version increases by one with every published mutation.
func (s *Snapshot) Version() uint64 { return s.version }

func (s *Snapshot) Get(kind Kind, id string) (Entity, bool) {
	t := s.tables[kind]
	if t == nil {
		return nil, false
	}
	r, ok := t.rows[id]
	return r.entity, ok
}

// List returns the collection in insertion order.
func (s *Snapshot) List(kind Kind) []Entity {
	t := s.tables[kind]
	if t == nil {
		return nil
	}
	return t.list()
}

func (s *Snapshot) Count(kind Kind) int {
	t := s.tables[kind]
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Memo returns the value cached under key, building it on first use.
// Cached values live exactly as long as the snapshot.
func (s *Snapshot) Memo(key any, build func() any) any {
	if v, ok := s.memo.Load(key); ok {
		return v
	}
	v, _ := s.memo.LoadOrStore(key, build())
	return v
}

// Get returns the entity of type T stored under kind/id.
func Get[T Entity](r Reader, kind Kind, id string) (T, bool) {
	var zero T
	e, ok := r.Get(kind, id)
	if !ok {
		return zero, false
	}
	v, ok := e.(T)
	return v, ok
}

// List returns every entity of type T in kind, in insertion order.
func List[T Entity](r Reader, kind Kind) []T {
	all := r.List(kind)
	out := make([]T, 0, len(all))
	for _, e := range all {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
