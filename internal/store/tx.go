package store

import (
	"errors"
	"fmt"
)

var ErrNoEntity = errors.New("store: no such entity")

// Tx is the private write view used inside Store.Update. Collections are
// copied the first time they are written, so the base snapshot never moves.
type Tx struct {
	base    *Snapshot
	touched map[Kind]*table
	nextSeq uint64
	changes []Change
}

func newTx(base *Snapshot) *Tx {
	return &Tx{
		base:    base,
		touched: make(map[Kind]*table),
		nextSeq: base.nextSeq,
	}
}

func (tx *Tx) table(kind Kind) *table {
	if t, ok := tx.touched[kind]; ok {
		return t
	}
	return tx.base.tables[kind]
}

func (tx *Tx) writable(kind Kind) *table {
	if t, ok := tx.touched[kind]; ok {
		return t
	}
	t := newTable()
	if base := tx.base.tables[kind]; base != nil {
		t = base.clone()
	}
	tx.touched[kind] = t
	return t
}

func (tx *Tx) Get(kind Kind, id string) (Entity, bool) {
	t := tx.table(kind)
	if t == nil {
		return nil, false
	}
	r, ok := t.rows[id]
	return r.entity, ok
}

func (tx *Tx) List(kind Kind) []Entity {
	t := tx.table(kind)
	if t == nil {
		return nil
	}
	return t.list()
}

func (tx *Tx) Count(kind Kind) int {
	t := tx.table(kind)
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Insert appends e to kind. The id must be new.
func (tx *Tx) Insert(kind Kind, e Entity) error {
	id := e.EntityID()
	if id == "" {
		return ErrMissingID
	}
	if _, ok := tx.Get(kind, id); ok {
		return fmt.Errorf("%w: %s %s", ErrDuplicateID, kind, id)
	}
	seq := tx.nextSeq
	tx.nextSeq++
	tx.writable(kind).put(id, e, seq)
	tx.changes = append(tx.changes, Change{Op: OpInsert, Kind: kind, ID: id, Seq: seq, Entity: e})
	return nil
}

// Replace swaps the stored value for e, keeping its position in the list.
func (tx *Tx) Replace(kind Kind, e Entity) error {
	id := e.EntityID()
	t := tx.table(kind)
	if t == nil {
		return fmt.Errorf("%w: %s %s", ErrNoEntity, kind, id)
	}
	r, ok := t.rows[id]
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrNoEntity, kind, id)
	}
	tx.writable(kind).put(id, e, r.seq)
	tx.changes = append(tx.changes, Change{Op: OpReplace, Kind: kind, ID: id, Seq: r.seq, Entity: e})
	return nil
}

// Remove deletes kind/id and returns the removed value.
func (tx *Tx) Remove(kind Kind, id string) (Entity, bool) {
	e, ok := tx.Get(kind, id)
	if !ok {
		return nil, false
	}
	tx.writable(kind).delete(id)
	tx.changes = append(tx.changes, Change{Op: OpRemove, Kind: kind, ID: id})
	return e, true
}

func (tx *Tx) snapshot() *Snapshot {
	next := &Snapshot{
		version: tx.base.version + 1,
		nextSeq: tx.nextSeq,
		tables:  make(map[Kind]*table, len(tx.base.tables)+len(tx.touched)),
	}
	for k, t := range tx.base.tables {
		next.tables[k] = t
	}
	for k, t := range tx.touched {
		next.tables[k] = t
	}
	return next
}
