package store

import (
	"context"
	"encoding/json"
	"fmt"
)

type Op int

const (
	OpInsert Op = iota + 1
	OpReplace
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpReplace:
		return "replace"
	case OpRemove:
		return "remove"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Change is one write recorded by a Tx. Entity is nil for removals.
type Change struct {
	Op     Op
	Kind   Kind
	ID     string
	Seq    uint64
	Entity Entity
}

// Record is one persisted entity as returned by Backend.Load.
type Record struct {
	Kind Kind
	ID   string
	Seq  uint64
	Body []byte
}

// Backend is the durable side of the store. Commit must apply the whole
// change set or none of it.
type Backend interface {
	Load(ctx context.Context) ([]Record, error)
	Commit(ctx context.Context, changes []Change) error
}

// Codec decodes persisted bodies back into typed entities.
type Codec map[Kind]func(body []byte) (Entity, error)

// Register teaches c how to decode kind into T.
func Register[T Entity](c Codec, kind Kind) {
	c[kind] = func(body []byte) (Entity, error) {
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func (c Codec) Decode(kind Kind, body []byte) (Entity, error) {
	dec, ok := c[kind]
	if !ok {
		return nil, fmt.Errorf("no decoder registered for %s", kind)
	}
	return dec(body)
}

// Encode is the body format every backend stores.
func Encode(e Entity) ([]byte, error) {
	return json.Marshal(e)
}
