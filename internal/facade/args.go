package facade

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"fixture-graph/internal/apperr"
	"fixture-graph/internal/patch"
)

// Args is the argument bag of one root operation. Values arrive either as
// GraphQL scalar text or as decoded JSON, so every accessor accepts both.
type Args struct {
	entity string
	values map[string]any
}

func NewArgs(values map[string]any) Args {
	if values == nil {
		values = map[string]any{}
	}
	return Args{values: values}
}

func (a Args) forEntity(entity string) Args {
	a.entity = entity
	return a
}

// Has reports whether name was supplied with a non-null value.
func (a Args) Has(name string) bool {
	v, ok := a.values[name]
	return ok && v != nil
}

func (a Args) missing(name string) error {
	return apperr.Validation(a.entity, "", name+" is required")
}

func (a Args) malformed(name, want string) error {
	return apperr.Validation(a.entity, "", fmt.Sprintf("%s must be %s", name, want))
}

// ID returns a required, non-empty identifier.
func (a Args) ID(name string) (string, error) {
	s, err := a.String(name)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", a.missing(name)
	}
	return s, nil
}

func (a Args) String(name string) (string, error) {
	if !a.Has(name) {
		return "", a.missing(name)
	}
	return a.toString(name, a.values[name])
}

func (a Args) toString(name string, v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	case int, int32, int64, float64:
		return fmt.Sprint(s), nil
	default:
		return "", a.malformed(name, "a string")
	}
}

func (a Args) Float(name string) (float64, error) {
	if !a.Has(name) {
		return 0, a.missing(name)
	}
	return a.toFloat(name, a.values[name])
}

func (a Args) toFloat(name string, v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, a.malformed(name, "a number")
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, a.malformed(name, "a number")
		}
		f = parsed
	default:
		return 0, a.malformed(name, "a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, a.malformed(name, "a finite number")
	}
	return f, nil
}

func (a Args) Int(name string) (int, error) {
	if !a.Has(name) {
		return 0, a.missing(name)
	}
	return a.toInt(name, a.values[name])
}

func (a Args) toInt(name string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, a.malformed(name, "an integer")
		}
		return i, nil
	}
	f, err := a.toFloat(name, v)
	if err != nil || f != math.Trunc(f) {
		return 0, a.malformed(name, "an integer")
	}
	return int(f), nil
}

// Bool treats an absent or null flag as false.
func (a Args) Bool(name string) (bool, error) {
	if !a.Has(name) {
		return false, nil
	}
	switch b := a.values[name].(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, a.malformed(name, "a boolean")
		}
		return parsed, nil
	default:
		return false, a.malformed(name, "a boolean")
	}
}

// Object returns a nested input object.
func (a Args) Object(name string) (Args, error) {
	if !a.Has(name) {
		return Args{}, a.missing(name)
	}
	m, ok := a.values[name].(map[string]any)
	if !ok {
		return Args{}, a.malformed(name, "an object")
	}
	return Args{entity: a.entity, values: m}, nil
}

// Objects returns a list of input objects. An absent list is an error; an
// empty one is not.
func (a Args) Objects(name string) ([]Args, error) {
	if !a.Has(name) {
		return nil, a.missing(name)
	}
	list, ok := a.values[name].([]any)
	if !ok {
		return nil, a.malformed(name, "a list")
	}
	out := make([]Args, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, a.malformed(name, "a list of objects")
		}
		out = append(out, Args{entity: a.entity, values: m})
	}
	return out, nil
}

// OptString is a patch field: absent or null leaves the value unchanged.
func (a Args) OptString(name string) (patch.Field[string], error) {
	if !a.Has(name) {
		return patch.Keep[string](), nil
	}
	s, err := a.toString(name, a.values[name])
	if err != nil {
		return patch.Field[string]{}, err
	}
	return patch.Set(s), nil
}

func (a Args) OptFloat(name string) (patch.Field[float64], error) {
	if !a.Has(name) {
		return patch.Keep[float64](), nil
	}
	f, err := a.toFloat(name, a.values[name])
	if err != nil {
		return patch.Field[float64]{}, err
	}
	return patch.Set(f), nil
}

func (a Args) OptInt(name string) (patch.Field[int], error) {
	if !a.Has(name) {
		return patch.Keep[int](), nil
	}
	i, err := a.toInt(name, a.values[name])
	if err != nil {
		return patch.Field[int]{}, err
	}
	return patch.Set(i), nil
}

// Clearable reads a field that may be removed through its companion
// clearFlag argument. Supplying both a value and the flag is rejected.
func (a Args) Clearable(name, clearFlag string) (patch.Field[string], error) {
	wipe, err := a.Bool(clearFlag)
	if err != nil {
		return patch.Field[string]{}, err
	}
	if wipe {
		if a.Has(name) {
			return patch.Field[string]{}, apperr.Validation(a.entity, "", fmt.Sprintf("%s and %s cannot be combined", name, clearFlag))
		}
		return patch.Clear[string](), nil
	}
	return a.OptString(name)
}
