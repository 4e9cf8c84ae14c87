// Package rates supplies currency conversion rates to balance reads.
package rates

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"fixture-graph/internal/apperr"
)

// Source returns how many units of to one unit of from is worth. A
// successful answer is always positive.
type Source interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// Identity treats every currency as equal. It suits single-currency
// deployments.
type Identity struct{}

func (Identity) Rate(ctx context.Context, from, to string) (float64, error) {
	return 1, nil
}

// Table holds static rates against a common base, e.g. USD:1, EUR:0.9.
type Table map[string]float64

// ParseTable reads "USD:1,EUR:0.9". An empty string yields an empty table.
func ParseTable(s string) (Table, error) {
	t := make(Table)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, value, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("rates: %q is not CODE:VALUE", part)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("rates: %q needs a positive number", part)
		}
		t[strings.ToUpper(strings.TrimSpace(code))] = v
	}
	return t, nil
}

func (t Table) Rate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	f, ok := t[strings.ToUpper(from)]
	if !ok {
		return 0, apperr.RateUnavailable(from, to, fmt.Errorf("%s is not in the rate table", from))
	}
	d, ok := t[strings.ToUpper(to)]
	if !ok {
		return 0, apperr.RateUnavailable(from, to, fmt.Errorf("%s is not in the rate table", to))
	}
	return d / f, nil
}

type timeoutSource struct {
	src Source
	d   time.Duration
}

// WithTimeout bounds every lookup on src by d.
func WithTimeout(src Source, d time.Duration) Source {
	if d <= 0 {
		return src
	}
	return &timeoutSource{src: src, d: d}
}

func (s *timeoutSource) Rate(ctx context.Context, from, to string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.d)
	defer cancel()

	rate, err := s.src.Rate(ctx, from, to)
	if err != nil {
		if apperr.IsTaxonomy(err) {
			return 0, err
		}
		return 0, apperr.RateUnavailable(from, to, err)
	}
	return rate, nil
}

type pair struct{ from, to string }

type answer struct {
	rate float64
	err  error
}

// Pinned remembers every answer it has given so one GraphQL operation
// sees a single rate per currency pair.
type Pinned struct {
	src  Source
	mu   sync.Mutex
	seen map[pair]answer
}

// Pin wraps src for the lifetime of one operation.
func Pin(src Source) *Pinned {
	return &Pinned{src: src, seen: make(map[pair]answer)}
}

func (p *Pinned) Rate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	key := pair{from, to}

	p.mu.Lock()
	a, ok := p.seen[key]
	p.mu.Unlock()
	if ok {
		return a.rate, a.err
	}

	rate, err := p.src.Rate(ctx, from, to)
	if err == nil && rate <= 0 {
		err = apperr.RateUnavailable(from, to, fmt.Errorf("non-positive rate %v", rate))
	}
	// Cancellation belongs to the caller, not to the pair.
	if ctx.Err() != nil {
		return 0, err
	}

	p.mu.Lock()
	if prev, ok := p.seen[key]; ok {
		a = prev
	} else {
		a = answer{rate: rate, err: err}
		p.seen[key] = a
	}
	p.mu.Unlock()
	return a.rate, a.err
}
