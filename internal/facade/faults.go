package facade

import (
	"context"
	"sync"

	"fixture-graph/internal/logger"

	"go.uber.org/zap"
)

// Faults gathers the errors of nullable fields that resolved to null. They
// are reported next to the data, so the failing field is the only one lost.
type Faults struct {
	mu   sync.Mutex
	errs []error
}

type faultsKey struct{}

// WithFaults returns ctx carrying a fresh collector.
func WithFaults(ctx context.Context) (context.Context, *Faults) {
	f := &Faults{}
	return context.WithValue(ctx, faultsKey{}, f), f
}

// Fault records err, masked, on the collector carried by ctx. Without a
// collector it is only logged.
func Fault(ctx context.Context, err error) {
	if err == nil {
		return
	}
	err = Mask(ctx, err)
	if f, ok := ctx.Value(faultsKey{}).(*Faults); ok {
		f.mu.Lock()
		f.errs = append(f.errs, err)
		f.mu.Unlock()
		return
	}
	logger.FromCtx(ctx).Warn("field resolved to null", zap.Error(err))
}

// Errors returns the recorded faults in the order they happened.
func (f *Faults) Errors() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]error, len(f.errs))
	copy(out, f.errs)
	return out
}
