package paintmix

import "context"

// Batch serves repeated optimizations against one paint pool (a user's
// library). The pool is validated and snapshotted at construction, so
// malformed pools fail once up front and later mutations of the caller's
// slice cannot leak into in-flight runs.
type Batch struct {
	o      *Optimizer
	paints []Paint
}

// NewBatch validates the paint pool and snapshots it for repeated use.
func NewBatch(paints []Paint, opts ...Option) (*Batch, error) {
	o, err := New(opts...)
	if err != nil {
		return nil, err
	}
	probe := applyModeDefaults(Request{AvailablePaints: paints})
	if err := ValidateRequest(probe); err != nil {
		return nil, err
	}
	pool := make([]Paint, len(paints))
	copy(pool, paints)
	return &Batch{o: o, paints: pool}, nil
}

// Optimize runs one request against the batch pool. Any AvailablePaints in
// the request are ignored in favor of the validated pool.
func (b *Batch) Optimize(ctx context.Context, req Request) (*Response, error) {
	req.AvailablePaints = b.paints
	return b.o.Optimize(ctx, req)
}
