package perf

import (
	"context"
	"sync"
	"time"
)

type contextKey struct{}

var PerfContextKey = contextKey{}

// RequestPerf records timed blocks for a single request. Backend calls made
// on behalf of the request may run on other goroutines, so blocks are
// guarded by a mutex.
type RequestPerf struct {
	Route  string
	Path   string // the path actually matched
	Method string
	Start  time.Time
	End    time.Time

	mu     sync.Mutex
	Blocks []PerfBlock
}

func MakeNewRequestPerf(route string, method string, path string) *RequestPerf {
	return &RequestPerf{
		Start:  time.Now(),
		Route:  route,
		Path:   path,
		Method: method,
	}
}

func (rp *RequestPerf) EndRequest() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	now := time.Now()
	for i := range rp.Blocks {
		if rp.Blocks[i].End.IsZero() {
			rp.Blocks[i].End = now
		}
	}
	rp.End = now
}

type BlockHandle struct {
	rp  *RequestPerf
	idx int
}

func (rp *RequestPerf) StartBlock(category, description string) *BlockHandle {
	if rp == nil {
		return nil
	}

	rp.mu.Lock()
	defer rp.mu.Unlock()

	rp.Blocks = append(rp.Blocks, PerfBlock{
		Start:       time.Now(),
		Category:    category,
		Description: description,
	})
	return &BlockHandle{rp: rp, idx: len(rp.Blocks) - 1}
}

// End is safe to call on a nil handle, so callers never need to check
// whether the request is being tracked.
func (b *BlockHandle) End() {
	if b == nil {
		return
	}

	b.rp.mu.Lock()
	defer b.rp.mu.Unlock()
	if b.rp.Blocks[b.idx].End.IsZero() {
		b.rp.Blocks[b.idx].End = time.Now()
	}
}

// Snapshot copies the blocks recorded so far.
func (rp *RequestPerf) Snapshot() []PerfBlock {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return append([]PerfBlock(nil), rp.Blocks...)
}

func (rp *RequestPerf) MsFromStart(block *PerfBlock) float64 {
	return float64(block.Start.Sub(rp.Start).Nanoseconds()) / 1000 / 1000
}

func (rp *RequestPerf) DurationMs() float64 {
	return float64(rp.End.Sub(rp.Start).Nanoseconds()) / 1000 / 1000
}

type PerfBlock struct {
	Start       time.Time
	End         time.Time
	Category    string
	Description string
}

func (pb *PerfBlock) Duration() time.Duration {
	return pb.End.Sub(pb.Start)
}

func (pb *PerfBlock) DurationMs() float64 {
	return float64(pb.Duration().Nanoseconds()) / 1000 / 1000
}

func ExtractPerf(ctx context.Context) *RequestPerf {
	if ctx == nil {
		return nil
	}
	rp, _ := ctx.Value(PerfContextKey).(*RequestPerf)
	return rp
}

func StartBlock(ctx context.Context, category, description string) *BlockHandle {
	return ExtractPerf(ctx).StartBlock(category, description)
}
