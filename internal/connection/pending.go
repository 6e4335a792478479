package connection

import (
	"context"
	"sync"
)

// Pending is the future handed out by Submit. It resolves exactly once,
// when the request's session reaches a final state or is discarded by Stop.
type Pending struct {
	id     string
	done   chan struct{}
	once   sync.Once
	result Result
}

func newPending(id string) *Pending {
	return &Pending{id: id, done: make(chan struct{})}
}

// ID returns the request ID.
func (p *Pending) ID() string {
	return p.id
}

// Done is closed once the result is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the request finishes or ctx is done.
// The returned error is ctx's error; session failures are in Result.Err.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return Result{RequestID: p.id}, ctx.Err()
	}
}

func (p *Pending) resolve(r Result) {
	p.once.Do(func() {
		p.result = r
		close(p.done)
	})
}

// WaitAll waits for every pending request and returns results in argument order.
// On ctx expiry it returns the results gathered so far along with ctx's error.
func WaitAll(ctx context.Context, pending ...*Pending) ([]Result, error) {
	results := make([]Result, 0, len(pending))
	for _, p := range pending {
		r, err := p.Wait(ctx)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}
