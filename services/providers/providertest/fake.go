// Package providertest provides a scripted providers.Adapter for tests.
package providertest

import (
	"context"
	"sync"
	"time"

	"github.com/synapse-notes/backend/services/providers"
)

// Call is one recorded invocation
type Call struct {
	Request providers.Request
	Options providers.Options
}

// Fake answers every Invoke with Reply or Err. When Delay is set it waits
// that long first and fails with a timeout if the context ends sooner.
type Fake struct {
	Name  string
	Reply string
	Err   error
	Delay time.Duration

	mu    sync.Mutex
	calls []Call
}

// Succeeding returns a fake that always replies with reply
func Succeeding(id, reply string) *Fake {
	return &Fake{Name: id, Reply: reply}
}

// Failing returns a fake that always fails with the given kind
func Failing(id string, kind providers.ErrorKind) *Fake {
	return &Fake{Name: id, Err: providers.NewProviderError(id, kind, "scripted failure", 0, nil)}
}

// Hanging returns a fake that replies only after delay
func Hanging(id, reply string, delay time.Duration) *Fake {
	return &Fake{Name: id, Reply: reply, Delay: delay}
}

// ID returns the fake's id
func (f *Fake) ID() string {
	return f.Name
}

// Invoke records the call and returns the scripted outcome
func (f *Fake) Invoke(ctx context.Context, req *providers.Request, opts providers.Options) (string, error) {
	f.mu.Lock()
	call := Call{Options: opts}
	if req != nil {
		call.Request = *req
	}
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if f.Delay > 0 {
		timer := time.NewTimer(f.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", providers.NewProviderError(f.Name, providers.KindTimeout, "request timed out", 0, ctx.Err())
		}
	}

	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

// CallCount returns how many times Invoke ran
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Calls returns a copy of the recorded calls
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// LastCall returns the most recent call. It panics when there were none.
func (f *Fake) LastCall() Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}
