// Package router runs an ordered chain of provider adapters and returns the
// first successful answer, a degraded answer, or an exhaustion error.
package router

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/synapse-notes/backend/services/providers"
)

// Step is one entry of a fallback chain
type Step struct {
	Adapter providers.Adapter
	Options providers.Options
}

// Attempt records the outcome of one step. Attempts are logged and counted, never persisted.
type Attempt struct {
	ProviderID string
	Success    bool
	Kind       providers.ErrorKind
	Reason     string
	Elapsed    time.Duration
}

// Result is the outcome of a chain. ProviderUsed is empty when Degraded is true.
type Result struct {
	Content      string
	Degraded     bool
	ProviderUsed string
	Attempts     []Attempt
}

// DegradeFunc produces the fallback content once every step has failed
type DegradeFunc func() string

// ErrChainExhausted matches every *ChainExhaustedError
var ErrChainExhausted = errors.New("all providers failed")

// ChainExhaustedError is returned when every step failed and no degrade function was given
type ChainExhaustedError struct {
	Capability string
	Attempts   []Attempt
}

// Error implements the error interface
func (e *ChainExhaustedError) Error() string {
	ids := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		ids = append(ids, fmt.Sprintf("%s(%s)", a.ProviderID, a.Kind))
	}
	return fmt.Sprintf("%s: %s: %s", e.Capability, ErrChainExhausted.Error(), strings.Join(ids, ", "))
}

// Is implements errors.Is
func (e *ChainExhaustedError) Is(target error) bool {
	return target == ErrChainExhausted
}
