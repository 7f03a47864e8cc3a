package router

import (
	"context"
	"fmt"
	"time"

	"github.com/synapse-notes/backend/internal/observability"
	"github.com/synapse-notes/backend/services/providers"
	"go.uber.org/zap"
)

// DefaultStepTimeout bounds one provider call when no timeout is configured
const DefaultStepTimeout = 30 * time.Second

// Executor runs fallback chains. It holds no per-request state.
type Executor struct {
	logger      *zap.Logger
	metrics     *observability.Metrics
	stepTimeout time.Duration
}

// NewExecutor creates a chain executor. metrics may be nil.
func NewExecutor(logger *zap.Logger, metrics *observability.Metrics, stepTimeout time.Duration) *Executor {
	if stepTimeout <= 0 {
		stepTimeout = DefaultStepTimeout
	}
	return &Executor{
		logger:      logger,
		metrics:     metrics,
		stepTimeout: stepTimeout,
	}
}

// Execute tries steps strictly in order, each under its own timeout.
// The first success wins. When all fail, degrade (if non-nil) supplies the
// content; otherwise a *ChainExhaustedError is returned. Cancellation of ctx
// stops the chain and returns the context error.
func (e *Executor) Execute(ctx context.Context, capability string, steps []Step, req *providers.Request, degrade DegradeFunc) (*Result, error) {
	attempts := make([]Attempt, 0, len(steps))

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, e.canceled(capability, attempts, err)
		}

		id := step.Adapter.ID()
		content, elapsed, err := e.invoke(ctx, step, req)
		if err == nil {
			attempts = append(attempts, Attempt{ProviderID: id, Success: true, Elapsed: elapsed})
			e.metrics.RecordAttempt(capability, id, observability.OutcomeSuccess)
			e.logger.Debug("provider succeeded",
				zap.String("capability", capability),
				zap.String("provider", id),
				zap.Duration("elapsed", elapsed))
			return &Result{
				Content:      content,
				ProviderUsed: id,
				Attempts:     attempts,
			}, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, e.canceled(capability, attempts, ctxErr)
		}

		kind := providers.KindOf(err)
		attempts = append(attempts, Attempt{
			ProviderID: id,
			Kind:       kind,
			Reason:     err.Error(),
			Elapsed:    elapsed,
		})
		e.metrics.RecordAttempt(capability, id, observability.OutcomeFailure)
		e.logger.Warn("provider failed, trying next",
			zap.String("capability", capability),
			zap.String("provider", id),
			zap.String("kind", string(kind)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	}

	if degrade != nil {
		e.logger.Warn("all providers failed, returning degraded result",
			zap.String("capability", capability),
			zap.Int("attempts", len(attempts)))
		return &Result{
			Content:  degrade(),
			Degraded: true,
			Attempts: attempts,
		}, nil
	}

	return nil, &ChainExhaustedError{Capability: capability, Attempts: attempts}
}

// invoke runs one step under a child context so a slow provider cannot
// consume the next provider's budget
func (e *Executor) invoke(ctx context.Context, step Step, req *providers.Request) (string, time.Duration, error) {
	stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
	defer cancel()

	start := time.Now()
	content, err := step.Adapter.Invoke(stepCtx, req, step.Options)
	elapsed := time.Since(start)

	if err == nil && stepCtx.Err() != nil {
		// A reply that arrives after the deadline is discarded.
		err = providers.NewProviderError(step.Adapter.ID(), providers.KindTimeout, "deadline exceeded", 0, stepCtx.Err())
	}
	return content, elapsed, err
}

func (e *Executor) canceled(capability string, attempts []Attempt, err error) error {
	e.logger.Info("request canceled during provider chain",
		zap.String("capability", capability),
		zap.Int("attempts", len(attempts)),
		zap.Error(err))
	return fmt.Errorf("%s chain canceled: %w", capability, err)
}
