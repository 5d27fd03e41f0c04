// Package completion is the seam to the external AI completion
// provider. The chat service only sees the Provider interface; the
// real integration lives behind it and is wrapped with a timeout and
// a circuit breaker because the provider is neither synchronous nor
// reliable.
package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Placeholder synthesizes a canned assistant reply without calling
// any model.
type Placeholder struct{}

func (Placeholder) Complete(_ context.Context, prompt string) (string, error) {
	return fmt.Sprintf("I received your message: %q. A full response will be available once an AI provider is configured.", prompt), nil
}

// Breaker wraps a Provider with a per-call timeout and a circuit
// breaker that opens after consecutive failures.
type Breaker struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker
	timeout  time.Duration
}

func NewBreaker(provider Provider, timeout time.Duration) *Breaker {
	return &Breaker{
		provider: provider,
		timeout:  timeout,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "completion",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
		}),
	}
}

func (b *Breaker) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := b.breaker.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()
		return b.provider.Complete(callCtx, prompt)
	})
	if err != nil {
		return "", fmt.Errorf("completion call failed: %w", err)
	}
	reply, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("completion returned unexpected result type %T", result)
	}
	return reply, nil
}
