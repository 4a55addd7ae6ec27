// Package synthesis provides a pluggable interface for text generation providers.
package synthesis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rcliao/daybook/internal/model"
)

const (
	// SynthesisMaxTokens bounds a journal synthesis response.
	SynthesisMaxTokens = 2048
	// ChatMaxTokens bounds a chat reply.
	ChatMaxTokens = 256
	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 60 * time.Second
)

// Turn is one prior message handed to the model.
type Turn struct {
	Role    model.Role
	Content string
}

// Request is a single generation call.
type Request struct {
	System    string
	Messages  []Turn
	MaxTokens int
}

// Generator produces text from a prompt. Implementations return either the
// generated text or an error; provider response shapes never leak out.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Synthesize runs the transcript through g under systemPrompt.
func Synthesize(ctx context.Context, g Generator, systemPrompt, transcript string) (string, error) {
	return g.Generate(ctx, Request{
		System:    systemPrompt,
		Messages:  []Turn{{Role: model.RoleUser, Content: transcript}},
		MaxTokens: SynthesisMaxTokens,
	})
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// WithTimeout bounds every call to g by d. A call that runs out of time fails
// with a SynthesisError.
func WithTimeout(g Generator, d time.Duration) Generator {
	if d <= 0 {
		return g
	}
	return &timeoutGenerator{next: g, timeout: d}
}

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

func (t *timeoutGenerator) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := t.next.Generate(ctx, req)
		done <- result{text, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && !errors.Is(r.err, model.ErrSynthesisUnavailable) {
			r.err = &model.SynthesisError{Err: r.err}
		}
		return r.text, r.err
	case <-ctx.Done():
		return "", &model.SynthesisError{Err: fmt.Errorf("generation timed out after %s: %w", t.timeout, ctx.Err())}
	}
}

// wrap tags a provider failure with its kind.
func wrap(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &model.SynthesisError{Provider: provider, Err: err}
}
