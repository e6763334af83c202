package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sonicalchemist/api/internal/client"
	"github.com/sonicalchemist/api/internal/logger"
	"github.com/sonicalchemist/api/internal/observability"
	"github.com/sonicalchemist/api/internal/schema"
)

// ErrInvocation matches every InvocationError.
var ErrInvocation = errors.New("invocation failed")

// Failure kinds reported by InvocationError.
const (
	KindProvider = "provider"
	KindContract = "contract"
)

// InvocationError is returned when a flow could not produce a result. Kind
// tells a provider failure apart from output that broke its contract.
type InvocationError struct {
	Flow string
	Kind string
	Err  error
}

func (e *InvocationError) Error() string {
	return e.Err.Error()
}

func (e *InvocationError) Is(target error) bool {
	return target == ErrInvocation
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// AsInvocationError unwraps err into an *InvocationError.
func AsInvocationError(err error) (*InvocationError, bool) {
	var ierr *InvocationError
	if errors.As(err, &ierr) {
		return ierr, true
	}
	return nil, false
}

// Invoker sends rendered prompts to the provider and decodes the answer.
// Every call is exactly one upstream request; there is no retry and no cache.
type Invoker struct {
	provider  client.TextGenerator
	tracer    *observability.Tracer
	validator *schema.Validator
}

func NewInvoker(provider client.TextGenerator, tracer *observability.Tracer, validator *schema.Validator) *Invoker {
	if tracer == nil {
		tracer = observability.Disabled()
	}
	if validator == nil {
		validator = schema.New()
	}
	return &Invoker{
		provider:  provider,
		tracer:    tracer,
		validator: validator,
	}
}

// ProviderName returns the name of the active provider.
func (inv *Invoker) ProviderName() string {
	return inv.provider.Name()
}

// Invoke runs one flow call and decodes the output into T. Cancellation of
// ctx is honoured before the call and by the provider transport.
func Invoke[T any](ctx context.Context, inv *Invoker, flow, prompt string, out schema.Output[T]) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, &InvocationError{Flow: flow, Kind: KindProvider, Err: err}
	}

	fields := logger.Fields{
		"flow":     flow,
		"provider": inv.provider.Name(),
	}

	trace := inv.tracer.StartTrace(ctx, flow, map[string]interface{}{
		"provider": inv.provider.Name(),
		"schema":   out.Name,
	})
	defer trace.Finish()
	gen := trace.Generation(flow+".generate", inv.provider.Name(), prompt)

	start := time.Now()
	resp, err := inv.provider.Generate(ctx, &client.GenerationRequest{
		Prompt: prompt,
		OutputSchema: &client.OutputSchema{
			Name:        out.Name,
			Description: out.Description,
			Schema:      out.Schema,
		},
	})
	fields["duration_ms"] = time.Since(start).Milliseconds()

	if err != nil {
		gen.End("", 0, 0, err)
		logger.Error("Provider call failed", err, fields)
		return nil, &InvocationError{Flow: flow, Kind: KindProvider, Err: fmt.Errorf("%s provider: %w", inv.provider.Name(), err)}
	}
	gen.End(resp.RawOutput, resp.Usage.InputTokens, resp.Usage.OutputTokens, nil)

	result, err := out.Decode(inv.validator, resp.RawOutput)
	if err != nil {
		logger.Warn("Model output violated contract", fields.With(logger.Fields{"error": err.Error()}))
		return nil, &InvocationError{Flow: flow, Kind: KindContract, Err: err}
	}

	logger.Info("Flow completed", fields.With(logger.Fields{
		"model":         resp.Model,
		"output_tokens": resp.Usage.OutputTokens,
	}))
	return result, nil
}
