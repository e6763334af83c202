package observability

import (
	"context"
	"time"

	langfuse "github.com/henomis/langfuse-go"
	lfmodel "github.com/henomis/langfuse-go/model"

	"github.com/sonicalchemist/api/internal/config"
	"github.com/sonicalchemist/api/internal/logger"
)

// Tracer records flow invocations in Langfuse. A disabled Tracer hands out
// no-op traces, so callers never branch on configuration.
type Tracer struct {
	client  *langfuse.Langfuse
	enabled bool
}

// NewTracer creates a Tracer. The SDK reads LANGFUSE_PUBLIC_KEY,
// LANGFUSE_SECRET_KEY and LANGFUSE_HOST from the environment.
func NewTracer(ctx context.Context, cfg *config.LangfuseConfig) *Tracer {
	if cfg == nil || !cfg.Enabled || cfg.SecretKey == "" {
		logger.Info("Langfuse tracing disabled", nil)
		return &Tracer{}
	}

	logger.Info("Langfuse tracing enabled", logger.Fields{"host": cfg.Host})
	return &Tracer{
		client:  langfuse.New(ctx),
		enabled: true,
	}
}

// Disabled returns a Tracer that records nothing.
func Disabled() *Tracer {
	return &Tracer{}
}

func (t *Tracer) IsEnabled() bool {
	return t != nil && t.enabled && t.client != nil
}

// StartTrace opens a trace for one flow invocation.
func (t *Tracer) StartTrace(ctx context.Context, name string, metadata map[string]interface{}) *Trace {
	if !t.IsEnabled() {
		return &Trace{ctx: ctx}
	}

	trace, err := t.client.Trace(&lfmodel.Trace{
		Name:     name,
		Metadata: metadata,
	})
	if err != nil {
		logger.Warn("Failed to create Langfuse trace", logger.Fields{"error": err.Error(), "trace": name})
		return &Trace{ctx: ctx}
	}

	return &Trace{trace: trace, client: t.client, ctx: ctx}
}

// Flush sends queued events. Called on shutdown.
func (t *Tracer) Flush(ctx context.Context) {
	if t.IsEnabled() {
		t.client.Flush(ctx)
	}
}

type Trace struct {
	trace  *lfmodel.Trace
	client *langfuse.Langfuse
	ctx    context.Context
}

func (t *Trace) enabled() bool {
	return t != nil && t.trace != nil && t.client != nil
}

// Generation opens a generation span for a single provider call.
func (t *Trace) Generation(name, modelName string, input interface{}) *Generation {
	if !t.enabled() {
		return &Generation{}
	}

	now := time.Now()
	gen, err := t.client.Generation(&lfmodel.Generation{
		TraceID:   t.trace.ID,
		Name:      name,
		Model:     modelName,
		StartTime: &now,
		Input:     input,
	}, nil)
	if err != nil {
		logger.Warn("Failed to create Langfuse generation", logger.Fields{"error": err.Error(), "trace_id": t.trace.ID})
		return &Generation{}
	}

	return &Generation{generation: gen, client: t.client}
}

// Finish flushes the trace.
func (t *Trace) Finish() {
	if t.enabled() {
		t.client.Flush(t.ctx)
	}
}

type Generation struct {
	generation *lfmodel.Generation
	client     *langfuse.Langfuse
}

// End closes the span with the provider output, token usage and, when the
// call failed, an ERROR level and status message.
func (g *Generation) End(output string, inputTokens, outputTokens int, err error) {
	if g == nil || g.generation == nil || g.client == nil {
		return
	}

	now := time.Now()
	g.generation.EndTime = &now
	if output != "" {
		g.generation.Output = output
	}
	g.generation.Usage = lfmodel.Usage{
		Input:  inputTokens,
		Output: outputTokens,
		Total:  inputTokens + outputTokens,
		Unit:   lfmodel.ModelUsageUnitTokens,
	}
	if err != nil {
		g.generation.Level = lfmodel.ObservationLevel("ERROR")
		g.generation.StatusMessage = err.Error()
	}

	if _, endErr := g.client.GenerationEnd(g.generation); endErr != nil {
		logger.Warn("Failed to end Langfuse generation", logger.Fields{"error": endErr.Error()})
	}
}
