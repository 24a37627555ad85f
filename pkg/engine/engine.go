// Package engine drives the zero-inference pipeline end to end: parse the IR
// document, normalize amounts, validate the schema, compile artifacts, run
// the release gates and persist everything through the configured store.
// Every stage is audited and traced; nothing in here ever repairs data.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/assafkip/spanforge/internal/swarm"
	"github.com/assafkip/spanforge/pkg/audit"
	spanconfig "github.com/assafkip/spanforge/pkg/config"
	"github.com/assafkip/spanforge/pkg/gates"
	"github.com/assafkip/spanforge/pkg/storage"
	"github.com/assafkip/spanforge/pkg/telemetry"
	"github.com/assafkip/spanforge/pkg/version"
)

// ErrValidationFailed indicates a release gate failed in strict mode. The
// gate report is still written; the error only decides the exit status.
var ErrValidationFailed = errors.New("validation gates failed")

// Config holds engine settings.
type Config struct {
	// Pipeline carries the model name, compile targets and strict mode.
	Pipeline spanconfig.EngineConfig

	// AuditPath is where the hash-chained audit log lives. Empty disables
	// auditing unless a logger is injected with WithAudit.
	AuditPath string

	// Telemetry config.
	OtelEndpoint  string // "http://localhost:4318" or via env
	SkipTelemetry bool   // Set true if embedding in an app that already has OTEL

	// Dependencies.
	Logger *slog.Logger
}

// Engine is the runtime core.
type Engine struct {
	// Core components.
	Audit  *audit.Logger
	Store  storage.BlobStore
	Gates  *gates.Checker
	Swarm  *swarm.Engine
	Logger *slog.Logger
	Tracer trace.Tracer

	// Immutable config.
	config Config

	// Runtime state.
	compiled metric.Int64Counter
	shutdown func(context.Context) error
	ownAudit bool
}

// Option defines a functional configuration override.
type Option func(*Engine)

// New initializes the Engine.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	// Safe defaults.
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: redactSensitiveData,
	})
	e := &Engine{
		Swarm:  swarm.NewEngine(),
		Logger: slog.New(handler),
		Tracer: otel.Tracer("spanforge/engine"),
		config: Config{Pipeline: spanconfig.DefaultEngineConfig()},
	}
	meter := otel.Meter("spanforge/engine")
	e.compiled, _ = meter.Int64Counter("spanforge.engine.indicators_compiled",
		metric.WithDescription("Indicators compiled into artifacts"))

	// Apply options.
	for _, opt := range opts {
		opt(e)
	}

	slog.SetDefault(e.Logger)

	// Initialize telemetry.
	if !e.config.SkipTelemetry {
		shutdown, err := telemetry.Init(ctx, version.AppName, version.Current, e.config.OtelEndpoint)
		if err != nil {
			e.Logger.Warn("Telemetry failed", "error", err)
		} else {
			e.shutdown = shutdown
		}
	}

	// Open the audit log unless one was injected.
	if e.Audit == nil && e.config.AuditPath != "" {
		log, err := audit.Open(e.config.AuditPath, audit.WithFallback(e.Logger))
		if err != nil {
			return nil, fmt.Errorf("engine: open audit log: %w", err)
		}
		e.Audit = log
		e.ownAudit = true
	}

	if e.Store == nil {
		e.Store = storage.NewLocalStore(spanconfig.DefaultOutDir)
	}
	if e.Gates == nil {
		e.Gates = gates.NewChecker(gates.WithLogger(e.Logger))
	}
	return e, nil
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.Logger = l
	}
}

// WithAudit injects an already-open audit logger. The engine will not close
// it; the caller owns its lifecycle.
func WithAudit(l *audit.Logger) Option {
	return func(e *Engine) {
		e.Audit = l
	}
}

// WithStore sets the artifact store.
func WithStore(s storage.BlobStore) Option {
	return func(e *Engine) {
		e.Store = s
	}
}

// WithConfig sets raw config.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.config = cfg
		if len(cfg.Pipeline.Targets) == 0 {
			e.config.Pipeline.Targets = spanconfig.DefaultEngineConfig().Targets
		}
		if cfg.Logger != nil {
			e.Logger = cfg.Logger
		}
	}
}

// Close flushes engine-owned resources. Injected dependencies stay open.
func (e *Engine) Close(ctx context.Context) error {
	var errs []error
	if e.ownAudit && e.Audit != nil {
		errs = append(errs, e.Audit.Close())
	}
	if e.shutdown != nil {
		errs = append(errs, e.shutdown(ctx))
	}
	return errors.Join(errs...)
}

// recoverPanic handles failures. The panic is recorded on the span and
// converted into a run error so library callers see a failed run, not a
// crashed process.
func (e *Engine) recoverPanic(span trace.Span, err *error) {
	if r := recover(); r != nil {
		stack := debug.Stack()

		span.RecordError(fmt.Errorf("%v", r), trace.WithStackTrace(true))
		span.SetStatus(codes.Error, "CRITICAL FAILURE")
		span.SetAttributes(
			attribute.String("crash.stack", string(stack)),
			attribute.String("crash.reason", fmt.Sprintf("%v", r)),
		)

		e.Logger.Error("CRITICAL FAILURE", "error", r, "stack", string(stack))
		*err = fmt.Errorf("engine: recovered from panic: %v", r)
	}
}

// redactSensitiveData scrubs sensitive keys from logs.
func redactSensitiveData(groups []string, a slog.Attr) slog.Attr {
	// List of keys to redact
	sensitiveKeys := map[string]bool{
		"password": true, "access_key": true, "token": true,
		"secret": true, "api_key": true, "private_key": true, "auth_token": true,
		"refresh_token": true, "certificate": true, "signature": true,
		"credential": true, "connection_string": true,
	}

	if sensitiveKeys[a.Key] {
		return slog.Attr{
			Key:   a.Key,
			Value: slog.StringValue("[REDACTED]"),
		}
	}
	return a
}
