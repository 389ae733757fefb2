package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type ctxKey int

const (
	exportIDKey ctxKey = iota
	documentKindKey
	itemIDKey
)

// WithExportID returns a context with the export ID set.
func WithExportID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, exportIDKey, id)
}

// WithDocumentKind returns a context with the document kind (general or master) set.
func WithDocumentKind(ctx context.Context, kind string) context.Context {
	return context.WithValue(ctx, documentKindKey, kind)
}

// WithItemID returns a context with the workspace item ID set.
func WithItemID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, itemIDKey, id)
}

// ExportID extracts the export ID from the context, or "" if absent.
func ExportID(ctx context.Context) string {
	v, _ := ctx.Value(exportIDKey).(string)
	return v
}

// DocumentKind extracts the document kind from the context, or "" if absent.
func DocumentKind(ctx context.Context) string {
	v, _ := ctx.Value(documentKindKey).(string)
	return v
}

// ItemID extracts the workspace item ID from the context, or "" if absent.
func ItemID(ctx context.Context) string {
	v, _ := ctx.Value(itemIDKey).(string)
	return v
}

// correlationAttrs returns the non-empty correlation attributes of ctx.
func correlationAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if v := ExportID(ctx); v != "" {
		attrs = append(attrs, slog.String("export_id", v))
	}
	if v := DocumentKind(ctx); v != "" {
		attrs = append(attrs, slog.String("document_kind", v))
	}
	if v := ItemID(ctx); v != "" {
		attrs = append(attrs, slog.String("item_id", v))
	}
	return attrs
}

// LogWith returns a logger enriched with correlation IDs from the context.
// Only non-empty values are added as attributes.
func LogWith(ctx context.Context, logger *slog.Logger) *slog.Logger {
	for _, a := range correlationAttrs(ctx) {
		logger = logger.With(a)
	}
	return logger
}

// CorrelationHandler wraps an slog.Handler, automatically injecting
// correlation IDs from the context into every log record.
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler with automatic correlation ID injection.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(correlationAttrs(ctx)...)
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}

// ParseLevel maps debug, info, warn and error to slog levels; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a text logger writing to w (stderr when nil) with correlation
// IDs injected from the context.
func New(level slog.Level, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	inner := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewCorrelationHandler(inner))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
