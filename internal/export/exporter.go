// Package export runs a complete export: compile, serialize, submit the XML
// to the validation service once and save the artifact the outcome calls
// for.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/internal/compiler"
	"github.com/rendis/batchml/internal/logging"
	"github.com/rendis/batchml/internal/transport"
	"github.com/rendis/batchml/pkg/schema"
)

const xmlContentType = "application/xml"

// Options configures an Exporter.
type Options struct {
	Compiler *compiler.Compiler
	// Transport reaches the validation service; nil exports offline.
	Transport transport.Transport
	Sink      Sink
	Logger    *slog.Logger
}

// Exporter is safe for concurrent use; each call works on its own
// workspace snapshot.
type Exporter struct {
	compiler  *compiler.Compiler
	transport transport.Transport
	sink      Sink
	logger    *slog.Logger
}

// New creates an Exporter.
func New(opts Options) (*Exporter, error) {
	if opts.Compiler == nil {
		return nil, schema.NewError(schema.ErrCodeInvalidInput, "export: compiler is required")
	}
	if opts.Sink == nil {
		return nil, schema.NewError(schema.ErrCodeInvalidInput, "export: sink is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Exporter{
		compiler:  opts.Compiler,
		transport: opts.Transport,
		sink:      opts.Sink,
		logger:    opts.Logger,
	}, nil
}

// Result describes one export.
type Result struct {
	Kind     compiler.Kind
	ExportID string
	Outcome  Outcome
	// Status is the HTTP status of the service answer, 0 when none arrived.
	Status int
	// Filename is empty when nothing was saved.
	Filename string
	// XML is the serialized document that was submitted.
	XML         []byte
	Diagnostics *schema.ValidationResult
}

// Saved reports whether an artifact was written to the sink.
func (r *Result) Saved() bool {
	return r.Filename != ""
}

// Export compiles the workspace and delivers the document. Transport
// failures become warnings in the result; the error reports input that
// cannot be compiled or a document that could not be serialized or saved.
func (e *Exporter) Export(ctx context.Context, kind compiler.Kind, ws *schema.Workspace, rc *schema.RecipeConfig) (*Result, error) {
	start := time.Now()
	if logging.ExportID(ctx) == "" {
		ctx = logging.WithExportID(ctx, uuid.NewString())
	}
	ctx = logging.WithDocumentKind(ctx, string(kind))

	out, err := e.compiler.Compile(ctx, kind, ws, rc)
	if err != nil {
		return nil, err
	}
	if ranges := out.Diagnostics.WarningsWithCode(schema.ErrCodeParameterRange); len(ranges) > 0 {
		e.logger.WarnContext(ctx, "parameters out of range",
			slog.Int("count", len(ranges)),
			slog.String("detail", schema.CombinedMessage(ranges)),
		)
	}

	text, err := b2mml.Marshal(out.Document)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeSerialization, "export: serialize document").WithCause(err)
	}

	res := &Result{
		Kind:        kind,
		ExportID:    out.ExportID,
		XML:         text,
		Diagnostics: out.Diagnostics,
	}

	d := offline(kind, text)
	if e.transport != nil {
		resp, terr := e.submit(ctx, kind, text)
		if resp != nil {
			res.Status = resp.Status
		}
		d = classify(kind, text, resp, terr)
		if terr != nil {
			e.logger.WarnContext(ctx, "validation service unreachable", slog.Any("error", terr))
		}
	}
	res.Outcome = d.outcome
	if d.code != "" {
		res.Diagnostics.AddWarning("transport", d.code, d.message)
		e.logger.WarnContext(ctx, "export not validated by service",
			slog.String("outcome", string(d.outcome)),
			slog.Int("status", res.Status),
		)
	}

	if d.body != nil {
		if err := e.sink.Save(ctx, d.filename, d.body); err != nil {
			return res, schema.NewErrorf(schema.ErrCodeDownload, "export: save %s", d.filename).WithCause(err)
		}
		res.Filename = d.filename
	}

	exportsTotal.WithLabelValues(string(kind), string(res.Outcome)).Inc()
	exportDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	for _, issue := range res.Diagnostics.Errors {
		exportDiagnostics.WithLabelValues(string(issue.Severity), issue.Code).Inc()
	}
	for _, issue := range res.Diagnostics.Warnings {
		exportDiagnostics.WithLabelValues(string(issue.Severity), issue.Code).Inc()
	}

	e.logger.InfoContext(ctx, "export finished",
		slog.String("outcome", string(res.Outcome)),
		slog.String("file", res.Filename),
		slog.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (e *Exporter) submit(ctx context.Context, kind compiler.Kind, text []byte) (*transport.Response, error) {
	switch kind {
	case compiler.KindMaster:
		return e.transport.Post(ctx, MasterSubmitPath, xmlContentType, text)
	case compiler.KindGeneral:
		return e.transport.Get(ctx, GeneralValidatePath, url.Values{generalQueryParam: {string(text)}})
	}
	return nil, fmt.Errorf("export: unknown document kind %q", kind)
}
