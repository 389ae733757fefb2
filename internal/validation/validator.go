// Package validation checks assembled B2MML documents: structure against the
// bundled schemas, cross-references between elements, and the control flow of
// master recipes. Findings never block an export.
package validation

import (
	"context"
	"log/slog"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/internal/logging"
	"github.com/rendis/batchml/pkg/schema"
)

// Validator runs the three validation stages:
// 1. Structural (JSON Schema over the document infoset)
// 2. Semantic (cross-references)
// 3. Procedure graph (transition endpoints, reachability)
type Validator struct {
	schemas *SchemaValidator
	logger  *slog.Logger
}

// New creates a Validator. A nil logger discards output.
func New(logger *slog.Logger) (*Validator, error) {
	sv, err := NewSchemaValidator()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Validator{schemas: sv, logger: logger}, nil
}

// Validate runs every stage and returns the aggregated result. Later stages
// run even after structural errors.
func (v *Validator) Validate(ctx context.Context, doc *b2mml.Document) *schema.ValidationResult {
	if doc == nil {
		r := &schema.ValidationResult{}
		r.AddError("/", schema.ErrCodeSchemaViolation, "document is nil")
		return r
	}

	result := v.schemas.ValidateDocument(doc)
	result.Merge(validateSemantic(doc))
	result.Merge(validateProcedureGraph(doc))

	for _, issue := range result.Errors {
		v.logger.WarnContext(ctx, "schema violation", slog.String("path", issue.Path), slog.String("detail", issue.Message))
	}
	if len(result.Warnings) > 0 {
		v.logger.DebugContext(ctx, "document warnings", slog.Int("count", len(result.Warnings)))
	}
	return result
}

// ValidateXML parses XML text into the generic document tree and validates
// it. The error reports text that is not XML at all.
func (v *Validator) ValidateXML(ctx context.Context, data []byte) (*b2mml.Document, *schema.ValidationResult, error) {
	doc, err := b2mml.Unmarshal(data)
	if err != nil {
		return nil, nil, schema.NewError(schema.ErrCodeInvalidInput, "document is not well-formed XML").WithCause(err)
	}
	return doc, v.Validate(ctx, doc), nil
}
