package expressions

import (
	"context"
	"net/url"
	"sync"

	"github.com/itchyny/gojq"
	"github.com/rendis/batchml/pkg/schema"
)

// GoJQEngine evaluates jq programs over document infosets. Compiled code
// is cached and reused across goroutines.
type GoJQEngine struct {
	mu    sync.RWMutex
	cache map[string]*gojq.Code
}

// NewGoJQEngine creates a new GoJQ expression engine.
func NewGoJQEngine() *GoJQEngine {
	return &GoJQEngine{
		cache: make(map[string]*gojq.Code),
	}
}

// Name returns the engine identifier.
func (e *GoJQEngine) Name() string {
	return "jq"
}

// Evaluate runs a jq program over data. A single output is returned as is,
// several outputs are collected into a slice, no output yields nil.
func (e *GoJQEngine) Evaluate(ctx context.Context, expression string, data map[string]any) (any, error) {
	results, err := e.EvaluateAll(ctx, expression, data)
	if err != nil {
		return nil, err
	}
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// EvaluateAll is like Evaluate but always returns every output.
func (e *GoJQEngine) EvaluateAll(ctx context.Context, expression string, data map[string]any) ([]any, error) {
	if expression == "" {
		return nil, schema.NewError(schema.ErrCodeValidation, "empty jq expression")
	}

	code, err := e.getOrCompile(expression)
	if err != nil {
		return nil, err
	}

	iter := code.RunWithContext(ctx, data)
	var results []any
	for {
		val, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := val.(error); isErr {
			return nil, schema.NewErrorf(schema.ErrCodeEvaluation,
				"jq evaluation failed for %q: %s", expression, err.Error()).
				WithCause(err).
				WithDetails(map[string]any{"expression": expression})
		}
		results = append(results, val)
	}
	return results, nil
}

func (e *GoJQEngine) getOrCompile(expression string) (*gojq.Code, error) {
	e.mu.RLock()
	if code, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return code, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if code, ok := e.cache[expression]; ok {
		return code, nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"jq parse error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	code, err := gojq.Compile(query,
		gojq.WithEnvironLoader(func() []string { return nil }),
	)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"jq compile error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	e.cache[expression] = code
	return code, nil
}

// capabilityQuery selects every process element, at any depth, whose
// OtherInformation carries a SemanticDescription with a value string.
const capabilityQuery = `
def many: if type == "array" then .[] else . end;
.. | objects | (.ProcessElement // empty) | many | select(type == "object") | . as $pe
| ($pe.OtherInformation // empty) | many
| select(type == "object" and .OtherInfoID == "SemanticDescription")
| (.OtherValue // empty | if type == "array" then .[0] else . end) as $v
| select(($v | type) == "object" and ($v.ValueString | type) == "string")
| select(($pe.ID | type) == "string")
| {id: $pe.ID, iri: $v.ValueString}
`

// Capability is a process element annotated with a semantic IRI.
type Capability struct {
	ID  string `json:"id"`
	IRI string `json:"iri"`
}

// DocumentQuery answers questions about recipe documents.
type DocumentQuery struct {
	jq *GoJQEngine
}

// NewDocumentQuery creates a query helper backed by gojq.
func NewDocumentQuery() *DocumentQuery {
	return &DocumentQuery{jq: NewGoJQEngine()}
}

// Capabilities lists the semantic capabilities of a general-recipe infoset.
// Percent-encoded IRIs are decoded.
func (q *DocumentQuery) Capabilities(ctx context.Context, infoset map[string]any) ([]Capability, error) {
	results, err := q.jq.EvaluateAll(ctx, capabilityQuery, infoset)
	if err != nil {
		return nil, err
	}

	out := make([]Capability, 0, len(results))
	for _, r := range results {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		id, _ := m["id"].(string)
		iri, _ := m["iri"].(string)
		if decoded, err := url.PathUnescape(iri); err == nil {
			iri = decoded
		}
		out = append(out, Capability{ID: id, IRI: iri})
	}
	return out, nil
}

var _ Engine = (*GoJQEngine)(nil)
