// Package expressions hosts the expression back-ends the compiler leans on:
// expr-lang for guard dry-runs, CEL for requirement constraints and gojq for
// queries over recipe documents.
package expressions

import "context"

// Engine evaluates an expression against a JSON-like document.
type Engine interface {
	Name() string
	Evaluate(ctx context.Context, expression string, data map[string]any) (any, error)
}
