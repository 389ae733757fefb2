package expressions

import (
	"context"
	"slices"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rendis/batchml/internal/conditions"
	"github.com/rendis/batchml/pkg/schema"
)

// ExprEngine evaluates expr-lang programs. Compiled programs are cached
// per expression and reused across goroutines.
type ExprEngine struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// NewExprEngine creates a new Expr expression engine.
func NewExprEngine() *ExprEngine {
	return &ExprEngine{
		cache: make(map[string]*vm.Program),
	}
}

// Name returns the engine identifier.
func (e *ExprEngine) Name() string {
	return "expr"
}

// Evaluate compiles (or retrieves from cache) an expression and runs it with
// data as its environment.
func (e *ExprEngine) Evaluate(ctx context.Context, expression string, data map[string]any) (any, error) {
	if expression == "" {
		return nil, schema.NewError(schema.ErrCodeValidation, "empty expr expression")
	}
	if data == nil {
		data = map[string]any{}
	}

	prg, err := e.getOrCompile(expression, data)
	if err != nil {
		return nil, err
	}

	out, err := vm.Run(prg, data)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeEvaluation,
			"expr evaluation failed for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}
	return out, nil
}

func (e *ExprEngine) getOrCompile(expression string, env map[string]any) (*vm.Program, error) {
	e.mu.RLock()
	if prg, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return prg, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if prg, ok := e.cache[expression]; ok {
		return prg, nil
	}

	prg, err := expr.Compile(expression,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"expr compile error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	e.cache[expression] = prg
	return prg, nil
}

// Snapshot is the plant state a guard is evaluated against.
type Snapshot struct {
	// Signals holds current values keyed by "<instance>.<keyword>" or by the
	// bare keyword.
	Signals map[string]any `json:"signals" yaml:"signals"`
	// Completed lists the step instances that have finished.
	Completed []string `json:"completed" yaml:"completed"`
}

// GuardResult reports a guard dry-run.
type GuardResult struct {
	Guard     string `json:"guard"`
	Program   string `json:"program"`
	Satisfied bool   `json:"satisfied"`
}

// GuardEvaluator dry-runs transition guards.
type GuardEvaluator struct {
	engine *ExprEngine
}

// NewGuardEvaluator creates a guard evaluator backed by expr-lang.
func NewGuardEvaluator() *GuardEvaluator {
	return &GuardEvaluator{engine: NewExprEngine()}
}

// Evaluate decides whether a condition tree holds for the snapshot. A
// comparison on a signal missing from the snapshot is false; an empty tree
// is always satisfied.
func (g *GuardEvaluator) Evaluate(ctx context.Context, group *schema.ConditionGroup, snap Snapshot) (*GuardResult, error) {
	program, err := conditions.ToExpr(group)
	if err != nil {
		return nil, err
	}

	out, err := g.engine.Evaluate(ctx, program, snap.env())
	if err != nil {
		return nil, err
	}
	satisfied, ok := out.(bool)
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeEvaluation, "guard %q did not yield a boolean", program)
	}

	return &GuardResult{
		Guard:     conditions.Stringify(conditions.Clean(group)),
		Program:   program,
		Satisfied: satisfied,
	}, nil
}

func (s Snapshot) env() map[string]any {
	return map[string]any{
		conditions.FuncSignal: func(instance, keyword string) any {
			return s.Signals[conditions.SignalKey(instance, keyword)]
		},
		conditions.FuncHas: func(instance, keyword string) bool {
			_, ok := s.Signals[conditions.SignalKey(instance, keyword)]
			return ok
		},
		conditions.FuncCompleted: func(instance string) bool {
			return slices.Contains(s.Completed, instance)
		},
	}
}

var _ Engine = (*ExprEngine)(nil)
