package expressions

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/rendis/batchml/pkg/schema"
)

// ConstraintChecker checks the syntax of equipment-requirement constraints
// such as "Material == H2O". Constraints are only parsed, never type-checked:
// their identifiers name plant properties the compiler knows nothing about.
// Parse results are cached and the checker is safe for concurrent use.
type ConstraintChecker struct {
	env *cel.Env

	mu    sync.RWMutex
	cache map[string]error
}

// NewConstraintChecker creates a checker with an empty CEL environment.
func NewConstraintChecker() (*ConstraintChecker, error) {
	env, err := cel.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return &ConstraintChecker{
		env:   env,
		cache: make(map[string]error),
	}, nil
}

// Check returns a CONSTRAINT_SYNTAX error when the constraint does not parse.
func (c *ConstraintChecker) Check(constraint string) error {
	if constraint == "" {
		return schema.NewError(schema.ErrCodeConstraintSyntax, "empty constraint")
	}

	c.mu.RLock()
	err, ok := c.cache[constraint]
	c.mu.RUnlock()
	if ok {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.cache[constraint]; ok {
		return err
	}

	_, issues := c.env.Parse(constraint)
	if issues != nil && issues.Err() != nil {
		err = schema.NewErrorf(schema.ErrCodeConstraintSyntax,
			"constraint %q does not parse: %s", constraint, issues.Err().Error()).
			WithCause(issues.Err()).
			WithDetails(map[string]any{"constraint": constraint})
	}
	c.cache[constraint] = err
	return err
}
