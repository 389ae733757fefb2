package conditions

import (
	"strconv"
	"strings"

	"github.com/rendis/batchml/pkg/schema"
)

// Functions referenced by translated guard programs.
const (
	FuncSignal    = "signal"
	FuncHas       = "has"
	FuncCompleted = "completed"
)

var comparisonOperators = map[string]string{
	"=":  "==",
	"==": "==",
	"!=": "!=",
	"<>": "!=",
	"<":  "<",
	"<=": "<=",
	">":  ">",
	">=": ">=",
}

// ToExpr translates a cleaned tree into an expression program. A comparison
// leaf becomes has(i, k) and signal(i, k) <op> <value>, so a missing signal
// makes the comparison false instead of failing. Step leaves become
// completed(i). An empty tree translates to true.
func ToExpr(g *schema.ConditionGroup) (string, error) {
	s, err := exprGroup(Clean(g))
	if err != nil {
		return "", err
	}
	if s == "" {
		return "true", nil
	}
	return s, nil
}

func exprGroup(g *schema.ConditionGroup) (string, error) {
	if g == nil {
		return "", nil
	}
	parts := make([]string, 0, len(g.Children))
	for _, child := range g.Children {
		var (
			s   string
			err error
		)
		if child.Group != nil {
			s, err = exprGroup(child.Group)
		} else {
			s, err = exprLeaf(child.Leaf)
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+s+")")
	}

	switch g.Operator {
	case schema.OperatorNot:
		return "not " + parts[0], nil
	case schema.OperatorOr:
		return strings.Join(parts, " or "), nil
	case schema.OperatorAnd:
		return strings.Join(parts, " and "), nil
	default:
		return "", schema.NewErrorf(schema.ErrCodeInvalidInput, "unknown logical operator %q", g.Operator)
	}
}

func exprLeaf(l *schema.ConditionLeaf) (string, error) {
	if l.Keyword == schema.StepKeyword {
		return FuncCompleted + "(" + strconv.Quote(l.Instance) + ")", nil
	}
	op, ok := comparisonOperators[l.Operator]
	if !ok {
		return "", schema.NewErrorf(schema.ErrCodeInvalidInput, "unsupported comparison operator %q", l.Operator)
	}
	args := strconv.Quote(l.Instance) + ", " + strconv.Quote(l.Keyword)
	return FuncHas + "(" + args + ") and " + FuncSignal + "(" + args + ") " + op + " " + literal(l.Value), nil
}

// literal keeps numbers and booleans bare and quotes everything else.
func literal(v schema.Scalar) string {
	s := v.String()
	if _, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "nNxX") {
		return s
	}
	if s == "true" || s == "false" {
		return s
	}
	return strconv.Quote(s)
}

// SignalKey is the snapshot key of a signal: "<instance>.<keyword>", or the
// keyword alone when no instance is given.
func SignalKey(instance, keyword string) string {
	if instance == "" {
		return keyword
	}
	return instance + "." + keyword
}
