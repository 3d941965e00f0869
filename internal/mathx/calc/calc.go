// Package calc evaluates arithmetic expressions typed into the chat.
package calc

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

var (
	ErrInvalidSyntax    = errors.New("invalid syntax")
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrCalculationLimit = errors.New("calculation limit exceeded")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrArithmetic       = errors.New("arithmetic error")
	ErrInvalidValue     = errors.New("invalid value")
)

const (
	maxNodes     = 200
	maxFactorial = 170
)

var env = map[string]any{
	"pi":  math.Pi,
	"e":   math.E,
	"tau": 2 * math.Pi,
}

var options = []expr.Option{
	expr.Env(env),
	unary("sqrt", math.Sqrt),
	unary("sin", math.Sin),
	unary("cos", math.Cos),
	unary("tan", math.Tan),
	unary("asin", math.Asin),
	unary("acos", math.Acos),
	unary("atan", math.Atan),
	unary("exp", math.Exp),
	unary("ln", math.Log),
	unary("log10", math.Log10),
	unary("log2", math.Log2),
	unary("radians", func(x float64) float64 { return x * math.Pi / 180 }),
	unary("degrees", func(x float64) float64 { return x * 180 / math.Pi }),
	expr.Function("log", logFn),
	expr.Function("factorial", factorialFn),
	expr.Function("addInt", checked(addInt), new(func(int, int) int)),
	expr.Function("subInt", checked(subInt), new(func(int, int) int)),
	expr.Function("mulInt", checked(mulInt), new(func(int, int) int)),
	expr.Operator("+", "addInt"),
	expr.Operator("-", "subInt"),
	expr.Operator("*", "mulInt"),
}

// Eval evaluates input and returns the formatted result.
func Eval(input string) (string, error) {
	tree, err := parser.Parse(input)
	if err != nil {
		return "", ErrInvalidSyntax
	}

	inspector := &inspector{}
	ast.Walk(&tree.Node, inspector)
	if inspector.nodes > maxNodes {
		return "", ErrCalculationLimit
	}
	if inspector.zeroDivisor {
		return "", ErrDivisionByZero
	}

	program, err := expr.Compile(input, options...)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "unknown name"), strings.Contains(msg, "unknown func"):
			return "", ErrInvalidName
		case strings.Contains(msg, "divide by zero"):
			// constant folding evaluates integer modulo at compile time
			return "", ErrDivisionByZero
		}
		return "", ErrInvalidArguments
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return "", classifyRuntime(err)
	}

	switch v := out.(type) {
	case int:
		return strconv.Itoa(v), nil
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			if inspector.division {
				return "", ErrDivisionByZero
			}
			return "", ErrArithmetic
		}
		return formatFloat(v), nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	default:
		return "", ErrInvalidValue
	}
}

func classifyRuntime(err error) error {
	for _, sentinel := range []error{ErrCalculationLimit, ErrInvalidArguments, ErrArithmetic} {
		if errors.Is(err, sentinel) || strings.Contains(err.Error(), sentinel.Error()) {
			return sentinel
		}
	}
	switch msg := err.Error(); {
	case strings.Contains(msg, "memory budget"):
		return ErrCalculationLimit
	case strings.Contains(msg, "divide by zero"):
		return ErrDivisionByZero
	}
	return ErrArithmetic
}

// inspector counts nodes and spots literal zero divisors.
type inspector struct {
	nodes       int
	division    bool
	zeroDivisor bool
}

func (i *inspector) Visit(node *ast.Node) {
	i.nodes++
	bin, ok := (*node).(*ast.BinaryNode)
	if !ok || (bin.Operator != "/" && bin.Operator != "%") {
		return
	}
	i.division = true
	switch r := bin.Right.(type) {
	case *ast.IntegerNode:
		i.zeroDivisor = i.zeroDivisor || r.Value == 0
	case *ast.FloatNode:
		i.zeroDivisor = i.zeroDivisor || r.Value == 0
	}
}

func formatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func unary(name string, fn func(float64) float64) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, ErrInvalidArguments
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		v := fn(x)
		if math.IsNaN(v) {
			return nil, ErrArithmetic
		}
		return v, nil
	})
}

func logFn(params ...any) (any, error) {
	if len(params) != 1 && len(params) != 2 {
		return nil, ErrInvalidArguments
	}
	x, err := toFloat(params[0])
	if err != nil {
		return nil, err
	}
	if x <= 0 {
		return nil, ErrArithmetic
	}
	if len(params) == 1 {
		return math.Log(x), nil
	}
	base, err := toFloat(params[1])
	if err != nil {
		return nil, err
	}
	if base <= 0 || base == 1 {
		return nil, ErrArithmetic
	}
	return math.Log(x) / math.Log(base), nil
}

func factorialFn(params ...any) (any, error) {
	if len(params) != 1 {
		return nil, ErrInvalidArguments
	}
	n, ok := params[0].(int)
	if !ok || n < 0 {
		return nil, ErrInvalidArguments
	}
	if n > maxFactorial {
		return nil, ErrCalculationLimit
	}
	v := 1.0
	for k := 2; k <= n; k++ {
		v *= float64(k)
	}
	return v, nil
}

// checked adapts an overflow-aware int operation to an expr function.
func checked(op func(a, b int) (int, bool)) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, ErrInvalidArguments
		}
		a, okA := params[0].(int)
		b, okB := params[1].(int)
		if !okA || !okB {
			return nil, ErrInvalidArguments
		}
		v, ok := op(a, b)
		if !ok {
			return nil, ErrCalculationLimit
		}
		return v, nil
	}
}

func addInt(a, b int) (int, bool) {
	s := a + b
	return s, (b >= 0) == (s >= a)
}

func subInt(a, b int) (int, bool) {
	d := a - b
	return d, (b >= 0) == (d <= a)
}

func mulInt(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		return 0, false
	}
	return p, true
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case float64:
		return x, nil
	default:
		return 0, ErrInvalidArguments
	}
}
