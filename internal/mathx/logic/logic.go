// Package logic builds truth tables for boolean expressions over 0/1
// variables.
package logic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

var (
	ErrInvalidSyntax    = errors.New("invalid syntax")
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrCalculationLimit = errors.New("calculation limit exceeded")
	ErrInvalidValue     = errors.New("invalid value")
)

// MaxVariables bounds the table at 2^MaxVariables rows.
const MaxVariables = 8

// Table is a truth table. Each row holds the variable values in the order of
// Variables followed by the value of the expression.
type Table struct {
	Variables []string
	Rows      [][]int
}

// String renders the header and rows with two-space separators.
func (t *Table) String() string {
	var sb strings.Builder
	header := append(append([]string(nil), t.Variables...), "F")
	sb.WriteString(strings.Join(header, "  "))
	for _, row := range t.Rows {
		sb.WriteByte('\n')
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		sb.WriteString(strings.Join(cells, "  "))
	}
	return sb.String()
}

// BuildTable evaluates input for every assignment of its variables. The
// first variable is the most significant bit of the row index.
func BuildTable(input string) (*Table, error) {
	tree, err := parser.Parse(input)
	if err != nil {
		return nil, ErrInvalidSyntax
	}

	c := &collector{seen: make(map[string]bool)}
	ast.Walk(&tree.Node, c)
	if err := c.err(); err != nil {
		return nil, err
	}
	if len(c.vars) > MaxVariables {
		return nil, ErrCalculationLimit
	}

	env := make(map[string]any, len(c.vars))
	for _, v := range c.vars {
		env[v] = false
	}
	program, err := expr.Compile(input, expr.Env(env), expr.AsBool(), expr.Patch(bitsToBools{}))
	if err != nil {
		return nil, ErrInvalidArguments
	}

	table := &Table{Variables: c.vars}
	total := 1 << len(c.vars)
	for mask := range total {
		row := make([]int, len(c.vars)+1)
		for i, name := range c.vars {
			bit := (mask >> (len(c.vars) - 1 - i)) & 1
			row[i] = bit
			env[name] = bit == 1
		}
		value, err := run(program, env)
		if err != nil {
			return nil, err
		}
		if value {
			row[len(c.vars)] = 1
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func run(program *vm.Program, env map[string]any) (bool, error) {
	out, err := expr.Run(program, env)
	if err != nil {
		return false, ErrInvalidArguments
	}
	b, ok := out.(bool)
	if !ok {
		return false, ErrInvalidValue
	}
	return b, nil
}

// collector gathers variable names in order of first appearance and
// flags everything that is not a 0/1 literal, a variable or an operator.
type collector struct {
	vars     []string
	seen     map[string]bool
	member   bool
	call     bool
	badValue bool
}

func (c *collector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if !c.seen[n.Value] {
			c.seen[n.Value] = true
			c.vars = append(c.vars, n.Value)
		}
	case *ast.IntegerNode:
		if n.Value != 0 && n.Value != 1 {
			c.badValue = true
		}
	case *ast.FloatNode, *ast.StringNode, *ast.NilNode:
		c.badValue = true
	case *ast.CallNode, *ast.BuiltinNode:
		c.call = true
	case *ast.MemberNode:
		c.member = true
	}
}

func (c *collector) err() error {
	switch {
	case c.member:
		return ErrInvalidName
	case c.call:
		return ErrInvalidArguments
	case c.badValue:
		return ErrInvalidValue
	}
	return nil
}

// bitsToBools lets users write 0 and 1 for false and true.
type bitsToBools struct{}

func (bitsToBools) Visit(node *ast.Node) {
	if n, ok := (*node).(*ast.IntegerNode); ok {
		ast.Patch(node, &ast.BoolNode{Value: n.Value == 1})
	}
}
