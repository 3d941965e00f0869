package calc

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{input: "2 + 2 * 2", want: "6"},
		{input: "(2 + 2) * 2", want: "8"},
		{input: "7 / 2", want: "3.5"},
		{input: "7 % 4", want: "3"},
		{input: "2 ** 10", want: "1024"},
		{input: "sqrt(16)", want: "4"},
		{input: "factorial(5)", want: "120"},
		{input: "log(8, 2)", want: "3"},
		{input: "cos(0) + abs(-2)", want: "3"},
		{input: "3 > 2", want: "True"},
		{input: "9223372036854775806 + 1", want: "9223372036854775807"},
		{input: "-3 * 4 - 5", want: "-17"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := Eval(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "syntax", input: "2 +* (3", wantErr: ErrInvalidSyntax},
		{name: "unknown name", input: "foo + 1", wantErr: ErrInvalidName},
		{name: "literal zero divisor", input: "1 / 0", wantErr: ErrDivisionByZero},
		{name: "computed zero divisor", input: "1 / (2 - 2)", wantErr: ErrDivisionByZero},
		{name: "modulo by computed zero", input: "5 % (1 - 1)", wantErr: ErrDivisionByZero},
		{name: "bad arity", input: "sqrt(1, 2)", wantErr: ErrInvalidArguments},
		{name: "factorial limit", input: "factorial(1000)", wantErr: ErrCalculationLimit},
		{name: "log of zero", input: "log(0)", wantErr: ErrArithmetic},
		{name: "string result", input: `"abc"`, wantErr: ErrInvalidValue},
		{name: "too many nodes", input: strings.Repeat("1 + ", maxNodes) + "1", wantErr: ErrCalculationLimit},
		{name: "product overflow", input: "99999999999 * 99999999999", wantErr: ErrCalculationLimit},
		{name: "sum overflow", input: "9223372036854775807 + 1", wantErr: ErrCalculationLimit},
		{name: "difference overflow", input: "-9223372036854775807 - 2", wantErr: ErrCalculationLimit},
		{name: "huge string", input: `repeat("a", 200000000)`, wantErr: ErrCalculationLimit},
		{name: "huge range", input: "sum(1..50000000)", wantErr: ErrCalculationLimit},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Eval(tc.input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCheckedIntOps(t *testing.T) {
	testCases := []struct {
		name   string
		op     func(a, b int) (int, bool)
		a, b   int
		want   int
		wantOK bool
	}{
		{name: "add", op: addInt, a: 2, b: 3, want: 5, wantOK: true},
		{name: "add overflow", op: addInt, a: math.MaxInt, b: 1, wantOK: false},
		{name: "add underflow", op: addInt, a: math.MinInt, b: -1, wantOK: false},
		{name: "sub", op: subInt, a: 2, b: 5, want: -3, wantOK: true},
		{name: "sub overflow", op: subInt, a: math.MaxInt, b: -1, wantOK: false},
		{name: "sub underflow", op: subInt, a: math.MinInt, b: 1, wantOK: false},
		{name: "mul", op: mulInt, a: -4, b: 6, want: -24, wantOK: true},
		{name: "mul zero", op: mulInt, a: 0, b: math.MaxInt, want: 0, wantOK: true},
		{name: "mul overflow", op: mulInt, a: math.MaxInt / 2, b: 3, wantOK: false},
		{name: "mul min by minus one", op: mulInt, a: math.MinInt, b: -1, wantOK: false},
		{name: "mul minus one by min", op: mulInt, a: -1, b: math.MinInt, wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.op(tc.a, tc.b)
			require.Equal(t, tc.wantOK, ok)
			if ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
