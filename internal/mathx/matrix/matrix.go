// Package matrix parses matrices typed into a chat and runs the
// determinant, row echelon form and inverse operations on them.
package matrix

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrSizesMismatch        = errors.New("rows have different lengths")
	ErrNotNumeric           = errors.New("matrix entry is not a number")
	ErrSquareMatrixRequired = errors.New("square matrix required")
	ErrNonInvertibleMatrix  = errors.New("matrix is not invertible")
)

const (
	// relTol is the relative size below which a computed entry is noise.
	relTol = 1e-12
	// maxCondition is the largest 1-norm condition number still inverted.
	maxCondition = 1e12
)

// Matrix is a dense row-major matrix.
type Matrix struct {
	rows, cols int
	data       []float64
}

// Parse reads one row per line with whitespace separated entries.
func Parse(text string) (*Matrix, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	m := &Matrix{rows: len(lines)}
	for i, line := range lines {
		fields := strings.Fields(line)
		if i == 0 {
			m.cols = len(fields)
		} else if len(fields) != m.cols {
			return nil, ErrSizesMismatch
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(strings.Replace(f, ",", ".", 1), 64)
			if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
				return nil, ErrNotNumeric
			}
			m.data = append(m.data, v)
		}
	}
	if m.cols == 0 {
		return nil, ErrNotNumeric
	}
	return m, nil
}

// New builds a matrix from rows of equal length.
func New(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrNotNumeric
	}
	m := &Matrix{rows: len(rows), cols: len(rows[0])}
	for _, row := range rows {
		if len(row) != m.cols {
			return nil, ErrSizesMismatch
		}
		m.data = append(m.data, row...)
	}
	return m, nil
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (int, int) { return m.rows, m.cols }

// At returns the entry at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.cols+j] }

// IsSquare reports whether rows == cols.
func (m *Matrix) IsSquare() bool { return m.rows == m.cols }

func (m *Matrix) dense() *mat.Dense {
	data := make([]float64, len(m.data))
	copy(data, m.data)
	return mat.NewDense(m.rows, m.cols, data)
}

// Det returns the determinant.
func (m *Matrix) Det() (float64, error) {
	if !m.IsSquare() {
		return 0, ErrSquareMatrixRequired
	}
	return clean(mat.Det(m.dense()), m.hadamard()), nil
}

// Inverse returns the inverse matrix.
func (m *Matrix) Inverse() (*Matrix, error) {
	if !m.IsSquare() {
		return nil, ErrSquareMatrixRequired
	}
	a := m.dense()
	if cond := mat.Cond(a, 1); math.IsNaN(cond) || cond > maxCondition {
		return nil, ErrNonInvertibleMatrix
	}

	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return nil, ErrNonInvertibleMatrix
	}

	out := &Matrix{rows: m.rows, cols: m.cols, data: make([]float64, 0, len(m.data))}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data = append(out.data, inv.At(i, j))
		}
	}
	out.cleanAll()
	return out, nil
}

// REF returns the row echelon form obtained by Gaussian elimination with
// partial pivoting.
func (m *Matrix) REF() *Matrix {
	out := &Matrix{rows: m.rows, cols: m.cols, data: make([]float64, len(m.data))}
	copy(out.data, m.data)

	tol := relTol * out.scale()
	pivotRow := 0
	for col := 0; col < out.cols && pivotRow < out.rows; col++ {
		best := pivotRow
		for r := pivotRow + 1; r < out.rows; r++ {
			if math.Abs(out.At(r, col)) > math.Abs(out.At(best, col)) {
				best = r
			}
		}
		if math.Abs(out.At(best, col)) <= tol {
			continue
		}
		out.swapRows(best, pivotRow)

		for r := pivotRow + 1; r < out.rows; r++ {
			factor := out.At(r, col) / out.At(pivotRow, col)
			for c := col; c < out.cols; c++ {
				out.data[r*out.cols+c] -= factor * out.At(pivotRow, c)
			}
		}
		pivotRow++
	}

	out.cleanAll()
	return out
}

// scale returns the largest absolute entry.
func (m *Matrix) scale() float64 {
	s := 0.0
	for _, v := range m.data {
		s = math.Max(s, math.Abs(v))
	}
	return s
}

// hadamard returns the product of the row norms, an upper bound of |det|.
func (m *Matrix) hadamard() float64 {
	bound := 1.0
	for r := 0; r < m.rows; r++ {
		var sq float64
		for c := 0; c < m.cols; c++ {
			sq += m.At(r, c) * m.At(r, c)
		}
		bound *= math.Sqrt(sq)
	}
	return bound
}

func (m *Matrix) cleanAll() {
	s := m.scale()
	for i := range m.data {
		m.data[i] = clean(m.data[i], s)
	}
}

func (m *Matrix) swapRows(a, b int) {
	if a == b {
		return
	}
	for c := 0; c < m.cols; c++ {
		m.data[a*m.cols+c], m.data[b*m.cols+c] = m.data[b*m.cols+c], m.data[a*m.cols+c]
	}
}

// String renders the matrix with right-aligned columns.
func (m *Matrix) String() string {
	cells := make([]string, len(m.data))
	widths := make([]int, m.cols)
	for i, v := range m.data {
		cells[i] = FormatNumber(v)
		if w := len(cells[i]); w > widths[i%m.cols] {
			widths[i%m.cols] = w
		}
	}

	var sb strings.Builder
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if c > 0 {
				sb.WriteString("  ")
			}
			cell := cells[r*m.cols+c]
			sb.WriteString(strings.Repeat(" ", widths[c]-len(cell)))
			sb.WriteString(cell)
		}
		if r < m.rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FormatNumber prints integers without a fractional part.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(round(v), 'f', -1, 64)
}

// clean zeroes v when it is negligible next to scale and rounds away
// floating point noise otherwise.
func clean(v, scale float64) float64 {
	if math.Abs(v) <= relTol*scale {
		return 0
	}
	return round(v)
}

// round keeps 12 significant digits and drops negative zero.
func round(v float64) float64 {
	if v == 0 {
		return 0
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 12, 64), 64)
	if err != nil {
		return v
	}
	return r
}
