package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		rows    int
		cols    int
		wantErr error
	}{
		{name: "square", input: "1 2\n3 4", rows: 2, cols: 2},
		{name: "rectangular", input: "1 2 3\n4 5 6", rows: 2, cols: 3},
		{name: "decimal comma", input: "1,5 2\n3 4", rows: 2, cols: 2},
		{name: "trailing newline", input: "1 2\n3 4\n", rows: 2, cols: 2},
		{name: "ragged rows", input: "1 2\n3", wantErr: ErrSizesMismatch},
		{name: "letters", input: "1 a\n3 4", wantErr: ErrNotNumeric},
		{name: "infinity", input: "inf 1\n1 1", wantErr: ErrNotNumeric},
		{name: "empty", input: "   ", wantErr: ErrNotNumeric},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Parse(tc.input)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			r, c := m.Dims()
			assert.Equal(t, tc.rows, r)
			assert.Equal(t, tc.cols, c)
		})
	}
}

func TestDet(t *testing.T) {
	m, err := Parse("1 2\n3 4")
	require.NoError(t, err)
	det, err := m.Det()
	require.NoError(t, err)
	assert.Equal(t, "-2", FormatNumber(det))

	identity, err := Parse("1 0 0\n0 1 0\n0 0 1")
	require.NoError(t, err)
	det, err = identity.Det()
	require.NoError(t, err)
	assert.Equal(t, 1.0, det)

	rect, err := Parse("1 2 3\n4 5 6")
	require.NoError(t, err)
	_, err = rect.Det()
	assert.ErrorIs(t, err, ErrSquareMatrixRequired)
}

func TestInverse(t *testing.T) {
	m, err := Parse("4 7\n2 6")
	require.NoError(t, err)
	inv, err := m.Inverse()
	require.NoError(t, err)
	assert.InDelta(t, 0.6, inv.At(0, 0), 1e-9)
	assert.InDelta(t, -0.7, inv.At(0, 1), 1e-9)
	assert.InDelta(t, -0.2, inv.At(1, 0), 1e-9)
	assert.InDelta(t, 0.4, inv.At(1, 1), 1e-9)

	singular, err := Parse("1 2\n2 4")
	require.NoError(t, err)
	_, err = singular.Inverse()
	assert.ErrorIs(t, err, ErrNonInvertibleMatrix)

	rect, err := Parse("1 2")
	require.NoError(t, err)
	_, err = rect.Inverse()
	assert.ErrorIs(t, err, ErrSquareMatrixRequired)
}

func TestREF(t *testing.T) {
	m, err := Parse("1 2 3\n2 4 6\n1 1 1")
	require.NoError(t, err)

	ref := m.REF()
	rows, cols := ref.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 3, cols)

	// Below-diagonal entries of each pivot column are zero.
	for r := 1; r < rows; r++ {
		for c := 0; c < r && c < cols; c++ {
			assert.Zero(t, ref.At(r, c), "entry (%d,%d)", r, c)
		}
	}
	// The matrix has rank 2, so the last row vanishes.
	for c := 0; c < cols; c++ {
		assert.Zero(t, ref.At(2, c))
	}
}

func TestString(t *testing.T) {
	m, err := New([][]float64{{1, -10}, {2.5, 3}})
	require.NoError(t, err)
	assert.Equal(t, "  1  -10\n2.5    3", m.String())
}

func TestSmallEntries(t *testing.T) {
	m, err := Parse("0.00001 0 0\n0 0.00001 0\n0 0 0.00001")
	require.NoError(t, err)

	det, err := m.Det()
	require.NoError(t, err)
	assert.InEpsilon(t, 1e-15, det, 1e-9)

	inv, err := m.Inverse()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				assert.InEpsilon(t, 1e5, inv.At(i, j), 1e-9)
			} else {
				assert.Zero(t, inv.At(i, j))
			}
		}
	}

	ref := m.REF()
	assert.InEpsilon(t, 1e-5, ref.At(2, 2), 1e-9)
}

func TestInverse_IllConditioned(t *testing.T) {
	m, err := Parse("1 1\n1 1.0000000000001")
	require.NoError(t, err)

	_, err = m.Inverse()
	assert.ErrorIs(t, err, ErrNonInvertibleMatrix)
}
