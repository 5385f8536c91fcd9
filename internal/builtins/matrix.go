package builtins

import (
	"errors"
	"math"

	"github.com/funvibe/funcalc/internal/diagnostics"
	"github.com/funvibe/funcalc/internal/modules"
	"github.com/funvibe/funcalc/internal/value"
)

// matrix is a dense row-major matrix read from an array of arrays.
type matrix [][]float64

var (
	errNotMatrix = errors.New("Parameter must be an array of equally long number arrays!")
	errNotSquare = errors.New("Matrix must be square!")
	errSingular  = errors.New("Matrix is singular!")
)

func toMatrix(v value.Value) (matrix, error) {
	rows, ok := v.(*value.Array)
	if !ok || rows.Len() == 0 {
		return nil, errNotMatrix
	}
	m := make(matrix, 0, rows.Len())
	for _, r := range rows.Elements() {
		row, ok := r.(*value.Array)
		if !ok || (len(m) > 0 && row.Len() != len(m[0])) || row.Len() == 0 {
			return nil, errNotMatrix
		}
		cells := make([]float64, row.Len())
		for i, c := range row.Elements() {
			f, ok := value.Number(c)
			if !ok {
				return nil, errNotMatrix
			}
			cells[i] = f
		}
		m = append(m, cells)
	}
	return m, nil
}

func (m matrix) value() value.Value {
	rows := make([]value.Value, len(m))
	for i, r := range m {
		cells := make([]value.Value, len(r))
		for j, c := range r {
			cells[j] = value.Real(c)
		}
		rows[i] = value.NewArray(cells...)
	}
	return value.NewArray(rows...)
}

func (m matrix) clone() matrix {
	out := make(matrix, len(m))
	for i, r := range m {
		out[i] = append([]float64(nil), r...)
	}
	return out
}

func matrixFunc(f func(matrix) (value.Value, error)) modules.Function {
	return func(ctx *modules.CallContext, args modules.Args, log *diagnostics.Log) (value.Value, modules.Status) {
		m, err := toMatrix(args.At(0))
		if err == nil {
			var v value.Value
			if v, err = f(m); err == nil {
				return v, modules.StatusOk
			}
		}
		log.Fail(err.Error())
		return nil, modules.StatusFail
	}
}

func transpose(m matrix) (value.Value, error) {
	out := make(matrix, len(m[0]))
	for j := range out {
		out[j] = make([]float64, len(m))
		for i := range m {
			out[j][i] = m[i][j]
		}
	}
	return out.value(), nil
}

// eliminate reduces a to upper triangular form with partial pivoting,
// applying the same row operations to b when it is not nil. It returns
// the determinant.
func eliminate(a, b matrix) float64 {
	n := len(a)
	det := 1.0
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if a[pivot][col] == 0 {
			return 0
		}
		if pivot != col {
			a[pivot], a[col] = a[col], a[pivot]
			if b != nil {
				b[pivot], b[col] = b[col], b[pivot]
			}
			det = -det
		}
		det *= a[col][col]
		for r := 0; r < n; r++ {
			if r == col || (b == nil && r < col) {
				continue
			}
			k := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= k * a[col][c]
			}
			if b != nil {
				for c := range b[r] {
					b[r][c] -= k * b[col][c]
				}
			}
		}
	}
	return det
}

func det(m matrix) (value.Value, error) {
	if len(m) != len(m[0]) {
		return nil, errNotSquare
	}
	return value.Real(eliminate(m.clone(), nil)), nil
}

func inverse(m matrix) (value.Value, error) {
	n := len(m)
	if n != len(m[0]) {
		return nil, errNotSquare
	}
	a := m.clone()
	b := make(matrix, n)
	for i := range b {
		b[i] = make([]float64, n)
		b[i][i] = 1
	}
	if eliminate(a, b) == 0 {
		return nil, errSingular
	}
	for i := range b {
		for j := range b[i] {
			b[i][j] /= a[i][i]
		}
	}
	return b.value(), nil
}
