//go:build purego || js

package search

import "math"

const hasNativeBackend = false

// Mat is a pure Go 2D float32 matrix, the fallback numeric backend when no
// OpenCV build is available.
type Mat struct {
	data  []float32
	rows  int
	cols  int
	owned bool
}

func NewMatWithSize(rows, cols int) Mat {
	return Mat{
		data:  make([]float32, rows*cols),
		rows:  rows,
		cols:  cols,
		owned: true,
	}
}

func (m Mat) Rows() int { return m.rows }
func (m Mat) Cols() int { return m.cols }

func (m *Mat) Close() {
	if m.owned {
		m.data = nil
	}
	m.rows = 0
	m.cols = 0
}

func (m Mat) DataFloat32() []float32 { return m.data }

func getGaussianKernel1D(size int, sigma float64) Mat {
	m := NewMatWithSize(size, 1)
	data := m.DataFloat32()
	half := size / 2
	sum := 0.0
	for i := 0; i < size; i++ {
		x := float64(i - half)
		val := math.Exp(-x * x / (2 * sigma * sigma))
		data[i] = float32(val)
		sum += val
	}
	for i := range data[:size] {
		data[i] = float32(float64(data[i]) / sum)
	}
	return m
}

func matMeanStdDev(src Mat) (float64, float64) {
	data := src.DataFloat32()
	n := src.rows * src.cols
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(data[i])
	}
	mean := sum / float64(n)
	var sse float64
	for i := 0; i < n; i++ {
		d := float64(data[i]) - mean
		sse += d * d
	}
	return mean, math.Sqrt(sse / float64(n))
}
