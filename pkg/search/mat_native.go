//go:build !purego && !js

package search

import "gocv.io/x/gocv"

// hasNativeBackend reports that this build exercises the OpenCV-backed
// numeric primitives rather than the pure Go fallback. It is unrelated to
// accelerator (CUDA) trajectory search, which this module never implements
// (see ErrNoAccelerator) — it only toggles Gaussian kernel generation and
// bulk statistics; convolution always runs in RawImage.Convolve.
const hasNativeBackend = true

// Mat wraps gocv.Mat for the native OpenCV backend.
type Mat struct {
	m gocv.Mat
}

func NewMatWithSize(rows, cols int) Mat {
	return Mat{m: gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)}
}
func (mat Mat) Rows() int { return mat.m.Rows() }
func (mat Mat) Cols() int { return mat.m.Cols() }
func (mat *Mat) Close()   { mat.m.Close() }

func (mat Mat) DataFloat32() []float32 {
	data, _ := mat.m.DataPtrFloat32()
	return data
}

// getGaussianKernel1D returns a normalized 1-D Gaussian kernel.
func getGaussianKernel1D(size int, sigma float64) Mat {
	return Mat{m: gocv.GetGaussianKernel(size, sigma)}
}

// matMeanStdDev returns mean and population standard deviation over all
// elements of src.
func matMeanStdDev(src Mat) (float64, float64) {
	meanMat := gocv.NewMat()
	defer meanMat.Close()
	stdMat := gocv.NewMat()
	defer stdMat.Close()
	gocv.MeanStdDev(src.m, &meanMat, &stdMat)
	return meanMat.GetDoubleAt(0, 0), stdMat.GetDoubleAt(0, 0)
}
