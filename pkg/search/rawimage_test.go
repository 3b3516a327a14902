package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawImageGetPixelOutOfBounds(t *testing.T) {
	img := NewRawImage(4, 4)
	assert.Equal(t, NoData, img.GetPixel(-1, 0))
	assert.Equal(t, NoData, img.GetPixel(4, 0))
	assert.Equal(t, NoData, img.GetPixel(0, 4))
}

func TestRawImageGetPixelInterpNoDataPropagates(t *testing.T) {
	img := NewRawImage(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetPixel(x, y, 1.0)
		}
	}
	img.SetPixel(1, 1, NoData)
	assert.Equal(t, NoData, img.GetPixelInterp(0.5, 0.5))
	assert.Equal(t, float32(1.0), img.GetPixelInterp(2.5, 2.5))
}

func TestRawImageFindPeakIsTheMax(t *testing.T) {
	img := NewRawImage(5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			img.SetPixel(x, y, 0)
		}
	}
	img.SetPixel(3, 2, 9.0)
	i, j := img.FindPeak(true)
	assert.Equal(t, float32(9.0), img.GetPixel(i, j))
	assert.Equal(t, 3, i)
	assert.Equal(t, 2, j)
}

func TestRawImageCreateStampKeepsOrDropsNoData(t *testing.T) {
	img := NewRawImage(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetPixel(x, y, float32(x+y))
		}
	}
	stamp, err := img.CreateStamp(0, 0, 1, true)
	require.NoError(t, err)
	assert.Equal(t, NoData, stamp.GetPixel(0, 0))

	stamp2, err := img.CreateStamp(0, 0, 1, false)
	require.NoError(t, err)
	assert.Equal(t, float32(0), stamp2.GetPixel(0, 0))
}

func TestRawImageComputeBoundsIgnoresNoData(t *testing.T) {
	img := NewRawImage(3, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			img.SetPixel(x, y, float32(x))
		}
	}
	img.SetPixel(2, 2, NoData)
	minV, maxV := img.ComputeBounds()
	assert.Equal(t, float32(0), minV)
	assert.Equal(t, float32(2), maxV)
}

func TestRawImageConvolvePreservesSumWithNoNoData(t *testing.T) {
	img := NewRawImage(9, 9)
	var sumBefore float64
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			v := float32(x + y + 1)
			img.SetPixel(x, y, v)
			sumBefore += float64(v)
		}
	}
	psf := NewGaussianPSF(1.0)
	out := img.Convolve(psf)

	var sumAfter float64
	for _, v := range out.pix {
		sumAfter += float64(v)
	}
	assert.InDelta(t, sumBefore, sumAfter, sumBefore*0.2)
}
