package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLayeredImage(t *testing.T, w, h int) *LayeredImage {
	t.Helper()
	science := NewRawImage(w, h)
	variance := NewRawImage(w, h)
	mask := NewRawImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			science.SetPixel(x, y, 10.0)
			variance.SetPixel(x, y, 4.0)
			mask.SetPixel(x, y, 0)
		}
	}
	li, err := NewLayeredImage(science, variance, mask, 0, NewGaussianPSF(1.0))
	require.NoError(t, err)
	return li
}

func TestNewLayeredImageRejectsShapeMismatch(t *testing.T) {
	science := NewRawImage(4, 4)
	variance := NewRawImage(3, 4)
	mask := NewRawImage(4, 4)
	_, err := NewLayeredImage(science, variance, mask, 0, NewGaussianPSF(1.0))
	require.Error(t, err)
}

func TestGeneratePsiPhiRespectMask(t *testing.T) {
	li := newTestLayeredImage(t, 4, 4)
	li.Mask().SetPixel(1, 1, 1)

	psi := li.GeneratePsiImage()
	phi := li.GeneratePhiImage()
	assert.Equal(t, NoData, psi.GetPixel(1, 1))
	assert.Equal(t, NoData, phi.GetPixel(1, 1))
	assert.InDelta(t, 2.5, psi.GetPixel(0, 0), 1e-6) // 10/4
	assert.InDelta(t, 0.25, phi.GetPixel(0, 0), 1e-6) // 1/4
}

func TestGrowMaskDilatesByStepsFourNeighbour(t *testing.T) {
	li := newTestLayeredImage(t, 5, 5)
	li.Mask().SetPixel(2, 2, 1)
	li.GrowMask(1)

	assert.NotEqual(t, float32(0), li.Mask().GetPixel(2, 1))
	assert.NotEqual(t, float32(0), li.Mask().GetPixel(1, 2))
	assert.NotEqual(t, float32(0), li.Mask().GetPixel(3, 2))
	assert.NotEqual(t, float32(0), li.Mask().GetPixel(2, 3))
	assert.Equal(t, float32(0), li.Mask().GetPixel(0, 0))
}

func TestConvolvePSFKeepsSumAndFillsEveryPixelWithNoNoData(t *testing.T) {
	li := newTestLayeredImage(t, 9, 9)
	var sumBefore float64
	for _, v := range li.Science().pix {
		sumBefore += float64(v)
	}

	li.ConvolvePSF()

	var sumAfter float64
	for _, v := range li.Science().pix {
		sumAfter += float64(v)
	}
	assert.InDelta(t, sumBefore, sumAfter, sumBefore*0.3)
	for _, v := range li.Science().pix {
		assert.NotEqual(t, NoData, v)
	}
}

func TestConvolvePSFFillsNoDataPixelFromNeighbours(t *testing.T) {
	li := newTestLayeredImage(t, 9, 9)
	li.Science().SetPixel(4, 4, NoData)

	li.ConvolvePSF()

	// RawImage.Convolve excludes the NoData tap and renormalizes by the
	// remaining weight, so it should still fill in a value at the centre
	// rather than propagating NoData outward.
	assert.NotEqual(t, NoData, li.Science().GetPixel(4, 4))
}

func TestApplyMaskThresholdMarksNoData(t *testing.T) {
	li := newTestLayeredImage(t, 3, 3)
	li.Science().SetPixel(1, 1, 50.0)
	li.ApplyMaskThreshold(20.0)
	assert.Equal(t, NoData, li.Science().GetPixel(1, 1))
	assert.NotEqual(t, NoData, li.Science().GetPixel(0, 0))
}
