package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampImage(w, h int, lo, hi float32) *RawImage {
	img := NewRawImage(w, h)
	n := w * h
	for i := 0; i < n; i++ {
		v := lo + (hi-lo)*float32(i)/float32(n-1)
		img.pix[i] = v
	}
	return img
}

func TestPsiPhiArrayFloatRoundTrip(t *testing.T) {
	psi := rampImage(8, 8, -5, 15)
	phi := rampImage(8, 8, 0.1, 1.0)
	arr, err := NewPsiPhiArray([]*RawImage{psi}, []*RawImage{phi}, []float64{0}, 4)
	require.NoError(t, err)

	p, ph := arr.Read(0, 3, 3)
	assert.Equal(t, psi.GetPixel(3, 3), p)
	assert.Equal(t, phi.GetPixel(3, 3), ph)
}

func TestPsiPhiArrayQuantizedRoundTripErrorBound(t *testing.T) {
	psi := rampImage(64, 64, -5, 15)
	phi := rampImage(64, 64, 0.1, 1.0)
	arr, err := NewPsiPhiArray([]*RawImage{psi}, []*RawImage{phi}, []float64{0}, 2)
	require.NoError(t, err)

	maxErr := 20.0 / 65535.0
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			decoded, _ := arr.Read(0, x, y)
			orig := psi.GetPixel(x, y)
			assert.LessOrEqual(t, float64(abs32(decoded-orig)), maxErr+1e-9)
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestPsiPhiArrayNoDataRoundTrips(t *testing.T) {
	psi := NewRawImage(4, 4)
	phi := NewRawImage(4, 4)
	for i := range psi.pix {
		psi.pix[i] = 1.0
		phi.pix[i] = 1.0
	}
	psi.SetPixel(2, 2, NoData)
	arr, err := NewPsiPhiArray([]*RawImage{psi}, []*RawImage{phi}, []float64{0}, 2)
	require.NoError(t, err)

	p, _ := arr.Read(0, 2, 2)
	assert.Equal(t, NoData, p)
}

func TestPsiPhiArrayRejectsMismatchedCounts(t *testing.T) {
	psi := NewRawImage(4, 4)
	_, err := NewPsiPhiArray([]*RawImage{psi}, nil, []float64{0}, 4)
	require.Error(t, err)
}
