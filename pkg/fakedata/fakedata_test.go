package fakedata

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbmod/pkg/search"
)

func TestMakeFakeLayeredImageSharedShape(t *testing.T) {
	psf := search.NewGaussianPSF(1.0)
	rng := rand.New(rand.NewSource(1))
	li, err := MakeFakeLayeredImage(16, 16, 1.0, 4.0, 0, psf, rng)
	require.NoError(t, err)
	assert.Equal(t, 16, li.Width())
	assert.Equal(t, 16, li.Height())
}

func TestAddFakeObjectIncreasesFluxNearCenter(t *testing.T) {
	psf := search.NewGaussianPSF(1.0)
	img := search.NewRawImage(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetPixel(x, y, 0)
		}
	}
	before := img.GetPixel(8, 8)
	AddFakeObject(img, 8, 8, 500, psf)
	after := img.GetPixel(8, 8)
	assert.Greater(t, after, before)
}

func TestCreateFakeTimesClustersWithinNight(t *testing.T) {
	times := CreateFakeTimes(6, 0, 3, 0.01, 1.0)
	require.Len(t, times, 6)
	assert.Less(t, times[1]-times[0], 0.02)
	assert.Greater(t, times[3]-times[2], 0.5)
}

func TestCreateFakeTimesResetsPerNightCountOnPartialFinalNight(t *testing.T) {
	// 7 observations at 3 per night: two full nights plus a partial third,
	// so numTimes is not a multiple of obsPerDay.
	times := CreateFakeTimes(7, 0, 3, 0.01, 1.0)
	require.Len(t, times, 7)
	assert.InDelta(t, 0.0, times[0], 1e-9)
	assert.InDelta(t, 0.01, times[1], 1e-9)
	assert.InDelta(t, 0.02, times[2], 1e-9)
	assert.InDelta(t, 1.0, times[3], 1e-9)
	assert.InDelta(t, 1.01, times[4], 1e-9)
	assert.InDelta(t, 1.02, times[5], 1e-9)
	assert.InDelta(t, 2.0, times[6], 1e-9)
}

func TestMakeFakeImageStackBuildsRequestedCount(t *testing.T) {
	psf := search.NewGaussianPSF(1.0)
	stack, err := MakeFakeImageStack(32, 32, 5, 10, 10, 1.0, 0.0, 100, 1.0, 1.0, psf, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, stack.ImgCount())
}
