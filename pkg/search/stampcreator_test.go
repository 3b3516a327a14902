package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSingleImageStack(t *testing.T, w, h int) *ImageStack {
	t.Helper()
	science := NewRawImage(w, h)
	variance := NewRawImage(w, h)
	mask := NewRawImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			variance.SetPixel(x, y, 1.0)
		}
	}
	li, err := NewLayeredImage(science, variance, mask, 0, NewGaussianPSF(1.0))
	require.NoError(t, err)
	stack, err := NewImageStack([]*LayeredImage{li})
	require.NoError(t, err)
	return stack
}

func TestGetSummedStampTreatsNoDataAsZero(t *testing.T) {
	stack := buildSingleImageStack(t, 9, 9)
	stack.Image(0).Science().SetPixel(4, 4, NoData)
	sc := NewStampCreator()
	stamp, err := sc.GetSummedStamp(stack, Trajectory{X: 4, Y: 4}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, float32(0), stamp.GetPixel(1, 1))
}

func TestMeanTimesObsCountEqualsSumWithNoNoData(t *testing.T) {
	stack := buildSingleImageStack(t, 9, 9)
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			stack.Image(0).Science().SetPixel(x, y, float32(x+y))
		}
	}
	sc := NewStampCreator()
	mean, err := sc.GetMeanStamp(stack, Trajectory{X: 4, Y: 4}, 1, nil)
	require.NoError(t, err)
	sum, err := sc.GetSummedStamp(stack, Trajectory{X: 4, Y: 4}, 1, nil)
	require.NoError(t, err)
	assert.InDelta(t, float64(sum.GetPixel(1, 1)), float64(mean.GetPixel(1, 1))*1, 1e-6)
}

func TestFilterStampRejectsOffCenterPeak(t *testing.T) {
	stamp := NewRawImage(9, 9)
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			stamp.SetPixel(x, y, 1.0)
		}
	}
	stamp.SetPixel(8, 4, 100.0) // 4 px off-centre in x
	sc := NewStampCreator()
	params := StampParameters{
		PeakOffsetX: 3, PeakOffsetY: 3,
		M01Limit: 1e9, M10Limit: 1e9, M11Limit: 1e9, M02Limit: 1e9, M20Limit: 1e9,
	}
	assert.True(t, sc.FilterStamp(stamp, params))
}

func TestGetCoaddedStampsReplacesRejectedWithSingleNoData(t *testing.T) {
	stack := buildSingleImageStack(t, 9, 9)
	stack.Image(0).Science().SetPixel(8, 4, 100.0)
	sc := NewStampCreator()
	sc.SetLogger(nopLogger{})

	params := StampParameters{
		Radius: 1, StampType: StampSum, DoFiltering: true,
		PeakOffsetX: 0, PeakOffsetY: 0,
		M01Limit: 1e9, M10Limit: 1e9, M11Limit: 1e9, M02Limit: 1e9, M20Limit: 1e9,
	}
	out, err := sc.GetCoaddedStamps(stack, []Trajectory{{X: 4, Y: 4}}, nil, params, true)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Width())
	assert.Equal(t, 1, out[0].Height())
	assert.Equal(t, NoData, out[0].GetPixel(0, 0))
}
