// Package fakedata builds synthetic LayeredImages and ImageStacks directly
// in memory, grounded in original_source's
// kbmod/fake_data/fake_data_creator.py. It is not a file loader — every
// testable property in the core search package needs a way to construct
// known inputs without a FITS reader.
package fakedata

import (
	"math"
	"math/rand"

	"kbmod/pkg/search"
)

// MakeFakeLayeredImage builds a LayeredImage with Gaussian-noise science,
// uniform variance, and a zero mask, mirroring
// make_fake_layered_image's noise model.
func MakeFakeLayeredImage(width, height int, noiseStdev, pixelVariance, obstime float64, psf *search.PSF, rng *rand.Rand) (*search.LayeredImage, error) {
	science := search.NewRawImage(width, height)
	variance := search.NewRawImage(width, height)
	mask := search.NewRawImage(width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			science.SetPixel(x, y, float32(rng.NormFloat64()*noiseStdev))
			variance.SetPixel(x, y, float32(pixelVariance))
			mask.SetPixel(x, y, 0)
		}
	}
	return search.NewLayeredImage(science, variance, mask, obstime, psf)
}

// AddFakeObject additively splats a PSF-weighted point source onto img at
// fractional coordinates (x,y) with total flux, mirroring add_fake_object's
// use of interpolated_add: every tap of the PSF kernel contributes
// flux*psf.GetValue(dx,dy), bilinearly distributed across the four integer
// pixels surrounding its (fractional) target position.
func AddFakeObject(img *search.RawImage, x, y, flux float64, psf *search.PSF) {
	r := psf.Radius()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			w := psf.GetValue(dx, dy)
			if w == 0 {
				continue
			}
			interpolatedAdd(img, x+float64(dx), y+float64(dy), flux*w)
		}
	}
}

// interpolatedAdd bilinearly distributes value across the (up to) four
// pixels surrounding fractional position (x,y), mirroring
// interpolated_add's splat.
func interpolatedAdd(img *search.RawImage, x, y, value float64) {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	xFrac := x - float64(x0)
	yFrac := y - float64(y0)

	addWeighted(img, x0, y0, value*(1-xFrac)*(1-yFrac))
	addWeighted(img, x0+1, y0, value*xFrac*(1-yFrac))
	addWeighted(img, x0, y0+1, value*(1-xFrac)*yFrac)
	addWeighted(img, x0+1, y0+1, value*xFrac*yFrac)
}

func addWeighted(img *search.RawImage, x, y int, delta float64) {
	if x < 0 || x >= img.Width() || y < 0 || y >= img.Height() {
		return
	}
	cur := img.GetPixel(x, y)
	if cur == search.NoData {
		cur = 0
	}
	img.SetPixel(x, y, cur+float32(delta))
}

// CreateFakeTimes generates numTimes observation times starting at t0,
// clustering obsPerDay observations within intraNightGap of each other and
// separating nights by interNightGap, mirroring create_fake_times's
// day_num/seen_on_day counters: seen_on_day resets to 0 every time it would
// reach obsPerDay, at which point day_num advances by interNightGap. The
// resulting times are the same as reducing the loop index modulo obsPerDay,
// including a partial final night when numTimes isn't a multiple of
// obsPerDay.
func CreateFakeTimes(numTimes int, t0 float64, obsPerDay int, intraNightGap, interNightGap float64) []float64 {
	if obsPerDay <= 0 {
		obsPerDay = 1
	}
	times := make([]float64, numTimes)
	seenOnDay := 0
	dayNum := 0.0
	for i := 0; i < numTimes; i++ {
		times[i] = t0 + dayNum + float64(seenOnDay)*intraNightGap
		seenOnDay++
		if seenOnDay == obsPerDay {
			seenOnDay = 0
			dayNum += interNightGap
		}
	}
	return times
}

// MakeFakeImageStack builds an ImageStack of numTimes LayeredImages with a
// single injected linear-trajectory source starting at (x0,y0) moving at
// (vx,vy) pixels/day, used by the kbmod-search demo command. Observation
// times are 0, 1, ..., numTimes-1 days.
func MakeFakeImageStack(width, height, numTimes int, x0, y0, vx, vy, flux, noiseStdev, pixelVariance float64, psf *search.PSF, seed int64) (*search.ImageStack, error) {
	rng := rand.New(rand.NewSource(seed))
	times := CreateFakeTimes(numTimes, 0, numTimes, 1.0, 1.0)

	images := make([]*search.LayeredImage, numTimes)
	for i, t := range times {
		li, err := MakeFakeLayeredImage(width, height, noiseStdev, pixelVariance, t, psf, rng)
		if err != nil {
			return nil, err
		}
		AddFakeObject(li.Science(), x0+vx*t, y0+vy*t, flux, psf)
		images[i] = li
	}
	return search.NewImageStack(images)
}
