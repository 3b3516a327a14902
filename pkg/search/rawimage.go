package search

import "math"

// RawImage is a 2-D grid of single-precision floats with a fixed shape and
// the NoData sentinel marking invalid or masked pixels.
type RawImage struct {
	width, height int
	pix           []float32
}

// NewRawImage allocates a width x height image filled with NoData.
func NewRawImage(width, height int) *RawImage {
	pix := make([]float32, width*height)
	for i := range pix {
		pix[i] = NoData
	}
	return &RawImage{width: width, height: height, pix: pix}
}

// NewRawImageFromData wraps an existing row-major buffer; len(data) must
// equal width*height.
func NewRawImageFromData(width, height int, data []float32) (*RawImage, error) {
	if len(data) != width*height {
		return nil, invalidArgf("raw image data length %d does not match %dx%d", len(data), width, height)
	}
	return &RawImage{width: width, height: height, pix: data}, nil
}

func (img *RawImage) Width() int  { return img.width }
func (img *RawImage) Height() int { return img.height }

func (img *RawImage) inBounds(x, y int) bool {
	return x >= 0 && x < img.width && y >= 0 && y < img.height
}

// GetPixel returns NoData for any out-of-bounds query.
func (img *RawImage) GetPixel(x, y int) float32 {
	if !img.inBounds(x, y) {
		return NoData
	}
	return img.pix[y*img.width+x]
}

func (img *RawImage) SetPixel(x, y int, v float32) {
	if !img.inBounds(x, y) {
		return
	}
	img.pix[y*img.width+x] = v
}

func isNoData(v float32) bool { return v == NoData }

// MeanStdDev returns the mean and population standard deviation over every
// pixel (NoData sentinels included), computed through the mat backend's
// bulk reduction rather than a hand-rolled loop.
func (img *RawImage) MeanStdDev() (float64, float64) {
	m := NewMatWithSize(img.height, img.width)
	copy(m.DataFloat32(), img.pix)
	defer m.Close()
	return matMeanStdDev(m)
}

// GetPixelInterp performs bilinear interpolation; if any of the four
// surrounding pixels is NoData, the result is NoData.
func (img *RawImage) GetPixelInterp(x, y float64) float32 {
	if x < 0 || y < 0 || x > float64(img.width-1) || y > float64(img.height-1) {
		return NoData
	}
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > img.width-1 {
		x1 = img.width - 1
	}
	if y1 > img.height-1 {
		y1 = img.height - 1
	}

	p00 := img.GetPixel(x0, y0)
	p01 := img.GetPixel(x1, y0)
	p10 := img.GetPixel(x0, y1)
	p11 := img.GetPixel(x1, y1)
	if isNoData(p00) || isNoData(p01) || isNoData(p10) || isNoData(p11) {
		return NoData
	}

	xRatio := x - float64(x0)
	yRatio := y - float64(y0)
	top := float64(p00) + xRatio*(float64(p01)-float64(p00))
	bottom := float64(p10) + xRatio*(float64(p11)-float64(p10))
	return float32(top + yRatio*(bottom-top))
}

// CreateStamp extracts a square cutout of side 2r+1 centred at (x,y).
// Out-of-image samples become NoData when keepNoData is true, else 0.0.
func (img *RawImage) CreateStamp(x, y, radius int, keepNoData bool) (*RawImage, error) {
	if radius < 0 {
		return nil, invalidArgf("stamp radius %d must be >= 0", radius)
	}
	side := 2*radius + 1
	stamp := NewRawImage(side, side)
	for j := 0; j < side; j++ {
		for i := 0; i < side; i++ {
			sx := x - radius + i
			sy := y - radius + j
			if img.inBounds(sx, sy) {
				stamp.SetPixel(i, j, img.GetPixel(sx, sy))
			} else if keepNoData {
				stamp.SetPixel(i, j, NoData)
			} else {
				stamp.SetPixel(i, j, 0.0)
			}
		}
	}
	return stamp, nil
}

// FindPeak returns the coordinate of the maximum finite pixel. When
// furthestFromCenter is true and several pixels tie the maximum, the one
// farthest from the image centre wins; remaining ties break by (j,i)
// ascending per spec's open-question resolution.
func (img *RawImage) FindPeak(furthestFromCenter bool) (int, int) {
	cx := float64(img.width-1) / 2.0
	cy := float64(img.height-1) / 2.0

	bestI, bestJ := 0, 0
	bestVal := float32(math.Inf(-1))
	bestDist := -1.0
	found := false

	for j := 0; j < img.height; j++ {
		for i := 0; i < img.width; i++ {
			v := img.pix[j*img.width+i]
			if isNoData(v) {
				continue
			}
			if !found || v > bestVal {
				bestVal = v
				bestI, bestJ = i, j
				bestDist = dist2(float64(i), float64(j), cx, cy)
				found = true
				continue
			}
			if v == bestVal && furthestFromCenter {
				d := dist2(float64(i), float64(j), cx, cy)
				if d > bestDist || (d == bestDist && (j < bestJ || (j == bestJ && i < bestI))) {
					bestI, bestJ = i, j
					bestDist = d
				}
			}
		}
	}
	return bestI, bestJ
}

func dist2(x, y, cx, cy float64) float64 {
	dx, dy := x-cx, y-cy
	return dx*dx + dy*dy
}

// CentralMoments holds the central image moments used by stamp filtering.
type CentralMoments struct {
	M00, M01, M10, M11, M02, M20 float64
}

// FindCentralMoments computes central moments with NoData treated as 0.
func (img *RawImage) FindCentralMoments() CentralMoments {
	var m00, sumX, sumY float64
	for j := 0; j < img.height; j++ {
		for i := 0; i < img.width; i++ {
			v := img.pix[j*img.width+i]
			if isNoData(v) {
				continue
			}
			fv := float64(v)
			m00 += fv
			sumX += fv * float64(i)
			sumY += fv * float64(j)
		}
	}
	var cx, cy float64
	if m00 != 0 {
		cx = sumX / m00
		cy = sumY / m00
	}

	var m01, m10, m11, m02, m20 float64
	for j := 0; j < img.height; j++ {
		for i := 0; i < img.width; i++ {
			v := img.pix[j*img.width+i]
			if isNoData(v) {
				continue
			}
			fv := float64(v)
			dx := float64(i) - cx
			dy := float64(j) - cy
			m10 += fv * dx
			m01 += fv * dy
			m11 += fv * dx * dy
			m20 += fv * dx * dx
			m02 += fv * dy * dy
		}
	}
	return CentralMoments{M00: m00, M01: m01, M10: m10, M11: m11, M02: m02, M20: m20}
}

// ComputeBounds returns (min,max) over finite pixels. Returns (0,0) if the
// image has no finite pixels.
func (img *RawImage) ComputeBounds() (float32, float32) {
	minV := float32(math.Inf(1))
	maxV := float32(math.Inf(-1))
	any := false
	for _, v := range img.pix {
		if isNoData(v) {
			continue
		}
		any = true
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if !any {
		return 0, 0
	}
	return minV, maxV
}

// Convolve returns a new image where every pixel is the kernel-weighted sum
// of the surrounding pixels. NoData inputs are excluded from both the sum
// and the weight normalization; if the total weight at a pixel is <= 0, the
// output pixel is NoData.
func (img *RawImage) Convolve(p *PSF) *RawImage {
	r := p.Radius()
	side := p.Dim()
	kernel := p.kernel
	out := NewRawImage(img.width, img.height)

	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			var weighted, weightSum float64
			for ky := 0; ky < side; ky++ {
				sy := y + ky - r
				if sy < 0 || sy >= img.height {
					continue
				}
				rowOff := sy * img.width
				kOff := ky * side
				for kx := 0; kx < side; kx++ {
					sx := x + kx - r
					if sx < 0 || sx >= img.width {
						continue
					}
					v := img.pix[rowOff+sx]
					if isNoData(v) {
						continue
					}
					w := kernel[kOff+kx]
					weighted += float64(v) * w
					weightSum += w
				}
			}
			if weightSum <= 0 {
				out.pix[y*img.width+x] = NoData
			} else {
				out.pix[y*img.width+x] = float32(weighted / weightSum)
			}
		}
	}
	return out
}
