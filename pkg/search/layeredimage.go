package search

// LayeredImage aggregates a science, variance, and mask RawImage that share
// one shape, an observation time (MJD), and a PSF.
type LayeredImage struct {
	science  *RawImage
	variance *RawImage
	mask     *RawImage
	obstime  float64
	psf      *PSF
	width    int
	height   int
}

// NewLayeredImage validates that all three layers share a shape.
func NewLayeredImage(science, variance, mask *RawImage, obstime float64, psf *PSF) (*LayeredImage, error) {
	if science.Width() != variance.Width() || science.Height() != variance.Height() ||
		science.Width() != mask.Width() || science.Height() != mask.Height() {
		return nil, invalidArgf("layer dimension mismatch: science %dx%d, variance %dx%d, mask %dx%d",
			science.Width(), science.Height(), variance.Width(), variance.Height(), mask.Width(), mask.Height())
	}
	return &LayeredImage{
		science: science, variance: variance, mask: mask,
		obstime: obstime, psf: psf,
		width: science.Width(), height: science.Height(),
	}, nil
}

func (li *LayeredImage) Width() int        { return li.width }
func (li *LayeredImage) Height() int       { return li.height }
func (li *LayeredImage) ObsTime() float64  { return li.obstime }
func (li *LayeredImage) Science() *RawImage  { return li.science }
func (li *LayeredImage) Variance() *RawImage { return li.variance }
func (li *LayeredImage) Mask() *RawImage     { return li.mask }
func (li *LayeredImage) PSF() *PSF           { return li.psf }

// ConvolvePSF convolves the science layer with the kernel and the variance
// layer with the squared kernel, in place. Must be called before
// GeneratePsiImage/GeneratePhiImage.
//
// Both layers go through RawImage.Convolve exclusively: its exclude-missing-
// taps-and-renormalize border handling is the contract this module promises,
// and the mat backend's reflect-border SepFilter2D primitive cannot
// reproduce it at the border pixels, so it is never used here.
func (li *LayeredImage) ConvolvePSF() {
	li.science = li.science.Convolve(li.psf)
	li.variance = li.variance.Convolve(li.psf.Squared())
}

// ApplyMaskFlags sets science = NoData wherever the integer mask AND flags
// is non-zero and the pixel index is not present in exceptions.
func (li *LayeredImage) ApplyMaskFlags(flags int, exceptions map[int]bool) {
	for y := 0; y < li.height; y++ {
		for x := 0; x < li.width; x++ {
			idx := y*li.width + x
			if exceptions[idx] {
				continue
			}
			m := int(li.mask.pix[idx])
			if m&flags != 0 {
				li.science.pix[idx] = NoData
			}
		}
	}
}

// ApplyMaskThreshold sets science pixels with value >= threshold to NoData.
func (li *LayeredImage) ApplyMaskThreshold(threshold float32) {
	for i, v := range li.science.pix {
		if !isNoData(v) && v >= threshold {
			li.science.pix[i] = NoData
		}
	}
}

// GrowMask dilates the (non-zero) mask by steps 4-neighbour iterations.
func (li *LayeredImage) GrowMask(steps int) {
	w, h := li.width, li.height
	current := make([]float32, len(li.mask.pix))
	copy(current, li.mask.pix)

	for s := 0; s < steps; s++ {
		next := make([]float32, len(current))
		copy(next, current)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				idx := y*w + x
				if current[idx] != 0 {
					continue
				}
				if (x > 0 && current[idx-1] != 0) ||
					(x < w-1 && current[idx+1] != 0) ||
					(y > 0 && current[idx-w] != 0) ||
					(y < h-1 && current[idx+w] != 0) {
					next[idx] = 1
				}
			}
		}
		current = next
	}
	li.mask.pix = current
}

// GeneratePsiImage returns Psi(p) = S(p)/V(p) where the mask is clear and
// V(p) > 0, else NoData.
func (li *LayeredImage) GeneratePsiImage() *RawImage {
	out := NewRawImage(li.width, li.height)
	for i := range out.pix {
		s, v, m := li.science.pix[i], li.variance.pix[i], li.mask.pix[i]
		if m != 0 || isNoData(s) || isNoData(v) || v <= 0 {
			out.pix[i] = NoData
			continue
		}
		out.pix[i] = s / v
	}
	return out
}

// GeneratePhiImage returns Phi(p) = 1/V(p) where the mask is clear and
// V(p) > 0, else NoData.
func (li *LayeredImage) GeneratePhiImage() *RawImage {
	out := NewRawImage(li.width, li.height)
	for i := range out.pix {
		v, m := li.variance.pix[i], li.mask.pix[i]
		if m != 0 || isNoData(v) || v <= 0 {
			out.pix[i] = NoData
			continue
		}
		out.pix[i] = 1.0 / v
	}
	return out
}
