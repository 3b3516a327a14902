package search

import "sort"

// ImageStack is an ordered sequence of LayeredImages sharing one shape.
type ImageStack struct {
	images       []*LayeredImage
	width        int
	height       int
	zeroedTimes  []float64
	ownedByAccel bool
}

// NewImageStack requires all images to share width/height and builds the
// zeroed-times array.
func NewImageStack(images []*LayeredImage) (*ImageStack, error) {
	if len(images) == 0 {
		return nil, invalidArgf("image stack requires at least one image")
	}
	w, h := images[0].Width(), images[0].Height()
	for i, img := range images {
		if img.Width() != w || img.Height() != h {
			return nil, invalidArgf("image %d has shape %dx%d, expected %dx%d", i, img.Width(), img.Height(), w, h)
		}
	}
	s := &ImageStack{images: images, width: w, height: h}
	s.BuildZeroedTimes()
	return s, nil
}

func (s *ImageStack) Width() int   { return s.width }
func (s *ImageStack) Height() int  { return s.height }
func (s *ImageStack) ImgCount() int { return len(s.images) }
func (s *ImageStack) Image(i int) *LayeredImage { return s.images[i] }

func (s *ImageStack) GetObsTime(i int) float64 { return s.images[i].ObsTime() }

func (s *ImageStack) GetZeroedTime(i int) float64 { return s.zeroedTimes[i] }

// BuildZeroedTimes recomputes tau_i = t_i - t_0.
func (s *ImageStack) BuildZeroedTimes() {
	s.zeroedTimes = make([]float64, len(s.images))
	if len(s.images) == 0 {
		return
	}
	t0 := s.images[0].ObsTime()
	for i, img := range s.images {
		s.zeroedTimes[i] = img.ObsTime() - t0
	}
}

// ConvolvePSF delegates to every layered image.
func (s *ImageStack) ConvolvePSF() {
	for _, img := range s.images {
		img.ConvolvePSF()
	}
}

// MakeGlobalMask marks a pixel 1.0 when the number of input masks with any
// of flags set is >= threshold, else 0.0.
func (s *ImageStack) MakeGlobalMask(flags int, threshold int) *RawImage {
	out := NewRawImage(s.width, s.height)
	counts := make([]int, s.width*s.height)
	for _, img := range s.images {
		m := img.Mask()
		for i, v := range m.pix {
			if int(v)&flags != 0 {
				counts[i]++
			}
		}
	}
	for i, c := range counts {
		if c >= threshold {
			out.pix[i] = 1.0
		} else {
			out.pix[i] = 0.0
		}
	}
	return out
}

// ApplyGlobalMask synthesizes a global mask and ORs it into every image's
// mask layer.
func (s *ImageStack) ApplyGlobalMask(flags int, threshold int) {
	global := s.MakeGlobalMask(flags, threshold)
	for _, img := range s.images {
		m := img.Mask()
		for i, v := range global.pix {
			if v != 0 {
				m.pix[i] = 1
			}
		}
	}
}

// SortByTime sorts images ascending by obstime. Rejected while data is
// owned by an accelerator.
func (s *ImageStack) SortByTime() error {
	if s.ownedByAccel {
		return stateViolationf("cannot sort image stack while owned by accelerator")
	}
	sort.SliceStable(s.images, func(i, j int) bool {
		return s.images[i].ObsTime() < s.images[j].ObsTime()
	})
	s.BuildZeroedTimes()
	return nil
}

// SetAcceleratorOwned flips whether SortByTime is permitted; it is set by
// StackSearch.PreparePsiPhi once the stack's PsiPhiArray is built and
// cleared by StackSearch.ClearPsiPhi.
func (s *ImageStack) SetAcceleratorOwned(owned bool) { s.ownedByAccel = owned }
