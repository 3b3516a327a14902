package search

import "math"

// PsiPhiArray packs every image's Psi and Phi planes with O(1) (t,x,y)
// access. Psi and Phi live in two separate contiguous slices (not one
// shared block), each image-major with index t*W*H + y*W + x. Values are
// either float32 or quantized to 1- or 2-byte levels (2^8-1 or 2^16-1 steps)
// with per-image scale parameters; quantized levels are held in uint32
// slots, so quantization does not shrink the storage.
type PsiPhiArray struct {
	width, height, numImages int
	bytesPerValue            int // 1, 2, or 4

	// float32 storage, used when bytesPerValue == 4
	psiF, phiF []float32

	// quantized storage, used when bytesPerValue in {1,2}
	psiQ, phiQ []uint32
	scales     []imageScale

	zeroedTimes []float64
}

type imageScale struct {
	psiMin, psiScale float64
	phiMin, phiScale float64
}

// NewPsiPhiArray packs psiImages/phiImages (one pair per input image, all
// sharing width x height) with the given byte encoding. Any byte count
// other than 1, 2, or 4 falls back to 4 (float), matching
// enable_gpu_encoding's documented fallback.
func NewPsiPhiArray(psiImages, phiImages []*RawImage, zeroedTimes []float64, bytesPerValue int) (*PsiPhiArray, error) {
	if len(psiImages) != len(phiImages) {
		return nil, invalidArgf("psi/phi image count mismatch: %d vs %d", len(psiImages), len(phiImages))
	}
	if len(psiImages) == 0 {
		return nil, invalidArgf("psi/phi array requires at least one image")
	}
	if len(zeroedTimes) != len(psiImages) {
		return nil, invalidArgf("zeroed times length %d does not match image count %d", len(zeroedTimes), len(psiImages))
	}
	if bytesPerValue != 1 && bytesPerValue != 2 && bytesPerValue != 4 {
		bytesPerValue = 4
	}

	w, h := psiImages[0].Width(), psiImages[0].Height()
	for i := range psiImages {
		if psiImages[i].Width() != w || psiImages[i].Height() != h ||
			phiImages[i].Width() != w || phiImages[i].Height() != h {
			return nil, invalidArgf("psi/phi image %d shape mismatch", i)
		}
	}

	arr := &PsiPhiArray{
		width: w, height: h, numImages: len(psiImages),
		bytesPerValue: bytesPerValue,
		zeroedTimes:   append([]float64(nil), zeroedTimes...),
	}

	if bytesPerValue == 4 {
		arr.psiF = make([]float32, arr.numImages*w*h)
		arr.phiF = make([]float32, arr.numImages*w*h)
		for i := range psiImages {
			copy(arr.psiF[i*w*h:(i+1)*w*h], psiImages[i].pix)
			copy(arr.phiF[i*w*h:(i+1)*w*h], phiImages[i].pix)
		}
		return arr, nil
	}

	arr.scales = make([]imageScale, arr.numImages)
	arr.psiQ = make([]uint32, arr.numImages*w*h)
	arr.phiQ = make([]uint32, arr.numImages*w*h)
	maxLevel := float64((uint64(1) << uint(8*bytesPerValue)) - 1)

	for i := range psiImages {
		pMin, pMax := psiImages[i].ComputeBounds()
		phMin, phMax := phiImages[i].ComputeBounds()
		pRange := math.Max(float64(pMax-pMin), 1e-6)
		phRange := math.Max(float64(phMax-phMin), 1e-6)
		sc := imageScale{
			psiMin: float64(pMin), psiScale: pRange / maxLevel,
			phiMin: float64(phMin), phiScale: phRange / maxLevel,
		}
		arr.scales[i] = sc

		base := i * w * h
		for j, v := range psiImages[i].pix {
			arr.psiQ[base+j] = encodeQuantized(v, sc.psiMin, sc.psiScale, maxLevel)
		}
		for j, v := range phiImages[i].pix {
			arr.phiQ[base+j] = encodeQuantized(v, sc.phiMin, sc.phiScale, maxLevel)
		}
	}
	return arr, nil
}

func encodeQuantized(v float32, min, scale, maxLevel float64) uint32 {
	if isNoData(v) {
		return 0
	}
	e := math.Round((float64(v) - min) / scale)
	if e < 1 {
		e = 1 // 0 is reserved for NoData
	}
	if e > maxLevel {
		e = maxLevel
	}
	return uint32(e)
}

func decodeQuantized(e uint32, min, scale float64) float32 {
	if e == 0 {
		return NoData
	}
	return float32(min + float64(e)*scale)
}

func (arr *PsiPhiArray) Width() int      { return arr.width }
func (arr *PsiPhiArray) Height() int     { return arr.height }
func (arr *PsiPhiArray) NumImages() int  { return arr.numImages }
func (arr *PsiPhiArray) BytesPerValue() int { return arr.bytesPerValue }
func (arr *PsiPhiArray) ZeroedTime(t int) float64 { return arr.zeroedTimes[t] }

// Read returns (Psi,Phi) at (t,x,y). Out-of-bounds indices return NoData.
func (arr *PsiPhiArray) Read(t, x, y int) (float32, float32) {
	if t < 0 || t >= arr.numImages || x < 0 || x >= arr.width || y < 0 || y >= arr.height {
		return NoData, NoData
	}
	idx := t*arr.width*arr.height + y*arr.width + x
	if arr.bytesPerValue == 4 {
		return arr.psiF[idx], arr.phiF[idx]
	}
	sc := arr.scales[t]
	return decodeQuantized(arr.psiQ[idx], sc.psiMin, sc.psiScale), decodeQuantized(arr.phiQ[idx], sc.phiMin, sc.phiScale)
}
