package search

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/stat"
)

// AcceleratorKernel is the interface a CUDA build would implement for
// accelerator-mode search (see spec's concurrency model, mode 1). This
// module ships without one; NewStackSearch wires in a kernel whose Search
// always returns ErrNoAccelerator, keeping the ownership-flag and capability
// contracts real and testable without fabricating a fake GPU.
type AcceleratorKernel interface {
	Search(ctx context.Context, ss *StackSearch, angleSteps, velocitySteps int, minAngle, maxAngle, minVelocity, maxVelocity float64, minObservations int) error
}

type noAcceleratorKernel struct{}

func (noAcceleratorKernel) Search(context.Context, *StackSearch, int, int, float64, float64, float64, float64, int) error {
	return ErrNoAccelerator
}

// SigmaGParams configures the optional sigma-G outlier filter.
type SigmaGParams struct {
	Enabled    bool
	PercentileL float64
	PercentileH float64
	Coefficient float64
	MinLH       float64
}

// StackSearch implements the trajectory grid search over an ImageStack.
type StackSearch struct {
	stack   *ImageStack
	psiPhi  *PsiPhiArray
	results *TrajectoryList

	xMin, xMax int
	yMin, yMax int
	boundsSet  bool

	minObservations int
	minLH           float64
	sigmaG          SigmaGParams
	encodingBytes   int

	psiPhiGenerated bool

	logger      Logger
	accelerator AcceleratorKernel
	// MaxWorkers bounds the host-parallel worker pool; 0 means GOMAXPROCS-sized.
	MaxWorkers int
}

// NewStackSearch constructs a search over stack with defaults matching
// original_source's KBMOSearch constructor: no sigma-G filter, float
// (4-byte) encoding, full-image start bounds.
func NewStackSearch(stack *ImageStack) *StackSearch {
	return &StackSearch{
		stack:           stack,
		xMin:            0,
		xMax:            stack.Width(),
		yMin:            0,
		yMax:            stack.Height(),
		minObservations: 0,
		minLH:           -math.MaxFloat64,
		encodingBytes:   4,
		logger:          nopLogger{},
		accelerator:     noAcceleratorKernel{},
	}
}

func (ss *StackSearch) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	ss.logger = l
}

func (ss *StackSearch) SetStartBoundsX(xMin, xMax int) error {
	if xMin < 0 || xMax > ss.stack.Width() || xMin >= xMax {
		return invalidArgf("start x bounds [%d,%d) outside image width %d", xMin, xMax, ss.stack.Width())
	}
	ss.xMin, ss.xMax = xMin, xMax
	return nil
}

func (ss *StackSearch) SetStartBoundsY(yMin, yMax int) error {
	if yMin < 0 || yMax > ss.stack.Height() || yMin >= yMax {
		return invalidArgf("start y bounds [%d,%d) outside image height %d", yMin, yMax, ss.stack.Height())
	}
	ss.yMin, ss.yMax = yMin, yMax
	return nil
}

func (ss *StackSearch) SetMinObs(n int)     { ss.minObservations = n }
func (ss *StackSearch) SetMinLH(v float64)  { ss.minLH = v }

func (ss *StackSearch) EnableGPUSigmaGFilter(pL, pH, coeff, minLH float64) {
	ss.sigmaG = SigmaGParams{Enabled: true, PercentileL: pL, PercentileH: pH, Coefficient: coeff, MinLH: minLH}
}

// EnableGPUEncoding selects PsiPhi quantization. Any value other than 1, 2,
// or 4 falls back to 4 (float), matching PreparePsiPhi/NewPsiPhiArray.
func (ss *StackSearch) EnableGPUEncoding(bytesPerValue int) {
	if bytesPerValue != 1 && bytesPerValue != 2 && bytesPerValue != 4 {
		bytesPerValue = 4
	}
	ss.encodingBytes = bytesPerValue
}

// PreparePsiPhi is idempotent, mirroring KBMOSearch.cpp's psi_phi_generated
// guard.
func (ss *StackSearch) PreparePsiPhi() error {
	if ss.psiPhiGenerated {
		return nil
	}
	ss.stack.ConvolvePSF()

	n := ss.stack.ImgCount()
	psiImages := make([]*RawImage, n)
	phiImages := make([]*RawImage, n)
	zeroed := make([]float64, n)
	for i := 0; i < n; i++ {
		img := ss.stack.Image(i)
		mean, stddev := img.Science().MeanStdDev()
		ss.logger.Printf("image %d: t=%.3f science mean=%.4f stddev=%.4f", i, img.ObsTime(), mean, stddev)
		psiImages[i] = img.GeneratePsiImage()
		phiImages[i] = img.GeneratePhiImage()
		zeroed[i] = ss.stack.GetZeroedTime(i)
	}

	arr, err := NewPsiPhiArray(psiImages, phiImages, zeroed, ss.encodingBytes)
	if err != nil {
		return err
	}
	ss.psiPhi = arr
	ss.psiPhiGenerated = true
	// The stack's shape and per-image ordering must stay fixed for the
	// lifetime of this PsiPhiArray; SortByTime would silently desync tau_i
	// from the encoded planes.
	ss.stack.SetAcceleratorOwned(true)
	return nil
}

func (ss *StackSearch) ClearPsiPhi() {
	ss.psiPhi = nil
	ss.psiPhiGenerated = false
	ss.stack.SetAcceleratorOwned(false)
}

// candidateSample is one image's contribution to a trajectory's likelihood.
type candidateSample struct {
	psi, phi float32
	valid    bool
}

func (ss *StackSearch) sampleTrajectory(x0, y0 int, vx, vy float64) []candidateSample {
	n := ss.psiPhi.NumImages()
	samples := make([]candidateSample, n)
	for t := 0; t < n; t++ {
		tau := ss.psiPhi.ZeroedTime(t)
		px := int(math.Round(float64(x0) + vx*tau))
		py := int(math.Round(float64(y0) + vy*tau))
		if px < 0 || px >= ss.psiPhi.Width() || py < 0 || py >= ss.psiPhi.Height() {
			continue
		}
		psi, phi := ss.psiPhi.Read(t, px, py)
		if isNoData(psi) || isNoData(phi) || phi <= 0 {
			continue
		}
		samples[t] = candidateSample{psi: psi, phi: phi, valid: true}
	}
	return samples
}

// aggregate sums valid samples into LH/flux/obsCount, applying the sigma-G
// filter first when enabled.
func (ss *StackSearch) aggregate(samples []candidateSample) (lh, flux float64, obsCount int) {
	type contrib struct {
		idx      int
		l        float64
		psi, phi float64
	}
	var valid []contrib
	for i, s := range samples {
		if !s.valid {
			continue
		}
		l := float64(s.psi) / math.Sqrt(float64(s.phi))
		valid = append(valid, contrib{idx: i, l: l, psi: float64(s.psi), phi: float64(s.phi)})
	}

	if ss.sigmaG.Enabled && len(valid) >= 2 {
		ls := make([]float64, len(valid))
		for i, c := range valid {
			ls[i] = c.l
		}
		sorted := append([]float64(nil), ls...)
		sort.Float64s(sorted)
		qL := stat.Quantile(ss.sigmaG.PercentileL, stat.Empirical, sorted, nil)
		qH := stat.Quantile(ss.sigmaG.PercentileH, stat.Empirical, sorted, nil)
		mu := (qL + qH) / 2
		sigma := ss.sigmaG.Coefficient * (qH - qL)
		lo, hi := mu-2*sigma, mu+2*sigma

		kept := valid[:0:0]
		for _, c := range valid {
			if c.l >= lo && c.l <= hi {
				kept = append(kept, c)
			}
		}
		valid = kept
	}

	var psiSum, phiSum float64
	for _, c := range valid {
		psiSum += c.psi
		phiSum += c.phi
	}
	obsCount = len(valid)
	if phiSum <= 0 {
		return 0, 0, obsCount
	}
	return psiSum / math.Sqrt(phiSum), psiSum / phiSum, obsCount
}

// EvaluateSingleTrajectory computes LH/flux/obs_count for an
// already-positioned trajectory, without applying min_lh/min_observations
// filters.
func (ss *StackSearch) EvaluateSingleTrajectory(t Trajectory) (Trajectory, error) {
	if !ss.psiPhiGenerated {
		return Trajectory{}, ErrNotPrepared
	}
	samples := ss.sampleTrajectory(int(t.X), int(t.Y), t.VX, t.VY)
	lh, flux, obsCount := ss.aggregate(samples)
	t.LH = lh
	t.Flux = flux
	t.ObsCount = int16(obsCount)
	return t, nil
}

// SearchLinearTrajectory evaluates one trajectory for testing, bypassing
// the grid enumeration entirely.
func (ss *StackSearch) SearchLinearTrajectory(x, y int, vx, vy float64) (Trajectory, error) {
	return ss.EvaluateSingleTrajectory(Trajectory{X: int16(x), Y: int16(y), VX: vx, VY: vy})
}

// Search enumerates every (start pixel x angle x velocity) combination,
// keeps the top ResultsPerPixel per start pixel, and stores the globally
// sorted result in GetResults. It always runs the host-parallel path; the
// accelerator path is wired through ss.accelerator and returns
// ErrNoAccelerator in this build (see AcceleratorKernel).
func (ss *StackSearch) Search(angleSteps, velocitySteps int, minAngle, maxAngle, minVelocity, maxVelocity float64, minObservations int) error {
	if !ss.psiPhiGenerated {
		return ErrNotPrepared
	}
	if angleSteps <= 0 || velocitySteps <= 0 {
		return invalidArgf("angle_steps and velocity_steps must be positive")
	}
	ss.minObservations = minObservations

	velocities := make([][2]float64, 0, angleSteps*velocitySteps)
	for a := 0; a < angleSteps; a++ {
		angle := minAngle + float64(a)*(maxAngle-minAngle)/float64(angleSteps)
		for b := 0; b < velocitySteps; b++ {
			vel := minVelocity + float64(b)*(maxVelocity-minVelocity)/float64(velocitySteps)
			velocities = append(velocities, [2]float64{math.Cos(angle) * vel, math.Sin(angle) * vel})
		}
	}

	rows := ss.yMax - ss.yMin
	perRow := make([][]Trajectory, rows)

	ctx := context.Background()
	maxWorkers := ss.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = runtime.GOMAXPROCS(0)
	}
	sem := semaphore.NewWeighted(int64(maxWorkers))
	g, ctx := errgroup.WithContext(ctx)

	for row := 0; row < rows; row++ {
		row := row
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			y0 := ss.yMin + row
			perRow[row] = ss.searchRow(y0, velocities)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	tl, err := NewTrajectoryList(rows * (ss.xMax - ss.xMin) * ResultsPerPixel)
	if err != nil {
		return err
	}
	var flat []Trajectory
	for _, row := range perRow {
		flat = append(flat, row...)
	}
	sort.SliceStable(flat, func(i, j int) bool { return trajectoryLess(flat[i], flat[j]) })
	for _, t := range flat {
		if err := tl.Append(t); err != nil {
			break
		}
	}
	ss.results = tl
	return nil
}

// searchRow evaluates every start pixel in row y0, keeping the
// ResultsPerPixel best trajectories per pixel.
func (ss *StackSearch) searchRow(y0 int, velocities [][2]float64) []Trajectory {
	var out []Trajectory
	for x0 := ss.xMin; x0 < ss.xMax; x0++ {
		var best []Trajectory
		for _, v := range velocities {
			samples := ss.sampleTrajectory(x0, y0, v[0], v[1])
			lh, flux, obsCount := ss.aggregate(samples)
			if obsCount < ss.minObservations || lh < ss.minLH {
				continue
			}
			if ss.sigmaG.Enabled && lh < ss.sigmaG.MinLH {
				continue
			}
			t := Trajectory{X: int16(x0), Y: int16(y0), VX: v[0], VY: v[1], LH: lh, Flux: flux, ObsCount: int16(obsCount)}
			best = insertTopK(best, t, ResultsPerPixel)
		}
		out = append(out, best...)
	}
	return out
}

// insertTopK inserts t into the (already ordered) best slice, keeping at
// most k entries sorted by trajectoryLess.
func insertTopK(best []Trajectory, t Trajectory, k int) []Trajectory {
	pos := sort.Search(len(best), func(i int) bool { return trajectoryLess(t, best[i]) })
	if pos >= k {
		return best
	}
	best = append(best, Trajectory{})
	copy(best[pos+1:], best[pos:])
	best[pos] = t
	if len(best) > k {
		best = best[:k]
	}
	return best
}

// GetResults returns up to count results starting at start, from the
// globally sorted result list produced by Search.
func (ss *StackSearch) GetResults(start, count int) ([]Trajectory, error) {
	if ss.results == nil {
		return nil, ErrNotPrepared
	}
	return ss.results.GetBatch(start, count)
}

func (ss *StackSearch) Results() *TrajectoryList { return ss.results }
func (ss *StackSearch) PsiPhi() *PsiPhiArray      { return ss.psiPhi }
func (ss *StackSearch) Stack() *ImageStack        { return ss.stack }
