package search

// NO_DATA marks an invalid or masked pixel. It is excluded from every
// aggregate and preserved by every operation unless explicitly replaced.
const NoData float32 = -9999.99

// HasGPU reports whether this build was compiled against a CUDA
// accelerator kernel. This module never ships one — search() and
// get_coadded_stamps always run the host path, and HasGPU is always
// false — but the constant is exported per the external interface
// contract so callers can branch on capability without a type assertion.
const HasGPU = false

// MaxStampEdge bounds 2r+1 for accelerator-side coadds.
const MaxStampEdge = 64

// ResultsPerPixel is the default per-start-pixel top-K retained by search().
const ResultsPerPixel = 8

// StampType selects the coadd aggregation applied by StampCreator.
type StampType int

const (
	StampSum StampType = iota
	StampMean
	StampMedian
)

func (t StampType) String() string {
	switch t {
	case StampSum:
		return "sum"
	case StampMean:
		return "mean"
	case StampMedian:
		return "median"
	default:
		return "unknown"
	}
}
