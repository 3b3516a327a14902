package search

import "math"

// Trajectory is a candidate linear motion plus its evaluated statistics.
type Trajectory struct {
	X, Y             int16
	VX, VY           float64
	LH               float64
	Flux             float64
	ObsCount         int16
}

// PredictedPosition returns (x_t,y_t) = round(x+vx*tau, y+vy*tau).
func (t Trajectory) PredictedPosition(tau float64) (int, int) {
	x := math.Round(float64(t.X) + t.VX*tau)
	y := math.Round(float64(t.Y) + t.VY*tau)
	return int(x), int(y)
}

// trajectoryLess implements the result ordering from the concurrency model: LH
// descending, then obs_count desc, y asc, x asc, vx asc, vy asc.
func trajectoryLess(a, b Trajectory) bool {
	if a.LH != b.LH {
		return a.LH > b.LH
	}
	if a.ObsCount != b.ObsCount {
		return a.ObsCount > b.ObsCount
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.X != b.X {
		return a.X < b.X
	}
	if a.VX != b.VX {
		return a.VX < b.VX
	}
	return a.VY < b.VY
}
