package search

import "sort"

// TrajectoryList is a fixed-capacity result buffer with a single-owner
// ownership flag between host and accelerator, grounded directly in
// original_source's trajectory_list.h design. move_to_gpu/move_to_cpu in
// this no-CUDA build are idempotent no-ops that only flip the flag.
type TrajectoryList struct {
	data    []Trajectory
	maxSize int
	onAccel bool
}

func NewTrajectoryList(maxSize int) (*TrajectoryList, error) {
	if maxSize <= 0 {
		return nil, invalidArgf("trajectory list max size %d must be positive", maxSize)
	}
	return &TrajectoryList{data: make([]Trajectory, 0, maxSize), maxSize: maxSize}, nil
}

func (tl *TrajectoryList) MaxSize() int { return tl.maxSize }
func (tl *TrajectoryList) Len() int     { return len(tl.data) }
func (tl *TrajectoryList) OnAccelerator() bool { return tl.onAccel }

func (tl *TrajectoryList) GetTrajectory(i int) (Trajectory, error) {
	if tl.onAccel {
		return Trajectory{}, ErrOnAccelerator
	}
	if i < 0 || i >= len(tl.data) {
		return Trajectory{}, invalidArgf("trajectory index %d out of range [0,%d)", i, len(tl.data))
	}
	return tl.data[i], nil
}

func (tl *TrajectoryList) SetTrajectory(i int, t Trajectory) error {
	if tl.onAccel {
		return ErrOnAccelerator
	}
	if i < 0 || i >= len(tl.data) {
		return invalidArgf("trajectory index %d out of range [0,%d)", i, len(tl.data))
	}
	tl.data[i] = t
	return nil
}

func (tl *TrajectoryList) Append(t Trajectory) error {
	if tl.onAccel {
		return ErrOnAccelerator
	}
	if len(tl.data) >= tl.maxSize {
		return stateViolationf("trajectory list is full (max %d)", tl.maxSize)
	}
	tl.data = append(tl.data, t)
	return nil
}

func (tl *TrajectoryList) GetList() ([]Trajectory, error) {
	if tl.onAccel {
		return nil, ErrOnAccelerator
	}
	return tl.data, nil
}

// GetBatch returns up to count trajectories starting at start.
func (tl *TrajectoryList) GetBatch(start, count int) ([]Trajectory, error) {
	if tl.onAccel {
		return nil, ErrOnAccelerator
	}
	if start < 0 || start > len(tl.data) {
		return nil, invalidArgf("batch start %d out of range", start)
	}
	end := start + count
	if end > len(tl.data) {
		end = len(tl.data)
	}
	return tl.data[start:end], nil
}

func (tl *TrajectoryList) SortByLikelihood() error {
	if tl.onAccel {
		return ErrOnAccelerator
	}
	sort.SliceStable(tl.data, func(i, j int) bool { return tl.data[i].LH > tl.data[j].LH })
	return nil
}

func (tl *TrajectoryList) SortByObsCount() error {
	if tl.onAccel {
		return ErrOnAccelerator
	}
	sort.SliceStable(tl.data, func(i, j int) bool { return tl.data[i].ObsCount > tl.data[j].ObsCount })
	return nil
}

func (tl *TrajectoryList) MoveToGPU() { tl.onAccel = true }
func (tl *TrajectoryList) MoveToCPU() { tl.onAccel = false }
