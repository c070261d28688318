package simulation

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/zeusync/boxnav/internal/core/navigator"
)

// Sample is one recorded simulation step: the pose after the action,
// the action taken, the action the deterministic policy would have
// taken, and the status after the step.
type Sample struct {
	Step    int              `json:"step"`
	Pose    navigator.Pose   `json:"pose"`
	Taken   navigator.Action `json:"taken"`
	Correct navigator.Action `json:"correct"`
	Status  navigator.Status `json:"status"`
}

// Trajectory is the append-only pose history of one run. It is owned by
// the simulation loop; consumers read it after the run or follow the
// step events on the bus for incremental consumption.
type Trajectory struct {
	id      uuid.UUID
	samples []Sample
}

// NewTrajectory creates an empty trajectory with a fresh run ID.
func NewTrajectory() *Trajectory {
	return &Trajectory{id: uuid.New()}
}

// ID returns the run identifier.
func (t *Trajectory) ID() uuid.UUID { return t.id }

// Append records one step sample.
func (t *Trajectory) Append(s Sample) { t.samples = append(t.samples, s) }

// Len returns the number of recorded samples.
func (t *Trajectory) Len() int { return len(t.samples) }

// Samples returns a copy of the recorded samples.
func (t *Trajectory) Samples() []Sample {
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// FinalStatus returns the status of the last sample, or Running for an
// empty trajectory.
func (t *Trajectory) FinalStatus() navigator.Status {
	if len(t.samples) == 0 {
		return navigator.StatusRunning
	}
	return t.samples[len(t.samples)-1].Status
}

// FinalPose returns the pose of the last sample.
func (t *Trajectory) FinalPose() navigator.Pose {
	if len(t.samples) == 0 {
		return navigator.Pose{}
	}
	return t.samples[len(t.samples)-1].Pose
}

// Checksum hashes the full sample sequence. Two runs over the same
// corridor with the same config and seed produce the same checksum,
// which is how the determinism tests compare trajectories cheaply.
func (t *Trajectory) Checksum() uint64 {
	h := xxhash.New()
	var buf [8]byte
	writeU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	for _, s := range t.samples {
		writeU64(uint64(s.Step))
		writeU64(math.Float64bits(s.Pose.Position.X))
		writeU64(math.Float64bits(s.Pose.Position.Y))
		writeU64(math.Float64bits(s.Pose.Heading))
		writeU64(uint64(s.Taken)<<16 | uint64(s.Correct)<<8 | uint64(s.Status))
	}
	return h.Sum64()
}
