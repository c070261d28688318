package navigator

import (
	"context"
	"math"

	"github.com/zeusync/boxnav/internal/core/corridor"
	"github.com/zeusync/boxnav/internal/core/geometry"
)

// New constructs a navigator of the given kind.
func New(kind Kind, c *corridor.Corridor, start Pose, cfg Config) (Navigator, error) {
	switch kind {
	case KindPerfect:
		return NewPerfect(c, start, cfg)
	case KindWandering:
		return NewWandering(c, start, cfg)
	default:
		return nil, ErrUnknownKind
	}
}

// core carries the state and step machinery shared by every navigator
// kind. Variants differ only in how they perturb the ideal angle delta.
type core struct {
	corridor *corridor.Corridor
	cfg      Config

	pose     Pose
	boxIndex int
	actions  int
	status   Status
	last     StepResult
}

func newCore(c *corridor.Corridor, start Pose, cfg Config) (*core, error) {
	if c == nil {
		return nil, ErrNilCorridor
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := &core{corridor: c, cfg: cfg, pose: start}
	n.last = StepResult{Pose: start, Status: StatusRunning}
	return n, nil
}

func (n *core) Pose() Pose        { return n.pose }
func (n *core) Status() Status    { return n.status }
func (n *core) BoxIndex() int     { return n.boxIndex }
func (n *core) ActionsTaken() int { return n.actions }

// step advances the agent by one action. perturb transforms the ideal
// angle delta and is the single point where navigator kinds diverge.
func (n *core) step(ctx context.Context, perturb func(float64) float64) (StepResult, error) {
	if err := ctx.Err(); err != nil {
		return n.last, err
	}
	if n.status.Terminal() {
		return n.last, nil
	}

	// Occupancy of the starting position. An agent placed outside the
	// remaining corridor fails immediately, before any motion.
	if _, ok := n.corridor.ContainingIndex(n.pose.Position, n.boxIndex); !ok && !n.cfg.AllowOutOfBounds {
		return n.finish(StatusOutOfBounds), nil
	}
	if n.atFinalTarget() {
		return n.finish(StatusReached), nil
	}

	ideal := n.angleToTarget()
	delta := perturb(ideal)
	correct := n.classify(ideal)
	taken := n.classify(delta)

	switch taken {
	case ActionRotateLeft:
		n.pose.Heading += n.cfg.RotationLimit
	case ActionRotateRight:
		n.pose.Heading -= n.cfg.RotationLimit
	case ActionForward:
		dir := geometry.Heading(n.pose.Heading)
		n.pose.Position = n.pose.Position.Add(dir.Scale(n.cfg.StepDistance))
	}
	n.actions++

	n.last = StepResult{Pose: n.pose, Taken: taken, Correct: correct, Status: n.evaluate()}
	return n.last, nil
}

// evaluate recomputes occupancy and the terminal status after a motion.
// The box index advances by at most one per step even when the motion
// would geometrically land the agent further ahead. While the agent
// stands in the overlap of two boxes the lower index still contains it,
// so crossing is detected by doorway proximity, not by leaving the
// current box.
func (n *core) evaluate() Status {
	idx, inside := n.corridor.ContainingIndex(n.pose.Position, n.boxIndex)
	if inside && n.boxIndex < n.corridor.Len()-1 {
		if idx > n.boxIndex || n.throughDoorway() {
			n.boxIndex++
		}
	}

	switch {
	case n.atFinalTarget():
		n.status = StatusReached
	case !inside && !n.cfg.AllowOutOfBounds:
		n.status = StatusOutOfBounds
	case n.actions >= n.cfg.ActionLimit:
		n.status = StatusActionLimit
	}
	return n.status
}

// throughDoorway reports whether the agent stands inside the next box
// and within DistanceTolerance of the doorway leading into it.
func (n *core) throughDoorway() bool {
	if !n.corridor.BoxAt(n.boxIndex + 1).Contains(n.pose.Position) {
		return false
	}
	return geometry.CloseEnough(n.pose.Position, n.corridor.Doorway(n.boxIndex), n.cfg.DistanceTolerance)
}

// finish sets a terminal status reached without taking an action.
func (n *core) finish(s Status) StepResult {
	n.status = s
	n.last = StepResult{Pose: n.pose, Taken: n.last.Taken, Correct: n.last.Correct, Status: s}
	return n.last
}

// target is the doorway midpoint into the next box, or the designated
// final target once the agent occupies the last box.
func (n *core) target() geometry.Pt {
	if n.boxIndex >= n.corridor.Len()-1 {
		return n.corridor.FinalTarget()
	}
	return n.corridor.Doorway(n.boxIndex)
}

// angleToTarget is the signed angle between the current heading and the
// heading required to face the step target. Standing exactly on the
// target leaves no direction to face, so the delta is zero and the
// agent steps forward through it.
func (n *core) angleToTarget() float64 {
	toTarget := n.target().Sub(n.pose.Position)
	if toTarget.Magnitude() == 0 {
		return 0
	}
	return geometry.Heading(n.pose.Heading).AngleTo(toTarget)
}

// classify maps an angle delta onto a motion primitive: drive forward
// when the error fits within one rotation step, otherwise turn toward
// the target.
func (n *core) classify(delta float64) Action {
	switch {
	case math.Abs(delta) <= n.cfg.RotationLimit:
		return ActionForward
	case delta > 0:
		return ActionRotateLeft
	default:
		return ActionRotateRight
	}
}

func (n *core) atFinalTarget() bool {
	return n.boxIndex == n.corridor.Len()-1 &&
		geometry.CloseEnough(n.pose.Position, n.corridor.FinalTarget(), n.cfg.DistanceTolerance)
}
