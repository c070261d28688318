package navigator

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeusync/boxnav/internal/core/geometry"
)

// Navigator-specific errors
var (
	ErrInvalidConfig = errors.New("invalid navigator configuration")
	ErrNilCorridor   = errors.New("navigator requires a corridor")
	ErrUnknownKind   = errors.New("unknown navigator kind")
)

// Pose is the agent's position plus heading angle in radians
// (right-handed: heading 0 points along +x, pi/2 along +y).
type Pose struct {
	Position geometry.Pt `json:"position" yaml:"position"`
	Heading  float64     `json:"heading" yaml:"heading"`
}

// Status is the navigator's terminal state machine. Every status other
// than Running is terminal and sticky: once set it never reverts and
// further steps are no-ops.
type Status uint8

const (
	StatusRunning Status = iota
	StatusReached
	StatusOutOfBounds
	StatusActionLimit
)

// Terminal reports whether the status ends the run.
func (s Status) Terminal() bool { return s != StatusRunning }

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusReached:
		return "reached"
	case StatusOutOfBounds:
		return "out_of_bounds"
	case StatusActionLimit:
		return "action_limit_exceeded"
	default:
		return "unknown"
	}
}

// Action is one motion primitive. Rotation and translation are mutually
// exclusive within a single step (turn-then-drive).
type Action uint8

const (
	ActionForward Action = iota
	ActionRotateLeft
	ActionRotateRight
)

func (a Action) String() string {
	switch a {
	case ActionForward:
		return "forward"
	case ActionRotateLeft:
		return "rotate_left"
	case ActionRotateRight:
		return "rotate_right"
	default:
		return "unknown"
	}
}

// Kind selects a navigator implementation.
type Kind string

const (
	KindPerfect   Kind = "perfect"
	KindWandering Kind = "wandering"
)

// Config holds the motion parameters shared by all navigator kinds.
type Config struct {
	// StepDistance is how far a forward action translates the agent.
	StepDistance float64 `json:"step_distance" yaml:"step_distance"`
	// RotationLimit is the maximum rotation per step in radians. It
	// doubles as the facing tolerance: the agent drives forward once
	// the remaining angle error fits within one rotation step.
	RotationLimit float64 `json:"rotation_limit" yaml:"rotation_limit"`
	// DistanceTolerance is the radius around the final target that
	// counts as reached.
	DistanceTolerance float64 `json:"distance_tolerance" yaml:"distance_tolerance"`
	// RandomDeviation bounds the heading noise of the wandering
	// navigator in radians. Zero degenerates to perfect behavior.
	RandomDeviation float64 `json:"random_deviation" yaml:"random_deviation"`
	// Seed initializes the wandering navigator's random source.
	Seed int64 `json:"seed" yaml:"seed"`
	// ActionLimit caps the number of actions before the run is cut off.
	ActionLimit int `json:"action_limit" yaml:"action_limit"`
	// AllowOutOfBounds keeps the run alive when the agent leaves the
	// corridor. Used when an external renderer owns collision.
	AllowOutOfBounds bool `json:"allow_out_of_bounds" yaml:"allow_out_of_bounds"`
}

// Validate checks the configuration before any step executes.
func (c Config) Validate() error {
	if c.StepDistance <= 0 {
		return fmt.Errorf("%w: step distance must be positive, got %v", ErrInvalidConfig, c.StepDistance)
	}
	if c.RotationLimit <= 0 {
		return fmt.Errorf("%w: rotation limit must be positive, got %v", ErrInvalidConfig, c.RotationLimit)
	}
	if c.DistanceTolerance <= 0 {
		return fmt.Errorf("%w: distance tolerance must be positive, got %v", ErrInvalidConfig, c.DistanceTolerance)
	}
	if c.RandomDeviation < 0 {
		return fmt.Errorf("%w: random deviation must not be negative, got %v", ErrInvalidConfig, c.RandomDeviation)
	}
	if c.ActionLimit <= 0 {
		return fmt.Errorf("%w: action limit must be positive, got %v", ErrInvalidConfig, c.ActionLimit)
	}
	return nil
}

// StepResult reports the outcome of one navigator step. Correct records
// the action the deterministic policy would have chosen, which the
// dataset collector uses as a label for the taken action.
type StepResult struct {
	Pose    Pose   `json:"pose"`
	Taken   Action `json:"taken"`
	Correct Action `json:"correct"`
	Status  Status `json:"status"`
}

// Navigator decides one motion action per step from the agent's pose and
// the corridor. Implementations own their pose and state exclusively;
// a single instance must never be stepped concurrently.
type Navigator interface {
	// Step advances the agent by one action and reports the new pose
	// and status. Once the status is terminal Step is a no-op that
	// keeps returning the final result.
	Step(ctx context.Context) (StepResult, error)

	Pose() Pose
	Status() Status
	BoxIndex() int
	ActionsTaken() int
}
