package navigator

import (
	"context"

	"github.com/zeusync/boxnav/internal/core/corridor"
)

// Perfect is the deterministic navigator: it always takes the action
// that faces and then drives toward the current doorway or the final
// target. For a fixed corridor and config it is fully repeatable.
type Perfect struct {
	*core
}

var _ Navigator = (*Perfect)(nil)

// NewPerfect constructs a perfect navigator over the given corridor.
func NewPerfect(c *corridor.Corridor, start Pose, cfg Config) (*Perfect, error) {
	n, err := newCore(c, start, cfg)
	if err != nil {
		return nil, err
	}
	return &Perfect{core: n}, nil
}

// Step advances the agent by the ideal action.
func (p *Perfect) Step(ctx context.Context) (StepResult, error) {
	return p.step(ctx, func(ideal float64) float64 { return ideal })
}
