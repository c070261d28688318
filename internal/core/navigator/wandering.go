package navigator

import (
	"context"
	"math/rand"

	"github.com/zeusync/boxnav/internal/core/corridor"
)

// Wandering is the exploring navigator: it follows the same doorway
// logic as Perfect but perturbs the ideal heading correction with
// bounded uniform noise, producing a random walk biased toward the
// correct doorway. The random source is owned per instance and seeded
// from the config, never the process-wide source, so a fixed seed
// reproduces the exact trajectory.
type Wandering struct {
	*core
	rng *rand.Rand
}

var _ Navigator = (*Wandering)(nil)

// NewWandering constructs a wandering navigator over the given corridor.
func NewWandering(c *corridor.Corridor, start Pose, cfg Config) (*Wandering, error) {
	n, err := newCore(c, start, cfg)
	if err != nil {
		return nil, err
	}
	return &Wandering{
		core: n,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Step advances the agent by the noise-perturbed action. With a zero
// deviation bound the perturbation vanishes and Wandering behaves
// identically to Perfect.
func (w *Wandering) Step(ctx context.Context) (StepResult, error) {
	return w.step(ctx, func(ideal float64) float64 {
		noise := (w.rng.Float64()*2 - 1) * w.cfg.RandomDeviation
		return ideal + noise
	})
}
