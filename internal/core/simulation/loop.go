package simulation

import (
	"context"

	"github.com/zeusync/boxnav/internal/core/events/bus"
	"github.com/zeusync/boxnav/internal/core/navigator"
	"github.com/zeusync/boxnav/internal/core/observability/log"
)

// Event types published by the loop.
const (
	EventStep     = "sim.step"
	EventFinished = "sim.finished"
)

// FinishedEvent is the payload of EventFinished.
type FinishedEvent struct {
	RunID   string
	Status  navigator.Status
	Actions int
}

// Loop drives a navigator step by step until a terminal status and
// records the trajectory. It is single-threaded: no two steps are ever
// in flight at once, and cancellation only takes effect between steps.
type Loop struct {
	nav navigator.Navigator
	bus bus.Bus
	log log.Log
}

// NewLoop wires a loop around a navigator. The bus may be nil when no
// collaborator listens; the logger defaults to a no-op.
func NewLoop(nav navigator.Navigator, b bus.Bus, logger log.Log) *Loop {
	if logger == nil {
		logger = log.Nop()
	}
	return &Loop{nav: nav, bus: b, log: logger}
}

// Run executes the simulation until the navigator reports a terminal
// status or the context is cancelled. The trajectory collected so far is
// returned in both cases; on cancellation the context error is returned
// alongside it.
func (l *Loop) Run(ctx context.Context) (*Trajectory, error) {
	traj := NewTrajectory()
	runLog := l.log.With(log.String("run_id", traj.ID().String()))
	runLog.Info("simulation started")

	for {
		res, err := l.nav.Step(ctx)
		if err != nil {
			runLog.Warn("simulation cancelled",
				log.Int("steps", traj.Len()),
				log.Error(err),
			)
			return traj, err
		}

		sample := Sample{
			Step:    traj.Len(),
			Pose:    res.Pose,
			Taken:   res.Taken,
			Correct: res.Correct,
			Status:  res.Status,
		}
		traj.Append(sample)
		l.publish(bus.NewEvent(EventStep, traj.ID().String(), sample))

		if res.Status.Terminal() {
			break
		}
	}

	runLog.Info("simulation finished",
		log.String("status", traj.FinalStatus().String()),
		log.Int("actions", l.nav.ActionsTaken()),
		log.Int("steps", traj.Len()),
		log.Uint64("checksum", traj.Checksum()),
	)
	l.publish(bus.NewEvent(EventFinished, traj.ID().String(), FinishedEvent{
		RunID:   traj.ID().String(),
		Status:  traj.FinalStatus(),
		Actions: l.nav.ActionsTaken(),
	}))
	return traj, nil
}

func (l *Loop) publish(e bus.Event) {
	if l.bus != nil {
		l.bus.Publish(e)
	}
}
