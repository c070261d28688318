package bridge

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/zeusync/boxnav/internal/core/events/bus"
	"github.com/zeusync/boxnav/internal/core/navigator"
	"github.com/zeusync/boxnav/internal/core/observability/log"
	"github.com/zeusync/boxnav/internal/core/simulation"
)

// Bridge-specific errors
var (
	ErrUnknownTransport = errors.New("unknown bridge transport")
	ErrBridgeClosed     = errors.New("bridge is closed")
)

// Transport selects the wire protocol used to reach the renderer.
type Transport string

const (
	TransportWebSocket Transport = "websocket"
	TransportQUIC      Transport = "quic"
)

// Bridge mirrors the agent's pose into an external 3D renderer and
// optionally collects back captured image references keyed by step
// index. It lives strictly outside the navigation step semantics: a
// failing or slow renderer never changes a trajectory.
type Bridge interface {
	// SendPose pushes one pose to the renderer, retrying up to the
	// configured count.
	SendPose(ctx context.Context, step int, pose navigator.Pose) error
	// TryReceiveCapture returns a pending capture reference without
	// blocking.
	TryReceiveCapture() (CaptureRef, bool)
	Close() error
}

// CaptureRef points at an image the renderer captured for a step.
type CaptureRef struct {
	Step int    `json:"step"`
	Ref  string `json:"ref"`
}

// Config holds the bridge connection settings.
type Config struct {
	Addr      string        `json:"addr" yaml:"addr"`
	Transport Transport     `json:"transport" yaml:"transport"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
	Retries   int           `json:"retries" yaml:"retries"`
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
	return c
}

// New dials the renderer using the configured transport.
func New(ctx context.Context, cfg Config, logger log.Log) (Bridge, error) {
	if logger == nil {
		logger = log.Nop()
	}
	switch cfg.Transport {
	case TransportWebSocket:
		return DialWebSocket(ctx, cfg, logger)
	case TransportQUIC:
		return DialQUIC(ctx, cfg, logger)
	default:
		return nil, ErrUnknownTransport
	}
}

// poseMessage is the outbound wire format. The heading goes out in
// degrees, matching what the renderer's yaw setter expects.
type poseMessage struct {
	Type       string  `json:"type"`
	Step       int     `json:"step"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	YawDegrees float64 `json:"yaw_degrees"`
}

// captureMessage is the inbound wire format.
type captureMessage struct {
	Type string `json:"type"`
	Step int    `json:"step"`
	Ref  string `json:"ref"`
}

func newPoseMessage(step int, pose navigator.Pose) poseMessage {
	return poseMessage{
		Type:       "pose",
		Step:       step,
		X:          pose.Position.X,
		Y:          pose.Position.Y,
		YawDegrees: pose.Heading * 180 / math.Pi,
	}
}

// Attach subscribes the bridge to the simulation's step events. Send
// failures are logged and swallowed so the renderer can never alter the
// run's outcome.
func Attach(b Bridge, eventBus bus.Bus, timeout time.Duration, logger log.Log) bus.Subscription {
	if logger == nil {
		logger = log.Nop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return eventBus.Subscribe(simulation.EventStep, func(e bus.Event) {
		sample, ok := e.Data.(simulation.Sample)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := b.SendPose(ctx, sample.Step, sample.Pose); err != nil {
			logger.Warn("bridge pose send failed",
				log.Int("step", sample.Step),
				log.Error(err),
			)
		}
	})
}

// Noop is a Bridge that drops poses and never yields captures. Used
// when no renderer is connected.
type Noop struct{}

func (Noop) SendPose(context.Context, int, navigator.Pose) error { return nil }
func (Noop) TryReceiveCapture() (CaptureRef, bool)               { return CaptureRef{}, false }
func (Noop) Close() error                                        { return nil }
