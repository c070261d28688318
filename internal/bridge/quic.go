package bridge

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/zeusync/boxnav/internal/core/navigator"
	"github.com/zeusync/boxnav/internal/core/observability/log"
)

// bridgeALPN is the protocol identifier negotiated with the renderer.
const bridgeALPN = "boxnav-bridge"

// quicBridge mirrors poses over one bidirectional QUIC stream carrying
// newline-delimited JSON in both directions.
type quicBridge struct {
	conn   *quic.Conn
	stream *quic.Stream
	cfg    Config
	log    log.Log

	enc      *json.Encoder
	captures chan CaptureRef

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

var _ Bridge = (*quicBridge)(nil)

// DialQUIC connects to the renderer's QUIC endpoint and opens the pose
// stream. The renderer side uses a self-signed certificate, so the
// client skips verification and pins the ALPN instead.
func DialQUIC(ctx context.Context, cfg Config, logger log.Log) (Bridge, error) {
	cfg = cfg.withDefaults()
	tlsConf := &tls.Config{
		InsecureSkipVerify: true,
		NextProtos:         []string{bridgeALPN},
	}
	conn, err := quic.DialAddr(ctx, cfg.Addr, tlsConf, &quic.Config{
		HandshakeIdleTimeout: cfg.Timeout,
		MaxIdleTimeout:       4 * cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("dial renderer quic: %w", err)
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "no stream")
		return nil, fmt.Errorf("open pose stream: %w", err)
	}

	b := &quicBridge{
		conn:     conn,
		stream:   stream,
		cfg:      cfg,
		log:      logger.With(log.String("transport", "quic")),
		enc:      json.NewEncoder(stream),
		captures: make(chan CaptureRef, 64),
		done:     make(chan struct{}),
	}
	go b.readLoop()
	b.log.Info("renderer bridge connected", log.String("addr", cfg.Addr))
	return b, nil
}

func (b *quicBridge) SendPose(ctx context.Context, step int, pose navigator.Pose) error {
	select {
	case <-b.done:
		return ErrBridgeClosed
	default:
	}

	msg := newPoseMessage(step, pose)
	var lastErr error
	for attempt := 0; attempt <= b.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.writeMu.Lock()
		_ = b.stream.SetWriteDeadline(time.Now().Add(b.cfg.Timeout))
		lastErr = b.enc.Encode(msg)
		b.writeMu.Unlock()
		if lastErr == nil {
			return nil
		}
		b.log.Warn("pose write failed, retrying",
			log.Int("step", step),
			log.Int("attempt", attempt),
			log.Error(lastErr),
		)
	}
	return fmt.Errorf("send pose for step %d: %w", step, lastErr)
}

func (b *quicBridge) TryReceiveCapture() (CaptureRef, bool) {
	select {
	case ref := <-b.captures:
		return ref, true
	default:
		return CaptureRef{}, false
	}
}

func (b *quicBridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		_ = b.stream.Close()
		err = b.conn.CloseWithError(0, "done")
	})
	return err
}

func (b *quicBridge) readLoop() {
	dec := json.NewDecoder(b.stream)
	for {
		var msg captureMessage
		if err := dec.Decode(&msg); err != nil {
			select {
			case <-b.done:
			default:
				b.log.Debug("bridge read loop ended", log.Error(err))
			}
			return
		}
		if msg.Type != "capture" {
			continue
		}
		select {
		case b.captures <- CaptureRef{Step: msg.Step, Ref: msg.Ref}:
		default:
			b.log.Warn("capture buffer full, dropping", log.Int("step", msg.Step))
		}
	}
}
