package bridge

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/boxnav/internal/core/navigator"
	"github.com/zeusync/boxnav/internal/core/observability/log"
)

// wsBridge mirrors poses over a single WebSocket connection. Captures
// arrive asynchronously on the same connection and are buffered until
// the caller polls for them.
type wsBridge struct {
	conn     *websocket.Conn
	cfg      Config
	log      log.Log
	captures chan CaptureRef

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

var _ Bridge = (*wsBridge)(nil)

// DialWebSocket connects to the renderer's WebSocket endpoint. A bare
// host:port address is expanded to ws://host:port/pose.
func DialWebSocket(ctx context.Context, cfg Config, logger log.Log) (Bridge, error) {
	cfg = cfg.withDefaults()
	url := cfg.Addr
	if !strings.Contains(url, "://") {
		url = "ws://" + url + "/pose"
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial renderer websocket: %w", err)
	}

	b := &wsBridge{
		conn:     conn,
		cfg:      cfg,
		log:      logger.With(log.String("transport", "websocket")),
		captures: make(chan CaptureRef, 64),
		done:     make(chan struct{}),
	}
	go b.readLoop()
	b.log.Info("renderer bridge connected", log.String("addr", url))
	return b, nil
}

func (b *wsBridge) SendPose(ctx context.Context, step int, pose navigator.Pose) error {
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
		_ = b.conn.SetWriteDeadline(time.Now().Add(b.cfg.Timeout))
		lastErr = b.conn.WriteJSON(msg)
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

func (b *wsBridge) TryReceiveCapture() (CaptureRef, bool) {
	select {
	case ref := <-b.captures:
		return ref, true
	default:
		return CaptureRef{}, false
	}
}

func (b *wsBridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		b.writeMu.Lock()
		_ = b.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		b.writeMu.Unlock()
		err = b.conn.Close()
	})
	return err
}

// readLoop drains inbound capture messages until the connection dies.
func (b *wsBridge) readLoop() {
	for {
		var msg captureMessage
		if err := b.conn.ReadJSON(&msg); err != nil {
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
