package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/boxnav/internal/core/events/bus"
	"github.com/zeusync/boxnav/internal/core/geometry"
	"github.com/zeusync/boxnav/internal/core/navigator"
	"github.com/zeusync/boxnav/internal/core/observability/log"
	"github.com/zeusync/boxnav/internal/core/simulation"
)

func dialViewer(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/watch"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestViewerStreamsSteps(t *testing.T) {
	eventBus := bus.New()
	defer eventBus.Close()

	viewer := NewViewer(eventBus, log.Nop())
	defer viewer.Stop(context.Background())

	srv := httptest.NewServer(viewer.Handler())
	defer srv.Close()

	conn := dialViewer(t, srv)

	// Give the server a beat to register the client.
	require.Eventually(t, func() bool {
		viewer.mu.Lock()
		defer viewer.mu.Unlock()
		return len(viewer.clients) == 1
	}, time.Second, 10*time.Millisecond)

	sample := simulation.Sample{
		Step:   4,
		Pose:   navigator.Pose{Position: geometry.Pt{X: 1, Y: 2}},
		Status: navigator.StatusRunning,
	}
	eventBus.Publish(bus.NewEvent(simulation.EventStep, "run-1", sample))

	var frame Frame
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&frame))

	require.Equal(t, "step", frame.Type)
	require.Equal(t, "run-1", frame.RunID)
	require.NotNil(t, frame.Sample)
	require.Equal(t, 4, frame.Sample.Step)
	require.InDelta(t, 1, frame.Sample.Pose.Position.X, 1e-9)
}

func TestViewerStreamsCompletion(t *testing.T) {
	eventBus := bus.New()
	defer eventBus.Close()

	viewer := NewViewer(eventBus, log.Nop())
	defer viewer.Stop(context.Background())

	srv := httptest.NewServer(viewer.Handler())
	defer srv.Close()

	conn := dialViewer(t, srv)
	require.Eventually(t, func() bool {
		viewer.mu.Lock()
		defer viewer.mu.Unlock()
		return len(viewer.clients) == 1
	}, time.Second, 10*time.Millisecond)

	fin := simulation.FinishedEvent{RunID: "run-2", Status: navigator.StatusReached, Actions: 42}
	eventBus.Publish(bus.NewEvent(simulation.EventFinished, "run-2", fin))

	var frame Frame
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&frame))

	require.Equal(t, "finished", frame.Type)
	require.NotNil(t, frame.Finished)
	require.Equal(t, navigator.StatusReached, frame.Finished.Status)
	require.Equal(t, 42, frame.Finished.Actions)
}

func TestViewerStopDisconnectsClients(t *testing.T) {
	eventBus := bus.New()
	defer eventBus.Close()

	viewer := NewViewer(eventBus, log.Nop())
	srv := httptest.NewServer(viewer.Handler())
	defer srv.Close()

	conn := dialViewer(t, srv)
	require.Eventually(t, func() bool {
		viewer.mu.Lock()
		defer viewer.mu.Unlock()
		return len(viewer.clients) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, viewer.Stop(context.Background()))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "server side close must end the client read")
}
