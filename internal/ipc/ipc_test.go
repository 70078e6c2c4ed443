package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/autodock/internal/daemon"
	"github.com/1broseidon/autodock/internal/dock"
	"github.com/1broseidon/autodock/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeControl struct {
	mu        sync.Mutex
	running   bool
	calls     []string
	reloadErr error
}

func (f *fakeControl) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeControl) Start() error {
	f.record("start")
	f.mu.Lock()
	f.running = true
	f.mu.Unlock()
	return nil
}

func (f *fakeControl) Stop() error {
	f.record("stop")
	f.mu.Lock()
	f.running = false
	f.mu.Unlock()
	return nil
}

func (f *fakeControl) Toggle() (bool, error) {
	f.record("toggle")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = !f.running
	return f.running, nil
}

func (f *fakeControl) Status() daemon.ServiceStatus {
	f.record("status")
	f.mu.Lock()
	defer f.mu.Unlock()
	return daemon.ServiceStatus{
		Status:  daemon.Status{Running: f.running, State: "hidden", StateKnown: true, Transitions: 3},
		Backend: "plank",
		DryRun:  true,
	}
}

func (f *fakeControl) Reconcile() (daemon.Decision, error) {
	f.record("reconcile")
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return daemon.Decision{}, daemon.ErrNotRunning
	}
	return daemon.Decision{Desired: "hidden", Reason: dock.ReasonOverlap, Changed: true, Frontmost: "editor"}, nil
}

func (f *fakeControl) RefreshGeometry() dock.Geometry {
	f.record("refresh")
	return dock.Geometry{
		Rect:        platform.Rect{X: 0, Y: 860, Width: 1440, Height: 40},
		Orientation: dock.Bottom,
		Source:      dock.SourceIntrospected,
	}
}

func (f *fakeControl) Reload() error {
	f.record("reload")
	return f.reloadErr
}

func startServer(t *testing.T, control Control) (*Server, *Client) {
	t.Helper()
	dir, err := os.MkdirTemp("", "adipc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "s.sock")

	srv := NewServerAt(path, control, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return srv, NewClientAt(path)
}

func TestClientServer_RoundTrip(t *testing.T) {
	control := &fakeControl{}
	_, client := startServer(t, control)

	require.NoError(t, client.Start())

	status, err := client.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, "hidden", status.State)
	assert.Equal(t, 3, status.Transitions)
	assert.Equal(t, "plank", status.Backend)
	assert.True(t, status.DryRun)

	d, err := client.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, dock.ReasonOverlap, d.Reason)
	assert.Equal(t, "editor", d.Frontmost)

	g, err := client.RefreshGeometry()
	require.NoError(t, err)
	assert.Equal(t, "bottom", g.Orientation)
	assert.Equal(t, dock.SourceIntrospected, g.Source)
	assert.Equal(t, 860, g.Rect.Y)

	running, err := client.Toggle()
	require.NoError(t, err)
	assert.False(t, running)

	require.NoError(t, client.Reload())
	require.NoError(t, client.Stop())
	require.NoError(t, client.Ping())

	assert.Equal(t,
		[]string{"start", "status", "reconcile", "refresh", "toggle", "reload", "stop", "status"},
		control.calls)
}

func TestClientServer_ErrorsSurface(t *testing.T) {
	control := &fakeControl{reloadErr: errors.New("bad yaml")}
	_, client := startServer(t, control)

	_, err := client.Reconcile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), daemon.ErrNotRunning.Error())

	err = client.Reload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad yaml")
}

func TestServer_RejectsBadRequests(t *testing.T) {
	srv, _ := startServer(t, &fakeControl{})

	send := func(line string) Response {
		conn, err := net.Dial("unix", srv.SocketPath())
		require.NoError(t, err)
		defer conn.Close()
		_, err = conn.Write([]byte(line + "\n"))
		require.NoError(t, err)
		data, err := bufio.NewReader(conn).ReadBytes('\n')
		require.NoError(t, err)
		var resp Response
		require.NoError(t, json.Unmarshal(data, &resp))
		return resp
	}

	resp := send("not json")
	assert.Equal(t, "ERROR", resp.Status)
	assert.Contains(t, resp.Error, "Invalid request")

	resp = send(`{"command":"DANCE"}`)
	assert.Equal(t, "ERROR", resp.Status)
	assert.Contains(t, resp.Error, "Unknown command")

	resp = send(`{}`)
	assert.Equal(t, "ERROR", resp.Status)
}

func TestServer_RefusesLiveSocket(t *testing.T) {
	srv, _ := startServer(t, &fakeControl{})
	other := NewServerAt(srv.SocketPath(), &fakeControl{}, nil)
	assert.Error(t, other.Start())
}

func TestServer_StopRemovesSocket(t *testing.T) {
	srv, client := startServer(t, &fakeControl{})
	srv.Stop()
	_, err := os.Stat(srv.SocketPath())
	assert.True(t, os.IsNotExist(err))
	assert.Error(t, client.Ping())
}

func TestClient_NoDaemon(t *testing.T) {
	client := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	err := client.Ping()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is the daemon running")
}

func TestServer_ServeUntilCancelled(t *testing.T) {
	dir, err := os.MkdirTemp("", "adipc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "s.sock")

	srv := NewServerAt(path, &fakeControl{}, nil)
	client := NewClientAt(path)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	require.Eventually(t, func() bool { return client.Ping() == nil }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestServer_ServeReportsStartFailure(t *testing.T) {
	srv, _ := startServer(t, &fakeControl{})
	other := NewServerAt(srv.SocketPath(), &fakeControl{}, nil)
	assert.Error(t, other.Serve(context.Background()))
}
