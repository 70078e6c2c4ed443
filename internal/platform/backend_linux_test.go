//go:build linux

package platform

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/autodock/internal/x11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWatcher struct {
	root      x11.RootHandlers
	rootErr   error
	screenErr error
	rootCalls int
}

func (f *fakeWatcher) WatchRoot(h x11.RootHandlers) error {
	f.rootCalls++
	f.root = h
	return f.rootErr
}

func (f *fakeWatcher) WatchScreen(func()) error {
	return f.screenErr
}

func TestLinuxBackend_SubscribeWithoutRandR(t *testing.T) {
	w := &fakeWatcher{screenErr: errors.New("randr missing")}
	b := &LinuxBackend{watcher: w, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	var screens, moves int
	_, err := b.Subscribe(EventScreen, func(Event) { screens++ })
	require.NoError(t, err)
	_, err = b.Subscribe(EventWindowMoved, func(Event) { moves++ })
	require.NoError(t, err)
	assert.Equal(t, 1, w.rootCalls)

	// _NET_WORKAREA changes still report screen changes.
	w.root.OnScreen()
	w.root.OnConfigure(42)
	assert.Equal(t, 1, screens)
	assert.Equal(t, 1, moves)
}

func TestLinuxBackend_RootSelectionFailureRejectsAll(t *testing.T) {
	w := &fakeWatcher{rootErr: errors.New("bad window")}
	b := &LinuxBackend{watcher: w}

	for _, kind := range AllEventKinds() {
		_, err := b.Subscribe(kind, func(Event) {})
		assert.Error(t, err, kind)
	}
	assert.Equal(t, 1, w.rootCalls)
}
