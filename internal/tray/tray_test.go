package tray

import (
	"errors"
	"testing"

	"github.com/1broseidon/autodock/internal/daemon"
	"github.com/1broseidon/autodock/internal/dock"
	"github.com/1broseidon/autodock/internal/ipc"
	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name   string
		status *ipc.StatusData
		err    error
		want   view
	}{
		{
			name: "daemon down",
			err:  errors.New("connection refused"),
			want: view{Title: "Daemon not running", Tooltip: "autodock: daemon not running"},
		},
		{
			name:   "paused",
			status: &ipc.StatusData{Status: daemon.Status{Running: false}},
			want:   view{Title: "Paused", Tooltip: "autodock: paused", Connected: true},
		},
		{
			name: "hidden with decision",
			status: &ipc.StatusData{Status: daemon.Status{
				Running:      true,
				State:        "hidden",
				StateKnown:   true,
				LastDecision: &daemon.Decision{Reason: dock.ReasonMaximized, Frontmost: "mpv"},
			}},
			want: view{
				Title:     "Dock hidden",
				Tooltip:   "autodock: dock hidden (maximized)\nFrontmost: mpv",
				Running:   true,
				Connected: true,
			},
		},
		{
			name: "unknown state in dry run",
			status: &ipc.StatusData{
				Status: daemon.Status{Running: true, State: "shown"},
				DryRun: true,
			},
			want: view{
				Title:     "Dock unknown [dry run]",
				Tooltip:   "autodock: dock unknown",
				Running:   true,
				Connected: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.status, tt.err))
		})
	}
}
