package mcp

import (
	"time"

	"github.com/1broseidon/autodock/internal/daemon"
	"github.com/1broseidon/autodock/internal/platform"
)

// StatusInput is the input for the dock_status tool.
type StatusInput struct{}

// StatusOutput is the output for the dock_status tool.
type StatusOutput struct {
	Running      bool             `json:"running"`
	State        string           `json:"state"`
	Backend      string           `json:"backend"`
	DryRun       bool             `json:"dry_run"`
	DockRect     platform.Rect    `json:"dock_rect"`
	DockSource   string           `json:"dock_source"`
	Transitions  int              `json:"transitions"`
	LastDecision *ReconcileOutput `json:"last_decision,omitempty"`
}

// StartInput is the input for the dock_start tool.
type StartInput struct{}

// StopInput is the input for the dock_stop tool.
type StopInput struct{}

// ControlOutput is returned by dock_start and dock_stop.
type ControlOutput struct {
	Running bool   `json:"running"`
	State   string `json:"state"`
}

// ReconcileInput is the input for the dock_reconcile tool.
type ReconcileInput struct {
	RefreshGeometry bool `json:"refresh_geometry,omitempty" jsonschema:"Re-measure the dock before deciding (default: false)"`
}

// ReconcileOutput is the output for the dock_reconcile tool.
type ReconcileOutput struct {
	Desired    string        `json:"desired"`
	Reason     string        `json:"reason"`
	Changed    bool          `json:"changed"`
	Frontmost  string        `json:"frontmost,omitempty"`
	DockRect   platform.Rect `json:"dock_rect"`
	DockSource string        `json:"dock_source"`
	At         string        `json:"at,omitempty"`
}

func decisionOutput(d daemon.Decision) ReconcileOutput {
	out := ReconcileOutput{
		Desired:    d.Desired,
		Reason:     string(d.Reason),
		Changed:    d.Changed,
		Frontmost:  d.Frontmost,
		DockRect:   d.DockRect,
		DockSource: string(d.DockSource),
	}
	if !d.At.IsZero() {
		out.At = d.At.Format(time.RFC3339)
	}
	return out
}
