package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.status()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	out := StatusOutput{
		Running:     st.Running,
		State:       st.State,
		Backend:     st.Backend,
		DryRun:      st.DryRun,
		DockRect:    st.DockRect,
		DockSource:  string(st.DockSource),
		Transitions: st.Transitions,
	}
	if st.LastDecision != nil {
		d := decisionOutput(*st.LastDecision)
		out.LastDecision = &d
	}
	return nil, out, nil
}

func (s *Server) handleStart(_ context.Context, _ *mcpsdk.CallToolRequest, _ StartInput) (*mcpsdk.CallToolResult, ControlOutput, error) {
	if err := s.client.Start(); err != nil {
		return nil, ControlOutput{}, fmt.Errorf("start failed: %w", err)
	}
	return s.controlResult()
}

func (s *Server) handleStop(_ context.Context, _ *mcpsdk.CallToolRequest, _ StopInput) (*mcpsdk.CallToolResult, ControlOutput, error) {
	if err := s.client.Stop(); err != nil {
		return nil, ControlOutput{}, fmt.Errorf("stop failed: %w", err)
	}
	return s.controlResult()
}

func (s *Server) controlResult() (*mcpsdk.CallToolResult, ControlOutput, error) {
	st, err := s.status()
	if err != nil {
		return nil, ControlOutput{}, err
	}
	out := ControlOutput{Running: st.Running, State: st.State}
	verb := "paused"
	if st.Running {
		verb = "running"
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("autodock %s, dock %s", verb, st.State)},
		},
	}, out, nil
}

func (s *Server) handleReconcile(_ context.Context, _ *mcpsdk.CallToolRequest, args ReconcileInput) (*mcpsdk.CallToolResult, ReconcileOutput, error) {
	if args.RefreshGeometry {
		if _, err := s.client.RefreshGeometry(); err != nil {
			return nil, ReconcileOutput{}, fmt.Errorf("refresh geometry failed: %w", err)
		}
	}
	d, err := s.client.Reconcile()
	if err != nil {
		return nil, ReconcileOutput{}, fmt.Errorf("reconcile failed: %w", err)
	}
	return nil, decisionOutput(*d), nil
}
