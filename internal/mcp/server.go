// Package mcp exposes the daemon's control surface as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/autodock/internal/ipc"
)

const (
	ServerName    = "autodock"
	ServerVersion = "0.1.0"
)

// Client is the subset of the IPC client the tools use.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	Start() error
	Stop() error
	Reconcile() (*ipc.DecisionData, error)
	RefreshGeometry() (*ipc.GeometryData, error)
}

// Server is the MCP server. Every tool forwards to the running daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	client    Client
}

// NewServer creates an MCP server talking to the daemon through client.
func NewServer(client Client) *Server {
	if client == nil {
		client = ipc.NewClient()
	}
	s := &Server{client: client}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "dock_status",
		Description: "Report whether autodock is managing the dock, the dock's current visibility, its measured geometry and the last decision.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "dock_start",
		Description: "Resume automatic dock hiding. Runs one reconciliation immediately.",
	}, s.handleStart)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "dock_stop",
		Description: "Pause automatic dock hiding. With restore_on_stop enabled the dock is shown.",
	}, s.handleStop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "dock_reconcile",
		Description: "Re-evaluate the frontmost window now and hide or show the dock accordingly. Fails while autodock is paused.",
	}, s.handleReconcile)
}

func (s *Server) status() (*ipc.StatusData, error) {
	st, err := s.client.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("autodock daemon unavailable: %w", err)
	}
	return st, nil
}
