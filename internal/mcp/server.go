package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/snapdesk/internal/ipc"
	"github.com/1broseidon/snapdesk/internal/panel"
)

const (
	ServerName    = "snapdesk"
	ServerVersion = "0.1.0"
)

// Daemon is the daemon API the tools call. *ipc.Client satisfies it.
type Daemon interface {
	CreatePanel(ctx context.Context, d panel.Descriptor) (string, error)
	ListPanels(ctx context.Context) (*ipc.PanelsData, error)
	Focus(ctx context.Context, id string) (bool, error)
	Minimize(ctx context.Context, id string) (bool, error)
	Restore(ctx context.Context, id string) (bool, error)
	Close(ctx context.Context, id string) (bool, error)
	Snap(ctx context.Context, id, region string) (*ipc.ChangedData, error)
}

// Server is the MCP server exposing panel management.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a new MCP server that forwards to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{daemon: daemon, logger: logger}

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
		Name:        "list_panels",
		Description: "List open panels from bottom to top of the stacking order, with geometry, snap state and which one has focus.",
	}, s.handleListPanels)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_panel",
		Description: "Open a new panel. It becomes the topmost focused panel. Returns the panel id.",
	}, s.handleCreatePanel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_panel",
		Description: "Bring a panel to the front and focus it. Minimized panels are restored first.",
	}, s.handleFocusPanel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_panel",
		Description: "Minimize a panel into the dock. Focus moves to the next visible panel.",
	}, s.handleMinimizePanel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_panel",
		Description: "Restore a minimized panel from the dock on top of every other panel.",
	}, s.handleRestorePanel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_panel",
		Description: "Close a panel.",
	}, s.handleClosePanel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_panel",
		Description: "Snap a panel to a screen region (halves, quarters or full). Region none restores the pre-snap geometry; full-toggle toggles between full and the previous state. Widgets cannot be snapped.",
	}, s.handleSnapPanel)
}
