package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/ipc"
	"github.com/1broseidon/snapdesk/internal/panel"
)

func (s *Server) handleListPanels(ctx context.Context, _ *mcpsdk.CallToolRequest, args ListPanelsInput) (*mcpsdk.CallToolResult, ListPanelsOutput, error) {
	data, err := s.daemon.ListPanels(ctx)
	if err != nil {
		return nil, ListPanelsOutput{}, fmt.Errorf("list panels: %w", err)
	}
	includeMinimized := args.IncludeMinimized == nil || *args.IncludeMinimized

	out := ListPanelsOutput{Panels: make([]PanelInfo, 0, len(data.Panels)), Focused: data.Focused}
	for _, p := range data.Panels {
		if p.Minimized && !includeMinimized {
			continue
		}
		out.Panels = append(out.Panels, panelInfo(p))
	}
	s.logger.Debug("list_panels", "count", len(out.Panels))
	return nil, out, nil
}

func panelInfo(p *panel.Panel) PanelInfo {
	return PanelInfo{
		ID:        p.ID,
		Title:     p.Title,
		Kind:      string(p.Kind),
		Minimized: p.Minimized,
		Focused:   p.Focused,
		ZIndex:    p.ZIndex,
		X:         p.Geometry.Left,
		Y:         p.Geometry.Top,
		Width:     p.Geometry.Width,
		Height:    p.Geometry.Height,
		SnapState: string(p.SnapState),
	}
}

func (s *Server) handleCreatePanel(ctx context.Context, _ *mcpsdk.CallToolRequest, args CreatePanelInput) (*mcpsdk.CallToolResult, CreatePanelOutput, error) {
	if strings.TrimSpace(args.Title) == "" {
		return nil, CreatePanelOutput{}, fmt.Errorf("title is required")
	}
	kind, err := panel.ParseKind(args.Kind)
	if err != nil {
		return nil, CreatePanelOutput{}, err
	}
	if (args.X == nil) != (args.Y == nil) {
		return nil, CreatePanelOutput{}, fmt.Errorf("x and y must be given together")
	}

	d := panel.Descriptor{
		Title:      args.Title,
		Kind:       kind,
		Icon:       args.Icon,
		PersistKey: args.PersistKey,
		Width:      args.Width,
		Height:     args.Height,
	}
	if args.X != nil {
		d.Position = &geometry.Point{X: *args.X, Y: *args.Y}
	}

	id, err := s.daemon.CreatePanel(ctx, d)
	if err != nil {
		return nil, CreatePanelOutput{}, fmt.Errorf("create panel: %w", err)
	}
	s.logger.Info("create_panel", "id", id, "title", d.Title, "kind", d.Kind)
	return nil, CreatePanelOutput{ID: id}, nil
}

// panelAction adapts a daemon call on one panel into a tool handler.
func (s *Server) panelAction(name string, op func(context.Context, string) (bool, error)) func(context.Context, *mcpsdk.CallToolRequest, PanelIDInput) (*mcpsdk.CallToolResult, PanelActionOutput, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, args PanelIDInput) (*mcpsdk.CallToolResult, PanelActionOutput, error) {
		if args.ID == "" {
			return nil, PanelActionOutput{}, fmt.Errorf("id is required")
		}
		changed, err := op(ctx, args.ID)
		if err != nil {
			return nil, PanelActionOutput{}, fmt.Errorf("%s: %w", name, err)
		}
		s.logger.Debug(name, "id", args.ID, "changed", changed)
		return nil, PanelActionOutput{ID: args.ID, Changed: changed}, nil
	}
}

func (s *Server) handleFocusPanel(ctx context.Context, req *mcpsdk.CallToolRequest, args PanelIDInput) (*mcpsdk.CallToolResult, PanelActionOutput, error) {
	return s.panelAction("focus_panel", s.daemon.Focus)(ctx, req, args)
}

func (s *Server) handleMinimizePanel(ctx context.Context, req *mcpsdk.CallToolRequest, args PanelIDInput) (*mcpsdk.CallToolResult, PanelActionOutput, error) {
	return s.panelAction("minimize_panel", s.daemon.Minimize)(ctx, req, args)
}

func (s *Server) handleRestorePanel(ctx context.Context, req *mcpsdk.CallToolRequest, args PanelIDInput) (*mcpsdk.CallToolResult, PanelActionOutput, error) {
	return s.panelAction("restore_panel", s.daemon.Restore)(ctx, req, args)
}

func (s *Server) handleClosePanel(ctx context.Context, req *mcpsdk.CallToolRequest, args PanelIDInput) (*mcpsdk.CallToolResult, PanelActionOutput, error) {
	return s.panelAction("close_panel", s.daemon.Close)(ctx, req, args)
}

func (s *Server) handleSnapPanel(ctx context.Context, _ *mcpsdk.CallToolRequest, args SnapPanelInput) (*mcpsdk.CallToolResult, SnapPanelOutput, error) {
	if args.ID == "" {
		return nil, SnapPanelOutput{}, fmt.Errorf("id is required")
	}
	region := strings.ToLower(strings.TrimSpace(args.Region))
	if region != ipc.RegionToggleFull {
		if _, err := geometry.ParseRegion(region); err != nil {
			return nil, SnapPanelOutput{}, err
		}
	}

	res, err := s.daemon.Snap(ctx, args.ID, region)
	if err != nil {
		return nil, SnapPanelOutput{}, fmt.Errorf("snap_panel: %w", err)
	}
	out := SnapPanelOutput{ID: args.ID, Region: string(res.Region), Changed: res.Changed}
	if out.Region == "" {
		out.Region = region
	}
	return nil, out, nil
}
