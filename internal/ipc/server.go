package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/dock"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/panel"
	"github.com/1broseidon/snapdesk/internal/runtimepath"
	"github.com/1broseidon/snapdesk/internal/theme"
	"github.com/1broseidon/snapdesk/internal/wm"
)

// Layouts lists and drops remembered panel geometry.
type Layouts interface {
	Remembered(ctx context.Context) ([]string, error)
	Forget(ctx context.Context, key string) (bool, error)
}

// Services are the daemon components the server drives. Everything but WM
// is optional.
type Services struct {
	WM      *wm.Manager
	Dock    *dock.Controller
	Desktop *desktop.Desktop
	Theme   *theme.Applier
	Layouts Layouts
	// Reload re-reads the configuration and applies it.
	Reload func(ctx context.Context) error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	listener   net.Listener
	svc        Services
	logger     *slog.Logger
	startTime  time.Time

	baseCtx      context.Context
	cancel       context.CancelFunc
	conns        sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. An empty socketPath uses the default
// runtime location.
func NewServer(socketPath string, svc Services, logger *slog.Logger) (*Server, error) {
	if svc.WM == nil {
		return nil, errors.New("ipc server requires a window manager")
	}
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		socketPath: socketPath,
		svc:        svc,
		logger:     logger.With("component", "ipc"),
		startTime:  time.Now(),
		baseCtx:    ctx,
		cancel:     cancel,
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()
	return nil
}

// Run starts the server and stops it when ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection serves exactly one request.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.writeResponse(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	s.writeResponse(conn, s.HandleRequest(s.baseCtx, req))
}

func (s *Server) writeResponse(conn net.Conn, resp *Response) {
	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// HandleRequest processes an IPC command and returns a response.
func (s *Server) HandleRequest(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)
	switch req.Command {
	case CommandCreatePanel:
		return s.handleCreatePanel(req.Payload)
	case CommandListPanels:
		return ok(PanelsData{Panels: s.svc.WM.Panels(), Focused: s.svc.WM.Focused()})
	case CommandFocus:
		return s.withPanel(req.Payload, s.focus)
	case CommandMinimize:
		return s.withPanel(req.Payload, s.minimize)
	case CommandRestore:
		return s.withPanel(req.Payload, s.restore)
	case CommandClose:
		return s.withPanel(req.Payload, s.svc.WM.Close)
	case CommandSnap:
		return s.handleSnap(req.Payload)
	case CommandPointer:
		return s.handlePointer(ctx, req.Payload)
	case CommandGetDock:
		return s.handleGetDock()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandSetTheme:
		return s.handleSetTheme(ctx, req.Payload)
	case CommandReload:
		return s.handleReload(ctx)
	case CommandListLayouts:
		return s.handleListLayouts(ctx)
	case CommandForget:
		return s.handleForget(ctx, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func decodePayload(payload json.RawMessage, out any) error {
	if len(payload) == 0 {
		return errors.New("payload is required")
	}
	return json.Unmarshal(payload, out)
}

func (s *Server) handleCreatePanel(payload json.RawMessage) *Response {
	var d panel.Descriptor
	if err := decodePayload(payload, &d); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid create payload: %v", err))
	}
	id, err := s.svc.WM.CreatePanel(d)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to create panel: %v", err))
	}
	return ok(CreatedData{ID: id})
}

func (s *Server) withPanel(payload json.RawMessage, op func(id string) bool) *Response {
	var req PanelPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid panel payload: %v", err))
	}
	if req.ID == "" {
		return NewErrorResponse("id is required")
	}
	return ok(ChangedData{Changed: op(req.ID)})
}

// focus raises id, restoring it first when it is minimized.
func (s *Server) focus(id string) bool {
	if p, found := s.svc.WM.Panel(id); found && p.Minimized {
		return s.restore(id)
	}
	return s.svc.WM.BringToFront(id)
}

func (s *Server) minimize(id string) bool {
	if s.svc.Dock != nil {
		return s.svc.Dock.Minimize(id)
	}
	return s.svc.WM.Minimize(id)
}

func (s *Server) restore(id string) bool {
	if s.svc.Dock != nil {
		return s.svc.Dock.Restore(id)
	}
	return s.svc.WM.Restore(id)
}

func (s *Server) handleSnap(payload json.RawMessage) *Response {
	var req SnapPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid snap payload: %v", err))
	}
	if req.ID == "" {
		return NewErrorResponse("id is required")
	}

	if req.Region == RegionToggleFull {
		region, changed := s.svc.WM.ToggleFullSnap(req.ID)
		return ok(ChangedData{Changed: changed, Region: region})
	}
	region, err := geometry.ParseRegion(req.Region)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	if region == geometry.RegionNone {
		_, changed := s.svc.WM.Unsnap(req.ID)
		return ok(ChangedData{Changed: changed, Region: region})
	}
	return ok(ChangedData{Changed: s.svc.WM.Snap(req.ID, region), Region: region})
}

func (s *Server) handlePointer(ctx context.Context, payload json.RawMessage) *Response {
	if s.svc.Desktop == nil {
		return NewErrorResponse("pointer input is not available")
	}
	var ev desktop.PointerEvent
	if err := decodePayload(payload, &ev); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid pointer payload: %v", err))
	}
	if _, err := desktop.ParsePointerType(string(ev.Type)); err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(s.svc.Desktop.Dispatch(ctx, ev))
}

func (s *Server) handleListLayouts(ctx context.Context) *Response {
	if s.svc.Layouts == nil {
		return NewErrorResponse("layout store is not available")
	}
	keys, err := s.svc.Layouts.Remembered(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list layouts: %v", err))
	}
	if keys == nil {
		keys = []string{}
	}
	return ok(LayoutsData{Keys: keys})
}

func (s *Server) handleForget(ctx context.Context, payload json.RawMessage) *Response {
	if s.svc.Layouts == nil {
		return NewErrorResponse("layout store is not available")
	}
	var req ForgetPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid forget payload: %v", err))
	}
	if req.Key == "" {
		return NewErrorResponse("key is required")
	}
	forgot, err := s.svc.Layouts.Forget(ctx, req.Key)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to forget layout: %v", err))
	}
	return ok(ChangedData{Changed: forgot})
}

func (s *Server) handleGetDock() *Response {
	if s.svc.Dock == nil {
		return NewErrorResponse("dock is not available")
	}
	return ok(s.svc.Dock.View())
}

func (s *Server) handleGetStatus() *Response {
	panels := s.svc.WM.Panels()
	minimized := 0
	for _, p := range panels {
		if p.Minimized {
			minimized++
		}
	}
	status := StatusData{
		PanelCount:    len(panels),
		Visible:       len(panels) - minimized,
		Minimized:     minimized,
		Focused:       s.svc.WM.Focused(),
		TopZIndex:     s.svc.WM.TopZIndex(),
		Viewport:      s.svc.WM.Viewport(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}
	if s.svc.Theme != nil {
		status.Theme = s.svc.Theme.Current().Name
	}
	return ok(status)
}

func (s *Server) handleSetTheme(ctx context.Context, payload json.RawMessage) *Response {
	if s.svc.Theme == nil {
		return NewErrorResponse("theming is not available")
	}
	var req SetThemePayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid theme payload: %v", err))
	}

	var t theme.Theme
	switch {
	case req.Theme != nil:
		t = *req.Theme
	case req.Accent != "":
		name := req.Name
		if name == "" {
			name = "custom"
		}
		derived, err := theme.Derive(name, req.Accent)
		if err != nil {
			return NewErrorResponse(err.Error())
		}
		t = derived
	default:
		return NewErrorResponse("theme or accent is required")
	}

	if err := s.svc.Theme.Set(ctx, t); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to set theme: %v", err))
	}
	return ok(s.svc.Theme.Current())
}

func (s *Server) handleReload(ctx context.Context) *Response {
	if s.svc.Reload == nil {
		return NewErrorResponse("reload is not available")
	}
	s.logger.Info("received RELOAD command")
	if err := s.svc.Reload(ctx); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	return ok(nil)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.cancel()
	s.conns.Wait()
	os.Remove(s.socketPath)
}
