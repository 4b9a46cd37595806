package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/dock"
	"github.com/1broseidon/snapdesk/internal/panel"
	"github.com/1broseidon/snapdesk/internal/runtimepath"
	"github.com/1broseidon/snapdesk/internal/theme"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithPath(socketPath)
}

// NewClientWithPath creates a client for the socket at path.
func NewClientWithPath(path string) *Client {
	return &Client{
		socketPath: path,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(ctx context.Context, req *Request) (*Response, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == StatusError {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// call sends command with payload and decodes the response data into out.
// payload and out may be nil.
func (c *Client) call(ctx context.Context, command CommandType, payload, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = raw
	}

	resp, err := c.sendRequest(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// CreatePanel opens a panel and returns its id.
func (c *Client) CreatePanel(ctx context.Context, d panel.Descriptor) (string, error) {
	var data CreatedData
	if err := c.call(ctx, CommandCreatePanel, d, &data); err != nil {
		return "", err
	}
	return data.ID, nil
}

// ListPanels returns every panel, bottom to top.
func (c *Client) ListPanels(ctx context.Context) (*PanelsData, error) {
	var data PanelsData
	if err := c.call(ctx, CommandListPanels, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) panelOp(ctx context.Context, command CommandType, id string) (bool, error) {
	var data ChangedData
	if err := c.call(ctx, command, PanelPayload{ID: id}, &data); err != nil {
		return false, err
	}
	return data.Changed, nil
}

// Focus raises a panel, restoring it if minimized.
func (c *Client) Focus(ctx context.Context, id string) (bool, error) {
	return c.panelOp(ctx, CommandFocus, id)
}

// Minimize hides a panel into the dock.
func (c *Client) Minimize(ctx context.Context, id string) (bool, error) {
	return c.panelOp(ctx, CommandMinimize, id)
}

// Restore brings a panel back from the dock.
func (c *Client) Restore(ctx context.Context, id string) (bool, error) {
	return c.panelOp(ctx, CommandRestore, id)
}

// Close removes a panel.
func (c *Client) Close(ctx context.Context, id string) (bool, error) {
	return c.panelOp(ctx, CommandClose, id)
}

// Snap snaps a panel to region. See SnapPayload for the special regions.
func (c *Client) Snap(ctx context.Context, id, region string) (*ChangedData, error) {
	var data ChangedData
	if err := c.call(ctx, CommandSnap, SnapPayload{ID: id, Region: region}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Pointer forwards a pointer event to the daemon.
func (c *Client) Pointer(ctx context.Context, ev desktop.PointerEvent) (*desktop.Result, error) {
	var res desktop.Result
	if err := c.call(ctx, CommandPointer, ev, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetDock returns the current dock view.
func (c *Client) GetDock(ctx context.Context) (*dock.View, error) {
	var v dock.View
	if err := c.call(ctx, CommandGetDock, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus(ctx context.Context) (*StatusData, error) {
	var status StatusData
	if err := c.call(ctx, CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetTheme applies a theme and returns the theme now in effect.
func (c *Client) SetTheme(ctx context.Context, p SetThemePayload) (*theme.Theme, error) {
	var t theme.Theme
	if err := c.call(ctx, CommandSetTheme, p, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Layouts lists the persist keys with remembered geometry.
func (c *Client) Layouts(ctx context.Context) ([]string, error) {
	var data LayoutsData
	if err := c.call(ctx, CommandListLayouts, nil, &data); err != nil {
		return nil, err
	}
	return data.Keys, nil
}

// Forget drops the geometry remembered under key.
func (c *Client) Forget(ctx context.Context, key string) (bool, error) {
	var data ChangedData
	if err := c.call(ctx, CommandForget, ForgetPayload{Key: key}, &data); err != nil {
		return false, err
	}
	return data.Changed, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload(ctx context.Context) error {
	return c.call(ctx, CommandReload, nil, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.GetStatus(ctx)
	return err
}
