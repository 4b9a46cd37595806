package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/panel"
	"github.com/1broseidon/snapdesk/internal/theme"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandCreatePanel CommandType = "CREATE_PANEL"
	CommandListPanels  CommandType = "LIST_PANELS"
	CommandFocus       CommandType = "FOCUS"
	CommandMinimize    CommandType = "MINIMIZE"
	CommandRestore     CommandType = "RESTORE"
	CommandClose       CommandType = "CLOSE"
	CommandSnap        CommandType = "SNAP"
	CommandPointer     CommandType = "POINTER"
	CommandGetDock     CommandType = "GET_DOCK"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandSetTheme    CommandType = "SET_THEME"
	CommandReload      CommandType = "RELOAD"
	CommandListLayouts CommandType = "LIST_LAYOUTS"
	CommandForget      CommandType = "FORGET_LAYOUT"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	PanelCount    int           `json:"panel_count"`
	Visible       int           `json:"visible"`
	Minimized     int           `json:"minimized"`
	Focused       string        `json:"focused,omitempty"`
	TopZIndex     int           `json:"top_z_index"`
	Viewport      geometry.Size `json:"viewport"`
	Theme         string        `json:"theme"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	DaemonRunning bool          `json:"daemon_running"`
}

// PanelsData is returned by LIST_PANELS, bottom to top.
type PanelsData struct {
	Panels  []*panel.Panel `json:"panels"`
	Focused string         `json:"focused,omitempty"`
}

// CreatedData is returned by CREATE_PANEL.
type CreatedData struct {
	ID string `json:"id"`
}

// PanelPayload names the target of FOCUS, MINIMIZE, RESTORE and CLOSE.
type PanelPayload struct {
	ID string `json:"id"`
}

// SnapPayload is the payload for SNAP. Region "full-toggle" toggles the
// maximized state; "none" unsnaps.
type SnapPayload struct {
	ID     string `json:"id"`
	Region string `json:"region"`
}

// RegionToggleFull asks SNAP to toggle between full and the saved rect.
const RegionToggleFull = "full-toggle"

// ChangedData reports whether a panel operation did anything. Unknown or
// ineligible panels are not errors.
type ChangedData struct {
	Changed bool            `json:"changed"`
	Region  geometry.Region `json:"region,omitempty"`
}

// LayoutsData is returned by LIST_LAYOUTS: the persist keys that have a
// remembered rect.
type LayoutsData struct {
	Keys []string `json:"keys"`
}

// ForgetPayload names the persist key FORGET_LAYOUT drops.
type ForgetPayload struct {
	Key string `json:"key"`
}

// SetThemePayload selects a theme. Either Theme is given in full, or Accent
// is set and the theme is derived from it.
type SetThemePayload struct {
	Theme  *theme.Theme `json:"theme,omitempty"`
	Name   string       `json:"name,omitempty"`
	Accent string       `json:"accent,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
