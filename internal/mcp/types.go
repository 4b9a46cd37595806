package mcp

// ListPanelsInput is the input for the list_panels tool.
type ListPanelsInput struct {
	IncludeMinimized *bool `json:"include_minimized,omitempty" jsonschema:"Include minimized panels (default: true)"`
}

// PanelInfo describes a single panel.
type PanelInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Kind      string `json:"kind"`
	Minimized bool   `json:"minimized"`
	Focused   bool   `json:"focused"`
	ZIndex    int    `json:"z_index"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SnapState string `json:"snap_state"`
}

// ListPanelsOutput is the output for the list_panels tool.
type ListPanelsOutput struct {
	Panels  []PanelInfo `json:"panels"`
	Focused string      `json:"focused,omitempty"`
}

// CreatePanelInput is the input for the create_panel tool.
type CreatePanelInput struct {
	Title      string `json:"title" jsonschema:"Panel title shown in the header and the dock"`
	Kind       string `json:"kind,omitempty" jsonschema:"One of standard, widget, browser, file-manager, editor, control-panel (default: standard)"`
	Icon       string `json:"icon,omitempty" jsonschema:"Icon name shown in the dock"`
	PersistKey string `json:"persist_key,omitempty" jsonschema:"Key under which the panel geometry is remembered across sessions"`
	Width      int    `json:"width,omitempty" jsonschema:"Initial width in pixels; clamped to the panel minimum"`
	Height     int    `json:"height,omitempty" jsonschema:"Initial height in pixels; clamped to the panel minimum"`
	X          *int   `json:"x,omitempty" jsonschema:"Left edge; when x and y are omitted the panel is centered and cascaded"`
	Y          *int   `json:"y,omitempty" jsonschema:"Top edge"`
}

// CreatePanelOutput is the output for the create_panel tool.
type CreatePanelOutput struct {
	ID string `json:"id"`
}

// PanelIDInput targets one panel.
type PanelIDInput struct {
	ID string `json:"id" jsonschema:"Panel id as returned by create_panel or list_panels"`
}

// PanelActionOutput reports whether an action changed anything.
type PanelActionOutput struct {
	ID      string `json:"id"`
	Changed bool   `json:"changed"`
}

// SnapPanelInput is the input for the snap_panel tool.
type SnapPanelInput struct {
	ID     string `json:"id" jsonschema:"Panel id"`
	Region string `json:"region" jsonschema:"One of left, right, top-left, top-right, bottom-left, bottom-right, full, none, full-toggle"`
}

// SnapPanelOutput is the output for the snap_panel tool.
type SnapPanelOutput struct {
	ID      string `json:"id"`
	Region  string `json:"region"`
	Changed bool   `json:"changed"`
}
