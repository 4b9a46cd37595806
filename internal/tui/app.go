package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/snapdesk/internal/dock"
	"github.com/1broseidon/snapdesk/internal/ipc"
	"github.com/1broseidon/snapdesk/internal/panel"
)

// Daemon is the daemon API the viewer uses. *ipc.Client satisfies it.
type Daemon interface {
	CreatePanel(ctx context.Context, d panel.Descriptor) (string, error)
	ListPanels(ctx context.Context) (*ipc.PanelsData, error)
	GetDock(ctx context.Context) (*dock.View, error)
	GetStatus(ctx context.Context) (*ipc.StatusData, error)
	Focus(ctx context.Context, id string) (bool, error)
	Minimize(ctx context.Context, id string) (bool, error)
	Restore(ctx context.Context, id string) (bool, error)
	Close(ctx context.Context, id string) (bool, error)
	Snap(ctx context.Context, id, region string) (*ipc.ChangedData, error)
}

const refreshInterval = time.Second

// snapshotMsg carries a fresh copy of the daemon state.
type snapshotMsg struct {
	status *ipc.StatusData
	panels *ipc.PanelsData
	dock   *dock.View
	err    error
}

// tickMsg triggers a periodic refresh.
type tickMsg time.Time

// actionMsg reports the outcome of a user action.
type actionMsg struct {
	what string
	err  error
}

// panelItem is a list item for one panel.
type panelItem struct {
	p *panel.Panel
}

func (i panelItem) Title() string {
	if i.p.Focused {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●") + " " + i.p.Title
	}
	return "  " + i.p.Title
}

func (i panelItem) Description() string {
	state := string(i.p.SnapState)
	if i.p.Minimized {
		state = "minimized"
	}
	return fmt.Sprintf("%s | %s | %s | z=%d | %s", i.p.ID, i.p.Kind, i.p.Geometry, i.p.ZIndex, state)
}

func (i panelItem) FilterValue() string { return i.p.Title }

// dockItem is a list item for one minimized panel.
type dockItem struct {
	item dock.Item
}

func (i dockItem) Title() string { return i.item.Title }

func (i dockItem) Description() string {
	if i.item.Icon == "" {
		return i.item.ID
	}
	return i.item.ID + " | " + i.item.Icon
}

func (i dockItem) FilterValue() string { return i.item.Title }

func newList() list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

// model is the root bubbletea model for the TUI.
type model struct {
	daemon  Daemon
	timeout time.Duration

	activeTab Tab
	panels    list.Model
	dock      list.Model

	status *ipc.StatusData
	view   dock.View
	notice string
	err    error

	form     *huh.Form
	newPanel *panelForm

	width  int
	height int
}

func newModel(d Daemon) model {
	return model{
		daemon:    d,
		activeTab: TabPanels,
		timeout:   2 * time.Second,
		panels:    newList(),
		dock:      newList(),
	}
}

func (m model) fetch() tea.Cmd {
	d, timeout := m.daemon, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		status, err := d.GetStatus(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		panels, err := d.ListPanels(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		view, err := d.GetDock(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{status: status, panels: panels, dock: view}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// act runs op against the daemon. The resulting actionMsg triggers a refresh.
func (m model) act(what string, op func(ctx context.Context) error) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return actionMsg{what: what, err: op(ctx)}
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetch(), tick())

	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = nil
			return m, nil
		}
		m.err = nil
		m.status = msg.status
		m.view = *msg.dock
		return m, tea.Batch(
			m.panels.SetItems(panelItems(msg.panels.Panels)),
			m.dock.SetItems(dockItems(m.view.Items)),
		)

	case actionMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("%s failed: %v", msg.what, msg.err)
		} else {
			m.notice = msg.what
		}
		return m, m.fetch()

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.handleKey(msg)
	}
	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		m.activeTab = (m.activeTab + 1) % tabCount
		return m, nil
	case "shift+tab":
		m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		return m, nil
	case "1":
		m.activeTab = TabPanels
		return m, nil
	case "2":
		m.activeTab = TabDock
		return m, nil
	case "n":
		if m.activeTab == TabPanels {
			return m.openPanelForm()
		}
	}

	if cmd, handled := m.actionKey(msg.String()); handled {
		return m, cmd
	}

	var cmd tea.Cmd
	if m.activeTab == TabDock {
		m.dock, cmd = m.dock.Update(msg)
	} else {
		m.panels, cmd = m.panels.Update(msg)
	}
	return m, cmd
}

// actionKey maps a key to a daemon call on the selected row. Keys that mean
// something on the active tab are reported as handled even with no selection.
func (m model) actionKey(key string) (tea.Cmd, bool) {
	var keys string
	if m.activeTab == TabDock {
		keys = "enter r x"
	} else {
		keys = "enter m x f h l u"
	}
	if !slices.Contains(strings.Fields(keys), key) {
		return nil, false
	}

	id, ok := m.selectedID()
	if !ok {
		return nil, true
	}
	d := m.daemon
	changed := func(what string, op func(context.Context, string) (bool, error)) tea.Cmd {
		return m.act(what+" "+id, func(ctx context.Context) error {
			_, err := op(ctx, id)
			return err
		})
	}
	snap := func(region string) tea.Cmd {
		return m.act("snap "+id+" "+region, func(ctx context.Context) error {
			_, err := d.Snap(ctx, id, region)
			return err
		})
	}

	if m.activeTab == TabDock {
		if key == "x" {
			return changed("close", d.Close), true
		}
		return changed("restore", d.Restore), true
	}

	switch key {
	case "enter":
		return changed("focus", d.Focus), true
	case "m":
		return changed("minimize", d.Minimize), true
	case "x":
		return changed("close", d.Close), true
	case "f":
		return snap(ipc.RegionToggleFull), true
	case "h":
		return snap("left"), true
	case "l":
		return snap("right"), true
	default:
		return snap("none"), true
	}
}

// panelItems lists panels top first; the daemon reports them bottom to top.
func panelItems(panels []*panel.Panel) []list.Item {
	items := make([]list.Item, len(panels))
	for i, p := range panels {
		items[len(panels)-1-i] = panelItem{p: p}
	}
	return items
}

func dockItems(in []dock.Item) []list.Item {
	items := make([]list.Item, 0, len(in))
	for _, it := range in {
		items = append(items, dockItem{item: it})
	}
	return items
}

func (m model) selectedID() (string, bool) {
	if m.activeTab == TabDock {
		if it, ok := m.dock.SelectedItem().(dockItem); ok {
			return it.item.ID, true
		}
		return "", false
	}
	if it, ok := m.panels.SelectedItem().(panelItem); ok {
		return it.p.ID, true
	}
	return "", false
}

// resizeLists gives the lists the space between the bars.
func (m *model) resizeLists() {
	h := m.height - 6
	if h < 1 {
		h = 1
	}
	m.panels.SetSize(m.width, h)
	m.dock.SetSize(m.width, h)
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.activeTab, m.width)

	var content string
	switch {
	case m.form != nil:
		content = m.form.View()
	case m.err != nil:
		content = errorStyle.Render("cannot reach daemon: " + m.err.Error())
	case m.activeTab == TabDock:
		content = m.renderDock()
	default:
		content = m.renderPanels()
	}
	if m.notice != "" {
		content += "\n\n" + dimStyle.Render(m.notice)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}

func (m model) renderPanels() string {
	if len(m.panels.Items()) == 0 {
		return dimStyle.Render("No panels open")
	}
	return m.panels.View()
}

func (m model) renderDock() string {
	if m.view.Hidden {
		msg := "Dock is empty"
		if m.view.EmptyDesktop {
			msg += " (no panels open)"
		}
		return dimStyle.Render(msg)
	}
	out := m.dock.View()
	if m.view.EmptyDesktop {
		out += "\n\n" + dimStyle.Render("Every panel is minimized")
	}
	return out
}
