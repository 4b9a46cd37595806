package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/1broseidon/snapdesk/internal/panel"
)

// panelForm holds the values bound to the new-panel form. It lives on the
// heap so copies of the model share it.
type panelForm struct {
	title string
	kind  string
	icon  string
}

var formKinds = []panel.Kind{
	panel.KindStandard,
	panel.KindWidget,
	panel.KindBrowser,
	panel.KindFileManager,
	panel.KindEditor,
	panel.KindControlPanel,
}

// openPanelForm starts the new-panel form.
func (m model) openPanelForm() (model, tea.Cmd) {
	pf := &panelForm{kind: string(panel.KindStandard)}

	kindOpts := make([]huh.Option[string], 0, len(formKinds))
	for _, k := range formKinds {
		kindOpts = append(kindOpts, huh.NewOption(string(k), string(k)))
	}

	w := m.width - 4
	if w < 40 {
		w = 40
	}

	m.newPanel = pf
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("title").
				Title("Title").
				Description("Shown in the panel header and the dock").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title is required")
					}
					return nil
				}).
				Value(&pf.title),

			huh.NewSelect[string]().
				Key("kind").
				Title("Kind").
				Description("Widgets are small and may be resized below the standard minimum").
				Options(kindOpts...).
				Value(&pf.kind),

			huh.NewInput().
				Key("icon").
				Title("Icon").
				Description("Optional icon name for the dock").
				Value(&pf.icon),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	return m, m.form.Init()
}

// updateForm routes msg to the open form.
func (m model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.form = nil
		m.newPanel = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		create := m.submitPanelForm()
		m.form = nil
		m.newPanel = nil
		return m, create
	case huh.StateAborted:
		m.form = nil
		m.newPanel = nil
		return m, nil
	}
	return m, cmd
}

// submitPanelForm creates the panel the form describes.
func (m model) submitPanelForm() tea.Cmd {
	pf := m.newPanel
	d := panel.Descriptor{
		Title: strings.TrimSpace(pf.title),
		Kind:  panel.Kind(pf.kind),
		Icon:  strings.TrimSpace(pf.icon),
	}
	daemon := m.daemon
	return m.act("create "+d.Title, func(ctx context.Context) error {
		_, err := daemon.CreatePanel(ctx, d)
		return err
	})
}
