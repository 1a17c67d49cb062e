// Package tui renders the board in the terminal: the item list kept live by
// the push stream, an inline title editor, and the conflict prompt when a
// remote edit collides with the local one.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskflow/client-go/internal/api"
	"github.com/taskflow/client-go/internal/client"
	"github.com/taskflow/client-go/internal/conflict"
	"github.com/taskflow/client-go/internal/errors"
	"github.com/taskflow/client-go/internal/live"
	"github.com/taskflow/client-go/internal/models"
)

const opTimeout = 10 * time.Second

type mode int

const (
	modeList mode = iota
	modeEdit
	modeCreate
)

type (
	refreshMsg struct{}
	lostMsg    struct{}
	toastMsg   struct{ text string }
)

// Model is the bubbletea model for the board view.
type Model struct {
	cl      *client.Client
	boardID int64

	mode     mode
	items    []models.Item
	cursor   int
	status   live.Status
	conflict *conflict.Descriptor
	input    textinput.Model
	toast    string
	width    int
	height   int
}

// NewModel builds the board view over an opened session.
func NewModel(cl *client.Client, boardID int64) Model {
	input := textinput.New()
	input.CharLimit = 200
	return Model{
		cl:      cl,
		boardID: boardID,
		items:   cl.Items.Items(),
		status:  cl.Live.Status(),
		input:   input,
	}
}

// Run opens the program and bridges cache notifications into it.
func Run(cl *client.Client, boardID int64) error {
	p := tea.NewProgram(NewModel(cl, boardID), tea.WithAltScreen())

	cancels := []func(){
		cl.Items.Changes.Subscribe(func() { p.Send(refreshMsg{}) }),
		cl.Properties.Changes.Subscribe(func() { p.Send(refreshMsg{}) }),
		cl.Live.StatusChanges.Subscribe(func() { p.Send(refreshMsg{}) }),
		cl.Conflicts.Changes.Subscribe(func() { p.Send(refreshMsg{}) }),
	}
	cl.OnConnectionLost(func() { p.Send(lostMsg{}) })
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		m.items = m.cl.Items.Items()
		m.status = m.cl.Live.Status()
		if d, ok := m.cl.Conflicts.Pending(); ok {
			m.conflict = &d
		} else {
			m.conflict = nil
		}
		if m.cursor >= len(m.items) {
			m.cursor = max(0, len(m.items)-1)
		}
		return m, nil

	case lostMsg:
		m.toast = "live connection lost, changes may be stale until restart"
		m.status = m.cl.Live.Status()
		return m, nil

	case toastMsg:
		m.toast = msg.text
		return m, nil

	case tea.KeyMsg:
		if m.conflict != nil {
			return m.updateConflict(msg)
		}
		switch m.mode {
		case modeEdit, modeCreate:
			return m.updateInput(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "n":
		m.mode = modeCreate
		m.input.SetValue("")
		m.input.Placeholder = "new item title"
		m.input.Focus()
	case "e":
		if item, ok := m.selected(); ok {
			m.cl.Session.StartEditing(m.cl.Items, item.ID, nil)
			m.mode = modeEdit
			m.input.SetValue(item.Title)
			m.input.Placeholder = ""
			m.input.Focus()
		}
	case " ":
		if item, ok := m.selected(); ok {
			if item.IsCompleted() {
				return m, m.do(func(ctx context.Context) error {
					_, err := m.cl.ItemSvc.RestoreItem(ctx, m.boardID, item.ID)
					return err
				})
			}
			return m, m.do(func(ctx context.Context) error {
				_, err := m.cl.ItemSvc.CompleteItem(ctx, m.boardID, item.ID)
				return err
			})
		}
	case "d":
		if item, ok := m.selected(); ok {
			return m, m.do(func(ctx context.Context) error {
				return m.cl.ItemSvc.DeleteItem(ctx, m.boardID, item.ID)
			})
		}
	case "r":
		if item, ok := m.selected(); ok && item.IsDeleted() {
			return m, m.do(func(ctx context.Context) error {
				_, err := m.cl.ItemSvc.RestoreItem(ctx, m.boardID, item.ID)
				return err
			})
		}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.mode == modeEdit {
			m.cl.Session.StopEditing()
		}
		m.mode = modeList
		m.input.Blur()
		return m, nil
	case "enter":
		title := m.input.Value()
		m.input.Blur()
		if m.mode == modeCreate {
			m.mode = modeList
			if title == "" {
				return m, nil
			}
			return m, m.do(func(ctx context.Context) error {
				_, err := m.cl.ItemSvc.CreateItem(ctx, m.boardID, api.ItemCreate{Title: title})
				return err
			})
		}
		item, ok := m.selected()
		m.mode = modeList
		if !ok || title == "" {
			m.cl.Session.StopEditing()
			return m, nil
		}
		return m, m.do(func(ctx context.Context) error {
			_, err := m.cl.ItemSvc.UpdateItem(ctx, m.boardID, item.ID, models.ItemPatch{Title: &title})
			m.cl.Session.StopEditing()
			return err
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeEdit {
		title := m.input.Value()
		m.cl.Session.UpdateWorkingCopy(models.ItemPatch{Title: &title})
	}
	return m, cmd
}

func (m Model) updateConflict(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "l":
		m.mode = modeList
		m.input.Blur()
		return m, m.do(func(ctx context.Context) error {
			return m.cl.Conflicts.ResolveKeepLocal(ctx)
		})
	case "s":
		m.mode = modeList
		m.input.Blur()
		return m, m.do(func(ctx context.Context) error {
			return m.cl.Conflicts.ResolveUseServer(ctx)
		})
	case "i":
		return m, m.do(func(ctx context.Context) error {
			return m.cl.Conflicts.ResolveIgnore(ctx)
		})
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// do runs a client operation off the update loop and reports failures on the
// toast line.
func (m Model) do(op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := op(ctx); err != nil {
			return toastMsg{text: errors.Message(err)}
		}
		return toastMsg{text: ""}
	}
}

func (m Model) selected() (models.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return models.Item{}, false
	}
	return m.items[m.cursor], true
}
