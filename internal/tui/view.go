package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/taskflow/client-go/internal/live"
	"github.com/taskflow/client-go/internal/models"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Strikethrough(true)
	deletedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	toastStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	modalStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("203")).
			Padding(1, 2)

	liveStyles = map[live.Status]lipgloss.Style{
		live.StatusConnected:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		live.StatusConnecting:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		live.StatusError:        lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		live.StatusDisconnected: dimStyle,
	}
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("TaskFlow · board %d", m.boardID)))
	b.WriteString("  ")
	b.WriteString(liveStyles[m.status].Render("● " + string(m.status)))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(dimStyle.Render("no items, press n to create one"))
		b.WriteString("\n")
	}
	for i, item := range m.items {
		b.WriteString(m.renderItem(i, item))
		b.WriteString("\n")
	}

	switch m.mode {
	case modeCreate:
		b.WriteString("\n" + titleStyle.Render("new item") + "\n" + m.input.View() + "\n")
	case modeEdit:
		b.WriteString("\n" + titleStyle.Render("edit title") + "\n" + m.input.View() + "\n")
	}

	if m.toast != "" {
		b.WriteString("\n" + toastStyle.Render(m.toast) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("j/k move · n new · e edit · space complete · d delete · r restore · q quit"))

	view := b.String()
	if m.conflict != nil {
		return view + "\n\n" + m.renderConflict()
	}
	return view
}

func (m Model) renderItem(i int, item models.Item) string {
	marker := "  "
	if i == m.cursor {
		marker = "> "
	}

	line := fmt.Sprintf("%s%-8s %s", marker, item.Priority, item.Title)
	if item.CommentCount > 0 {
		line += dimStyle.Render(fmt.Sprintf(" (%d)", item.CommentCount))
	}

	switch {
	case item.IsDeleted():
		line = deletedStyle.Render(line)
	case item.IsCompleted():
		line = doneStyle.Render(line)
	case i == m.cursor:
		line = selectedStyle.Render(line)
	}
	if days := item.OverdueDays(time.Now()); days > 0 {
		line += overdueStyle.Render(fmt.Sprintf("  %dd overdue", days))
	}
	return line
}

func (m Model) renderConflict() string {
	d := m.conflict
	body := fmt.Sprintf(
		"%s\n\n%s edited this item while you were editing it.\n\n  your title:   %s\n  their title:  %s\n\n%s",
		titleStyle.Render("Edit conflict"),
		displayName(d.UpdatedBy),
		d.Local.Title,
		d.Remote.Title,
		dimStyle.Render("l keep yours · s take theirs · i decide later"),
	)
	return modalStyle.Render(body)
}

func displayName(name string) string {
	if name == "" {
		return "Someone else"
	}
	return name
}
