package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LogListView ViewState = iota
	DetailView
)

// LogSource supplies job history for the browser. An empty user ID scopes
// the listing to all users.
type LogSource interface {
	List(userID string, limit int) ([]*models.JobLog, error)
}

// Model represents the TUI application state.
type Model struct {
	view     ViewState
	source   LogSource
	userID   string
	limit    int
	width    int
	height   int
	logList  list.Model
	selected *models.JobLog
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model reading from the given log source.
func NewModel(source LogSource, userID string, limit int) *Model {
	return &Model{
		view:   LogListView,
		source: source,
		userID: userID,
		limit:  limit,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by fetching the job history.
func (m *Model) Init() tea.Cmd {
	return m.fetchLogs()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.logList.Width() == 0 {
			m.logList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LogListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		if msg.kind == MsgLogsFetched {
			fetched := msg.data.(struct {
				logs []*models.JobLog
				err  error
			})
			if fetched.err != nil {
				m.err = fetched.err
				return m, tea.Quit
			}
			items := make([]list.Item, len(fetched.logs))
			for i, l := range fetched.logs {
				items[i] = logItem{log: l}
			}
			m.logList = list.New(items, list.NewDefaultDelegate(), 0, 0)
			m.logList.Title = "Upload History"
			m.logList.SetSize(m.width-4, m.height-8)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.logList, cmd = m.logList.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LogListView:
		return m.renderList()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.fetchLogs()
	case "enter":
		if selected := m.logList.SelectedItem(); selected != nil {
			if item, ok := selected.(logItem); ok {
				m.selected = item.log
				m.view = DetailView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.logList, cmd = m.logList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = LogListView
		m.selected = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) fetchLogs() tea.Cmd {
	return func() tea.Msg {
		logs, err := m.source.List(m.userID, m.limit)
		return logsFetchedMsg(logs, err)
	}
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.logList.View(), helpView)
}

func (m *Model) renderDetail() string {
	l := m.selected
	if l == nil {
		return styles.err.Render("No job selected\n\nPress esc to go back")
	}

	title := styles.title.Render(fmt.Sprintf("Job #%d", l.ID))
	status := styles.Status(l.Status).Render(string(l.Status))

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "Kind:     %s\n", l.Kind)
	fmt.Fprintf(&b, "Source:   %s\n", l.Source)
	fmt.Fprintf(&b, "Status:   %s\n", status)
	fmt.Fprintf(&b, "User:     %s\n", l.UserID)
	fmt.Fprintf(&b, "Created:  %s\n", l.Created.Format("2006-01-02 15:04:05"))
	if l.FileCount != nil {
		fmt.Fprintf(&b, "Files:    %d\n", *l.FileCount)
	}
	if l.CompletedAt != nil {
		fmt.Fprintf(&b, "Finished: %s\n", l.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if l.ErrorMessage != nil {
		fmt.Fprintf(&b, "\n%s\n", styles.err.Render(*l.ErrorMessage))
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	fmt.Fprintf(&b, "\n%s", m.help.ShortHelpView(helpKeys))
	return b.String()
}
