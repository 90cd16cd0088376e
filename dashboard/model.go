// SPDX-License-Identifier: GPL-3.0-or-later
package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CrawX/go-imap-dashboard/domain"
	"github.com/CrawX/go-imap-dashboard/log"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

const receivedFormat = "02/01/2006 15:04"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	badgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")).Padding(0, 1)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

type viewState int

const (
	viewTable viewState = iota
	viewMessage
)

// Data is what one dashboard shows: the rows of a run, the message behind every row and
// the counts of the run.
type Data struct {
	Title  string
	Rows   []domain.DedupedRecord
	Refs   []domain.MessageRef
	Counts domain.AggregateCounts
	// Status is shown in the status line until the first action.
	Status string
}

type openedMsg struct {
	message *domain.OpenedMessage
	err     error
}

type Model struct {
	data    Data
	summary Summary
	opener  domain.MessageOpener

	view     viewState
	table    table.Model
	viewport viewport.Model
	keys     keyMap
	help     help.Model
	status   string

	width, height int

	l *logrus.Logger
}

func New(data Data, opener domain.MessageOpener) Model {
	rows := make([]table.Row, 0, len(data.Rows))
	for _, r := range data.Rows {
		rows = append(rows, table.Row{r.Subject, r.Sender, r.Status.String(), r.Category, strconv.Itoa(r.OccurrenceCount)})
	}

	t := table.New(
		table.WithColumns(columns(100)),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	keys := defaultKeyMap()
	keys.forView(viewTable)

	return Model{
		data:     data,
		summary:  Summarize(data.Rows, data.Counts),
		opener:   opener,
		table:    t,
		viewport: viewport.New(0, 0),
		keys:     keys,
		help:     help.New(),
		status:   data.Status,
		l:        log.Logger(log.LOG_DASHBOARD),
	}
}

// columns splits width between the table columns, subject and sender taking the most.
func columns(width int) []table.Column {
	fixed := 16 + 14 + 9
	rest := width - fixed - 10
	if rest < 20 {
		rest = 20
	}
	return []table.Column{
		{Title: "Assunto", Width: rest * 3 / 5},
		{Title: "Remetente", Width: rest * 2 / 5},
		{Title: "Status", Width: 16},
		{Title: "Categoria", Width: 14},
		{Title: "Contagem", Width: 9},
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(columns(msg.Width))
		m.table.SetHeight(max(msg.Height-9, 3))
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-3, 1)
		m.help.Width = msg.Width
		return m, nil

	case openedMsg:
		return m.opened(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Kill) {
			return m, tea.Quit
		}

		switch m.view {
		case viewTable:
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, m.keys.Open):
				return m.open()
			}
		case viewMessage:
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, m.keys.Back):
				m.view = viewTable
				m.keys.forView(m.view)
				m.status = ""
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.view {
	case viewTable:
		m.table, cmd = m.table.Update(msg)
	case viewMessage:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m Model) open() (tea.Model, tea.Cmd) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.data.Rows) || i >= len(m.data.Refs) || m.opener == nil {
		return m, nil
	}

	ref := m.data.Refs[i]
	opener := m.opener
	m.status = "Abrindo: " + m.data.Rows[i].Subject
	m.l.WithFields(logrus.Fields{"row": i, "folder": ref.Folder, "uid": ref.Uid, "entryid": ref.EntryId}).Debug("Opening message")
	return m, func() tea.Msg {
		message, err := opener.Open(ref)
		return openedMsg{message: message, err: err}
	}
}

func (m Model) opened(msg openedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.l.WithField("error", msg.err).Warn("Could not open message")
		m.status = fmt.Sprintf("Não foi possível abrir o e-mail: %v", msg.err)
		return m, nil
	}

	if msg.message == nil {
		m.status = ""
		return m, nil
	}

	if msg.message.External {
		m.status = "Aberto: " + msg.message.Subject
		return m, nil
	}

	m.viewport.SetContent(renderMessage(msg.message))
	m.viewport.GotoTop()
	m.view = viewMessage
	m.keys.forView(m.view)
	m.status = ""
	return m, nil
}

func renderMessage(msg *domain.OpenedMessage) string {
	received := ""
	if !msg.Received.IsZero() {
		received = msg.Received.Local().Format(receivedFormat)
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Assunto: ")+msg.Subject,
		headerStyle.Render("De: ")+msg.From,
		headerStyle.Render("Recebido: ")+received,
	)

	return header + "\n\n" + msg.Body
}

func (m Model) View() string {
	var b strings.Builder

	switch m.view {
	case viewTable:
		b.WriteString(titleStyle.Render(m.data.Title))
		b.WriteString("\n")
		b.WriteString(m.summaryView())
		b.WriteString("\n")
		b.WriteString(m.table.View())
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
	case viewMessage:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
	}

	if len(m.status) > 0 {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
	}

	return b.String()
}

func (m Model) summaryView() string {
	s := m.summary
	lines := []string{
		summaryStyle.Render(fmt.Sprintf("Recebidos: %d  Respondidos: %d  Pendentes: %d  Retornos: %d", s.Received, s.Replied, s.Pending, s.Returns)),
		summaryStyle.Render(fmt.Sprintf("%s: %d  %s: %d", domain.UnreadLabel, s.Unread, domain.RecentLabel, s.Recent)),
	}

	if len(s.Badges) > 0 {
		badges := []string{}
		for _, c := range s.Badges {
			badges = append(badges, badgeStyle.Render(fmt.Sprintf("%s: %d", c.Category, c.Count)), " ")
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, badges...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Run shows the dashboard until the user quits.
func Run(data Data, opener domain.MessageOpener) error {
	_, err := tea.NewProgram(New(data, opener), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("could not run dashboard: %w", err)
	}
	return nil
}
