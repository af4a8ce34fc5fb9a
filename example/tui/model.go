package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/mickamy/go-bolt/bolt"
	"github.com/mickamy/go-bolt/bolt/message"
	"github.com/mickamy/go-bolt/bolt/stream"
	"github.com/mickamy/go-bolt/bolt/values"
	"github.com/mickamy/go-bolt/packstream"
)

// model is the Bubble Tea model for the query-streaming demo: it drives a
// single Conn.Run and renders decoded records into a scrolling list as they
// arrive, one PULL batch at a time.
type model struct {
	cfg   *bolt.Config
	query string

	conn   *bolt.Conn
	result *stream.Result

	fields []string
	rows   [][]string
	cursor int
	width  int
	height int

	err  error
	done bool
}

func newModel(cfg *bolt.Config, query string) model {
	return model{cfg: cfg, query: query}
}

func (m model) Init() tea.Cmd {
	return m.connectAndRun
}

type connectedMsg struct {
	conn   *bolt.Conn
	result *stream.Result
}

type recordMsg struct {
	row []string
	ok  bool
}

type errMsg struct{ err error }

func (m model) connectAndRun() tea.Msg {
	ctx := context.Background()
	conn, err := bolt.Dial(ctx, m.cfg)
	if err != nil {
		return errMsg{err}
	}
	result, err := conn.Run(ctx, m.query, nil, message.RunExtra{})
	if err != nil {
		conn.Close(ctx)
		return errMsg{err}
	}
	return connectedMsg{conn: conn, result: result}
}

func (m model) fetchNext() tea.Msg {
	rec, ok, err := m.result.Next(context.Background())
	if err != nil {
		return errMsg{err}
	}
	if !ok {
		return recordMsg{ok: false}
	}
	row := make([]string, len(rec))
	for i, v := range rec {
		decoded, err := m.conn.DecodeValue(v)
		if err != nil {
			row[i] = fmt.Sprintf("<%v>", err)
			continue
		}
		row[i] = formatValue(decoded)
	}
	return recordMsg{row: row, ok: true}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case packstream.Null:
		return "null"
	case packstream.String:
		return string(x)
	case packstream.Boolean:
		return fmt.Sprintf("%t", bool(x))
	case packstream.Int:
		return fmt.Sprintf("%d", int64(x))
	case packstream.Float:
		return fmt.Sprintf("%g", float64(x))
	case values.Node:
		return fmt.Sprintf("(%s %v)", strings.Join(x.Labels, ":"), x.Properties)
	case values.Relationship:
		return fmt.Sprintf("[%s]", x.Type)
	case values.UnboundRelationship:
		return fmt.Sprintf("[%s]", x.Type)
	case values.Path:
		return fmt.Sprintf("<path: %d nodes>", len(x.Nodes()))
	case values.Point:
		return fmt.Sprintf("POINT(%s)", x.CRS())
	case values.Unknown:
		return fmt.Sprintf("<unknown 0x%02X>", x.Signature)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case connectedMsg:
		m.conn = msg.conn
		m.result = msg.result
		m.fields = msg.result.Fields()
		return m, m.fetchNext

	case recordMsg:
		if !msg.ok {
			m.done = true
			return m, nil
		}
		m.rows = append(m.rows, msg.row)
		return m, m.fetchNext

	case errMsg:
		m.err = msg.err
		m.done = true
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.conn != nil {
				m.conn.Close(context.Background())
			}
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf(" go-bolt tui (%d rows) ", len(m.rows)))
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(highlightCypher(m.query))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	if len(m.fields) > 0 {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render(strings.Join(m.fields, "  |  ")))
		b.WriteString("\n")
	}

	selected := lipgloss.NewStyle().Reverse(true)
	innerWidth := m.width - 2
	for i, row := range m.rows {
		line := strings.Join(row, "  |  ")
		if i == m.cursor {
			line = selected.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		if innerWidth > 0 {
			line = ansi.Cut(line, 0, innerWidth)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if !m.done {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render("streaming…"))
		b.WriteString("\n")
	}

	b.WriteString("\n(q to quit, j/k to scroll)\n")
	return b.String()
}
