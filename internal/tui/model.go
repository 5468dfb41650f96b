// Package tui provides a terminal chat that drives the bot locally,
// without the messaging platform in between.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// Dispatcher answers one chat event.
type Dispatcher interface {
	Execute(ctx context.Context, ev domain.Event) *domain.Reply
}

const (
	appPadding  = 2
	chromeLines = 4 // Title, input border, input, help
	textIntro   = "Type a task, or a question ending in ?. Commands: /done N, /fav N, /list, /follow, /quit"
	textNoReply = "(no reply)"
	textWaiting = "…"
)

type entryKind int

const (
	entryUser entryKind = iota
	entryBot
	entryNote
	entryError
)

type entry struct {
	text string
	card Card
	kind entryKind
}

// Model is the chat TUI model.
// Fields are ordered to minimize memory padding.
type Model struct {
	// Dependencies
	ctx      context.Context
	dispatch Dispatcher
	now      func() time.Time

	// State
	userID  string
	entries []entry
	rows    []int64  // Task ids of the last card's rows
	chips   []string // Quick replies of the last bot message

	// Components
	keys     KeyMap
	styles   Styles
	help     help.Model
	input    textinput.Model
	viewport viewport.Model

	// Numeric state
	seq       int
	chipIndex int
	width     int
	height    int

	// Boolean state
	waiting bool
}

// New creates a chat model for userID. A nil now uses time.Now.
func New(ctx context.Context, dispatch Dispatcher, userID string, now func() time.Time) *Model {
	if now == nil {
		now = time.Now
	}
	ti := textinput.New()
	ti.Placeholder = "Message"
	ti.CharLimit = 2000
	ti.Prompt = "> "
	ti.Focus()

	return &Model{
		ctx:      ctx,
		dispatch: dispatch,
		now:      now,
		userID:   userID,
		entries:  []entry{{kind: entryNote, text: textIntro}},
		keys:     DefaultKeyMap(),
		styles:   DefaultStyles(),
		help:     help.New(),
		input:    ti,
		viewport: viewport.New(0, 0),
	}
}

// Run starts the chat on the given terminal streams and blocks until the
// user quits or ctx is done.
func Run(ctx context.Context, dispatch Dispatcher, userID string, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(
		New(ctx, dispatch, userID, nil),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-appPadding, 1)
		m.viewport.Height = max(msg.Height-chromeLines, 1)
		m.input.Width = max(msg.Width-appPadding-len(m.input.Prompt)-1, 1)
		m.help.Width = msg.Width
		m.refresh()
		return m, nil

	case MsgReply:
		m.waiting = false
		m.addReply(msg.Reply)
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		return m.send()

	case key.Matches(msg, m.keys.Chip):
		if len(m.chips) > 0 {
			m.input.SetValue(m.chips[m.chipIndex%len(m.chips)])
			m.input.CursorEnd()
			m.chipIndex++
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send parses the input line and dispatches it.
func (m *Model) send() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" || m.waiting {
		return m, nil
	}

	in, err := ParseInput(line, m.rows)
	if err != nil {
		m.entries = append(m.entries, entry{kind: entryError, text: err.Error()})
		m.refresh()
		return m, nil
	}
	if in.Kind == InputQuit {
		return m, tea.Quit
	}

	m.input.Reset()
	m.entries = append(m.entries, entry{kind: entryUser, text: line})
	m.waiting = true
	m.refresh()

	m.seq++
	ev := in.Event(domain.EventBase{
		Timestamp: m.now(),
		ID:        fmt.Sprintf("local-%d", m.seq),
		UserID:    m.userID,
	})
	ctx, dispatch := m.ctx, m.dispatch
	return m, func() tea.Msg {
		return MsgReply{Reply: dispatch.Execute(ctx, ev)}
	}
}

// addReply appends the bot's messages. A card replaces the row numbering;
// the last message's chips replace the offered chips.
func (m *Model) addReply(reply *domain.Reply) {
	if reply == nil || len(reply.Messages) == 0 {
		m.entries = append(m.entries, entry{kind: entryNote, text: textNoReply})
		return
	}
	for _, msg := range reply.Messages {
		card := CardOf(msg)
		if msg.IsCard() {
			m.rows = card.Rows
		}
		m.chips = card.Chips
		m.chipIndex = 0
		m.entries = append(m.entries, entry{kind: entryBot, card: card})
	}
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (m *Model) refresh() {
	if m.width == 0 {
		return
	}
	m.viewport.SetContent(m.transcript(m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m *Model) transcript(width int) string {
	blocks := make([]string, 0, len(m.entries)+1)
	for _, e := range m.entries {
		switch e.kind {
		case entryUser:
			blocks = append(blocks, m.styles.User.Render("you")+"\n"+wordwrap.String(e.text, width))
		case entryNote:
			blocks = append(blocks, m.styles.Note.Render(wordwrap.String(e.text, width)))
		case entryError:
			blocks = append(blocks, m.styles.Error.Render(wordwrap.String(e.text, width)))
		case entryBot:
			blocks = append(blocks, m.styles.Bot.Render("bot")+"\n"+m.renderCard(e.card, width))
		}
	}
	if m.waiting {
		blocks = append(blocks, m.styles.Note.Render(textWaiting))
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderCard(c Card, width int) string {
	var b strings.Builder
	if c.Title == "" {
		b.WriteString(wordwrap.String(strings.Join(c.Lines, "\n"), width))
	} else {
		inner := max(width-4, 1) // Border and padding
		lines := make([]string, 0, len(c.Lines)+1)
		lines = append(lines, m.styles.CardTitle.Render(truncate.StringWithTail(c.Title, uint(inner), "…")))
		for _, l := range c.Lines {
			lines = append(lines, truncate.StringWithTail(l, uint(inner), "…"))
		}
		b.WriteString(m.styles.Card.Render(strings.Join(lines, "\n")))
	}
	if len(c.Chips) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Chips.Render(ChipLine(c.Chips, width)))
	}
	return b.String()
}

// View renders the chat.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	title := m.styles.Title.Render(truncate.StringWithTail("小汪記記 · "+m.userID, uint(max(m.width-appPadding, 1)), "…"))
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.viewport.View(),
		m.styles.Input.Render(m.input.View()),
		m.help.View(m.keys),
	)
}
