package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragdesk/internal/domain"
	"ragdesk/internal/service"
)

// AssistantPort is the TUI-facing subset of the assistant service.
type AssistantPort interface {
	IngestBatch(ctx context.Context, files []service.File) []service.IngestReport
	Ask(ctx context.Context, question string) (domain.AnswerResult, error)
	Stats() (domain.IndexStats, error)
	Reset() error
}

// message is one chat turn. The TUI owns the history; the core is
// stateless across turns.
type message struct {
	role    string
	content string
	sources []string
}

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	assistant AssistantPort
	input     textinput.Model
	viewport  viewport.Model
	messages  []message
	status    string
	ready     bool
}

// New creates a new chat model.
func New(assistant AssistantPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, or /ingest <file>, /stats, /reset, /clear"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{assistant: assistant, input: ti, viewport: vp, status: "Ready."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				break
			}
			m.input.SetValue("")
			m = m.handle(line)
			m.viewport.SetContent(m.renderMessages())
			m.viewport.GotoBottom()
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handle(line string) Model {
	if strings.HasPrefix(line, "/") {
		return m.handleCommand(line)
	}
	m.messages = append(m.messages, message{role: "user", content: line})
	answer, err := m.assistant.Ask(context.Background(), line)
	if err != nil {
		m.messages = append(m.messages, message{role: "error", content: err.Error()})
		m.status = "No answer."
		return m
	}
	m.messages = append(m.messages, message{role: "assistant", content: answer.Text, sources: answer.Sources})
	m.status = fmt.Sprintf("Answered from %d passage(s).", len(answer.Sources))
	return m
}

func (m Model) handleCommand(line string) Model {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/ingest":
		if len(fields) < 2 {
			m.status = "Usage: /ingest <file> [file ...]"
			return m
		}
		return m.ingest(fields[1:])
	case "/stats":
		stats, err := m.assistant.Stats()
		if err != nil {
			m.status = "Error: " + err.Error()
			return m
		}
		m.messages = append(m.messages, message{role: "system", content: renderStats(stats)})
		m.status = "Index statistics."
	case "/reset":
		if err := m.assistant.Reset(); err != nil {
			m.status = "Error: " + err.Error()
			return m
		}
		m.messages = append(m.messages, message{role: "system", content: "Index cleared."})
		m.status = "Index cleared."
	case "/clear":
		m.messages = nil
		m.status = "Chat cleared."
	default:
		m.status = "Unknown command: " + fields[0]
	}
	return m
}

func (m Model) ingest(paths []string) Model {
	var files []service.File
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, name := range matches {
			data, err := os.ReadFile(name)
			if err != nil {
				m.messages = append(m.messages, message{role: "error", content: err.Error()})
				continue
			}
			files = append(files, service.File{Name: filepath.Base(name), Data: data})
		}
	}
	reports := m.assistant.IngestBatch(context.Background(), files)
	total := 0
	failed := 0
	var lines []string
	for _, r := range reports {
		if r.Err != nil {
			failed++
			lines = append(lines, fmt.Sprintf("%s: failed: %v", r.File, r.Err))
			continue
		}
		total += r.ChunksAdded
		lines = append(lines, fmt.Sprintf("%s: %d chunk(s)", r.File, r.ChunksAdded))
	}
	lines = append(lines, fmt.Sprintf("Processed %d file(s), %d chunk(s) added, %d failed.",
		len(reports), total, failed))
	m.messages = append(m.messages, message{role: "system", content: strings.Join(lines, "\n")})
	m.status = fmt.Sprintf("%d chunk(s) added.", total)
	return m
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("ragdesk — ask your documents")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderMessages() string {
	if len(m.messages) == 0 {
		return hintStyle.Render(strings.Join([]string{
			"No messages yet. Try:",
			"  /ingest notes.md        add a document to the index",
			"  What is this document about?",
			"  Summarize the main points",
			"  /stats                  show index contents",
		}, "\n"))
	}
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.role {
		case "user":
			b.WriteString(userStyle.Render("you: ") + msg.content)
		case "assistant":
			b.WriteString(assistantStyle.Render("assistant: ") + msg.content)
			if len(msg.sources) > 0 {
				b.WriteString("\n" + sourceStyle.Render(renderSources(msg.sources)))
			}
		case "error":
			b.WriteString(errorStyle.Render(msg.content))
		default:
			b.WriteString(hintStyle.Render(msg.content))
		}
	}
	return b.String()
}

func renderSources(sources []string) string {
	lines := make([]string, 0, len(sources)+1)
	lines = append(lines, "sources:")
	for i, s := range sources {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, s))
	}
	return strings.Join(lines, "\n")
}

func renderStats(stats domain.IndexStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total chunks: %d\n", stats.Count)
	fmt.Fprintf(&b, "Documents: %d\n", len(stats.DistinctSources))
	for _, src := range stats.DistinctSources {
		fmt.Fprintf(&b, "  - %s\n", src)
	}
	if len(stats.CountsByFileType) > 0 {
		b.WriteString("By file type:\n")
		for ft, n := range stats.CountsByFileType {
			fmt.Fprintf(&b, "  %s: %d\n", ft, n)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
