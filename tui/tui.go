package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/tacticore/sim"
	"github.com/nathoo/tacticore/types"
)

// rawLine stores an unstyled output line with its classification, so we
// can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text    string
	kind    lineKind
	isInput bool // true for echoed operator input
}

// Model is the Bubble Tea model for the TactiCore TUI.
type Model struct {
	runner *sim.Runner

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated narration (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
}

// New creates a TUI model wired to the given runner.
func New(r *sim.Runner) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 64
	ti.PromptStyle = styleInputPrompt

	return Model{
		runner:  r,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(r *sim.Runner) error {
	m := New(r)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the opening banner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

// turnOutputMsg carries narration into the Update loop.
type turnOutputMsg struct {
	input    string // echoed operator input
	lines    []string
	isSystem bool
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		lines := []string{
			fmt.Sprintf("Round %d. Press enter to step, 'help' for commands.", m.runner.Round()),
		}
		return turnOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, turn output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case turnOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted command. An empty line steps one
// turn.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(strings.ToLower(m.input.Value()))
	m.input.SetValue("")

	if input != "" {
		m.history.Push(input)
		m.history.ResetCursor()
	}

	switch input {
	case "", "step", "s":
		m = m.runStep(input)

	case "round", "r":
		m = m.runRound(input)

	case "run":
		m = m.runAll(input)

	case "trace", "t":
		m.trace = !m.trace
		text := "Trace output disabled."
		if m.trace {
			text = "Trace output enabled."
		}
		m = m.appendOutput(turnOutputMsg{input: input, lines: []string{text}, isSystem: true})

	case "help", "h":
		m = m.appendOutput(turnOutputMsg{input: input, lines: helpLines(), isSystem: true})

	case "quit", "q", "exit":
		m.quitting = true
		return m, tea.Quit

	default:
		m = m.appendOutput(turnOutputMsg{
			input:    input,
			lines:    []string{fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", input)},
			isSystem: true,
		})
	}

	return m, nil
}

func (m Model) runStep(input string) Model {
	res, err := m.runner.Step()
	if err != nil {
		return m.appendOutput(turnOutputMsg{
			input: input, lines: []string{fmt.Sprintf("Turn failed: %v", err)}, isSystem: true,
		})
	}
	return m.appendOutput(turnOutputMsg{input: input, lines: m.formatTurn(res)})
}

func (m Model) runRound(input string) Model {
	results, err := m.runner.RunRound()
	var lines []string
	for _, res := range results {
		lines = append(lines, m.formatTurn(res)...)
	}
	if err != nil {
		lines = append(lines, fmt.Sprintf("[Round failed: %v]", err))
	}
	return m.appendOutput(turnOutputMsg{input: input, lines: lines})
}

func (m Model) runAll(input string) Model {
	_, results, err := m.runner.Run()
	var lines []string
	for _, res := range results {
		lines = append(lines, m.formatTurn(res)...)
	}
	if err != nil {
		lines = append(lines, fmt.Sprintf("[Run failed: %v]", err))
	}
	return m.appendOutput(turnOutputMsg{input: input, lines: lines})
}

// formatTurn renders a turn result, including the trace when enabled and
// the outcome when the encounter ends.
func (m Model) formatTurn(res sim.TurnResult) []string {
	var lines []string
	if res.RoundEnd {
		lines = append(lines, fmt.Sprintf("[Round %d begins.]", m.runner.Round()))
	}
	lines = append(lines, res.Narration...)
	if m.trace && res.Decision != nil {
		lines = append(lines, formatTrace(res.Decision)...)
	}
	if res.Over {
		if winner, ok := m.runner.Enc.Winner(); ok {
			lines = append(lines, fmt.Sprintf("[Encounter over: %s wins in round %d.]", winner, m.runner.Round()))
		} else {
			lines = append(lines, "[Encounter over.]")
		}
	}
	return lines
}

func formatTrace(d *types.TacticalDecision) []string {
	r := d.Reasoning
	lines := []string{
		fmt.Sprintf("[trace] %s: %s via %s", d.ActorID, d.Action.Type, strings.Join(r.TreePath, " > ")),
	}
	for _, sc := range r.TopCandidates {
		target := ""
		if sc.TargetID != "" {
			target = " @ " + sc.TargetID
		}
		lines = append(lines, fmt.Sprintf("[trace]   %.2f %s%s", sc.Total, sc.Candidate.Type, target))
	}
	if r.Fallback != "" {
		lines = append(lines, "[trace] fallback: "+r.Fallback)
	}
	if r.BudgetExceeded {
		lines = append(lines, "[trace] decision budget exceeded")
	}
	return lines
}

func helpLines() []string {
	return []string{
		"Commands:",
		"  step (s, enter)  — Run the next creature's turn",
		"  round (r)        — Finish the current round",
		"  run              — Play the encounter to its end",
		"  trace (t)        — Toggle decision trace output",
		"  help (h)         — Show this help",
		"  quit (q)         — Exit",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

// appendOutput adds lines to the narration and refreshes the viewport.
func (m Model) appendOutput(msg turnOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line}
		if msg.isSystem {
			rl.kind = kindSystem
		} else {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current
// width and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		if rl.isInput {
			styled = append(styled, styleOperatorInput.Render(wrapped))
		} else {
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled (those
// drive the input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
