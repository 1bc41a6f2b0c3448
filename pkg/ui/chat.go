package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/schardosin/docqa/pkg/document"
	"github.com/schardosin/docqa/pkg/session"
)

const (
	headerHeight = 2
	footerHeight = 1
	inputHeight  = 3
)

type chatKeyMap struct {
	Send       key.Binding
	Newline    key.Binding
	Upload     key.Binding
	Reset      key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

var defaultKeys = chatKeyMap{
	Send:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	Newline:    key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"), key.WithHelp("alt+enter", "newline")),
	Upload:     key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "upload")),
	Reset:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "new document")),
	ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
	ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
	Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

// modeHelp exposes the bindings that make sense in one mode to help.Model
type modeHelp struct {
	keys chatKeyMap
	mode session.Mode
}

func (h modeHelp) ShortHelp() []key.Binding {
	if h.mode == session.ModeChat {
		return []key.Binding{h.keys.Send, h.keys.Newline, h.keys.Reset, h.keys.ScrollUp, h.keys.Quit}
	}
	return []key.Binding{h.keys.Upload, h.keys.Quit}
}

func (h modeHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

// ChatOptions configures a ChatModel
type ChatOptions struct {
	// InitialFile is selected and uploaded right after the status check
	InitialFile string
	// StartDir is where the file picker opens; empty means the working directory
	StartDir string
	Renderer *Renderer
}

type opDoneMsg struct{ err error }

// ChatModel is the bubbletea model of a document chat. Controller operations
// that touch the network run as commands; the model re-reads the controller
// snapshot whenever it is told the state changed.
type ChatModel struct {
	ctx         context.Context
	ctrl        *session.Controller
	renderer    *Renderer
	initialFile string

	state    session.State
	picker   filepicker.Model
	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     chatKeyMap

	width  int
	height int

	// rendered caches glamour output by message ID for the current width
	rendered map[string]string

	alerts  []string
	confirm *ConfirmMsg
}

func NewChatModel(ctx context.Context, ctrl *session.Controller, opts ChatOptions) ChatModel {
	renderer := opts.Renderer
	if renderer == nil {
		renderer = NewRenderer("notty")
	}

	picker := filepicker.New()
	picker.AllowedTypes = document.SupportedExtensions
	if opts.StartDir != "" {
		picker.CurrentDirectory = opts.StartDir
	}

	input := textarea.New()
	input.Placeholder = "Ask a question about your document..."
	input.ShowLineNumbers = false
	input.Prompt = "┃ "
	input.CharLimit = 0
	input.SetHeight(inputHeight)
	input.KeyMap.InsertNewline = defaultKeys.Newline

	m := ChatModel{
		ctx:         ctx,
		ctrl:        ctrl,
		renderer:    renderer,
		initialFile: opts.InitialFile,
		state:       ctrl.Snapshot(),
		picker:      picker,
		input:       input,
		viewport:    viewport.New(80, 20),
		spinner:     newSpinner(),
		help:        help.New(),
		keys:        defaultKeys,
		width:       80,
		height:      24,
		rendered:    make(map[string]string),
	}
	m.layout()
	return m
}

func (m ChatModel) Init() tea.Cmd {
	ctx, ctrl, initialFile := m.ctx, m.ctrl, m.initialFile
	start := func() tea.Msg {
		ctrl.CheckStatus(ctx)
		if initialFile != "" {
			ctrl.SelectDocument(initialFile)
			return opDoneMsg{err: ctrl.UploadDocument(ctx)}
		}
		return opDoneMsg{}
	}
	return tea.Batch(m.picker.Init(), m.spinner.Tick, textarea.Blink, start)
}

// State returns the snapshot the model last rendered
func (m ChatModel) State() session.State {
	return m.state
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.rendered = make(map[string]string)
		m.layout()
		m.refreshChat(true)

	case StateChangedMsg:
		cmds = append(cmds, m.syncState())

	case opDoneMsg:
		cmds = append(cmds, m.syncState())

	case AlertMsg:
		m.alerts = append(m.alerts, msg.Text)
		return m, nil

	case ConfirmMsg:
		if m.confirm != nil {
			// one question at a time
			msg.Reply <- false
			return m, nil
		}
		m.confirm = &msg
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.hasPending() {
			m.refreshChat(false)
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// The picker reads directories through its own messages
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.confirm != nil {
			m.confirm.Reply <- false
			m.confirm = nil
		}
		return *m, tea.Quit
	}

	if m.confirm != nil {
		var answer bool
		switch msg.String() {
		case "y", "Y", "enter":
			answer = true
		case "n", "N", "esc":
			answer = false
		default:
			return *m, nil
		}
		m.confirm.Reply <- answer
		m.confirm = nil
		return *m, nil
	}

	if len(m.alerts) > 0 {
		m.alerts = m.alerts[1:]
		return *m, nil
	}

	// The loading overlay swallows input
	if m.state.Loading != "" {
		return *m, nil
	}

	var cmd tea.Cmd
	switch m.state.Mode {
	case session.ModeUpload:
		if key.Matches(msg, m.keys.Upload) {
			if m.state.UploadEnabled {
				return *m, m.uploadCmd()
			}
			return *m, nil
		}
		m.picker, cmd = m.picker.Update(msg)
		if ok, path := m.picker.DidSelectFile(msg); ok {
			m.ctrl.SelectDocument(path)
			m.state = m.ctrl.Snapshot()
		}
		return *m, cmd

	case session.ModeChat:
		switch {
		case key.Matches(msg, m.keys.Reset):
			return *m, m.resetCmd()
		case key.Matches(msg, m.keys.Send):
			if !m.state.SendEnabled {
				return *m, nil
			}
			ex, ok := m.ctrl.StartSend(m.input.Value())
			if !ok {
				return *m, nil
			}
			m.input.Reset()
			m.state = m.ctrl.Snapshot()
			m.refreshChat(true)
			return *m, m.finishCmd(ex)
		case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
			m.viewport, cmd = m.viewport.Update(msg)
			return *m, cmd
		}
		m.input, cmd = m.input.Update(msg)
		return *m, cmd
	}
	return *m, nil
}

func (m ChatModel) uploadCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return opDoneMsg{err: ctrl.UploadDocument(ctx)}
	}
}

func (m ChatModel) finishCmd(ex *session.Exchange) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return opDoneMsg{err: ctrl.FinishSend(ctx, ex)}
	}
}

func (m ChatModel) resetCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		_, err := ctrl.Reset(ctx)
		return opDoneMsg{err: err}
	}
}

// syncState takes a new snapshot and moves focus when the mode flips
func (m *ChatModel) syncState() tea.Cmd {
	prev := m.state
	m.state = m.ctrl.Snapshot()
	m.refreshChat(lastMessageID(prev) != lastMessageID(m.state))

	if prev.Mode == m.state.Mode {
		return nil
	}
	if m.state.Mode == session.ModeChat {
		return m.input.Focus()
	}
	m.input.Blur()
	m.input.Reset()
	return nil
}

func lastMessageID(s session.State) string {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[len(s.Messages)-1].ID
}

func (m ChatModel) hasPending() bool {
	for _, msg := range m.state.Messages {
		if msg.Pending {
			return true
		}
	}
	return false
}

func (m *ChatModel) bodyHeight() int {
	h := m.height - headerHeight - footerHeight
	if h < 3 {
		h = 3
	}
	return h
}

func (m *ChatModel) layout() {
	m.input.SetWidth(m.width)
	m.viewport.Width = m.width
	vh := m.bodyHeight() - inputHeight - 1
	if vh < 1 {
		vh = 1
	}
	m.viewport.Height = vh
	m.help.Width = m.width
}

// refreshChat rebuilds the viewport content from the current snapshot
func (m *ChatModel) refreshChat(toBottom bool) {
	bw := bubbleWidth(m.width)

	var b strings.Builder
	for i, msg := range m.state.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(RenderBubble(msg.Role, m.messageBody(msg, bw), msg.Pending, m.width))
	}
	m.viewport.SetContent(b.String())
	if toBottom {
		m.viewport.GotoBottom()
	}
}

func (m *ChatModel) messageBody(msg session.Message, bubbleWidth int) string {
	if msg.Pending {
		return m.spinner.View() + " " + msg.Text
	}
	if msg.Role == session.RoleUser {
		return msg.Text
	}
	if out, ok := m.rendered[msg.ID]; ok {
		return out
	}
	out := m.renderer.Render(msg.Text, bubbleWidth-botBubbleStyle.GetHorizontalFrameSize())
	m.rendered[msg.ID] = out
	return out
}

func (m ChatModel) View() string {
	header := titleStyle.Render("📄 DocQA")
	if m.state.Mode == session.ModeChat && m.state.DocLabel != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Center, header, docLabelStyle.Render(m.state.DocLabel))
	}

	var body string
	switch {
	case m.confirm != nil:
		body = m.overlay(RenderModal("Confirm", m.confirm.Question, "y: yes • n: no"))
	case len(m.alerts) > 0:
		body = m.overlay(RenderModal("Alert", m.alerts[0], "press any key"))
	case m.state.Loading != "":
		body = m.overlay(loadingStyle.Render(m.spinner.View() + " " + m.state.Loading))
	case m.state.Mode == session.ModeChat:
		body = m.viewport.View() + "\n" + m.input.View()
	default:
		body = m.uploadView()
	}

	footer := m.help.View(modeHelp{keys: m.keys, mode: m.state.Mode})
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, footer)
}

func (m ChatModel) uploadView() string {
	var b strings.Builder
	b.WriteString(hintStyle.Render("Choose a document (PDF, TXT, MD, HTML)"))
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	if m.state.FileLabel != "" {
		b.WriteString("\n")
		b.WriteString(fileLabelStyle.Render(m.state.FileLabel))
		if m.state.UploadEnabled {
			b.WriteString(hintStyle.Render("  press ctrl+u to upload"))
		}
	}
	return b.String()
}

func (m ChatModel) overlay(content string) string {
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, content)
}
