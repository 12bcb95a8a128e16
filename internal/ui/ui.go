package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/avelara/sptools/internal/formatter"
	"github.com/avelara/sptools/internal/services"
	"github.com/avelara/sptools/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MenuView ViewState = iota
	InputView
	ConfirmView
	RunView
	ResultView
)

// Options carry the task parameters the shell applies to every run.
// The zero value uses relaxed matching, the default tolerance, metadata-only
// explicit scanning, and in-place removal.
type Options struct {
	Dedupe    tasks.DedupeOptions
	Explicit  tasks.ExplicitOptions
	CleanMode tasks.CleanMode
	TimeRange string
	TopLimit  int
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	spotify      services.Service
	engine       tasks.Engine
	opts         Options
	width        int
	height       int
	menu         list.Model
	input        textinput.Model
	action       Action
	playlistRef  string
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	output       []byte
	err          error
	help         help.Model
	keys         keyMap
}

type taskDoneMsg struct {
	output []byte
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, spotify services.Service, engine tasks.Engine, opts Options) *Model {
	if opts.Dedupe.ToleranceSecs == 0 {
		opts.Dedupe.ToleranceSecs = tasks.DefaultToleranceSecs
	}
	if opts.CleanMode == "" {
		opts.CleanMode = tasks.CleanRemove
	}
	if opts.TimeRange == "" {
		opts.TimeRange = "medium_term"
	}
	if opts.TopLimit <= 0 {
		opts.TopLimit = 20
	}

	menu := list.New(menuItems(), list.NewDefaultDelegate(), 0, 0)
	menu.Title = "Playlist Maintenance"
	menu.SetShowHelp(false)

	input := textinput.New()
	input.Placeholder = "Playlist URL, URI, or ID"
	input.Prompt = "> "

	return &Model{
		ctx:     ctx,
		view:    MenuView,
		spotify: spotify,
		engine:  engine,
		opts:    opts,
		menu:    menu,
		input:   input,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init implements [tea.Model].
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MenuView:
			return m.handleMenuKeys(msg)
		case InputView:
			return m.handleInputKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case RunView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case taskDoneMsg:
		m.output = msg.output
		m.err = msg.err
		m.progressChan = nil
		m.view = ResultView
		return m, nil
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case MenuView:
		return m.renderMenu()
	case InputView:
		return m.renderInput()
	case ConfirmView:
		return m.renderConfirm()
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.menu.SelectedItem()
		if selected == nil {
			return m, nil
		}
		item, ok := selected.(menuItem)
		if !ok {
			return m, nil
		}
		m.action = item.action
		m.err = nil
		if !m.action.needsPlaylist() {
			m.view = RunView
			return m, m.runTops()
		}
		m.input.SetValue("")
		m.input.Focus()
		m.view = InputView
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.input.Blur()
		m.view = MenuView
		return m, nil
	case "enter":
		ref := m.input.Value()
		if ref == "" {
			return m, nil
		}
		m.playlistRef = ref
		m.input.Blur()
		if m.action.mutates() {
			m.view = ConfirmView
			return m, nil
		}
		m.view = RunView
		return m, m.startTask()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		m.view = MenuView
		return m, nil
	case "y":
		m.view = RunView
		return m, m.startTask()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r", "esc":
		m.view = MenuView
		m.output = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		return m, nil
	}
	return m, nil
}

// startTask launches the selected playlist operation in a goroutine and
// begins draining its progress channel.
func (m *Model) startTask() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	m.progressChan = progress
	m.progress = tasks.ProgressUpdate{}

	done := make(chan taskDoneMsg, 1)
	go func() {
		output, err := m.runAction(progress)
		done <- taskDoneMsg{output: output, err: err}
		close(progress)
	}()

	return tea.Batch(m.waitForProgress(), func() tea.Msg { return <-done })
}

func (m *Model) runAction(progress chan<- tasks.ProgressUpdate) ([]byte, error) {
	switch m.action {
	case ActionCheckDuplicates:
		report, err := m.engine.CheckDuplicates(m.ctx, progress, m.playlistRef, m.opts.Dedupe)
		if err != nil {
			return nil, err
		}
		return formatter.DuplicatesToText(report), nil

	case ActionCleanDuplicates:
		result, err := m.engine.CleanDuplicates(m.ctx, progress, m.playlistRef, m.opts.Dedupe)
		if err != nil {
			return nil, err
		}
		out := formatter.DuplicatesToText(result.Report)
		out = append(out, fmt.Sprintf("\nRemoved %d duplicate entries.\n", result.RemovedCount)...)
		return out, nil

	case ActionScanExplicit:
		report, err := m.engine.ScanExplicit(m.ctx, progress, m.playlistRef, m.opts.Explicit)
		if err != nil {
			return nil, err
		}
		return formatter.ExplicitToText(report), nil

	case ActionCleanExplicit:
		result, err := m.engine.CleanExplicit(m.ctx, progress, m.playlistRef, tasks.ExplicitCleanOptions{
			ExplicitOptions: m.opts.Explicit,
			Mode:            m.opts.CleanMode,
		})
		if err != nil {
			return nil, err
		}
		out := formatter.ExplicitToText(result.Report)
		if result.NewPlaylist != nil {
			out = append(out, fmt.Sprintf("\nCreated clean playlist %q with %d tracks.\n", result.NewPlaylist.Name, result.CleanCount)...)
		} else {
			out = append(out, fmt.Sprintf("\nRemoved %d explicit entries.\n", result.RemovedCount)...)
		}
		return out, nil
	}

	return nil, fmt.Errorf("unknown action %d", m.action)
}

// runTops fetches listening stats directly, no progress channel involved.
func (m *Model) runTops() tea.Cmd {
	action := m.action
	return func() tea.Msg {
		switch action {
		case ActionTopArtists:
			artists, err := m.spotify.TopArtists(m.ctx, m.opts.TimeRange, m.opts.TopLimit)
			if err != nil {
				return taskDoneMsg{err: err}
			}
			return taskDoneMsg{output: formatter.TopArtistsToText(artists, m.opts.TimeRange)}
		case ActionTopTracks:
			tracks, err := m.spotify.TopTracks(m.ctx, m.opts.TimeRange, m.opts.TopLimit)
			if err != nil {
				return taskDoneMsg{err: err}
			}
			return taskDoneMsg{output: formatter.TopTracksToText(tracks, m.opts.TimeRange)}
		}
		return taskDoneMsg{}
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	if progress == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderMenu() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.menu.View(), helpView)
}

func (m *Model) renderInput() string {
	title := styles.title.Render(m.actionTitle())
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\nWhich playlist?\n\n%s\n\n%s", title, m.input.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(m.actionTitle())
	warning := styles.warn.Render(fmt.Sprintf("This will modify '%s'. Continue?", m.playlistRef))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, warning, helpView)
}

func (m *Model) renderRun() string {
	title := styles.title.Render(m.actionTitle())

	phase := "Working..."
	if m.progress.Message != "" {
		phase = m.progress.Message
	} else if m.progress.Phase != 0 || m.progress.Total != 0 {
		phase = m.progress.Phase.String()
	}

	var counter string
	if m.progress.Total > 0 {
		counter = fmt.Sprintf(" (%d/%d)", m.progress.Step, m.progress.Total)
	}

	return fmt.Sprintf("%s\n%s%s\n", title, phase, counter)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		body := styles.err.Render(fmt.Sprintf("Error: %v", m.err))
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	}

	title := styles.ok.Render(fmt.Sprintf("✓ %s", m.actionTitle()))
	return fmt.Sprintf("%s\n\n%s\n%s", title, string(m.output), helpView)
}

func (m *Model) actionTitle() string {
	for _, item := range menuItems() {
		if mi, ok := item.(menuItem); ok && mi.action == m.action {
			return mi.title
		}
	}
	return "Task"
}
