package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/clusterboard/internal/api"
	"github.com/five82/clusterboard/internal/archive"
	"github.com/five82/clusterboard/internal/notify"
	"github.com/five82/clusterboard/internal/prefs"
	"github.com/five82/clusterboard/internal/state"
	"github.com/five82/clusterboard/internal/submit"
	"github.com/five82/clusterboard/internal/view"
)

// Exporter downloads the backend's export file.
type Exporter interface {
	Download(ctx context.Context) (*api.Download, error)
	BaseURL() string
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    Exporter
	Store     *state.Store
	Queue     *notify.Queue
	Submit    *submit.Controller
	Archive   *archive.Archive
	Theme     string
	PrefsPath string
	Logger    *slog.Logger
}

type focus int

const (
	focusList focus = iota
	focusCompose
	focusSearch
)

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	client    Exporter
	store     *state.Store
	queue     *notify.Queue
	submitter *submit.Controller
	archive   *archive.Archive
	prefsPath string
	logger    *slog.Logger
	keys      keyMap

	theme  Theme
	width  int
	height int
	ready  bool

	snapshot  state.Snapshot
	toasts    []notify.Toast
	view      view.State
	projected []api.Cluster
	selected  int

	focus      focus
	compose    textarea.Model
	search     textinput.Model
	spinner    spinner.Model
	submitting bool
	exporting  bool
	showHelp   bool
	showChart  bool

	storeCh     <-chan struct{}
	storeCancel func()
	toastCh     <-chan struct{}
	toastCancel func()
}

// New creates a new Bubble Tea model and subscribes it to store and queue changes.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	compose := textarea.New()
	compose.Placeholder = "Share feedback, an idea or a question..."
	compose.CharLimit = api.MaxCommentLength
	compose.ShowLineNumbers = false
	compose.SetHeight(ComposeLines)

	search := textinput.New()
	search.Placeholder = "filter clusters"
	search.Prompt = "/"

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		client:    opts.Client,
		store:     opts.Store,
		queue:     opts.Queue,
		submitter: opts.Submit,
		archive:   opts.Archive,
		prefsPath: prefsPath,
		logger:    logger,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.Theme),
		compose:   compose,
		search:    search,
		spinner:   spin,
		showChart: true,
	}
	if m.store != nil {
		m.storeCh, m.storeCancel = m.store.Subscribe()
		m.snapshot = m.store.Current()
	}
	if m.queue != nil {
		m.toastCh, m.toastCancel = m.queue.Subscribe()
		m.toasts = m.queue.List()
	}
	m.reproject()
	return m
}

// Close releases the store and queue subscriptions.
func (m Model) Close() {
	if m.storeCancel != nil {
		m.storeCancel()
	}
	if m.toastCancel != nil {
		m.toastCancel()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen}
	if m.storeCh != nil {
		cmds = append(cmds, waitForSignal(m.storeCh, storeChangedMsg{}))
	}
	if m.toastCh != nil {
		cmds = append(cmds, waitForSignal(m.toastCh, toastsChangedMsg{}))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.compose.SetWidth(max(m.listWidth()-4, 10))
		m.search.Width = max(m.listWidth()-8, 10)
		return m, nil

	case storeChangedMsg:
		if m.store != nil {
			m.snapshot = m.store.Current()
			m.reproject()
		}
		return m, waitForSignal(m.storeCh, storeChangedMsg{})

	case toastsChangedMsg:
		if m.queue != nil {
			m.toasts = m.queue.List()
		}
		return m, waitForSignal(m.toastCh, toastsChangedMsg{})

	case submitDoneMsg:
		if errors.Is(msg.err, submit.ErrBusy) {
			return m, nil
		}
		m.submitting = false
		if msg.err == nil {
			m.compose.Reset()
			m.focus = focusList
			m.compose.Blur()
		}
		return m, nil

	case refreshDoneMsg:
		if msg.err != nil {
			m.logger.Warn("manual refresh failed", "error", msg.err)
			m.notify(submit.MsgLoadError, notify.SeverityError)
		}
		return m, nil

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.logger.Warn("export failed", "error", msg.err)
			m.notify("Export failed", notify.SeverityError)
			return m, nil
		}
		m.logger.Info("export saved", "id", msg.entry.ID, "filename", msg.entry.Filename, "bytes", msg.entry.Size)
		m.notify(fmt.Sprintf("Saved %s to archive", msg.entry.Filename), notify.SeveritySuccess)
		return m, nil

	case spinner.TickMsg:
		if !m.submitting && !m.exporting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	header := m.renderHeader()
	cmdBar := m.renderCommandBar()
	toasts := m.renderToasts()

	bodyHeight := m.height - 2
	if toasts != "" {
		bodyHeight -= lipgloss.Height(toasts)
	}
	parts := []string{header, m.renderBody(max(bodyHeight, 3))}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, cmdBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch m.focus {
	case focusCompose:
		return m.handleComposeKey(msg)
	case focusSearch:
		return m.handleSearchKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.ToggleTheme):
		m.toggleTheme()
	case key.Matches(msg, m.keys.Refresh):
		return m, refreshCmd(m.ctx, m.store)
	case key.Matches(msg, m.keys.Export):
		return m.startExport()
	case key.Matches(msg, m.keys.Dismiss):
		if m.queue != nil && len(m.toasts) > 0 {
			m.queue.Dismiss(m.toasts[0].ID)
		}
	case key.Matches(msg, m.keys.ToggleChart):
		m.showChart = !m.showChart
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.projected)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selected = max(len(m.projected)-1, 0)
	case key.Matches(msg, m.keys.Expand):
		if c, ok := m.selectedCluster(); ok {
			m.view = m.view.ToggleExpanded(c.ID)
		}
	case key.Matches(msg, m.keys.CycleSort):
		id := m.selectedID()
		m.view = m.view.CycleSort()
		m.reproject()
		m.selectID(id)
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Compose):
		m.focus = focusCompose
		return m, m.compose.Focus()
	}
	return m, nil
}

func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.startSubmit()
	case key.Matches(msg, m.keys.Cancel):
		m.focus = focusList
		m.compose.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Accept):
		m.focus = focusList
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.focus = focusList
		m.search.Blur()
		m.search.SetValue("")
		m.view = m.view.WithSearch("")
		m.reproject()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.view.Search {
		m.view = m.view.WithSearch(m.search.Value())
		m.reproject()
		m.selected = 0
	}
	return m, cmd
}

func (m Model) startSubmit() (tea.Model, tea.Cmd) {
	if m.submitter == nil {
		return m, nil
	}
	m.submitter.SetDraft(m.compose.Value())
	cmds := []tea.Cmd{submitCmd(m.ctx, m.submitter)}
	if !m.submitting {
		m.submitting = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) startExport() (tea.Model, tea.Cmd) {
	if m.exporting {
		return m, nil
	}
	if m.client == nil || m.archive == nil {
		m.notify("Export archive unavailable", notify.SeverityWarning)
		return m, nil
	}
	m.exporting = true
	return m, tea.Batch(exportCmd(m.ctx, m.client, m.archive), m.spinner.Tick)
}

func (m *Model) toggleTheme() {
	m.theme = GetTheme(prefs.ToggleTheme(m.theme.Name))
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
		m.logger.Warn("save prefs failed", "path", m.prefsPath, "error", err)
	}
}

func (m *Model) notify(text string, sev notify.Severity) {
	if m.queue != nil {
		m.queue.Enqueue(text, sev)
	}
}

// reproject recomputes the visible list and keeps the selection in range.
func (m *Model) reproject() {
	m.projected = view.Project(m.snapshot.Clusters, m.view)
	if m.selected >= len(m.projected) {
		m.selected = len(m.projected) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m Model) selectedCluster() (api.Cluster, bool) {
	if m.selected < 0 || m.selected >= len(m.projected) {
		return api.Cluster{}, false
	}
	return m.projected[m.selected], true
}

func (m Model) selectedID() string {
	c, _ := m.selectedCluster()
	return c.ID
}

func (m *Model) selectID(id string) {
	if strings.TrimSpace(id) == "" {
		return
	}
	for i, c := range m.projected {
		if c.ID == id {
			m.selected = i
			return
		}
	}
}

// Messages

type storeChangedMsg struct{}

type toastsChangedMsg struct{}

type submitDoneMsg struct {
	res submit.Result
	err error
}

type refreshDoneMsg struct{ err error }

type exportDoneMsg struct {
	entry archive.Entry
	err   error
}

// Commands

// waitForSignal blocks on ch and converts a signal into msg. A closed channel
// yields no message, which ends the listen loop.
func waitForSignal(ch <-chan struct{}, msg tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return msg
	}
}

func submitCmd(ctx context.Context, c *submit.Controller) tea.Cmd {
	return func() tea.Msg {
		res, err := c.Submit(ctx)
		return submitDoneMsg{res: res, err: err}
	}
}

func refreshCmd(ctx context.Context, store *state.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return refreshDoneMsg{err: store.Refresh(ctx)}
	}
}

func exportCmd(ctx context.Context, client Exporter, arch *archive.Archive) tea.Cmd {
	return func() tea.Msg {
		dl, err := client.Download(ctx)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		entry, err := arch.Save(dl.Filename, dl.ContentType, client.BaseURL(), dl.Data)
		return exportDoneMsg{entry: entry, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
