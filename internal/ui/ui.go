package ui

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/wereb/internal/catalog"
	"github.com/desertthunder/wereb/internal/formatter"
	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/playback"
	"github.com/desertthunder/wereb/internal/player"
	"github.com/desertthunder/wereb/internal/streaming"
)

// Title heads every view.
const Title = "ወረብ ከዓመት እስከ ዓመት"

// LoadError is shown when a fetch fails.
const LoadError = "Failed to load tracks. Please try again."

const (
	seekStep   = 5.0
	volumeStep = 0.1
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BrowseView ViewState = iota
	FeaturedView
	ErrorView
)

// Fetcher supplies the catalog.
type Fetcher interface {
	GetTracks(ctx context.Context) ([]models.Track, error)
}

// Audio reports progress of the track loaded into the session's backend.
type Audio interface {
	Progress() <-chan player.Status
	Done() <-chan struct{}
}

// Options holds the dependencies of a [Model]. Session and Audio may be nil.
type Options struct {
	Fetcher Fetcher
	Session *playback.Session
	Audio   Audio
	Rand    *rand.Rand
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	fetcher Fetcher
	session *playback.Session
	audio   Audio
	rng     *rand.Rand

	tracks   []models.Track
	tree     *catalog.Tree
	expanded catalog.FolderSet
	featured []models.Track
	loading  bool
	err      error
	notice   string
	stream   string

	width        int
	height       int
	browse       list.Model
	featuredList list.Model
	search       textinput.Model
	spinner      spinner.Model
	progress     progress.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	session := opts.Session
	if session == nil {
		session = playback.NewSession(nil, nil)
	}

	search := textinput.New()
	search.Placeholder = "Search titles and categories"
	search.Prompt = "/ "

	d := rowDelegate{session: session}
	return &Model{
		ctx:          ctx,
		view:         BrowseView,
		fetcher:      opts.Fetcher,
		session:      session,
		audio:        opts.Audio,
		rng:          opts.Rand,
		tree:         catalog.Group(nil),
		expanded:     catalog.NewFolderSet(),
		browse:       newList(d),
		featuredList: newList(d),
		search:       search,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init starts the first fetch and begins listening to the audio output.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.waitForAudio())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.browse.SetSize(msg.Width-4, max(msg.Height-12, 3))
		m.featuredList.SetSize(msg.Width-4, max(msg.Height-12, 3))
		m.progress.Width = max(msg.Width-30, 10)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTracksFetched:
		res := msg.data.(fetchResult)
		m.loading = false
		if res.err != nil {
			m.err = res.err
			m.view = ErrorView
			return m, nil
		}

		m.err = nil
		if m.view == ErrorView {
			m.view = BrowseView
		}
		m.setTracks(res.tracks)
		return m, nil

	case MsgPlayback:
		if err, _ := msg.data.(error); err != nil {
			m.notice = err.Error()
		} else {
			m.notice = ""
		}
		return m, nil

	case MsgProgress:
		status := msg.data.(player.Status)
		m.session.Report(status.Current, status.Total)
		m.stream = streaming.Status(status.Stalled)
		return m, m.waitForAudio()

	case MsgTrackEnded:
		return m, tea.Batch(m.do(func() error { return m.session.Ended(m.ctx) }), m.waitForAudio())
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(Title))
	b.WriteString("\n")

	switch m.view {
	case ErrorView:
		b.WriteString(styles.err.Render(LoadError))
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.retryKey(), m.keys.quit}))
		return b.String()
	case FeaturedView:
		b.WriteString(m.renderFeatured())
	default:
		b.WriteString(m.renderBrowse())
	}

	b.WriteString("\n")
	b.WriteString(m.renderNowPlaying())
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(styles.warn.Render(m.notice))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.search.Focused() {
		return m.handleSearchKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case m.view == ErrorView:
		if key.Matches(msg, m.keys.refresh) {
			return m, m.fetch()
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetch()
	case key.Matches(msg, m.keys.play):
		return m, m.do(m.session.TogglePlay)
	case key.Matches(msg, m.keys.next):
		return m, m.do(func() error { return m.session.Next(m.ctx) })
	case key.Matches(msg, m.keys.prev):
		return m, m.do(func() error { return m.session.Previous(m.ctx) })
	case key.Matches(msg, m.keys.forward):
		return m, m.seekBy(seekStep)
	case key.Matches(msg, m.keys.rewind):
		return m, m.seekBy(-seekStep)
	case key.Matches(msg, m.keys.louder):
		return m, m.do(func() error { return m.session.SetVolume(m.session.Volume() + volumeStep) })
	case key.Matches(msg, m.keys.quieter):
		return m, m.do(func() error { return m.session.SetVolume(m.session.Volume() - volumeStep) })
	case key.Matches(msg, m.keys.mute):
		return m, m.do(m.session.ToggleMute)
	}

	if m.view == FeaturedView {
		return m.handleFeaturedKeys(msg)
	}
	return m.handleBrowseKeys(msg)
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.search):
		m.search.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.featured):
		m.view = FeaturedView
		return m, nil
	case key.Matches(msg, m.keys.back):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.rebuild()
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		switch item := m.browse.SelectedItem().(type) {
		case folderItem:
			m.expanded = m.expanded.Toggle(item.folder.Path)
			m.rebuild()
			return m, nil
		case trackItem:
			return m, m.playTrack(item.track)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.browse, cmd = m.browse.Update(msg)
	return m, cmd
}

func (m *Model) handleFeaturedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.featured):
		m.view = BrowseView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.featuredList.SelectedItem().(trackItem); ok {
			return m, m.playTrack(item.track)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.featuredList, cmd = m.featuredList.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.search.Blur()
		m.search.SetValue("")
		m.rebuild()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.rebuild()
	}
	return m, cmd
}

// setTracks replaces the catalog after a fetch and draws a new featured sample.
func (m *Model) setTracks(tracks []models.Track) {
	m.tracks = tracks
	m.session.SetTracks(tracks)
	m.featured = catalog.Sample(tracks, catalog.FeaturedCount, m.rng)
	m.featuredList.SetItems(trackItems(m.featured))
	m.rebuild()
}

// rebuild regroups the filtered tracks and refreshes the browse rows, keeping the cursor.
func (m *Model) rebuild() {
	term := m.search.Value()
	m.tree = catalog.Group(catalog.Filter(m.tracks, term))

	cursor := m.browse.Index()
	m.browse.SetItems(treeItems(m.tree, m.expanded, term != ""))
	if n := len(m.browse.Items()); n > 0 {
		m.browse.Select(min(cursor, n-1))
	}
}

// fetch loads the catalog. It does nothing while a fetch is already running.
func (m *Model) fetch() tea.Cmd {
	if m.loading || m.fetcher == nil {
		return nil
	}
	m.loading = true

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		tracks, err := m.fetcher.GetTracks(m.ctx)
		return tracksFetchedMsg(tracks, err)
	})
}

// do runs a transport action off the update loop and reports its outcome.
func (m *Model) do(action func() error) tea.Cmd {
	return func() tea.Msg {
		return playbackMsg(action())
	}
}

func (m *Model) playTrack(track models.Track) tea.Cmd {
	m.notice = "Loading " + track.DisplayTitle() + "..."
	return m.do(func() error { return m.session.Play(m.ctx, track) })
}

func (m *Model) seekBy(delta float64) tea.Cmd {
	return m.do(func() error {
		pos, total := m.session.Position()
		_, err := m.session.Seek(playback.Progress(pos, total) + delta)
		return err
	})
}

func (m *Model) waitForAudio() tea.Cmd {
	if m.audio == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case status := <-m.audio.Progress():
			return progressMsg(status)
		case <-m.audio.Done():
			return trackEndedMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) retryKey() key.Binding {
	return key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry"))
}

func (m *Model) renderBrowse() string {
	var b strings.Builder

	switch {
	case m.loading:
		fmt.Fprintf(&b, "%s Loading tracks...\n", m.spinner.View())
	default:
		fmt.Fprintf(&b, "%d tracks\n", len(m.tracks))
	}

	if m.search.Focused() || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	switch {
	case m.loading && len(m.tracks) == 0:
	case len(m.tracks) == 0:
		b.WriteString(styles.help.Render("No tracks found."))
	case len(m.browse.Items()) == 0:
		b.WriteString(styles.help.Render(fmt.Sprintf("No tracks match %q.", m.search.Value())))
	default:
		b.WriteString(m.browse.View())
	}
	return b.String()
}

func (m *Model) renderFeatured() string {
	if len(m.featured) == 0 {
		return styles.help.Render("No featured tracks.")
	}
	return fmt.Sprintf("Featured\n%s", m.featuredList.View())
}

func (m *Model) renderNowPlaying() string {
	track, ok := m.session.Current()
	if !ok {
		return styles.help.Render("Nothing playing")
	}

	icon := "▶"
	if m.session.State() != playback.Playing {
		icon = "⏸"
	}

	pos, total := m.session.Position()
	bar := m.progress.ViewAs(playback.Progress(pos, total) / 100)
	health := ""
	if m.stream != "" && m.stream != "Streaming" {
		health = "  " + styles.warn.Render(m.stream)
	}
	return fmt.Sprintf("%s %s • %s\n%s %s / %s  vol %d%%%s",
		icon,
		styles.ok.Render(track.DisplayTitle()),
		track.Category,
		bar,
		formatter.Duration(pos.Seconds()),
		formatter.Duration(total.Seconds()),
		int(m.session.Volume()*100+0.5),
		health,
	)
}

func (m *Model) renderHelp() string {
	if m.search.Focused() {
		return m.help.ShortHelpView([]key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "done")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		})
	}

	refresh := m.keys.refresh
	if m.loading {
		refresh.SetEnabled(false)
	}

	if m.view == FeaturedView {
		return m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.play, m.keys.back, refresh, m.keys.quit})
	}
	return m.help.ShortHelpView([]key.Binding{
		m.keys.enter, m.keys.search, m.keys.featured, m.keys.play, m.keys.next, m.keys.prev, refresh, m.keys.quit,
	})
}

// Run starts the bubbletea program on the alternate screen and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
