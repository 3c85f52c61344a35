// Package ui provides the read-aloud terminal UI for lectern: a viewport
// over the document with live paragraph and word highlighting, transport
// keys, and click-to-seek.
package ui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lectern-reader/lectern/internal/audio"
	"github.com/lectern-reader/lectern/internal/bridge"
	"github.com/lectern-reader/lectern/internal/cache"
	"github.com/lectern-reader/lectern/internal/document"
	"github.com/lectern-reader/lectern/internal/highlight"
	"github.com/lectern-reader/lectern/internal/session"
	"github.com/lectern-reader/lectern/internal/speech"
)

const (
	statusBarHeight      = 1
	statusMessageTimeout = 3 * time.Second
	ellipsis             = "…"
)

// NewProgram returns a new Tea program reading the configured file.
func NewProgram(cfg Config) *tea.Program {
	log.Debug("starting lectern", "path", cfg.Path, "provider", cfg.Provider)
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg), opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	docLoadedMsg struct {
		doc *document.Document
	}
	fileChangedMsg          struct{}
	sessionReadyMsg         struct{ sess *session.Session }
	statusMessageTimeoutMsg struct{}
	editorFinishedMsg       struct{ err error }
)

// playState is the transport's view of the session.
type playState int

const (
	stateIdle playState = iota
	statePreparing
	statePlaying
	statePaused
)

func (s playState) String() string {
	return map[playState]string{
		stateIdle:      "idle",
		statePreparing: "synthesizing",
		statePlaying:   "playing",
		statePaused:    "paused",
	}[s]
}

type model struct {
	cfg      Config
	width    int
	height   int
	fatalErr error

	doc      *document.Document
	renderer *highlight.Renderer
	coord    *highlight.Coordinator
	arbiter  *highlight.ScrollArbiter
	viewport viewport.Model

	br       *bridge.Bridge
	player   audio.Player
	provider speech.Provider
	store    *cache.Store
	sess     *session.Session
	watcher  *document.Watcher

	state    playState
	percent  float64
	remain   string
	showHelp bool

	spinner            spinner.Model
	statusMessage      string
	statusMessageTimer *time.Timer
}

func newModel(cfg Config) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	capability := highlight.DetectRangeHighlighter(
		termenv.ColorProfile(),
		highlight.DefaultStyles().Word,
	)
	arbiter := highlight.NewScrollArbiter(cfg.ScrollCooldown)

	m := model{
		cfg:      cfg,
		arbiter:  arbiter,
		viewport: viewport.New(0, 0),
		br:       bridge.New(bridge.DefaultBuffer, log.Default()),
		player:   newPlayer(cfg),
		provider: newProvider(cfg),
		coord:    highlight.New(capability, arbiter, log.Default()),
		spinner:  sp,
	}
	if cfg.MouseWheelDelta > 0 {
		m.viewport.MouseWheelDelta = cfg.MouseWheelDelta
	}

	if cfg.CacheDir != "" {
		store, err := cache.Open(cfg.CacheDir)
		if err != nil {
			log.Warn("cache unavailable", "dir", cfg.CacheDir, "error", err)
		} else {
			m.store = store
		}
	}

	if w, err := document.Watch(cfg.Path); err != nil {
		log.Warn("file watching unavailable", "error", err)
	} else {
		m.watcher = w
	}

	return m
}

// newPlayer opens the audio device when the provider emits real audio
// bytes. The mock provider carries timing only, so its playback runs on
// the wall-clock timer instead.
func newPlayer(cfg Config) audio.Player {
	if cfg.Provider == "" || cfg.Provider == "mock" {
		return audio.NewTimerPlayer()
	}
	p, err := audio.NewOtoPlayer(22050, 1)
	if err != nil {
		log.Warn("audio device unavailable, timing playback on the wall clock", "error", err)
		return audio.NewTimerPlayer()
	}
	return p
}

// newProvider maps the configured name to an implementation. Unknown
// names fall back to the mock rather than failing startup.
func newProvider(cfg Config) speech.Provider {
	switch cfg.Provider {
	case "", "mock":
		return &speech.MockProvider{WordsPerMinute: cfg.WordsPerMinute}
	default:
		log.Warn("unknown speech provider, using mock", "provider", cfg.Provider)
		return &speech.MockProvider{WordsPerMinute: cfg.WordsPerMinute}
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{loadDocument(m.cfg.Path), waitForEvent(m.br), m.spinner.Tick}
	if m.watcher != nil {
		cmds = append(cmds, waitForFileChange(m.watcher))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// After a fatal error any key exits.
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
		return m, nil
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		next, cmd, handled := m.handleKey(msg)
		if handled {
			return next, cmd
		}
		m = next
		// Unhandled keys reach the viewport below; movement keys count
		// as manual scrolling.
		if isScrollKey(msg) {
			m.arbiter.NoteUserScroll()
		}

	case tea.MouseMsg:
		switch msg.Button { //nolint:exhaustive
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			m.arbiter.NoteUserScroll()
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress {
				m.clickToSeek(msg.X, msg.Y)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - statusBarHeight
		if m.renderer != nil {
			m.renderer.SetWidth(m.contentWidth())
			m.syncContent()
		}

	case docLoadedMsg:
		m.doc = msg.doc
		m.renderer = highlight.NewRenderer(m.doc, highlight.DefaultStyles(), highlight.DetectRangeHighlighter(
			termenv.ColorProfile(),
			highlight.DefaultStyles().Word,
		))
		m.renderer.SetWidth(m.contentWidth())
		m.syncContent()

	case fileChangedMsg:
		// Stop before the paragraph list shifts underneath the session.
		if m.sess != nil && m.sess.Playing() {
			m.sess.Stop() //nolint:errcheck
		}
		m.sess = nil
		m.state = stateIdle
		cmds = append(cmds,
			loadDocument(m.cfg.Path),
			m.showStatusMessage("Reloaded after change on disk"),
		)
		if m.watcher != nil {
			cmds = append(cmds, waitForFileChange(m.watcher))
		}

	case sessionReadyMsg:
		m.sess = msg.sess
		if err := m.sess.Play(); err != nil {
			m.state = stateIdle
			cmds = append(cmds, m.showStatusMessage("Playback failed: "+err.Error()))
		} else {
			m.state = statePlaying
		}

	case errMsg:
		if m.doc == nil {
			m.fatalErr = msg.err
			return m, nil
		}
		m.state = stateIdle
		cmds = append(cmds, m.showStatusMessage(msg.err.Error()))

	case statusMessageTimeoutMsg:
		m.statusMessage = ""

	case editorFinishedMsg:
		if msg.err != nil {
			cmds = append(cmds, m.showStatusMessage("Editor error: "+msg.err.Error()))
		}
		cmds = append(cmds, loadDocument(m.cfg.Path))

	case spinner.TickMsg:
		if m.state == statePreparing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	// Bridge events. Each one re-arms the listener.
	case bridge.HighlightMsg:
		if m.coord.ApplyParagraph(msg.Index, msg.Timestamp) {
			m.scrollToParagraph(msg.Index)
		}
		m.syncContent()
		cmds = append(cmds, waitForEvent(m.br))

	case bridge.SetWordTimelineMsg:
		m.coord.SetWordTimeline(msg.ParagraphIndex, msg.Boundaries)
		cmds = append(cmds, waitForEvent(m.br))

	case bridge.HighlightWordMsg:
		if m.coord.ApplyWord(msg.ParagraphIndex, msg.WordIndex, msg.Timestamp) {
			m.syncContent()
		}
		cmds = append(cmds, waitForEvent(m.br))

	case bridge.ClearHighlightMsg:
		m.coord.ClearAll()
		m.syncContent()
		if m.sess != nil && !m.sess.Playing() {
			m.state = stateIdle
		}
		cmds = append(cmds, waitForEvent(m.br))

	case bridge.ProgressMsg:
		m.percent = msg.Percent
		m.remain = msg.TimeRemaining
		cmds = append(cmds, waitForEvent(m.br))
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey deals with transport and application keys. handled=false
// passes the key on to the viewport.
func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd, bool) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.teardown()
		return m, tea.Quit, true

	case " ":
		return m.togglePlayback()

	case "s":
		if m.sess != nil && m.sess.Playing() {
			m.sess.Stop() //nolint:errcheck
			m.state = stateIdle
		}
		return m, nil, true

	case "n":
		if m.sess != nil {
			m.sess.NextParagraph() //nolint:errcheck
		}
		return m, nil, true

	case "p":
		if m.sess != nil {
			m.sess.PrevParagraph() //nolint:errcheck
		}
		return m, nil, true

	case "c":
		if m.doc != nil {
			body, err := os.ReadFile(m.cfg.Path)
			if err == nil {
				// OSC 52 for remote terminals, native clipboard locally.
				termenv.Copy(string(body))
				_ = clipboard.WriteAll(string(body))
				return m, m.showStatusMessage("Copied contents"), true
			}
		}
		return m, nil, true

	case "g", "home":
		m.arbiter.NoteUserScroll()
		m.viewport.GotoTop()
		return m, nil, true

	case "G", "end":
		m.arbiter.NoteUserScroll()
		m.viewport.GotoBottom()
		return m, nil, true

	case "e":
		return m, openEditor(m.cfg.Path), true

	case "r":
		return m, loadDocument(m.cfg.Path), true

	case "?":
		m.showHelp = !m.showHelp
		m.viewport.Height = m.height - statusBarHeight
		if m.showHelp {
			m.viewport.Height -= lipgloss.Height(m.helpView())
		}
		return m, nil, true
	}
	return m, nil, false
}

// togglePlayback is the space key: prepare-and-play, pause, or resume.
func (m model) togglePlayback() (model, tea.Cmd, bool) {
	switch m.state {
	case statePlaying:
		if m.sess != nil {
			m.sess.Pause() //nolint:errcheck
			m.state = statePaused
		}
	case statePaused:
		if m.sess != nil {
			m.sess.Resume() //nolint:errcheck
			m.state = statePlaying
		}
	case stateIdle:
		if m.doc == nil {
			return m, nil, true
		}
		if m.sess != nil {
			// A finished session restarts from the top without
			// re-synthesizing.
			if err := m.sess.Play(); err == nil {
				m.state = statePlaying
				return m, m.spinner.Tick, true
			}
		}
		m.state = statePreparing
		return m, tea.Batch(m.spinner.Tick, prepareSession(m)), true
	case statePreparing:
		// Synthesis in flight; nothing sensible to toggle.
	}
	return m, nil, true
}

// clickToSeek resolves a mouse press to a word and submits the jump.
func (m *model) clickToSeek(x, y int) {
	if m.renderer == nil || m.sess == nil || !m.sess.Playing() {
		return
	}
	paragraph, word, ok := m.renderer.Locate(m.viewport.YOffset+y, x)
	if !ok {
		return
	}
	if word >= 0 {
		m.br.Submit(bridge.JumpToWordMsg{ParagraphIndex: paragraph, WordIndex: word})
	} else {
		m.br.Submit(bridge.JumpToParagraphMsg{Index: paragraph})
	}
}

// scrollToParagraph jumps the viewport so the paragraph's first line is
// visible. The jump is instant; the arbiter has already approved it.
func (m *model) scrollToParagraph(index int) {
	if m.renderer == nil {
		return
	}
	line, ok := m.renderer.ParagraphLine(index)
	if !ok {
		return
	}
	if line >= m.viewport.YOffset && line < m.viewport.YOffset+m.viewport.Height {
		return
	}
	m.arbiter.NoteProgrammaticScroll()
	m.viewport.SetYOffset(line)
}

// syncContent re-renders the page with the current highlight state.
func (m *model) syncContent() {
	if m.renderer == nil {
		return
	}
	para, offset, length, ok := m.coord.WordRange()
	m.viewport.SetContent(m.renderer.Render(m.coord.State(), para, offset, length, ok))
}

func (m *model) contentWidth() int {
	w := m.width
	if m.cfg.MaxWidth > 0 && int(m.cfg.MaxWidth) < w {
		w = int(m.cfg.MaxWidth)
	}
	if w < 1 {
		w = 80
	}
	return w
}

func (m *model) teardown() {
	if m.sess != nil && m.sess.Playing() {
		m.sess.Stop() //nolint:errcheck
	}
	if m.watcher != nil {
		m.watcher.Close() //nolint:errcheck
	}
	m.br.Close()
}

func (m *model) showStatusMessage(text string) tea.Cmd {
	m.statusMessage = text
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	t := m.statusMessageTimer
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

func (m model) View() string {
	if m.fatalErr != nil {
		return fmt.Sprintf("\n  %s\n\n  %v\n\n  %s\n",
			errorTitleStyle.Render("ERROR"),
			m.fatalErr,
			subtleStyle.Render("press any key to exit"),
		)
	}

	view := m.viewport.View() + "\n" + m.statusBarView()
	if m.showHelp {
		view += "\n" + m.helpView()
	}
	return view
}

// COMMANDS

func loadDocument(path string) tea.Cmd {
	return func() tea.Msg {
		source, err := os.ReadFile(path)
		if err != nil {
			return errMsg{fmt.Errorf("unable to read file: %w", err)}
		}
		doc, err := document.Extract(source)
		if err != nil {
			return errMsg{err}
		}
		doc.Path = path
		return docLoadedMsg{doc: doc}
	}
}

// prepareSession synthesizes the document off the update loop.
func prepareSession(m model) tea.Cmd {
	doc, provider, player, br := m.doc, m.provider, m.player, m.br
	cfg := session.Config{
		WordsPerMinute: m.cfg.WordsPerMinute,
		Cache:          m.store,
		Logger:         log.Default(),
	}
	return func() tea.Msg {
		sess := session.New(doc, provider, player, br, cfg)
		if err := sess.Prepare(context.Background()); err != nil {
			return errMsg{err}
		}
		return sessionReadyMsg{sess: sess}
	}
}

// waitForEvent turns the bridge's outbound channel into tea messages, one
// receive per command.
func waitForEvent(br *bridge.Bridge) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-br.Events()
		if !ok {
			return nil
		}
		return ev
	}
}

func waitForFileChange(w *document.Watcher) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-w.Changed(); !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

func isScrollKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "up", "down", "j", "k", "b", "f", "u", "d",
		"pgup", "pgdown", "g", "G", "home", "end":
		return true
	}
	return false
}
