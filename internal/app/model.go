// Package app is the bubbletea program: it renders the workspace and turns
// routed input into operations on the flow core and its collaborators.
package app

import (
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/flowfiler/internal/command"
	"github.com/wilbur182/flowfiler/internal/config"
	"github.com/wilbur182/flowfiler/internal/dirmodel"
	"github.com/wilbur182/flowfiler/internal/drives"
	"github.com/wilbur182/flowfiler/internal/favorites"
	"github.com/wilbur182/flowfiler/internal/fdmonitor"
	"github.com/wilbur182/flowfiler/internal/fileops"
	"github.com/wilbur182/flowfiler/internal/flow"
	"github.com/wilbur182/flowfiler/internal/input"
	"github.com/wilbur182/flowfiler/internal/mouse"
	"github.com/wilbur182/flowfiler/internal/preview"
	"github.com/wilbur182/flowfiler/internal/shell"
	"github.com/wilbur182/flowfiler/internal/workspace"
)

// focusArea is what receives typed keys.
type focusArea int

const (
	focusPanes focusArea = iota
	focusFavorites
	focusAddress
	focusSearch
	focusFavoritesFilter
)

// promptKind names the question shown in the footer input.
type promptKind int

const (
	promptNone promptKind = iota
	promptRename
	promptNewFolder
	promptZip
	promptRenameTab
)

// addressSink receives address changes from the flow core.
type addressSink struct {
	path    string
	changed bool
}

// AddressChanged implements flow.Observer.
func (a *addressSink) AddressChanged(path string) {
	a.path = path
	a.changed = true
}

// Options wires the model's collaborators. Zero values select the real
// implementations.
type Options struct {
	Config   *config.Config
	Logger   *slog.Logger
	Lister   dirmodel.Lister
	Shell    *shell.Shell
	Convert  fileops.Converter
	Watch    bool
	StartDir string
	// Restore loads the session from Config.Session.Path.
	Restore bool
	// Drives lists mounted volumes; defaults to drives.List.
	Drives func(*slog.Logger) ([]drives.Drive, error)
}

// Model is the root Bubble Tea model.
type Model struct {
	cfg    *config.Config
	logger *slog.Logger

	ws      *workspace.Workspace
	env     *flow.Env
	fs      *dirmodel.FS // nil when a custom lister is injected
	sched   *idleScheduler
	address *addressSink
	watcher *dirmodel.Watcher
	fds     *fdmonitor.Monitor

	keys   *input.Registry
	mouse  *mouse.Handler
	router *input.Router

	favs      *favorites.Store
	drives    []drives.Drive
	listDrive func(*slog.Logger) ([]drives.Drive, error)
	shell     *shell.Shell
	convert   fileops.Converter
	quick     *preview.QuickLook
	qlScroll  int

	// Text inputs
	addressInput textinput.Model
	addressErr   string
	suggestion   string
	searchInput  textinput.Model
	promptInput  textinput.Model
	prompt       promptKind
	promptPaths  []string

	focus focusArea

	// Sidebar
	showSidebar  bool
	sidebarWidth int
	favCursor    int
	favQuery     string

	// Overlays
	menuOpen   bool
	menuItems  []command.Item
	menuCursor int
	confirm    *command.Command
	info       []string
	showHelp   bool

	// litLane is the lane whose separator is highlighted.
	litLane     string
	termFocused bool

	// viewRows records how many rows each SubView showed in the last
	// render, for paging and keeping the cursor in view.
	viewRows map[string]int

	width, height int

	// busy names the file operation in flight. Only one runs at a time.
	busy string

	statusMsg     string
	statusExpiry  time.Time
	statusIsError bool

	quitting bool
}

// New creates the application model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
		_ = cfg.Validate()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var fsys *dirmodel.FS
	lister := opts.Lister
	if lister == nil {
		fsys = dirmodel.NewFS(cfg.Cache.Entries, logger)
		lister = fsys
	}

	sched := &idleScheduler{}
	sink := &addressSink{}
	env := flow.NewEnv(lister, sched, logger)
	if opts.StartDir != "" {
		env.WorkDir = opts.StartDir
	}
	env.SearchDepth = cfg.Flow.SearchDepth
	env.DefaultMode = cfg.DisplayMode()
	env.DefaultShowHidden = cfg.Flow.DefaultShowHidden
	env.Observer = sink

	quick := preview.NewQuickLook(lister, cfg.Preview.MaxBytes, logger)
	env.Preview = quick

	ws := workspace.New(env)
	if opts.Restore {
		ws.RestoreFile(cfg.Session.Path)
	}

	keys := input.DefaultRegistry()
	for _, err := range keys.ApplyOverrides(cfg.Keymap.Overrides) {
		logger.Warn("ignoring key override", "error", err)
	}

	mh := mouse.NewHandler()
	router := input.NewRouter(mh, cfg.Flow.ResizeStep)

	sh := opts.Shell
	if sh == nil {
		sh = shell.New(logger)
	}
	conv := opts.Convert
	if conv.Logger == nil {
		conv.Logger = logger
	}
	listDrive := opts.Drives
	if listDrive == nil {
		listDrive = drives.List
	}

	m := Model{
		cfg:          cfg,
		logger:       logger,
		ws:           ws,
		env:          env,
		fs:           fsys,
		sched:        sched,
		address:      sink,
		fds:          fdmonitor.New(),
		keys:         keys,
		mouse:        mh,
		router:       router,
		favs:         favorites.Open(cfg.Favorites.Path, logger),
		listDrive:    listDrive,
		shell:        sh,
		convert:      conv,
		quick:        quick,
		addressInput: newInput("path"),
		searchInput:  newInput("search"),
		promptInput:  newInput(""),
		showSidebar:  cfg.UI.ShowSidebar,
		sidebarWidth: cfg.UI.SidebarWidth,
		viewRows:     make(map[string]int),
		termFocused:  true,
	}
	m.applyChrome()

	if opts.Watch {
		w, err := dirmodel.NewWatcher(logger)
		if err != nil {
			logger.Warn("file watching disabled", "error", err)
		} else {
			m.watcher = w
			w.Sync(ws.Folders())
		}
	}

	if a := ws.ActiveArea(); a != nil {
		if p := a.ActivePane(); p != nil && len(p.Paths()) > 0 {
			sink.AddressChanged(p.Paths()[0])
		}
	}
	m.syncAddress()
	return m
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 4096
	return ti
}

// applyChrome restores window chrome from the session blobs.
func (m *Model) applyChrome() {
	if s, err := workspace.DecodeSplitter(m.ws.SplitterState); err == nil {
		m.showSidebar = s.SidebarVisible
		if s.SidebarWidth >= 10 {
			m.sidebarWidth = s.SidebarWidth
		}
	}
	if g, err := workspace.DecodeGeometry(m.ws.Geometry); err == nil {
		m.width, m.height = g.Width, g.Height
	}
	m.router.SidebarWidth = m.sidebarWidth
}

// Init initializes the model and returns initial commands.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(),
		loadDrivesCmd(m.listDrive, m.logger),
		m.sched.cmd(),
	}
	if m.watcher != nil {
		cmds = append(cmds, waitForChanges(m.watcher))
	}
	return tea.Batch(cmds...)
}

// Workspace exposes the workspace, mainly for tests and the CLI.
func (m Model) Workspace() *workspace.Workspace { return m.ws }

// ShowToast displays a temporary status message.
func (m *Model) ShowToast(msg string, duration time.Duration) {
	m.statusMsg = msg
	m.statusExpiry = time.Now().Add(duration)
	m.statusIsError = false
}

// ShowError displays a temporary error message.
func (m *Model) ShowError(err error) {
	m.statusMsg = err.Error()
	m.statusExpiry = time.Now().Add(5 * time.Second)
	m.statusIsError = true
}

// ClearToast clears any expired toast message.
func (m *Model) ClearToast() {
	if m.statusMsg != "" && time.Now().After(m.statusExpiry) {
		m.statusMsg = ""
		m.statusIsError = false
	}
}

// SaveSession writes the workspace and chrome to the session file.
func (m *Model) SaveSession() error {
	m.ws.Geometry = workspace.EncodeGeometry(workspace.Geometry{Width: m.width, Height: m.height})
	m.ws.SplitterState = workspace.EncodeSplitter(workspace.Splitter{
		SidebarWidth:   m.sidebarWidth,
		SidebarVisible: m.showSidebar,
	})
	return m.ws.SaveFile(m.cfg.Session.Path)
}

// Close stops background watchers.
func (m *Model) Close() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

// workDir is the fallback folder for operations without a pane folder.
func (m *Model) workDir() string {
	if m.env.WorkDir != "" {
		return m.env.WorkDir
	}
	wd, _ := os.Getwd()
	return wd
}
