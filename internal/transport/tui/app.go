// Package tui is the terminal front-end of the dashboard. It runs locally
// with the CLI credentials or per connection behind the SSH server.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bravo68web/confdash/internal/application/auth"
	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/infrastructure/notify"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
	"github.com/bravo68web/confdash/pkg/logger"
)

// LoginFunc exchanges a username and password for credentials
type LoginFunc func(ctx context.Context, username, password string) (*models.Credentials, error)

// Options configures an App
type Options struct {
	// API is the unauthenticated facade; the App binds the token to it
	API    *service.APIService
	Export *service.ExportService
	Docs   *service.DocsService

	// Credentials starts the App signed in. Nil shows the login screen.
	Credentials *models.Credentials
	Login       LoginFunc
	// Logout runs when the user signs out or the session expires
	Logout func(ctx context.Context) error

	IdleTimeout    time.Duration
	VerifyInterval time.Duration
	Keys           *KeyMap
}

// env is what every screen shares
type env struct {
	ctx    context.Context
	api    *service.APIService
	export *service.ExportService
	docs   *service.DocsService
	email  string
	user   *models.User
	keys   KeyMap
	status *StatusLine
	spin   *spinner.Model
}

// loading renders the shared spinner next to text
func (e *env) loading(text string) string {
	if e.spin == nil {
		return emptyStyle.Render(text)
	}
	return e.spin.View() + " " + emptyStyle.Render(text)
}

// screen is one page of the stack
type screen interface {
	init() tea.Cmd
	// update handles msg. act is the resolved key action or ActionNone.
	// It reports whether the screen consumed the message.
	update(msg tea.Msg, act Action) (tea.Cmd, bool)
	view(width, height int) string
	// typing reports whether a text input has focus
	typing() bool
}

type (
	pushMsg    struct{ s screen }
	popMsg     struct{}
	replaceMsg struct{ s screen }
	loggedInMsg struct {
		creds *models.Credentials
	}
	expiredMsg struct{ reason error }
	tickMsg    time.Time
)

func push(s screen) tea.Cmd    { return func() tea.Msg { return pushMsg{s} } }
func pop() tea.Msg             { return popMsg{} }
func replace(s screen) tea.Cmd { return func() tea.Msg { return replaceMsg{s} } }

// App is the root bubbletea model
type App struct {
	opts    Options
	env     *env
	stack   []screen
	width   int
	height  int
	help    help.Model
	spinner spinner.Model

	monitor *auth.Monitor
	expired chan error
	log     *logger.Logger
}

// New creates an App bound to ctx
func New(ctx context.Context, opts Options) *App {
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	status := NewStatusLine(5 * time.Second)
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	a := &App{
		opts: opts,
		env: &env{
			ctx:    ctx,
			export: opts.Export,
			docs:   opts.Docs,
			keys:   keys,
			status: status,
		},
		width:   80,
		height:  24,
		help:    help.New(),
		spinner: sp,
		expired: make(chan error, 1),
		log:     logger.Get().WithFields(logger.Component("tui")),
	}
	a.env.spin = &a.spinner
	if opts.Credentials != nil && opts.Credentials.Token != "" {
		a.signIn(opts.Credentials)
		a.stack = []screen{newNamespacesScreen(a.env)}
	} else {
		a.stack = []screen{newLoginScreen(a.env, opts.Login, "")}
	}
	return a
}

// signIn binds creds to the shared env and starts the session monitor
func (a *App) signIn(creds *models.Credentials) {
	notifier := notify.NewDedup(a.env.status, 0)
	a.env.api = a.opts.API.WithToken(creds.Token).WithNotifier(notifier)
	a.env.user = creds.User
	a.env.email = auth.TokenEmail(creds.Token)
	if a.env.email == "" && creds.User != nil {
		a.env.email = creds.User.Email
	}

	api := a.env.api
	verify := func(ctx context.Context) error {
		if !auth.TokenValid(api.Token(), time.Now()) {
			return apperrors.SessionExpired()
		}
		_, err := api.Verify(ctx)
		return err
	}
	a.monitor = auth.NewMonitor(a.opts.IdleTimeout, a.opts.VerifyInterval, verify, func(reason error) {
		select {
		case a.expired <- reason:
		default:
		}
	})
	a.monitor.Start(a.env.ctx)
}

func (a *App) signOut() {
	if a.monitor != nil {
		a.monitor.Stop()
		a.monitor = nil
	}
	if a.opts.Logout != nil {
		if err := a.opts.Logout(a.env.ctx); err != nil {
			a.log.Warn("Logout failed", logger.Error(err))
		}
	}
	a.env.api = nil
	a.env.user = nil
	a.env.email = ""
}

func (a *App) waitExpiry() tea.Cmd {
	ctx := a.env.ctx
	ch := a.expired
	return func() tea.Msg {
		select {
		case reason := <-ch:
			return expiredMsg{reason}
		case <-ctx.Done():
			return nil
		}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (a *App) top() screen {
	return a.stack[len(a.stack)-1]
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.top().init(), a.waitExpiry(), tick(), a.spinner.Tick)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
	case tickMsg:
		return a, tick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	case pushMsg:
		a.stack = append(a.stack, msg.s)
		return a, msg.s.init()
	case popMsg:
		if len(a.stack) > 1 {
			a.stack = a.stack[:len(a.stack)-1]
			return a, a.top().init()
		}
		return a, nil
	case replaceMsg:
		a.stack = []screen{msg.s}
		return a, msg.s.init()
	case loggedInMsg:
		a.signIn(msg.creds)
		a.env.status.Notify(notify.New(models.SeveritySuccess, "Signed in as "+msg.creds.User.DisplayName()))
		a.stack = []screen{newNamespacesScreen(a.env)}
		return a, a.top().init()
	case expiredMsg:
		a.log.Info("Session ended", logger.Error(msg.reason))
		a.signOut()
		a.stack = []screen{newLoginScreen(a.env, a.opts.Login, apperrors.SessionExpired().Message)}
		return a, tea.Batch(a.top().init(), a.waitExpiry())
	}

	act := ActionNone
	if km, ok := msg.(tea.KeyMsg); ok {
		if a.monitor != nil {
			a.monitor.Touch()
		}
		act = a.env.keys.Resolve(km, a.top().typing())
		if act == ActionQuit {
			return a, tea.Quit
		}
	}

	cmd, handled := a.safeUpdate(msg, act)
	if handled {
		return a, cmd
	}

	switch act {
	case ActionBack, ActionEscape:
		return a, pop
	case ActionDocs:
		if a.env.api != nil {
			return a, push(newDocsScreen(a.env))
		}
	}
	return a, cmd
}

// safeUpdate forwards to the top screen and turns a panic into the error screen
func (a *App) safeUpdate(msg tea.Msg, act Action) (cmd tea.Cmd, handled bool) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%v", r)
			a.log.Error("Screen panicked", logger.Error(err))
			a.stack = []screen{newErrorScreen(a.env, err)}
			cmd, handled = nil, true
		}
	}()
	return a.top().update(msg, act)
}

// View implements tea.Model
func (a *App) View() string {
	var footer strings.Builder
	if s := a.env.status.View(); s != "" {
		footer.WriteString(s)
	} else if a.env.user != nil {
		footer.WriteString(subtitleStyle.Render("signed in as " + a.env.user.DisplayName()))
	}
	footer.WriteString("\n")
	footer.WriteString(a.help.View(a.env.keys))

	foot := footer.String()
	bodyHeight := a.height - lipgloss.Height(foot) - 1
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	body := lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(a.top().view(a.width, bodyHeight))
	return body + "\n" + foot
}

// Close stops the session monitor
func (a *App) Close() {
	if a.monitor != nil {
		a.monitor.Stop()
	}
}

// Run starts the TUI on the current terminal and blocks until it exits
func Run(ctx context.Context, opts Options, progOpts ...tea.ProgramOption) error {
	app := New(ctx, opts)
	defer app.Close()
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, progOpts...)
	_, err := tea.NewProgram(app, progOpts...).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
