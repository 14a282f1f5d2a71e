package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

type loginFailedMsg struct{ err error }

type loginScreen struct {
	env      *env
	login    LoginFunc
	username textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	errMsg   string
}

func newLoginScreen(e *env, login LoginFunc, notice string) *loginScreen {
	u := newInput("username", 128)
	u.Prompt = "Username: "
	p := newInput("password", 256)
	p.Prompt = "Password: "
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'
	u.Focus()
	return &loginScreen{env: e, login: login, username: u, password: p, errMsg: notice}
}

func (s *loginScreen) init() tea.Cmd { return textinput.Blink }

func (s *loginScreen) typing() bool { return true }

func (s *loginScreen) setFocus(i int) tea.Cmd {
	s.focus = i
	if i == 0 {
		s.password.Blur()
		return s.username.Focus()
	}
	s.username.Blur()
	return s.password.Focus()
}

func (s *loginScreen) update(msg tea.Msg, act Action) (tea.Cmd, bool) {
	if m, ok := msg.(loginFailedMsg); ok {
		s.busy = false
		s.errMsg = apperrors.Message(m.err)
		s.password.SetValue("")
		return s.setFocus(1), true
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}
	if s.busy {
		return nil, true
	}

	switch {
	case act == ActionUp || km.String() == "shift+tab":
		return s.setFocus(0), true
	case act == ActionDown || km.String() == "tab":
		return s.setFocus(1), true
	case act == ActionEscape:
		s.errMsg = ""
		return nil, true
	case act == ActionOpen:
		if s.focus == 0 {
			return s.setFocus(1), true
		}
		return s.submit(), true
	}

	var cmd tea.Cmd
	if s.focus == 0 {
		s.username, cmd = s.username.Update(km)
	} else {
		s.password, cmd = s.password.Update(km)
	}
	return cmd, true
}

func (s *loginScreen) submit() tea.Cmd {
	user := strings.TrimSpace(s.username.Value())
	pass := s.password.Value()
	if user == "" || pass == "" {
		s.errMsg = "Username and password are required"
		return nil
	}
	if s.login == nil {
		s.errMsg = "Sign-in is not available"
		return nil
	}
	s.busy = true
	s.errMsg = ""
	ctx, login := s.env.ctx, s.login
	return func() tea.Msg {
		creds, err := login(ctx, user, pass)
		if err != nil {
			return loginFailedMsg{err}
		}
		return loggedInMsg{creds}
	}
}

func (s *loginScreen) view(width, height int) string {
	lines := []string{s.username.View(), s.password.View()}
	if s.busy {
		lines = append(lines, s.env.loading("Signing in…"))
	} else if s.errMsg != "" {
		lines = append(lines, fieldError(s.errMsg))
	} else {
		lines = append(lines, hint("enter to sign in · tab to switch field"))
	}
	body := titleStyle.Render("Config Server") + "\n\n" + strings.Join(lines, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modalStyle.Render(body))
}
