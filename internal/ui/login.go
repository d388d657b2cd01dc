package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const loginTimeout = 15 * time.Second

type loginField int

const (
	fieldUsername loginField = iota
	fieldPassword
)

type loginErrMsg struct{ err error }

// loginModel is the username/password prompt.
type loginModel struct {
	svc Service

	username textinput.Model
	password textinput.Model
	focus    loginField

	submitting bool
	err        error
	notice     string
}

func newLoginModel(svc Service) loginModel {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword

	return loginModel{
		svc:      svc,
		username: username,
		password: password,
	}
}

func (m *loginModel) setError(err error)      { m.err = err; m.submitting = false }
func (m *loginModel) setNotice(notice string) { m.notice = notice }

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

// loginCmd exchanges the credentials for a token off the update loop.
func loginCmd(svc Service, username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
		defer cancel()

		token, err := svc.Login(ctx, username, password)
		if err != nil {
			return loginErrMsg{err: err}
		}
		return loginSucceededMsg{token: token}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			if m.focus == fieldUsername {
				m.focus = fieldPassword
				m.username.Blur()
				return m, m.password.Focus()
			}
			m.focus = fieldUsername
			m.password.Blur()
			return m, m.username.Focus()

		case "enter":
			if m.focus == fieldUsername {
				m.focus = fieldPassword
				m.username.Blur()
				return m, m.password.Focus()
			}
			username := strings.TrimSpace(m.username.Value())
			password := m.password.Value()
			if username == "" || password == "" {
				m.notice = "username and password are required"
				return m, nil
			}
			m.submitting = true
			m.err = nil
			m.notice = ""
			return m, loginCmd(m.svc, username, password)
		}

	case loginErrMsg:
		m.submitting = false
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == fieldUsername {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(" memefeed ") + "\n\n")
	b.WriteString(labelStyle.Render("Username") + "\n")
	b.WriteString(m.username.View() + "\n\n")
	b.WriteString(labelStyle.Render("Password") + "\n")
	b.WriteString(m.password.View() + "\n")

	if m.submitting {
		b.WriteString("\n" + dimStyle.Render("signing in...") + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n" + dimStyle.Render(m.notice) + "\n")
	}

	b.WriteString("\n" + footerKeys("enter", "submit", "tab", "switch field", "ctrl+c", "quit"))
	return containerStyle.Render(b.String())
}
