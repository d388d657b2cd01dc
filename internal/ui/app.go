package ui

import (
	"context"

	"memefeed/internal/feed"

	tea "github.com/charmbracelet/bubbletea"
)

// Service is the slice of the API client the UI consumes.
type Service interface {
	feed.API
	Login(ctx context.Context, username, password string) (string, error)
}

// Session is the slice of the session store the UI consumes.
type Session interface {
	feed.TokenSource
	Authenticate(token string) error
	SignOut() error
}

type screen int

const (
	screenLogin screen = iota
	screenFeed
	screenThread
)

// Messages that cross screen boundaries.
type (
	// loginSucceededMsg carries the freshly issued token.
	loginSucceededMsg struct{ token string }
	// authExpiredMsg signals a 401 seen anywhere; the app signs out and
	// returns to the login screen.
	authExpiredMsg struct{}
	// openThreadMsg asks the app to open the comment panel for a meme.
	openThreadMsg struct{ memeID string }
	// closeThreadMsg returns from the comment panel to the feed.
	closeThreadMsg struct{}
)

// SessionExpired is the message external watchers (the expiry ticker) send
// into the program to force a sign-out.
func SessionExpired() tea.Msg {
	return authExpiredMsg{}
}

// App is the top-level bubbletea model routing between the login screen,
// the feed, and the comment panel.
type App struct {
	svc     Service
	session Session
	authors *feed.AuthorCache

	screen screen
	login  loginModel
	feed   feedModel
	thread threadModel

	quitting bool
}

// NewApp wires the UI against the given API client and session store. It
// starts on the feed when a token is already stored, on login otherwise.
func NewApp(svc Service, session Session) App {
	authors := feed.NewAuthorCache()
	app := App{
		svc:     svc,
		session: session,
		authors: authors,
		login:   newLoginModel(svc),
		feed:    newFeedModel(feed.NewMerger(svc, session, authors)),
	}
	if _, err := session.Token(); err == nil {
		app.screen = screenFeed
	} else {
		app.screen = screenLogin
	}
	return app
}

func (a App) Init() tea.Cmd {
	if a.screen == screenFeed {
		return a.feed.Init()
	}
	return a.login.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.quitting = true
			return a, tea.Quit
		}

	case loginSucceededMsg:
		if err := a.session.Authenticate(msg.token); err != nil {
			a.login.setError(err)
			return a, nil
		}
		a.feed = newFeedModel(feed.NewMerger(a.svc, a.session, a.authors))
		a.screen = screenFeed
		return a, a.feed.Init()

	case authExpiredMsg:
		// Best effort: the token is already useless.
		_ = a.session.SignOut()
		a.login = newLoginModel(a.svc)
		a.login.setNotice("session expired, sign in again")
		a.screen = screenLogin
		return a, a.login.Init()

	case openThreadMsg:
		a.thread = newThreadModel(feed.NewThread(a.svc, a.session, a.authors, msg.memeID))
		a.screen = screenThread
		return a, a.thread.Init()

	case closeThreadMsg:
		a.screen = screenFeed
		return a, nil
	}

	var cmd tea.Cmd
	switch a.screen {
	case screenLogin:
		a.login, cmd = a.login.Update(msg)
	case screenFeed:
		a.feed, cmd = a.feed.Update(msg)
	case screenThread:
		a.thread, cmd = a.thread.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	if a.quitting {
		return ""
	}
	switch a.screen {
	case screenLogin:
		return a.login.View()
	case screenThread:
		return a.thread.View()
	default:
		return a.feed.View()
	}
}
