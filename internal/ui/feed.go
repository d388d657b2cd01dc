package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memefeed/internal/feed"
	"memefeed/internal/models"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fetchTimeout = 30 * time.Second
	// sentinelDistance is how close to the bottom the cursor has to get
	// before the next page is requested.
	sentinelDistance = 3
	// visibleEntries caps how many feed entries render at once.
	visibleEntries = 8
)

type (
	feedPageMsg struct{ fetched bool }
	feedErrMsg  struct{ err error }
)

// feedModel renders the accumulated feed and turns cursor movement near the
// bottom into page fetches. The merger dedupes rapid requests, so emitting
// an extra fetch intent is harmless.
type feedModel struct {
	merger *feed.Merger

	cursor  int
	top     int
	spinner spinner.Model
	err     error
}

func newFeedModel(merger *feed.Merger) feedModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sectionStyle
	return feedModel{merger: merger, spinner: sp}
}

func (m feedModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchPageCmd(m.merger))
}

// fetchPageCmd asks the merger for the next page. The merger is a no-op
// while a fetch is in flight or when the listing is exhausted.
func fetchPageCmd(merger *feed.Merger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		fetched, err := merger.FetchNext(ctx)
		if err != nil {
			return feedErrMsg{err: err}
		}
		return feedPageMsg{fetched: fetched}
	}
}

func (m feedModel) Update(msg tea.Msg) (feedModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			m.clampWindow()
			return m, nil

		case "down", "j":
			if m.cursor < len(m.merger.Memes())-1 {
				m.cursor++
			}
			m.clampWindow()
			return m, m.maybeFetch()

		case "G":
			if n := len(m.merger.Memes()); n > 0 {
				m.cursor = n - 1
			}
			m.clampWindow()
			return m, m.maybeFetch()

		case "g":
			m.cursor = 0
			m.top = 0
			return m, nil

		case "enter":
			memes := m.merger.Memes()
			if m.cursor < len(memes) {
				id := memes[m.cursor].ID
				return m, func() tea.Msg { return openThreadMsg{memeID: id} }
			}
			return m, nil

		case "r":
			m.err = nil
			return m, fetchPageCmd(m.merger)
		}

	case feedPageMsg:
		m.err = nil
		return m, m.maybeFetch()

	case feedErrMsg:
		if models.IsUnauthorized(msg.err) {
			return m, func() tea.Msg { return authExpiredMsg{} }
		}
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// maybeFetch emits one fetch intent when the cursor has entered the
// sentinel zone and more pages remain.
func (m feedModel) maybeFetch() tea.Cmd {
	if m.err != nil || !m.merger.HasMore() || m.merger.InFlight() {
		return nil
	}
	if len(m.merger.Memes()) == 0 || m.cursor >= len(m.merger.Memes())-sentinelDistance {
		return fetchPageCmd(m.merger)
	}
	return nil
}

func (m *feedModel) clampWindow() {
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+visibleEntries {
		m.top = m.cursor - visibleEntries + 1
	}
}

func (m feedModel) View() string {
	memes := m.merger.Memes()

	var b strings.Builder
	b.WriteString(headerStyle.Render(" memefeed ") + "  " +
		dimStyle.Render(fmt.Sprintf("%d loaded", len(memes))) + "\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
		b.WriteString(dimStyle.Render("press r to retry") + "\n")
		return containerStyle.Render(b.String())
	}

	if len(memes) == 0 {
		if m.merger.InFlight() || m.merger.HasMore() {
			b.WriteString(m.spinner.View() + dimStyle.Render(" loading feed...") + "\n")
		} else {
			b.WriteString(dimStyle.Render("no memes yet") + "\n")
		}
		return containerStyle.Render(b.String())
	}

	end := m.top + visibleEntries
	if end > len(memes) {
		end = len(memes)
	}
	for i := m.top; i < end; i++ {
		b.WriteString(renderMeme(memes[i], i == m.cursor) + "\n")
	}

	switch {
	case m.merger.InFlight():
		b.WriteString("\n" + m.spinner.View() + dimStyle.Render(" loading more..."))
	case !m.merger.HasMore():
		b.WriteString("\n" + dimStyle.Render("no more memes"))
	}

	b.WriteString("\n" + footerKeys("j/k", "scroll", "enter", "comments", "r", "refresh", "q", "quit"))
	return containerStyle.Render(b.String())
}

func renderMeme(m models.MemeWithAuthor, selected bool) string {
	title := sectionStyle.Render("@"+m.Author.Username) + " " +
		dimStyle.Render(m.CreatedAt.Format("Jan 2 15:04"))

	desc := m.Description
	if desc == "" && len(m.Texts) > 0 {
		desc = m.Texts[0].Content
	}

	body := title + "\n" +
		valueStyle.Render(desc) + "\n" +
		dimStyle.Render(fmt.Sprintf("%s  %d comments", m.PictureURL, m.CommentsCount))

	if selected {
		return selectedStyle.Render(body)
	}
	return entryStyle.Render(body)
}
