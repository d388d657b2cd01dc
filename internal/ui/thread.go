package ui

import (
	"context"
	"fmt"
	"strings"

	"memefeed/internal/feed"
	"memefeed/internal/models"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type (
	threadLoadedMsg  struct{}
	threadErrMsg     struct{ err error }
	commentPostedMsg struct{}
	commentErrMsg    struct{ err error }
)

// threadModel is the comment panel for a single meme. Comments load lazily
// when the panel opens; the input keeps its text when a submit fails.
type threadModel struct {
	thread *feed.Thread

	input   textinput.Model
	spinner spinner.Model

	loading    bool
	submitting bool
	err        error
}

func newThreadModel(thread *feed.Thread) threadModel {
	input := textinput.New()
	input.Placeholder = "write a comment"
	input.CharLimit = 500
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sectionStyle

	return threadModel{
		thread:  thread,
		input:   input,
		spinner: sp,
		loading: true,
	}
}

func (m threadModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, loadThreadCmd(m.thread))
}

func loadThreadCmd(thread *feed.Thread) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if err := thread.FetchAll(ctx); err != nil {
			return threadErrMsg{err: err}
		}
		return threadLoadedMsg{}
	}
}

func submitCommentCmd(thread *feed.Thread, content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		if _, err := thread.Submit(ctx, content); err != nil {
			return commentErrMsg{err: err}
		}
		return commentPostedMsg{}
	}
}

func (m threadModel) Update(msg tea.Msg) (threadModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return closeThreadMsg{} }

		case "enter":
			if m.submitting {
				return m, nil
			}
			content := m.input.Value()
			if strings.TrimSpace(content) == "" {
				m.err = models.NewValidationError("comment cannot be empty")
				return m, nil
			}
			m.submitting = true
			m.err = nil
			return m, submitCommentCmd(m.thread, content)
		}

	case threadLoadedMsg:
		m.loading = false
		m.err = nil
		return m, nil

	case threadErrMsg:
		m.loading = false
		if models.IsUnauthorized(msg.err) {
			return m, func() tea.Msg { return authExpiredMsg{} }
		}
		m.err = msg.err
		return m, nil

	case commentPostedMsg:
		// Submit succeeded; now the input may be cleared.
		m.submitting = false
		m.err = nil
		m.input.Reset()
		return m, nil

	case commentErrMsg:
		// Keep the typed text so the user can retry.
		m.submitting = false
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

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m threadModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(" comments ") + "\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + dimStyle.Render(" loading comments...") + "\n")

	case len(m.thread.Comments()) == 0:
		b.WriteString(dimStyle.Render("no comments yet") + "\n")

	default:
		for _, c := range m.thread.Comments() {
			b.WriteString(renderComment(c) + "\n")
		}
	}

	b.WriteString("\n" + m.input.View() + "\n")
	if m.submitting {
		b.WriteString(m.spinner.View() + dimStyle.Render(" posting...") + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + footerKeys("enter", "post", "esc", "back"))
	return containerStyle.Render(b.String())
}

func renderComment(c models.CommentWithAuthor) string {
	return fmt.Sprintf("%s %s\n%s",
		sectionStyle.Render("@"+c.Author.Username),
		dimStyle.Render(c.CreatedAt.Format("Jan 2 15:04")),
		valueStyle.Render(c.Content))
}
