package editor

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/iw2rmb/quill/stream"
)

func typeText(m Model, s string) Model {
	for _, r := range s {
		if r == ' ' {
			m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m Model, t tea.KeyType) Model {
	m, _ = m.Update(tea.KeyMsg{Type: t})
	return m
}

func viewLines(m Model) []string {
	lines := strings.Split(ansi.Strip(m.View()), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return lines
}

func assertLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("line count: got %d (%q), want %d", len(got), got, len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func labels(m Model) []string {
	var out []string
	for _, c := range m.PaletteItems() {
		out = append(out, c.Label)
	}
	return out
}

type fakeSub struct {
	ch        chan stream.Event
	cancelled int
}

func (s *fakeSub) Events() <-chan stream.Event { return s.ch }
func (s *fakeSub) Cancel()                     { s.cancelled++ }

// fakeProvider hands out subscriptions that tests drive by sending
// stream messages to Update directly.
type fakeProvider struct {
	subs []*fakeSub
	reqs []stream.Request
	err  error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Stream(_ context.Context, req stream.Request) (stream.Subscription, error) {
	if p.err != nil {
		return nil, p.err
	}
	sub := &fakeSub{ch: make(chan stream.Event, 1)}
	p.subs = append(p.subs, sub)
	p.reqs = append(p.reqs, req)
	return sub, nil
}

type memClipboard struct {
	text string
}

func (c *memClipboard) ReadText() (string, error) { return c.text, nil }
func (c *memClipboard) WriteText(s string) error  { c.text = s; return nil }
