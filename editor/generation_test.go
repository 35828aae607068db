package editor

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/quill/document"
	"github.com/iw2rmb/quill/stream"
)

func beginStreaming(t *testing.T, m Model) (Model, string) {
	t.Helper()
	m, cmd, err := m.BeginGeneration("")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if cmd == nil {
		t.Fatalf("begin: expected listen command")
	}
	if got := m.Generation().Phase; got != stream.Streaming {
		t.Fatalf("phase after begin: got %v, want Streaming", got)
	}
	return m, m.Generation().ID
}

func TestGeneration_StreamAndAccept(t *testing.T) {
	var events []ChangeEvent
	p := &fakeProvider{}
	m := New(Config{Provider: p, OnChange: func(ev ChangeEvent) { events = append(events, ev) }})
	m = m.SetSize(40, 6)

	m, id := beginStreaming(t, m)
	if got := m.Generation().Range; got != document.Collapsed(document.Pos{}) {
		t.Fatalf("initial range: got %v, want collapsed at 0", got)
	}

	chunks := []struct {
		text string
		end  int
	}{
		{"Hel", 3},
		{"lo wo", 8},
		{"rld", 11},
	}
	for _, c := range chunks {
		var cmd tea.Cmd
		m, cmd = m.Update(stream.ChunkMsg{ID: id, Text: c.text})
		if cmd == nil {
			t.Fatalf("chunk %q: expected next listen command", c.text)
		}
		if got, want := m.Generation().Range.End, (document.Pos{Col: c.end}); got != want {
			t.Fatalf("chunk %q: range end got %v, want %v", c.text, got, want)
		}
	}

	m, _ = m.Update(stream.DoneMsg{ID: id})
	if got := m.Generation().Phase; got != stream.AwaitingDecision {
		t.Fatalf("phase after done: got %v, want AwaitingDecision", got)
	}
	if p.subs[0].cancelled == 0 {
		t.Fatalf("subscription not released on done")
	}

	m = press(m, tea.KeyEnter)
	if got := m.Generation().Phase; got != stream.Idle {
		t.Fatalf("phase after accept: got %v, want Idle", got)
	}
	if got := m.Document().Text(); got != "Hello world" {
		t.Fatalf("text: got %q, want %q", got, "Hello world")
	}
	if got, want := m.Document().Cursor(), (document.Pos{Col: 11}); got != want {
		t.Fatalf("cursor: got %v, want %v", got, want)
	}
	if len(events) == 0 || events[len(events)-1].HTML != "<p>Hello world</p>" {
		t.Fatalf("OnChange did not report the generated text: %+v", events)
	}
}

func TestGeneration_RejectRestoresDocument(t *testing.T) {
	p := &fakeProvider{}
	m := New(Config{Provider: p, Content: "<p>Intro</p><ul><li>one</li></ul>"})
	m = m.SetSize(40, 8)
	before := m.HTML()

	m.Document().SetCursor(document.Pos{Block: 1, Col: 3})
	m, id := beginStreaming(t, m)
	m, _ = m.Update(stream.ChunkMsg{ID: id, Text: " more\nnext"})
	m, _ = m.Update(stream.ChunkMsg{ID: id, Text: " line"})
	m, _ = m.Update(stream.DoneMsg{ID: id})

	if m.HTML() == before {
		t.Fatalf("chunks were not inserted")
	}

	m = press(m, tea.KeyEsc)
	if got := m.Generation().Phase; got != stream.Idle {
		t.Fatalf("phase after reject: got %v, want Idle", got)
	}
	if got := m.HTML(); got != before {
		t.Fatalf("html after reject:\n got %q\nwant %q", got, before)
	}
	if got, want := m.Document().Cursor(), (document.Pos{Block: 1, Col: 3}); got != want {
		t.Fatalf("cursor: got %v, want %v", got, want)
	}
}

func TestGeneration_StopIsIdempotent(t *testing.T) {
	p := &fakeProvider{}
	m := New(Config{Provider: p})
	m = m.SetSize(40, 6)

	m, id := beginStreaming(t, m)
	m, _ = m.Update(stream.ChunkMsg{ID: id, Text: "partial"})

	m = m.StopGeneration()
	s := m.Generation()
	if s.Phase != stream.AwaitingDecision || !s.Stopped {
		t.Fatalf("after stop: phase %v stopped %v", s.Phase, s.Stopped)
	}
	if p.subs[0].cancelled == 0 {
		t.Fatalf("provider not cancelled on stop")
	}

	version := m.Document().Version()
	m = m.StopGeneration()
	if got := m.Generation(); got.Phase != stream.AwaitingDecision || got.Range != s.Range {
		t.Fatalf("second stop changed the session: %+v", got)
	}
	if m.Document().Version() != version {
		t.Fatalf("second stop changed the document")
	}

	// A chunk that was already in flight is dropped.
	m, _ = m.Update(stream.ChunkMsg{ID: id, Text: " late"})
	if got := m.Document().Text(); got != "partial" {
		t.Fatalf("late chunk applied: %q", got)
	}
}

func TestGeneration_StopKey(t *testing.T) {
	m := New(Config{Provider: &fakeProvider{}})
	m = m.SetSize(40, 6)

	m, id := beginStreaming(t, m)
	m, _ = m.Update(stream.ChunkMsg{ID: id, Text: "abc"})
	m = press(m, tea.KeyCtrlG)
	if got := m.Generation(); got.Phase != stream.AwaitingDecision || !got.Stopped {
		t.Fatalf("after stop key: %+v", got)
	}
	m = press(m, tea.KeyTab)
	if got := m.Document().Text(); got != "abc" || m.Generation().Phase != stream.Idle {
		t.Fatalf("accept after stop: text %q phase %v", got, m.Generation().Phase)
	}
}

func TestGeneration_StaleSessionDropped(t *testing.T) {
	m := New(Config{Provider: &fakeProvider{}})
	m = m.SetSize(40, 6)

	m, id := beginStreaming(t, m)
	m, cmd := m.Update(stream.ChunkMsg{ID: "other", Text: "nope"})
	if cmd != nil {
		t.Fatalf("stale chunk re-listened")
	}
	m, _ = m.Update(stream.DoneMsg{ID: "other"})
	if got := m.Generation().Phase; got != stream.Streaming {
		t.Fatalf("stale done changed phase to %v", got)
	}
	if got := m.Document().Text(); got != "" {
		t.Fatalf("stale chunk applied: %q", got)
	}

	m, _ = m.Update(stream.ChunkMsg{ID: id, Text: "ok"})
	if got := m.Document().Text(); got != "ok" {
		t.Fatalf("live chunk: got %q", got)
	}
}

func TestGeneration_ProviderErrorAwaitsDecision(t *testing.T) {
	m := New(Config{Provider: &fakeProvider{}})
	m = m.SetSize(40, 6)

	m, id := beginStreaming(t, m)
	m, _ = m.Update(stream.ChunkMsg{ID: id, Text: "half"})
	m, _ = m.Update(stream.ErrorMsg{ID: id, Err: errors.New("overloaded")})

	s := m.Generation()
	if s.Phase != stream.AwaitingDecision || s.Err == nil {
		t.Fatalf("after error: %+v", s)
	}
	if !strings.Contains(strings.Join(viewLines(m), "\n"), "overloaded") {
		t.Fatalf("error not shown in overlay")
	}

	m, err := m.RejectGeneration()
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got := m.Document().Text(); got != "" {
		t.Fatalf("text after reject: %q", got)
	}
}

func TestGeneration_EditingBlockedWhileActive(t *testing.T) {
	m := New(Config{Provider: &fakeProvider{}, Content: "<p>keep</p>"})
	m = m.SetSize(40, 6)
	m.Document().SetCursor(document.Pos{Col: 4})

	m, id := beginStreaming(t, m)
	m, _ = m.Update(stream.ChunkMsg{ID: id, Text: "!"})

	m = typeText(m, "xy")
	m = press(m, tea.KeyBackspace)
	m = press(m, tea.KeyCtrlZ)
	if got := m.Document().Text(); got != "keep!" {
		t.Fatalf("text changed by keys while streaming: %q", got)
	}
	if _, err := m.ToggleBold(); !errors.Is(err, ErrBusy) {
		t.Fatalf("toolbar while streaming: got %v, want ErrBusy", err)
	}

	m, _ = m.Update(stream.DoneMsg{ID: id})
	m = typeText(m, "z")
	if got := m.Document().Text(); got != "keep!" {
		t.Fatalf("text changed by keys while awaiting decision: %q", got)
	}
}

func TestGeneration_SingleFlight(t *testing.T) {
	p := &fakeProvider{}
	m := New(Config{Provider: p})
	m = m.SetSize(40, 6)

	m, _ = beginStreaming(t, m)
	_, _, err := m.BeginGeneration("again")
	if !errors.Is(err, stream.ErrInvalidTransition) {
		t.Fatalf("second begin: got %v, want ErrInvalidTransition", err)
	}
	if len(p.reqs) != 1 {
		t.Fatalf("provider called %d times", len(p.reqs))
	}
}

func TestGeneration_BeginErrors(t *testing.T) {
	if _, _, err := New(Config{}).BeginGeneration(""); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("no provider: got %v", err)
	}
	if _, _, err := New(Config{Provider: &fakeProvider{}, ReadOnly: true}).BeginGeneration(""); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("read only: got %v", err)
	}

	failing := &fakeProvider{err: errors.New("dial failed")}
	m := New(Config{Provider: failing})
	m, _, err := m.BeginGeneration("")
	if err == nil || !strings.Contains(err.Error(), "dial failed") {
		t.Fatalf("provider error: got %v", err)
	}
	if got := m.Generation().Phase; got != stream.Idle {
		t.Fatalf("phase after failed begin: %v", got)
	}
}

func TestGeneration_RequestCarriesContext(t *testing.T) {
	p := &fakeProvider{}
	m := New(Config{Provider: p, Content: "<p>Once</p><p>upon</p>", SystemPrompt: "be brief", MaxTokens: 64})
	m.Document().SetCursor(document.Pos{Block: 1, Col: 4})

	if _, _, err := m.BeginGeneration("continue"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	req := p.reqs[0]
	if req.Prompt != "continue" || req.System != "be brief" || req.MaxTokens != 64 {
		t.Fatalf("request: %+v", req)
	}
	if req.Context != "Once\nupon" {
		t.Fatalf("context: got %q", req.Context)
	}
}

func TestGeneration_OverlayControls(t *testing.T) {
	m := New(Config{Provider: &fakeProvider{}})
	m = m.SetSize(40, 6)

	m, id := beginStreaming(t, m)
	view := strings.Join(viewLines(m), "\n")
	if !strings.Contains(view, "Writing") || !strings.Contains(view, "Stop") {
		t.Fatalf("streaming overlay missing:\n%s", view)
	}

	m, _ = m.Update(stream.ChunkMsg{ID: id, Text: "text"})
	m, _ = m.Update(stream.DoneMsg{ID: id})
	view = strings.Join(viewLines(m), "\n")
	if strings.Contains(view, "Stop") || !strings.Contains(view, "Accept") || !strings.Contains(view, "Reject") {
		t.Fatalf("decision overlay missing:\n%s", view)
	}

	m, _ = m.AcceptGeneration()
	view = strings.Join(viewLines(m), "\n")
	if strings.Contains(view, "Accept") {
		t.Fatalf("overlay still shown after accept:\n%s", view)
	}
}

func TestGeneration_RejectOnDividerRestoresDocument(t *testing.T) {
	p := &fakeProvider{}
	m := New(Config{Provider: p, Content: "<p>a</p><hr><p>b</p>"})
	m = m.SetSize(40, 6)
	m.Document().SetCursor(document.Pos{Block: 1})
	before := m.Document().HTML()

	m, id := beginStreaming(t, m)
	if got, want := m.Generation().Range.Start, (document.Pos{Block: 2}); got != want {
		t.Fatalf("range start: got %v, want %v", got, want)
	}
	m, _ = m.Update(stream.ChunkMsg{ID: id, Text: "Hi"})
	m, _ = m.Update(stream.DoneMsg{ID: id})

	m = press(m, tea.KeyEsc)
	if got := m.Generation().Phase; got != stream.Idle {
		t.Fatalf("phase after reject: got %v, want Idle", got)
	}
	if got := m.Document().HTML(); got != before {
		t.Fatalf("html after reject: got %q, want %q", got, before)
	}
	if got, want := m.Document().Cursor(), (document.Pos{Block: 1}); got != want {
		t.Fatalf("cursor after reject: got %v, want %v", got, want)
	}
}

func TestGeneration_AcceptOnDividerKeepsDivider(t *testing.T) {
	p := &fakeProvider{}
	m := New(Config{Provider: p, Content: "<p>a</p><hr><p>b</p>"})
	m = m.SetSize(40, 6)
	m.Document().SetCursor(document.Pos{Block: 1})

	m, id := beginStreaming(t, m)
	m, _ = m.Update(stream.ChunkMsg{ID: id, Text: "Hi"})
	m, _ = m.Update(stream.DoneMsg{ID: id})
	m = press(m, tea.KeyEnter)

	if got, want := m.Document().HTML(), "<p>a</p><hr/><p>Hi</p><p>b</p>"; got != want {
		t.Fatalf("html after accept: got %q, want %q", got, want)
	}
}

func TestGeneration_FailedBeginOnDividerLeavesDocument(t *testing.T) {
	m := New(Config{Provider: &fakeProvider{err: errors.New("dial failed")}, Content: "<p>a</p><hr><p>b</p>"})
	m.Document().SetCursor(document.Pos{Block: 1})
	before := m.Document().HTML()

	m, _, err := m.BeginGeneration("")
	if err == nil {
		t.Fatalf("begin: expected provider error")
	}
	if got := m.Document().HTML(); got != before {
		t.Fatalf("html after failed begin: got %q, want %q", got, before)
	}
}

func TestGeneration_RefusedWhilePaletteOpen(t *testing.T) {
	p := &fakeProvider{}
	m := New(Config{Provider: p})
	m = m.SetSize(40, 8)
	m = typeText(m, "/")
	if !m.Palette().Open {
		t.Fatalf("palette not open after trigger")
	}

	m, cmd, err := m.BeginGeneration("x")
	if !errors.Is(err, ErrPaletteOpen) {
		t.Fatalf("begin with palette open: got %v, want ErrPaletteOpen", err)
	}
	if cmd != nil || len(p.reqs) != 0 {
		t.Fatalf("provider called with palette open: %d requests", len(p.reqs))
	}
	if got := m.Generation().Phase; got != stream.Idle {
		t.Fatalf("phase: got %v, want Idle", got)
	}
	if !m.Palette().Open {
		t.Fatalf("palette closed by refused generation")
	}

	// The palette stays usable: escape closes it and generation can start.
	m = press(m, tea.KeyEsc)
	if _, _, err := m.BeginGeneration("x"); err != nil {
		t.Fatalf("begin after closing palette: %v", err)
	}
}
