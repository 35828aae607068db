package stream

import tea "github.com/charmbracelet/bubbletea"

// ChunkMsg carries one generated chunk for session ID.
type ChunkMsg struct {
	ID   string
	Text string
}

// DoneMsg reports that the provider finished (or the subscription closed).
type DoneMsg struct {
	ID string
}

// ErrorMsg reports a provider failure.
type ErrorMsg struct {
	ID  string
	Err error
}

// Listen waits for the next event of sub. Hosts call it again after every
// ChunkMsg; messages whose ID no longer matches the live session are stale
// and must be dropped.
func Listen(id string, sub Subscription) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub.Events()
		switch {
		case !ok:
			return DoneMsg{ID: id}
		case ev.Err != nil:
			return ErrorMsg{ID: id, Err: ev.Err}
		case ev.Done:
			return DoneMsg{ID: id}
		default:
			return ChunkMsg{ID: id, Text: ev.Text}
		}
	}
}
