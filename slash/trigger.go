package slash

import (
	"strings"

	"github.com/iw2rmb/quill/document"
	"github.com/iw2rmb/quill/internal/grapheme"
)

const (
	// TriggerChar opens the palette when typed at a word boundary.
	TriggerChar = "/"

	// Lookback bounds the text before the caret that Decide inspects.
	Lookback = 50
)

type EventKind uint8

const (
	// KeyPressed is reported before the key is applied to the document.
	KeyPressed EventKind = iota
	// Changed is reported after content or the caret changed.
	Changed
)

// Event is a keystroke or change notification. Key uses Bubble Tea key
// names ("/", "esc", "backspace", "a").
type Event struct {
	Kind EventKind
	Key  string
}

// Input is the read-only state Decide looks at.
type Input struct {
	// Before is the text of the caret's block preceding the caret, at most
	// Lookback grapheme clusters (see Window).
	Before string
	Caret  document.Pos

	Session Session

	// Blocked suppresses opening, e.g. while an AI decision is pending.
	Blocked bool
}

type ActionKind uint8

const (
	Ignore ActionKind = iota
	Open
	Update
	Close
)

func (k ActionKind) String() string {
	switch k {
	case Open:
		return "open"
	case Update:
		return "update"
	case Close:
		return "close"
	default:
		return "ignore"
	}
}

type CloseReason uint8

const (
	CloseNone CloseReason = iota
	CloseEscape
	CloseTriggerDeleted
	CloseCaretLeft
	CloseExecuted
)

func (r CloseReason) String() string {
	switch r {
	case CloseEscape:
		return "escape"
	case CloseTriggerDeleted:
		return "trigger_deleted"
	case CloseCaretLeft:
		return "caret_left"
	case CloseExecuted:
		return "executed"
	default:
		return "none"
	}
}

// Action is what the palette should do in response to an event.
//
// Open carries the trigger position and consumes the keystroke: the host
// inserts the trigger character itself exactly once. Update carries the new
// query; Close carries a reason.
type Action struct {
	Kind    ActionKind
	Trigger document.Pos
	Query   string
	Reason  CloseReason
}

// Window trims text to the last Lookback grapheme clusters.
func Window(text string) string {
	return grapheme.Tail(text, Lookback)
}

// AtWordBoundary reports whether a trigger typed after before would start a
// new token: before is empty or ends in whitespace.
func AtWordBoundary(before string) bool {
	if before == "" {
		return true
	}
	last := grapheme.Tail(before, 1)
	return grapheme.IsSpace(last)
}

// Decide maps an event to a palette action. It is pure.
func Decide(ev Event, in Input) Action {
	switch ev.Kind {
	case KeyPressed:
		return decideKey(ev.Key, in)
	case Changed:
		return decideChange(in)
	default:
		return Action{}
	}
}

func decideKey(key string, in Input) Action {
	s := in.Session
	if s.Open {
		switch {
		case key == "esc":
			return Action{Kind: Close, Reason: CloseEscape}
		case key == "backspace" && justAfterTrigger(in.Caret, s.Trigger):
			return Action{Kind: Close, Reason: CloseTriggerDeleted}
		case key == TriggerChar && justAfterTrigger(in.Caret, s.Trigger) && !in.Blocked:
			// "//": the newest trigger wins.
			return Action{Kind: Open, Trigger: in.Caret}
		}
		return Action{}
	}

	if key != TriggerChar || in.Blocked {
		return Action{}
	}
	if !AtWordBoundary(in.Before) {
		return Action{}
	}
	return Action{Kind: Open, Trigger: in.Caret}
}

func decideChange(in Input) Action {
	s := in.Session
	if !s.Open {
		return Action{}
	}
	if in.Caret.Block != s.Trigger.Block || in.Caret.Col <= s.Trigger.Col {
		return Action{Kind: Close, Reason: CloseCaretLeft}
	}

	n := in.Caret.Col - s.Trigger.Col
	span := grapheme.Tail(in.Before, n)
	if grapheme.Count(span) < n {
		return Action{Kind: Close, Reason: CloseCaretLeft}
	}
	if !strings.HasPrefix(span, TriggerChar) {
		return Action{Kind: Close, Reason: CloseTriggerDeleted}
	}

	q := strings.TrimPrefix(span, TriggerChar)
	if q == s.Query {
		return Action{}
	}
	return Action{Kind: Update, Query: q}
}

func justAfterTrigger(caret, trigger document.Pos) bool {
	return caret.Block == trigger.Block && caret.Col == trigger.Col+1
}
