// Package slash implements the slash-command palette: trigger detection,
// the command registry and its filters, the built-in command catalog, and
// the palette session state machine that executes a chosen command against
// a document.
//
// Trigger detection is a pure function (Decide) so hosts can drive it from
// whatever key event type they have. A typical host loop:
//
//	act := slash.Decide(slash.Event{Kind: slash.KeyPressed, Key: msg.String()}, in)
//	menu.Apply(act)
//	// apply the key to the document...
//	act = slash.Decide(slash.Event{Kind: slash.Changed}, in)
//	menu.Apply(act)
package slash
