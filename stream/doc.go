// Package stream tracks AI generations that write into a document.
//
// A Controller is a small state machine (Idle, Streaming, AwaitingDecision)
// that owns the range a generation occupies. It never talks to a provider
// itself: hosts feed it chunks (Append) and terminal signals (Complete,
// Fail), and users drive Stop, Accept and Reject.
//
// Providers implement Provider and deliver ordered Events on a
// Subscription. Listen bridges a Subscription into Bubble Tea messages.
package stream
