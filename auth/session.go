// Package auth brokers the out-of-band login flow: a human completes a
// credential exchange in an isolated browser context and the resulting
// artifact is handed to this store, which never sees the credential
// itself. Each login request is an independent state machine keyed by
// an unguessable request ID.
package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// State is a login request's position in its lifecycle.
type State string

const (
	// StatePending: login initiated, no credential yet.
	StatePending State = "pending"
	// StateAwaitingConfirmation: the browser channel delivered a
	// credential artifact; the caller has not confirmed completion.
	StateAwaitingConfirmation State = "awaiting_confirmation"
	// StateActive: confirmed and bound to the user's entry ID.
	StateActive State = "active"
	// StateFailed: terminal; the exchange or entry resolution failed.
	StateFailed State = "failed"
	// StateExpired: terminal; timed out through inactivity or logout.
	StateExpired State = "expired"
)

// Terminal reports whether the state permits no further transitions.
func (s State) Terminal() bool {
	return s == StateFailed || s == StateExpired
}

// Session is a snapshot of one login request. Credential and EntryID
// are populated only when State is StateActive.
type Session struct {
	RequestID        string
	State            State
	Credential       *oauth2.Token
	EntryID          int
	Reason           string // failure detail, set in StateFailed
	CreatedAt        time.Time
	LastTransitionAt time.Time
}

// record is the store-internal mutable form of a session.
type record struct {
	requestID        string
	state            State
	credential       *oauth2.Token
	entryID          int
	reason           string
	createdAt        time.Time
	lastTransitionAt time.Time
}

// snapshot copies the record into the caller-facing form. Credential
// material is withheld outside StateActive, so a session can never leak
// a half-established credential.
func (r *record) snapshot() Session {
	s := Session{
		RequestID:        r.requestID,
		State:            r.state,
		Reason:           r.reason,
		CreatedAt:        r.createdAt,
		LastTransitionAt: r.lastTransitionAt,
	}
	if r.state == StateActive {
		tok := *r.credential
		s.Credential = &tok
		s.EntryID = r.entryID
	}
	return s
}
