package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
)

// DefaultInactivityTimeout expires login requests and sessions that see
// no transitions or use for this long.
const DefaultInactivityTimeout = 45 * time.Minute

// EntryResolver performs the single authenticated "who is this user"
// call at confirmation time. Implemented by fplclient.Client.
type EntryResolver interface {
	Me(ctx context.Context, credential *oauth2.Token) (int, error)
}

// Store holds every login request's state machine. All transitions for
// one request ID are serialized; distinct request IDs share nothing but
// the map they live in.
type Store struct {
	mu       sync.RWMutex
	records  map[string]*record
	resolver EntryResolver
	timeout  time.Duration
	nowTime  func() time.Time
	log      zerolog.Logger
}

// StoreOption modifies a Store during construction.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithInactivityTimeout overrides the session inactivity timeout.
func WithInactivityTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		s.timeout = d
	}
}

// NewStore creates a session store that resolves entry IDs through the
// given resolver at confirmation time.
func NewStore(resolver EntryResolver, logger zerolog.Logger, options ...StoreOption) *Store {
	s := &Store{
		records:  make(map[string]*record),
		resolver: resolver,
		timeout:  DefaultInactivityTimeout,
		nowTime:  time.Now,
		log:      logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// BeginLogin creates a pending login request and returns its
// unguessable request ID. Request IDs are unique across concurrent
// logins and single-use for completion.
func (s *Store) BeginLogin() string {
	requestID := uuid.NewString()
	now := s.nowTime()

	s.mu.Lock()
	s.records[requestID] = &record{
		requestID:        requestID,
		state:            StatePending,
		createdAt:        now,
		lastTransitionAt: now,
	}
	s.mu.Unlock()

	loginsStarted.Inc()
	s.log.Info().Str("request_id", requestID).Msg("login request created")
	return requestID
}

// CompleteLogin is the entry point for the out-of-band channel: it
// delivers the credential artifact captured in the browser. The channel
// can only write a credential in, never read one out. Completion is
// single-use; a second artifact for the same request ID is rejected.
func (s *Store) CompleteLogin(requestID, artifact string) error {
	tok, parseErr := parseArtifact(artifact)

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.lookupLocked(requestID)
	if err != nil {
		return err
	}
	if r.state != StatePending {
		return apperrors.Wrapf(apperrors.ErrLoginFailed, "auth: login %s already %s", requestID, r.state)
	}
	if parseErr != nil {
		s.transitionLocked(r, StateFailed, parseErr.Error())
		return parseErr
	}

	r.credential = tok
	s.transitionLocked(r, StateAwaitingConfirmation, "")
	return nil
}

// Fail marks a login request as terminally failed, e.g. when the
// browser-driven exchange itself was rejected.
func (s *Store) Fail(requestID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.lookupLocked(requestID)
	if err != nil {
		return err
	}
	if r.state.Terminal() {
		return nil
	}
	r.credential = nil
	s.transitionLocked(r, StateFailed, reason)
	return nil
}

// Confirm finalizes a login after the caller reports the human is done.
// It performs the one authenticated upstream call that resolves the
// account's entry ID; only when that succeeds does the session become
// active and usable. A failed resolution call fails the session.
func (s *Store) Confirm(ctx context.Context, requestID string) (Session, error) {
	s.mu.Lock()
	r, err := s.lookupLocked(requestID)
	if err != nil {
		s.mu.Unlock()
		return Session{}, err
	}
	switch r.state {
	case StateAwaitingConfirmation:
	case StatePending:
		s.mu.Unlock()
		return Session{}, apperrors.Wrapf(apperrors.ErrLoginFailed, "auth: login %s has no credential yet", requestID)
	case StateActive:
		snap := r.snapshot()
		s.mu.Unlock()
		return snap, nil
	default:
		s.mu.Unlock()
		return Session{}, apperrors.Wrapf(apperrors.ErrLoginFailed, "auth: login %s is %s", requestID, r.state)
	}
	credential := r.credential
	s.mu.Unlock()

	// The upstream call happens outside the lock; the state guard above
	// plus single-use completion keep transitions for this request ID
	// strictly ordered.
	entryID, resolveErr := s.resolver.Me(ctx, credential)

	s.mu.Lock()
	defer s.mu.Unlock()
	if r.state != StateAwaitingConfirmation {
		return Session{}, apperrors.Wrapf(apperrors.ErrLoginFailed, "auth: login %s is %s", requestID, r.state)
	}
	if resolveErr != nil {
		r.credential = nil
		s.transitionLocked(r, StateFailed, "entry resolution failed: "+resolveErr.Error())
		return Session{}, apperrors.Wrapf(apperrors.ErrLoginFailed, "auth: resolving entry for login %s (%v)", requestID, resolveErr)
	}

	r.entryID = entryID
	s.transitionLocked(r, StateActive, "")
	loginsActivated.Inc()
	s.log.Info().Str("request_id", requestID).Int("entry_id", entryID).Msg("session activated")
	return r.snapshot(), nil
}

// RequireActive returns the active session for requestID, or
// ErrAuthenticationRequired when no usable session exists. Reading an
// active session refreshes its inactivity clock.
func (s *Store) RequireActive(requestID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.lookupLocked(requestID)
	if err != nil {
		return Session{}, apperrors.Wrapf(apperrors.ErrAuthenticationRequired, "auth: %v", err)
	}
	if r.state != StateActive {
		return Session{}, apperrors.Wrapf(apperrors.ErrAuthenticationRequired, "auth: login %s is %s", requestID, r.state)
	}
	r.lastTransitionAt = s.nowTime()
	return r.snapshot(), nil
}

// Get returns the session snapshot for requestID in any state.
func (s *Store) Get(requestID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.lookupLocked(requestID)
	if err != nil {
		return Session{}, err
	}
	return r.snapshot(), nil
}

// Logout expires a session explicitly. Expired sessions are never
// revived; the caller must begin a new login.
func (s *Store) Logout(requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.lookupLocked(requestID)
	if err != nil {
		return err
	}
	if r.state.Terminal() {
		return nil
	}
	r.credential = nil
	s.transitionLocked(r, StateExpired, "logged out")
	return nil
}

// Sweep expires every session past the inactivity timeout and returns
// how many it expired. Run periodically from the process main loop.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	now := s.nowTime()
	for _, r := range s.records {
		if r.state.Terminal() {
			continue
		}
		if now.Sub(r.lastTransitionAt) > s.timeout {
			r.credential = nil
			s.transitionLocked(r, StateExpired, "inactivity timeout")
			n++
		}
	}
	if n > 0 {
		s.log.Info().Int("expired", n).Msg("session sweep")
	}
	return n
}

// lookupLocked finds a record and applies lazy expiry. Callers hold mu.
func (s *Store) lookupLocked(requestID string) (*record, error) {
	r, ok := s.records[requestID]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrSessionNotFound, "auth: request %q", requestID)
	}
	if !r.state.Terminal() && s.nowTime().Sub(r.lastTransitionAt) > s.timeout {
		r.credential = nil
		s.transitionLocked(r, StateExpired, "inactivity timeout")
	}
	if r.state == StateExpired {
		return nil, apperrors.Wrapf(apperrors.ErrSessionExpired, "auth: request %q", requestID)
	}
	return r, nil
}

// transitionLocked applies a state change. Callers hold mu.
func (s *Store) transitionLocked(r *record, to State, reason string) {
	s.log.Debug().
		Str("request_id", r.requestID).
		Str("from", string(r.state)).
		Str("to", string(to)).
		Msg("session transition")
	r.state = to
	r.reason = reason
	r.lastTransitionAt = s.nowTime()
	sessionTransitions.WithLabelValues(string(to)).Inc()
}
