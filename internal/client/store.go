package client

import (
	"context"
	"errors"
	"sync"

	"github.com/Apie237/mern-chatapp/internal/domain"
	apperrors "github.com/Apie237/mern-chatapp/pkg/errors"
)

// Status is the session status derived from a State.
type Status string

const (
	StatusPending       Status = "pending"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// MsgNetworkError is reported when the server could not be reached.
const MsgNetworkError = "Network error, please try again"

// State is a snapshot of the client session. Identity must be treated as
// read-only.
type State struct {
	Identity  *domain.IdentitySummary
	Resolving bool

	SigningUp       bool
	LoggingIn       bool
	UpdatingProfile bool
}

// Status reports pending until the first session check settles, then
// authenticated or anonymous.
func (s State) Status() Status {
	switch {
	case s.Identity != nil:
		return StatusAuthenticated
	case s.Resolving:
		return StatusPending
	default:
		return StatusAnonymous
	}
}

// API is the server surface the Store drives. *Client implements it.
type API interface {
	CheckAuth(ctx context.Context) (*domain.IdentitySummary, error)
	Signup(ctx context.Context, req SignupRequest) (*domain.IdentitySummary, error)
	Login(ctx context.Context, email, password string) (*domain.IdentitySummary, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, profilePic string) (*domain.ProfileUpdate, error)
}

// OpError is returned by Store operations. Its message is safe to show.
type OpError struct {
	Op      string
	Message string
	Err     error
}

func (e *OpError) Error() string { return e.Message }

func (e *OpError) Unwrap() error { return e.Err }

func opError(op string, err error) error {
	msg := MsgNetworkError
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		msg = appErr.Message
	}
	return &OpError{Op: op, Message: msg, Err: err}
}

// Store holds the client session state.
//
// Results are applied only while still current. A session check is current
// if it is the newest check and no login, signup or logout has committed an
// identity since it started. A login or signup is current if no logout and no
// later-started login or signup has committed since it started. Failed
// operations and profile updates never invalidate anything.
type Store struct {
	api API

	mu    sync.Mutex
	state State

	checkSeq uint64 // last check ticket handed out
	epoch    uint64 // bumped on every identity commit
	authSeq  uint64 // last login/signup ticket handed out
	authDone uint64 // ticket of the last committed login/signup
	logouts  uint64
	upSeq    uint64
	upDone   uint64

	signingUp int
	loggingIn int
	updating  int
	subs      map[int]func(State)
	nextSub   int
}

// NewStore creates a Store in the pending state.
func NewStore(api API) *Store {
	return &Store{
		api:   api,
		state: State{Resolving: true},
		subs:  make(map[int]func(State)),
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called with every new state. The returned
// function removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// update runs fn under the lock and then notifies subscribers outside it.
func (s *Store) update(fn func()) {
	s.mu.Lock()
	fn()
	s.state.SigningUp = s.signingUp > 0
	s.state.LoggingIn = s.loggingIn > 0
	s.state.UpdatingProfile = s.updating > 0
	st := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

// CheckAuth asks the server for the current session. A failed check
// leaves the store anonymous; it never returns an error.
func (s *Store) CheckAuth(ctx context.Context) {
	var ticket, epoch uint64
	s.update(func() {
		s.checkSeq++
		ticket = s.checkSeq
		epoch = s.epoch
		s.state.Resolving = true
	})

	identity, err := s.api.CheckAuth(ctx)
	if err != nil {
		identity = nil
	}

	s.update(func() {
		if ticket != s.checkSeq {
			return
		}
		if epoch == s.epoch {
			s.state.Identity = identity
		}
		s.state.Resolving = false
	})
}

// authenticate runs a login or signup call and commits its identity if it is
// still current.
func (s *Store) authenticate(pending *int, call func() (*domain.IdentitySummary, error)) error {
	var ticket, logouts uint64
	s.update(func() {
		s.authSeq++
		ticket = s.authSeq
		logouts = s.logouts
		*pending++
	})

	identity, err := call()

	s.update(func() {
		*pending--
		if err != nil || logouts != s.logouts || ticket < s.authDone {
			return
		}
		s.authDone = ticket
		s.epoch++
		s.state.Identity = identity
	})
	return err
}

// Signup creates an account and, if still current, becomes the session.
func (s *Store) Signup(ctx context.Context, req SignupRequest) error {
	err := s.authenticate(&s.signingUp, func() (*domain.IdentitySummary, error) {
		return s.api.Signup(ctx, req)
	})
	if err != nil {
		return opError("signup", err)
	}
	return nil
}

// Login starts a session and, if still current, records the identity.
func (s *Store) Login(ctx context.Context, email, password string) error {
	err := s.authenticate(&s.loggingIn, func() (*domain.IdentitySummary, error) {
		return s.api.Login(ctx, email, password)
	})
	if err != nil {
		return opError("login", err)
	}
	return nil
}

// Logout clears the identity before contacting the server, so no earlier
// operation can restore it. A failed call is reported but the store stays
// anonymous.
func (s *Store) Logout(ctx context.Context) error {
	s.update(func() {
		s.logouts++
		s.epoch++
		s.state.Identity = nil
	})

	if err := s.api.Logout(ctx); err != nil {
		return opError("logout", err)
	}
	return nil
}

// UpdateProfile replaces the profile picture and refreshes the identity when
// it still belongs to the same user. An older update never overwrites a
// newer one.
func (s *Store) UpdateProfile(ctx context.Context, profilePic string) error {
	var ticket uint64
	s.update(func() {
		s.upSeq++
		ticket = s.upSeq
		s.updating++
	})

	update, err := s.api.UpdateProfile(ctx, profilePic)

	s.update(func() {
		s.updating--
		cur := s.state.Identity
		if err != nil || ticket < s.upDone || cur == nil || cur.ID != update.UserID {
			return
		}
		s.upDone = ticket
		next := *cur
		next.ProfilePic = update.ProfilePic
		s.state.Identity = &next
	})
	if err != nil {
		return opError("update profile", err)
	}
	return nil
}
