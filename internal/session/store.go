// Package session holds the locally cached identity of the signed-in user.
//
// A Store is the single source of truth for "who is logged in". It is backed
// by a Storage so the identity survives across process restarts, and it is
// meant to be constructed once and passed to whatever needs it. The actual
// authorization lives in the server's session cookie; the cached user and
// token are advisory.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/ancare/ancare/internal/common/apperrors"
	"github.com/ancare/ancare/internal/common/logtrace"
	"github.com/rs/zerolog/log"
)

// Storage keys.
const (
	KeyUser         = "user"
	KeySessionToken = "sessionId"
)

var (
	ErrSession     = apperrors.New("session store error")
	ErrMissingUser = ErrSession.New("user data is required").SetStatusCode(http.StatusBadRequest)
)

// State is the lifecycle state of a Store.
type State int

const (
	StateInitializing State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Store caches the current user in memory and persists it to storage.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	state   State
	user    User
}

// NewStore returns a Store in the Initializing state. Call Initialize before
// reading State or User.
func NewStore(storage Storage) *Store {
	return &Store{storage: storage, state: StateInitializing}
}

// Initialize loads the persisted user, if any, into memory. The store always
// leaves the Initializing state, even when reading storage fails.
func (s *Store) Initialize(ctx context.Context) error {
	user, ok, err := s.readUser()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil || !ok {
		s.user = nil
		s.state = StateAnonymous
		if err != nil {
			return ErrSession.Msg("failed to initialize session").Err(err)
		}
		return nil
	}

	s.user = user
	s.state = StateAuthenticated
	log.Debug().
		Str("request_id", logtrace.RequestIdFromContext(ctx)).
		Str("user_type", user.UserType()).
		Msg("session restored")
	return nil
}

// State returns the in-memory lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loading reports whether Initialize has not completed yet.
func (s *Store) Loading() bool {
	return s.State() == StateInitializing
}

// User returns the in-memory user set by Initialize or Login.
func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.user != nil
}

// IsAuthenticated reports whether persisted user data is present.
func (s *Store) IsAuthenticated() bool {
	_, ok, err := s.storage.GetItem(KeyUser)
	return err == nil && ok
}

// CurrentUser returns the persisted user. A missing, unreadable or corrupted
// value is reported as absent; corruption is logged.
func (s *Store) CurrentUser() (User, bool) {
	user, ok, err := s.readUser()
	if err != nil {
		return nil, false
	}
	return user, ok
}

// UserType returns the role of the persisted user, or "".
func (s *Store) UserType() string {
	user, ok := s.CurrentUser()
	if !ok {
		return ""
	}
	return user.UserType()
}

// SessionToken returns the persisted session token, if one was stored.
func (s *Store) SessionToken() (string, bool) {
	v, ok, err := s.storage.GetItem(KeySessionToken)
	if err != nil || !ok || v == "" {
		return "", false
	}
	return v, true
}

// Login persists user and, when non-empty, token, then marks the store
// authenticated. Logging in again with the same data rewrites the same values.
func (s *Store) Login(user User, token string) error {
	if user == nil {
		return ErrMissingUser
	}
	data, err := json.Marshal(user)
	if err != nil {
		return ErrSession.Msg("failed to encode user").Err(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != "" {
		if err := s.storage.SetItem(KeySessionToken, token); err != nil {
			return ErrSession.Msg("failed to store session token").Err(err)
		}
	}
	if err := s.storage.SetItem(KeyUser, string(data)); err != nil {
		return ErrSession.Msg("failed to store user").Err(err)
	}
	s.user = user
	s.state = StateAuthenticated
	return nil
}

// Logout removes the persisted user and token. In-memory state is cleared
// even when storage fails; the storage errors are returned joined.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.state = StateAnonymous

	if err := errors.Join(
		s.storage.RemoveItem(KeySessionToken),
		s.storage.RemoveItem(KeyUser),
	); err != nil {
		return ErrSession.Msg("failed to clear session").Err(err)
	}
	return nil
}

func (s *Store) readUser() (User, bool, error) {
	raw, ok, err := s.storage.GetItem(KeyUser)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user == nil {
		log.Warn().Str("key", KeyUser).Msg("ignoring corrupted session user")
		return nil, false, nil
	}
	return user, true, nil
}
