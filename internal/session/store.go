// Package session holds the per-visitor state of the storefront: the auth
// session, the guest checkout profile and the cart.
//
// A Store is an explicit state container. Every transition goes through one
// of its methods, which update memory and persist through Storage. Nothing
// else writes session keys.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/example/amarshop/internal/models"
)

// Phase is the state of the auth session machine.
type Phase int

const (
	PhaseUnhydrated Phase = iota
	PhaseAnonymous
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseAnonymous:
		return "anonymous"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unhydrated"
	}
}

// State is a snapshot of the auth session.
type State struct {
	User         *models.User
	Token        string
	RefreshToken string
	Hydrated     bool
}

// IsAuthed holds iff both a token and a user are present.
func (s State) IsAuthed() bool {
	return s.Token != "" && s.User != nil
}

// Phase derives the machine state from the snapshot.
func (s State) Phase() Phase {
	switch {
	case !s.Hydrated:
		return PhaseUnhydrated
	case s.IsAuthed():
		return PhaseAuthenticated
	default:
		return PhaseAnonymous
	}
}

// Store is the state container of one visitor session.
type Store struct {
	storage Storage
	logger  *zap.Logger

	mu    sync.Mutex
	state State
}

// NewStore creates an unhydrated Store over storage.
func NewStore(storage Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{storage: storage, logger: logger}
}

// State returns a copy of the current auth state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// IsAuthed reports whether the session is authenticated.
func (s *Store) IsAuthed() bool {
	return s.State().IsAuthed()
}

// Phase reports the machine state.
func (s *Store) Phase() Phase {
	return s.State().Phase()
}

// Hydrate loads the persisted session. It runs once; later calls are no-ops.
// A user record that cannot be decoded, or has no id, is dropped and the session continues
// as anonymous.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Hydrated {
		return nil
	}

	token, _, err := s.storage.Get(ctx, KeyAccessToken)
	if err != nil {
		return fmt.Errorf("hydrate token: %w", err)
	}
	refresh, _, err := s.storage.Get(ctx, KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("hydrate refresh token: %w", err)
	}
	rawUser, hasUser, err := s.storage.Get(ctx, KeyUser)
	if err != nil {
		return fmt.Errorf("hydrate user: %w", err)
	}

	var user *models.User
	if hasUser && rawUser != "" {
		var u models.User
		err := json.Unmarshal([]byte(rawUser), &u)
		if err == nil && u.ID == "" {
			err = errors.New("user has no id")
		}
		if err != nil {
			s.logger.Warn("discarding malformed session user", zap.Error(err))
			if err := s.storage.Apply(ctx, nil, []string{KeyUser}); err != nil {
				return fmt.Errorf("drop malformed user: %w", err)
			}
		} else {
			user = &u
		}
	}

	if err := s.migrateGuestProfile(ctx); err != nil {
		s.logger.Warn("guest profile migration failed", zap.Error(err))
	}

	s.state = State{User: user, Token: token, RefreshToken: refresh, Hydrated: true}
	return nil
}

// SetAuth records a successful login or registration. Token and user are
// persisted in a single write before memory changes.
func (s *Store) SetAuth(ctx context.Context, user models.User, token, refreshToken string) error {
	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	set := map[string]string{
		KeyAccessToken: token,
		KeyUser:        string(encoded),
	}
	var del []string
	if refreshToken != "" {
		set[KeyRefreshToken] = refreshToken
	} else {
		del = append(del, KeyRefreshToken)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Apply(ctx, set, del); err != nil {
		return fmt.Errorf("persist auth: %w", err)
	}
	s.state = State{User: &user, Token: token, RefreshToken: refreshToken, Hydrated: true}
	return nil
}

// SetUser replaces the cached user; nil removes it.
func (s *Store) SetUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user == nil {
		if err := s.storage.Apply(ctx, nil, []string{KeyUser}); err != nil {
			return fmt.Errorf("persist user: %w", err)
		}
		s.state.User = nil
		return nil
	}

	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.Apply(ctx, map[string]string{KeyUser: string(encoded)}, nil); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	u := *user
	s.state.User = &u
	return nil
}

// Logout ends the session and forgets every guest checkout detail. Memory
// is cleared even when storage fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{Hydrated: true}

	del := append([]string{KeyAccessToken, KeyRefreshToken, KeyUser}, guestKeys...)
	if err := s.storage.Apply(ctx, nil, del); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
