package dock

import (
	"fmt"
	"log/slog"
	"sync"
)

// VisibilityState is the dock's autohide state.
type VisibilityState int

const (
	Shown VisibilityState = iota
	Hidden
)

func (s VisibilityState) String() string {
	if s == Hidden {
		return "hidden"
	}
	return "shown"
}

// StateFromHidden converts an autohide flag into a VisibilityState.
func StateFromHidden(hidden bool) VisibilityState {
	if hidden {
		return Hidden
	}
	return Shown
}

// Accessor reads and writes the OS autohide preference.
type Accessor interface {
	IsHidden() (bool, error)
	SetHidden(hidden bool) error
}

// Store applies visibility transitions through an Accessor. Apply is a
// read-compare-write under a mutex, so concurrent callers issue at most one
// write per real change.
type Store struct {
	access Accessor
	logger *slog.Logger

	mu          sync.Mutex
	last        VisibilityState
	known       bool
	transitions int
}

// NewStore returns a Store writing through access.
func NewStore(access Accessor, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{access: access, logger: logger}
}

// Init seeds the cached state from the accessor.
func (s *Store) Init() (VisibilityState, error) {
	hidden, err := s.access.IsHidden()
	if err != nil {
		return Shown, fmt.Errorf("%w: read dock state: %v", ErrCollaboratorUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = StateFromHidden(hidden)
	s.known = true
	return s.last, nil
}

// Apply moves the dock to desired unless it is already there. When the
// current state cannot be read the cached last-known state is used instead.
func (s *Store) Apply(desired VisibilityState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.current()
	if ok && current == desired {
		return false, nil
	}

	if err := s.access.SetHidden(desired == Hidden); err != nil {
		return false, fmt.Errorf("%w: write dock state: %v", ErrCollaboratorUnavailable, err)
	}

	from := "unknown"
	if ok {
		from = current.String()
	}
	s.logger.Debug("dock state written", "from", from, "to", desired.String())

	s.last = desired
	s.known = true
	s.transitions++
	return true, nil
}

func (s *Store) current() (VisibilityState, bool) {
	hidden, err := s.access.IsHidden()
	if err == nil {
		return StateFromHidden(hidden), true
	}
	s.logger.Warn("dock state unreadable, using cached state", "error", err, "cached", s.known)
	return s.last, s.known
}

// Last returns the cached last-known state and whether one is known.
func (s *Store) Last() (VisibilityState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.known
}

// Transitions returns the number of writes Apply has issued.
func (s *Store) Transitions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitions
}
