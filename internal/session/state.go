package session

import (
	"sync"
)

// Phase is the coarse position in the authentication lifecycle.
type Phase string

const (
	PhaseAnonymous            Phase = "anonymous"
	PhaseAuthenticating       Phase = "authenticating"
	PhaseAuthenticated        Phase = "authenticated"
	PhaseOTPPending           Phase = "otp_pending"
	PhaseOTPVerified          Phase = "otp_verified"
	PhasePasswordResetPending Phase = "password_reset_pending"
	PhasePasswordResetDone    Phase = "password_reset_done"
)

// Purpose tags the OTP flows: the same verify endpoint serves registration
// confirmation and password recovery, and the caller decides the next step
// based on it.
type Purpose string

const (
	PurposeRegister       Purpose = "register"
	PurposeForgotPassword Purpose = "forgot_password"
)

// State is the tagged session state consumers observe. Message carries the
// last human-readable server or fallback message for display.
type State struct {
	Phase   Phase
	Purpose Purpose
	Message string
}

// stateTracker holds the current state and fans transitions out to
// subscribers. Sends never block; a slow subscriber misses intermediate
// transitions but always gets the latest on the next read.
type stateTracker struct {
	mu          sync.RWMutex
	current     State
	subscribers map[int]chan State
	nextID      int
}

func newStateTracker() *stateTracker {
	return &stateTracker{
		current:     State{Phase: PhaseAnonymous},
		subscribers: make(map[int]chan State),
	}
}

func (t *stateTracker) Current() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

func (t *stateTracker) Set(state State) {
	t.mu.Lock()
	t.current = state
	for _, ch := range t.subscribers {
		select {
		case ch <- state:
		default:
		}
	}
	t.mu.Unlock()
}

// Subscribe registers a listener for state transitions. The returned cancel
// func unregisters it and closes the channel.
func (t *stateTracker) Subscribe() (<-chan State, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan State, 8)
	t.subscribers[id] = ch

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if sub, ok := t.subscribers[id]; ok {
			delete(t.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}
