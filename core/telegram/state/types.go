package state

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and temporary data for a user.
// StartedAt is refreshed on every state-entering transition and drives
// inactivity expiry.
type Session struct {
	State     State
	TempData  map[string]interface{}
	StartedAt time.Time
}

// Manager orchestrates user sessions and FSM state transitions.
type Manager interface {
	Get(userID int64) *Session
	Set(userID int64, state State)
	SetTemp(userID int64, key string, value interface{})
	ClearTemp(userID int64, key string)
	GetTemp(userID int64, key string) (interface{}, bool)
	GetTempInt64(userID int64, key string) (int64, bool)
	Clear(userID int64)

	// Dialog state
	SetState(userID int64, st State)
	GetState(userID int64) State
	HasState(userID int64) bool
	ClearState(userID int64)

	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error

	// ActiveCount reports the number of sessions in a non-idle state.
	ActiveCount() int
	// ExpiredSince returns user IDs whose non-idle session entered its
	// current state more than window ago. Callers decide what to do with
	// them; the manager does not clear expired sessions on its own.
	ExpiredSince(window time.Duration) []int64
}
