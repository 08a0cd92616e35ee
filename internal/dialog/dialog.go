// Package dialog tracks each actor's position within a multi-message
// conversation. State is in-memory and advisory only: a process restart
// resets every in-flight dialogue to idle, which handlers must treat as a
// legitimate starting point, never as an error.
package dialog

import (
	"sync"

	"github.com/jkaninda/resourcebot/internal/domain"
)

// Step is an actor's current conversation step.
type Step int

const (
	StepIdle Step = iota
	StepAwaitingCourseCode
	StepAwaitingFile
	StepAwaitingDeleteReason
	StepAwaitingRejectReason
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepAwaitingCourseCode:
		return "awaiting_course_code"
	case StepAwaitingFile:
		return "awaiting_file"
	case StepAwaitingDeleteReason:
		return "awaiting_delete_reason"
	case StepAwaitingRejectReason:
		return "awaiting_reject_reason"
	default:
		return "unknown"
	}
}

// State is one actor's conversation state. Only the fields scoped to the
// current step are meaningful; Set replaces the whole state, never merges.
type State struct {
	Step Step

	// CourseCode is pending while awaiting the upload file.
	CourseCode string

	// Resource and ResourceKey snapshot the approved record a delete reason
	// is being collected for.
	Resource    domain.Record
	ResourceKey string

	// RequesterID and RequesterCourse carry the delete-request context while
	// the administrator types a rejection reason.
	RequesterID     int64
	RequesterCourse string
}

// Tracker holds at most one State per actor. Thread-safe, no expiry: a
// state persists until explicitly advanced or cleared by the owning workflow.
type Tracker struct {
	mu     sync.Mutex
	states map[int64]State
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{states: make(map[int64]State)}
}

// Get returns the actor's current state. An actor with no recorded state is
// idle.
func (t *Tracker) Get(actorID int64) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[actorID]
}

// Set replaces the actor's state wholesale.
func (t *Tracker) Set(actorID int64, state State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state.Step == StepIdle {
		delete(t.states, actorID)
		return
	}
	t.states[actorID] = state
}

// Clear returns the actor to idle.
func (t *Tracker) Clear(actorID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, actorID)
}
