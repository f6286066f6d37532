package wizard

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"

	"github.com/google/uuid"
)

const (
	StateKey      = "booking_wizard"
	ResumeStepKey = "booking_step"
)

// Session is the per-visitor storage the wizard runs on. *session.Session
// from fiber satisfies it.
type Session interface {
	Get(key string) interface{}
	Set(key string, val interface{})
	Delete(key string)
}

// State is everything the wizard keeps between requests.
type State struct {
	CurrentStep string                `json:"current_step"`
	StepData    map[string]url.Values `json:"step_data"`
	InvoiceID   *uuid.UUID            `json:"invoice,omitempty"`
}

func NewState(first string) State {
	return State{CurrentStep: first, StepData: map[string]url.Values{}}
}

func (s State) HasStep(name string) bool {
	return len(s.StepData[name]) > 0
}

// LoadState reads the wizard state from the session. A missing or unreadable
// entry yields a fresh state.
func LoadState(sess Session, first string) State {
	raw, ok := sess.Get(StateKey).(string)
	if !ok || raw == "" {
		return NewState(first)
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		log.Printf("⚠️ Discarding unreadable booking wizard state: %v", err)
		return NewState(first)
	}
	if state.StepData == nil {
		state.StepData = map[string]url.Values{}
	}
	if state.CurrentStep == "" {
		state.CurrentStep = first
	}
	return state
}

func SaveState(sess Session, state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode wizard state: %w", err)
	}
	sess.Set(StateKey, string(raw))
	return nil
}

func ClearState(sess Session) {
	sess.Delete(StateKey)
}
