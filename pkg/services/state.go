package services

import (
	"fmt"

	"garagesite/pkg/email"
)

// State is where a submission is in its lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

var transitions = map[State][]State{
	StateIdle:       {StateSubmitting},
	StateSubmitting: {StateSucceeded, StateFailed},
}

// Submission is the record of one form post. It lives for a single request.
type Submission struct {
	LeadID  string
	Source  string
	State   State
	Outcome email.Outcome
	Err     error
}

func newSubmission(leadID, source string) *Submission {
	return &Submission{LeadID: leadID, Source: source, State: StateIdle}
}

// advance moves to next, refusing anything but idle -> submitting -> done.
func (s *Submission) advance(next State) error {
	for _, allowed := range transitions[s.State] {
		if allowed == next {
			s.State = next
			return nil
		}
	}
	return fmt.Errorf("invalid submission transition %s -> %s", s.State, next)
}

// Partial reports that the business was notified but the customer was not.
func (s *Submission) Partial() bool {
	return s.Outcome == email.OutcomePartial
}
