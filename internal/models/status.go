package models

import "fmt"

// Status is the moderation lifecycle value on an event.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Transition returns the status a moderation action should write. Every
// transition among the three values is allowed, self-transitions included;
// callers route through here so a restricted transition table can be added
// later without touching them.
func Transition(current, requested Status) (Status, error) {
	if !requested.Valid() {
		return current, fmt.Errorf("invalid status %q", requested)
	}
	return requested, nil
}
