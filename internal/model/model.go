// Package model defines the core domain types for the activities signup system.
package model

// Activity is an extracurricular offering students can sign up for.
// Name is the primary key; it is the map key in API responses and is
// therefore not part of the JSON body.
type Activity struct {
	Name            string   `json:"-" yaml:"name" toml:"name"`
	Description     string   `json:"description" yaml:"description" toml:"description"`
	Schedule        string   `json:"schedule" yaml:"schedule" toml:"schedule"`
	MaxParticipants int      `json:"max_participants" yaml:"max_participants" toml:"max_participants"`
	Participants    []string `json:"participants" yaml:"participants" toml:"participants"`
}

// SpotsLeft returns the number of free places.
func (a *Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// IsFull returns true when no places remain.
func (a *Activity) IsFull() bool {
	return len(a.Participants) >= a.MaxParticipants
}

// Clone returns a deep copy with a non-nil Participants slice.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = make([]string, len(a.Participants))
	copy(out.Participants, a.Participants)
	return out
}

// MessageResponse is the success envelope for signup and removal.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// EnrollmentResult summarises one enrollment attempt.
// Used by the concurrent signup tests.
type EnrollmentResult struct {
	Email   string
	Success bool
	Error   error
}
