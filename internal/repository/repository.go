// Package repository implements the activity registry and its storage backends.
// Every backend runs each check-then-mutate step as a single critical section.
package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/Shivanand-hulikatti/activities-signup/internal/model"
)

// ErrNotFound is returned when a requested activity does not exist.
var ErrNotFound = errors.New("activity not found")

// ErrAlreadyRegistered is returned when the same email signs up twice.
var ErrAlreadyRegistered = errors.New("student is already signed up for this activity")

// ErrNotRegistered is returned when withdrawing an email that is not enrolled.
var ErrNotRegistered = errors.New("student is not registered for this activity")

// ErrActivityFull is returned when an activity has no remaining places.
var ErrActivityFull = errors.New("activity is full")

// ActivityStore is the registry contract shared by all backends.
type ActivityStore interface {
	// List returns a snapshot of every activity, sorted by name.
	List(ctx context.Context) ([]model.Activity, error)
	// Enroll appends email to the activity's participants.
	Enroll(ctx context.Context, activity, email string) error
	// Withdraw removes email from the activity's participants.
	Withdraw(ctx context.Context, activity, email string) error
}

func sortByName(activities []model.Activity) {
	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Name < activities[j].Name
	})
}
