package repository

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Shivanand-hulikatti/activities-signup/internal/model"
	"github.com/Shivanand-hulikatti/activities-signup/internal/seed"
)

func newMemoryStore(t *testing.T, activities []model.Activity) ActivityStore {
	t.Helper()
	repo, err := NewMemoryRepository(activities)
	require.NoError(t, err)
	return repo
}

func TestMemoryRepository(t *testing.T) {
	runStoreContract(t, newMemoryStore)
}

func TestNewMemoryRepository_RejectsInvalidSeed(t *testing.T) {
	_, err := NewMemoryRepository([]model.Activity{{Name: "A", MaxParticipants: 0}})
	assert.ErrorIs(t, err, seed.ErrInvalidSeed)
}

func TestNewMemoryRepository_CopiesInput(t *testing.T) {
	initial := []model.Activity{{Name: "A", MaxParticipants: 3, Participants: []string{"a@x.edu"}}}
	repo, err := NewMemoryRepository(initial)
	require.NoError(t, err)

	initial[0].Participants[0] = "changed@x.edu"
	assert.Equal(t, []string{"a@x.edu"}, findActivity(t, repo, "A").Participants)
}

func TestMemoryRepository_Reset(t *testing.T) {
	ctx := context.Background()
	repo, err := NewMemoryRepository(fixture(t))
	require.NoError(t, err)

	require.NoError(t, repo.Enroll(ctx, "Chess Club", "new@x.edu"))
	require.NoError(t, repo.Reset(fixture(t)))
	assert.NotContains(t, findActivity(t, repo, "Chess Club").Participants, "new@x.edu")

	assert.Error(t, repo.Reset([]model.Activity{{Name: ""}}))
}

// TestMemoryRepository_Invariants drives random enroll/withdraw sequences and
// checks them against a simple model of the participant list.
func TestMemoryRepository_Invariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		capacity := rapid.IntRange(1, 6).Draw(rt, "capacity")
		repo, err := NewMemoryRepository([]model.Activity{{
			Name:            "Club",
			MaxParticipants: capacity,
			Participants:    []string{},
		}})
		if err != nil {
			rt.Fatalf("new repo: %v", err)
		}

		emails := []string{"a@x.edu", "b@x.edu", "c@x.edu", "d@x.edu", "e@x.edu", "f@x.edu", "g@x.edu"}
		var want []string

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			email := rapid.SampledFrom(emails).Draw(rt, "email")
			if rapid.Bool().Draw(rt, "enroll") {
				err := repo.Enroll(ctx, "Club", email)
				switch {
				case slices.Contains(want, email):
					if !errors.Is(err, ErrAlreadyRegistered) {
						rt.Fatalf("enroll %s: want ErrAlreadyRegistered, got %v", email, err)
					}
				case len(want) >= capacity:
					if !errors.Is(err, ErrActivityFull) {
						rt.Fatalf("enroll %s: want ErrActivityFull, got %v", email, err)
					}
				default:
					if err != nil {
						rt.Fatalf("enroll %s: %v", email, err)
					}
					want = append(want, email)
				}
			} else {
				err := repo.Withdraw(ctx, "Club", email)
				idx := slices.Index(want, email)
				if idx < 0 {
					if !errors.Is(err, ErrNotRegistered) {
						rt.Fatalf("withdraw %s: want ErrNotRegistered, got %v", email, err)
					}
				} else {
					if err != nil {
						rt.Fatalf("withdraw %s: %v", email, err)
					}
					want = slices.Delete(want, idx, idx+1)
				}
			}

			activities, err := repo.List(ctx)
			if err != nil {
				rt.Fatalf("list: %v", err)
			}
			got := activities[0].Participants
			if len(got) > capacity {
				rt.Fatalf("%d participants exceed capacity %d", len(got), capacity)
			}
			if !slices.Equal(got, want) {
				rt.Fatalf("participants = %v, want %v", got, want)
			}
		}
	})
}
