package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/activities-signup/internal/model"
	"github.com/Shivanand-hulikatti/activities-signup/internal/seed"
)

// storeFactory returns a store holding exactly the given activities.
type storeFactory func(t *testing.T, activities []model.Activity) ActivityStore

func fixture(t *testing.T) []model.Activity {
	t.Helper()
	activities, err := seed.Default()
	require.NoError(t, err)
	return append(activities, model.Activity{
		Name:            "Test Activity",
		Description:     "Test activity with limited capacity",
		Schedule:        "Test schedule",
		MaxParticipants: 2,
		Participants:    []string{"student1@mergington.edu"},
	})
}

func findActivity(t *testing.T, store ActivityStore, name string) model.Activity {
	t.Helper()
	activities, err := store.List(context.Background())
	require.NoError(t, err)
	for _, a := range activities {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("activity %q not listed", name)
	return model.Activity{}
}

// runStoreContract exercises the registry behaviour every backend must share.
func runStoreContract(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("List", func(t *testing.T) {
		store := newStore(t, fixture(t))
		activities, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, activities, 10)
		for i, a := range activities {
			assert.NotNil(t, a.Participants, a.Name)
			assert.Positive(t, a.MaxParticipants, a.Name)
			assert.LessOrEqual(t, len(a.Participants), a.MaxParticipants, a.Name)
			if i > 0 {
				assert.Less(t, activities[i-1].Name, a.Name)
			}
		}
	})

	t.Run("ChessClubScenario", func(t *testing.T) {
		store := newStore(t, fixture(t))

		require.NoError(t, store.Enroll(ctx, "Chess Club", "new@x.edu"))
		assert.Equal(t,
			[]string{"michael@mergington.edu", "daniel@mergington.edu", "new@x.edu"},
			findActivity(t, store, "Chess Club").Participants)

		assert.ErrorIs(t, store.Enroll(ctx, "Chess Club", "michael@mergington.edu"), ErrAlreadyRegistered)

		require.NoError(t, store.Withdraw(ctx, "Chess Club", "daniel@mergington.edu"))
		assert.Equal(t,
			[]string{"michael@mergington.edu", "new@x.edu"},
			findActivity(t, store, "Chess Club").Participants)

		assert.ErrorIs(t, store.Withdraw(ctx, "Chess Club", "ghost@x.edu"), ErrNotRegistered)
	})

	t.Run("UnknownActivity", func(t *testing.T) {
		store := newStore(t, fixture(t))
		assert.ErrorIs(t, store.Enroll(ctx, "NoSuchClub", "a@x.edu"), ErrNotFound)
		assert.ErrorIs(t, store.Withdraw(ctx, "NoSuchClub", "a@x.edu"), ErrNotFound)
		assert.ErrorIs(t, store.Enroll(ctx, "chess club", "a@x.edu"), ErrNotFound)
	})

	t.Run("Capacity", func(t *testing.T) {
		store := newStore(t, fixture(t))
		require.NoError(t, store.Enroll(ctx, "Test Activity", "student2@mergington.edu"))
		assert.Len(t, findActivity(t, store, "Test Activity").Participants, 2)

		assert.ErrorIs(t, store.Enroll(ctx, "Test Activity", "student3@mergington.edu"), ErrActivityFull)
		assert.Len(t, findActivity(t, store, "Test Activity").Participants, 2)

		// Duplicates are reported before capacity.
		assert.ErrorIs(t, store.Enroll(ctx, "Test Activity", "student1@mergington.edu"), ErrAlreadyRegistered)
	})

	t.Run("EnrollWithdrawRoundTrip", func(t *testing.T) {
		store := newStore(t, fixture(t))
		before := findActivity(t, store, "Math Olympiad").Participants

		require.NoError(t, store.Enroll(ctx, "Math Olympiad", "student.with.dots+tag@mergington.edu"))
		require.NoError(t, store.Withdraw(ctx, "Math Olympiad", "student.with.dots+tag@mergington.edu"))

		assert.Equal(t, before, findActivity(t, store, "Math Olympiad").Participants)
	})

	t.Run("StudentInSeveralActivities", func(t *testing.T) {
		store := newStore(t, fixture(t))
		email := "multi.activity@mergington.edu"
		for _, name := range []string{"Science Club", "Math Olympiad", "Art Workshop"} {
			require.NoError(t, store.Enroll(ctx, name, email))
		}
		require.NoError(t, store.Withdraw(ctx, "Science Club", email))

		assert.NotContains(t, findActivity(t, store, "Science Club").Participants, email)
		assert.Contains(t, findActivity(t, store, "Math Olympiad").Participants, email)
		assert.Contains(t, findActivity(t, store, "Art Workshop").Participants, email)
	})

	t.Run("ListReturnsCopies", func(t *testing.T) {
		store := newStore(t, fixture(t))
		activities, err := store.List(ctx)
		require.NoError(t, err)
		for i := range activities {
			activities[i].Participants = append(activities[i].Participants[:0], "mutated@x.edu")
		}
		assert.Equal(t,
			[]string{"michael@mergington.edu", "daniel@mergington.edu"},
			findActivity(t, store, "Chess Club").Participants)
	})

	t.Run("ConcurrentEnrollNeverOverbooks", func(t *testing.T) {
		small := []model.Activity{{
			Name:            "Tiny Club",
			Description:     "d",
			Schedule:        "s",
			MaxParticipants: 5,
			Participants:    []string{},
		}}
		store := newStore(t, small)

		const attempts = 40
		results := make(chan model.EnrollmentResult, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				// Half of the attempts reuse an address to race the duplicate check.
				email := fmt.Sprintf("student%d@mergington.edu", i/2)
				err := store.Enroll(ctx, "Tiny Club", email)
				results <- model.EnrollmentResult{Email: email, Success: err == nil, Error: err}
			}(i)
		}
		wg.Wait()
		close(results)

		succeeded := map[string]int{}
		for res := range results {
			if res.Success {
				succeeded[res.Email]++
				continue
			}
			assert.True(t,
				errors.Is(res.Error, ErrActivityFull) || errors.Is(res.Error, ErrAlreadyRegistered),
				"unexpected error: %v", res.Error)
		}
		assert.Len(t, succeeded, 5)
		for email, n := range succeeded {
			assert.Equal(t, 1, n, email)
		}
		assert.Len(t, findActivity(t, store, "Tiny Club").Participants, 5)
	})
}
