package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivity_Capacity(t *testing.T) {
	a := Activity{MaxParticipants: 2, Participants: []string{"a@x.edu"}}
	assert.Equal(t, 1, a.SpotsLeft())
	assert.False(t, a.IsFull())

	a.Participants = append(a.Participants, "b@x.edu")
	assert.Equal(t, 0, a.SpotsLeft())
	assert.True(t, a.IsFull())
}

func TestActivity_Clone(t *testing.T) {
	a := Activity{Name: "Chess Club", Participants: []string{"a@x.edu"}}
	c := a.Clone()
	c.Participants[0] = "changed@x.edu"
	assert.Equal(t, "a@x.edu", a.Participants[0])

	empty := Activity{Name: "Empty"}.Clone()
	assert.NotNil(t, empty.Participants)
	assert.Len(t, empty.Participants, 0)
}
