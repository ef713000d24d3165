package core

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestParseRequestID(t *testing.T) {
	given := uuid.NewString()
	assert.Equal(t, RequestID(given), ParseRequestID(" "+given+" "))

	minted := ParseRequestID("not-a-uuid")
	_, err := uuid.Parse(minted.String())
	assert.NoError(t, err)
	assert.NotEqual(t, RequestID("not-a-uuid"), minted)
}

func TestHash(t *testing.T) {
	h := NewHash([]byte("abc"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h.String())
	assert.Equal(t, "ba7816bf8f01", h.Short())
	assert.True(t, Hash("").IsEmpty())
}
