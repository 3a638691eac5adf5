package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wersching/riddlegate/internal/models"
)

func seed() []models.Message {
	return []models.Message{{Role: models.RoleSystem, Content: "host instructions"}}
}

func TestEnsureSeedsOnlyOnce(t *testing.T) {
	s := New()

	s.Ensure(1, seed())
	require.NoError(t, s.Append(1, models.Message{Role: models.RoleUser, Content: "start"}))

	// A second Ensure must not re-seed or reset the transcript.
	s.Ensure(1, seed())

	msgs, ok := s.Get(1)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleSystem, msgs[0].Role)
	assert.Equal(t, models.RoleUser, msgs[1].Role)
}

func TestAppendPreservesOrder(t *testing.T) {
	s := New()
	s.Ensure(7, seed())

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(7, models.Message{Role: models.RoleUser, Content: fmt.Sprintf("m%d", i)}))
	}

	msgs, ok := s.Get(7)
	require.True(t, ok)
	require.Len(t, msgs, 6)
	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprintf("m%d", i), msgs[i+1].Content)
	}
}

func TestAppendUnknownRoom(t *testing.T) {
	s := New()
	err := s.Append(42, models.Message{Role: models.RoleUser, Content: "hello"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	s.Ensure(1, seed())

	msgs, ok := s.Get(1)
	require.True(t, ok)
	msgs[0].Content = "tampered"

	fresh, _ := s.Get(1)
	assert.Equal(t, "host instructions", fresh[0].Content)
}

func TestGetMissingRoom(t *testing.T) {
	s := New()
	_, ok := s.Get(99)
	assert.False(t, ok)
}

func TestDeleteReportsExistence(t *testing.T) {
	s := New()
	s.Ensure(5, seed())

	assert.True(t, s.Delete(5))
	assert.False(t, s.Delete(5))
	assert.False(t, s.Delete(5))

	_, ok := s.Get(5)
	assert.False(t, ok)
}

func TestDeleteThenEnsureReseeds(t *testing.T) {
	s := New()
	s.Ensure(3, seed())
	require.NoError(t, s.Append(3, models.Message{Role: models.RoleUser, Content: "start"}))
	require.True(t, s.Delete(3))

	s.Ensure(3, seed())
	msgs, ok := s.Get(3)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleSystem, msgs[0].Role)
}

func TestListAllSnapshots(t *testing.T) {
	s := New()
	s.Ensure(1, seed())
	s.Ensure(2, seed())
	require.NoError(t, s.Append(2, models.Message{Role: models.RoleUser, Content: "hi"}))

	all := s.ListAll()
	require.Len(t, all, 2)
	assert.Len(t, all[1], 1)
	assert.Len(t, all[2], 2)

	// Mutating the snapshot must not touch the store.
	all[2][0].Content = "tampered"
	fresh, _ := s.Get(2)
	assert.Equal(t, "host instructions", fresh[0].Content)
}

func TestListAllEmpty(t *testing.T) {
	s := New()
	assert.Empty(t, s.ListAll())
}

func TestConcurrentAppendsDistinctRooms(t *testing.T) {
	s := New()
	const perRoom = 100

	var wg sync.WaitGroup
	for roomID := int64(1); roomID <= 8; roomID++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.Ensure(id, seed())
			for i := 0; i < perRoom; i++ {
				_ = s.Append(id, models.Message{Role: models.RoleUser, Content: fmt.Sprintf("m%d", i)})
			}
		}(roomID)
	}
	wg.Wait()

	for roomID := int64(1); roomID <= 8; roomID++ {
		msgs, ok := s.Get(roomID)
		require.True(t, ok)
		assert.Len(t, msgs, perRoom+1)
	}
}

func TestTurnLockSerializesSameRoom(t *testing.T) {
	s := New()
	room := s.Ensure(1, seed())

	// Two workers each append a pair under the turn lock; pairs must
	// never interleave in the final transcript.
	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				room.Lock()
				_ = s.Append(1, models.Message{Role: models.RoleUser, Content: fmt.Sprintf("u%d", w)})
				_ = s.Append(1, models.Message{Role: models.RoleAssistant, Content: fmt.Sprintf("a%d", w)})
				room.Unlock()
			}
		}(w)
	}
	wg.Wait()

	msgs, ok := s.Get(1)
	require.True(t, ok)
	require.Len(t, msgs, 1+2*100)
	for i := 1; i < len(msgs); i += 2 {
		assert.Equal(t, models.RoleUser, msgs[i].Role)
		assert.Equal(t, models.RoleAssistant, msgs[i+1].Role)
		// The reply must belong to the same worker as the prompt.
		assert.Equal(t, msgs[i].Content[1:], msgs[i+1].Content[1:])
	}
}
