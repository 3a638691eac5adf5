package store

import (
	"errors"
	"sync"

	"github.com/wersching/riddlegate/internal/models"
)

// ErrRoomNotFound is returned by Append when the room has no entry.
// Callers are expected to Ensure a room before appending to it.
var ErrRoomNotFound = errors.New("room not found")

// Store maps room ids to conversation transcripts. It is the only piece
// of shared mutable state in the system and is safe for concurrent use.
// State is held in memory only and does not survive a restart.
type Store struct {
	mu    sync.RWMutex
	rooms map[int64]*Room
}

// Room is a live handle to one room's transcript. The turn lock
// (Lock/Unlock) serializes whole chat turns on the room, including the
// inference round trip, so concurrent chats on the same room cannot
// interleave their transcripts. The data mutex guarding the messages
// slice is separate, so readers are never blocked behind an in-flight
// inference call.
type Room struct {
	turnMu sync.Mutex

	mu       sync.RWMutex
	messages []models.Message
}

// Lock acquires the room's turn lock.
func (r *Room) Lock() { r.turnMu.Lock() }

// Unlock releases the room's turn lock.
func (r *Room) Unlock() { r.turnMu.Unlock() }

func (r *Room) snapshot() []models.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

func New() *Store {
	return &Store{rooms: make(map[int64]*Room)}
}

// Get returns a copy of the room's transcript, or false if the room
// does not exist.
func (s *Store) Get(roomID int64) ([]models.Message, bool) {
	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return room.snapshot(), true
}

// Ensure returns the room's live handle, creating the room seeded with
// the given messages if it does not exist yet. An existing room is
// returned unchanged; the seed is ignored.
func (s *Store) Ensure(roomID int64, seed []models.Message) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		room = &Room{messages: append([]models.Message(nil), seed...)}
		s.rooms[roomID] = room
	}
	return room
}

// Append adds msg to the end of the room's transcript. The room must
// already exist.
func (s *Store) Append(roomID int64, msg models.Message) error {
	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return ErrRoomNotFound
	}
	room.mu.Lock()
	room.messages = append(room.messages, msg)
	room.mu.Unlock()
	return nil
}

// Delete removes the room and reports whether it existed.
func (s *Store) Delete(roomID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[roomID]
	if ok {
		delete(s.rooms, roomID)
	}
	return ok
}

// ListAll returns a snapshot of every room's full transcript, system
// messages included. Iteration order is unspecified.
func (s *Store) ListAll() map[int64][]models.Message {
	s.mu.RLock()
	rooms := make(map[int64]*Room, len(s.rooms))
	for id, room := range s.rooms {
		rooms[id] = room
	}
	s.mu.RUnlock()

	out := make(map[int64][]models.Message, len(rooms))
	for id, room := range rooms {
		out[id] = room.snapshot()
	}
	return out
}
