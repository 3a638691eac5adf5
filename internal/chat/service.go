package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/wersching/riddlegate/internal/models"
	"github.com/wersching/riddlegate/internal/store"
	"go.uber.org/zap"
)

// ErrInference marks a failed inference call. The user's message stays
// recorded in the room when this is returned; there is no rollback.
var ErrInference = errors.New("inference failed")

// Gateway sends an ordered transcript to the model backend and returns
// its reply.
type Gateway interface {
	Complete(ctx context.Context, history []models.Message) (string, error)
}

// Service orchestrates the conversation store and the inference gateway
// to implement the three room operations: chat, list, delete.
type Service struct {
	store        *store.Store
	gateway      Gateway
	systemPrompt string
	logger       *zap.Logger
}

func NewService(st *store.Store, gw Gateway, systemPrompt string, logger *zap.Logger) *Service {
	return &Service{
		store:        st,
		gateway:      gw,
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

// Chat records the user's prompt in the room, sends the full transcript
// to the gateway and records and returns the reply. A room is created
// lazily on first contact, seeded with the system prompt; the prompt is
// injected exactly once and rides along as the first element of every
// later send. The full history is resent every turn with no truncation.
//
// Turns on the same room are serialized, inference round trip included;
// turns on distinct rooms proceed independently.
func (s *Service) Chat(ctx context.Context, roomID int64, userPrompt string) (string, error) {
	room := s.store.Ensure(roomID, []models.Message{
		{Role: models.RoleSystem, Content: s.systemPrompt},
	})
	room.Lock()
	defer room.Unlock()

	if err := s.store.Append(roomID, models.Message{Role: models.RoleUser, Content: userPrompt}); err != nil {
		return "", fmt.Errorf("record user message: %w", err)
	}

	history, _ := s.store.Get(roomID)
	reply, err := s.gateway.Complete(ctx, history)
	if err != nil {
		s.logger.Error("inference call failed",
			zap.Int64("roomId", roomID),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrInference, err)
	}

	if err := s.store.Append(roomID, models.Message{Role: models.RoleAssistant, Content: reply}); err != nil {
		// The room was deleted while the gateway call was in flight.
		// The reply is still valid for the caller.
		s.logger.Warn("room gone before reply could be recorded",
			zap.Int64("roomId", roomID))
	}
	return reply, nil
}

// ListRooms returns a view of every room with system messages filtered
// out. Rooms are sorted by id so the result is stable for callers, even
// though the store itself promises no order.
func (s *Service) ListRooms() []models.RoomView {
	all := s.store.ListAll()
	views := make([]models.RoomView, 0, len(all))
	for id, messages := range all {
		visible := make([]models.Message, 0, len(messages))
		for _, msg := range messages {
			if msg.Role != models.RoleSystem {
				visible = append(visible, msg)
			}
		}
		views = append(views, models.RoomView{RoomID: id, Messages: visible})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].RoomID < views[j].RoomID })
	return views
}

// DeleteRoom removes the room and reports whether it existed. Deleting
// an absent room is a no-op returning false.
func (s *Service) DeleteRoom(roomID int64) bool {
	return s.store.Delete(roomID)
}
