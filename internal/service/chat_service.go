package service

import (
	"context"
	"encoding/json"

	"github.com/Abduqodir7007/twitter-clone/internal/domain"
	"github.com/Abduqodir7007/twitter-clone/internal/repository"
	"github.com/Abduqodir7007/twitter-clone/pkg/log"
)

type chatService struct {
	chats      repository.ChatRepository
	users      repository.UserRepository
	dispatcher Dispatcher
}

// NewChatService creates a new chat service.
func NewChatService(chats repository.ChatRepository, users repository.UserRepository, dispatcher Dispatcher) ChatService {
	return &chatService{
		chats:      chats,
		users:      users,
		dispatcher: dispatcher,
	}
}

func (s *chatService) CreateOrGet(ctx context.Context, userID, recipientID string) (*domain.ChatResponse, error) {
	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	chat, err := s.chats.CreateOrGet(ctx, userID, recipientID)
	if err != nil {
		return nil, err
	}

	return &domain.ChatResponse{
		ID:        chat.ID,
		OtherUser: domain.NewUserInfo(recipient),
		CreatedAt: chat.CreatedAt,
	}, nil
}

func (s *chatService) ListChats(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	chats, err := s.chats.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	otherIDs := make([]string, 0, len(chats))
	for i := range chats {
		if other := chats[i].OtherParticipant(userID); other != nil {
			otherIDs = append(otherIDs, *other)
		}
	}
	others, err := s.users.GetByIDs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ChatSummary, 0, len(chats))
	for i := range chats {
		chat := &chats[i]

		var other *domain.User
		if otherID := chat.OtherParticipant(userID); otherID != nil {
			other = others[*otherID]
		}

		latest, err := s.chats.LatestMessage(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
		var preview *domain.LastMessagePreview
		if latest != nil {
			preview = &domain.LastMessagePreview{
				Content:   latest.Content,
				CreatedAt: latest.CreatedAt,
				SenderID:  latest.SenderID,
			}
		}

		summaries = append(summaries, domain.ChatSummary{
			ID:          chat.ID,
			OtherUser:   domain.NewUserInfo(other),
			LastMessage: preview,
			CreatedAt:   chat.CreatedAt,
		})
	}
	return summaries, nil
}

func (s *chatService) History(ctx context.Context, chatID, requesterID string) ([]domain.MessageResponse, error) {
	if _, err := s.chats.GetForUser(ctx, chatID, requesterID); err != nil {
		return nil, err
	}

	messages, err := s.chats.ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}

	senderIDs := make([]string, 0, len(messages))
	for _, m := range messages {
		senderIDs = append(senderIDs, m.SenderID)
	}
	senders, err := s.users.GetByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}

	history := make([]domain.MessageResponse, 0, len(messages))
	for _, m := range messages {
		history = append(history, domain.MessageResponse{
			ID:        m.ID,
			Content:   m.Content,
			SenderID:  m.SenderID,
			Sender:    domain.NewUserInfo(senders[m.SenderID]),
			CreatedAt: m.CreatedAt,
			IsOwn:     m.SenderID == requesterID,
		})
	}
	return history, nil
}

func (s *chatService) Send(ctx context.Context, chatID, senderID, content string) (*domain.MessageResponse, error) {
	if _, err := s.chats.GetForUser(ctx, chatID, senderID); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		// The message is stored; deliver with a placeholder sender
		// rather than failing the send.
		log.Ctx(ctx).Warn().Err(err).Str(log.FieldChatID, chatID).Msg("sender lookup failed after persist")
		sender = nil
	}
	senderInfo := domain.NewUserInfo(sender)

	event := domain.MessageEvent{
		Type: domain.EventNewMessage,
		Message: domain.MessagePayload{
			ID:        msg.ID,
			Content:   msg.Content,
			SenderID:  msg.SenderID,
			Sender:    senderInfo,
			CreatedAt: msg.CreatedAt,
		},
	}
	if payload, err := json.Marshal(event); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldChatID, chatID).Msg("failed to encode message event")
	} else {
		s.dispatcher.Dispatch(chatID, payload)
	}

	return &domain.MessageResponse{
		ID:        msg.ID,
		Content:   msg.Content,
		SenderID:  msg.SenderID,
		Sender:    senderInfo,
		CreatedAt: msg.CreatedAt,
		IsOwn:     true,
	}, nil
}

var _ ChatService = (*chatService)(nil)
