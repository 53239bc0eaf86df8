package service

import (
	"context"
	"strings"

	"olma/internal/models"
	"olma/internal/repository"
)

const maxMessageLength = 4000

// ConversationService provides messaging business logic. Conversations are
// the substrate meeting offers hang off.
type ConversationService struct {
	convRepo repository.ConversationRepository
	userRepo repository.UserRepository
}

// NewConversationService returns a new ConversationService.
func NewConversationService(convRepo repository.ConversationRepository, userRepo repository.UserRepository) *ConversationService {
	return &ConversationService{convRepo: convRepo, userRepo: userRepo}
}

// StartConversation opens (or returns the existing) thread between the
// caller and another user.
func (s *ConversationService) StartConversation(ctx context.Context, userID, otherUserID uint) (*models.Conversation, error) {
	if otherUserID == userID {
		return nil, models.NewValidationError("Cannot start a conversation with yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, otherUserID); err != nil {
		return nil, err
	}

	existing, err := s.convRepo.GetBetweenUsers(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	conv := &models.Conversation{CreatedBy: userID}
	if err := s.convRepo.Create(ctx, conv, []uint{userID, otherUserID}); err != nil {
		return nil, err
	}
	return s.convRepo.GetByID(ctx, conv.ID)
}

// ListConversations returns the caller's threads, most recently active first.
func (s *ConversationService) ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	return s.convRepo.ListForUser(ctx, userID)
}

// SendMessage appends a message to a conversation the caller belongs to.
func (s *ConversationService) SendMessage(ctx context.Context, userID, conversationID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("content is required")
	}
	if len(content) > maxMessageLength {
		return nil, models.NewValidationError("content is too long")
	}

	ok, err := s.convRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewForbiddenError("You are not a participant of this conversation")
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        content,
	}
	if err := s.convRepo.AddMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// GetMessages returns a conversation's messages, newest first.
func (s *ConversationService) GetMessages(ctx context.Context, userID, conversationID uint, limit, offset int) ([]models.Message, error) {
	ok, err := s.convRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewForbiddenError("You are not a participant of this conversation")
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return s.convRepo.GetMessages(ctx, conversationID, limit, offset)
}
