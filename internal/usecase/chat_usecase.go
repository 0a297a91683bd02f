package usecase

import (
	"context"
	"log"

	"chatwire/infrastructure/cache"
	"chatwire/infrastructure/presence"
	"chatwire/internal/entity"
	"chatwire/internal/repository"
	"chatwire/pkg/apperr"
)

type ChatUsecase interface {
	Index(ctx context.Context, userId string) ([]entity.ChatSummary, error)
	CreateDirectChat(ctx context.Context, userId, otherUserId string) (entity.Chat, error)
	GetMessages(ctx context.Context, chatId, userId string, page, limit int) (entity.MessagePage, error)
	Delete(ctx context.Context, chatId, userId string) error
	UnreadCount(ctx context.Context, userId string, chat entity.Chat) (int64, error)
}

type chatUsecase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	presence    presence.Registry
	unread      cache.UnreadCounter
}

func NewChatUsecase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	presenceReg presence.Registry,
	unread cache.UnreadCounter,
) ChatUsecase {
	return &chatUsecase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		presence:    presenceReg,
		unread:      unread,
	}
}

// Index returns the caller's chats with unread counts and the other
// participant's live presence flag, most recently active first.
func (c *chatUsecase) Index(ctx context.Context, userId string) ([]entity.ChatSummary, error) {
	chats, err := c.chatRepo.Index(ctx, userId)
	if err != nil {
		return nil, apperr.Internal("failed to list chats", err)
	}

	onlineIds, err := c.presence.OnlineUserIds(ctx)
	if err != nil {
		// Presence is advisory; the list still works without it.
		log.Printf("OnlineUserIds error: %v", err)
	}
	online := make(map[string]bool, len(onlineIds))
	for _, id := range onlineIds {
		online[id] = true
	}

	summaries := make([]entity.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		unreadCount, err := c.UnreadCount(ctx, userId, chat)
		if err != nil {
			return nil, err
		}

		summary := entity.ChatSummary{
			Chat:        chat,
			UnreadCount: unreadCount,
			IsOnline:    online[chat.OtherParticipant(userId)],
		}

		if chat.LastMessageId != "" {
			lastMessage, err := c.messageRepo.Get(ctx, chat.LastMessageId)
			if err != nil {
				log.Printf("Get last message error: %v", err)
			} else {
				summary.LastMessage = &lastMessage
			}
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// UnreadCount reads the counter cache-aside: a cached entry is served
// directly, a miss falls back to a durable count and repopulates the
// cache. The cache is never the increment authority for counts that
// predate its own entry.
func (c *chatUsecase) UnreadCount(ctx context.Context, userId string, chat entity.Chat) (int64, error) {
	count, cached, err := c.unread.Get(ctx, userId, chat.Id)
	if err != nil {
		log.Printf("Unread cache read error: %v", err)
	} else if cached {
		return count, nil
	}

	count, err = c.messageRepo.CountUnread(ctx, chat.Id, chat.OtherParticipant(userId))
	if err != nil {
		return 0, apperr.Internal("failed to count unread messages", err)
	}

	if err := c.unread.Set(ctx, userId, chat.Id, count); err != nil {
		log.Printf("Unread cache set error: %v", err)
	}

	return count, nil
}

// CreateDirectChat returns the existing chat for the pair or creates one.
// A concurrent duplicate creation resolves by re-lookup: the oldest
// document wins and the loser deletes its own insert.
func (c *chatUsecase) CreateDirectChat(ctx context.Context, userId, otherUserId string) (entity.Chat, error) {
	if otherUserId == "" {
		return entity.Chat{}, apperr.InvalidArg("otherUserId is required")
	}
	if otherUserId == userId {
		return entity.Chat{}, apperr.InvalidArg("cannot chat with yourself")
	}

	if _, err := c.userRepo.Get(ctx, otherUserId); err != nil {
		if err == repository.ErrUserNotFound {
			return entity.Chat{}, apperr.NotFound("user not found")
		}
		return entity.Chat{}, apperr.Internal("failed to load user", err)
	}

	existing, err := c.chatRepo.GetDirectChatBetweenUsers(ctx, userId, otherUserId)
	if err == nil {
		return existing, nil
	}
	if err != repository.ErrChatNotFound {
		return entity.Chat{}, apperr.Internal("failed to look up chat", err)
	}

	chatId, err := c.chatRepo.Create(ctx, entity.Chat{
		Type:         entity.ChatTypeDirect,
		Participants: []string{userId, otherUserId},
	})
	if err != nil {
		return entity.Chat{}, apperr.Internal("failed to create chat", err)
	}

	// First write wins: if a concurrent create slipped in between lookup
	// and insert, keep the older document and drop ours.
	winner, err := c.chatRepo.GetDirectChatBetweenUsers(ctx, userId, otherUserId)
	if err != nil {
		return entity.Chat{}, apperr.Internal("failed to look up chat", err)
	}
	if winner.Id != chatId {
		if err := c.chatRepo.Delete(ctx, chatId); err != nil {
			log.Printf("Duplicate chat cleanup error: %v", err)
		}
	}

	return winner, nil
}

// GetMessages returns one page of history in ascending creation order
// (fetched descending, then reversed).
func (c *chatUsecase) GetMessages(ctx context.Context, chatId, userId string, page, limit int) (entity.MessagePage, error) {
	chat, err := c.chatRepo.Get(ctx, chatId)
	if err != nil {
		if err == repository.ErrChatNotFound {
			return entity.MessagePage{}, apperr.NotFound("chat not found")
		}
		return entity.MessagePage{}, apperr.Internal("failed to load chat", err)
	}
	if !chat.HasParticipant(userId) {
		return entity.MessagePage{}, apperr.PermissionDenied("you are not a participant of this chat")
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	messages, total, err := c.messageRepo.GetByChatId(ctx, chatId, page, limit)
	if err != nil {
		return entity.MessagePage{}, apperr.Internal("failed to load messages", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}

	return entity.MessagePage{
		Messages: messages,
		Page:     page,
		Limit:    limit,
		Total:    total,
		Pages:    pages,
	}, nil
}

// Delete removes a chat and its messages, and drops both participants'
// unread counter entries.
func (c *chatUsecase) Delete(ctx context.Context, chatId, userId string) error {
	chat, err := c.chatRepo.Get(ctx, chatId)
	if err != nil {
		if err == repository.ErrChatNotFound {
			return apperr.NotFound("chat not found")
		}
		return apperr.Internal("failed to load chat", err)
	}
	if !chat.HasParticipant(userId) {
		return apperr.PermissionDenied("you are not a participant of this chat")
	}

	if err := c.messageRepo.DeleteByChatId(ctx, chatId); err != nil {
		return apperr.Internal("failed to delete messages", err)
	}
	if err := c.chatRepo.Delete(ctx, chatId); err != nil {
		return apperr.Internal("failed to delete chat", err)
	}

	for _, participant := range chat.Participants {
		if err := c.unread.Clear(ctx, participant, chatId); err != nil {
			log.Printf("Unread clear error: %v", err)
		}
	}

	return nil
}
