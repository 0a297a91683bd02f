package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"chatwire/internal/entity"
	"chatwire/internal/repository"

	"github.com/google/uuid"
)

// In-memory repository fakes implementing the same contracts as the Mongo
// implementations, so the usecases can be exercised without a database.

type fakeChatRepo struct {
	mu    sync.Mutex
	chats map[string]entity.Chat
	// afterCreate runs once after the next Create, outside the lock. Lets
	// tests interleave a concurrent writer at the worst possible moment.
	afterCreate func()
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[string]entity.Chat)}
}

func (f *fakeChatRepo) Index(ctx context.Context, userId string) ([]entity.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var chats []entity.Chat
	for _, chat := range f.chats {
		if chat.HasParticipant(userId) {
			chats = append(chats, chat)
		}
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats, nil
}

func (f *fakeChatRepo) Get(ctx context.Context, chatId string) (entity.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	chat, ok := f.chats[chatId]
	if !ok {
		return entity.Chat{}, repository.ErrChatNotFound
	}
	return chat, nil
}

func (f *fakeChatRepo) Create(ctx context.Context, chat entity.Chat) (string, error) {
	f.mu.Lock()
	chat.Id = uuid.New().String()
	chat.CreatedAt = time.Now()
	chat.UpdatedAt = chat.CreatedAt
	f.chats[chat.Id] = chat
	hook := f.afterCreate
	f.afterCreate = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return chat.Id, nil
}

func (f *fakeChatRepo) SetLastMessage(ctx context.Context, chatId, messageId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	chat, ok := f.chats[chatId]
	if !ok {
		return repository.ErrChatNotFound
	}
	chat.LastMessageId = messageId
	chat.UpdatedAt = time.Now()
	f.chats[chatId] = chat
	return nil
}

func (f *fakeChatRepo) Delete(ctx context.Context, chatId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.chats, chatId)
	return nil
}

func (f *fakeChatRepo) GetDirectChatBetweenUsers(ctx context.Context, userId1, userId2 string) (entity.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var found []entity.Chat
	for _, chat := range f.chats {
		if chat.Type == entity.ChatTypeDirect && chat.HasParticipant(userId1) && chat.HasParticipant(userId2) {
			found = append(found, chat)
		}
	}
	if len(found) == 0 {
		return entity.Chat{}, repository.ErrChatNotFound
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].CreatedAt.Equal(found[j].CreatedAt) {
			return found[i].Id < found[j].Id
		}
		return found[i].CreatedAt.Before(found[j].CreatedAt)
	})
	return found[0], nil
}

// seed inserts a chat with a fixed id, bypassing Create.
func (f *fakeChatRepo) seed(chat entity.Chat) entity.Chat {
	f.mu.Lock()
	defer f.mu.Unlock()

	if chat.Id == "" {
		chat.Id = uuid.New().String()
	}
	if chat.Type == "" {
		chat.Type = entity.ChatTypeDirect
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
		chat.UpdatedAt = chat.CreatedAt
	}
	f.chats[chat.Id] = chat
	return chat
}

type fakeMessageRepo struct {
	mu        sync.Mutex
	messages  []*entity.Message
	seq       int
	createErr error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (f *fakeMessageRepo) Create(ctx context.Context, message entity.Message) (entity.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return entity.Message{}, f.createErr
	}

	f.seq++
	message.Id = fmt.Sprintf("%024d", f.seq)
	message.CreatedAt = time.Now()
	message.DeliveredAt = nil
	message.ReadAt = nil

	stored := message
	f.messages = append(f.messages, &stored)
	return message, nil
}

func (f *fakeMessageRepo) Get(ctx context.Context, messageId string) (entity.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range f.messages {
		if m.Id == messageId {
			return *m, nil
		}
	}
	return entity.Message{}, repository.ErrMessageNotFound
}

func (f *fakeMessageRepo) GetByChatId(ctx context.Context, chatId string, page, limit int) ([]entity.Message, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []entity.Message
	for _, m := range f.messages {
		if m.ChatId == chatId {
			all = append(all, *m)
		}
	}
	// Newest first, matching the Mongo sort.
	sort.Slice(all, func(i, j int) bool { return all[i].Id > all[j].Id })

	total := int64(len(all))
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeMessageRepo) CountUnread(ctx context.Context, chatId, senderId string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, m := range f.messages {
		if m.ChatId == chatId && m.SenderId == senderId && m.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageRepo) MarkDelivered(ctx context.Context, messageId string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range f.messages {
		if m.Id == messageId {
			if m.DeliveredAt != nil {
				return false, nil
			}
			m.DeliveredAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMessageRepo) MarkChatRead(ctx context.Context, chatId, senderId string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var marked int64
	for _, m := range f.messages {
		if m.ChatId == chatId && m.SenderId == senderId && m.ReadAt == nil {
			m.ReadAt = &at
			marked++
		}
	}
	return marked, nil
}

func (f *fakeMessageRepo) DeleteByChatId(ctx context.Context, chatId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.messages[:0]
	for _, m := range f.messages {
		if m.ChatId != chatId {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]entity.User)}
}

func (f *fakeUserRepo) Get(ctx context.Context, userId string) (entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[userId]
	if !ok {
		return entity.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return entity.User{}, repository.ErrUserNotFound
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user entity.User) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user.Id = uuid.New().String()
	f.users[user.Id] = user
	return user.Id, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.users[user.Id] = user
	return nil
}

func (f *fakeUserRepo) Index(ctx context.Context, filter entity.UserIndexFilter) ([]entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var users []entity.User
	for _, user := range f.users {
		if filter.ExcludeId != "" && user.Id == filter.ExcludeId {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeUserRepo) seed(user entity.User) entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	if user.Id == "" {
		user.Id = uuid.New().String()
	}
	f.users[user.Id] = user
	return user
}

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]entity.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]entity.RefreshToken)}
}

func (f *fakeRefreshTokenRepo) Create(ctx context.Context, refreshToken entity.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	refreshToken.Id = uuid.New().String()
	refreshToken.CreatedAt = time.Now()
	refreshToken.IsRevoked = false
	f.tokens[refreshToken.Token] = refreshToken
	return nil
}

func (f *fakeRefreshTokenRepo) GetByToken(ctx context.Context, token string) (entity.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rt, ok := f.tokens[token]
	if !ok {
		return entity.RefreshToken{}, repository.ErrRefreshTokenNotFound
	}
	return rt, nil
}

func (f *fakeRefreshTokenRepo) Revoke(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rt, ok := f.tokens[token]; ok {
		now := time.Now()
		rt.IsRevoked = true
		rt.RevokedAt = &now
		f.tokens[token] = rt
	}
	return nil
}

func (f *fakeRefreshTokenRepo) RevokeAllByUserId(ctx context.Context, userId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	for token, rt := range f.tokens {
		if rt.UserId == userId && !rt.IsRevoked {
			rt.IsRevoked = true
			rt.RevokedAt = &now
			f.tokens[token] = rt
		}
	}
	return nil
}

func (f *fakeRefreshTokenRepo) DeleteExpired(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for token, rt := range f.tokens {
		if rt.ExpiresAt.Before(time.Now()) {
			delete(f.tokens, token)
		}
	}
	return nil
}

// fakePusher records every push. Handles in failHandles refuse delivery,
// simulating a stale connection.
type fakePusher struct {
	mu          sync.Mutex
	pushes      []recordedPush
	failHandles map[string]bool
}

type recordedPush struct {
	handle  string
	payload []byte
}

func newFakePusher() *fakePusher {
	return &fakePusher{failHandles: make(map[string]bool)}
}

func (f *fakePusher) Send(handle string, payload []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failHandles[handle] {
		return false
	}
	f.pushes = append(f.pushes, recordedPush{handle: handle, payload: payload})
	return true
}

func (f *fakePusher) recorded() []recordedPush {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]recordedPush, len(f.pushes))
	copy(out, f.pushes)
	return out
}
