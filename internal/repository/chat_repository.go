package repository

import (
	"context"
	"errors"
	"time"

	"chatwire/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrChatNotFound = errors.New("chat not found")

type ChatRepository interface {
	Index(ctx context.Context, userId string) ([]entity.Chat, error)
	Get(ctx context.Context, chatId string) (entity.Chat, error)
	Create(ctx context.Context, chat entity.Chat) (string, error)
	SetLastMessage(ctx context.Context, chatId, messageId string) error
	Delete(ctx context.Context, chatId string) error
	GetDirectChatBetweenUsers(ctx context.Context, userId1, userId2 string) (entity.Chat, error)
}

type chatRepository struct {
	db *mongo.Database
}

func NewChatRepository(db *mongo.Database) ChatRepository {
	return &chatRepository{
		db: db,
	}
}

// Index returns all direct chats the user participates in, most recently
// active first.
func (r *chatRepository) Index(ctx context.Context, userId string) ([]entity.Chat, error) {
	collection := r.db.Collection("chats")
	filter := bson.M{
		"type":         entity.ChatTypeDirect,
		"participants": userId,
	}

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var chats []entity.Chat
	err = cursor.All(ctx, &chats)
	if err != nil {
		return nil, err
	}

	return chats, nil
}

// Get returns a chat by ID
func (r *chatRepository) Get(ctx context.Context, chatId string) (entity.Chat, error) {
	collection := r.db.Collection("chats")
	filter := bson.M{"_id": chatId}

	var chat entity.Chat
	err := collection.FindOne(ctx, filter).Decode(&chat)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return entity.Chat{}, ErrChatNotFound
		}
		return entity.Chat{}, err
	}

	return chat, nil
}

// Create creates a new chat
func (r *chatRepository) Create(ctx context.Context, chat entity.Chat) (string, error) {
	collection := r.db.Collection("chats")
	chat.Id = uuid.New().String()
	chat.CreatedAt = time.Now()
	chat.UpdatedAt = time.Now()

	_, err := collection.InsertOne(ctx, chat)
	if err != nil {
		return "", err
	}

	return chat.Id, nil
}

// SetLastMessage points the chat at its newest message and bumps
// updatedAt so the chat list sorts it to the top.
func (r *chatRepository) SetLastMessage(ctx context.Context, chatId, messageId string) error {
	collection := r.db.Collection("chats")
	filter := bson.M{"_id": chatId}
	update := bson.M{
		"$set": bson.M{
			"lastMessageId": messageId,
			"updatedAt":     time.Now(),
		},
	}

	_, err := collection.UpdateOne(ctx, filter, update)
	return err
}

// Delete deletes a chat
func (r *chatRepository) Delete(ctx context.Context, chatId string) error {
	collection := r.db.Collection("chats")
	filter := bson.M{"_id": chatId}
	_, err := collection.DeleteOne(ctx, filter)
	return err
}

// GetDirectChatBetweenUsers finds the existing direct chat for a pair of
// users. The pair is unique, so callers look up here before Create and
// re-look-up if a concurrent Create inserted the same pair first. The
// oldest document wins, which makes the duplicate-race resolution
// deterministic on both sides.
func (r *chatRepository) GetDirectChatBetweenUsers(ctx context.Context, userId1, userId2 string) (entity.Chat, error) {
	collection := r.db.Collection("chats")
	filter := bson.M{
		"type": entity.ChatTypeDirect,
		"participants": bson.M{
			"$all":  bson.A{userId1, userId2},
			"$size": 2,
		},
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	var chat entity.Chat
	err := collection.FindOne(ctx, filter, opts).Decode(&chat)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return entity.Chat{}, ErrChatNotFound
		}
		return entity.Chat{}, err
	}

	return chat, nil
}
