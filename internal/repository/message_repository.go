package repository

import (
	"context"
	"errors"
	"time"

	"chatwire/internal/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository interface {
	Create(ctx context.Context, message entity.Message) (entity.Message, error)
	Get(ctx context.Context, messageId string) (entity.Message, error)
	GetByChatId(ctx context.Context, chatId string, page, limit int) ([]entity.Message, int64, error)
	CountUnread(ctx context.Context, chatId, senderId string) (int64, error)
	MarkDelivered(ctx context.Context, messageId string, at time.Time) (bool, error)
	MarkChatRead(ctx context.Context, chatId, senderId string, at time.Time) (int64, error)
	DeleteByChatId(ctx context.Context, chatId string) error
}

type messageRepository struct {
	db *mongo.Database
}

func NewMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

// Create persists a message and returns it with its server-assigned id
// and timestamp. Ids are ObjectID hex, which embed the creation time, so
// id order matches creation order within the store.
func (r *messageRepository) Create(ctx context.Context, message entity.Message) (entity.Message, error) {
	collection := r.db.Collection("messages")
	message.Id = primitive.NewObjectID().Hex()
	message.CreatedAt = time.Now()
	message.DeliveredAt = nil
	message.ReadAt = nil

	_, err := collection.InsertOne(ctx, message)
	if err != nil {
		return entity.Message{}, err
	}

	return message, nil
}

func (r *messageRepository) Get(ctx context.Context, messageId string) (entity.Message, error) {
	collection := r.db.Collection("messages")
	filter := bson.M{"_id": messageId}

	var message entity.Message
	err := collection.FindOne(ctx, filter).Decode(&message)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return entity.Message{}, ErrMessageNotFound
		}
		return entity.Message{}, err
	}

	return message, nil
}

// GetByChatId returns one page of a chat's history, newest first, plus
// the total message count for pagination.
func (r *messageRepository) GetByChatId(ctx context.Context, chatId string, page, limit int) ([]entity.Message, int64, error) {
	collection := r.db.Collection("messages")
	filter := bson.M{"chatId": chatId}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	var messages []entity.Message
	err = cursor.All(ctx, &messages)
	if err != nil {
		return nil, 0, err
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// CountUnread is the durable fallback behind the unread counter cache:
// messages in the chat from senderId that nobody has read yet.
func (r *messageRepository) CountUnread(ctx context.Context, chatId, senderId string) (int64, error) {
	collection := r.db.Collection("messages")
	filter := bson.M{
		"chatId":   chatId,
		"senderId": senderId,
		"readAt":   nil,
	}

	return collection.CountDocuments(ctx, filter)
}

// MarkDelivered sets deliveredAt once. The null filter makes repeated
// confirmations no-ops, so the timestamp never moves. Returns whether
// this call performed the transition.
func (r *messageRepository) MarkDelivered(ctx context.Context, messageId string, at time.Time) (bool, error) {
	collection := r.db.Collection("messages")
	filter := bson.M{
		"_id":         messageId,
		"deliveredAt": nil,
	}
	update := bson.M{
		"$set": bson.M{"deliveredAt": at},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount > 0, nil
}

// MarkChatRead sets readAt on every unread message from senderId in one
// durable operation and returns how many messages it flipped. Already-read
// messages are untouched, so repeated read-marks are idempotent.
func (r *messageRepository) MarkChatRead(ctx context.Context, chatId, senderId string, at time.Time) (int64, error) {
	collection := r.db.Collection("messages")
	filter := bson.M{
		"chatId":   chatId,
		"senderId": senderId,
		"readAt":   nil,
	}
	update := bson.M{
		"$set": bson.M{"readAt": at},
	}

	result, err := collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}

func (r *messageRepository) DeleteByChatId(ctx context.Context, chatId string) error {
	collection := r.db.Collection("messages")
	filter := bson.M{"chatId": chatId}
	_, err := collection.DeleteMany(ctx, filter)
	return err
}
