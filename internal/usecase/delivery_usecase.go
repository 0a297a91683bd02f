package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"chatwire/infrastructure/cache"
	"chatwire/infrastructure/presence"
	"chatwire/internal/entity"
	"chatwire/internal/event"
	"chatwire/internal/repository"
	"chatwire/pkg/apperr"
)

// Pusher delivers an encoded payload to the connection holding handle and
// reports whether the connection accepted it. ws.Hub satisfies this.
type Pusher interface {
	Send(handle string, payload []byte) bool
}

// DeliveryUsecase is the per-message protocol state machine: persist,
// acknowledge the sender, then either push to the receiver's live
// connection or count the message as unread. Exactly one of the two.
type DeliveryUsecase interface {
	Send(ctx context.Context, senderId string, req event.SendMessage) (entity.Message, error)
	ConfirmDelivered(ctx context.Context, receiverId string, confirm event.ReceivedSuccess) error
	MarkChatRead(ctx context.Context, readerId, chatId, otherUserId string) error
}

type deliveryUsecase struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	presence    presence.Registry
	unread      cache.UnreadCounter
	pusher      Pusher
}

func NewDeliveryUsecase(
	chatRepo repository.ChatRepository,
	messageRepo repository.MessageRepository,
	presenceReg presence.Registry,
	unread cache.UnreadCounter,
	pusher Pusher,
) DeliveryUsecase {
	return &deliveryUsecase{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		presence:    presenceReg,
		unread:      unread,
		pusher:      pusher,
	}
}

// Send validates and persists a message, then attempts the live push.
// Persistence is the durability boundary: a store failure aborts with no
// push and no counter change, while push-side failures degrade to the
// unread counter and are never surfaced to the sender.
func (d *deliveryUsecase) Send(ctx context.Context, senderId string, req event.SendMessage) (entity.Message, error) {
	if req.ChatId == "" {
		return entity.Message{}, apperr.InvalidArg("chatId is required")
	}
	if strings.TrimSpace(req.Content) == "" && len(req.Attachments) == 0 {
		return entity.Message{}, apperr.InvalidArg("message content is required")
	}
	for _, att := range req.Attachments {
		if att.URL == "" {
			return entity.Message{}, apperr.InvalidArg("attachment url is required")
		}
	}

	chat, err := d.chatRepo.Get(ctx, req.ChatId)
	if err != nil {
		if err == repository.ErrChatNotFound {
			return entity.Message{}, apperr.NotFound("chat not found")
		}
		return entity.Message{}, apperr.Internal("failed to load chat", err)
	}
	if !chat.HasParticipant(senderId) {
		return entity.Message{}, apperr.PermissionDenied("you are not a participant of this chat")
	}

	message, err := d.messageRepo.Create(ctx, entity.Message{
		ChatId:      req.ChatId,
		SenderId:    senderId,
		Content:     req.Content,
		Attachments: req.Attachments,
	})
	if err != nil {
		return entity.Message{}, apperr.Internal("failed to send message", err)
	}

	// Last-message pointer may lag the message insert; the chat list
	// tolerates the stale window.
	if err := d.chatRepo.SetLastMessage(ctx, chat.Id, message.Id); err != nil {
		log.Printf("SetLastMessage error: %v", err)
	}

	receiverId := chat.OtherParticipant(senderId)
	d.pushOrCount(ctx, receiverId, message)

	return message, nil
}

// pushOrCount delivers the message to the receiver's live connection, or
// failing that increments the receiver's unread counter. Never both.
func (d *deliveryUsecase) pushOrCount(ctx context.Context, receiverId string, message entity.Message) {
	handle, online, err := d.presence.Handle(ctx, receiverId)
	if err != nil {
		log.Printf("Presence lookup error: %v", err)
		online = false
	}

	if online {
		payload, err := event.Marshal(event.MessageReceived, message)
		if err != nil {
			log.Printf("Marshal message error: %v", err)
			online = false
		} else if !d.pusher.Send(handle, payload) {
			// Stale or saturated handle: receiver is effectively absent.
			online = false
		}
	}

	if !online {
		if err := d.unread.Increment(ctx, receiverId, message.ChatId); err != nil {
			log.Printf("Unread increment error: %v", err)
		}
	}
}

// ConfirmDelivered processes the receiver's explicit confirmation that a
// pushed message was rendered. deliveredAt is set once; repeated
// confirmations are no-ops and notify nobody.
func (d *deliveryUsecase) ConfirmDelivered(ctx context.Context, receiverId string, confirm event.ReceivedSuccess) error {
	if confirm.MessageId == "" {
		return apperr.InvalidArg("messageId is required")
	}

	message, err := d.messageRepo.Get(ctx, confirm.MessageId)
	if err != nil {
		if err == repository.ErrMessageNotFound {
			return apperr.NotFound("message not found")
		}
		return apperr.Internal("failed to load message", err)
	}
	if message.SenderId == receiverId {
		return apperr.InvalidArg("cannot confirm delivery of your own message")
	}

	transitioned, err := d.messageRepo.MarkDelivered(ctx, message.Id, time.Now())
	if err != nil {
		return apperr.Internal("failed to mark message delivered", err)
	}
	if !transitioned {
		return nil
	}

	d.notify(ctx, message.SenderId, event.MessageDelivered, event.DeliveredNotice{
		MessageId: message.Id,
		ChatId:    message.ChatId,
	})
	return nil
}

// MarkChatRead flips every unread message from the other participant in
// one durable operation, clears the reader's unread counter entry, and
// tells the other participant if they are reachable.
func (d *deliveryUsecase) MarkChatRead(ctx context.Context, readerId, chatId, otherUserId string) error {
	if chatId == "" {
		return apperr.InvalidArg("chatId is required")
	}

	chat, err := d.chatRepo.Get(ctx, chatId)
	if err != nil {
		if err == repository.ErrChatNotFound {
			return apperr.NotFound("chat not found")
		}
		return apperr.Internal("failed to load chat", err)
	}
	if !chat.HasParticipant(readerId) {
		return apperr.PermissionDenied("you are not a participant of this chat")
	}

	// The other participant is derived from the chat record; the payload
	// field is advisory and only checked for consistency.
	other := chat.OtherParticipant(readerId)
	if otherUserId != "" && otherUserId != other {
		return apperr.InvalidArg("otherUserId is not a participant of this chat")
	}

	marked, err := d.messageRepo.MarkChatRead(ctx, chatId, other, time.Now())
	if err != nil {
		return apperr.Internal("failed to mark chat read", err)
	}

	if err := d.unread.Clear(ctx, readerId, chatId); err != nil {
		log.Printf("Unread clear error: %v", err)
	}

	if marked > 0 {
		d.notify(ctx, other, event.ChatMessageRead, event.ReadNotice{ChatId: chatId})
	}
	return nil
}

// notify pushes an advisory event to userId's live connection, if any.
// Losing it is fine; durable state already reflects the change.
func (d *deliveryUsecase) notify(ctx context.Context, userId, eventName string, data any) {
	handle, online, err := d.presence.Handle(ctx, userId)
	if err != nil {
		log.Printf("Presence lookup error: %v", err)
		return
	}
	if !online {
		return
	}

	payload, err := event.Marshal(eventName, data)
	if err != nil {
		log.Printf("Marshal %s error: %v", eventName, err)
		return
	}
	d.pusher.Send(handle, payload)
}
