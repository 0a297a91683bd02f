// Package event defines the wire protocol spoken over the websocket: one
// envelope shape in both directions and one discriminated acknowledgement
// shape for every request event.
package event

import (
	"encoding/json"

	"chatwire/internal/entity"
)

// Client → server events.
const (
	MessageSend            = "message:send"
	MessageReceivedSuccess = "message:receivedSuccess"
	ChatRead               = "chat:read"
)

// Server → client events.
const (
	MessageSent      = "message:sent"
	MessageReceived  = "message:received"
	MessageDelivered = "message:delivered"
	ChatMessageRead  = "chat:messageRead"
	UserOnline       = "user:online"
	UserOffline      = "user:offline"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Marshal wraps data in an envelope for the given event.
func Marshal(eventName string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: eventName, Data: raw})
}

// Ack is the uniform acknowledgement for request events: either a success
// carrying the server-confirmed message, or a failure carrying an error
// string. Never both.
type Ack struct {
	Success bool            `json:"success"`
	Message *entity.Message `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// SendMessage is the message:send payload.
type SendMessage struct {
	ChatId      string              `json:"chatId"`
	Content     string              `json:"content"`
	Attachments []entity.Attachment `json:"attachments,omitempty"`
}

// ReceivedSuccess is the client's explicit confirmation that a pushed
// message was rendered, not just transported.
type ReceivedSuccess struct {
	MessageId string `json:"messageId"`
	SenderId  string `json:"senderId"`
	ChatId    string `json:"chatId"`
}

// ChatReadMark asks the server to mark every unread message from the
// other participant as read.
type ChatReadMark struct {
	ChatId      string `json:"chatId"`
	OtherUserId string `json:"otherUserId"`
}

// DeliveredNotice tells the sender one of their messages reached the
// receiver's client.
type DeliveredNotice struct {
	MessageId string `json:"messageId"`
	ChatId    string `json:"chatId"`
}

// ReadNotice tells the sender the other participant read the chat.
type ReadNotice struct {
	ChatId string `json:"chatId"`
}
