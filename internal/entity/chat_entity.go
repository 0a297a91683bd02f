package entity

import "time"

const ChatTypeDirect = "direct"

// Chat is a direct conversation between exactly two users. The pair is
// unique: creation looks up before insert, and a concurrent duplicate
// insert is resolved by re-lookup.
type Chat struct {
	Id            string    `bson:"_id" json:"id"`
	Type          string    `bson:"type" json:"type"`
	Participants  []string  `bson:"participants" json:"participants"`
	LastMessageId string    `bson:"lastMessageId,omitempty" json:"lastMessageId,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OtherParticipant returns the participant that is not userId.
func (c Chat) OtherParticipant(userId string) string {
	for _, p := range c.Participants {
		if p != userId {
			return p
		}
	}
	return ""
}

// HasParticipant reports whether userId belongs to the conversation.
func (c Chat) HasParticipant(userId string) bool {
	for _, p := range c.Participants {
		if p == userId {
			return true
		}
	}
	return false
}

// ChatSummary is a chat enriched with the per-caller state the chat list
// needs: the unread count and whether the other participant is online.
type ChatSummary struct {
	Chat
	LastMessage *Message `json:"lastMessage,omitempty"`
	UnreadCount int64    `json:"unreadCount"`
	IsOnline    bool     `json:"isOnline"`
}
