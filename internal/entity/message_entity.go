package entity

import "time"

type Attachment struct {
	Type string `bson:"type" json:"type"`
	URL  string `bson:"url" json:"url"`
}

// Message ids are ObjectID hex, so identifier order follows creation
// order within the store. DeliveredAt and ReadAt are set once and never
// cleared or moved backward.
type Message struct {
	Id          string       `bson:"_id" json:"id"`
	ChatId      string       `bson:"chatId" json:"chatId"`
	SenderId    string       `bson:"senderId" json:"senderId"`
	Content     string       `bson:"content" json:"content"`
	Attachments []Attachment `bson:"attachments,omitempty" json:"attachments,omitempty"`
	DeliveredAt *time.Time   `bson:"deliveredAt" json:"deliveredAt"`
	ReadAt      *time.Time   `bson:"readAt" json:"readAt"`
	CreatedAt   time.Time    `bson:"createdAt" json:"createdAt"`
}

type MessagePage struct {
	Messages []Message `json:"messages"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Total    int64     `json:"total"`
	Pages    int64     `json:"pages"`
}
