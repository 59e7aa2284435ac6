package model

import "time"

type Announcement struct {
	ID          string    `bson:"_id" json:"id"`
	ChannelID   string    `bson:"channelId" json:"channelId"`
	Title       string    `bson:"title" json:"title"`
	Body        string    `bson:"body" json:"body"`
	PublishedAt time.Time `bson:"publishedAt" json:"publishedAt"`
}

type Channel struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
}

type ChannelSubscription struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	ChannelID string    `bson:"channelId" json:"channelId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
