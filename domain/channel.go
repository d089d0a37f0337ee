// Package domain contains core concepts of the chat system.
// Channels partition the conversation; messages belong to exactly one channel.
package domain

import "time"

// ChannelID is assigned by the data service on creation and never changes.
type ChannelID string

// Channel is a named conversation partition. Names are unique case-insensitively.
type Channel struct {
	ID        ChannelID
	Name      string
	CreatedAt time.Time
}

func (id ChannelID) String() string {
	return string(id)
}
