package domain

import (
	"time"
)

type MessageID string

// Message represents an immutable chat event.
// Body holds the sanitized text and is never re-sanitized after storage.
type Message struct {
	ID        MessageID
	ChannelID ChannelID
	Author    string
	Body      string
	CreatedAt time.Time
}

// NewMessage is the payload of a createMessage call.
// Author is captured from the session at submission time.
type NewMessage struct {
	ChannelID ChannelID
	Body      string
	Author    string
}
