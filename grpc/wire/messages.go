package wire

import (
	"chat-sync/domain"
	"time"
)

type Channel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Message struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type ListChannelsRequest struct{}

type ListChannelsResponse struct {
	Channels []Channel `json:"channels"`
}

type CreateChannelRequest struct {
	Name string `json:"name"`
}

type RenameChannelRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ChannelResponse struct {
	Channel Channel `json:"channel"`
}

type DeleteChannelRequest struct {
	ID string `json:"id"`
}

type DeleteChannelResponse struct{}

type ListMessagesRequest struct{}

type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
}

type CreateMessageRequest struct {
	ChannelID string `json:"channel_id"`
	Body      string `json:"body"`
	Author    string `json:"author"`
}

type MessageResponse struct {
	Message Message `json:"message"`
}

type SubscribeRequest struct{}

// Event is one frame of the live stream. It carries no payload.
type Event struct {
	Event string `json:"event"`
}

func FromChannel(c domain.Channel) Channel {
	return Channel{ID: c.ID.String(), Name: c.Name, CreatedAt: c.CreatedAt}
}

func (c Channel) ToDomain() domain.Channel {
	return domain.Channel{ID: domain.ChannelID(c.ID), Name: c.Name, CreatedAt: c.CreatedAt}
}

func FromMessage(m domain.Message) Message {
	return Message{
		ID:        string(m.ID),
		ChannelID: m.ChannelID.String(),
		Author:    m.Author,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

func (m Message) ToDomain() domain.Message {
	return domain.Message{
		ID:        domain.MessageID(m.ID),
		ChannelID: domain.ChannelID(m.ChannelID),
		Author:    m.Author,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}
