//go:generate go run go.uber.org/mock/mockgen -source=storage.go -destination=../mocks/mock_storage.go -package=mocks
package storage

import (
	"chat-sync/domain"
	"context"
	"io"
)

// Storage is the server side record of channels and messages.
// Channel names are unique case-insensitively and a message always belongs to an existing channel.
type Storage interface {
	io.Closer
	ListChannels(ctx context.Context) ([]domain.Channel, error)
	GetChannel(ctx context.Context, id domain.ChannelID) (domain.Channel, error)
	CreateChannel(ctx context.Context, name string) (domain.Channel, error)
	RenameChannel(ctx context.Context, id domain.ChannelID, name string) (domain.Channel, error)
	// DeleteChannel removes the channel and all of its messages, returning how many messages went with it.
	DeleteChannel(ctx context.Context, id domain.ChannelID) (int, error)
	ListMessages(ctx context.Context) ([]domain.Message, error)
	CreateMessage(ctx context.Context, msg domain.NewMessage) (domain.Message, error)
}
