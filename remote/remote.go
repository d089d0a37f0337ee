//go:generate go run go.uber.org/mock/mockgen -source=remote.go -destination=../mocks/mock_remote.go -package=mocks
// Package remote declares the data service the sync core persists through.
package remote

import (
	"chat-sync/domain"
	"context"
)

// DataService stores channels and messages. Implementations own their timeout policy.
// Errors are either a validation error (duplicate name), errors.ErrNotFound, or an errors.RemoteError.
type DataService interface {
	ListChannels(ctx context.Context) ([]domain.Channel, error)
	CreateChannel(ctx context.Context, name string) (domain.Channel, error)
	RenameChannel(ctx context.Context, id domain.ChannelID, name string) (domain.Channel, error)
	DeleteChannel(ctx context.Context, id domain.ChannelID) error
	ListMessages(ctx context.Context) ([]domain.Message, error)
	CreateMessage(ctx context.Context, message domain.NewMessage) (domain.Message, error)
}
