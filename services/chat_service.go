//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"chat-sync/auth"
	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/storage"
	"chat-sync/validation"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
)

// IChatService is the authoritative data service every client reconciles against.
type IChatService interface {
	ListChannels(ctx context.Context) ([]domain.Channel, error)
	CreateChannel(ctx context.Context, name string) (domain.Channel, error)
	RenameChannel(ctx context.Context, id domain.ChannelID, name string) (domain.Channel, error)
	DeleteChannel(ctx context.Context, id domain.ChannelID) error
	ListMessages(ctx context.Context) ([]domain.Message, error)
	CreateMessage(ctx context.Context, msg domain.NewMessage) (domain.Message, error)
	Subscribe(subscriberID string, sink contract.EventSink)
	Unsubscribe(subscriberID string)
}

type ChatService struct {
	storage  storage.Storage
	registry contract.IRegistry
	log      *slog.Logger
}

func NewChatService(storage storage.Storage, registry contract.IRegistry, log *slog.Logger) *ChatService {
	return &ChatService{storage: storage, registry: registry, log: log}
}

func (s *ChatService) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	return s.storage.ListChannels(ctx)
}

// CreateChannel checks the name rules here and leaves uniqueness to the storage transaction.
// Names are stored trimmed.
func (s *ChatService) CreateChannel(ctx context.Context, name string) (domain.Channel, error) {
	valid, err := validation.ValidateChannelName(name, nil)
	if err != nil {
		return domain.Channel{}, err
	}
	ch, err := s.storage.CreateChannel(ctx, strings.TrimSpace(valid))
	if err != nil {
		return domain.Channel{}, err
	}
	s.notify(ctx)
	return ch, nil
}

func (s *ChatService) RenameChannel(ctx context.Context, id domain.ChannelID, name string) (domain.Channel, error) {
	valid, err := validation.ValidateChannelName(name, nil)
	if err != nil {
		return domain.Channel{}, err
	}
	ch, err := s.storage.RenameChannel(ctx, id, strings.TrimSpace(valid))
	if err != nil {
		return domain.Channel{}, err
	}
	s.notify(ctx)
	return ch, nil
}

func (s *ChatService) DeleteChannel(ctx context.Context, id domain.ChannelID) error {
	removed, err := s.storage.DeleteChannel(ctx, id)
	if err != nil {
		return err
	}
	s.log.Info("Channel deleted", "channel", id, "messages", removed)
	s.notify(ctx)
	return nil
}

func (s *ChatService) ListMessages(ctx context.Context) ([]domain.Message, error) {
	return s.storage.ListMessages(ctx)
}

// CreateMessage stores a message in an existing channel.
// When the caller is authenticated, the author must be the caller.
// The channel is looked up first so unknown ids are refused before the write transaction.
func (s *ChatService) CreateMessage(ctx context.Context, msg domain.NewMessage) (domain.Message, error) {
	msg.Body = strings.TrimSpace(msg.Body)
	if msg.Body == "" {
		return domain.Message{}, errors.NewValidationError("body", errors.ReasonEmpty, msg.Body)
	}
	if username, ok := auth.UsernameFrom(ctx); ok {
		if msg.Author == "" {
			msg.Author = username
		}
		if msg.Author != username {
			return domain.Message{}, fmt.Errorf("author %q is not %q: %w", msg.Author, username, errors.ErrRejected)
		}
	}
	if msg.Author == "" {
		return domain.Message{}, errors.NewValidationError("author", errors.ReasonEmpty, msg.Author)
	}
	if _, err := s.storage.GetChannel(ctx, msg.ChannelID); err != nil {
		return domain.Message{}, err
	}
	m, err := s.storage.CreateMessage(ctx, msg)
	if err != nil {
		return domain.Message{}, err
	}
	s.notify(ctx)
	return m, nil
}

func (s *ChatService) Subscribe(subscriberID string, sink contract.EventSink) {
	s.registry.Subscribe(subscriberID, sink)
}

func (s *ChatService) Unsubscribe(subscriberID string) {
	s.registry.Unsubscribe(subscriberID)
}

// Seed creates the given channels when they do not exist yet.
func (s *ChatService) Seed(ctx context.Context, names []string) error {
	for _, name := range names {
		_, err := s.CreateChannel(ctx, name)
		switch {
		case err == nil:
			s.log.Info("Channel seeded", "name", name)
		case stderrors.Is(err, errors.ErrDuplicateName):
		default:
			return fmt.Errorf("seed channel %q: %w", name, err)
		}
	}
	return nil
}

// notify broadcasts the single live event of the protocol.
// Delivery outlives the request that caused it.
func (s *ChatService) notify(ctx context.Context) {
	s.registry.Broadcast(context.WithoutCancel(ctx), domain.LiveEvent{Event: domain.EventNewMessage})
}
