package grpc

import (
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/grpc/wire"
	"chat-sync/services"
	"chat-sync/sink"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"google.golang.org/grpc/metadata"
)

type ChatServer struct {
	chatService          services.IChatService
	connectionBufferSize int
	deliveryTimeout      time.Duration
	log                  *slog.Logger
}

func NewChatServer(log *slog.Logger, chatService services.IChatService, connectionBufferSize int, deliveryTimeout time.Duration) *ChatServer {
	return &ChatServer{
		chatService:          chatService,
		connectionBufferSize: connectionBufferSize,
		deliveryTimeout:      deliveryTimeout,
		log:                  log,
	}
}

func (s *ChatServer) ListChannels(ctx context.Context, _ *wire.ListChannelsRequest) (*wire.ListChannelsResponse, error) {
	channels, err := s.chatService.ListChannels(ctx)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &wire.ListChannelsResponse{Channels: lo.Map(channels, func(c domain.Channel, _ int) wire.Channel {
		return wire.FromChannel(c)
	})}, nil
}

func (s *ChatServer) CreateChannel(ctx context.Context, req *wire.CreateChannelRequest) (*wire.ChannelResponse, error) {
	ch, err := s.chatService.CreateChannel(ctx, req.Name)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &wire.ChannelResponse{Channel: wire.FromChannel(ch)}, nil
}

func (s *ChatServer) RenameChannel(ctx context.Context, req *wire.RenameChannelRequest) (*wire.ChannelResponse, error) {
	ch, err := s.chatService.RenameChannel(ctx, domain.ChannelID(req.ID), req.Name)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &wire.ChannelResponse{Channel: wire.FromChannel(ch)}, nil
}

func (s *ChatServer) DeleteChannel(ctx context.Context, req *wire.DeleteChannelRequest) (*wire.DeleteChannelResponse, error) {
	if err := s.chatService.DeleteChannel(ctx, domain.ChannelID(req.ID)); err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &wire.DeleteChannelResponse{}, nil
}

func (s *ChatServer) ListMessages(ctx context.Context, _ *wire.ListMessagesRequest) (*wire.ListMessagesResponse, error) {
	messages, err := s.chatService.ListMessages(ctx)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &wire.ListMessagesResponse{Messages: lo.Map(messages, func(m domain.Message, _ int) wire.Message {
		return wire.FromMessage(m)
	})}, nil
}

func (s *ChatServer) CreateMessage(ctx context.Context, req *wire.CreateMessageRequest) (*wire.MessageResponse, error) {
	m, err := s.chatService.CreateMessage(ctx, domain.NewMessage{
		ChannelID: domain.ChannelID(req.ChannelID),
		Body:      req.Body,
		Author:    req.Author,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &wire.MessageResponse{Message: wire.FromMessage(m)}, nil
}

// Subscribe holds a live stream open and pushes a bare event after every change.
// It registers a dedicated sink in the registry and blocks until the client goes away.
// Headers are sent up front so the client knows the subscription is in place.
func (s *ChatServer) Subscribe(_ *wire.SubscribeRequest, stream wire.SubscribeServer) error {
	subscriberID := uuid.NewString()
	eventSink := sink.NewChannelSink(s.log, s.connectionBufferSize, s.deliveryTimeout)
	s.chatService.Subscribe(subscriberID, eventSink)
	defer s.chatService.Unsubscribe(subscriberID)

	if err := stream.SendHeader(metadata.Pairs(wire.SubscriberHeader, subscriberID)); err != nil {
		return err
	}

	for {
		select {
		case <-stream.Context().Done():
			s.log.Debug("Subscriber disconnected", "subscriber_id", subscriberID)
			return nil
		case evt := <-eventSink.Events:
			if err := stream.Send(&wire.Event{Event: string(evt.Event)}); err != nil {
				s.log.Error("Failed to push event to stream",
					"subscriber_id", subscriberID,
					"error", err)
				return err
			}
		}
	}
}
