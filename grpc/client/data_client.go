package client

import (
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/grpc/wire"
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"google.golang.org/grpc"
)

// DataClient is the data service as seen through a gRPC connection.
// Every call is bounded by timeout and its failure decoded into the error kinds of the errors package.
type DataClient struct {
	conn    grpc.ClientConnInterface
	timeout time.Duration
	log     *slog.Logger
}

func NewDataClient(conn grpc.ClientConnInterface, timeout time.Duration, log *slog.Logger) *DataClient {
	return &DataClient{conn: conn, timeout: timeout, log: log}
}

func (c *DataClient) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	out := new(wire.ListChannelsResponse)
	if err := c.invoke(ctx, wire.ListChannelsMethod, &wire.ListChannelsRequest{}, out); err != nil {
		return nil, err
	}
	return lo.Map(out.Channels, func(c wire.Channel, _ int) domain.Channel {
		return c.ToDomain()
	}), nil
}

func (c *DataClient) CreateChannel(ctx context.Context, name string) (domain.Channel, error) {
	out := new(wire.ChannelResponse)
	if err := c.invoke(ctx, wire.CreateChannelMethod, &wire.CreateChannelRequest{Name: name}, out); err != nil {
		return domain.Channel{}, withName(err, name)
	}
	return out.Channel.ToDomain(), nil
}

func (c *DataClient) RenameChannel(ctx context.Context, id domain.ChannelID, name string) (domain.Channel, error) {
	out := new(wire.ChannelResponse)
	if err := c.invoke(ctx, wire.RenameChannelMethod, &wire.RenameChannelRequest{ID: id.String(), Name: name}, out); err != nil {
		return domain.Channel{}, withName(err, name)
	}
	return out.Channel.ToDomain(), nil
}

func (c *DataClient) DeleteChannel(ctx context.Context, id domain.ChannelID) error {
	return c.invoke(ctx, wire.DeleteChannelMethod, &wire.DeleteChannelRequest{ID: id.String()}, new(wire.DeleteChannelResponse))
}

func (c *DataClient) ListMessages(ctx context.Context) ([]domain.Message, error) {
	out := new(wire.ListMessagesResponse)
	if err := c.invoke(ctx, wire.ListMessagesMethod, &wire.ListMessagesRequest{}, out); err != nil {
		return nil, err
	}
	return lo.Map(out.Messages, func(m wire.Message, _ int) domain.Message {
		return m.ToDomain()
	}), nil
}

func (c *DataClient) CreateMessage(ctx context.Context, message domain.NewMessage) (domain.Message, error) {
	out := new(wire.MessageResponse)
	in := &wire.CreateMessageRequest{
		ChannelID: message.ChannelID.String(),
		Body:      message.Body,
		Author:    message.Author,
	}
	if err := c.invoke(ctx, wire.CreateMessageMethod, in, out); err != nil {
		return domain.Message{}, err
	}
	return out.Message.ToDomain(), nil
}

func (c *DataClient) invoke(ctx context.Context, method string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()
	err := c.conn.Invoke(ctx, method, in, out, wire.CallOption())
	c.log.Debug("Data service call", "method", method, "duration", time.Since(start), "error", err)
	return errors.FromGRPCError(method, err)
}

// withName restores the rejected name on a duplicate verdict, the status only carries the code.
func withName(err error, name string) error {
	if reason, ok := errors.ReasonOf(err); ok && reason == errors.ReasonDuplicateName {
		return errors.NewValidationError("name", errors.ReasonDuplicateName, name)
	}
	return err
}
