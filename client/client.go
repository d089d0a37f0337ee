// Package client wires the sync core for one signed-in user.
// A UI holds one Client and renders from its read methods after every onChange.
package client

import (
	"chat-sync/directory"
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/feed"
	"chat-sync/live"
	"chat-sync/remote"
	"chat-sync/session"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
)

type Client struct {
	session   *session.Context
	directory *directory.Directory
	feed      *feed.Feed
	live      *live.Client
	log       *slog.Logger
}

// New builds the directory and the feed on top of data and reconciles both on every live event.
func New(data remote.DataService, transport live.Transport, sess *session.Context, sanitize feed.Sanitizer, log *slog.Logger) *Client {
	f := feed.New(data, sanitize, log)
	d := directory.New(data, sess, f, log)
	return &Client{
		session:   sess,
		directory: d,
		feed:      f,
		live:      live.New(transport, log, d.Refresh, f.Reconcile),
		log:       log,
	}
}

// Open loads the channels and the messages once, without live updates.
func (c *Client) Open(ctx context.Context) error {
	return stderrors.Join(c.directory.Refresh(ctx), c.feed.Reconcile(ctx))
}

// Start keeps the push transport connected until ctx is done.
func (c *Client) Start(ctx context.Context) <-chan error {
	return c.live.Start(ctx)
}

// Watch synchronises now and after every newMessage until the subscription is closed.
// The subscription is returned even when the first synchronisation fails.
func (c *Client) Watch(ctx context.Context, onChange func()) (*live.Subscription, error) {
	return c.live.Register(ctx, onChange)
}

func (c *Client) State() live.State {
	return c.live.State()
}

// PostMessage sends body to the active channel as the session user.
// The message shows up after the next reconciliation, like everybody else's.
func (c *Client) PostMessage(ctx context.Context, body string) (domain.Message, error) {
	active, ok := c.directory.Active()
	if !ok {
		return domain.Message{}, fmt.Errorf("no active channel: %w", errors.ErrNotFound)
	}
	return c.feed.Post(ctx, body, c.session.Username(), active.ID)
}

func (c *Client) CreateChannel(ctx context.Context, name string) (domain.Channel, error) {
	return c.directory.Create(ctx, name)
}

func (c *Client) RenameChannel(ctx context.Context, id domain.ChannelID, name string) (domain.Channel, error) {
	return c.directory.Rename(ctx, id, name)
}

func (c *Client) DeleteChannel(ctx context.Context, id domain.ChannelID) error {
	return c.directory.Delete(ctx, id)
}

// SelectChannel makes id the active channel. Unknown ids are ignored.
func (c *Client) SelectChannel(id domain.ChannelID) {
	c.directory.SetActive(id)
}

// Lookup finds a channel by name, ignoring case.
func (c *Client) Lookup(name string) (domain.Channel, bool) {
	return c.directory.Lookup(name)
}

func (c *Client) Channels() []domain.Channel {
	return c.directory.Channels()
}

func (c *Client) ActiveChannel() (domain.Channel, bool) {
	return c.directory.Active()
}

// ActiveMessages returns the messages of the active channel, in order.
func (c *Client) ActiveMessages() []domain.Message {
	active, ok := c.directory.Active()
	if !ok {
		return nil
	}
	return c.feed.ProjectActive(active.ID)
}

// ActiveCount is the number of messages in the active channel.
func (c *Client) ActiveCount() int {
	active, ok := c.directory.Active()
	if !ok {
		return 0
	}
	return c.feed.Count(active.ID)
}

// MessageCount is the number of messages held for channel id.
func (c *Client) MessageCount(id domain.ChannelID) int {
	return c.feed.Count(id)
}

// Close discards local state. Responses still in flight are dropped.
func (c *Client) Close() {
	c.directory.Close()
	c.feed.Close()
}
