package client

import (
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/live"
	"chat-sync/mocks"
	"chat-sync/session"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	general = domain.Channel{ID: "c1", Name: "general"}
	random  = domain.Channel{ID: "c2", Name: "random"}
)

func setup(t *testing.T) (*Client, *mocks.MockDataService, *mocks.MockTransport) {
	ctrl := gomock.NewController(t)
	data := mocks.NewMockDataService(ctrl)
	transport := mocks.NewMockTransport(ctrl)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return New(data, transport, session.New("alice", "token"), strings.ToUpper, log), data, transport
}

func Test_Open_Then_Post_To_Active_Channel(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c, data, _ := setup(t)
	defer c.Close()

	// Given two channels and messages in both
	data.EXPECT().ListChannels(gomock.Any()).Return([]domain.Channel{general, random}, nil)
	data.EXPECT().ListMessages(gomock.Any()).Return([]domain.Message{
		{ID: "m1", ChannelID: "c1", Author: "bob", Body: "hi"},
		{ID: "m2", ChannelID: "c2", Author: "bob", Body: "elsewhere"},
	}, nil)
	req.NoError(c.Open(ctx))

	// Then the first channel is active and only its messages are projected
	active, ok := c.ActiveChannel()
	req.True(ok)
	req.Equal(general, active)
	req.Len(c.ActiveMessages(), 1)
	req.Equal(1, c.ActiveCount())

	// When posting, the session user is the author and the body is sanitized
	data.EXPECT().CreateMessage(gomock.Any(), domain.NewMessage{ChannelID: "c1", Body: "HELLO", Author: "alice"}).
		Return(domain.Message{ID: "m3", ChannelID: "c1", Author: "alice", Body: "HELLO"}, nil)
	_, err := c.PostMessage(ctx, "  hello ")
	req.NoError(err)

	// And switching channel changes the projection
	c.SelectChannel("c2")
	req.Equal("elsewhere", c.ActiveMessages()[0].Body)
	found, ok := c.Lookup("RANDOM")
	req.True(ok)
	req.Equal(random, found)
}

func Test_Post_Without_Channel_Is_Not_Found(t *testing.T) {
	req := require.New(t)
	c, _, _ := setup(t)

	_, err := c.PostMessage(context.Background(), "hello")

	req.ErrorIs(err, errors.ErrNotFound)
	req.Empty(c.ActiveMessages())
	req.Zero(c.ActiveCount())
}

func Test_Watch_Reconciles_Directory_And_Feed_On_Each_Event(t *testing.T) {
	req := require.New(t)
	c, data, transport := setup(t)
	defer c.Close()

	var handler live.Handler
	released := make(chan struct{})
	transport.EXPECT().On(domain.EventNewMessage, gomock.Any()).
		DoAndReturn(func(_ domain.EventName, h live.Handler) func() {
			handler = h
			return func() { close(released) }
		})

	// The initial synchronisation sees one channel and no message
	data.EXPECT().ListChannels(gomock.Any()).Return([]domain.Channel{general}, nil)
	data.EXPECT().ListMessages(gomock.Any()).Return(nil, nil)
	changes := make(chan struct{}, 4)
	sub, err := c.Watch(context.Background(), func() { changes <- struct{}{} })
	req.NoError(err)
	<-changes
	req.Empty(c.ActiveMessages())

	// A newMessage event brings in another client's message
	data.EXPECT().ListChannels(gomock.Any()).Return([]domain.Channel{general}, nil)
	data.EXPECT().ListMessages(gomock.Any()).Return([]domain.Message{{ID: "m1", ChannelID: "c1", Author: "bob", Body: "hi"}}, nil)
	handler()
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("event did not reconcile")
	}
	req.Len(c.ActiveMessages(), 1)

	sub.Close()
	<-released
}
