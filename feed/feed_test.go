package feed

import (
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/mocks"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setup(t *testing.T) (*Feed, *mocks.MockDataService) {
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockDataService(ctrl)
	shout := func(s string) string { return strings.ReplaceAll(s, "darn", "****") }
	return New(remote, shout, logs.GetLoggerFromLevel(slog.LevelDebug)), remote
}

func TestFeed_Post_EmptyNeverCallsRemote(t *testing.T) {
	f, remote := setup(t)
	remote.EXPECT().CreateMessage(gomock.Any(), gomock.Any()).Times(0)

	for _, body := range []string{"", " ", "\n\t  "} {
		req := require.New(t)
		_, err := f.Post(context.Background(), body, "alice", "1")
		req.ErrorIs(err, errors.ErrEmpty)
		req.ErrorIs(err, errors.ErrValidation)
	}
}

func TestFeed_Post_SanitizesAndDoesNotAppend(t *testing.T) {
	req := require.New(t)
	f, remote := setup(t)

	remote.EXPECT().CreateMessage(gomock.Any(), domain.NewMessage{
		ChannelID: "1",
		Body:      "well **** it",
		Author:    "alice",
	}).Return(domain.Message{ID: "m1", ChannelID: "1", Author: "alice", Body: "well **** it"}, nil)

	message, err := f.Post(context.Background(), "  well darn it ", "alice", "1")
	req.NoError(err)
	req.Equal(domain.MessageID("m1"), message.ID)

	// The broadcast echo is the only way into the list
	req.Empty(f.ProjectActive("1"))
}

func TestFeed_Post_RemoteErrorSurfaced(t *testing.T) {
	req := require.New(t)
	f, remote := setup(t)
	remoteErr := errors.NewRemoteError("CreateMessage", errors.KindRejected, errors.ErrNotFound)
	remote.EXPECT().CreateMessage(gomock.Any(), gomock.Any()).Return(domain.Message{}, remoteErr)

	_, err := f.Post(context.Background(), "hello", "alice", "1")
	req.ErrorIs(err, errors.ErrRejected)
	req.Equal(remoteErr, err)
}

func TestFeed_Scenario_PostThenReconcile(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f, remote := setup(t)

	stored := domain.Message{ID: "m1", ChannelID: "1", Author: "alice", Body: "hello"}
	remote.EXPECT().CreateMessage(gomock.Any(), domain.NewMessage{ChannelID: "1", Body: "hello", Author: "alice"}).
		Return(stored, nil)
	remote.EXPECT().ListMessages(gomock.Any()).Return([]domain.Message{stored}, nil)

	_, err := f.Post(ctx, "hello", "alice", "1")
	req.NoError(err)

	// When the newMessage echo arrives
	req.NoError(f.Reconcile(ctx))

	// Then exactly one message is shown
	active := f.ProjectActive("1")
	req.Len(active, 1)
	req.Equal("hello", active[0].Body)
	req.Equal("alice", active[0].Author)
	req.Equal(1, f.Count("1"))
}

func TestFeed_ProjectActive_KeepsOrder(t *testing.T) {
	req := require.New(t)
	f, remote := setup(t)
	remote.EXPECT().ListMessages(gomock.Any()).Return([]domain.Message{
		{ID: "a", ChannelID: "1"},
		{ID: "b", ChannelID: "2"},
		{ID: "c", ChannelID: "1"},
		{ID: "d", ChannelID: "1"},
	}, nil)
	req.NoError(f.Reconcile(context.Background()))

	ids := []domain.MessageID{}
	for _, m := range f.ProjectActive("1") {
		ids = append(ids, m.ID)
	}
	req.Equal([]domain.MessageID{"a", "c", "d"}, ids)
	req.Equal(1, f.Count("2"))
	req.Equal(0, f.Count("3"))
}

func TestFeed_Reconcile_ReplacesWholesale(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f, remote := setup(t)
	gomock.InOrder(
		remote.EXPECT().ListMessages(gomock.Any()).Return([]domain.Message{{ID: "a", ChannelID: "1"}}, nil),
		remote.EXPECT().ListMessages(gomock.Any()).Return([]domain.Message{{ID: "b", ChannelID: "1"}}, nil),
	)
	req.NoError(f.Reconcile(ctx))
	req.NoError(f.Reconcile(ctx))

	messages := f.Messages()
	req.Len(messages, 1)
	req.Equal(domain.MessageID("b"), messages[0].ID)
}

func TestFeed_Reconcile_ErrorKeepsState(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f, remote := setup(t)
	gomock.InOrder(
		remote.EXPECT().ListMessages(gomock.Any()).Return([]domain.Message{{ID: "a", ChannelID: "1"}}, nil),
		remote.EXPECT().ListMessages(gomock.Any()).
			Return(nil, errors.NewRemoteError("ListMessages", errors.KindNetwork, context.Canceled)),
	)
	req.NoError(f.Reconcile(ctx))
	req.ErrorIs(f.Reconcile(ctx), errors.ErrNetwork)
	req.Len(f.Messages(), 1)
}

func TestFeed_Reconcile_AfterCloseNotApplied(t *testing.T) {
	req := require.New(t)
	f, remote := setup(t)
	remote.EXPECT().ListMessages(gomock.Any()).DoAndReturn(func(context.Context) ([]domain.Message, error) {
		f.Close()
		return []domain.Message{{ID: "a", ChannelID: "1"}}, nil
	})

	err := f.Reconcile(context.Background())
	req.ErrorIs(err, errors.ErrClosed)
	req.Empty(f.Messages())
}

func TestFeed_Reconcile_StaleResponseDropped(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f, remote := setup(t)

	// Given a first reconciliation overtaken by a second one
	remote.EXPECT().ListMessages(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]domain.Message, error) {
		remote.EXPECT().ListMessages(gomock.Any()).
			Return([]domain.Message{{ID: "old"}, {ID: "new"}}, nil)
		req.NoError(f.Reconcile(ctx))
		return []domain.Message{{ID: "old"}}, nil
	})

	req.NoError(f.Reconcile(ctx))
	req.Len(f.Messages(), 2)
}

func TestFeed_Evict(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f, remote := setup(t)
	remote.EXPECT().ListMessages(gomock.Any()).Return([]domain.Message{
		{ID: "m1", ChannelID: "id1"},
		{ID: "m2", ChannelID: "id2"},
		{ID: "m3", ChannelID: "id1"},
	}, nil)
	req.NoError(f.Reconcile(ctx))

	req.Equal(2, f.Evict("id1"))
	messages := f.Messages()
	req.Len(messages, 1)
	req.Equal(domain.ChannelID("id2"), messages[0].ChannelID)
	req.Equal(0, f.Evict("id1"))
}

func TestFeed_Evict_DropsReconciliationInFlight(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f, remote := setup(t)

	// Given a reconciliation started before the channel was deleted
	remote.EXPECT().ListMessages(gomock.Any()).DoAndReturn(func(context.Context) ([]domain.Message, error) {
		f.Evict("id1")
		return []domain.Message{{ID: "m1", ChannelID: "id1"}}, nil
	})

	// Then its result does not resurrect the deleted messages
	req.NoError(f.Reconcile(ctx))
	req.Empty(f.Messages())
}
