package directory

import (
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/feed"
	"chat-sync/mocks"
	"chat-sync/session"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func identity(s string) string { return s }

func setup(t *testing.T) (*Directory, *feed.Feed, *mocks.MockDataService, *session.Context) {
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockDataService(ctrl)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	s := session.New("alice", "token")
	f := feed.New(remote, identity, log)
	return New(remote, s, f, log), f, remote, s
}

func TestDirectory_Scenario_CreateRenameDuplicates(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir, _, remote, _ := setup(t)

	// Given "random" already exists
	remote.EXPECT().ListChannels(gomock.Any()).
		Return([]domain.Channel{{ID: "2", Name: "random"}}, nil)
	req.NoError(dir.Refresh(ctx))

	// When creating "general", it gets id 1
	remote.EXPECT().CreateChannel(gomock.Any(), "general").
		Return(domain.Channel{ID: "1", Name: "general"}, nil).Times(1)
	general, err := dir.Create(ctx, "general")
	req.NoError(err)
	req.Equal(domain.ChannelID("1"), general.ID)

	// Then "General" is refused without any remote call
	_, err = dir.Create(ctx, "General")
	req.ErrorIs(err, errors.ErrDuplicateName)

	// And renaming "general" to "general" succeeds as a no-op
	renamed, err := dir.Rename(ctx, "1", "general")
	req.NoError(err)
	req.Equal(general, renamed)

	// And renaming "general" to "random" is refused
	_, err = dir.Rename(ctx, "1", "random")
	req.ErrorIs(err, errors.ErrDuplicateName)

	req.Equal([]string{"random", "general"}, dir.Names())
}

func TestDirectory_Rename_OwnNameOtherCase(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir, _, remote, _ := setup(t)
	remote.EXPECT().ListChannels(gomock.Any()).
		Return([]domain.Channel{{ID: "1", Name: "general"}, {ID: "2", Name: "random"}}, nil)
	req.NoError(dir.Refresh(ctx))

	remote.EXPECT().RenameChannel(gomock.Any(), domain.ChannelID("1"), "General").
		Return(domain.Channel{ID: "1", Name: "General"}, nil)

	renamed, err := dir.Rename(ctx, "1", "General")
	req.NoError(err)
	req.Equal("General", renamed.Name)

	// The id is stable and the position kept
	req.Equal([]string{"General", "random"}, dir.Names())
	found, ok := dir.Lookup("GENERAL")
	req.True(ok)
	req.Equal(domain.ChannelID("1"), found.ID)
}

func TestDirectory_Create_ValidationBeforeRemote(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir, _, remote, _ := setup(t)
	remote.EXPECT().CreateChannel(gomock.Any(), gomock.Any()).Times(0)

	_, err := dir.Create(ctx, "  ")
	req.ErrorIs(err, errors.ErrEmpty)
	_, err = dir.Create(ctx, "ab")
	req.ErrorIs(err, errors.ErrTooShort)
	_, err = dir.Create(ctx, strings.Repeat("n", 21))
	req.ErrorIs(err, errors.ErrTooLong)
	req.Empty(dir.Channels())
}

func TestDirectory_Create_RemoteFailureLeavesDirectoryUnchanged(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir, _, remote, _ := setup(t)
	remoteErr := errors.NewRemoteError("CreateChannel", errors.KindNetwork, context.DeadlineExceeded)
	remote.EXPECT().CreateChannel(gomock.Any(), "general").Return(domain.Channel{}, remoteErr)

	_, err := dir.Create(ctx, "general")
	req.ErrorIs(err, errors.ErrRemote)
	req.ErrorIs(err, errors.ErrNetwork)
	req.Empty(dir.Channels())
}

func TestDirectory_Rename_NotFoundLocally(t *testing.T) {
	req := require.New(t)
	dir, _, remote, _ := setup(t)
	remote.EXPECT().RenameChannel(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := dir.Rename(context.Background(), "missing", "general")
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestDirectory_Delete_NotFoundRemotelyRefreshes(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir, _, remote, _ := setup(t)

	// Given a channel deleted meanwhile by another client
	gomock.InOrder(
		remote.EXPECT().ListChannels(gomock.Any()).
			Return([]domain.Channel{{ID: "1", Name: "general"}, {ID: "2", Name: "random"}}, nil),
		remote.EXPECT().DeleteChannel(gomock.Any(), domain.ChannelID("2")).
			Return(errors.ErrNotFound),
		remote.EXPECT().ListChannels(gomock.Any()).
			Return([]domain.Channel{{ID: "1", Name: "general"}}, nil),
	)
	req.NoError(dir.Refresh(ctx))

	// When deleting it
	err := dir.Delete(ctx, "2")

	// Then NotFound is returned and the directory was refreshed
	req.ErrorIs(err, errors.ErrNotFound)
	req.Equal([]string{"general"}, dir.Names())
}

func TestDirectory_Delete_CascadesToMessages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir, f, remote, s := setup(t)

	remote.EXPECT().ListChannels(gomock.Any()).
		Return([]domain.Channel{{ID: "id1", Name: "A-channel"}, {ID: "id2", Name: "B-channel"}}, nil)
	remote.EXPECT().ListMessages(gomock.Any()).Return([]domain.Message{
		{ID: "m1", ChannelID: "id1"},
		{ID: "m2", ChannelID: "id2"},
		{ID: "m3", ChannelID: "id1"},
	}, nil)
	req.NoError(dir.Refresh(ctx))
	req.NoError(f.Reconcile(ctx))
	dir.SetActive("id1")

	remote.EXPECT().DeleteChannel(gomock.Any(), domain.ChannelID("id1")).Return(nil)
	req.NoError(dir.Delete(ctx, "id1"))

	// Exactly the message of id2 is left
	messages := f.Messages()
	req.Len(messages, 1)
	req.Equal(domain.MessageID("m2"), messages[0].ID)

	// And the active channel fell back to the remaining one
	req.Equal(domain.ChannelID("id2"), s.ActiveChannel())
	_, ok := dir.Get("id1")
	req.False(ok)
}

func TestDirectory_Delete_UnknownID(t *testing.T) {
	req := require.New(t)
	dir, _, remote, _ := setup(t)
	remote.EXPECT().DeleteChannel(gomock.Any(), gomock.Any()).Times(0)

	req.ErrorIs(dir.Delete(context.Background(), "nope"), errors.ErrNotFound)
}

func TestDirectory_SetActive(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir, _, remote, s := setup(t)
	remote.EXPECT().ListChannels(gomock.Any()).
		Return([]domain.Channel{{ID: "1", Name: "general"}, {ID: "2", Name: "random"}}, nil)
	req.NoError(dir.Refresh(ctx))

	// The first channel is selected by default
	active, ok := dir.Active()
	req.True(ok)
	req.Equal("general", active.Name)

	dir.SetActive("2")
	req.Equal(domain.ChannelID("2"), s.ActiveChannel())

	// An unknown id is a silent no-op
	dir.SetActive("404")
	req.Equal(domain.ChannelID("2"), s.ActiveChannel())
}

func TestDirectory_ResponseAfterCloseIsNotApplied(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir, _, remote, _ := setup(t)

	remote.EXPECT().ListChannels(gomock.Any()).DoAndReturn(func(context.Context) ([]domain.Channel, error) {
		// The UI scope goes away while the call is in flight
		dir.Close()
		return []domain.Channel{{ID: "1", Name: "general"}}, nil
	})
	err := dir.Refresh(ctx)
	req.ErrorIs(err, errors.ErrClosed)
	req.Empty(dir.Channels())

	remote.EXPECT().CreateChannel(gomock.Any(), "random").Return(domain.Channel{ID: "2", Name: "random"}, nil)
	_, err = dir.Create(ctx, "random")
	req.NoError(err)
	req.Empty(dir.Channels())
}

func TestDirectory_StaleRefreshDropped(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir, _, remote, _ := setup(t)

	// Given a slow first refresh overtaken by a second one
	remote.EXPECT().ListChannels(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]domain.Channel, error) {
		remote.EXPECT().ListChannels(gomock.Any()).
			Return([]domain.Channel{{ID: "1", Name: "general"}, {ID: "2", Name: "fresh"}}, nil)
		req.NoError(dir.Refresh(ctx))
		return []domain.Channel{{ID: "1", Name: "general"}}, nil
	})

	// When the slow one returns last
	req.NoError(dir.Refresh(ctx))

	// Then the newer list stays
	req.Equal([]string{"general", "fresh"}, dir.Names())
}
