package storage

import (
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_Local_Cache_Serves_Reads_And_Forgets_Deleted_Channels(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	stor := NewStorageLogging(NewLocalCache(newTestStorage(t), 16, time.Minute), slog.New(slog.DiscardHandler))

	ch, err := stor.CreateChannel(ctx, "general")
	req.NoError(err)

	got, err := stor.GetChannel(ctx, ch.ID)
	req.NoError(err)
	req.Equal(ch, got)

	renamed, err := stor.RenameChannel(ctx, ch.ID, "lobby")
	req.NoError(err)
	got, err = stor.GetChannel(ctx, ch.ID)
	req.NoError(err)
	req.Equal(renamed, got)

	_, err = stor.DeleteChannel(ctx, ch.ID)
	req.NoError(err)
	_, err = stor.GetChannel(ctx, ch.ID)
	req.ErrorIs(err, errors.ErrNotFound)

	_, err = stor.CreateMessage(ctx, domain.NewMessage{ChannelID: ch.ID, Body: "late", Author: "alice"})
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_Local_Cache_Hit_Skips_Storage(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockStorage(ctrl)
	stor := NewLocalCache(inner, 16, time.Minute)
	general := domain.Channel{ID: "c1", Name: "general"}

	// Given a single read from the underlying storage
	inner.EXPECT().GetChannel(gomock.Any(), domain.ChannelID("c1")).Return(general, nil).Times(1)

	// When the same channel is looked up for every posted message
	for i := 0; i < 3; i++ {
		got, err := stor.GetChannel(ctx, "c1")
		req.NoError(err)
		req.Equal(general, got)
	}
}
