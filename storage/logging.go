package storage

import (
	"chat-sync/domain"
	"context"
	"fmt"
	"log/slog"
)

type storageLogging struct {
	stor Storage
	log  *slog.Logger
}

func NewStorageLogging(stor Storage, log *slog.Logger) Storage {
	return storageLogging{
		stor: stor,
		log:  log,
	}
}

func (sl storageLogging) Close() (err error) {
	err = sl.stor.Close()
	sl.log.Log(context.TODO(), sl.logLevel(err), fmt.Sprintf("storage.Close(): %v", err))
	return
}

func (sl storageLogging) ListChannels(ctx context.Context) (channels []domain.Channel, err error) {
	channels, err = sl.stor.ListChannels(ctx)
	sl.log.Log(ctx, sl.logLevel(err), fmt.Sprintf("storage.ListChannels(): %d, %v", len(channels), err))
	return
}

func (sl storageLogging) GetChannel(ctx context.Context, id domain.ChannelID) (ch domain.Channel, err error) {
	ch, err = sl.stor.GetChannel(ctx, id)
	sl.log.Log(ctx, sl.logLevel(err), fmt.Sprintf("storage.GetChannel(%s): %+v, %v", id, ch, err))
	return
}

func (sl storageLogging) CreateChannel(ctx context.Context, name string) (ch domain.Channel, err error) {
	ch, err = sl.stor.CreateChannel(ctx, name)
	sl.log.Log(ctx, sl.logLevel(err), fmt.Sprintf("storage.CreateChannel(%s): %+v, %v", name, ch, err))
	return
}

func (sl storageLogging) RenameChannel(ctx context.Context, id domain.ChannelID, name string) (ch domain.Channel, err error) {
	ch, err = sl.stor.RenameChannel(ctx, id, name)
	sl.log.Log(ctx, sl.logLevel(err), fmt.Sprintf("storage.RenameChannel(%s, %s): %+v, %v", id, name, ch, err))
	return
}

func (sl storageLogging) DeleteChannel(ctx context.Context, id domain.ChannelID) (removed int, err error) {
	removed, err = sl.stor.DeleteChannel(ctx, id)
	sl.log.Log(ctx, sl.logLevel(err), fmt.Sprintf("storage.DeleteChannel(%s): %d, %v", id, removed, err))
	return
}

func (sl storageLogging) ListMessages(ctx context.Context) (messages []domain.Message, err error) {
	messages, err = sl.stor.ListMessages(ctx)
	sl.log.Log(ctx, sl.logLevel(err), fmt.Sprintf("storage.ListMessages(): %d, %v", len(messages), err))
	return
}

func (sl storageLogging) CreateMessage(ctx context.Context, msg domain.NewMessage) (m domain.Message, err error) {
	m, err = sl.stor.CreateMessage(ctx, msg)
	sl.log.Log(ctx, sl.logLevel(err), fmt.Sprintf("storage.CreateMessage(channel=%s, author=%s): %s, %v", msg.ChannelID, msg.Author, m.ID, err))
	return
}

func (sl storageLogging) logLevel(err error) (lvl slog.Level) {
	switch err {
	case nil:
		lvl = slog.LevelDebug
	default:
		lvl = slog.LevelError
	}
	return
}
