package storage

import (
	"chat-sync/domain"
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type localCache struct {
	stor  Storage
	cache *expirable.LRU[domain.ChannelID, domain.Channel]
}

// NewLocalCache keeps recently read channels in memory.
// The chat service looks up the channel of every posted message through GetChannel.
func NewLocalCache(stor Storage, size int, ttl time.Duration) Storage {
	c := expirable.NewLRU[domain.ChannelID, domain.Channel](size, nil, ttl)
	return localCache{
		stor:  stor,
		cache: c,
	}
}

func (lc localCache) Close() error {
	lc.cache.Purge()
	return lc.stor.Close()
}

func (lc localCache) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	return lc.stor.ListChannels(ctx)
}

func (lc localCache) GetChannel(ctx context.Context, id domain.ChannelID) (ch domain.Channel, err error) {
	var found bool
	ch, found = lc.cache.Get(id)
	if !found {
		ch, err = lc.stor.GetChannel(ctx, id)
		if err == nil {
			lc.cache.Add(id, ch)
		}
	}
	return
}

func (lc localCache) CreateChannel(ctx context.Context, name string) (ch domain.Channel, err error) {
	ch, err = lc.stor.CreateChannel(ctx, name)
	if err == nil {
		lc.cache.Add(ch.ID, ch)
	}
	return
}

func (lc localCache) RenameChannel(ctx context.Context, id domain.ChannelID, name string) (ch domain.Channel, err error) {
	ch, err = lc.stor.RenameChannel(ctx, id, name)
	switch err {
	case nil:
		lc.cache.Add(id, ch)
	default:
		lc.cache.Remove(id)
	}
	return
}

func (lc localCache) DeleteChannel(ctx context.Context, id domain.ChannelID) (removed int, err error) {
	removed, err = lc.stor.DeleteChannel(ctx, id)
	lc.cache.Remove(id)
	return
}

func (lc localCache) ListMessages(ctx context.Context) ([]domain.Message, error) {
	return lc.stor.ListMessages(ctx)
}

func (lc localCache) CreateMessage(ctx context.Context, msg domain.NewMessage) (domain.Message, error) {
	return lc.stor.CreateMessage(ctx, msg)
}
