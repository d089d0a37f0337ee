package storage

import (
	"bytes"
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/validation"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/segmentio/ksuid"
	"github.com/vmihailenco/msgpack"
)

const (
	channelPrefix      = "ch:"
	channelNamePrefix  = "chname:"
	messagePrefix      = "msg:"
	channelIndexPrefix = "chmsg:"
)

type diskChannel struct {
	ID        string `msgpack:"id"`
	Name      string `msgpack:"name"`
	CreatedAt int64  `msgpack:"created_at"`
}

type diskMessage struct {
	ID        string `msgpack:"id"`
	ChannelID string `msgpack:"channel_id"`
	Author    string `msgpack:"author"`
	Body      string `msgpack:"body"`
	CreatedAt int64  `msgpack:"created_at"`
}

type BadgerStorage struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

func NewBadgerStorage(db *badger.DB, log *slog.Logger) *BadgerStorage {
	return &BadgerStorage{db: db, log: log, now: time.Now}
}

func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

func (s *BadgerStorage) ListChannels(_ context.Context) ([]domain.Channel, error) {
	var channels []domain.Channel
	err := s.db.View(func(txn *badger.Txn) error {
		return scan(txn, channelPrefix, func(value []byte) error {
			var dc diskChannel
			if err := msgpack.Unmarshal(value, &dc); err != nil {
				return err
			}
			channels = append(channels, toChannel(dc))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	// Keys are random ksuid payloads within the same second, creation time gives the stable order.
	slices.SortStableFunc(channels, func(a, b domain.Channel) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return channels, nil
}

func (s *BadgerStorage) GetChannel(_ context.Context, id domain.ChannelID) (domain.Channel, error) {
	var dc diskChannel
	err := s.db.View(func(txn *badger.Txn) (err error) {
		dc, err = getChannel(txn, id)
		return
	})
	if err != nil {
		return domain.Channel{}, err
	}
	return toChannel(dc), nil
}

// CreateChannel reserves the name index and the channel record in the same transaction,
// so two concurrent creations of the same name cannot both succeed.
func (s *BadgerStorage) CreateChannel(_ context.Context, name string) (domain.Channel, error) {
	dc := diskChannel{
		ID:        ksuid.New().String(),
		Name:      name,
		CreatedAt: s.now().UnixNano(),
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := reserveName(txn, name, dc.ID); err != nil {
			return err
		}
		return putChannel(txn, dc)
	})
	if err != nil {
		return domain.Channel{}, err
	}
	return toChannel(dc), nil
}

func (s *BadgerStorage) RenameChannel(_ context.Context, id domain.ChannelID, name string) (domain.Channel, error) {
	var dc diskChannel
	err := s.db.Update(func(txn *badger.Txn) (err error) {
		if dc, err = getChannel(txn, id); err != nil {
			return err
		}
		oldKey := nameKey(dc.Name)
		if err = reserveName(txn, name, dc.ID); err != nil {
			return err
		}
		if !bytes.Equal(oldKey, nameKey(name)) {
			if err = txn.Delete(oldKey); err != nil {
				return err
			}
		}
		dc.Name = name
		return putChannel(txn, dc)
	})
	if err != nil {
		return domain.Channel{}, err
	}
	return toChannel(dc), nil
}

func (s *BadgerStorage) DeleteChannel(_ context.Context, id domain.ChannelID) (int, error) {
	var removed int
	err := s.db.Update(func(txn *badger.Txn) error {
		dc, err := getChannel(txn, id)
		if err != nil {
			return err
		}
		indexPrefix := channelIndexPrefix + dc.ID + ":"
		var messageKeys, indexKeys [][]byte
		err = scanKeys(txn, indexPrefix, func(key, value []byte) {
			indexKeys = append(indexKeys, key)
			messageKeys = append(messageKeys, value)
		})
		if err != nil {
			return err
		}
		for _, key := range slices.Concat(messageKeys, indexKeys) {
			if err = txn.Delete(key); err != nil {
				return err
			}
		}
		if err = txn.Delete(nameKey(dc.Name)); err != nil {
			return err
		}
		removed = len(messageKeys)
		return txn.Delete(channelKey(dc.ID))
	})
	if err != nil {
		return 0, err
	}
	s.log.Debug("Channel deleted", "channel", id, "messages", removed)
	return removed, nil
}

// ListMessages returns every message in creation order.
// The key is "msg:{timestamp_padded}:{ksuid}" so a prefix scan is already sorted.
func (s *BadgerStorage) ListMessages(_ context.Context) ([]domain.Message, error) {
	var messages []domain.Message
	err := s.db.View(func(txn *badger.Txn) error {
		return scan(txn, messagePrefix, func(value []byte) error {
			var dm diskMessage
			if err := msgpack.Unmarshal(value, &dm); err != nil {
				return err
			}
			messages = append(messages, toMessage(dm))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *BadgerStorage) CreateMessage(_ context.Context, msg domain.NewMessage) (domain.Message, error) {
	dm := diskMessage{
		ID:        ksuid.New().String(),
		ChannelID: msg.ChannelID.String(),
		Author:    msg.Author,
		Body:      msg.Body,
		CreatedAt: s.now().UnixNano(),
	}
	value, err := msgpack.Marshal(dm)
	if err != nil {
		return domain.Message{}, err
	}
	key := fmt.Appendf(nil, "%s%019d:%s", messagePrefix, dm.CreatedAt, dm.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := getChannel(txn, msg.ChannelID); err != nil {
			return err
		}
		if err := txn.Set(key, value); err != nil {
			return err
		}
		return txn.Set([]byte(channelIndexPrefix+dm.ChannelID+":"+dm.ID), key)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(dm), nil
}

func reserveName(txn *badger.Txn, name, id string) error {
	key := nameKey(name)
	item, err := txn.Get(key)
	switch {
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return txn.Set(key, []byte(id))
	case err != nil:
		return err
	}
	owner, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	if string(owner) != id {
		return errors.NewValidationError("name", errors.ReasonDuplicateName, name)
	}
	return nil
}

func getChannel(txn *badger.Txn, id domain.ChannelID) (diskChannel, error) {
	var dc diskChannel
	item, err := txn.Get(channelKey(id.String()))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return dc, fmt.Errorf("channel %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return dc, err
	}
	err = item.Value(func(value []byte) error {
		return msgpack.Unmarshal(value, &dc)
	})
	return dc, err
}

func putChannel(txn *badger.Txn, dc diskChannel) error {
	value, err := msgpack.Marshal(dc)
	if err != nil {
		return err
	}
	return txn.Set(channelKey(dc.ID), value)
}

func scan(txn *badger.Txn, prefix string, fn func(value []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func scanKeys(txn *badger.Txn, prefix string, fn func(key, value []byte)) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		item := it.Item()
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		fn(item.KeyCopy(nil), value)
	}
	return nil
}

func channelKey(id string) []byte {
	return []byte(channelPrefix + id)
}

func nameKey(name string) []byte {
	return []byte(channelNamePrefix + validation.NameKey(name))
}

func toChannel(dc diskChannel) domain.Channel {
	return domain.Channel{
		ID:        domain.ChannelID(dc.ID),
		Name:      dc.Name,
		CreatedAt: time.Unix(0, dc.CreatedAt).UTC(),
	}
}

func toMessage(dm diskMessage) domain.Message {
	return domain.Message{
		ID:        domain.MessageID(dm.ID),
		ChannelID: domain.ChannelID(dm.ChannelID),
		Author:    dm.Author,
		Body:      dm.Body,
		CreatedAt: time.Unix(0, dm.CreatedAt).UTC(),
	}
}
