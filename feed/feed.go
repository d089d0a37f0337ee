// Package feed keeps the client's ordered view of messages for every channel.
//
// Post never appends locally. The data service broadcasts newMessage for every accepted
// message, the sender included, and Reconcile replaces the list with the authoritative one.
// Reconcile is therefore the only writer of the order, and the sender's own message is never
// shown twice.
//
// Ordering is whatever the data service returns on the latest refresh. There is no sequence
// number or timestamp tie-breaking across clients.
package feed

import (
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/remote"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

// Sanitizer cleans a message body before it is persisted.
type Sanitizer func(string) string

type Feed struct {
	remote   remote.DataService
	sanitize Sanitizer
	log      *slog.Logger

	seq atomic.Uint64

	mu       sync.RWMutex
	messages []domain.Message
	applied  uint64
	closed   bool
}

func New(remote remote.DataService, sanitize Sanitizer, log *slog.Logger) *Feed {
	return &Feed{remote: remote, sanitize: sanitize, log: log}
}

// Post sanitizes body and submits it to channelID on behalf of author.
// A body that is empty after trimming is refused without any network call.
func (f *Feed) Post(ctx context.Context, body, author string, channelID domain.ChannelID) (domain.Message, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return domain.Message{}, errors.NewValidationError("body", errors.ReasonEmpty, body)
	}
	message, err := f.remote.CreateMessage(ctx, domain.NewMessage{
		ChannelID: channelID,
		Body:      f.sanitize(trimmed),
		Author:    author,
	})
	if err != nil {
		f.log.Warn("Message not posted", "channel_id", channelID, "error", err)
		return domain.Message{}, err
	}
	return message, nil
}

// Reconcile replaces the local list with the data service's list.
// A response older than one already applied, or arriving after Close, is discarded.
func (f *Feed) Reconcile(ctx context.Context) error {
	seq := f.seq.Add(1)
	messages, err := f.remote.ListMessages(ctx)
	if err != nil {
		f.log.Warn("Reconciliation failed", "error", err)
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return fmt.Errorf("feed: %w", errors.ErrClosed)
	}
	if seq < f.applied {
		f.log.Debug("Stale reconciliation dropped", "seq", seq, "applied", f.applied)
		return nil
	}
	f.messages = append([]domain.Message(nil), messages...)
	f.applied = seq
	return nil
}

// ProjectActive returns, in stored order, the messages of channelID.
func (f *Feed) ProjectActive(channelID domain.ChannelID) []domain.Message {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return lo.Filter(f.messages, func(m domain.Message, _ int) bool {
		return m.ChannelID == channelID
	})
}

// Count is the number of messages of channelID.
func (f *Feed) Count(channelID domain.ChannelID) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return lo.CountBy(f.messages, func(m domain.Message) bool {
		return m.ChannelID == channelID
	})
}

// Messages returns a copy of the whole list.
func (f *Feed) Messages() []domain.Message {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]domain.Message(nil), f.messages...)
}

// Evict removes the messages of a deleted channel and returns how many were removed.
// Reconciliations already in flight predate the deletion and are dropped.
func (f *Feed) Evict(channelID domain.ChannelID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := lo.Reject(f.messages, func(m domain.Message, _ int) bool {
		return m.ChannelID == channelID
	})
	removed := len(f.messages) - len(kept)
	f.messages = kept
	f.applied = f.seq.Load() + 1
	return removed
}

// Close discards the state. Responses arriving later are not applied.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.messages = nil
}
