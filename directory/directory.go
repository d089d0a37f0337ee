// Package directory owns the client's authoritative view of the channel set.
package directory

import (
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/remote"
	"chat-sync/session"
	"chat-sync/validation"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

// Evictor drops the messages of a deleted channel.
type Evictor interface {
	Evict(channelID domain.ChannelID) int
}

type Directory struct {
	remote  remote.DataService
	session *session.Context
	evictor Evictor
	log     *slog.Logger

	seq atomic.Uint64

	mu       sync.RWMutex
	order    []domain.ChannelID
	channels map[domain.ChannelID]domain.Channel
	names    map[string]domain.ChannelID // validation.NameKey -> id
	applied  uint64
	closed   bool
}

func New(remote remote.DataService, session *session.Context, evictor Evictor, log *slog.Logger) *Directory {
	return &Directory{
		remote:   remote,
		session:  session,
		evictor:  evictor,
		log:      log,
		channels: make(map[domain.ChannelID]domain.Channel),
		names:    make(map[string]domain.ChannelID),
	}
}

// Create validates name against every known channel, then persists it.
// On remote failure the directory is left unchanged.
func (d *Directory) Create(ctx context.Context, name string) (domain.Channel, error) {
	d.mu.RLock()
	_, err := validation.ValidateChannelName(name, d.takenExcept(""))
	d.mu.RUnlock()
	if err != nil {
		return domain.Channel{}, err
	}

	channel, err := d.remote.CreateChannel(ctx, name)
	if err != nil {
		d.log.Warn("Channel not created", "name", name, "error", err)
		return domain.Channel{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return channel, nil
	}
	d.put(channel)
	d.fixActive()
	return channel, nil
}

// Rename validates newName against every channel but id itself, then persists it.
// The id is stable, only the name is replaced.
func (d *Directory) Rename(ctx context.Context, id domain.ChannelID, newName string) (domain.Channel, error) {
	d.mu.RLock()
	current, ok := d.channels[id]
	if !ok {
		d.mu.RUnlock()
		return domain.Channel{}, fmt.Errorf("channel %s: %w", id, errors.ErrNotFound)
	}
	_, err := validation.ValidateChannelName(newName, d.takenExcept(id))
	d.mu.RUnlock()
	if err != nil {
		return domain.Channel{}, err
	}
	if newName == current.Name {
		return current, nil
	}

	channel, err := d.remote.RenameChannel(ctx, id, newName)
	if err != nil {
		d.log.Warn("Channel not renamed", "channel_id", id, "name", newName, "error", err)
		d.refreshOnNotFound(ctx, err)
		return domain.Channel{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return channel, nil
	}
	d.put(channel)
	return channel, nil
}

// Delete removes the channel and evicts its messages once the data service confirmed.
func (d *Directory) Delete(ctx context.Context, id domain.ChannelID) error {
	d.mu.RLock()
	_, ok := d.channels[id]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("channel %s: %w", id, errors.ErrNotFound)
	}

	if err := d.remote.DeleteChannel(ctx, id); err != nil {
		d.log.Warn("Channel not deleted", "channel_id", id, "error", err)
		d.refreshOnNotFound(ctx, err)
		return err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.remove(id)
	d.fixActive()
	d.mu.Unlock()

	evicted := d.evictor.Evict(id)
	d.log.Debug("Channel deleted", "channel_id", id, "evicted_messages", evicted)
	return nil
}

// SetActive selects the channel whose messages are displayed.
// An unknown id is ignored: the UI only offers ids it got from this directory.
func (d *Directory) SetActive(id domain.ChannelID) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, ok := d.channels[id]; !ok {
		d.log.Debug("Unknown channel not activated", "channel_id", id)
		return
	}
	d.session.SetActiveChannel(id)
}

// Active returns the selected channel.
func (d *Directory) Active() (domain.Channel, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	channel, ok := d.channels[d.session.ActiveChannel()]
	return channel, ok
}

func (d *Directory) Get(id domain.ChannelID) (domain.Channel, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	channel, ok := d.channels[id]
	return channel, ok
}

// Lookup finds a channel by name, case-insensitively.
func (d *Directory) Lookup(name string) (domain.Channel, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.names[validation.NameKey(name)]
	if !ok {
		return domain.Channel{}, false
	}
	return d.channels[id], true
}

// Channels returns the channels in directory order.
func (d *Directory) Channels() []domain.Channel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return lo.Map(d.order, func(id domain.ChannelID, _ int) domain.Channel {
		return d.channels[id]
	})
}

func (d *Directory) Names() []string {
	return lo.Map(d.Channels(), func(c domain.Channel, _ int) string {
		return c.Name
	})
}

// Refresh replaces the directory with the data service's channel list.
// A response older than one already applied, or arriving after Close, is discarded.
func (d *Directory) Refresh(ctx context.Context) error {
	seq := d.seq.Add(1)
	channels, err := d.remote.ListChannels(ctx)
	if err != nil {
		d.log.Warn("Channel refresh failed", "error", err)
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("directory: %w", errors.ErrClosed)
	}
	if seq < d.applied {
		d.log.Debug("Stale channel refresh dropped", "seq", seq, "applied", d.applied)
		return nil
	}
	d.order = nil
	d.channels = make(map[domain.ChannelID]domain.Channel, len(channels))
	d.names = make(map[string]domain.ChannelID, len(channels))
	for _, channel := range channels {
		d.put(channel)
	}
	d.applied = seq
	d.fixActive()
	return nil
}

// Close discards the state. Responses arriving later are not applied.
func (d *Directory) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.order = nil
	d.channels = make(map[domain.ChannelID]domain.Channel)
	d.names = make(map[string]domain.ChannelID)
}

func (d *Directory) refreshOnNotFound(ctx context.Context, err error) {
	if !stderrors.Is(err, errors.ErrNotFound) {
		return
	}
	if rerr := d.Refresh(ctx); rerr != nil {
		d.log.Warn("Refresh after divergence failed", "error", rerr)
	}
}

// put inserts or replaces a channel, keeping its position when it already exists.
func (d *Directory) put(channel domain.Channel) {
	if previous, ok := d.channels[channel.ID]; ok {
		delete(d.names, validation.NameKey(previous.Name))
	} else {
		d.order = append(d.order, channel.ID)
	}
	d.channels[channel.ID] = channel
	d.names[validation.NameKey(channel.Name)] = channel.ID
}

func (d *Directory) remove(id domain.ChannelID) {
	channel, ok := d.channels[id]
	if !ok {
		return
	}
	delete(d.channels, id)
	delete(d.names, validation.NameKey(channel.Name))
	d.order = lo.Without(d.order, id)
}

// fixActive falls back to the first channel when the selection is empty or gone.
func (d *Directory) fixActive() {
	if _, ok := d.channels[d.session.ActiveChannel()]; ok {
		return
	}
	if len(d.order) == 0 {
		d.session.SetActiveChannel("")
		return
	}
	d.session.SetActiveChannel(d.order[0])
}

// takenExcept is the set of names in use, minus the name of except. Callers hold the lock.
func (d *Directory) takenExcept(except domain.ChannelID) validation.NameSet {
	return takenNames{names: d.names, except: except}
}

type takenNames struct {
	names  map[string]domain.ChannelID
	except domain.ChannelID
}

func (t takenNames) Contains(name string) bool {
	id, ok := t.names[validation.NameKey(name)]
	return ok && id != t.except
}
