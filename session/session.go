// Package session carries the identity the sync core is scoped to.
// Credential storage is not handled here: the token is handed in by the caller.
package session

import (
	"chat-sync/domain"
	"sync"
)

type Context struct {
	username string
	token    string

	mu     sync.RWMutex
	active domain.ChannelID
}

func New(username, token string) *Context {
	return &Context{username: username, token: token}
}

// Username is captured as the author of every message posted from this session.
func (c *Context) Username() string {
	return c.username
}

func (c *Context) Token() string {
	return c.token
}

// ActiveChannel returns the selected channel, empty when nothing is selected yet.
func (c *Context) ActiveChannel() domain.ChannelID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// SetActiveChannel is only called by the channel directory, which checks the id exists.
func (c *Context) SetActiveChannel(id domain.ChannelID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = id
}
