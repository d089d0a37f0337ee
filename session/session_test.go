package session

import (
	"chat-sync/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContext(t *testing.T) {
	req := require.New(t)
	s := New("alice", "token")

	req.Equal("alice", s.Username())
	req.Equal("token", s.Token())
	req.Empty(s.ActiveChannel())

	s.SetActiveChannel(domain.ChannelID("c1"))
	req.Equal(domain.ChannelID("c1"), s.ActiveChannel())
}
