package e2e

import (
	"chat-sync/client"
	"chat-sync/errors"
	grpcclient "chat-sync/grpc/client"
	"chat-sync/live"
	"chat-sync/session"
	"chat-sync/ws"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testLiveSyncSuite struct {
	BaseGrpcSuite
}

func TestLiveSyncSuite(t *testing.T) {
	suite.Run(t, &testLiveSyncSuite{})
}

func (s *testLiveSyncSuite) newClient(name, username, token string) *client.Client {
	log := slog.New(slog.DiscardHandler)
	conn := s.GrpcConn(s.T(), name, token)
	s.T().Cleanup(func() { _ = conn.Close() })
	newBackOff := func() backoff.BackOff { return live.NewBackOff(100*time.Millisecond, time.Second) }
	transport := ws.NewTransport(s.Config.SocketURL, token, newBackOff, log)
	c := client.New(grpcclient.NewDataClient(conn, 5*time.Second, log), transport, session.New(username, token), strings.TrimSpace, log)
	s.T().Cleanup(c.Close)
	return c
}

func (s *testLiveSyncSuite) TestMessageFromAliceReachesBob() {
	name := "e2e-" + uuid.NewString()[:8]
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	alice := s.newClient("Alice", "alice", s.Config.AliceToken)
	bob := s.newClient("Bob", "bob", s.Config.BobToken)

	// --- STEP 1: BOB WATCHES ---
	s.Require().NoError(bob.Open(ctx))
	done := bob.Start(ctx)
	sub, err := bob.Watch(ctx, nil)
	defer sub.Close()
	s.Require().NoError(err)
	s.Require().Eventually(func() bool { return bob.State() == live.Connected }, 10*time.Second, 50*time.Millisecond)

	// --- STEP 2: ALICE CREATES A CHANNEL AND POSTS ---
	s.Require().NoError(alice.Open(ctx))
	ch, err := alice.CreateChannel(ctx, name)
	s.Require().NoError(err)
	alice.SelectChannel(ch.ID)
	_, err = alice.PostMessage(ctx, "hello from alice")
	s.Require().NoError(err)

	// --- STEP 3: BOB SEES BOTH WITHOUT ASKING ---
	s.Require().Eventually(func() bool {
		found, ok := bob.Lookup(name)
		if !ok {
			return false
		}
		bob.SelectChannel(found.ID)
		messages := bob.ActiveMessages()
		return len(messages) == 1 && messages[0].Author == "alice"
	}, 10*time.Second, 50*time.Millisecond)

	// --- STEP 4: DUPLICATES ARE REFUSED ON BOTH SIDES ---
	_, err = bob.CreateChannel(ctx, strings.ToUpper(name))
	s.Require().ErrorIs(err, errors.ErrDuplicateName)
	s.WithData("Server-side duplicate check", s.Config.BobToken, func(ctx context.Context, data *grpcclient.DataClient) {
		_, err := data.CreateChannel(ctx, strings.ToUpper(name))
		s.Require().ErrorIs(err, errors.ErrDuplicateName)
	})

	// --- STEP 5: DELETE CASCADES TO BOB ---
	s.Require().NoError(alice.DeleteChannel(ctx, ch.ID))
	s.Require().Eventually(func() bool {
		_, ok := bob.Lookup(name)
		return !ok && bob.MessageCount(ch.ID) == 0
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	s.Require().NoError(<-done)
}
