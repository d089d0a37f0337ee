package ws

import (
	"chat-sync/auth"
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/live"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

// Transport is the client side of the hub. It reconnects with backoff until its context is done.
type Transport struct {
	url        string
	token      string
	dialer     *websocket.Dialer
	newBackOff func() backoff.BackOff
	dispatcher *live.Dispatcher
	tracker    *live.Tracker
	log        *slog.Logger
}

func NewTransport(url, token string, newBackOff func() backoff.BackOff, log *slog.Logger) *Transport {
	return &Transport{
		url:        url,
		token:      token,
		dialer:     websocket.DefaultDialer,
		newBackOff: newBackOff,
		dispatcher: live.NewDispatcher(),
		tracker:    live.NewTracker("websocket", log),
		log:        log,
	}
}

func (t *Transport) On(event domain.EventName, handler live.Handler) (off func()) {
	return t.dispatcher.On(event, handler)
}

func (t *Transport) State() live.State {
	return t.tracker.State()
}

func (t *Transport) Watch(watcher func(live.State)) {
	t.tracker.Watch(watcher)
}

func (t *Transport) Run(ctx context.Context) error {
	return live.Reconnect(ctx, t.tracker, t.newBackOff(), t.log, t.session)
}

func (t *Transport) session(ctx context.Context, connected func()) error {
	header := http.Header{}
	if t.token != "" {
		header.Set("Authorization", auth.TokenCredentials{Token: t.token}.Header())
	}
	conn, resp, err := t.dialer.DialContext(ctx, t.url, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return backoff.Permanent(errors.NewRemoteError("subscribe", errors.KindRejected,
				fmt.Errorf("%w: %s", errors.ErrUnauthenticated, resp.Status)))
		}
		return err
	}
	connected()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(closeWait))
		_ = conn.Close()
	})
	defer stop()
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var evt domain.LiveEvent
		if err = jsoniter.Unmarshal(data, &evt); err != nil {
			t.log.Debug("Malformed live frame ignored", "error", err)
			continue
		}
		handled := t.dispatcher.Emit(evt.Event)
		t.log.Debug("Live event received", "event", evt.Event, "handlers", handled)
	}
}
