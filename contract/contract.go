//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-sync/domain"
	"context"
)

// EventSink receives live events for one connected subscriber.
type EventSink interface {
	Consume(ctx context.Context, e domain.LiveEvent) error
}

// Notifier tells every connected client that something changed.
type Notifier interface {
	Broadcast(ctx context.Context, e domain.LiveEvent)
}

// Subscriptions attaches and detaches the sink of one connection.
type Subscriptions interface {
	Subscribe(subscriberID string, sink EventSink)
	Unsubscribe(subscriberID string)
}

type IRegistry interface {
	Notifier
	Subscriptions
	Sinks() []EventSink
}
