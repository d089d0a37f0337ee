package domain

// EventName is the kind of a live-update notification.
type EventName string

// EventNewMessage is broadcast whenever any client posts a message or mutates a channel.
// It carries no payload: receivers re-sync.
const EventNewMessage EventName = "newMessage"

// LiveEvent is the frame delivered by push transports.
type LiveEvent struct {
	Event EventName `json:"event"`
}
