package live

import (
	"chat-sync/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Dispatcher_Emit_And_Off(t *testing.T) {
	req := require.New(t)
	d := NewDispatcher()
	var first, second int

	offFirst := d.On(domain.EventNewMessage, func() { first++ })
	d.On(domain.EventNewMessage, func() { second++ })

	req.Equal(2, d.Emit(domain.EventNewMessage))
	req.Equal(0, d.Emit("somethingElse"))

	offFirst()
	offFirst()
	req.Equal(1, d.Emit(domain.EventNewMessage))
	req.Equal(1, first)
	req.Equal(2, second)
}
