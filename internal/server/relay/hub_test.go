package relay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DikaaDK/Chronos-sub000/internal/logging"
)

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize("private-journals.4", "4"))
	assert.ErrorIs(t, Authorize("private-journals.4", "5"), ErrChannelForbidden)
	assert.ErrorIs(t, Authorize("journals.4", "4"), ErrInvalidChannel)
}

func TestHub_PublishReachesOnlyChannelSubscribers(t *testing.T) {
	h := NewHub(4, logging.Nop{})
	ctx := context.Background()

	a, unsubA := h.Subscribe("private-journals.1")
	defer unsubA()
	b, unsubB := h.Subscribe("private-journals.2")
	defer unsubB()

	n := h.Publish(ctx, "private-journals.1", Message{Event: "JournalUpdated"})
	assert.Equal(t, 1, n)

	msg := <-a.C()
	assert.Equal(t, "JournalUpdated", msg.Event)
	assert.Equal(t, "private-journals.1", a.Channel())
	assert.Empty(t, b.C())
}

func TestHub_FullBufferDrops(t *testing.T) {
	h := NewHub(1, logging.Nop{})
	ctx := context.Background()

	sub, unsub := h.Subscribe("c")
	defer unsub()

	assert.Equal(t, 1, h.Publish(ctx, "c", Message{Event: "first"}))
	assert.Equal(t, 0, h.Publish(ctx, "c", Message{Event: "second"}))
	assert.Equal(t, "first", (<-sub.C()).Event)
}

func TestHub_UnsubscribeClosesAndForgets(t *testing.T) {
	h := NewHub(1, logging.Nop{})

	sub, unsub := h.Subscribe("c")
	require.Equal(t, 1, h.Subscribers("c"))

	unsub()
	unsub()

	_, open := <-sub.C()
	assert.False(t, open)
	assert.Equal(t, 0, h.Subscribers("c"))
	assert.Equal(t, 0, h.Publish(context.Background(), "c", Message{}))
}
