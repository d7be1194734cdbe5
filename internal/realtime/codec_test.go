package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/DikaaDK/Chronos-sub000/internal/journal"
)

func TestChannelFor(t *testing.T) {
	assert.Equal(t, "private-journals.12", ChannelFor("12"))

	id, ok := UserOf("private-journals.12")
	require.True(t, ok)
	assert.Equal(t, "12", id)

	_, ok = UserOf("private-journals.")
	assert.False(t, ok)
	_, ok = UserOf("public.12")
	assert.False(t, ok)
}

func TestPublishRoundTrip(t *testing.T) {
	p := 40.0
	ev := journal.Event{Action: journal.ActionUpdated, Journal: &journal.Entry{
		ID:        "5",
		Title:     "Trip",
		StartDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.Local),
		Progress:  &p,
	}}

	req, err := PublishRequest(ChannelFor("3"), ev)
	require.NoError(t, err)

	channel, name, payload, err := ParsePublish(req)
	require.NoError(t, err)
	assert.Equal(t, "private-journals.3", channel)
	assert.Equal(t, journal.EventName, name)

	gotName, got := DecodeDelivery(Delivery(name, payload))
	assert.Equal(t, journal.EventName, gotName)
	assert.Equal(t, journal.ActionUpdated, got.Action)
	require.NotNil(t, got.Journal)
	assert.Equal(t, journal.ID("5"), got.Journal.ID)
	assert.Equal(t, "Trip", got.Journal.Title)
	assert.True(t, ev.Journal.StartDate.Equal(got.Journal.StartDate))
	require.NotNil(t, got.Journal.Progress)
	assert.Equal(t, 40.0, *got.Journal.Progress)
}

func TestParsePublish_Errors(t *testing.T) {
	_, _, _, err := ParsePublish(&structpb.Struct{})
	assert.ErrorIs(t, err, ErrMissingChannel)

	_, _, _, err = ParsePublish(SubscribeRequest("private-journals.1"))
	assert.ErrorIs(t, err, ErrMissingEvent)
}

func TestDecodeDelivery_Malformed(t *testing.T) {
	name, ev := DecodeDelivery(&structpb.Struct{})
	assert.Empty(t, name)
	assert.Nil(t, ev.Journal)

	bad, err := structpb.NewStruct(map[string]any{
		"event":   "JournalUpdated",
		"payload": map[string]any{"action": 12, "journal": "nope"},
	})
	require.NoError(t, err)
	_, ev = DecodeDelivery(bad)
	assert.Nil(t, ev.Journal)
}

func TestChannelOf(t *testing.T) {
	assert.Equal(t, "private-journals.9", ChannelOf(SubscribeRequest(" private-journals.9 ")))
	assert.Empty(t, ChannelOf(nil))
}
