package realtime

import (
	"encoding/json"
	"errors"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/DikaaDK/Chronos-sub000/internal/journal"
)

// ChannelPrefix prefixes the per-user private journal channel.
const ChannelPrefix = "private-journals."

var (
	ErrMissingChannel = errors.New("missing channel")
	ErrMissingEvent   = errors.New("missing event")
)

// ChannelFor returns the private journal channel of userID.
func ChannelFor(userID string) string {
	return ChannelPrefix + strings.TrimSpace(userID)
}

// UserOf returns the user id that owns channel.
func UserOf(channel string) (string, bool) {
	id, ok := strings.CutPrefix(channel, ChannelPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// SubscribeRequest builds the Subscribe request message.
func SubscribeRequest(channel string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"channel": structpb.NewStringValue(channel),
	}}
}

// PublishRequest builds a Publish request for ev on channel.
func PublishRequest(channel string, ev journal.Event) (*structpb.Struct, error) {
	payload, err := EncodeEvent(ev)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"channel": structpb.NewStringValue(channel),
		"event":   structpb.NewStringValue(journal.EventName),
		"payload": structpb.NewStructValue(payload),
	}}, nil
}

// ParsePublish extracts the channel, event name and payload of a Publish
// request.
func ParsePublish(req *structpb.Struct) (channel, event string, payload *structpb.Struct, err error) {
	channel = stringField(req, "channel")
	if channel == "" {
		return "", "", nil, ErrMissingChannel
	}
	event = stringField(req, "event")
	if event == "" {
		return "", "", nil, ErrMissingEvent
	}
	payload = req.GetFields()["payload"].GetStructValue()
	if payload == nil {
		payload = &structpb.Struct{}
	}
	return channel, event, payload, nil
}

// ChannelOf returns the channel named by a Subscribe request.
func ChannelOf(req *structpb.Struct) string {
	return stringField(req, "channel")
}

// Delivery builds the message streamed to subscribers.
func Delivery(event string, payload *structpb.Struct) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"event":   structpb.NewStringValue(event),
		"payload": structpb.NewStructValue(payload),
	}}
}

// EncodeEvent converts ev into its {action, journal} payload.
func EncodeEvent(ev journal.Event) (*structpb.Struct, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	payload := &structpb.Struct{}
	if err := protojson.Unmarshal(b, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// DecodeDelivery returns the event name and the journal event carried by a
// delivery. A payload that does not decode yields an empty event, which the
// merger ignores.
func DecodeDelivery(msg *structpb.Struct) (string, journal.Event) {
	name := stringField(msg, "event")
	payload := msg.GetFields()["payload"].GetStructValue()
	if payload == nil {
		return name, journal.Event{}
	}
	b, err := protojson.Marshal(payload)
	if err != nil {
		return name, journal.Event{}
	}
	var ev journal.Event
	if err := json.Unmarshal(b, &ev); err != nil {
		return name, journal.Event{}
	}
	return name, ev
}

func stringField(s *structpb.Struct, key string) string {
	return strings.TrimSpace(s.GetFields()[key].GetStringValue())
}
