package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicNames(t *testing.T) {
	topic := NewTopic("eo-tracker.order.events")

	assert.Equal(t, "eo-tracker.order.events", topic.Base())
	assert.Equal(t, "eo-tracker.order.events.dlq", topic.DLQ())

	retries := topic.GetRetryTopics()
	require.Len(t, retries, len(RetryDelays))
	assert.Equal(t, "eo-tracker.order.events.retry.10s", retries[0])
	assert.Equal(t, "eo-tracker.order.events.retry.1m0s", retries[2])
	assert.Equal(t, "eo-tracker.order.events.retry.10m0s", retries[4])
}

func TestReinjectorGroupID(t *testing.T) {
	t.Setenv("KAFKA_GROUP_ID", "eo-tracker")

	got := ReinjectorGroupID(NewTopic("eo-tracker.order.events"))
	assert.Equal(t, "eo-tracker-retry-worker-eo-tracker-order-events", got)
}

func TestGetRetryTopicBounds(t *testing.T) {
	topic := NewTopic("x")

	name, err := topic.GetRetryTopic(1)
	require.NoError(t, err)
	assert.Equal(t, "x.retry.10s", name)

	_, err = topic.GetRetryTopic(0)
	assert.ErrorIs(t, err, ErrMaxRetryExceeded)

	_, err = topic.GetRetryTopic(len(RetryDelays) + 1)
	assert.ErrorIs(t, err, ErrMaxRetryExceeded)
}

func TestParseRetryDelayFromTopicName(t *testing.T) {
	d, ok := ParseRetryDelayFromTopicName("eo-tracker.order.events.retry.30s")
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, d)

	d, ok = ParseRetryDelayFromTopicName("eo-tracker.order.events.retry.5m0s")
	require.True(t, ok)
	assert.Equal(t, 5*time.Minute, d)

	_, ok = ParseRetryDelayFromTopicName("eo-tracker.order.events")
	assert.False(t, ok)

	_, ok = ParseRetryDelayFromTopicName("eo-tracker.order.events.retry.")
	assert.False(t, ok)

	_, ok = ParseRetryDelayFromTopicName("eo-tracker.order.events.retry.notaduration")
	assert.False(t, ok)
}

func TestRetryTopicNamesRoundTripThroughParser(t *testing.T) {
	topic := NewTopic("eo-tracker.order.events")
	for i, name := range topic.GetRetryTopics() {
		d, ok := ParseRetryDelayFromTopicName(name)
		require.True(t, ok, name)
		assert.Equal(t, RetryDelays[i], d)
	}
}

func TestNewJSONEventDefaults(t *testing.T) {
	evt, err := NewJSONEvent("", map[string]string{"k": "v"}, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, len(RetryDelays), evt.MaxRetry)
	assert.Zero(t, evt.Retry)
	assert.JSONEq(t, `{"k":"v"}`, string(evt.Payload))
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		DocumentNumber string `json:"document_number"`
	}

	evt, err := NewJSONEvent("id-1", payload{DocumentNumber: "2025-001"}, 3)
	require.NoError(t, err)

	out, err := DecodeJSON[payload](evt)
	require.NoError(t, err)
	assert.Equal(t, "2025-001", out.DocumentNumber)

	evt.Payload = []byte("not json")
	_, err = DecodeJSON[payload](evt)
	assert.Error(t, err)
}

type fakeBus struct {
	published []Event
	handler   EventHandler
}

func (f *fakeBus) Publish(ctx context.Context, topic string, event Event) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	f.handler = handler
	return nil
}

func (f *fakeBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	return nil
}

func (f *fakeBus) Close() {}

func TestSubscribeJSONDecodesBeforeHandling(t *testing.T) {
	type payload struct {
		N int `json:"n"`
	}

	bus := &fakeBus{}
	var got payload
	err := SubscribeJSON(context.Background(), bus, "g", NewTopic("t"),
		func(ctx context.Context, p payload, meta Event) error {
			got = p
			return nil
		})
	require.NoError(t, err)
	require.NotNil(t, bus.handler)

	evt, err := NewJSONEvent("id", payload{N: 7}, 1)
	require.NoError(t, err)
	require.NoError(t, bus.handler(context.Background(), evt))
	assert.Equal(t, 7, got.N)
}
