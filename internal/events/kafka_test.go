package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   int
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed++
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &recordingWriter{}
	publisher := newKafkaPublisher(writer)

	err := publisher.Publish(context.Background(), Event{
		Type:    TypeReviewCreated,
		Key:     "product:7",
		Payload: map[string]interface{}{"rating": 4.5},
	})
	require.NoError(t, err)

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "product:7", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "review.created", string(msg.Headers[0].Value))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "review.created", decoded["type"])
	assert.NotEmpty(t, decoded["at"])
}

func TestKafkaPublisher_WrapsWriterError(t *testing.T) {
	boom := errors.New("leader not available")
	publisher := newKafkaPublisher(&recordingWriter{err: boom})

	err := publisher.Publish(context.Background(), Event{Type: TypeRatingDeleted})
	assert.ErrorIs(t, err, boom)
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := &recordingWriter{}
	publisher := newKafkaPublisher(writer)

	require.NoError(t, publisher.Close())
	require.NoError(t, publisher.Close())
	assert.Equal(t, 1, writer.closed)

	err := publisher.Publish(context.Background(), Event{Type: TypeProductCreated})
	assert.ErrorIs(t, err, ErrPublisherClosed)
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "catalog.events")
	assert.Error(t, err)
}
