package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/harbinger/internal/analysis"
	"github.com/couchcryptid/harbinger/internal/config"
	"github.com/couchcryptid/harbinger/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("key-1"),
		Value:     []byte(`{"location":"Puri"}`),
		Topic:     "incident-reports",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "channel", Value: []byte("sms")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("key-1"), raw.Key)
	assert.JSONEq(t, `{"location":"Puri"}`, string(raw.Value))
	assert.Equal(t, "incident-reports", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "sms", raw.Headers["channel"])
	assert.Nil(t, raw.Commit)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 12, 26, 3, 20, 0, 0, time.FixedZone("IST", 5*3600+1800))
	inc := domain.Incident{
		ID:               "inc-1",
		Location:         "Kochi",
		ClassifiedType:   analysis.Tsunami,
		OceanHazardLevel: 3,
		Priority:         100,
	}

	msg, err := serializeToMessage(inc, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("inc-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"classified_type":"Tsunami"`)

	var decoded domain.Incident
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, 100, decoded.Priority)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "disaster_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("Tsunami"), msg.Headers[0].Value)
	assert.Equal(t, "ocean_hazard_level", msg.Headers[1].Key)
	assert.Equal(t, []byte("3"), msg.Headers[1].Value)
	assert.Equal(t, "processed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2024-12-25T21:50:00Z"), msg.Headers[2].Value)
}

func TestWriter_LoadBatchEmpty(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:1"}, KafkaSinkTopic: "unused"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	// No broker round trip happens for an empty batch.
	assert.NoError(t, w.LoadBatch(context.Background(), nil))
}
