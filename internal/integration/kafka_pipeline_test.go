//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/lcaslokonon/disney-wait-times/internal/adapter/kafka"
	"github.com/lcaslokonon/disney-wait-times/internal/config"
	"github.com/lcaslokonon/disney-wait-times/internal/dataset"
	"github.com/lcaslokonon/disney-wait-times/internal/domain"
	"github.com/lcaslokonon/disney-wait-times/internal/observability"
	"github.com/lcaslokonon/disney-wait-times/internal/touringplans"
)

const testSinkTopic = "test-wait-times"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-broker Kafka container and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "get broker addresses")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "get controller")

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// startFeedServer serves a fixed CSV body for every catalog dataset path.
func startFeedServer(t *testing.T, bodies map[string]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type receivedSample struct {
	Sample  domain.WaitSample
	Key     string
	Headers map[string]string
}

func readSample(ctx context.Context, t *testing.T, consumer *kafkago.Reader) receivedSample {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var sample domain.WaitSample
	require.NoError(t, json.Unmarshal(msg.Value, &sample), "unmarshal sink message")

	return receivedSample{Sample: sample, Key: string(msg.Key), Headers: headers}
}

// TestSnapshotDeliveryEndToEnd fetches real HTTP feeds, aggregates them, and
// publishes the snapshot through the Kafka sink, verifying every sample comes
// back out in catalog order with its headers intact.
func TestSnapshotDeliveryEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	feeds := startFeedServer(t, map[string]string{
		"/datasets/alpha.csv": "datetime,SACTMIN,SPOSTMIN\n" +
			"2024-03-15 09:00:00,,30\n" +
			"2024-03-15 09:07:00,25,40\n" +
			"2024-03-15 09:14:00,,-999\n" +
			"2024-03-15 09:21:00,,\n",
		"/datasets/beta.csv": "datetime,SACTMIN,SPOSTMIN\n" +
			"2024-03-15 09:03:00,,55\n",
	})

	catalog, err := touringplans.NewCatalog(
		touringplans.Source{Attraction: "Alpha Coaster", URL: feeds.URL + "/datasets/alpha.csv"},
		touringplans.Source{Attraction: "Beta Flume", URL: feeds.URL + "/datasets/beta.csv"},
	)
	require.NoError(t, err)

	client := touringplans.NewClient(10*time.Second, discardLogger())
	builder := dataset.New(catalog, client, discardLogger(), observability.NewMetricsForTesting())

	ds, err := builder.Build(ctx)
	require.NoError(t, err)
	require.Len(t, ds.Samples, 4, "sentinel row should have been dropped")
	assert.Equal(t, 1, ds.Dropped)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}
	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.Store(ctx, ds))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]receivedSample, 0, len(ds.Samples))
	for len(received) < len(ds.Samples) {
		received = append(received, readSample(ctx, t, consumer))
	}

	// Catalog order with each feed's internal order preserved.
	var names []string
	for _, rs := range received {
		names = append(names, rs.Sample.AttractionName)
	}
	assert.Equal(t, []string{"Alpha Coaster", "Alpha Coaster", "Alpha Coaster", "Beta Flume"}, names)

	first := received[0]
	assert.Equal(t, "Alpha Coaster|2024-03-15T09:00:00Z", first.Key)
	assert.Equal(t, "Alpha Coaster", first.Headers["attraction"])
	_, err = time.Parse(time.RFC3339, first.Headers["fetched_at"])
	assert.NoError(t, err, "fetched_at should be valid RFC3339")
	assert.Equal(t, domain.WaitOf(30), first.Sample.WaitTime)
	assert.Equal(t, "2024-03-15", first.Sample.DateID)
	assert.Equal(t, 9, first.Sample.HourOfDay)

	// Measured wait masks the posted one.
	assert.Equal(t, domain.WaitOf(25), received[1].Sample.WaitTime)

	// A row with both cells empty stays in the table with a null wait.
	assert.False(t, received[2].Sample.WaitTime.Valid)

	assert.Equal(t, domain.WaitOf(55), received[3].Sample.WaitTime)
}
