//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hazard-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/hazard-risk-service/internal/config"
	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/observability"
	"github.com/couchcryptid/hazard-risk-service/internal/pipeline"
)

const (
	testRequestTopic = "test-requests"
	testReportTopic  = "test-reports"
	testAlertTopic   = "test-alerts"
)

// received is a message read back from an output topic.
type received struct {
	Key     string
	Value   []byte
	Headers map[string]string
}

func readOne(ctx context.Context, t *testing.T, consumer *kafkago.Reader) received {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from %s", consumer.Config().Topic)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return received{Key: string(msg.Key), Value: msg.Value, Headers: headers}
}

func newConsumer(t *testing.T, broker, topic string) *kafkago.Reader {
	t.Helper()
	c := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       topic,
		GroupID:     fmt.Sprintf("test-%s-%d", topic, time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testRequestTopic,
		KafkaSinkTopic:     testReportTopic,
		KafkaAlertTopic:    testAlertTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func setupTopics(ctx context.Context, t *testing.T) string {
	t.Helper()
	broker := startKafka(ctx, t)
	for _, topic := range []string{testRequestTopic, testReportTopic, testAlertTopic} {
		createTopic(t, broker, topic)
	}
	return broker
}

func publish(ctx context.Context, t *testing.T, broker string, msgs ...kafkago.Message) {
	t.Helper()
	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testRequestTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, msgs...))
}

func requestMessage(t *testing.T, key string, req domain.AssessmentRequest) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(req)
	require.NoError(t, err)
	return kafkago.Message{Key: []byte(key), Value: payload}
}

func ptr(v float64) *float64 { return &v }

// TestKafkaReaderWriter round-trips one request through the reader, the
// transformer and the writer.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := setupTopics(ctx, t)
	cfg := testConfig(broker, "test-reader")
	eng := trainedEngine(ctx, t)

	req := domain.AssessmentRequest{ID: "tokyo-1", Latitude: ptr(35.68), Longitude: ptr(139.69)}
	publish(ctx, t, broker, requestMessage(t, "tokyo", req))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for len(batch) == 0 {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for request")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("tokyo"), raw.Key)
	assert.Equal(t, testRequestTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	a, err := pipeline.NewTransformer(eng, discardLogger()).Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.Assessment{a}))

	got := readOne(ctx, t, newConsumer(t, broker, testReportTopic))
	assert.Equal(t, "tokyo-1", got.Key)
	assert.Contains(t, got.Headers, "alert_count")
	_, err = time.Parse(time.RFC3339, got.Headers["generated_at"])
	assert.NoError(t, err, "generated_at should be RFC3339")

	var report domain.MultiHazardReport
	require.NoError(t, json.Unmarshal(got.Value, &report))
	assert.Equal(t, "tokyo-1", report.RequestID)
	assert.Equal(t, domain.Coordinates{Latitude: 35.68, Longitude: 139.69}, report.Location)
	assert.Equal(t, domain.CoordinateLabel(35.68, 139.69), report.Summary.LocationName)
	require.NotNil(t, report.EmergencyAlerts)
}

// TestPipelineEndToEnd runs the pipeline against real Kafka and checks that
// every request yields a report and a great subduction quake raises a
// tsunami alert.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	broker := setupTopics(ctx, t)
	cfg := testConfig(broker, "test-pipeline")
	eng := trainedEngine(ctx, t)

	requests := map[string]domain.AssessmentRequest{
		"tokyo":   {ID: "tokyo", Latitude: ptr(35.68), Longitude: ptr(139.69)},
		"patna":   {ID: "patna", Latitude: ptr(25.6), Longitude: ptr(85.1), RainfallMm: ptr(20)},
		"sumatra": {ID: "sumatra", Latitude: ptr(-5), Longitude: ptr(95), EarthquakeMagnitude: ptr(9.2)},
		"denver":  {ID: "denver", Latitude: ptr(39.74), Longitude: ptr(-104.99)},
	}
	msgs := make([]kafkago.Message, 0, len(requests))
	for key, req := range requests {
		msgs = append(msgs, requestMessage(t, key, req))
	}
	publish(ctx, t, broker, msgs...)

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, pipeline.NewTransformer(eng, discardLogger()), writer, discardLogger(), metrics, 10)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	reports := newConsumer(t, broker, testReportTopic)
	seen := map[string]domain.MultiHazardReport{}
	for len(seen) < len(requests) {
		got := readOne(ctx, t, reports)
		var r domain.MultiHazardReport
		require.NoError(t, json.Unmarshal(got.Value, &r))
		assert.Equal(t, got.Key, r.RequestID)
		seen[r.RequestID] = r
	}

	alerts := newConsumer(t, broker, testAlertTopic)
	var tsunami *domain.Alert
	for tsunami == nil {
		got := readOne(ctx, t, alerts)
		var a domain.Alert
		require.NoError(t, json.Unmarshal(got.Value, &a))
		assert.Equal(t, a.DisasterType, got.Headers["disaster_type"])
		assert.Equal(t, domain.SeverityCritical, got.Headers["severity"])
		if a.DisasterType == domain.DisasterTsunami {
			tsunami = &a
		}
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	for id := range requests {
		assert.Contains(t, seen, id)
	}
	assert.Equal(t, "sumatra", tsunami.RequestID)
	require.NotNil(t, tsunami.Location)
	assert.Equal(t, -5.0, tsunami.Location.Latitude)
	assert.Equal(t, 95.0, tsunami.Location.Longitude)
	require.NotNil(t, seen["sumatra"].EmergencyAlerts)
	assert.Positive(t, seen["sumatra"].EmergencyAlerts.AlertCount)
}

// TestPipelineTransformError verifies that undecodable and invalid requests
// are skipped and the pipeline keeps serving valid ones.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := setupTopics(ctx, t)
	cfg := testConfig(broker, "test-poison")
	eng := trainedEngine(ctx, t)

	publish(ctx, t, broker,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		requestMessage(t, "no-lon", domain.AssessmentRequest{ID: "no-lon", Latitude: ptr(10)}),
		requestMessage(t, "good", domain.AssessmentRequest{ID: "good", Latitude: ptr(48.85), Longitude: ptr(2.35)}),
	)

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, pipeline.NewTransformer(eng, discardLogger()), writer, discardLogger(), metrics, 10)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	reports := newConsumer(t, broker, testReportTopic)
	got := readOne(ctx, t, reports)
	assert.Equal(t, "good", got.Key)

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := reports.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second report")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
