package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/hazard-risk-service/internal/config"
	"github.com/couchcryptid/hazard-risk-service/internal/domain"
)

// Writer produces reports and alerts to their Kafka topics.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer      *kafkago.Writer
	logger      *slog.Logger
	reportTopic string
	alertTopic  string
}

// NewWriter creates a Kafka producer. The topic is set per message so one
// WriteMessages call covers a batch's reports and alerts.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, reportTopic: cfg.KafkaSinkTopic, alertTopic: cfg.KafkaAlertTopic}
}

// LoadBatch publishes one report per assessment plus one message per alert.
func (w *Writer) LoadBatch(ctx context.Context, assessments []domain.Assessment) error {
	msgs, err := w.messages(assessments)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.logger.Debug("batch written", "reports", len(assessments), "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func (w *Writer) messages(assessments []domain.Assessment) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, 0, len(assessments))
	for i := range assessments {
		msg, err := serializeReport(w.reportTopic, assessments[i].Report)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
		for _, a := range assessments[i].Alerts {
			msg, err := serializeAlert(w.alertTopic, a)
			if err != nil {
				return nil, err
			}
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

// serializeReport marshals a report keyed by its request id.
func serializeReport(topic string, r domain.MultiHazardReport) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}
	alerts := 0
	if r.EmergencyAlerts != nil {
		alerts = r.EmergencyAlerts.AlertCount
	}
	return kafkago.Message{
		Topic: topic,
		Key:   []byte(r.RequestID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_count", Value: []byte(strconv.Itoa(alerts))},
			{Key: "generated_at", Value: []byte(r.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}

// serializeAlert marshals an alert keyed by its request id.
func serializeAlert(topic string, a domain.Alert) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert: %w", err)
	}
	return kafkago.Message{
		Topic: topic,
		Key:   []byte(a.RequestID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "disaster_type", Value: []byte(a.DisasterType)},
			{Key: "severity", Value: []byte(a.Severity)},
		},
	}, nil
}
