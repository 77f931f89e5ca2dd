package domain

import (
	"context"
	"time"
)

// RawEvent is an unprocessed message from the request topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Assessment is the outcome of one request: the report for the report
// topic and any alerts for the alert topic.
type Assessment struct {
	Report MultiHazardReport
	Alerts []Alert
}
