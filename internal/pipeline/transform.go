package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/hazard-risk-service/internal/domain"
)

// Assessor produces a report and its alerts for one request.
type Assessor interface {
	Assess(ctx context.Context, req domain.AssessmentRequest) (domain.Assessment, error)
}

// AssessmentTransformer implements Transformer by decoding a JSON assessment
// request and handing it to an Assessor.
type AssessmentTransformer struct {
	assessor Assessor
	logger   *slog.Logger
}

// NewTransformer creates an AssessmentTransformer.
func NewTransformer(assessor Assessor, logger *slog.Logger) *AssessmentTransformer {
	return &AssessmentTransformer{assessor: assessor, logger: logger}
}

// Transform decodes the request. A request without an id takes the message
// key as its id so reports and alerts can be correlated downstream.
func (t *AssessmentTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Assessment, error) {
	req, err := ParseRequest(raw)
	if err != nil {
		return domain.Assessment{}, err
	}
	a, err := t.assessor.Assess(ctx, req)
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("assess request %q: %w", req.ID, err)
	}
	if n := len(a.Alerts); n > 0 {
		t.logger.Debug("request raised alerts", "request_id", req.ID, "alerts", n)
	}
	return a, nil
}

// ParseRequest decodes a raw message into an assessment request.
func ParseRequest(raw domain.RawEvent) (domain.AssessmentRequest, error) {
	var req domain.AssessmentRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return domain.AssessmentRequest{}, fmt.Errorf("decode assessment request: %w", err)
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	return req, nil
}
