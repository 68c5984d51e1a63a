package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PrashansaChaudhary/amasift-compare/internal/domain"
	pkgkafka "github.com/PrashansaChaudhary/amasift-compare/pkg/kafka"
	"github.com/PrashansaChaudhary/amasift-compare/pkg/logger"
)

// Kafka topic for comparison events.
var TopicComparisonCreated = pkgkafka.Topic("comparison", "created")

// Aggregate type constant.
const AggregateTypeComparison = "comparison"

// Source identifier for events originating from the comparison service.
const SourceCompareService = "compare-service"

// ComparisonCreatedData is the payload for a comparison.created event.
type ComparisonCreatedData struct {
	SessionID    string             `json:"session_id"`
	HistoryID    string             `json:"history_id"`
	RequestedIDs []string           `json:"requested_ids"`
	ResolvedIDs  []string           `json:"resolved_ids"`
	Winners      map[string]*string `json:"winners"`
}

// Publisher sends an event to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes comparison domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the comparison service.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishComparisonCreated publishes a comparison.created event keyed by the
// session so a session's events stay ordered on one partition.
func (p *Producer) PublishComparisonCreated(ctx context.Context, historyID string, requested []string, result *domain.ComparisonResult) error {
	resolved := make([]string, 0, len(result.Products))
	for _, cp := range result.Products {
		resolved = append(resolved, cp.ID)
	}

	data := ComparisonCreatedData{
		SessionID:    result.SessionID,
		HistoryID:    historyID,
		RequestedIDs: requested,
		ResolvedIDs:  resolved,
		Winners:      result.Comparison.Winners(),
	}

	event, err := pkgkafka.NewEvent(TopicComparisonCreated, result.SessionID, AggregateTypeComparison, SourceCompareService, data)
	if err != nil {
		return fmt.Errorf("create comparison.created event: %w", err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, TopicComparisonCreated, event); err != nil {
		return fmt.Errorf("publish comparison.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published comparison.created event",
		slog.String("session_id", result.SessionID),
		slog.Int("products", len(resolved)),
	)

	return nil
}

// Discard drops every event. It stands in for Producer when events are off.
type Discard struct{}

// PublishComparisonCreated does nothing.
func (Discard) PublishComparisonCreated(context.Context, string, []string, *domain.ComparisonResult) error {
	return nil
}
