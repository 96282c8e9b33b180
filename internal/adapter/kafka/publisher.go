package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ashleyalmeida07/SolarizeIt/internal/config"
	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher announces completed analyses on a Kafka topic.
// It implements domain.AnalysisPublisher.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured analysis topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishAnalysis writes one analysis event keyed by analysis id.
func (p *Publisher) PublishAnalysis(ctx context.Context, a domain.Analysis) error {
	msg, err := serializeToMessage(a)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish analysis %s: %w", a.ID, err)
	}
	p.logger.Debug("analysis published", "id", a.ID, "region", a.Region)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// AnalysisEvent is the message body: the headline numbers of an analysis,
// without the narrative sections.
type AnalysisEvent struct {
	ID             string           `json:"id"`
	Address        string           `json:"address"`
	Latitude       float64          `json:"latitude"`
	Longitude      float64          `json:"longitude"`
	Region         string           `json:"region"`
	PanelType      domain.PanelType `json:"panel_type"`
	MonthlyBill    float64          `json:"monthly_bill"`
	SystemSizeKW   float64          `json:"system_size_kw"`
	NumberOfPanels int              `json:"number_of_panels"`
	EstimatedCost  float64          `json:"estimated_cost"`
	AnnualSavings  float64          `json:"annual_savings"`
	PaybackYears   *float64         `json:"payback_period_years"`
	IsSuitable     bool             `json:"is_suitable"`
	CreatedAt      time.Time        `json:"created_at"`
}

func newAnalysisEvent(a domain.Analysis) AnalysisEvent {
	return AnalysisEvent{
		ID:             a.ID,
		Address:        a.Request.Address,
		Latitude:       a.Request.Latitude,
		Longitude:      a.Request.Longitude,
		Region:         a.Region,
		PanelType:      a.Request.PanelType,
		MonthlyBill:    a.Request.MonthlyBill,
		SystemSizeKW:   a.Metrics.RequiredSystemSizeKW,
		NumberOfPanels: a.Metrics.NumberOfPanels,
		EstimatedCost:  a.Metrics.EstimatedCost,
		AnnualSavings:  a.Metrics.AnnualSavings,
		PaybackYears:   a.Metrics.PaybackPeriodYears,
		IsSuitable:     a.Recommendations.IsSuitable,
		CreatedAt:      a.CreatedAt,
	}
}

// serializeToMessage marshals an analysis event into a Kafka message.
func serializeToMessage(a domain.Analysis) (kafkago.Message, error) {
	data, err := json.Marshal(newAnalysisEvent(a))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize analysis event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "panel_type", Value: []byte(a.Request.PanelType.String())},
			{Key: "region", Value: []byte(a.Region)},
			{Key: "created_at", Value: []byte(a.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}
