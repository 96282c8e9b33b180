package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func testAnalysis() domain.Analysis {
	payback := 9.8
	return domain.Analysis{
		ID:     "5f0c7f7e-3d55-4a53-9a43-8d6f2e0f4a11",
		Region: "Gujarat",
		Request: domain.AnalysisRequest{
			Address:     "Satellite, Ahmedabad",
			Latitude:    23.03,
			Longitude:   72.52,
			MonthlyBill: 5200,
			PanelType:   domain.PanelPremium,
		},
		Metrics: domain.SolarMetrics{
			RequiredSystemSizeKW: 9.9,
			NumberOfPanels:       22,
			EstimatedCost:        643500,
			AnnualSavings:        62400,
			PaybackPeriodYears:   &payback,
		},
		Recommendations: domain.Recommendations{IsSuitable: true},
		CreatedAt:       time.Date(2026, 5, 2, 10, 15, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	a := testAnalysis()

	msg, err := serializeToMessage(a)
	require.NoError(t, err)

	assert.Equal(t, []byte(a.ID), msg.Key)

	var ev AnalysisEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, a.ID, ev.ID)
	assert.Equal(t, domain.PanelPremium, ev.PanelType)
	assert.Equal(t, 22, ev.NumberOfPanels)
	require.NotNil(t, ev.PaybackYears)
	assert.Equal(t, 9.8, *ev.PaybackYears)
	assert.True(t, ev.IsSuitable)
	assert.Contains(t, string(msg.Value), `"panel_type":"premium"`)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "panel_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("premium"), msg.Headers[0].Value)
	assert.Equal(t, "region", msg.Headers[1].Key)
	assert.Equal(t, []byte("Gujarat"), msg.Headers[1].Value)
	assert.Equal(t, "created_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2026-05-02T10:15:00Z"), msg.Headers[2].Value)
}

func TestSerializeToMessage_NoPayback(t *testing.T) {
	a := testAnalysis()
	a.Metrics.PaybackPeriodYears = nil

	msg, err := serializeToMessage(a)
	require.NoError(t, err)
	assert.Contains(t, string(msg.Value), `"payback_period_years":null`)
}

func TestPublisher_PublishAnalysis(t *testing.T) {
	w := &recordingWriter{}
	p := &Publisher{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, p.PublishAnalysis(context.Background(), testAnalysis()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte(testAnalysis().ID), w.msgs[0].Key)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_WriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("leader not available")}
	p := &Publisher{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := p.PublishAnalysis(context.Background(), testAnalysis())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
	assert.Contains(t, err.Error(), testAnalysis().ID)
}
