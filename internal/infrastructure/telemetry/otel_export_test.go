package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type exportedLog struct {
	body     string
	severity otellog.Severity
}

// logSink keeps exported records in memory
type logSink struct {
	mu      sync.Mutex
	records []exportedLog
}

func (s *logSink) Export(_ context.Context, records []sdklog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records = append(s.records, exportedLog{body: r.Body().AsString(), severity: r.Severity()})
	}
	return nil
}

func (s *logSink) Shutdown(context.Context) error   { return nil }
func (s *logSink) ForceFlush(context.Context) error { return nil }

func TestLoggerProvider_CoreFiltersByLevel(t *testing.T) {
	sink := &logSink{}
	lp := &LoggerProvider{
		provider: sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(sink))),
		logger:   zap.NewNop(),
	}
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	log := zap.New(lp.Core("cultivo-test", zapcore.WarnLevel)).With(zap.String("batch", "B-1"))
	log.Info("lot created")
	log.Warn("humidity above threshold")
	log.Error("ebr signature failed")

	require.Len(t, sink.records, 2)
	assert.Equal(t, "humidity above threshold", sink.records[0].body)
	assert.Equal(t, otellog.SeverityWarn, sink.records[0].severity)
	assert.Equal(t, "ebr signature failed", sink.records[1].body)
	assert.True(t, lp.IsEnabled())
}

func TestLoggerProvider_NilCore(t *testing.T) {
	var lp *LoggerProvider
	assert.False(t, lp.Core("cultivo-test", zapcore.DebugLevel).Enabled(zapcore.ErrorLevel))
}

func TestEventCounter(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	counter, err := NewEventCounter(provider.Meter("test"))
	require.NoError(t, err)
	assert.Nil(t, counter.EventTypes())

	approved := shared.NewBaseDomainEvent("ebr.approved", "EbrRecord", uuid.New(), uuid.New())
	reported := shared.NewBaseDomainEvent("deviation.reported", "Deviation", uuid.New(), uuid.New())
	require.NoError(t, counter.Handle(ctx, &approved))
	require.NoError(t, counter.Handle(ctx, &approved))
	require.NoError(t, counter.Handle(ctx, &reported))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)
	m := rm.ScopeMetrics[0].Metrics[0]
	assert.Equal(t, "cultivo.domain_events", m.Name)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "unexpected aggregation %T", m.Data)
	got := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value("event_type")
		got[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"ebr.approved": 2, "deviation.reported": 1}, got)
}
