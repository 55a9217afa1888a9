package telemetry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type traceModel struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func attr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestRegisterDBTracing(t *testing.T) {
	recorder := withRecorder(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&traceModel{}))

	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Nanosecond,
		DBName:          "cultivo",
	}, zap.NewNop()))

	ctx, root := otel.Tracer("test").Start(context.Background(), "request")
	require.NoError(t, db.WithContext(ctx).Create(&traceModel{Name: "veg room"}).Error)
	root.End()

	var dbSpan sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		if s.Name() != "request" {
			dbSpan = s
		}
	}
	require.NotNil(t, dbSpan, "expected a span from otelgorm")
	assert.Equal(t, root.SpanContext().TraceID(), dbSpan.SpanContext().TraceID())

	table, ok := attr(dbSpan, "db.sql.table")
	require.True(t, ok)
	assert.Equal(t, "trace_models", table.AsString())
	slow, ok := attr(dbSpan, "db.slow_query")
	require.True(t, ok)
	assert.True(t, slow.AsBool())
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	assert.NoError(t, RegisterDBTracing(db, DBTracingConfig{}, zap.NewNop()))
}

func TestStartServiceSpan(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartServiceSpan(context.Background(), "ebr", "approve", attribute.String("ebr.id", "x"))
	EndSpan(span, errors.New("invalid state"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "ebr.approve", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	v, ok := attr(ended[0], "ebr.id")
	require.True(t, ok)
	assert.Equal(t, "x", v.AsString())
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	done := m.Begin()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))
	done(http.MethodGet, "/api/v1/qms/ebr", http.StatusOK)

	m.Begin()(http.MethodGet, "", http.StatusNotFound)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/qms/ebr", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestEventMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEventMetrics(reg)

	ev := shared.NewBaseDomainEvent("ebr.approved", "EbrRecord", uuid.New(), uuid.New())
	require.NoError(t, m.Handle(context.Background(), &ev))
	require.NoError(t, m.Handle(context.Background(), &ev))

	assert.Nil(t, m.EventTypes())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("ebr.approved")))
}

func TestRegisterDBPoolMetrics(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterDBPoolMetrics(reg, "privileged", sqlDB))
	assert.Error(t, RegisterDBPoolMetrics(reg, "privileged", sqlDB))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
