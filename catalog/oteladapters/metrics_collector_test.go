package oteladapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/sharedshelf/catalog-store-go/catalog/oteladapters"
)

func Test_MetricsCollector_RecordsThroughTheOTelSDK(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	collector := oteladapters.NewMetricsCollector(provider.Meter("catalogstore-test"))

	labels := map[string]string{"operation": "catalogstore.search_books"}
	collector.RecordDuration("catalogstore_query_duration_seconds", 25*time.Millisecond, labels)
	collector.IncrementCounter("catalogstore_query_errors_total", labels)
	collector.RecordValue("catalogstore_items_returned", 5, labels)

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))
	require.Len(t, resourceMetrics.ScopeMetrics, 1)

	names := make([]string, 0)
	for _, metric := range resourceMetrics.ScopeMetrics[0].Metrics {
		names = append(names, metric.Name)
	}

	assert.Contains(t, names, "catalogstore_query_duration_seconds")
	assert.Contains(t, names, "catalogstore_query_errors_total")
	assert.Contains(t, names, "catalogstore_items_returned")
}

func Test_MetricsCollector_ContextVariantsRecordAsWell(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	collector := oteladapters.NewMetricsCollector(provider.Meter("catalogstore-test"))
	ctx := context.Background()

	collector.RecordDurationContext(ctx, "duration_metric", time.Millisecond, nil)
	collector.IncrementCounterContext(ctx, "counter_metric", nil)
	collector.RecordValueContext(ctx, "value_metric", 1, nil)

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &resourceMetrics))
	require.Len(t, resourceMetrics.ScopeMetrics, 1)
	assert.Len(t, resourceMetrics.ScopeMetrics[0].Metrics, 3)
}
