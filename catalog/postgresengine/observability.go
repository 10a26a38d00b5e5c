package postgresengine

import (
	"context"
	"strconv"
	"time"

	"github.com/sharedshelf/catalog-store-go/catalog"
)

// Observability helpers. All collectors are optional: every helper nil-checks
// its collector so the store works without any observability wiring.

func toMilliseconds(duration time.Duration) float64 {
	return float64(duration.Nanoseconds()) / 1e6
}

func (cs CatalogStore) logDebug(ctx context.Context, msg string, args ...any) {
	if cs.contextualLogger != nil {
		cs.contextualLogger.DebugContext(ctx, msg, args...)

		return
	}

	if cs.logger != nil {
		cs.logger.Debug(msg, args...)
	}
}

func (cs CatalogStore) logError(ctx context.Context, msg string, err error) {
	if cs.contextualLogger != nil {
		cs.contextualLogger.ErrorContext(ctx, msg, logAttrError, err.Error())

		return
	}

	if cs.logger != nil {
		cs.logger.Error(msg, logAttrError, err.Error())
	}
}

func (cs CatalogStore) logQueryWithDuration(ctx context.Context, operation string, duration time.Duration, itemCount int) {
	cs.logDebug(ctx, logMsgPagedQueryCompleted,
		logAttrOperation, operation,
		logAttrDurationMS, toMilliseconds(duration),
		"items", itemCount,
	)
}

func (cs CatalogStore) logStatementWithDuration(ctx context.Context, operation string, duration time.Duration) {
	cs.logDebug(ctx, logMsgStatementCompleted,
		logAttrOperation, operation,
		logAttrDurationMS, toMilliseconds(duration),
	)
}

func (cs CatalogStore) recordDurationMetrics(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if cs.metricsCollector == nil {
		return
	}

	if contextual, ok := cs.metricsCollector.(catalog.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)

		return
	}

	cs.metricsCollector.RecordDuration(metric, duration, labels)
}

func (cs CatalogStore) incrementCounterMetrics(ctx context.Context, metric string, labels map[string]string) {
	if cs.metricsCollector == nil {
		return
	}

	if contextual, ok := cs.metricsCollector.(catalog.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)

		return
	}

	cs.metricsCollector.IncrementCounter(metric, labels)
}

func (cs CatalogStore) recordValueMetrics(ctx context.Context, metric string, value float64, labels map[string]string) {
	if cs.metricsCollector == nil {
		return
	}

	if contextual, ok := cs.metricsCollector.(catalog.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)

		return
	}

	cs.metricsCollector.RecordValue(metric, value, labels)
}

func (cs CatalogStore) startTraceSpan(ctx context.Context, operation string) (context.Context, catalog.SpanContext) {
	if cs.tracingCollector == nil {
		return ctx, nil
	}

	return cs.tracingCollector.StartSpan(ctx, operation, map[string]string{
		logAttrOperation: operation,
	})
}

func (cs CatalogStore) finishTraceSpan(span catalog.SpanContext, status string, attrs map[string]string) {
	if cs.tracingCollector == nil || span == nil {
		return
	}

	cs.tracingCollector.FinishSpan(span, status, attrs)
}

// observeQuerySuccess reports a completed paged query to all configured collectors.
func (cs CatalogStore) observeQuerySuccess(
	ctx context.Context,
	span catalog.SpanContext,
	operation string,
	duration time.Duration,
	itemCount int,
) {
	cs.logQueryWithDuration(ctx, operation, duration, itemCount)
	cs.recordDurationMetrics(ctx, metricQueryDuration, duration, map[string]string{
		logAttrOperation: operation,
		"status":         statusSuccess,
	})
	cs.recordValueMetrics(ctx, metricItemsReturned, float64(itemCount), map[string]string{
		logAttrOperation: operation,
	})
	cs.finishTraceSpan(span, statusSuccess, map[string]string{
		"items": strconv.Itoa(itemCount),
	})
}

// observeQueryError reports a failed paged query to all configured collectors.
func (cs CatalogStore) observeQueryError(ctx context.Context, span catalog.SpanContext, operation string, err error) {
	cs.logError(ctx, operation, err)
	cs.incrementCounterMetrics(ctx, metricQueryErrors, map[string]string{
		logAttrOperation: operation,
		"status":         statusError,
	})
	cs.finishTraceSpan(span, statusError, map[string]string{
		logAttrError: err.Error(),
	})
}

// observeStatementSuccess reports a completed write statement to all configured collectors.
func (cs CatalogStore) observeStatementSuccess(
	ctx context.Context,
	span catalog.SpanContext,
	operation string,
	duration time.Duration,
) {
	cs.logStatementWithDuration(ctx, operation, duration)
	cs.recordDurationMetrics(ctx, metricStatementDuration, duration, map[string]string{
		logAttrOperation: operation,
		"status":         statusSuccess,
	})
	cs.finishTraceSpan(span, statusSuccess, nil)
}

// observeStatementError reports a failed write statement to all configured collectors.
func (cs CatalogStore) observeStatementError(ctx context.Context, span catalog.SpanContext, operation string, err error) {
	cs.logError(ctx, operation, err)
	cs.incrementCounterMetrics(ctx, metricStatementErrors, map[string]string{
		logAttrOperation: operation,
		"status":         statusError,
	})
	cs.finishTraceSpan(span, statusError, map[string]string{
		logAttrError: err.Error(),
	})
}
