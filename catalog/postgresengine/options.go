package postgresengine

import (
	"strings"

	"github.com/sharedshelf/catalog-store-go/catalog"
)

// Option configures a CatalogStore during construction.
type Option func(*CatalogStore) error

// WithTableNames overrides the default table names for users, books and
// reading-list memberships. All three names must be non-empty.
func WithTableNames(usersTable string, booksTable string, usersBooksTable string) Option {
	return func(cs *CatalogStore) error {
		if strings.TrimSpace(usersTable) == "" ||
			strings.TrimSpace(booksTable) == "" ||
			strings.TrimSpace(usersBooksTable) == "" {

			return catalog.ErrEmptyTableNameSupplied
		}

		cs.usersTableName = usersTable
		cs.booksTableName = booksTable
		cs.usersBooksTableName = usersBooksTable

		return nil
	}
}

// WithLogger enables operational logging with the supplied logger.
func WithLogger(logger catalog.Logger) Option {
	return func(cs *CatalogStore) error {
		cs.logger = logger

		return nil
	}
}

// WithContextualLogger enables operational logging with a context-aware
// logger, used for trace correlation.
func WithContextualLogger(logger catalog.ContextualLogger) Option {
	return func(cs *CatalogStore) error {
		cs.contextualLogger = logger

		return nil
	}
}

// WithMetrics enables metrics collection with the supplied collector.
func WithMetrics(collector catalog.MetricsCollector) Option {
	return func(cs *CatalogStore) error {
		cs.metricsCollector = collector

		return nil
	}
}

// WithTracing enables distributed tracing with the supplied collector.
func WithTracing(collector catalog.TracingCollector) Option {
	return func(cs *CatalogStore) error {
		cs.tracingCollector = collector

		return nil
	}
}
