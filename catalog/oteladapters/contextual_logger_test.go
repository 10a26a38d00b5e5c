package oteladapters_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sharedshelf/catalog-store-go/catalog/oteladapters"
	"github.com/sharedshelf/catalog-store-go/testutil/postgrescatalog/helper"
)

func Test_SlogBridgeLoggerWithHandler_ForwardsRecords(t *testing.T) {
	spy := helper.NewLogHandlerSpy(false)
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(spy)
	ctx := context.Background()

	logger.DebugContext(ctx, "debug message", "key", "value")
	logger.InfoContext(ctx, "info message")
	logger.WarnContext(ctx, "warn message")
	logger.ErrorContext(ctx, "error message")

	assert.Equal(t, 4, spy.RecordCount())
	assert.True(t, spy.HasDebugLog("debug message"))
	assert.True(t, spy.HasErrorLog("error message"))
}

func Test_SlogBridgeLoggerWithHandler_KeepsAttrs(t *testing.T) {
	spy := helper.NewLogHandlerSpy(false)
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(spy)

	logger.InfoContext(context.Background(), "with attrs", "operation", "catalogstore.search_books")

	records := spy.Records()
	assert.Len(t, records, 1)

	found := false
	records[0].Attrs(func(attr slog.Attr) bool {
		if attr.Key == "operation" && attr.Value.String() == "catalogstore.search_books" {
			found = true
			return false
		}

		return true
	})

	assert.True(t, found)
}
