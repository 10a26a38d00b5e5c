// Package helper provides test helpers for catalog store testing: schema
// setup and cleanup, Given* fixture builders that seed data through the
// store's own API, and observability spies for asserting on logs, metrics
// and trace spans.
package helper
