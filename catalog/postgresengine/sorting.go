package postgresengine

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/sharedshelf/catalog-store-go/catalog"
)

// Sort columns are resolved through per-view whitelists: a requested column is
// only used when it maps to a known physical column, anything else falls back
// to the view's default. Requested sort input therefore never reaches the SQL
// text directly.
var (
	adminSortColumns = map[string]string{
		colTitle:   aliasBooks + "." + colTitle,
		colAuthors: aliasBooks + "." + colAuthors,
		colISBN:    aliasBooks + "." + colISBN,
	}

	listSortColumns = map[string]string{
		colTitle:   colTitle,
		colAuthors: colAuthors,
		colISBN:    colISBN,
	}
)

const (
	adminDefaultSortColumn = aliasBooks + "." + colTitle
	listDefaultSortColumn  = colTitle
)

func resolveSortColumn(whitelist map[string]string, defaultColumn string, requested string) string {
	column, ok := whitelist[strings.ToLower(strings.TrimSpace(requested))]
	if !ok {
		return defaultColumn
	}

	return column
}

func resolveOrder(column string, req catalog.PageRequest) exp.OrderedExpression {
	if req.IsDescending() {
		return goqu.I(column).Desc()
	}

	return goqu.I(column).Asc()
}
