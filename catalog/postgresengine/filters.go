package postgresengine

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/sharedshelf/catalog-store-go/catalog"
)

func likePattern(value string) string {
	return "%" + value + "%"
}

// bookFilterExpressions builds the filter predicate shared by all book views.
// Title and authors always filter, an empty value simply matches every row,
// so the statement shape stays stable across requests. The isbn predicate is
// only added when a value was supplied. All values are bound as parameters.
func bookFilterExpressions(req catalog.PageRequest, titleColumn exp.IdentifierExpression, authorsColumn exp.IdentifierExpression, isbnColumn exp.IdentifierExpression) []exp.Expression {
	expressions := []exp.Expression{
		titleColumn.Like(likePattern(req.Filter(catalog.FilterKeyTitle))),
		authorsColumn.Like(likePattern(req.Filter(catalog.FilterKeyAuthors))),
	}

	if isbn := req.Filter(catalog.FilterKeyISBN); isbn != "" {
		expressions = append(expressions, isbnColumn.Like(likePattern(isbn)))
	}

	return expressions
}

// readStateExpressions narrows a reading-list query by read state. An
// unrecognized filter value means no narrowing at all.
func readStateExpressions(req catalog.PageRequest) []exp.Expression {
	switch catalog.ResolveReadStateFilter(req.Filter(catalog.FilterKeyIsRead)) {
	case catalog.ReadStateRead:
		return []exp.Expression{goqu.T(aliasUsersBooks).Col(colIsRead).IsTrue()}
	case catalog.ReadStateNotRead:
		return []exp.Expression{goqu.T(aliasUsersBooks).Col(colIsRead).IsFalse()}
	default:
		return nil
	}
}
