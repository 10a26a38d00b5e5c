package postgresengine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharedshelf/catalog-store-go/catalog"
)

func storeForQueryBuilding() CatalogStore {
	return CatalogStore{
		usersTableName:      defaultUsersTableName,
		booksTableName:      defaultBooksTableName,
		usersBooksTableName: defaultUsersBooksTableName,
	}
}

func requestWithFilters(filters map[string]string) catalog.PageRequest {
	return catalog.PageRequest{
		Page:        1,
		PageSize:    10,
		Filters:     filters,
		CallerEmail: "reader@example.com",
	}.Normalize()
}

func emptyBookFilters() map[string]string {
	return map[string]string{
		catalog.FilterKeyTitle:   "",
		catalog.FilterKeyAuthors: "",
		catalog.FilterKeyISBN:    "",
	}
}

func Test_BuildAdminBooksQueries_ScopesToOwnerAndSortsByDefault(t *testing.T) {
	store := storeForQueryBuilding()
	req := requestWithFilters(emptyBookFilters())

	queries, err := store.buildAdminBooksQueries(req, 42)
	require.NoError(t, err)

	assert.Contains(t, queries.items.SQL, `"b"."addedBy"`)
	assert.Contains(t, queries.items.SQL, `ORDER BY "b"."title" ASC`)
	assert.Contains(t, queries.items.SQL, "LIMIT")
	assert.Contains(t, queries.items.SQL, "OFFSET")
	assert.Contains(t, queries.items.Args, int64(42))

	assert.Contains(t, queries.count.SQL, "COUNT(1)")
	assert.NotContains(t, queries.count.SQL, "ORDER BY")
	assert.NotContains(t, queries.count.SQL, "LIMIT")
}

func Test_BuildAdminBooksQueries_SortWhitelist(t *testing.T) {
	testCases := []struct {
		name          string
		sortBy        string
		sortDirection string
		expectedOrder string
	}{
		{name: "default_is_title_ascending", sortBy: "", sortDirection: "", expectedOrder: `ORDER BY "b"."title" ASC`},
		{name: "authors_is_whitelisted", sortBy: "authors", sortDirection: "", expectedOrder: `ORDER BY "b"."authors" ASC`},
		{name: "isbn_is_whitelisted", sortBy: "isbn", sortDirection: "", expectedOrder: `ORDER BY "b"."isbn" ASC`},
		{name: "unknown_column_falls_back_to_title", sortBy: "cover; DROP TABLE books", sortDirection: "", expectedOrder: `ORDER BY "b"."title" ASC`},
		{name: "descending_needs_exact_direction", sortBy: "title", sortDirection: "Descending", expectedOrder: `ORDER BY "b"."title" DESC`},
		{name: "lowercase_direction_sorts_ascending", sortBy: "title", sortDirection: "descending", expectedOrder: `ORDER BY "b"."title" ASC`},
	}

	store := storeForQueryBuilding()

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := requestWithFilters(emptyBookFilters())
			req.SortBy = tc.sortBy
			req.SortDirection = tc.sortDirection

			queries, err := store.buildAdminBooksQueries(req, 1)
			require.NoError(t, err)

			assert.Contains(t, queries.items.SQL, tc.expectedOrder)
		})
	}
}

func Test_BuildAdminBooksQueries_FilterValuesAreBoundAsParameters(t *testing.T) {
	store := storeForQueryBuilding()

	filters := emptyBookFilters()
	filters[catalog.FilterKeyTitle] = `go'; DROP TABLE books; --`
	req := requestWithFilters(filters)

	queries, err := store.buildAdminBooksQueries(req, 1)
	require.NoError(t, err)

	assert.NotContains(t, queries.items.SQL, "DROP TABLE")
	assert.Contains(t, queries.items.Args, `%go'; DROP TABLE books; --%`)
	assert.Contains(t, queries.count.Args, `%go'; DROP TABLE books; --%`)
}

func Test_BuildAdminBooksQueries_ISBNPredicateOnlyWhenSupplied(t *testing.T) {
	store := storeForQueryBuilding()

	t.Run("empty_isbn_adds_no_predicate", func(t *testing.T) {
		queries, err := store.buildAdminBooksQueries(requestWithFilters(emptyBookFilters()), 1)
		require.NoError(t, err)

		assert.NotContains(t, queries.count.SQL, "isbn")
		// owner id plus the two always-on LIKE patterns
		assert.Len(t, queries.count.Args, 3)
	})

	t.Run("supplied_isbn_adds_a_like_predicate", func(t *testing.T) {
		filters := emptyBookFilters()
		filters[catalog.FilterKeyISBN] = "978"

		queries, err := store.buildAdminBooksQueries(requestWithFilters(filters), 1)
		require.NoError(t, err)

		assert.Contains(t, queries.count.SQL, `"b"."isbn"`)
		assert.Contains(t, queries.count.Args, "%978%")
	})
}

func Test_BuildAdminBooksQueries_ItemAndCountShareThePredicate(t *testing.T) {
	store := storeForQueryBuilding()

	filters := emptyBookFilters()
	filters[catalog.FilterKeyTitle] = "go"
	filters[catalog.FilterKeyAuthors] = "pike"
	filters[catalog.FilterKeyISBN] = "978"
	req := requestWithFilters(filters)

	queries, err := store.buildAdminBooksQueries(req, 7)
	require.NoError(t, err)

	itemWhere := whereClauseOf(t, queries.items.SQL)
	countWhere := whereClauseOf(t, queries.count.SQL)

	assert.Equal(t, countWhere, itemWhere)
	require.GreaterOrEqual(t, len(queries.items.Args), len(queries.count.Args))
	assert.Equal(t, queries.count.Args, queries.items.Args[:len(queries.count.Args)])
}

// whereClauseOf extracts the WHERE clause up to ORDER BY / LIMIT so the item
// and count statements can be compared.
func whereClauseOf(t *testing.T, sqlText string) string {
	t.Helper()

	_, after, found := strings.Cut(sqlText, " WHERE ")
	require.True(t, found, "statement has no WHERE clause: %s", sqlText)

	for _, stop := range []string{" ORDER BY ", " LIMIT ", " OFFSET "} {
		if before, _, ok := strings.Cut(after, stop); ok {
			after = before
		}
	}

	return after
}

func Test_BuildSearchBooksQueries_JoinsMembershipUncorrelated(t *testing.T) {
	store := storeForQueryBuilding()
	req := requestWithFilters(emptyBookFilters())

	queries, err := store.buildSearchBooksQueries(req)
	require.NoError(t, err)

	assert.Contains(t, queries.items.SQL, "LEFT JOIN")
	assert.Contains(t, queries.items.SQL, inListFragment)
	assert.Contains(t, queries.items.SQL, `AS "isInReadingList"`)

	// The membership flag join is not scoped to the caller.
	assert.NotContains(t, queries.items.Args, "reader@example.com")
	assert.NotContains(t, queries.count.Args, "reader@example.com")
}

func Test_BuildSearchBooksQueries_DefaultSortIsUnqualifiedTitle(t *testing.T) {
	store := storeForQueryBuilding()
	req := requestWithFilters(emptyBookFilters())
	req.SortBy = "file"

	queries, err := store.buildSearchBooksQueries(req)
	require.NoError(t, err)

	assert.Contains(t, queries.items.SQL, `ORDER BY "title" ASC`)
}

func Test_BuildSearchBooksQueries_ExcludesBlobColumns(t *testing.T) {
	store := storeForQueryBuilding()

	queries, err := store.buildSearchBooksQueries(requestWithFilters(emptyBookFilters()))
	require.NoError(t, err)

	assert.NotContains(t, queries.items.SQL, `"cover",`)
	assert.NotContains(t, queries.items.SQL, `"file"`)
}

func Test_BuildReadingListBooksQueries_ScopesToCallerEmail(t *testing.T) {
	store := storeForQueryBuilding()

	filters := emptyBookFilters()
	filters[catalog.FilterKeyIsRead] = "all"
	req := requestWithFilters(filters)

	queries, err := store.buildReadingListBooksQueries(req)
	require.NoError(t, err)

	assert.Contains(t, queries.items.SQL, `"u"."email"`)
	assert.Contains(t, queries.items.Args, "reader@example.com")
	assert.Contains(t, queries.count.Args, "reader@example.com")
}

func Test_BuildReadingListBooksQueries_ReadStatePredicate(t *testing.T) {
	testCases := []struct {
		name             string
		isReadFilter     string
		expectedFragment string
		noPredicate      bool
	}{
		{name: "read_restricts_to_read_entries", isReadFilter: "read", expectedFragment: `"ub"."isRead" IS TRUE`},
		{name: "not_read_restricts_to_unread_entries", isReadFilter: "not read", expectedFragment: `"ub"."isRead" IS FALSE`},
		{name: "all_adds_no_predicate", isReadFilter: "all", noPredicate: true},
		{name: "empty_adds_no_predicate", isReadFilter: "", noPredicate: true},
		{name: "garbage_adds_no_predicate", isReadFilter: "whatever", noPredicate: true},
	}

	store := storeForQueryBuilding()

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			filters := emptyBookFilters()
			filters[catalog.FilterKeyIsRead] = tc.isReadFilter
			req := requestWithFilters(filters)

			queries, err := store.buildReadingListBooksQueries(req)
			require.NoError(t, err)

			if tc.noPredicate {
				assert.NotContains(t, queries.count.SQL, `"ub"."isRead"`)

				return
			}

			assert.Contains(t, queries.count.SQL, tc.expectedFragment)
			assert.Contains(t, queries.items.SQL, tc.expectedFragment)
		})
	}
}

func Test_Views_FailOnMissingFilterKeys(t *testing.T) {
	store := storeForQueryBuilding()
	ctx := context.Background()

	t.Run("admin_view_requires_the_isbn_key", func(t *testing.T) {
		req := catalog.PageRequest{
			Filters: map[string]string{
				catalog.FilterKeyTitle:   "",
				catalog.FilterKeyAuthors: "",
			},
			CallerEmail: "reader@example.com",
		}

		_, err := store.AdminBooks(ctx, req)

		assert.ErrorIs(t, err, catalog.ErrMissingFilterKey)
	})

	t.Run("search_view_requires_the_title_key", func(t *testing.T) {
		req := catalog.PageRequest{
			Filters: map[string]string{
				catalog.FilterKeyAuthors: "",
				catalog.FilterKeyISBN:    "",
			},
		}

		_, err := store.SearchBooks(ctx, req)

		assert.ErrorIs(t, err, catalog.ErrMissingFilterKey)
	})

	t.Run("reading_list_view_requires_the_read_state_key", func(t *testing.T) {
		req := catalog.PageRequest{
			Filters:     emptyBookFilters(),
			CallerEmail: "reader@example.com",
		}

		_, err := store.ReadingListBooks(ctx, req)

		assert.ErrorIs(t, err, catalog.ErrMissingFilterKey)
	})
}

func Test_Views_FailOnMissingCallerEmail(t *testing.T) {
	store := storeForQueryBuilding()
	ctx := context.Background()

	t.Run("admin_view_needs_a_caller", func(t *testing.T) {
		req := catalog.PageRequest{Filters: emptyBookFilters()}

		_, err := store.AdminBooks(ctx, req)

		assert.ErrorIs(t, err, catalog.ErrMissingCallerEmail)
	})

	t.Run("reading_list_view_needs_a_caller", func(t *testing.T) {
		filters := emptyBookFilters()
		filters[catalog.FilterKeyIsRead] = "all"
		req := catalog.PageRequest{Filters: filters}

		_, err := store.ReadingListBooks(ctx, req)

		assert.ErrorIs(t, err, catalog.ErrMissingCallerEmail)
	})

	t.Run("statistics_needs_a_caller", func(t *testing.T) {
		_, err := store.Statistics(ctx, "   ")

		assert.ErrorIs(t, err, catalog.ErrMissingCallerEmail)
	})
}

func Test_BuildStatisticsQueries_ProducesFourCountStatements(t *testing.T) {
	store := storeForQueryBuilding()

	queries, err := store.buildStatisticsQueries("reader@example.com")
	require.NoError(t, err)

	require.Len(t, queries, 4)
	for _, query := range queries {
		assert.Contains(t, query.SQL, "COUNT(1)")
	}

	// The total count is catalog-wide, the other three are user-scoped.
	assert.Empty(t, queries[0].Args)
	assert.Contains(t, queries[1].Args, "reader@example.com")
	assert.Contains(t, queries[2].Args, "reader@example.com")
	assert.Contains(t, queries[3].Args, "reader@example.com")
}

func Test_ResolveSortColumn(t *testing.T) {
	assert.Equal(t, "b.authors", resolveSortColumn(adminSortColumns, adminDefaultSortColumn, "Authors"))
	assert.Equal(t, "b.title", resolveSortColumn(adminSortColumns, adminDefaultSortColumn, "  title "))
	assert.Equal(t, "b.title", resolveSortColumn(adminSortColumns, adminDefaultSortColumn, "password"))
	assert.Equal(t, "title", resolveSortColumn(listSortColumns, listDefaultSortColumn, ""))
}
