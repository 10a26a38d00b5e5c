package postgresengine_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharedshelf/catalog-store-go/catalog"
	"github.com/sharedshelf/catalog-store-go/catalog/postgresengine"
	"github.com/sharedshelf/catalog-store-go/testutil/postgrescatalog/config"
	"github.com/sharedshelf/catalog-store-go/testutil/postgrescatalog/helper"
)

func newTestStore(t *testing.T) (postgresengine.CatalogStore, *pgxpool.Pool) {
	t.Helper()

	if os.Getenv("CATALOG_POSTGRES_DSN") == "" {
		t.Skip("set CATALOG_POSTGRES_DSN to run database tests")
	}

	pool := config.PostgresPGXPool(context.Background())
	t.Cleanup(pool.Close)

	helper.CreateCatalogSchema(t, pool)
	helper.CleanUpCatalogData(t, pool)

	store, err := postgresengine.NewCatalogStoreFromPGXPool(pool)
	require.NoError(t, err)

	return store, pool
}

func bookFilters(title string, authors string, isbn string) map[string]string {
	return map[string]string{
		catalog.FilterKeyTitle:   title,
		catalog.FilterKeyAuthors: authors,
		catalog.FilterKeyISBN:    isbn,
	}
}

func readingListFilters(title string, authors string, isbn string, isRead string) map[string]string {
	filters := bookFilters(title, authors, isbn)
	filters[catalog.FilterKeyIsRead] = isRead

	return filters
}

func Test_AdminBooks_ReturnsOnlyTheCallersBooksMatchingTheFilter(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	owner := helper.GivenUser(t, store)
	other := helper.GivenUser(t, store)

	helper.GivenBook(t, store, "Apple", "Author One", "111", owner.ID)
	helper.GivenBook(t, store, "Banana", "Author Two", "222", owner.ID)
	helper.GivenBook(t, store, "Cherry", "Author Three", "333", owner.ID)
	helper.GivenBook(t, store, "Ananas", "Author Four", "444", other.ID)

	page, err := store.AdminBooks(ctx, catalog.PageRequest{
		Filters:     bookFilters("an", "", ""),
		CallerEmail: owner.Email,
	})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "Banana", page.Items[0].Title)
	assert.Equal(t, catalog.TotalItemsInt64(1), page.TotalItems)
}

func Test_AdminBooks_FailsForUnknownCaller(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.AdminBooks(context.Background(), catalog.PageRequest{
		Filters:     bookFilters("", "", ""),
		CallerEmail: "nobody@example.com",
	})

	assert.ErrorIs(t, err, catalog.ErrUserNotFound)
}

func Test_SearchBooks_SortsDescendingByISBNAcrossOwners(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	titles := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot"}

	for i, title := range titles {
		owner := helper.GivenUser(t, store)
		isbn := string(rune('1' + i))
		helper.GivenBook(t, store, title, "Author", isbn, owner.ID)
	}

	page, err := store.SearchBooks(ctx, catalog.PageRequest{
		PageSize:      5,
		SortBy:        "isbn",
		SortDirection: catalog.SortDescending,
		Filters:       bookFilters("", "", ""),
	})
	require.NoError(t, err)

	require.Len(t, page.Items, 5)
	assert.Equal(t, catalog.TotalItemsInt64(6), page.TotalItems)
	assert.Equal(t, "Foxtrot", page.Items[0].Title)
	assert.Equal(t, "Bravo", page.Items[4].Title)
}

func Test_SearchBooks_SecondPageHoldsTheRemainder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	owner := helper.GivenUser(t, store)
	for _, title := range []string{"B1", "B2", "B3", "B4", "B5", "B6", "B7"} {
		helper.GivenBook(t, store, title, "Author", "", owner.ID)
	}

	page, err := store.SearchBooks(ctx, catalog.PageRequest{
		Page:     2,
		PageSize: 5,
		Filters:  bookFilters("", "", ""),
	})
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.Equal(t, catalog.TotalItemsInt64(7), page.TotalItems)
}

func Test_SearchBooks_MembershipFlagIsSetForAnyUsersReadingList(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	owner := helper.GivenUser(t, store)
	reader := helper.GivenUser(t, store)

	listed := helper.GivenBook(t, store, "Listed", "Author", "", owner.ID)
	helper.GivenBook(t, store, "Unlisted", "Author", "", owner.ID)

	require.NoError(t, store.AddToReadingList(ctx, reader.Email, listed.ID))

	page, err := store.SearchBooks(ctx, catalog.PageRequest{
		Filters: bookFilters("", "", ""),
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	flags := map[string]bool{}
	for _, item := range page.Items {
		flags[item.Title] = item.IsInReadingList
	}

	assert.True(t, flags["Listed"])
	assert.False(t, flags["Unlisted"])
}

func Test_ReadingListBooks_FiltersByReadState(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	user := helper.GivenUser(t, store)

	helper.GivenBookOnReadingList(t, store, user, "Read One", "Author", "", true)
	helper.GivenBookOnReadingList(t, store, user, "Unread One", "Author", "", false)
	helper.GivenBookOnReadingList(t, store, user, "Unread Two", "Author", "", false)
	helper.GivenBook(t, store, "Not Listed", "Author", "", user.ID)

	testCases := []struct {
		name          string
		isReadFilter  string
		expectedCount int
	}{
		{name: "all_returns_every_entry", isReadFilter: "all", expectedCount: 3},
		{name: "read_returns_read_entries", isReadFilter: "read", expectedCount: 1},
		{name: "not_read_returns_unread_entries", isReadFilter: "not read", expectedCount: 2},
		{name: "garbage_behaves_like_all", isReadFilter: "whatever", expectedCount: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := store.ReadingListBooks(ctx, catalog.PageRequest{
				Filters:     readingListFilters("", "", "", tc.isReadFilter),
				CallerEmail: user.Email,
			})
			require.NoError(t, err)

			assert.Len(t, page.Items, tc.expectedCount)
			assert.Equal(t, catalog.TotalItemsInt64(tc.expectedCount), page.TotalItems)
		})
	}
}

func Test_ReadingListBooks_IsScopedToTheCaller(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	user := helper.GivenUser(t, store)
	other := helper.GivenUser(t, store)

	helper.GivenBookOnReadingList(t, store, user, "Mine", "Author", "", false)
	helper.GivenBookOnReadingList(t, store, other, "Theirs", "Author", "", false)

	page, err := store.ReadingListBooks(ctx, catalog.PageRequest{
		Filters:     readingListFilters("", "", "", "all"),
		CallerEmail: user.Email,
	})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "Mine", page.Items[0].Title)
	assert.True(t, page.Items[0].IsInReadingList)
}

func Test_ReadingList_MarkReadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	user := helper.GivenUser(t, store)
	book := helper.GivenBookOnReadingList(t, store, user, "Some Book", "Author", "", false)

	isRead, err := store.IsRead(ctx, user.Email, book.ID)
	require.NoError(t, err)
	assert.False(t, isRead)

	require.NoError(t, store.MarkRead(ctx, user.Email, book.ID, true))

	isRead, err = store.IsRead(ctx, user.Email, book.ID)
	require.NoError(t, err)
	assert.True(t, isRead)

	require.NoError(t, store.MarkRead(ctx, user.Email, book.ID, false))

	isRead, err = store.IsRead(ctx, user.Email, book.ID)
	require.NoError(t, err)
	assert.False(t, isRead)
}

func Test_ReadingList_MutationsOnMissingEntriesFail(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	user := helper.GivenUser(t, store)
	book := helper.GivenBook(t, store, "Some Book", "Author", "", user.ID)

	assert.ErrorIs(t, store.MarkRead(ctx, user.Email, book.ID, true), catalog.ErrReadingListEntryNotFound)
	assert.ErrorIs(t, store.RemoveFromReadingList(ctx, user.Email, book.ID), catalog.ErrReadingListEntryNotFound)

	_, err := store.IsRead(ctx, user.Email, book.ID)
	assert.ErrorIs(t, err, catalog.ErrReadingListEntryNotFound)
}

func Test_AddToReadingList_IsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	user := helper.GivenUser(t, store)
	book := helper.GivenBook(t, store, "Some Book", "Author", "", user.ID)

	require.NoError(t, store.AddToReadingList(ctx, user.Email, book.ID))
	require.NoError(t, store.AddToReadingList(ctx, user.Email, book.ID))

	page, err := store.ReadingListBooks(ctx, catalog.PageRequest{
		Filters:     readingListFilters("", "", "", "all"),
		CallerEmail: user.Email,
	})
	require.NoError(t, err)

	assert.Len(t, page.Items, 1)
}

func Test_AddToReadingList_FailsForUnknownUser(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	user := helper.GivenUser(t, store)
	book := helper.GivenBook(t, store, "Some Book", "Author", "", user.ID)

	err := store.AddToReadingList(ctx, "nobody@example.com", book.ID)

	assert.ErrorIs(t, err, catalog.ErrUserNotFound)
}

func Test_Statistics_AggregatesAllFourCounts(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	user := helper.GivenUser(t, store)
	other := helper.GivenUser(t, store)

	helper.GivenBookOnReadingList(t, store, user, "Read", "Author", "", true)
	helper.GivenBookOnReadingList(t, store, user, "Unread", "Author", "", false)
	helper.GivenBook(t, store, "Owned Only", "Author", "", user.ID)
	helper.GivenBook(t, store, "Someone Elses", "Author", "", other.ID)

	stats, err := store.Statistics(ctx, user.Email)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalBooks)
	assert.Equal(t, int64(3), stats.UserBooks)
	assert.Equal(t, int64(2), stats.ReadingListBooks)
	assert.Equal(t, int64(1), stats.BooksRead)
}

func Test_Statistics_UserWithoutDataGetsZeroCounts(t *testing.T) {
	store, _ := newTestStore(t)

	user := helper.GivenUser(t, store)

	stats, err := store.Statistics(context.Background(), user.Email)
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.TotalBooks)
	assert.Equal(t, int64(0), stats.UserBooks)
	assert.Equal(t, int64(0), stats.ReadingListBooks)
	assert.Equal(t, int64(0), stats.BooksRead)
}

func Test_GetBookByID_RoundTripsAllColumns(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	user := helper.GivenUser(t, store)

	original, err := catalog.BuildBook(
		"The Go Programming Language", "Donovan, Kernighan", "978-0134190440", "the gopher book",
		[]byte{0x89, 0x50, 0x4e, 0x47}, "cover.png", "image/png",
		[]byte("epub bytes"), "gopl.epub", user.ID,
	)
	require.NoError(t, err)

	id, err := store.AddBook(ctx, original)
	require.NoError(t, err)

	loaded, err := store.GetBookByID(ctx, id)
	require.NoError(t, err)

	original.ID = id
	assert.Equal(t, original, loaded)
}

func Test_GetBookByID_FailsForUnknownBook(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.GetBookByID(context.Background(), 987654)

	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func Test_DeleteBook_RemovesTheBookAndItsReadingListEntries(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	owner := helper.GivenUser(t, store)
	reader := helper.GivenUser(t, store)
	book := helper.GivenBook(t, store, "Doomed", "Author", "", owner.ID)

	require.NoError(t, store.AddToReadingList(ctx, reader.Email, book.ID))

	require.NoError(t, store.DeleteBook(ctx, book.ID, owner.ID))

	_, err := store.GetBookByID(ctx, book.ID)
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)

	page, err := store.ReadingListBooks(ctx, catalog.PageRequest{
		Filters:     readingListFilters("", "", "", "all"),
		CallerEmail: reader.Email,
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func Test_DeleteBook_FailsForWrongOwner(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	owner := helper.GivenUser(t, store)
	other := helper.GivenUser(t, store)
	book := helper.GivenBook(t, store, "Kept", "Author", "", owner.ID)

	err := store.DeleteBook(ctx, book.ID, other.ID)
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)

	_, err = store.GetBookByID(ctx, book.ID)
	assert.NoError(t, err)
}

func Test_RemoveUser_ReassignsBooksAndDropsReadingList(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	user := helper.GivenUser(t, store)
	book := helper.GivenBookOnReadingList(t, store, user, "Orphaned", "Author", "", false)

	require.NoError(t, store.RemoveUser(ctx, user.Email))

	_, err := store.GetUserIDByEmail(ctx, user.Email)
	assert.ErrorIs(t, err, catalog.ErrUserNotFound)

	anonymousID, err := store.EnsureAnonymousUser(ctx)
	require.NoError(t, err)

	loaded, err := store.GetBookByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, anonymousID, loaded.AddedBy)

	page, err := store.SearchBooks(ctx, catalog.PageRequest{
		Filters: bookFilters("Orphaned", "", ""),
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.False(t, page.Items[0].IsInReadingList)
}

func Test_RemoveUser_FailsForUnknownUser(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.RemoveUser(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, catalog.ErrUserNotFound)
}

func Test_GetUserIDByEmail_IsCaseInsensitive(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	user := helper.GivenUser(t, store)

	id, err := store.GetUserIDByEmail(ctx, "  "+upperFirst(user.Email)+" ")
	require.NoError(t, err)

	assert.Equal(t, user.ID, id)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}

	return string(s[0]-'a'+'A') + s[1:]
}
