package helper

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sharedshelf/catalog-store-go/catalog"
	"github.com/sharedshelf/catalog-store-go/catalog/postgresengine"
)

// GivenUniqueEmail returns an email address that will not collide with any
// other fixture in the same test run.
func GivenUniqueEmail(t testing.TB) string {
	t.Helper()

	return fmt.Sprintf("reader-%s@example.com", uuid.New().String()[:8])
}

// GivenUser seeds one user through the store API and returns it with its
// generated id. The user name and email are unique per call.
func GivenUser(t testing.TB, store postgresengine.CatalogStore) catalog.User {
	t.Helper()

	suffix := uuid.New().String()[:8]

	user, err := catalog.BuildUser(
		"reader-"+suffix,
		fmt.Sprintf("reader-%s@example.com", suffix),
		"password-hash",
		"salt",
	)
	require.NoError(t, err, "building fixture user")

	id, err := store.AddUser(context.Background(), user)
	require.NoError(t, err, "seeding fixture user")

	user.ID = id

	return user
}

// GivenBook seeds one book owned by the given user and returns it with its
// generated id.
func GivenBook(t testing.TB, store postgresengine.CatalogStore, title string, authors string, isbn string, ownerID int64) catalog.Book {
	t.Helper()

	book, err := catalog.BuildBook(
		title,
		authors,
		isbn,
		"description of "+title,
		nil,
		"",
		"",
		[]byte("book content"),
		title+".epub",
		ownerID,
	)
	require.NoError(t, err, "building fixture book")

	id, err := store.AddBook(context.Background(), book)
	require.NoError(t, err, "seeding fixture book")

	book.ID = id

	return book
}

// GivenBookOnReadingList seeds a book and puts it on the user's reading list,
// optionally marked as read.
func GivenBookOnReadingList(
	t testing.TB,
	store postgresengine.CatalogStore,
	user catalog.User,
	title string,
	authors string,
	isbn string,
	isRead bool,
) catalog.Book {

	t.Helper()
	ctx := context.Background()

	book := GivenBook(t, store, title, authors, isbn, user.ID)

	err := store.AddToReadingList(ctx, user.Email, book.ID)
	require.NoError(t, err, "seeding reading-list entry")

	if isRead {
		err = store.MarkRead(ctx, user.Email, book.ID, true)
		require.NoError(t, err, "marking fixture entry as read")
	}

	return book
}
