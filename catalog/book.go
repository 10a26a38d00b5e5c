package catalog

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyBookTitle is returned when a book is built without a title.
	ErrEmptyBookTitle = errors.New("book title must not be empty")

	// ErrEmptyBookAuthors is returned when a book is built without authors.
	ErrEmptyBookAuthors = errors.New("book authors must not be empty")

	// ErrEmptyBookFile is returned when a book is built without content bytes.
	ErrEmptyBookFile = errors.New("book file must not be empty")

	// ErrEmptyBookFileName is returned when a book is built without a file name.
	ErrEmptyBookFileName = errors.New("book file name must not be empty")
)

// Book represents one catalog row, including the binary content payload.
// The cover fields are present as a unit or absent as a unit; Cover is
// either nil or non-empty, never an empty slice.
type Book struct {
	ID          int64
	Title       string
	Authors     string
	ISBN        string
	Description string
	Cover       []byte
	CoverName   string
	CoverMime   string
	File        []byte
	FileName    string
	AddedBy     int64
}

// BookListItem is the row shape returned by the paged catalog views.
// It carries book metadata only, never the content bytes.
//
// IsInReadingList and IsRead are populated by the search and reading-list
// views; the admin view has no reading-list join and leaves both false.
type BookListItem struct {
	ID              int64
	Title           string
	Authors         string
	ISBN            string
	Description     string
	CoverName       string
	CoverMime       string
	AddedBy         int64
	IsInReadingList bool
	IsRead          bool
}

// NormalizeCover maps an empty cover byte slice to nil so that "no cover"
// has a single representation. Non-empty slices pass through unchanged.
func NormalizeCover(cover []byte) []byte {
	if len(cover) == 0 {
		return nil
	}

	return cover
}

// BuildBook creates a new Book with validation. The cover is normalized at
// construction time; when no cover bytes are supplied the cover name and
// MIME descriptor are cleared as well, keeping the cover fields a unit.
func BuildBook(
	title string,
	authors string,
	isbn string,
	description string,
	cover []byte,
	coverName string,
	coverMime string,
	file []byte,
	fileName string,
	addedBy int64,
) (Book, error) {

	if strings.TrimSpace(title) == "" {
		return Book{}, ErrEmptyBookTitle
	}

	if strings.TrimSpace(authors) == "" {
		return Book{}, ErrEmptyBookAuthors
	}

	if len(file) == 0 {
		return Book{}, ErrEmptyBookFile
	}

	if strings.TrimSpace(fileName) == "" {
		return Book{}, ErrEmptyBookFileName
	}

	normalizedCover := NormalizeCover(cover)
	if normalizedCover == nil {
		coverName = ""
		coverMime = ""
	}

	book := Book{
		Title:       title,
		Authors:     authors,
		ISBN:        isbn,
		Description: description,
		Cover:       normalizedCover,
		CoverName:   coverName,
		CoverMime:   coverMime,
		File:        file,
		FileName:    fileName,
		AddedBy:     addedBy,
	}

	return book, nil
}
