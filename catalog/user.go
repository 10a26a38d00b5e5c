package catalog

import (
	"errors"
	"strings"
)

// AnonymousUserName is the well-known user name of the sentinel owner that
// books are reassigned to when their original uploader is removed.
const AnonymousUserName = "anonymous"

var (
	// ErrEmptyUserName is returned when a user is built without a user name.
	ErrEmptyUserName = errors.New("user name must not be empty")

	// ErrEmptyUserEmail is returned when a user is built without an email.
	ErrEmptyUserEmail = errors.New("user email must not be empty")
)

// User represents one identity row. Email is always stored lower-cased;
// NormalizeEmail is applied at every boundary where an email enters the
// system, so case-variant duplicates are impossible.
type User struct {
	ID           int64
	UserName     string
	Email        string
	PasswordHash string
	Salt         string
}

// ReadingListEntry associates a user with a book. Its presence means
// "in the reading list" regardless of the IsRead flag; at most one entry
// exists per (user, book) pair.
type ReadingListEntry struct {
	ID     int64
	UserID int64
	BookID int64
	IsRead bool
}

// NormalizeEmail trims and lower-cases an email so it can serve as a
// case-insensitive identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BuildUser creates a new User with validation, normalizing the email at
// construction time.
func BuildUser(userName string, email string, passwordHash string, salt string) (User, error) {
	if strings.TrimSpace(userName) == "" {
		return User{}, ErrEmptyUserName
	}

	normalizedEmail := NormalizeEmail(email)
	if normalizedEmail == "" {
		return User{}, ErrEmptyUserEmail
	}

	user := User{
		UserName:     userName,
		Email:        normalizedEmail,
		PasswordHash: passwordHash,
		Salt:         salt,
	}

	return user, nil
}
