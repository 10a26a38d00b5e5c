package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharedshelf/catalog-store-go/catalog"
)

func Test_BuildUser_NormalizesTheEmail(t *testing.T) {
	user, err := catalog.BuildUser("gopher", "  Gopher@Example.COM ", "hash", "salt")
	require.NoError(t, err)

	assert.Equal(t, "gopher@example.com", user.Email)
}

func Test_BuildUser_ValidatesRequiredFields(t *testing.T) {
	testCases := []struct {
		name        string
		userName    string
		email       string
		expectedErr error
	}{
		{name: "empty_user_name_fails", userName: "", email: "gopher@example.com", expectedErr: catalog.ErrEmptyUserName},
		{name: "blank_user_name_fails", userName: "  ", email: "gopher@example.com", expectedErr: catalog.ErrEmptyUserName},
		{name: "empty_email_fails", userName: "gopher", email: "", expectedErr: catalog.ErrEmptyUserEmail},
		{name: "blank_email_fails", userName: "gopher", email: "   ", expectedErr: catalog.ErrEmptyUserEmail},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := catalog.BuildUser(tc.userName, tc.email, "hash", "salt")

			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_NormalizeEmail(t *testing.T) {
	assert.Equal(t, "gopher@example.com", catalog.NormalizeEmail(" Gopher@Example.Com "))
	assert.Equal(t, "", catalog.NormalizeEmail("   "))
}
