package user

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckPassword(t *testing.T) {
	require.Empty(t, CheckPassword("Secret#1"))
	require.Equal(t, []string{
		"Passwords must have at least one non alphanumeric character.",
		"Passwords must have at least one digit ('0'-'9').",
		"Passwords must have at least one uppercase ('A'-'Z').",
	}, CheckPassword("password"))
	require.Equal(t, []string{
		"Passwords must be at least 6 characters.",
		"Passwords must have at least one lowercase ('a'-'z').",
		"Passwords must have at least one uppercase ('A'-'Z').",
	}, CheckPassword("1#"))
}
