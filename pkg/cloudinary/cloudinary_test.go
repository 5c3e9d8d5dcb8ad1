package cloudinary

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPublicID(t *testing.T) {
	cases := map[string]string{
		"pod-grading-r12-20260101-101500.json": "pod-grading-r12-20260101-101500.json",
		"nested/dir/backup.json":               "backup.json",
		`C:\exports\backup one.json`:           "backup-one.json",
		"  ../weird name?.json ":               "weird-name-.json",
	}
	for input, want := range cases {
		got, err := PublicID(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}

	_, err := PublicID("///")
	require.Error(t, err)
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)

	store, err := New(Config{CloudName: "demo", APIKey: "key", APISecret: "secret", Folder: "/podgrade/backups/"}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "podgrade/backups", store.folder)
}
