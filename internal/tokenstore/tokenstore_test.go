package tokenstore

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "nested", "token.json"))
}

func TestLoad_Missing(t *testing.T) {
	store := newTestStore(t)

	token, err := store.Load()

	assert.ErrorIs(t, err, ErrNoToken)
	assert.Empty(t, token)
}

func TestSaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save("1|abcdef"))
	token, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, "1|abcdef", token)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"token": "1|abcdef"}`, string(data))
}

func TestSave_Overwrites(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save("old"))
	require.NoError(t, store.Save("new"))

	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new", token)

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSave_OwnerOnly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	store := newTestStore(t)
	require.NoError(t, store.Save("secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoad_EmptyOrCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"empty token", `{"token": "  "}`, ErrNoToken},
		{"no token key", `{}`, ErrNoToken},
		{"not json", `token=abc`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "token.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			token, err := New(path).Load()

			require.Error(t, err)
			assert.Empty(t, token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NotErrorIs(t, err, ErrNoToken)
			}
		})
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("abc"))

	require.NoError(t, store.Clear())
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoToken)

	assert.NoError(t, store.Clear(), "clearing twice is fine")
}
