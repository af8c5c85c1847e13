package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutReplacesAtomically(t *testing.T) {
	root := filepath.Join(t.TempDir(), "avatars")
	s, err := NewLocalStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "u1_me.png", []byte("first"), "image/png"))
	require.NoError(t, s.Put(ctx, "u1_me.png", []byte("second"), "image/png"))

	got, err := os.ReadFile(filepath.Join(root, "u1_me.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLocalPutRejectsPathNames(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../escape.png", "a/b.png"} {
		assert.Error(t, s.Put(context.Background(), name, []byte("x"), ""), name)
	}
}
