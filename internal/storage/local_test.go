package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveGetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := NewLocalStorage(Config{BasePath: t.TempDir(), BaseURL: "/api/v1/files"})
	require.NoError(t, err)

	written, err := s.Save(ctx, "plans/floor.png", strings.NewReader("fake image bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, int64(16), written)

	exists, err := s.Exists(ctx, "plans/floor.png")
	require.NoError(t, err)
	assert.True(t, exists)

	size, err := s.GetSize(ctx, "plans/floor.png")
	require.NoError(t, err)
	assert.Equal(t, int64(16), size)

	rc, err := s.Get(ctx, "plans/floor.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "fake image bytes", string(data))

	url, err := s.GetURL(ctx, "plans/floor.png")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/files/plans/floor.png", url)

	require.NoError(t, s.Delete(ctx, "plans/floor.png"))
	exists, err = s.Exists(ctx, "plans/floor.png")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting a missing file is not an error
	assert.NoError(t, s.Delete(ctx, "plans/floor.png"))
}

func TestNewStorage_UnsupportedType(t *testing.T) {
	t.Parallel()

	_, err := NewStorage(Config{Type: "ftp"})
	assert.Error(t, err)
}
