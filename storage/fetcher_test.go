package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemFetcher(t *testing.T) {
	f := NewMemFetcher()
	f.Put("mem://track", []byte("audio bytes"))

	t.Run("fetch registered blob", func(t *testing.T) {
		rc, err := f.Fetch(context.Background(), "mem://track")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("audio bytes"), data)
	})

	t.Run("missing blob", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), "mem://other")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.Fetch(ctx, "mem://track")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.wav")
	require.NoError(t, os.WriteFile(path, []byte("wav data"), 0o644))

	t.Run("absolute path", func(t *testing.T) {
		f := NewFileFetcher("")
		rc, err := f.Fetch(context.Background(), path)
		require.NoError(t, err)
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		assert.Equal(t, []byte("wav data"), data)
	})

	t.Run("file scheme stripped", func(t *testing.T) {
		f := NewFileFetcher("")
		rc, err := f.Fetch(context.Background(), "file://"+path)
		require.NoError(t, err)
		rc.Close()
	})

	t.Run("base dir prefixes relative paths", func(t *testing.T) {
		f := NewFileFetcher(dir)
		rc, err := f.Fetch(context.Background(), "track.wav")
		require.NoError(t, err)
		rc.Close()
	})

	t.Run("missing file", func(t *testing.T) {
		f := NewFileFetcher(dir)
		_, err := f.Fetch(context.Background(), "nope.wav")
		assert.Error(t, err)
	})
}
