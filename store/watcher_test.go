package store

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirWatcherReportsArticleFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewDirWatcher(dir, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, func() { changes.Add(1) })
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample-data.json"), []byte("[]"), 0o600))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, changes.Load(), "non-article files are ignored")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "articles-1.json"), []byte("[]"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "articles-2.json"), []byte("[]"), 0o600))
	assert.Eventually(t, func() bool { return changes.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestNewDirWatcherMissingDir(t *testing.T) {
	_, err := NewDirWatcher(filepath.Join(t.TempDir(), "missing"), 0, nil)
	assert.Error(t, err)
}

func TestIsArticleFile(t *testing.T) {
	assert.True(t, isArticleFile("/data/articles-20240601.json"))
	assert.False(t, isArticleFile("/data/articles-20240601.json.tmp-123"))
	assert.False(t, isArticleFile("/data/sample-data-1.json"))
	assert.False(t, isArticleFile("/data/readme.md"))
}
