package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestBoltMirror returns a new mirror stored in a temporary path.
func newTestBoltMirror(t *testing.T) CatalogMirror {
	t.Helper()
	f, err := os.CreateTemp("", "tmp.bolt.db-")
	require.NoError(t, err)
	f.Close()
	config := &BoltDBConfig{
		FilePath:   f.Name(),
		Timeout:    5 * time.Second,
		BucketName: "test.books",
	}

	client, err := GetBoltDBClient(config)
	require.NoError(t, err, "failed in creating a test bolt mirror")
	t.Cleanup(func() {
		client.Close()
		os.Remove(config.FilePath)
	})
	return NewBoltCatalogMirror(zap.NewNop(), config, client)
}

func TestBoltCatalogMirror(t *testing.T) {
	ctx := context.Background()
	bm := newTestBoltMirror(t)

	t.Run("Put Book", func(t *testing.T) {
		assert.NoError(t, bm.Put(ctx, Book{ID: 2, Title: "Emma"}))
		assert.NoError(t, bm.Put(ctx, Book{ID: 1, Title: "Dune"}))
		book, err := bm.GetOne(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, "Dune", book.Title)
	})

	t.Run("Replace Book", func(t *testing.T) {
		assert.NoError(t, bm.Put(ctx, Book{ID: 1, Title: "Dune Messiah"}))
		book, err := bm.GetOne(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, "Dune Messiah", book.Title)
	})

	t.Run("Get All Books", func(t *testing.T) {
		books, err := bm.GetAll(ctx)
		assert.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, int64(1), books[0].ID)
		assert.Equal(t, int64(2), books[1].ID)
	})

	t.Run("Remove Book", func(t *testing.T) {
		assert.NoError(t, bm.Remove(ctx, 2))
		_, err := bm.GetOne(ctx, 2)
		assert.ErrorIs(t, err, ErrBookNotFound)
		assert.NoError(t, bm.Remove(ctx, 2))
	})
}
