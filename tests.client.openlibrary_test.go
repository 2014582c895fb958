package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const openLibraryDuneRecord = `{
	"ISBN:9780441013593": {
		"title": "Dune",
		"subtitle": "40th anniversary edition",
		"publishers": [{"name": "Ace Books"}, {"name": "Other"}],
		"publish_date": "2005",
		"number_of_pages": 528,
		"authors": [{"name": "Frank Herbert"}],
		"cover": {"small": "s.jpg", "medium": "https://covers.openlibrary.org/b/id/1-M.jpg", "large": "l.jpg"}
	}
}`

func newTestOpenLibrary(t *testing.T, status int, body string) (CatalogClient, *string) {
	t.Helper()
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Path + "?" + r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewOpenLibraryClient(zap.NewNop(), &OpenLibraryConfig{BaseURL: srv.URL + "/", Timeout: 2 * time.Second}), &query
}

func TestOpenLibraryClient_Lookup(t *testing.T) {
	t.Run("should pass: known isbn", func(t *testing.T) {
		client, query := newTestOpenLibrary(t, http.StatusOK, openLibraryDuneRecord)
		book, err := client.Lookup(context.Background(), "9780441013593")
		require.NoError(t, err)
		assert.Equal(t, "/api/books?bibkeys=ISBN%3A9780441013593&format=json&jscmd=data", *query)
		assert.Equal(t, Book{
			Genre:     DefaultGenre,
			Author:    "Frank Herbert",
			Image:     "https://covers.openlibrary.org/b/id/1-M.jpg",
			Title:     "Dune",
			Subtitle:  "40th anniversary edition",
			Publisher: "Ace Books",
			Year:      "2005",
			Pages:     528,
			ISBN:      "9780441013593",
		}, book)
	})

	t.Run("should pass: pages as string", func(t *testing.T) {
		client, _ := newTestOpenLibrary(t, http.StatusOK, `{"ISBN:1": {"title": "T", "number_of_pages": "120"}}`)
		book, err := client.Lookup(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, 120, book.Pages)
		assert.Equal(t, "", book.Author)
		assert.Equal(t, "", book.Image)
	})

	t.Run("should fail: unknown isbn", func(t *testing.T) {
		client, _ := newTestOpenLibrary(t, http.StatusOK, `{}`)
		_, err := client.Lookup(context.Background(), "0000")
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("should fail: missing pages", func(t *testing.T) {
		client, _ := newTestOpenLibrary(t, http.StatusOK, `{"ISBN:1": {"title": "T"}}`)
		_, err := client.Lookup(context.Background(), "1")
		assert.ErrorIs(t, err, ErrCatalogMalformed)
	})

	t.Run("should fail: invalid json", func(t *testing.T) {
		client, _ := newTestOpenLibrary(t, http.StatusOK, `not json`)
		_, err := client.Lookup(context.Background(), "1")
		assert.ErrorIs(t, err, ErrCatalogMalformed)
	})

	t.Run("should fail: catalog error status", func(t *testing.T) {
		client, _ := newTestOpenLibrary(t, http.StatusInternalServerError, `oops`)
		_, err := client.Lookup(context.Background(), "1")
		assert.ErrorIs(t, err, ErrCatalogUnavailable)
	})

	t.Run("should fail: catalog unreachable", func(t *testing.T) {
		client := NewOpenLibraryClient(zap.NewNop(), &OpenLibraryConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
		_, err := client.Lookup(context.Background(), "1")
		assert.ErrorIs(t, err, ErrCatalogUnavailable)
	})
}
