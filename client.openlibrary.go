package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// CatalogClient looks books up in an external catalog by isbn.
type CatalogClient interface {
	Lookup(ctx context.Context, isbn string) (Book, error)
}

type openLibraryClient struct {
	logger  *zap.Logger
	baseURL string
	client  *http.Client
}

// NewOpenLibraryClient provides a catalog client for the OpenLibrary books api.
func NewOpenLibraryClient(logger *zap.Logger, config *OpenLibraryConfig) CatalogClient {
	return &openLibraryClient{
		logger:  logger,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		client:  &http.Client{Timeout: config.Timeout},
	}
}

type openLibraryNamed struct {
	Name string `json:"name"`
}

type openLibraryRecord struct {
	Title         string             `json:"title"`
	Subtitle      string             `json:"subtitle"`
	Publishers    []openLibraryNamed `json:"publishers"`
	PublishDate   string             `json:"publish_date"`
	NumberOfPages json.RawMessage    `json:"number_of_pages"`
	Authors       []openLibraryNamed `json:"authors"`
	Cover         struct {
		Medium string `json:"medium"`
	} `json:"cover"`
}

// Lookup queries the catalog data endpoint. An empty answer means the isbn is
// unknown. Only the first publisher and author are kept.
func (oc *openLibraryClient) Lookup(ctx context.Context, isbn string) (Book, error) {
	key := "ISBN:" + isbn
	endpoint := fmt.Sprintf("%s/api/books?bibkeys=%s&format=json&jscmd=data", oc.baseURL, url.QueryEscape(key))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Book{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := oc.client.Do(req)
	if err != nil {
		return Book{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Book{}, fmt.Errorf("%w: unexpected status %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	records := map[string]openLibraryRecord{}
	if err = json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return Book{}, fmt.Errorf("%w: %v", ErrCatalogMalformed, err)
	}
	if len(records) == 0 {
		oc.logger.Info("catalog: isbn not found", zap.String("book.isbn", isbn))
		return Book{}, ErrBookNotFound
	}

	record, ok := records[key]
	if !ok {
		return Book{}, fmt.Errorf("%w: missing %s entry", ErrCatalogMalformed, key)
	}
	return record.toBook(isbn)
}

func (r openLibraryRecord) toBook(isbn string) (Book, error) {
	pages, err := parsePages(r.NumberOfPages)
	if err != nil {
		return Book{}, fmt.Errorf("%w: number_of_pages: %v", ErrCatalogMalformed, err)
	}

	book := Book{
		Genre:    DefaultGenre,
		Image:    r.Cover.Medium,
		Title:    r.Title,
		Subtitle: r.Subtitle,
		Year:     r.PublishDate,
		Pages:    pages,
		ISBN:     isbn,
	}
	if len(r.Publishers) > 0 {
		book.Publisher = r.Publishers[0].Name
	}
	if len(r.Authors) > 0 {
		book.Author = r.Authors[0].Name
	}
	return book, nil
}

// parsePages accepts the page count either as a json number or a numeric string.
func parsePages(raw json.RawMessage) (int, error) {
	value := string(bytes.Trim(bytes.TrimSpace(raw), `"`))
	if value == "" || value == "null" {
		return 0, fmt.Errorf("missing value")
	}
	return strconv.Atoi(value)
}
