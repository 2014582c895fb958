package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const (
	FindBooksByPublisherGenreYearPath = "find_by_publisher_genre_and_year"
	BooksByAuthorPath                 = "author"
	BooksByISBNPath                   = "isbn"
	BookOwnersPath                    = "owners"
)

// BookLookup serves GET /api/books/:id. The fixed segment
// `find_by_publisher_genre_and_year` shares this position with the book id.
func (api *APIHandler) BookLookup(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("id") == FindBooksByPublisherGenreYearPath {
		api.FindBooksByPublisherGenreYear(w, r, ps)
		return
	}
	api.GetOneBook(w, r, ps)
}

// BookSubLookup serves GET /api/books/:id/:value which hosts the author
// and isbn lookups as well as the owners of a given book.
func (api *APIHandler) BookSubLookup(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	switch ps.ByName("id") {
	case BooksByAuthorPath:
		api.GetBooksByAuthor(w, r, ps)
	case BooksByISBNPath:
		api.GetBookByISBN(w, r, ps)
	default:
		if ps.ByName("value") == BookOwnersPath {
			api.GetBookOwners(w, r, ps)
			return
		}
		api.NotFound().ServeHTTP(w, r)
	}
}

func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload BookPayload
	if err := DecodeRequestBody(r, &payload); err != nil {
		api.sendError(w, r, "failed to create the book", err)
		return
	}
	book, err := payload.Book()
	if err != nil {
		api.sendError(w, r, "failed to create the book", err)
		return
	}

	book, err = api.bookService.Add(r.Context(), book)
	if err != nil {
		api.sendError(w, r, "failed to create the book", err)
		return
	}
	api.sendResponse(w, r, http.StatusCreated, "Book created successfully.", nil, book)
}

// GetAllBooks lists every book. The `page` or `size` query parameters switch
// to the paginated listing filtered by any book column given as parameter.
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	if IsPageRequested(q) {
		api.findAllBooksByFilter(w, r)
		return
	}

	books, err := api.bookService.GetAll(r.Context())
	if err != nil {
		api.sendError(w, r, "failed to get all books", err)
		return
	}
	total := len(books)
	api.sendResponse(w, r, http.StatusOK, "All books fetched successfully.", &total, books)
}

func (api *APIHandler) findAllBooksByFilter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := QueryPage(q)
	if err != nil {
		api.sendError(w, r, "failed to filter books", err)
		return
	}
	pages, err := QueryInt(q, "pages")
	if err != nil {
		api.sendError(w, r, "failed to filter books", err)
		return
	}
	filter := BookFilter{
		Genre:     QueryString(q, "genre"),
		Author:    QueryString(q, "author"),
		Image:     QueryString(q, "image"),
		Title:     QueryString(q, "title"),
		Subtitle:  QueryString(q, "subtitle"),
		Publisher: QueryString(q, "publisher"),
		Year:      QueryString(q, "year"),
		Pages:     pages,
		ISBN:      QueryString(q, "isbn"),
	}

	books, metadata, err := api.bookService.FindAllByFilter(r.Context(), filter, page)
	if err != nil {
		api.sendError(w, r, "failed to filter books", err)
		return
	}
	total := len(books)
	api.sendResponse(w, r, http.StatusOK, "Books page fetched successfully.", &total, PagedData{Items: books, Metadata: metadata})
}

func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ParseID(ps.ByName("id"))
	if err != nil {
		api.sendError(w, r, "book id provided is not valid", err)
		return
	}
	book, err := api.bookService.GetOne(r.Context(), id)
	if err != nil {
		api.sendError(w, r, "failed to get the book", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, "Book fetched successfully.", nil, book)
}

// UpdateBook replaces the whole book. The payload id must match the path id.
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ParseID(ps.ByName("id"))
	if err != nil {
		api.sendError(w, r, "book id provided is not valid", err)
		return
	}
	var payload BookPayload
	if err = DecodeRequestBody(r, &payload); err != nil {
		api.sendError(w, r, "failed to update the book", err)
		return
	}
	if payload.ID != id {
		api.sendError(w, r, "failed to update the book", ErrIDMismatch)
		return
	}
	if _, err = api.bookService.GetOne(r.Context(), id); err != nil {
		api.sendError(w, r, "failed to update the book", err)
		return
	}
	book, err := payload.Book()
	if err != nil {
		api.sendError(w, r, "failed to update the book", err)
		return
	}

	book, err = api.bookService.Update(r.Context(), id, book)
	if err != nil {
		api.sendError(w, r, "failed to update the book", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to update book", zap.Int64("book.id", book.ID))
	api.sendResponse(w, r, http.StatusOK, "Book updated successfully.", nil, book)
}

func (api *APIHandler) DeleteBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ParseID(ps.ByName("id"))
	if err != nil {
		api.sendError(w, r, "book id provided is not valid", err)
		return
	}
	if err = api.bookService.Delete(r.Context(), id); err != nil {
		api.sendError(w, r, "failed to delete the book", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to delete book", zap.Int64("book.id", id))
	api.sendResponse(w, r, http.StatusOK, "Book deleted successfully.", nil, Book{ID: id})
}

func (api *APIHandler) GetBooksByAuthor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	books, err := api.bookService.GetByAuthor(r.Context(), ps.ByName("value"))
	if err != nil {
		api.sendError(w, r, "failed to get books by author", err)
		return
	}
	total := len(books)
	api.sendResponse(w, r, http.StatusOK, "Books fetched successfully.", &total, books)
}

// GetBookByISBN answers 200 with a locally known book and 201 when
// the book had to be imported from the catalog.
func (api *APIHandler) GetBookByISBN(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	book, created, err := api.bookService.GetByISBN(r.Context(), ps.ByName("value"))
	if err != nil {
		api.sendError(w, r, "failed to get book by isbn", err)
		return
	}
	if created {
		api.sendResponse(w, r, http.StatusCreated, "Book imported successfully.", nil, book)
		return
	}
	api.sendResponse(w, r, http.StatusOK, "Book fetched successfully.", nil, book)
}

// FindBooksByPublisherGenreYear filters on the publisher, genre and year
// query parameters. An absent parameter does not constrain the result.
func (api *APIHandler) FindBooksByPublisherGenreYear(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	filter := BookFilter{
		Publisher: QueryString(q, "publisher"),
		Genre:     QueryString(q, "genre"),
		Year:      QueryString(q, "year"),
	}
	books, err := api.bookService.FindByPublisherGenreYear(r.Context(), filter)
	if err != nil {
		api.sendError(w, r, "failed to find books", err)
		return
	}
	total := len(books)
	api.sendResponse(w, r, http.StatusOK, "Books fetched successfully.", &total, books)
}

func (api *APIHandler) GetBookOwners(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ParseID(ps.ByName("id"))
	if err != nil {
		api.sendError(w, r, "book id provided is not valid", err)
		return
	}
	users, err := api.bookService.GetOwners(r.Context(), id)
	if err != nil {
		api.sendError(w, r, "failed to get the book owners", err)
		return
	}
	total := len(users)
	api.sendResponse(w, r, http.StatusOK, "Book owners fetched successfully.", &total, users)
}
