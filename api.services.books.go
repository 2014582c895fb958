package main

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

type BookServiceProvider interface {
	Add(ctx context.Context, book Book) (Book, error)
	GetOne(ctx context.Context, id int64) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
	Update(ctx context.Context, id int64, book Book) (Book, error)
	Delete(ctx context.Context, id int64) error
	GetByAuthor(ctx context.Context, author string) ([]Book, error)
	GetByISBN(ctx context.Context, isbn string) (Book, bool, error)
	Import(ctx context.Context, isbn string) (Book, error)
	FindByPublisherGenreYear(ctx context.Context, filter BookFilter) ([]Book, error)
	FindAllByFilter(ctx context.Context, filter BookFilter, page Page) ([]Book, Metadata, error)
	GetOwners(ctx context.Context, id int64) ([]User, error)
}

type BookService struct {
	logger  *zap.Logger
	storage BookStorage
	users   UserStorage
	catalog CatalogClient
	queue   Queuer
}

func NewBookService(logger *zap.Logger, storage BookStorage, users UserStorage, catalog CatalogClient, queue Queuer) BookServiceProvider {
	return &BookService{
		logger:  logger,
		storage: storage,
		users:   users,
		catalog: catalog,
		queue:   queue,
	}
}

// publish notifies the change feed. A failure never fails the caller.
func (bs *BookService) publish(ctx context.Context, qid string, book Book) {
	if bs.queue == nil {
		return
	}
	if err := bs.queue.Push(ctx, qid, book); err != nil {
		bs.logger.Error("service: failed to push book to queue", zap.String("qid", qid), zap.Int64("book.id", book.ID), zap.Error(err))
	}
}

func (bs *BookService) Add(ctx context.Context, book Book) (Book, error) {
	book, err := bs.storage.Add(ctx, book)
	if err != nil {
		return book, err
	}
	bs.publish(ctx, BookCreatedQueue, book)
	return book, nil
}

func (bs *BookService) GetOne(ctx context.Context, id int64) (Book, error) {
	return bs.storage.GetOne(ctx, id)
}

func (bs *BookService) GetAll(ctx context.Context) ([]Book, error) {
	return bs.storage.GetAll(ctx)
}

// Update replaces the book identified by id. The payload id must match it.
func (bs *BookService) Update(ctx context.Context, id int64, book Book) (Book, error) {
	if book.ID != id {
		return book, ErrIDMismatch
	}
	if _, err := bs.storage.GetOne(ctx, id); err != nil {
		return book, err
	}
	book, err := bs.storage.Update(ctx, book)
	if err != nil {
		return book, err
	}
	bs.publish(ctx, BookUpdatedQueue, book)
	return book, nil
}

func (bs *BookService) Delete(ctx context.Context, id int64) error {
	if err := bs.storage.Delete(ctx, id); err != nil {
		return err
	}
	bs.publish(ctx, BookDeletedQueue, Book{ID: id})
	return nil
}

func (bs *BookService) GetByAuthor(ctx context.Context, author string) ([]Book, error) {
	return bs.storage.GetByAuthor(ctx, author)
}

// GetByISBN serves the book from the local store when known. Otherwise it is
// imported from the catalog and the second result reports the creation.
func (bs *BookService) GetByISBN(ctx context.Context, isbn string) (Book, bool, error) {
	book, err := bs.storage.GetByISBN(ctx, isbn)
	if err == nil {
		return book, false, nil
	}
	if !errors.Is(err, ErrBookNotFound) {
		return book, false, err
	}
	book, err = bs.Import(ctx, isbn)
	if err != nil {
		return book, false, err
	}
	return book, true, nil
}

// Import fetches the book from the catalog and persists it.
func (bs *BookService) Import(ctx context.Context, isbn string) (Book, error) {
	book, err := bs.catalog.Lookup(ctx, isbn)
	if err != nil {
		return book, err
	}
	bs.logger.Info("service: book imported from catalog", zap.String("book.isbn", isbn), zap.String("book.title", book.Title))
	return bs.Add(ctx, book)
}

func (bs *BookService) FindByPublisherGenreYear(ctx context.Context, filter BookFilter) ([]Book, error) {
	return bs.storage.FindByPublisherGenreYear(ctx, filter)
}

func (bs *BookService) FindAllByFilter(ctx context.Context, filter BookFilter, page Page) ([]Book, Metadata, error) {
	books, total, err := bs.storage.FindAllByFilter(ctx, filter, page)
	if err != nil {
		return nil, Metadata{}, err
	}
	return books, CalculateMetadata(total, page), nil
}

// GetOwners lists the users holding the book in their collection.
func (bs *BookService) GetOwners(ctx context.Context, id int64) ([]User, error) {
	if _, err := bs.storage.GetOne(ctx, id); err != nil {
		return nil, err
	}
	return bs.users.GetOwners(ctx, id)
}
