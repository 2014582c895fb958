package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type gormBookStorage struct {
	logger *zap.Logger
	db     *gorm.DB
}

// NewGormBookStorage provides an instance of relational book storage.
func NewGormBookStorage(logger *zap.Logger, db *gorm.DB) BookStorage {
	return &gormBookStorage{
		logger: logger,
		db:     db,
	}
}

// Add inserts a new book record. The identifier is always assigned by the store.
func (bs *gormBookStorage) Add(ctx context.Context, book Book) (Book, error) {
	book.ID = 0
	if err := bs.db.WithContext(ctx).Create(&book).Error; err != nil {
		return book, fmt.Errorf("failed to insert book: %w", err)
	}
	return book, nil
}

// GetOne retrieves a book record based on its ID.
func (bs *gormBookStorage) GetOne(ctx context.Context, id int64) (Book, error) {
	var book Book
	err := bs.db.WithContext(ctx).First(&book, id).Error
	return book, translateNotFound(err, ErrBookNotFound)
}

// GetAll retrieves all books ordered by their ID.
func (bs *gormBookStorage) GetAll(ctx context.Context) ([]Book, error) {
	books := []Book{}
	err := bs.db.WithContext(ctx).Order("id").Find(&books).Error
	return books, err
}

// Update overwrites every column of an existing book record.
func (bs *gormBookStorage) Update(ctx context.Context, book Book) (Book, error) {
	if err := bs.db.WithContext(ctx).Save(&book).Error; err != nil {
		return book, fmt.Errorf("failed to update book: %w", err)
	}
	return book, nil
}

// Delete removes a book and detaches it from every collection holding it.
func (bs *gormBookStorage) Delete(ctx context.Context, id int64) error {
	return bs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+UsersBooksTable+" WHERE book_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to detach book from collections: %w", err)
		}
		result := tx.Delete(&Book{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBookNotFound
		}
		return nil
	})
}

func (bs *gormBookStorage) GetByAuthor(ctx context.Context, author string) ([]Book, error) {
	books := []Book{}
	err := bs.db.WithContext(ctx).Where("author = ?", author).Order("id").Find(&books).Error
	return books, err
}

// GetByISBN returns the first stored book carrying the isbn.
func (bs *gormBookStorage) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	var book Book
	err := bs.db.WithContext(ctx).Where("isbn = ?", isbn).Order("id").First(&book).Error
	return book, translateNotFound(err, ErrBookNotFound)
}

// FindByPublisherGenreYear matches the provided publisher, genre and year.
// Only these three members of the filter are considered.
func (bs *gormBookStorage) FindByPublisherGenreYear(ctx context.Context, filter BookFilter) ([]Book, error) {
	books := []Book{}
	query := bs.db.WithContext(ctx).Model(&Book{})
	query = whereIfSet(query, "publisher = ?", filter.Publisher)
	query = whereIfSet(query, "genre = ?", filter.Genre)
	query = whereIfSet(query, "year = ?", filter.Year)
	err := query.Order("id").Find(&books).Error
	return books, err
}

// FindAllByFilter returns the requested page of books matching every
// provided member of the filter along with the total number of matches.
func (bs *gormBookStorage) FindAllByFilter(ctx context.Context, filter BookFilter, page Page) ([]Book, int64, error) {
	query := bs.db.WithContext(ctx).Model(&Book{})
	query = whereIfSet(query, "genre = ?", filter.Genre)
	query = whereIfSet(query, "author = ?", filter.Author)
	query = whereIfSet(query, "image = ?", filter.Image)
	query = whereIfSet(query, "title = ?", filter.Title)
	query = whereIfSet(query, "subtitle = ?", filter.Subtitle)
	query = whereIfSet(query, "publisher = ?", filter.Publisher)
	query = whereIfSet(query, "year = ?", filter.Year)
	query = whereIfSet(query, "pages = ?", filter.Pages)
	query = whereIfSet(query, "isbn = ?", filter.ISBN)
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	books := []Book{}
	err := query.Order("id").Offset(page.Offset()).Limit(page.Size).Find(&books).Error
	return books, total, err
}
